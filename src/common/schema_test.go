package common

import (
	"testing"
	"time"

	"ers/src/models"
	"ers/src/types"

	"github.com/stretchr/testify/assert"
)

func testForm() *models.EventForm {
	form := &models.EventForm{
		ID:         1,
		Title:      "Hackathon 2026",
		BaseFields: types.DefaultBaseFields(),
	}
	form.UpdatedAt = time.Now()
	return form
}

func validBody() *types.RegisterRequestBody {
	return &types.RegisterRequestBody{
		Name:      "Ada Lovelace",
		Email:     "ada@example.com",
		Phone:     "09171234567",
		GroupSize: 2,
		TeamMembers: []types.TeamMember{
			{Name: "Ada Lovelace", Email: "ada@example.com", Phone: "09171234567"},
		},
	}
}

func TestValidateAcceptsCompleteSubmission(t *testing.T) {
	schema := BuildSchema(testForm())
	errs := schema.Validate(validBody())
	assert.Nil(t, errs)
}

func TestValidateDisabledFieldIsIgnored(t *testing.T) {
	form := testForm()
	form.BaseFields.Email.Enabled = false

	body := validBody()
	body.Email = ""

	errs := BuildSchema(form).Validate(body)
	assert.Nil(t, errs)
}

func TestValidateRequiredFieldMissing(t *testing.T) {
	form := testForm()
	form.BaseFields.Email.Enabled = true
	form.BaseFields.Email.Required = true

	body := validBody()
	body.Email = ""

	errs := BuildSchema(form).Validate(body)
	assert.NotNil(t, errs)
	assert.Contains(t, errs, "email")
}

func TestValidateOptionalFieldStillTypeChecked(t *testing.T) {
	form := testForm()
	form.BaseFields.Email.Required = false

	body := validBody()
	body.Email = "not-an-email"

	errs := BuildSchema(form).Validate(body)
	assert.NotNil(t, errs)
	assert.Contains(t, errs, "email")
}

func TestValidateTeamMembersAlwaysRequired(t *testing.T) {
	form := testForm()
	form.BaseFields = types.BaseFieldsConfig{}

	body := validBody()
	body.TeamMembers = nil

	errs := BuildSchema(form).Validate(body)
	assert.NotNil(t, errs)
	assert.Contains(t, errs, "teamMembers")
}

func TestValidateTeamMemberNeedsNameEmailPhone(t *testing.T) {
	body := validBody()
	body.TeamMembers = []types.TeamMember{{Name: "Someone", Email: "bademail", Phone: "09171234567"}}

	errs := BuildSchema(testForm()).Validate(body)
	assert.NotNil(t, errs)
	assert.Contains(t, errs, "teamMembers")
}

func TestValidateGroupSizeBounds(t *testing.T) {
	body := validBody()
	body.GroupSize = 9

	errs := BuildSchema(testForm()).Validate(body)
	assert.NotNil(t, errs)
	assert.Contains(t, errs, "groupSize")
}

func TestValidateCustomFields(t *testing.T) {
	form := testForm()
	form.CustomFields = types.CustomFieldList{
		{ID: "college", Type: types.FIELD_TEXT, Label: "College", Required: true},
		{ID: "portfolio", Type: types.FIELD_URL, Label: "Portfolio"},
	}
	schema := BuildSchema(form)

	body := validBody()
	errs := schema.Validate(body)
	assert.NotNil(t, errs)
	assert.Contains(t, errs, "college")

	body.CustomFieldData = map[string]string{
		"college":   "Sample University",
		"portfolio": "nota url",
	}
	errs = schema.Validate(body)
	assert.NotNil(t, errs)
	assert.Contains(t, errs, "portfolio")

	body.CustomFieldData["portfolio"] = "https://example.com/me"
	errs = schema.Validate(body)
	assert.Nil(t, errs)
}

func TestBuildSchemaCustomFieldOverridesBase(t *testing.T) {
	form := testForm()
	form.BaseFields.Email.Required = true
	form.CustomFields = types.CustomFieldList{
		{ID: "email", Type: types.FIELD_EMAIL, Label: "Work email", Required: false},
	}

	body := validBody()
	body.Email = ""

	errs := BuildSchema(form).Validate(body)
	assert.Nil(t, errs)
}

func TestSchemaForMemoizesPerRevision(t *testing.T) {
	form := testForm()
	first := SchemaFor(form)
	second := SchemaFor(form)
	assert.Same(t, first, second)

	form.UpdatedAt = form.UpdatedAt.Add(time.Second)
	third := SchemaFor(form)
	assert.NotSame(t, first, third)
}

func TestSchemaForEvictsStaleRevisions(t *testing.T) {
	form := testForm()
	form.ID = 42

	first := SchemaFor(form)
	form.UpdatedAt = form.UpdatedAt.Add(time.Minute)
	second := SchemaFor(form)
	assert.NotSame(t, first, second)

	cached, ok := schemaCache.Load(form.ID)
	assert.True(t, ok)
	assert.Same(t, second, cached.(*cachedSchema).schema)
	assert.Same(t, second, SchemaFor(form))
}

func TestValidateFormConfig(t *testing.T) {
	errs := ValidateFormConfig([]types.CustomFieldDefinition{
		{ID: "fee", Type: types.FIELD_PAYMENT, Label: "Registration fee"},
	})
	assert.NotNil(t, errs)
	assert.Contains(t, errs, "fee")

	errs = ValidateFormConfig([]types.CustomFieldDefinition{
		{ID: "fee", Type: types.FIELD_PAYMENT, Label: "Registration fee", PaymentURL: "https://pay.example.com"},
		{ID: "college", Type: types.FIELD_TEXT, Label: "College"},
	})
	assert.Nil(t, errs)

	errs = ValidateFormConfig([]types.CustomFieldDefinition{
		{ID: "x", Type: "dropdown", Label: "X"},
	})
	assert.NotNil(t, errs)
	assert.Contains(t, errs, "x")
}
