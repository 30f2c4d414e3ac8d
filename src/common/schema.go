package common

import (
	"fmt"
	"strings"
	"sync"

	"ers/src/models"
	"ers/src/types"
	"ers/src/utils"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

const (
	minNameLength  = 2
	minPhoneDigits = 7
)

// FieldRule is one compiled constraint of a form's ruleset. Key is the
// submission key the rule applies to, Label feeds the human-readable message.
type FieldRule struct {
	Key      string
	Type     types.FieldType
	Label    string
	Required bool
	Min      int
	Max      int
}

// FormSchema is the compiled validation ruleset for one form revision.
type FormSchema struct {
	rules []FieldRule
}

// cachedSchema pairs a compiled ruleset with the form revision it was
// compiled from. One entry per form id: storing a newer revision replaces
// the stale one instead of accumulating superseded schemas.
type cachedSchema struct {
	rev    int64
	schema *FormSchema
}

var schemaCache sync.Map

// SchemaFor compiles the form's field configuration into a ruleset,
// memoized per form revision so registration traffic does not recompile it.
func SchemaFor(form *models.EventForm) *FormSchema {
	if form == nil {
		return BuildSchema(nil)
	}
	rev := form.UpdatedAt.UnixNano()
	if cached, ok := schemaCache.Load(form.ID); ok {
		if c := cached.(*cachedSchema); c.rev == rev {
			return c.schema
		}
	}
	schema := BuildSchema(form)
	schemaCache.Store(form.ID, &cachedSchema{rev: rev, schema: schema})
	return schema
}

// BuildSchema translates baseFields + customFields into concrete rules.
// Disabled base fields are excluded entirely. Custom fields are applied after
// base fields, so a custom field reusing a base field's id replaces its rule.
func BuildSchema(form *models.EventForm) *FormSchema {
	base := types.DefaultBaseFields()
	custom := types.CustomFieldList{}
	if form != nil {
		base = form.BaseFields
		custom = form.CustomFields
	}

	rules := []FieldRule{}
	index := map[string]int{}
	put := func(r FieldRule) {
		if i, ok := index[r.Key]; ok {
			rules[i] = r
			return
		}
		index[r.Key] = len(rules)
		rules = append(rules, r)
	}

	if base.Name.Enabled {
		put(FieldRule{Key: "name", Type: types.FIELD_TEXT, Label: labelOr(base.Name.Label, "Name"), Required: base.Name.Required, Min: minNameLength})
	}
	if base.Email.Enabled {
		put(FieldRule{Key: "email", Type: types.FIELD_EMAIL, Label: labelOr(base.Email.Label, "Email"), Required: base.Email.Required})
	}
	if base.Phone.Enabled {
		put(FieldRule{Key: "phone", Type: types.FIELD_PHONE, Label: labelOr(base.Phone.Label, "Phone"), Required: base.Phone.Required, Min: minPhoneDigits})
	}
	if base.Organization.Enabled {
		put(FieldRule{Key: "organization", Type: types.FIELD_TEXT, Label: labelOr(base.Organization.Label, "Organization"), Required: base.Organization.Required, Min: minNameLength})
	}
	if base.GroupSize.Enabled {
		min, max := base.GroupSize.Min, base.GroupSize.Max
		if min < 1 {
			min = 1
		}
		if max < min {
			max = 4
		}
		put(FieldRule{Key: "groupSize", Type: types.FIELD_TEXT, Label: labelOr(base.GroupSize.Label, "Group size"), Required: base.GroupSize.Required, Min: min, Max: max})
	}

	for _, f := range custom {
		put(FieldRule{Key: f.ID, Type: f.Type, Label: labelOr(f.Label, f.ID), Required: f.Required})
	}

	return &FormSchema{rules: rules}
}

// Validate applies the ruleset to a submission. A nil return means the
// submission is accepted; otherwise the map carries one message per invalid
// field, keyed by submission key.
func (s *FormSchema) Validate(body *types.RegisterRequestBody) map[string]string {
	errs := map[string]string{}

	for _, rule := range s.rules {
		switch rule.Key {
		case "name":
			checkText(errs, rule, body.Name)
		case "email":
			checkTyped(errs, rule, body.Email)
		case "phone":
			checkTyped(errs, rule, body.Phone)
		case "organization":
			checkText(errs, rule, body.Organization)
		case "groupSize":
			if body.GroupSize == 0 {
				if rule.Required {
					errs[rule.Key] = fmt.Sprintf("%s is required", rule.Label)
				}
				continue
			}
			if body.GroupSize < rule.Min || body.GroupSize > rule.Max {
				errs[rule.Key] = fmt.Sprintf("%s must be between %d and %d", rule.Label, rule.Min, rule.Max)
			}
		default:
			checkTyped(errs, rule, body.CustomFieldData[rule.Key])
		}
	}

	// Every registration identifies at least one human, no matter how the
	// form is configured.
	if msg := validateTeamMembers(body.TeamMembers); msg != "" {
		errs["teamMembers"] = msg
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateTeamMembers(members []types.TeamMember) string {
	if len(members) == 0 {
		return "At least one team member is required"
	}
	for i, m := range members {
		if strings.TrimSpace(m.Name) == "" {
			return fmt.Sprintf("Team member %d: name is required", i+1)
		}
		if err := validate.Var(m.Email, "required,email"); err != nil {
			return fmt.Sprintf("Team member %d: a valid email is required", i+1)
		}
		if utils.DigitCount(m.Phone) < minPhoneDigits {
			return fmt.Sprintf("Team member %d: a valid phone number is required", i+1)
		}
	}
	return ""
}

func checkText(errs map[string]string, rule FieldRule, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		if rule.Required {
			errs[rule.Key] = fmt.Sprintf("%s is required", rule.Label)
		}
		return
	}
	if len(value) < rule.Min {
		errs[rule.Key] = fmt.Sprintf("%s must be at least %d characters", rule.Label, rule.Min)
	}
}

// checkTyped dispatches on the field's declared type. The switch is
// exhaustive over the closed set of field types.
func checkTyped(errs map[string]string, rule FieldRule, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		if rule.Required {
			errs[rule.Key] = fmt.Sprintf("%s is required", rule.Label)
		}
		return
	}
	switch rule.Type {
	case types.FIELD_EMAIL:
		if err := validate.Var(value, "email"); err != nil {
			errs[rule.Key] = fmt.Sprintf("%s must be a valid email address", rule.Label)
		}
	case types.FIELD_PHONE:
		min := rule.Min
		if min == 0 {
			min = minPhoneDigits
		}
		if utils.DigitCount(value) < min {
			errs[rule.Key] = fmt.Sprintf("%s must be a valid phone number", rule.Label)
		}
	case types.FIELD_URL:
		if err := validate.Var(value, "url"); err != nil {
			errs[rule.Key] = fmt.Sprintf("%s must be a valid URL", rule.Label)
		}
	case types.FIELD_TEXT, types.FIELD_TEXTAREA, types.FIELD_PHOTO, types.FIELD_PAYMENT:
		// presence is the only constraint
	}
}

// ValidateFormConfig guards invariants of the form definition itself at save
// time: a payment field must carry the URL registrants pay through.
func ValidateFormConfig(fields []types.CustomFieldDefinition) map[string]string {
	errs := map[string]string{}
	for _, f := range fields {
		switch f.Type {
		case types.FIELD_TEXT, types.FIELD_EMAIL, types.FIELD_PHONE, types.FIELD_TEXTAREA, types.FIELD_URL, types.FIELD_PHOTO:
		case types.FIELD_PAYMENT:
			if strings.TrimSpace(f.PaymentURL) == "" {
				errs[f.ID] = "paymentUrl is required for payment fields"
			}
		default:
			errs[f.ID] = fmt.Sprintf("unknown field type %q", f.Type)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func labelOr(label, fallback string) string {
	if strings.TrimSpace(label) == "" {
		return fallback
	}
	return label
}
