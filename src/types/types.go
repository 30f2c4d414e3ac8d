package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"createdAt,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updatedAt,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`
}

type JSONB map[string]any
type JSONBArray []any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

func (a JSONBArray) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONBArray) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type RegistrationStatus string

const (
	REGISTRATION_PENDING   RegistrationStatus = "pending"
	REGISTRATION_ACTIVE    RegistrationStatus = "active"
	REGISTRATION_CHECKEDIN RegistrationStatus = "checked-in"
	REGISTRATION_EXHAUSTED RegistrationStatus = "exhausted"
	REGISTRATION_INVALID   RegistrationStatus = "invalid"
)

// ScanPolicy controls how a registration's scan budget is derived at
// creation time: per-member grants one entry per group member, single grants
// exactly one check-in regardless of group size.
type ScanPolicy string

const (
	SCAN_POLICY_PER_MEMBER ScanPolicy = "per-member"
	SCAN_POLICY_SINGLE     ScanPolicy = "single"
)

type FieldType string

const (
	FIELD_TEXT     FieldType = "text"
	FIELD_EMAIL    FieldType = "email"
	FIELD_PHONE    FieldType = "phone"
	FIELD_TEXTAREA FieldType = "textarea"
	FIELD_URL      FieldType = "url"
	FIELD_PHOTO    FieldType = "photo"
	FIELD_PAYMENT  FieldType = "payment"
)

type TeamMember struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type TeamMemberList []TeamMember

func (a TeamMemberList) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *TeamMemberList) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type CustomFieldDefinition struct {
	ID          string    `json:"id"`
	Type        FieldType `json:"type"`
	Label       string    `json:"label"`
	Placeholder string    `json:"placeholder,omitempty"`
	Required    bool      `json:"required"`
	HelpText    string    `json:"helpText,omitempty"`
	PaymentURL  string    `json:"paymentUrl,omitempty"`
}

type CustomFieldList []CustomFieldDefinition

func (a CustomFieldList) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *CustomFieldList) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type BaseFieldConfig struct {
	Enabled     bool   `json:"enabled"`
	Required    bool   `json:"required"`
	Label       string `json:"label,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	HelpText    string `json:"helpText,omitempty"`
}

type GroupSizeConfig struct {
	BaseFieldConfig
	Min int `json:"min,omitempty"`
	Max int `json:"max,omitempty"`
}

type TeamMembersConfig struct {
	MaxTeamMembers int     `json:"maxTeamMembers,omitempty"`
	FeePerMember   float64 `json:"feePerMember,omitempty"`
	FeeNote        string  `json:"feeNote,omitempty"`
}

type BaseFieldsConfig struct {
	Name         BaseFieldConfig   `json:"name"`
	Email        BaseFieldConfig   `json:"email"`
	Phone        BaseFieldConfig   `json:"phone"`
	Organization BaseFieldConfig   `json:"organization"`
	GroupSize    GroupSizeConfig   `json:"groupSize"`
	TeamMembers  TeamMembersConfig `json:"teamMembers"`
}

func (a BaseFieldsConfig) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *BaseFieldsConfig) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

// DefaultBaseFields is the field set a freshly created form starts with:
// everything enabled, name and email mandatory, groups of one to four.
func DefaultBaseFields() BaseFieldsConfig {
	return BaseFieldsConfig{
		Name:         BaseFieldConfig{Enabled: true, Required: true, Label: "Full name"},
		Email:        BaseFieldConfig{Enabled: true, Required: true, Label: "Email"},
		Phone:        BaseFieldConfig{Enabled: true, Required: false, Label: "Phone"},
		Organization: BaseFieldConfig{Enabled: true, Required: false, Label: "Organization"},
		GroupSize: GroupSizeConfig{
			BaseFieldConfig: BaseFieldConfig{Enabled: true, Required: true, Label: "Group size"},
			Min:             1,
			Max:             4,
		},
		TeamMembers: TeamMembersConfig{MaxTeamMembers: 4},
	}
}

type RegisterRequestBody struct {
	Name            string            `json:"name,omitempty"`
	Email           string            `json:"email,omitempty"`
	Phone           string            `json:"phone,omitempty"`
	Organization    string            `json:"organization,omitempty"`
	GroupSize       int               `json:"groupSize,omitempty"`
	TeamMembers     []TeamMember      `json:"teamMembers"`
	CustomFieldData map[string]string `json:"customFieldData,omitempty"`
}

type UpdateRegistrationRequestBody struct {
	Name            *string            `json:"name,omitempty"`
	Email           *string            `json:"email,omitempty"`
	Phone           *string            `json:"phone,omitempty"`
	Organization    *string            `json:"organization,omitempty"`
	GroupSize       *int               `json:"groupSize,omitempty"`
	TeamMembers     *[]TeamMember      `json:"teamMembers,omitempty"`
	CustomFieldData *map[string]string `json:"customFieldData,omitempty"`
}

type CreateFormRequestBody struct {
	Title          string                  `json:"title" binding:"required"`
	BannerURL      string                  `json:"bannerUrl,omitempty"`
	CustomLinks    JSONBArray              `json:"customLinks,omitempty"`
	CustomFields   []CustomFieldDefinition `json:"customFields,omitempty"`
	BaseFields     *BaseFieldsConfig       `json:"baseFields,omitempty"`
	ScanPolicy     ScanPolicy              `json:"scanPolicy,omitempty" binding:"omitempty,oneof=per-member single"`
	SuccessTitle   string                  `json:"successTitle,omitempty"`
	SuccessMessage string                  `json:"successMessage,omitempty"`
	Publish        bool                    `json:"publish,omitempty"`
}

type AdminLoginRequestBody struct {
	Password string `json:"password" binding:"required"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type TicketURIParams struct {
	ID string `uri:"id" binding:"required"`
}

type VerifyQueryParams struct {
	Ticket string `form:"t" binding:"required"`
}

type ExportQueryParams struct {
	Format string `form:"format,default=csv" binding:"omitempty,oneof=csv json xlsx pdf"`
	FormID uint   `form:"form"`
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type FormStats struct {
	TotalRegistrations int64 `json:"totalRegistrations"`
	QRIssued           int64 `json:"qrIssued"`
	CheckedIn          int64 `json:"checkedIn"`
	Exhausted          int64 `json:"exhausted"`
	TotalScans         int64 `json:"totalScans"`
	RegistrationsToday int64 `json:"registrationsToday"`
}
