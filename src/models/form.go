package models

import "ers/src/types"

type EventForm struct {
	ID             uint                   `gorm:"primarykey" json:"id"`
	Title          string                 `json:"title,omitempty"`
	Slug           string                 `gorm:"index" json:"slug,omitempty"`
	BannerURL      string                 `json:"bannerUrl,omitempty"`
	CustomLinks    types.JSONBArray       `gorm:"type:jsonb" json:"customLinks,omitempty"`
	CustomFields   types.CustomFieldList  `gorm:"type:jsonb" json:"customFields,omitempty"`
	BaseFields     types.BaseFieldsConfig `gorm:"type:jsonb" json:"baseFields,omitempty"`
	ScanPolicy     types.ScanPolicy       `gorm:"default:'per-member'" json:"scanPolicy,omitempty"`
	IsPublished    bool                   `gorm:"default:false" json:"isPublished"`
	SuccessTitle   string                 `json:"successTitle,omitempty"`
	SuccessMessage string                 `json:"successMessage,omitempty"`

	Registrations []Registration `gorm:"foreignKey:form_id" json:"registrations,omitempty"`

	types.Timestamps
}

// MaxScansFor is the scan budget a new registration gets under this form.
func (f *EventForm) MaxScansFor(groupSize int) int {
	if f == nil || f.ScanPolicy == types.SCAN_POLICY_SINGLE {
		return 1
	}
	if groupSize < 1 {
		return 1
	}
	return groupSize
}
