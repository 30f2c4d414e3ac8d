package models

import "ers/src/types"

type Registration struct {
	ID              string                   `gorm:"primarykey;size:16" json:"id"`
	FormID          *uint                    `json:"formId,omitempty"`
	Name            string                   `json:"name,omitempty"`
	Email           string                   `json:"email,omitempty"`
	Phone           string                   `json:"phone,omitempty"`
	Organization    string                   `json:"organization,omitempty"`
	GroupSize       int                      `gorm:"default:1" json:"groupSize,omitempty"`
	TeamMembers     types.TeamMemberList     `gorm:"type:jsonb" json:"teamMembers,omitempty"`
	CustomFieldData types.JSONB              `gorm:"type:jsonb" json:"customFieldData,omitempty"`
	Scans           int                      `gorm:"default:0" json:"scans"`
	MaxScans        int                      `gorm:"default:1" json:"maxScans"`
	HasQR           bool                     `gorm:"default:false" json:"hasQR"`
	QRCodeData      *string                  `json:"qrCodeData,omitempty"`
	Status          types.RegistrationStatus `gorm:"default:'pending'" json:"status,omitempty"`

	Form        *EventForm    `gorm:"foreignKey:form_id" json:"form,omitempty"`
	ScanHistory []ScanHistory `gorm:"foreignKey:ticket_id;constraint:OnDelete:CASCADE" json:"scanHistory,omitempty"`

	types.Timestamps
}

// StatusFor derives the persisted status from the scan counters. The order
// matters: a ticket without a credential is pending even when its budget is
// zero, and an exhausted ticket stays exhausted.
func StatusFor(hasQR bool, scans, maxScans int) types.RegistrationStatus {
	if !hasQR {
		return types.REGISTRATION_PENDING
	}
	if scans >= maxScans {
		return types.REGISTRATION_EXHAUSTED
	}
	if scans > 0 {
		return types.REGISTRATION_CHECKEDIN
	}
	return types.REGISTRATION_ACTIVE
}
