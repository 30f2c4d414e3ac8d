package models

import (
	"time"

	"github.com/google/uuid"
)

// ScanHistory is append-only: one row per verification attempt against an
// existing registration, valid or not.
type ScanHistory struct {
	ID        uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	TicketID  string    `gorm:"index" json:"ticketId,omitempty"`
	ScannedAt time.Time `gorm:"autoCreateTime:nano" json:"scannedAt,omitempty"`
	Valid     bool      `json:"valid"`
}
