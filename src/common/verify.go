package common

import (
	"errors"
	"log"
	"time"

	"ers/src/models"
	"ers/src/types"
	"ers/src/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("registration not found")
	ErrConflict = errors.New("conflict")
)

const (
	MsgInvalidTicket = "Invalid ticket ID. Registration not found."
	MsgNoQR          = "QR code not generated for this registration yet."
	MsgMaxEntries    = "Maximum entries reached for this registration."
)

// ScanResult is the engine's decision for one verification attempt. A false
// Valid is a successful decision, not an error.
type ScanResult struct {
	Valid        bool                 `json:"valid"`
	Message      string               `json:"message"`
	Registration *models.Registration `json:"registration,omitempty"`
}

// Verifier owns every mutation of a registration's scan state. Nothing else
// writes scans or status.
type Verifier struct {
	db *gorm.DB
}

func NewVerifier(db *gorm.DB) *Verifier {
	return &Verifier{db: db}
}

// Scan records one entry attempt. The increment and status recompute happen
// in a single conditional UPDATE so concurrent scans of the same ticket never
// overshoot the budget, even across server instances.
func (v *Verifier) Scan(ticketID string) (*ScanResult, error) {
	tx := v.db.Model(&models.Registration{}).
		Where("id = ? AND has_qr = ? AND scans < max_scans", ticketID, true).
		Updates(map[string]any{
			"scans": gorm.Expr("scans + 1"),
			"status": gorm.Expr(
				"CASE WHEN scans + 1 >= max_scans THEN ? ELSE ? END",
				types.REGISTRATION_EXHAUSTED, types.REGISTRATION_CHECKEDIN,
			),
		})
	if tx.Error != nil {
		return nil, tx.Error
	}

	if tx.RowsAffected > 0 {
		var reg models.Registration
		if err := v.db.First(&reg, "id = ?", ticketID).Error; err != nil {
			return nil, err
		}
		v.appendHistory(ticketID, true)
		remaining := reg.MaxScans - reg.Scans
		return &ScanResult{
			Valid:        true,
			Message:      "Entry approved. " + utils.RemainingEntriesPhrase(remaining) + ".",
			Registration: &reg,
		}, nil
	}

	// The guard rejected the attempt. Classify why with a plain read.
	var reg models.Registration
	if err := v.db.First(&reg, "id = ?", ticketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Unknown id: nothing to attach history to.
			return &ScanResult{Valid: false, Message: MsgInvalidTicket}, nil
		}
		return nil, err
	}

	v.appendHistory(ticketID, false)
	if !reg.HasQR {
		return &ScanResult{Valid: false, Message: MsgNoQR, Registration: &reg}, nil
	}
	return &ScanResult{Valid: false, Message: MsgMaxEntries, Registration: &reg}, nil
}

// Issue marks the registration as carrying a credential. Issuance is not
// idempotent: a second call fails with ErrConflict until an explicit revoke.
func (v *Verifier) Issue(ticketID, qrData string) (*models.Registration, error) {
	tx := v.db.Model(&models.Registration{}).
		Where("id = ? AND has_qr = ?", ticketID, false).
		Updates(map[string]any{
			"has_qr":       true,
			"status":       types.REGISTRATION_ACTIVE,
			"qr_code_data": qrData,
		})
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		var reg models.Registration
		if err := v.db.First(&reg, "id = ?", ticketID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		return nil, ErrConflict
	}
	var reg models.Registration
	if err := v.db.First(&reg, "id = ?", ticketID).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

// Revoke returns the registration to pending with a fresh scan budget.
// Revoking an already-pending registration is a no-op, not an error.
func (v *Verifier) Revoke(ticketID string) (*models.Registration, error) {
	tx := v.db.Model(&models.Registration{}).
		Where("id = ?", ticketID).
		Updates(map[string]any{
			"has_qr":       false,
			"scans":        0,
			"status":       types.REGISTRATION_PENDING,
			"qr_code_data": nil,
		})
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	var reg models.Registration
	if err := v.db.First(&reg, "id = ?", ticketID).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

// Delete removes the registration and its scan history in one transaction.
func (v *Verifier) Delete(ticketID string) error {
	return v.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ticket_id = ?", ticketID).Delete(&models.ScanHistory{}).Error; err != nil {
			return err
		}
		del := tx.Where("id = ?", ticketID).Delete(&models.Registration{})
		if del.Error != nil {
			return del.Error
		}
		if del.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Get reads one registration with its scan history, newest attempt first.
func (v *Verifier) Get(ticketID string) (*models.Registration, error) {
	var reg models.Registration
	err := v.db.
		Preload("ScanHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("scanned_at DESC")
		}).
		First(&reg, "id = ?", ticketID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &reg, nil
}

func (v *Verifier) appendHistory(ticketID string, valid bool) {
	entry := models.ScanHistory{
		ID:        uuid.New(),
		TicketID:  ticketID,
		ScannedAt: time.Now(),
		Valid:     valid,
	}
	if err := v.db.Create(&entry).Error; err != nil {
		log.Printf("Error writing scan history for %s: %s\n", ticketID, err.Error())
	}
}
