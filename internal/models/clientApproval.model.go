package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientApproval carries the client-facing quote and its capability token. At
// most one exists per booking; resends update the row in place and replace the
// token, invalidating any previously mailed link.
type ClientApproval struct {
	BaseUUIDModel
	BookingID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"bookingId"`

	ClientApprovalToken string `gorm:"type:text;uniqueIndex;not null" json:"-"`

	AdjustedQuoteTotal decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"adjustedQuoteTotal"`

	// DepositAmount stays NULL when no deposit was configured. A stored zero
	// means a deposit of exactly zero was computed, which auto-approves the
	// booking; absence must not. The two are deliberately distinct.
	DepositAmount decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"depositAmount,omitempty"`

	QuoteNotes  string `gorm:"type:text"          json:"quoteNotes"`
	ResendCount int    `gorm:"type:int;default:0" json:"resendCount"`

	// ClientApprovedAt is set exactly once; presence is terminal for the token.
	ClientApprovedAt *time.Time `gorm:"type:timestamp" json:"clientApprovedAt,omitempty"`

	Booking *Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
}

func (ca *ClientApproval) IsApproved() bool {
	return ca.ClientApprovedAt != nil
}

// ZeroDeposit reports whether a deposit was configured and computed to exactly
// zero. A NULL deposit returns false.
func (ca *ClientApproval) ZeroDeposit() bool {
	return ca.DepositAmount.Valid && ca.DepositAmount.Decimal.IsZero()
}
