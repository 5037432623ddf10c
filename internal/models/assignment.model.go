package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AssignmentStatus string

const (
	AssignmentPending  AssignmentStatus = "pending"
	AssignmentNotified AssignmentStatus = "notified"
	AssignmentAccepted AssignmentStatus = "accepted"
	AssignmentDeclined AssignmentStatus = "declined"
)

func (s AssignmentStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the contractor has already responded.
func (s AssignmentStatus) IsTerminal() bool {
	return s == AssignmentAccepted || s == AssignmentDeclined
}

// Assignment is one contractor's offer on a booking roster. The token is
// minted at notify time and scoped to exactly this row.
type Assignment struct {
	BaseUUIDModel
	BookingID    uuid.UUID `gorm:"type:uuid;not null;index:idx_assignments_booking" json:"bookingId"`
	ContractorID uuid.UUID `gorm:"type:uuid;not null"                               json:"contractorId"`

	Status AssignmentStatus `gorm:"type:text;not null;default:'pending'" json:"status"`

	AssignmentToken *string `gorm:"type:text;uniqueIndex" json:"-"`

	HourlyRate       decimal.Decimal `gorm:"type:decimal(8,2);default:0"  json:"hourlyRate"`
	EstimatedHours   decimal.Decimal `gorm:"type:decimal(6,2);default:0"  json:"estimatedHours"`
	PayAmount        decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"payAmount"`
	TasksDescription string          `gorm:"type:text"                    json:"tasksDescription"`

	NotifiedAt  *time.Time `gorm:"type:timestamp" json:"notifiedAt,omitempty"`
	RespondedAt *time.Time `gorm:"type:timestamp" json:"respondedAt,omitempty"`

	Booking    *Booking    `gorm:"foreignKey:BookingID"    json:"booking,omitempty"`
	Contractor *Contractor `gorm:"foreignKey:ContractorID" json:"contractor,omitempty"`
}

// RosterFullyAccepted reports whether the roster is non-empty and every row is
// accepted. An empty roster can never satisfy the predicate.
func RosterFullyAccepted(assignments []*Assignment) bool {
	if len(assignments) == 0 {
		return false
	}
	for _, assignment := range assignments {
		if assignment.Status != AssignmentAccepted {
			return false
		}
	}
	return true
}
