package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type BookingStatus string

const (
	BookingPending             BookingStatus = "pending"
	BookingSentToClient        BookingStatus = "sent_to_client"
	BookingClientApproved      BookingStatus = "client_approved"
	BookingContractorsNotified BookingStatus = "contractors_notified"
	BookingAssigned            BookingStatus = "assigned"
	BookingFullyAssigned       BookingStatus = "fully_assigned"
)

// bookingStatusGraph holds the only legal forward edges. The sole loop is
// sent_to_client onto itself, which models a quote resend.
var bookingStatusGraph = map[BookingStatus][]BookingStatus{
	BookingPending:             {BookingSentToClient},
	BookingSentToClient:        {BookingSentToClient, BookingClientApproved},
	BookingClientApproved:      {BookingContractorsNotified},
	BookingContractorsNotified: {BookingAssigned, BookingFullyAssigned},
	BookingAssigned:            {},
	BookingFullyAssigned:       {},
}

func (s BookingStatus) String() string {
	return string(s)
}

func (s BookingStatus) IsValid() bool {
	_, ok := bookingStatusGraph[s]
	return ok
}

// CanTransitionTo reports whether target is a direct successor of s.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, next := range bookingStatusGraph[s] {
		if next == target {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return len(bookingStatusGraph[s]) == 0
}

type Booking struct {
	BaseUUIDModel
	QuoteNumber string `gorm:"type:text;uniqueIndex;not null" json:"quoteNumber"`
	ClientName  string `gorm:"type:text;not null"             json:"clientName"`
	ClientEmail string `gorm:"type:text;not null"             json:"clientEmail"`

	Status BookingStatus `gorm:"type:text;not null;default:'pending';index" json:"status"`

	// Capability tokens. ApprovalToken gates the legacy direct-accept links,
	// ContractorSelectionToken gates the roster-building screen. Unique across
	// all bookings so a token lookup resolves at most one row.
	ApprovalToken            *string `gorm:"type:text;uniqueIndex" json:"-"`
	ContractorSelectionToken *string `gorm:"type:text;uniqueIndex" json:"-"`

	// QuoteTotal is the last known total. The quote sheet, when linked, is the
	// system of record and overrides this cache on every (re)generation.
	QuoteTotal   decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"quoteTotal"`
	QuoteSheetID *string         `gorm:"type:text"                    json:"quoteSheetId,omitempty"`

	// Legacy single-assignment fields, written only by the direct-accept
	// conditional update.
	AssignedContractorID *uuid.UUID `gorm:"type:uuid"      json:"assignedContractorId,omitempty"`
	AssignedAt           *time.Time `gorm:"type:timestamp" json:"assignedAt,omitempty"`

	ClientApprovedAt      *time.Time `gorm:"type:timestamp" json:"clientApprovedAt,omitempty"`
	ContractorsNotifiedAt *time.Time `gorm:"type:timestamp" json:"contractorsNotifiedAt,omitempty"`

	EventDate     *time.Time     `gorm:"type:timestamp" json:"eventDate,omitempty"`
	Venue         string         `gorm:"type:text"      json:"venue"`
	EquipmentList pq.StringArray `gorm:"type:text[]"    json:"equipmentList"`
	Details       datatypes.JSON `gorm:"type:jsonb"     json:"details,omitempty"`

	ClientApproval *ClientApproval `gorm:"foreignKey:BookingID" json:"clientApproval,omitempty"`
	Assignments    []Assignment    `gorm:"foreignKey:BookingID" json:"assignments,omitempty"`
}

// EventDetails is the typed view of the Details blob. It is decoded only at
// the boundary that assembles collaborator payloads; the workflow itself never
// threads the raw JSON around.
type EventDetails struct {
	EventType    string `json:"eventType"`
	GuestCount   int    `json:"guestCount"`
	LoadInNotes  string `json:"loadInNotes"`
	PowerOnSite  bool   `json:"powerOnSite"`
	ContactPhone string `json:"contactPhone"`
}

func (b *Booking) DecodeDetails() (EventDetails, error) {
	var details EventDetails
	if len(b.Details) == 0 {
		return details, nil
	}
	if err := json.Unmarshal(b.Details, &details); err != nil {
		return EventDetails{}, err
	}
	return details, nil
}
