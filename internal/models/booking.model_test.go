package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gorm.io/datatypes"
)

func TestBookingStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    BookingStatus
		to      BookingStatus
		allowed bool
	}{
		{name: "pending to sent", from: BookingPending, to: BookingSentToClient, allowed: true},
		{name: "resend loop", from: BookingSentToClient, to: BookingSentToClient, allowed: true},
		{
			name:    "sent to approved",
			from:    BookingSentToClient,
			to:      BookingClientApproved,
			allowed: true,
		},
		{
			name:    "approved to notified",
			from:    BookingClientApproved,
			to:      BookingContractorsNotified,
			allowed: true,
		},
		{
			name:    "notified to assigned",
			from:    BookingContractorsNotified,
			to:      BookingAssigned,
			allowed: true,
		},
		{
			name:    "notified to fully assigned",
			from:    BookingContractorsNotified,
			to:      BookingFullyAssigned,
			allowed: true,
		},
		{name: "no skip to approved", from: BookingPending, to: BookingClientApproved},
		{name: "no backward move", from: BookingClientApproved, to: BookingSentToClient},
		{name: "no unsend", from: BookingSentToClient, to: BookingPending},
		{name: "assigned is terminal", from: BookingAssigned, to: BookingFullyAssigned},
		{name: "fully assigned is terminal", from: BookingFullyAssigned, to: BookingAssigned},
		{name: "no re-approve from notified", from: BookingContractorsNotified, to: BookingClientApproved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestBookingStatusTerminal(t *testing.T) {
	assert.True(t, BookingAssigned.IsTerminal())
	assert.True(t, BookingFullyAssigned.IsTerminal())
	assert.False(t, BookingPending.IsTerminal())
	assert.False(t, BookingContractorsNotified.IsTerminal())
}

func TestBookingStatusValidity(t *testing.T) {
	assert.True(t, BookingPending.IsValid())
	assert.False(t, BookingStatus("cancelled").IsValid())
	assert.False(t, BookingStatus("").IsValid())
}

func TestDecodeDetails(t *testing.T) {
	t.Run("empty blob decodes to zero value", func(t *testing.T) {
		booking := &Booking{}
		details, err := booking.DecodeDetails()
		assert.NoError(t, err)
		assert.Equal(t, EventDetails{}, details)
	})

	t.Run("populated blob", func(t *testing.T) {
		booking := &Booking{
			Details: datatypes.JSON(`{"eventType":"wedding","guestCount":80,"powerOnSite":true}`),
		}
		details, err := booking.DecodeDetails()
		assert.NoError(t, err)
		assert.Equal(t, "wedding", details.EventType)
		assert.Equal(t, 80, details.GuestCount)
		assert.True(t, details.PowerOnSite)
	})

	t.Run("malformed blob errors", func(t *testing.T) {
		booking := &Booking{Details: datatypes.JSON(`{`)}
		_, err := booking.DecodeDetails()
		assert.Error(t, err)
	})
}
