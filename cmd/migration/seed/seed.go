package seed

import (
	"time"

	"rigbook/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Seed loads a small development data set: a contractor pool and one booking
// ready for the quote flow.
func Seed(db *gorm.DB, log logger.Logger) error {
	log = log.Function("Seed")

	contractors := []models.Contractor{
		{
			Name:     "Marta Villanueva",
			Email:    "marta@example.com",
			Phone:    "+54 11 5555 0101",
			Skills:   pq.StringArray{"sound", "foh"},
			IsActive: true,
		},
		{
			Name:     "Diego Pereyra",
			Email:    "diego@example.com",
			Phone:    "+54 11 5555 0102",
			Skills:   pq.StringArray{"lighting", "rigging"},
			IsActive: true,
		},
		{
			Name:     "Lucia Ferrari",
			Email:    "lucia@example.com",
			Phone:    "+54 11 5555 0103",
			Skills:   pq.StringArray{"video", "led walls"},
			IsActive: true,
		},
	}

	for i := range contractors {
		if err := db.Create(&contractors[i]).Error; err != nil {
			return log.Err("failed to seed contractor", err, "email", contractors[i].Email)
		}
	}
	log.Info("Seeded contractors", "count", len(contractors))

	eventDate := time.Now().AddDate(0, 1, 0)
	booking := models.Booking{
		QuoteNumber: "Q-2025-0001",
		ClientName:  "Club Aurora",
		ClientEmail: "events@club-aurora.example.com",
		Status:      models.BookingPending,
		QuoteTotal:  decimal.NewFromInt(1000),
		EventDate:   &eventDate,
		Venue:       "Salon Aurora, Palermo",
		EquipmentList: pq.StringArray{
			"PA system 2x tops + 2x subs",
			"4x moving heads",
			"DJ booth",
		},
		Details: datatypes.JSON(
			`{"eventType":"corporate party","guestCount":120,"powerOnSite":true}`,
		),
	}

	if err := db.Create(&booking).Error; err != nil {
		return log.Err("failed to seed booking", err, "quoteNumber", booking.QuoteNumber)
	}
	log.Info("Seeded booking", "quoteNumber", booking.QuoteNumber)

	return nil
}
