package repositories

import (
	"context"
	"errors"
	"time"

	"rigbook/internal/database"
	"rigbook/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	GetByApprovalToken(ctx context.Context, token string) (*models.Booking, error)
	GetBySelectionToken(ctx context.Context, token string) (*models.Booking, error)

	// SetQuoteFields writes the quote total and capability token columns and
	// nothing else, so a send can never regress a status transition that
	// landed after the caller read the row.
	SetQuoteFields(
		ctx context.Context,
		id uuid.UUID,
		total decimal.Decimal,
		approvalToken, selectionToken *string,
	) error

	// TransitionStatus applies a guarded status move as a single conditional
	// update: the write only lands if the move is a legal graph edge and the
	// row still holds the expected prior status. Returns false otherwise.
	TransitionStatus(
		ctx context.Context,
		id uuid.UUID,
		from, to models.BookingStatus,
		updates map[string]any,
	) (bool, error)

	// AssignContractor is the first-responder-wins compare-and-swap. It sets
	// status, assigned_contractor_id and assigned_at only while the booking
	// still holds the expected pre-assignment status; zero affected rows means
	// the caller lost the race.
	AssignContractor(
		ctx context.Context,
		bookingID, contractorID uuid.UUID,
		expected models.BookingStatus,
	) (bool, error)
}

type bookingRepository struct {
	db  database.DB
	log logger.Logger
}

func NewBookingRepository(db database.DB) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: logger.New("bookingRepository"),
	}
}

func (r *bookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	log := r.log.Function("Create").TraceFromContext(ctx)

	if err := r.db.SQLWithContext(ctx).Create(booking).Error; err != nil {
		return log.Err("failed to create booking", err, "quoteNumber", booking.QuoteNumber)
	}

	log.Info("Booking created", "id", booking.ID, "quoteNumber", booking.QuoteNumber)
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	log := r.log.Function("GetByID").TraceFromContext(ctx)

	var booking models.Booking
	if err := r.db.SQLWithContext(ctx).Where("id = ?", id).First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get booking by id", err, "id", id)
	}

	return &booking, nil
}

func (r *bookingRepository) GetByApprovalToken(
	ctx context.Context,
	token string,
) (*models.Booking, error) {
	return r.getByTokenColumn(ctx, "approval_token", token)
}

func (r *bookingRepository) GetBySelectionToken(
	ctx context.Context,
	token string,
) (*models.Booking, error) {
	return r.getByTokenColumn(ctx, "contractor_selection_token", token)
}

// getByTokenColumn resolves a booking by one of its capability token columns.
// Not-found is returned as (nil, nil); the caller decides how to report it.
func (r *bookingRepository) getByTokenColumn(
	ctx context.Context,
	column, token string,
) (*models.Booking, error) {
	log := r.log.Function("getByTokenColumn").TraceFromContext(ctx)

	if token == "" {
		return nil, nil
	}

	var booking models.Booking
	if err := r.db.SQLWithContext(ctx).
		Where(column+" = ?", token).
		First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get booking by token", err, "column", column)
	}

	return &booking, nil
}

func (r *bookingRepository) SetQuoteFields(
	ctx context.Context,
	id uuid.UUID,
	total decimal.Decimal,
	approvalToken, selectionToken *string,
) error {
	log := r.log.Function("SetQuoteFields").TraceFromContext(ctx)

	if err := r.db.SQLWithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"quote_total":                total,
			"approval_token":             approvalToken,
			"contractor_selection_token": selectionToken,
		}).Error; err != nil {
		return log.Err("failed to update quote fields", err, "id", id)
	}

	return nil
}

func (r *bookingRepository) TransitionStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to models.BookingStatus,
	updates map[string]any,
) (bool, error) {
	log := r.log.Function("TransitionStatus").TraceFromContext(ctx)

	if !from.CanTransitionTo(to) {
		log.Warn("transition is not a legal status edge", "from", from, "to", to)
		return false, nil
	}

	values := map[string]any{"status": to}
	for column, value := range updates {
		values[column] = value
	}

	result := r.db.SQLWithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	if result.Error != nil {
		return false, log.Err(
			"failed to transition booking status",
			result.Error,
			"id", id,
			"from", from,
			"to", to,
		)
	}

	if result.RowsAffected == 0 {
		log.Info("Booking status guard did not match", "id", id, "from", from, "to", to)
		return false, nil
	}

	log.Info("Booking status transitioned", "id", id, "from", from, "to", to)
	return true, nil
}

func (r *bookingRepository) AssignContractor(
	ctx context.Context,
	bookingID, contractorID uuid.UUID,
	expected models.BookingStatus,
) (bool, error) {
	log := r.log.Function("AssignContractor").TraceFromContext(ctx)

	now := time.Now()
	result := r.db.SQLWithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", bookingID, expected).
		Updates(map[string]any{
			"status":                 models.BookingAssigned,
			"assigned_contractor_id": contractorID,
			"assigned_at":            now,
		})
	if result.Error != nil {
		return false, log.Err(
			"failed to assign contractor",
			result.Error,
			"bookingID", bookingID,
			"contractorID", contractorID,
		)
	}

	if result.RowsAffected == 0 {
		return false, nil
	}

	log.Info("Contractor assigned", "bookingID", bookingID, "contractorID", contractorID)
	return true, nil
}
