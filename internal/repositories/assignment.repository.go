package repositories

import (
	"context"
	"errors"
	"time"

	"rigbook/internal/database"
	"rigbook/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssignmentRepository interface {
	CreateBatch(ctx context.Context, assignments []*models.Assignment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error)
	GetByToken(ctx context.Context, token string) (*models.Assignment, error)
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*models.Assignment, error)
	GetPendingByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*models.Assignment, error)
	MarkNotified(ctx context.Context, id uuid.UUID, token string, at time.Time) error

	// RespondIfNotified moves one row to its terminal status, but only while
	// it is still in the notified state. Returns false when another request
	// already responded; callers re-read the row to report the outcome.
	RespondIfNotified(
		ctx context.Context,
		id uuid.UUID,
		status models.AssignmentStatus,
		at time.Time,
	) (bool, error)

	GetUnansweredOlderThan(ctx context.Context, cutoff time.Time) ([]*models.Assignment, error)
}

type assignmentRepository struct {
	db  database.DB
	log logger.Logger
}

func NewAssignmentRepository(db database.DB) AssignmentRepository {
	return &assignmentRepository{
		db:  db,
		log: logger.New("assignmentRepository"),
	}
}

func (r *assignmentRepository) CreateBatch(
	ctx context.Context,
	assignments []*models.Assignment,
) error {
	log := r.log.Function("CreateBatch").TraceFromContext(ctx)

	if len(assignments) == 0 {
		return nil
	}

	if err := r.db.SQLWithContext(ctx).Create(assignments).Error; err != nil {
		return log.Err("failed to create assignments", err, "count", len(assignments))
	}

	log.Info(
		"Assignments created",
		"bookingID", assignments[0].BookingID,
		"count", len(assignments),
	)
	return nil
}

func (r *assignmentRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*models.Assignment, error) {
	log := r.log.Function("GetByID").TraceFromContext(ctx)

	var assignment models.Assignment
	if err := r.db.SQLWithContext(ctx).Where("id = ?", id).First(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get assignment by id", err, "id", id)
	}

	return &assignment, nil
}

func (r *assignmentRepository) GetByToken(
	ctx context.Context,
	token string,
) (*models.Assignment, error) {
	log := r.log.Function("GetByToken").TraceFromContext(ctx)

	if token == "" {
		return nil, nil
	}

	var assignment models.Assignment
	if err := r.db.SQLWithContext(ctx).
		Where("assignment_token = ?", token).
		First(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get assignment by token", err)
	}

	return &assignment, nil
}

func (r *assignmentRepository) GetByBookingID(
	ctx context.Context,
	bookingID uuid.UUID,
) ([]*models.Assignment, error) {
	log := r.log.Function("GetByBookingID").TraceFromContext(ctx)

	var assignments []*models.Assignment
	if err := r.db.SQLWithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&assignments).Error; err != nil {
		return nil, log.Err("failed to get assignments", err, "bookingID", bookingID)
	}

	return assignments, nil
}

func (r *assignmentRepository) GetPendingByBookingID(
	ctx context.Context,
	bookingID uuid.UUID,
) ([]*models.Assignment, error) {
	log := r.log.Function("GetPendingByBookingID").TraceFromContext(ctx)

	var assignments []*models.Assignment
	if err := r.db.SQLWithContext(ctx).
		Where("booking_id = ? AND status = ?", bookingID, models.AssignmentPending).
		Order("created_at ASC").
		Find(&assignments).Error; err != nil {
		return nil, log.Err("failed to get pending assignments", err, "bookingID", bookingID)
	}

	return assignments, nil
}

func (r *assignmentRepository) MarkNotified(
	ctx context.Context,
	id uuid.UUID,
	token string,
	at time.Time,
) error {
	log := r.log.Function("MarkNotified").TraceFromContext(ctx)

	if err := r.db.SQLWithContext(ctx).
		Model(&models.Assignment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":           models.AssignmentNotified,
			"assignment_token": token,
			"notified_at":      at,
		}).Error; err != nil {
		return log.Err("failed to mark assignment notified", err, "id", id)
	}

	return nil
}

func (r *assignmentRepository) RespondIfNotified(
	ctx context.Context,
	id uuid.UUID,
	status models.AssignmentStatus,
	at time.Time,
) (bool, error) {
	log := r.log.Function("RespondIfNotified").TraceFromContext(ctx)

	result := r.db.SQLWithContext(ctx).
		Model(&models.Assignment{}).
		Where("id = ? AND status = ?", id, models.AssignmentNotified).
		Updates(map[string]any{
			"status":       status,
			"responded_at": at,
		})
	if result.Error != nil {
		return false, log.Err(
			"failed to record assignment response",
			result.Error,
			"id", id,
			"status", status,
		)
	}

	if result.RowsAffected == 0 {
		return false, nil
	}

	log.Info("Assignment response recorded", "id", id, "status", status)
	return true, nil
}

func (r *assignmentRepository) GetUnansweredOlderThan(
	ctx context.Context,
	cutoff time.Time,
) ([]*models.Assignment, error) {
	log := r.log.Function("GetUnansweredOlderThan").TraceFromContext(ctx)

	var assignments []*models.Assignment
	if err := r.db.SQLWithContext(ctx).
		Preload("Contractor").
		Preload("Booking").
		Where("status = ? AND notified_at < ?", models.AssignmentNotified, cutoff).
		Find(&assignments).Error; err != nil {
		return nil, log.Err("failed to get unanswered assignments", err)
	}

	return assignments, nil
}
