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

type ClientApprovalRepository interface {
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*models.ClientApproval, error)
	GetByToken(ctx context.Context, token string) (*models.ClientApproval, error)
	Create(ctx context.Context, approval *models.ClientApproval) error

	// RotateQuote replaces the token and quote terms for a resend, but only
	// while the approval is still unconsumed. Returns false when the client
	// approved after the caller read the row.
	RotateQuote(
		ctx context.Context,
		id uuid.UUID,
		token string,
		total decimal.Decimal,
		deposit decimal.NullDecimal,
		notes string,
	) (bool, error)

	// MarkApproved stamps client_approved_at, but only on a row that has not
	// been stamped yet. Returns false when the approval already happened.
	MarkApproved(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
}

type clientApprovalRepository struct {
	db  database.DB
	log logger.Logger
}

func NewClientApprovalRepository(db database.DB) ClientApprovalRepository {
	return &clientApprovalRepository{
		db:  db,
		log: logger.New("clientApprovalRepository"),
	}
}

func (r *clientApprovalRepository) GetByBookingID(
	ctx context.Context,
	bookingID uuid.UUID,
) (*models.ClientApproval, error) {
	log := r.log.Function("GetByBookingID").TraceFromContext(ctx)

	var approval models.ClientApproval
	if err := r.db.SQLWithContext(ctx).
		Where("booking_id = ?", bookingID).
		First(&approval).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get client approval", err, "bookingID", bookingID)
	}

	return &approval, nil
}

func (r *clientApprovalRepository) GetByToken(
	ctx context.Context,
	token string,
) (*models.ClientApproval, error) {
	log := r.log.Function("GetByToken").TraceFromContext(ctx)

	if token == "" {
		return nil, nil
	}

	var approval models.ClientApproval
	if err := r.db.SQLWithContext(ctx).
		Where("client_approval_token = ?", token).
		First(&approval).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get client approval by token", err)
	}

	return &approval, nil
}

func (r *clientApprovalRepository) Create(
	ctx context.Context,
	approval *models.ClientApproval,
) error {
	log := r.log.Function("Create").TraceFromContext(ctx)

	if err := r.db.SQLWithContext(ctx).Create(approval).Error; err != nil {
		return log.Err("failed to create client approval", err, "bookingID", approval.BookingID)
	}

	log.Info("Client approval created", "id", approval.ID, "bookingID", approval.BookingID)
	return nil
}

func (r *clientApprovalRepository) RotateQuote(
	ctx context.Context,
	id uuid.UUID,
	token string,
	total decimal.Decimal,
	deposit decimal.NullDecimal,
	notes string,
) (bool, error) {
	log := r.log.Function("RotateQuote").TraceFromContext(ctx)

	result := r.db.SQLWithContext(ctx).
		Model(&models.ClientApproval{}).
		Where("id = ? AND client_approved_at IS NULL", id).
		Updates(map[string]any{
			"client_approval_token": token,
			"adjusted_quote_total":  total,
			"deposit_amount":        deposit,
			"quote_notes":           notes,
			"resend_count":          gorm.Expr("resend_count + 1"),
		})
	if result.Error != nil {
		return false, log.Err("failed to rotate client approval", result.Error, "id", id)
	}

	if result.RowsAffected == 0 {
		return false, nil
	}

	log.Info("Client approval token rotated", "id", id)
	return true, nil
}

func (r *clientApprovalRepository) MarkApproved(
	ctx context.Context,
	id uuid.UUID,
	at time.Time,
) (bool, error) {
	log := r.log.Function("MarkApproved").TraceFromContext(ctx)

	result := r.db.SQLWithContext(ctx).
		Model(&models.ClientApproval{}).
		Where("id = ? AND client_approved_at IS NULL", id).
		Update("client_approved_at", at)
	if result.Error != nil {
		return false, log.Err("failed to mark client approval", result.Error, "id", id)
	}

	if result.RowsAffected == 0 {
		return false, nil
	}

	log.Info("Client approval recorded", "id", id)
	return true, nil
}
