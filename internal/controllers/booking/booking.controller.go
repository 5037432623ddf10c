package bookingController

import (
	"context"
	"fmt"
	"time"

	"rigbook/config"
	"rigbook/internal/events"
	"rigbook/internal/models"
	"rigbook/internal/repositories"
	"rigbook/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LifecyclePublisher is the slice of the event bus the controller needs.
type LifecyclePublisher interface {
	PublishBookingEvent(eventType events.EventType, bookingID uuid.UUID, data map[string]any) error
}

type BookingControllerInterface interface {
	SendQuote(ctx context.Context, bookingID uuid.UUID, req *SendQuoteRequest) (*SendQuoteResult, error)
	ApproveByToken(ctx context.Context, token string) (*ApprovalResult, error)
	ApproveByPayment(ctx context.Context, paymentID string) (*ApprovalResult, error)
}

type BookingController struct {
	bookingRepo  repositories.BookingRepository
	approvalRepo repositories.ClientApprovalRepository
	tokens       *services.TokenService
	quoteSheet   *services.QuoteSheetService
	mailer       services.Mailer
	calendar     services.Calendar
	gateway      services.PaymentGateway
	publisher    LifecyclePublisher
	config       config.Config
	log          logger.Logger
}

func New(
	bookingRepo repositories.BookingRepository,
	approvalRepo repositories.ClientApprovalRepository,
	tokens *services.TokenService,
	quoteSheet *services.QuoteSheetService,
	mailer services.Mailer,
	calendar services.Calendar,
	gateway services.PaymentGateway,
	publisher LifecyclePublisher,
	config config.Config,
) BookingControllerInterface {
	return &BookingController{
		bookingRepo:  bookingRepo,
		approvalRepo: approvalRepo,
		tokens:       tokens,
		quoteSheet:   quoteSheet,
		mailer:       mailer,
		calendar:     calendar,
		gateway:      gateway,
		publisher:    publisher,
		config:       config,
		log:          logger.New("bookingController"),
	}
}

type SendQuoteRequest struct {
	QuoteNotes     string              `json:"quoteNotes"`
	DepositPercent decimal.NullDecimal `json:"depositPercent"`
	AdjustedTotal  decimal.NullDecimal `json:"adjustedTotal"`
}

type SendQuoteResult struct {
	BookingID     uuid.UUID           `json:"bookingId"`
	QuoteNumber   string              `json:"quoteNumber"`
	QuoteTotal    decimal.Decimal     `json:"quoteTotal"`
	DepositAmount decimal.NullDecimal `json:"depositAmount"`
	Resend        bool                `json:"resend"`
	ResendCount   int                 `json:"resendCount"`
	AutoApproved  bool                `json:"autoApproved"`
}

type ApprovalResult struct {
	BookingID       uuid.UUID `json:"bookingId"`
	QuoteNumber     string    `json:"quoteNumber"`
	AlreadyApproved bool      `json:"alreadyApproved"`
}

// SendQuote moves a booking into sent_to_client, minting a fresh client
// approval token. Repeat calls are resends: the approval row is updated in
// place and the previous token stops resolving. A deposit that computes to
// exactly zero auto-advances the booking to client_approved; an absent
// deposit never does.
func (c *BookingController) SendQuote(
	ctx context.Context,
	bookingID uuid.UUID,
	req *SendQuoteRequest,
) (*SendQuoteResult, error) {
	log := c.log.Function("SendQuote").TraceFromContext(ctx)

	if req == nil {
		return nil, log.ErrorWithType(models.ErrValidationFailure, "request body is required")
	}
	if req.DepositPercent.Valid && req.DepositPercent.Decimal.IsNegative() {
		return nil, log.ErrorWithType(
			models.ErrValidationFailure,
			"deposit percent cannot be negative",
		)
	}
	if req.AdjustedTotal.Valid && req.AdjustedTotal.Decimal.IsNegative() {
		return nil, log.ErrorWithType(
			models.ErrValidationFailure,
			"adjusted total cannot be negative",
		)
	}

	booking, err := c.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, log.ErrorWithType(
			models.ErrValidationFailure,
			"booking not found",
			"bookingID", bookingID,
		)
	}

	if !booking.Status.CanTransitionTo(models.BookingSentToClient) {
		return nil, log.ErrorWithType(
			models.ErrConflictingState,
			"booking cannot be sent in its current status",
			"bookingID", bookingID,
			"status", booking.Status,
		)
	}

	// The sheet wins over everything whenever it is reachable; the admin
	// override and the cached total are fallbacks, resolved fresh per send.
	total := c.quoteSheet.ResolveTotal(ctx, booking, req.AdjustedTotal)

	deposit := decimal.NullDecimal{}
	if req.DepositPercent.Valid {
		deposit = decimal.NullDecimal{
			Valid:   true,
			Decimal: total.Mul(req.DepositPercent.Decimal).Div(decimal.NewFromInt(100)).Round(2),
		}
	}

	token, err := c.tokens.Generate()
	if err != nil {
		return nil, err
	}

	approval, err := c.approvalRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if approval != nil && approval.IsApproved() {
		return nil, log.ErrorWithType(
			models.ErrAlreadyConsumed,
			"client already approved this quote",
			"bookingID", bookingID,
		)
	}

	resend := approval != nil
	if approval == nil {
		approval = &models.ClientApproval{
			BookingID:           bookingID,
			ClientApprovalToken: token,
			AdjustedQuoteTotal:  total,
			DepositAmount:       deposit,
			QuoteNotes:          req.QuoteNotes,
		}
		if err := c.approvalRepo.Create(ctx, approval); err != nil {
			return nil, err
		}
	} else {
		// Rotation overwrites the token, invalidating any previously mailed
		// link. The write is conditional on the approval still being
		// unconsumed, so a concurrent approval is never clobbered by the
		// stale row read above.
		rotated, err := c.approvalRepo.RotateQuote(
			ctx,
			approval.ID,
			token,
			total,
			deposit,
			req.QuoteNotes,
		)
		if err != nil {
			return nil, err
		}
		if !rotated {
			return nil, log.ErrorWithType(
				models.ErrAlreadyConsumed,
				"client approved while the resend was in flight",
				"bookingID", bookingID,
			)
		}
		approval.ClientApprovalToken = token
		approval.AdjustedQuoteTotal = total
		approval.DepositAmount = deposit
		approval.QuoteNotes = req.QuoteNotes
		approval.ResendCount++
	}

	if err := c.ensureBookingTokens(ctx, booking); err != nil {
		return nil, err
	}

	booking.QuoteTotal = total
	if err := c.bookingRepo.SetQuoteFields(
		ctx,
		booking.ID,
		total,
		booking.ApprovalToken,
		booking.ContractorSelectionToken,
	); err != nil {
		return nil, err
	}

	if booking.Status == models.BookingPending {
		if _, err := c.bookingRepo.TransitionStatus(
			ctx,
			booking.ID,
			models.BookingPending,
			models.BookingSentToClient,
			nil,
		); err != nil {
			return nil, err
		}
		booking.Status = models.BookingSentToClient
	}

	// State is committed; dispatch failures from here on are logged only.
	c.sendQuoteEmail(ctx, booking, approval, token)

	if err := c.publisher.PublishBookingEvent(events.QUOTE_SENT, booking.ID, map[string]any{
		"quoteNumber": booking.QuoteNumber,
		"resend":      resend,
	}); err != nil {
		log.Warn("failed to publish quote sent event", "bookingID", booking.ID, "error", err)
	}

	result := &SendQuoteResult{
		BookingID:     booking.ID,
		QuoteNumber:   booking.QuoteNumber,
		QuoteTotal:    total,
		DepositAmount: deposit,
		Resend:        resend,
		ResendCount:   approval.ResendCount,
	}

	// Deposit of exactly zero: nothing for the client to pay, approve on
	// their behalf right away. A NULL deposit means none was configured and
	// must not trigger this.
	if approval.ZeroDeposit() {
		log.Info("Zero deposit, auto-approving", "bookingID", booking.ID)
		if _, err := c.approve(ctx, approval, booking); err != nil {
			return nil, err
		}
		result.AutoApproved = true
	}

	return result, nil
}

// ApproveByToken consumes a client approval token. Replays are harmless: the
// outcome is derived from the approval row as it stands, and a consumed token
// reports already-approved without re-running any side effect.
func (c *BookingController) ApproveByToken(
	ctx context.Context,
	token string,
) (*ApprovalResult, error) {
	log := c.log.Function("ApproveByToken").TraceFromContext(ctx)

	approval, err := c.approvalRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if approval == nil {
		return nil, log.ErrorWithType(models.ErrInvalidToken, "approval token did not resolve")
	}

	booking, err := c.bookingRepo.GetByID(ctx, approval.BookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, log.Error("approval row has no booking", "approvalID", approval.ID)
	}

	if approval.IsApproved() {
		return &ApprovalResult{
			BookingID:       booking.ID,
			QuoteNumber:     booking.QuoteNumber,
			AlreadyApproved: true,
		}, nil
	}

	return c.approve(ctx, approval, booking)
}

// ApproveByPayment proxies the client-approval transition off a gateway
// payment whose external reference carries the approval token. The payment
// must be in approved status; anything else is a conflicting state, not an
// approval.
func (c *BookingController) ApproveByPayment(
	ctx context.Context,
	paymentID string,
) (*ApprovalResult, error) {
	log := c.log.Function("ApproveByPayment").TraceFromContext(ctx)

	if paymentID == "" {
		return nil, log.ErrorWithType(models.ErrValidationFailure, "payment id is required")
	}

	info, err := c.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if info.Status != services.PaymentStatusApproved {
		return nil, log.ErrorWithType(
			models.ErrConflictingState,
			"payment is not approved",
			"paymentID", paymentID,
			"status", info.Status,
		)
	}

	if info.Reference == "" {
		return nil, log.ErrorWithType(
			models.ErrInvalidToken,
			"payment carries no approval reference",
			"paymentID", paymentID,
		)
	}

	return c.ApproveByToken(ctx, info.Reference)
}

// approve applies the sent_to_client -> client_approved transition. The
// approval timestamp is stamped with a conditional write so that two racing
// requests cannot both observe a first-time approval.
func (c *BookingController) approve(
	ctx context.Context,
	approval *models.ClientApproval,
	booking *models.Booking,
) (*ApprovalResult, error) {
	log := c.log.Function("approve").TraceFromContext(ctx)

	now := time.Now()
	stamped, err := c.approvalRepo.MarkApproved(ctx, approval.ID, now)
	if err != nil {
		return nil, err
	}
	if !stamped {
		return &ApprovalResult{
			BookingID:       booking.ID,
			QuoteNumber:     booking.QuoteNumber,
			AlreadyApproved: true,
		}, nil
	}

	applied, err := c.bookingRepo.TransitionStatus(
		ctx,
		booking.ID,
		models.BookingSentToClient,
		models.BookingClientApproved,
		map[string]any{"client_approved_at": now},
	)
	if err != nil {
		return nil, err
	}
	if !applied {
		log.Warn(
			"approval stamped but booking status guard did not match",
			"bookingID", booking.ID,
			"status", booking.Status,
		)
	}

	// Committed; everything below is best-effort dispatch.
	c.requestCalendarEvent(ctx, booking)
	c.sendApprovalNotices(ctx, booking, approval)

	if err := c.publisher.PublishBookingEvent(events.CLIENT_APPROVED, booking.ID, map[string]any{
		"quoteNumber": booking.QuoteNumber,
	}); err != nil {
		log.Warn("failed to publish client approved event", "bookingID", booking.ID, "error", err)
	}

	return &ApprovalResult{
		BookingID:   booking.ID,
		QuoteNumber: booking.QuoteNumber,
	}, nil
}

// ensureBookingTokens backfills the booking-scoped capability tokens on first
// send, so the contractor-selection and legacy direct-accept links can be
// built later without another minting step.
func (c *BookingController) ensureBookingTokens(
	ctx context.Context,
	booking *models.Booking,
) error {
	if booking.ApprovalToken == nil {
		token, err := c.tokens.Generate()
		if err != nil {
			return err
		}
		booking.ApprovalToken = &token
	}

	if booking.ContractorSelectionToken == nil {
		token, err := c.tokens.Generate()
		if err != nil {
			return err
		}
		booking.ContractorSelectionToken = &token
	}

	return nil
}

func (c *BookingController) sendQuoteEmail(
	ctx context.Context,
	booking *models.Booking,
	approval *models.ClientApproval,
	token string,
) {
	log := c.log.Function("sendQuoteEmail").TraceFromContext(ctx)

	approveLink := fmt.Sprintf("%s/approvals/%s", c.config.PublicBaseURL, token)

	body := fmt.Sprintf(
		"Hi %s,\n\nYour quote %s comes to %s.\n",
		booking.ClientName,
		booking.QuoteNumber,
		approval.AdjustedQuoteTotal.StringFixed(2),
	)
	if approval.DepositAmount.Valid && !approval.DepositAmount.Decimal.IsZero() {
		body += fmt.Sprintf(
			"A deposit of %s is due on approval.\n",
			approval.DepositAmount.Decimal.StringFixed(2),
		)
	}
	if approval.QuoteNotes != "" {
		body += "\n" + approval.QuoteNotes + "\n"
	}
	body += fmt.Sprintf("\nApprove here: %s\n", approveLink)

	subject := fmt.Sprintf("Quote %s", booking.QuoteNumber)
	if err := c.mailer.Send(ctx, booking.ClientEmail, subject, body); err != nil {
		log.Warn("failed to send quote email", "bookingID", booking.ID, "error", err)
	}
}

func (c *BookingController) requestCalendarEvent(ctx context.Context, booking *models.Booking) {
	log := c.log.Function("requestCalendarEvent").TraceFromContext(ctx)

	eventTime := time.Now()
	if booking.EventDate != nil {
		eventTime = *booking.EventDate
	}

	description := fmt.Sprintf("Client: %s", booking.ClientName)
	if details, err := booking.DecodeDetails(); err != nil {
		log.Warn("failed to decode booking details", "bookingID", booking.ID, "error", err)
	} else if details.EventType != "" {
		description = fmt.Sprintf(
			"Client: %s\nEvent: %s, %d guests",
			booking.ClientName,
			details.EventType,
			details.GuestCount,
		)
	}

	eventID, err := c.calendar.CreateEvent(ctx, services.CalendarEvent{
		Summary:     fmt.Sprintf("Booking %s at %s", booking.QuoteNumber, booking.Venue),
		Description: description,
		Time:        eventTime,
	})
	if err != nil {
		log.Warn("failed to create calendar event", "bookingID", booking.ID, "error", err)
		return
	}

	log.Info("Calendar event requested", "bookingID", booking.ID, "eventID", eventID)
}

func (c *BookingController) sendApprovalNotices(
	ctx context.Context,
	booking *models.Booking,
	approval *models.ClientApproval,
) {
	log := c.log.Function("sendApprovalNotices").TraceFromContext(ctx)

	clientBody := fmt.Sprintf(
		"Hi %s,\n\nThanks for approving quote %s. We'll be in touch with crew details.\n",
		booking.ClientName,
		booking.QuoteNumber,
	)
	if err := c.mailer.Send(
		ctx,
		booking.ClientEmail,
		fmt.Sprintf("Quote %s approved", booking.QuoteNumber),
		clientBody,
	); err != nil {
		log.Warn("failed to send client approval email", "bookingID", booking.ID, "error", err)
	}

	if c.config.OpsEmail == "" {
		return
	}

	opsBody := fmt.Sprintf(
		"Quote %s was approved by %s for %s. Build the crew roster.\n",
		booking.QuoteNumber,
		booking.ClientName,
		approval.AdjustedQuoteTotal.StringFixed(2),
	)
	if err := c.mailer.Send(
		ctx,
		c.config.OpsEmail,
		fmt.Sprintf("Approved: %s", booking.QuoteNumber),
		opsBody,
	); err != nil {
		log.Warn("failed to send ops approval email", "bookingID", booking.ID, "error", err)
	}
}
