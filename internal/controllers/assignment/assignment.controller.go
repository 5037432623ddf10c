package assignmentController

import (
	"context"
	"fmt"
	"strings"
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

const (
	ActionAccept  = "accept"
	ActionDecline = "decline"
)

// LifecyclePublisher is the slice of the event bus the controller needs.
type LifecyclePublisher interface {
	PublishBookingEvent(eventType events.EventType, bookingID uuid.UUID, data map[string]any) error
}

type AssignmentControllerInterface interface {
	RosterContext(ctx context.Context, token string) (*RosterContextResult, error)
	BuildRoster(ctx context.Context, bookingID uuid.UUID, req *BuildRosterRequest) (*RosterResult, error)
	NotifyRoster(ctx context.Context, bookingID uuid.UUID) (*NotifyResult, error)
	Respond(ctx context.Context, token, action string) (*RespondResult, error)
	DirectAccept(ctx context.Context, token string, contractorID uuid.UUID) (*DirectAcceptResult, error)
}

type AssignmentController struct {
	bookingRepo    repositories.BookingRepository
	assignmentRepo repositories.AssignmentRepository
	contractorRepo repositories.ContractorRepository
	tokens         *services.TokenService
	mailer         services.Mailer
	calendar       services.Calendar
	publisher      LifecyclePublisher
	config         config.Config
	log            logger.Logger
}

func New(
	bookingRepo repositories.BookingRepository,
	assignmentRepo repositories.AssignmentRepository,
	contractorRepo repositories.ContractorRepository,
	tokens *services.TokenService,
	mailer services.Mailer,
	calendar services.Calendar,
	publisher LifecyclePublisher,
	config config.Config,
) AssignmentControllerInterface {
	return &AssignmentController{
		bookingRepo:    bookingRepo,
		assignmentRepo: assignmentRepo,
		contractorRepo: contractorRepo,
		tokens:         tokens,
		mailer:         mailer,
		calendar:       calendar,
		publisher:      publisher,
		config:         config,
		log:            logger.New("assignmentController"),
	}
}

type RosterItem struct {
	ContractorID     uuid.UUID       `json:"contractorId"`
	HourlyRate       decimal.Decimal `json:"hourlyRate"`
	EstimatedHours   decimal.Decimal `json:"estimatedHours"`
	TasksDescription string          `json:"tasksDescription"`
}

type BuildRosterRequest struct {
	Items []RosterItem `json:"items"`
}

type RosterResult struct {
	BookingID uuid.UUID            `json:"bookingId"`
	Created   []*models.Assignment `json:"created"`
}

type NotifyResult struct {
	BookingID     uuid.UUID `json:"bookingId"`
	NotifiedCount int       `json:"notifiedCount"`
}

type RespondResult struct {
	BookingID        uuid.UUID               `json:"bookingId"`
	AssignmentID     uuid.UUID               `json:"assignmentId"`
	Status           models.AssignmentStatus `json:"status"`
	AlreadyResponded bool                    `json:"alreadyResponded"`
	FullyAssigned    bool                    `json:"fullyAssigned"`
}

type DirectAcceptResult struct {
	BookingID    uuid.UUID `json:"bookingId"`
	ContractorID uuid.UUID `json:"contractorId"`
	Won          bool      `json:"won"`
}

type RosterContextResult struct {
	Booking     *models.Booking      `json:"booking"`
	Contractors []*models.Contractor `json:"contractors"`
	Assignments []*models.Assignment `json:"assignments"`
}

// RosterContext resolves the selection token into everything the roster
// screen shows: the booking, the active contractor pool and any rows already
// created. The token is read-scoped; it mutates nothing.
func (c *AssignmentController) RosterContext(
	ctx context.Context,
	token string,
) (*RosterContextResult, error) {
	log := c.log.Function("RosterContext").TraceFromContext(ctx)

	booking, err := c.bookingRepo.GetBySelectionToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, log.ErrorWithType(models.ErrInvalidToken, "selection token did not resolve")
	}

	if booking.Status != models.BookingClientApproved &&
		booking.Status != models.BookingContractorsNotified {
		return nil, log.ErrorWithType(
			models.ErrConflictingState,
			"booking is not ready for crew work",
			"bookingID", booking.ID,
			"status", booking.Status,
		)
	}

	contractors, err := c.contractorRepo.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	assignments, err := c.assignmentRepo.GetByBookingID(ctx, booking.ID)
	if err != nil {
		return nil, err
	}

	return &RosterContextResult{
		Booking:     booking,
		Contractors: contractors,
		Assignments: assignments,
	}, nil
}

// BuildRoster records the crew picks for an approved booking as pending
// assignment rows. Pay is computed here, rate times hours, so the notify and
// respond paths never recompute it.
func (c *AssignmentController) BuildRoster(
	ctx context.Context,
	bookingID uuid.UUID,
	req *BuildRosterRequest,
) (*RosterResult, error) {
	log := c.log.Function("BuildRoster").TraceFromContext(ctx)

	if req == nil || len(req.Items) == 0 {
		return nil, log.ErrorWithType(
			models.ErrValidationFailure,
			"roster must contain at least one contractor",
		)
	}

	contractorIDs := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		if item.ContractorID == uuid.Nil {
			return nil, log.ErrorWithType(models.ErrValidationFailure, "contractor id is required")
		}
		if item.HourlyRate.IsNegative() || item.EstimatedHours.IsNegative() {
			return nil, log.ErrorWithType(
				models.ErrValidationFailure,
				"rates and hours cannot be negative",
				"contractorID", item.ContractorID,
			)
		}
		contractorIDs = append(contractorIDs, item.ContractorID)
	}

	booking, err := c.requireBookingForRoster(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	contractors, err := c.contractorRepo.GetByIDs(ctx, contractorIDs)
	if err != nil {
		return nil, err
	}
	if len(contractors) != len(contractorIDs) {
		return nil, log.ErrorWithType(
			models.ErrValidationFailure,
			"roster references unknown contractors",
			"requested", len(contractorIDs),
			"found", len(contractors),
		)
	}

	assignments := make([]*models.Assignment, 0, len(req.Items))
	for _, item := range req.Items {
		assignments = append(assignments, &models.Assignment{
			BookingID:        booking.ID,
			ContractorID:     item.ContractorID,
			Status:           models.AssignmentPending,
			HourlyRate:       item.HourlyRate,
			EstimatedHours:   item.EstimatedHours,
			PayAmount:        item.HourlyRate.Mul(item.EstimatedHours).Round(2),
			TasksDescription: item.TasksDescription,
		})
	}

	if err := c.assignmentRepo.CreateBatch(ctx, assignments); err != nil {
		return nil, err
	}

	return &RosterResult{BookingID: booking.ID, Created: assignments}, nil
}

// NotifyRoster mints a token per pending row, stamps it notified, and mails
// the contractor. Each row is committed before its mail goes out, and one
// failed send never blocks the rest of the roster. The booking moves to
// contractors_notified once; repeat calls pick up rows added since.
func (c *AssignmentController) NotifyRoster(
	ctx context.Context,
	bookingID uuid.UUID,
) (*NotifyResult, error) {
	log := c.log.Function("NotifyRoster").TraceFromContext(ctx)

	booking, err := c.requireBookingForRoster(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	pending, err := c.assignmentRepo.GetPendingByBookingID(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		existing, err := c.assignmentRepo.GetByBookingID(ctx, booking.ID)
		if err != nil {
			return nil, err
		}
		if len(existing) == 0 {
			return nil, log.ErrorWithType(
				models.ErrConflictingState,
				"no roster to notify",
				"bookingID", booking.ID,
			)
		}

		// Every row already went out; a re-run has nothing to do.
		log.Info("No pending assignments, nothing to notify", "bookingID", booking.ID)
		return &NotifyResult{BookingID: booking.ID, NotifiedCount: 0}, nil
	}

	contractorIDs := make([]uuid.UUID, 0, len(pending))
	for _, assignment := range pending {
		contractorIDs = append(contractorIDs, assignment.ContractorID)
	}
	contractors, err := c.contractorRepo.GetByIDs(ctx, contractorIDs)
	if err != nil {
		return nil, err
	}
	contractorsByID := make(map[uuid.UUID]*models.Contractor, len(contractors))
	for _, contractor := range contractors {
		contractorsByID[contractor.ID] = contractor
	}

	notified := 0
	now := time.Now()
	for _, assignment := range pending {
		token, err := c.tokens.Generate()
		if err != nil {
			return nil, err
		}

		if err := c.assignmentRepo.MarkNotified(ctx, assignment.ID, token, now); err != nil {
			return nil, err
		}
		notified++

		contractor, ok := contractorsByID[assignment.ContractorID]
		if !ok {
			log.Warn(
				"assignment references missing contractor, skipping mail",
				"assignmentID", assignment.ID,
				"contractorID", assignment.ContractorID,
			)
			continue
		}

		// Row is committed; a bounced mail is a human-resend problem.
		c.sendOfferEmail(ctx, booking, assignment, contractor, token)
	}

	if _, err := c.bookingRepo.TransitionStatus(
		ctx,
		booking.ID,
		models.BookingClientApproved,
		models.BookingContractorsNotified,
		map[string]any{"contractors_notified_at": now},
	); err != nil {
		return nil, err
	}

	if err := c.publisher.PublishBookingEvent(
		events.CONTRACTORS_NOTIFIED,
		booking.ID,
		map[string]any{"notifiedCount": notified},
	); err != nil {
		log.Warn("failed to publish notify event", "bookingID", booking.ID, "error", err)
	}

	return &NotifyResult{BookingID: booking.ID, NotifiedCount: notified}, nil
}

// Respond consumes a per-assignment token. The terminal write is conditional
// on the row still being in notified state, so two racing responses resolve
// to one winner; the loser and any replay get the row's standing outcome back
// with no side effects re-run. An accept that completes the roster advances
// the booking to fully_assigned.
func (c *AssignmentController) Respond(
	ctx context.Context,
	token, action string,
) (*RespondResult, error) {
	log := c.log.Function("Respond").TraceFromContext(ctx)

	var target models.AssignmentStatus
	switch action {
	case ActionAccept:
		target = models.AssignmentAccepted
	case ActionDecline:
		target = models.AssignmentDeclined
	default:
		return nil, log.ErrorWithType(
			models.ErrValidationFailure,
			"action must be accept or decline",
			"action", action,
		)
	}

	assignment, err := c.assignmentRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, log.ErrorWithType(models.ErrInvalidToken, "assignment token did not resolve")
	}

	if assignment.Status.IsTerminal() {
		return &RespondResult{
			BookingID:        assignment.BookingID,
			AssignmentID:     assignment.ID,
			Status:           assignment.Status,
			AlreadyResponded: true,
		}, nil
	}

	if assignment.Status != models.AssignmentNotified {
		return nil, log.ErrorWithType(
			models.ErrConflictingState,
			"assignment is not awaiting a response",
			"assignmentID", assignment.ID,
			"status", assignment.Status,
		)
	}

	now := time.Now()
	applied, err := c.assignmentRepo.RespondIfNotified(ctx, assignment.ID, target, now)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Lost a race; the row decides what actually happened.
		current, err := c.assignmentRepo.GetByID(ctx, assignment.ID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, log.Error("assignment vanished mid-response", "id", assignment.ID)
		}
		return &RespondResult{
			BookingID:        current.BookingID,
			AssignmentID:     current.ID,
			Status:           current.Status,
			AlreadyResponded: true,
		}, nil
	}

	if err := c.publisher.PublishBookingEvent(
		events.ASSIGNMENT_RESPONDED,
		assignment.BookingID,
		map[string]any{"assignmentId": assignment.ID, "status": target},
	); err != nil {
		log.Warn("failed to publish response event", "assignmentID", assignment.ID, "error", err)
	}

	result := &RespondResult{
		BookingID:    assignment.BookingID,
		AssignmentID: assignment.ID,
		Status:       target,
	}

	booking, err := c.bookingRepo.GetByID(ctx, assignment.BookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, log.Error("assignment row has no booking", "assignmentID", assignment.ID)
	}

	switch target {
	case models.AssignmentAccepted:
		fullyAssigned, err := c.checkRosterComplete(ctx, booking)
		if err != nil {
			return nil, err
		}
		result.FullyAssigned = fullyAssigned
	case models.AssignmentDeclined:
		c.sendDeclineNotice(ctx, booking, assignment)
	}

	return result, nil
}

// DirectAccept is the legacy broadcast path: every notified contractor holds
// the same booking-scoped link, and the conditional assignment write picks
// exactly one winner. Losers get Won=false and trigger nothing.
func (c *AssignmentController) DirectAccept(
	ctx context.Context,
	token string,
	contractorID uuid.UUID,
) (*DirectAcceptResult, error) {
	log := c.log.Function("DirectAccept").TraceFromContext(ctx)

	if contractorID == uuid.Nil {
		return nil, log.ErrorWithType(models.ErrValidationFailure, "contractor id is required")
	}

	booking, err := c.bookingRepo.GetByApprovalToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, log.ErrorWithType(models.ErrInvalidToken, "accept token did not resolve")
	}

	contractor, err := c.contractorRepo.GetByID(ctx, contractorID)
	if err != nil {
		return nil, err
	}
	if contractor == nil {
		return nil, log.ErrorWithType(
			models.ErrValidationFailure,
			"contractor not found",
			"contractorID", contractorID,
		)
	}

	won, err := c.bookingRepo.AssignContractor(
		ctx,
		booking.ID,
		contractorID,
		models.BookingContractorsNotified,
	)
	if err != nil {
		return nil, err
	}

	if !won {
		current, err := c.bookingRepo.GetByID(ctx, booking.ID)
		if err != nil {
			return nil, err
		}
		if current != nil &&
			(current.Status == models.BookingAssigned ||
				current.Status == models.BookingFullyAssigned) {
			return &DirectAcceptResult{
				BookingID:    booking.ID,
				ContractorID: contractorID,
				Won:          false,
			}, nil
		}
		return nil, log.ErrorWithType(
			models.ErrConflictingState,
			"booking is not open for direct accept",
			"bookingID", booking.ID,
		)
	}

	c.requestJobCalendarEvent(ctx, booking, contractor)
	c.sendWinnerNotices(ctx, booking, contractor)

	if err := c.publisher.PublishBookingEvent(events.BOOKING_ASSIGNED, booking.ID, map[string]any{
		"contractorId": contractorID,
	}); err != nil {
		log.Warn("failed to publish assigned event", "bookingID", booking.ID, "error", err)
	}

	return &DirectAcceptResult{
		BookingID:    booking.ID,
		ContractorID: contractorID,
		Won:          true,
	}, nil
}

// checkRosterComplete re-reads the whole roster and, when every row has
// accepted, advances the booking. The status guard makes the advance
// exactly-once even if two final accepts land together; only the request that
// wins the transition sends the summary mail.
func (c *AssignmentController) checkRosterComplete(
	ctx context.Context,
	booking *models.Booking,
) (bool, error) {
	log := c.log.Function("checkRosterComplete").TraceFromContext(ctx)

	roster, err := c.assignmentRepo.GetByBookingID(ctx, booking.ID)
	if err != nil {
		return false, err
	}
	if !models.RosterFullyAccepted(roster) {
		return false, nil
	}

	applied, err := c.bookingRepo.TransitionStatus(
		ctx,
		booking.ID,
		models.BookingContractorsNotified,
		models.BookingFullyAssigned,
		nil,
	)
	if err != nil {
		return false, err
	}
	if !applied {
		return true, nil
	}

	c.sendRosterCompleteNotice(ctx, booking, roster)

	if err := c.publisher.PublishBookingEvent(
		events.BOOKING_FULLY_ASSIGNED,
		booking.ID,
		map[string]any{"rosterSize": len(roster)},
	); err != nil {
		log.Warn("failed to publish fully assigned event", "bookingID", booking.ID, "error", err)
	}

	return true, nil
}

func (c *AssignmentController) requireBookingForRoster(
	ctx context.Context,
	bookingID uuid.UUID,
) (*models.Booking, error) {
	log := c.log.Function("requireBookingForRoster").TraceFromContext(ctx)

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

	if booking.Status != models.BookingClientApproved &&
		booking.Status != models.BookingContractorsNotified {
		return nil, log.ErrorWithType(
			models.ErrConflictingState,
			"booking is not ready for crew work",
			"bookingID", bookingID,
			"status", booking.Status,
		)
	}

	return booking, nil
}

func (c *AssignmentController) sendOfferEmail(
	ctx context.Context,
	booking *models.Booking,
	assignment *models.Assignment,
	contractor *models.Contractor,
	token string,
) {
	log := c.log.Function("sendOfferEmail").TraceFromContext(ctx)

	acceptLink := fmt.Sprintf(
		"%s/assignments/respond?token=%s&action=%s",
		c.config.PublicBaseURL, token, ActionAccept,
	)
	declineLink := fmt.Sprintf(
		"%s/assignments/respond?token=%s&action=%s",
		c.config.PublicBaseURL, token, ActionDecline,
	)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Hi %s,\n\nYou're offered a slot on booking %s", contractor.Name, booking.QuoteNumber)
	if booking.Venue != "" {
		fmt.Fprintf(&sb, " at %s", booking.Venue)
	}
	if booking.EventDate != nil {
		fmt.Fprintf(&sb, " on %s", booking.EventDate.Format("Mon, 02 Jan 2006"))
	}
	sb.WriteString(".\n")
	if assignment.TasksDescription != "" {
		fmt.Fprintf(&sb, "\nTasks: %s\n", assignment.TasksDescription)
	}
	fmt.Fprintf(
		&sb,
		"Pay: %s (%s/h, est. %sh)\n",
		assignment.PayAmount.StringFixed(2),
		assignment.HourlyRate.StringFixed(2),
		assignment.EstimatedHours.String(),
	)
	if len(booking.EquipmentList) > 0 {
		fmt.Fprintf(&sb, "Equipment: %s\n", strings.Join(booking.EquipmentList, ", "))
	}
	fmt.Fprintf(&sb, "\nAccept: %s\nDecline: %s\n", acceptLink, declineLink)

	subject := fmt.Sprintf("Crew offer: %s", booking.QuoteNumber)
	if err := c.mailer.Send(ctx, contractor.Email, subject, sb.String()); err != nil {
		log.Warn(
			"failed to send offer email",
			"assignmentID", assignment.ID,
			"contractorID", contractor.ID,
			"error", err,
		)
	}
}

func (c *AssignmentController) sendDeclineNotice(
	ctx context.Context,
	booking *models.Booking,
	assignment *models.Assignment,
) {
	log := c.log.Function("sendDeclineNotice").TraceFromContext(ctx)

	if c.config.OpsEmail == "" {
		return
	}

	body := fmt.Sprintf(
		"A contractor declined their slot on booking %s. Find a replacement.\n\nTasks: %s\n",
		booking.QuoteNumber,
		assignment.TasksDescription,
	)
	subject := fmt.Sprintf("Replacement needed: %s", booking.QuoteNumber)
	if err := c.mailer.Send(ctx, c.config.OpsEmail, subject, body); err != nil {
		log.Warn("failed to send decline notice", "bookingID", booking.ID, "error", err)
	}
}

func (c *AssignmentController) sendRosterCompleteNotice(
	ctx context.Context,
	booking *models.Booking,
	roster []*models.Assignment,
) {
	log := c.log.Function("sendRosterCompleteNotice").TraceFromContext(ctx)

	if c.config.OpsEmail == "" {
		return
	}

	total := decimal.Zero
	for _, assignment := range roster {
		total = total.Add(assignment.PayAmount)
	}

	body := fmt.Sprintf(
		"All %d contractors accepted their slots on booking %s.\nTotal crew pay: %s\n",
		len(roster),
		booking.QuoteNumber,
		total.StringFixed(2),
	)
	subject := fmt.Sprintf("Crew confirmed: %s", booking.QuoteNumber)
	if err := c.mailer.Send(ctx, c.config.OpsEmail, subject, body); err != nil {
		log.Warn("failed to send roster complete notice", "bookingID", booking.ID, "error", err)
	}
}

func (c *AssignmentController) requestJobCalendarEvent(
	ctx context.Context,
	booking *models.Booking,
	contractor *models.Contractor,
) {
	log := c.log.Function("requestJobCalendarEvent").TraceFromContext(ctx)

	eventTime := time.Now()
	if booking.EventDate != nil {
		eventTime = *booking.EventDate
	}

	eventID, err := c.calendar.CreateEvent(ctx, services.CalendarEvent{
		Summary:     fmt.Sprintf("Job %s: %s", booking.QuoteNumber, contractor.Name),
		Description: fmt.Sprintf("Contractor %s took booking %s", contractor.Name, booking.QuoteNumber),
		Time:        eventTime,
	})
	if err != nil {
		log.Warn("failed to create job calendar event", "bookingID", booking.ID, "error", err)
		return
	}

	log.Info("Job calendar event requested", "bookingID", booking.ID, "eventID", eventID)
}

func (c *AssignmentController) sendWinnerNotices(
	ctx context.Context,
	booking *models.Booking,
	contractor *models.Contractor,
) {
	log := c.log.Function("sendWinnerNotices").TraceFromContext(ctx)

	body := fmt.Sprintf(
		"Hi %s,\n\nYou've got the job on booking %s. Details to follow from the office.\n",
		contractor.Name,
		booking.QuoteNumber,
	)
	subject := fmt.Sprintf("Job confirmed: %s", booking.QuoteNumber)
	if err := c.mailer.Send(ctx, contractor.Email, subject, body); err != nil {
		log.Warn("failed to send winner email", "bookingID", booking.ID, "error", err)
	}

	if c.config.OpsEmail == "" {
		return
	}

	opsBody := fmt.Sprintf(
		"%s (%s) took booking %s.\n",
		contractor.Name,
		contractor.Email,
		booking.QuoteNumber,
	)
	if err := c.mailer.Send(
		ctx,
		c.config.OpsEmail,
		fmt.Sprintf("Assigned: %s", booking.QuoteNumber),
		opsBody,
	); err != nil {
		log.Warn("failed to send ops assignment notice", "bookingID", booking.ID, "error", err)
	}
}
