package bookingController

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rigbook/config"
	"rigbook/internal/events"
	"rigbook/internal/models"
	"rigbook/internal/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*models.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*models.Booking)}
}

func (r *fakeBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	copied := *booking
	r.bookings[booking.ID] = &copied
	return nil
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	copied := *booking
	return &copied, nil
}

func (r *fakeBookingRepo) GetByApprovalToken(
	ctx context.Context,
	token string,
) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, booking := range r.bookings {
		if booking.ApprovalToken != nil && *booking.ApprovalToken == token {
			copied := *booking
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeBookingRepo) GetBySelectionToken(
	ctx context.Context,
	token string,
) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, booking := range r.bookings {
		if booking.ContractorSelectionToken != nil && *booking.ContractorSelectionToken == token {
			copied := *booking
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeBookingRepo) SetQuoteFields(
	ctx context.Context,
	id uuid.UUID,
	total decimal.Decimal,
	approvalToken, selectionToken *string,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok {
		return errors.New("booking not found")
	}
	booking.QuoteTotal = total
	booking.ApprovalToken = approvalToken
	booking.ContractorSelectionToken = selectionToken
	return nil
}

func (r *fakeBookingRepo) TransitionStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to models.BookingStatus,
	updates map[string]any,
) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !from.CanTransitionTo(to) {
		return false, nil
	}
	booking, ok := r.bookings[id]
	if !ok || booking.Status != from {
		return false, nil
	}
	booking.Status = to
	if at, ok := updates["client_approved_at"].(time.Time); ok {
		booking.ClientApprovedAt = &at
	}
	if at, ok := updates["contractors_notified_at"].(time.Time); ok {
		booking.ContractorsNotifiedAt = &at
	}
	return true, nil
}

func (r *fakeBookingRepo) AssignContractor(
	ctx context.Context,
	bookingID, contractorID uuid.UUID,
	expected models.BookingStatus,
) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[bookingID]
	if !ok || booking.Status != expected {
		return false, nil
	}
	now := time.Now()
	booking.Status = models.BookingAssigned
	booking.AssignedContractorID = &contractorID
	booking.AssignedAt = &now
	return true, nil
}

type fakeApprovalRepo struct {
	mu        sync.Mutex
	approvals map[uuid.UUID]*models.ClientApproval

	// afterGet fires once after the next GetByBookingID returns its snapshot,
	// outside the lock, to interleave a concurrent write into a flow.
	afterGet func()
}

func newFakeApprovalRepo() *fakeApprovalRepo {
	return &fakeApprovalRepo{approvals: make(map[uuid.UUID]*models.ClientApproval)}
}

func (r *fakeApprovalRepo) GetByBookingID(
	ctx context.Context,
	bookingID uuid.UUID,
) (*models.ClientApproval, error) {
	r.mu.Lock()
	var found *models.ClientApproval
	for _, approval := range r.approvals {
		if approval.BookingID == bookingID {
			copied := *approval
			found = &copied
			break
		}
	}
	hook := r.afterGet
	r.afterGet = nil
	r.mu.Unlock()

	if hook != nil {
		hook()
	}
	return found, nil
}

func (r *fakeApprovalRepo) GetByToken(
	ctx context.Context,
	token string,
) (*models.ClientApproval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, approval := range r.approvals {
		if approval.ClientApprovalToken == token {
			copied := *approval
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeApprovalRepo) Create(ctx context.Context, approval *models.ClientApproval) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if approval.ID == uuid.Nil {
		approval.ID = uuid.New()
	}
	copied := *approval
	r.approvals[approval.ID] = &copied
	return nil
}

func (r *fakeApprovalRepo) RotateQuote(
	ctx context.Context,
	id uuid.UUID,
	token string,
	total decimal.Decimal,
	deposit decimal.NullDecimal,
	notes string,
) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	approval, ok := r.approvals[id]
	if !ok || approval.ClientApprovedAt != nil {
		return false, nil
	}
	approval.ClientApprovalToken = token
	approval.AdjustedQuoteTotal = total
	approval.DepositAmount = deposit
	approval.QuoteNotes = notes
	approval.ResendCount++
	return true, nil
}

func (r *fakeApprovalRepo) MarkApproved(
	ctx context.Context,
	id uuid.UUID,
	at time.Time,
) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	approval, ok := r.approvals[id]
	if !ok || approval.ClientApprovedAt != nil {
		return false, nil
	}
	approval.ClientApprovedAt = &at
	return true, nil
}

type sentMail struct {
	to      string
	subject string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp unreachable")
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject})
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type fakeCalendar struct {
	mu      sync.Mutex
	created int
	fail    bool
}

func (c *fakeCalendar) CreateEvent(ctx context.Context, event services.CalendarEvent) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return "", models.ErrUpstreamUnavailable
	}
	c.created++
	return uuid.New().String(), nil
}

func (c *fakeCalendar) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.created
}

type fakeGateway struct {
	payments map[string]*services.PaymentInfo
}

func (g *fakeGateway) GetPayment(
	ctx context.Context,
	paymentID string,
) (*services.PaymentInfo, error) {
	info, ok := g.payments[paymentID]
	if !ok {
		return nil, models.ErrUpstreamUnavailable
	}
	return info, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.EventType
}

func (p *fakePublisher) PublishBookingEvent(
	eventType events.EventType,
	bookingID uuid.UUID,
	data map[string]any,
) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

type fakeReader struct {
	total decimal.Decimal
	err   error
}

func (r *fakeReader) ReadTotal(ctx context.Context, sheetID string) (decimal.Decimal, error) {
	if r.err != nil {
		return decimal.Zero, r.err
	}
	return r.total, nil
}

type testEnv struct {
	controller BookingControllerInterface
	bookings   *fakeBookingRepo
	approvals  *fakeApprovalRepo
	mailer     *fakeMailer
	calendar   *fakeCalendar
	gateway    *fakeGateway
	publisher  *fakePublisher
}

func newTestEnv(reader services.DocumentReader) *testEnv {
	bookings := newFakeBookingRepo()
	approvals := newFakeApprovalRepo()
	mailer := &fakeMailer{}
	calendar := &fakeCalendar{}
	gateway := &fakeGateway{payments: make(map[string]*services.PaymentInfo)}
	publisher := &fakePublisher{}

	cfg := config.Config{
		PublicBaseURL: "https://rigbook.example.com",
		OpsEmail:      "ops@rigbook.example.com",
	}

	controller := New(
		bookings,
		approvals,
		services.NewTokenService(),
		services.NewQuoteSheetService(reader),
		mailer,
		calendar,
		gateway,
		publisher,
		cfg,
	)

	return &testEnv{
		controller: controller,
		bookings:   bookings,
		approvals:  approvals,
		mailer:     mailer,
		calendar:   calendar,
		gateway:    gateway,
		publisher:  publisher,
	}
}

func seedBooking(t *testing.T, env *testEnv, status models.BookingStatus) *models.Booking {
	t.Helper()
	sheetID := "sheet-1"
	booking := &models.Booking{
		QuoteNumber:  "Q-2025-0042",
		ClientName:   "Club Aurora",
		ClientEmail:  "client@example.com",
		Status:       status,
		QuoteTotal:   decimal.NewFromInt(1000),
		QuoteSheetID: &sheetID,
	}
	require.NoError(t, env.bookings.Create(context.Background(), booking))
	return booking
}

func TestSendQuoteDepositComputation(t *testing.T) {
	tests := []struct {
		name           string
		depositPercent decimal.NullDecimal
		wantDeposit    decimal.NullDecimal
		wantAuto       bool
	}{
		{
			name: "fifty percent of 1000 is 500",
			depositPercent: decimal.NullDecimal{
				Valid:   true,
				Decimal: decimal.NewFromInt(50),
			},
			wantDeposit: decimal.NullDecimal{
				Valid:   true,
				Decimal: decimal.NewFromInt(500),
			},
		},
		{
			name: "zero percent stores zero and auto-approves",
			depositPercent: decimal.NullDecimal{
				Valid:   true,
				Decimal: decimal.Zero,
			},
			wantDeposit: decimal.NullDecimal{
				Valid:   true,
				Decimal: decimal.Zero,
			},
			wantAuto: true,
		},
		{
			name:           "absent deposit stays null and does not auto-approve",
			depositPercent: decimal.NullDecimal{},
			wantDeposit:    decimal.NullDecimal{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(&fakeReader{total: decimal.NewFromInt(1000)})
			booking := seedBooking(t, env, models.BookingPending)

			result, err := env.controller.SendQuote(
				context.Background(),
				booking.ID,
				&SendQuoteRequest{DepositPercent: tt.depositPercent},
			)
			require.NoError(t, err)

			assert.Equal(t, tt.wantDeposit.Valid, result.DepositAmount.Valid)
			if tt.wantDeposit.Valid {
				assert.True(
					t,
					tt.wantDeposit.Decimal.Equal(result.DepositAmount.Decimal),
					"deposit %s", result.DepositAmount.Decimal,
				)
			}
			assert.Equal(t, tt.wantAuto, result.AutoApproved)

			stored, err := env.bookings.GetByID(context.Background(), booking.ID)
			require.NoError(t, err)
			if tt.wantAuto {
				assert.Equal(t, models.BookingClientApproved, stored.Status)
			} else {
				assert.Equal(t, models.BookingSentToClient, stored.Status)
			}
		})
	}
}

func TestSendQuoteSheetOverridesCachedTotal(t *testing.T) {
	env := newTestEnv(&fakeReader{total: decimal.NewFromInt(450)})
	booking := seedBooking(t, env, models.BookingPending)

	result, err := env.controller.SendQuote(context.Background(), booking.ID, &SendQuoteRequest{})
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(450).Equal(result.QuoteTotal))

	stored, err := env.bookings.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(450).Equal(stored.QuoteTotal), "cache must be refreshed")
}

func TestSendQuoteSheetFailureFallsBack(t *testing.T) {
	env := newTestEnv(&fakeReader{err: models.ErrUpstreamUnavailable})
	booking := seedBooking(t, env, models.BookingPending)

	override := decimal.NullDecimal{Valid: true, Decimal: decimal.NewFromInt(800)}
	result, err := env.controller.SendQuote(
		context.Background(),
		booking.ID,
		&SendQuoteRequest{AdjustedTotal: override},
	)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(800).Equal(result.QuoteTotal))

	// No override falls through to the cached total.
	env2 := newTestEnv(&fakeReader{err: models.ErrUpstreamUnavailable})
	booking2 := seedBooking(t, env2, models.BookingPending)
	result2, err := env2.controller.SendQuote(context.Background(), booking2.ID, &SendQuoteRequest{})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1000).Equal(result2.QuoteTotal))
}

func TestSendQuoteResendRotatesToken(t *testing.T) {
	env := newTestEnv(&fakeReader{total: decimal.NewFromInt(1000)})
	booking := seedBooking(t, env, models.BookingPending)

	first, err := env.controller.SendQuote(context.Background(), booking.ID, &SendQuoteRequest{})
	require.NoError(t, err)
	assert.False(t, first.Resend)
	assert.Equal(t, 0, first.ResendCount)

	firstApproval, err := env.approvals.GetByBookingID(context.Background(), booking.ID)
	require.NoError(t, err)
	firstToken := firstApproval.ClientApprovalToken

	second, err := env.controller.SendQuote(context.Background(), booking.ID, &SendQuoteRequest{})
	require.NoError(t, err)
	assert.True(t, second.Resend)
	assert.Equal(t, 1, second.ResendCount)

	secondApproval, err := env.approvals.GetByBookingID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.NotEqual(t, firstToken, secondApproval.ClientApprovalToken)

	// The old link must stop resolving.
	stale, err := env.approvals.GetByToken(context.Background(), firstToken)
	require.NoError(t, err)
	assert.Nil(t, stale)
}

func TestSendQuoteResendRaceCannotUndoApproval(t *testing.T) {
	env := newTestEnv(&fakeReader{total: decimal.NewFromInt(1000)})
	booking := seedBooking(t, env, models.BookingPending)

	_, err := env.controller.SendQuote(context.Background(), booking.ID, &SendQuoteRequest{})
	require.NoError(t, err)

	approval, err := env.approvals.GetByBookingID(context.Background(), booking.ID)
	require.NoError(t, err)
	token := approval.ClientApprovalToken

	// The client approves after the resend reads the approval row but before
	// it writes the rotation.
	env.approvals.afterGet = func() {
		result, err := env.controller.ApproveByToken(context.Background(), token)
		require.NoError(t, err)
		require.False(t, result.AlreadyApproved)
	}

	_, err = env.controller.SendQuote(context.Background(), booking.ID, &SendQuoteRequest{})
	assert.ErrorIs(t, err, models.ErrAlreadyConsumed)

	stored, err := env.approvals.GetByBookingID(context.Background(), booking.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ClientApprovedAt, "the in-flight approval must survive the resend")
	assert.Equal(t, token, stored.ClientApprovalToken, "a consumed token must not rotate")

	bookingRow, err := env.bookings.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingClientApproved, bookingRow.Status)
	assert.NotNil(t, bookingRow.ClientApprovedAt)

	// The consumed link replays as already approved, with no second round of
	// side effects.
	replay, err := env.controller.ApproveByToken(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, replay.AlreadyApproved)
	assert.Equal(t, 1, env.calendar.count())
}

func TestSendQuoteStatusGuards(t *testing.T) {
	tests := []struct {
		name   string
		status models.BookingStatus
	}{
		{name: "client approved", status: models.BookingClientApproved},
		{name: "contractors notified", status: models.BookingContractorsNotified},
		{name: "assigned", status: models.BookingAssigned},
		{name: "fully assigned", status: models.BookingFullyAssigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(&fakeReader{total: decimal.NewFromInt(1000)})
			booking := seedBooking(t, env, tt.status)

			_, err := env.controller.SendQuote(
				context.Background(),
				booking.ID,
				&SendQuoteRequest{},
			)
			assert.ErrorIs(t, err, models.ErrConflictingState)
		})
	}
}

func TestSendQuoteNegativeDepositRejected(t *testing.T) {
	env := newTestEnv(&fakeReader{total: decimal.NewFromInt(1000)})
	booking := seedBooking(t, env, models.BookingPending)

	_, err := env.controller.SendQuote(context.Background(), booking.ID, &SendQuoteRequest{
		DepositPercent: decimal.NullDecimal{Valid: true, Decimal: decimal.NewFromInt(-10)},
	})
	assert.ErrorIs(t, err, models.ErrValidationFailure)

	// Nothing was written or sent.
	approval, getErr := env.approvals.GetByBookingID(context.Background(), booking.ID)
	require.NoError(t, getErr)
	assert.Nil(t, approval)
	assert.Equal(t, 0, env.mailer.count())
}

func TestApproveByTokenHappyPath(t *testing.T) {
	env := newTestEnv(&fakeReader{total: decimal.NewFromInt(1000)})
	booking := seedBooking(t, env, models.BookingPending)

	_, err := env.controller.SendQuote(context.Background(), booking.ID, &SendQuoteRequest{})
	require.NoError(t, err)

	approval, err := env.approvals.GetByBookingID(context.Background(), booking.ID)
	require.NoError(t, err)

	mailsBefore := env.mailer.count()

	result, err := env.controller.ApproveByToken(
		context.Background(),
		approval.ClientApprovalToken,
	)
	require.NoError(t, err)
	assert.False(t, result.AlreadyApproved)
	assert.Equal(t, booking.ID, result.BookingID)

	stored, err := env.bookings.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingClientApproved, stored.Status)
	assert.NotNil(t, stored.ClientApprovedAt)

	assert.Equal(t, 1, env.calendar.count())
	assert.Greater(t, env.mailer.count(), mailsBefore)
}

func TestApproveByTokenReplayIsIdempotent(t *testing.T) {
	env := newTestEnv(&fakeReader{total: decimal.NewFromInt(1000)})
	booking := seedBooking(t, env, models.BookingPending)

	_, err := env.controller.SendQuote(context.Background(), booking.ID, &SendQuoteRequest{})
	require.NoError(t, err)

	approval, err := env.approvals.GetByBookingID(context.Background(), booking.ID)
	require.NoError(t, err)

	first, err := env.controller.ApproveByToken(context.Background(), approval.ClientApprovalToken)
	require.NoError(t, err)
	assert.False(t, first.AlreadyApproved)

	calendarAfterFirst := env.calendar.count()
	mailsAfterFirst := env.mailer.count()

	second, err := env.controller.ApproveByToken(context.Background(), approval.ClientApprovalToken)
	require.NoError(t, err)
	assert.True(t, second.AlreadyApproved)

	// No side effect runs twice.
	assert.Equal(t, calendarAfterFirst, env.calendar.count())
	assert.Equal(t, mailsAfterFirst, env.mailer.count())
}

func TestApproveByTokenInvalid(t *testing.T) {
	env := newTestEnv(&fakeReader{total: decimal.NewFromInt(1000)})

	_, err := env.controller.ApproveByToken(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestApproveByTokenConcurrentSingleWinner(t *testing.T) {
	env := newTestEnv(&fakeReader{total: decimal.NewFromInt(1000)})
	booking := seedBooking(t, env, models.BookingPending)

	_, err := env.controller.SendQuote(context.Background(), booking.ID, &SendQuoteRequest{})
	require.NoError(t, err)

	approval, err := env.approvals.GetByBookingID(context.Background(), booking.ID)
	require.NoError(t, err)

	const attempts = 8
	results := make([]*ApprovalResult, attempts)
	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := env.controller.ApproveByToken(
				context.Background(),
				approval.ClientApprovalToken,
			)
			if err == nil {
				results[i] = result
			}
		}(i)
	}
	wg.Wait()

	firstTime := 0
	for _, result := range results {
		require.NotNil(t, result)
		if !result.AlreadyApproved {
			firstTime++
		}
	}
	assert.Equal(t, 1, firstTime, "exactly one request observes the first approval")
	assert.Equal(t, 1, env.calendar.count())
}

func TestSendQuoteAfterApprovalRejected(t *testing.T) {
	env := newTestEnv(&fakeReader{total: decimal.NewFromInt(1000)})
	booking := seedBooking(t, env, models.BookingPending)

	_, err := env.controller.SendQuote(context.Background(), booking.ID, &SendQuoteRequest{})
	require.NoError(t, err)

	approval, err := env.approvals.GetByBookingID(context.Background(), booking.ID)
	require.NoError(t, err)
	_, err = env.controller.ApproveByToken(context.Background(), approval.ClientApprovalToken)
	require.NoError(t, err)

	_, err = env.controller.SendQuote(context.Background(), booking.ID, &SendQuoteRequest{})
	assert.ErrorIs(t, err, models.ErrConflictingState)
}

func TestApproveByPayment(t *testing.T) {
	env := newTestEnv(&fakeReader{total: decimal.NewFromInt(1000)})
	booking := seedBooking(t, env, models.BookingPending)

	_, err := env.controller.SendQuote(context.Background(), booking.ID, &SendQuoteRequest{})
	require.NoError(t, err)

	approval, err := env.approvals.GetByBookingID(context.Background(), booking.ID)
	require.NoError(t, err)

	env.gateway.payments["123"] = &services.PaymentInfo{
		ID:        "123",
		Status:    services.PaymentStatusApproved,
		Reference: approval.ClientApprovalToken,
	}
	env.gateway.payments["456"] = &services.PaymentInfo{
		ID:     "456",
		Status: "pending",
	}

	t.Run("pending payment does not approve", func(t *testing.T) {
		_, err := env.controller.ApproveByPayment(context.Background(), "456")
		assert.ErrorIs(t, err, models.ErrConflictingState)

		stored, err := env.bookings.GetByID(context.Background(), booking.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BookingSentToClient, stored.Status)
	})

	t.Run("approved payment approves via reference token", func(t *testing.T) {
		result, err := env.controller.ApproveByPayment(context.Background(), "123")
		require.NoError(t, err)
		assert.False(t, result.AlreadyApproved)

		stored, err := env.bookings.GetByID(context.Background(), booking.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BookingClientApproved, stored.Status)
	})

	t.Run("replayed callback is idempotent", func(t *testing.T) {
		result, err := env.controller.ApproveByPayment(context.Background(), "123")
		require.NoError(t, err)
		assert.True(t, result.AlreadyApproved)
	})

	t.Run("gateway failure surfaces as upstream error", func(t *testing.T) {
		_, err := env.controller.ApproveByPayment(context.Background(), "999")
		assert.ErrorIs(t, err, models.ErrUpstreamUnavailable)
	})
}

func TestSendQuoteMailFailureDoesNotRollBack(t *testing.T) {
	env := newTestEnv(&fakeReader{total: decimal.NewFromInt(1000)})
	env.mailer.fail = true
	booking := seedBooking(t, env, models.BookingPending)

	result, err := env.controller.SendQuote(context.Background(), booking.ID, &SendQuoteRequest{})
	require.NoError(t, err)
	assert.False(t, result.Resend)
	assert.Equal(t, 0, env.mailer.count())

	stored, err := env.bookings.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingSentToClient, stored.Status)
}
