package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"rigbook/config"
	"rigbook/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rigbook/internal/services"
)

type stubAssignmentRepo struct {
	unanswered []*models.Assignment
}

func (r *stubAssignmentRepo) CreateBatch(ctx context.Context, assignments []*models.Assignment) error {
	return nil
}

func (r *stubAssignmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	return nil, nil
}

func (r *stubAssignmentRepo) GetByToken(ctx context.Context, token string) (*models.Assignment, error) {
	return nil, nil
}

func (r *stubAssignmentRepo) GetByBookingID(
	ctx context.Context,
	bookingID uuid.UUID,
) ([]*models.Assignment, error) {
	return nil, nil
}

func (r *stubAssignmentRepo) GetPendingByBookingID(
	ctx context.Context,
	bookingID uuid.UUID,
) ([]*models.Assignment, error) {
	return nil, nil
}

func (r *stubAssignmentRepo) MarkNotified(
	ctx context.Context,
	id uuid.UUID,
	token string,
	at time.Time,
) error {
	return nil
}

func (r *stubAssignmentRepo) RespondIfNotified(
	ctx context.Context,
	id uuid.UUID,
	status models.AssignmentStatus,
	at time.Time,
) (bool, error) {
	return false, nil
}

func (r *stubAssignmentRepo) GetUnansweredOlderThan(
	ctx context.Context,
	cutoff time.Time,
) ([]*models.Assignment, error) {
	return r.unanswered, nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return nil
}

func staleAssignment(withToken, withRelations bool) *models.Assignment {
	notifiedAt := time.Now().Add(-72 * time.Hour)
	assignment := &models.Assignment{
		BookingID:    uuid.New(),
		ContractorID: uuid.New(),
		Status:       models.AssignmentNotified,
		PayAmount:    decimal.NewFromInt(240),
		NotifiedAt:   &notifiedAt,
	}
	assignment.ID = uuid.New()
	if withToken {
		token := "stale-token-" + uuid.New().String()
		assignment.AssignmentToken = &token
	}
	if withRelations {
		assignment.Contractor = &models.Contractor{
			Name:  "Marta",
			Email: "marta@example.com",
		}
		assignment.Booking = &models.Booking{QuoteNumber: "Q-2025-0042"}
	}
	return assignment
}

func TestAssignmentReminderExecute(t *testing.T) {
	repo := &stubAssignmentRepo{
		unanswered: []*models.Assignment{
			staleAssignment(true, true),
			staleAssignment(true, true),
			// Rows the job cannot build a link or address for are skipped.
			staleAssignment(false, true),
			staleAssignment(true, false),
		},
	}
	mailer := &recordingMailer{}
	job := NewAssignmentReminderJob(
		repo,
		mailer,
		config.Config{PublicBaseURL: "https://rigbook.example.com"},
		services.Hourly,
	)

	require.NoError(t, job.Execute(context.Background()))
	assert.Len(t, mailer.sent, 2)
	assert.Equal(t, "AssignmentReminder", job.Name())
	assert.Equal(t, services.Hourly, job.Schedule())
}

func TestAssignmentReminderNoStaleRows(t *testing.T) {
	mailer := &recordingMailer{}
	job := NewAssignmentReminderJob(
		&stubAssignmentRepo{},
		mailer,
		config.Config{PublicBaseURL: "https://rigbook.example.com"},
		services.Hourly,
	)

	require.NoError(t, job.Execute(context.Background()))
	assert.Empty(t, mailer.sent)
}
