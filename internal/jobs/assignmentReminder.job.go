package jobs

import (
	"context"
	"fmt"
	"time"

	"rigbook/config"
	"rigbook/internal/models"
	"rigbook/internal/repositories"
	"rigbook/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

// ReminderAge is how long an offer may sit unanswered before the contractor
// gets a nudge.
const ReminderAge = 48 * time.Hour

// AssignmentReminderJob re-mails contractors whose offers have gone
// unanswered. It only reads the roster; it never mutates workflow state, so a
// duplicate run at worst duplicates a nudge.
type AssignmentReminderJob struct {
	assignmentRepo repositories.AssignmentRepository
	mailer         services.Mailer
	config         config.Config
	log            logger.Logger
	schedule       services.Schedule
}

func NewAssignmentReminderJob(
	assignmentRepo repositories.AssignmentRepository,
	mailer services.Mailer,
	config config.Config,
	schedule services.Schedule,
) *AssignmentReminderJob {
	log := logger.New("assignmentReminderJob")
	log.Info("Creating new assignment reminder job", "schedule", schedule)

	return &AssignmentReminderJob{
		assignmentRepo: assignmentRepo,
		mailer:         mailer,
		config:         config,
		log:            log,
		schedule:       schedule,
	}
}

func (j *AssignmentReminderJob) Name() string {
	return "AssignmentReminder"
}

func (j *AssignmentReminderJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	cutoff := time.Now().Add(-ReminderAge)
	stale, err := j.assignmentRepo.GetUnansweredOlderThan(ctx, cutoff)
	if err != nil {
		return log.Err("failed to load unanswered assignments", err)
	}

	if len(stale) == 0 {
		log.Info("No unanswered assignments past cutoff")
		return nil
	}

	sent := 0
	for _, assignment := range stale {
		if assignment.Contractor == nil || assignment.Booking == nil {
			log.Warn("unanswered assignment missing relations", "assignmentID", assignment.ID)
			continue
		}
		if assignment.AssignmentToken == nil {
			log.Warn("unanswered assignment has no token", "assignmentID", assignment.ID)
			continue
		}

		j.sendReminder(ctx, assignment)
		sent++
	}

	log.Info("Assignment reminders dispatched", "stale", len(stale), "sent", sent)
	return nil
}

func (j *AssignmentReminderJob) Schedule() services.Schedule {
	return j.schedule
}

func (j *AssignmentReminderJob) sendReminder(ctx context.Context, assignment *models.Assignment) {
	log := j.log.Function("sendReminder")

	booking := assignment.Booking
	contractor := assignment.Contractor

	respondLink := fmt.Sprintf(
		"%s/assignments/respond?token=%s",
		j.config.PublicBaseURL,
		*assignment.AssignmentToken,
	)

	body := fmt.Sprintf(
		"Hi %s,\n\nYour offer on booking %s is still waiting for an answer.\n\nRespond here: %s\n",
		contractor.Name,
		booking.QuoteNumber,
		respondLink,
	)
	subject := fmt.Sprintf("Reminder: crew offer %s", booking.QuoteNumber)

	if err := j.mailer.Send(ctx, contractor.Email, subject, body); err != nil {
		log.Warn(
			"failed to send reminder",
			"assignmentID", assignment.ID,
			"contractorID", contractor.ID,
			"error", err,
		)
	}
}
