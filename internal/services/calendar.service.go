package services

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"rigbook/config"
	"rigbook/internal/models"

	logger "github.com/Bparsons0904/goLogger"
)

// CalendarEvent is the calendar collaborator's request contract.
type CalendarEvent struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Time        time.Time `json:"time"`
}

// Calendar creates events in the crew calendar. The returned id is opaque and
// the workflow never reads it back; a failed create is logged, not retried.
type Calendar interface {
	CreateEvent(ctx context.Context, event CalendarEvent) (string, error)
}

type httpCalendar struct {
	client  *http.Client
	baseURL string
	log     logger.Logger
}

func NewCalendar(config config.Config) Calendar {
	return &httpCalendar{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: config.CalendarServiceURL,
		log:     logger.New("calendar"),
	}
}

type calendarCreateResponse struct {
	ID string `json:"id"`
}

func (c *httpCalendar) CreateEvent(ctx context.Context, event CalendarEvent) (string, error) {
	log := c.log.Function("CreateEvent").TraceFromContext(ctx)

	if c.baseURL == "" {
		return "", log.ErrorWithType(
			models.ErrUpstreamUnavailable,
			"calendar service is not configured",
		)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return "", log.Err("failed to marshal calendar event", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/events",
		bytes.NewReader(payload),
	)
	if err != nil {
		return "", log.Err("failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", log.ErrorWithType(
			models.ErrUpstreamUnavailable,
			"calendar request failed",
			"error", err,
		)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", log.ErrorWithType(
			models.ErrUpstreamUnavailable,
			"calendar returned non-success",
			"status", resp.StatusCode,
		)
	}

	var body calendarCreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", log.Err("failed to decode calendar response", err)
	}

	log.Info("Calendar event created", "eventID", body.ID, "summary", event.Summary)
	return body.ID, nil
}
