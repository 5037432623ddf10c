package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"rigbook/config"
	"rigbook/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/shopspring/decimal"
)

// DocumentReader reads the computed total from an externally editable quote
// sheet. The sheet is the system of record for price adjustments made outside
// the application.
type DocumentReader interface {
	ReadTotal(ctx context.Context, sheetID string) (decimal.Decimal, error)
}

type QuoteSheetService struct {
	reader DocumentReader
	log    logger.Logger
}

func NewQuoteSheetService(reader DocumentReader) *QuoteSheetService {
	return &QuoteSheetService{
		reader: reader,
		log:    logger.New("QuoteSheetService"),
	}
}

// ResolveTotal returns the authoritative amount for a booking at the moment a
// quote or approval record is produced. Resolution order: live sheet read when
// linked and positive, then the explicit override, then the cached total. The
// order is re-applied on every (re)generation and never cached across resends.
func (s *QuoteSheetService) ResolveTotal(
	ctx context.Context,
	booking *models.Booking,
	override decimal.NullDecimal,
) decimal.Decimal {
	log := s.log.Function("ResolveTotal").TraceFromContext(ctx)

	if booking.QuoteSheetID != nil && *booking.QuoteSheetID != "" {
		total, err := s.reader.ReadTotal(ctx, *booking.QuoteSheetID)
		if err != nil {
			log.Warn(
				"quote sheet read failed, falling back",
				"bookingID", booking.ID,
				"sheetID", *booking.QuoteSheetID,
				"error", err,
			)
		} else if total.IsPositive() {
			log.Info("Quote total resolved from sheet", "bookingID", booking.ID, "total", total)
			return total
		}
	}

	if override.Valid {
		return override.Decimal
	}

	return booking.QuoteTotal
}

// sheetDocumentReader fetches the computed total over the sheet service's JSON
// contract: GET <base>/sheets/<id>/total -> {"total": 450.00}.
type sheetDocumentReader struct {
	client  *http.Client
	baseURL string
	apiKey  string
	log     logger.Logger
}

func NewSheetDocumentReader(config config.Config) DocumentReader {
	return &sheetDocumentReader{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: config.SheetServiceURL,
		apiKey:  config.SheetServiceAPIKey,
		log:     logger.New("sheetDocumentReader"),
	}
}

type sheetTotalResponse struct {
	Total decimal.Decimal `json:"total"`
}

func (r *sheetDocumentReader) ReadTotal(
	ctx context.Context,
	sheetID string,
) (decimal.Decimal, error) {
	log := r.log.Function("ReadTotal").TraceFromContext(ctx)

	if r.baseURL == "" {
		return decimal.Zero, log.ErrorWithType(
			models.ErrUpstreamUnavailable,
			"sheet service is not configured",
		)
	}

	url := fmt.Sprintf("%s/sheets/%s/total", r.baseURL, sheetID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, log.Err("failed to create request", err, "sheetID", sheetID)
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return decimal.Zero, log.ErrorWithType(
			models.ErrUpstreamUnavailable,
			"sheet service request failed",
			"sheetID", sheetID,
			"error", err,
		)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, log.ErrorWithType(
			models.ErrUpstreamUnavailable,
			"sheet service returned non-200",
			"sheetID", sheetID,
			"status", resp.StatusCode,
		)
	}

	var body sheetTotalResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, log.Err("failed to decode sheet total", err, "sheetID", sheetID)
	}

	return body.Total, nil
}
