package services

import (
	"context"
	"testing"

	"rigbook/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type stubReader struct {
	total decimal.Decimal
	err   error
	calls int
}

func (r *stubReader) ReadTotal(ctx context.Context, sheetID string) (decimal.Decimal, error) {
	r.calls++
	if r.err != nil {
		return decimal.Zero, r.err
	}
	return r.total, nil
}

func TestResolveTotal(t *testing.T) {
	sheetID := "sheet-1"

	tests := []struct {
		name     string
		reader   *stubReader
		booking  *models.Booking
		override decimal.NullDecimal
		want     decimal.Decimal
	}{
		{
			name:   "live sheet wins over cache and override",
			reader: &stubReader{total: decimal.NewFromInt(450)},
			booking: &models.Booking{
				QuoteSheetID: &sheetID,
				QuoteTotal:   decimal.NewFromInt(1000),
			},
			override: decimal.NullDecimal{Valid: true, Decimal: decimal.NewFromInt(800)},
			want:     decimal.NewFromInt(450),
		},
		{
			name:   "failed read falls back to override",
			reader: &stubReader{err: models.ErrUpstreamUnavailable},
			booking: &models.Booking{
				QuoteSheetID: &sheetID,
				QuoteTotal:   decimal.NewFromInt(1000),
			},
			override: decimal.NullDecimal{Valid: true, Decimal: decimal.NewFromInt(800)},
			want:     decimal.NewFromInt(800),
		},
		{
			name:   "failed read without override falls back to cached total",
			reader: &stubReader{err: models.ErrUpstreamUnavailable},
			booking: &models.Booking{
				QuoteSheetID: &sheetID,
				QuoteTotal:   decimal.NewFromInt(1000),
			},
			want: decimal.NewFromInt(1000),
		},
		{
			name:   "non-positive sheet total is ignored",
			reader: &stubReader{total: decimal.Zero},
			booking: &models.Booking{
				QuoteSheetID: &sheetID,
				QuoteTotal:   decimal.NewFromInt(1000),
			},
			want: decimal.NewFromInt(1000),
		},
		{
			name:    "no sheet linked uses override",
			reader:  &stubReader{total: decimal.NewFromInt(450)},
			booking: &models.Booking{QuoteTotal: decimal.NewFromInt(1000)},
			override: decimal.NullDecimal{
				Valid:   true,
				Decimal: decimal.NewFromInt(800),
			},
			want: decimal.NewFromInt(800),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewQuoteSheetService(tt.reader)
			got := service.ResolveTotal(context.Background(), tt.booking, tt.override)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestResolveTotalReadsLivePerCall(t *testing.T) {
	sheetID := "sheet-1"
	reader := &stubReader{total: decimal.NewFromInt(450)}
	service := NewQuoteSheetService(reader)
	booking := &models.Booking{QuoteSheetID: &sheetID, QuoteTotal: decimal.NewFromInt(1000)}

	service.ResolveTotal(context.Background(), booking, decimal.NullDecimal{})
	service.ResolveTotal(context.Background(), booking, decimal.NullDecimal{})

	// Resends must hit the sheet again, never reuse a previous resolution.
	assert.Equal(t, 2, reader.calls)
}
