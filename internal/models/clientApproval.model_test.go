package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestZeroDepositAsymmetry(t *testing.T) {
	t.Run("stored zero counts as zero deposit", func(t *testing.T) {
		approval := &ClientApproval{
			DepositAmount: decimal.NullDecimal{Valid: true, Decimal: decimal.Zero},
		}
		assert.True(t, approval.ZeroDeposit())
	})

	t.Run("absent deposit is not zero deposit", func(t *testing.T) {
		approval := &ClientApproval{}
		assert.False(t, approval.ZeroDeposit())
	})

	t.Run("positive deposit is not zero deposit", func(t *testing.T) {
		approval := &ClientApproval{
			DepositAmount: decimal.NullDecimal{Valid: true, Decimal: decimal.NewFromInt(500)},
		}
		assert.False(t, approval.ZeroDeposit())
	})
}

func TestIsApproved(t *testing.T) {
	approval := &ClientApproval{}
	assert.False(t, approval.IsApproved())

	now := time.Now()
	approval.ClientApprovedAt = &now
	assert.True(t, approval.IsApproved())
}
