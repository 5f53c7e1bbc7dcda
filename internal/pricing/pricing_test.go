package pricing_test

import (
	"testing"

	"flight-booking/internal/pricing"
	apperrors "flight-booking/pkg/app_errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuote(t *testing.T) {
	t.Run("AdultsOnly", func(t *testing.T) {
		total, err := pricing.Quote(decimal.NewFromInt(100), 2, 0)
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.NewFromInt(200)), "got %s", total)
	})

	t.Run("AdultsAndChildren", func(t *testing.T) {
		// base 100, 2 adults + 1 child -> 100*2 + 100*0.5*1 = 250
		total, err := pricing.Quote(decimal.NewFromInt(100), 2, 1)
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.NewFromInt(250)), "got %s", total)
	})

	t.Run("Deterministic", func(t *testing.T) {
		base := decimal.NewFromFloat(123.45)
		first, err := pricing.Quote(base, 3, 2)
		require.NoError(t, err)
		second, err := pricing.Quote(base, 3, 2)
		require.NoError(t, err)
		assert.True(t, first.Equal(second))
	})

	t.Run("FractionalBase", func(t *testing.T) {
		// decimal arithmetic: 99.99*1 + 99.99*0.5*1 = 149.985
		total, err := pricing.Quote(decimal.NewFromFloat(99.99), 1, 1)
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.NewFromFloat(149.985)), "got %s", total)
	})

	t.Run("NoAdult", func(t *testing.T) {
		_, err := pricing.Quote(decimal.NewFromInt(100), 0, 1)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("NegativeChildren", func(t *testing.T) {
		_, err := pricing.Quote(decimal.NewFromInt(100), 1, -1)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("NegativeBase", func(t *testing.T) {
		_, err := pricing.Quote(decimal.NewFromInt(-1), 1, 0)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}
