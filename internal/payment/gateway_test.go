package payment_test

import (
	"testing"

	"flight-booking/internal/payment"
	apperrors "flight-booking/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxnRef(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		ref := payment.NewTxnRef(42)
		id, err := payment.OrderIDFromTxnRef(ref)
		require.NoError(t, err)
		assert.Equal(t, 42, id)
	})

	t.Run("PlainID", func(t *testing.T) {
		id, err := payment.OrderIDFromTxnRef("7")
		require.NoError(t, err)
		assert.Equal(t, 7, id)
	})

	t.Run("Garbage", func(t *testing.T) {
		for _, ref := range []string{"", "_123", "abc_123", "-1_9"} {
			_, err := payment.OrderIDFromTxnRef(ref)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput, "ref %q", ref)
		}
	})
}

func TestRegistry(t *testing.T) {
	momo := payment.NewMoMoGateway(testMoMoConfig(), nil)
	vnpay := payment.NewVNPayGateway(testVNPayConfig())
	registry := payment.NewRegistry(momo, vnpay)

	t.Run("Known", func(t *testing.T) {
		g, err := registry.Get(payment.ProviderMoMo)
		require.NoError(t, err)
		assert.Equal(t, payment.ProviderMoMo, g.Provider())

		g, err = registry.Get(payment.ProviderVNPay)
		require.NoError(t, err)
		assert.Equal(t, payment.ProviderVNPay, g.Provider())
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := registry.Get("PayPal")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}
