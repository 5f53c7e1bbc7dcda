package payment_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"flight-booking/config"
	"flight-booking/internal/payment"
	apperrors "flight-booking/pkg/app_errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMoMoConfig() config.MoMoConfig {
	return config.MoMoConfig{
		PartnerCode: "MOMOTEST",
		AccessKey:   "access-key",
		SecretKey:   "secret-key",
		Endpoint:    "https://test-payment.momo.vn/v2/gateway/api/create",
		RedirectURL: "https://example.com/payment/return",
		IPNURL:      "https://example.com/api/payments/momo/ipn",
	}
}

func momoSign(secret, raw string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestMoMoCreatePayment(t *testing.T) {
	cfg := testMoMoConfig()

	t.Run("Success", func(t *testing.T) {
		var received map[string]interface{}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"resultCode": 0,
				"message":    "success",
				"payUrl":     "https://test-payment.momo.vn/pay/abc",
			})
		}))
		defer srv.Close()

		cfg := cfg
		cfg.Endpoint = srv.URL
		g := payment.NewMoMoGateway(cfg, srv.Client())

		result, err := g.CreatePayment(context.Background(), payment.CreatePaymentRequest{
			OrderID:   15,
			Amount:    decimal.NewFromInt(250),
			OrderInfo: "Flight ticket order #15",
		})
		require.NoError(t, err)
		assert.Equal(t, "https://test-payment.momo.vn/pay/abc", result.PayURL)
		assert.True(t, strings.HasPrefix(result.TxnRef, "15_"), "ref %q", result.TxnRef)

		// request was signed over the canonical field order
		raw := fmt.Sprintf(
			"accessKey=%s&amount=%s&extraData=&ipnUrl=%s&orderId=%s&orderInfo=%s&partnerCode=%s&redirectUrl=%s&requestId=%s&requestType=captureWallet",
			cfg.AccessKey, received["amount"], cfg.IPNURL, received["orderId"],
			received["orderInfo"], cfg.PartnerCode, cfg.RedirectURL, received["requestId"],
		)
		assert.Equal(t, momoSign(cfg.SecretKey, raw), received["signature"])
		assert.Equal(t, "2500000", received["amount"])
	})

	t.Run("GatewayRejects", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"resultCode": 41, "message": "duplicate order"})
		}))
		defer srv.Close()

		cfg := cfg
		cfg.Endpoint = srv.URL
		g := payment.NewMoMoGateway(cfg, srv.Client())

		_, err := g.CreatePayment(context.Background(), payment.CreatePaymentRequest{
			OrderID: 15,
			Amount:  decimal.NewFromInt(250),
		})
		assert.ErrorIs(t, err, apperrors.ErrGatewayUnavailable)
	})
}

func TestMoMoVerifyIPN(t *testing.T) {
	cfg := testMoMoConfig()
	g := payment.NewMoMoGateway(cfg, nil)

	newParams := func() map[string]string {
		params := map[string]string{
			"partnerCode":  cfg.PartnerCode,
			"orderId":      "15_1700000000",
			"requestId":    "req-1",
			"amount":       "2500000",
			"orderInfo":    "Flight ticket order #15",
			"orderType":    "momo_wallet",
			"transId":      "99887766",
			"resultCode":   "0",
			"message":      "Successful.",
			"payType":      "qr",
			"responseTime": "1700000100",
			"extraData":    "",
		}
		raw := fmt.Sprintf(
			"accessKey=%s&amount=%s&extraData=%s&message=%s&orderId=%s&orderInfo=%s&orderType=%s&partnerCode=%s&payType=%s&requestId=%s&responseTime=%s&resultCode=%s&transId=%s",
			cfg.AccessKey, params["amount"], params["extraData"], params["message"],
			params["orderId"], params["orderInfo"], params["orderType"], params["partnerCode"],
			params["payType"], params["requestId"], params["responseTime"],
			params["resultCode"], params["transId"],
		)
		params["signature"] = momoSign(cfg.SecretKey, raw)
		return params
	}

	t.Run("Valid", func(t *testing.T) {
		result, err := g.VerifyIPN(newParams())
		require.NoError(t, err)
		assert.Equal(t, 15, result.OrderID)
		assert.True(t, result.Success)
	})

	t.Run("FailedPayment", func(t *testing.T) {
		params := newParams()
		params["resultCode"] = "1006"
		raw := fmt.Sprintf(
			"accessKey=%s&amount=%s&extraData=%s&message=%s&orderId=%s&orderInfo=%s&orderType=%s&partnerCode=%s&payType=%s&requestId=%s&responseTime=%s&resultCode=%s&transId=%s",
			cfg.AccessKey, params["amount"], params["extraData"], params["message"],
			params["orderId"], params["orderInfo"], params["orderType"], params["partnerCode"],
			params["payType"], params["requestId"], params["responseTime"],
			params["resultCode"], params["transId"],
		)
		params["signature"] = momoSign(cfg.SecretKey, raw)

		result, err := g.VerifyIPN(params)
		require.NoError(t, err)
		assert.False(t, result.Success)
	})

	t.Run("TamperedAmount", func(t *testing.T) {
		params := newParams()
		params["amount"] = "1"
		_, err := g.VerifyIPN(params)
		assert.ErrorIs(t, err, apperrors.ErrInvalidSignature)
	})

	t.Run("MissingSignature", func(t *testing.T) {
		params := newParams()
		delete(params, "signature")
		_, err := g.VerifyIPN(params)
		assert.ErrorIs(t, err, apperrors.ErrInvalidSignature)
	})
}
