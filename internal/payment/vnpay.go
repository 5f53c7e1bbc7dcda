package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"time"

	"flight-booking/config"
	apperrors "flight-booking/pkg/app_errors"

	"github.com/shopspring/decimal"
)

// vnpayAmountMultiplier VNPAY 協定金額以 VND x100 傳遞
const vnpayAmountMultiplier = 100

type VNPayGateway struct {
	cfg config.VNPayConfig
	now func() time.Time
}

func NewVNPayGateway(cfg config.VNPayConfig) *VNPayGateway {
	return &VNPayGateway{
		cfg: cfg,
		now: time.Now,
	}
}

func (g *VNPayGateway) Provider() string {
	return ProviderVNPay
}

// CreatePayment 付款連結在本地組出來，不需呼叫 VNPAY；
// 簽章為按 key 排序後 url-encode 的 query string 做 HMAC-SHA512。
func (g *VNPayGateway) CreatePayment(_ context.Context, req CreatePaymentRequest) (*CreatePaymentResult, error) {
	txnRef := NewTxnRef(req.OrderID)
	clientIP := req.ClientIP
	if clientIP == "" {
		clientIP = "127.0.0.1"
	}

	params := map[string]string{
		"vnp_Version":    "2.1.0",
		"vnp_Command":    "pay",
		"vnp_TmnCode":    g.cfg.TmnCode,
		"vnp_Amount":     req.Amount.Mul(decimal.NewFromInt(vnpayAmountMultiplier)).Round(0).String(),
		"vnp_CurrCode":   "VND",
		"vnp_TxnRef":     txnRef,
		"vnp_OrderInfo":  req.OrderInfo,
		"vnp_OrderType":  "other",
		"vnp_Locale":     "vn",
		"vnp_ReturnUrl":  g.cfg.ReturnURL,
		"vnp_IpAddr":     clientIP,
		"vnp_CreateDate": g.now().Format("20060102150405"),
	}

	query := canonicalQuery(params)
	secureHash := g.sign(query)

	return &CreatePaymentResult{
		PayURL: g.cfg.Endpoint + "?" + query + "&vnp_SecureHash=" + secureHash,
		TxnRef: txnRef,
	}, nil
}

// VerifyIPN 去掉 vnp_SecureHash* 後重算簽章；vnp_ResponseCode == "00" 為成功
func (g *VNPayGateway) VerifyIPN(params map[string]string) (*IPNResult, error) {
	signature := params["vnp_SecureHash"]
	if signature == "" {
		return nil, apperrors.ErrInvalidSignature
	}

	signable := make(map[string]string, len(params))
	for key, value := range params {
		if key == "vnp_SecureHash" || key == "vnp_SecureHashType" {
			continue
		}
		signable[key] = value
	}

	expected := g.sign(canonicalQuery(signable))
	if !hmac.Equal([]byte(strings.ToLower(expected)), []byte(strings.ToLower(signature))) {
		return nil, apperrors.ErrInvalidSignature
	}

	orderID, err := OrderIDFromTxnRef(params["vnp_TxnRef"])
	if err != nil {
		return nil, err
	}

	return &IPNResult{
		OrderID: orderID,
		Success: params["vnp_ResponseCode"] == "00",
	}, nil
}

// canonicalQuery 按 key 排序、url-encode，簽章與 query string 共用同一份
func canonicalQuery(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[key]))
	}
	return b.String()
}

func (g *VNPayGateway) sign(raw string) string {
	mac := hmac.New(sha512.New, []byte(g.cfg.HashSecret))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}
