// Package payment integrates external payment gateways. Each provider signs
// its requests and callbacks with a shared secret; callbacks are verified
// before any order state changes.
package payment

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "flight-booking/pkg/app_errors"

	"github.com/shopspring/decimal"
)

const (
	ProviderMoMo  = "MoMo"
	ProviderVNPay = "VNPAY"
)

type CreatePaymentRequest struct {
	OrderID   int
	Amount    decimal.Decimal
	OrderInfo string
	ClientIP  string
}

type CreatePaymentResult struct {
	PayURL    string
	RequestID string
	TxnRef    string
}

// IPNResult 驗章後的回調結論
type IPNResult struct {
	OrderID int
	Success bool
}

type Gateway interface {
	Provider() string
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResult, error)
	VerifyIPN(params map[string]string) (*IPNResult, error)
}

// Registry 依 provider 名稱查 Gateway；handler 只認名稱，不認實作
type Registry struct {
	gateways map[string]Gateway
}

func NewRegistry(gateways ...Gateway) *Registry {
	r := &Registry{gateways: make(map[string]Gateway, len(gateways))}
	for _, g := range gateways {
		r.gateways[g.Provider()] = g
	}
	return r
}

func (r *Registry) Get(provider string) (Gateway, error) {
	g, ok := r.gateways[provider]
	if !ok {
		return nil, apperrors.ErrInvalidInput
	}
	return g, nil
}

// NewTxnRef 交易參考號：{orderId}_{timestamp}，同一訂單重試付款不會撞號
func NewTxnRef(orderID int) string {
	return fmt.Sprintf("%d_%d", orderID, time.Now().Unix())
}

// OrderIDFromTxnRef 取第一個底線前的部分
func OrderIDFromTxnRef(txnRef string) (int, error) {
	head, _, _ := strings.Cut(txnRef, "_")
	id, err := strconv.Atoi(head)
	if err != nil || id <= 0 {
		return 0, apperrors.ErrInvalidInput
	}
	return id, nil
}
