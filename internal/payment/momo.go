package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"flight-booking/config"
	apperrors "flight-booking/pkg/app_errors"
	"flight-booking/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// momoAmountMultiplier 票價以美元計，MoMo 要整數 VND
const momoAmountMultiplier = 10000

type MoMoGateway struct {
	cfg    config.MoMoConfig
	client *http.Client
}

func NewMoMoGateway(cfg config.MoMoConfig, client *http.Client) *MoMoGateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &MoMoGateway{
		cfg:    cfg,
		client: client,
	}
}

func (g *MoMoGateway) Provider() string {
	return ProviderMoMo
}

type momoCreateRequest struct {
	PartnerCode string `json:"partnerCode"`
	AccessKey   string `json:"accessKey"`
	RequestID   string `json:"requestId"`
	Amount      string `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IPNURL      string `json:"ipnUrl"`
	ExtraData   string `json:"extraData"`
	RequestType string `json:"requestType"`
	Signature   string `json:"signature"`
	Lang        string `json:"lang"`
}

type momoCreateResponse struct {
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
	PayURL     string `json:"payUrl"`
}

// CreatePayment 呼叫 MoMo /create 取得付款連結。
// 簽章為固定欄位順序的 raw string 做 HMAC-SHA256。
func (g *MoMoGateway) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResult, error) {
	requestID := uuid.New().String()
	txnRef := NewTxnRef(req.OrderID)
	amount := req.Amount.Mul(decimal.NewFromInt(momoAmountMultiplier)).Round(0).String()

	rawSignature := fmt.Sprintf(
		"accessKey=%s&amount=%s&extraData=%s&ipnUrl=%s&orderId=%s&orderInfo=%s&partnerCode=%s&redirectUrl=%s&requestId=%s&requestType=%s",
		g.cfg.AccessKey, amount, "", g.cfg.IPNURL, txnRef, req.OrderInfo,
		g.cfg.PartnerCode, g.cfg.RedirectURL, requestID, "captureWallet",
	)

	body := momoCreateRequest{
		PartnerCode: g.cfg.PartnerCode,
		AccessKey:   g.cfg.AccessKey,
		RequestID:   requestID,
		Amount:      amount,
		OrderID:     txnRef,
		OrderInfo:   req.OrderInfo,
		RedirectURL: g.cfg.RedirectURL,
		IPNURL:      g.cfg.IPNURL,
		ExtraData:   "",
		RequestType: "captureWallet",
		Signature:   g.sign(rawSignature),
		Lang:        "en",
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		logger.WithComponent("payment").Error("momo create request failed", zap.Error(err))
		return nil, apperrors.ErrGatewayUnavailable
	}
	defer resp.Body.Close()

	var momoResp momoCreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&momoResp); err != nil {
		return nil, apperrors.ErrGatewayUnavailable
	}
	if momoResp.ResultCode != 0 || momoResp.PayURL == "" {
		logger.WithComponent("payment").Warn("momo rejected payment request",
			zap.Int("result_code", momoResp.ResultCode), zap.String("message", momoResp.Message))
		return nil, apperrors.ErrGatewayUnavailable
	}

	return &CreatePaymentResult{
		PayURL:    momoResp.PayURL,
		RequestID: requestID,
		TxnRef:    txnRef,
	}, nil
}

// VerifyIPN 驗回調簽章；resultCode == "0" 才視為付款成功
func (g *MoMoGateway) VerifyIPN(params map[string]string) (*IPNResult, error) {
	signature := params["signature"]
	if signature == "" {
		return nil, apperrors.ErrInvalidSignature
	}

	rawSignature := fmt.Sprintf(
		"accessKey=%s&amount=%s&extraData=%s&message=%s&orderId=%s&orderInfo=%s&orderType=%s&partnerCode=%s&payType=%s&requestId=%s&responseTime=%s&resultCode=%s&transId=%s",
		g.cfg.AccessKey, params["amount"], params["extraData"], params["message"],
		params["orderId"], params["orderInfo"], params["orderType"], params["partnerCode"],
		params["payType"], params["requestId"], params["responseTime"],
		params["resultCode"], params["transId"],
	)

	expected := g.sign(rawSignature)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, apperrors.ErrInvalidSignature
	}

	orderID, err := OrderIDFromTxnRef(params["orderId"])
	if err != nil {
		return nil, err
	}

	return &IPNResult{
		OrderID: orderID,
		Success: params["resultCode"] == "0",
	}, nil
}

func (g *MoMoGateway) sign(raw string) string {
	mac := hmac.New(sha256.New, []byte(g.cfg.SecretKey))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}
