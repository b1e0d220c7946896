package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"dojohub/internal/models"
)

const mercadoPagoName = "mercadopago"

// PreferenceRequest describes a Checkout Pro preference for one payment.
type PreferenceRequest struct {
	ExternalReference string
	Title             string
	Amount            decimal.Decimal
	Currency          string
	PayerEmail        string
	NotificationURL   string
	SuccessURL        string
}

type Preference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// MercadoPagoPayment is the subset of GET /v1/payments/{id} we consume.
type MercadoPagoPayment struct {
	ID                int64   `json:"id"`
	Status            string  `json:"status"`
	StatusDetail      string  `json:"status_detail"`
	ExternalReference string  `json:"external_reference"`
	TransactionAmount float64 `json:"transaction_amount"`
	CurrencyID        string  `json:"currency_id"`
}

type MercadoPagoClient interface {
	CreatePreference(ctx context.Context, req *PreferenceRequest) (*Preference, error)
	GetPayment(ctx context.Context, id string) (*MercadoPagoPayment, error)
	// VerifySignature checks the x-signature header of a notification.
	VerifySignature(xSignature, xRequestID, dataID string) bool
}

type mercadoPagoClient struct {
	baseURL       string
	accessToken   string
	webhookSecret string
	http          *providerHTTP
}

func NewMercadoPagoClient(baseURL, accessToken, webhookSecret string, client *http.Client) MercadoPagoClient {
	if baseURL == "" {
		baseURL = "https://api.mercadopago.com"
	}
	return &mercadoPagoClient{
		baseURL:       strings.TrimRight(baseURL, "/"),
		accessToken:   accessToken,
		webhookSecret: webhookSecret,
		http:          newProviderHTTP(mercadoPagoName, client),
	}
}

type mpItem struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

type mpPreferenceBody struct {
	Items             []mpItem          `json:"items"`
	ExternalReference string            `json:"external_reference"`
	NotificationURL   string            `json:"notification_url,omitempty"`
	Payer             map[string]string `json:"payer,omitempty"`
	BackURLs          map[string]string `json:"back_urls,omitempty"`
	AutoReturn        string            `json:"auto_return,omitempty"`
}

func (c *mercadoPagoClient) CreatePreference(ctx context.Context, req *PreferenceRequest) (*Preference, error) {
	body := mpPreferenceBody{
		Items: []mpItem{{
			Title:      req.Title,
			Quantity:   1,
			UnitPrice:  req.Amount.InexactFloat64(),
			CurrencyID: req.Currency,
		}},
		ExternalReference: req.ExternalReference,
		NotificationURL:   req.NotificationURL,
	}
	if req.PayerEmail != "" {
		body.Payer = map[string]string{"email": req.PayerEmail}
	}
	if req.SuccessURL != "" {
		body.BackURLs = map[string]string{"success": req.SuccessURL}
		body.AutoReturn = "approved"
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode preference: %w", err)
	}
	httpReq, err := http.NewRequest(http.MethodPost, c.baseURL+"/checkout/preferences", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)
	httpReq.Header.Set("X-Idempotency-Key", req.ExternalReference)

	data, err := c.http.do(ctx, httpReq)
	if err != nil {
		return nil, err
	}
	var pref Preference
	if err := json.Unmarshal(data, &pref); err != nil {
		return nil, fmt.Errorf("%w: decode preference: %v", ErrProvider, err)
	}
	if pref.ID == "" || pref.InitPoint == "" {
		return nil, fmt.Errorf("%w: preference response without id or init_point", ErrProvider)
	}
	return &pref, nil
}

func (c *mercadoPagoClient) GetPayment(ctx context.Context, id string) (*MercadoPagoPayment, error) {
	httpReq, err := http.NewRequest(http.MethodGet, c.baseURL+"/v1/payments/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	data, err := c.http.do(ctx, httpReq)
	if err != nil {
		return nil, err
	}
	var payment MercadoPagoPayment
	if err := json.Unmarshal(data, &payment); err != nil {
		return nil, fmt.Errorf("%w: decode payment: %v", ErrProvider, err)
	}
	return &payment, nil
}

// VerifySignature validates "ts=...,v1=..." as HMAC-SHA256 of
// "id:{data.id};request-id:{x-request-id};ts:{ts};". Parts whose value is
// missing are left out of the manifest.
func (c *mercadoPagoClient) VerifySignature(xSignature, xRequestID, dataID string) bool {
	if c.webhookSecret == "" || xSignature == "" {
		return false
	}

	var ts, v1 string
	for _, part := range strings.Split(xSignature, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.TrimSpace(kv[0]) {
		case "ts":
			ts = strings.TrimSpace(kv[1])
		case "v1":
			v1 = strings.TrimSpace(kv[1])
		}
	}
	if ts == "" || v1 == "" {
		return false
	}

	expected := mercadoPagoSignature(c.webhookSecret, xRequestID, dataID, ts)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(v1)))
}

func mercadoPagoSignature(secret, requestID, dataID, ts string) string {
	var manifest strings.Builder
	if dataID != "" {
		manifest.WriteString("id:" + strings.ToLower(dataID) + ";")
	}
	if requestID != "" {
		manifest.WriteString("request-id:" + requestID + ";")
	}
	manifest.WriteString("ts:" + ts + ";")

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest.String()))
	return hex.EncodeToString(mac.Sum(nil))
}

// MapMercadoPagoStatus maps a Mercado Pago payment status. ok is false for
// statuses that carry no local meaning.
func MapMercadoPagoStatus(status string) (models.PaymentStatus, bool) {
	switch status {
	case "approved":
		return models.PaymentPaid, true
	case "pending", "in_process", "authorized":
		return models.PaymentProcessing, true
	case "rejected":
		return models.PaymentFailed, true
	case "cancelled":
		return models.PaymentCanceled, true
	case "refunded", "charged_back":
		return models.PaymentRefunded, true
	}
	return "", false
}
