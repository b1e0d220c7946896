package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"dojohub/internal/models"
)

const flowName = "flow"

// Flow payment status codes returned by /payment/getStatus.
const (
	flowStatusPending  = 1
	flowStatusPaid     = 2
	flowStatusRejected = 3
	flowStatusCanceled = 4
)

type FlowPaymentRequest struct {
	CommerceOrder   string
	Subject         string
	Currency        string
	Amount          decimal.Decimal
	Email           string
	URLConfirmation string
	URLReturn       string
}

type FlowPaymentResponse struct {
	URL       string `json:"url"`
	Token     string `json:"token"`
	FlowOrder int64  `json:"flowOrder"`
}

// CheckoutURL is where the payer is redirected.
func (r *FlowPaymentResponse) CheckoutURL() string {
	return r.URL + "?token=" + url.QueryEscape(r.Token)
}

type FlowPaymentStatus struct {
	FlowOrder     int64   `json:"flowOrder"`
	CommerceOrder string  `json:"commerceOrder"`
	Status        int     `json:"status"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
}

type FlowClient interface {
	CreatePayment(ctx context.Context, req *FlowPaymentRequest) (*FlowPaymentResponse, error)
	GetStatus(ctx context.Context, token string) (*FlowPaymentStatus, error)
}

type flowClient struct {
	baseURL   string
	apiKey    string
	secretKey string
	http      *providerHTTP
}

func NewFlowClient(baseURL, apiKey, secretKey string, client *http.Client) FlowClient {
	if baseURL == "" {
		baseURL = "https://www.flow.cl/api"
	}
	return &flowClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		secretKey: secretKey,
		http:      newProviderHTTP(flowName, client),
	}
}

// signFlowParams is HMAC-SHA256 (hex) of every key+value pair concatenated
// in alphabetical key order.
func signFlowParams(secret string, params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "s" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(params.Get(k))
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(b.String()))
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *flowClient) signed(params url.Values) url.Values {
	params.Set("apiKey", c.apiKey)
	params.Set("s", signFlowParams(c.secretKey, params))
	return params
}

func (c *flowClient) CreatePayment(ctx context.Context, req *FlowPaymentRequest) (*FlowPaymentResponse, error) {
	params := url.Values{}
	params.Set("commerceOrder", req.CommerceOrder)
	params.Set("subject", req.Subject)
	params.Set("currency", req.Currency)
	params.Set("amount", req.Amount.String())
	params.Set("email", req.Email)
	params.Set("urlConfirmation", req.URLConfirmation)
	params.Set("urlReturn", req.URLReturn)

	httpReq, err := http.NewRequest(http.MethodPost, c.baseURL+"/payment/create",
		strings.NewReader(c.signed(params).Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	data, err := c.http.do(ctx, httpReq)
	if err != nil {
		return nil, err
	}
	var resp FlowPaymentResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode flow payment: %v", ErrProvider, err)
	}
	if resp.Token == "" || resp.URL == "" {
		return nil, fmt.Errorf("%w: flow response without token or url", ErrProvider)
	}
	return &resp, nil
}

func (c *flowClient) GetStatus(ctx context.Context, token string) (*FlowPaymentStatus, error) {
	params := url.Values{}
	params.Set("token", token)

	httpReq, err := http.NewRequest(http.MethodGet, c.baseURL+"/payment/getStatus?"+c.signed(params).Encode(), nil)
	if err != nil {
		return nil, err
	}

	data, err := c.http.do(ctx, httpReq)
	if err != nil {
		return nil, err
	}
	var status FlowPaymentStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("%w: decode flow status: %v", ErrProvider, err)
	}
	return &status, nil
}

// MapFlowStatus maps a Flow status code to a payment status.
func MapFlowStatus(status int) (models.PaymentStatus, bool) {
	switch status {
	case flowStatusPending:
		return models.PaymentProcessing, true
	case flowStatusPaid:
		return models.PaymentPaid, true
	case flowStatusRejected:
		return models.PaymentFailed, true
	case flowStatusCanceled:
		return models.PaymentCanceled, true
	}
	return "", false
}
