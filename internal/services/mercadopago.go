package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrPaymentNotFound reports that the gateway does not know the payment id.
// Webhook handling treats this as a benign skip, not a failure.
var ErrPaymentNotFound = errors.New("payment not found")

// MercadoPagoService talks to the MercadoPago REST API.
type MercadoPagoService struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// NewMercadoPagoService creates a gateway client for the given credentials.
func NewMercadoPagoService(baseURL, accessToken string) *MercadoPagoService {
	return &MercadoPagoService{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

// PreferenceItem is one line of a checkout preference.
type PreferenceItem struct {
	ID        string  `json:"id,omitempty"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// PreferenceBackURLs are the pages the payer lands on after checkout.
type PreferenceBackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

// PreferenceAdditionalInfo mirrors the flat item list. The webhook reads
// additional_info.items back from the payment, so field names here must
// stay exactly as the gateway expects.
type PreferenceAdditionalInfo struct {
	Items []PreferenceItem `json:"items"`
}

// PreferenceRequest is the body sent to the preference-creation endpoint.
type PreferenceRequest struct {
	Items             []PreferenceItem         `json:"items"`
	AdditionalInfo    PreferenceAdditionalInfo `json:"additional_info"`
	BackURLs          PreferenceBackURLs       `json:"back_urls"`
	NotificationURL   string                   `json:"notification_url"`
	ExternalReference string                   `json:"external_reference,omitempty"`
}

// PreferenceResponse carries the checkout session id and redirect URL.
type PreferenceResponse struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

// CreatePreference registers a checkout session with the gateway.
func (s *MercadoPagoService) CreatePreference(ctx context.Context, pref PreferenceRequest) (*PreferenceResponse, error) {
	body, err := json.Marshal(pref)
	if err != nil {
		return nil, fmt.Errorf("mercadopago preference marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/checkout/preferences", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("mercadopago preference request build: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mercadopago preference request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("mercadopago preference failed: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var result PreferenceResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("mercadopago preference unmarshal: %w", err)
	}

	return &result, nil
}

// LooseInt decodes gateway numbers that arrive either as JSON numbers or
// numeric strings. Anything unparseable becomes zero.
type LooseInt int

func (n *LooseInt) UnmarshalJSON(b []byte) error {
	*n = 0
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*n = LooseInt(v)
	}
	return nil
}

// LooseFloat is the float counterpart of LooseInt.
type LooseFloat float64

func (f *LooseFloat) UnmarshalJSON(b []byte) error {
	*f = 0
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*f = LooseFloat(v)
	}
	return nil
}

// Payment is the authoritative payment record returned by the gateway.
// Only the fields the reconciler reads are modeled.
type Payment struct {
	Status            string                `json:"status"`
	StatusDetail      string                `json:"status_detail"`
	TransactionAmount LooseFloat            `json:"transaction_amount"`
	DateApproved      *time.Time            `json:"date_approved"`
	Payer             PaymentPayer          `json:"payer"`
	PaymentMethod     PaymentMethodInfo     `json:"payment_method"`
	PaymentTypeID     string                `json:"payment_type_id"`
	AdditionalInfo    PaymentAdditionalInfo `json:"additional_info"`
}

type PaymentPayer struct {
	Email     string       `json:"email"`
	FirstName string       `json:"first_name"`
	LastName  string       `json:"last_name"`
	Phone     PaymentPhone `json:"phone"`
}

type PaymentPhone struct {
	Number string `json:"number"`
}

type PaymentMethodInfo struct {
	Type string `json:"type"`
}

type PaymentAdditionalInfo struct {
	Items []PaymentItem `json:"items"`
}

type PaymentItem struct {
	Title     string     `json:"title"`
	Quantity  LooseInt   `json:"quantity"`
	UnitPrice LooseFloat `json:"unit_price"`
}

type paymentAPIError struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// GetPayment fetches a payment by id. Returns ErrPaymentNotFound when the
// gateway reports the id does not exist.
func (s *MercadoPagoService) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/payments/"+paymentID, nil)
	if err != nil {
		return nil, fmt.Errorf("mercadopago payment request build: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mercadopago payment request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	var apiErr paymentAPIError
	_ = json.Unmarshal(respBody, &apiErr)
	if resp.StatusCode == http.StatusNotFound || apiErr.Error == "not_found" {
		return nil, ErrPaymentNotFound
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("mercadopago payment lookup failed: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var payment Payment
	if err := json.Unmarshal(respBody, &payment); err != nil {
		return nil, fmt.Errorf("mercadopago payment unmarshal: %w", err)
	}

	return &payment, nil
}
