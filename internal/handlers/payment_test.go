package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/tienda/internal/config"
	"github.com/example/tienda/internal/models"
	"github.com/example/tienda/internal/services"
)

type mockGateway struct {
	createPreferenceFn func(ctx context.Context, pref services.PreferenceRequest) (*services.PreferenceResponse, error)
	getPaymentFn       func(ctx context.Context, paymentID string) (*services.Payment, error)
	preferenceCalls    int
	lookupCalls        int
}

func (m *mockGateway) CreatePreference(ctx context.Context, pref services.PreferenceRequest) (*services.PreferenceResponse, error) {
	m.preferenceCalls++
	return m.createPreferenceFn(ctx, pref)
}

func (m *mockGateway) GetPayment(ctx context.Context, paymentID string) (*services.Payment, error) {
	m.lookupCalls++
	return m.getPaymentFn(ctx, paymentID)
}

type mockOrderStore struct {
	mu      sync.Mutex
	orders  map[string]models.Order
	upserts int
	failErr error
}

func newMockOrderStore() *mockOrderStore {
	return &mockOrderStore{orders: map[string]models.Order{}}
}

func (s *mockOrderStore) Upsert(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	s.upserts++
	s.orders[order.ID] = *order
	return nil
}

func newPaymentApp(gateway *mockGateway, store *mockOrderStore) *fiber.App {
	cfg := &config.Config{
		SuccessURL:      "https://store.test/success",
		FailureURL:      "https://store.test/failure",
		PendingURL:      "https://store.test/pending",
		NotificationURL: "https://store.test/api/payments/webhook",
	}

	handler := NewPaymentHandler(gateway, store, nil, cfg)

	app := fiber.New()
	app.Post("/api/payments/preference", handler.CreatePreference)
	app.Post("/api/payments/webhook", handler.Webhook)
	return app
}

func postJSON(app *fiber.App, path, body string) (int, []byte, error) {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	return resp.StatusCode, data, err
}

func TestCreatePreferenceReturnsIDAndInitPoint(t *testing.T) {
	var sent services.PreferenceRequest
	gateway := &mockGateway{
		createPreferenceFn: func(ctx context.Context, pref services.PreferenceRequest) (*services.PreferenceResponse, error) {
			sent = pref
			return &services.PreferenceResponse{ID: "pref-1", InitPoint: "https://gateway.test/checkout/pref-1"}, nil
		},
	}
	app := newPaymentApp(gateway, newMockOrderStore())

	status, body, err := postJSON(app, "/api/payments/preference", `{
		"items": [
			{"id": "p1", "name": "Remera", "price": 500, "quantity": 2},
			{"id": "p2", "name": "Gorra", "price": 750, "quantity": 1}
		],
		"orderId": "order-9"
	}`)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, status)

	var result struct {
		ID        string `json:"id"`
		InitPoint string `json:"init_point"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, "pref-1", result.ID)
	assert.Equal(t, "https://gateway.test/checkout/pref-1", result.InitPoint)

	// The gateway saw one line per cart line with matching totals.
	require.Len(t, sent.Items, 2)
	assert.Equal(t, "Remera", sent.Items[0].Title)
	assert.Equal(t, 1000.0, sent.Items[0].UnitPrice*float64(sent.Items[0].Quantity))
	assert.Equal(t, 750.0, sent.Items[1].UnitPrice*float64(sent.Items[1].Quantity))

	// additional_info mirrors the flat list and keeps the catalog ids.
	require.Len(t, sent.AdditionalInfo.Items, 2)
	assert.Equal(t, "p1", sent.AdditionalInfo.Items[0].ID)
	assert.Equal(t, sent.Items[0].Title, sent.AdditionalInfo.Items[0].Title)

	assert.Equal(t, "https://store.test/success", sent.BackURLs.Success)
	assert.Equal(t, "https://store.test/api/payments/webhook", sent.NotificationURL)
	assert.Equal(t, "order-9", sent.ExternalReference)
}

func TestCreatePreferenceMissingItems(t *testing.T) {
	gateway := &mockGateway{}
	app := newPaymentApp(gateway, newMockOrderStore())

	for _, body := range []string{
		`{}`,
		`{"items": "not-a-list"}`,
		`{"items": 5}`,
		`{"items": []}`,
	} {
		status, respBody, err := postJSON(app, "/api/payments/preference", body)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, status, "body: %s", body)
		assert.Contains(t, string(respBody), "error")
	}

	assert.Zero(t, gateway.preferenceCalls, "no outbound call for invalid items")
}

func TestCreatePreferenceGatewayFailure(t *testing.T) {
	gateway := &mockGateway{
		createPreferenceFn: func(ctx context.Context, pref services.PreferenceRequest) (*services.PreferenceResponse, error) {
			return nil, errors.New("gateway down")
		},
	}
	app := newPaymentApp(gateway, newMockOrderStore())

	status, body, err := postJSON(app, "/api/payments/preference",
		`{"items": [{"id": "p1", "name": "Remera", "price": 500, "quantity": 1}]}`)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Contains(t, string(body), "error")
}

func approvedPayment(amount float64) *services.Payment {
	return &services.Payment{
		Status:            "approved",
		StatusDetail:      "accredited",
		TransactionAmount: services.LooseFloat(amount),
		Payer:             services.PaymentPayer{Email: "a@b.com"},
		AdditionalInfo: services.PaymentAdditionalInfo{
			Items: []services.PaymentItem{{Title: "Remera", Quantity: 1, UnitPrice: services.LooseFloat(amount)}},
		},
	}
}

func TestWebhookIgnoresNonPaymentEvents(t *testing.T) {
	gateway := &mockGateway{}
	store := newMockOrderStore()
	app := newPaymentApp(gateway, store)

	status, _, err := postJSON(app, "/api/payments/webhook",
		`{"type": "subscription", "data": {"id": "123"}}`)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Zero(t, gateway.lookupCalls)
	assert.Empty(t, store.orders)
}

func TestWebhookIgnoresUnknownPayment(t *testing.T) {
	gateway := &mockGateway{
		getPaymentFn: func(ctx context.Context, paymentID string) (*services.Payment, error) {
			return nil, services.ErrPaymentNotFound
		},
	}
	store := newMockOrderStore()
	app := newPaymentApp(gateway, store)

	status, _, err := postJSON(app, "/api/payments/webhook",
		`{"type": "payment", "data": {"id": "999"}}`)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 1, gateway.lookupCalls)
	assert.Empty(t, store.orders, "not-found payment must not create a phantom order")
}

func TestWebhookReconcilesApprovedPayment(t *testing.T) {
	gateway := &mockGateway{
		getPaymentFn: func(ctx context.Context, paymentID string) (*services.Payment, error) {
			assert.Equal(t, "123456789", paymentID)
			return approvedPayment(1500), nil
		},
	}
	store := newMockOrderStore()
	app := newPaymentApp(gateway, store)

	// data.id arrives as a JSON number here, not a string.
	status, _, err := postJSON(app, "/api/payments/webhook",
		`{"type": "payment", "data": {"id": 123456789}}`)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, status)

	require.Len(t, store.orders, 1)
	order := store.orders["123456789"]
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.Equal(t, 1500.0, order.Amount)
	assert.Equal(t, "a@b.com", order.Email)
}

func TestWebhookIdempotentRedelivery(t *testing.T) {
	gateway := &mockGateway{
		getPaymentFn: func(ctx context.Context, paymentID string) (*services.Payment, error) {
			return approvedPayment(1500), nil
		},
	}
	store := newMockOrderStore()
	app := newPaymentApp(gateway, store)

	notification := `{"type": "payment", "data": {"id": "123"}}`

	status, _, err := postJSON(app, "/api/payments/webhook", notification)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, status)
	first := store.orders["123"]

	time.Sleep(5 * time.Millisecond)

	status, _, err = postJSON(app, "/api/payments/webhook", notification)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, status)

	require.Len(t, store.orders, 1, "redelivery must merge into the same order")
	assert.Equal(t, 2, store.upserts)

	second := store.orders["123"]
	assert.True(t, second.LastUpdate.After(first.LastUpdate), "lastUpdate advances on redelivery")
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Amount, second.Amount)
}

// A stale pending notification delivered after an approved one overwrites
// the status back to pendiente_pago. That is the current behavior, not a
// guarantee: the reconciler applies whatever the lookup returns, with no
// ordering check against lastUpdate.
func TestWebhookStaleRedeliveryOverwritesStatus(t *testing.T) {
	statuses := []string{"approved", "pending"}
	call := 0
	gateway := &mockGateway{
		getPaymentFn: func(ctx context.Context, paymentID string) (*services.Payment, error) {
			payment := approvedPayment(1500)
			payment.Status = statuses[call]
			call++
			return payment, nil
		},
	}
	store := newMockOrderStore()
	app := newPaymentApp(gateway, store)

	notification := `{"type": "payment", "data": {"id": "123"}}`

	_, _, err := postJSON(app, "/api/payments/webhook", notification)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, store.orders["123"].Status)

	_, _, err = postJSON(app, "/api/payments/webhook", notification)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, store.orders["123"].Status)
}

func TestWebhookLookupFailure(t *testing.T) {
	gateway := &mockGateway{
		getPaymentFn: func(ctx context.Context, paymentID string) (*services.Payment, error) {
			return nil, errors.New("gateway timeout")
		},
	}
	store := newMockOrderStore()
	app := newPaymentApp(gateway, store)

	status, _, err := postJSON(app, "/api/payments/webhook",
		`{"type": "payment", "data": {"id": "123"}}`)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Empty(t, store.orders)
}

func TestWebhookUpsertFailure(t *testing.T) {
	gateway := &mockGateway{
		getPaymentFn: func(ctx context.Context, paymentID string) (*services.Payment, error) {
			return approvedPayment(1500), nil
		},
	}
	store := newMockOrderStore()
	store.failErr = errors.New("db unavailable")
	app := newPaymentApp(gateway, store)

	status, _, err := postJSON(app, "/api/payments/webhook",
		`{"type": "payment", "data": {"id": "123"}}`)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, status)
}

func TestWebhookMalformedBody(t *testing.T) {
	gateway := &mockGateway{}
	store := newMockOrderStore()
	app := newPaymentApp(gateway, store)

	status, _, err := postJSON(app, "/api/payments/webhook", `not-json`)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Zero(t, gateway.lookupCalls)
	assert.Empty(t, store.orders)
}
