package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePreferenceSendsItemsAndParsesResponse(t *testing.T) {
	var received PreferenceRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/checkout/preferences", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pref-1","init_point":"https://gateway.test/checkout/pref-1"}`))
	}))
	defer server.Close()

	svc := NewMercadoPagoService(server.URL, "test-token")

	result, err := svc.CreatePreference(context.Background(), PreferenceRequest{
		Items: []PreferenceItem{
			{Title: "Remera", Quantity: 2, UnitPrice: 500},
			{Title: "Gorra", Quantity: 1, UnitPrice: 750},
		},
		AdditionalInfo: PreferenceAdditionalInfo{
			Items: []PreferenceItem{
				{ID: "p1", Title: "Remera", Quantity: 2, UnitPrice: 500},
				{ID: "p2", Title: "Gorra", Quantity: 1, UnitPrice: 750},
			},
		},
		NotificationURL: "https://store.test/api/payments/webhook",
	})
	require.NoError(t, err)

	assert.Equal(t, "pref-1", result.ID)
	assert.Equal(t, "https://gateway.test/checkout/pref-1", result.InitPoint)

	require.Len(t, received.Items, 2)
	assert.Equal(t, 1000.0, received.Items[0].UnitPrice*float64(received.Items[0].Quantity))
	assert.Equal(t, 750.0, received.Items[1].UnitPrice*float64(received.Items[1].Quantity))
	require.Len(t, received.AdditionalInfo.Items, 2)
	assert.Equal(t, "p1", received.AdditionalInfo.Items[0].ID)
	assert.Equal(t, "https://store.test/api/payments/webhook", received.NotificationURL)
}

func TestCreatePreferenceGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"invalid access token"}`))
	}))
	defer server.Close()

	svc := NewMercadoPagoService(server.URL, "bad-token")

	_, err := svc.CreatePreference(context.Background(), PreferenceRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestGetPaymentParsesPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments/123", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "approved",
			"status_detail": "accredited",
			"transaction_amount": 1500,
			"payer": {"email": "a@b.com", "first_name": "Ana"},
			"payment_type_id": "account_money",
			"additional_info": {"items": [{"title": "Remera", "quantity": "2", "unit_price": "750"}]}
		}`))
	}))
	defer server.Close()

	svc := NewMercadoPagoService(server.URL, "test-token")

	payment, err := svc.GetPayment(context.Background(), "123")
	require.NoError(t, err)

	assert.Equal(t, "approved", payment.Status)
	assert.Equal(t, LooseFloat(1500), payment.TransactionAmount)
	assert.Equal(t, "a@b.com", payment.Payer.Email)
	assert.Equal(t, "account_money", payment.PaymentTypeID)
	require.Len(t, payment.AdditionalInfo.Items, 1)
	assert.Equal(t, LooseInt(2), payment.AdditionalInfo.Items[0].Quantity)
}

func TestGetPaymentNotFoundByStatusCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not_found","message":"Payment not found","status":404}`))
	}))
	defer server.Close()

	svc := NewMercadoPagoService(server.URL, "test-token")

	_, err := svc.GetPayment(context.Background(), "999")
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestGetPaymentNotFoundByErrorBody(t *testing.T) {
	// Some gateway responses report not_found in the body with a 200.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"not_found"}`))
	}))
	defer server.Close()

	svc := NewMercadoPagoService(server.URL, "test-token")

	_, err := svc.GetPayment(context.Background(), "999")
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}
