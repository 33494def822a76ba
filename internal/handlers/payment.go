package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/tienda/internal/config"
	"github.com/example/tienda/internal/models"
	"github.com/example/tienda/internal/services"
	"github.com/example/tienda/internal/storage"
)

// PaymentGateway is the slice of the gateway API the payment handler needs.
type PaymentGateway interface {
	CreatePreference(ctx context.Context, pref services.PreferenceRequest) (*services.PreferenceResponse, error)
	GetPayment(ctx context.Context, paymentID string) (*services.Payment, error)
}

// PaymentHandler issues checkout preferences and reconciles payment
// webhooks into order records.
type PaymentHandler struct {
	gateway  PaymentGateway
	orders   storage.OrderStore
	telegram *services.TelegramService
	cfg      *config.Config
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(gateway PaymentGateway, orders storage.OrderStore, telegram *services.TelegramService, cfg *config.Config) *PaymentHandler {
	return &PaymentHandler{
		gateway:  gateway,
		orders:   orders,
		telegram: telegram,
		cfg:      cfg,
	}
}

type cartLine struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type createPreferenceRequest struct {
	Items   json.RawMessage `json:"items"`
	OrderID string          `json:"orderId"`
}

// CreatePreference registers a checkout session for the posted cart and
// returns the gateway's preference id and redirect URL.
func (h *PaymentHandler) CreatePreference(c *fiber.Ctx) error {
	var req createPreferenceRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	var lines []cartLine
	if len(req.Items) == 0 || json.Unmarshal(req.Items, &lines) != nil || len(lines) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid items"})
	}

	items := make([]services.PreferenceItem, 0, len(lines))
	infoItems := make([]services.PreferenceItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, services.PreferenceItem{
			Title:     line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.Price,
		})
		// additional_info carries the same lines plus the catalog id; the
		// webhook reads these back from the payment record.
		infoItems = append(infoItems, services.PreferenceItem{
			ID:        line.ID,
			Title:     line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.Price,
		})
	}

	pref := services.PreferenceRequest{
		Items:          items,
		AdditionalInfo: services.PreferenceAdditionalInfo{Items: infoItems},
		BackURLs: services.PreferenceBackURLs{
			Success: h.cfg.SuccessURL,
			Failure: h.cfg.FailureURL,
			Pending: h.cfg.PendingURL,
		},
		NotificationURL:   h.cfg.NotificationURL,
		ExternalReference: req.OrderID,
	}

	result, err := h.gateway.CreatePreference(c.Context(), pref)
	if err != nil {
		log.Printf("[Payments] Preference creation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create preference"})
	}

	return c.JSON(fiber.Map{
		"id":         result.ID,
		"init_point": result.InitPoint,
	})
}

type webhookNotification struct {
	Type string `json:"type"`
	Data struct {
		ID any `json:"id"`
	} `json:"data"`
}

// Webhook reconciles an asynchronous gateway notification: fetch the
// authoritative payment, map its status, and upsert the order keyed by the
// payment id. The gateway owns redelivery; this handler answers exactly
// once per call.
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	var notification webhookNotification
	decoder := json.NewDecoder(bytes.NewReader(c.Body()))
	decoder.UseNumber()
	if err := decoder.Decode(&notification); err != nil {
		log.Printf("[Payments] Webhook body parse failed: %v", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	if notification.Type != "payment" {
		// Not a payment event, acknowledge and move on.
		return c.SendStatus(fiber.StatusOK)
	}

	paymentID := normalizePaymentID(notification.Data.ID)
	if paymentID == "" {
		log.Printf("[Payments] Webhook without payment id: %s", string(c.Body()))
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	payment, err := h.gateway.GetPayment(c.Context(), paymentID)
	if err != nil {
		if errors.Is(err, services.ErrPaymentNotFound) {
			// Test or malformed notification; never create a phantom order.
			log.Printf("[Payments] Payment %s not found at gateway, ignoring webhook", paymentID)
			return c.SendStatus(fiber.StatusOK)
		}
		log.Printf("[Payments] Payment lookup failed for %s: %v", paymentID, err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	order := services.BuildOrder(paymentID, payment, time.Now())

	if err := h.orders.Upsert(c.Context(), &order); err != nil {
		log.Printf("[Payments] Order upsert failed for %s: %v", paymentID, err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	log.Printf("[Payments] Order %s reconciled with status %s", order.ID, order.Status)

	if h.telegram != nil && order.Status == models.OrderStatusPaid {
		go func() {
			if err := h.telegram.NotifyOrderPaid(order); err != nil {
				log.Printf("[Payments] Telegram notification failed: %v", err)
			}
		}()
	}

	return c.SendStatus(fiber.StatusOK)
}

// normalizePaymentID renders the notification's data.id, which the gateway
// sends either as a string or a number, as its decimal string form.
func normalizePaymentID(id any) string {
	switch v := id.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return ""
	}
}
