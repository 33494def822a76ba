package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/tienda/internal/models"
	"github.com/example/tienda/internal/utils"
)

// OrderHandler exposes the back-office view over reconciled orders.
type OrderHandler struct {
	db *gorm.DB
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB) *OrderHandler {
	return &OrderHandler{db: db}
}

var validOrderStatuses = map[string]bool{
	models.OrderStatusPaid:      true,
	models.OrderStatusPending:   true,
	models.OrderStatusInReview:  true,
	models.OrderStatusCancelled: true,
	models.OrderStatusPreparing: true,
	models.OrderStatusShipped:   true,
	models.OrderStatusDelivered: true,
}

// ListOrders returns orders with optional search and status filtering.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{})

	if q := strings.TrimSpace(c.Query("q")); q != "" {
		pattern := "%" + q + "%"
		query = query.Where("email ILIKE ? OR id LIKE ?", pattern, pattern)
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.
		Order("date desc").
		Limit(pg.Limit).
		Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetOrder returns a single order by payment id.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	var order models.Order
	if err := h.db.First(&order, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus applies a manual status transition. This is how fulfillment
// statuses (en_preparacion, enviado, entregado) come to exist; the webhook
// reconciler never produces them.
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var req updateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if !validOrderStatuses[req.Status] {
		return fiber.NewError(fiber.StatusBadRequest, "invalid status")
	}

	var order models.Order
	if err := h.db.First(&order, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	order.Status = req.Status
	order.LastUpdate = time.Now()
	if err := h.db.Model(&order).Updates(map[string]any{
		"status":      order.Status,
		"last_update": order.LastUpdate,
	}).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}
