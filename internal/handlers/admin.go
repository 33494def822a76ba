package handlers

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/example/tienda/internal/models"
	"github.com/example/tienda/internal/utils"
)

// AdminHandler serves back-office aggregates: store stats and customers.
type AdminHandler struct {
	db *gorm.DB
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

type statusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// Stats returns the dashboard aggregates. The independent counts fan out
// concurrently; any query error fails the whole request.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	var (
		totalOrders   int64
		totalRevenue  float64
		paidRevenue   float64
		customerCount int64
		productCount  int64
		byStatus      []statusCount
	)

	g, ctx := errgroup.WithContext(c.Context())

	g.Go(func() error {
		return h.db.WithContext(ctx).Model(&models.Order{}).Count(&totalOrders).Error
	})
	g.Go(func() error {
		return h.db.WithContext(ctx).Model(&models.Order{}).
			Select("COALESCE(SUM(amount), 0)").Scan(&totalRevenue).Error
	})
	g.Go(func() error {
		return h.db.WithContext(ctx).Model(&models.Order{}).
			Where("status = ?", models.OrderStatusPaid).
			Select("COALESCE(SUM(amount), 0)").Scan(&paidRevenue).Error
	})
	g.Go(func() error {
		return h.db.WithContext(ctx).Model(&models.User{}).
			Where("role = ?", models.RoleCustomer).Count(&customerCount).Error
	})
	g.Go(func() error {
		return h.db.WithContext(ctx).Model(&models.Product{}).Count(&productCount).Error
	})
	g.Go(func() error {
		return h.db.WithContext(ctx).Model(&models.Order{}).
			Select("status, COUNT(*) as count").
			Group("status").
			Scan(&byStatus).Error
	})

	if err := g.Wait(); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_orders":  totalOrders,
			"total_revenue": totalRevenue,
			"paid_revenue":  paidRevenue,
			"customers":     customerCount,
			"products":      productCount,
			"by_status":     byStatus,
		},
	})
}

type customerRow struct {
	models.User
	OrdersCount int64   `json:"orders_count"`
	TotalSpent  float64 `json:"total_spent"`
}

// ListCustomers returns customers with their order count and total spent,
// joined through the payer email the gateway reported.
func (h *AdminHandler) ListCustomers(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	var total int64
	if err := h.db.Model(&models.User{}).
		Where("role = ?", models.RoleCustomer).
		Count(&total).Error; err != nil {
		return err
	}

	var customers []customerRow
	if err := h.db.Model(&models.User{}).
		Select("users.*, COUNT(orders.id) AS orders_count, COALESCE(SUM(orders.amount), 0) AS total_spent").
		Joins("LEFT JOIN orders ON orders.email = users.email").
		Where("users.role = ?", models.RoleCustomer).
		Group("users.id").
		Order("users.created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Scan(&customers).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    customers,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}
