package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/tienda/internal/models"
)

// CouponHandler manages promotion codes.
type CouponHandler struct {
	db *gorm.DB
}

// NewCouponHandler constructs CouponHandler.
func NewCouponHandler(db *gorm.DB) *CouponHandler {
	return &CouponHandler{db: db}
}

// ListCoupons returns all coupons.
func (h *CouponHandler) ListCoupons(c *fiber.Ctx) error {
	var coupons []models.Coupon
	if err := h.db.Order("created_at desc").Find(&coupons).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": coupons})
}

// CreateCoupon persists a new coupon. Codes are stored uppercase.
func (h *CouponHandler) CreateCoupon(c *fiber.Ctx) error {
	var coupon models.Coupon
	if err := c.BodyParser(&coupon); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	coupon.Code = strings.ToUpper(strings.TrimSpace(coupon.Code))
	if coupon.Code == "" || coupon.Discount <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "code and discount are required")
	}
	if coupon.Type != models.CouponTypePercent && coupon.Type != models.CouponTypeFixed {
		return fiber.NewError(fiber.StatusBadRequest, "type must be percent or fixed")
	}

	if err := h.db.Create(&coupon).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": coupon})
}

// DeleteCoupon removes a coupon.
func (h *CouponHandler) DeleteCoupon(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	if err := h.db.Delete(&models.Coupon{}, "id = ?", id).Error; err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type validateCouponRequest struct {
	Code     string  `json:"code"`
	Subtotal float64 `json:"subtotal"`
}

// ValidateCoupon computes the discount a code grants for a subtotal and
// counts the redemption. Exhausted or unknown codes are rejected.
func (h *CouponHandler) ValidateCoupon(c *fiber.Ctx) error {
	var req validateCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Subtotal < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid subtotal")
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))

	var coupon models.Coupon
	if err := h.db.First(&coupon, "code = ?", code).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "coupon not found")
		}
		return err
	}

	if coupon.MaxUses != nil && coupon.UsedCount >= *coupon.MaxUses {
		return fiber.NewError(fiber.StatusConflict, "coupon exhausted")
	}

	discount := CouponDiscount(coupon, req.Subtotal)

	if err := h.db.Model(&coupon).
		Update("used_count", gorm.Expr("used_count + 1")).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"discount": discount,
		"total":    req.Subtotal - discount,
	})
}

// CouponDiscount returns the amount a coupon takes off a subtotal, never
// exceeding the subtotal itself.
func CouponDiscount(coupon models.Coupon, subtotal float64) float64 {
	var discount float64
	switch coupon.Type {
	case models.CouponTypePercent:
		discount = subtotal * coupon.Discount / 100
	case models.CouponTypeFixed:
		discount = coupon.Discount
	}
	if discount > subtotal {
		discount = subtotal
	}
	return discount
}
