package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/tienda/internal/models"
)

func TestCouponDiscount(t *testing.T) {
	tests := []struct {
		name     string
		coupon   models.Coupon
		subtotal float64
		want     float64
	}{
		{
			name:     "percent discount",
			coupon:   models.Coupon{Type: models.CouponTypePercent, Discount: 10},
			subtotal: 1500,
			want:     150,
		},
		{
			name:     "fixed discount",
			coupon:   models.Coupon{Type: models.CouponTypeFixed, Discount: 200},
			subtotal: 1500,
			want:     200,
		},
		{
			name:     "fixed discount capped at subtotal",
			coupon:   models.Coupon{Type: models.CouponTypeFixed, Discount: 2000},
			subtotal: 1500,
			want:     1500,
		},
		{
			name:     "unknown type grants nothing",
			coupon:   models.Coupon{Type: "mystery", Discount: 50},
			subtotal: 1500,
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CouponDiscount(tt.coupon, tt.subtotal))
		})
	}
}
