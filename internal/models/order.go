package models

import (
	"time"

	"gorm.io/datatypes"
)

// Internal order status vocabulary. The first four are produced by the
// webhook reconciler; the rest only by manual admin actions.
const (
	OrderStatusPaid      = "pagado"
	OrderStatusPending   = "pendiente_pago"
	OrderStatusInReview  = "en_revision"
	OrderStatusCancelled = "cancelado"
	OrderStatusPreparing = "en_preparacion"
	OrderStatusShipped   = "enviado"
	OrderStatusDelivered = "entregado"
)

// Order is one payment-gateway transaction. The primary key is the
// gateway's payment id, so redelivered webhooks merge into the same row.
type Order struct {
	ID            string         `gorm:"primaryKey" json:"id"`
	Status        string         `gorm:"index" json:"status"`
	StatusDetail  string         `json:"status_detail"`
	Amount        float64        `json:"amount"`
	Email         string         `gorm:"index" json:"email"`
	PayerName     string         `json:"payer_name"`
	Phone         string         `json:"phone"`
	PaymentMethod string         `json:"payment_method"`
	PaymentType   string         `json:"payment_type"`
	Items         datatypes.JSON `gorm:"type:jsonb" json:"items"`
	Date          time.Time      `json:"date"`
	LastUpdate    time.Time      `json:"lastUpdate"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// OrderItem is a point-in-time copy of one purchased line, stored inside
// Order.Items as jsonb rather than referencing live catalog rows.
type OrderItem struct {
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}
