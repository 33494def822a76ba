package services

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/example/tienda/internal/models"
)

// BuildOrder maps an authoritative gateway payment onto an Order record
// keyed by the payment id. Missing gateway fields default to zero values;
// the build never fails on partial data.
func BuildOrder(paymentID string, payment *Payment, now time.Time) models.Order {
	items := make([]models.OrderItem, 0, len(payment.AdditionalInfo.Items))
	for _, item := range payment.AdditionalInfo.Items {
		items = append(items, models.OrderItem{
			Title:     item.Title,
			Quantity:  int(item.Quantity),
			UnitPrice: float64(item.UnitPrice),
		})
	}
	itemsJSON, _ := json.Marshal(items)

	date := now
	if payment.DateApproved != nil {
		date = *payment.DateApproved
	}

	return models.Order{
		ID:            paymentID,
		Status:        MapPaymentStatus(payment.Status),
		StatusDetail:  payment.StatusDetail,
		Amount:        float64(payment.TransactionAmount),
		Email:         payment.Payer.Email,
		PayerName:     strings.TrimSpace(payment.Payer.FirstName + " " + payment.Payer.LastName),
		Phone:         payment.Payer.Phone.Number,
		PaymentMethod: payment.PaymentMethod.Type,
		PaymentType:   payment.PaymentTypeID,
		Items:         datatypes.JSON(itemsJSON),
		Date:          date,
		LastUpdate:    now,
	}
}
