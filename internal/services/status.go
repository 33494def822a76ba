package services

import "github.com/example/tienda/internal/models"

// MapPaymentStatus translates the gateway's status vocabulary into the
// store's. Unknown statuses pass through verbatim; an absent status counts
// as pending.
func MapPaymentStatus(gatewayStatus string) string {
	switch gatewayStatus {
	case "approved":
		return models.OrderStatusPaid
	case "pending":
		return models.OrderStatusPending
	case "in_process":
		return models.OrderStatusInReview
	case "rejected":
		return models.OrderStatusCancelled
	case "":
		return models.OrderStatusPending
	default:
		return gatewayStatus
	}
}
