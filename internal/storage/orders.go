package storage

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/tienda/internal/models"
)

// OrderStore persists reconciled orders keyed by the gateway payment id.
type OrderStore interface {
	Upsert(ctx context.Context, order *models.Order) error
}

// GormOrderStore is the Postgres-backed OrderStore.
type GormOrderStore struct {
	db *gorm.DB
}

// NewOrderStore constructs a GormOrderStore.
func NewOrderStore(db *gorm.DB) *GormOrderStore {
	return &GormOrderStore{db: db}
}

// Upsert writes the order with merge semantics: create when the payment id
// is new, otherwise overwrite every column with the recomputed record.
// Insert-only semantics would break webhook redelivery.
func (s *GormOrderStore) Upsert(ctx context.Context, order *models.Order) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(order).Error
}
