package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Product struct {
	BaseModel
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	CashPrice   float64        `json:"cash_price"`
	Stock       int            `json:"stock"`
	Featured    bool           `gorm:"index" json:"featured"`
	Images      datatypes.JSON `gorm:"type:jsonb" json:"images"`
	CategoryID  *uuid.UUID     `gorm:"type:uuid;index" json:"category_id"`
	Category    *Category      `json:"category,omitempty"`
}
