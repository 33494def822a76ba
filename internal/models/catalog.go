package models

import "github.com/google/uuid"

// Category is a node in the catalog tree. Root categories have no parent.
type Category struct {
	BaseModel
	Name     string     `json:"name"`
	ParentID *uuid.UUID `gorm:"type:uuid;index" json:"parent_id"`
	Parent   *Category  `json:"parent,omitempty"`
	Children []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	Products []Product  `json:"products,omitempty"`
}
