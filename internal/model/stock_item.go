package model

import "github.com/google/uuid"

// Category groups stock items.
type Category struct {
	BaseModel
	Name        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

// StockItem is a stocked article and its quantity on hand.
type StockItem struct {
	BaseModel
	StockNo        string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"stock_no"`
	Name           string     `gorm:"type:varchar(255);not null" json:"name"`
	Unit           string     `gorm:"type:varchar(30)" json:"unit"`
	CategoryID     *uuid.UUID `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Category       *Category  `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	QuantityOnHand int        `gorm:"not null;default:0" json:"quantity_on_hand"`
	ReorderLevel   int        `gorm:"not null;default:0" json:"reorder_level"`
}

// BelowReorderLevel reports whether the item should be restocked.
func (s *StockItem) BelowReorderLevel() bool {
	return s.QuantityOnHand <= s.ReorderLevel
}
