package model

import (
	"time"

	"github.com/google/uuid"
)

type MovementType string

const (
	MovementReceiving MovementType = "receiving"
	MovementIssuance  MovementType = "issuance"
)

// StockReceiving records goods coming in, optionally against a purchase order.
type StockReceiving struct {
	BaseModel
	StockItemID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"stock_item_id"`
	StockItem       *StockItem     `gorm:"foreignKey:StockItemID;constraint:OnDelete:RESTRICT" json:"stock_item,omitempty"`
	PurchaseOrderID *uuid.UUID     `gorm:"type:uuid;index" json:"purchase_order_id,omitempty"`
	PurchaseOrder   *PurchaseOrder `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:SET NULL" json:"purchase_order,omitempty"`
	Quantity        int            `gorm:"not null" json:"quantity"`
	ReceivedAt      time.Time      `gorm:"not null" json:"received_at"`
	Reference       string         `gorm:"type:varchar(100)" json:"reference"`
	Note            string         `gorm:"type:text" json:"note"`
}

// StockIssuance records goods handed out to a requesting office.
type StockIssuance struct {
	BaseModel
	StockItemID uuid.UUID  `gorm:"type:uuid;not null;index" json:"stock_item_id"`
	StockItem   *StockItem `gorm:"foreignKey:StockItemID;constraint:OnDelete:RESTRICT" json:"stock_item,omitempty"`
	Quantity    int        `gorm:"not null" json:"quantity"`
	IssuedTo    string     `gorm:"type:varchar(255);not null" json:"issued_to"`
	IssuedAt    time.Time  `gorm:"not null" json:"issued_at"`
	Reference   string     `gorm:"type:varchar(100)" json:"reference"`
	Note        string     `gorm:"type:text" json:"note"`
}

// DocumentSequence holds the last number handed out for a document kind.
type DocumentSequence struct {
	Name      string    `gorm:"type:varchar(30);primaryKey" json:"name"`
	LastValue int64     `gorm:"not null;default:0" json:"last_value"`
	UpdatedAt time.Time `json:"updated_at"`
}
