package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeliveryStatus tracks fulfilment of a purchase order.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "Pending"
	DeliveryPartial   DeliveryStatus = "Partially Delivered"
	DeliveryDelivered DeliveryStatus = "Delivered"
	DeliveryCancelled DeliveryStatus = "Cancelled"
)

// DeliveryStatuses lists the statuses in workflow order.
var DeliveryStatuses = []DeliveryStatus{DeliveryPending, DeliveryPartial, DeliveryDelivered, DeliveryCancelled}

// Valid reports whether s is one of the known statuses.
func (s DeliveryStatus) Valid() bool {
	for _, known := range DeliveryStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// PurchaseOrder is the header of a procurement transaction. It exclusively owns its items.
type PurchaseOrder struct {
	BaseModel
	PONumber   string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"po_number"`
	SupplierID uuid.UUID `gorm:"type:uuid;not null;index" json:"supplier_id"`
	Supplier   *Supplier `gorm:"foreignKey:SupplierID;constraint:OnDelete:RESTRICT" json:"supplier,omitempty"`

	Date        time.Time `gorm:"type:date;not null" json:"date"`
	Mode        string    `gorm:"type:varchar(100);not null" json:"mode"`
	FundCluster string    `gorm:"type:varchar(100);not null" json:"fund_cluster"`

	IsJobOrder          bool `gorm:"column:job_order;default:false" json:"job_order"`
	IsContractAgreement bool `gorm:"column:contract_agreement;default:false" json:"contract_agreement"`
	IsPurchaseOrder     bool `gorm:"column:purchase_order;default:false" json:"purchase_order"`

	PlaceOfDelivery string         `gorm:"type:varchar(255);not null" json:"place_of_delivery"`
	DateOfDelivery  *time.Time     `gorm:"type:date" json:"date_of_delivery,omitempty"`
	DeliveryTerm    string         `gorm:"type:varchar(255);not null" json:"delivery_term"`
	PaymentTerm     string         `gorm:"type:varchar(255);not null" json:"payment_term"`
	DeliveryStatus  DeliveryStatus `gorm:"type:varchar(30);not null;default:'Pending';index" json:"delivery_status"`

	EndUser     string `gorm:"type:varchar(255);not null" json:"end_user"`
	Department  string `gorm:"type:varchar(255);not null" json:"department"`
	Designation string `gorm:"type:varchar(255);not null;default:''" json:"designation"`

	Total decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"total"`

	Items []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// PurchaseOrderItem is one line of a purchase order.
type PurchaseOrderItem struct {
	BaseModel
	PurchaseOrderID uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_order_id"`
	LineNo          int             `gorm:"not null" json:"line_no"`
	StockNo         string          `gorm:"type:varchar(50)" json:"stock_no"`
	Unit            string          `gorm:"type:varchar(30);not null" json:"unit"`
	Description     string          `gorm:"type:text;not null" json:"description"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	UnitCost        decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"unit_cost"`
	Amount          decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
}

// ComputeAmount sets Amount to Quantity x UnitCost rounded to two places.
func (i *PurchaseOrderItem) ComputeAmount() decimal.Decimal {
	i.Amount = decimal.NewFromInt(int64(i.Quantity)).Mul(i.UnitCost).Round(2)
	return i.Amount
}

// Recalculate numbers the lines in order and sets every amount and the header total.
func (po *PurchaseOrder) Recalculate() decimal.Decimal {
	total := decimal.Zero
	for idx := range po.Items {
		po.Items[idx].LineNo = idx + 1
		total = total.Add(po.Items[idx].ComputeAmount())
	}
	po.Total = total.Round(2)
	return po.Total
}
