package export

import (
	"bytes"
	"testing"
	"time"

	"go-procurement-ws/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func samplePurchaseOrder() *model.PurchaseOrder {
	address := "12 Rizal Ave"
	po := &model.PurchaseOrder{
		PONumber:        "PO-0003",
		Supplier:        &model.Supplier{Name: "Acme Trading", TaxID: "123-456", Address: &address},
		Date:            time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Mode:            "Shopping",
		FundCluster:     "01",
		IsPurchaseOrder: true,
		IsJobOrder:      true,
		PlaceOfDelivery: "Main Warehouse",
		DeliveryTerm:    "15 days",
		PaymentTerm:     "Net 30",
		DeliveryStatus:  model.DeliveryPending,
		EndUser:         "J. Cruz",
		Department:      "Supply Office",
		Items: []model.PurchaseOrderItem{
			{StockNo: "SN-1", Unit: "ream", Description: "Bond paper", Quantity: 2, UnitCost: decimal.RequireFromString("100")},
			{StockNo: "SN-2", Unit: "box", Description: "Ballpen", Quantity: 3, UnitCost: decimal.RequireFromString("50")},
		},
	}
	po.Recalculate()
	return po
}

func TestWritePurchaseOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePurchaseOrder(&buf, samplePurchaseOrder()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	raw := excelize.Options{RawCellValue: true}
	get := func(cell string) string {
		v, err := f.GetCellValue(sheetName, cell, raw)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "PURCHASE ORDER", get("A1"))
	assert.Equal(t, "PO-0003", get("B3"))
	assert.Equal(t, "2026-03-02", get("B4"))
	assert.Equal(t, "Acme Trading", get("B5"))
	assert.Equal(t, "Purchase Order, Job Order", get("B10"))
	assert.Equal(t, "J. Cruz, Supply Office", get("B16"))

	assert.Equal(t, "Description", get("C18"))
	assert.Equal(t, "Bond paper", get("C19"))
	assert.Equal(t, "2", get("D19"))
	assert.Equal(t, "200", get("F19"))
	assert.Equal(t, "150", get("F20"))
	assert.Equal(t, "TOTAL", get("E21"))
	assert.Equal(t, "350", get("F21"))
}

func TestPurchaseOrderWorkbook_NoSupplierNoItems(t *testing.T) {
	f, err := PurchaseOrderWorkbook(&model.PurchaseOrder{PONumber: "PO-0001"})
	require.NoError(t, err)
	defer f.Close()

	total, err := f.GetCellValue(sheetName, "F19", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "0", total)
	assert.Equal(t, "PO-0001.xlsx", PurchaseOrderFilename(&model.PurchaseOrder{PONumber: "PO-0001"}))
}
