// Package export renders documents as spreadsheets.
package export

import (
	"fmt"
	"io"
	"strings"

	"go-procurement-ws/internal/model"

	"github.com/xuri/excelize/v2"
)

const (
	sheetName  = "Purchase Order"
	dateFormat = "2006-01-02"
	moneyFmt   = "#,##0.00"
	itemHeader = 18
)

var itemColumns = []string{"Stock No.", "Unit", "Description", "Quantity", "Unit Cost", "Amount"}

// PurchaseOrderFilename is the download name of an exported order.
func PurchaseOrderFilename(po *model.PurchaseOrder) string {
	return fmt.Sprintf("%s.xlsx", po.PONumber)
}

// WritePurchaseOrder writes po, its supplier and line items as an xlsx workbook.
func WritePurchaseOrder(w io.Writer, po *model.PurchaseOrder) error {
	f, err := PurchaseOrderWorkbook(po)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// PurchaseOrderWorkbook builds the workbook. Header fields sit in columns A:B,
// the item table starts at row 18.
func PurchaseOrderWorkbook(po *model.PurchaseOrder) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	title, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(moneyFmt)})
	if err != nil {
		return nil, err
	}

	set := func(cell string, value interface{}) {
		if err == nil {
			err = f.SetCellValue(sheetName, cell, value)
		}
	}

	set("A1", "PURCHASE ORDER")
	if err == nil {
		err = f.MergeCell(sheetName, "A1", "F1")
	}

	supplierName, supplierTaxID, supplierAddress := "", "", ""
	if po.Supplier != nil {
		supplierName = po.Supplier.Name
		supplierTaxID = po.Supplier.TaxID
		if po.Supplier.Address != nil {
			supplierAddress = *po.Supplier.Address
		}
	}
	dateOfDelivery := ""
	if po.DateOfDelivery != nil {
		dateOfDelivery = po.DateOfDelivery.Format(dateFormat)
	}

	header := [][2]string{
		{"P.O. No.", po.PONumber},
		{"Date", po.Date.Format(dateFormat)},
		{"Supplier", supplierName},
		{"TIN", supplierTaxID},
		{"Address", supplierAddress},
		{"Mode of Procurement", po.Mode},
		{"Fund Cluster", po.FundCluster},
		{"Type", documentTypes(po)},
		{"Place of Delivery", po.PlaceOfDelivery},
		{"Date of Delivery", dateOfDelivery},
		{"Delivery Term", po.DeliveryTerm},
		{"Payment Term", po.PaymentTerm},
		{"Delivery Status", string(po.DeliveryStatus)},
		{"End User", endUser(po)},
	}
	for i, kv := range header {
		row := i + 3
		set(fmt.Sprintf("A%d", row), kv[0])
		set(fmt.Sprintf("B%d", row), kv[1])
	}

	for i, name := range itemColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, itemHeader)
		set(cell, name)
	}

	row := itemHeader + 1
	for _, item := range po.Items {
		set(fmt.Sprintf("A%d", row), item.StockNo)
		set(fmt.Sprintf("B%d", row), item.Unit)
		set(fmt.Sprintf("C%d", row), item.Description)
		set(fmt.Sprintf("D%d", row), item.Quantity)
		set(fmt.Sprintf("E%d", row), item.UnitCost.InexactFloat64())
		set(fmt.Sprintf("F%d", row), item.Amount.InexactFloat64())
		row++
	}
	set(fmt.Sprintf("E%d", row), "TOTAL")
	set(fmt.Sprintf("F%d", row), po.Total.InexactFloat64())
	if err != nil {
		return nil, err
	}

	styles := []struct {
		from, to string
		style    int
	}{
		{"A1", "F1", title},
		{"A3", fmt.Sprintf("A%d", 2+len(header)), bold},
		{fmt.Sprintf("A%d", itemHeader), fmt.Sprintf("F%d", itemHeader), bold},
		{fmt.Sprintf("E%d", itemHeader+1), fmt.Sprintf("F%d", row), money},
		{fmt.Sprintf("E%d", row), fmt.Sprintf("E%d", row), bold},
	}
	for _, s := range styles {
		if err := f.SetCellStyle(sheetName, s.from, s.to, s.style); err != nil {
			return nil, err
		}
	}
	for col, width := range map[string]float64{"A": 22, "B": 12, "C": 48, "D": 10, "E": 14, "F": 16} {
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func documentTypes(po *model.PurchaseOrder) string {
	var kinds []string
	if po.IsPurchaseOrder {
		kinds = append(kinds, "Purchase Order")
	}
	if po.IsJobOrder {
		kinds = append(kinds, "Job Order")
	}
	if po.IsContractAgreement {
		kinds = append(kinds, "Contract Agreement")
	}
	return strings.Join(kinds, ", ")
}

func endUser(po *model.PurchaseOrder) string {
	parts := []string{po.EndUser}
	if po.Designation != "" {
		parts = append(parts, po.Designation)
	}
	if po.Department != "" {
		parts = append(parts, po.Department)
	}
	return strings.Join(parts, ", ")
}

func strPtr(s string) *string { return &s }
