package repository

import (
	"context"
	"time"

	"go-procurement-ws/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockMovementData is one day of the receiving/issuance chart.
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// DeliveryStatusSummary aggregates purchase orders per delivery status.
type DeliveryStatusSummary struct {
	Status model.DeliveryStatus `json:"status"`
	Count  int64                `json:"count"`
	Total  decimal.Decimal      `json:"total"`
}

// DashboardStats is the overview block of the dashboard.
type DashboardStats struct {
	SupplierCount      int64                          `json:"supplier_count"`
	SuppliersByStatus  map[model.SupplierStatus]int64 `json:"suppliers_by_status"`
	PurchaseOrderCount int64                          `json:"purchase_order_count"`
	CommittedValue     decimal.Decimal                `json:"committed_value"`
	StockItemCount     int64                          `json:"stock_item_count"`
	LowStockCount      int64                          `json:"low_stock_count"`
}

type DashboardRepository interface {
	GetStats(ctx context.Context) (*DashboardStats, error)
	GetDeliverySummary(ctx context.Context) ([]DeliveryStatusSummary, error)
	GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error)
}

type dashboardRepo struct {
	db *gorm.DB
}

func NewDashboardRepo(db *gorm.DB) DashboardRepository {
	return &dashboardRepo{db}
}

func (r *dashboardRepo) GetStats(ctx context.Context) (*DashboardStats, error) {
	db := conn(ctx, r.db)
	stats := DashboardStats{SuppliersByStatus: make(map[model.SupplierStatus]int64)}

	var supplierRows []struct {
		Status model.SupplierStatus
		Count  int64
	}
	err := db.Model(&model.Supplier{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&supplierRows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range supplierRows {
		stats.SuppliersByStatus[row.Status] = row.Count
		stats.SupplierCount += row.Count
	}

	if err := db.Model(&model.PurchaseOrder{}).Count(&stats.PurchaseOrderCount).Error; err != nil {
		return nil, err
	}

	// Cancelled orders are not committed spend.
	err = db.Model(&model.PurchaseOrder{}).
		Where("delivery_status <> ?", model.DeliveryCancelled).
		Select("COALESCE(SUM(total), 0)").
		Row().
		Scan(&stats.CommittedValue)
	if err != nil {
		return nil, err
	}

	if err := db.Model(&model.StockItem{}).Count(&stats.StockItemCount).Error; err != nil {
		return nil, err
	}
	err = db.Model(&model.StockItem{}).
		Where("quantity_on_hand <= reorder_level").
		Count(&stats.LowStockCount).Error
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func (r *dashboardRepo) GetDeliverySummary(ctx context.Context) ([]DeliveryStatusSummary, error) {
	var results []DeliveryStatusSummary
	err := conn(ctx, r.db).Model(&model.PurchaseOrder{}).
		Select("delivery_status AS status, COUNT(*) AS count, COALESCE(SUM(total), 0) AS total").
		Group("delivery_status").
		Scan(&results).Error
	return results, err
}

// GetStockMovement aggregates received and issued quantities per day.
func (r *dashboardRepo) GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error) {
	rows, err := conn(ctx, r.db).Raw(`
		SELECT TO_CHAR(day, 'YYYY-MM-DD') AS date,
			COALESCE(SUM(inbound), 0) AS inbound,
			COALESCE(SUM(outbound), 0) AS outbound
		FROM (
			SELECT DATE(received_at) AS day, quantity AS inbound, 0 AS outbound
			FROM stock_receivings WHERE received_at BETWEEN ? AND ?
			UNION ALL
			SELECT DATE(issued_at) AS day, 0 AS inbound, quantity AS outbound
			FROM stock_issuances WHERE issued_at BETWEEN ? AND ?
		) movements
		GROUP BY day
		ORDER BY day ASC`,
		startDate, endDate, startDate, endDate).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []StockMovementData
	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		results = append(results, data)
	}
	return results, rows.Err()
}
