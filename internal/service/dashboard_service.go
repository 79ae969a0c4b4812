package service

import (
	"context"
	"time"

	"go-procurement-ws/internal/model"
	"go-procurement-ws/internal/repository"
	"go-procurement-ws/pkg/apperror"

	"github.com/shopspring/decimal"
)

type DashboardService interface {
	GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error)
	GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error)
	// GetDeliverySummary returns one row per known delivery status, zero-filled.
	GetDeliverySummary(ctx context.Context) ([]repository.DeliveryStatusSummary, error)
}

type dashboardService struct {
	dashRepo repository.DashboardRepository
}

func NewDashboardService(dashRepo repository.DashboardRepository) DashboardService {
	return &dashboardService{dashRepo: dashRepo}
}

func (s *dashboardService) GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error) {
	if days < 1 {
		days = 7
	}
	if days > 365 {
		days = 365
	}
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	data, err := s.dashRepo.GetStockMovement(ctx, startDate, endDate)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	if data == nil {
		data = []repository.StockMovementData{}
	}
	return data, nil
}

func (s *dashboardService) GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error) {
	stats, err := s.dashRepo.GetStats(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return stats, nil
}

func (s *dashboardService) GetDeliverySummary(ctx context.Context) ([]repository.DeliveryStatusSummary, error) {
	rows, err := s.dashRepo.GetDeliverySummary(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	byStatus := make(map[model.DeliveryStatus]repository.DeliveryStatusSummary, len(rows))
	for _, row := range rows {
		byStatus[row.Status] = row
	}

	summary := make([]repository.DeliveryStatusSummary, 0, len(model.DeliveryStatuses))
	for _, status := range model.DeliveryStatuses {
		row, ok := byStatus[status]
		if !ok {
			row = repository.DeliveryStatusSummary{Status: status, Total: decimal.Zero}
		}
		summary = append(summary, row)
	}
	return summary, nil
}
