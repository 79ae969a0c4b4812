package service

import (
	"context"
	"testing"
	"time"

	"go-procurement-ws/internal/model"
	"go-procurement-ws/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDashboardRepo struct {
	summary    []repository.DeliveryStatusSummary
	start, end time.Time
}

func (r *fakeDashboardRepo) GetStats(context.Context) (*repository.DashboardStats, error) {
	return &repository.DashboardStats{PurchaseOrderCount: 3}, nil
}

func (r *fakeDashboardRepo) GetDeliverySummary(context.Context) ([]repository.DeliveryStatusSummary, error) {
	return r.summary, nil
}

func (r *fakeDashboardRepo) GetStockMovement(_ context.Context, start, end time.Time) ([]repository.StockMovementData, error) {
	r.start, r.end = start, end
	return nil, nil
}

func TestDashboardService_DeliverySummaryZeroFilled(t *testing.T) {
	repo := &fakeDashboardRepo{summary: []repository.DeliveryStatusSummary{
		{Status: model.DeliveryDelivered, Count: 2, Total: decimal.RequireFromString("1500.50")},
	}}
	svc := NewDashboardService(repo)

	summary, err := svc.GetDeliverySummary(context.Background())
	require.NoError(t, err)
	require.Len(t, summary, len(model.DeliveryStatuses))

	for i, status := range model.DeliveryStatuses {
		assert.Equal(t, status, summary[i].Status)
		if status == model.DeliveryDelivered {
			assert.Equal(t, int64(2), summary[i].Count)
			assert.Equal(t, "1500.50", summary[i].Total.StringFixed(2))
		} else {
			assert.Zero(t, summary[i].Count)
			assert.True(t, summary[i].Total.IsZero())
		}
	}
}

func TestDashboardService_StockMovementWindow(t *testing.T) {
	repo := &fakeDashboardRepo{}
	svc := NewDashboardService(repo)
	ctx := context.Background()

	data, err := svc.GetStockMovement(ctx, 0)
	require.NoError(t, err)
	assert.NotNil(t, data)
	assert.InDelta(t, 7*24, repo.end.Sub(repo.start).Hours(), 1)

	_, err = svc.GetStockMovement(ctx, 5000)
	require.NoError(t, err)
	assert.InDelta(t, 365*24, repo.end.Sub(repo.start).Hours(), 25)
}
