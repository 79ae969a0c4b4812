package repository

import (
	"context"

	"go-procurement-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StockItemFilter struct {
	CategoryID uuid.UUID
	Search     string
	LowStock   bool
	Page
}

type StockItemRepository interface {
	Create(ctx context.Context, item *model.StockItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.StockItem, error)
	// FindByIDForUpdate locks the row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.StockItem, error)
	FindByStockNo(ctx context.Context, stockNo string) (*model.StockItem, error)
	List(ctx context.Context, filter StockItemFilter) (*Paged[model.StockItem], error)
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int, updatedBy string) error
}

type stockItemRepo struct {
	db *gorm.DB
}

func NewStockItemRepo(db *gorm.DB) StockItemRepository {
	return &stockItemRepo{db}
}

func (r *stockItemRepo) Create(ctx context.Context, item *model.StockItem) error {
	return translateError(conn(ctx, r.db).Omit("Category").Create(item).Error)
}

func (r *stockItemRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.StockItem, error) {
	var item model.StockItem
	if err := conn(ctx, r.db).Preload("Category").First(&item, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &item, nil
}

func (r *stockItemRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.StockItem, error) {
	var item model.StockItem
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&item, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &item, nil
}

func (r *stockItemRepo) FindByStockNo(ctx context.Context, stockNo string) (*model.StockItem, error) {
	var item model.StockItem
	if err := conn(ctx, r.db).First(&item, "stock_no = ?", stockNo).Error; err != nil {
		return nil, translateError(err)
	}
	return &item, nil
}

func (r *stockItemRepo) List(ctx context.Context, filter StockItemFilter) (*Paged[model.StockItem], error) {
	page := filter.Page.Normalize()
	query := conn(ctx, r.db).Model(&model.StockItem{})

	if filter.CategoryID != uuid.Nil {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("stock_no ILIKE ? OR name ILIKE ?", like, like)
	}
	if filter.LowStock {
		query = query.Where("quantity_on_hand <= reorder_level")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []model.StockItem
	err := query.Preload("Category").
		Order("stock_no ASC").
		Limit(page.PageSize).
		Offset(page.Offset()).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return newPaged(items, total, page), nil
}

func (r *stockItemRepo) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int, updatedBy string) error {
	return conn(ctx, r.db).Model(&model.StockItem{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity_on_hand": quantity,
			"updated_by":       updatedBy,
		}).Error
}
