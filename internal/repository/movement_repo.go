package repository

import (
	"context"
	"time"

	"go-procurement-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovementFilter struct {
	StockItemID uuid.UUID
	From        *time.Time
	To          *time.Time
	Page
}

type ReceivingRepository interface {
	Create(ctx context.Context, receiving *model.StockReceiving) error
	UpdateNote(ctx context.Context, id uuid.UUID, reference, note, updatedBy string) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.StockReceiving, error)
	List(ctx context.Context, filter MovementFilter) (*Paged[model.StockReceiving], error)
}

type IssuanceRepository interface {
	Create(ctx context.Context, issuance *model.StockIssuance) error
	UpdateNote(ctx context.Context, id uuid.UUID, reference, note, updatedBy string) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.StockIssuance, error)
	List(ctx context.Context, filter MovementFilter) (*Paged[model.StockIssuance], error)
}

type receivingRepo struct {
	db *gorm.DB
}

func NewReceivingRepo(db *gorm.DB) ReceivingRepository {
	return &receivingRepo{db}
}

func (r *receivingRepo) Create(ctx context.Context, receiving *model.StockReceiving) error {
	return translateError(conn(ctx, r.db).Omit("StockItem", "PurchaseOrder").Create(receiving).Error)
}

func (r *receivingRepo) UpdateNote(ctx context.Context, id uuid.UUID, reference, note, updatedBy string) error {
	return updateMovementNote(conn(ctx, r.db).Model(&model.StockReceiving{}), id, reference, note, updatedBy)
}

func (r *receivingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteMovement(conn(ctx, r.db), &model.StockReceiving{}, id)
}

func (r *receivingRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.StockReceiving, error) {
	var receiving model.StockReceiving
	err := conn(ctx, r.db).
		Preload("StockItem").
		Preload("PurchaseOrder").
		First(&receiving, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &receiving, nil
}

func (r *receivingRepo) List(ctx context.Context, filter MovementFilter) (*Paged[model.StockReceiving], error) {
	page := filter.Page.Normalize()
	query := movementQuery(conn(ctx, r.db).Model(&model.StockReceiving{}), filter, "received_at")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var receivings []model.StockReceiving
	err := query.Preload("StockItem").
		Preload("PurchaseOrder").
		Order("received_at DESC").
		Limit(page.PageSize).
		Offset(page.Offset()).
		Find(&receivings).Error
	if err != nil {
		return nil, err
	}
	return newPaged(receivings, total, page), nil
}

type issuanceRepo struct {
	db *gorm.DB
}

func NewIssuanceRepo(db *gorm.DB) IssuanceRepository {
	return &issuanceRepo{db}
}

func (r *issuanceRepo) Create(ctx context.Context, issuance *model.StockIssuance) error {
	return translateError(conn(ctx, r.db).Omit("StockItem").Create(issuance).Error)
}

func (r *issuanceRepo) UpdateNote(ctx context.Context, id uuid.UUID, reference, note, updatedBy string) error {
	return updateMovementNote(conn(ctx, r.db).Model(&model.StockIssuance{}), id, reference, note, updatedBy)
}

func (r *issuanceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteMovement(conn(ctx, r.db), &model.StockIssuance{}, id)
}

func (r *issuanceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.StockIssuance, error) {
	var issuance model.StockIssuance
	if err := conn(ctx, r.db).Preload("StockItem").First(&issuance, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &issuance, nil
}

func (r *issuanceRepo) List(ctx context.Context, filter MovementFilter) (*Paged[model.StockIssuance], error) {
	page := filter.Page.Normalize()
	query := movementQuery(conn(ctx, r.db).Model(&model.StockIssuance{}), filter, "issued_at")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var issuances []model.StockIssuance
	err := query.Preload("StockItem").
		Order("issued_at DESC").
		Limit(page.PageSize).
		Offset(page.Offset()).
		Find(&issuances).Error
	if err != nil {
		return nil, err
	}
	return newPaged(issuances, total, page), nil
}

func movementQuery(query *gorm.DB, filter MovementFilter, timeColumn string) *gorm.DB {
	if filter.StockItemID != uuid.Nil {
		query = query.Where("stock_item_id = ?", filter.StockItemID)
	}
	if filter.From != nil {
		query = query.Where(timeColumn+" >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where(timeColumn+" < ?", *filter.To)
	}
	return query
}

func updateMovementNote(query *gorm.DB, id uuid.UUID, reference, note, updatedBy string) error {
	res := query.Where("id = ?", id).Updates(map[string]interface{}{
		"reference":  reference,
		"note":       note,
		"updated_by": updatedBy,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func deleteMovement(db *gorm.DB, value interface{}, id uuid.UUID) error {
	res := db.Delete(value, "id = ?", id)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
