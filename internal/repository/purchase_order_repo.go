package repository

import (
	"context"
	"regexp"

	"go-procurement-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseOrderFilter struct {
	SupplierID     uuid.UUID
	DeliveryStatus model.DeliveryStatus
	Search         string
	Page
}

type PurchaseOrderRepository interface {
	// Create inserts the header and its items.
	Create(ctx context.Context, po *model.PurchaseOrder) error
	// Update rewrites the header (po_number excluded) and replaces the items.
	Update(ctx context.Context, po *model.PurchaseOrder) error
	// Delete removes the items and then the header.
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	List(ctx context.Context, filter PurchaseOrderFilter) (*Paged[model.PurchaseOrder], error)
	UpdateDeliveryStatus(ctx context.Context, id uuid.UUID, status model.DeliveryStatus, updatedBy string) error
	// LatestNumber returns the highest po_number carrying prefix, or "" when there is none.
	LatestNumber(ctx context.Context, prefix string) (string, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	CountBySupplier(ctx context.Context, supplierID uuid.UUID) (int64, error)
	CountItems(ctx context.Context, purchaseOrderID uuid.UUID) (int64, error)
}

type purchaseOrderRepo struct {
	db *gorm.DB
}

func NewPurchaseOrderRepo(db *gorm.DB) PurchaseOrderRepository {
	return &purchaseOrderRepo{db}
}

func (r *purchaseOrderRepo) Create(ctx context.Context, po *model.PurchaseOrder) error {
	return translateError(conn(ctx, r.db).Omit("Supplier").Create(po).Error)
}

func (r *purchaseOrderRepo) Update(ctx context.Context, po *model.PurchaseOrder) error {
	db := conn(ctx, r.db)

	res := db.Model(&model.PurchaseOrder{}).
		Where("id = ?", po.ID).
		Updates(map[string]interface{}{
			"supplier_id":        po.SupplierID,
			"date":               po.Date,
			"mode":               po.Mode,
			"fund_cluster":       po.FundCluster,
			"job_order":          po.IsJobOrder,
			"contract_agreement": po.IsContractAgreement,
			"purchase_order":     po.IsPurchaseOrder,
			"place_of_delivery":  po.PlaceOfDelivery,
			"date_of_delivery":   po.DateOfDelivery,
			"delivery_term":      po.DeliveryTerm,
			"payment_term":       po.PaymentTerm,
			"delivery_status":    po.DeliveryStatus,
			"end_user":           po.EndUser,
			"department":         po.Department,
			"designation":        po.Designation,
			"total":              po.Total,
			"updated_by":         po.UpdatedBy,
		})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	if err := db.Where("purchase_order_id = ?", po.ID).Delete(&model.PurchaseOrderItem{}).Error; err != nil {
		return translateError(err)
	}
	if len(po.Items) == 0 {
		return nil
	}
	for i := range po.Items {
		po.Items[i].ID = uuid.Nil
		po.Items[i].PurchaseOrderID = po.ID
		po.Items[i].CreatedBy = po.UpdatedBy
		po.Items[i].UpdatedBy = po.UpdatedBy
	}
	return translateError(db.Create(&po.Items).Error)
}

func (r *purchaseOrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	db := conn(ctx, r.db)
	if err := db.Where("purchase_order_id = ?", id).Delete(&model.PurchaseOrderItem{}).Error; err != nil {
		return translateError(err)
	}
	res := db.Delete(&model.PurchaseOrder{}, "id = ?", id)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *purchaseOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := conn(ctx, r.db).
		Preload("Supplier").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_no ASC")
		}).
		First(&po, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &po, nil
}

func (r *purchaseOrderRepo) List(ctx context.Context, filter PurchaseOrderFilter) (*Paged[model.PurchaseOrder], error) {
	page := filter.Page.Normalize()
	query := conn(ctx, r.db).Model(&model.PurchaseOrder{})

	if filter.SupplierID != uuid.Nil {
		query = query.Where("supplier_id = ?", filter.SupplierID)
	}
	if filter.DeliveryStatus != "" {
		query = query.Where("delivery_status = ?", filter.DeliveryStatus)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("po_number ILIKE ? OR end_user ILIKE ? OR department ILIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var orders []model.PurchaseOrder
	err := query.Preload("Supplier").
		Order("date DESC, po_number DESC").
		Limit(page.PageSize).
		Offset(page.Offset()).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return newPaged(orders, total, page), nil
}

func (r *purchaseOrderRepo) UpdateDeliveryStatus(ctx context.Context, id uuid.UUID, status model.DeliveryStatus, updatedBy string) error {
	res := conn(ctx, r.db).Model(&model.PurchaseOrder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"delivery_status": status,
			"updated_by":      updatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *purchaseOrderRepo) LatestNumber(ctx context.Context, prefix string) (string, error) {
	var numbers []string
	err := conn(ctx, r.db).Model(&model.PurchaseOrder{}).
		Where("po_number ~ ?", numberPattern(prefix)).
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL:  "CAST(SUBSTRING(po_number FROM ?) AS NUMERIC) DESC",
			Vars: []interface{}{len(prefix) + 2},
		}}).
		Limit(1).
		Pluck("po_number", &numbers).Error
	if err != nil || len(numbers) == 0 {
		return "", err
	}
	return numbers[0], nil
}

// numberPattern matches <prefix>-<digits> and nothing else; the prefix is taken literally.
func numberPattern(prefix string) string {
	return "^" + regexp.QuoteMeta(prefix) + "-[0-9]+$"
}

func (r *purchaseOrderRepo) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&model.PurchaseOrder{}).Where("po_number = ?", number).Count(&count).Error
	return count > 0, err
}

func (r *purchaseOrderRepo) CountBySupplier(ctx context.Context, supplierID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&model.PurchaseOrder{}).Where("supplier_id = ?", supplierID).Count(&count).Error
	return count, err
}

func (r *purchaseOrderRepo) CountItems(ctx context.Context, purchaseOrderID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&model.PurchaseOrderItem{}).Where("purchase_order_id = ?", purchaseOrderID).Count(&count).Error
	return count, err
}
