package repository

import (
	"context"

	"go-procurement-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupplierFilter struct {
	Status   model.SupplierStatus
	Category string
	Search   string
	Page
}

type SupplierRepository interface {
	Create(ctx context.Context, supplier *model.Supplier) error
	Update(ctx context.Context, supplier *model.Supplier) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
	List(ctx context.Context, filter SupplierFilter) (*Paged[model.Supplier], error)
	FindAllActive(ctx context.Context) ([]model.Supplier, error)
	// Exists* ignore the record with excludeID so an update may keep its own values.
	ExistsByTaxID(ctx context.Context, taxID string, excludeID uuid.UUID) (bool, error)
	ExistsByRegistrationNo(ctx context.Context, registrationNo string, excludeID uuid.UUID) (bool, error)
}

type supplierRepo struct {
	db *gorm.DB
}

func NewSupplierRepo(db *gorm.DB) SupplierRepository {
	return &supplierRepo{db}
}

func (r *supplierRepo) Create(ctx context.Context, supplier *model.Supplier) error {
	return translateError(conn(ctx, r.db).Create(supplier).Error)
}

func (r *supplierRepo) Update(ctx context.Context, supplier *model.Supplier) error {
	res := conn(ctx, r.db).Model(&model.Supplier{}).
		Where("id = ?", supplier.ID).
		Updates(map[string]interface{}{
			"name":            supplier.Name,
			"tax_id":          supplier.TaxID,
			"registration_no": supplier.RegistrationNo,
			"category":        supplier.Category,
			"status":          supplier.Status,
			"address":         supplier.Address,
			"updated_by":      supplier.UpdatedBy,
		})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *supplierRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := conn(ctx, r.db).Delete(&model.Supplier{}, "id = ?", id)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *supplierRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	var supplier model.Supplier
	if err := conn(ctx, r.db).First(&supplier, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &supplier, nil
}

func (r *supplierRepo) List(ctx context.Context, filter SupplierFilter) (*Paged[model.Supplier], error) {
	page := filter.Page.Normalize()
	query := conn(ctx, r.db).Model(&model.Supplier{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR tax_id ILIKE ? OR registration_no ILIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var suppliers []model.Supplier
	err := query.Order("name ASC").
		Limit(page.PageSize).
		Offset(page.Offset()).
		Find(&suppliers).Error
	if err != nil {
		return nil, err
	}
	return newPaged(suppliers, total, page), nil
}

func (r *supplierRepo) FindAllActive(ctx context.Context) ([]model.Supplier, error) {
	var suppliers []model.Supplier
	err := conn(ctx, r.db).
		Where("status = ?", model.SupplierActive).
		Order("name ASC").
		Find(&suppliers).Error
	return suppliers, err
}

func (r *supplierRepo) ExistsByTaxID(ctx context.Context, taxID string, excludeID uuid.UUID) (bool, error) {
	return r.exists(ctx, "tax_id", taxID, excludeID)
}

func (r *supplierRepo) ExistsByRegistrationNo(ctx context.Context, registrationNo string, excludeID uuid.UUID) (bool, error) {
	return r.exists(ctx, "registration_no", registrationNo, excludeID)
}

func (r *supplierRepo) exists(ctx context.Context, column, value string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := conn(ctx, r.db).Model(&model.Supplier{}).Where(column+" = ?", value)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
