package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-procurement-ws/internal/model"
	"go-procurement-ws/internal/repository"
	"go-procurement-ws/pkg/apperror"

	"github.com/google/uuid"
)

var (
	ErrSupplierNotFound = errors.New("supplier not found")
	ErrSupplierInUse    = errors.New("supplier is referenced by purchase orders")
)

type SupplierRequest struct {
	Name           string  `json:"name" form:"name" validate:"required,max=255"`
	TaxID          string  `json:"tax_id" form:"tax_id" validate:"required,max=100"`
	RegistrationNo string  `json:"registration_no" form:"registration_no" validate:"required,max=100"`
	Category       string  `json:"category" form:"category" validate:"required,max=100"`
	Status         string  `json:"status" form:"status" validate:"required,oneof=active pending blacklisted"`
	Address        *string `json:"address" form:"address"`
}

func (r *SupplierRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.TaxID = strings.TrimSpace(r.TaxID)
	r.RegistrationNo = strings.TrimSpace(r.RegistrationNo)
	r.Category = strings.TrimSpace(r.Category)
	r.Status = strings.TrimSpace(r.Status)
	if r.Address != nil {
		trimmed := strings.TrimSpace(*r.Address)
		if trimmed == "" {
			r.Address = nil
		} else {
			r.Address = &trimmed
		}
	}
}

type SupplierService interface {
	Create(ctx context.Context, req *SupplierRequest, actor Actor) (*model.Supplier, error)
	Update(ctx context.Context, id uuid.UUID, req *SupplierRequest, actor Actor) (*model.Supplier, error)
	Delete(ctx context.Context, id uuid.UUID, actor Actor) error
	Get(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
	List(ctx context.Context, filter repository.SupplierFilter) (*repository.Paged[model.Supplier], error)
	ListActive(ctx context.Context) ([]model.Supplier, error)
}

type supplierService struct {
	supplierRepo repository.SupplierRepository
	poRepo       repository.PurchaseOrderRepository
	txm          repository.TxManager
	notifier     Notifier
}

func NewSupplierService(supplierRepo repository.SupplierRepository, poRepo repository.PurchaseOrderRepository, txm repository.TxManager, notifier Notifier) SupplierService {
	return &supplierService{
		supplierRepo: supplierRepo,
		poRepo:       poRepo,
		txm:          txm,
		notifier:     notifierOrNop(notifier),
	}
}

// validate checks tag rules and uniqueness of tax_id and registration_no. excludeID is the
// supplier being edited, uuid.Nil on create.
func (s *supplierService) validate(ctx context.Context, req *SupplierRequest, excludeID uuid.UUID) error {
	errs := validateInput(req)

	if req.TaxID != "" && !errs.has("tax_id") {
		taken, err := s.supplierRepo.ExistsByTaxID(ctx, req.TaxID, excludeID)
		if err != nil {
			return apperror.NewInternal(err)
		}
		if taken {
			errs.add("tax_id", "has already been taken")
		}
	}
	if req.RegistrationNo != "" && !errs.has("registration_no") {
		taken, err := s.supplierRepo.ExistsByRegistrationNo(ctx, req.RegistrationNo, excludeID)
		if err != nil {
			return apperror.NewInternal(err)
		}
		if taken {
			errs.add("registration_no", "has already been taken")
		}
	}
	return errs.err()
}

func (s *supplierService) Create(ctx context.Context, req *SupplierRequest, actor Actor) (*model.Supplier, error) {
	req.normalize()
	if err := s.validate(ctx, req, uuid.Nil); err != nil {
		return nil, err
	}

	supplier := &model.Supplier{
		Name:           req.Name,
		TaxID:          req.TaxID,
		RegistrationNo: req.RegistrationNo,
		Category:       req.Category,
		Status:         model.SupplierStatus(req.Status),
		Address:        req.Address,
	}
	supplier.CreatedBy = actor.ID
	supplier.UpdatedBy = actor.ID

	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, storageError("supplier", nil, err)
	}

	s.publish("created", supplier, actor)
	return supplier, nil
}

func (s *supplierService) Update(ctx context.Context, id uuid.UUID, req *SupplierRequest, actor Actor) (*model.Supplier, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	req.normalize()
	if err := s.validate(ctx, req, id); err != nil {
		return nil, err
	}

	supplier := &model.Supplier{
		Name:           req.Name,
		TaxID:          req.TaxID,
		RegistrationNo: req.RegistrationNo,
		Category:       req.Category,
		Status:         model.SupplierStatus(req.Status),
		Address:        req.Address,
	}
	supplier.ID = id
	supplier.UpdatedBy = actor.ID

	if err := s.supplierRepo.Update(ctx, supplier); err != nil {
		return nil, s.notFoundOr(id, err)
	}

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish("updated", updated, actor)
	return updated, nil
}

// Delete refuses to remove a supplier that purchase orders still point at.
func (s *supplierService) Delete(ctx context.Context, id uuid.UUID, actor Actor) error {
	var deleted *model.Supplier
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		supplier, err := s.Get(ctx, id)
		if err != nil {
			return err
		}

		refs, err := s.poRepo.CountBySupplier(ctx, id)
		if err != nil {
			return apperror.NewInternal(err)
		}
		if refs > 0 {
			return apperror.NewConflict(fmt.Sprintf("Supplier %q is used by %d purchase order(s)", supplier.Name, refs)).
				WithDetail("purchase_orders", refs).
				WithCause(ErrSupplierInUse)
		}

		if err := s.supplierRepo.Delete(ctx, id); err != nil {
			return s.notFoundOr(id, err)
		}
		deleted = supplier
		return nil
	})
	if err != nil {
		return err
	}

	s.publish("deleted", deleted, actor)
	return nil
}

func (s *supplierService) Get(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, s.notFoundOr(id, err)
	}
	return supplier, nil
}

func (s *supplierService) List(ctx context.Context, filter repository.SupplierFilter) (*repository.Paged[model.Supplier], error) {
	if filter.Status != "" && !filter.Status.Valid() {
		var errs fieldErrors
		errs.add("status", "must be one of: active pending blacklisted")
		return nil, errs.err()
	}
	paged, err := s.supplierRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return paged, nil
}

func (s *supplierService) ListActive(ctx context.Context) ([]model.Supplier, error) {
	suppliers, err := s.supplierRepo.FindAllActive(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return suppliers, nil
}

func (s *supplierService) notFoundOr(id uuid.UUID, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NewNotFound("supplier", id).WithCause(ErrSupplierNotFound)
	}
	return storageError("supplier", id, err)
}

func (s *supplierService) publish(action string, supplier *model.Supplier, actor Actor) {
	s.notifier.Publish(ChangeEvent{
		Type:   "supplier_update",
		Action: action,
		Data: map[string]interface{}{
			"id":     supplier.ID,
			"name":   supplier.Name,
			"status": supplier.Status,
		},
		User:    actor,
		Message: fmt.Sprintf("%s %s supplier '%s'", actor.Name, action, supplier.Name),
		At:      time.Now(),
	})
}
