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
	ErrCategoryNotFound  = errors.New("category not found")
	ErrStockItemNotFound = errors.New("stock item not found")
	ErrMovementNotFound  = errors.New("stock movement not found")
)

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

type StockItemRequest struct {
	StockNo        string `json:"stock_no" validate:"required,max=50"`
	Name           string `json:"name" validate:"required,max=255"`
	Unit           string `json:"unit" validate:"max=30"`
	CategoryID     string `json:"category_id" validate:"omitempty,uuid"`
	QuantityOnHand int    `json:"quantity_on_hand" validate:"gte=0"`
	ReorderLevel   int    `json:"reorder_level" validate:"gte=0"`
}

type ReceivingRequest struct {
	StockItemID     string `json:"stock_item_id" validate:"required,uuid"`
	PurchaseOrderID string `json:"purchase_order_id" validate:"omitempty,uuid"`
	Quantity        int    `json:"quantity" validate:"gt=0"`
	ReceivedAt      string `json:"received_at" validate:"omitempty,datetime=2006-01-02"`
	Reference       string `json:"reference" validate:"max=100"`
	Note            string `json:"note"`
}

type IssuanceRequest struct {
	StockItemID string `json:"stock_item_id" validate:"required,uuid"`
	Quantity    int    `json:"quantity" validate:"gt=0"`
	IssuedTo    string `json:"issued_to" validate:"required,max=255"`
	IssuedAt    string `json:"issued_at" validate:"omitempty,datetime=2006-01-02"`
	Reference   string `json:"reference" validate:"max=100"`
	Note        string `json:"note"`
}

// MovementNoteRequest edits the free-text part of a receiving or issuance.
// Quantities are corrected by deleting and recording again.
type MovementNoteRequest struct {
	Reference string `json:"reference" validate:"max=100"`
	Note      string `json:"note"`
}

type InventoryService interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error)
	CreateCategory(ctx context.Context, req *CategoryRequest, actor Actor) (*model.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req *CategoryRequest, actor Actor) (*model.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	ListStockItems(ctx context.Context, filter repository.StockItemFilter) (*repository.Paged[model.StockItem], error)
	GetStockItem(ctx context.Context, id uuid.UUID) (*model.StockItem, error)
	CreateStockItem(ctx context.Context, req *StockItemRequest, actor Actor) (*model.StockItem, error)

	Receive(ctx context.Context, req *ReceivingRequest, actor Actor) (*model.StockReceiving, error)
	ListReceivings(ctx context.Context, filter repository.MovementFilter) (*repository.Paged[model.StockReceiving], error)
	GetReceiving(ctx context.Context, id uuid.UUID) (*model.StockReceiving, error)
	UpdateReceiving(ctx context.Context, id uuid.UUID, req *MovementNoteRequest, actor Actor) (*model.StockReceiving, error)
	DeleteReceiving(ctx context.Context, id uuid.UUID, actor Actor) error

	Issue(ctx context.Context, req *IssuanceRequest, actor Actor) (*model.StockIssuance, error)
	ListIssuances(ctx context.Context, filter repository.MovementFilter) (*repository.Paged[model.StockIssuance], error)
	GetIssuance(ctx context.Context, id uuid.UUID) (*model.StockIssuance, error)
	UpdateIssuance(ctx context.Context, id uuid.UUID, req *MovementNoteRequest, actor Actor) (*model.StockIssuance, error)
	DeleteIssuance(ctx context.Context, id uuid.UUID, actor Actor) error
}

type inventoryService struct {
	categoryRepo  repository.CategoryRepository
	stockItemRepo repository.StockItemRepository
	receivingRepo repository.ReceivingRepository
	issuanceRepo  repository.IssuanceRepository
	poRepo        repository.PurchaseOrderRepository
	txm           repository.TxManager
	notifier      Notifier
}

func NewInventoryService(
	categoryRepo repository.CategoryRepository,
	stockItemRepo repository.StockItemRepository,
	receivingRepo repository.ReceivingRepository,
	issuanceRepo repository.IssuanceRepository,
	poRepo repository.PurchaseOrderRepository,
	txm repository.TxManager,
	notifier Notifier,
) InventoryService {
	return &inventoryService{
		categoryRepo:  categoryRepo,
		stockItemRepo: stockItemRepo,
		receivingRepo: receivingRepo,
		issuanceRepo:  issuanceRepo,
		poRepo:        poRepo,
		txm:           txm,
		notifier:      notifierOrNop(notifier),
	}
}

// ---- categories ----

func (s *inventoryService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return categories, nil
}

func (s *inventoryService) GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("category", id, ErrCategoryNotFound, err)
	}
	return category, nil
}

func (s *inventoryService) validateCategory(ctx context.Context, req *CategoryRequest, excludeID uuid.UUID) error {
	req.Name = strings.TrimSpace(req.Name)
	errs := validateInput(req)
	if req.Name != "" && !errs.has("name") {
		taken, err := s.categoryRepo.ExistsByName(ctx, req.Name, excludeID)
		if err != nil {
			return apperror.NewInternal(err)
		}
		if taken {
			errs.add("name", "has already been taken")
		}
	}
	return errs.err()
}

func (s *inventoryService) CreateCategory(ctx context.Context, req *CategoryRequest, actor Actor) (*model.Category, error) {
	if err := s.validateCategory(ctx, req, uuid.Nil); err != nil {
		return nil, err
	}
	category := &model.Category{Name: req.Name, Description: strings.TrimSpace(req.Description)}
	category.CreatedBy = actor.ID
	category.UpdatedBy = actor.ID

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, storageError("category", nil, err)
	}
	return category, nil
}

func (s *inventoryService) UpdateCategory(ctx context.Context, id uuid.UUID, req *CategoryRequest, actor Actor) (*model.Category, error) {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return nil, err
	}
	if err := s.validateCategory(ctx, req, id); err != nil {
		return nil, err
	}

	category := &model.Category{Name: req.Name, Description: strings.TrimSpace(req.Description)}
	category.ID = id
	category.UpdatedBy = actor.ID
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, notFound("category", id, ErrCategoryNotFound, err)
	}
	return s.GetCategory(ctx, id)
}

func (s *inventoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return notFound("category", id, ErrCategoryNotFound, err)
	}
	return nil
}

// ---- stock items ----

func (s *inventoryService) ListStockItems(ctx context.Context, filter repository.StockItemFilter) (*repository.Paged[model.StockItem], error) {
	paged, err := s.stockItemRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return paged, nil
}

func (s *inventoryService) GetStockItem(ctx context.Context, id uuid.UUID) (*model.StockItem, error) {
	item, err := s.stockItemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("stock item", id, ErrStockItemNotFound, err)
	}
	return item, nil
}

func (s *inventoryService) CreateStockItem(ctx context.Context, req *StockItemRequest, actor Actor) (*model.StockItem, error) {
	req.StockNo = strings.TrimSpace(req.StockNo)
	errs := validateInput(req)

	if req.StockNo != "" && !errs.has("stock_no") {
		_, err := s.stockItemRepo.FindByStockNo(ctx, req.StockNo)
		switch {
		case err == nil:
			errs.add("stock_no", "has already been taken")
		case !errors.Is(err, repository.ErrNotFound):
			return nil, apperror.NewInternal(err)
		}
	}

	var categoryID *uuid.UUID
	if req.CategoryID != "" && !errs.has("category_id") {
		id := uuid.MustParse(req.CategoryID)
		if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return nil, apperror.NewInternal(err)
			}
			errs.add("category_id", "selected category does not exist")
		}
		categoryID = &id
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	item := &model.StockItem{
		StockNo:        req.StockNo,
		Name:           strings.TrimSpace(req.Name),
		Unit:           strings.TrimSpace(req.Unit),
		CategoryID:     categoryID,
		QuantityOnHand: req.QuantityOnHand,
		ReorderLevel:   req.ReorderLevel,
	}
	item.CreatedBy = actor.ID
	item.UpdatedBy = actor.ID

	if err := s.stockItemRepo.Create(ctx, item); err != nil {
		return nil, storageError("stock item", nil, err)
	}
	return item, nil
}

// ---- receiving ----

func (s *inventoryService) Receive(ctx context.Context, req *ReceivingRequest, actor Actor) (*model.StockReceiving, error) {
	errs := validateInput(req)
	if err := errs.err(); err != nil {
		return nil, err
	}

	receiving := &model.StockReceiving{
		StockItemID: uuid.MustParse(req.StockItemID),
		Quantity:    req.Quantity,
		ReceivedAt:  movementTime(req.ReceivedAt),
		Reference:   strings.TrimSpace(req.Reference),
		Note:        strings.TrimSpace(req.Note),
	}
	receiving.CreatedBy = actor.ID
	receiving.UpdatedBy = actor.ID

	var item *model.StockItem
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		item, err = s.lockStockItem(ctx, receiving.StockItemID)
		if err != nil {
			return err
		}

		if req.PurchaseOrderID != "" {
			poID := uuid.MustParse(req.PurchaseOrderID)
			if _, err := s.poRepo.FindByID(ctx, poID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					var errs fieldErrors
					errs.add("purchase_order_id", "selected purchase order does not exist")
					return errs.err()
				}
				return err
			}
			receiving.PurchaseOrderID = &poID
		}

		item.QuantityOnHand += receiving.Quantity
		if err := s.stockItemRepo.UpdateQuantity(ctx, item.ID, item.QuantityOnHand, actor.ID); err != nil {
			return err
		}
		return s.receivingRepo.Create(ctx, receiving)
	})
	if err != nil {
		return nil, storageError("stock receiving", nil, err)
	}

	receiving.StockItem = item
	s.publishMovement(model.MovementReceiving, "created", receiving.ID, item, receiving.Quantity, actor)
	return receiving, nil
}

func (s *inventoryService) ListReceivings(ctx context.Context, filter repository.MovementFilter) (*repository.Paged[model.StockReceiving], error) {
	paged, err := s.receivingRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return paged, nil
}

func (s *inventoryService) GetReceiving(ctx context.Context, id uuid.UUID) (*model.StockReceiving, error) {
	receiving, err := s.receivingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("stock receiving", id, ErrMovementNotFound, err)
	}
	return receiving, nil
}

func (s *inventoryService) UpdateReceiving(ctx context.Context, id uuid.UUID, req *MovementNoteRequest, actor Actor) (*model.StockReceiving, error) {
	if err := validateInput(req).err(); err != nil {
		return nil, err
	}
	err := s.receivingRepo.UpdateNote(ctx, id, strings.TrimSpace(req.Reference), strings.TrimSpace(req.Note), actor.ID)
	if err != nil {
		return nil, notFound("stock receiving", id, ErrMovementNotFound, err)
	}
	return s.GetReceiving(ctx, id)
}

// DeleteReceiving takes the received quantity back out of stock.
func (s *inventoryService) DeleteReceiving(ctx context.Context, id uuid.UUID, actor Actor) error {
	var (
		item     *model.StockItem
		quantity int
	)
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		receiving, err := s.receivingRepo.FindByID(ctx, id)
		if err != nil {
			return notFound("stock receiving", id, ErrMovementNotFound, err)
		}
		item, err = s.lockStockItem(ctx, receiving.StockItemID)
		if err != nil {
			return err
		}
		if item.QuantityOnHand < receiving.Quantity {
			return apperror.NewInsufficientStock(item.StockNo, receiving.Quantity, item.QuantityOnHand)
		}
		quantity = receiving.Quantity
		item.QuantityOnHand -= receiving.Quantity
		if err := s.stockItemRepo.UpdateQuantity(ctx, item.ID, item.QuantityOnHand, actor.ID); err != nil {
			return err
		}
		return s.receivingRepo.Delete(ctx, id)
	})
	if err != nil {
		return storageError("stock receiving", id, err)
	}

	s.publishMovement(model.MovementReceiving, "deleted", id, item, -quantity, actor)
	return nil
}

// ---- issuance ----

func (s *inventoryService) Issue(ctx context.Context, req *IssuanceRequest, actor Actor) (*model.StockIssuance, error) {
	if err := validateInput(req).err(); err != nil {
		return nil, err
	}

	issuance := &model.StockIssuance{
		StockItemID: uuid.MustParse(req.StockItemID),
		Quantity:    req.Quantity,
		IssuedTo:    strings.TrimSpace(req.IssuedTo),
		IssuedAt:    movementTime(req.IssuedAt),
		Reference:   strings.TrimSpace(req.Reference),
		Note:        strings.TrimSpace(req.Note),
	}
	issuance.CreatedBy = actor.ID
	issuance.UpdatedBy = actor.ID

	var item *model.StockItem
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		item, err = s.lockStockItem(ctx, issuance.StockItemID)
		if err != nil {
			return err
		}
		if item.QuantityOnHand < issuance.Quantity {
			return apperror.NewInsufficientStock(item.StockNo, issuance.Quantity, item.QuantityOnHand)
		}

		item.QuantityOnHand -= issuance.Quantity
		if err := s.stockItemRepo.UpdateQuantity(ctx, item.ID, item.QuantityOnHand, actor.ID); err != nil {
			return err
		}
		return s.issuanceRepo.Create(ctx, issuance)
	})
	if err != nil {
		return nil, storageError("stock issuance", nil, err)
	}

	issuance.StockItem = item
	s.publishMovement(model.MovementIssuance, "created", issuance.ID, item, -issuance.Quantity, actor)
	return issuance, nil
}

func (s *inventoryService) ListIssuances(ctx context.Context, filter repository.MovementFilter) (*repository.Paged[model.StockIssuance], error) {
	paged, err := s.issuanceRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return paged, nil
}

func (s *inventoryService) GetIssuance(ctx context.Context, id uuid.UUID) (*model.StockIssuance, error) {
	issuance, err := s.issuanceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("stock issuance", id, ErrMovementNotFound, err)
	}
	return issuance, nil
}

func (s *inventoryService) UpdateIssuance(ctx context.Context, id uuid.UUID, req *MovementNoteRequest, actor Actor) (*model.StockIssuance, error) {
	if err := validateInput(req).err(); err != nil {
		return nil, err
	}
	err := s.issuanceRepo.UpdateNote(ctx, id, strings.TrimSpace(req.Reference), strings.TrimSpace(req.Note), actor.ID)
	if err != nil {
		return nil, notFound("stock issuance", id, ErrMovementNotFound, err)
	}
	return s.GetIssuance(ctx, id)
}

// DeleteIssuance returns the issued quantity to stock.
func (s *inventoryService) DeleteIssuance(ctx context.Context, id uuid.UUID, actor Actor) error {
	var (
		item     *model.StockItem
		quantity int
	)
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		issuance, err := s.issuanceRepo.FindByID(ctx, id)
		if err != nil {
			return notFound("stock issuance", id, ErrMovementNotFound, err)
		}
		item, err = s.lockStockItem(ctx, issuance.StockItemID)
		if err != nil {
			return err
		}
		quantity = issuance.Quantity
		item.QuantityOnHand += issuance.Quantity
		if err := s.stockItemRepo.UpdateQuantity(ctx, item.ID, item.QuantityOnHand, actor.ID); err != nil {
			return err
		}
		return s.issuanceRepo.Delete(ctx, id)
	})
	if err != nil {
		return storageError("stock issuance", id, err)
	}

	s.publishMovement(model.MovementIssuance, "deleted", id, item, quantity, actor)
	return nil
}

// lockStockItem loads the item FOR UPDATE. A missing item is an input error.
func (s *inventoryService) lockStockItem(ctx context.Context, id uuid.UUID) (*model.StockItem, error) {
	item, err := s.stockItemRepo.FindByIDForUpdate(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		var errs fieldErrors
		errs.add("stock_item_id", "selected stock item does not exist")
		return nil, errs.err()
	}
	return item, err
}

func (s *inventoryService) publishMovement(kind model.MovementType, action string, id uuid.UUID, item *model.StockItem, delta int, actor Actor) {
	s.notifier.Publish(ChangeEvent{
		Type:   "stock_update",
		Action: fmt.Sprintf("%s_%s", kind, action),
		Data: map[string]interface{}{
			"id":            id,
			"stock_item_id": item.ID,
			"stock_no":      item.StockNo,
			"delta":         delta,
			"new_stock":     item.QuantityOnHand,
		},
		User:    actor,
		Message: fmt.Sprintf("%s %s %s of '%s' (%+d)", actor.Name, action, kind, item.Name, delta),
		At:      time.Now(),
	})
}

func movementTime(date string) time.Time {
	if t, ok := parseDate(date); ok {
		return t
	}
	return time.Now()
}

func notFound(entity string, id uuid.UUID, sentinel error, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NewNotFound(entity, id).WithCause(sentinel)
	}
	return storageError(entity, id, err)
}
