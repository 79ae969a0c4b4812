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
	"go-procurement-ws/pkg/numerator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrPurchaseOrderNotFound = errors.New("purchase order not found")

type PurchaseOrderItemRequest struct {
	StockNo     string          `json:"stock_no" validate:"max=50"`
	Unit        string          `json:"unit" validate:"required,max=30"`
	Description string          `json:"description" validate:"required"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	UnitCost    decimal.Decimal `json:"unit_cost" validate:"gte=0"`
}

type PurchaseOrderRequest struct {
	// PONumber is optional on create and ignored on update.
	PONumber          string                     `json:"po_number"`
	SupplierID        string                     `json:"supplier_id" validate:"required,uuid"`
	Date              string                     `json:"date" validate:"required,datetime=2006-01-02"`
	Mode              string                     `json:"mode" validate:"required,max=100"`
	FundCluster       string                     `json:"fund_cluster" validate:"required,max=100"`
	JobOrder          bool                       `json:"job_order"`
	ContractAgreement bool                       `json:"contract_agreement"`
	PurchaseOrder     bool                       `json:"purchase_order"`
	PlaceOfDelivery   string                     `json:"place_of_delivery" validate:"required,max=255"`
	DateOfDelivery    string                     `json:"date_of_delivery" validate:"omitempty,datetime=2006-01-02"`
	DeliveryTerm      string                     `json:"delivery_term" validate:"required,max=255"`
	PaymentTerm       string                     `json:"payment_term" validate:"required,max=255"`
	DeliveryStatus    string                     `json:"delivery_status"`
	EndUser           string                     `json:"end_user" validate:"required,max=255"`
	Department        string                     `json:"department" validate:"required,max=255"`
	Designation       string                     `json:"designation" validate:"max=255"`
	Items             []PurchaseOrderItemRequest `json:"items" validate:"dive"`
}

func (r *PurchaseOrderRequest) normalize() {
	r.PONumber = strings.TrimSpace(r.PONumber)
	r.SupplierID = strings.TrimSpace(r.SupplierID)
	r.Mode = strings.TrimSpace(r.Mode)
	r.FundCluster = strings.TrimSpace(r.FundCluster)
	r.PlaceOfDelivery = strings.TrimSpace(r.PlaceOfDelivery)
	r.DeliveryTerm = strings.TrimSpace(r.DeliveryTerm)
	r.PaymentTerm = strings.TrimSpace(r.PaymentTerm)
	r.DeliveryStatus = strings.TrimSpace(r.DeliveryStatus)
	r.EndUser = strings.TrimSpace(r.EndUser)
	r.Department = strings.TrimSpace(r.Department)
	r.Designation = strings.TrimSpace(r.Designation)
	for i := range r.Items {
		r.Items[i].StockNo = strings.TrimSpace(r.Items[i].StockNo)
		r.Items[i].Unit = strings.TrimSpace(r.Items[i].Unit)
		r.Items[i].Description = strings.TrimSpace(r.Items[i].Description)
	}
}

type PurchaseOrderService interface {
	Create(ctx context.Context, req *PurchaseOrderRequest, actor Actor) (*model.PurchaseOrder, error)
	Update(ctx context.Context, id uuid.UUID, req *PurchaseOrderRequest, actor Actor) (*model.PurchaseOrder, error)
	Delete(ctx context.Context, id uuid.UUID, actor Actor) error
	Get(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	List(ctx context.Context, filter repository.PurchaseOrderFilter) (*repository.Paged[model.PurchaseOrder], error)
	UpdateDeliveryStatus(ctx context.Context, id uuid.UUID, status string, actor Actor) (*model.PurchaseOrder, error)
	// NextNumber previews the number the next create will receive. Nothing is reserved.
	NextNumber(ctx context.Context) (string, error)
}

type purchaseOrderService struct {
	poRepo       repository.PurchaseOrderRepository
	supplierRepo repository.SupplierRepository
	seqRepo      repository.SequenceRepository
	txm          repository.TxManager
	numbering    numerator.Config
	notifier     Notifier
}

func NewPurchaseOrderService(
	poRepo repository.PurchaseOrderRepository,
	supplierRepo repository.SupplierRepository,
	seqRepo repository.SequenceRepository,
	txm repository.TxManager,
	numbering numerator.Config,
	notifier Notifier,
) PurchaseOrderService {
	return &purchaseOrderService{
		poRepo:       poRepo,
		supplierRepo: supplierRepo,
		seqRepo:      seqRepo,
		txm:          txm,
		numbering:    numbering,
		notifier:     notifierOrNop(notifier),
	}
}

// prepare validates req and builds the aggregate with amounts and total computed.
// existing is nil on create. Every problem is reported at once and nothing is written.
func (s *purchaseOrderService) prepare(ctx context.Context, req *PurchaseOrderRequest, existing *model.PurchaseOrder) (*model.PurchaseOrder, error) {
	creating := existing == nil
	req.normalize()
	if req.DeliveryStatus == "" {
		// A blank status keeps the current one; new orders start Pending.
		req.DeliveryStatus = string(model.DeliveryPending)
		if !creating {
			req.DeliveryStatus = string(existing.DeliveryStatus)
		}
	}
	errs := validateInput(req)

	if !model.DeliveryStatus(req.DeliveryStatus).Valid() {
		errs.add("delivery_status", "must be one of: Pending, Partially Delivered, Delivered, Cancelled")
	}

	var supplierID uuid.UUID
	if !errs.has("supplier_id") {
		supplierID = uuid.MustParse(req.SupplierID)
		if _, err := s.supplierRepo.FindByID(ctx, supplierID); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return nil, apperror.NewInternal(err)
			}
			errs.add("supplier_id", "selected supplier does not exist")
		}
	}

	if creating && req.PONumber != "" {
		if _, ok := s.numbering.ParseCanonical(req.PONumber); !ok {
			errs.add("po_number", fmt.Sprintf("must look like %s", s.numbering.Format(1)))
		} else {
			taken, err := s.poRepo.ExistsByNumber(ctx, req.PONumber)
			if err != nil {
				return nil, apperror.NewInternal(err)
			}
			if taken {
				errs.add("po_number", "has already been taken")
			}
		}
	}

	if err := errs.err(); err != nil {
		return nil, err
	}

	date, _ := parseDate(req.Date)
	po := &model.PurchaseOrder{
		SupplierID:          supplierID,
		Date:                date,
		Mode:                req.Mode,
		FundCluster:         req.FundCluster,
		IsJobOrder:          req.JobOrder,
		IsContractAgreement: req.ContractAgreement,
		IsPurchaseOrder:     req.PurchaseOrder,
		PlaceOfDelivery:     req.PlaceOfDelivery,
		DeliveryTerm:        req.DeliveryTerm,
		PaymentTerm:         req.PaymentTerm,
		DeliveryStatus:      model.DeliveryStatus(req.DeliveryStatus),
		EndUser:             req.EndUser,
		Department:          req.Department,
		Designation:         req.Designation,
		Items:               make([]model.PurchaseOrderItem, 0, len(req.Items)),
	}
	if creating {
		po.PONumber = req.PONumber
	}
	if req.DateOfDelivery != "" {
		dod, _ := parseDate(req.DateOfDelivery)
		po.DateOfDelivery = &dod
	}
	for _, item := range req.Items {
		po.Items = append(po.Items, model.PurchaseOrderItem{
			StockNo:     item.StockNo,
			Unit:        item.Unit,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitCost:    item.UnitCost.Round(2),
		})
	}
	po.Recalculate()
	return po, nil
}

func (s *purchaseOrderService) Create(ctx context.Context, req *PurchaseOrderRequest, actor Actor) (*model.PurchaseOrder, error) {
	po, err := s.prepare(ctx, req, nil)
	if err != nil {
		return nil, err
	}
	stamp(po, actor, true)

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if po.PONumber == "" {
			number, err := s.reserveNumber(ctx)
			if err != nil {
				return err
			}
			po.PONumber = number
		} else {
			// Keep automatic numbering ahead of a hand-picked number.
			n, _ := s.numbering.ParseCanonical(po.PONumber)
			if err := s.seqRepo.Advance(ctx, s.numbering.Prefix, n); err != nil {
				return err
			}
		}
		return s.poRepo.Create(ctx, po)
	})
	if err != nil {
		return nil, storageError("purchase order", nil, err)
	}

	created, err := s.Get(ctx, po.ID)
	if err != nil {
		return nil, err
	}
	s.publish("created", created, actor)
	return created, nil
}

func (s *purchaseOrderService) Update(ctx context.Context, id uuid.UUID, req *PurchaseOrderRequest, actor Actor) (*model.PurchaseOrder, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	po, err := s.prepare(ctx, req, existing)
	if err != nil {
		return nil, err
	}
	po.ID = id
	po.PONumber = existing.PONumber
	po.CreatedBy = existing.CreatedBy
	stamp(po, actor, false)

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.poRepo.Update(ctx, po)
	})
	if err != nil {
		return nil, s.notFoundOr(id, err)
	}

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish("updated", updated, actor)
	return updated, nil
}

func (s *purchaseOrderService) Delete(ctx context.Context, id uuid.UUID, actor Actor) error {
	var number string
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		po, err := s.poRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		number = po.PONumber
		return s.poRepo.Delete(ctx, id)
	})
	if err != nil {
		return s.notFoundOr(id, err)
	}

	s.notifier.Publish(ChangeEvent{
		Type:    "purchase_order_update",
		Action:  "deleted",
		Data:    map[string]interface{}{"id": id, "po_number": number},
		User:    actor,
		Message: fmt.Sprintf("%s deleted purchase order %s", actor.Name, number),
		At:      time.Now(),
	})
	return nil
}

func (s *purchaseOrderService) Get(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	po, err := s.poRepo.FindByID(ctx, id)
	if err != nil {
		return nil, s.notFoundOr(id, err)
	}
	return po, nil
}

func (s *purchaseOrderService) List(ctx context.Context, filter repository.PurchaseOrderFilter) (*repository.Paged[model.PurchaseOrder], error) {
	if filter.DeliveryStatus != "" && !filter.DeliveryStatus.Valid() {
		var errs fieldErrors
		errs.add("delivery_status", "must be one of: Pending, Partially Delivered, Delivered, Cancelled")
		return nil, errs.err()
	}
	paged, err := s.poRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return paged, nil
}

func (s *purchaseOrderService) UpdateDeliveryStatus(ctx context.Context, id uuid.UUID, status string, actor Actor) (*model.PurchaseOrder, error) {
	next := model.DeliveryStatus(strings.TrimSpace(status))
	if !next.Valid() {
		var errs fieldErrors
		errs.add("delivery_status", "must be one of: Pending, Partially Delivered, Delivered, Cancelled")
		return nil, errs.err()
	}

	if err := s.poRepo.UpdateDeliveryStatus(ctx, id, next, actor.ID); err != nil {
		return nil, s.notFoundOr(id, err)
	}

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish("delivery_status_changed", updated, actor)
	return updated, nil
}

func (s *purchaseOrderService) NextNumber(ctx context.Context) (string, error) {
	latest, err := s.poRepo.LatestNumber(ctx, s.numbering.Prefix)
	if err != nil {
		return "", apperror.NewInternal(err)
	}
	current, err := s.seqRepo.Current(ctx, s.numbering.Prefix)
	if err != nil {
		return "", apperror.NewInternal(err)
	}
	return s.numbering.Format(max(current, s.numbering.Highest(latest)) + 1), nil
}

// reserveNumber must run inside the create transaction: the sequence row stays locked
// until the order is committed.
func (s *purchaseOrderService) reserveNumber(ctx context.Context) (string, error) {
	latest, err := s.poRepo.LatestNumber(ctx, s.numbering.Prefix)
	if err != nil {
		return "", err
	}
	n, err := s.seqRepo.Next(ctx, s.numbering.Prefix, s.numbering.Highest(latest))
	if err != nil {
		return "", err
	}
	return s.numbering.Format(n), nil
}

func (s *purchaseOrderService) notFoundOr(id uuid.UUID, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NewNotFound("purchase order", id).WithCause(ErrPurchaseOrderNotFound)
	}
	return storageError("purchase order", id, err)
}

func (s *purchaseOrderService) publish(action string, po *model.PurchaseOrder, actor Actor) {
	s.notifier.Publish(ChangeEvent{
		Type:   "purchase_order_update",
		Action: action,
		Data: map[string]interface{}{
			"id":              po.ID,
			"po_number":       po.PONumber,
			"supplier_id":     po.SupplierID,
			"delivery_status": po.DeliveryStatus,
			"total":           po.Total.StringFixed(2),
		},
		User:    actor,
		Message: fmt.Sprintf("%s %s purchase order %s", actor.Name, strings.ReplaceAll(action, "_", " "), po.PONumber),
		At:      time.Now(),
	})
}

func stamp(po *model.PurchaseOrder, actor Actor, creating bool) {
	if creating {
		po.CreatedBy = actor.ID
	}
	po.UpdatedBy = actor.ID
	for i := range po.Items {
		if creating {
			po.Items[i].CreatedBy = actor.ID
		}
		po.Items[i].UpdatedBy = actor.ID
	}
}
