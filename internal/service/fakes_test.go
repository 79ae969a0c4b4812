package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"go-procurement-ws/internal/model"
	"go-procurement-ws/internal/repository"

	"github.com/google/uuid"
)

// fakeTxManager runs fn inline; the fakes below have no rollback.
type fakeTxManager struct {
	calls int
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []ChangeEvent
}

func (n *recordingNotifier) Publish(event any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if e, ok := event.(ChangeEvent); ok {
		n.events = append(n.events, e)
	}
}

func (n *recordingNotifier) actions() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	for i, e := range n.events {
		out[i] = e.Type + ":" + e.Action
	}
	return out
}

// ---- suppliers ----

type fakeSupplierRepo struct {
	rows map[uuid.UUID]model.Supplier
	// failCreate simulates a unique index hit that slipped past validation
	failCreate error
}

func newFakeSupplierRepo() *fakeSupplierRepo {
	return &fakeSupplierRepo{rows: make(map[uuid.UUID]model.Supplier)}
}

func (r *fakeSupplierRepo) Create(_ context.Context, s *model.Supplier) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	for _, existing := range r.rows {
		if existing.TaxID == s.TaxID || existing.RegistrationNo == s.RegistrationNo {
			return fmt.Errorf("%w: suppliers", repository.ErrDuplicate)
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.rows[s.ID] = *s
	return nil
}

func (r *fakeSupplierRepo) Update(_ context.Context, s *model.Supplier) error {
	existing, ok := r.rows[s.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Name = s.Name
	existing.TaxID = s.TaxID
	existing.RegistrationNo = s.RegistrationNo
	existing.Category = s.Category
	existing.Status = s.Status
	existing.Address = s.Address
	existing.UpdatedBy = s.UpdatedBy
	r.rows[s.ID] = existing
	return nil
}

func (r *fakeSupplierRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *fakeSupplierRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Supplier, error) {
	s, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r *fakeSupplierRepo) List(_ context.Context, f repository.SupplierFilter) (*repository.Paged[model.Supplier], error) {
	var items []model.Supplier
	for _, s := range r.rows {
		if f.Status != "" && s.Status != f.Status {
			continue
		}
		items = append(items, s)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	page := f.Page.Normalize()
	return &repository.Paged[model.Supplier]{Items: items, Total: int64(len(items)), Page: page.Page, PageSize: page.PageSize}, nil
}

func (r *fakeSupplierRepo) FindAllActive(ctx context.Context) ([]model.Supplier, error) {
	paged, _ := r.List(ctx, repository.SupplierFilter{Status: model.SupplierActive})
	return paged.Items, nil
}

func (r *fakeSupplierRepo) ExistsByTaxID(_ context.Context, taxID string, excludeID uuid.UUID) (bool, error) {
	for id, s := range r.rows {
		if s.TaxID == taxID && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSupplierRepo) ExistsByRegistrationNo(_ context.Context, regNo string, excludeID uuid.UUID) (bool, error) {
	for id, s := range r.rows {
		if s.RegistrationNo == regNo && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// ---- purchase orders ----

// fakePurchaseOrderRepo keeps headers and items in separate tables like the database does.
type fakePurchaseOrderRepo struct {
	suppliers *fakeSupplierRepo
	headers   map[uuid.UUID]model.PurchaseOrder
	items     map[uuid.UUID]model.PurchaseOrderItem
}

func newFakePurchaseOrderRepo(suppliers *fakeSupplierRepo) *fakePurchaseOrderRepo {
	return &fakePurchaseOrderRepo{
		suppliers: suppliers,
		headers:   make(map[uuid.UUID]model.PurchaseOrder),
		items:     make(map[uuid.UUID]model.PurchaseOrderItem),
	}
}

func (r *fakePurchaseOrderRepo) Create(_ context.Context, po *model.PurchaseOrder) error {
	for _, h := range r.headers {
		if h.PONumber == po.PONumber {
			return fmt.Errorf("%w: idx_purchase_orders_po_number", repository.ErrDuplicate)
		}
	}
	if po.ID == uuid.Nil {
		po.ID = uuid.New()
	}
	r.insertItems(po)
	header := *po
	header.Items = nil
	header.Supplier = nil
	r.headers[po.ID] = header
	return nil
}

func (r *fakePurchaseOrderRepo) insertItems(po *model.PurchaseOrder) {
	for i := range po.Items {
		po.Items[i].ID = uuid.New()
		po.Items[i].PurchaseOrderID = po.ID
		r.items[po.Items[i].ID] = po.Items[i]
	}
}

func (r *fakePurchaseOrderRepo) deleteItems(poID uuid.UUID) {
	for id, item := range r.items {
		if item.PurchaseOrderID == poID {
			delete(r.items, id)
		}
	}
}

func (r *fakePurchaseOrderRepo) Update(_ context.Context, po *model.PurchaseOrder) error {
	existing, ok := r.headers[po.ID]
	if !ok {
		return repository.ErrNotFound
	}
	header := *po
	header.PONumber = existing.PONumber
	header.CreatedAt = existing.CreatedAt
	header.Items = nil
	header.Supplier = nil
	r.headers[po.ID] = header
	r.deleteItems(po.ID)
	r.insertItems(po)
	return nil
}

func (r *fakePurchaseOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.deleteItems(id)
	if _, ok := r.headers[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.headers, id)
	return nil
}

func (r *fakePurchaseOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	h, ok := r.headers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	po := h
	po.Items = []model.PurchaseOrderItem{}
	for _, item := range r.items {
		if item.PurchaseOrderID == id {
			po.Items = append(po.Items, item)
		}
	}
	sort.Slice(po.Items, func(i, j int) bool { return po.Items[i].LineNo < po.Items[j].LineNo })
	if s, err := r.suppliers.FindByID(ctx, po.SupplierID); err == nil {
		po.Supplier = s
	}
	return &po, nil
}

func (r *fakePurchaseOrderRepo) List(ctx context.Context, f repository.PurchaseOrderFilter) (*repository.Paged[model.PurchaseOrder], error) {
	var out []model.PurchaseOrder
	for id := range r.headers {
		po, _ := r.FindByID(ctx, id)
		if f.DeliveryStatus != "" && po.DeliveryStatus != f.DeliveryStatus {
			continue
		}
		out = append(out, *po)
	}
	page := f.Page.Normalize()
	return &repository.Paged[model.PurchaseOrder]{Items: out, Total: int64(len(out)), Page: page.Page, PageSize: page.PageSize}, nil
}

func (r *fakePurchaseOrderRepo) UpdateDeliveryStatus(_ context.Context, id uuid.UUID, status model.DeliveryStatus, updatedBy string) error {
	h, ok := r.headers[id]
	if !ok {
		return repository.ErrNotFound
	}
	h.DeliveryStatus = status
	h.UpdatedBy = updatedBy
	r.headers[id] = h
	return nil
}

func (r *fakePurchaseOrderRepo) LatestNumber(_ context.Context, prefix string) (string, error) {
	latest, highest := "", int64(-1)
	for _, h := range r.headers {
		digits, ok := strings.CutPrefix(h.PONumber, prefix+"-")
		if !ok || digits == "" || strings.Trim(digits, "0123456789") != "" {
			continue
		}
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			continue
		}
		if n > highest {
			latest, highest = h.PONumber, n
		}
	}
	return latest, nil
}

func (r *fakePurchaseOrderRepo) ExistsByNumber(_ context.Context, number string) (bool, error) {
	for _, h := range r.headers {
		if h.PONumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePurchaseOrderRepo) CountBySupplier(_ context.Context, supplierID uuid.UUID) (int64, error) {
	var n int64
	for _, h := range r.headers {
		if h.SupplierID == supplierID {
			n++
		}
	}
	return n, nil
}

func (r *fakePurchaseOrderRepo) CountItems(_ context.Context, poID uuid.UUID) (int64, error) {
	var n int64
	for _, item := range r.items {
		if item.PurchaseOrderID == poID {
			n++
		}
	}
	return n, nil
}

// seed stores a header with a fixed number, bypassing the service.
func (r *fakePurchaseOrderRepo) seed(number string, supplierID uuid.UUID) uuid.UUID {
	id := uuid.New()
	po := model.PurchaseOrder{PONumber: number, SupplierID: supplierID, DeliveryStatus: model.DeliveryPending}
	po.ID = id
	r.headers[id] = po
	return id
}

type fakeSequenceRepo struct {
	values map[string]int64
}

func newFakeSequenceRepo() *fakeSequenceRepo {
	return &fakeSequenceRepo{values: make(map[string]int64)}
}

func (r *fakeSequenceRepo) Next(_ context.Context, name string, floor int64) (int64, error) {
	next := max(r.values[name], floor) + 1
	r.values[name] = next
	return next, nil
}

func (r *fakeSequenceRepo) Advance(_ context.Context, name string, value int64) error {
	r.values[name] = max(r.values[name], value)
	return nil
}

func (r *fakeSequenceRepo) Current(_ context.Context, name string) (int64, error) {
	return r.values[name], nil
}

// ---- inventory ----

type fakeCategoryRepo struct {
	rows map[uuid.UUID]model.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{rows: make(map[uuid.UUID]model.Category)}
}

func (r *fakeCategoryRepo) Create(_ context.Context, c *model.Category) error {
	c.ID = uuid.New()
	r.rows[c.ID] = *c
	return nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, c *model.Category) error {
	existing, ok := r.rows[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Name = c.Name
	existing.Description = c.Description
	r.rows[c.ID] = existing
	return nil
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *fakeCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Category, error) {
	c, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *fakeCategoryRepo) FindAll(_ context.Context) ([]model.Category, error) {
	var out []model.Category
	for _, c := range r.rows {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCategoryRepo) ExistsByName(_ context.Context, name string, excludeID uuid.UUID) (bool, error) {
	for id, c := range r.rows {
		if strings.EqualFold(c.Name, name) && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

type fakeStockItemRepo struct {
	rows map[uuid.UUID]model.StockItem
}

func newFakeStockItemRepo() *fakeStockItemRepo {
	return &fakeStockItemRepo{rows: make(map[uuid.UUID]model.StockItem)}
}

func (r *fakeStockItemRepo) Create(_ context.Context, item *model.StockItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	r.rows[item.ID] = *item
	return nil
}

func (r *fakeStockItemRepo) FindByID(_ context.Context, id uuid.UUID) (*model.StockItem, error) {
	item, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &item, nil
}

func (r *fakeStockItemRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.StockItem, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeStockItemRepo) FindByStockNo(_ context.Context, stockNo string) (*model.StockItem, error) {
	for _, item := range r.rows {
		if item.StockNo == stockNo {
			return &item, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeStockItemRepo) List(_ context.Context, f repository.StockItemFilter) (*repository.Paged[model.StockItem], error) {
	var out []model.StockItem
	for _, item := range r.rows {
		out = append(out, item)
	}
	page := f.Page.Normalize()
	return &repository.Paged[model.StockItem]{Items: out, Total: int64(len(out)), Page: page.Page, PageSize: page.PageSize}, nil
}

func (r *fakeStockItemRepo) UpdateQuantity(_ context.Context, id uuid.UUID, quantity int, updatedBy string) error {
	item, ok := r.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	item.QuantityOnHand = quantity
	item.UpdatedBy = updatedBy
	r.rows[id] = item
	return nil
}

func (r *fakeStockItemRepo) add(stockNo string, onHand int) uuid.UUID {
	item := model.StockItem{StockNo: stockNo, Name: stockNo, QuantityOnHand: onHand}
	item.ID = uuid.New()
	r.rows[item.ID] = item
	return item.ID
}

type fakeReceivingRepo struct {
	rows map[uuid.UUID]model.StockReceiving
}

func (r *fakeReceivingRepo) Create(_ context.Context, rec *model.StockReceiving) error {
	rec.ID = uuid.New()
	r.rows[rec.ID] = *rec
	return nil
}

func (r *fakeReceivingRepo) UpdateNote(_ context.Context, id uuid.UUID, reference, note, updatedBy string) error {
	rec, ok := r.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	rec.Reference, rec.Note, rec.UpdatedBy = reference, note, updatedBy
	r.rows[id] = rec
	return nil
}

func (r *fakeReceivingRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *fakeReceivingRepo) FindByID(_ context.Context, id uuid.UUID) (*model.StockReceiving, error) {
	rec, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}

func (r *fakeReceivingRepo) List(_ context.Context, f repository.MovementFilter) (*repository.Paged[model.StockReceiving], error) {
	var out []model.StockReceiving
	for _, rec := range r.rows {
		out = append(out, rec)
	}
	return &repository.Paged[model.StockReceiving]{Items: out, Total: int64(len(out))}, nil
}

type fakeIssuanceRepo struct {
	rows map[uuid.UUID]model.StockIssuance
}

func (r *fakeIssuanceRepo) Create(_ context.Context, iss *model.StockIssuance) error {
	iss.ID = uuid.New()
	r.rows[iss.ID] = *iss
	return nil
}

func (r *fakeIssuanceRepo) UpdateNote(_ context.Context, id uuid.UUID, reference, note, updatedBy string) error {
	iss, ok := r.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	iss.Reference, iss.Note, iss.UpdatedBy = reference, note, updatedBy
	r.rows[id] = iss
	return nil
}

func (r *fakeIssuanceRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *fakeIssuanceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.StockIssuance, error) {
	iss, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &iss, nil
}

func (r *fakeIssuanceRepo) List(_ context.Context, f repository.MovementFilter) (*repository.Paged[model.StockIssuance], error) {
	var out []model.StockIssuance
	for _, iss := range r.rows {
		out = append(out, iss)
	}
	return &repository.Paged[model.StockIssuance]{Items: out, Total: int64(len(out))}, nil
}
