package service

import (
	"context"
	"testing"

	"go-procurement-ws/internal/model"
	"go-procurement-ws/pkg/apperror"
	"go-procurement-ws/pkg/numerator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type poFixture struct {
	svc        PurchaseOrderService
	orders     *fakePurchaseOrderRepo
	sequences  *fakeSequenceRepo
	txm        *fakeTxManager
	notifier   *recordingNotifier
	supplierID uuid.UUID
}

func newPOFixture(t *testing.T) *poFixture {
	t.Helper()
	suppliers := newFakeSupplierRepo()
	supplier := &model.Supplier{Name: "Acme", TaxID: "TIN-1", RegistrationNo: "REG-1", Category: "IT", Status: model.SupplierActive}
	require.NoError(t, suppliers.Create(context.Background(), supplier))

	orders := newFakePurchaseOrderRepo(suppliers)
	sequences := newFakeSequenceRepo()
	txm := &fakeTxManager{}
	notifier := &recordingNotifier{}
	return &poFixture{
		svc:        NewPurchaseOrderService(orders, suppliers, sequences, txm, numerator.DefaultConfig("PO"), notifier),
		orders:     orders,
		sequences:  sequences,
		txm:        txm,
		notifier:   notifier,
		supplierID: supplier.ID,
	}
}

func (f *poFixture) request(items ...PurchaseOrderItemRequest) *PurchaseOrderRequest {
	return &PurchaseOrderRequest{
		SupplierID:      f.supplierID.String(),
		Date:            "2026-03-02",
		Mode:            "Public Bidding",
		FundCluster:     "01",
		PurchaseOrder:   true,
		PlaceOfDelivery: "Main Warehouse",
		DeliveryTerm:    "30 days",
		PaymentTerm:     "Net 30",
		EndUser:         "J. Cruz",
		Department:      "Supply Office",
		Items:           items,
	}
}

func item(qty int, cost string) PurchaseOrderItemRequest {
	return PurchaseOrderItemRequest{
		Unit:        "pc",
		Description: "Bond paper A4",
		Quantity:    qty,
		UnitCost:    decimal.RequireFromString(cost),
	}
}

func amounts(po *model.PurchaseOrder) []string {
	out := make([]string, len(po.Items))
	for i, it := range po.Items {
		out[i] = it.Amount.StringFixed(2)
	}
	return out
}

func TestPurchaseOrderService_CreateComputesTotals(t *testing.T) {
	f := newPOFixture(t)

	po, err := f.svc.Create(context.Background(), f.request(item(2, "100.00"), item(3, "50.00")), testActor)
	require.NoError(t, err)

	assert.Equal(t, "350.00", po.Total.StringFixed(2))
	assert.Equal(t, []string{"200.00", "150.00"}, amounts(po))
	assert.Equal(t, "PO-0001", po.PONumber)
	assert.Equal(t, model.DeliveryPending, po.DeliveryStatus)
	assert.Equal(t, "", po.Designation)
	require.NotNil(t, po.Supplier)
	assert.Equal(t, "Acme", po.Supplier.Name)
	assert.Equal(t, 1, f.txm.calls)
	assert.Equal(t, []string{"purchase_order_update:created"}, f.notifier.actions())
}

func TestPurchaseOrderService_ZeroQuantityAndCostAccepted(t *testing.T) {
	f := newPOFixture(t)

	po, err := f.svc.Create(context.Background(), f.request(item(0, "12.50"), item(4, "0")), testActor)
	require.NoError(t, err)

	assert.Equal(t, []string{"0.00", "0.00"}, amounts(po))
	assert.Equal(t, "0.00", po.Total.StringFixed(2))
}

func TestPurchaseOrderService_NegativeValuesRejected(t *testing.T) {
	f := newPOFixture(t)

	_, err := f.svc.Create(context.Background(), f.request(item(1, "10"), item(-1, "-0.01")), testActor)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.NotEmpty(t, appErr.FieldMessage("items[1].quantity"))
	assert.NotEmpty(t, appErr.FieldMessage("items[1].unit_cost"))
	assert.Empty(t, appErr.FieldMessage("items[0].quantity"))
	assert.Empty(t, f.orders.headers)
	assert.Empty(t, f.orders.items)
	assert.Empty(t, f.sequences.values)
}

func TestPurchaseOrderService_ValidationReportsEverything(t *testing.T) {
	f := newPOFixture(t)
	req := &PurchaseOrderRequest{
		SupplierID:     uuid.NewString(),
		Date:           "02/03/2026",
		DeliveryStatus: "Lost",
		Items:          []PurchaseOrderItemRequest{{Quantity: 1}},
	}

	_, err := f.svc.Create(context.Background(), req, testActor)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	for _, field := range []string{
		"supplier_id", "date", "mode", "fund_cluster", "place_of_delivery",
		"delivery_term", "payment_term", "end_user", "department", "delivery_status",
		"items[0].unit", "items[0].description",
	} {
		assert.NotEmpty(t, appErr.FieldMessage(field), field)
	}
	assert.Equal(t, "selected supplier does not exist", appErr.FieldMessage("supplier_id"))
}

func TestPurchaseOrderService_NextNumber(t *testing.T) {
	f := newPOFixture(t)
	ctx := context.Background()
	f.orders.seed("PO-0001", f.supplierID)
	f.orders.seed("PO-0002", f.supplierID)

	next, err := f.svc.NextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "PO-0003", next)

	// previewing reserves nothing
	again, err := f.svc.NextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "PO-0003", again)

	po, err := f.svc.Create(ctx, f.request(item(1, "1")), testActor)
	require.NoError(t, err)
	assert.Equal(t, "PO-0003", po.PONumber)

	next, err = f.svc.NextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "PO-0004", next)
}

func TestPurchaseOrderService_NumbersNeverReused(t *testing.T) {
	f := newPOFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, f.request(item(1, "1")), testActor)
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, f.request(item(1, "1")), testActor)
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, second.ID, testActor))

	third, err := f.svc.Create(ctx, f.request(item(1, "1")), testActor)
	require.NoError(t, err)

	assert.Equal(t, "PO-0001", first.PONumber)
	assert.Equal(t, "PO-0002", second.PONumber)
	assert.Equal(t, "PO-0003", third.PONumber)
}

func TestPurchaseOrderService_ManualNumber(t *testing.T) {
	f := newPOFixture(t)
	ctx := context.Background()
	f.orders.seed("PO-0007", f.supplierID)

	req := f.request(item(1, "1"))
	req.PONumber = "PO-0007"
	_, err := f.svc.Create(ctx, req, testActor)
	require.True(t, apperror.IsValidation(err))

	req = f.request(item(1, "1"))
	req.PONumber = "7"
	_, err = f.svc.Create(ctx, req, testActor)
	appErr, _ := apperror.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "must look like PO-0001", appErr.FieldMessage("po_number"))

	req = f.request(item(1, "1"))
	req.PONumber = "PO-0020"
	po, err := f.svc.Create(ctx, req, testActor)
	require.NoError(t, err)
	assert.Equal(t, "PO-0020", po.PONumber)

	next, err := f.svc.Create(ctx, f.request(item(1, "1")), testActor)
	require.NoError(t, err)
	assert.Equal(t, "PO-0021", next.PONumber)
}

func TestPurchaseOrderService_ManualNumberMustBeCanonical(t *testing.T) {
	f := newPOFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, f.request(item(1, "1")), testActor)
	require.NoError(t, err)
	require.Equal(t, "PO-0001", first.PONumber)

	for _, number := range []string{"PO-1", "PO-00001", "PO-+7", "PO-0000"} {
		req := f.request(item(1, "1"))
		req.PONumber = number
		_, err := f.svc.Create(ctx, req, testActor)
		appErr, _ := apperror.AsAppError(err)
		require.NotNil(t, appErr, number)
		assert.Equal(t, "must look like PO-0001", appErr.FieldMessage("po_number"), number)
	}
	assert.Len(t, f.orders.headers, 1)

	next, err := f.svc.NextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "PO-0002", next)
}

func TestPurchaseOrderService_ManualNumberAdvancesSequence(t *testing.T) {
	f := newPOFixture(t)
	ctx := context.Background()

	req := f.request(item(1, "1"))
	req.PONumber = "PO-0010"
	manual, err := f.svc.Create(ctx, req, testActor)
	require.NoError(t, err)
	assert.Equal(t, int64(10), f.sequences.values["PO"])

	// A lower hand-picked number never moves the sequence back.
	req = f.request(item(1, "1"))
	req.PONumber = "PO-0005"
	_, err = f.svc.Create(ctx, req, testActor)
	require.NoError(t, err)
	assert.Equal(t, int64(10), f.sequences.values["PO"])

	// Deleting the highest order leaves the sequence in place.
	require.NoError(t, f.svc.Delete(ctx, manual.ID, testActor))

	next, err := f.svc.NextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "PO-0011", next)

	auto, err := f.svc.Create(ctx, f.request(item(1, "1")), testActor)
	require.NoError(t, err)
	assert.Equal(t, "PO-0011", auto.PONumber)
}

func TestPurchaseOrderService_NextNumberRanksNumerically(t *testing.T) {
	f := newPOFixture(t)
	ctx := context.Background()
	f.orders.seed("PO-9999", f.supplierID)
	f.orders.seed("PO-10000", f.supplierID)
	f.orders.seed("PO-00001", f.supplierID)

	next, err := f.svc.NextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "PO-10001", next)

	po, err := f.svc.Create(ctx, f.request(item(1, "1")), testActor)
	require.NoError(t, err)
	assert.Equal(t, "PO-10001", po.PONumber)
}

func TestPurchaseOrderService_UpdateKeepsStatusWhenBlank(t *testing.T) {
	f := newPOFixture(t)
	ctx := context.Background()

	po, err := f.svc.Create(ctx, f.request(item(1, "5")), testActor)
	require.NoError(t, err)
	_, err = f.svc.UpdateDeliveryStatus(ctx, po.ID, "Delivered", testActor)
	require.NoError(t, err)

	req := f.request(item(2, "5"))
	req.DeliveryStatus = ""
	updated, err := f.svc.Update(ctx, po.ID, req, testActor)
	require.NoError(t, err)
	assert.Equal(t, model.DeliveryDelivered, updated.DeliveryStatus)
}

func TestPurchaseOrderService_UpdateReplacesItems(t *testing.T) {
	f := newPOFixture(t)
	ctx := context.Background()

	po, err := f.svc.Create(ctx, f.request(item(2, "100.00"), item(3, "50.00")), testActor)
	require.NoError(t, err)

	req := f.request(item(10, "2.25"))
	req.PONumber = "PO-9999"
	req.DeliveryStatus = string(model.DeliveryPartial)
	updated, err := f.svc.Update(ctx, po.ID, req, testActor)
	require.NoError(t, err)

	assert.Equal(t, po.PONumber, updated.PONumber)
	assert.Equal(t, model.DeliveryPartial, updated.DeliveryStatus)
	assert.Equal(t, []string{"22.50"}, amounts(updated))
	assert.Equal(t, "22.50", updated.Total.StringFixed(2))
	assert.Equal(t, 1, updated.Items[0].LineNo)

	count, _ := f.orders.CountItems(ctx, po.ID)
	assert.Equal(t, int64(1), count)
}

func TestPurchaseOrderService_UpdateNotFound(t *testing.T) {
	f := newPOFixture(t)

	_, err := f.svc.Update(context.Background(), uuid.New(), f.request(), testActor)
	assert.True(t, apperror.IsNotFound(err))
	assert.ErrorIs(t, err, ErrPurchaseOrderNotFound)
}

func TestPurchaseOrderService_DeleteRemovesItems(t *testing.T) {
	f := newPOFixture(t)
	ctx := context.Background()

	keep, err := f.svc.Create(ctx, f.request(item(1, "5")), testActor)
	require.NoError(t, err)
	gone, err := f.svc.Create(ctx, f.request(item(2, "100.00"), item(3, "50.00")), testActor)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, gone.ID, testActor))

	orphans, _ := f.orders.CountItems(ctx, gone.ID)
	assert.Zero(t, orphans)
	kept, _ := f.orders.CountItems(ctx, keep.ID)
	assert.Equal(t, int64(1), kept)

	_, err = f.svc.Get(ctx, gone.ID)
	assert.True(t, apperror.IsNotFound(err))

	err = f.svc.Delete(ctx, gone.ID, testActor)
	assert.True(t, apperror.IsNotFound(err))
}

func TestPurchaseOrderService_UpdateDeliveryStatus(t *testing.T) {
	f := newPOFixture(t)
	ctx := context.Background()

	po, err := f.svc.Create(ctx, f.request(item(1, "5")), testActor)
	require.NoError(t, err)

	updated, err := f.svc.UpdateDeliveryStatus(ctx, po.ID, "Delivered", testActor)
	require.NoError(t, err)
	assert.Equal(t, model.DeliveryDelivered, updated.DeliveryStatus)

	_, err = f.svc.UpdateDeliveryStatus(ctx, po.ID, "delivered", testActor)
	assert.True(t, apperror.IsValidation(err))

	_, err = f.svc.UpdateDeliveryStatus(ctx, uuid.New(), "Cancelled", testActor)
	assert.True(t, apperror.IsNotFound(err))
}
