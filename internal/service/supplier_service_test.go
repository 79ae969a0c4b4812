package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go-procurement-ws/internal/model"
	"go-procurement-ws/internal/repository"
	"go-procurement-ws/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testActor = Actor{ID: "user-1", Name: "Tester", Email: "tester@example.com"}

type supplierFixture struct {
	svc       SupplierService
	suppliers *fakeSupplierRepo
	orders    *fakePurchaseOrderRepo
	notifier  *recordingNotifier
}

func newSupplierFixture() *supplierFixture {
	suppliers := newFakeSupplierRepo()
	orders := newFakePurchaseOrderRepo(suppliers)
	notifier := &recordingNotifier{}
	return &supplierFixture{
		svc:       NewSupplierService(suppliers, orders, &fakeTxManager{}, notifier),
		suppliers: suppliers,
		orders:    orders,
		notifier:  notifier,
	}
}

func supplierReq(taxID, regNo string) *SupplierRequest {
	return &SupplierRequest{
		Name:           "Acme Office Supplies",
		TaxID:          taxID,
		RegistrationNo: regNo,
		Category:       "Office Supplies",
		Status:         "active",
	}
}

func TestSupplierService_Create(t *testing.T) {
	f := newSupplierFixture()

	s, err := f.svc.Create(context.Background(), supplierReq("TIN-001", "REG-001"), testActor)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, s.ID)
	assert.Equal(t, model.SupplierActive, s.Status)
	assert.Equal(t, "user-1", s.CreatedBy)
	assert.Nil(t, s.Address)
	assert.Equal(t, []string{"supplier_update:created"}, f.notifier.actions())
}

func TestSupplierService_CreateRejectsDuplicateTaxID(t *testing.T) {
	f := newSupplierFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, supplierReq("TIN-001", "REG-001"), testActor)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, supplierReq("TIN-001", "REG-002"), testActor)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Equal(t, "has already been taken", appErr.FieldMessage("tax_id"))
	assert.Empty(t, appErr.FieldMessage("registration_no"))
	assert.Len(t, f.suppliers.rows, 1)
}

func TestSupplierService_TaxIDIsCaseSensitive(t *testing.T) {
	f := newSupplierFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, supplierReq("tin-abc", "REG-001"), testActor)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, supplierReq("TIN-ABC", "REG-002"), testActor)
	assert.NoError(t, err)
}

func TestSupplierService_CreateCollectsAllFieldErrors(t *testing.T) {
	f := newSupplierFixture()

	_, err := f.svc.Create(context.Background(), &SupplierRequest{Status: "retired"}, testActor)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	for _, field := range []string{"name", "tax_id", "registration_no", "category", "status"} {
		assert.NotEmpty(t, appErr.FieldMessage(field), field)
	}
	assert.Empty(t, f.suppliers.rows)
	assert.Empty(t, f.notifier.actions())
}

func TestSupplierService_UpdateTaxID(t *testing.T) {
	f := newSupplierFixture()
	ctx := context.Background()

	first, err := f.svc.Create(ctx, supplierReq("TIN-001", "REG-001"), testActor)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, supplierReq("TIN-002", "REG-002"), testActor)
	require.NoError(t, err)

	t.Run("keeping its own tax id succeeds", func(t *testing.T) {
		req := supplierReq("TIN-001", "REG-001")
		req.Name = "Acme Renamed"
		updated, err := f.svc.Update(ctx, first.ID, req, testActor)
		require.NoError(t, err)
		assert.Equal(t, "Acme Renamed", updated.Name)
	})

	t.Run("taking another supplier's tax id fails", func(t *testing.T) {
		_, err := f.svc.Update(ctx, first.ID, supplierReq("TIN-002", "REG-001"), testActor)
		require.True(t, apperror.IsValidation(err))
		appErr, _ := apperror.AsAppError(err)
		assert.Equal(t, "has already been taken", appErr.FieldMessage("tax_id"))
		assert.Equal(t, "TIN-001", f.suppliers.rows[first.ID].TaxID)
	})
}

func TestSupplierService_UpdateNotFound(t *testing.T) {
	f := newSupplierFixture()

	_, err := f.svc.Update(context.Background(), uuid.New(), supplierReq("TIN-009", "REG-009"), testActor)
	assert.True(t, apperror.IsNotFound(err))
	assert.ErrorIs(t, err, ErrSupplierNotFound)
}

func TestSupplierService_Delete(t *testing.T) {
	f := newSupplierFixture()
	ctx := context.Background()

	t.Run("missing supplier", func(t *testing.T) {
		err := f.svc.Delete(ctx, uuid.New(), testActor)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("referenced supplier", func(t *testing.T) {
		s, err := f.svc.Create(ctx, supplierReq("TIN-010", "REG-010"), testActor)
		require.NoError(t, err)
		f.orders.seed("PO-0001", s.ID)

		err = f.svc.Delete(ctx, s.ID, testActor)
		assert.True(t, apperror.IsConflict(err))
		assert.ErrorIs(t, err, ErrSupplierInUse)
		assert.Contains(t, f.suppliers.rows, s.ID)
	})

	t.Run("unreferenced supplier", func(t *testing.T) {
		s, err := f.svc.Create(ctx, supplierReq("TIN-011", "REG-011"), testActor)
		require.NoError(t, err)

		require.NoError(t, f.svc.Delete(ctx, s.ID, testActor))
		assert.NotContains(t, f.suppliers.rows, s.ID)
	})
}

func TestSupplierService_StorageConflict(t *testing.T) {
	f := newSupplierFixture()
	f.suppliers.failCreate = fmt.Errorf("%w: idx_suppliers_tax_id", repository.ErrDuplicate)

	_, err := f.svc.Create(context.Background(), supplierReq("TIN-020", "REG-020"), testActor)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConstraintViolation, appErr.Code)
	assert.Equal(t, 409, apperror.GetHTTPStatus(err))
	assert.True(t, errors.Is(err, repository.ErrDuplicate))
}

func TestSupplierService_ListRejectsUnknownStatus(t *testing.T) {
	f := newSupplierFixture()

	_, err := f.svc.List(context.Background(), repository.SupplierFilter{Status: "retired"})
	assert.True(t, apperror.IsValidation(err))
}
