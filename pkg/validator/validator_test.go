package validator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lineInput struct {
	Description string          `json:"description" validate:"required"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	UnitCost    decimal.Decimal `json:"unit_cost" validate:"gte=0"`
}

type orderInput struct {
	SupplierID string      `json:"supplier_id" validate:"required,uuid"`
	Status     string      `json:"status" validate:"required,oneof=active pending blacklisted"`
	Items      []lineInput `json:"items" validate:"dive"`
}

type movementInput struct {
	StockItemID uuid.UUID `json:"stock_item_id" validate:"uuid_required"`
}

func failedFields(errs []*ErrorResponse) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[e.FailedField] = e.Tag
	}
	return out
}

func TestValidateStruct_Valid(t *testing.T) {
	in := orderInput{
		SupplierID: uuid.NewString(),
		Status:     "active",
		Items: []lineInput{
			{Description: "Bond paper", Quantity: 0, UnitCost: decimal.Zero},
		},
	}

	assert.Empty(t, ValidateStruct(in))
}

func TestValidateStruct_ReportsJSONPaths(t *testing.T) {
	in := orderInput{
		SupplierID: "not-a-uuid",
		Status:     "retired",
		Items: []lineInput{
			{Description: "Ink", Quantity: 1, UnitCost: decimal.NewFromInt(5)},
			{Description: "", Quantity: -2, UnitCost: decimal.RequireFromString("-0.01")},
		},
	}

	fields := failedFields(ValidateStruct(in))

	require.Len(t, fields, 5)
	assert.Equal(t, "uuid", fields["supplier_id"])
	assert.Equal(t, "oneof", fields["status"])
	assert.Equal(t, "required", fields["items[1].description"])
	assert.Equal(t, "gte", fields["items[1].quantity"])
	assert.Equal(t, "gte", fields["items[1].unit_cost"])
}

func TestValidateStruct_UUIDRequired(t *testing.T) {
	fields := failedFields(ValidateStruct(movementInput{}))
	assert.Equal(t, "uuid_required", fields["stock_item_id"])

	assert.Empty(t, ValidateStruct(movementInput{StockItemID: uuid.New()}))
}

func TestErrorResponse_Message(t *testing.T) {
	assert.Equal(t, "is required", (&ErrorResponse{Tag: "required"}).Message())
	assert.Equal(t, "must be greater than or equal to 0", (&ErrorResponse{Tag: "gte", Value: "0"}).Message())
	assert.Equal(t, "must be one of: active pending blacklisted",
		(&ErrorResponse{Tag: "oneof", Value: "active pending blacklisted"}).Message())
}
