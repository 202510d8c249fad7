package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransaction_Complete(t *testing.T) {
	full := Transaction{SupplyAmount: Int64Ptr(100), TaxAmount: Int64Ptr(10)}
	assert.True(t, full.Complete())

	assert.False(t, Transaction{SupplyAmount: Int64Ptr(100)}.Complete())
	assert.False(t, Transaction{TaxAmount: Int64Ptr(10)}.Complete())
	assert.False(t, Transaction{}.Complete())
}

func TestValidType(t *testing.T) {
	assert.True(t, ValidType(TypeSale, StrictTypes))
	assert.False(t, ValidType(TypeExpense, StrictTypes))
	assert.True(t, ValidType(TypeExpense, ExtendedTypes))
	assert.False(t, ValidType("GIFT", ExtendedTypes))
}

func TestDataset_FilterPeriod(t *testing.T) {
	ds := &Dataset{
		ID: "d",
		Rows: []Transaction{
			{Period: "2024-01", Type: TypeSale},
			{Period: "2024-02", Type: TypeSale},
			{Period: "2024-01", Type: TypePurchase},
		},
	}

	jan := ds.FilterPeriod("2024-01")
	require.Len(t, jan.Rows, 2)
	assert.Equal(t, "d", jan.ID)
	// The receiver is untouched.
	assert.Len(t, ds.Rows, 3)

	assert.Same(t, ds, ds.FilterPeriod(""))
	assert.Empty(t, ds.FilterPeriod("2025-01").Rows)
}

func TestDataset_Periods(t *testing.T) {
	ds := &Dataset{Rows: []Transaction{
		{Period: "2024-03"},
		{Period: "2024-01"},
		{Period: "2024-03"},
	}}
	assert.Equal(t, []string{"2024-01", "2024-03"}, ds.Periods())
}

func TestSchemaError_NamesFields(t *testing.T) {
	err := &SchemaError{MissingFields: []string{"tax_amount"}}
	assert.Contains(t, err.Error(), "tax_amount")

	err = &SchemaError{InvalidTypes: []string{"GIFT"}, InvalidForms: []string{"FAX"}}
	msg := err.Error()
	assert.Contains(t, msg, "GIFT")
	assert.Contains(t, msg, "FAX")
}

func TestParameterError(t *testing.T) {
	err := &ParameterError{Name: "contamination", Value: 1.5, Reason: "must be in (0, 1)"}
	assert.Contains(t, err.Error(), "contamination")
	assert.Contains(t, err.Error(), "must be in (0, 1)")
}
