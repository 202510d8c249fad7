package domain

import "sort"

// TransactionType classifies a tax-invoice transaction. The strict upload
// schema permits only Sale and Purchase; sample data and richer analyses use
// the extended set including Expense and Revenue.
type TransactionType string

const (
	TypeSale     TransactionType = "SALE"
	TypePurchase TransactionType = "PURCHASE"
	TypeExpense  TransactionType = "EXPENSE"
	TypeRevenue  TransactionType = "REVENUE"
)

// IssuanceForm is how the invoice was issued.
type IssuanceForm string

const (
	FormElectronic IssuanceForm = "ELECTRONIC"
	FormPaper      IssuanceForm = "PAPER"
)

// ExtendedTypes is the full set of permitted transaction types.
var ExtendedTypes = []TransactionType{TypeSale, TypePurchase, TypeExpense, TypeRevenue}

// StrictTypes is the set permitted by the strict 5-column upload schema.
var StrictTypes = []TransactionType{TypeSale, TypePurchase}

// Forms is the set of permitted issuance forms.
var Forms = []IssuanceForm{FormElectronic, FormPaper}

// ValidType reports whether t is in the given permitted set.
func ValidType(t TransactionType, set []TransactionType) bool {
	for _, v := range set {
		if t == v {
			return true
		}
	}
	return false
}

// ValidForm reports whether f is a permitted issuance form.
func ValidForm(f IssuanceForm) bool {
	for _, v := range Forms {
		if f == v {
			return true
		}
	}
	return false
}

// Transaction is one row of the input table. Amounts are integer currency
// units (won). A nil amount means the source value failed numeric coercion;
// such rows are excluded from statistical computation, never zeroed.
type Transaction struct {
	Period          string          `json:"period"` // YYYY-MM
	Type            TransactionType `json:"transaction_type"`
	Form            IssuanceForm    `json:"issuance_form"`
	SupplyAmount    *int64          `json:"supply_amount"`
	TaxAmount       *int64          `json:"tax_amount"`
	AccountCategory string          `json:"account_category,omitempty"` // extended schema only
}

// Complete reports whether both numeric fields survived coercion.
func (t Transaction) Complete() bool {
	return t.SupplyAmount != nil && t.TaxAmount != nil
}

// Dataset is an immutable transaction table plus its ingestion provenance.
// Core operations never mutate a Dataset; they return new derived artifacts.
type Dataset struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Columns []string `json:"columns"` // canonical names of the columns present in the source

	Rows []Transaction `json:"rows"`

	// CoercionFailures counts source cells per numeric column that could not
	// be parsed. The affected rows carry nil amounts.
	CoercionFailures map[string]int `json:"coercion_failures,omitempty"`

	// SourceEncoding is the encoding the source bytes were decoded with.
	SourceEncoding string `json:"source_encoding,omitempty"`
}

// HasColumn reports whether the dataset's source carried the named column.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// FilterPeriod returns a new dataset containing only rows for the given
// YYYY-MM period. An empty period returns the receiver unchanged.
func (d *Dataset) FilterPeriod(period string) *Dataset {
	if period == "" {
		return d
	}
	out := &Dataset{
		ID:               d.ID,
		Name:             d.Name,
		Columns:          d.Columns,
		CoercionFailures: d.CoercionFailures,
		SourceEncoding:   d.SourceEncoding,
	}
	for _, tx := range d.Rows {
		if tx.Period == period {
			out.Rows = append(out.Rows, tx)
		}
	}
	return out
}

// Periods returns the sorted distinct periods present in the dataset.
func (d *Dataset) Periods() []string {
	seen := make(map[string]bool)
	var out []string
	for _, tx := range d.Rows {
		if !seen[tx.Period] {
			seen[tx.Period] = true
			out = append(out, tx.Period)
		}
	}
	sort.Strings(out)
	return out
}

// LabeledTransaction is a transaction plus the outlier model's verdict.
// It is a distinct artifact from the input table: the rule-based quality
// filter has its own, unrelated notion of "outlier" and never reads this.
type LabeledTransaction struct {
	Transaction
	Anomalous bool `json:"is_anomaly"`
}

// Int64Ptr returns a pointer to v. Convenience for building sample rows and
// test fixtures around the optional amount fields.
func Int64Ptr(v int64) *int64 { return &v }
