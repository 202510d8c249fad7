package analytics

import (
	"fmt"
	"sort"

	"invoice-insight/internal/domain"
)

// Canonical column names of the transaction table.
const (
	ColPeriod          = "period"
	ColTransactionType = "transaction_type"
	ColIssuanceForm    = "issuance_form"
	ColSupplyAmount    = "supply_amount"
	ColTaxAmount       = "tax_amount"
	ColAccountCategory = "account_category"
)

// RequiredColumns are the columns every input table must carry.
var RequiredColumns = []string{
	ColPeriod,
	ColTransactionType,
	ColIssuanceForm,
	ColSupplyAmount,
	ColTaxAmount,
}

// ValidationMode selects how unknown categorical values are treated.
type ValidationMode string

const (
	// Strict rejects values outside the Sale/Purchase type set and the
	// Electronic/Paper form set. Used for uploads claiming the 5-column schema.
	Strict ValidationMode = "strict"
	// Lenient downgrades unknown-but-parseable categorical values to
	// warnings and accepts the extended type set. Used for sample data and
	// extended-schema uploads.
	Lenient ValidationMode = "lenient"
)

// SchemaReport is the validator's verdict. Valid is false only for failures
// that make analysis unsound; warnings describe permissible-but-non-ideal
// data that analysis proceeds over.
type SchemaReport struct {
	Valid            bool           `json:"valid"`
	Mode             ValidationMode `json:"mode"`
	MissingFields    []string       `json:"missing_fields,omitempty"`
	InvalidTypes     []string       `json:"invalid_types,omitempty"`
	InvalidForms     []string       `json:"invalid_forms,omitempty"`
	CoercionFailures int            `json:"coercion_failures"`
	Warnings         []string       `json:"warnings,omitempty"`
}

// ValidateSchema checks that ds carries the required columns, that its
// numeric columns coerced, and that categorical values are drawn from their
// permitted sets. On failure the returned error is a *domain.SchemaError
// naming the specific violations; the report is returned in either case.
func ValidateSchema(ds *domain.Dataset, mode ValidationMode) (*SchemaReport, error) {
	report := &SchemaReport{Valid: true, Mode: mode}

	for _, col := range RequiredColumns {
		if !ds.HasColumn(col) {
			report.MissingFields = append(report.MissingFields, col)
		}
	}
	if len(report.MissingFields) > 0 {
		report.Valid = false
		return report, &domain.SchemaError{MissingFields: report.MissingFields}
	}

	typeSet := domain.ExtendedTypes
	if mode == Strict {
		typeSet = domain.StrictTypes
	}

	badTypes := make(map[string]bool)
	badForms := make(map[string]bool)
	for _, tx := range ds.Rows {
		if !domain.ValidType(tx.Type, typeSet) {
			badTypes[string(tx.Type)] = true
		}
		if !domain.ValidForm(tx.Form) {
			badForms[string(tx.Form)] = true
		}
	}
	report.InvalidTypes = sortedKeys(badTypes)
	report.InvalidForms = sortedKeys(badForms)

	for col, n := range ds.CoercionFailures {
		if n > 0 {
			report.CoercionFailures += n
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("%d value(s) in %s are not numeric and were excluded from statistics", n, col))
		}
	}
	sort.Strings(report.Warnings)

	if len(report.InvalidTypes) > 0 || len(report.InvalidForms) > 0 {
		if mode == Strict {
			report.Valid = false
			return report, &domain.SchemaError{
				InvalidTypes: report.InvalidTypes,
				InvalidForms: report.InvalidForms,
			}
		}
		if len(report.InvalidTypes) > 0 {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("unrecognized transaction_type values: %v", report.InvalidTypes))
		}
		if len(report.InvalidForms) > 0 {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("unrecognized issuance_form values: %v", report.InvalidForms))
		}
	}

	return report, nil
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
