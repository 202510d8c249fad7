// Package ingest turns uploaded CSV bytes into a validated-ready dataset:
// encoding sniffing, header aliasing for English and Korean column names,
// and numeric coercion with per-field failure counts.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"invoice-insight/internal/analytics"
	"invoice-insight/internal/domain"
)

// headerAliases maps each canonical column to the header spellings it may
// arrive under. Korean names are the ones the original tax-invoice exports
// carry.
var headerAliases = map[string][]string{
	analytics.ColPeriod:          {"period", "month", "작성월"},
	analytics.ColTransactionType: {"transaction_type", "type", "거래유형"},
	analytics.ColIssuanceForm:    {"issuance_form", "form", "발행형태"},
	analytics.ColSupplyAmount:    {"supply_amount", "supply", "공급가액"},
	analytics.ColTaxAmount:       {"tax_amount", "tax", "세액"},
	analytics.ColAccountCategory: {"account_category", "account", "계정과목"},
}

// Korean categorical labels mapped onto the closed enums. English values go
// through as-is (uppercased); anything unrecognized survives verbatim for
// the schema validator to report.
var typeLabels = map[string]domain.TransactionType{
	"매출": domain.TypeSale,
	"매입": domain.TypePurchase,
	"비용": domain.TypeExpense,
	"수익": domain.TypeRevenue,
}

var formLabels = map[string]domain.IssuanceForm{
	"전자": domain.FormElectronic,
	"종이": domain.FormPaper,
}

// ReadCSV parses the upload into a dataset. Unparseable numeric cells become
// nil amounts and are tallied in CoercionFailures; they never abort the read.
// A header that resolves to none of a required column's aliases is a
// *domain.SchemaError.
func ReadCSV(r io.Reader, name string) (*domain.Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	text, encoding := decodeText(raw)

	reader := csv.NewReader(strings.NewReader(text))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	colMap := make(map[string]int, len(header))
	for i, col := range header {
		colMap[strings.ToLower(strings.TrimSpace(col))] = i
	}

	resolved := make(map[string]int, len(headerAliases))
	var missing []string
	for _, canonical := range analytics.RequiredColumns {
		idx, ok := resolveColumn(colMap, canonical)
		if !ok {
			missing = append(missing, canonical)
			continue
		}
		resolved[canonical] = idx
	}
	if len(missing) > 0 {
		return nil, &domain.SchemaError{MissingFields: missing}
	}

	columns := append([]string{}, analytics.RequiredColumns...)
	if idx, ok := resolveColumn(colMap, analytics.ColAccountCategory); ok {
		resolved[analytics.ColAccountCategory] = idx
		columns = append(columns, analytics.ColAccountCategory)
	}

	ds := &domain.Dataset{
		Name:             name,
		Columns:          columns,
		CoercionFailures: make(map[string]int),
		SourceEncoding:   encoding,
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		tx := domain.Transaction{
			Period: strings.TrimSpace(cell(record, resolved[analytics.ColPeriod])),
			Type:   parseType(cell(record, resolved[analytics.ColTransactionType])),
			Form:   parseForm(cell(record, resolved[analytics.ColIssuanceForm])),
		}
		if idx, ok := resolved[analytics.ColAccountCategory]; ok {
			tx.AccountCategory = strings.TrimSpace(cell(record, idx))
		}

		if v, ok := parseAmount(cell(record, resolved[analytics.ColSupplyAmount])); ok {
			tx.SupplyAmount = domain.Int64Ptr(v)
		} else {
			ds.CoercionFailures[analytics.ColSupplyAmount]++
		}
		if v, ok := parseAmount(cell(record, resolved[analytics.ColTaxAmount])); ok {
			tx.TaxAmount = domain.Int64Ptr(v)
		} else {
			ds.CoercionFailures[analytics.ColTaxAmount]++
		}

		ds.Rows = append(ds.Rows, tx)
	}

	return ds, nil
}

func resolveColumn(colMap map[string]int, canonical string) (int, bool) {
	for _, alias := range headerAliases[canonical] {
		if idx, ok := colMap[alias]; ok {
			return idx, true
		}
	}
	return 0, false
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// parseAmount coerces a numeric cell, tolerating thousands separators, the
// 원 currency suffix, and decimal-formatted integers.
func parseAmount(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "원")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
		return int64(f), true
	}
	return 0, false
}

func parseType(s string) domain.TransactionType {
	s = strings.TrimSpace(s)
	if t, ok := typeLabels[s]; ok {
		return t
	}
	return domain.TransactionType(strings.ToUpper(s))
}

func parseForm(s string) domain.IssuanceForm {
	s = strings.TrimSpace(s)
	if f, ok := formLabels[s]; ok {
		return f
	}
	return domain.IssuanceForm(strings.ToUpper(s))
}
