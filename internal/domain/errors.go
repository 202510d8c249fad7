package domain

import (
	"fmt"
	"strings"
)

// SchemaError reports why a table failed schema validation. It always names
// the specific missing fields or offending values so the caller can fix the
// input (or decide to fall back to sample data).
type SchemaError struct {
	MissingFields []string
	InvalidTypes  []string
	InvalidForms  []string
}

func (e *SchemaError) Error() string {
	var parts []string
	if len(e.MissingFields) > 0 {
		parts = append(parts, fmt.Sprintf("missing required columns: %s", strings.Join(e.MissingFields, ", ")))
	}
	if len(e.InvalidTypes) > 0 {
		parts = append(parts, fmt.Sprintf("invalid transaction_type values: %s", strings.Join(e.InvalidTypes, ", ")))
	}
	if len(e.InvalidForms) > 0 {
		parts = append(parts, fmt.Sprintf("invalid issuance_form values: %s", strings.Join(e.InvalidForms, ", ")))
	}
	if len(parts) == 0 {
		return "schema validation failed"
	}
	return "schema validation failed: " + strings.Join(parts, "; ")
}

// ParameterError reports a configuration value outside its permitted range.
// Rejected before any model runs.
type ParameterError struct {
	Name   string
	Value  float64
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Name, e.Value, e.Reason)
}
