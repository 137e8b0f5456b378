package models

// WarningCode classifies non-fatal issues found while computing analytics.
type WarningCode string

const (
	WarningMissingPrice     WarningCode = "missing_price"
	WarningMissingDate      WarningCode = "missing_date"
	WarningReconciledRow    WarningCode = "reconciled_row"
	WarningUnresolvableRow  WarningCode = "unresolvable_row"
	WarningComputationSkip  WarningCode = "computation_skipped"
)

// Warning describes a data-quality or completeness issue that was handled
// with a safe default instead of failing the request.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}
