package dto

import "github.com/shopspring/decimal"

// ReportFilter is bound from the query string of GET /v1/reports/cash.
type ReportFilter struct {
	From       string `form:"from"` // YYYY-MM-DD inclusive, filters closed_at
	To         string `form:"to"`   // YYYY-MM-DD inclusive
	RegisterID string `form:"register_id" validate:"omitempty,uuid"`
}

// ReconciliationReportResponse aggregates closed sessions in the range.
// A session counts as discrepant when |cash_difference| exceeds the
// configured tolerance.
type ReconciliationReportResponse struct {
	TotalSessions           int64           `json:"total_sessions"`
	TotalSales              decimal.Decimal `json:"total_sales"`
	TotalRefunds            decimal.Decimal `json:"total_refunds"`
	AverageCashDifference   decimal.Decimal `json:"average_cash_difference"`
	SessionsWithDiscrepancy int64           `json:"sessions_with_discrepancy"`
	DiscrepancyTolerance    decimal.Decimal `json:"discrepancy_tolerance"`
	From                    *string         `json:"from"`
	To                      *string         `json:"to"`
}
