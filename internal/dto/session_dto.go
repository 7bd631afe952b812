package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenSessionRequest struct {
	RegisterID   string          `json:"register_id"   validate:"required,uuid"`
	OpeningFloat decimal.Decimal `json:"opening_float" validate:"min=0"`
	Notes        *string         `json:"notes"`
}

type CloseSessionRequest struct {
	SessionID  string          `json:"session_id"  validate:"required,uuid"`
	ActualCash decimal.Decimal `json:"actual_cash" validate:"min=0"`
	// ClosingFloat is the cash left in the drawer for the next shift.
	// Informational only; it does not enter the reconciliation arithmetic.
	ClosingFloat *decimal.Decimal `json:"closing_float" validate:"omitempty,min=0"`
	Notes        *string          `json:"notes"`
}

// ─── Filter / List ──────────────────────────────────────────────────────────

// HistoryFilter is bound from the query string of GET /v1/cash/history.
type HistoryFilter struct {
	RegisterID string `form:"register_id" validate:"omitempty,uuid"`
	From       string `form:"from"` // YYYY-MM-DD; empty = no lower bound
	To         string `form:"to"`   // YYYY-MM-DD; empty = no upper bound
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=20" validate:"min=1,max=100"`
}

type SessionListResponse struct {
	Data  []SessionResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// SessionTotals is the running-aggregate block of a session. Sale and refund
// endpoints return it as the post-write snapshot.
type SessionTotals struct {
	TotalSales        decimal.Decimal `json:"total_sales"`
	TotalRefunds      decimal.Decimal `json:"total_refunds"`
	TotalCashPayments decimal.Decimal `json:"total_cash_payments"`
	TotalCardPayments decimal.Decimal `json:"total_card_payments"`
	TotalCashIn       decimal.Decimal `json:"total_cash_in"`
	TotalCashOut      decimal.Decimal `json:"total_cash_out"`
	TotalPayIn        decimal.Decimal `json:"total_pay_in"`
	TotalPayOut       decimal.Decimal `json:"total_pay_out"`
	TransactionCount  int             `json:"transaction_count"`
}

// ReconciliationFigures is present only once the session is closed.
type ReconciliationFigures struct {
	ExpectedCash   decimal.Decimal `json:"expected_cash"`
	ActualCash     decimal.Decimal `json:"actual_cash"`
	CashDifference decimal.Decimal `json:"cash_difference"`
}

type SessionResponse struct {
	ID             string                 `json:"id"`
	RegisterID     string                 `json:"register_id"`
	Status         string                 `json:"status"`
	OpenedBy       string                 `json:"opened_by"`
	ClosedBy       *string                `json:"closed_by"`
	OpeningFloat   decimal.Decimal        `json:"opening_float"`
	ClosingFloat   *decimal.Decimal       `json:"closing_float"`
	Totals         SessionTotals          `json:"totals"`
	Reconciliation *ReconciliationFigures `json:"reconciliation"`
	Notes          *string                `json:"notes"`
	OpenedAt       string                 `json:"opened_at"`
	ClosedAt       *string                `json:"closed_at"`
}
