package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type MovementRequest struct {
	SessionID string          `json:"session_id" validate:"required,uuid"`
	Type      string          `json:"type"       validate:"required,oneof=cash_in cash_out pay_in pay_out"`
	Amount    decimal.Decimal `json:"amount"     validate:"required,gt=0"`
	Reason    string          `json:"reason"     validate:"required,min=1"`
}

type SaleRequest struct {
	SessionID string          `json:"session_id"     validate:"required,uuid"`
	Amount    decimal.Decimal `json:"amount"         validate:"required,gt=0"`
	// PaymentMethod is an open string: cash and card feed their running
	// buckets, anything else only counts toward total_sales.
	PaymentMethod string  `json:"payment_method" validate:"required,min=1"`
	Reference     *string `json:"reference"`
}

type RefundRequest struct {
	SessionID     string          `json:"session_id"     validate:"required,uuid"`
	Amount        decimal.Decimal `json:"amount"         validate:"required,gt=0"`
	PaymentMethod string          `json:"payment_method" validate:"required,min=1"`
	Reason        *string         `json:"reason"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovementResponse struct {
	ID          string          `json:"id"`
	SessionID   string          `json:"session_id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Reason      string          `json:"reason"`
	PerformedBy string          `json:"performed_by"`
	CreatedAt   string          `json:"created_at"`
}

type MovementListResponse struct {
	Data  []MovementResponse `json:"data"`
	Total int                `json:"total"`
}

// TotalsResponse is the post-write aggregate snapshot returned by the sale
// and refund endpoints.
type TotalsResponse struct {
	SessionID string        `json:"session_id"`
	Totals    SessionTotals `json:"totals"`
}
