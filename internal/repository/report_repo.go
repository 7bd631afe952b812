package repository

import (
	"context"

	"github.com/BrightonDube/BizPilot2-sub004/internal/dto"
	"github.com/BrightonDube/BizPilot2-sub004/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReconciliationTotals is the raw aggregate row behind GET /v1/reports/cash.
type ReconciliationTotals struct {
	TotalSessions           int64
	TotalSales              decimal.Decimal
	TotalRefunds            decimal.Decimal
	SumCashDifference       decimal.Decimal
	SessionsWithDiscrepancy int64
}

type ReportRepository interface {
	ReconciliationTotals(ctx context.Context, businessID uuid.UUID, f dto.ReportFilter, tolerance decimal.Decimal) (*ReconciliationTotals, error)
}

type reportRepo struct{ db *gorm.DB }

func NewReportRepository(db *gorm.DB) ReportRepository { return &reportRepo{db: db} }

func (r *reportRepo) ReconciliationTotals(ctx context.Context, businessID uuid.UUID, f dto.ReportFilter, tolerance decimal.Decimal) (*ReconciliationTotals, error) {
	q := r.db.WithContext(ctx).Model(&model.CashSession{}).
		Where("business_id = ? AND status = ?", businessID, model.SessionClosed)
	if f.RegisterID != "" {
		q = q.Where("register_id = ?", f.RegisterID)
	}
	if f.From != "" {
		q = q.Where("DATE(closed_at) >= ?", f.From)
	}
	if f.To != "" {
		q = q.Where("DATE(closed_at) <= ?", f.To)
	}

	var row ReconciliationTotals
	err := q.Select(`COUNT(*) AS total_sessions,
		COALESCE(SUM(total_sales), 0) AS total_sales,
		COALESCE(SUM(total_refunds), 0) AS total_refunds,
		COALESCE(SUM(cash_difference), 0) AS sum_cash_difference,
		COUNT(*) FILTER (WHERE ABS(cash_difference) > ?) AS sessions_with_discrepancy`, tolerance).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
