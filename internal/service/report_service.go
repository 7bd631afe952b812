package service

import (
	"context"

	"github.com/BrightonDube/BizPilot2-sub004/internal/dto"
	"github.com/BrightonDube/BizPilot2-sub004/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ReportService interface {
	Reconciliation(ctx context.Context, businessID uuid.UUID, f dto.ReportFilter) (*dto.ReconciliationReportResponse, error)
}

type reportService struct {
	repo repository.ReportRepository
	// tolerance is the absolute cash_difference above which a closed session
	// counts as discrepant. Zero means any nonzero difference counts.
	tolerance decimal.Decimal
}

func NewReportService(repo repository.ReportRepository, tolerance decimal.Decimal) ReportService {
	return &reportService{repo: repo, tolerance: tolerance}
}

func (s *reportService) Reconciliation(ctx context.Context, businessID uuid.UUID, f dto.ReportFilter) (*dto.ReconciliationReportResponse, error) {
	totals, err := s.repo.ReconciliationTotals(ctx, businessID, f, s.tolerance)
	if err != nil {
		return nil, err
	}

	avg := decimal.Zero
	if totals.TotalSessions > 0 {
		avg = totals.SumCashDifference.Div(decimal.NewFromInt(totals.TotalSessions)).Round(2)
	}

	resp := &dto.ReconciliationReportResponse{
		TotalSessions:           totals.TotalSessions,
		TotalSales:              totals.TotalSales,
		TotalRefunds:            totals.TotalRefunds,
		AverageCashDifference:   avg,
		SessionsWithDiscrepancy: totals.SessionsWithDiscrepancy,
		DiscrepancyTolerance:    s.tolerance,
	}
	if f.From != "" {
		v := f.From
		resp.From = &v
	}
	if f.To != "" {
		v := f.To
		resp.To = &v
	}
	return resp, nil
}
