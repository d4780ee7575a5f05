package service

import (
	"context"
	"strings"

	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
	"github.com/andresuchdata/salesperf/backend-go/internal/kpi"
	"github.com/andresuchdata/salesperf/backend-go/internal/repository"
)

// AgreementService manages WBC agreements and their target-vs-achieved report.
// A scoped caller sees an agreement when the customer master assigns its
// customer to an allowed salesperson.
type AgreementService struct {
	agreements repository.AgreementRepository
	sales      repository.SalesRepository
}

func NewAgreementService(agreements repository.AgreementRepository, sales repository.SalesRepository) *AgreementService {
	return &AgreementService{agreements: agreements, sales: sales}
}

func (s *AgreementService) List(ctx context.Context, scope domain.Scope) ([]domain.Agreement, error) {
	all, err := s.agreements.ListAgreements(ctx)
	if err != nil {
		return nil, err
	}
	if scope.All {
		return all, nil
	}

	codes, err := s.visibleCodes(ctx, scope)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Agreement, 0, len(all))
	for _, a := range all {
		if codes[strings.TrimSpace(a.CustomerCode)] {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *AgreementService) Get(ctx context.Context, id string, scope domain.Scope) (*domain.Agreement, error) {
	a, err := s.agreements.GetAgreement(ctx, id)
	if err != nil {
		return nil, err
	}
	if scope.All {
		return a, nil
	}
	codes, err := s.visibleCodes(ctx, scope)
	if err != nil {
		return nil, err
	}
	if !codes[strings.TrimSpace(a.CustomerCode)] {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

func (s *AgreementService) Create(ctx context.Context, a domain.Agreement) (*domain.Agreement, error) {
	if err := validateAgreement(&a); err != nil {
		return nil, err
	}
	batch := []domain.Agreement{a}
	if _, err := s.agreements.InsertAgreements(ctx, batch); err != nil {
		return nil, err
	}
	// the store assigns id and created_at in place
	return s.agreements.GetAgreement(ctx, batch[0].ID)
}

func (s *AgreementService) Update(ctx context.Context, id string, a domain.Agreement) (*domain.Agreement, error) {
	existing, err := s.agreements.GetAgreement(ctx, id)
	if err != nil {
		return nil, err
	}
	a.ID = existing.ID
	a.CreatedAt = existing.CreatedAt
	if err := validateAgreement(&a); err != nil {
		return nil, err
	}
	if err := s.agreements.UpdateAgreement(ctx, &a); err != nil {
		return nil, err
	}
	return s.agreements.GetAgreement(ctx, id)
}

func (s *AgreementService) Delete(ctx context.Context, id string) error {
	return s.agreements.DeleteAgreement(ctx, id)
}

// Targets reports achieved core volume for every visible agreement.
func (s *AgreementService) Targets(ctx context.Context, scope domain.Scope) (*domain.TargetSummary, error) {
	agreements, err := s.List(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(agreements) == 0 {
		return &domain.TargetSummary{Results: []domain.TargetResult{}}, nil
	}

	codes := make([]string, 0, len(agreements))
	for _, a := range agreements {
		codes = append(codes, strings.TrimSpace(a.CustomerCode))
	}
	lines, err := s.sales.TransactionsForCustomers(ctx, codes, kpi.AgreementWindow(agreements))
	if err != nil {
		return nil, err
	}

	summary := kpi.Targets(agreements, lines)
	for i := range summary.Results {
		summary.Results[i].AchievedVolume = Round2(summary.Results[i].AchievedVolume)
		summary.Results[i].AchievementPct = Round2(summary.Results[i].AchievementPct)
	}
	summary.TotalAchieved = Round2(summary.TotalAchieved)
	summary.OverallPct = Round2(summary.OverallPct)
	return &summary, nil
}

// TargetProducts breaks one agreement's achieved volume down by product.
func (s *AgreementService) TargetProducts(ctx context.Context, id string, scope domain.Scope) ([]domain.DrilldownItem, error) {
	a, lines, err := s.agreementLines(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	return kpi.TargetProducts(*a, lines), nil
}

// TargetInvoices lists the invoice lines of one product under an agreement.
func (s *AgreementService) TargetInvoices(ctx context.Context, id, product string, scope domain.Scope) ([]domain.TransactionLine, error) {
	a, lines, err := s.agreementLines(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	return kpi.TargetInvoices(*a, lines, product), nil
}

func (s *AgreementService) agreementLines(ctx context.Context, id string, scope domain.Scope) (*domain.Agreement, []domain.TransactionLine, error) {
	a, err := s.Get(ctx, id, scope)
	if err != nil {
		return nil, nil, err
	}
	lines, err := s.sales.TransactionsForCustomers(ctx, []string{strings.TrimSpace(a.CustomerCode)}, kpi.AgreementWindow([]domain.Agreement{*a}))
	if err != nil {
		return nil, nil, err
	}
	return a, lines, nil
}

func (s *AgreementService) visibleCodes(ctx context.Context, scope domain.Scope) (map[string]bool, error) {
	customers, err := s.sales.Customers(ctx, scope)
	if err != nil {
		return nil, err
	}
	codes := make(map[string]bool, len(customers))
	for _, c := range scope.FilterCustomers(customers) {
		if code := strings.TrimSpace(c.Code); code != "" {
			codes[code] = true
		}
	}
	return codes, nil
}

func validateAgreement(a *domain.Agreement) error {
	a.CustomerCode = strings.TrimSpace(a.CustomerCode)
	a.CustomerName = strings.TrimSpace(a.CustomerName)
	switch {
	case a.CustomerCode == "":
		return &domain.InvalidAgreementError{Reason: "customer code is required"}
	case a.StartDate.IsZero() || a.EndDate.IsZero():
		return &domain.InvalidAgreementError{Reason: "start and end dates are required"}
	case a.EndDate.Before(a.StartDate):
		return &domain.InvalidAgreementError{Reason: "end date is before start date"}
	case a.TargetVolume < 0:
		return &domain.InvalidAgreementError{Reason: "target volume must not be negative"}
	}
	return nil
}
