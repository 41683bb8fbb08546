package services

import (
	"context"
	"time"

	"insureadmin/internal/adapters/persistence/repositories"
	"insureadmin/internal/core/domain"
	"insureadmin/internal/pkg/chartdata"

	"gorm.io/gorm"
)

// ReportService aggregates enrollment data for the dashboard charts.
// Aggregates run as grouped SQL, never by loading rows into memory, and
// every query is scoped to the caller the same way the enrollment lists are.
type ReportService struct {
	db              *gorm.DB
	agentClientRepo repositories.AgentClientRepository
}

// NewReportService creates a new report service
func NewReportService(db *gorm.DB, agentClientRepo repositories.AgentClientRepository) *ReportService {
	return &ReportService{db: db, agentClientRepo: agentClientRepo}
}

// DashboardData bundles the four chart payloads the dashboard renders
type DashboardData struct {
	PoliciesByTypeStatus chartdata.BarChart  `json:"policies_by_type_status"`
	MonthlyCoverage      chartdata.LineChart `json:"monthly_coverage"`
	CoverageByType       chartdata.BarChart  `json:"coverage_by_type"`
	PremiumByType        chartdata.PieChart  `json:"premium_by_type"`
}

// Dashboard runs all four aggregates for the caller and shapes them into
// chart payloads. Empty result sets come back as charts with zeroed grids,
// not errors.
func (s *ReportService) Dashboard(ctx context.Context, caller Caller) (*DashboardData, error) {
	scope, empty, err := s.scopeFor(ctx, caller)
	if err != nil {
		return nil, err
	}
	if empty {
		return &DashboardData{
			PoliciesByTypeStatus: chartdata.StackedBar(nil, chartdata.PolicyTypes, chartdata.PolicyStatuses),
			MonthlyCoverage:      chartdata.CoverageLine(nil),
			CoverageByType:       chartdata.CoverageByTypeBar(nil, chartdata.PolicyTypes),
			PremiumByType:        chartdata.PremiumPie(nil),
		}, nil
	}

	typeStatus, err := s.countsByTypeStatus(ctx, scope)
	if err != nil {
		return nil, err
	}
	monthly, err := s.monthlyCoverage(ctx, scope)
	if err != nil {
		return nil, err
	}
	byType, err := s.coverageByType(ctx, scope)
	if err != nil {
		return nil, err
	}
	premiums, err := s.premiumByType(ctx, scope)
	if err != nil {
		return nil, err
	}

	return &DashboardData{
		PoliciesByTypeStatus: chartdata.StackedBar(typeStatus, chartdata.PolicyTypes, chartdata.PolicyStatuses),
		MonthlyCoverage:      chartdata.CoverageLine(monthly),
		CoverageByType:       chartdata.CoverageByTypeBar(byType, chartdata.PolicyTypes),
		PremiumByType:        chartdata.PremiumPie(premiums),
	}, nil
}

// CountsByTypeStatus returns enrollment counts per (policy type, status)
func (s *ReportService) CountsByTypeStatus(ctx context.Context, caller Caller) ([]chartdata.TypeStatusCount, error) {
	scope, empty, err := s.scopeFor(ctx, caller)
	if err != nil || empty {
		return []chartdata.TypeStatusCount{}, err
	}
	return s.countsByTypeStatus(ctx, scope)
}

// MonthlyCoverage returns total coverage per calendar month of enrollment
func (s *ReportService) MonthlyCoverage(ctx context.Context, caller Caller) ([]chartdata.MonthlyCoverage, error) {
	scope, empty, err := s.scopeFor(ctx, caller)
	if err != nil || empty {
		return []chartdata.MonthlyCoverage{}, err
	}
	return s.monthlyCoverage(ctx, scope)
}

// CoverageByType returns coverage totals per (policy type, month)
func (s *ReportService) CoverageByType(ctx context.Context, caller Caller) ([]chartdata.TypeMonthlyCoverage, error) {
	scope, empty, err := s.scopeFor(ctx, caller)
	if err != nil || empty {
		return []chartdata.TypeMonthlyCoverage{}, err
	}
	return s.coverageByType(ctx, scope)
}

// PremiumByType returns summed premiums per policy type
func (s *ReportService) PremiumByType(ctx context.Context, caller Caller) ([]chartdata.PremiumByType, error) {
	scope, empty, err := s.scopeFor(ctx, caller)
	if err != nil || empty {
		return []chartdata.PremiumByType{}, err
	}
	return s.premiumByType(ctx, scope)
}

// reportScope narrows aggregates to a set of enrollment owners.
// A nil UserIDs means unrestricted (administrator).
type reportScope struct {
	UserIDs []string
}

// scopeFor maps the caller's role to a report scope. The second return is
// true when the scope is provably empty, so callers skip the queries.
func (s *ReportService) scopeFor(ctx context.Context, caller Caller) (reportScope, bool, error) {
	switch caller.Role {
	case domain.RoleAdministrator:
		return reportScope{}, false, nil

	case domain.RoleAgent:
		clientIDs, err := s.agentClientRepo.ClientIDs(ctx, caller.UserID)
		if err != nil {
			return reportScope{}, false, err
		}
		if len(clientIDs) == 0 {
			return reportScope{}, true, nil
		}
		return reportScope{UserIDs: clientIDs}, false, nil

	case domain.RolePolicyHolder:
		return reportScope{UserIDs: []string{caller.UserID}}, false, nil

	default:
		return reportScope{}, false, ErrForbidden
	}
}

func (s *ReportService) scoped(ctx context.Context, scope reportScope) *gorm.DB {
	query := s.db.WithContext(ctx).
		Table("users_policies up").
		Joins("JOIN policies p ON p.id = up.policy_id").
		Where("up.deleted_at IS NULL AND p.deleted_at IS NULL")
	if scope.UserIDs != nil {
		query = query.Where("up.user_id IN ?", scope.UserIDs)
	}
	return query
}

func (s *ReportService) countsByTypeStatus(ctx context.Context, scope reportScope) ([]chartdata.TypeStatusCount, error) {
	var rows []chartdata.TypeStatusCount
	err := s.scoped(ctx, scope).
		Select("p.type AS type, up.status AS status, COUNT(*) AS count").
		Group("p.type, up.status").
		Order("p.type, up.status").
		Scan(&rows).Error
	return rows, err
}

type monthlyCoverageRow struct {
	Month         string  `gorm:"column:month"`
	TotalCoverage float64 `gorm:"column:total_coverage"`
}

func (s *ReportService) monthlyCoverage(ctx context.Context, scope reportScope) ([]chartdata.MonthlyCoverage, error) {
	var raw []monthlyCoverageRow
	err := s.scoped(ctx, scope).
		Select("DATE_FORMAT(up.created_at, '%Y-%m') AS month, SUM(p.coverage) AS total_coverage").
		Group("DATE_FORMAT(up.created_at, '%Y-%m')").
		Order("month ASC").
		Scan(&raw).Error
	if err != nil {
		return nil, err
	}

	rows := make([]chartdata.MonthlyCoverage, 0, len(raw))
	for _, r := range raw {
		// DATE_FORMAT comes back as a string column
		month, err := time.Parse("2006-01", r.Month)
		if err != nil {
			continue
		}
		rows = append(rows, chartdata.MonthlyCoverage{Month: month, TotalCoverage: r.TotalCoverage})
	}
	return rows, nil
}

type typeMonthlyRow struct {
	Type          string  `gorm:"column:type"`
	Month         string  `gorm:"column:month"`
	TotalCoverage float64 `gorm:"column:total_coverage"`
}

func (s *ReportService) coverageByType(ctx context.Context, scope reportScope) ([]chartdata.TypeMonthlyCoverage, error) {
	var raw []typeMonthlyRow
	err := s.scoped(ctx, scope).
		Select("p.type AS type, DATE_FORMAT(up.created_at, '%Y-%m') AS month, SUM(p.coverage) AS total_coverage").
		Group("p.type, DATE_FORMAT(up.created_at, '%Y-%m')").
		Order("month ASC, type ASC").
		Scan(&raw).Error
	if err != nil {
		return nil, err
	}

	rows := make([]chartdata.TypeMonthlyCoverage, 0, len(raw))
	for _, r := range raw {
		month, err := time.Parse("2006-01", r.Month)
		if err != nil {
			continue
		}
		rows = append(rows, chartdata.TypeMonthlyCoverage{Type: r.Type, Month: month, TotalCoverage: r.TotalCoverage})
	}
	return rows, nil
}

func (s *ReportService) premiumByType(ctx context.Context, scope reportScope) ([]chartdata.PremiumByType, error) {
	var rows []chartdata.PremiumByType
	err := s.scoped(ctx, scope).
		Select("p.type AS type, SUM(p.premium) AS total_premium").
		Group("p.type").
		Order("p.type").
		Scan(&rows).Error
	return rows, err
}
