package state

import (
	"context"
	"fmt"
	"time"

	"insureadmin/internal/adapters/persistence/models"
	"insureadmin/internal/core/domain"
	"insureadmin/internal/core/services"
	"insureadmin/internal/pkg/chartdata"
	"insureadmin/internal/pkg/pagination"
)

// guard keeps a panicking service call from escaping the slice: the panic
// becomes the operation's error result.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("operation panicked: %v", r)
		}
	}()
	return fn()
}

// ============================================================
// Auth slice operations
// ============================================================

// FetchUserByID loads one user into the auth slice
func (s *Store) FetchUserByID(ctx context.Context, id string) (*models.UserResponse, error) {
	s.mutate(func() {
		s.auth.Status = StatusLoading
		s.auth.Error = ""
	})

	var user *models.UserResponse
	err := guard(func() error {
		var err error
		user, err = s.deps.Users.GetUser(ctx, id)
		return err
	})
	if err != nil {
		s.mutate(func() {
			s.auth.Status = StatusError
			s.auth.Error = err.Error()
		})
		return nil, err
	}

	s.mutate(func() {
		s.auth.Status = StatusSuccess
		s.auth.User = user
	})
	return user, nil
}

// FetchUsers loads a page of users into the auth slice
func (s *Store) FetchUsers(ctx context.Context, params *pagination.Params) (*pagination.Response, error) {
	s.mutate(func() {
		s.auth.Status = StatusLoading
		s.auth.Error = ""
	})

	var page *pagination.Response
	err := guard(func() error {
		var err error
		page, err = s.deps.Users.ListUsers(ctx, params)
		return err
	})
	if err != nil {
		s.mutate(func() {
			s.auth.Status = StatusError
			s.auth.Error = err.Error()
		})
		return nil, err
	}

	s.mutate(func() {
		s.auth.Status = StatusSuccess
		if users, ok := page.Data.([]*models.UserResponse); ok {
			s.auth.Users = users
		}
		s.auth.UsersTotal = page.Meta.Total
	})
	return page, nil
}

// FetchRoles loads all assignable roles into the auth slice
func (s *Store) FetchRoles(ctx context.Context) ([]*models.Role, error) {
	s.mutate(func() {
		s.auth.Status = StatusLoading
		s.auth.Error = ""
	})

	var roles []*models.Role
	err := guard(func() error {
		var err error
		roles, err = s.deps.Users.ListRoles(ctx)
		return err
	})
	if err != nil {
		s.mutate(func() {
			s.auth.Status = StatusError
			s.auth.Error = err.Error()
		})
		return nil, err
	}

	s.mutate(func() {
		s.auth.Status = StatusSuccess
		s.auth.Roles = roles
	})
	return roles, nil
}

// ============================================================
// Policy slice operations
// ============================================================

// FetchPolicyCatalog loads the full catalog into the policy slice
func (s *Store) FetchPolicyCatalog(ctx context.Context) ([]*models.Policy, error) {
	s.mutate(func() {
		s.policy.Status = StatusLoading
		s.policy.Error = ""
	})

	var catalog []*models.Policy
	err := guard(func() error {
		var err error
		catalog, err = s.deps.Policies.ListCatalog(ctx)
		return err
	})
	if err != nil {
		s.mutate(func() {
			s.policy.Status = StatusError
			s.policy.Error = err.Error()
		})
		return nil, err
	}

	s.mutate(func() {
		s.policy.Status = StatusSuccess
		s.policy.Catalog = catalog
	})
	return catalog, nil
}

// FetchPoliciesForUser loads the signed-in policy holder's own enrollments
func (s *Store) FetchPoliciesForUser(ctx context.Context, params *pagination.Params) (*pagination.Response, error) {
	return s.fetchEnrollments(ctx, services.Caller{UserID: s.userID, Role: domain.RolePolicyHolder}, params)
}

// FetchPoliciesForAgent loads enrollments of the agent's assigned clients
func (s *Store) FetchPoliciesForAgent(ctx context.Context, params *pagination.Params) (*pagination.Response, error) {
	return s.fetchEnrollments(ctx, services.Caller{UserID: s.userID, Role: domain.RoleAgent}, params)
}

// FetchPoliciesForAdmin loads all enrollments
func (s *Store) FetchPoliciesForAdmin(ctx context.Context, params *pagination.Params) (*pagination.Response, error) {
	return s.fetchEnrollments(ctx, services.Caller{UserID: s.userID, Role: domain.RoleAdministrator}, params)
}

func (s *Store) fetchEnrollments(ctx context.Context, caller services.Caller, params *pagination.Params) (*pagination.Response, error) {
	// Once the slice knows its page count, navigating out of range is a
	// no-op: the fetch stays on the current page.
	s.mu.Lock()
	if s.policy.TotalPages > 0 {
		if page := pagination.GoToPage(s.policy.Page, params.Page, s.policy.TotalPages); page != params.Page {
			params = pagination.New(page, params.Limit)
		}
	}
	s.mu.Unlock()

	s.mutate(func() {
		s.policy.Status = StatusLoading
		s.policy.Error = ""
	})

	var page *pagination.Response
	err := guard(func() error {
		var err error
		page, err = s.deps.Policies.ListEnrollments(ctx, caller, params)
		return err
	})
	if err != nil {
		s.mutate(func() {
			s.policy.Status = StatusError
			s.policy.Error = err.Error()
		})
		return nil, err
	}

	s.mutate(func() {
		s.policy.Status = StatusSuccess
		if rows, ok := page.Data.([]*models.EnrollmentResponse); ok {
			s.policy.Enrollments = rows
			// A fresh page starts unfiltered
			s.policy.Filtered = rows
		}
		s.policy.Total = page.Meta.Total
		s.policy.Page = page.Meta.Page
		s.policy.TotalPages = page.Meta.TotalPages
	})
	return page, nil
}

// SetFilters narrows the loaded enrollments and returns the filtered view
func (s *Store) SetFilters(filters Filters) []*models.EnrollmentResponse {
	var filtered []*models.EnrollmentResponse
	s.mutate(func() {
		s.policy.Filters = filters
		s.refilterLocked()
		filtered = s.policy.Filtered
	})
	return filtered
}

// refilterLocked recomputes the filtered view from the loaded rows
func (s *Store) refilterLocked() {
	filtered := make([]*models.EnrollmentResponse, 0, len(s.policy.Enrollments))
	for _, row := range s.policy.Enrollments {
		if s.matchesFiltersLocked(row) {
			filtered = append(filtered, row)
		}
	}
	s.policy.Filtered = filtered
}

// matchesFiltersLocked checks one row against the active filters.
// An unparseable filter date does not constrain.
func (s *Store) matchesFiltersLocked(row *models.EnrollmentResponse) bool {
	f := s.policy.Filters
	if f.Type != "" && (row.Policy == nil || row.Policy.Type != f.Type) {
		return false
	}
	if f.Status != "" && row.Status != f.Status {
		return false
	}
	if f.StartDate != "" && row.Policy != nil {
		if from, err := time.Parse("2006-01-02", f.StartDate); err == nil && row.Policy.StartDate.Before(from) {
			return false
		}
	}
	if f.EndDate != "" && row.Policy != nil {
		if to, err := time.Parse("2006-01-02", f.EndDate); err == nil && row.Policy.EndDate.After(to) {
			return false
		}
	}
	return true
}

// AddEnrollment creates an enrollment and appends it to the policy slice
func (s *Store) AddEnrollment(ctx context.Context, caller services.Caller, input *services.EnrollmentInput) (*models.EnrollmentResponse, error) {
	s.mutate(func() {
		s.policy.Status = StatusLoading
		s.policy.Error = ""
	})

	var created *models.EnrollmentResponse
	err := guard(func() error {
		var err error
		created, err = s.deps.Policies.CreateEnrollment(ctx, caller, input)
		return err
	})
	if err != nil {
		s.mutate(func() {
			s.policy.Status = StatusError
			s.policy.Error = err.Error()
		})
		s.deps.Notifier.Notify("enrollment_error", "enrollment create failed: "+err.Error())
		return nil, err
	}

	s.mutate(func() {
		s.policy.Status = StatusSuccess
		s.policy.Enrollments = append(s.policy.Enrollments, created)
		s.policy.Total++
		s.refilterLocked()
	})
	return created, nil
}

// UpdateEnrollment changes an enrollment's status and patches the slice
func (s *Store) UpdateEnrollment(ctx context.Context, caller services.Caller, id uint, input *services.UpdateEnrollmentInput) (*models.EnrollmentResponse, error) {
	s.mutate(func() {
		s.policy.Status = StatusLoading
		s.policy.Error = ""
	})

	var updated *models.EnrollmentResponse
	err := guard(func() error {
		var err error
		updated, err = s.deps.Policies.UpdateEnrollment(ctx, caller, id, input)
		return err
	})
	if err != nil {
		s.mutate(func() {
			s.policy.Status = StatusError
			s.policy.Error = err.Error()
		})
		s.deps.Notifier.Notify("enrollment_error", "enrollment update failed: "+err.Error())
		return nil, err
	}

	s.mutate(func() {
		s.policy.Status = StatusSuccess
		for i, row := range s.policy.Enrollments {
			if row.ID == updated.ID {
				s.policy.Enrollments[i] = updated
				break
			}
		}
		s.refilterLocked()
	})
	return updated, nil
}

// DeleteEnrollment removes an enrollment and drops it from the slice
func (s *Store) DeleteEnrollment(ctx context.Context, caller services.Caller, id uint) error {
	s.mutate(func() {
		s.policy.Status = StatusLoading
		s.policy.Error = ""
	})

	err := guard(func() error {
		return s.deps.Policies.DeleteEnrollment(ctx, caller, id)
	})
	if err != nil {
		s.mutate(func() {
			s.policy.Status = StatusError
			s.policy.Error = err.Error()
		})
		s.deps.Notifier.Notify("enrollment_error", "enrollment delete failed: "+err.Error())
		return err
	}

	s.mutate(func() {
		s.policy.Status = StatusSuccess
		// Enrollments and Filtered can share a backing array after a
		// fetch, so the compaction must not happen in place.
		kept := make([]*models.EnrollmentResponse, 0, len(s.policy.Enrollments))
		for _, row := range s.policy.Enrollments {
			if row.ID != id {
				kept = append(kept, row)
			}
		}
		s.policy.Enrollments = kept
		s.refilterLocked()
		if s.policy.Total > 0 {
			s.policy.Total--
		}
	})
	return nil
}

// ============================================================
// Dashboard slice operations
// ============================================================

// FetchCountsByTypeStatus loads the (type, status) count grid rows
func (s *Store) FetchCountsByTypeStatus(ctx context.Context, caller services.Caller) ([]chartdata.TypeStatusCount, error) {
	s.mutate(func() {
		s.dashboard.Status = StatusLoading
		s.dashboard.Error = ""
	})

	var rows []chartdata.TypeStatusCount
	err := guard(func() error {
		var err error
		rows, err = s.deps.Reports.CountsByTypeStatus(ctx, caller)
		return err
	})
	if err != nil {
		s.mutate(func() {
			s.dashboard.Status = StatusError
			s.dashboard.Error = err.Error()
		})
		return nil, err
	}

	s.mutate(func() {
		s.dashboard.Status = StatusSuccess
		s.dashboard.CountsByTypeStatus = rows
	})
	return rows, nil
}

// FetchMonthlyCoverage loads the monthly coverage totals
func (s *Store) FetchMonthlyCoverage(ctx context.Context, caller services.Caller) ([]chartdata.MonthlyCoverage, error) {
	s.mutate(func() {
		s.dashboard.Status = StatusLoading
		s.dashboard.Error = ""
	})

	var rows []chartdata.MonthlyCoverage
	err := guard(func() error {
		var err error
		rows, err = s.deps.Reports.MonthlyCoverage(ctx, caller)
		return err
	})
	if err != nil {
		s.mutate(func() {
			s.dashboard.Status = StatusError
			s.dashboard.Error = err.Error()
		})
		return nil, err
	}

	s.mutate(func() {
		s.dashboard.Status = StatusSuccess
		s.dashboard.MonthlyCoverage = rows
	})
	return rows, nil
}

// FetchCoverageByType loads coverage totals per (type, month)
func (s *Store) FetchCoverageByType(ctx context.Context, caller services.Caller) ([]chartdata.TypeMonthlyCoverage, error) {
	s.mutate(func() {
		s.dashboard.Status = StatusLoading
		s.dashboard.Error = ""
	})

	var rows []chartdata.TypeMonthlyCoverage
	err := guard(func() error {
		var err error
		rows, err = s.deps.Reports.CoverageByType(ctx, caller)
		return err
	})
	if err != nil {
		s.mutate(func() {
			s.dashboard.Status = StatusError
			s.dashboard.Error = err.Error()
		})
		return nil, err
	}

	s.mutate(func() {
		s.dashboard.Status = StatusSuccess
		s.dashboard.CoverageByType = rows
	})
	return rows, nil
}

// FetchPremiumByType loads premium sums per type
func (s *Store) FetchPremiumByType(ctx context.Context, caller services.Caller) ([]chartdata.PremiumByType, error) {
	s.mutate(func() {
		s.dashboard.Status = StatusLoading
		s.dashboard.Error = ""
	})

	var rows []chartdata.PremiumByType
	err := guard(func() error {
		var err error
		rows, err = s.deps.Reports.PremiumByType(ctx, caller)
		return err
	})
	if err != nil {
		s.mutate(func() {
			s.dashboard.Status = StatusError
			s.dashboard.Error = err.Error()
		})
		return nil, err
	}

	s.mutate(func() {
		s.dashboard.Status = StatusSuccess
		s.dashboard.PremiumByType = rows
	})
	return rows, nil
}
