package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"insureadmin/internal/adapters/persistence/models"
	"insureadmin/internal/adapters/persistence/repositories"
	"insureadmin/internal/core/domain"
	"insureadmin/internal/pkg/pagination"

	"gorm.io/gorm"
)

// Policy errors
var (
	ErrPolicyNotFound     = errors.New("policy not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrInvalidStatus      = errors.New("invalid enrollment status")
	ErrForbidden          = errors.New("operation not allowed for this role")
)

// PolicyService handles the policy catalog and enrollments.
// Every read is scoped by the caller's role before it reaches the database.
type PolicyService struct {
	policyRepo      repositories.PolicyRepository
	enrollmentRepo  repositories.EnrollmentRepository
	agentClientRepo repositories.AgentClientRepository
	notifier        *NotificationService
}

// NewPolicyService creates a new policy service
func NewPolicyService(
	policyRepo repositories.PolicyRepository,
	enrollmentRepo repositories.EnrollmentRepository,
	agentClientRepo repositories.AgentClientRepository,
	notifier *NotificationService,
) *PolicyService {
	return &PolicyService{
		policyRepo:      policyRepo,
		enrollmentRepo:  enrollmentRepo,
		agentClientRepo: agentClientRepo,
		notifier:        notifier,
	}
}

// Caller identifies who is asking. Role is already parsed, so the scoping
// switch below can be exhaustive over the three known roles.
type Caller struct {
	UserID string
	Role   domain.Role
}

// ============================================================
// Catalog
// ============================================================

// PolicyInput represents catalog policy create/update input
type PolicyInput struct {
	Name         string  `json:"name"`
	PolicyNumber string  `json:"policy_number"`
	Type         string  `json:"type"`
	Coverage     float64 `json:"coverage"`
	Premium      float64 `json:"premium"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
}

// ListCatalog lists all catalog policies; the catalog is readable by every role
func (s *PolicyService) ListCatalog(ctx context.Context) ([]*models.Policy, error) {
	return s.policyRepo.List(ctx)
}

// GetCatalogPolicy gets a single catalog policy
func (s *PolicyService) GetCatalogPolicy(ctx context.Context, id uint) (*models.Policy, error) {
	policy, err := s.policyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPolicyNotFound
		}
		return nil, err
	}
	return policy, nil
}

// CreateCatalogPolicy creates a catalog entry (admin only, enforced in routing)
func (s *PolicyService) CreateCatalogPolicy(ctx context.Context, input *PolicyInput) (*models.Policy, error) {
	policy, err := s.catalogFromInput(input)
	if err != nil {
		return nil, err
	}

	if err := s.policyRepo.Create(ctx, policy); err != nil {
		return nil, err
	}

	log.Printf("✅ Catalog policy created: %s", policy.PolicyNumber)
	return policy, nil
}

// UpdateCatalogPolicy updates a catalog entry
func (s *PolicyService) UpdateCatalogPolicy(ctx context.Context, id uint, input *PolicyInput) (*models.Policy, error) {
	existing, err := s.GetCatalogPolicy(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.catalogFromInput(input)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt

	if err := s.policyRepo.Update(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteCatalogPolicy soft deletes a catalog entry
func (s *PolicyService) DeleteCatalogPolicy(ctx context.Context, id uint) error {
	if _, err := s.GetCatalogPolicy(ctx, id); err != nil {
		return err
	}
	return s.policyRepo.Delete(ctx, id)
}

func (s *PolicyService) catalogFromInput(input *PolicyInput) (*models.Policy, error) {
	startDate, err := time.Parse("2006-01-02", input.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start_date: %w", err)
	}
	endDate, err := time.Parse("2006-01-02", input.EndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end_date: %w", err)
	}

	return &models.Policy{
		Name:         input.Name,
		PolicyNumber: input.PolicyNumber,
		Type:         input.Type,
		Coverage:     input.Coverage,
		Premium:      input.Premium,
		StartDate:    startDate,
		EndDate:      endDate,
	}, nil
}

// ============================================================
// Enrollments (role-scoped)
// ============================================================

// EnrollmentInput represents enrollment create input
type EnrollmentInput struct {
	UserID   string `json:"user_id"`
	PolicyID uint   `json:"policy_id"`
	Status   string `json:"status"`
}

// UpdateEnrollmentInput represents enrollment status update input
type UpdateEnrollmentInput struct {
	Status string `json:"status"`
}

// ListEnrollments routes the list to the right scope for the caller:
// administrators see everything, agents see their assigned clients' rows,
// policy holders see their own. The switch is exhaustive; an unknown role
// never reaches the database.
func (s *PolicyService) ListEnrollments(ctx context.Context, caller Caller, params *pagination.Params) (*pagination.Response, error) {
	var (
		rows  []*models.UserPolicy
		total int64
		err   error
	)

	switch caller.Role {
	case domain.RoleAdministrator:
		rows, total, err = s.enrollmentRepo.ListAll(ctx, params.Offset, params.Limit)

	case domain.RoleAgent:
		var clientIDs []string
		clientIDs, err = s.agentClientRepo.ClientIDs(ctx, caller.UserID)
		if err != nil {
			return nil, err
		}
		// An agent with no clients gets an empty page without touching
		// users_policies at all.
		if len(clientIDs) == 0 {
			return pagination.NewResponse([]*models.EnrollmentResponse{}, params, 0), nil
		}
		rows, total, err = s.enrollmentRepo.ListByUserIDs(ctx, clientIDs, params.Offset, params.Limit)

	case domain.RolePolicyHolder:
		rows, total, err = s.enrollmentRepo.ListByUser(ctx, caller.UserID, params.Offset, params.Limit)

	default:
		return nil, ErrForbidden
	}

	if err != nil {
		return nil, err
	}

	responses := make([]*models.EnrollmentResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, row.ToResponse())
	}
	return pagination.NewResponse(responses, params, total), nil
}

// GetEnrollment returns a single enrollment if the caller's scope covers it
func (s *PolicyService) GetEnrollment(ctx context.Context, caller Caller, id uint) (*models.EnrollmentResponse, error) {
	row, err := s.enrollmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}

	if err := s.authorize(ctx, caller, row.UserID); err != nil {
		return nil, err
	}
	return row.ToResponse(), nil
}

// CreateEnrollment enrolls a user in a catalog policy. Policy holders may
// only enroll themselves; agents only their assigned clients.
func (s *PolicyService) CreateEnrollment(ctx context.Context, caller Caller, input *EnrollmentInput) (*models.EnrollmentResponse, error) {
	// 1. Scope check before any write
	if err := s.authorize(ctx, caller, input.UserID); err != nil {
		return nil, err
	}

	// 2. Policy must exist in the catalog
	if _, err := s.GetCatalogPolicy(ctx, input.PolicyID); err != nil {
		return nil, err
	}

	// 3. Default and validate status
	status := input.Status
	if status == "" {
		status = domain.EnrollmentActive
	}
	if !domain.IsEnrollmentStatus(status) {
		return nil, ErrInvalidStatus
	}

	// 4. Create
	enrollment := &models.UserPolicy{
		UserID:   input.UserID,
		PolicyID: input.PolicyID,
		Status:   status,
	}
	if err := s.enrollmentRepo.Create(ctx, enrollment); err != nil {
		return nil, err
	}

	// 5. Reload with relations for the response
	created, err := s.enrollmentRepo.GetByID(ctx, enrollment.ID)
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyEnrollmentChange("created", created.UserID, created.ID)
	return created.ToResponse(), nil
}

// UpdateEnrollment changes an enrollment's status
func (s *PolicyService) UpdateEnrollment(ctx context.Context, caller Caller, id uint, input *UpdateEnrollmentInput) (*models.EnrollmentResponse, error) {
	row, err := s.enrollmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}

	if err := s.authorize(ctx, caller, row.UserID); err != nil {
		return nil, err
	}

	if !domain.IsEnrollmentStatus(input.Status) {
		return nil, ErrInvalidStatus
	}

	row.Status = input.Status
	if err := s.enrollmentRepo.Update(ctx, row); err != nil {
		return nil, err
	}

	s.notifier.NotifyEnrollmentChange("updated", row.UserID, row.ID)
	return row.ToResponse(), nil
}

// DeleteEnrollment removes an enrollment
func (s *PolicyService) DeleteEnrollment(ctx context.Context, caller Caller, id uint) error {
	row, err := s.enrollmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEnrollmentNotFound
		}
		return err
	}

	if err := s.authorize(ctx, caller, row.UserID); err != nil {
		return err
	}

	if err := s.enrollmentRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.notifier.NotifyEnrollmentChange("deleted", row.UserID, row.ID)
	return nil
}

// authorize checks whether the caller's scope covers the enrollment owner
func (s *PolicyService) authorize(ctx context.Context, caller Caller, ownerID string) error {
	switch caller.Role {
	case domain.RoleAdministrator:
		return nil

	case domain.RoleAgent:
		clientIDs, err := s.agentClientRepo.ClientIDs(ctx, caller.UserID)
		if err != nil {
			return err
		}
		for _, id := range clientIDs {
			if id == ownerID {
				return nil
			}
		}
		return ErrForbidden

	case domain.RolePolicyHolder:
		if caller.UserID == ownerID {
			return nil
		}
		return ErrForbidden

	default:
		return ErrForbidden
	}
}
