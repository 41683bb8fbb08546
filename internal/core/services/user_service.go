package services

import (
	"context"
	"errors"
	"log"

	"insureadmin/internal/adapters/persistence/models"
	"insureadmin/internal/adapters/persistence/repositories"
	"insureadmin/internal/core/domain"
	"insureadmin/internal/pkg/pagination"
	"insureadmin/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User management errors
var (
	ErrRoleNotFound   = errors.New("role not found")
	ErrAgentRequired  = errors.New("user is not an agent")
	ErrClientRequired = errors.New("user is not a policy holder")
)

// UserService handles user administration business logic
type UserService struct {
	userRepo        repositories.UserRepository
	roleRepo        repositories.RoleRepository
	agentClientRepo repositories.AgentClientRepository
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repositories.UserRepository,
	roleRepo repositories.RoleRepository,
	agentClientRepo repositories.AgentClientRepository,
) *UserService {
	return &UserService{
		userRepo:        userRepo,
		roleRepo:        roleRepo,
		agentClientRepo: agentClientRepo,
	}
}

// CreateUserInput represents admin user creation input
type CreateUserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UpdateUserInput represents user update input. Nil fields are left unchanged.
type UpdateUserInput struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Role  *string `json:"role"`
}

// ListUsers lists users with pagination, ordered ascending by id
func (s *UserService) ListUsers(ctx context.Context, params *pagination.Params) (*pagination.Response, error) {
	users, total, err := s.userRepo.List(ctx, params.Offset, params.Limit)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, u.ToResponse())
	}

	return pagination.NewResponse(responses, params, total), nil
}

// GetUser gets a single user by ID
func (s *UserService) GetUser(ctx context.Context, id string) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user.ToResponse(), nil
}

// CreateUser creates a user with an explicit role. Admin-only operation;
// self-registration goes through AuthService.SignUp instead.
func (s *UserService) CreateUser(ctx context.Context, input *CreateUserInput) (*models.UserResponse, error) {
	// 1. Role must be one of the three known roles
	role, err := domain.ParseRole(input.Role)
	if err != nil {
		return nil, ErrRoleNotFound
	}

	// 2. Check email uniqueness
	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	// 3. Validate and hash password
	if !password.Validate(input.Password) {
		return nil, ErrPasswordTooShort
	}
	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	// 4. Resolve the role row
	roleRow, err := s.roleRepo.GetByName(ctx, role.String())
	if err != nil {
		return nil, ErrRoleNotFound
	}

	// 5. Create user
	user := &models.User{
		ID:       uuid.New().String(),
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Password: hashedPassword,
		RoleID:   roleRow.ID,
		Role:     roleRow,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ User created by admin: %s (%s)", user.Email, role)
	return user.ToResponse(), nil
}

// UpdateUser updates profile fields and optionally the role
func (s *UserService) UpdateUser(ctx context.Context, id string, input *UpdateUserInput) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.Role != nil {
		role, err := domain.ParseRole(*input.Role)
		if err != nil {
			return nil, ErrRoleNotFound
		}
		roleRow, err := s.roleRepo.GetByName(ctx, role.String())
		if err != nil {
			return nil, ErrRoleNotFound
		}
		user.RoleID = roleRow.ID
		user.Role = roleRow
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user.ToResponse(), nil
}

// DeleteUser soft deletes a user
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	log.Printf("🗑️ User deleted: %s", id)
	return nil
}

// ListRoles lists all assignable roles
func (s *UserService) ListRoles(ctx context.Context) ([]*models.Role, error) {
	return s.roleRepo.List(ctx)
}

// UsersByRole lists every user holding the named role. Backs the admin
// picker when choosing an agent or client for assignment.
func (s *UserService) UsersByRole(ctx context.Context, roleName string) ([]*models.UserResponse, error) {
	role, err := domain.ParseRole(roleName)
	if err != nil {
		return nil, ErrRoleNotFound
	}

	roleRow, err := s.roleRepo.GetByName(ctx, role.String())
	if err != nil {
		return nil, ErrRoleNotFound
	}

	users, err := s.userRepo.ListByRole(ctx, roleRow.ID)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, u.ToResponse())
	}
	return responses, nil
}

// AssignClient puts a policy holder under an agent's book of business
func (s *UserService) AssignClient(ctx context.Context, agentID, clientID string) error {
	if err := s.requireRole(ctx, agentID, domain.RoleAgent, ErrAgentRequired); err != nil {
		return err
	}
	if err := s.requireRole(ctx, clientID, domain.RolePolicyHolder, ErrClientRequired); err != nil {
		return err
	}

	if err := s.agentClientRepo.Assign(ctx, agentID, clientID); err != nil {
		return err
	}

	log.Printf("✅ Client %s assigned to agent %s", clientID, agentID)
	return nil
}

// UnassignClient removes a client from an agent's book of business
func (s *UserService) UnassignClient(ctx context.Context, agentID, clientID string) error {
	return s.agentClientRepo.Unassign(ctx, agentID, clientID)
}

// ClientsOfAgent lists the users an agent is allowed to manage.
// Administrators may read any agent's book; an agent only their own.
func (s *UserService) ClientsOfAgent(ctx context.Context, caller Caller, agentID string) ([]*models.UserResponse, error) {
	switch caller.Role {
	case domain.RoleAdministrator:
	case domain.RoleAgent:
		if caller.UserID != agentID {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrForbidden
	}

	clientIDs, err := s.agentClientRepo.ClientIDs(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if len(clientIDs) == 0 {
		return []*models.UserResponse{}, nil
	}

	users, err := s.userRepo.GetByIDs(ctx, clientIDs)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, u.ToResponse())
	}
	return responses, nil
}

// requireRole loads a user and checks their role name
func (s *UserService) requireRole(ctx context.Context, userID string, want domain.Role, mismatchErr error) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.Role == nil || user.Role.Name != want.String() {
		return mismatchErr
	}
	return nil
}
