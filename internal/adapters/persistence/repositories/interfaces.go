package repositories

import (
	"context"

	"insureadmin/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ListByRole(ctx context.Context, roleID uint) ([]*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RoleRepository defines role repository interface
type RoleRepository interface {
	List(ctx context.Context) ([]*models.Role, error)
	GetByID(ctx context.Context, id uint) (*models.Role, error)
	GetByName(ctx context.Context, name string) (*models.Role, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) error
}

// PolicyRepository defines the catalog policy data access interface
type PolicyRepository interface {
	Create(ctx context.Context, policy *models.Policy) error
	GetByID(ctx context.Context, id uint) (*models.Policy, error)
	List(ctx context.Context) ([]*models.Policy, error)
	Update(ctx context.Context, policy *models.Policy) error
	Delete(ctx context.Context, id uint) error
}

// AgentClientRepository defines the agent/client assignment interface
type AgentClientRepository interface {
	ClientIDs(ctx context.Context, agentID string) ([]string, error)
	Assign(ctx context.Context, agentID, clientID string) error
	Unassign(ctx context.Context, agentID, clientID string) error
}

// EnrollmentRepository defines the users_policies data access interface.
// Every list returns rows ordered ascending by id together with the exact
// total count for the filter, so callers can derive page counts.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.UserPolicy) error
	GetByID(ctx context.Context, id uint) (*models.UserPolicy, error)
	Update(ctx context.Context, enrollment *models.UserPolicy) error
	Delete(ctx context.Context, id uint) error
	ListAll(ctx context.Context, offset, limit int) ([]*models.UserPolicy, int64, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]*models.UserPolicy, int64, error)
	ListByUserIDs(ctx context.Context, userIDs []string, offset, limit int) ([]*models.UserPolicy, int64, error)
	LapseExpired(ctx context.Context) (int64, error)
}
