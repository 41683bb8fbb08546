package repositories

import (
	"context"

	"insureadmin/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// policyRepository handles catalog policy data access
type policyRepository struct {
	db *gorm.DB
}

// NewPolicyRepository creates a new policy repository
func NewPolicyRepository(db *gorm.DB) PolicyRepository {
	return &policyRepository{db: db}
}

// Create creates a new catalog policy
func (r *policyRepository) Create(ctx context.Context, policy *models.Policy) error {
	return r.db.WithContext(ctx).Create(policy).Error
}

// GetByID gets a catalog policy by ID
func (r *policyRepository) GetByID(ctx context.Context, id uint) (*models.Policy, error) {
	var policy models.Policy
	err := r.db.WithContext(ctx).First(&policy, id).Error
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

// List lists the full catalog ordered ascending by id
func (r *policyRepository) List(ctx context.Context) ([]*models.Policy, error) {
	var policies []*models.Policy
	err := r.db.WithContext(ctx).Order("id ASC").Find(&policies).Error
	return policies, err
}

// Update updates a catalog policy
func (r *policyRepository) Update(ctx context.Context, policy *models.Policy) error {
	return r.db.WithContext(ctx).Save(policy).Error
}

// Delete soft deletes a catalog policy
func (r *policyRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Policy{}, id).Error
}
