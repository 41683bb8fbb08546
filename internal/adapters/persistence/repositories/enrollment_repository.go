package repositories

import (
	"context"
	"time"

	"insureadmin/internal/adapters/persistence/models"
	"insureadmin/internal/core/domain"

	"gorm.io/gorm"
)

// enrollmentRepository implements EnrollmentRepository interface
type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

// Create creates a new enrollment
func (r *enrollmentRepository) Create(ctx context.Context, enrollment *models.UserPolicy) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

// GetByID gets an enrollment by ID with its joined policy
func (r *enrollmentRepository) GetByID(ctx context.Context, id uint) (*models.UserPolicy, error) {
	var enrollment models.UserPolicy
	err := r.db.WithContext(ctx).Preload("Policy").First(&enrollment, id).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Update updates an enrollment
func (r *enrollmentRepository) Update(ctx context.Context, enrollment *models.UserPolicy) error {
	return r.db.WithContext(ctx).Save(enrollment).Error
}

// Delete soft deletes an enrollment
func (r *enrollmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.UserPolicy{}, id).Error
}

// ListAll lists all enrollments joined with policy and user (admin view)
func (r *enrollmentRepository) ListAll(ctx context.Context, offset, limit int) ([]*models.UserPolicy, int64, error) {
	var enrollments []*models.UserPolicy
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.UserPolicy{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("Policy").
		Preload("User").
		Preload("User.Role").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&enrollments).Error
	if err != nil {
		return nil, 0, err
	}

	return enrollments, total, nil
}

// ListByUser lists enrollments belonging to a single user
func (r *enrollmentRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*models.UserPolicy, int64, error) {
	var enrollments []*models.UserPolicy
	var total int64

	if err := r.db.WithContext(ctx).
		Model(&models.UserPolicy{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("Policy").
		Where("user_id = ?", userID).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&enrollments).Error
	if err != nil {
		return nil, 0, err
	}

	return enrollments, total, nil
}

// ListByUserIDs lists enrollments whose user_id is in userIDs (agent view).
// Callers guarantee userIDs is non-empty; the empty-client case is
// short-circuited before any query is issued.
func (r *enrollmentRepository) ListByUserIDs(ctx context.Context, userIDs []string, offset, limit int) ([]*models.UserPolicy, int64, error) {
	var enrollments []*models.UserPolicy
	var total int64

	if err := r.db.WithContext(ctx).
		Model(&models.UserPolicy{}).
		Where("user_id IN ?", userIDs).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("Policy").
		Where("user_id IN ?", userIDs).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&enrollments).Error
	if err != nil {
		return nil, 0, err
	}

	return enrollments, total, nil
}

// LapseExpired marks active enrollments whose catalog policy has ended as
// lapsed. Used by the nightly cron job.
func (r *enrollmentRepository) LapseExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.UserPolicy{}).
		Where("status = ?", domain.EnrollmentActive).
		Where("policy_id IN (?)", r.db.Model(&models.Policy{}).Select("id").Where("end_date < ?", time.Now())).
		Update("status", domain.EnrollmentLapsed)
	return res.RowsAffected, res.Error
}
