package config

import (
	"log"
	"time"

	"insureadmin/internal/adapters/persistence/models"
	"insureadmin/internal/core/domain"
	"insureadmin/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders. Each seeder is idempotent.
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedRoles(); err != nil {
		return err
	}
	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}
	if err := s.seedPolicyCatalog(); err != nil {
		log.Printf("⚠️ Catalog seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedRoles inserts the three fixed roles
func (s *Seeder) seedRoles() error {
	names := []string{
		domain.RoleAdministrator.String(),
		domain.RoleAgent.String(),
		domain.RolePolicyHolder.String(),
	}

	for _, name := range names {
		var count int64
		s.db.Model(&models.Role{}).Where("name = ?", name).Count(&count)
		if count > 0 {
			continue
		}
		if err := s.db.Create(&models.Role{Name: name}).Error; err != nil {
			return err
		}
		log.Printf("✅ Role seeded: %s", name)
	}
	return nil
}

// seedAdminUser seeds a default administrator
// This is for development/testing only
func (s *Seeder) seedAdminUser() error {
	var role models.Role
	if err := s.db.Where("name = ?", domain.RoleAdministrator.String()).First(&role).Error; err != nil {
		return err
	}

	var count int64
	s.db.Model(&models.User{}).Where("role_id = ?", role.ID).Count(&count)
	if count > 0 {
		return nil
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		ID:       uuid.New().String(),
		Name:     "Administrator",
		Email:    "admin@insureadmin.local",
		Password: hashedPassword,
		RoleID:   role.ID,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Email)
	return nil
}

// seedPolicyCatalog seeds a starter catalog in dev databases
func (s *Seeder) seedPolicyCatalog() error {
	var count int64
	s.db.Model(&models.Policy{}).Count(&count)
	if count > 0 {
		return nil
	}

	now := time.Now()
	catalog := []models.Policy{
		{Name: "Term Life 20", PolicyNumber: "LIFE-0001", Type: "life", Coverage: 250000, Premium: 45.50, StartDate: now, EndDate: now.AddDate(20, 0, 0)},
		{Name: "Family Health Plus", PolicyNumber: "HLTH-0001", Type: "health", Coverage: 100000, Premium: 120.00, StartDate: now, EndDate: now.AddDate(1, 0, 0)},
		{Name: "Auto Comprehensive", PolicyNumber: "AUTO-0001", Type: "auto", Coverage: 50000, Premium: 80.25, StartDate: now, EndDate: now.AddDate(1, 0, 0)},
	}

	for i := range catalog {
		if err := s.db.Create(&catalog[i]).Error; err != nil {
			return err
		}
	}

	log.Printf("✅ Policy catalog seeded: %d products", len(catalog))
	return nil
}
