package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// Role represents roles table
type Role struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:30;not null" json:"name"`
}

func (Role) TableName() string {
	return "roles"
}

// User represents users table
// IDs are UUID strings issued at sign-up so they can double as auth subject ids.
type User struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	Name      string         `gorm:"size:100" json:"name"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Phone     string         `gorm:"size:20" json:"phone"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	RoleID    uint           `gorm:"not null;index" json:"role_id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Role *Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	RoleID    uint      `json:"role_id"`
	RoleName  string    `json:"role_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	resp := &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		RoleID:    u.RoleID,
		CreatedAt: u.CreatedAt,
	}
	if u.Role != nil {
		resp.RoleName = u.Role.Name
	}
	return resp
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    string     `gorm:"size:36;index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Policy Tables
// ============================================================

// Policy represents the policies catalog table.
// Catalog rows only change through explicit create/update operations.
type Policy struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	PolicyNumber string         `gorm:"size:50;uniqueIndex;not null" json:"policy_number"`
	Type         string         `gorm:"size:30;not null;index" json:"type"`
	Coverage     float64        `gorm:"type:decimal(15,2);not null" json:"coverage"`
	Premium      float64        `gorm:"type:decimal(15,2);not null" json:"premium"`
	StartDate    time.Time      `gorm:"type:date" json:"start_date"`
	EndDate      time.Time      `gorm:"type:date" json:"end_date"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Policy) TableName() string {
	return "policies"
}

// UserPolicy represents users_policies table (enrollment).
// The mutable join entity most CRUD operations target.
type UserPolicy struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    string         `gorm:"size:36;not null;index" json:"user_id"`
	PolicyID  uint           `gorm:"not null;index" json:"policy_id"`
	Status    string         `gorm:"size:20;not null;default:'active'" json:"status"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	User   *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Policy *Policy `gorm:"foreignKey:PolicyID" json:"policy,omitempty"`
}

func (UserPolicy) TableName() string {
	return "users_policies"
}

// EnrollmentResponse DTO carries the joined policy (and user, for admin views)
type EnrollmentResponse struct {
	ID       uint          `json:"id"`
	UserID   string        `json:"user_id"`
	PolicyID uint          `json:"policy_id"`
	Status   string        `json:"status"`
	Policy   *Policy       `json:"policy,omitempty"`
	User     *UserResponse `json:"user,omitempty"`
}

func (up *UserPolicy) ToResponse() *EnrollmentResponse {
	resp := &EnrollmentResponse{
		ID:       up.ID,
		UserID:   up.UserID,
		PolicyID: up.PolicyID,
		Status:   up.Status,
		Policy:   up.Policy,
	}
	if up.User != nil {
		resp.User = up.User.ToResponse()
	}
	return resp
}

// AgentClient represents agent_clients table: which users an agent may manage
type AgentClient struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	AgentID  string `gorm:"size:36;not null;index" json:"agent_id"`
	ClientID string `gorm:"size:36;not null;index" json:"client_id"`

	Agent  *User `gorm:"foreignKey:AgentID" json:"-"`
	Client *User `gorm:"foreignKey:ClientID" json:"-"`
}

func (AgentClient) TableName() string {
	return "agent_clients"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Role{},
		&User{},
		&RefreshToken{},
		&Policy{},
		&UserPolicy{},
		&AgentClient{},
	)
}
