package domain

import "fmt"

// Role is the closed set of roles in the system.
// String comparisons on raw role names are confined to ParseRole; everything
// else switches exhaustively on this type.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleAgent         Role = "agent"
	RolePolicyHolder  Role = "policy_holder"
)

// ParseRole maps a stored role name onto the closed set.
// Anything outside the set is rejected, never defaulted.
func ParseRole(name string) (Role, error) {
	switch Role(name) {
	case RoleAdministrator, RoleAgent, RolePolicyHolder:
		return Role(name), nil
	}
	return "", fmt.Errorf("unknown role %q", name)
}

func (r Role) String() string {
	return string(r)
}

// Enrollment statuses
const (
	EnrollmentActive    = "active"
	EnrollmentLapsed    = "lapsed"
	EnrollmentCancelled = "cancelled"
)

// IsEnrollmentStatus reports whether s is a valid enrollment status.
func IsEnrollmentStatus(s string) bool {
	return s == EnrollmentActive || s == EnrollmentLapsed || s == EnrollmentCancelled
}
