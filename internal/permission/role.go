// Package permission decides who may do what to an article and which editorial
// status changes are legal. Every function is a pure computation over its inputs.
package permission

import (
	"fmt"
	"strings"
)

// Role is the editorial authorization level stored on an account.
// The zero value means "no role" and never satisfies a check.
type Role string

const (
	RoleUser         Role = "USER"
	RoleModerator    Role = "MODERATOR"
	RoleEditor       Role = "EDITOR"
	RoleSeniorEditor Role = "SENIOR_EDITOR"
	RoleAdmin        Role = "ADMIN"
	RoleSysadmin     Role = "SYSADMIN"
)

var roleRanks = map[Role]int{
	RoleUser:         1,
	RoleModerator:    2,
	RoleEditor:       3,
	RoleSeniorEditor: 4,
	RoleAdmin:        5,
	RoleSysadmin:     6,
}

// Roles lists every role from lowest to highest.
func Roles() []Role {
	return []Role{RoleUser, RoleModerator, RoleEditor, RoleSeniorEditor, RoleAdmin, RoleSysadmin}
}

// Rank returns the position of the role in the hierarchy, 0 when unknown.
func (r Role) Rank() int {
	return roleRanks[r]
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r.Rank() > 0
}

// ParseRole accepts any letter case and surrounding spaces.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Operator selects how two roles are compared.
type Operator string

const (
	OpGreater        Operator = ">"
	OpLess           Operator = "<"
	OpEqual          Operator = "="
	OpGreaterOrEqual Operator = ">="
	OpLessOrEqual    Operator = "<="
)

// CompareRole compares the ranks of userRole and requiredRole with op.
// Missing or unknown roles, and unknown operators, always yield false.
func CompareRole(userRole, requiredRole Role, op Operator) bool {
	user, required := userRole.Rank(), requiredRole.Rank()
	if user == 0 || required == 0 {
		return false
	}

	switch op {
	case OpGreater:
		return user > required
	case OpLess:
		return user < required
	case OpEqual:
		return user == required
	case OpGreaterOrEqual:
		return user >= required
	case OpLessOrEqual:
		return user <= required
	default:
		return false
	}
}

// HasSufficientRole reports whether userRole is at least requiredRole.
func HasSufficientRole(userRole, requiredRole Role) bool {
	return CompareRole(userRole, requiredRole, OpGreaterOrEqual)
}

// Principal is the authenticated actor of a request.
type Principal struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}
