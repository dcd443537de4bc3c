package permission_test

import (
	"testing"

	"github.com/soonland/nexus-gaming/internal/permission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleRanks(t *testing.T) {
	for i, r := range permission.Roles() {
		assert.Equal(t, i+1, r.Rank(), r)
		assert.True(t, r.Valid())
	}
	assert.Equal(t, 0, permission.Role("").Rank())
	assert.Equal(t, 0, permission.Role("GUEST").Rank())
	assert.False(t, permission.Role("user").Valid())
}

func TestParseRole(t *testing.T) {
	r, err := permission.ParseRole("  senior_editor ")
	require.NoError(t, err)
	assert.Equal(t, permission.RoleSeniorEditor, r)

	_, err = permission.ParseRole("root")
	assert.Error(t, err)
	_, err = permission.ParseRole("")
	assert.Error(t, err)
}

func TestHasSufficientRoleMatchesRanks(t *testing.T) {
	for _, r1 := range permission.Roles() {
		for _, r2 := range permission.Roles() {
			assert.Equal(t, r1.Rank() >= r2.Rank(), permission.HasSufficientRole(r1, r2), "%s >= %s", r1, r2)
		}
	}
}

func TestCompareRoleOperatorsAreConsistent(t *testing.T) {
	for _, r1 := range permission.Roles() {
		for _, r2 := range permission.Roles() {
			gt := permission.CompareRole(r1, r2, permission.OpGreater)
			lt := permission.CompareRole(r1, r2, permission.OpLess)
			eq := permission.CompareRole(r1, r2, permission.OpEqual)
			ge := permission.CompareRole(r1, r2, permission.OpGreaterOrEqual)
			le := permission.CompareRole(r1, r2, permission.OpLessOrEqual)

			assert.Equal(t, gt || eq, ge, "%s %s", r1, r2)
			assert.Equal(t, lt || eq, le, "%s %s", r1, r2)
			assert.Equal(t, eq, r1 == r2, "%s %s", r1, r2)
			if gt {
				assert.True(t, ge)
				assert.False(t, lt)
				assert.False(t, le)
			}
			assert.Equal(t, gt, permission.CompareRole(r2, r1, permission.OpLess))
			assert.True(t, gt || lt || eq)
		}
	}
}

func TestCompareRoleFailsClosed(t *testing.T) {
	ops := []permission.Operator{
		permission.OpGreater, permission.OpLess, permission.OpEqual,
		permission.OpGreaterOrEqual, permission.OpLessOrEqual,
	}
	for _, op := range ops {
		assert.False(t, permission.CompareRole("", permission.RoleAdmin, op), op)
		assert.False(t, permission.CompareRole(permission.RoleAdmin, "", op), op)
		assert.False(t, permission.CompareRole("", "", op), op)
		assert.False(t, permission.CompareRole("OWNER", permission.RoleUser, op), op)
	}

	assert.False(t, permission.HasSufficientRole("", permission.RoleAdmin))
	assert.False(t, permission.HasSufficientRole(permission.RoleAdmin, ""))
	assert.False(t, permission.CompareRole(permission.RoleAdmin, permission.RoleUser, "!="))
}
