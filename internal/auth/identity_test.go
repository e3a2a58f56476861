package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	identity := Normalize("  stud-1 ", " STUDENT ")
	require.Equal(t, "stud-1", identity.UserID)
	require.Equal(t, RoleStudent, identity.Role)
	require.True(t, identity.Valid())
	require.True(t, identity.IsStudent())
	require.False(t, identity.IsProfessor())
}

func TestValidRejectsUnknownRole(t *testing.T) {
	require.False(t, Identity{UserID: "u1", Role: "admin"}.Valid())
	require.False(t, Identity{Role: RoleProfessor}.Valid())
	require.True(t, Identity{UserID: "p1", Role: RoleProfessor}.Valid())
}
