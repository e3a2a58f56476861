package auth

import "strings"

// Roles recognised by the API. Role names arrive on the wire as plain
// headers and are normalised to lowercase before comparison.
const (
	RoleStudent   = "student"
	RoleProfessor = "professor"
)

// Identity is the request-scoped caller identity. It is extracted once by
// middleware and passed explicitly into every service call; no ambient
// request state exists below the handler layer.
type Identity struct {
	UserID string
	Role   string
}

// Valid reports whether the identity carries both a user id and a known role.
func (i Identity) Valid() bool {
	return i.UserID != "" && (i.Role == RoleStudent || i.Role == RoleProfessor)
}

// IsStudent reports whether the caller acts as a student.
func (i Identity) IsStudent() bool {
	return i.Role == RoleStudent
}

// IsProfessor reports whether the caller acts as a professor.
func (i Identity) IsProfessor() bool {
	return i.Role == RoleProfessor
}

// Normalize trims whitespace and lowercases the role.
func Normalize(userID, role string) Identity {
	return Identity{
		UserID: strings.TrimSpace(userID),
		Role:   strings.ToLower(strings.TrimSpace(role)),
	}
}
