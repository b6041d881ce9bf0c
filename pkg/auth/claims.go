package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role is the coarse access level carried by the portal token. Policy lives
// in the membership portal; the API only distinguishes members from admins.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	return r == RoleMember || r == RoleAdmin
}

// AccessTokenClaims are the claims the membership portal signs into the
// bearer token.
type AccessTokenClaims struct {
	MemberID uuid.UUID `json:"member_id"`
	Role     Role      `json:"role"`
	jwt.RegisteredClaims
}

// AccessTokenPayload is the input for minting a token, used by tests and
// local tooling.
type AccessTokenPayload struct {
	MemberID uuid.UUID
	Role     Role
}
