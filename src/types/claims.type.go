package types

import "github.com/golang-jwt/jwt/v4"

// Claims carries the identity-provider token payload. The core only trusts
// the subject as an opaque user id; everything else is advisory.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}
