package model

import "github.com/golang-jwt/jwt/v5"

// TokenClaims represents the JWT token payload structure
type TokenClaims struct {
	UserID int64  `json:"userId" validate:"required,gt=0"`
	Email  string `json:"email"  validate:"required,email"`
	jwt.RegisteredClaims
}

// Principal returns the identity asserted by the claims. It is not trusted
// until the user store confirms it.
func (c TokenClaims) Principal() Principal {
	return Principal{ID: c.UserID, Email: c.Email}
}
