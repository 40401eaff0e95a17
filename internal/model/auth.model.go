package model

import "time"

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,strongpassword"`
}

type UserInfo struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// AuthResponse is returned by login and registration.
type AuthResponse struct {
	Message   string   `json:"message"`
	Token     string   `json:"token"`
	User      UserInfo `json:"user"`
	ExpiresIn string   `json:"expiresIn"`
}

type TokenInfo struct {
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type VerifyResponse struct {
	Valid     bool      `json:"valid"`
	User      UserInfo  `json:"user"`
	TokenInfo TokenInfo `json:"tokenInfo"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks,omitempty"`
}
