package model

import "time"

// Principal is the store-confirmed identity of a caller.
type Principal struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u User) Principal() Principal {
	return Principal{ID: u.ID, Email: u.Email}
}
