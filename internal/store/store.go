// Package store declares the persistence contracts for users and contacts.
// Implementations live in the postgres, mongo and memory subpackages.
package store

import (
	"context"
	"errors"

	"github.com/duccv/contact-addin/internal/model"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// SearchLimit caps the number of rows returned by ContactStore.Search.
const SearchLimit = 20

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByID(ctx context.Context, id int64) (model.User, error)
	// Create fails with ErrDuplicateEmail when the email is taken.
	Create(ctx context.Context, email, passwordHash string) (model.User, error)
	Delete(ctx context.Context, id int64) error
}

type ContactStore interface {
	Lookup(ctx context.Context, email string) (model.Contact, error)
	// Search matches q case-insensitively against name, department, job
	// title and company. Results are ranked by full name prefix, job title
	// prefix, department prefix, then name.
	Search(ctx context.Context, q string) ([]model.Contact, error)
	Paginate(ctx context.Context, page, size int) (model.ContactPage, error)
	Stats(ctx context.Context) (model.ContactStats, error)
}

// Pinger is implemented by stores backed by a remote database.
type Pinger interface {
	Ping(ctx context.Context) error
}
