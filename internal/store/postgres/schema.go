package postgres

import (
	"context"
	"fmt"

	"github.com/duccv/contact-addin/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS contacts (
	id           BIGSERIAL PRIMARY KEY,
	email        TEXT NOT NULL UNIQUE,
	full_name    TEXT NOT NULL,
	department   TEXT,
	phone_number TEXT,
	job_title    TEXT,
	company      TEXT,
	location     TEXT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_contacts_full_name ON contacts (full_name);
CREATE INDEX IF NOT EXISTS idx_contacts_department ON contacts (department);
`

// EnsureSchema creates the users and contacts tables when absent.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SeedContacts inserts contacts when the table is empty. Existing emails
// are left untouched.
func SeedContacts(ctx context.Context, pool *pgxpool.Pool, contacts []model.Contact) error {
	var n int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM contacts`).Scan(&n); err != nil {
		return fmt.Errorf("count contacts: %w", err)
	}
	if n > 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, c := range contacts {
		batch.Queue(`
			INSERT INTO contacts (email, full_name, department, phone_number, job_title, company, location)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (email) DO NOTHING
		`, c.Email, c.FullName, nullable(c.Department), nullable(c.PhoneNumber),
			nullable(c.JobTitle), nullable(c.Company), nullable(c.Location))
	}
	if err := pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("seed contacts: %w", err)
	}
	zap.L().Info("Seeded demo contacts", zap.Int("count", len(contacts)))
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
