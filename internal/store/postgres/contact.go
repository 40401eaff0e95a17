package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/duccv/contact-addin/internal/model"
	"github.com/duccv/contact-addin/internal/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

const contactColumns = `
	email, full_name,
	COALESCE(department, ''), COALESCE(phone_number, ''), COALESCE(job_title, ''),
	COALESCE(company, ''), COALESCE(location, ''),
	created_at, updated_at`

// ContactStore reads contacts from the read pool.
type ContactStore struct {
	pool *pgxpool.Pool
}

func NewContactStore(pool *pgxpool.Pool) *ContactStore {
	return &ContactStore{pool: pool}
}

func scanContact(row pgx.Row) (model.Contact, error) {
	var c model.Contact
	err := row.Scan(&c.Email, &c.FullName, &c.Department, &c.PhoneNumber, &c.JobTitle,
		&c.Company, &c.Location, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *ContactStore) Lookup(ctx context.Context, email string) (model.Contact, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE lower(email) = lower($1)`, email)
	c, err := scanContact(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Contact{}, store.ErrNotFound
		}
		return model.Contact{}, fmt.Errorf("lookup contact: %w", err)
	}
	return c, nil
}

func (s *ContactStore) Search(ctx context.Context, q string) ([]model.Contact, error) {
	escaped := escapeLike(q)
	rows, err := s.pool.Query(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE full_name ILIKE $1 OR department ILIKE $1 OR job_title ILIKE $1 OR company ILIKE $1
		ORDER BY
			CASE
				WHEN full_name ILIKE $2 THEN 1
				WHEN job_title ILIKE $2 THEN 2
				WHEN department ILIKE $2 THEN 3
				ELSE 4
			END,
			full_name
		LIMIT $3
	`, "%"+escaped+"%", escaped+"%", store.SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search contacts: %w", err)
	}
	return collect(rows)
}

func (s *ContactStore) Paginate(ctx context.Context, page, size int) (model.ContactPage, error) {
	res := model.ContactPage{Page: page, Size: size}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.pool.QueryRow(gctx, `SELECT COUNT(*) FROM contacts`).Scan(&res.Total)
	})
	g.Go(func() error {
		rows, err := s.pool.Query(gctx, `
			SELECT `+contactColumns+`
			FROM contacts
			ORDER BY full_name
			LIMIT $1 OFFSET $2
		`, size, (page-1)*size)
		if err != nil {
			return err
		}
		res.Contacts, err = collect(rows)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.ContactPage{}, fmt.Errorf("paginate contacts: %w", err)
	}
	return res, nil
}

func (s *ContactStore) Stats(ctx context.Context) (model.ContactStats, error) {
	var stats model.ContactStats

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.pool.QueryRow(gctx, `
			SELECT
				COUNT(*),
				COUNT(DISTINCT NULLIF(department, '')),
				COUNT(DISTINCT NULLIF(company, '')),
				COUNT(NULLIF(phone_number, ''))
			FROM contacts
		`).Scan(&stats.TotalContacts, &stats.DepartmentCount, &stats.CompanyCount, &stats.ContactsWithPhone)
	})
	g.Go(func() error {
		rows, err := s.pool.Query(gctx, `
			SELECT department, COUNT(*)
			FROM contacts
			WHERE department IS NOT NULL AND department <> ''
			GROUP BY department
			ORDER BY COUNT(*) DESC, department
		`)
		if err != nil {
			return err
		}
		stats.DepartmentBreakdown, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.DepartmentCount, error) {
			var d model.DepartmentCount
			err := row.Scan(&d.Department, &d.ContactCount)
			return d, err
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return model.ContactStats{}, fmt.Errorf("contact stats: %w", err)
	}
	return stats, nil
}

func (s *ContactStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func collect(rows pgx.Rows) ([]model.Contact, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Contact, error) {
		return scanContact(row)
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
