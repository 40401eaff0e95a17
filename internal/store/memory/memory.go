// Package memory holds in-process user and contact stores. They back the
// "memory" contacts backend and the handler tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/duccv/contact-addin/internal/model"
	"github.com/duccv/contact-addin/internal/store"
)

type UserStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]model.User
	now    func() time.Time
}

func NewUserStore() *UserStore {
	return &UserStore{
		nextID: 1,
		byID:   make(map[int64]model.User),
		now:    time.Now,
	}
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, store.ErrNotFound
}

func (s *UserStore) FindByID(_ context.Context, id int64) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return model.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *UserStore) Create(_ context.Context, email, passwordHash string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if u.Email == email {
			return model.User{}, store.ErrDuplicateEmail
		}
	}
	u := model.User{
		ID:           s.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    s.now().UTC(),
	}
	s.byID[u.ID] = u
	s.nextID++
	return u, nil
}

func (s *UserStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

type ContactStore struct {
	mu      sync.RWMutex
	byEmail map[string]model.Contact
}

func NewContactStore(contacts ...model.Contact) *ContactStore {
	s := &ContactStore{byEmail: make(map[string]model.Contact, len(contacts))}
	for _, c := range contacts {
		s.Put(c)
	}
	return s
}

// Put inserts or replaces a contact keyed by its lower-cased email.
func (s *ContactStore) Put(c model.Contact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Email = strings.ToLower(c.Email)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	s.byEmail[c.Email] = c
}

func (s *ContactStore) Lookup(_ context.Context, email string) (model.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return model.Contact{}, store.ErrNotFound
	}
	return c, nil
}

func (s *ContactStore) Search(_ context.Context, q string) ([]model.Contact, error) {
	var out []model.Contact
	for _, c := range s.sorted() {
		if store.Matches(c, q) {
			out = append(out, c)
		}
	}
	return store.RankContacts(out, q), nil
}

func (s *ContactStore) Paginate(_ context.Context, page, size int) (model.ContactPage, error) {
	all := s.sorted()
	res := model.ContactPage{Total: len(all), Page: page, Size: size, Contacts: []model.Contact{}}
	start := (page - 1) * size
	if start >= len(all) || start < 0 {
		return res, nil
	}
	end := min(start+size, len(all))
	res.Contacts = all[start:end]
	return res, nil
}

func (s *ContactStore) Stats(_ context.Context) (model.ContactStats, error) {
	all := s.sorted()
	depts := map[string]int{}
	companies := map[string]struct{}{}
	stats := model.ContactStats{TotalContacts: len(all), DepartmentBreakdown: []model.DepartmentCount{}}
	for _, c := range all {
		if c.Department != "" {
			depts[c.Department]++
		}
		if c.Company != "" {
			companies[c.Company] = struct{}{}
		}
		if c.PhoneNumber != "" {
			stats.ContactsWithPhone++
		}
	}
	stats.DepartmentCount = len(depts)
	stats.CompanyCount = len(companies)
	for d, n := range depts {
		stats.DepartmentBreakdown = append(stats.DepartmentBreakdown, model.DepartmentCount{Department: d, ContactCount: n})
	}
	sort.Slice(stats.DepartmentBreakdown, func(i, j int) bool {
		a, b := stats.DepartmentBreakdown[i], stats.DepartmentBreakdown[j]
		if a.ContactCount != b.ContactCount {
			return a.ContactCount > b.ContactCount
		}
		return a.Department < b.Department
	})
	return stats, nil
}

func (s *ContactStore) sorted() []model.Contact {
	s.mu.RLock()
	out := make([]model.Contact, 0, len(s.byEmail))
	for _, c := range s.byEmail {
		out = append(out, c)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out
}
