package store

import (
	"sort"
	"strings"

	"github.com/duccv/contact-addin/internal/model"
)

// MatchRank orders a contact for query q: 1 when the full name starts with
// q, 2 for the job title, 3 for the department, 4 otherwise.
func MatchRank(c model.Contact, q string) int {
	q = strings.ToLower(q)
	switch {
	case strings.HasPrefix(strings.ToLower(c.FullName), q):
		return 1
	case strings.HasPrefix(strings.ToLower(c.JobTitle), q):
		return 2
	case strings.HasPrefix(strings.ToLower(c.Department), q):
		return 3
	default:
		return 4
	}
}

// Matches reports whether any searchable field contains q.
func Matches(c model.Contact, q string) bool {
	q = strings.ToLower(q)
	for _, f := range []string{c.FullName, c.Department, c.JobTitle, c.Company} {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// RankContacts sorts in place by MatchRank then full name and truncates to
// SearchLimit.
func RankContacts(contacts []model.Contact, q string) []model.Contact {
	sort.SliceStable(contacts, func(i, j int) bool {
		ri, rj := MatchRank(contacts[i], q), MatchRank(contacts[j], q)
		if ri != rj {
			return ri < rj
		}
		return contacts[i].FullName < contacts[j].FullName
	})
	if len(contacts) > SearchLimit {
		contacts = contacts[:SearchLimit]
	}
	return contacts
}

// DemoContacts are inserted by the seeders when the contact table is empty.
func DemoContacts() []model.Contact {
	return []model.Contact{
		{Email: "john.doe@company.com", FullName: "John Doe", Department: "Engineering", PhoneNumber: "+1-555-0101", JobTitle: "Senior Software Engineer", Company: "Company Inc", Location: "San Francisco, CA"},
		{Email: "jane.smith@company.com", FullName: "Jane Smith", Department: "Marketing", PhoneNumber: "+1-555-0102", JobTitle: "Marketing Manager", Company: "Company Inc", Location: "New York, NY"},
		{Email: "alice.johnson@company.com", FullName: "Alice Johnson", Department: "Sales", PhoneNumber: "+1-555-0103", JobTitle: "Sales Director", Company: "Company Inc", Location: "Chicago, IL"},
		{Email: "bob.wilson@company.com", FullName: "Bob Wilson", Department: "Engineering", PhoneNumber: "+1-555-0104", JobTitle: "DevOps Engineer", Company: "Company Inc", Location: "Austin, TX"},
		{Email: "sarah.davis@company.com", FullName: "Sarah Davis", Department: "Human Resources", PhoneNumber: "+1-555-0105", JobTitle: "HR Business Partner", Company: "Company Inc", Location: "Seattle, WA"},
	}
}
