package model

import "time"

// ContactInfo is the public projection of a Contact.
type ContactInfo struct {
	Email       string `json:"email,omitempty"`
	FullName    string `json:"fullName"`
	Department  string `json:"department,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	JobTitle    string `json:"jobTitle,omitempty"`
	Company     string `json:"company,omitempty"`
	Location    string `json:"location,omitempty"`
}

func (c Contact) Info() ContactInfo {
	return ContactInfo{
		Email:       c.Email,
		FullName:    c.FullName,
		Department:  c.Department,
		PhoneNumber: c.PhoneNumber,
		JobTitle:    c.JobTitle,
		Company:     c.Company,
		Location:    c.Location,
	}
}

type EnrichMetadata struct {
	// DataAge is the number of whole days since the record was updated.
	DataAge     int       `json:"dataAge"`
	LastUpdated time.Time `json:"lastUpdated"`
	DataSource  string    `json:"dataSource"`
}

type EnrichData struct {
	Email       string          `json:"email"`
	Enriched    bool            `json:"enriched"`
	ContactInfo *ContactInfo    `json:"contactInfo,omitempty"`
	Metadata    *EnrichMetadata `json:"metadata,omitempty"`
	Message     string          `json:"message,omitempty"`
	Suggestions []string        `json:"suggestions,omitempty"`
}

type EnrichResponse struct {
	Success     bool       `json:"success"`
	Data        EnrichData `json:"data"`
	RequestedBy string     `json:"requestedBy"`
	Timestamp   time.Time  `json:"timestamp"`
}

type SearchResponse struct {
	Success     bool          `json:"success"`
	Query       string        `json:"query"`
	Results     []ContactInfo `json:"results"`
	TotalFound  int           `json:"totalFound"`
	RequestedBy string        `json:"requestedBy"`
	Timestamp   time.Time     `json:"timestamp"`
}

type Pagination struct {
	CurrentPage   int  `json:"currentPage"`
	TotalPages    int  `json:"totalPages"`
	TotalContacts int  `json:"totalContacts"`
	Limit         int  `json:"limit"`
	HasNext       bool `json:"hasNext"`
	HasPrev       bool `json:"hasPrev"`
}

type DirectoryData struct {
	Contacts             []ContactInfo            `json:"contacts"`
	ContactsByDepartment map[string][]ContactInfo `json:"contactsByDepartment"`
}

type DirectoryResponse struct {
	Success     bool          `json:"success"`
	Data        DirectoryData `json:"data"`
	Pagination  Pagination    `json:"pagination"`
	RequestedBy string        `json:"requestedBy"`
	Timestamp   time.Time     `json:"timestamp"`
}

type StatsResponse struct {
	Success     bool         `json:"success"`
	Statistics  ContactStats `json:"statistics"`
	RequestedBy string       `json:"requestedBy"`
	Timestamp   time.Time    `json:"timestamp"`
}
