package model

import "time"

type Contact struct {
	Email       string    `json:"email"                 bson:"email"`
	FullName    string    `json:"fullName"              bson:"full_name"`
	Department  string    `json:"department,omitempty"  bson:"department,omitempty"`
	PhoneNumber string    `json:"phoneNumber,omitempty" bson:"phone_number,omitempty"`
	JobTitle    string    `json:"jobTitle,omitempty"    bson:"job_title,omitempty"`
	Company     string    `json:"company,omitempty"     bson:"company,omitempty"`
	Location    string    `json:"location,omitempty"    bson:"location,omitempty"`
	CreatedAt   time.Time `json:"-"                     bson:"created_at"`
	UpdatedAt   time.Time `json:"-"                     bson:"updated_at"`
}

// ContactPage is one page of the directory ordered by full name.
type ContactPage struct {
	Contacts []Contact `json:"contacts"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	Size     int       `json:"size"`
}

type DepartmentCount struct {
	Department   string `json:"department"   bson:"_id"`
	ContactCount int    `json:"contactCount" bson:"count"`
}

type ContactStats struct {
	TotalContacts       int               `json:"totalContacts"`
	DepartmentCount     int               `json:"departmentCount"`
	CompanyCount        int               `json:"companyCount"`
	ContactsWithPhone   int               `json:"contactsWithPhone"`
	DepartmentBreakdown []DepartmentCount `json:"departmentBreakdown"`
}

type EnrichQuery struct {
	Email string `form:"email" validate:"required,email"`
}

type SearchQuery struct {
	Q string `form:"q" validate:"required,min=2,max=100"`
}

type DirectoryQuery struct {
	Page  int `form:"page"  validate:"omitempty,min=1"`
	Limit int `form:"limit" validate:"omitempty,min=1,max=100"`
}
