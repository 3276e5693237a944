package dto

import (
	"github.com/clinic-thoughts/models"
)

// InsertClinic carries a new clinic. Departments defaults to
// models.DefaultDepartments when empty.
type InsertClinic struct {
	Name        string   `json:"name" binding:"required"`
	URL         *string  `json:"url,omitempty"`
	LogoURL     *string  `json:"logoUrl,omitempty"`
	Departments []string `json:"departments,omitempty"`
}

// ClinicUpdate lists the clinic fields that may be changed. Departments are
// managed only through the department operations.
type ClinicUpdate struct {
	Name    *string `json:"name,omitempty"`
	URL     *string `json:"url,omitempty"`
	LogoURL *string `json:"logoUrl,omitempty"`
}

// Apply merges the update onto c
func (p ClinicUpdate) Apply(c *models.Clinic) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.URL != nil {
		url := *p.URL
		c.URL = &url
	}
	if p.LogoURL != nil {
		logo := *p.LogoURL
		c.LogoURL = &logo
	}
}

// DepartmentRequest names a department to add or remove
type DepartmentRequest struct {
	Name string `json:"name" binding:"required"`
}

// RenameDepartmentRequest renames a department in place
type RenameDepartmentRequest struct {
	OldName string `json:"oldName" binding:"required"`
	NewName string `json:"newName" binding:"required"`
}

// SetupRequest holds the first clinic and its admin. User.Password must be hashed.
type SetupRequest struct {
	User   InsertUser
	Clinic InsertClinic
}

// SetupResult returns the records created by first-time setup
type SetupResult struct {
	User   models.User   `json:"user"`
	Clinic models.Clinic `json:"clinic"`
}

// SetupFirstAdminRequest represents the first-time setup form
type SetupFirstAdminRequest struct {
	Username    string   `json:"username" binding:"required"`
	Email       string   `json:"email" binding:"required,email"`
	Password    string   `json:"password" binding:"required,min=6"`
	ClinicName  string   `json:"clinicName" binding:"required"`
	ClinicURL   *string  `json:"clinicUrl,omitempty"`
	Departments []string `json:"departments,omitempty"`
}
