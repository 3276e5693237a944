package dto

import (
	"github.com/clinic-thoughts/models"
)

// InsertUser carries a new user; Password must already be hashed
type InsertUser struct {
	Username string
	Email    string
	Password string
	Role     models.Role
	ClinicID *uint
}

// UserUpdate lists the user fields that may be changed. Nil fields are left alone.
type UserUpdate struct {
	Username *string      `json:"username,omitempty"`
	Email    *string      `json:"email,omitempty"`
	Password *string      `json:"-"`
	Role     *models.Role `json:"role,omitempty"`
	ClinicID *uint        `json:"clinicId,omitempty"`
}

// Apply merges the update onto u
func (p UserUpdate) Apply(u *models.User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.ClinicID != nil {
		id := *p.ClinicID
		u.ClinicID = &id
	}
}

// UserWithClinic joins a user with its clinic, nil when the user has none
type UserWithClinic struct {
	models.User
	Clinic *models.Clinic `json:"clinic"`
}

// UpdateProfileRequest represents the request payload for editing a user
type UpdateProfileRequest struct {
	Username *string      `json:"username,omitempty"`
	Email    *string      `json:"email,omitempty" binding:"omitempty,email"`
	Password *string      `json:"password,omitempty" binding:"omitempty,min=6"`
	Role     *models.Role `json:"role,omitempty" binding:"omitempty,oneof=admin user"`
}
