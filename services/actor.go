package services

import "github.com/clinic-thoughts/models"

// Actor is the authenticated caller a request runs on behalf of
type Actor struct {
	UserID   uint
	Role     models.Role
	ClinicID *uint
}

// IsAdmin reports whether the caller holds the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// clinic returns the caller's clinic, or ErrForbidden when it has none
func (a Actor) clinic() (uint, error) {
	if a.ClinicID == nil {
		return 0, ErrForbidden
	}
	return *a.ClinicID, nil
}

// adminOf returns the caller's clinic when the caller administers it
func (a Actor) adminOf() (uint, error) {
	if !a.IsAdmin() {
		return 0, ErrForbidden
	}
	return a.clinic()
}
