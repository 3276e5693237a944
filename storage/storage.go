// Package storage is the persistence gateway. It owns CRUD for users,
// clinics and thoughts, the append-only thought history and the department
// cascade. Two backends implement Storage: MemStorage and DatabaseStorage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clinic-thoughts/dto"
	"github.com/clinic-thoughts/models"
)

var (
	// ErrNotFound is returned by mutations whose target id does not exist.
	// Lookups return a nil record and a nil error instead.
	ErrNotFound = errors.New("not found")

	// ErrInvalidOperation is matched by every rejected department operation
	ErrInvalidOperation = errors.New("invalid operation")

	ErrEmptyDepartmentName = fmt.Errorf("%w: department name is empty", ErrInvalidOperation)
	ErrDepartmentExists    = fmt.Errorf("%w: department already exists", ErrInvalidOperation)
	ErrDepartmentNotFound  = fmt.Errorf("%w: department not found", ErrInvalidOperation)
	ErrLastDepartment      = fmt.Errorf("%w: a clinic must keep at least one department", ErrInvalidOperation)

	// ErrDuplicate is returned when a username or email is already taken
	ErrDuplicate = errors.New("username or email already exists")

	// ErrSetupComplete is returned by SetupFirstAdmin once any user exists
	ErrSetupComplete = errors.New("setup already completed")
)

// Storage is the persistence gateway used by the request layer
type Storage interface {
	// Users
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserWithClinic(ctx context.Context, id uint) (*dto.UserWithClinic, error)
	CreateUser(ctx context.Context, user dto.InsertUser) (*models.User, error)
	UpdateUser(ctx context.Context, id uint, updates dto.UserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, id uint) error
	GetUsersByClinic(ctx context.Context, clinicID uint) ([]models.User, error)

	// Clinics
	GetClinic(ctx context.Context, id uint) (*models.Clinic, error)
	CreateClinic(ctx context.Context, clinic dto.InsertClinic) (*models.Clinic, error)
	UpdateClinic(ctx context.Context, id uint, updates dto.ClinicUpdate) (*models.Clinic, error)
	DeleteClinic(ctx context.Context, id uint) error
	GetAllClinics(ctx context.Context) ([]models.Clinic, error)

	// Thoughts and history
	CreateThought(ctx context.Context, thought dto.InsertThought, authorID uint) (*models.Thought, error)
	GetThought(ctx context.Context, id uint) (*models.Thought, error)
	UpdateThought(ctx context.Context, id uint, updates dto.ThoughtUpdate, editorID uint) (*models.Thought, error)
	DeleteThought(ctx context.Context, id uint, deleterID uint) error
	MarkThoughtAsRead(ctx context.Context, id uint) error
	GetThoughtsByClinic(ctx context.Context, clinicID uint, includeDeleted bool, filters dto.ThoughtFilters) ([]dto.ThoughtWithAuthor, error)
	GetThoughtHistory(ctx context.Context, thoughtID uint) ([]dto.HistoryEntry, error)
	GetUnreadThoughtsCount(ctx context.Context, clinicID uint) (int64, error)

	// Departments
	AddDepartment(ctx context.Context, clinicID uint, name string) error
	UpdateDepartment(ctx context.Context, clinicID uint, oldName, newName string) error
	RemoveDepartment(ctx context.Context, clinicID uint, name string) error
	GetDepartments(ctx context.Context, clinicID uint) ([]string, error)

	// Setup
	HasAnyUsers(ctx context.Context) (bool, error)
	SetupFirstAdmin(ctx context.Context, req dto.SetupRequest) (*dto.SetupResult, error)
}

// Option configures a backend
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now as the source of timestamps
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func newThought(in dto.InsertThought, authorID uint, now time.Time) models.Thought {
	category := in.Category
	if category == "" {
		category = models.DefaultCategory
	}
	var department *string
	if in.Department != nil && *in.Department != "" {
		dept := *in.Department
		department = &dept
	}
	return models.Thought{
		ClinicID:   in.ClinicID,
		AuthorID:   authorID,
		Title:      in.Title,
		Content:    in.Content,
		Category:   category,
		Department: department,
		EditCount:  0,
		IsDeleted:  false,
		IsRead:     false,
		CreatedAt:  now,
	}
}

func newClinic(in dto.InsertClinic, now time.Time) models.Clinic {
	return models.Clinic{
		Name:        in.Name,
		URL:         clonePtr(in.URL),
		LogoURL:     clonePtr(in.LogoURL),
		Departments: normalizeDepartments(in.Departments),
		CreatedAt:   now,
	}
}

func newUser(in dto.InsertUser, now time.Time) models.User {
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	return models.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  in.Password,
		Role:      role,
		ClinicID:  clonePtr(in.ClinicID),
		CreatedAt: now,
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
