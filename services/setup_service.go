package services

import (
	"context"
	"fmt"

	"github.com/clinic-thoughts/dto"
	"github.com/clinic-thoughts/logger"
	"github.com/clinic-thoughts/models"
	"github.com/clinic-thoughts/storage"
	"github.com/clinic-thoughts/utils"
)

// SetupService runs first-time installation
type SetupService struct {
	store storage.Storage
	log   *logger.Logger
}

// NewSetupService creates a setup service
func NewSetupService(store storage.Storage, log *logger.Logger) *SetupService {
	return &SetupService{store: store, log: log}
}

// NeedsSetup reports whether no user exists yet
func (s *SetupService) NeedsSetup(ctx context.Context) (bool, error) {
	hasUsers, err := s.store.HasAnyUsers(ctx)
	if err != nil {
		return false, err
	}
	return !hasUsers, nil
}

// Setup creates the first clinic and its administrator. It returns
// storage.ErrSetupComplete once any user exists.
func (s *SetupService) Setup(ctx context.Context, req dto.SetupFirstAdminRequest) (*dto.SetupResult, error) {
	needsSetup, err := s.NeedsSetup(ctx)
	if err != nil {
		return nil, err
	}
	if !needsSetup {
		return nil, storage.ErrSetupComplete
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return s.store.SetupFirstAdmin(ctx, dto.SetupRequest{
		User: dto.InsertUser{
			Username: req.Username,
			Email:    req.Email,
			Password: hashed,
			Role:     models.RoleAdmin,
		},
		Clinic: dto.InsertClinic{
			Name:        req.ClinicName,
			URL:         req.ClinicURL,
			Departments: req.Departments,
		},
	})
}
