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

// UserService manages clinic members
type UserService struct {
	store storage.Storage
	log   *logger.Logger
}

// NewUserService creates a user service
func NewUserService(store storage.Storage, log *logger.Logger) *UserService {
	return &UserService{store: store, log: log}
}

// List returns the members of the caller's clinic; admin only
func (s *UserService) List(ctx context.Context, actor Actor) ([]models.User, error) {
	clinicID, err := actor.adminOf()
	if err != nil {
		return nil, err
	}
	return s.store.GetUsersByClinic(ctx, clinicID)
}

// Update edits a profile. Users may edit themselves; admins may edit any
// member of their clinic and are the only ones who may change roles.
func (s *UserService) Update(ctx context.Context, actor Actor, id uint, req dto.UpdateProfileRequest) (*models.User, error) {
	if _, err := s.authorize(ctx, actor, id, actor.UserID == id); err != nil {
		return nil, err
	}
	if req.Role != nil && !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	updates := dto.UserUpdate{
		Username: req.Username,
		Email:    req.Email,
		Role:     req.Role,
	}
	if req.Password != nil {
		hashed, err := utils.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		updates.Password = &hashed
	}
	return s.store.UpdateUser(ctx, id, updates)
}

// Delete removes a member of the caller's clinic; admin only. Admins cannot
// delete themselves.
func (s *UserService) Delete(ctx context.Context, actor Actor, id uint) error {
	if actor.UserID == id {
		return ErrForbidden
	}
	if _, err := s.authorize(ctx, actor, id, false); err != nil {
		return err
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.log.Info("User deleted", "user_id", id, "deleted_by", actor.UserID)
	return nil
}

// authorize loads the target user and checks the caller may act on it
func (s *UserService) authorize(ctx context.Context, actor Actor, id uint, self bool) (*models.User, error) {
	target, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, storage.ErrNotFound
	}
	if self {
		return target, nil
	}
	clinicID, err := actor.adminOf()
	if err != nil {
		return nil, err
	}
	if target.ClinicID == nil || *target.ClinicID != clinicID {
		return nil, ErrForbidden
	}
	return target, nil
}
