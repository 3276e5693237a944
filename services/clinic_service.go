package services

import (
	"context"

	"github.com/clinic-thoughts/dto"
	"github.com/clinic-thoughts/logger"
	"github.com/clinic-thoughts/models"
	"github.com/clinic-thoughts/storage"
)

// ClinicService exposes a caller's clinic and its department list
type ClinicService struct {
	store storage.Storage
	log   *logger.Logger
}

// NewClinicService creates a clinic service
func NewClinicService(store storage.Storage, log *logger.Logger) *ClinicService {
	return &ClinicService{store: store, log: log}
}

// ListPublic returns every clinic, used by the registration form
func (s *ClinicService) ListPublic(ctx context.Context) ([]models.Clinic, error) {
	return s.store.GetAllClinics(ctx)
}

// Get returns the caller's clinic
func (s *ClinicService) Get(ctx context.Context, actor Actor) (*models.Clinic, error) {
	clinicID, err := actor.clinic()
	if err != nil {
		return nil, err
	}
	clinic, err := s.store.GetClinic(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	if clinic == nil {
		return nil, storage.ErrNotFound
	}
	return clinic, nil
}

// Update edits the caller's clinic; admin only
func (s *ClinicService) Update(ctx context.Context, actor Actor, updates dto.ClinicUpdate) (*models.Clinic, error) {
	clinicID, err := actor.adminOf()
	if err != nil {
		return nil, err
	}
	return s.store.UpdateClinic(ctx, clinicID, updates)
}

// Departments lists the caller's clinic departments
func (s *ClinicService) Departments(ctx context.Context, actor Actor) ([]string, error) {
	clinicID, err := actor.clinic()
	if err != nil {
		return nil, err
	}
	return s.store.GetDepartments(ctx, clinicID)
}

// AddDepartment appends a department; admin only
func (s *ClinicService) AddDepartment(ctx context.Context, actor Actor, name string) ([]string, error) {
	clinicID, err := actor.adminOf()
	if err != nil {
		return nil, err
	}
	if err := s.store.AddDepartment(ctx, clinicID, name); err != nil {
		return nil, err
	}
	return s.store.GetDepartments(ctx, clinicID)
}

// RenameDepartment renames a department and moves its thoughts; admin only
func (s *ClinicService) RenameDepartment(ctx context.Context, actor Actor, oldName, newName string) ([]string, error) {
	clinicID, err := actor.adminOf()
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateDepartment(ctx, clinicID, oldName, newName); err != nil {
		return nil, err
	}
	s.log.Info("Department renamed", "clinic_id", clinicID, "from", oldName, "to", newName)
	return s.store.GetDepartments(ctx, clinicID)
}

// RemoveDepartment drops a department and reassigns its thoughts; admin only
func (s *ClinicService) RemoveDepartment(ctx context.Context, actor Actor, name string) ([]string, error) {
	clinicID, err := actor.adminOf()
	if err != nil {
		return nil, err
	}
	if err := s.store.RemoveDepartment(ctx, clinicID, name); err != nil {
		return nil, err
	}
	s.log.Info("Department removed", "clinic_id", clinicID, "department", name)
	return s.store.GetDepartments(ctx, clinicID)
}
