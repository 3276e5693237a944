package services

import (
	"context"
	"strings"

	"github.com/clinic-thoughts/dto"
	"github.com/clinic-thoughts/logger"
	"github.com/clinic-thoughts/models"
	"github.com/clinic-thoughts/storage"
)

// ThoughtService applies the clinic access policy on top of the store.
// Admins manage every thought of their clinic; users see and submit their own.
type ThoughtService struct {
	store storage.Storage
	log   *logger.Logger
}

// NewThoughtService creates a thought service
func NewThoughtService(store storage.Storage, log *logger.Logger) *ThoughtService {
	return &ThoughtService{store: store, log: log}
}

// List returns the caller's view of the clinic's thoughts. Non-admins only
// ever see their own, never deleted ones, and get no unread count.
func (s *ThoughtService) List(ctx context.Context, actor Actor, includeDeleted bool, filters dto.ThoughtFilters) (*dto.ThoughtListResponse, error) {
	clinicID, err := actor.clinic()
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() {
		self := actor.UserID
		filters.UserID = &self
		includeDeleted = false
	}

	thoughts, err := s.store.GetThoughtsByClinic(ctx, clinicID, includeDeleted, filters)
	if err != nil {
		return nil, err
	}

	response := &dto.ThoughtListResponse{
		Thoughts:   thoughts,
		TotalCount: len(thoughts),
	}
	if actor.IsAdmin() {
		response.UnreadCount, err = s.store.GetUnreadThoughtsCount(ctx, clinicID)
		if err != nil {
			return nil, err
		}
	}
	return response, nil
}

// Create submits a thought to the caller's clinic
func (s *ThoughtService) Create(ctx context.Context, actor Actor, req dto.CreateThoughtRequest) (*models.Thought, error) {
	clinicID, err := actor.clinic()
	if err != nil {
		return nil, err
	}

	department, err := s.resolveDepartment(ctx, clinicID, req.Department)
	if err != nil {
		return nil, err
	}
	if department != nil && *department == "" {
		department = nil
	}

	thought, err := s.store.CreateThought(ctx, dto.InsertThought{
		ClinicID:   clinicID,
		Title:      req.Title,
		Content:    req.Content,
		Category:   req.Category,
		Department: department,
	}, actor.UserID)
	if err != nil {
		return nil, err
	}

	s.log.Debug("Thought created", "thought_id", thought.ID, "clinic_id", clinicID, "author_id", actor.UserID)
	return thought, nil
}

// Get returns one thought visible to the caller
func (s *ThoughtService) Get(ctx context.Context, actor Actor, id uint) (*models.Thought, error) {
	thought, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && (thought.AuthorID != actor.UserID || thought.IsDeleted) {
		return nil, ErrForbidden
	}
	return thought, nil
}

// Update edits a thought; admin only. An empty department clears it.
func (s *ThoughtService) Update(ctx context.Context, actor Actor, id uint, updates dto.ThoughtUpdate) (*models.Thought, error) {
	current, err := s.loadAsAdmin(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if updates.Department, err = s.resolveDepartment(ctx, current.ClinicID, updates.Department); err != nil {
		return nil, err
	}
	return s.store.UpdateThought(ctx, id, updates, actor.UserID)
}

// Delete soft-deletes a thought; admin only
func (s *ThoughtService) Delete(ctx context.Context, actor Actor, id uint) error {
	if _, err := s.loadAsAdmin(ctx, actor, id); err != nil {
		return err
	}
	if err := s.store.DeleteThought(ctx, id, actor.UserID); err != nil {
		return err
	}
	s.log.Info("Thought deleted", "thought_id", id, "deleted_by", actor.UserID)
	return nil
}

// MarkRead flags a thought as read; admin only
func (s *ThoughtService) MarkRead(ctx context.Context, actor Actor, id uint) error {
	if _, err := s.loadAsAdmin(ctx, actor, id); err != nil {
		return err
	}
	return s.store.MarkThoughtAsRead(ctx, id)
}

// History returns a thought's change log; admin only
func (s *ThoughtService) History(ctx context.Context, actor Actor, id uint) ([]dto.HistoryEntry, error) {
	if _, err := s.loadAsAdmin(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.store.GetThoughtHistory(ctx, id)
}

// UnreadCount returns the clinic's unread thought count; admin only
func (s *ThoughtService) UnreadCount(ctx context.Context, actor Actor) (int64, error) {
	clinicID, err := actor.adminOf()
	if err != nil {
		return 0, err
	}
	return s.store.GetUnreadThoughtsCount(ctx, clinicID)
}

// load fetches a thought from the caller's clinic. Thoughts of other
// clinics are reported as missing.
func (s *ThoughtService) load(ctx context.Context, actor Actor, id uint) (*models.Thought, error) {
	clinicID, err := actor.clinic()
	if err != nil {
		return nil, err
	}
	thought, err := s.store.GetThought(ctx, id)
	if err != nil {
		return nil, err
	}
	if thought == nil || thought.ClinicID != clinicID {
		return nil, storage.ErrNotFound
	}
	return thought, nil
}

// resolveDepartment rewrites a requested department to the clinic's stored
// spelling so the rename and remove cascades can find it. Blank names are
// returned as an empty string.
func (s *ThoughtService) resolveDepartment(ctx context.Context, clinicID uint, name *string) (*string, error) {
	if name == nil {
		return nil, nil
	}
	if strings.TrimSpace(*name) == "" {
		blank := ""
		return &blank, nil
	}
	departments, err := s.store.GetDepartments(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	stored, err := storage.ResolveDepartment(departments, *name)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *ThoughtService) loadAsAdmin(ctx context.Context, actor Actor, id uint) (*models.Thought, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.load(ctx, actor, id)
}
