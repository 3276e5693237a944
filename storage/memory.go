package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/clinic-thoughts/dto"
	"github.com/clinic-thoughts/logger"
	"github.com/clinic-thoughts/models"
)

// MemStorage keeps every table in process memory. One lock covers the whole
// store, so department cascades and thought edits never interleave.
type MemStorage struct {
	mu sync.RWMutex

	users    map[uint]models.User
	clinics  map[uint]models.Clinic
	thoughts map[uint]models.Thought
	history  map[uint]models.ThoughtHistory

	nextUserID    uint
	nextClinicID  uint
	nextThoughtID uint
	nextHistoryID uint

	now func() time.Time
	log *logger.Logger
}

var _ Storage = (*MemStorage)(nil)

// NewMemStorage creates an empty in-memory store
func NewMemStorage(log *logger.Logger, opts ...Option) *MemStorage {
	o := buildOptions(opts)
	return &MemStorage{
		users:    make(map[uint]models.User),
		clinics:  make(map[uint]models.Clinic),
		thoughts: make(map[uint]models.Thought),
		history:  make(map[uint]models.ThoughtHistory),
		now:      o.now,
		log:      log.With("storage", "memory"),
	}
}

// Users

func (s *MemStorage) GetUser(ctx context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(u), nil
}

func (s *MemStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range sortedKeys(s.users) {
		if u := s.users[id]; u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (s *MemStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range sortedKeys(s.users) {
		if u := s.users[id]; u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (s *MemStorage) GetUserWithClinic(ctx context.Context, id uint) (*dto.UserWithClinic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	result := &dto.UserWithClinic{User: *cloneUser(u)}
	if u.ClinicID != nil {
		if c, ok := s.clinics[*u.ClinicID]; ok {
			result.Clinic = cloneClinic(c)
		}
	}
	return result, nil
}

func (s *MemStorage) CreateUser(ctx context.Context, in dto.InsertUser) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.createUserLocked(in)
}

func (s *MemStorage) createUserLocked(in dto.InsertUser) (*models.User, error) {
	if s.identityTakenLocked(0, in.Username, in.Email) {
		return nil, ErrDuplicate
	}
	s.nextUserID++
	u := newUser(in, s.now())
	u.ID = s.nextUserID
	s.users[u.ID] = u
	return cloneUser(u), nil
}

// identityTakenLocked reports whether another user than self already uses
// username or email
func (s *MemStorage) identityTakenLocked(self uint, username, email string) bool {
	for id, u := range s.users {
		if id == self {
			continue
		}
		if u.Username == username || u.Email == email {
			return true
		}
	}
	return false
}

func (s *MemStorage) UpdateUser(ctx context.Context, id uint, updates dto.UserUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	updates.Apply(&u)
	if s.identityTakenLocked(id, u.Username, u.Email) {
		return nil, ErrDuplicate
	}
	s.users[id] = u
	return cloneUser(u), nil
}

func (s *MemStorage) DeleteUser(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	// Thoughts and history keep the dangling id
	delete(s.users, id)
	return nil
}

func (s *MemStorage) GetUsersByClinic(ctx context.Context, clinicID uint) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0)
	for _, id := range sortedKeys(s.users) {
		u := s.users[id]
		if u.ClinicID != nil && *u.ClinicID == clinicID {
			users = append(users, *cloneUser(u))
		}
	}
	return users, nil
}

// Clinics

func (s *MemStorage) GetClinic(ctx context.Context, id uint) (*models.Clinic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clinics[id]
	if !ok {
		return nil, nil
	}
	return cloneClinic(c), nil
}

func (s *MemStorage) CreateClinic(ctx context.Context, in dto.InsertClinic) (*models.Clinic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.createClinicLocked(in), nil
}

func (s *MemStorage) createClinicLocked(in dto.InsertClinic) *models.Clinic {
	s.nextClinicID++
	c := newClinic(in, s.now())
	c.ID = s.nextClinicID
	s.clinics[c.ID] = c
	return cloneClinic(c)
}

func (s *MemStorage) UpdateClinic(ctx context.Context, id uint, updates dto.ClinicUpdate) (*models.Clinic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clinics[id]
	if !ok {
		return nil, ErrNotFound
	}
	updates.Apply(&c)
	s.clinics[id] = c
	return cloneClinic(c), nil
}

func (s *MemStorage) DeleteClinic(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clinics[id]; !ok {
		return ErrNotFound
	}
	delete(s.clinics, id)
	return nil
}

func (s *MemStorage) GetAllClinics(ctx context.Context) ([]models.Clinic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clinics := make([]models.Clinic, 0, len(s.clinics))
	for _, id := range sortedKeys(s.clinics) {
		clinics = append(clinics, *cloneClinic(s.clinics[id]))
	}
	return clinics, nil
}

// Thoughts

func (s *MemStorage) CreateThought(ctx context.Context, in dto.InsertThought, authorID uint) (*models.Thought, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.nextThoughtID++
	t := newThought(in, authorID, now)
	t.ID = s.nextThoughtID
	s.thoughts[t.ID] = t
	s.appendHistoryLocked(models.Snapshot(t, authorID, now, models.ChangeCreated))
	return cloneThought(t), nil
}

func (s *MemStorage) GetThought(ctx context.Context, id uint) (*models.Thought, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.thoughts[id]
	if !ok {
		return nil, nil
	}
	return cloneThought(t), nil
}

func (s *MemStorage) UpdateThought(ctx context.Context, id uint, updates dto.ThoughtUpdate, editorID uint) (*models.Thought, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.thoughts[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := s.now()
	updates.Apply(&t)
	t.EditCount++
	t.LastEditedAt = &now
	t.LastEditedBy = &editorID
	s.thoughts[id] = t
	s.appendHistoryLocked(models.Snapshot(t, editorID, now, models.ChangeEdited))
	return cloneThought(t), nil
}

func (s *MemStorage) DeleteThought(ctx context.Context, id uint, deleterID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.thoughts[id]
	if !ok {
		return ErrNotFound
	}
	now := s.now()
	t.IsDeleted = true
	t.DeletedAt = &now
	t.DeletedBy = &deleterID
	s.thoughts[id] = t
	s.appendHistoryLocked(models.Snapshot(t, deleterID, now, models.ChangeDeleted))
	return nil
}

func (s *MemStorage) MarkThoughtAsRead(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.thoughts[id]
	if !ok {
		return ErrNotFound
	}
	if t.IsRead {
		return nil
	}
	now := s.now()
	t.IsRead = true
	t.ReadAt = &now
	s.thoughts[id] = t
	return nil
}

func (s *MemStorage) GetThoughtsByClinic(ctx context.Context, clinicID uint, includeDeleted bool, filters dto.ThoughtFilters) ([]dto.ThoughtWithAuthor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var thoughts []models.Thought
	for _, id := range sortedKeys(s.thoughts) {
		if t := s.thoughts[id]; t.ClinicID == clinicID {
			thoughts = append(thoughts, *cloneThought(t))
		}
	}
	thoughts = filterThoughts(thoughts, includeDeleted, filters)

	authors := make(map[uint]models.User)
	for _, id := range authorIDs(thoughts) {
		if u, ok := s.users[id]; ok {
			authors[id] = *cloneUser(u)
		}
	}
	return joinAuthors(thoughts, authors), nil
}

func (s *MemStorage) GetThoughtHistory(ctx context.Context, thoughtID uint) ([]dto.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []models.ThoughtHistory
	for _, id := range sortedKeys(s.history) {
		if h := s.history[id]; h.ThoughtID == thoughtID {
			entries = append(entries, cloneHistory(h))
		}
	}
	sortHistory(entries)

	var thought *models.Thought
	if t, ok := s.thoughts[thoughtID]; ok {
		thought = cloneThought(t)
	}

	editors := make(map[uint]models.User)
	for _, id := range historyEditorIDs(thought, entries) {
		if u, ok := s.users[id]; ok {
			editors[id] = *cloneUser(u)
		}
	}
	return buildHistory(thought, entries, editors), nil
}

func (s *MemStorage) GetUnreadThoughtsCount(ctx context.Context, clinicID uint) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, t := range s.thoughts {
		if t.ClinicID == clinicID && !t.IsDeleted && !t.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *MemStorage) appendHistoryLocked(entry models.ThoughtHistory) {
	s.nextHistoryID++
	entry.ID = s.nextHistoryID
	s.history[entry.ID] = entry
}

// Departments

func (s *MemStorage) AddDepartment(ctx context.Context, clinicID uint, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clinics[clinicID]
	if !ok {
		return ErrNotFound
	}
	set := newDepartmentSet(c.Departments)
	if err := set.add(name); err != nil {
		return err
	}
	c.Departments = set.list()
	s.clinics[clinicID] = c
	return nil
}

func (s *MemStorage) UpdateDepartment(ctx context.Context, clinicID uint, oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clinics[clinicID]
	if !ok {
		return ErrNotFound
	}
	set := newDepartmentSet(c.Departments)
	previous, current, err := set.rename(oldName, newName)
	if err != nil {
		return err
	}
	c.Departments = set.list()
	s.clinics[clinicID] = c

	moved := s.reassignDepartmentLocked(clinicID, previous, current)
	s.log.Debug("Renamed department", "clinic_id", clinicID, "from", previous, "to", current, "thoughts", moved)
	return nil
}

func (s *MemStorage) RemoveDepartment(ctx context.Context, clinicID uint, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clinics[clinicID]
	if !ok {
		return ErrNotFound
	}
	set := newDepartmentSet(c.Departments)
	removed, fallback, err := set.remove(name)
	if err != nil {
		return err
	}
	c.Departments = set.list()
	s.clinics[clinicID] = c

	moved := s.reassignDepartmentLocked(clinicID, removed, fallback)
	s.log.Debug("Removed department", "clinic_id", clinicID, "department", removed, "fallback", fallback, "thoughts", moved)
	return nil
}

func (s *MemStorage) reassignDepartmentLocked(clinicID uint, from, to string) int {
	if from == to {
		return 0
	}
	moved := 0
	for id, t := range s.thoughts {
		if t.ClinicID != clinicID || !t.HasDepartment(from) {
			continue
		}
		dept := to
		t.Department = &dept
		s.thoughts[id] = t
		moved++
	}
	return moved
}

func (s *MemStorage) GetDepartments(ctx context.Context, clinicID uint) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clinics[clinicID]
	if !ok {
		return listOrDefault(nil), nil
	}
	return listOrDefault(c.Departments), nil
}

// Setup

func (s *MemStorage) HasAnyUsers(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.users) > 0, nil
}

func (s *MemStorage) SetupFirstAdmin(ctx context.Context, req dto.SetupRequest) (*dto.SetupResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.users) > 0 {
		return nil, ErrSetupComplete
	}

	clinic := s.createClinicLocked(req.Clinic)

	admin := req.User
	admin.Role = models.RoleAdmin
	admin.ClinicID = &clinic.ID
	user, err := s.createUserLocked(admin)
	if err != nil {
		// Roll the clinic back so setup stays all-or-nothing
		delete(s.clinics, clinic.ID)
		return nil, err
	}

	s.log.Info("First admin created", "clinic_id", clinic.ID, "user_id", user.ID)
	return &dto.SetupResult{User: *user, Clinic: *clinic}, nil
}

// Copy helpers keep callers from aliasing stored records

func sortedKeys[V any](m map[uint]V) []uint {
	keys := make([]uint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func cloneUser(u models.User) *models.User {
	u.ClinicID = clonePtr(u.ClinicID)
	return &u
}

func cloneClinic(c models.Clinic) *models.Clinic {
	c.URL = clonePtr(c.URL)
	c.LogoURL = clonePtr(c.LogoURL)
	c.Departments = append([]string(nil), c.Departments...)
	return &c
}

func cloneThought(t models.Thought) *models.Thought {
	t.Department = clonePtr(t.Department)
	t.DeletedAt = clonePtr(t.DeletedAt)
	t.DeletedBy = clonePtr(t.DeletedBy)
	t.LastEditedAt = clonePtr(t.LastEditedAt)
	t.LastEditedBy = clonePtr(t.LastEditedBy)
	t.ReadAt = clonePtr(t.ReadAt)
	return &t
}

func cloneHistory(h models.ThoughtHistory) models.ThoughtHistory {
	h.Department = clonePtr(h.Department)
	return h
}
