package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clinic-thoughts/dto"
	"github.com/clinic-thoughts/logger"
	"github.com/clinic-thoughts/models"
	"github.com/clinic-thoughts/repositories"
	"gorm.io/gorm"
)

// DatabaseStorage implements Storage on a relational database through GORM.
// Every multi-row write runs in a single transaction.
type DatabaseStorage struct {
	db       *gorm.DB
	users    *repositories.UserRepository
	clinics  *repositories.ClinicRepository
	thoughts *repositories.ThoughtRepository
	history  *repositories.ThoughtHistoryRepository

	now func() time.Time
	log *logger.Logger
}

var _ Storage = (*DatabaseStorage)(nil)

// NewDatabaseStorage creates a store over an open, migrated database
func NewDatabaseStorage(db *gorm.DB, log *logger.Logger, opts ...Option) *DatabaseStorage {
	o := buildOptions(opts)
	// Timestamps are written in UTC so SQLite's text ordering matches time order
	now := func() time.Time { return o.now().UTC() }
	return &DatabaseStorage{
		db:       db,
		users:    repositories.NewUserRepository(db),
		clinics:  repositories.NewClinicRepository(db),
		thoughts: repositories.NewThoughtRepository(db),
		history:  repositories.NewThoughtHistoryRepository(db),
		now:      now,
		log:      log.With("storage", "database"),
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// translate maps driver errors onto the gateway's sentinel errors
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case isNotFound(err):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

// Users

func (s *DatabaseStorage) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (s *DatabaseStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (s *DatabaseStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (s *DatabaseStorage) GetUserWithClinic(ctx context.Context, id uint) (*dto.UserWithClinic, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil || user == nil {
		return nil, err
	}
	result := &dto.UserWithClinic{User: *user}
	if user.ClinicID != nil {
		clinic, err := s.GetClinic(ctx, *user.ClinicID)
		if err != nil {
			return nil, err
		}
		result.Clinic = clinic
	}
	return result, nil
}

func (s *DatabaseStorage) CreateUser(ctx context.Context, in dto.InsertUser) (*models.User, error) {
	user, err := s.users.Create(ctx, newUser(in, s.now()))
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *DatabaseStorage) UpdateUser(ctx context.Context, id uint, updates dto.UserUpdate) (*models.User, error) {
	var updated models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		user, err := users.FindByID(ctx, id)
		if err != nil {
			return err
		}
		updates.Apply(&user)
		if err := users.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return &updated, nil
}

func (s *DatabaseStorage) DeleteUser(ctx context.Context, id uint) error {
	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func (s *DatabaseStorage) GetUsersByClinic(ctx context.Context, clinicID uint) ([]models.User, error) {
	return s.users.FindByClinicID(ctx, clinicID)
}

// Clinics

func (s *DatabaseStorage) GetClinic(ctx context.Context, id uint) (*models.Clinic, error) {
	clinic, err := s.clinics.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &clinic, nil
}

func (s *DatabaseStorage) CreateClinic(ctx context.Context, in dto.InsertClinic) (*models.Clinic, error) {
	clinic, err := s.clinics.Create(ctx, newClinic(in, s.now()))
	if err != nil {
		return nil, err
	}
	return &clinic, nil
}

func (s *DatabaseStorage) UpdateClinic(ctx context.Context, id uint, updates dto.ClinicUpdate) (*models.Clinic, error) {
	var updated models.Clinic
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		clinics := s.clinics.WithTx(tx)
		clinic, err := clinics.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		updates.Apply(&clinic)
		if err := clinics.Update(ctx, clinic); err != nil {
			return err
		}
		updated = clinic
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return &updated, nil
}

func (s *DatabaseStorage) DeleteClinic(ctx context.Context, id uint) error {
	deleted, err := s.clinics.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func (s *DatabaseStorage) GetAllClinics(ctx context.Context) ([]models.Clinic, error) {
	return s.clinics.FindAll(ctx)
}

// Thoughts

func (s *DatabaseStorage) CreateThought(ctx context.Context, in dto.InsertThought, authorID uint) (*models.Thought, error) {
	var created models.Thought
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.now()
		thought, err := s.thoughts.WithTx(tx).Create(ctx, newThought(in, authorID, now))
		if err != nil {
			return fmt.Errorf("create thought: %w", err)
		}
		if _, err := s.history.WithTx(tx).Append(ctx, models.Snapshot(thought, authorID, now, models.ChangeCreated)); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		created = thought
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *DatabaseStorage) GetThought(ctx context.Context, id uint) (*models.Thought, error) {
	thought, err := s.thoughts.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &thought, nil
}

func (s *DatabaseStorage) UpdateThought(ctx context.Context, id uint, updates dto.ThoughtUpdate, editorID uint) (*models.Thought, error) {
	var updated models.Thought
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		thoughts := s.thoughts.WithTx(tx)
		thought, err := thoughts.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		now := s.now()
		updates.Apply(&thought)
		thought.EditCount++
		thought.LastEditedAt = &now
		thought.LastEditedBy = &editorID

		if err := thoughts.Update(ctx, thought); err != nil {
			return fmt.Errorf("update thought: %w", err)
		}
		if _, err := s.history.WithTx(tx).Append(ctx, models.Snapshot(thought, editorID, now, models.ChangeEdited)); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		updated = thought
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return &updated, nil
}

func (s *DatabaseStorage) DeleteThought(ctx context.Context, id uint, deleterID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		thoughts := s.thoughts.WithTx(tx)
		thought, err := thoughts.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		now := s.now()
		thought.IsDeleted = true
		thought.DeletedAt = &now
		thought.DeletedBy = &deleterID

		if err := thoughts.Update(ctx, thought); err != nil {
			return fmt.Errorf("delete thought: %w", err)
		}
		if _, err := s.history.WithTx(tx).Append(ctx, models.Snapshot(thought, deleterID, now, models.ChangeDeleted)); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		return nil
	})
	return translate(err)
}

func (s *DatabaseStorage) MarkThoughtAsRead(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		thoughts := s.thoughts.WithTx(tx)
		thought, err := thoughts.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if thought.IsRead {
			return nil
		}
		now := s.now()
		thought.IsRead = true
		thought.ReadAt = &now
		return thoughts.Update(ctx, thought)
	})
	return translate(err)
}

func (s *DatabaseStorage) GetThoughtsByClinic(ctx context.Context, clinicID uint, includeDeleted bool, filters dto.ThoughtFilters) ([]dto.ThoughtWithAuthor, error) {
	thoughts, err := s.thoughts.FindByClinic(ctx, clinicID, includeDeleted, filters)
	if err != nil {
		return nil, fmt.Errorf("list thoughts: %w", err)
	}
	authors, err := s.users.FindByIDs(ctx, authorIDs(thoughts))
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}
	return joinAuthors(thoughts, usersByID(authors)), nil
}

func (s *DatabaseStorage) GetThoughtHistory(ctx context.Context, thoughtID uint) ([]dto.HistoryEntry, error) {
	entries, err := s.history.FindByThoughtID(ctx, thoughtID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	thought, err := s.GetThought(ctx, thoughtID)
	if err != nil {
		return nil, err
	}
	editors, err := s.users.FindByIDs(ctx, historyEditorIDs(thought, entries))
	if err != nil {
		return nil, fmt.Errorf("load editors: %w", err)
	}
	return buildHistory(thought, entries, usersByID(editors)), nil
}

func (s *DatabaseStorage) GetUnreadThoughtsCount(ctx context.Context, clinicID uint) (int64, error) {
	return s.thoughts.CountUnread(ctx, clinicID)
}

// Departments

// withDepartments locks the clinic row, lets mutate edit its department list
// and persists the result, all inside one transaction. mutate returns the
// stored name to move thoughts away from and the name to move them to; an
// empty from skips the cascade.
func (s *DatabaseStorage) withDepartments(ctx context.Context, clinicID uint, mutate func(set *departmentSet) (from, to string, err error)) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		clinics := s.clinics.WithTx(tx)
		clinic, err := clinics.FindByIDForUpdate(ctx, clinicID)
		if err != nil {
			return translate(err)
		}

		set := newDepartmentSet(clinic.Departments)
		from, to, err := mutate(set)
		if err != nil {
			return err
		}
		if err := clinics.UpdateDepartments(ctx, clinicID, set.list()); err != nil {
			return fmt.Errorf("update departments: %w", err)
		}

		if from == "" || from == to {
			return nil
		}
		moved, err := s.thoughts.WithTx(tx).ReassignDepartment(ctx, clinicID, from, to)
		if err != nil {
			return fmt.Errorf("reassign thoughts: %w", err)
		}
		s.log.Debug("Reassigned department", "clinic_id", clinicID, "from", from, "to", to, "thoughts", moved)
		return nil
	})
}

func (s *DatabaseStorage) AddDepartment(ctx context.Context, clinicID uint, name string) error {
	return s.withDepartments(ctx, clinicID, func(set *departmentSet) (string, string, error) {
		return "", "", set.add(name)
	})
}

func (s *DatabaseStorage) UpdateDepartment(ctx context.Context, clinicID uint, oldName, newName string) error {
	return s.withDepartments(ctx, clinicID, func(set *departmentSet) (string, string, error) {
		return set.rename(oldName, newName)
	})
}

func (s *DatabaseStorage) RemoveDepartment(ctx context.Context, clinicID uint, name string) error {
	return s.withDepartments(ctx, clinicID, func(set *departmentSet) (string, string, error) {
		return set.remove(name)
	})
}

func (s *DatabaseStorage) GetDepartments(ctx context.Context, clinicID uint) ([]string, error) {
	clinic, err := s.GetClinic(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	if clinic == nil {
		return listOrDefault(nil), nil
	}
	return listOrDefault(clinic.Departments), nil
}

// Setup

func (s *DatabaseStorage) HasAnyUsers(ctx context.Context) (bool, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *DatabaseStorage) SetupFirstAdmin(ctx context.Context, req dto.SetupRequest) (*dto.SetupResult, error) {
	var result dto.SetupResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		count, err := users.Count(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrSetupComplete
		}

		now := s.now()
		clinic, err := s.clinics.WithTx(tx).Create(ctx, newClinic(req.Clinic, now))
		if err != nil {
			return fmt.Errorf("create clinic: %w", err)
		}

		admin := req.User
		admin.Role = models.RoleAdmin
		admin.ClinicID = &clinic.ID
		user, err := users.Create(ctx, newUser(admin, now))
		if err != nil {
			return translate(err)
		}

		result = dto.SetupResult{User: user, Clinic: clinic}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("First admin created", "clinic_id", result.Clinic.ID, "user_id", result.User.ID)
	return &result, nil
}
