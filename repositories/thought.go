package repositories

import (
	"context"

	"github.com/clinic-thoughts/dto"
	"github.com/clinic-thoughts/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ThoughtRepository handles database operations for thoughts
type ThoughtRepository struct {
	db *gorm.DB
}

// NewThoughtRepository creates a new thought repository instance
func NewThoughtRepository(db *gorm.DB) *ThoughtRepository {
	return &ThoughtRepository{db: db}
}

// WithTx returns a copy bound to a transaction
func (r *ThoughtRepository) WithTx(tx *gorm.DB) *ThoughtRepository {
	return &ThoughtRepository{db: tx}
}

// FindByID retrieves a thought by its ID, deleted or not
func (r *ThoughtRepository) FindByID(ctx context.Context, id uint) (models.Thought, error) {
	var thought models.Thought
	result := r.db.WithContext(ctx).First(&thought, "id = ?", id)
	return thought, result.Error
}

// FindByIDForUpdate retrieves a thought and locks its row
func (r *ThoughtRepository) FindByIDForUpdate(ctx context.Context, id uint) (models.Thought, error) {
	var thought models.Thought
	result := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&thought, "id = ?", id)
	return thought, result.Error
}

// FindByClinic retrieves the thoughts of a clinic, newest first, applying
// the filters in the same order the in-memory store does
func (r *ThoughtRepository) FindByClinic(
	ctx context.Context,
	clinicID uint,
	includeDeleted bool,
	filters dto.ThoughtFilters) ([]models.Thought, error) {

	var thoughts []models.Thought

	db := r.db.WithContext(ctx).Model(&models.Thought{}).Where("clinic_id = ?", clinicID)

	if !includeDeleted {
		db = db.Where("is_deleted = ?", false)
	}

	// Bounds are compared in UTC; SQLite orders timestamps as text
	from, to := filters.Bounds()
	if from != nil {
		db = db.Where("created_at >= ?", from.UTC())
	}
	if to != nil {
		db = db.Where("created_at <= ?", to.UTC())
	}

	if filters.UserID != nil {
		db = db.Where("author_id = ?", *filters.UserID)
	}

	if filters.Department != nil {
		db = db.Where("department = ?", *filters.Department)
	}

	if filters.ExcludesRead() {
		db = db.Where("is_read = ?", false)
	}

	// Ties keep insertion order
	result := db.Order("created_at DESC").Order("id ASC").Find(&thoughts)
	return thoughts, result.Error
}

// Create inserts a new thought into the database
func (r *ThoughtRepository) Create(ctx context.Context, thought models.Thought) (models.Thought, error) {
	result := r.db.WithContext(ctx).Create(&thought)
	return thought, result.Error
}

// Update modifies an existing thought
func (r *ThoughtRepository) Update(ctx context.Context, thought models.Thought) error {
	return r.db.WithContext(ctx).Save(&thought).Error
}

// ReassignDepartment moves every thought of a clinic filed under from to to
func (r *ThoughtRepository) ReassignDepartment(ctx context.Context, clinicID uint, from, to string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Thought{}).
		Where("clinic_id = ? AND department = ?", clinicID, from).
		Update("department", to)
	return result.RowsAffected, result.Error
}

// CountUnread counts live, unread thoughts of a clinic
func (r *ThoughtRepository) CountUnread(ctx context.Context, clinicID uint) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&models.Thought{}).
		Where("clinic_id = ? AND is_deleted = ? AND is_read = ?", clinicID, false, false).
		Count(&count)
	return count, result.Error
}
