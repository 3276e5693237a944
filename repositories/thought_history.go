package repositories

import (
	"context"

	"github.com/clinic-thoughts/models"
	"gorm.io/gorm"
)

// ThoughtHistoryRepository appends and reads history entries. There is no
// update or delete: the log is append-only.
type ThoughtHistoryRepository struct {
	db *gorm.DB
}

// NewThoughtHistoryRepository creates a new history repository instance
func NewThoughtHistoryRepository(db *gorm.DB) *ThoughtHistoryRepository {
	return &ThoughtHistoryRepository{db: db}
}

// WithTx returns a copy bound to a transaction
func (r *ThoughtHistoryRepository) WithTx(tx *gorm.DB) *ThoughtHistoryRepository {
	return &ThoughtHistoryRepository{db: tx}
}

// Append inserts a history entry
func (r *ThoughtHistoryRepository) Append(ctx context.Context, entry models.ThoughtHistory) (models.ThoughtHistory, error) {
	result := r.db.WithContext(ctx).Create(&entry)
	return entry, result.Error
}

// FindByThoughtID retrieves the history of a thought, newest first
func (r *ThoughtHistoryRepository) FindByThoughtID(ctx context.Context, thoughtID uint) ([]models.ThoughtHistory, error) {
	var entries []models.ThoughtHistory
	result := r.db.WithContext(ctx).
		Where("thought_id = ?", thoughtID).
		Order("edited_at DESC").
		Order("id DESC").
		Find(&entries)
	return entries, result.Error
}

// CountByChangeType counts the entries of one kind for a thought
func (r *ThoughtHistoryRepository) CountByChangeType(ctx context.Context, thoughtID uint, change models.ChangeType) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&models.ThoughtHistory{}).
		Where("thought_id = ? AND change_type = ?", thoughtID, change).
		Count(&count)
	return count, result.Error
}
