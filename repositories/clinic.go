package repositories

import (
	"context"

	"github.com/clinic-thoughts/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClinicRepository handles database operations for clinics
type ClinicRepository struct {
	db *gorm.DB
}

// NewClinicRepository creates a new clinic repository instance
func NewClinicRepository(db *gorm.DB) *ClinicRepository {
	return &ClinicRepository{db: db}
}

// WithTx returns a copy bound to a transaction
func (r *ClinicRepository) WithTx(tx *gorm.DB) *ClinicRepository {
	return &ClinicRepository{db: tx}
}

// FindAll retrieves all clinics
func (r *ClinicRepository) FindAll(ctx context.Context) ([]models.Clinic, error) {
	var clinics []models.Clinic
	result := r.db.WithContext(ctx).Order("id").Find(&clinics)
	return clinics, result.Error
}

// FindByID retrieves a clinic by its ID
func (r *ClinicRepository) FindByID(ctx context.Context, id uint) (models.Clinic, error) {
	var clinic models.Clinic
	result := r.db.WithContext(ctx).First(&clinic, "id = ?", id)
	return clinic, result.Error
}

// FindByIDForUpdate retrieves a clinic and locks its row until the
// surrounding transaction ends
func (r *ClinicRepository) FindByIDForUpdate(ctx context.Context, id uint) (models.Clinic, error) {
	var clinic models.Clinic
	result := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&clinic, "id = ?", id)
	return clinic, result.Error
}

// Create inserts a new clinic into the database
func (r *ClinicRepository) Create(ctx context.Context, clinic models.Clinic) (models.Clinic, error) {
	result := r.db.WithContext(ctx).Create(&clinic)
	return clinic, result.Error
}

// Update modifies an existing clinic
func (r *ClinicRepository) Update(ctx context.Context, clinic models.Clinic) error {
	return r.db.WithContext(ctx).Save(&clinic).Error
}

// UpdateDepartments replaces the department list of a clinic
func (r *ClinicRepository) UpdateDepartments(ctx context.Context, id uint, departments []string) error {
	return r.db.WithContext(ctx).
		Model(&models.Clinic{ID: id}).
		Update("departments", datatypes.JSONSlice[string](departments)).Error
}

// Delete removes a clinic
func (r *ClinicRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.Clinic{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}
