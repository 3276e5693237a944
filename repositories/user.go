package repositories

import (
	"context"

	"github.com/clinic-thoughts/models"
	"gorm.io/gorm"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a copy bound to a transaction
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

// FindByID retrieves a user by its ID
func (r *UserRepository) FindByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).First(&user, "id = ?", id)
	return user, result.Error
}

// FindByUsername retrieves a user by exact username
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).Where("username = ?", username).First(&user)
	return user, result.Error
}

// FindByEmail retrieves a user by exact email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).Where("email = ?", email).First(&user)
	return user, result.Error
}

// FindByIDs retrieves every user whose ID is in ids
func (r *UserRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users)
	return users, result.Error
}

// FindByClinicID retrieves all users of a clinic
func (r *UserRepository) FindByClinicID(ctx context.Context, clinicID uint) ([]models.User, error) {
	var users []models.User
	result := r.db.WithContext(ctx).Where("clinic_id = ?", clinicID).Order("id").Find(&users)
	return users, result.Error
}

// Create inserts a new user into the database
func (r *UserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	result := r.db.WithContext(ctx).Create(&user)
	return user, result.Error
}

// Update modifies an existing user
func (r *UserRepository) Update(ctx context.Context, user models.User) error {
	return r.db.WithContext(ctx).Save(&user).Error
}

// Delete removes a user permanently
func (r *UserRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}

// Count counts all users
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.User{}).Count(&count)
	return count, result.Error
}
