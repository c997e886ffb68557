package repository

import (
	"github.com/labsphere/lab-management-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a read-only GORM implementation of UserRepository.
// The identity platform owns the users table; this service never writes it.
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByHFID finds a user by HF identifier
func (r *GormUserRepository) FindByHFID(hfid string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("hfid = ?", hfid).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
