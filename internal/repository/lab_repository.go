package repository

import (
	"github.com/labsphere/lab-management-api/internal/models"
	"gorm.io/gorm"
)

// GormLabRepository is a GORM implementation of LabRepository
type GormLabRepository struct {
	db *gorm.DB
}

// NewLabRepository creates a new LabRepository
func NewLabRepository(db *gorm.DB) LabRepository {
	return &GormLabRepository{db: db}
}

// Create creates a new lab
func (r *GormLabRepository) Create(lab *models.Lab) error {
	return r.db.Create(lab).Error
}

// FindByID finds a lab by ID
func (r *GormLabRepository) FindByID(id uint64) (*models.Lab, error) {
	var lab models.Lab
	if err := r.db.First(&lab, id).Error; err != nil {
		return nil, err
	}
	return &lab, nil
}

// FindByHFID finds a lab by its HF identifier
func (r *GormLabRepository) FindByHFID(hfid string) (*models.Lab, error) {
	var lab models.Lab
	if err := r.db.Where("hfid = ?", hfid).First(&lab).Error; err != nil {
		return nil, err
	}
	return &lab, nil
}

// FindByEmail finds a lab by email
func (r *GormLabRepository) FindByEmail(email string) (*models.Lab, error) {
	var lab models.Lab
	if err := r.db.Where("email = ?", email).First(&lab).Error; err != nil {
		return nil, err
	}
	return &lab, nil
}

// ListBranchIDs lists the ids of all labs referencing the given main lab
func (r *GormLabRepository) ListBranchIDs(mainLabID uint64) ([]uint64, error) {
	var ids []uint64
	if err := r.db.Model(&models.Lab{}).
		Where("lab_reference = ?", mainLabID).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ListBranches lists all branch labs of a main lab
func (r *GormLabRepository) ListBranches(mainLabID uint64) ([]models.Lab, error) {
	var branches []models.Lab
	if err := r.db.Where("lab_reference = ?", mainLabID).
		Order("id ASC").
		Find(&branches).Error; err != nil {
		return nil, err
	}
	return branches, nil
}

// Update updates a lab
func (r *GormLabRepository) Update(lab *models.Lab) error {
	return r.db.Save(lab).Error
}
