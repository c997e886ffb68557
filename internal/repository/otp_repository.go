package repository

import (
	"errors"
	"time"

	"github.com/labsphere/lab-management-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOtpRepository is a GORM implementation of OtpRepository
type GormOtpRepository struct {
	db *gorm.DB
}

// NewOtpRepository creates a new OtpRepository
func NewOtpRepository(db *gorm.DB) OtpRepository {
	return &GormOtpRepository{db: db}
}

// CreateEntry creates a new OTP entry
func (r *GormOtpRepository) CreateEntry(entry *models.OtpEntry) error {
	return r.db.Create(entry).Error
}

// FindLatestByKey finds the most recently created entry for a key
func (r *GormOtpRepository) FindLatestByKey(key string) (*models.OtpEntry, error) {
	var entry models.OtpEntry
	err := r.db.Where(map[string]interface{}{"key": key}).
		Order("created_at DESC, id DESC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// DeleteEntry deletes an entry by ID
func (r *GormOtpRepository) DeleteEntry(id uint64) error {
	return r.db.Delete(&models.OtpEntry{}, id).Error
}

// DeleteExpiredByKey deletes all entries for a key expired at the given time
func (r *GormOtpRepository) DeleteExpiredByKey(key string, now time.Time) error {
	return r.db.Where(map[string]interface{}{"key": key}).
		Where("expiry_time < ?", now).
		Delete(&models.OtpEntry{}).Error
}

// SaveProof records a verified flag, replacing any existing one for the same
// key and purpose
func (r *GormOtpRepository) SaveProof(proof *models.OtpProof) error {
	return r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}, {Name: "purpose"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"created_at": proof.CreatedAt}),
		}).
		Create(proof).Error
}

// ConsumeProof removes the flag for (key, purpose) and reports whether it
// existed. The single DELETE gives compare-and-delete semantics: of two
// racing consumers, exactly one observes RowsAffected > 0.
func (r *GormOtpRepository) ConsumeProof(key, purpose string) (bool, error) {
	result := r.db.Where(map[string]interface{}{"key": key, "purpose": purpose}).
		Delete(&models.OtpProof{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
