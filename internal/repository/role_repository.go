package repository

import (
	"errors"

	"github.com/labsphere/lab-management-api/internal/database"
	"github.com/labsphere/lab-management-api/internal/models"
	"github.com/labsphere/lab-management-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRoleRepository is a GORM implementation of RoleRepository
type GormRoleRepository struct {
	db *gorm.DB
}

// NewRoleRepository creates a new RoleRepository
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &GormRoleRepository{db: db}
}

// Transaction runs fn against a transaction-scoped repository. All writes
// made through the scoped repository commit together or not at all.
func (r *GormRoleRepository) Transaction(fn func(tx RoleRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormRoleRepository{db: tx})
	})
}

// CreateSuperAdmin creates a new super admin row
func (r *GormRoleRepository) CreateSuperAdmin(admin *models.SuperAdmin) error {
	return r.db.Create(admin).Error
}

// FindSuperAdminByID finds a super admin row by ID
func (r *GormRoleRepository) FindSuperAdminByID(id uint64) (*models.SuperAdmin, error) {
	var admin models.SuperAdmin
	if err := r.db.First(&admin, id).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

// FindActiveSuperAdmin finds the row holding the top authority of a main lab
func (r *GormRoleRepository) FindActiveSuperAdmin(mainLabID uint64) (*models.SuperAdmin, error) {
	var admin models.SuperAdmin
	if err := r.db.Where("lab_id = ? AND is_main = ?", mainLabID, true).
		First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

// FindActiveSuperAdminForUpdate locks the active holder row for the duration
// of the surrounding transaction. Two concurrent swaps on the same lab
// serialize here, so at most one is_main row can ever be committed per lab.
func (r *GormRoleRepository) FindActiveSuperAdminForUpdate(mainLabID uint64) (*models.SuperAdmin, error) {
	query := r.db
	// sqlite has no row locks and rejects FOR UPDATE; its single-writer
	// model gives the same guarantee in tests
	if r.db.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var admin models.SuperAdmin
	if err := query.Where("lab_id = ? AND is_main = ?", mainLabID, true).
		First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

// FindActiveSuperAdminByUser finds the active holder row for a user, if any
func (r *GormRoleRepository) FindActiveSuperAdminByUser(userID, mainLabID uint64) (*models.SuperAdmin, error) {
	var admin models.SuperAdmin
	err := r.db.Where("user_id = ? AND lab_id = ? AND is_main = ?", userID, mainLabID, true).
		First(&admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// FindDormantSuperAdmin finds a demoted holder row that can be reactivated
func (r *GormRoleRepository) FindDormantSuperAdmin(userID, mainLabID uint64) (*models.SuperAdmin, error) {
	var admin models.SuperAdmin
	err := r.db.Where("user_id = ? AND lab_id = ? AND is_main = ?", userID, mainLabID, false).
		First(&admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// CountSuperAdmins counts all holder rows, active and demoted, for a lab
func (r *GormRoleRepository) CountSuperAdmins(mainLabID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.SuperAdmin{}).
		Where("lab_id = ?", mainLabID).
		Count(&count).Error
	return count, err
}

// CountActiveSuperAdmins counts rows with is_main set for a lab
func (r *GormRoleRepository) CountActiveSuperAdmins(mainLabID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.SuperAdmin{}).
		Where("lab_id = ? AND is_main = ?", mainLabID, true).
		Count(&count).Error
	return count, err
}

// UpdateSuperAdmin updates a super admin row
func (r *GormRoleRepository) UpdateSuperAdmin(admin *models.SuperAdmin) error {
	// Save alone skips is_main when it flips to the zero value
	return r.db.Model(admin).
		Select("user_id", "lab_id", "password_hash", "is_main", "epoch_time").
		Updates(admin).Error
}

// CreateMember creates a new member row
func (r *GormRoleRepository) CreateMember(member *models.Member) error {
	return r.db.Create(member).Error
}

// FindMemberByID finds a member row by ID
func (r *GormRoleRepository) FindMemberByID(id uint64) (*models.Member, error) {
	var member models.Member
	if err := r.db.First(&member, id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// FindActiveMemberByUser finds the user's active member row within the labs
func (r *GormRoleRepository) FindActiveMemberByUser(userID uint64, labIDs []uint64) (*models.Member, error) {
	var member models.Member
	err := r.db.Where("user_id = ? AND lab_id IN ? AND deleted_by = ?", userID, labIDs, 0).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

// FindDormantMemberByUser finds a soft-deleted member row that can be
// reactivated instead of inserting a duplicate
func (r *GormRoleRepository) FindDormantMemberByUser(userID uint64, labIDs []uint64) (*models.Member, error) {
	var member models.Member
	err := r.db.Where("user_id = ? AND lab_id IN ? AND deleted_by <> ?", userID, labIDs, 0).
		Order("id DESC").
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

// ListMembers lists active member rows within the given labs
func (r *GormRoleRepository) ListMembers(labIDs []uint64, params utils.PaginationParams) ([]models.Member, int64, error) {
	if len(labIDs) == 0 {
		return []models.Member{}, 0, nil
	}

	query := r.db.Model(&models.Member{}).
		Where("lab_id IN ? AND deleted_by = ?", labIDs, 0)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var members []models.Member
	if err := query.Preload("User").Preload("Lab").
		Order("id ASC").
		Scopes(database.Paginate(params)).
		Find(&members).Error; err != nil {
		return nil, 0, err
	}

	return members, total, nil
}

// UpdateMember updates a member row
func (r *GormRoleRepository) UpdateMember(member *models.Member) error {
	// Explicit column list so reverts writing zero values (deleted_by = 0,
	// deleted_at = NULL) reach the database
	return r.db.Model(member).
		Select("user_id", "lab_id", "role", "password_hash", "created_by",
			"promoted_by", "epoch_time", "deleted_by", "deleted_at").
		Updates(member).Error
}

// DeleteMemberPermanently hard-deletes a member row
func (r *GormRoleRepository) DeleteMemberPermanently(id uint64) error {
	return r.db.Unscoped().Delete(&models.Member{}, id).Error
}
