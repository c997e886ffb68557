package repository

import (
	"time"

	"github.com/labsphere/lab-management-api/internal/models"
	"github.com/labsphere/lab-management-api/internal/utils"
)

// LabRepository defines the interface for lab (tenant) data access
type LabRepository interface {
	// Create creates a new lab
	Create(lab *models.Lab) error

	// FindByID finds a lab by ID
	FindByID(id uint64) (*models.Lab, error)

	// FindByHFID finds a lab by its HF identifier
	FindByHFID(hfid string) (*models.Lab, error)

	// FindByEmail finds a lab by email
	FindByEmail(email string) (*models.Lab, error)

	// ListBranchIDs lists the ids of all labs whose lab_reference points at
	// the given main lab
	ListBranchIDs(mainLabID uint64) ([]uint64, error)

	// ListBranches lists all branch labs of a main lab
	ListBranches(mainLabID uint64) ([]models.Lab, error)

	// Update updates a lab
	Update(lab *models.Lab) error
}

// RoleRepository defines the interface for super admin and member data
// access. Transaction yields a repository scoped to one database transaction
// so multi-row role swaps commit or roll back as a unit.
type RoleRepository interface {
	// Transaction runs fn against a transaction-scoped repository
	Transaction(fn func(tx RoleRepository) error) error

	// CreateSuperAdmin creates a new super admin row
	CreateSuperAdmin(admin *models.SuperAdmin) error

	// FindSuperAdminByID finds a super admin row by ID
	FindSuperAdminByID(id uint64) (*models.SuperAdmin, error)

	// FindActiveSuperAdmin finds the row holding the top authority of a main lab
	FindActiveSuperAdmin(mainLabID uint64) (*models.SuperAdmin, error)

	// FindActiveSuperAdminForUpdate is FindActiveSuperAdmin with a row-level
	// write lock; it must be called inside a Transaction
	FindActiveSuperAdminForUpdate(mainLabID uint64) (*models.SuperAdmin, error)

	// FindActiveSuperAdminByUser finds the active holder row for a user, if any
	FindActiveSuperAdminByUser(userID, mainLabID uint64) (*models.SuperAdmin, error)

	// FindDormantSuperAdmin finds a demoted holder row for a user that can be
	// reactivated instead of inserting a duplicate; returns (nil, nil) when
	// no such row exists
	FindDormantSuperAdmin(userID, mainLabID uint64) (*models.SuperAdmin, error)

	// CountSuperAdmins counts all holder rows, active and demoted, for a lab
	CountSuperAdmins(mainLabID uint64) (int64, error)

	// CountActiveSuperAdmins counts rows with is_main set for a lab
	CountActiveSuperAdmins(mainLabID uint64) (int64, error)

	// UpdateSuperAdmin updates a super admin row
	UpdateSuperAdmin(admin *models.SuperAdmin) error

	// CreateMember creates a new member row
	CreateMember(member *models.Member) error

	// FindMemberByID finds a member row by ID
	FindMemberByID(id uint64) (*models.Member, error)

	// FindActiveMemberByUser finds the user's active member row within the
	// given labs; returns (nil, nil) when the user holds none
	FindActiveMemberByUser(userID uint64, labIDs []uint64) (*models.Member, error)

	// FindDormantMemberByUser finds a soft-deleted member row for the user
	// within the given labs that can be reactivated; returns (nil, nil) when
	// no such row exists
	FindDormantMemberByUser(userID uint64, labIDs []uint64) (*models.Member, error)

	// ListMembers lists active member rows within the given labs
	ListMembers(labIDs []uint64, params utils.PaginationParams) ([]models.Member, int64, error)

	// UpdateMember updates a member row
	UpdateMember(member *models.Member) error

	// DeleteMemberPermanently hard-deletes a member row
	DeleteMemberPermanently(id uint64) error
}

// OtpRepository defines the interface for OTP entry and proof data access
type OtpRepository interface {
	// CreateEntry creates a new OTP entry
	CreateEntry(entry *models.OtpEntry) error

	// FindLatestByKey finds the most recently created entry for a key;
	// returns (nil, nil) when the key has no entries
	FindLatestByKey(key string) (*models.OtpEntry, error)

	// DeleteEntry deletes an entry by ID
	DeleteEntry(id uint64) error

	// DeleteExpiredByKey deletes all entries for a key expired at the given time
	DeleteExpiredByKey(key string, now time.Time) error

	// SaveProof records a purpose-scoped verified flag, replacing any
	// existing flag for the same key and purpose
	SaveProof(proof *models.OtpProof) error

	// ConsumeProof atomically removes the flag for (key, purpose) and
	// reports whether it existed
	ConsumeProof(key, purpose string) (bool, error)
}

// UserRepository defines read-only access to the global identity table
type UserRepository interface {
	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByHFID finds a user by HF identifier
	FindByHFID(hfid string) (*models.User, error)
}
