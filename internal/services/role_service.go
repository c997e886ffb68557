package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/labsphere/lab-management-api/internal/constants"
	"github.com/labsphere/lab-management-api/internal/models"
	"github.com/labsphere/lab-management-api/internal/notify"
	"github.com/labsphere/lab-management-api/internal/repository"
	"github.com/labsphere/lab-management-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrSuperAdminExists     = errors.New("super admin already exists for this lab")
	ErrDuplicateRole        = errors.New("user already holds an active role in this lab family")
	ErrMemberNotFound       = errors.New("member not found")
	ErrMemberAlreadyDeleted = errors.New("member is already deleted")
	ErrMemberNotDeleted     = errors.New("member is not deleted")
	ErrScopeViolation       = errors.New("target lab is outside the acting lab's scope")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// RoleService is the canonical directory of super admin and member records.
// It owns the role invariants: one super admin bootstrap per lab, at most one
// active role per user per lab family, and the soft-delete lifecycle.
type RoleService struct {
	roleRepo repository.RoleRepository
	userRepo repository.UserRepository
	tenancy  *TenancyService
	notifier notify.Notifier
}

// NewRoleService creates a new RoleService.
func NewRoleService(roleRepo repository.RoleRepository, userRepo repository.UserRepository, tenancy *TenancyService, notifier notify.Notifier) *RoleService {
	return &RoleService{
		roleRepo: roleRepo,
		userRepo: userRepo,
		tenancy:  tenancy,
		notifier: notifier,
	}
}

// CreateSuperAdmin bootstraps the top authority of a lab. It is a one-time
// operation: any existing holder row, active or demoted, makes it fail.
func (s *RoleService) CreateSuperAdmin(labID, userID uint64, password string) (*models.SuperAdmin, error) {
	if len(password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	tenancy, err := s.tenancy.Resolve(labID)
	if err != nil {
		return nil, err
	}

	count, err := s.roleRepo.CountSuperAdmins(tenancy.MainLabID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing super admins: %w", err)
	}
	if count > 0 {
		return nil, ErrSuperAdminExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	admin := &models.SuperAdmin{
		UserID:       userID,
		LabID:        tenancy.MainLabID,
		PasswordHash: string(hashedPassword),
		IsMain:       true,
		EpochTime:    time.Now().Unix(),
	}

	if err := s.roleRepo.CreateSuperAdmin(admin); err != nil {
		return nil, fmt.Errorf("failed to create super admin: %w", err)
	}

	s.notifier.Notify(notify.Context{
		ActorName:      s.userName(userID),
		AffectedEntity: fmt.Sprintf("lab %d", tenancy.MainLabID),
		Message:        "Super admin account created",
	})

	return admin, nil
}

// AddMemberInput represents parameters to add a member to a lab.
type AddMemberInput struct {
	LabID    uint64
	HFID     string
	Password string
}

// AddMember creates a member record for the identified user. The target lab
// must be inside the acting principal's scope, and the user must not hold any
// active role anywhere in the lab family.
func (s *RoleService) AddMember(principal models.Principal, input AddMemberInput) (*models.Member, error) {
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	tenancy, err := s.tenancy.Resolve(principal.LabID)
	if err != nil {
		return nil, err
	}
	if !tenancy.Contains(input.LabID) {
		return nil, ErrScopeViolation
	}

	user, err := s.userRepo.FindByHFID(input.HFID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.checkNoActiveRole(user.ID, tenancy); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	member := &models.Member{
		UserID:       user.ID,
		LabID:        input.LabID,
		Role:         models.MemberRoleMember,
		PasswordHash: string(hashedPassword),
		CreatedBy:    principal.AdminRowID,
		EpochTime:    time.Now().Unix(),
	}

	if err := s.roleRepo.CreateMember(member); err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	s.notifier.Notify(notify.Context{
		ActorName:      s.actorName(principal),
		AffectedEntity: user.Name,
		Message:        fmt.Sprintf("%s was added to lab %d", user.Name, input.LabID),
	})

	return member, nil
}

// SoftDeleteMember deactivates a member, recording who removed it. The row
// stays behind for audit and for later revert.
func (s *RoleService) SoftDeleteMember(principal models.Principal, memberID uint64) error {
	member, err := s.loadScopedMember(principal, memberID)
	if err != nil {
		return err
	}
	if !member.Active() {
		return ErrMemberAlreadyDeleted
	}

	member.MarkDeleted(principal.AdminRowID)
	if err := s.roleRepo.UpdateMember(member); err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}

	s.notifier.Notify(notify.Context{
		ActorName:      s.actorName(principal),
		AffectedEntity: s.userName(member.UserID),
		Message:        "Member was removed",
	})

	return nil
}

// RevertMember reactivates a soft-deleted member with the supplied role.
// PromotedBy is set only when the revert target role is admin.
func (s *RoleService) RevertMember(principal models.Principal, memberID uint64, newRole models.MemberRole) (*models.Member, error) {
	member, err := s.loadScopedMember(principal, memberID)
	if err != nil {
		return nil, err
	}
	if member.Active() {
		return nil, ErrMemberNotDeleted
	}

	member.Revert()
	member.Role = newRole
	if newRole == models.MemberRoleAdmin {
		member.PromotedBy = principal.AdminRowID
	}

	if err := s.roleRepo.UpdateMember(member); err != nil {
		return nil, fmt.Errorf("failed to revert member: %w", err)
	}

	s.notifier.Notify(notify.Context{
		ActorName:      s.actorName(principal),
		AffectedEntity: s.userName(member.UserID),
		Message:        fmt.Sprintf("Member was restored as %s", newRole),
	})

	return member, nil
}

// PermanentlyDeleteMember hard-removes a member row. Only rows that have
// already been soft-deleted may be removed for good.
func (s *RoleService) PermanentlyDeleteMember(principal models.Principal, memberID uint64) error {
	member, err := s.loadScopedMember(principal, memberID)
	if err != nil {
		return err
	}
	if member.Active() {
		return ErrMemberNotDeleted
	}

	if err := s.roleRepo.DeleteMemberPermanently(member.ID); err != nil {
		return fmt.Errorf("failed to permanently delete member: %w", err)
	}

	s.notifier.Notify(notify.Context{
		ActorName:      s.actorName(principal),
		AffectedEntity: s.userName(member.UserID),
		Message:        "Member record was permanently removed",
	})

	return nil
}

// ListMembers returns active members across the acting principal's lab family.
func (s *RoleService) ListMembers(principal models.Principal, params utils.PaginationParams) ([]models.Member, int64, error) {
	tenancy, err := s.tenancy.Resolve(principal.LabID)
	if err != nil {
		return nil, 0, err
	}
	return s.roleRepo.ListMembers(tenancy.BranchIDs, params)
}

// checkNoActiveRole enforces the at-most-one-active-role invariant across a
// lab family.
func (s *RoleService) checkNoActiveRole(userID uint64, tenancy *Tenancy) error {
	admin, err := s.roleRepo.FindActiveSuperAdminByUser(userID, tenancy.MainLabID)
	if err != nil {
		return fmt.Errorf("failed to check super admin role: %w", err)
	}
	if admin != nil {
		return ErrDuplicateRole
	}

	member, err := s.roleRepo.FindActiveMemberByUser(userID, tenancy.BranchIDs)
	if err != nil {
		return fmt.Errorf("failed to check member role: %w", err)
	}
	if member != nil {
		return ErrDuplicateRole
	}

	return nil
}

// loadScopedMember loads a member and verifies it belongs to the acting
// principal's lab family. Out-of-scope rows surface as not found so their
// existence does not leak across tenants.
func (s *RoleService) loadScopedMember(principal models.Principal, memberID uint64) (*models.Member, error) {
	member, err := s.roleRepo.FindMemberByID(memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}

	tenancy, err := s.tenancy.Resolve(principal.LabID)
	if err != nil {
		return nil, err
	}
	if !tenancy.Contains(member.LabID) {
		return nil, ErrMemberNotFound
	}

	return member, nil
}

func (s *RoleService) userName(userID uint64) string {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return ""
	}
	return user.Name
}

// actorName resolves the display name behind a principal, best-effort.
func (s *RoleService) actorName(principal models.Principal) string {
	var userID uint64
	if principal.Role == constants.RoleSuperAdmin {
		admin, err := s.roleRepo.FindSuperAdminByID(principal.AdminRowID)
		if err != nil {
			return ""
		}
		userID = admin.UserID
	} else {
		member, err := s.roleRepo.FindMemberByID(principal.AdminRowID)
		if err != nil {
			return ""
		}
		userID = member.UserID
	}
	return s.userName(userID)
}
