package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/labsphere/lab-management-api/internal/constants"
	"github.com/labsphere/lab-management-api/internal/models"
	"github.com/labsphere/lab-management-api/internal/notify"
	"github.com/labsphere/lab-management-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrSuperAdminNotFound = errors.New("no active super admin for this lab")
)

// Promotion statuses reported per member id by PromoteMembersToAdmin.
const (
	PromotionStatusPromoted = "promoted"
	PromotionStatusSkipped  = "skipped"
	PromotionStatusFailed   = "failed"
)

// SwapResult reports the outcome of a super admin swap.
type SwapResult struct {
	NewSuperAdminID uint64
	OldSuperAdminID uint64
	NewAdminRowID   uint64
}

// AdminPromotionResult is the per-id outcome of a batch admin promotion.
type AdminPromotionResult struct {
	MemberID uint64 `json:"member_id"`
	Status   string `json:"status"`
	Reason   string `json:"reason,omitempty"`
}

// PromotionService orchestrates role promotions: the all-or-nothing super
// admin swap and the batch member-to-admin promotion.
type PromotionService struct {
	roleRepo repository.RoleRepository
	userRepo repository.UserRepository
	tenancy  *TenancyService
	notifier notify.Notifier
}

// NewPromotionService creates a new PromotionService.
func NewPromotionService(roleRepo repository.RoleRepository, userRepo repository.UserRepository, tenancy *TenancyService, notifier notify.Notifier) *PromotionService {
	return &PromotionService{
		roleRepo: roleRepo,
		userRepo: userRepo,
		tenancy:  tenancy,
		notifier: notifier,
	}
}

// PromoteToSuperAdmin swaps the lab family's top authority to the candidate
// member inside one transaction: the candidate's member row is vacated, the
// current holder is demoted in place, and both directions reuse dormant
// history rows when the same person held the role before. Exactly one
// is_main row per lab survives the commit; any failure rolls the whole swap
// back.
func (s *PromotionService) PromoteToSuperAdmin(principal models.Principal, candidateMemberID uint64) (*SwapResult, error) {
	tenancy, err := s.tenancy.Resolve(principal.LabID)
	if err != nil {
		return nil, err
	}

	var result SwapResult
	var candidateUserID, demotedUserID uint64

	err = s.roleRepo.Transaction(func(tx repository.RoleRepository) error {
		candidate, err := tx.FindMemberByID(candidateMemberID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMemberNotFound
			}
			return fmt.Errorf("failed to find candidate member: %w", err)
		}
		if !candidate.Active() || !tenancy.Contains(candidate.LabID) {
			return ErrMemberNotFound
		}

		// Locking the holder row first serializes concurrent swaps on the
		// same lab.
		current, err := tx.FindActiveSuperAdminForUpdate(tenancy.MainLabID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSuperAdminNotFound
			}
			return fmt.Errorf("failed to find active super admin: %w", err)
		}

		// The candidate vacates its member slot; it is about to occupy the
		// super admin slot.
		candidate.MarkDeleted(principal.AdminRowID)
		if err := tx.UpdateMember(candidate); err != nil {
			return fmt.Errorf("failed to vacate candidate member row: %w", err)
		}

		current.IsMain = false
		if err := tx.UpdateSuperAdmin(current); err != nil {
			return fmt.Errorf("failed to demote current super admin: %w", err)
		}

		newSuper, err := s.placeCandidate(tx, tenancy.MainLabID, candidate)
		if err != nil {
			return err
		}

		newAdmin, err := s.placeDemoted(tx, tenancy, current, newSuper.ID)
		if err != nil {
			return err
		}

		candidateUserID = candidate.UserID
		demotedUserID = current.UserID
		result = SwapResult{
			NewSuperAdminID: newSuper.ID,
			OldSuperAdminID: current.ID,
			NewAdminRowID:   newAdmin.ID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(notify.Context{
		ActorName:      s.userName(demotedUserID),
		AffectedEntity: s.userName(candidateUserID),
		Message:        "Super admin authority was transferred",
	})

	return &result, nil
}

// placeCandidate makes the candidate the active super admin, reactivating
// the person's dormant holder row when one exists.
func (s *PromotionService) placeCandidate(tx repository.RoleRepository, mainLabID uint64, candidate *models.Member) (*models.SuperAdmin, error) {
	dormant, err := tx.FindDormantSuperAdmin(candidate.UserID, mainLabID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up dormant super admin: %w", err)
	}

	if dormant != nil {
		dormant.IsMain = true
		dormant.PasswordHash = candidate.PasswordHash
		dormant.EpochTime = time.Now().Unix()
		if err := tx.UpdateSuperAdmin(dormant); err != nil {
			return nil, fmt.Errorf("failed to reactivate super admin row: %w", err)
		}
		return dormant, nil
	}

	fresh := &models.SuperAdmin{
		UserID:       candidate.UserID,
		LabID:        mainLabID,
		PasswordHash: candidate.PasswordHash,
		IsMain:       true,
		EpochTime:    time.Now().Unix(),
	}
	if err := tx.CreateSuperAdmin(fresh); err != nil {
		return nil, fmt.Errorf("failed to create super admin row: %w", err)
	}
	return fresh, nil
}

// placeDemoted turns the demoted holder into an admin member, reactivating
// the person's dormant member row in whichever lab of the family it lives.
func (s *PromotionService) placeDemoted(tx repository.RoleRepository, tenancy *Tenancy, demoted *models.SuperAdmin, newSuperAdminID uint64) (*models.Member, error) {
	dormant, err := tx.FindDormantMemberByUser(demoted.UserID, tenancy.BranchIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to look up dormant member: %w", err)
	}

	if dormant != nil {
		dormant.Revert()
		dormant.Role = models.MemberRoleAdmin
		dormant.PromotedBy = newSuperAdminID
		if err := tx.UpdateMember(dormant); err != nil {
			return nil, fmt.Errorf("failed to reactivate member row: %w", err)
		}
		return dormant, nil
	}

	fresh := &models.Member{
		UserID:       demoted.UserID,
		LabID:        tenancy.MainLabID,
		Role:         models.MemberRoleAdmin,
		PasswordHash: demoted.PasswordHash,
		CreatedBy:    newSuperAdminID,
		PromotedBy:   newSuperAdminID,
		EpochTime:    time.Now().Unix(),
	}
	if err := tx.CreateMember(fresh); err != nil {
		return nil, fmt.Errorf("failed to create admin member row: %w", err)
	}
	return fresh, nil
}

// PromoteMembersToAdmin promotes each member id independently; unlike the
// super admin swap, partial success is expected. Ids already holding the
// admin role are reported as skipped, not failed, so client retries stay
// harmless.
func (s *PromotionService) PromoteMembersToAdmin(principal models.Principal, memberIDs []uint64) ([]AdminPromotionResult, error) {
	tenancy, err := s.tenancy.Resolve(principal.LabID)
	if err != nil {
		return nil, err
	}

	results := make([]AdminPromotionResult, 0, len(memberIDs))
	for _, id := range memberIDs {
		results = append(results, s.promoteOneToAdmin(principal, tenancy, id))
	}
	return results, nil
}

func (s *PromotionService) promoteOneToAdmin(principal models.Principal, tenancy *Tenancy, memberID uint64) AdminPromotionResult {
	member, err := s.roleRepo.FindMemberByID(memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AdminPromotionResult{MemberID: memberID, Status: PromotionStatusFailed, Reason: "member not found"}
		}
		return AdminPromotionResult{MemberID: memberID, Status: PromotionStatusFailed, Reason: "lookup failed"}
	}
	if !member.Active() || !tenancy.Contains(member.LabID) {
		return AdminPromotionResult{MemberID: memberID, Status: PromotionStatusFailed, Reason: "member not found"}
	}

	if member.Role == models.MemberRoleAdmin {
		return AdminPromotionResult{MemberID: memberID, Status: PromotionStatusSkipped, Reason: "already admin"}
	}

	member.Role = models.MemberRoleAdmin
	member.PromotedBy = principal.AdminRowID
	if err := s.roleRepo.UpdateMember(member); err != nil {
		return AdminPromotionResult{MemberID: memberID, Status: PromotionStatusFailed, Reason: "update failed"}
	}

	s.notifier.Notify(notify.Context{
		ActorName:      s.actorName(principal),
		AffectedEntity: s.userName(member.UserID),
		Message:        "Member was promoted to admin",
	})

	return AdminPromotionResult{MemberID: memberID, Status: PromotionStatusPromoted}
}

func (s *PromotionService) userName(userID uint64) string {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return ""
	}
	return user.Name
}

// actorName resolves the display name behind a principal, best-effort.
func (s *PromotionService) actorName(principal models.Principal) string {
	if principal.Role == constants.RoleSuperAdmin {
		admin, err := s.roleRepo.FindSuperAdminByID(principal.AdminRowID)
		if err != nil {
			return ""
		}
		return s.userName(admin.UserID)
	}

	member, err := s.roleRepo.FindMemberByID(principal.AdminRowID)
	if err != nil {
		return ""
	}
	return s.userName(member.UserID)
}
