package services

import (
	"errors"
	"fmt"
	"strings"
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
	ErrLabEmailTaken     = errors.New("a lab with this email already exists")
	ErrInvalidLabName    = errors.New("lab name cannot be empty")
	ErrNotABranch        = errors.New("lab is not a branch")
	ErrLabAlreadyDeleted = errors.New("lab is already deleted")
	ErrLabNotDeleted     = errors.New("lab is not deleted")
	ErrOtpProofRequired  = errors.New("otp proof required")
)

// LabService manages lab tenants: main lab registration and the branch
// lifecycle. Registration and branch creation are OTP-gated; each consumes a
// purpose-scoped proof recorded by a prior successful verification.
type LabService struct {
	labRepo  repository.LabRepository
	otpSvc   *OtpService
	tenancy  *TenancyService
	notifier notify.Notifier
}

// NewLabService creates a new LabService.
func NewLabService(labRepo repository.LabRepository, otpSvc *OtpService, tenancy *TenancyService, notifier notify.Notifier) *LabService {
	return &LabService{
		labRepo:  labRepo,
		otpSvc:   otpSvc,
		tenancy:  tenancy,
		notifier: notifier,
	}
}

// RegisterLabInput represents parameters to register a main lab.
type RegisterLabInput struct {
	Name     string
	Email    string
	Phone    string
	Pincode  string
	Address  string
	Password string
}

// RegisterLab creates a main lab. The email must have passed OTP
// verification for the signup purpose; the proof is consumed here so a
// second registration with the same proof fails.
func (s *LabService) RegisterLab(input RegisterLabInput) (*models.Lab, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidLabName
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	consumed, err := s.otpSvc.Consume(input.Email, constants.OtpPurposeLabSignup)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, ErrOtpProofRequired
	}

	if _, err := s.labRepo.FindByEmail(input.Email); err == nil {
		return nil, ErrLabEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check lab email: %w", err)
	}

	lab, err := s.buildLab(input.Name, input.Email, input.Phone, input.Pincode, input.Address, input.Password, 0)
	if err != nil {
		return nil, err
	}

	if err := s.labRepo.Create(lab); err != nil {
		return nil, fmt.Errorf("failed to create lab: %w", err)
	}

	s.notifier.Notify(notify.Context{
		ActorName:      lab.Name,
		AffectedEntity: lab.Name,
		Message:        "Lab registered",
	})

	return lab, nil
}

// CreateBranchInput represents parameters to create a branch lab.
type CreateBranchInput struct {
	Name     string
	Email    string
	Phone    string
	Pincode  string
	Address  string
	Password string
}

// CreateBranch creates a branch under the acting principal's main lab. The
// gate consumes the main lab's OTP proof for the branch-creation purpose.
func (s *LabService) CreateBranch(principal models.Principal, input CreateBranchInput) (*models.Lab, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidLabName
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	tenancy, err := s.tenancy.Resolve(principal.LabID)
	if err != nil {
		return nil, err
	}

	mainLab, err := s.labRepo.FindByID(tenancy.MainLabID)
	if err != nil {
		return nil, fmt.Errorf("failed to find main lab: %w", err)
	}

	consumed, err := s.otpSvc.Consume(mainLab.Email, constants.OtpPurposeCreateBranch)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, ErrOtpProofRequired
	}

	branch, err := s.buildLab(input.Name, input.Email, input.Phone, input.Pincode, input.Address, input.Password, tenancy.MainLabID)
	if err != nil {
		return nil, err
	}

	if err := s.labRepo.Create(branch); err != nil {
		return nil, fmt.Errorf("failed to create branch: %w", err)
	}

	s.notifier.Notify(notify.Context{
		ActorName:      mainLab.Name,
		AffectedEntity: branch.Name,
		Message:        fmt.Sprintf("Branch %s was created", branch.Name),
	})

	return branch, nil
}

// DeleteBranch soft-deletes a branch lab. Main labs cannot be deleted
// through this path.
func (s *LabService) DeleteBranch(principal models.Principal, branchID uint64) error {
	branch, err := s.loadScopedBranch(principal, branchID)
	if err != nil {
		return err
	}
	if !branch.Active() {
		return ErrLabAlreadyDeleted
	}

	branch.MarkDeleted(principal.AdminRowID)
	if err := s.labRepo.Update(branch); err != nil {
		return fmt.Errorf("failed to delete branch: %w", err)
	}

	s.notifier.Notify(notify.Context{
		ActorName:      "",
		AffectedEntity: branch.Name,
		Message:        fmt.Sprintf("Branch %s was removed", branch.Name),
	})

	return nil
}

// RevertBranch reactivates a soft-deleted branch lab.
func (s *LabService) RevertBranch(principal models.Principal, branchID uint64) (*models.Lab, error) {
	branch, err := s.loadScopedBranch(principal, branchID)
	if err != nil {
		return nil, err
	}
	if branch.Active() {
		return nil, ErrLabNotDeleted
	}

	branch.Deletion.Revert()
	if err := s.labRepo.Update(branch); err != nil {
		return nil, fmt.Errorf("failed to revert branch: %w", err)
	}

	s.notifier.Notify(notify.Context{
		ActorName:      "",
		AffectedEntity: branch.Name,
		Message:        fmt.Sprintf("Branch %s was restored", branch.Name),
	})

	return branch, nil
}

// GetLabWithBranches returns a lab with all branches of its family.
func (s *LabService) GetLabWithBranches(labID uint64) (*models.Lab, []models.Lab, error) {
	tenancy, err := s.tenancy.Resolve(labID)
	if err != nil {
		return nil, nil, err
	}

	lab, err := s.labRepo.FindByID(labID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrLabNotFound
		}
		return nil, nil, fmt.Errorf("failed to find lab: %w", err)
	}

	branches, err := s.labRepo.ListBranches(tenancy.MainLabID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list branches: %w", err)
	}

	return lab, branches, nil
}

func (s *LabService) buildLab(name, email, phone, pincode, address, password string, labReference uint64) (*models.Lab, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	hfid, err := utils.GenerateHFID("LAB")
	if err != nil {
		return nil, fmt.Errorf("failed to generate lab hfid: %w", err)
	}

	return &models.Lab{
		Name:         name,
		Email:        email,
		Phone:        phone,
		Pincode:      pincode,
		Address:      address,
		PasswordHash: string(hashedPassword),
		HFID:         hfid,
		LabReference: labReference,
		EpochTime:    time.Now().Unix(),
	}, nil
}

// loadScopedBranch loads a branch and verifies it belongs to the acting
// principal's family. Out-of-scope and non-branch labs surface as not found.
func (s *LabService) loadScopedBranch(principal models.Principal, branchID uint64) (*models.Lab, error) {
	branch, err := s.labRepo.FindByID(branchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLabNotFound
		}
		return nil, fmt.Errorf("failed to find branch: %w", err)
	}
	if branch.IsMainLab() {
		return nil, ErrNotABranch
	}

	tenancy, err := s.tenancy.Resolve(principal.LabID)
	if err != nil {
		return nil, err
	}
	if !tenancy.Contains(branch.ID) {
		return nil, ErrLabNotFound
	}

	return branch, nil
}
