package services

import (
	"errors"
	"fmt"

	"github.com/labsphere/lab-management-api/internal/constants"
	"github.com/labsphere/lab-management-api/internal/models"
	"github.com/labsphere/lab-management-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUnknownRole        = errors.New("unknown role")
)

// AuthService authenticates people against their role records. Credential
// verification happens here; what a session may touch afterwards is the
// tenancy gate's concern.
type AuthService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
	roleSvc  *RoleService
	tenancy  *TenancyService
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, roleRepo repository.RoleRepository, roleSvc *RoleService, tenancy *TenancyService) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		roleSvc:  roleSvc,
		tenancy:  tenancy,
	}
}

// BootstrapSuperAdminInput represents the one-time super admin signup for a
// freshly registered lab.
type BootstrapSuperAdminInput struct {
	LabID    uint64
	HFID     string
	Password string
}

// BootstrapSuperAdmin creates the lab's first and only super admin record
// and returns it together with the principal for the new session.
func (s *AuthService) BootstrapSuperAdmin(input BootstrapSuperAdminInput) (*models.SuperAdmin, models.Principal, error) {
	user, err := s.userRepo.FindByHFID(input.HFID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.Principal{}, ErrUserNotFound
		}
		return nil, models.Principal{}, fmt.Errorf("failed to find user: %w", err)
	}

	admin, err := s.roleSvc.CreateSuperAdmin(input.LabID, user.ID, input.Password)
	if err != nil {
		return nil, models.Principal{}, err
	}

	principal := models.Principal{
		LabID:      admin.LabID,
		AdminRowID: admin.ID,
		Role:       constants.RoleSuperAdmin,
	}
	return admin, principal, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	HFID     string
	LabID    uint64
	Role     string
	Password string
}

// Login verifies credentials for the requested role and returns the
// principal the session will carry. Missing users, missing role records and
// bad passwords all collapse into ErrInvalidCredentials.
func (s *AuthService) Login(input LoginInput) (models.Principal, *models.User, error) {
	user, err := s.userRepo.FindByHFID(input.HFID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Principal{}, nil, ErrInvalidCredentials
		}
		return models.Principal{}, nil, fmt.Errorf("failed to find user: %w", err)
	}

	tenancy, err := s.tenancy.Resolve(input.LabID)
	if err != nil {
		return models.Principal{}, nil, err
	}

	switch input.Role {
	case constants.RoleSuperAdmin:
		admin, err := s.roleRepo.FindActiveSuperAdminByUser(user.ID, tenancy.MainLabID)
		if err != nil {
			return models.Principal{}, nil, fmt.Errorf("failed to find super admin: %w", err)
		}
		if admin == nil {
			return models.Principal{}, nil, ErrInvalidCredentials
		}
		if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(input.Password)) != nil {
			return models.Principal{}, nil, ErrInvalidCredentials
		}
		return models.Principal{
			LabID:      input.LabID,
			AdminRowID: admin.ID,
			Role:       constants.RoleSuperAdmin,
		}, user, nil

	case constants.RoleAdmin, constants.RoleMember:
		member, err := s.roleRepo.FindActiveMemberByUser(user.ID, tenancy.BranchIDs)
		if err != nil {
			return models.Principal{}, nil, fmt.Errorf("failed to find member: %w", err)
		}
		if member == nil || string(member.Role) != input.Role {
			return models.Principal{}, nil, ErrInvalidCredentials
		}
		if bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(input.Password)) != nil {
			return models.Principal{}, nil, ErrInvalidCredentials
		}
		return models.Principal{
			LabID:      member.LabID,
			AdminRowID: member.ID,
			Role:       input.Role,
		}, user, nil

	default:
		return models.Principal{}, nil, ErrUnknownRole
	}
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
