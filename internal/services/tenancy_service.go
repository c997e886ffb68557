package services

import (
	"errors"
	"fmt"

	"github.com/labsphere/lab-management-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrLabNotFound = errors.New("lab not found")
)

// Tenancy is a resolved lab family: the tenant root plus every lab inside
// its authorization scope.
type Tenancy struct {
	MainLabID uint64
	BranchIDs []uint64
}

// Contains reports whether the lab is inside this family's scope.
func (t *Tenancy) Contains(labID uint64) bool {
	for _, id := range t.BranchIDs {
		if id == labID {
			return true
		}
	}
	return false
}

// TenancyService resolves lab families and answers scope questions. It
// checks which labs a caller may act on, not who the caller is; identity is
// the session layer's problem.
type TenancyService struct {
	labRepo repository.LabRepository
}

// NewTenancyService creates a new TenancyService.
func NewTenancyService(labRepo repository.LabRepository) *TenancyService {
	return &TenancyService{
		labRepo: labRepo,
	}
}

// Resolve derives the main lab id and full branch-id set for any lab in a
// family. The branch-id set always includes the main lab itself.
func (s *TenancyService) Resolve(labID uint64) (*Tenancy, error) {
	lab, err := s.labRepo.FindByID(labID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLabNotFound
		}
		return nil, fmt.Errorf("failed to find lab: %w", err)
	}

	mainLabID := labID
	if !lab.IsMainLab() {
		mainLabID = lab.LabReference
	}

	branchIDs, err := s.labRepo.ListBranchIDs(mainLabID)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	return &Tenancy{
		MainLabID: mainLabID,
		BranchIDs: append([]uint64{mainLabID}, branchIDs...),
	}, nil
}

// IsAuthorized reports whether the caller lab's family contains the target
// lab.
func (s *TenancyService) IsAuthorized(callerLabID, targetLabID uint64) (bool, error) {
	tenancy, err := s.Resolve(callerLabID)
	if err != nil {
		return false, err
	}
	return tenancy.Contains(targetLabID), nil
}
