package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/labsphere/lab-management-api/internal/constants"
	"github.com/labsphere/lab-management-api/internal/models"
	"github.com/labsphere/lab-management-api/internal/repository"
	"github.com/labsphere/lab-management-api/internal/utils"
)

// ErrOtpInvalid is the uniform verification failure. The concrete reason
// (no entry, expired, mismatch) is logged server-side only; callers just
// re-request a code.
var ErrOtpInvalid = errors.New("otp verification failed")

var (
	errOtpNotFound = errors.New("no current otp entry")
	errOtpExpired  = errors.New("otp entry expired")
	errOtpMismatch = errors.New("otp code mismatch")
)

// OtpService issues, verifies and single-use-consumes short-lived proof
// codes. Entering the code and performing the gated action are separate
// requests, so a successful verify records a purpose-scoped proof flag that
// the gated action later consumes exactly once.
type OtpService struct {
	otpRepo repository.OtpRepository
	ttl     time.Duration
	now     func() time.Time
}

// NewOtpService creates a new OtpService.
func NewOtpService(otpRepo repository.OtpRepository) *OtpService {
	return &OtpService{
		otpRepo: otpRepo,
		ttl:     constants.OtpTTL,
		now:     time.Now,
	}
}

// Issue creates a fresh code for the key and returns the stored entry. The
// code travels to the delivery integration only; it is never returned to the
// requesting client.
func (s *OtpService) Issue(key string) (*models.OtpEntry, error) {
	code, err := utils.GenerateOtpCode(constants.OtpCodeLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate otp code: %w", err)
	}

	now := s.now()
	entry := &models.OtpEntry{
		Key:        key,
		OtpCode:    code,
		CreatedAt:  now,
		ExpiryTime: now.Add(s.ttl),
	}

	if err := s.otpRepo.CreateEntry(entry); err != nil {
		return nil, fmt.Errorf("failed to store otp entry: %w", err)
	}

	return entry, nil
}

// Verify checks the submitted code against the key's current entry. On
// success the entry is deleted (the code is single-use at this step) and a
// proof flag for (key, purpose) is recorded for the gated action to consume.
func (s *OtpService) Verify(key, submittedCode, purpose string) error {
	if err := s.verify(key, submittedCode); err != nil {
		log.Printf("otp verify failed for key=%q: %v", key, err)
		return ErrOtpInvalid
	}

	proof := &models.OtpProof{
		Key:       key,
		Purpose:   purpose,
		CreatedAt: s.now(),
	}
	if err := s.otpRepo.SaveProof(proof); err != nil {
		return fmt.Errorf("failed to record otp proof: %w", err)
	}

	return nil
}

func (s *OtpService) verify(key, submittedCode string) error {
	entry, err := s.otpRepo.FindLatestByKey(key)
	if err != nil {
		return fmt.Errorf("failed to load otp entry: %w", err)
	}
	if entry == nil {
		return errOtpNotFound
	}

	now := s.now()
	if entry.Expired(now) {
		if err := s.otpRepo.DeleteExpiredByKey(key, now); err != nil {
			return fmt.Errorf("failed to purge expired otp entries: %w", err)
		}
		return errOtpExpired
	}

	if entry.OtpCode != submittedCode {
		return errOtpMismatch
	}

	if err := s.otpRepo.DeleteEntry(entry.ID); err != nil {
		return fmt.Errorf("failed to consume otp entry: %w", err)
	}
	if err := s.otpRepo.DeleteExpiredByKey(key, now); err != nil {
		return fmt.Errorf("failed to purge expired otp entries: %w", err)
	}

	return nil
}

// Consume clears the proof flag for (key, purpose) and reports whether it
// was present. It returns true exactly once per successful Verify; racing
// consumers cannot both see true.
func (s *OtpService) Consume(key, purpose string) (bool, error) {
	consumed, err := s.otpRepo.ConsumeProof(key, purpose)
	if err != nil {
		return false, fmt.Errorf("failed to consume otp proof: %w", err)
	}
	return consumed, nil
}
