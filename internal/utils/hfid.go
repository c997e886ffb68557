package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// GenerateHFID generates a random HF identifier in the format PREFIX-XXXXXXXX,
// e.g. LAB-9F3A61B2. The prefix distinguishes lab ids from person ids.
func GenerateHFID(prefix string) (string, error) {
	bytes := make([]byte, 4)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return fmt.Sprintf("%s-%s", prefix, strings.ToUpper(hex.EncodeToString(bytes))), nil
}

// GenerateOtpCode generates a numeric one-time code of the given length.
func GenerateOtpCode(length int) (string, error) {
	const digits = "0123456789"

	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	var b strings.Builder
	for _, v := range bytes {
		b.WriteByte(digits[int(v)%len(digits)])
	}
	return b.String(), nil
}
