package models

import "time"

// OtpEntry is a short-lived verification code issued against an email or
// phone key. Only the most recent entry per key is considered current;
// consumed and expired entries are deleted, never kept.
type OtpEntry struct {
	ID         uint64    `gorm:"primarykey" json:"id"`
	Key        string    `gorm:"type:varchar(255);index;not null" json:"key"`
	OtpCode    string    `gorm:"type:varchar(10);not null" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiryTime time.Time `gorm:"not null" json:"expiry_time"`
}

// Expired reports whether the entry is past its expiry at the given time.
func (e *OtpEntry) Expired(now time.Time) bool {
	return now.After(e.ExpiryTime)
}

// OtpProof is the purpose-scoped flag recorded after a successful OTP entry.
// It is consumed by exactly one gated action and deleted on consumption.
type OtpProof struct {
	Key       string    `gorm:"type:varchar(255);primaryKey" json:"key"`
	Purpose   string    `gorm:"type:varchar(50);primaryKey" json:"purpose"`
	CreatedAt time.Time `json:"created_at"`
}
