package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Branch-set resolution walks labs by parent reference
		{"labs", "idx_labs_lab_reference", "lab_reference"},
		{"labs", "idx_labs_hfid", "hfid"},

		// Active-holder and dormant-row lookups during promotion
		{"super_admins", "idx_super_admins_lab_id_is_main", "lab_id, is_main"},
		{"super_admins", "idx_super_admins_user_id_lab_id", "user_id, lab_id"},

		// Member conflict checks scan the branch set per user
		{"members", "idx_members_user_id_lab_id", "user_id, lab_id"},
		{"members", "idx_members_lab_id_deleted_by", "lab_id, deleted_by"},

		// OTP lookup is always latest-entry-per-key
		{"otp_entries", "idx_otp_entries_key_created_at", "`key`, created_at"},
	}

	for _, idx := range indexes {
		// Check if index already exists
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM information_schema.statistics
			WHERE table_name = ? AND index_name = ?
		`, idx.table, idx.name).Count(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
