package models

import "time"

// Deletion is the soft-delete state embedded in rows that can be
// deactivated and later reverted. A row is active when DeletedBy is zero;
// otherwise DeletedBy holds the admin row id that deactivated it.
type Deletion struct {
	DeletedBy uint64     `gorm:"not null;default:0" json:"-"`
	DeletedAt *time.Time `json:"-"`
}

// Active reports whether the row has not been soft-deleted.
func (d Deletion) Active() bool {
	return d.DeletedBy == 0
}

// MarkDeleted deactivates the row, recording who deleted it and when.
func (d *Deletion) MarkDeleted(by uint64) {
	now := time.Now()
	d.DeletedBy = by
	d.DeletedAt = &now
}

// Revert reactivates the row.
func (d *Deletion) Revert() {
	d.DeletedBy = 0
	d.DeletedAt = nil
}
