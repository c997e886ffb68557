package models

// Lab is a tenant entity. A lab with LabReference == 0 is a main lab; any
// other value points at the main lab this row is a branch of.
type Lab struct {
	ID           uint64 `gorm:"primarykey" json:"id"`
	Name         string `gorm:"type:varchar(255);not null" json:"name"`
	Email        string `gorm:"type:varchar(255);index;not null" json:"email"`
	Phone        string `gorm:"type:varchar(20)" json:"phone"`
	Pincode      string `gorm:"type:varchar(10)" json:"pincode"`
	Address      string `gorm:"type:text" json:"address"`
	ProfilePhoto string `gorm:"type:varchar(512)" json:"profile_photo"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	HFID         string `gorm:"column:hfid;type:varchar(50);uniqueIndex;not null" json:"hfid"`
	LabReference uint64 `gorm:"not null;default:0;index" json:"lab_reference"`
	EpochTime    int64  `gorm:"not null" json:"created_at_epoch"`

	Deletion
}

// IsMainLab reports whether this lab is a tenant root.
func (l *Lab) IsMainLab() bool {
	return l.LabReference == 0
}
