package models

// SuperAdmin is one historical holder of a lab's top authority. LabID always
// references a main lab. Exactly one row per main lab has IsMain set; demoted
// holders stay behind with IsMain cleared and are reactivated instead of
// duplicated when the same person is promoted again.
type SuperAdmin struct {
	ID           uint64 `gorm:"primarykey" json:"id"`
	UserID       uint64 `gorm:"not null;index" json:"user_id"`
	LabID        uint64 `gorm:"not null;index" json:"lab_id"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	IsMain       bool   `gorm:"not null;default:false" json:"is_main"`
	EpochTime    int64  `gorm:"not null" json:"epoch_time"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (SuperAdmin) TableName() string {
	return "super_admins"
}
