package models

type MemberRole string

const (
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
)

// Member is a person with an admin or member role in one lab of a family.
// LabID may reference a main lab or a branch. Soft-deleted rows are retained
// as reusable history for promotion reversals.
type Member struct {
	ID           uint64     `gorm:"primarykey" json:"id"`
	UserID       uint64     `gorm:"not null;index" json:"user_id"`
	LabID        uint64     `gorm:"not null;index" json:"lab_id"`
	Role         MemberRole `gorm:"type:varchar(20);not null" json:"role"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	CreatedBy    uint64     `gorm:"not null;default:0" json:"created_by"`
	PromotedBy   uint64     `gorm:"not null;default:0" json:"promoted_by"`
	EpochTime    int64      `gorm:"not null" json:"epoch_time"`

	Deletion

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Lab  Lab  `gorm:"foreignKey:LabID" json:"lab,omitempty"`
}
