package models

// User is the global person identity. This service reads it to resolve HFIDs
// and display names but never writes it; the identity platform owns the table.
type User struct {
	ID    uint64 `gorm:"primarykey" json:"id"`
	HFID  string `gorm:"column:hfid;type:varchar(50);uniqueIndex;not null" json:"hfid"`
	Name  string `gorm:"type:varchar(255);not null" json:"name"`
	Email string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
}
