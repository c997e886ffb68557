package dto

import "github.com/labsphere/lab-management-api/internal/models"

// UserDTO represents a user in API responses
type UserDTO struct {
	ID    uint64 `json:"id"`
	HFID  string `json:"hfid"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ToUserDTO converts a user model to DTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:    user.ID,
		HFID:  user.HFID,
		Name:  user.Name,
		Email: user.Email,
	}
}
