package dto

import "github.com/labsphere/lab-management-api/internal/models"

// MemberDTO represents a member in API responses
type MemberDTO struct {
	ID         uint64            `json:"id"`
	LabID      uint64            `json:"lab_id"`
	Role       models.MemberRole `json:"role"`
	CreatedBy  uint64            `json:"created_by"`
	PromotedBy uint64            `json:"promoted_by,omitempty"`
	Active     bool              `json:"active"`
	User       UserDTO           `json:"user"`
}

// ToMemberDTO converts a member model to DTO
func ToMemberDTO(member models.Member) MemberDTO {
	return MemberDTO{
		ID:         member.ID,
		LabID:      member.LabID,
		Role:       member.Role,
		CreatedBy:  member.CreatedBy,
		PromotedBy: member.PromotedBy,
		Active:     member.Active(),
		User:       ToUserDTO(member.User),
	}
}

// ToMemberDTOs converts a member slice to DTOs
func ToMemberDTOs(members []models.Member) []MemberDTO {
	dtos := make([]MemberDTO, len(members))
	for i, member := range members {
		dtos[i] = ToMemberDTO(member)
	}
	return dtos
}
