package dto

import "github.com/labsphere/lab-management-api/internal/models"

// LabDTO represents a lab in API responses
type LabDTO struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Pincode      string `json:"pincode"`
	Address      string `json:"address"`
	ProfilePhoto string `json:"profile_photo,omitempty"`
	HFID         string `json:"hfid"`
	LabReference uint64 `json:"lab_reference"`
	Active       bool   `json:"active"`
}

// LabDetailDTO represents a lab with its branch list
type LabDetailDTO struct {
	LabDTO
	Branches []LabDTO `json:"branches"`
}

// ToLabDTO converts a lab model to DTO
func ToLabDTO(lab models.Lab) LabDTO {
	return LabDTO{
		ID:           lab.ID,
		Name:         lab.Name,
		Email:        lab.Email,
		Phone:        lab.Phone,
		Pincode:      lab.Pincode,
		Address:      lab.Address,
		ProfilePhoto: lab.ProfilePhoto,
		HFID:         lab.HFID,
		LabReference: lab.LabReference,
		Active:       lab.Active(),
	}
}

// ToLabDetailDTO converts a lab and its branches to a detailed DTO
func ToLabDetailDTO(lab models.Lab, branches []models.Lab) LabDetailDTO {
	branchDTOs := make([]LabDTO, len(branches))
	for i, branch := range branches {
		branchDTOs[i] = ToLabDTO(branch)
	}

	return LabDetailDTO{
		LabDTO:   ToLabDTO(lab),
		Branches: branchDTOs,
	}
}
