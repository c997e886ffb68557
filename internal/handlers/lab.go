package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/labsphere/lab-management-api/internal/dto"
	apierrors "github.com/labsphere/lab-management-api/internal/errors"
	"github.com/labsphere/lab-management-api/internal/middleware"
	"github.com/labsphere/lab-management-api/internal/services"
)

// LabHandler coordinates lab and branch HTTP handlers.
type LabHandler struct {
	labService *services.LabService
}

// NewLabHandler creates a new LabHandler.
func NewLabHandler(labService *services.LabService) *LabHandler {
	return &LabHandler{
		labService: labService,
	}
}

// RegisterLab registers a main lab. The request email must carry a consumed
// OTP proof for the signup purpose.
func (h *LabHandler) RegisterLab(c *gin.Context) {
	type RegisterLabRequest struct {
		Name     string `json:"name" binding:"required,max=255"`
		Email    string `json:"email" binding:"required,email"`
		Phone    string `json:"phone" binding:"required"`
		Pincode  string `json:"pincode" binding:"required"`
		Address  string `json:"address"`
		Password string `json:"password" binding:"required"`
	}

	var req RegisterLabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	lab, err := h.labService.RegisterLab(services.RegisterLabInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Pincode:  req.Pincode,
		Address:  req.Address,
		Password: req.Password,
	})
	if err != nil {
		respondLabError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToLabDTO(*lab))
}

// GetLab returns a lab with the branches of its family.
func (h *LabHandler) GetLab(c *gin.Context) {
	labID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid lab ID")
		return
	}

	lab, branches, err := h.labService.GetLabWithBranches(labID)
	if err != nil {
		respondLabError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToLabDetailDTO(*lab, branches))
}

// CreateBranch creates a branch under the acting lab's main lab.
func (h *LabHandler) CreateBranch(c *gin.Context) {
	type CreateBranchRequest struct {
		Name     string `json:"name" binding:"required,max=255"`
		Email    string `json:"email" binding:"required,email"`
		Phone    string `json:"phone" binding:"required"`
		Pincode  string `json:"pincode" binding:"required"`
		Address  string `json:"address"`
		Password string `json:"password" binding:"required"`
	}

	var req CreateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	branch, err := h.labService.CreateBranch(principal, services.CreateBranchInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Pincode:  req.Pincode,
		Address:  req.Address,
		Password: req.Password,
	})
	if err != nil {
		respondLabError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToLabDTO(*branch))
}

// DeleteBranch soft-deletes a branch.
func (h *LabHandler) DeleteBranch(c *gin.Context) {
	branchID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid branch ID")
		return
	}

	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.labService.DeleteBranch(principal, branchID); err != nil {
		respondLabError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Branch deleted successfully",
	})
}

// RevertBranch restores a soft-deleted branch.
func (h *LabHandler) RevertBranch(c *gin.Context) {
	branchID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid branch ID")
		return
	}

	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	branch, err := h.labService.RevertBranch(principal, branchID)
	if err != nil {
		respondLabError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToLabDTO(*branch))
}

func respondLabError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidLabName),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrNotABranch):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrOtpProofRequired):
		apierrors.OtpError(c)
	case errors.Is(err, services.ErrLabEmailTaken),
		errors.Is(err, services.ErrLabAlreadyDeleted),
		errors.Is(err, services.ErrLabNotDeleted):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrLabNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
