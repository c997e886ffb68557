package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/labsphere/lab-management-api/internal/dto"
	apierrors "github.com/labsphere/lab-management-api/internal/errors"
	"github.com/labsphere/lab-management-api/internal/middleware"
	"github.com/labsphere/lab-management-api/internal/models"
	"github.com/labsphere/lab-management-api/internal/services"
	"github.com/labsphere/lab-management-api/internal/utils"
)

// MemberHandler coordinates member and promotion HTTP handlers.
type MemberHandler struct {
	roleService      *services.RoleService
	promotionService *services.PromotionService
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(roleService *services.RoleService, promotionService *services.PromotionService) *MemberHandler {
	return &MemberHandler{
		roleService:      roleService,
		promotionService: promotionService,
	}
}

// ListMembers lists active members of the acting lab family.
func (h *MemberHandler) ListMembers(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	members, total, err := h.roleService.ListMembers(principal, params)
	if err != nil {
		respondMemberError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"members": dto.ToMemberDTOs(members),
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// AddMember creates a member record in a lab of the acting family.
func (h *MemberHandler) AddMember(c *gin.Context) {
	type AddMemberRequest struct {
		LabID    uint64 `json:"lab_id" binding:"required"`
		HFID     string `json:"hfid" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	member, err := h.roleService.AddMember(principal, services.AddMemberInput{
		LabID:    req.LabID,
		HFID:     req.HFID,
		Password: req.Password,
	})
	if err != nil {
		respondMemberError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"member_id": member.ID,
		"lab_id":    member.LabID,
		"role":      member.Role,
	})
}

// DeleteMember soft-deletes a member.
func (h *MemberHandler) DeleteMember(c *gin.Context) {
	memberID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid member ID")
		return
	}

	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.roleService.SoftDeleteMember(principal, memberID); err != nil {
		respondMemberError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member deleted successfully",
	})
}

// RevertMember restores a soft-deleted member with the supplied role.
func (h *MemberHandler) RevertMember(c *gin.Context) {
	type RevertMemberRequest struct {
		Role models.MemberRole `json:"role" binding:"required,oneof=admin member"`
	}

	memberID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid member ID")
		return
	}

	var req RevertMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	member, err := h.roleService.RevertMember(principal, memberID, req.Role)
	if err != nil {
		respondMemberError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"member_id": member.ID,
		"role":      member.Role,
	})
}

// PermanentlyDeleteMember hard-removes an already soft-deleted member row.
func (h *MemberHandler) PermanentlyDeleteMember(c *gin.Context) {
	memberID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid member ID")
		return
	}

	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.roleService.PermanentlyDeleteMember(principal, memberID); err != nil {
		respondMemberError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member permanently deleted",
	})
}

// PromoteToSuperAdmin swaps the lab family's top authority to the member.
func (h *MemberHandler) PromoteToSuperAdmin(c *gin.Context) {
	memberID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid member ID")
		return
	}

	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	result, err := h.promotionService.PromoteToSuperAdmin(principal, memberID)
	if err != nil {
		respondMemberError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"new_super_admin_id": result.NewSuperAdminID,
		"old_super_admin_id": result.OldSuperAdminID,
	})
}

// PromoteToAdmin promotes members to admin, reporting a result per id.
func (h *MemberHandler) PromoteToAdmin(c *gin.Context) {
	type PromoteToAdminRequest struct {
		MemberIDs []uint64 `json:"member_ids" binding:"required,min=1"`
	}

	var req PromoteToAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	results, err := h.promotionService.PromoteMembersToAdmin(principal, req.MemberIDs)
	if err != nil {
		respondMemberError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": results,
	})
}

func respondMemberError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrDuplicateRole),
		errors.Is(err, services.ErrMemberAlreadyDeleted),
		errors.Is(err, services.ErrMemberNotDeleted):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrScopeViolation):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrMemberNotFound),
		errors.Is(err, services.ErrSuperAdminNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrLabNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
