package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/labsphere/lab-management-api/internal/errors"
	"github.com/labsphere/lab-management-api/internal/notify"
	"github.com/labsphere/lab-management-api/internal/services"
)

// OtpHandler coordinates OTP issue and verification handlers.
type OtpHandler struct {
	otpService *services.OtpService
	notifier   notify.Notifier
}

// NewOtpHandler creates a new OtpHandler.
func NewOtpHandler(otpService *services.OtpService, notifier notify.Notifier) *OtpHandler {
	return &OtpHandler{
		otpService: otpService,
		notifier:   notifier,
	}
}

// IssueOtp creates a fresh code for a key. The code goes to the delivery
// integration through the notifier; the response only confirms issuance.
func (h *OtpHandler) IssueOtp(c *gin.Context) {
	type IssueOtpRequest struct {
		Key string `json:"key" binding:"required"`
	}

	var req IssueOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	entry, err := h.otpService.Issue(req.Key)
	if err != nil {
		apierrors.InternalError(c, "Failed to issue OTP")
		return
	}

	h.notifier.Notify(notify.Context{
		ActorName:      req.Key,
		AffectedEntity: req.Key,
		Message:        fmt.Sprintf("Your verification code is %s", entry.OtpCode),
	})

	c.JSON(http.StatusOK, gin.H{
		"message":    "OTP sent",
		"expires_at": entry.ExpiryTime,
	})
}

// VerifyOtp checks a submitted code and records the purpose-scoped proof the
// gated action will consume.
func (h *OtpHandler) VerifyOtp(c *gin.Context) {
	type VerifyOtpRequest struct {
		Key     string `json:"key" binding:"required"`
		Code    string `json:"code" binding:"required"`
		Purpose string `json:"purpose" binding:"required"`
	}

	var req VerifyOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.otpService.Verify(req.Key, req.Code, req.Purpose); err != nil {
		if errors.Is(err, services.ErrOtpInvalid) {
			apierrors.OtpError(c)
			return
		}
		apierrors.InternalError(c, "Failed to verify OTP")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"verified": true,
	})
}
