package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flotillahq/flotilla/internal/account"
	"github.com/flotillahq/flotilla/internal/common/dto"
	"github.com/flotillahq/flotilla/internal/common/errorx"
)

// Login handles POST /api/auth/login. Unknown email and wrong password
// produce the same response so that accounts cannot be enumerated.
func (h *Handler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorx.ErrAuthenticationFailed)
		return
	}

	acct, err := h.svc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrNotFound), errors.Is(err, account.ErrInvalidCredentials):
			h.metrics.LoginAttempt("invalid")
			c.JSON(errorx.ErrAuthenticationFailed.HTTPStatus, errorx.ErrAuthenticationFailed)
		case errors.Is(err, account.ErrAccountLocked):
			h.metrics.LoginAttempt("locked")
			c.JSON(errorx.ErrAccountLocked.HTTPStatus, errorx.ErrAccountLocked)
		case errors.Is(err, account.ErrAccountInactive):
			h.metrics.LoginAttempt("inactive")
			c.JSON(errorx.ErrAccountInactive.HTTPStatus, errorx.ErrAccountInactive)
		case errors.Is(err, account.ErrTenantInactive):
			h.metrics.LoginAttempt("inactive")
			c.JSON(errorx.ErrTenantInactive.HTTPStatus, errorx.ErrTenantInactive)
		default:
			h.metrics.LoginAttempt("error")
			h.respondError(c, err)
		}
		return
	}

	token, err := h.jwt.GenerateToken(acct.ID, acct.Email, acct.Role.String(), acct.CompanyID, acct.BranchID)
	if err != nil {
		h.logger.Error("failed to sign token", zap.String("account_id", acct.ID), zap.Error(err))
		h.respondError(c, err)
		return
	}

	h.metrics.LoginAttempt("success")
	c.JSON(http.StatusOK, dto.LoginResponse{
		Token:   token,
		Account: accountSummary(acct),
	})
}

// Me handles GET /api/auth/me, returning the caller's current account.
func (h *Handler) Me(c *gin.Context) {
	acct, err := h.caller(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accountSummary(acct))
}

// ChangePassword handles POST /api/auth/change-password.
func (h *Handler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, errorx.ErrInvalidSecret)
		return
	}
	acct, err := h.caller(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.svc.ChangeSecret(c.Request.Context(), acct.ID, req.OldPassword, req.NewPassword); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password changed"})
}
