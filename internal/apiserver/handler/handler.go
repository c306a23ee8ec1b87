package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flotillahq/flotilla/internal/account"
	"github.com/flotillahq/flotilla/internal/apiserver/database"
	"github.com/flotillahq/flotilla/internal/apiserver/middleware"
	"github.com/flotillahq/flotilla/internal/auth/jwt"
	"github.com/flotillahq/flotilla/internal/common/dto"
	"github.com/flotillahq/flotilla/internal/common/errorx"
	"github.com/flotillahq/flotilla/pkg/metrics"
)

// Handler bundles the dependencies shared by the HTTP handlers.
type Handler struct {
	svc     *account.Service
	db      database.Database
	jwt     *jwt.Service
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// New creates the handler set.
func New(svc *account.Service, db database.Database, jwtService *jwt.Service, m *metrics.Metrics, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		svc:     svc,
		db:      db,
		jwt:     jwtService,
		metrics: m,
		logger:  logger,
	}
}

// respondError writes the structured error body for err.
func (h *Handler) respondError(c *gin.Context, err error) {
	var apiErr *errorx.APIError
	if !errors.As(err, &apiErr) {
		apiErr = errorx.FromDomain(err)
	}
	if apiErr.HTTPStatus >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.JSON(apiErr.HTTPStatus, apiErr)
}

// caller re-reads the authenticated account from the store. Tokens only
// establish identity; role, permissions and lock state are always taken from
// the current record so that revocations take effect immediately.
func (h *Handler) caller(c *gin.Context) (*account.Account, error) {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		return nil, errorx.ErrUnauthorized
	}
	acct, err := h.db.GetAccountByID(c.Request.Context(), claims.AccountID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, errorx.ErrUnauthorized
		}
		return nil, err
	}
	return acct, nil
}

// authorize runs the tenancy scope checks for the caller against the resource
// and records denials.
func (h *Handler) authorize(caller *account.Account, res account.Resource, action account.Action) error {
	if err := account.Authorize(caller.Summary(), res, action); err != nil {
		h.metrics.AuthorizationDenied(denialReason(err))
		h.logger.Info("authorization denied",
			zap.String("account_id", caller.ID),
			zap.String("category", string(res.Category)),
			zap.String("action", string(action)),
			zap.String("reason", denialReason(err)))
		return err
	}
	return nil
}

func denialReason(err error) string {
	switch {
	case errors.Is(err, account.ErrAccountInactive):
		return "inactive"
	case errors.Is(err, account.ErrAccountLocked):
		return "locked"
	case errors.Is(err, account.ErrPermissionDenied):
		return "permission"
	case errors.Is(err, account.ErrTenantMismatch):
		return "tenant"
	case errors.Is(err, account.ErrBranchMismatch):
		return "branch"
	case errors.Is(err, account.ErrVehicleTypeDenied):
		return "vehicle_type"
	default:
		return "other"
	}
}

func accountSummary(acct *account.Account) *dto.AccountSummary {
	return &dto.AccountSummary{
		ID:           acct.ID,
		Email:        acct.Email,
		FirstName:    acct.FirstName,
		LastName:     acct.LastName,
		Phone:        acct.Phone,
		Role:         acct.Role.String(),
		Permissions:  acct.Permissions,
		VehicleTypes: vehicleTypeStrings(acct.VehicleTypes),
		CompanyID:    acct.CompanyID,
		BranchID:     acct.BranchID,
		IsActive:     acct.IsActive,
	}
}

func vehicleTypeStrings(types account.VehicleTypeList) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, string(t))
	}
	return out
}
