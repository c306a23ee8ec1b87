package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flotillahq/flotilla/internal/account"
	"github.com/flotillahq/flotilla/internal/common/dto"
)

// CreateUser handles POST /api/users. Callers below super admin can only
// create accounts inside their own company; the scope validator enforces it.
func (h *Handler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, account.ErrValidation)
		return
	}
	caller, err := h.caller(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	// A tenant-scoped caller creates inside its own company by default.
	if req.CompanyID == "" && caller.Role != account.RoleSuperAdmin {
		req.CompanyID = caller.CompanyID
	}
	if err := h.authorize(caller, account.Resource{
		Category:  account.CategoryUsers,
		CompanyID: req.CompanyID,
	}, account.ActionCreate); err != nil {
		h.respondError(c, err)
		return
	}

	role, err := account.ParseRole(req.Role)
	if err != nil {
		h.respondError(c, err)
		return
	}

	acct, err := h.svc.CreateAccount(c.Request.Context(), account.CreateAccountInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Secret:       req.Password,
		Phone:        req.Phone,
		Role:         role,
		CompanyID:    req.CompanyID,
		BranchID:     req.BranchID,
		VehicleTypes: toVehicleTypes(req.VehicleTypes),
		CreatedBy:    caller.ID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, accountSummary(acct))
}

// ListUsers handles GET /api/users. Super admins may filter by company via
// ?companyId=; everyone else is pinned to their own company.
func (h *Handler) ListUsers(c *gin.Context) {
	caller, err := h.caller(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	companyID := c.Query("companyId")
	if caller.Role != account.RoleSuperAdmin {
		companyID = caller.CompanyID
	}
	if err := h.authorize(caller, account.Resource{
		Category:  account.CategoryUsers,
		CompanyID: companyID,
	}, account.ActionRead); err != nil {
		h.respondError(c, err)
		return
	}

	accounts, err := h.db.ListAccounts(c.Request.Context(), companyID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	out := make([]*dto.AccountSummary, 0, len(accounts))
	for _, acct := range accounts {
		out = append(out, accountSummary(acct))
	}
	c.JSON(http.StatusOK, out)
}

// GetUser handles GET /api/users/:id.
func (h *Handler) GetUser(c *gin.Context) {
	caller, target, err := h.loadUserTarget(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.authorize(caller, account.Resource{
		Category:  account.CategoryUsers,
		CompanyID: target.CompanyID,
		BranchID:  target.BranchID,
	}, account.ActionRead); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accountSummary(target))
}

// UpdateUser handles PUT /api/users/:id. Role changes re-derive the
// permission matrix; an explicit vehicle-type list becomes an override.
func (h *Handler) UpdateUser(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, account.ErrValidation)
		return
	}
	caller, target, err := h.loadUserTarget(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.authorize(caller, account.Resource{
		Category:  account.CategoryUsers,
		CompanyID: target.CompanyID,
		BranchID:  target.BranchID,
	}, account.ActionUpdate); err != nil {
		h.respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	if req.Role != "" {
		role, err := account.ParseRole(req.Role)
		if err != nil {
			h.respondError(c, err)
			return
		}
		if target, err = h.svc.ChangeRole(ctx, target.ID, role); err != nil {
			h.respondError(c, err)
			return
		}
	}
	if len(req.VehicleTypes) > 0 {
		if target, err = h.svc.SetVehicleTypes(ctx, target.ID, toVehicleTypes(req.VehicleTypes)); err != nil {
			h.respondError(c, err)
			return
		}
	}
	if req.Phone != "" {
		if target, err = h.svc.SetPhone(ctx, target.ID, req.Phone); err != nil {
			h.respondError(c, err)
			return
		}
	}
	if req.IsActive != nil {
		if *req.IsActive {
			err = h.svc.Activate(ctx, target.ID)
		} else {
			err = h.svc.Deactivate(ctx, target.ID)
		}
		if err != nil {
			h.respondError(c, err)
			return
		}
		target.IsActive = *req.IsActive
	}
	c.JSON(http.StatusOK, accountSummary(target))
}

// DeleteUser handles DELETE /api/users/:id. Accounts are deactivated, never
// removed.
func (h *Handler) DeleteUser(c *gin.Context) {
	caller, target, err := h.loadUserTarget(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.authorize(caller, account.Resource{
		Category:  account.CategoryUsers,
		CompanyID: target.CompanyID,
		BranchID:  target.BranchID,
	}, account.ActionDelete); err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.svc.Deactivate(c.Request.Context(), target.ID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "account deactivated"})
}

func (h *Handler) loadUserTarget(c *gin.Context) (*account.Account, *account.Account, error) {
	caller, err := h.caller(c)
	if err != nil {
		return nil, nil, err
	}
	target, err := h.db.GetAccountByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		return nil, nil, err
	}
	return caller, target, nil
}

func toVehicleTypes(in []string) account.VehicleTypeList {
	out := make(account.VehicleTypeList, 0, len(in))
	for _, s := range in {
		out = append(out, account.VehicleType(s))
	}
	return out
}
