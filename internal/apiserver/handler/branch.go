package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flotillahq/flotilla/internal/account"
	"github.com/flotillahq/flotilla/internal/common/dto"
)

// CreateBranch handles POST /api/branches.
func (h *Handler) CreateBranch(c *gin.Context) {
	var req dto.CreateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, account.ErrValidation)
		return
	}
	caller, err := h.caller(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.authorize(caller, account.Resource{
		Category:  account.CategoryBranches,
		CompanyID: req.CompanyID,
	}, account.ActionCreate); err != nil {
		h.respondError(c, err)
		return
	}

	branch, err := h.svc.CreateBranch(c.Request.Context(), account.CreateBranchInput{
		Name:      req.Name,
		Code:      req.Code,
		CompanyID: req.CompanyID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, branch)
}

// ListBranches handles GET /api/branches. Super admins may filter by company
// via ?companyId=; everyone else is pinned to their own company.
func (h *Handler) ListBranches(c *gin.Context) {
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
		Category:  account.CategoryBranches,
		CompanyID: companyID,
	}, account.ActionRead); err != nil {
		h.respondError(c, err)
		return
	}

	branches, err := h.db.ListBranches(c.Request.Context(), companyID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, branches)
}

// GetBranch handles GET /api/branches/:id.
func (h *Handler) GetBranch(c *gin.Context) {
	caller, err := h.caller(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	branch, err := h.db.GetBranchByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.authorize(caller, account.Resource{
		Category:  account.CategoryBranches,
		CompanyID: branch.CompanyID,
		BranchID:  branch.ID,
	}, account.ActionRead); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, branch)
}

// UpdateBranch handles PUT /api/branches/:id.
func (h *Handler) UpdateBranch(c *gin.Context) {
	var req dto.UpdateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, account.ErrValidation)
		return
	}
	caller, err := h.caller(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ctx := c.Request.Context()
	branch, err := h.db.GetBranchByID(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.authorize(caller, account.Resource{
		Category:  account.CategoryBranches,
		CompanyID: branch.CompanyID,
		BranchID:  branch.ID,
	}, account.ActionUpdate); err != nil {
		h.respondError(c, err)
		return
	}

	if req.Name != "" {
		branch.Name = req.Name
	}
	if req.IsActive != nil {
		branch.IsActive = *req.IsActive
	}
	if err := h.db.UpdateBranch(ctx, branch); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, branch)
}
