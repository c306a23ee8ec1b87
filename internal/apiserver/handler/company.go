package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flotillahq/flotilla/internal/account"
	"github.com/flotillahq/flotilla/internal/common/dto"
)

// CreateCompany handles POST /api/companies, the first phase of tenant
// onboarding. The company record is created with an empty administrator
// back-reference; CreateCompanyAdmin fills it in.
func (h *Handler) CreateCompany(c *gin.Context) {
	var req dto.CreateCompanyRequest
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
		Category: account.CategoryCompanies,
	}, account.ActionCreate); err != nil {
		h.respondError(c, err)
		return
	}

	company, err := h.svc.CreateCompany(c.Request.Context(), account.CreateCompanyInput{
		TaxID:               req.TaxID,
		Name:                req.Name,
		Email:               req.Email,
		Phone:               req.Phone,
		Address:             req.Address,
		AdminName:           req.AdminName,
		AdminEmail:          req.AdminEmail,
		AdminPhone:          req.AdminPhone,
		AdminCanManageUsers: req.AdminCanManageUsers,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, company)
}

// CreateCompanyAdmin handles POST /api/companies/:id/admin, the second phase
// of tenant onboarding. It creates the company-admin account and patches the
// company's back-reference inside one transaction. The operation is
// re-entrant: repeating it for a company already linked to the same email
// returns the existing account instead of failing.
func (h *Handler) CreateCompanyAdmin(c *gin.Context) {
	var req dto.CreateCompanyAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, account.ErrValidation)
		return
	}
	caller, err := h.caller(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	companyID := c.Param("id")
	if err := h.authorize(caller, account.Resource{
		Category:  account.CategoryUsers,
		CompanyID: companyID,
	}, account.ActionCreate); err != nil {
		h.respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	company, err := h.db.GetCompanyByID(ctx, companyID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if company.AdminAccountID != "" {
		existing, err := h.db.GetAccountByID(ctx, company.AdminAccountID)
		if err != nil {
			h.respondError(c, err)
			return
		}
		if existing.Email == account.NormalizeEmail(req.Email) {
			c.JSON(http.StatusOK, accountSummary(existing))
			return
		}
		h.respondError(c, fmt.Errorf("%w: company already linked to another administrator", account.ErrValidation))
		return
	}

	var acct *account.Account
	err = h.db.Transaction(ctx, func(txCtx context.Context) error {
		created, err := h.svc.CreateAccount(txCtx, account.CreateAccountInput{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Secret:    req.Password,
			Phone:     req.Phone,
			Role:      account.RoleCompanyAdmin,
			CompanyID: companyID,
			BranchID:  req.BranchID,
			CreatedBy: caller.ID,
		})
		if err != nil {
			return err
		}
		if err := h.svc.LinkCompanyAdmin(txCtx, companyID, created.ID); err != nil {
			return err
		}
		acct = created
		return nil
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.logger.Info("company administrator bootstrapped",
		zap.String("company_id", companyID),
		zap.String("account_id", acct.ID))
	c.JSON(http.StatusCreated, accountSummary(acct))
}

// ListCompanies handles GET /api/companies. Tenant-scoped callers only see
// their own company.
func (h *Handler) ListCompanies(c *gin.Context) {
	caller, err := h.caller(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ctx := c.Request.Context()

	if caller.Role != account.RoleSuperAdmin {
		if err := h.authorize(caller, account.Resource{
			Category:  account.CategoryCompanies,
			CompanyID: caller.CompanyID,
		}, account.ActionRead); err != nil {
			h.respondError(c, err)
			return
		}
		company, err := h.db.GetCompanyByID(ctx, caller.CompanyID)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, []*account.Company{company})
		return
	}

	if err := h.authorize(caller, account.Resource{
		Category: account.CategoryCompanies,
	}, account.ActionRead); err != nil {
		h.respondError(c, err)
		return
	}
	companies, err := h.db.ListCompanies(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, companies)
}

// GetCompany handles GET /api/companies/:id.
func (h *Handler) GetCompany(c *gin.Context) {
	caller, err := h.caller(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	companyID := c.Param("id")
	if err := h.authorize(caller, account.Resource{
		Category:  account.CategoryCompanies,
		CompanyID: companyID,
	}, account.ActionRead); err != nil {
		h.respondError(c, err)
		return
	}
	company, err := h.db.GetCompanyByID(c.Request.Context(), companyID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

// UpdateCompany handles PUT /api/companies/:id.
func (h *Handler) UpdateCompany(c *gin.Context) {
	var req dto.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, account.ErrValidation)
		return
	}
	caller, err := h.caller(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	companyID := c.Param("id")
	if err := h.authorize(caller, account.Resource{
		Category:  account.CategoryCompanies,
		CompanyID: companyID,
	}, account.ActionUpdate); err != nil {
		h.respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	company, err := h.db.GetCompanyByID(ctx, companyID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if req.Name != "" {
		company.Name = req.Name
	}
	if req.Email != "" {
		company.Email = req.Email
	}
	if req.Phone != "" {
		company.Phone = req.Phone
	}
	if req.Address != "" {
		company.Address = req.Address
	}
	if req.IsActive != nil {
		company.IsActive = *req.IsActive
	}
	if err := h.db.UpdateCompany(ctx, company); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}
