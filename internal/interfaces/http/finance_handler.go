package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/elhamd/elhamd-api/internal/application/dto"
	"github.com/elhamd/elhamd-api/internal/application/finance"
	"github.com/elhamd/elhamd-api/internal/domain"
	"github.com/elhamd/elhamd-api/pkg/jwt"
)

// FinanceHandler reportes financieros.
type FinanceHandler struct {
	uc *finance.OverviewUseCase
}

// NewFinanceHandler construye el handler.
func NewFinanceHandler(uc *finance.OverviewUseCase) *FinanceHandler {
	return &FinanceHandler{uc: uc}
}

// Overview GET /api/finance/overview
func (h *FinanceHandler) Overview(c *fiber.Ctx) error {
	var q dto.OverviewQuery
	if err := bindQuery(c, &q); err != nil {
		return respondError(c, err)
	}
	branch, err := scopeBranch(c, q.BranchID)
	if err != nil {
		return respondError(c, err)
	}
	q.BranchID = branch
	out, err := h.uc.GetOverview(c.UserContext(), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Trend GET /api/finance/trend
func (h *FinanceHandler) Trend(c *fiber.Ctx) error {
	var q dto.TrendQuery
	if err := bindQuery(c, &q); err != nil {
		return respondError(c, err)
	}
	branch, err := scopeBranch(c, q.BranchID)
	if err != nil {
		return respondError(c, err)
	}
	q.BranchID = branch
	out, err := h.uc.GetMonthlyTrend(c.UserContext(), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// scopeBranch: un usuario con sucursal fija (no admin) solo ve su sucursal.
func scopeBranch(c *fiber.Ctx, requested string) (string, error) {
	own := GetBranchID(c)
	if own == "" || GetRole(c) == jwt.RoleAdmin {
		return requested, nil
	}
	if requested != "" && requested != own {
		return "", domain.ErrForbidden
	}
	return own, nil
}
