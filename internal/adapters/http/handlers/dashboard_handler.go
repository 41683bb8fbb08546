package handlers

import (
	"insureadmin/internal/adapters/http/middleware"
	"insureadmin/internal/core/services"
	"insureadmin/internal/core/state"
	"insureadmin/internal/pkg/chartdata"
	"insureadmin/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles aggregate report endpoints
type DashboardHandler struct {
	reportService *services.ReportService
	states        *state.Manager
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(reportService *services.ReportService, states *state.Manager) *DashboardHandler {
	return &DashboardHandler{reportService: reportService, states: states}
}

// Dashboard handles the combined chart payload
// @Summary Dashboard charts
// @Description All four chart payloads, scoped to the caller's role
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /dashboard [get]
func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	data, err := h.reportService.Dashboard(c.Context(), caller)
	if err != nil {
		return response.InternalServerError(c, "Failed to build dashboard")
	}

	return response.Success(c, "Dashboard retrieved successfully", data)
}

// CountsByTypeStatus handles the policy count grid rows
// @Summary Policy counts by type and status
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /dashboard/counts-by-type-status [get]
func (h *DashboardHandler) CountsByTypeStatus(c *fiber.Ctx) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	store := h.states.Store(caller.UserID)
	rows, err := store.FetchCountsByTypeStatus(c.Context(), caller)
	if err != nil {
		return response.InternalServerError(c, "Failed to load counts")
	}

	return response.Success(c, "Counts retrieved successfully", fiber.Map{
		"rows":  rows,
		"chart": chartdata.StackedBar(rows, chartdata.PolicyTypes, chartdata.PolicyStatuses),
	})
}

// MonthlyCoverage handles the monthly coverage series
// @Summary Monthly coverage totals
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /dashboard/monthly-coverage [get]
func (h *DashboardHandler) MonthlyCoverage(c *fiber.Ctx) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	store := h.states.Store(caller.UserID)
	rows, err := store.FetchMonthlyCoverage(c.Context(), caller)
	if err != nil {
		return response.InternalServerError(c, "Failed to load coverage")
	}

	return response.Success(c, "Coverage retrieved successfully", fiber.Map{
		"rows":  rows,
		"chart": chartdata.CoverageLine(rows),
	})
}

// CoverageByType handles coverage grouped by policy type
// @Summary Coverage by policy type
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /dashboard/coverage-by-type [get]
func (h *DashboardHandler) CoverageByType(c *fiber.Ctx) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	store := h.states.Store(caller.UserID)
	rows, err := store.FetchCoverageByType(c.Context(), caller)
	if err != nil {
		return response.InternalServerError(c, "Failed to load coverage")
	}

	return response.Success(c, "Coverage retrieved successfully", fiber.Map{
		"rows":  rows,
		"chart": chartdata.CoverageByTypeBar(rows, chartdata.PolicyTypes),
	})
}

// PremiumByType handles premium sums per policy type
// @Summary Premium sums by policy type
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /dashboard/premium-by-type [get]
func (h *DashboardHandler) PremiumByType(c *fiber.Ctx) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	store := h.states.Store(caller.UserID)
	rows, err := store.FetchPremiumByType(c.Context(), caller)
	if err != nil {
		return response.InternalServerError(c, "Failed to load premiums")
	}

	return response.Success(c, "Premiums retrieved successfully", fiber.Map{
		"rows":  rows,
		"chart": chartdata.PremiumPie(rows),
	})
}
