package handlers

import (
	"errors"
	"strconv"

	"insureadmin/internal/adapters/http/middleware"
	"insureadmin/internal/core/domain"
	"insureadmin/internal/core/services"
	"insureadmin/internal/core/state"
	"insureadmin/internal/pkg/pagination"
	"insureadmin/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PolicyHandler handles catalog and enrollment endpoints
type PolicyHandler struct {
	policyService *services.PolicyService
	states        *state.Manager
}

// NewPolicyHandler creates a new policy handler
func NewPolicyHandler(policyService *services.PolicyService, states *state.Manager) *PolicyHandler {
	return &PolicyHandler{policyService: policyService, states: states}
}

// ============================================================
// Catalog
// ============================================================

// ListCatalog handles the catalog listing
// @Summary List policy catalog
// @Description List all offerable policy products
// @Tags Policies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /policies [get]
func (h *PolicyHandler) ListCatalog(c *fiber.Ctx) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	store := h.states.Store(caller.UserID)
	catalog, err := store.FetchPolicyCatalog(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list policies")
	}

	return response.Success(c, "Policies retrieved successfully", catalog)
}

// GetCatalogPolicy handles fetching one catalog policy
// @Summary Get policy
// @Description Get a single catalog policy
// @Tags Policies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Policy ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /policies/{id} [get]
func (h *PolicyHandler) GetCatalogPolicy(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid policy id")
	}

	policy, err := h.policyService.GetCatalogPolicy(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrPolicyNotFound) {
			return response.NotFound(c, "Policy not found")
		}
		return response.InternalServerError(c, "Failed to get policy")
	}

	return response.Success(c, "Policy retrieved successfully", policy)
}

// CreateCatalogPolicy handles catalog creation
// @Summary Create policy
// @Description Create a catalog policy (admin only)
// @Tags Policies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.PolicyInput true "Policy data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /policies [post]
func (h *PolicyHandler) CreateCatalogPolicy(c *fiber.Ctx) error {
	var input services.PolicyInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.Name == "" || input.PolicyNumber == "" || input.Type == "" {
		return response.BadRequest(c, "Name, policy number and type are required")
	}

	policy, err := h.policyService.CreateCatalogPolicy(c.Context(), &input)
	if err != nil {
		return response.BadRequest(c, "Failed to create policy: "+err.Error())
	}

	return response.Created(c, "Policy created successfully", policy)
}

// UpdateCatalogPolicy handles catalog updates
// @Summary Update policy
// @Description Update a catalog policy (admin only)
// @Tags Policies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Policy ID"
// @Param body body services.PolicyInput true "Policy data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /policies/{id} [put]
func (h *PolicyHandler) UpdateCatalogPolicy(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid policy id")
	}

	var input services.PolicyInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	policy, err := h.policyService.UpdateCatalogPolicy(c.Context(), uint(id), &input)
	if err != nil {
		if errors.Is(err, services.ErrPolicyNotFound) {
			return response.NotFound(c, "Policy not found")
		}
		return response.BadRequest(c, "Failed to update policy: "+err.Error())
	}

	return response.Success(c, "Policy updated successfully", policy)
}

// DeleteCatalogPolicy handles catalog deletion
// @Summary Delete policy
// @Description Soft delete a catalog policy (admin only)
// @Tags Policies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Policy ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /policies/{id} [delete]
func (h *PolicyHandler) DeleteCatalogPolicy(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid policy id")
	}

	if err := h.policyService.DeleteCatalogPolicy(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrPolicyNotFound) {
			return response.NotFound(c, "Policy not found")
		}
		return response.InternalServerError(c, "Failed to delete policy")
	}

	return response.Success(c, "Policy deleted successfully", nil)
}

// ============================================================
// Enrollments
// ============================================================

// ListEnrollments handles the role-scoped enrollment listing
// @Summary List enrollments
// @Description List enrollments visible to the caller's role
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param type query string false "Policy type filter"
// @Param status query string false "Enrollment status filter"
// @Param start_date query string false "Policy start date lower bound (YYYY-MM-DD)"
// @Param end_date query string false "Policy end date upper bound (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Router /enrollments [get]
func (h *PolicyHandler) ListEnrollments(c *fiber.Ctx) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	store := h.states.Store(caller.UserID)

	var (
		page *pagination.Response
		err  error
	)
	switch caller.Role {
	case domain.RoleAdministrator:
		page, err = store.FetchPoliciesForAdmin(c.Context(), params)
	case domain.RoleAgent:
		page, err = store.FetchPoliciesForAgent(c.Context(), params)
	case domain.RolePolicyHolder:
		page, err = store.FetchPoliciesForUser(c.Context(), params)
	default:
		return response.Forbidden(c, "Unknown role")
	}
	if err != nil {
		return response.InternalServerError(c, "Failed to list enrollments")
	}

	filters := state.Filters{
		Type:      c.Query("type"),
		Status:    c.Query("status"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}
	if filters != (state.Filters{}) {
		page.Data = store.SetFilters(filters)
	}

	return response.Success(c, "Enrollments retrieved successfully", page)
}

// GetEnrollment handles fetching one enrollment
// @Summary Get enrollment
// @Description Get a single enrollment if the caller's scope covers it
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /enrollments/{id} [get]
func (h *PolicyHandler) GetEnrollment(c *fiber.Ctx) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid enrollment id")
	}

	enrollment, err := h.policyService.GetEnrollment(c.Context(), caller, uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEnrollmentNotFound):
			return response.NotFound(c, "Enrollment not found")
		case errors.Is(err, services.ErrForbidden):
			return response.Forbidden(c, "Not allowed to view this enrollment")
		default:
			return response.InternalServerError(c, "Failed to get enrollment")
		}
	}

	return response.Success(c, "Enrollment retrieved successfully", enrollment)
}

// CreateEnrollment handles enrolling a user in a policy
// @Summary Create enrollment
// @Description Enroll a user in a catalog policy
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.EnrollmentInput true "Enrollment data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /enrollments [post]
func (h *PolicyHandler) CreateEnrollment(c *fiber.Ctx) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.EnrollmentInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.UserID == "" {
		// Policy holders enroll themselves unless told otherwise
		input.UserID = caller.UserID
	}
	if input.PolicyID == 0 {
		return response.BadRequest(c, "Policy id is required")
	}

	store := h.states.Store(caller.UserID)
	created, err := store.AddEnrollment(c.Context(), caller, &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPolicyNotFound):
			return response.NotFound(c, "Policy not found")
		case errors.Is(err, services.ErrInvalidStatus):
			return response.BadRequest(c, "Invalid enrollment status")
		case errors.Is(err, services.ErrForbidden):
			return response.Forbidden(c, "Not allowed to enroll this user")
		default:
			return response.InternalServerError(c, "Failed to create enrollment")
		}
	}

	return response.Created(c, "Enrollment created successfully", created)
}

// UpdateEnrollment handles enrollment status changes
// @Summary Update enrollment
// @Description Change an enrollment's status
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Param body body services.UpdateEnrollmentInput true "New status"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /enrollments/{id} [put]
func (h *PolicyHandler) UpdateEnrollment(c *fiber.Ctx) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid enrollment id")
	}

	var input services.UpdateEnrollmentInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	store := h.states.Store(caller.UserID)
	updated, err := store.UpdateEnrollment(c.Context(), caller, uint(id), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEnrollmentNotFound):
			return response.NotFound(c, "Enrollment not found")
		case errors.Is(err, services.ErrInvalidStatus):
			return response.BadRequest(c, "Invalid enrollment status")
		case errors.Is(err, services.ErrForbidden):
			return response.Forbidden(c, "Not allowed to update this enrollment")
		default:
			return response.InternalServerError(c, "Failed to update enrollment")
		}
	}

	return response.Success(c, "Enrollment updated successfully", updated)
}

// DeleteEnrollment handles enrollment deletion
// @Summary Delete enrollment
// @Description Remove an enrollment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /enrollments/{id} [delete]
func (h *PolicyHandler) DeleteEnrollment(c *fiber.Ctx) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid enrollment id")
	}

	store := h.states.Store(caller.UserID)
	if err := store.DeleteEnrollment(c.Context(), caller, uint(id)); err != nil {
		switch {
		case errors.Is(err, services.ErrEnrollmentNotFound):
			return response.NotFound(c, "Enrollment not found")
		case errors.Is(err, services.ErrForbidden):
			return response.Forbidden(c, "Not allowed to delete this enrollment")
		default:
			return response.InternalServerError(c, "Failed to delete enrollment")
		}
	}

	return response.Success(c, "Enrollment deleted successfully", nil)
}
