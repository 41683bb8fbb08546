package handlers

import (
	"errors"

	"insureadmin/internal/adapters/http/middleware"
	"insureadmin/internal/core/services"
	"insureadmin/internal/core/state"
	"insureadmin/internal/pkg/pagination"
	"insureadmin/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user administration endpoints
type UserHandler struct {
	userService *services.UserService
	states      *state.Manager
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, states *state.Manager) *UserHandler {
	return &UserHandler{userService: userService, states: states}
}

// AssignClientRequest represents an agent/client assignment request body
type AssignClientRequest struct {
	ClientID string `json:"client_id"`
}

// ListUsers handles the paginated user listing
// @Summary List users
// @Description List all users with pagination (admin only)
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	store := h.states.Store(userID)

	page, err := store.FetchUsers(c.Context(), params)
	if err != nil {
		return response.InternalServerError(c, "Failed to list users")
	}

	return response.Success(c, "Users retrieved successfully", page)
}

// GetUser handles fetching one user
// @Summary Get user
// @Description Get a single user by id (admin only)
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	callerID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	store := h.states.Store(callerID)
	user, err := store.FetchUserByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to get user")
	}

	return response.Success(c, "User retrieved successfully", user)
}

// CreateUser handles admin user creation
// @Summary Create user
// @Description Create a user with an explicit role (admin only)
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateUserInput true "User data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users [post]
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var input services.CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.Email == "" || input.Password == "" || input.Role == "" {
		return response.BadRequest(c, "Email, password and role are required")
	}

	user, err := h.userService.CreateUser(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRoleNotFound):
			return response.BadRequest(c, "Unknown role")
		case errors.Is(err, services.ErrUserAlreadyExists):
			return response.Conflict(c, "Email already registered")
		case errors.Is(err, services.ErrPasswordTooShort):
			return response.BadRequest(c, "Password must be at least 8 characters")
		default:
			return response.InternalServerError(c, "Failed to create user")
		}
	}

	return response.Created(c, "User created successfully", user)
}

// UpdateUser handles user updates
// @Summary Update user
// @Description Update a user's profile or role (admin only)
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param body body services.UpdateUserInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	var input services.UpdateUserInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.UpdateUser(c.Context(), c.Params("id"), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		case errors.Is(err, services.ErrRoleNotFound):
			return response.BadRequest(c, "Unknown role")
		default:
			return response.InternalServerError(c, "Failed to update user")
		}
	}

	return response.Success(c, "User updated successfully", user)
}

// DeleteUser handles user deletion
// @Summary Delete user
// @Description Soft delete a user (admin only)
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.userService.DeleteUser(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to delete user")
	}

	return response.Success(c, "User deleted successfully", nil)
}

// ListRoles handles the roles listing
// @Summary List roles
// @Description List all assignable roles
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /roles [get]
func (h *UserHandler) ListRoles(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	store := h.states.Store(userID)
	roles, err := store.FetchRoles(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list roles")
	}

	return response.Success(c, "Roles retrieved successfully", roles)
}

// AssignClient handles attaching a client to an agent
// @Summary Assign client to agent
// @Description Put a policy holder under an agent's management
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Agent ID"
// @Param body body AssignClientRequest true "Client to assign"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id}/clients [post]
func (h *UserHandler) AssignClient(c *fiber.Ctx) error {
	var req AssignClientRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.ClientID == "" {
		return response.BadRequest(c, "Client id is required")
	}

	err := h.userService.AssignClient(c.Context(), c.Params("id"), req.ClientID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		case errors.Is(err, services.ErrAgentRequired):
			return response.BadRequest(c, "Target user is not an agent")
		case errors.Is(err, services.ErrClientRequired):
			return response.BadRequest(c, "Client must be a policy holder")
		default:
			return response.InternalServerError(c, "Failed to assign client")
		}
	}

	return response.Success(c, "Client assigned successfully", nil)
}

// UnassignClient handles removing a client from an agent
// @Summary Unassign client from agent
// @Description Remove a policy holder from an agent's management
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Agent ID"
// @Param clientId path string true "Client ID"
// @Success 200 {object} response.Response
// @Router /users/{id}/clients/{clientId} [delete]
func (h *UserHandler) UnassignClient(c *fiber.Ctx) error {
	if err := h.userService.UnassignClient(c.Context(), c.Params("id"), c.Params("clientId")); err != nil {
		return response.InternalServerError(c, "Failed to unassign client")
	}

	return response.Success(c, "Client unassigned successfully", nil)
}

// ListClients handles listing an agent's clients
// @Summary List agent clients
// @Description List the policy holders assigned to an agent. Agents may only read their own book.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Agent ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users/{id}/clients [get]
func (h *UserHandler) ListClients(c *fiber.Ctx) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	clients, err := h.userService.ClientsOfAgent(c.Context(), caller, c.Params("id"))
	if err != nil {
		if errors.Is(err, services.ErrForbidden) {
			return response.Forbidden(c, "Not allowed to view this client list")
		}
		return response.InternalServerError(c, "Failed to list clients")
	}

	return response.Success(c, "Clients retrieved successfully", clients)
}

// ListUsersByRole handles listing users holding one role
// @Summary List users by role
// @Description List every user holding the named role (admin picker)
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param name path string true "Role name"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /roles/{name}/users [get]
func (h *UserHandler) ListUsersByRole(c *fiber.Ctx) error {
	users, err := h.userService.UsersByRole(c.Context(), c.Params("name"))
	if err != nil {
		if errors.Is(err, services.ErrRoleNotFound) {
			return response.NotFound(c, "Role not found")
		}
		return response.InternalServerError(c, "Failed to list users")
	}

	return response.Success(c, "Users retrieved successfully", users)
}
