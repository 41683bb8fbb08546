// Package response defines the JSON envelope every endpoint returns.
// Success replies carry the payload under "data"; failures put the
// human-readable reason in "error" and omit "data" entirely.
package response

import "github.com/gofiber/fiber/v2"

// Response is the envelope for every API reply
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func reply(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Success replies 200 with a payload
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return reply(c, fiber.StatusOK, message, data)
}

// Created replies 201 with the created resource
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return reply(c, fiber.StatusCreated, message, data)
}

// Error replies with the failure envelope
func Error(c *fiber.Ctx, statusCode int, reason string) error {
	return c.Status(statusCode).JSON(Response{
		Success: false,
		Error:   reason,
	})
}

// BadRequest replies 400
func BadRequest(c *fiber.Ctx, reason string) error {
	return Error(c, fiber.StatusBadRequest, reason)
}

// Unauthorized replies 401
func Unauthorized(c *fiber.Ctx, reason string) error {
	return Error(c, fiber.StatusUnauthorized, reason)
}

// Forbidden replies 403
func Forbidden(c *fiber.Ctx, reason string) error {
	return Error(c, fiber.StatusForbidden, reason)
}

// NotFound replies 404
func NotFound(c *fiber.Ctx, reason string) error {
	return Error(c, fiber.StatusNotFound, reason)
}

// Conflict replies 409
func Conflict(c *fiber.Ctx, reason string) error {
	return Error(c, fiber.StatusConflict, reason)
}

// InternalServerError replies 500
func InternalServerError(c *fiber.Ctx, reason string) error {
	return Error(c, fiber.StatusInternalServerError, reason)
}
