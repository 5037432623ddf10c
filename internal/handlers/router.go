package handlers

import (
	"errors"
	"fmt"

	"rigbook/internal/app"
	"rigbook/internal/handlers/middleware"
	"rigbook/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	middleware middleware.Middleware
	log        logger.Logger
	router     fiber.Router
}

func Router(router fiber.Router, app *app.App) (err error) {
	NewApprovalHandler(*app, router).Register()
	NewAssignmentHandler(*app, router).Register()

	api := router.Group("/api")
	HealthHandler(api, app.Config)
	NewBookingHandler(*app, api).Register()

	return nil
}

// statusRedirect sends the browser to the public status page for a link flow
// outcome. Link endpoints always end in a redirect, never a JSON body.
func statusRedirect(c *fiber.Ctx, baseURL, page string) error {
	return c.Redirect(fmt.Sprintf("%s/status/%s", baseURL, page), fiber.StatusFound)
}

// redirectPage maps a workflow error to the status page shown at the end of a
// public link flow.
func redirectPage(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, models.ErrAlreadyConsumed):
		return "already_approved"
	case errors.Is(err, models.ErrConflictingState):
		return "conflict"
	case errors.Is(err, models.ErrValidationFailure):
		return "invalid_request"
	default:
		return "server_error"
	}
}

// httpStatus maps a workflow error to the status code for admin JSON routes.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrValidationFailure):
		return fiber.StatusBadRequest
	case errors.Is(err, models.ErrInvalidToken):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrAlreadyConsumed),
		errors.Is(err, models.ErrConflictingState):
		return fiber.StatusConflict
	case errors.Is(err, models.ErrUpstreamUnavailable):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
