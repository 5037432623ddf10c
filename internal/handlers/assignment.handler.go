package handlers

import (
	"rigbook/internal/app"
	assignmentController "rigbook/internal/controllers/assignment"
	"rigbook/internal/handlers/middleware"
	"rigbook/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AssignmentHandler serves both halves of crew coordination: the admin roster
// routes behind the office JWT, and the public contractor links.
type AssignmentHandler struct {
	Handler
	assignmentController assignmentController.AssignmentControllerInterface
	baseURL              string
}

func NewAssignmentHandler(app app.App, router fiber.Router) *AssignmentHandler {
	log := logger.New("handlers").File("assignment_handler")
	return &AssignmentHandler{
		assignmentController: app.AssignmentController,
		baseURL:              app.Config.PublicBaseURL,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *AssignmentHandler) Register() {
	roster := h.router.Group("/api/bookings/:id/roster", h.middleware.RequireAdmin())
	roster.Post("", h.buildRoster)
	roster.Post("/notify", h.notifyRoster)

	h.router.Get("/rosters/:token", h.rosterContext)
	h.router.Get("/assignments/respond", h.respond)
	h.router.Get("/jobs/accept", h.directAccept)
}

// rosterContext backs the token-gated roster screen; unlike the link flows it
// returns data, not a redirect.
func (h *AssignmentHandler) rosterContext(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).
		File("assignment_handler").Function("rosterContext")

	result, err := h.assignmentController.RosterContext(c.UserContext(), c.Params("token"))
	if err != nil {
		log.Warn("Roster context lookup failed", "error", err)
		return c.Status(httpStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"result": result,
	})
}

func (h *AssignmentHandler) buildRoster(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).
		File("assignment_handler").Function("buildRoster")

	bookingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		log.Warn("Invalid booking ID", "id", c.Params("id"))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid booking ID",
		})
	}

	var req assignmentController.BuildRosterRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err, "bookingID", bookingID)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result, err := h.assignmentController.BuildRoster(c.UserContext(), bookingID, &req)
	if err != nil {
		_ = log.Err("Failed to build roster", err, "bookingID", bookingID)
		return c.Status(httpStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"result": result,
	})
}

func (h *AssignmentHandler) notifyRoster(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).
		File("assignment_handler").Function("notifyRoster")

	bookingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		log.Warn("Invalid booking ID", "id", c.Params("id"))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid booking ID",
		})
	}

	result, err := h.assignmentController.NotifyRoster(c.UserContext(), bookingID)
	if err != nil {
		_ = log.Err("Failed to notify roster", err, "bookingID", bookingID)
		return c.Status(httpStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	log.Info("Roster notified", "bookingID", bookingID, "admin", middleware.GetAdminSubject(c))
	return c.JSON(fiber.Map{
		"result": result,
	})
}

func (h *AssignmentHandler) respond(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).
		File("assignment_handler").Function("respond")

	token := c.Query("token")
	action := c.Query("action")

	result, err := h.assignmentController.Respond(c.UserContext(), token, action)
	if err != nil {
		log.Warn("Assignment response failed", "action", action, "error", err)
		return statusRedirect(c, h.baseURL, redirectPage(err))
	}

	if result.AlreadyResponded {
		return statusRedirect(c, h.baseURL, "already_responded")
	}
	if result.Status == models.AssignmentDeclined {
		return statusRedirect(c, h.baseURL, "declined")
	}
	return statusRedirect(c, h.baseURL, "accepted")
}

func (h *AssignmentHandler) directAccept(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).
		File("assignment_handler").Function("directAccept")

	token := c.Query("token")

	contractorID, err := uuid.Parse(c.Query("contractor"))
	if err != nil {
		log.Warn("Invalid contractor ID", "contractor", c.Query("contractor"))
		return statusRedirect(c, h.baseURL, "invalid_request")
	}

	result, err := h.assignmentController.DirectAccept(c.UserContext(), token, contractorID)
	if err != nil {
		log.Warn("Direct accept failed", "error", err)
		return statusRedirect(c, h.baseURL, redirectPage(err))
	}

	if !result.Won {
		return statusRedirect(c, h.baseURL, "already_taken")
	}
	return statusRedirect(c, h.baseURL, "job_confirmed")
}
