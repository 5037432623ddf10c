package handlers

import (
	"rigbook/internal/app"
	bookingController "rigbook/internal/controllers/booking"
	"rigbook/internal/handlers/middleware"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type BookingHandler struct {
	Handler
	bookingController bookingController.BookingControllerInterface
}

func NewBookingHandler(app app.App, router fiber.Router) *BookingHandler {
	log := logger.New("handlers").File("booking_handler")
	return &BookingHandler{
		bookingController: app.BookingController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *BookingHandler) Register() {
	bookings := h.router.Group("/bookings", h.middleware.RequireAdmin())

	bookings.Post("/:id/send-quote", h.sendQuote)
}

func (h *BookingHandler) sendQuote(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).
		File("booking_handler").Function("sendQuote")

	bookingIDParam := c.Params("id")
	bookingID, err := uuid.Parse(bookingIDParam)
	if err != nil {
		log.Warn("Invalid booking ID", "id", bookingIDParam)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid booking ID",
		})
	}

	var req bookingController.SendQuoteRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err, "bookingID", bookingID)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result, err := h.bookingController.SendQuote(c.UserContext(), bookingID, &req)
	if err != nil {
		_ = log.Err("Failed to send quote", err, "bookingID", bookingID)
		return c.Status(httpStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	log.Info("Quote sent", "bookingID", bookingID, "admin", middleware.GetAdminSubject(c))
	return c.JSON(fiber.Map{
		"result": result,
	})
}
