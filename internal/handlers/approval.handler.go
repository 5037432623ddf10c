package handlers

import (
	"rigbook/internal/app"
	bookingController "rigbook/internal/controllers/booking"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

// ApprovalHandler serves the public link flows for client approval: the
// emailed approve link and the payment gateway return URL. Both end in a
// redirect to a status page; the browser never sees JSON.
type ApprovalHandler struct {
	Handler
	bookingController bookingController.BookingControllerInterface
	baseURL           string
}

func NewApprovalHandler(app app.App, router fiber.Router) *ApprovalHandler {
	log := logger.New("handlers").File("approval_handler")
	return &ApprovalHandler{
		bookingController: app.BookingController,
		baseURL:           app.Config.PublicBaseURL,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ApprovalHandler) Register() {
	h.router.Get("/approvals/:token", h.approve)
	h.router.Get("/payments/callback", h.paymentCallback)
}

func (h *ApprovalHandler) approve(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).
		File("approval_handler").Function("approve")

	token := c.Params("token")

	result, err := h.bookingController.ApproveByToken(c.UserContext(), token)
	if err != nil {
		log.Warn("Approval link failed", "error", err)
		return statusRedirect(c, h.baseURL, redirectPage(err))
	}

	if result.AlreadyApproved {
		return statusRedirect(c, h.baseURL, "already_approved")
	}
	return statusRedirect(c, h.baseURL, "approved")
}

func (h *ApprovalHandler) paymentCallback(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).
		File("approval_handler").Function("paymentCallback")

	paymentID := c.Query("payment_id")

	result, err := h.bookingController.ApproveByPayment(c.UserContext(), paymentID)
	if err != nil {
		log.Warn("Payment callback failed", "paymentID", paymentID, "error", err)
		return statusRedirect(c, h.baseURL, redirectPage(err))
	}

	if result.AlreadyApproved {
		return statusRedirect(c, h.baseURL, "already_approved")
	}
	return statusRedirect(c, h.baseURL, "approved")
}
