package services

import (
	"context"
	"strconv"

	appConfig "rigbook/config"
	"rigbook/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
)

// PaymentInfo is the slice of a gateway payment the workflow cares about: its
// status and the external reference, which carries the client approval token.
type PaymentInfo struct {
	ID        string
	Status    string
	Reference string
}

const PaymentStatusApproved = "approved"

// PaymentGateway looks up payments on the external processor. The deposit
// checkout itself lives outside this service; only the status check that
// guards the approval-by-payment proxy happens here.
type PaymentGateway interface {
	GetPayment(ctx context.Context, paymentID string) (*PaymentInfo, error)
}

type mercadoPagoGateway struct {
	client payment.Client
	log    logger.Logger
}

func NewPaymentGateway(cfg appConfig.Config) (PaymentGateway, error) {
	log := logger.New("paymentGateway").Function("NewPaymentGateway")

	if cfg.MercadoPagoToken == "" {
		log.Info("Payment gateway not configured, payment callbacks will be rejected")
		return &mercadoPagoGateway{log: logger.New("paymentGateway")}, nil
	}

	sdkConfig, err := config.New(cfg.MercadoPagoToken)
	if err != nil {
		return nil, log.Err("failed to create payment sdk config", err)
	}

	return &mercadoPagoGateway{
		client: payment.NewClient(sdkConfig),
		log:    logger.New("paymentGateway"),
	}, nil
}

func (g *mercadoPagoGateway) GetPayment(
	ctx context.Context,
	paymentID string,
) (*PaymentInfo, error) {
	log := g.log.Function("GetPayment").TraceFromContext(ctx)

	if g.client == nil {
		return nil, log.ErrorWithType(
			models.ErrUpstreamUnavailable,
			"payment gateway is not configured",
		)
	}

	id, err := strconv.Atoi(paymentID)
	if err != nil {
		return nil, log.ErrorWithType(
			models.ErrValidationFailure,
			"payment id is not numeric",
			"paymentID", paymentID,
		)
	}

	resp, err := g.client.Get(ctx, id)
	if err != nil {
		return nil, log.ErrorWithType(
			models.ErrUpstreamUnavailable,
			"payment lookup failed",
			"paymentID", paymentID,
			"error", err,
		)
	}

	log.Info("Payment fetched", "paymentID", paymentID, "status", resp.Status)
	return &PaymentInfo{
		ID:        strconv.Itoa(resp.ID),
		Status:    resp.Status,
		Reference: resp.ExternalReference,
	}, nil
}
