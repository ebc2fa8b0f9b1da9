package payments

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"geekgalaxy_pos/internal/domain/entities"
	"geekgalaxy_pos/internal/usecase/interfaces"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/refund"
	"go.uber.org/zap"
)

var ErrMissingMercadoPagoAccessToken = errors.New("missing MERCADOPAGO_ACCESS_TOKEN")
var ErrMercadoPagoGatewayNotConfigured = errors.New("mercado pago gateway not configured")

type refundClient interface {
	Create(ctx context.Context, paymentID int) (*refund.Response, error)
}

// MercadoPagoGateway refunds the provider payment behind a cancelled card or PIX sale.
// Cash sales and sales without a payment reference have nothing to refund.
type MercadoPagoGateway struct {
	client   refundClient
	mockMode bool
	logger   *zap.Logger
}

var _ interfaces.IFinancialNotifier = (*MercadoPagoGateway)(nil)

func NewMercadoPagoGateway(accessToken string, mockMode bool, logger *zap.Logger) (*MercadoPagoGateway, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if mockMode {
		logger.Info("[payment][gateway] mock mode enabled")
		return &MercadoPagoGateway{mockMode: true, logger: logger}, nil
	}

	if accessToken == "" {
		logger.Warn("[payment][gateway] missing MERCADOPAGO_ACCESS_TOKEN")
		return nil, ErrMissingMercadoPagoAccessToken
	}

	cfg, err := config.New(accessToken)
	if err != nil {
		logger.Error("[payment][gateway] failed creating sdk config", zap.Error(err))
		return nil, err
	}
	logger.Info("[payment][gateway] Mercado Pago client initialized")

	return &MercadoPagoGateway{client: refund.NewClient(cfg), logger: logger}, nil
}

func (g *MercadoPagoGateway) NotifyCancellation(ctx context.Context, sale entities.Sale) error {
	if sale.PaymentMethod == entities.PaymentMethodCash || sale.PaymentReference == "" {
		return nil
	}

	paymentID, err := strconv.Atoi(sale.PaymentReference)
	if err != nil {
		g.logger.Warn("[payment][gateway] invalid payment reference", zap.String("sale_id", sale.ID), zap.String("payment_reference", sale.PaymentReference))
		return fmt.Errorf("invalid payment reference %q: %w", sale.PaymentReference, err)
	}

	if g.mockMode {
		g.logger.Info("[payment][gateway] mock refund success",
			zap.String("sale_id", sale.ID),
			zap.Int("provider_payment_id", paymentID),
			zap.String("amount", sale.Total.StringFixed(2)),
		)
		return nil
	}

	if g.client == nil {
		g.logger.Error("[payment][gateway] gateway not configured")
		return ErrMercadoPagoGatewayNotConfigured
	}
	g.logger.Info("[payment][gateway] refund start", zap.String("sale_id", sale.ID), zap.Int("provider_payment_id", paymentID))

	resp, err := g.client.Create(ctx, paymentID)
	if err != nil {
		g.logger.Error("[payment][gateway] sdk refund failed", zap.String("sale_id", sale.ID), zap.Error(err))
		return err
	}

	g.logger.Info("[payment][gateway] refund success",
		zap.String("sale_id", sale.ID),
		zap.Int("provider_refund_id", resp.ID),
		zap.String("provider_status", resp.Status),
	)
	return nil
}
