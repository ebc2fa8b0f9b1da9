package messaging

import (
	"context"
	"errors"

	"geekgalaxy_pos/internal/domain/entities"
	"geekgalaxy_pos/internal/usecase/interfaces"

	"go.uber.org/zap"
)

// FanOutNotifier delivers a cancellation to every sink. A failing sink does not stop the others.
type FanOutNotifier struct {
	sinks []interfaces.IFinancialNotifier
}

var _ interfaces.IFinancialNotifier = (*FanOutNotifier)(nil)

func NewFanOutNotifier(sinks ...interfaces.IFinancialNotifier) *FanOutNotifier {
	return &FanOutNotifier{sinks: sinks}
}

func (f *FanOutNotifier) NotifyCancellation(ctx context.Context, sale entities.Sale) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.NotifyCancellation(ctx, sale); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogNotifier only records the cancellation. Used when no broker is configured.
type LogNotifier struct {
	logger *zap.Logger
}

var _ interfaces.IFinancialNotifier = (*LogNotifier)(nil)

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyCancellation(_ context.Context, sale entities.Sale) error {
	n.logger.Info("[sale][notifier] sale cancelled",
		zap.String("sale_id", sale.ID),
		zap.String("payment_method", string(sale.PaymentMethod)),
		zap.String("total", sale.Total.StringFixed(2)),
		zap.String("cancelled_by", sale.CancelledBy),
	)
	return nil
}
