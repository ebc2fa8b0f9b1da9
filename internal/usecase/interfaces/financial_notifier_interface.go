package interfaces

import (
	"context"

	"geekgalaxy_pos/internal/domain/entities"
)

//go:generate mockgen -source=financial_notifier_interface.go -destination=mocks/mock_financial_notifier_interface.go -package=mock_interfaces

// IFinancialNotifier tells downstream finance about a committed cancellation
// (event stream, payment provider refund).
type IFinancialNotifier interface {
	NotifyCancellation(ctx context.Context, sale entities.Sale) error
}
