package messaging

import (
	"context"
	"encoding/json"
	"time"

	"geekgalaxy_pos/internal/domain/entities"
	"geekgalaxy_pos/internal/usecase/interfaces"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const SaleCancelledEventType = "SaleCancelled"

type SaleCancelledItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// SaleCancelledEvent is the payload finance consumes to reverse a sale.
type SaleCancelledEvent struct {
	SaleID           string              `json:"sale_id"`
	SellerID         string              `json:"seller_id"`
	ClientID         string              `json:"client_id,omitempty"`
	PaymentMethod    string              `json:"payment_method"`
	PaymentReference string              `json:"payment_reference,omitempty"`
	Total            string              `json:"total"`
	CancelledBy      string              `json:"cancelled_by"`
	CancelledAt      string              `json:"cancelled_at"`
	Note             string              `json:"note,omitempty"`
	Items            []SaleCancelledItem `json:"items"`
}

// NewSaleCancelledMessage keys the message by sale id so every event of a sale lands on one partition.
func NewSaleCancelledMessage(sale entities.Sale) (kafka.Message, error) {
	event := SaleCancelledEvent{
		SaleID:           sale.ID,
		SellerID:         sale.SellerID,
		ClientID:         sale.ClientID,
		PaymentMethod:    string(sale.PaymentMethod),
		PaymentReference: sale.PaymentReference,
		Total:            sale.Total.StringFixed(2),
		CancelledBy:      sale.CancelledBy,
		Note:             sale.CancelNote,
		Items:            make([]SaleCancelledItem, 0, len(sale.Items)),
	}
	if sale.CancelledAt != nil {
		event.CancelledAt = sale.CancelledAt.UTC().Format(time.RFC3339Nano)
	}
	for _, it := range sale.Items {
		event.Items = append(event.Items, SaleCancelledItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.StringFixed(2),
		})
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(sale.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(SaleCancelledEventType)},
		},
	}, nil
}

// KafkaNotifier publishes SaleCancelled events.
type KafkaNotifier struct {
	producer MessageProducer
	logger   *zap.Logger
}

var _ interfaces.IFinancialNotifier = (*KafkaNotifier)(nil)

func NewKafkaNotifier(producer MessageProducer, logger *zap.Logger) *KafkaNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaNotifier{producer: producer, logger: logger}
}

func (n *KafkaNotifier) NotifyCancellation(ctx context.Context, sale entities.Sale) error {
	msg, err := NewSaleCancelledMessage(sale)
	if err != nil {
		n.logger.Error("[sale][kafka] failed to serialize SaleCancelled event", zap.String("sale_id", sale.ID), zap.Error(err))
		return err
	}
	if err := n.producer.WriteMessage(ctx, msg); err != nil {
		n.logger.Error("[sale][kafka] failed to publish SaleCancelled event", zap.String("sale_id", sale.ID), zap.Error(err))
		return err
	}
	n.logger.Info("[sale][kafka] SaleCancelled published", zap.String("sale_id", sale.ID))
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.producer.Close()
}
