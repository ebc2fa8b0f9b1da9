package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"geekgalaxy_pos/internal/domain/entities"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureProducer struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (p *captureProducer) WriteMessage(_ context.Context, msg kafka.Message) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *captureProducer) Close() error {
	p.closed = true
	return nil
}

func cancelledSale() entities.Sale {
	at := time.Date(2024, 3, 10, 15, 4, 5, 0, time.UTC)
	return entities.Sale{
		ID:            "sale-1",
		SellerID:      "att-1",
		PaymentMethod: entities.PaymentMethodPix,
		Status:        entities.SaleStatusCancelled,
		Total:         decimal.RequireFromString("75"),
		Items: []entities.SaleItem{
			{ID: "i1", ProductID: "p1", Quantity: 3, UnitPrice: decimal.RequireFromString("25")},
		},
		CancelledAt: &at,
		CancelledBy: "sup-1",
	}
}

func TestNewSaleCancelledMessage(t *testing.T) {
	msg, err := NewSaleCancelledMessage(cancelledSale())
	require.NoError(t, err)
	assert.Equal(t, "sale-1", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, SaleCancelledEventType, string(msg.Headers[0].Value))

	var event SaleCancelledEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, "75.00", event.Total)
	assert.Equal(t, "PIX", event.PaymentMethod)
	assert.Equal(t, "2024-03-10T15:04:05Z", event.CancelledAt)
	require.Len(t, event.Items, 1)
	assert.Equal(t, "25.00", event.Items[0].UnitPrice)
}

func TestKafkaNotifier(t *testing.T) {
	p := &captureProducer{}
	n := NewKafkaNotifier(p, nil)
	require.NoError(t, n.NotifyCancellation(context.Background(), cancelledSale()))
	assert.Len(t, p.msgs, 1)

	p.err = errors.New("broker down")
	assert.EqualError(t, n.NotifyCancellation(context.Background(), cancelledSale()), "broker down")

	require.NoError(t, n.Close())
	assert.True(t, p.closed)
}
