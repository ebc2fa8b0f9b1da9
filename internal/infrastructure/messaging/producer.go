package messaging

import (
	"context"

	"geekgalaxy_pos/internal/infrastructure/config"

	otelkafka "github.com/Trendyol/otel-kafka-konsumer"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// MessageProducer publishes messages to Kafka.
type MessageProducer interface {
	WriteMessage(ctx context.Context, msg kafka.Message) error
	Close() error
}

// NewSalesProducer builds a traced writer for the sales topic. The trace context of the
// caller travels in the message headers.
func NewSalesProducer(cfg *config.Config, tp trace.TracerProvider) (MessageProducer, error) {
	baseWriter := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBroker),
		Topic:        cfg.KafkaSalesTopic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: config.KafkaBatchTimeout,
		BatchSize:    config.KafkaBatchSize,
		RequiredAcks: kafka.RequireAll,
	}

	return otelkafka.NewWriter(baseWriter,
		otelkafka.WithTracerProvider(tp),
		otelkafka.WithPropagator(propagation.TraceContext{}),
		otelkafka.WithAttributes(
			[]attribute.KeyValue{
				semconv.MessagingDestinationNameKey.String(cfg.KafkaSalesTopic),
				attribute.String("messaging.kafka.client_id", config.ServiceName),
			},
		),
	)
}
