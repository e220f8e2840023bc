package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

// Producer sends JSON encoded messages to a topic
type Producer interface {
	ProduceMessage(ctx context.Context, topic, key string, message interface{}) error
	Close() error
}

type kafkaProducer struct {
	syncProducer sarama.SyncProducer
	logger       *zap.Logger
}

// NewKafkaProducer connects a synchronous sarama producer to brokers
func NewKafkaProducer(brokers []string, logger *zap.Logger) (Producer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	p, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("error creating producer: %w", err)
	}

	return NewProducerFromSarama(p, logger), nil
}

// NewProducerFromSarama wraps an existing sarama.SyncProducer
func NewProducerFromSarama(p sarama.SyncProducer, logger *zap.Logger) Producer {
	return &kafkaProducer{syncProducer: p, logger: logger}
}

// ProduceMessage injects the trace context of ctx into the record headers
func (p *kafkaProducer) ProduceMessage(ctx context.Context, topic, key string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("error encoding message: %w", err)
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := make([]sarama.RecordHeader, 0, len(carrier))
	for k, v := range carrier {
		headers = append(headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}

	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(payload),
		Headers: headers,
	}

	partition, offset, err := p.syncProducer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("error sending message: %w", err)
	}

	p.logger.Debug("Message sent",
		zap.String("topic", topic),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

func (p *kafkaProducer) Close() error {
	return p.syncProducer.Close()
}

type breakerProducer struct {
	next Producer
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerProducer guards next with a circuit breaker so a dead broker
// fails fast instead of blocking every request
func NewBreakerProducer(next Producer, logger *zap.Logger) Producer {
	settings := gobreaker.Settings{
		Name:        "KafkaProducer",
		MaxRequests: 3,
		Interval:    5 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &breakerProducer{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (p *breakerProducer) ProduceMessage(ctx context.Context, topic, key string, message interface{}) error {
	_, err := ExecuteWithBreaker(p.cb, func() (struct{}, error) {
		return struct{}{}, p.next.ProduceMessage(ctx, topic, key, message)
	})
	return err
}

func (p *breakerProducer) Close() error {
	return p.next.Close()
}

// ExecuteWithBreaker runs fn through cb keeping the result typed
func ExecuteWithBreaker[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	res, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return *new(T), err
	}

	return res.(T), nil
}

type noopProducer struct{}

// NewNoopProducer returns a Producer that drops every message. It is used
// when no broker is configured.
func NewNoopProducer() Producer {
	return noopProducer{}
}

func (noopProducer) ProduceMessage(context.Context, string, string, interface{}) error { return nil }

func (noopProducer) Close() error { return nil }
