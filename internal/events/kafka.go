package events

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "frontdash/internal/errors"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

const DefaultTopic = "frontdash.orders"

// KafkaPublisher writes order events to a topic keyed by order id so all
// events of one order land on the same partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Version = sarama.V2_6_0_0

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("creating kafka producer: %w", err)
	}

	return NewKafkaPublisherWithProducer(producer, topic, logger), nil
}

func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, logger *zap.Logger) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

func (p *KafkaPublisher) Publish(_ context.Context, event OrderEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return apperrors.NewInternalError("marshaling order event", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.OrderID),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(event.Type)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return apperrors.NewInternalError("sending order event to kafka", err)
	}

	p.logger.Debug("order event published",
		zap.String("topic", p.topic),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
		zap.String("orderId", event.OrderID),
		zap.String("type", string(event.Type)),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
