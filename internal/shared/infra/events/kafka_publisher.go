package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	sharedBus "github.com/davicafu/medialist/internal/shared/platform/bus"
)

// messageWriter es la parte de *kafka.Writer que usa el publisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher escribe cada evento como un mensaje JSON. El topic sale del
// propio evento (Subjecter) o, si no lo trae, de defaultTopic; por eso el
// writer no debe tener Topic fijo.
type KafkaPublisher struct {
	writer       messageWriter
	defaultTopic string
	log          *zap.Logger
}

func NewKafkaPublisher(writer *kafka.Writer, defaultTopic string, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, defaultTopic: defaultTopic, log: log}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{Topic: p.defaultTopic, Value: data}
	if keyer, ok := event.(sharedBus.Keyer); ok {
		msg.Key = []byte(keyer.PartitionKey())
	}
	if s, ok := event.(sharedBus.Subjecter); ok && s.Subject() != "" {
		msg.Topic = s.Subject()
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("Error publishing to Kafka", zap.String("topic", msg.Topic), zap.Error(err))
		return err
	}

	p.log.Debug("Event published successfully", zap.String("topic", msg.Topic))
	return nil
}

// Verificación estática
var _ sharedBus.EventPublisher = (*KafkaPublisher)(nil)
