package events

import (
	"context"

	"github.com/nats-io/nats.go"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageHandler define la interfaz que debe cumplir cualquier consumidor de eventos.
type MessageHandler interface {
	HandleMessage(ctx context.Context, key string, payload []byte)
}

// messageReader es la parte de *kafka.Reader que usa el adaptador.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Config() kafka.ReaderConfig
}

// ConsumerAdapter lee de Kafka y pasa cada mensaje al handler.
type ConsumerAdapter struct {
	reader  messageReader
	handler MessageHandler
	log     *zap.Logger
}

func NewConsumerAdapter(reader *kafka.Reader, handler MessageHandler, log *zap.Logger) *ConsumerAdapter {
	return &ConsumerAdapter{reader: reader, handler: handler, log: log}
}

// Start lanza el bucle de consumo en una goroutine. Termina al cancelar ctx.
func (c *ConsumerAdapter) Start(ctx context.Context) {
	cfg := c.reader.Config()
	c.log.Info("🎧 Iniciando consumidor de Kafka...",
		zap.String("topic", cfg.Topic),
		zap.Strings("brokers", cfg.Brokers),
	)

	go c.run(ctx)
}

func (c *ConsumerAdapter) run(ctx context.Context) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			// Con el contexto cancelado el error es esperado.
			if ctx.Err() != nil {
				c.log.Info("Consumidor de Kafka detenido.", zap.String("topic", c.reader.Config().Topic))
				return
			}
			c.log.Error("Error al leer mensaje de Kafka", zap.Error(err))
			continue
		}

		c.handler.HandleMessage(ctx, string(msg.Key), msg.Value)
	}
}

// ConsumeChannel entrega al handler los mensajes de un bus en memoria hasta
// que ctx se cancele o el canal se cierre.
func ConsumeChannel(ctx context.Context, ch <-chan []byte, handler MessageHandler, log *zap.Logger) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				log.Info("In-memory consumer stopped")
				return
			case payload, ok := <-ch:
				if !ok {
					return
				}
				handler.HandleMessage(ctx, "", payload)
			}
		}
	}()
}

// natsSubscriber es la parte de *nats.Conn que usa ConsumeNATS.
type natsSubscriber interface {
	Subscribe(subj string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// ConsumeNATS se suscribe a subject y entrega cada mensaje al handler. La
// suscripción se cancela al cancelar ctx.
func ConsumeNATS(ctx context.Context, conn natsSubscriber, subject string, handler MessageHandler, log *zap.Logger) error {
	sub, err := conn.Subscribe(subject, func(msg *nats.Msg) {
		handler.HandleMessage(ctx, msg.Subject, msg.Data)
	})
	if err != nil {
		return err
	}
	log.Info("🎧 Iniciando consumidor de NATS...", zap.String("subject", subject))

	go func() {
		<-ctx.Done()
		if err := sub.Unsubscribe(); err != nil {
			log.Debug("NATS unsubscribe", zap.Error(err))
		}
		log.Info("Consumidor de NATS detenido.", zap.String("subject", subject))
	}()
	return nil
}
