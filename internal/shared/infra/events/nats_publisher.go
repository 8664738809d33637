package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	sharedBus "github.com/davicafu/medialist/internal/shared/platform/bus"
)

// natsConn es la parte de *nats.Conn que usa el publisher.
type natsConn interface {
	Publish(subj string, data []byte) error
	Close()
}

// NATSPublisher publica cada evento en el subject prefix+topic.
type NATSPublisher struct {
	conn   natsConn
	prefix string
	log    *zap.Logger
}

// NewNATSPublisher conecta a url. prefix se antepone a cada subject (ej. "medialist.").
func NewNATSPublisher(url, prefix string, log *zap.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSPublisher{conn: nc, prefix: prefix, log: log}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, event interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	subject := p.prefix + "events"
	if s, ok := event.(sharedBus.Subjecter); ok && s.Subject() != "" {
		subject = p.prefix + s.Subject()
	}

	if err := p.conn.Publish(subject, data); err != nil {
		p.log.Error("Error publishing to NATS", zap.String("subject", subject), zap.Error(err))
		return err
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}

var _ sharedBus.EventPublisher = (*NATSPublisher)(nil)
