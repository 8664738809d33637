package events

import (
	"encoding/json"
	"reflect"
	"time"
)

// Base de todos los eventos de integración
type IntegrationEvent struct {
	Type      string          `json:"type"`
	Topic     string          `json:"topic,omitempty"`
	Key       string          `json:"key,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"` // contenido específico del evento
}

// PartitionKey permite al publisher de Kafka repartir por agregado.
func (e *IntegrationEvent) PartitionKey() string {
	return e.Key
}

// Subject lo usan los publishers que enrutan por topic (NATS).
func (e *IntegrationEvent) Subject() string {
	return e.Topic
}

// EventMetadata describe cómo decodificar y enrutar un tipo de evento.
type EventMetadata struct {
	Type  reflect.Type
	Topic string
}

// Registry agrupa los metadatos por tipo de evento.
type Registry map[string]EventMetadata

// Merge copia en r todas las entradas de los registros dados.
func (r Registry) Merge(others ...Registry) Registry {
	for _, o := range others {
		for k, v := range o {
			r[k] = v
		}
	}
	return r
}
