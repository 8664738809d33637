package domain

import (
	"reflect"

	sharedEvents "github.com/davicafu/medialist/internal/shared/events"
)

const (
	SavedFilterSaved   = "saved_filter.saved"
	SavedFilterDeleted = "saved_filter.deleted"
)

const (
	SavedFilterTopic         = "saved_filter"
	SavedFilterAggregateType = "saved_filter"
)

// SavedFilterSavedEvent es el payload de saved_filter.saved.
type SavedFilterSavedEvent struct {
	ID    string     `json:"id"`
	Mode  FilterMode `json:"mode"`
	Name  string     `json:"name"`
	Query string     `json:"query"`
}

// SavedFilterDeletedEvent es el payload de saved_filter.deleted.
type SavedFilterDeletedEvent struct {
	ID   string     `json:"id"`
	Mode FilterMode `json:"mode"`
}

func NewEventRegistry() sharedEvents.Registry {
	return sharedEvents.Registry{
		SavedFilterSaved: {
			Type:  reflect.TypeOf(SavedFilterSavedEvent{}),
			Topic: SavedFilterTopic,
		},
		SavedFilterDeleted: {
			Type:  reflect.TypeOf(SavedFilterDeletedEvent{}),
			Topic: SavedFilterTopic,
		},
	}
}
