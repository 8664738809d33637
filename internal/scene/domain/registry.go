package domain

import (
	"reflect"

	sharedEvents "github.com/davicafu/medialist/internal/shared/events"
)

// Las constantes de los tipos de evento se definen aquí, como valores string.
const (
	SceneCreated = "scene.created"
)

const (
	SceneTopic         = "scene"
	SceneAggregateType = "scene"
)

func NewEventRegistry() sharedEvents.Registry {
	return sharedEvents.Registry{
		SceneCreated: {
			Type:  reflect.TypeOf(Scene{}),
			Topic: SceneTopic,
		},
	}
}
