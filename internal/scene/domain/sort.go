package domain

import (
	"fmt"

	lf "github.com/davicafu/medialist/internal/listfilter/domain"
	sharedQuery "github.com/davicafu/medialist/internal/shared/platform/query"
)

// DefaultSceneSort es el orden de la lista de escenas si la URL no trae uno.
const DefaultSceneSort = "title"

var sortableFields = map[string]bool{
	"title":      true,
	"path":       true,
	"rating":     true,
	"o_counter":  true,
	"duration":   true,
	"height":     true,
	"created_at": true,
}

// SceneSort es el orden resuelto de una consulta. Con Random, Seed fija la
// permutación y Sort no se usa.
type SceneSort struct {
	Sort   sharedQuery.Sort
	Random bool
	Seed   int
}

// SortFromFindFilter valida el campo de orden contra la lista blanca.
// "random_<seed>" activa el orden aleatorio; "random" sin semilla usa 0.
func SortFromFindFilter(find lf.FindFilter) (SceneSort, error) {
	desc := find.Direction == lf.SortDesc

	if find.Sort == lf.RandomSort {
		return SceneSort{Random: true}, nil
	}
	if seed, isRandom, seedOK := lf.ParseRandomSort(find.Sort); isRandom {
		if !seedOK {
			return SceneSort{}, fmt.Errorf("%w: %q", ErrInvalidSort, find.Sort)
		}
		return SceneSort{Random: true, Seed: seed}, nil
	}

	field := find.Sort
	if field == "" {
		field = DefaultSceneSort
	}
	if !sortableFields[field] {
		return SceneSort{}, fmt.Errorf("%w: %q", ErrInvalidSort, field)
	}
	return SceneSort{Sort: sharedQuery.Sort{Field: field, Desc: desc}}, nil
}
