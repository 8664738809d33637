package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// FilterMode identifica la lista a la que pertenece un filtro guardado.
type FilterMode string

const (
	ModeScenes     FilterMode = "SCENES"
	ModeImages     FilterMode = "IMAGES"
	ModeGalleries  FilterMode = "GALLERIES"
	ModePerformers FilterMode = "PERFORMERS"
	ModeStudios    FilterMode = "STUDIOS"
	ModeTags       FilterMode = "TAGS"
	ModeMovies     FilterMode = "MOVIES"
)

// defaultSorts es el orden por defecto de cada lista al cargar un filtro.
var defaultSorts = map[FilterMode]string{
	ModeScenes:     "title",
	ModeImages:     "title",
	ModeGalleries:  "title",
	ModePerformers: "name",
	ModeStudios:    "name",
	ModeTags:       "name",
	ModeMovies:     "name",
}

const (
	idPrefix   = "sf-"
	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	idLength   = 10
	maxNameLen = 128
)

// ParseFilterMode acepta el modo sin distinguir mayúsculas.
func ParseFilterMode(s string) (FilterMode, error) {
	mode := FilterMode(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := defaultSorts[mode]; !ok {
		return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidSavedFilter, s)
	}
	return mode, nil
}

// DefaultSort devuelve el orden por defecto de la lista.
func (m FilterMode) DefaultSort() string {
	return defaultSorts[m]
}

// SavedFilter guarda los parámetros canónicos de una lista bajo un nombre.
type SavedFilter struct {
	ID        string     `json:"id"`
	Mode      FilterMode `json:"mode"`
	Name      string     `json:"name"`
	Params    url.Values `json:"params"`
	Query     string     `json:"query"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewSavedFilter valida los datos y asigna un identificador corto nuevo.
func NewSavedFilter(mode FilterMode, name string, params url.Values, query string) (*SavedFilter, error) {
	if _, ok := defaultSorts[mode]; !ok {
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidSavedFilter, mode)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidSavedFilter)
	}
	if len(name) > maxNameLen {
		return nil, fmt.Errorf("%w: name longer than %d characters", ErrInvalidSavedFilter, maxNameLen)
	}

	id, err := NewSavedFilterID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &SavedFilter{
		ID:        id,
		Mode:      mode,
		Name:      name,
		Params:    params,
		Query:     query,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NewSavedFilterID genera un id de la forma sf-xxxxxxxxxx.
func NewSavedFilterID() (string, error) {
	id, err := gonanoid.Generate(idAlphabet, idLength)
	if err != nil {
		return "", fmt.Errorf("generating saved filter id: %w", err)
	}
	return idPrefix + id, nil
}

// IsValidID comprueba el formato de un id sin consultar el almacenamiento.
func IsValidID(id string) bool {
	rest, ok := strings.CutPrefix(id, idPrefix)
	if !ok || len(rest) != idLength {
		return false
	}
	for _, r := range rest {
		if !strings.ContainsRune(idAlphabet, r) {
			return false
		}
	}
	return true
}

// Replace sustituye los parámetros conservando id y fecha de creación.
func (f *SavedFilter) Replace(params url.Values, query string) {
	f.Params = params
	f.Query = query
	f.UpdatedAt = time.Now().UTC()
}
