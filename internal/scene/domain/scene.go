package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	sharedBus "github.com/davicafu/medialist/internal/shared/platform/bus"
)

type Scene struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Path        string    `json:"path"`
	Details     string    `json:"details,omitempty"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Rating      *int      `json:"rating,omitempty"` // 0-100, nil = sin puntuar
	OCounter    int       `json:"o_counter"`
	Duration    float64   `json:"duration"` // segundos
	Organized   bool      `json:"organized"`
	Interactive bool      `json:"interactive"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewScene valida los campos obligatorios y asigna ID y fecha de creación.
func NewScene(title, path string, width, height int) (*Scene, error) {
	title = strings.TrimSpace(title)
	path = strings.TrimSpace(path)
	if title == "" || path == "" {
		return nil, fmt.Errorf("%w: title and path are required", ErrInvalidScene)
	}
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: negative dimensions", ErrInvalidScene)
	}
	return &Scene{
		ID:        uuid.New(),
		Title:     title,
		Path:      path,
		Width:     width,
		Height:    height,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// SetRating valida el rango 0-100.
func (s *Scene) SetRating(rating int) error {
	if rating < 0 || rating > 100 {
		return fmt.Errorf("%w: rating %d out of range", ErrInvalidScene, rating)
	}
	s.Rating = &rating
	return nil
}

func (s *Scene) PartitionKey() string {
	return s.ID.String()
}

// Verificación estática
var _ sharedBus.Keyer = (*Scene)(nil)
