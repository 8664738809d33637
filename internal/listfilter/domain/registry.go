package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// CriterionFactory construye un criterio vacío con sus valores por defecto.
type CriterionFactory func() Criterion

// Registry resuelve la etiqueta `type` de un criterio codificado a su
// implementación concreta.
type Registry struct {
	factories map[string]CriterionFactory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]CriterionFactory)}
}

// Register añade (o reemplaza) la factoría para un tipo.
func (r *Registry) Register(typ string, factory CriterionFactory) {
	r.factories[typ] = factory
}

// Make devuelve un criterio nuevo para typ, o false si el tipo no está registrado.
func (r *Registry) Make(typ string) (Criterion, bool) {
	factory, ok := r.factories[typ]
	if !ok {
		return nil, false
	}
	return factory(), true
}

// Types devuelve los tipos registrados ordenados alfabéticamente.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Decode construye un criterio a partir de su JSON codificado. El valor y el
// modificador se copian sobre el criterio recién creado.
// Si el JSON no trae modifier, o lo trae vacío, el criterio conserva su
// modificador por defecto en vez de quedarse sin modificador.
func (r *Registry) Decode(data []byte) (Criterion, error) {
	var enc EncodedCriterion
	if err := json.Unmarshal(data, &enc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCriterion, err)
	}

	criterion, ok := r.Make(enc.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCriterionType, enc.Type)
	}

	if err := criterion.SetValue(enc.Value); err != nil {
		return nil, err
	}
	if enc.Modifier != "" {
		criterion.SetModifier(enc.Modifier)
	}
	return criterion, nil
}

// NewDefaultRegistry registra los criterios que conoce la biblioteca de escenas.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(ResolutionCriterionOption.Type, func() Criterion { return NewResolutionCriterion() })
	r.Register(AverageResolutionCriterionOption.Type, func() Criterion { return NewAverageResolutionCriterion() })

	for _, typ := range []string{"title", "path", "details"} {
		opt := NewCriterionOption(typ)
		r.Register(typ, func() Criterion { return NewStringCriterion(opt) })
	}
	for _, typ := range []string{"rating", "o_counter", "duration"} {
		opt := NewCriterionOption(typ)
		r.Register(typ, func() Criterion { return NewNumberCriterion(opt) })
	}
	for _, typ := range []string{"organized", "interactive"} {
		opt := NewCriterionOption(typ)
		r.Register(typ, func() Criterion { return NewBooleanCriterion(opt) })
	}

	return r
}
