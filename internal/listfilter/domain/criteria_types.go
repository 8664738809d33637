package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ---------------- Texto ----------------

// StringCriterion filtra por un atributo de texto. Si options no está vacío,
// el valor debería ser una de esas etiquetas.
type StringCriterion struct {
	baseCriterion
	value   string
	options []string
}

func NewStringCriterion(option CriterionOption, options ...string) *StringCriterion {
	return &StringCriterion{
		baseCriterion: baseCriterion{
			option:   option,
			modifier: ModifierEquals,
			modifierOptions: []CriterionModifier{
				ModifierEquals, ModifierNotEquals, ModifierIncludes, ModifierExcludes,
				ModifierIsNull, ModifierNotNull, ModifierMatchesRegex, ModifierNotMatchesRegex,
			},
		},
		options: options,
	}
}

// Options lista las etiquetas seleccionables (puede estar vacío).
func (c *StringCriterion) Options() []string { return c.options }

func (c *StringCriterion) Value() any { return c.value }

func (c *StringCriterion) SetValue(raw json.RawMessage) error {
	if len(raw) == 0 {
		c.value = ""
		return nil
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("%w: %s value must be a string: %v", ErrInvalidCriterion, c.option.Type, err)
	}
	c.value = v
	return nil
}

func (c *StringCriterion) Apply(out AttributeFilter) {
	out[c.option.ParameterName] = StringCriterionInput{Value: c.value, Modifier: c.modifier}
}

// ---------------- Numérico ----------------

// NumberCriterion filtra por un atributo entero.
type NumberCriterion struct {
	baseCriterion
	value  int
	value2 *int
}

func NewNumberCriterion(option CriterionOption) *NumberCriterion {
	return &NumberCriterion{
		baseCriterion: baseCriterion{
			option:   option,
			modifier: ModifierEquals,
			modifierOptions: []CriterionModifier{
				ModifierEquals, ModifierNotEquals, ModifierGreaterThan, ModifierLessThan,
				ModifierIsNull, ModifierNotNull, ModifierBetween, ModifierNotBetween,
			},
		},
	}
}

type numberRange struct {
	Value  int  `json:"value"`
	Value2 *int `json:"value2,omitempty"`
}

func (c *NumberCriterion) Value() any {
	if c.value2 != nil {
		return numberRange{Value: c.value, Value2: c.value2}
	}
	return c.value
}

// SetValue acepta un número JSON, un string numérico o un objeto {value, value2}.
func (c *NumberCriterion) SetValue(raw json.RawMessage) error {
	trimmed := strings.TrimSpace(string(raw))
	switch {
	case trimmed == "":
		c.value, c.value2 = 0, nil
		return nil
	case strings.HasPrefix(trimmed, "{"):
		var r numberRange
		if err := json.Unmarshal(raw, &r); err != nil {
			return fmt.Errorf("%w: %s range: %v", ErrInvalidCriterion, c.option.Type, err)
		}
		c.value, c.value2 = r.Value, r.Value2
		return nil
	case strings.HasPrefix(trimmed, `"`):
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidCriterion, c.option.Type, err)
		}
		n, ok := ParseInt(s)
		if !ok {
			return fmt.Errorf("%w: %s value %q is not a number", ErrInvalidCriterion, c.option.Type, s)
		}
		c.value, c.value2 = n, nil
		return nil
	}

	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return fmt.Errorf("%w: %s value must be an integer: %v", ErrInvalidCriterion, c.option.Type, err)
	}
	c.value, c.value2 = n, nil
	return nil
}

func (c *NumberCriterion) Apply(out AttributeFilter) {
	out[c.option.ParameterName] = IntCriterionInput{Value: c.value, Value2: c.value2, Modifier: c.modifier}
}

// ---------------- Booleano ----------------

// BooleanCriterion se codifica como "true"/"false" y se aplica como bool.
type BooleanCriterion struct {
	baseCriterion
	value string
}

func NewBooleanCriterion(option CriterionOption) *BooleanCriterion {
	return &BooleanCriterion{
		baseCriterion: baseCriterion{option: option, modifier: ModifierEquals},
		value:         "true",
	}
}

func (c *BooleanCriterion) Value() any { return c.value }

func (c *BooleanCriterion) SetValue(raw json.RawMessage) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidCriterion, c.option.Type, err)
	}
	switch t := v.(type) {
	case bool:
		c.value = strconv.FormatBool(t)
	case string:
		if t != "true" && t != "false" {
			return fmt.Errorf("%w: %s value %q is not a boolean", ErrInvalidCriterion, c.option.Type, t)
		}
		c.value = t
	default:
		return fmt.Errorf("%w: %s value must be a boolean", ErrInvalidCriterion, c.option.Type)
	}
	return nil
}

func (c *BooleanCriterion) Apply(out AttributeFilter) {
	out[c.option.ParameterName] = c.value == "true"
}

// Verificación estática
var (
	_ Criterion = (*StringCriterion)(nil)
	_ Criterion = (*NumberCriterion)(nil)
	_ Criterion = (*BooleanCriterion)(nil)
)
