package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry_Types(t *testing.T) {
	r := NewDefaultRegistry()

	assert.Equal(t, []string{
		"average_resolution", "details", "duration", "interactive", "o_counter",
		"organized", "path", "rating", "resolution", "title",
	}, r.Types())
}

func TestRegistry_Make(t *testing.T) {
	r := NewDefaultRegistry()

	c, ok := r.Make("rating")
	require.True(t, ok)
	assert.IsType(t, &NumberCriterion{}, c)

	_, ok = r.Make("galaxy")
	assert.False(t, ok)
}

func TestRegistry_MakeReturnsFreshInstances(t *testing.T) {
	r := NewDefaultRegistry()

	a, _ := r.Make("title")
	b, _ := r.Make("title")
	a.SetModifier(ModifierExcludes)

	assert.Equal(t, ModifierEquals, b.Modifier())
}

func TestRegistry_Decode(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		name        string
		input       string
		expectedErr error
		check       func(t *testing.T, c Criterion)
	}{
		{
			name:  "texto con modificador",
			input: `{"type":"path","value":"/media","modifier":"INCLUDES"}`,
			check: func(t *testing.T, c Criterion) {
				assert.Equal(t, "/media", c.Value())
				assert.Equal(t, ModifierIncludes, c.Modifier())
			},
		},
		{
			name:  "sin modificador conserva el de por defecto",
			input: `{"type":"title","value":"x"}`,
			check: func(t *testing.T, c Criterion) {
				assert.Equal(t, ModifierEquals, c.Modifier())
			},
		},
		{
			name:  "modificador vacío conserva el de por defecto",
			input: `{"type":"path","value":"/media","modifier":""}`,
			check: func(t *testing.T, c Criterion) {
				assert.Equal(t, ModifierEquals, c.Modifier())
			},
		},
		{
			name:  "número como string",
			input: `{"type":"o_counter","value":"5","modifier":"LESS_THAN"}`,
			check: func(t *testing.T, c Criterion) {
				assert.Equal(t, 5, c.Value())
			},
		},
		{
			name:  "rango numérico",
			input: `{"type":"duration","value":{"value":10,"value2":20},"modifier":"BETWEEN"}`,
			check: func(t *testing.T, c Criterion) {
				out := AttributeFilter{}
				c.Apply(out)
				in := out["duration"].(IntCriterionInput)
				assert.Equal(t, 10, in.Value)
				require.NotNil(t, in.Value2)
				assert.Equal(t, 20, *in.Value2)
			},
		},
		{
			name:  "booleano nativo",
			input: `{"type":"organized","value":false}`,
			check: func(t *testing.T, c Criterion) {
				assert.Equal(t, "false", c.Value())
				out := AttributeFilter{}
				c.Apply(out)
				assert.Equal(t, false, out["organized"])
			},
		},
		{
			name:        "JSON roto",
			input:       `{"type":`,
			expectedErr: ErrInvalidCriterion,
		},
		{
			name:        "tipo desconocido",
			input:       `{"type":"galaxy","value":"x"}`,
			expectedErr: ErrUnknownCriterionType,
		},
		{
			name:        "valor de tipo incorrecto",
			input:       `{"type":"title","value":42}`,
			expectedErr: ErrInvalidCriterion,
		},
		{
			name:        "booleano inválido",
			input:       `{"type":"interactive","value":"quizás"}`,
			expectedErr: ErrInvalidCriterion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := r.Decode([]byte(tt.input))

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			tt.check(t, c)
		})
	}
}

func TestRegistry_CustomCriterion(t *testing.T) {
	r := NewRegistry()
	opt := NewCriterionOption("studio", "studio_name")
	r.Register("studio", func() Criterion { return NewStringCriterion(opt) })

	c, err := r.Decode([]byte(`{"type":"studio","value":"Acme"}`))
	require.NoError(t, err)

	out := AttributeFilter{}
	c.Apply(out)
	assert.Equal(t, StringCriterionInput{Value: "Acme", Modifier: ModifierEquals}, out["studio_name"])
}

func TestEncodeCriterion_NumberRange(t *testing.T) {
	c := NewNumberCriterion(NewCriterionOption("rating"))
	require.NoError(t, c.SetValue([]byte(`{"value":2,"value2":4}`)))
	c.SetModifier(ModifierBetween)

	encoded, err := EncodeCriterion(c)

	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"rating","value":{"value":2,"value2":4},"modifier":"BETWEEN"}`, encoded)
}
