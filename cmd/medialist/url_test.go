package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	lf "github.com/davicafu/medialist/internal/listfilter/domain"
)

func runURLCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newURLCmd(lf.NewCodec(nil, lf.FixedSeedSource(12345678), zap.NewNop()))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestURLDecode(t *testing.T) {
	testCases := []struct {
		name string
		arg  string
	}{
		{"Bare query", `q=playa&p=2&sortby=rating&sortdir=desc&c={"type":"resolution","value":"1080p"}`},
		{"Leading question mark", `?q=playa&p=2&sortby=rating&sortdir=desc&c={"type":"resolution","value":"1080p"}`},
		{"Full URL", `http://localhost:8080/scenes?q=playa&p=2&sortby=rating&sortdir=desc&c=%7B%22type%22%3A%22resolution%22%2C%22value%22%3A%221080p%22%7D`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			out, err := runURLCmd(t, "decode", tc.arg)

			// Assert
			require.NoError(t, err)
			var decoded struct {
				FindFilter      lf.FindFilter  `json:"find_filter"`
				AttributeFilter map[string]any `json:"attribute_filter"`
				Query           string         `json:"query"`
			}
			require.NoError(t, json.Unmarshal([]byte(out), &decoded))
			assert.Equal(t, lf.FindFilter{Q: "playa", Page: 2, PerPage: lf.DefaultItemsPerPage, Sort: "rating", Direction: lf.SortDesc}, decoded.FindFilter)
			assert.Equal(t, "FULL_HD", decoded.AttributeFilter["resolution"])
			assert.Contains(t, decoded.Query, `c={"type":"resolution","value":"1080p","modifier":"EQUALS"}`)
		})
	}
}

func TestURLDecode_Errors(t *testing.T) {
	_, err := runURLCmd(t, "decode")
	assert.Error(t, err, "falta el argumento")

	_, err = runURLCmd(t, "decode", "q=%zz")
	assert.ErrorContains(t, err, "invalid query")
}

func TestURLEncode(t *testing.T) {
	// Act
	out, err := runURLCmd(t, "encode",
		"--q", "playa",
		"--page", "3",
		"--per-page", "60",
		"--sort", "date",
		"--desc",
		"--criterion", `{"type":"resolution","value":"4k"}`,
		"--criterion", `{"type":"organized","value":"true"}`,
	)

	// Assert
	require.NoError(t, err)
	query := strings.TrimSpace(out)
	assert.Contains(t, query, "q=playa")
	assert.Contains(t, query, "p=3")
	assert.Contains(t, query, "perPage=60")
	assert.Contains(t, query, "sortby=date")
	assert.Contains(t, query, "sortdir=desc")
	assert.Equal(t, 2, strings.Count(query, "c={"))
}

func TestURLEncode_Defaults(t *testing.T) {
	out, err := runURLCmd(t, "encode")

	require.NoError(t, err)
	assert.Equal(t, "", strings.TrimSpace(out))
}

func TestURLEncode_RandomSortGetsSeed(t *testing.T) {
	out, err := runURLCmd(t, "encode", "--sort", "random")

	require.NoError(t, err)
	assert.Contains(t, out, "sortby=random_12345678")
}

func TestURLEncode_InvalidCriterion(t *testing.T) {
	_, err := runURLCmd(t, "encode", "--criterion", "{nope")

	assert.ErrorContains(t, err, "not valid JSON")
}
