package dropdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeOption(t *testing.T) {
	tests := []struct {
		name  string
		parts []interface{}
		want  string
	}{
		{"single", []interface{}{"Fruit"}, "Fruit"},
		{"multi", []interface{}{"A", 1, "x"}, "A_1_x"},
		{"trimmed", []interface{}{"  North ", "Zone2"}, "North_Zone2"},
		{"han", []interface{}{"水果", "苹果"}, "水果_苹果"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeOption(tt.parts...)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeOptionRejectsInvalidParts(t *testing.T) {
	cases := map[string][]interface{}{
		"no parts":       nil,
		"empty part":     {"A", ""},
		"blank part":     {"   "},
		"punctuation":    {"A-B"},
		"delimiter":      {"A_B"},
		"space inside":   {"New York"},
		"leading digit":  {1, "A"},
		"only digits":    {"2024"},
		"formula prefix": {"=SUM"},
	}
	for name, parts := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := EncodeOption(parts...)
			require.ErrorIs(t, err, ErrInvalidOptionValue)
		})
	}
}

func TestDecodeOption(t *testing.T) {
	require.Equal(t, []string{"A", "1", "x"}, DecodeOption("A_1_x"))
	require.Equal(t, []string{"Fruit"}, DecodeOption("Fruit"))
	require.Equal(t, []string{"a", "b"}, DecodeOption("_a__ b _"))
	require.Empty(t, DecodeOption(""))
	require.Empty(t, DecodeOption("___"))
}

func TestDecodeReversesEncode(t *testing.T) {
	parts := []interface{}{"Region", 7, "北"}
	token := MustEncodeOption(parts...)
	require.Equal(t, []string{"Region", "7", "北"}, DecodeOption(token))
}

func TestMustEncodeOptionPanics(t *testing.T) {
	require.Panics(t, func() { MustEncodeOption("bad,value") })
}
