package dropdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDescriptorValidate(t *testing.T) {
	valid := []Descriptor{
		NewListDescriptor(0, "Small", "Medium", "Large"),
		NewListDescriptor(3),
		NewListDescriptor(2, "a,b", `say "hi"`),
		NewCascadingDescriptor(0, 1, []string{"Fruit", "Veg"}, map[string][]string{
			"Fruit": {"Apple"},
		}),
		NewCascadingDescriptor(4, 2, []string{"华东", "Region_North"}, map[string][]string{
			"华东": {"上海"},
		}),
		NewCascadingDescriptor(0, 1, []string{"N" + strings.Repeat("x", 254)}, nil),
	}
	for i, d := range valid {
		require.NoError(t, d.Validate(), "descriptor %d", i)
	}
}

func TestDescriptorValidateErrors(t *testing.T) {
	children := map[string][]string{"Fruit": {"Apple"}}

	tests := []struct {
		name string
		d    Descriptor
		want error
	}{
		{"negative column", NewListDescriptor(-1, "a"), ErrColumnOutOfRange},
		{"column past ZZ", NewListDescriptor(702, "a"), ErrColumnOutOfRange},
		{"cascade without child column", NewCascadingDescriptor(0, NoColumn, []string{"Fruit"}, children), ErrDescriptorConflict},
		{"cascade on same column", NewCascadingDescriptor(1, 1, []string{"Fruit"}, children), ErrDescriptorConflict},
		{"child column past ZZ", NewCascadingDescriptor(0, 800, []string{"Fruit"}, children), ErrColumnOutOfRange},
		{"duplicate option", NewCascadingDescriptor(0, 1, []string{"Fruit", "Fruit"}, children), ErrDescriptorConflict},
		{"unknown parent", NewCascadingDescriptor(0, 1, []string{"Veg"}, children), ErrDescriptorConflict},
		{"option with space", NewCascadingDescriptor(0, 1, []string{"Fruit", "Green Veg"}, children), ErrInvalidOptionValue},
		{"option like a cell", NewCascadingDescriptor(0, 1, []string{"Fruit", "AB12"}, children), ErrInvalidOptionValue},
		{"option like R1C1", NewCascadingDescriptor(0, 1, []string{"Fruit", "R1C2"}, children), ErrInvalidOptionValue},
		{"option with leading digit", NewCascadingDescriptor(0, 1, []string{"Fruit", "1st"}, children), ErrInvalidOptionValue},
		{"option too long for a range name", NewCascadingDescriptor(0, 1, []string{"Fruit", "N" + strings.Repeat("x", 255)}, children), ErrInvalidOptionValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.d.Validate(), tt.want)
		})
	}
}

func TestDescriptorColumns(t *testing.T) {
	require.Equal(t, []int{2}, NewListDescriptor(2, "x").columns())
	d := NewCascadingDescriptor(0, 5, []string{"Fruit"}, map[string][]string{"Fruit": {"Apple"}})
	require.True(t, d.IsCascading())
	require.Equal(t, []int{0, 5}, d.columns())
}
