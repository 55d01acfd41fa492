package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Lookup_CaseInsensitive(t *testing.T) {
	misa := &mockRetriever{name: "misa"}
	reg := NewRegistry(misa)

	for _, name := range []string{"misa", "MISA", "Misa", "  misa  "} {
		got, ok := reg.Lookup(name)
		require.True(t, ok, "lookup %q", name)
		assert.Same(t, misa, got)
	}
}

func TestRegistry_Lookup_Unknown(t *testing.T) {
	reg := NewRegistry(&mockRetriever{name: "misa"})
	_, ok := reg.Lookup("unknown")
	assert.False(t, ok)
}

func TestRegistry_Names_Sorted(t *testing.T) {
	reg := NewRegistry(
		&mockRetriever{name: "viettel"},
		&mockRetriever{name: "misa"},
		&mockRetriever{name: "fpt"},
	)
	assert.Equal(t, []string{"fpt", "misa", "viettel"}, reg.Names())
}

func TestRegistry_LaterVariantReplacesEarlier(t *testing.T) {
	first := &mockRetriever{name: "misa"}
	second := &mockRetriever{name: "MISA"}
	reg := NewRegistry(first, second)

	got, ok := reg.Lookup("misa")
	require.True(t, ok)
	assert.Same(t, second, got)
}
