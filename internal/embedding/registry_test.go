package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndNew(t *testing.T) {
	r := NewRegistry()
	r.Register("mock", func(model string) (Embedder, error) {
		return NewMock(16), nil
	})

	e, err := r.New("mock", "")
	require.NoError(t, err)
	assert.Equal(t, "mock", e.Name())
}

func TestRegistry_UnknownProviderErrors(t *testing.T) {
	r := NewRegistry()
	_, err := r.New("nonexistent", "")
	assert.Error(t, err)
}

func TestRegistry_RegisterTwiceReplacesFactory(t *testing.T) {
	r := NewRegistry()
	r.Register("p", func(model string) (Embedder, error) { return NewMock(8), nil })
	r.Register("p", func(model string) (Embedder, error) { return NewMock(16), nil })

	e, err := r.New("p", "")
	require.NoError(t, err)
	assert.Equal(t, 16, e.Dimensions())
}

func TestRegistry_NamesListsRegisteredProviders(t *testing.T) {
	r := NewRegistry()
	r.Register("a", func(model string) (Embedder, error) { return NewMock(8), nil })
	r.Register("b", func(model string) (Embedder, error) { return NewMock(8), nil })

	assert.ElementsMatch(t, []string{"a", "b"}, r.Names())
}
