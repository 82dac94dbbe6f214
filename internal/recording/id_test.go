package recording

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator(t *testing.T) {
	gen := UUIDv7Generator{}
	a := gen.Generate()
	b := gen.Generate()

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.NotEqual(t, a, b)
}

func TestFixedGenerator(t *testing.T) {
	gen := NewFixedGenerator("a", "b")
	assert.Equal(t, "a", gen.Generate())
	assert.Equal(t, "b", gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}

func TestEnsureID(t *testing.T) {
	rec := &Recording{}
	assert.Equal(t, "x", EnsureID(rec, NewFixedGenerator("x")))
	assert.Equal(t, "x", rec.ID)

	// Existing ids are kept and the generator is not consulted.
	assert.Equal(t, "x", EnsureID(rec, NewFixedGenerator()))
}
