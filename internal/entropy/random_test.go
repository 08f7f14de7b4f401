package entropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeededDeterministic(t *testing.T) {
	a := NewSeeded(42)
	b := NewSeeded(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestSeededDiffersAcrossSeeds(t *testing.T) {
	a := NewSeeded(1)
	b := NewSeeded(2)

	same := true
	for i := 0; i < 10; i++ {
		if a.Float64() != b.Float64() {
			same = false
		}
	}
	assert.False(t, same)
}

func TestSourcesInUnitInterval(t *testing.T) {
	sources := map[string]Source{
		"crypto": Crypto{},
		"seeded": NewSeeded(7),
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 1000; i++ {
				v := src.Float64()
				assert.GreaterOrEqual(t, v, 0.0)
				assert.Less(t, v, 1.0)
			}
		})
	}
}

func TestFixed(t *testing.T) {
	assert.Equal(t, 0.5, Fixed(0.5).Float64())
	assert.Equal(t, 0.5, Fixed(0.5).Float64())
}
