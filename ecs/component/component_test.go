package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type position struct{ X, Y float64 }

func TestKindsAreUnique(t *testing.T) {
	a := NewComponent[position]()
	b := NewComponent[position]()
	c := NewNamedComponent[int]("score")

	assert.True(t, a.Valid())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.NotEqual(t, b.ID(), c.ID())
	assert.Equal(t, "component.position", a.Name())
	assert.Equal(t, "score", c.Name())

	var zero ComponentKind[int]
	assert.False(t, zero.Valid())

	var k Kind = c
	assert.Equal(t, c.ID(), k.ID())
}
