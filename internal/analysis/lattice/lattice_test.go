package lattice

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gnolang/tdce/internal/ir"
)

func TestUniverse(t *testing.T) {
	t.Parallel()

	u := NewUniverse([]ir.Var{"a", "b", "a", "c"})
	assert.Equal(t, 3, u.Len())

	i, ok := u.Index("c")
	assert.True(t, ok)
	assert.Equal(t, uint(2), i)
	assert.Equal(t, ir.Var("c"), u.Var(i))

	_, ok = u.Index("z")
	assert.False(t, ok)
}

func TestVarSetOperations(t *testing.T) {
	t.Parallel()
	u := NewUniverse([]ir.Var{"a", "b", "c", "d"})

	tests := []struct {
		name string
		got  *VarSet
		want []ir.Var
	}{
		{"bottom", u.Bottom(), []ir.Var{}},
		{"of ignores unknown", u.Of("b", "zz", "a"), []ir.Var{"a", "b"}},
		{"union", Union(u.Of("a"), u.Of("c", "d")), []ir.Var{"a", "c", "d"}},
		{"difference", Difference(u.Of("a", "b", "c"), u.Of("b", "d")), []ir.Var{"a", "c"}},
		{"difference with bottom", Difference(u.Of("a"), u.Bottom()), []ir.Var{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.got.Vars())
			assert.Equal(t, len(tt.want), tt.got.Len())
		})
	}
}

func TestVarSetInPlace(t *testing.T) {
	t.Parallel()
	u := NewUniverse([]ir.Var{"a", "b", "c"})

	s := u.Of("a")
	s.Join(u.Of("b"))
	assert.True(t, s.Has("a"))
	assert.True(t, s.Has("b"))
	assert.False(t, s.Has("c"))

	s.Remove(u.Of("a"))
	assert.Equal(t, "{b}", s.String())

	c := s.Clone()
	c.Add("c")
	assert.False(t, s.Has("c"), "clone must not share bits")

	s.Assign(c)
	assert.True(t, s.Equal(c))

	s.Reset()
	assert.True(t, s.Empty())
	assert.Equal(t, "{}", s.String())
}

func TestVarSetOrder(t *testing.T) {
	t.Parallel()
	u := NewUniverse([]ir.Var{"a", "b", "c"})

	assert.True(t, u.Bottom().SubsetOf(u.Of("a")))
	assert.True(t, u.Of("a").SubsetOf(u.Of("a", "c")))
	assert.False(t, u.Of("a", "b").SubsetOf(u.Of("a", "c")))
	assert.True(t, u.Of("c", "a").Equal(u.Of("a", "c")))
}

func TestEmptyUniverse(t *testing.T) {
	t.Parallel()
	u := NewUniverse(nil)
	s := u.Bottom()
	s.Add("a")
	assert.True(t, s.Empty())
	assert.False(t, s.Has("a"))
	assert.Equal(t, "{}", s.String())
}
