package usedef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/tdce/internal/ir"
	"github.com/gnolang/tdce/internal/irtext"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	m, err := irtext.Parse("t", `
		a = 7
		b = a + 2
		c = b - a
		d = c / a
		store d, a
		x = a + a
		ret b
	`)
	require.NoError(t, err)
	f := m.Funcs[0]

	sets := Extract(f)
	tests := []struct {
		id  ir.ID
		use string
		def string
	}{
		{0, "{}", "{a}"},
		{1, "{a}", "{b}"},
		{2, "{a, b}", "{c}"},
		{3, "{a, c}", "{d}"},
		{4, "{a, d}", "{}"},
		{5, "{a}", "{x}"},
		{6, "{b}", "{}"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.use, sets.Use[tt.id].String(), "use of %d", tt.id)
		assert.Equal(t, tt.def, sets.Def[tt.id].String(), "def of %d", tt.id)
	}
}

func TestDefSetHoldsAtMostOneVariable(t *testing.T) {
	t.Parallel()

	m, err := irtext.Parse("t", `
		i = 0
	loop:
		c = i < 3
		cbr c, body, done
	body:
		i = phi i, c
		call f i
		r = call g i, c
		br loop
	done:
		ret
	`)
	require.NoError(t, err)

	sets := Extract(m.Funcs[0])
	require.Len(t, sets.Def, m.Funcs[0].Len())
	for id, def := range sets.Def {
		assert.LessOrEqual(t, def.Len(), 1, "def of %d", id)
	}
}
