package tasks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"femgen/catalog"
)

func TestCompose(t *testing.T) {
	cat := catalog.Default()
	list := Compose(cat)

	// Dirichlet: Trig on 2 domains + BercEng on 1 + Ruas on 1 = 4 combos
	// times 2 pairs = 8. Electric and Magnetic: Trig on 2 domains times
	// 4 pairs = 8 each. Total 24.
	require.Len(t, list, 24)

	// No duplicate (name, fespace_name)
	seen := map[string]bool{}
	for _, d := range list {
		assert.False(t, seen[d.Path()], d.Path())
		seen[d.Path()] = true
	}

	// Declaration order: Dirichlet first, Trigonometric before
	// Bercovier_Engelman, Square before Lshaped, BDM1 before BDM2.
	assert.Equal(t, "Dirichlet_Trig_Square", list[0].Name)
	assert.Equal(t, "BDM1_P2", list[0].FESpaceName)
	assert.Equal(t, "Dirichlet_Trig_Square", list[1].Name)
	assert.Equal(t, "BDM2_P3", list[1].FESpaceName)
	assert.Equal(t, "Dirichlet_Trig_Lshaped", list[2].Name)

	// Abbreviation table applied; unlisted names pass through
	found := map[string]bool{}
	for _, d := range list {
		found[d.Name] = true
	}
	assert.True(t, found["Dirichlet_BercEng_Square"])
	assert.True(t, found["Dirichlet_Ruas_Circle"])
	assert.True(t, found["Magnetic_Trig_Lshaped"])

	// Composition is reproducible
	assert.Equal(t, list, Compose(cat))
}

func TestFilter(t *testing.T) {
	list := Compose(catalog.Default())

	// By boundary condition
	{
		got := Filter(list, "Dirichlet")
		assert.Len(t, got, 8)
	}
	// By domain
	{
		got := Filter(list, "Circle")
		assert.Len(t, got, 2)
		for _, d := range got {
			assert.Equal(t, "Circle", d.Domain)
		}
	}
	// By fespace across the slash
	{
		got := Filter(list, "Square/BDM1_P2")
		for _, d := range got {
			assert.Equal(t, "Square", d.Domain)
			assert.Equal(t, "BDM1_P2", d.FESpaceName)
		}
		assert.NotEmpty(t, got)
	}
	// Zero matches is an empty slice, not an error
	{
		got := Filter(list, "Neumann")
		assert.Empty(t, got)
	}
	// Empty filter keeps everything
	{
		assert.Len(t, Filter(list, ""), len(list))
	}
}
