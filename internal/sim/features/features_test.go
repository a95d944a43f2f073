package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapsmith.dev/internal/sim/geom"
	"mapsmith.dev/internal/sim/grid"
	"mapsmith.dev/internal/sim/gridtest"
	"mapsmith.dev/internal/sim/heightmap"
	"mapsmith.dev/internal/sim/rng"
)

func TestClassify_CenterIsland(t *testing.T) {
	g := gridtest.Lattice(3, 3, []uint8{
		5, 5, 5,
		5, 50, 5,
		5, 5, 5,
	}, nil)

	Classify(g)
	require.Len(t, g.Features, 2)

	water, land := g.Features[0], g.Features[1]
	assert.False(t, water.Land)
	assert.Equal(t, 8, water.Cells)
	assert.Equal(t, grid.FeatureLake, water.Type)
	assert.Equal(t, GroupFreshwater, water.Group)

	assert.True(t, land.Land)
	assert.False(t, land.Border)
	assert.Equal(t, 1, land.Cells)
	assert.Equal(t, 4, land.FirstCell)
	assert.Equal(t, grid.FeatureIsland, land.Type)
	assert.Equal(t, 1, g.Feature[4])

	assert.Equal(t, grid.CoastBeach, g.Coast[4])
	for _, c := range []int{1, 3, 5, 7} {
		assert.Equal(t, grid.CoastShallows, g.Coast[c], "cell %d", c)
	}
	for _, c := range []int{0, 2, 6, 8} {
		assert.Equal(t, grid.CoastNone, g.Coast[c], "cell %d", c)
	}
}

func TestClassify_BorderWaterIsOcean(t *testing.T) {
	border := []bool{
		true, true, true, true, true,
		true, false, false, false, true,
		true, false, false, false, true,
		true, false, false, false, true,
		true, true, true, true, true,
	}
	g := gridtest.Lattice(5, 5, []uint8{
		0, 0, 0, 0, 0,
		0, 30, 30, 30, 0,
		0, 30, 10, 30, 0,
		0, 30, 30, 30, 0,
		0, 0, 0, 0, 0,
	}, border)

	Classify(g)
	require.Len(t, g.Features, 3)
	assert.Equal(t, grid.FeatureOcean, g.Features[0].Type)
	assert.True(t, g.Features[0].Border)
	assert.Equal(t, grid.FeatureIsland, g.Features[1].Type)
	assert.Equal(t, grid.FeatureLake, g.Features[2].Type)
	assert.Equal(t, GroupSalt, g.Features[2].Group, "one land cell separates the lake from the ocean")

	tally := Count(g.Features)
	assert.Equal(t, Tally{Islands: 1, Lakes: 1, Oceans: 1}, tally)
}

func TestClassify_CoversEveryCellOnce(t *testing.T) {
	g := gridtest.Sampled(t, geom.Size{Width: 200, Height: 120}, 4, 5)
	tpl, err := heightmap.ParseTemplate(heightmap.Archipelago)
	require.NoError(t, err)
	require.NoError(t, heightmap.New(g, rng.New(5)).Run(tpl))

	Classify(g)
	sizes := make([]int, len(g.Features))
	for c, id := range g.Feature {
		require.NotEqual(t, grid.NoFeature, id, "cell %d unlabeled", c)
		require.Equal(t, g.IsLand(c), g.Features[id].Land, "cell %d", c)
		sizes[id]++
	}
	for id, f := range g.Features {
		assert.Equal(t, f.Cells, sizes[id], "feature %d", id)
		assert.Equal(t, id, f.ID)
		assert.NotEmpty(t, f.Group)
		assert.Equal(t, id, g.Feature[f.FirstCell])
	}
	for c := range g.Heights {
		for _, a := range g.Neighbors(c) {
			if g.IsLand(c) == g.IsLand(a) {
				assert.Equal(t, g.Feature[c], g.Feature[a], "neighbors %d-%d share a side of sea level", c, a)
			}
		}
	}
}

func TestClassify_Idempotent(t *testing.T) {
	g := gridtest.Lattice(3, 1, []uint8{40, 0, 40}, nil)
	Classify(g)
	first := append([]int(nil), g.Feature...)
	Classify(g)
	assert.Equal(t, first, g.Feature)
	assert.Len(t, g.Features, 3)
}
