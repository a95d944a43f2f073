// Package features labels connected land and water regions and marks coasts.
package features

import "mapsmith.dev/internal/sim/grid"

const (
	GroupContinent  = "continent"
	GroupIsland     = "island"
	GroupIsle       = "isle"
	GroupOcean      = "ocean"
	GroupSea        = "sea"
	GroupGulf       = "gulf"
	GroupFreshwater = "freshwater"
	GroupSalt       = "salt"
)

// Classify floods the grid into features, replacing any previous labels. Each
// feature is a maximal connected set of cells on the same side of sea level.
// Land cells next to water become beaches and the water cells shallows.
func Classify(g *grid.Grid) {
	g.ResetFeatures()
	n := g.NumCells()
	queue := make([]int, 0, n)
	for seed := 0; seed < n; seed++ {
		if g.Feature[seed] != grid.NoFeature {
			continue
		}
		id := len(g.Features)
		land := g.IsLand(seed)
		f := grid.Feature{ID: id, Land: land, FirstCell: seed}

		g.Feature[seed] = id
		queue = append(queue[:0], seed)
		for head := 0; head < len(queue); head++ {
			q := queue[head]
			f.Cells++
			if g.Voronoi.Cells[q].Border {
				f.Border = true
			}
			for _, a := range g.Neighbors(q) {
				if g.IsLand(a) != land {
					markCoast(g, q, a, land)
					continue
				}
				if g.Feature[a] == grid.NoFeature {
					g.Feature[a] = id
					queue = append(queue, a)
				}
			}
		}

		switch {
		case land:
			f.Type = grid.FeatureIsland
		case f.Border:
			f.Type = grid.FeatureOcean
		default:
			f.Type = grid.FeatureLake
		}
		g.Features = append(g.Features, f)
	}
	assignGroups(g)
}

func markCoast(g *grid.Grid, q, a int, land bool) {
	if land {
		g.Coast[q] = grid.CoastBeach
		g.Coast[a] = grid.CoastShallows
		return
	}
	g.Coast[q] = grid.CoastShallows
	g.Coast[a] = grid.CoastBeach
}

// assignGroups sets size tiers for islands and oceans and salinity for lakes.
func assignGroups(g *grid.Grid) {
	total := float64(g.NumCells())
	salt := saltLakes(g)
	for i := range g.Features {
		f := &g.Features[i]
		size := float64(f.Cells)
		switch f.Type {
		case grid.FeatureIsland:
			switch {
			case size >= total/10:
				f.Group = GroupContinent
			case size > total/1000:
				f.Group = GroupIsland
			default:
				f.Group = GroupIsle
			}
		case grid.FeatureOcean:
			switch {
			case size > total/25:
				f.Group = GroupOcean
			case size > total/1000:
				f.Group = GroupSea
			default:
				f.Group = GroupGulf
			}
		case grid.FeatureLake:
			if salt[f.ID] {
				f.Group = GroupSalt
			} else {
				f.Group = GroupFreshwater
			}
		}
	}
}

// saltLakes finds lakes separated from an ocean by a single land cell.
func saltLakes(g *grid.Grid) map[int]bool {
	out := map[int]bool{}
	for c := range g.Heights {
		if g.IsLand(c) || g.Features[g.Feature[c]].Type != grid.FeatureLake {
			continue
		}
		lake := g.Feature[c]
		if out[lake] {
			continue
		}
	shore:
		for _, s := range g.Neighbors(c) {
			if !g.IsLand(s) {
				continue
			}
			for _, w := range g.Neighbors(s) {
				if !g.IsLand(w) && g.Features[g.Feature[w]].Type == grid.FeatureOcean {
					out[lake] = true
					break shore
				}
			}
		}
	}
	return out
}

// Tally counts features by type.
type Tally struct {
	Islands int `json:"islands"`
	Lakes   int `json:"lakes"`
	Oceans  int `json:"oceans"`
}

func Count(fs []grid.Feature) Tally {
	var t Tally
	for _, f := range fs {
		switch f.Type {
		case grid.FeatureIsland:
			t.Islands++
		case grid.FeatureLake:
			t.Lakes++
		case grid.FeatureOcean:
			t.Oceans++
		}
	}
	return t
}
