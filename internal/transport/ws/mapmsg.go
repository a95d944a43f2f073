package ws

import (
	"mapsmith.dev/internal/protocol"
	"mapsmith.dev/internal/sim/encoding"
	"mapsmith.dev/internal/sim/geom"
	"mapsmith.dev/internal/sim/mapgen"
)

// MapMessage converts a generated map to its wire form.
func MapMessage(reqID string, m *mapgen.Map, polygons bool) protocol.MapMsg {
	g := m.Grid
	coast := make([]uint8, len(g.Coast))
	for i, c := range g.Coast {
		coast[i] = uint8(c)
	}
	msg := protocol.MapMsg{
		Type:            protocol.TypeMap,
		ProtocolVersion: protocol.Version,
		RequestID:       reqID,
		Width:           g.Size.Width,
		Height:          g.Size.Height,
		Density:         g.Density,
		Template:        m.Template,
		Seed:            m.Config.Seed,
		Digest:          m.Digest,
		Cells:           g.NumCells(),
		HeightsRLE:      encoding.EncodeRLE(g.Heights),
		FeaturesRLE:     encoding.EncodeRLE(g.Feature),
		CoastRLE:        encoding.EncodeRLE(coast),
		Features:        make([]protocol.FeatureInfo, 0, len(g.Features)),
		Coastlines:      make([]protocol.CoastlineInfo, 0, len(m.Coastlines)),
		Contours:        make([]protocol.ContourInfo, 0, len(m.Contours)),
		Diagnostics:     make([]protocol.DiagnosticInfo, 0, len(m.Diagnostics)),
	}
	for _, f := range g.Features {
		msg.Features = append(msg.Features, protocol.FeatureInfo{
			ID:     f.ID,
			Type:   f.Type.String(),
			Group:  f.Group,
			Land:   f.Land,
			Border: f.Border,
			Cells:  f.Cells,
		})
	}
	out := m.Outputs(polygons)
	for _, c := range out.Coastlines {
		msg.Coastlines = append(msg.Coastlines, protocol.CoastlineInfo{
			FeatureID: c.Feature,
			Type:      c.Type,
			Group:     c.Group,
			Points:    points(c.Points),
		})
	}
	for _, c := range out.Contours {
		msg.Contours = append(msg.Contours, protocol.ContourInfo{Height: c.Height, Points: points(c.Points)})
	}
	for _, p := range out.Polygons {
		msg.Polygons = append(msg.Polygons, points(p))
	}
	for _, d := range m.Diagnostics {
		msg.Diagnostics = append(msg.Diagnostics, protocol.DiagnosticInfo(d))
	}
	return msg
}

func points(ps []geom.Point) []protocol.Point {
	out := make([]protocol.Point, len(ps))
	for i, p := range ps {
		out[i] = protocol.Point{p.X, p.Y}
	}
	return out
}
