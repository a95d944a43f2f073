package mapgen

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
)

// Digest hashes the generation inputs and every per-cell result plus the
// Voronoi topology. Two maps with equal digests are identical.
func Digest(m *Map) string {
	h := sha256.New()
	g := m.Grid
	writeInts(h, g.Size.Width, g.Size.Height, g.Density)
	h.Write([]byte(m.Template))
	h.Write([]byte{0})
	writeUint64(h, m.Config.Seed)

	h.Write(g.Heights)
	writeInts(h, g.Feature...)
	for _, c := range g.Coast {
		h.Write([]byte{byte(c)})
	}

	vg := g.Voronoi
	writeInts(h, vg.NumCells, len(vg.Vertices))
	for _, c := range vg.Cells {
		writeInts(h, len(c.Vertices))
		writeInts(h, c.Vertices...)
		writeInts(h, len(c.Adjacent))
		writeInts(h, c.Adjacent...)
	}
	for _, v := range vg.Vertices {
		writeInts(h, v.Neighbors[:]...)
		writeInts(h, v.Cells[:]...)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeInts(h hash.Hash, vs ...int) {
	var buf [8]byte
	for _, v := range vs {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(v)))
		h.Write(buf[:])
	}
}

func writeUint64(h hash.Hash, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	h.Write(buf[:])
}
