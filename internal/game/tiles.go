// internal/game/tiles.go
//
// Tile factory: one tile per dataset word, shuffled into pool order.
// Each tile carries its source column, source row and ordinal within the
// column; its id is random.

package game

import (
	crand "crypto/rand"
	"encoding/hex"
	"math/rand/v2"

	"github.com/robalobadob/pronounce/internal/dataset"
)

// NewTiles creates one tile per word, column by column, then shuffles them.
// intn must return a uniform value in [0, n); nil uses math/rand/v2.
func NewTiles(ds *dataset.Dataset, intn func(n int) int) []Tile {
	if intn == nil {
		intn = rand.IntN
	}
	tiles := make([]Tile, 0, ds.WordCount())
	seen := make(map[string]struct{}, ds.WordCount())
	for c, col := range ds.Columns {
		for _, w := range col {
			tiles = append(tiles, Tile{
				ID:           uniqueID(seen),
				Text:         w.Text,
				SourceColumn: c,
				SourceRow:    w.Row,
				Ordinal:      w.Ordinal,
			})
		}
	}
	shuffle(tiles, intn)
	return tiles
}

// shuffle is an in-place Fisher–Yates shuffle.
func shuffle(tiles []Tile, intn func(n int) int) {
	for i := len(tiles) - 1; i > 0; i-- {
		j := intn(i + 1)
		tiles[i], tiles[j] = tiles[j], tiles[i]
	}
}

// uniqueID returns a tile id not yet in seen and records it.
func uniqueID(seen map[string]struct{}) string {
	for {
		var b [4]byte
		_, _ = crand.Read(b[:])
		id := "t_" + hex.EncodeToString(b[:])
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			return id
		}
	}
}
