// internal/game/types.go
//
// Core type definitions for the matching game engine.
// Defines:
//   - Tile: one draggable word tagged with its source category.
//   - Cell / Layout: addressable grid slots and grid geometry.
//   - Policy / Mode: grading and placement-legality variants.
//   - Result and per-cell / per-tile verdicts produced by Submit.

package game

// Policy selects how placements are graded.
type Policy string

const (
	// PolicyColumnOnly: a tile is correct in any row of its source column;
	// empty cells are neutral. Default.
	PolicyColumnOnly Policy = "column"
	// PolicyExact: a tile is correct only at (SourceRow, SourceColumn);
	// empty cells count as incorrect.
	PolicyExact Policy = "exact"
)

// Mode selects placement legality.
type Mode string

const (
	// ModeFree accepts any placement and defers correctness to Submit. Default.
	ModeFree Mode = "free"
	// ModeStrict rejects placements that are not correct under the policy,
	// and rejects drops onto occupied cells. Correct tiles stay put.
	ModeStrict Mode = "strict"
)

// ParsePolicy maps a config string to a Policy, defaulting to column-only.
func ParsePolicy(s string) Policy {
	if Policy(s) == PolicyExact {
		return PolicyExact
	}
	return PolicyColumnOnly
}

// ParseMode maps a config string to a Mode, defaulting to free placement.
func ParseMode(s string) Mode {
	if Mode(s) == ModeStrict {
		return ModeStrict
	}
	return ModeFree
}

// Tile is a single word to be matched to its category.
type Tile struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	SourceColumn int    `json:"sourceColumn"`
	SourceRow    int    `json:"sourceRow"` // 0-based data row in the source table
	Ordinal      int    `json:"ordinal"`   // 1-based position within its column
}

// Cell addresses one grid slot.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Layout is the grid geometry: Rows × Cols.
type Layout struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// Contains reports whether c lies inside the layout.
func (l Layout) Contains(c Cell) bool {
	return c.Row >= 0 && c.Row < l.Rows && c.Col >= 0 && c.Col < l.Cols
}

// Verdict is the graded outcome of a cell or tile.
type Verdict string

const (
	VerdictCorrect   Verdict = "correct"
	VerdictIncorrect Verdict = "incorrect"
	VerdictNeutral   Verdict = "neutral"  // empty cell under PolicyColumnOnly
	VerdictUnplaced  Verdict = "unplaced" // tile left in the pool
)

// CellResult is the verdict for one grid cell.
type CellResult struct {
	Row     int     `json:"row"`
	Col     int     `json:"col"`
	TileID  string  `json:"tileId,omitempty"`
	Verdict Verdict `json:"verdict"`
}

// TileResult is the verdict for one tile.
type TileResult struct {
	TileID  string  `json:"tileId"`
	Verdict Verdict `json:"verdict"`
}

// Result is the outcome of Submit. Score/Total is exact; no percentage.
type Result struct {
	Score     int          `json:"score"`
	Total     int          `json:"total"`
	Correct   int          `json:"correct"`   // correctly placed tiles
	Incorrect int          `json:"incorrect"` // placed but wrong
	Empty     int          `json:"empty"`     // cells with no tile
	Unplaced  int          `json:"unplaced"`
	Cells     []CellResult `json:"cells"`
	Tiles     []TileResult `json:"tiles"`
}

// Move reports the effect of Place or Return.
type Move struct {
	Applied  bool   `json:"applied"`
	Rejected bool   `json:"rejected,omitempty"` // strict mode "shake"
	Evicted  string `json:"evicted,omitempty"`  // tile sent back to the pool
}
