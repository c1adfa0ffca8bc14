// internal/game/engine.go
//
// Placement engine for a single matching-game session.
// Responsibilities:
//   - Build a fresh Session from a Dataset (tiles, grid layout, clock).
//   - Track each tile's location: the pool or exactly one cell.
//   - Apply placements with eviction/swap semantics; expose readiness.
//   - Freeze the board once submitted (late moves are silent no-ops).
//
// Notes:
//   - All operations take the session mutex, so placements and submission
//     never overlap even when driven by concurrent HTTP handlers.
//   - placedCount is recomputed from state on every read rather than
//     tracked incrementally.
//   - randomID() is a compact hex identifier for the session.

package game

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/pronounce/internal/dataset"
)

var (
	ErrUnknownTile = errors.New("unknown tile")
	ErrOutOfBounds = errors.New("cell out of bounds")
)

// Options configure a new Session. Zero values select the defaults.
type Options struct {
	Policy Policy
	Mode   Mode
	Intn   func(n int) int  // shuffle source; nil → math/rand/v2
	Now    func() time.Time // clock; nil → time.Now
}

// Session is the aggregate state of one game: built once per load and
// discarded on reset.
type Session struct {
	mu sync.Mutex

	id      string
	dataset string
	titles  []string
	layout  Layout
	policy  Policy
	mode    Mode

	tiles []Tile          // shuffled presentation order
	index map[string]int  // tile id → position in tiles
	loc   map[string]Cell // tile id → cell; absent means pool
	grid  map[Cell]string // cell → tile id

	submitted bool
	result    *Result

	started time.Time
	stopped time.Time
	now     func() time.Time
}

// New constructs a session for dataset name from ds.
// The grid has one column per category; its row count is the deepest column
// under PolicyColumnOnly, or the number of data rows under PolicyExact.
func New(name string, ds *dataset.Dataset, opts Options) *Session {
	opts = opts.withDefaults()

	titles := make([]string, ds.NumColumns())
	for c := range titles {
		titles[c] = ds.Title(c)
	}
	layout := Layout{Rows: ds.MaxDepth(), Cols: ds.NumColumns()}
	if opts.Policy == PolicyExact {
		layout.Rows = ds.DataRows()
	}

	s := &Session{
		id:      randomID(),
		dataset: name,
		titles:  titles,
		layout:  layout,
		policy:  opts.Policy,
		mode:    opts.Mode,
		now:     opts.Now,
	}
	s.setTiles(NewTiles(ds, opts.Intn))
	s.started = s.now()
	return s
}

func (o Options) withDefaults() Options {
	o.Policy = ParsePolicy(string(o.Policy))
	o.Mode = ParseMode(string(o.Mode))
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func (s *Session) setTiles(tiles []Tile) {
	s.tiles = tiles
	s.index = make(map[string]int, len(tiles))
	for i, t := range tiles {
		s.index[t.ID] = i
	}
	s.loc = make(map[string]Cell)
	s.grid = make(map[Cell]string)
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Dataset returns the dataset name the session was built from.
func (s *Session) Dataset() string { return s.dataset }

// Layout returns the grid geometry.
func (s *Session) Layout() Layout { return s.layout }

// Place moves tileID into cell (row, col).
//
// Rules:
//   - After Submit the call is ignored: zero Move, nil error.
//   - A different occupant of the target is evicted to the pool.
//   - The tile's previous cell, if any, is vacated.
//   - In ModeStrict, incorrect targets and occupied cells are rejected.
func (s *Session) Place(tileID string, row, col int) (Move, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitted {
		return Move{}, nil
	}
	i, ok := s.index[tileID]
	if !ok {
		return Move{}, ErrUnknownTile
	}
	target := Cell{Row: row, Col: col}
	if !s.layout.Contains(target) {
		return Move{}, ErrOutOfBounds
	}

	if prev, placed := s.loc[tileID]; placed && prev == target {
		return Move{Applied: true}, nil
	}

	if s.mode == ModeStrict {
		_, placed := s.loc[tileID]
		_, occupied := s.grid[target]
		if placed || occupied || !s.correctAt(s.tiles[i], target) {
			return Move{Rejected: true}, nil
		}
	}

	var mv Move
	if occupant, ok := s.grid[target]; ok {
		delete(s.loc, occupant)
		mv.Evicted = occupant
	}
	if prev, ok := s.loc[tileID]; ok {
		delete(s.grid, prev)
	}
	s.loc[tileID] = target
	s.grid[target] = tileID
	mv.Applied = true
	return mv, nil
}

// Return moves tileID back to the pool. Frozen boards ignore the call.
func (s *Session) Return(tileID string) (Move, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitted {
		return Move{}, nil
	}
	if _, ok := s.index[tileID]; !ok {
		return Move{}, ErrUnknownTile
	}
	if s.mode == ModeStrict {
		return Move{Rejected: true}, nil
	}
	if prev, ok := s.loc[tileID]; ok {
		delete(s.grid, prev)
		delete(s.loc, tileID)
	}
	return Move{Applied: true}, nil
}

// placedCount counts tiles whose location is a cell. Caller holds mu.
func (s *Session) placedCount() int {
	n := 0
	for _, t := range s.tiles {
		if _, ok := s.loc[t.ID]; ok {
			n++
		}
	}
	return n
}

// Placed returns how many tiles currently sit in a cell.
func (s *Session) Placed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.placedCount()
}

// Total returns the number of tiles in the session.
func (s *Session) Total() int { return len(s.tiles) }

// Ready reports whether every tile is placed, i.e. submit may be offered.
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.placedCount() == len(s.tiles)
}

// Submitted reports whether the board is frozen.
func (s *Session) Submitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitted
}

// Location returns the cell holding tileID; ok is false for the pool.
func (s *Session) Location(tileID string) (Cell, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.loc[tileID]
	return c, ok
}

// Occupant returns the tile in cell c, or "" when empty.
func (s *Session) Occupant(c Cell) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid[c]
}

// Elapsed returns the session clock; it stops permanently at Submit.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed()
}

func (s *Session) elapsed() time.Duration {
	if s.submitted {
		return s.stopped.Sub(s.started)
	}
	return s.now().Sub(s.started)
}

// TitleAudio reports whether col names a category; titles are always playable.
func (s *Session) TitleAudio(col int) bool {
	return col >= 0 && col < s.layout.Cols
}

// WordAudio returns the column and ordinal used to name tileID's audio file.
// Word audio stays locked until the board is submitted.
func (s *Session) WordAudio(tileID string) (col, ordinal int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, known := s.index[tileID]
	if !known || !s.submitted {
		return 0, 0, false
	}
	t := s.tiles[i]
	return t.SourceColumn, t.Ordinal, true
}

// randomID returns a compact 16‑hex‑char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
