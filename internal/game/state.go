// internal/game/state.go
//
// Serializable session state.
// Responsibilities:
//   - Export a session to a JSON-friendly State.
//   - Restore a session from a State, rejecting inconsistent placements.

package game

import (
	"fmt"
	"time"
)

// State is the serializable form of a Session, used by persistent stores.
type State struct {
	ID        string          `json:"id"`
	Dataset   string          `json:"dataset"`
	Titles    []string        `json:"titles"`
	Layout    Layout          `json:"layout"`
	Policy    Policy          `json:"policy"`
	Mode      Mode            `json:"mode"`
	Tiles     []Tile          `json:"tiles"`
	Locations map[string]Cell `json:"locations"`
	Submitted bool            `json:"submitted"`
	Result    *Result         `json:"result,omitempty"`
	StartedAt time.Time       `json:"startedAt"`
	StoppedAt time.Time       `json:"stoppedAt,omitempty"`
}

// Export copies the session into a State.
func (s *Session) Export() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	locs := make(map[string]Cell, len(s.loc))
	for id, c := range s.loc {
		locs[id] = c
	}
	st := State{
		ID:        s.id,
		Dataset:   s.dataset,
		Titles:    append([]string(nil), s.titles...),
		Layout:    s.layout,
		Policy:    s.policy,
		Mode:      s.mode,
		Tiles:     append([]Tile(nil), s.tiles...),
		Locations: locs,
		Submitted: s.submitted,
		StartedAt: s.started,
		StoppedAt: s.stopped,
	}
	if s.result != nil {
		r := *s.result
		st.Result = &r
	}
	return st
}

// Restore rebuilds a Session from st, rejecting states that break the
// one-tile-per-cell invariant. now may be nil.
func Restore(st State, now func() time.Time) (*Session, error) {
	if now == nil {
		now = time.Now
	}
	if st.Submitted && st.Result == nil {
		return nil, fmt.Errorf("restore %s: submitted without result", st.ID)
	}
	s := &Session{
		id:        st.ID,
		dataset:   st.Dataset,
		titles:    append([]string(nil), st.Titles...),
		layout:    st.Layout,
		policy:    ParsePolicy(string(st.Policy)),
		mode:      ParseMode(string(st.Mode)),
		submitted: st.Submitted,
		result:    st.Result,
		started:   st.StartedAt,
		stopped:   st.StoppedAt,
		now:       now,
	}
	s.setTiles(append([]Tile(nil), st.Tiles...))
	if len(s.index) != len(s.tiles) {
		return nil, fmt.Errorf("restore %s: duplicate tile ids", st.ID)
	}
	for id, c := range st.Locations {
		if _, ok := s.index[id]; !ok {
			return nil, fmt.Errorf("restore %s: %w %q", st.ID, ErrUnknownTile, id)
		}
		if !s.layout.Contains(c) {
			return nil, fmt.Errorf("restore %s: %w (%d,%d)", st.ID, ErrOutOfBounds, c.Row, c.Col)
		}
		if other, taken := s.grid[c]; taken {
			return nil, fmt.Errorf("restore %s: cell (%d,%d) held by %q and %q", st.ID, c.Row, c.Col, other, id)
		}
		s.loc[id] = c
		s.grid[c] = id
	}
	return s, nil
}
