// internal/game/view.go
//
// Read-only snapshots of a session for the HTTP layer.

package game

// TileView is what the presentation layer sees of a tile. Correctness is
// only filled in after submission.
type TileView struct {
	ID      string  `json:"id"`
	Text    string  `json:"text"`
	Cell    *Cell   `json:"cell,omitempty"` // nil while in the pool
	Verdict Verdict `json:"verdict,omitempty"`
}

// Snapshot is a consistent, read-only copy of the session state.
type Snapshot struct {
	ID        string     `json:"gameId"`
	Dataset   string     `json:"dataset"`
	Titles    []string   `json:"titles"`
	Rows      int        `json:"rows"`
	Cols      int        `json:"cols"`
	Policy    Policy     `json:"policy"`
	Mode      Mode       `json:"mode"`
	Tiles     []TileView `json:"tiles"`
	Placed    int        `json:"placed"`
	Total     int        `json:"total"`
	Ready     bool       `json:"ready"`
	Submitted bool       `json:"submitted"`
	ElapsedMs int64      `json:"elapsedMs"`
	Result    *Result    `json:"result,omitempty"`
}

// Snapshot returns the current state in presentation order.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	verdicts := map[string]Verdict{}
	if s.result != nil {
		for _, tr := range s.result.Tiles {
			verdicts[tr.TileID] = tr.Verdict
		}
	}

	views := make([]TileView, len(s.tiles))
	for i, t := range s.tiles {
		v := TileView{ID: t.ID, Text: t.Text, Verdict: verdicts[t.ID]}
		if c, ok := s.loc[t.ID]; ok {
			v.Cell = &c
		}
		views[i] = v
	}

	placed := s.placedCount()
	snap := Snapshot{
		ID:        s.id,
		Dataset:   s.dataset,
		Titles:    append([]string(nil), s.titles...),
		Rows:      s.layout.Rows,
		Cols:      s.layout.Cols,
		Policy:    s.policy,
		Mode:      s.mode,
		Tiles:     views,
		Placed:    placed,
		Total:     len(s.tiles),
		Ready:     placed == len(s.tiles),
		Submitted: s.submitted,
		ElapsedMs: s.elapsed().Milliseconds(),
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	return snap
}
