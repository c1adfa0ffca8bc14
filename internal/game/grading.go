// internal/game/grading.go
//
// Grading engine: one-shot submission and scoring.
//
// PolicyColumnOnly: an occupied cell is correct iff the tile's source column
// equals the cell's column; empty cells are neutral.
// PolicyExact: an occupied cell is correct iff both source row and column
// match; empty cells are incorrect.
// In both, tiles left in the pool are unplaced and score nothing.

package game

// correctAt reports whether t is correct in cell c under the session policy.
func (s *Session) correctAt(t Tile, c Cell) bool {
	if t.SourceColumn != c.Col {
		return false
	}
	return s.policy != PolicyExact || t.SourceRow == c.Row
}

// Submit freezes the board and grades it. Only the first call grades; later
// calls return the same result unchanged.
func (s *Session) Submit() Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitted {
		return *s.result
	}
	r := s.grade()
	s.result = &r
	s.submitted = true
	s.stopped = s.now()
	return r
}

// Result returns the graded result, or nil before submission.
func (s *Session) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil
	}
	r := *s.result
	return &r
}

// grade evaluates every cell and every tile. Caller holds mu.
func (s *Session) grade() Result {
	r := Result{
		Total: len(s.tiles),
		Cells: make([]CellResult, 0, s.layout.Rows*s.layout.Cols),
		Tiles: make([]TileResult, 0, len(s.tiles)),
	}

	for row := 0; row < s.layout.Rows; row++ {
		for col := 0; col < s.layout.Cols; col++ {
			c := Cell{Row: row, Col: col}
			cr := CellResult{Row: row, Col: col}
			id, occupied := s.grid[c]
			switch {
			case !occupied && s.policy == PolicyExact:
				cr.Verdict = VerdictIncorrect
				r.Empty++
			case !occupied:
				cr.Verdict = VerdictNeutral
				r.Empty++
			case s.correctAt(s.tiles[s.index[id]], c):
				cr.TileID, cr.Verdict = id, VerdictCorrect
				r.Score++
			default:
				cr.TileID, cr.Verdict = id, VerdictIncorrect
				r.Incorrect++
			}
			r.Cells = append(r.Cells, cr)
		}
	}

	for _, t := range s.tiles {
		tr := TileResult{TileID: t.ID, Verdict: VerdictUnplaced}
		if c, ok := s.loc[t.ID]; ok {
			tr.Verdict = VerdictIncorrect
			if s.correctAt(t, c) {
				tr.Verdict = VerdictCorrect
			}
		} else {
			r.Unplaced++
		}
		r.Tiles = append(r.Tiles, tr)
	}
	r.Correct = r.Score
	return r
}
