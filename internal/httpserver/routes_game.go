// internal/httpserver/routes_game.go
//
// Session routes under /game/{id} (ticket required):
//   - GET  /game/{id}                      → snapshot
//   - POST /game/{id}/place                → {tileId,row,col}; move + snapshot
//   - POST /game/{id}/return               → {tileId}; move + snapshot
//   - POST /game/{id}/submit               → grade once; snapshot with result
//   - GET  /game/{id}/audio/title/{col}    → resolved title audio, or 204
//   - GET  /game/{id}/audio/tile/{tileId}  → resolved word audio, or 204
//
// Moves after submission are accepted with 200 and change nothing: a late
// gesture racing a submit is harmless. Word audio stays 204 until submitted.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pronounce/internal/audio"
	"github.com/robalobadob/pronounce/internal/game"
	"github.com/robalobadob/pronounce/internal/store"
)

// mountGame registers all /game/{id} routes.
func (s *Server) mountGame() {
	s.r.Route("/game/{id}", func(r chi.Router) {
		r.Use(s.requireTicket)
		r.Get("/", s.handleSnapshot)
		r.Post("/place", s.handlePlace)
		r.Post("/return", s.handleReturn)
		r.Post("/submit", s.handleSubmit)
		r.Get("/audio/title/{col}", s.handleTitleAudio)
		r.Get("/audio/tile/{tileId}", s.handleTileAudio)
	})
}

// session loads the {id} session or writes a 404.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*game.Session, bool) {
	g, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
		return nil, false
	}
	if err != nil {
		log.Error().Err(err).Msg("load game")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "load_failed"})
		return nil, false
	}
	return g, true
}

// save persists g after a mutation or writes a 500.
func (s *Server) save(w http.ResponseWriter, r *http.Request, g *game.Session) bool {
	if err := s.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Str("gameId", g.ID()).Msg("save game")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "save_failed"})
		return false
	}
	return true
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	g, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, g.Snapshot())
}

// moveReq is the payload for /place and /return.
type moveReq struct {
	TileID string `json:"tileId"`
	Row    *int   `json:"row"`
	Col    *int   `json:"col"`
}

// moveRes is the response for /place and /return.
type moveRes struct {
	Move  game.Move     `json:"move"`
	State game.Snapshot `json:"state"`
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	var req moveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TileID == "" || req.Row == nil || req.Col == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_json"})
		return
	}
	g, ok := s.session(w, r)
	if !ok {
		return
	}
	mv, err := g.Place(req.TileID, *req.Row, *req.Col)
	if err != nil {
		writeMoveError(w, err)
		return
	}
	if mv.Applied && !s.save(w, r, g) {
		return
	}
	writeJSON(w, http.StatusOK, moveRes{Move: mv, State: g.Snapshot()})
}

func (s *Server) handleReturn(w http.ResponseWriter, r *http.Request) {
	var req moveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TileID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_json"})
		return
	}
	g, ok := s.session(w, r)
	if !ok {
		return
	}
	mv, err := g.Return(req.TileID)
	if err != nil {
		writeMoveError(w, err)
		return
	}
	if mv.Applied && !s.save(w, r, g) {
		return
	}
	writeJSON(w, http.StatusOK, moveRes{Move: mv, State: g.Snapshot()})
}

// writeMoveError maps engine errors to HTTP errors.
func writeMoveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrUnknownTile):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown_tile"})
	case errors.Is(err, game.ErrOutOfBounds):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "out_of_bounds"})
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	g, ok := s.session(w, r)
	if !ok {
		return
	}
	first := !g.Submitted()
	res := g.Submit()
	if first {
		if !s.save(w, r, g) {
			return
		}
		log.Info().Str("gameId", g.ID()).Int("score", res.Score).Int("total", res.Total).Msg("game submitted")
	}
	writeJSON(w, http.StatusOK, g.Snapshot())
}

// audioRes is returned when an audio asset was found.
type audioRes struct {
	File string `json:"file"`
	URL  string `json:"url"`
}

func (s *Server) handleTitleAudio(w http.ResponseWriter, r *http.Request) {
	g, ok := s.session(w, r)
	if !ok {
		return
	}
	col, err := strconv.Atoi(chi.URLParam(r, "col"))
	if err != nil || !g.TitleAudio(col) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.writeAudio(w, r, g.Dataset(), audio.TitleFile(col))
}

func (s *Server) handleTileAudio(w http.ResponseWriter, r *http.Request) {
	g, ok := s.session(w, r)
	if !ok {
		return
	}
	col, ord, ok := g.WordAudio(chi.URLParam(r, "tileId"))
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.writeAudio(w, r, g.Dataset(), audio.WordFile(col, ord))
}

// writeAudio resolves file and writes its location, or 204 when unavailable.
func (s *Server) writeAudio(w http.ResponseWriter, r *http.Request, dataset, file string) {
	if s.cfg.Audio == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	loc, ok := s.cfg.Audio.Resolve(r.Context(), dataset, file)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, audioRes{File: file, URL: loc})
}
