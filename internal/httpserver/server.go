// internal/httpserver/server.go
//
// HTTP server wiring for the matching game backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs,
//     request logging).
//   - Public endpoints: "/", "/health", POST /game/new.
//   - Session endpoints (ticket required): mounted under /game/{id}.
//   - Mapping load/format failures to user-visible JSON errors.
//
// Notes:
//   - A new game is always built from scratch (load → build → tiles); there
//     is no incremental patching of an old session.
//   - The session is the source of truth; responses carry a full snapshot
//     that the front-end mirrors.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pronounce/internal/audio"
	"github.com/robalobadob/pronounce/internal/dataset"
	"github.com/robalobadob/pronounce/internal/game"
	"github.com/robalobadob/pronounce/internal/store"
	"github.com/robalobadob/pronounce/internal/table"
)

// Config carries the collaborators and settings the server needs.
type Config struct {
	Loader         *table.Loader
	Audio          *audio.Resolver
	DefaultDataset string
	Policy         game.Policy
	Mode           game.Mode
	Secret         string        // HS256 key for session tickets
	TicketTTL      time.Duration // ticket lifetime
	ClientOrigin   string        // CORS origin
}

// Server bundles router, session store, and configuration.
type Server struct {
	r     *chi.Mux
	store store.Store
	cfg   Config
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, cfg Config) *Server {
	if cfg.DefaultDataset == "" {
		cfg.DefaultDataset = "dataset01"
	}
	if cfg.Secret == "" {
		cfg.Secret = "dev_secret_change_me"
	}
	if cfg.TicketTTL <= 0 {
		cfg.TicketTTL = 24 * time.Hour
	}
	if cfg.ClientOrigin == "" {
		cfg.ClientOrigin = "http://localhost:5173"
	}
	s := &Server{r: chi.NewRouter(), store: st, cfg: cfg}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)                   // zerolog access log
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(15 * time.Second)) // bound handler time (dataset fetch + probes)
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(s.cors)                          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"pronounce-go","endpoints":["/health","POST /game/new","/game/{id}/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.Post("/game/new", s.handleNewGame)
	s.mountGame()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})
	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ServeHTTP lets the Server be used directly as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.r.ServeHTTP(w, r) }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger writes one zerolog line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("reqId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

// ------------------------------ NEW GAME -----------------------------------

// newGameReq is the payload for POST /game/new.
type newGameReq struct {
	Dataset string `json:"dataset"` // optional; defaults to cfg.DefaultDataset
}

// newGameRes carries the ticket plus the initial snapshot.
type newGameRes struct {
	Ticket string `json:"ticket"`
	game.Snapshot
}

// handleNewGame loads the dataset, builds a fresh session, and stores it.
//
// Failures:
//   - bad dataset name    → 400
//   - fetch failure       → 502 (LoadError: url + status)
//   - unusable table      → 422 (FormatError: empty / too many columns)
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	if q := r.URL.Query().Get("dataset"); req.Dataset == "" && q != "" {
		req.Dataset = q
	}
	name := req.Dataset
	if name == "" {
		name = s.cfg.DefaultDataset
	}

	tbl, err := s.cfg.Loader.Load(r.Context(), name)
	if err != nil {
		s.writeLoadError(w, name, err)
		return
	}
	ds, err := dataset.Build(tbl.Rows)
	if err == nil && ds.WordCount() == 0 {
		err = &dataset.FormatError{Reason: "dataset has no words"}
	}
	if err != nil {
		var fe *dataset.FormatError
		if errors.As(err, &fe) {
			fe.Location = tbl.Location
		}
		log.Warn().Err(err).Str("dataset", name).Msg("dataset unusable")
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   "dataset_format",
			"message": err.Error(),
		})
		return
	}

	g := game.New(name, ds, game.Options{Policy: s.cfg.Policy, Mode: s.cfg.Mode})
	if err := s.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save game")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "save_failed"})
		return
	}

	tok, exp, err := s.signTicket(g.ID())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "sign_failed"})
		return
	}
	s.setTicketCookie(w, tok, exp)
	log.Info().Str("gameId", g.ID()).Str("dataset", name).Int("tiles", g.Total()).Msg("game created")
	writeJSON(w, http.StatusOK, newGameRes{Ticket: tok, Snapshot: g.Snapshot()})
}

// writeLoadError maps loader failures to HTTP errors.
func (s *Server) writeLoadError(w http.ResponseWriter, name string, err error) {
	if errors.Is(err, table.ErrBadName) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_dataset_name"})
		return
	}
	log.Warn().Err(err).Str("dataset", name).Msg("dataset load failed")
	body := map[string]any{"error": "load_failed", "message": err.Error()}
	var le *table.LoadError
	if errors.As(err, &le) {
		body["url"] = le.URL
		if le.Status != 0 {
			body["status"] = le.Status
		}
	}
	writeJSON(w, http.StatusBadGateway, body)
}

// ------------------------------- small util --------------------------------

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
