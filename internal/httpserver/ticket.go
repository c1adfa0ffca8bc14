// internal/httpserver/ticket.go
//
// Session tickets: an HS256 JWT naming the game a client created.
// The ticket travels as "Authorization: Bearer <token>" or as a cookie, and
// every /game/{id} route checks that the ticket's game matches {id}.

package httpserver

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

// signTicket creates a ticket for gameID that expires after cfg.TicketTTL.
func (s *Server) signTicket(gameID string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.cfg.TicketTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"gid": gameID,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	})
	ss, err := t.SignedString([]byte(s.cfg.Secret))
	return ss, exp, err
}

// ticketGameID validates tok and returns the game it was issued for.
func (s *Server) ticketGameID(tok string) (string, bool) {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid {
		return "", false
	}
	gid, _ := claims["gid"].(string)
	return gid, gid != ""
}

// cookieName is the ticket cookie (TICKET_COOKIE; default "pronounce_ticket").
func cookieName() string { return getEnv("TICKET_COOKIE", "pronounce_ticket") }

// setTicketCookie writes the ticket cookie with appropriate security attributes.
func (s *Server) setTicketCookie(w http.ResponseWriter, token string, exp time.Time) {
	secure := os.Getenv("APP_ENV") == "production"
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode // required for third‑party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName(),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// bearerOrCookie extracts a ticket from the Authorization header or cookie.
func bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(cookieName()); err == nil {
		return c.Value
	}
	return ""
}

// requireTicket rejects requests whose ticket is missing, invalid, or for a
// different game than the {id} URL parameter.
func (s *Server) requireTicket(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := bearerOrCookie(r)
		if tok == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing_ticket"})
			return
		}
		gid, ok := s.ticketGameID(tok)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_ticket"})
			return
		}
		if gid != chi.URLParam(r, "id") {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "wrong_game"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
