package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/robalobadob/pronounce/internal/audio"
	"github.com/robalobadob/pronounce/internal/game"
	"github.com/robalobadob/pronounce/internal/store"
	"github.com/robalobadob/pronounce/internal/table"
)

func newTestServer() *Server {
	wide := strings.Repeat("c,", 26) + "c\n" + "w\n"
	datasets := fstest.MapFS{
		"fa.csv":    {Data: []byte("Fruit,Animal\napple,cat\npear,\n")},
		"wide.csv":  {Data: []byte(wide)},
		"blank.csv": {Data: []byte("\n\n")},
		"hdr.csv":   {Data: []byte("A;B\n")},
	}
	available := map[string]bool{
		"audio/fa/title_b.mp3": true,
		"audio/word_a2.mp3":    true,
	}
	prober := audio.ProberFunc(func(_ context.Context, loc string) bool { return available[loc] })

	return New(store.NewMemoryStore(), Config{
		Loader:         table.NewLoader("", datasets),
		Audio:          audio.NewResolver([]string{"audio"}, prober),
		DefaultDataset: "fa",
		Secret:         "test-secret",
	})
}

type newGame struct {
	Ticket string `json:"ticket"`
	game.Snapshot
}

func do(t *testing.T, srv *Server, method, path, ticket, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if ticket != "" {
		req.Header.Set("Authorization", "Bearer "+ticket)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func startGame(t *testing.T, srv *Server, body string) newGame {
	t.Helper()
	w := do(t, srv, "POST", "/game/new", "", body)
	if w.Code != http.StatusOK {
		t.Fatalf("new game: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var g newGame
	if err := json.NewDecoder(w.Body).Decode(&g); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return g
}

func tileID(t *testing.T, g newGame, text string) string {
	t.Helper()
	for _, tl := range g.Tiles {
		if tl.Text == text {
			return tl.ID
		}
	}
	t.Fatalf("no tile %q", text)
	return ""
}

func TestHealth(t *testing.T) {
	w := do(t, newTestServer(), "GET", "/health", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("unexpected health response %d %s", w.Code, w.Body.String())
	}
}

func TestFullGameFlow(t *testing.T) {
	srv := newTestServer()
	g := startGame(t, srv, `{}`)

	if g.Ticket == "" || g.ID == "" {
		t.Fatal("expected ticket and game id")
	}
	if g.Dataset != "fa" || g.Rows != 2 || g.Cols != 2 || g.Total != 3 || g.Ready {
		t.Fatalf("unexpected initial state %+v", g.Snapshot)
	}
	for _, tl := range g.Tiles {
		if tl.Cell != nil || tl.Verdict != "" {
			t.Fatalf("tiles must start in the pool without verdicts: %+v", tl)
		}
	}

	base := "/game/" + g.ID
	pear := tileID(t, g, "pear")

	// Word audio is locked before submission.
	if w := do(t, srv, "GET", base+"/audio/tile/"+pear, g.Ticket, ""); w.Code != http.StatusNoContent {
		t.Fatalf("tile audio before submit: expected 204, got %d", w.Code)
	}

	for _, p := range []struct {
		text     string
		row, col int
	}{{"apple", 0, 0}, {"pear", 1, 0}, {"cat", 1, 1}} {
		body := `{"tileId":"` + tileID(t, g, p.text) + `","row":` + itoa(p.row) + `,"col":` + itoa(p.col) + `}`
		if w := do(t, srv, "POST", base+"/place", g.Ticket, body); w.Code != http.StatusOK {
			t.Fatalf("place %s: expected 200, got %d: %s", p.text, w.Code, w.Body.String())
		}
	}

	var snap game.Snapshot
	w := do(t, srv, "GET", base, g.Ticket, "")
	_ = json.NewDecoder(w.Body).Decode(&snap)
	if !snap.Ready || snap.Placed != 3 || snap.Submitted {
		t.Fatalf("expected ready, unsubmitted board: %+v", snap)
	}

	w = do(t, srv, "POST", base+"/submit", g.Ticket, "")
	if w.Code != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d", w.Code)
	}
	_ = json.NewDecoder(w.Body).Decode(&snap)
	if snap.Result == nil || snap.Result.Score != 3 || snap.Result.Total != 3 {
		t.Fatalf("expected 3/3, got %+v", snap.Result)
	}

	// Late gesture: accepted, ignored.
	w = do(t, srv, "POST", base+"/place", g.Ticket, `{"tileId":"`+pear+`","row":0,"col":1}`)
	var mv moveRes
	_ = json.NewDecoder(w.Body).Decode(&mv)
	if w.Code != http.StatusOK || mv.Move.Applied {
		t.Fatalf("late place must be a no-op, got %d %+v", w.Code, mv.Move)
	}

	// Audio after submission: dataset folder first, then bare root.
	w = do(t, srv, "GET", base+"/audio/tile/"+pear, g.Ticket, "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"url":"audio/word_a2.mp3"`) {
		t.Fatalf("tile audio: %d %s", w.Code, w.Body.String())
	}
	w = do(t, srv, "GET", base+"/audio/title/1", g.Ticket, "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"url":"audio/fa/title_b.mp3"`) {
		t.Fatalf("title audio: %d %s", w.Code, w.Body.String())
	}
	if w := do(t, srv, "GET", base+"/audio/title/0", g.Ticket, ""); w.Code != http.StatusNoContent {
		t.Fatalf("missing audio must be 204, got %d", w.Code)
	}
}

func TestPlaceSwapOverHTTP(t *testing.T) {
	srv := newTestServer()
	g := startGame(t, srv, `{"dataset":"fa"}`)
	base := "/game/" + g.ID
	apple, cat := tileID(t, g, "apple"), tileID(t, g, "cat")

	do(t, srv, "POST", base+"/place", g.Ticket, `{"tileId":"`+apple+`","row":0,"col":0}`)
	w := do(t, srv, "POST", base+"/place", g.Ticket, `{"tileId":"`+cat+`","row":0,"col":0}`)
	var mv moveRes
	_ = json.NewDecoder(w.Body).Decode(&mv)
	if mv.Move.Evicted != apple || mv.State.Placed != 1 {
		t.Fatalf("expected apple evicted and 1 placed, got %+v placed=%d", mv.Move, mv.State.Placed)
	}

	w = do(t, srv, "POST", base+"/return", g.Ticket, `{"tileId":"`+cat+`"}`)
	_ = json.NewDecoder(w.Body).Decode(&mv)
	if mv.State.Placed != 0 {
		t.Fatalf("expected empty board, got %d placed", mv.State.Placed)
	}

	if w := do(t, srv, "POST", base+"/place", g.Ticket, `{"tileId":"nope","row":0,"col":0}`); w.Code != http.StatusNotFound {
		t.Fatalf("unknown tile: expected 404, got %d", w.Code)
	}
	if w := do(t, srv, "POST", base+"/place", g.Ticket, `{"tileId":"`+cat+`","row":5,"col":0}`); w.Code != http.StatusBadRequest {
		t.Fatalf("out of bounds: expected 400, got %d", w.Code)
	}
	if w := do(t, srv, "POST", base+"/place", g.Ticket, `{"tileId":"`+cat+`"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing coordinates: expected 400, got %d", w.Code)
	}
}

func TestTicketRequired(t *testing.T) {
	srv := newTestServer()
	g1 := startGame(t, srv, `{}`)
	g2 := startGame(t, srv, `{}`)

	if w := do(t, srv, "GET", "/game/"+g1.ID, "", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("no ticket: expected 401, got %d", w.Code)
	}
	if w := do(t, srv, "GET", "/game/"+g1.ID, "garbage", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad ticket: expected 401, got %d", w.Code)
	}
	if w := do(t, srv, "GET", "/game/"+g1.ID, g2.Ticket, ""); w.Code != http.StatusForbidden {
		t.Fatalf("other game's ticket: expected 403, got %d", w.Code)
	}

	// Cookie works as well as the bearer header.
	req := httptest.NewRequest("GET", "/game/"+g1.ID, nil)
	req.AddCookie(&http.Cookie{Name: cookieName(), Value: g1.Ticket})
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("cookie ticket: expected 200, got %d", w.Code)
	}
}

func TestNewGameErrors(t *testing.T) {
	srv := newTestServer()
	cases := []struct {
		body string
		code int
		want string
	}{
		{`{"dataset":"wide"}`, http.StatusUnprocessableEntity, "27 columns exceeds limit of 26"},
		{`{"dataset":"blank"}`, http.StatusUnprocessableEntity, "dataset is empty"},
		{`{"dataset":"hdr"}`, http.StatusUnprocessableEntity, "no words"},
		{`{"dataset":"missing"}`, http.StatusBadGateway, "embedded:missing.csv"},
		{`{"dataset":"../secret"}`, http.StatusBadRequest, "bad_dataset_name"},
	}
	for _, c := range cases {
		w := do(t, srv, "POST", "/game/new", "", c.body)
		if w.Code != c.code || !strings.Contains(w.Body.String(), c.want) {
			t.Errorf("%s: got %d %s, want %d containing %q", c.body, w.Code, w.Body.String(), c.code, c.want)
		}
	}
}

func TestNewGameDatasetQueryParam(t *testing.T) {
	srv := newTestServer()
	w := do(t, srv, "POST", "/game/new?dataset=missing", "", "")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("query parameter should select the dataset, got %d", w.Code)
	}
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}
