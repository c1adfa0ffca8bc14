package audio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestFilenames(t *testing.T) {
	if got := TitleFile(1); got != "title_b.mp3" {
		t.Fatalf("TitleFile(1) = %q", got)
	}
	if got := WordFile(0, 2); got != "word_a2.mp3" {
		t.Fatalf("WordFile(0,2) = %q", got)
	}
	if got := WordFile(25, 12); got != "word_z12.mp3" {
		t.Fatalf("WordFile(25,12) = %q", got)
	}
	if TitleFile(26) != "" || TitleFile(-1) != "" || WordFile(0, 0) != "" {
		t.Fatal("out-of-range indexes must have no filename")
	}
}

// setProber accepts only the listed locations and records every probe.
type setProber struct {
	exists map[string]bool
	probed []string
}

func (p *setProber) Exists(_ context.Context, loc string) bool {
	p.probed = append(p.probed, loc)
	return p.exists[loc]
}

func TestResolveFallsBackToRoot(t *testing.T) {
	p := &setProber{exists: map[string]bool{"root/title_a.mp3": true}}
	r := NewResolver([]string{"root/"}, p)

	loc, ok := r.Resolve(context.Background(), "ds1", "title_a.mp3")
	if !ok || loc != "root/title_a.mp3" {
		t.Fatalf("got %q %v", loc, ok)
	}
	want := []string{"root/ds1/title_a.mp3", "root/title_a.mp3"}
	if !reflect.DeepEqual(p.probed, want) {
		t.Fatalf("probe order %q, want %q", p.probed, want)
	}
}

func TestResolveOrderAndShortCircuit(t *testing.T) {
	p := &setProber{exists: map[string]bool{
		"b/ds/word_a1.mp3": true,
		"a/word_a1.mp3":    true,
	}}
	r := NewResolver([]string{"a", "b"}, p)
	loc, ok := r.Resolve(context.Background(), "ds", "word_a1.mp3")
	if !ok || loc != "b/ds/word_a1.mp3" {
		t.Fatalf("dataset folder beats bare root, got %q", loc)
	}
	if len(p.probed) != 2 {
		t.Fatalf("search should stop at the first hit, probed %q", p.probed)
	}

	// Memoized: no further probes.
	r.Resolve(context.Background(), "ds", "word_a1.mp3")
	if len(p.probed) != 2 {
		t.Fatalf("expected cached result, probed %q", p.probed)
	}
}

func TestResolveUnavailable(t *testing.T) {
	r := NewResolver([]string{"x", "y"}, &setProber{})
	if loc, ok := r.Resolve(context.Background(), "ds", "title_c.mp3"); ok || loc != "" {
		t.Fatalf("expected unavailable, got %q", loc)
	}
	if _, ok := r.Resolve(context.Background(), "ds", ""); ok {
		t.Fatal("empty filename is never available")
	}
}

func TestResolveRetriesMissAfterTTL(t *testing.T) {
	p := &setProber{exists: map[string]bool{}}
	r := NewResolver([]string{"a"}, p)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.Now = func() time.Time { return clock }

	// A failed probe (for example a HEAD timeout) is a miss.
	if _, ok := r.Resolve(context.Background(), "ds", "title_a.mp3"); ok {
		t.Fatal("expected unavailable")
	}
	probes := len(p.probed)

	// The asset shows up; within the TTL the miss is still served from cache.
	p.exists["a/ds/title_a.mp3"] = true
	clock = clock.Add(r.MissTTL / 2)
	if _, ok := r.Resolve(context.Background(), "ds", "title_a.mp3"); ok || len(p.probed) != probes {
		t.Fatalf("miss should be cached within the TTL, probed %q", p.probed)
	}

	clock = clock.Add(r.MissTTL)
	loc, ok := r.Resolve(context.Background(), "ds", "title_a.mp3")
	if !ok || loc != "a/ds/title_a.mp3" {
		t.Fatalf("expected retry after TTL to find the asset, got %q %v", loc, ok)
	}

	// Hits never expire.
	probes = len(p.probed)
	clock = clock.Add(24 * time.Hour)
	r.Resolve(context.Background(), "ds", "title_a.mp3")
	if len(p.probed) != probes {
		t.Fatalf("hit should stay cached, probed %q", p.probed)
	}
}

func TestHTTPProber(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		switch r.URL.Path {
		case "/audio/title_a.mp3":
			w.WriteHeader(http.StatusOK)
		case "/audio/broken.mp3":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	r := NewResolver([]string{ts.URL + "/audio/"}, nil)
	loc, ok := r.Resolve(context.Background(), "ds1", "title_a.mp3")
	if !ok || loc != ts.URL+"/audio/title_a.mp3" {
		t.Fatalf("got %q %v", loc, ok)
	}
	if _, ok := r.Resolve(context.Background(), "ds1", "broken.mp3"); ok {
		t.Fatal("non-success status must count as not found")
	}
	if (HTTPProber{}).Exists(context.Background(), "http://127.0.0.1:0/nothing") {
		t.Fatal("network errors must count as not found")
	}
}

func TestFSProber(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "ds1"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ds1", "word_b1.mp3"), []byte("ID3"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := NewResolver([]string{dir}, nil)
	loc, ok := r.Resolve(context.Background(), "ds1", "word_b1.mp3")
	if !ok || loc != dir+"/ds1/word_b1.mp3" {
		t.Fatalf("got %q %v", loc, ok)
	}
	if (FSProber{}).Exists(context.Background(), filepath.Join(dir, "ds1")) {
		t.Fatal("directories are not audio files")
	}
}
