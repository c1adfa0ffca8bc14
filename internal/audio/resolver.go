// internal/audio/resolver.go
//
// Resolves an audio filename to the first existing candidate location.
//
// Candidate order for (dataset, file) over roots r1..rn:
//   r1/<dataset>/<file> … rn/<dataset>/<file>, then r1/<file> … rn/<file>
//
// Probing is existence-only (HEAD for URLs, stat for files). Any probe
// failure counts as "not found"; an unavailable asset is not an error.
// Hits are remembered for the life of the Resolver; misses only for MissTTL,
// so a timed-out probe is retried later.

package audio

import (
	"context"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Prober reports whether a location exists.
type Prober interface {
	Exists(ctx context.Context, location string) bool
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context, location string) bool

func (f ProberFunc) Exists(ctx context.Context, location string) bool { return f(ctx, location) }

// DefaultMissTTL is how long an unavailable asset stays cached.
const DefaultMissTTL = time.Minute

type entry struct {
	loc string // "" = unavailable
	at  time.Time
}

// Resolver probes candidate locations and memoizes the outcome.
type Resolver struct {
	Roots   []string
	Prober  Prober
	MissTTL time.Duration
	Now     func() time.Time

	mu    sync.Mutex
	cache map[string]entry // dataset|file
}

// NewResolver builds a Resolver over roots; nil prober uses AutoProber.
func NewResolver(roots []string, p Prober) *Resolver {
	if p == nil {
		p = NewAutoProber(nil)
	}
	return &Resolver{
		Roots:   roots,
		Prober:  p,
		MissTTL: DefaultMissTTL,
		Now:     time.Now,
		cache:   make(map[string]entry),
	}
}

func (r *Resolver) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

// lookup returns a cached location; expired misses are not returned.
func (r *Resolver) lookup(key string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, hit := r.cache[key]
	if !hit {
		return "", false
	}
	if e.loc == "" && r.now().Sub(e.at) >= r.MissTTL {
		delete(r.cache, key)
		return "", false
	}
	return e.loc, true
}

// Candidates lists probe locations in order.
func (r *Resolver) Candidates(dataset, file string) []string {
	out := make([]string, 0, 2*len(r.Roots))
	if dataset != "" {
		for _, root := range r.Roots {
			out = append(out, join(root, dataset, file))
		}
	}
	for _, root := range r.Roots {
		out = append(out, join(root, file))
	}
	return out
}

// Resolve returns the first existing candidate; ok is false when none exist.
func (r *Resolver) Resolve(ctx context.Context, dataset, file string) (string, bool) {
	if file == "" {
		return "", false
	}
	key := dataset + "|" + file
	if loc, hit := r.lookup(key); hit {
		return loc, loc != ""
	}

	loc := r.first(ctx, r.Candidates(dataset, file))
	if ctx.Err() != nil {
		// cancelled mid-search; don't remember a partial answer
		return loc, loc != ""
	}
	r.mu.Lock()
	if r.cache == nil {
		r.cache = make(map[string]entry)
	}
	r.cache[key] = entry{loc: loc, at: r.now()}
	r.mu.Unlock()

	if loc == "" {
		log.Debug().Str("dataset", dataset).Str("file", file).Msg("audio unavailable")
	}
	return loc, loc != ""
}

// first returns the first candidate the prober accepts, short-circuiting.
func (r *Resolver) first(ctx context.Context, candidates []string) string {
	for _, c := range candidates {
		if ctx.Err() != nil {
			return ""
		}
		if r.Prober.Exists(ctx, c) {
			return c
		}
	}
	return ""
}

// join concatenates path parts with single slashes; an empty root is skipped.
func join(root string, parts ...string) string {
	root = strings.TrimRight(root, "/")
	if root == "" {
		return strings.Join(parts, "/")
	}
	return root + "/" + strings.Join(parts, "/")
}

// HTTPProber checks URLs with a HEAD request; any 2xx means present.
type HTTPProber struct {
	Client *http.Client
}

func (p HTTPProber) Exists(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// FSProber checks local paths with os.Stat; only regular files count.
type FSProber struct{}

func (FSProber) Exists(_ context.Context, path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// AutoProber dispatches on the location scheme: http(s) → HTTPProber,
// everything else → FSProber.
type AutoProber struct {
	HTTP HTTPProber
	FS   FSProber
}

// NewAutoProber builds an AutoProber; nil client gets a short timeout.
func NewAutoProber(client *http.Client) *AutoProber {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &AutoProber{HTTP: HTTPProber{Client: client}}
}

func (p *AutoProber) Exists(ctx context.Context, location string) bool {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return p.HTTP.Exists(ctx, location)
	}
	return p.FS.Exists(ctx, location)
}
