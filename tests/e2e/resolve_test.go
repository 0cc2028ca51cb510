package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vietddude/taxocache/internal/cache"
	"github.com/vietddude/taxocache/internal/control"
	"github.com/vietddude/taxocache/internal/core/config"
	"github.com/vietddude/taxocache/internal/core/domain"
	"github.com/vietddude/taxocache/internal/infra/remote"
	"github.com/vietddude/taxocache/internal/infra/storage/file"
	"github.com/vietddude/taxocache/internal/resolver"
	"github.com/vietddude/taxocache/internal/retry"
)

func startDirectory(t *testing.T, fetches *int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /specialties", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(fetches, 1)
		snapshot := domain.TaxonomySnapshot{
			Names: []string{"Internal Medicine", "Cardiology", "Obstetrics & Gynecology"},
			Counts: map[string]int{
				"Internal Medicine": 120,
				"Cardiology":        45,
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snapshot)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newResolver(t *testing.T, sourceURL, dir string) *resolver.Resolver {
	t.Helper()
	store, err := file.NewStore(dir)
	if err != nil {
		t.Fatalf("Failed to create file store: %v", err)
	}
	c := cache.New[*domain.TaxonomyMapping](cache.Options{
		TTL:        time.Minute,
		DurableTTL: time.Hour,
		Store:      store,
	})
	fetcher := remote.NewClient(sourceURL, 5*time.Second)
	return resolver.New(c, fetcher, resolver.Options{
		Retry: retry.Config{MaxAttempts: 1, BaseDelay: time.Millisecond},
	})
}

// Exercises the whole stack: HTTP fetch, mapping build, both cache tiers,
// and the durable warm across a simulated restart.
func TestResolveThroughFullStack(t *testing.T) {
	var fetches int64
	srv := startDirectory(t, &fetches)
	dir := t.TempDir()

	ctx := context.Background()
	r := newResolver(t, srv.URL, dir)

	mapping, err := r.EnsureLoaded(ctx)
	if err != nil {
		t.Fatalf("EnsureLoaded failed: %v", err)
	}
	got, ok := mapping.Slug("Obstetrics & Gynecology")
	if !ok || got != "obstetrics_gynecology" {
		t.Errorf("Slug() = %q, %v, want %q", got, ok, "obstetrics_gynecology")
	}
	if got := r.ResolveName(ctx, "internal_medicine"); got != "Internal Medicine" {
		t.Errorf("ResolveName() = %q, want %q", got, "Internal Medicine")
	}
	if n := atomic.LoadInt64(&fetches); n != 1 {
		t.Fatalf("Expected 1 upstream fetch, got %d", n)
	}

	// Fresh resolver on the same directory simulates a process restart: the
	// durable tier serves the taxonomy without touching upstream.
	restarted := newResolver(t, srv.URL, dir)
	if _, err := restarted.EnsureLoaded(ctx); err != nil {
		t.Fatalf("EnsureLoaded after restart failed: %v", err)
	}
	if got := restarted.ResolveSlug(ctx, "Cardiology"); got != "cardiology" {
		t.Errorf("ResolveSlug() after restart = %q, want %q", got, "cardiology")
	}
	if n := atomic.LoadInt64(&fetches); n != 1 {
		t.Errorf("Expected durable warm to avoid upstream, got %d fetches", n)
	}

	// Invalidate forces the next load back to upstream.
	restarted.Invalidate(ctx)
	if _, err := restarted.EnsureLoaded(ctx); err != nil {
		t.Fatalf("EnsureLoaded after invalidate failed: %v", err)
	}
	if n := atomic.LoadInt64(&fetches); n != 2 {
		t.Errorf("Expected invalidate to refetch, got %d fetches", n)
	}
}

func TestGracefulShutdown(t *testing.T) {
	var fetches int64
	srv := startDirectory(t, &fetches)

	cfg := &config.AppConfig{
		Server: config.ServerConfig{Port: 18973},
		Source: config.SourceConfig{URL: srv.URL, Timeout: 5 * time.Second},
		Cache: config.CacheConfig{
			TTL:        time.Minute,
			DurableTTL: time.Hour,
			Dir:        t.TempDir(),
		},
		Retry: config.RetryConfig{MaxAttempts: 1, BaseDelay: time.Millisecond},
	}

	app, err := control.NewApp(cfg)
	if err != nil {
		t.Fatalf("Failed to create app: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Let the warm-up and server come up.
	time.Sleep(200 * time.Millisecond)

	resp, err := http.Get("http://localhost:18973/health")
	if err != nil {
		t.Fatalf("Health check failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Health returned %d, want 200", resp.StatusCode)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()

	if err := app.Stop(stopCtx); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}
