package emptyletters

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// stubFetcher answers from a map and counts calls per number.
type stubFetcher struct {
	mu    sync.Mutex
	docs  map[string]string
	errs  map[string]error
	calls map[string]int
}

func newStubFetcher(docs map[string]string) *stubFetcher {
	return &stubFetcher{docs: docs, errs: make(map[string]error), calls: make(map[string]int)}
}

func (f *stubFetcher) Fetch(ctx context.Context, req Request) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[req.Number]++
	if err, ok := f.errs[req.Number]; ok {
		return nil, err
	}
	doc, ok := f.docs[req.Number]
	if !ok {
		return nil, VendorError{Number: req.Number, Message: "Error reading document"}
	}
	return []byte(doc), nil
}

func (f *stubFetcher) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int
	for _, v := range f.calls {
		n += v
	}
	return n
}

func TestCachePath(t *testing.T) {
	cache := NewMetadataCache("/tmp/cache", nil)
	var tests = []struct {
		number string
		path   string
		err    error
	}{
		{"000123456", "/tmp/cache/000123456.xml", nil},
		{"../000123456", "", ErrBadNumber},
		{"", "", ErrBadNumber},
	}
	for _, test := range tests {
		got, err := cache.Path(test.number)
		if err != test.err {
			t.Errorf("Path(%q) got %v, want %v", test.number, err, test.err)
		}
		if got != test.path {
			t.Errorf("Path(%q) got %v, want %v", test.number, got, test.path)
		}
	}
}

func TestFetchOrLoadOnlyOnce(t *testing.T) {
	fetcher := newStubFetcher(map[string]string{"000123456": minimalDoc})
	cache := NewMetadataCache(t.TempDir(), fetcher)
	ctx := context.Background()

	pth, outcome, err := cache.FetchOrLoad(ctx, "000123456", false)
	if err != nil {
		t.Fatalf("FetchOrLoad failed: %v", err)
	}
	if outcome != Fetched {
		t.Errorf("first call got %v, want %v", outcome, Fetched)
	}
	b, err := os.ReadFile(pth)
	if err != nil {
		t.Fatalf("cache file missing: %v", err)
	}
	if string(b) != minimalDoc {
		t.Errorf("cache file content differs from response")
	}

	again, outcome, err := cache.FetchOrLoad(ctx, "000123456", false)
	if err != nil {
		t.Fatalf("FetchOrLoad failed: %v", err)
	}
	if outcome != Hit {
		t.Errorf("second call got %v, want %v", outcome, Hit)
	}
	if again != pth {
		t.Errorf("second call got path %s, want %s", again, pth)
	}
	if n := fetcher.total(); n != 1 {
		t.Errorf("network calls got %d, want 1", n)
	}
	want := Stats{Requested: 2, Hits: 1, Fetches: 1}
	if got := cache.Stats(); got != want {
		t.Errorf("Stats() got %+v, want %+v", got, want)
	}
	if got := cache.Stats().Progress(); got != 1 {
		t.Errorf("Progress() got %v, want 1", got)
	}
}

func TestFetchOrLoadOverwrite(t *testing.T) {
	dir := t.TempDir()
	fetcher := newStubFetcher(map[string]string{"000123456": minimalDoc})
	cache := NewMetadataCache(dir, fetcher)

	pth := filepath.Join(dir, "000123456.xml")
	if err := os.WriteFile(pth, []byte("old content"), 0644); err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 2; i++ {
		_, outcome, err := cache.FetchOrLoad(context.Background(), "000123456", true)
		if err != nil {
			t.Fatalf("FetchOrLoad failed: %v", err)
		}
		if outcome != Fetched {
			t.Errorf("overwrite got %v, want %v", outcome, Fetched)
		}
		if n := fetcher.total(); n != i {
			t.Errorf("network calls got %d, want %d", n, i)
		}
	}
	b, err := os.ReadFile(pth)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != minimalDoc {
		t.Errorf("overwrite kept old content: %q", b)
	}
}

func TestFetchOrLoadOverwriteFailureDropsOldContent(t *testing.T) {
	dir := t.TempDir()
	fetcher := newStubFetcher(nil)
	fetcher.errs["000123456"] = StatusError{URL: "http://example.com", StatusCode: 503}
	cache := NewMetadataCache(dir, fetcher)

	pth := filepath.Join(dir, "000123456.xml")
	if err := os.WriteFile(pth, []byte("old content"), 0644); err != nil {
		t.Fatal(err)
	}
	_, outcome, err := cache.FetchOrLoad(context.Background(), "000123456", true)
	if !errors.Is(err, ErrNotReachable) {
		t.Errorf("FetchOrLoad got %v, want %v", err, ErrNotReachable)
	}
	if outcome != Failed {
		t.Errorf("FetchOrLoad got %v, want %v", outcome, Failed)
	}
	if _, err := os.Stat(pth); !os.IsNotExist(err) {
		t.Errorf("old cache file still present after overwrite")
	}
}

func TestFetchOrLoadFailures(t *testing.T) {
	fetcher := newStubFetcher(map[string]string{"1": minimalDoc})
	cache := NewMetadataCache(t.TempDir(), fetcher)
	ctx := context.Background()

	var tests = []struct {
		number string
		err    error
	}{
		{"1", nil},
		{"2", ErrNotFound},
		{"../3", ErrBadNumber},
	}
	for _, test := range tests {
		pth, _, err := cache.FetchOrLoad(ctx, test.number, false)
		if !errors.Is(err, test.err) {
			t.Errorf("FetchOrLoad(%s) got %v, want %v", test.number, err, test.err)
		}
		if err != nil && pth != "" {
			t.Errorf("FetchOrLoad(%s) returned path %s on error", test.number, pth)
		}
	}
	if _, err := os.Stat(filepath.Join(cache.Directory, "2.xml")); !os.IsNotExist(err) {
		t.Errorf("vendor error document was cached")
	}
	if calls := fetcher.calls["../3"]; calls != 0 {
		t.Errorf("bad number triggered %d network calls", calls)
	}
	want := Stats{Requested: 3, Fetches: 1, Failures: 2}
	if got := cache.Stats(); got != want {
		t.Errorf("Stats() got %+v, want %+v", got, want)
	}
	if got, want := cache.Stats().Progress(), 1.0/3; got != want {
		t.Errorf("Progress() got %v, want %v", got, want)
	}
}

func TestFetchOrLoadWriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "cache")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	cache := NewMetadataCache(blocker, newStubFetcher(map[string]string{"1": minimalDoc}))
	_, _, err := cache.FetchOrLoad(context.Background(), "1", false)
	if !errors.Is(err, ErrWriteFailure) {
		t.Errorf("FetchOrLoad got %v, want %v", err, ErrWriteFailure)
	}
}

func TestFetchOrLoadRefreshBefore(t *testing.T) {
	dir := t.TempDir()
	fetcher := newStubFetcher(map[string]string{"old": minimalDoc, "new": minimalDoc})
	cache := NewMetadataCache(dir, fetcher)
	cache.RefreshBefore = time.Now().Add(-24 * time.Hour)

	for _, number := range []string{"old", "new"} {
		if err := os.WriteFile(filepath.Join(dir, number+".xml"), []byte("cached"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(filepath.Join(dir, "old.xml"), past, past); err != nil {
		t.Fatal(err)
	}

	var tests = []struct {
		number  string
		outcome Outcome
	}{
		{"old", Fetched},
		{"new", Hit},
		{"old", Hit},
	}
	for _, test := range tests {
		_, outcome, err := cache.FetchOrLoad(context.Background(), test.number, false)
		if err != nil {
			t.Fatalf("FetchOrLoad(%s) failed: %v", test.number, err)
		}
		if outcome != test.outcome {
			t.Errorf("FetchOrLoad(%s) got %v, want %v", test.number, outcome, test.outcome)
		}
	}
}

func TestStatsProgress(t *testing.T) {
	var tests = []struct {
		stats    Stats
		progress float64
	}{
		{Stats{}, 0},
		{Stats{Requested: 4, Hits: 1, Fetches: 1, Failures: 2}, 0.5},
		{Stats{Requested: 2, Hits: 2}, 1},
	}
	for _, test := range tests {
		if got := test.stats.Progress(); got != test.progress {
			t.Errorf("%+v.Progress() got %v, want %v", test.stats, got, test.progress)
		}
	}
}
