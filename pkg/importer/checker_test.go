package importer

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// upstream mimics a dataset host: it answers HEAD on /data.csv honoring
// If-Modified-Since, and fixed statuses on the other paths.
type upstream struct {
	mu           sync.Mutex
	lastModified time.Time
	ims          []string
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/missing":
		w.WriteHeader(http.StatusNotFound)
		return
	case "/broken":
		w.WriteHeader(http.StatusInternalServerError)
		return
	case "/moved":
		w.Header().Set("Location", "https://example.com/new")
		w.WriteHeader(http.StatusMovedPermanently)
		return
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	ims := r.Header.Get("If-Modified-Since")
	u.ims = append(u.ims, ims)
	if t, err := http.ParseTime(ims); err == nil && !u.lastModified.After(t) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Last-Modified", u.lastModified.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
}

func (u *upstream) setLastModified(t time.Time) {
	u.mu.Lock()
	u.lastModified = t
	u.mu.Unlock()
}

func (u *upstream) sentIMS() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.ims...)
}

func sourcesByID(t *testing.T, sdb *SourceDB) map[string]Source {
	t.Helper()
	sources, err := sdb.ListSources()
	if err != nil {
		t.Fatalf("ListSources: %v", err)
	}
	m := make(map[string]Source, len(sources))
	for _, src := range sources {
		m[src.AdapterID] = src
	}
	return m
}

func TestCheckAll_Statuses(t *testing.T) {
	up := &upstream{lastModified: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)}
	ts := httptest.NewServer(up)
	defer ts.Close()

	sdb := tempSourceDB(t)
	if err := sdb.Seed([]Adapter{
		&fakeAdapter{"anagrafe", "d1", "ok", ts.URL + "/data.csv", "IODL 2.0"},
		&fakeAdapter{"missing", "d2", "404", ts.URL + "/missing", "CC0"},
		&fakeAdapter{"broken", "d3", "500", ts.URL + "/broken", "CC0"},
		&fakeAdapter{"moved", "d4", "301", ts.URL + "/moved", "CC0"},
		&fakeAdapter{"manual", "d5", "no url", "", "CC0"},
	}); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	sum := NewChecker(sdb, quiet, time.Hour).CheckAll(context.Background())
	if want := (CheckSummary{OK: 2, Failed: 2, Skipped: 1}); sum != want {
		t.Errorf("summary = %+v, want %+v", sum, want)
	}

	got := sourcesByID(t, sdb)
	tests := []struct {
		id     string
		status int
	}{
		{"anagrafe", 200},
		{"missing", 404},
		{"broken", 500},
		{"moved", 301},
	}
	for _, tt := range tests {
		src := got[tt.id]
		if src.LastStatus == nil || *src.LastStatus != tt.status {
			t.Errorf("%s: status = %v, want %d", tt.id, src.LastStatus, tt.status)
		}
	}
	if got["manual"].LastCheck != nil {
		t.Error("source without URL should not be checked")
	}
	if lm := got["anagrafe"].LastModified; lm == nil || *lm != "Mon, 01 Sep 2025 00:00:00 GMT" {
		t.Errorf("last_modified = %v", lm)
	}
	if got["anagrafe"].Changed != nil {
		t.Error("never-imported source should have unknown freshness")
	}
	if ims := up.sentIMS(); len(ims) != 1 || ims[0] != "" {
		t.Errorf("If-Modified-Since sent before any import: %q", ims)
	}
}

func TestCheckAll_ConditionalSinceImport(t *testing.T) {
	up := &upstream{lastModified: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)}
	ts := httptest.NewServer(up)
	defer ts.Close()

	sdb := tempSourceDB(t)
	if err := sdb.Seed([]Adapter{&fakeAdapter{"anagrafe", "d1", "ok", ts.URL + "/data.csv", "IODL 2.0"}}); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := sdb.RecordImport("anagrafe", 8000); err != nil {
		t.Fatalf("RecordImport: %v", err)
	}
	checker := NewChecker(sdb, quiet, time.Hour)

	// Upstream file older than the import: 304, nothing to re-import.
	sum := checker.CheckAll(context.Background())
	src := sourcesByID(t, sdb)["anagrafe"]
	if src.LastStatus == nil || *src.LastStatus != http.StatusNotModified {
		t.Fatalf("status = %v, want 304", src.LastStatus)
	}
	if src.Changed == nil || *src.Changed {
		t.Errorf("changed = %v, want false", src.Changed)
	}
	if sum.OK != 1 || sum.Changed != 0 {
		t.Errorf("summary = %+v", sum)
	}
	ims := up.sentIMS()
	if len(ims) != 1 || ims[0] == "" {
		t.Fatalf("If-Modified-Since not sent after import: %q", ims)
	}
	if _, err := http.ParseTime(ims[0]); err != nil {
		t.Errorf("If-Modified-Since %q: %v", ims[0], err)
	}

	// A newer upstream file is reported as changed.
	up.setLastModified(time.Now().Add(time.Hour))
	sum = checker.CheckAll(context.Background())
	src = sourcesByID(t, sdb)["anagrafe"]
	if src.Changed == nil || !*src.Changed {
		t.Errorf("changed = %v, want true", src.Changed)
	}
	if sum.Changed != 1 {
		t.Errorf("summary = %+v, want one changed source", sum)
	}
}

func TestCheckAll_NetworkError(t *testing.T) {
	sdb := tempSourceDB(t)
	if err := sdb.Seed([]Adapter{&fakeAdapter{"dead", "d1", "dead", "http://127.0.0.1:1", "CC0"}}); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	sum := NewChecker(sdb, quiet, time.Hour).CheckAll(context.Background())
	if sum.Failed != 1 {
		t.Errorf("summary = %+v, want one failure", sum)
	}
	src := sourcesByID(t, sdb)["dead"]
	if src.LastStatus == nil || *src.LastStatus != 0 {
		t.Errorf("status = %v, want 0 for network error", src.LastStatus)
	}
	if src.LastError == nil || *src.LastError == "" {
		t.Error("expected last_error for network error")
	}
}

func TestCheckAll_EmptyDB(t *testing.T) {
	sum := NewChecker(tempSourceDB(t), quiet, time.Hour).CheckAll(context.Background())
	if sum != (CheckSummary{}) {
		t.Errorf("summary = %+v, want zero", sum)
	}
}

func TestChangedSince(t *testing.T) {
	imported := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	older := imported.Add(-24 * time.Hour).Format(http.TimeFormat)
	newer := imported.Add(24 * time.Hour).Format(http.TimeFormat)

	tests := []struct {
		name         string
		status       int
		lastModified string
		want         *bool
	}{
		{"not modified", http.StatusNotModified, "", boolPtr(false)},
		{"no date", http.StatusOK, "", nil},
		{"bad date", http.StatusOK, "yesterday", nil},
		{"ignored header, older file", http.StatusOK, older, boolPtr(false)},
		{"newer file", http.StatusOK, newer, boolPtr(true)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := changedSince(tt.status, tt.lastModified, imported)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("got %v, want nil", *got)
			case tt.want != nil && (got == nil || *got != *tt.want):
				t.Errorf("got %v, want %v", got, *tt.want)
			}
		})
	}
}

func TestCheckerStart_StopsOnCancel(t *testing.T) {
	checker := NewChecker(tempSourceDB(t), quiet, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		checker.Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
