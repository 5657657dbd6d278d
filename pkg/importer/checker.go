package importer

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// CheckResult is the outcome of one availability check.
type CheckResult struct {
	Status       int    // HTTP status, 0 on network error
	Err          string // network or request error
	LastModified string // upstream Last-Modified header, as sent
	// Changed reports whether the upstream file is newer than the last
	// import: nil when there was no import or the server gave no date.
	Changed *bool
}

// Reachable reports a 2xx or 3xx answer, 304 Not Modified included.
func (r CheckResult) Reachable() bool {
	return r.Status >= 200 && r.Status < 400
}

// CheckSummary counts the outcomes of one pass over the sources.
type CheckSummary struct {
	OK, Failed, Skipped, Changed int
}

// Checker sends a conditional HEAD to every source URL. Sources that have
// been imported carry If-Modified-Since set to the import time, so the
// stored result tells whether a re-import would pick up new data.
type Checker struct {
	sources  *SourceDB
	logger   *slog.Logger
	interval time.Duration
	client   *http.Client
}

// NewChecker creates a Checker that runs a pass every interval.
func NewChecker(sources *SourceDB, logger *slog.Logger, interval time.Duration) *Checker {
	return &Checker{
		sources:  sources,
		logger:   logger,
		interval: interval,
		client: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Start runs a pass now and then every interval until ctx is cancelled.
func (c *Checker) Start(ctx context.Context) {
	c.CheckAll(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.CheckAll(ctx)
		}
	}
}

// CheckAll checks every source with a URL and persists each result.
func (c *Checker) CheckAll(ctx context.Context) CheckSummary {
	var sum CheckSummary

	sources, err := c.sources.ListSources()
	if err != nil {
		c.logger.Error("source check: list sources", "error", err)
		return sum
	}

	for _, src := range sources {
		if ctx.Err() != nil {
			return sum
		}
		if src.SourceURL == "" {
			sum.Skipped++
			continue
		}

		res := c.check(ctx, src)
		if err := c.sources.UpdateCheck(src.AdapterID, res); err != nil {
			c.logger.Error("source check: store result", "adapter", src.AdapterID, "error", err)
		}

		switch {
		case !res.Reachable():
			sum.Failed++
			c.logger.Warn("source unreachable",
				"adapter", src.AdapterID,
				"url", src.SourceURL,
				"status", res.Status,
				"error", res.Err,
			)
		case res.Changed != nil && *res.Changed:
			sum.OK++
			sum.Changed++
			c.logger.Info("source changed since last import",
				"adapter", src.AdapterID,
				"last_modified", res.LastModified,
			)
		default:
			sum.OK++
		}
	}

	if len(sources) > 0 {
		c.logger.Info("source check complete",
			"ok", sum.OK, "failed", sum.Failed, "skipped", sum.Skipped, "changed", sum.Changed)
	}
	return sum
}

func (c *Checker) check(ctx context.Context, src Source) CheckResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, src.SourceURL, nil)
	if err != nil {
		return CheckResult{Err: fmt.Sprintf("build request: %v", err)}
	}
	var since time.Time
	if src.LastImport != nil {
		since = time.Unix(*src.LastImport, 0)
		req.Header.Set("If-Modified-Since", since.UTC().Format(http.TimeFormat))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return CheckResult{Err: fmt.Sprintf("HEAD %s: %v", src.SourceURL, err)}
	}
	resp.Body.Close()

	res := CheckResult{
		Status:       resp.StatusCode,
		LastModified: resp.Header.Get("Last-Modified"),
	}
	if since.IsZero() || !res.Reachable() {
		return res
	}
	res.Changed = changedSince(resp.StatusCode, res.LastModified, since)
	return res
}

// changedSince decides freshness from a conditional HEAD. Servers that
// ignore If-Modified-Since answer 200, so the date is compared as well.
func changedSince(status int, lastModified string, since time.Time) *bool {
	if status == http.StatusNotModified {
		return boolPtr(false)
	}
	if lastModified == "" {
		return nil
	}
	t, err := http.ParseTime(lastModified)
	if err != nil {
		return nil
	}
	return boolPtr(t.After(since))
}

func boolPtr(b bool) *bool { return &b }
