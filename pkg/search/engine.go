// CLAUDE:SUMMARY Query dispatcher: classifies a query, answers code lookups exactly and free text by ranked scoring.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hazyhaar/cercaclasse/pkg/catalog"
)

// Mode tells how a result set was produced.
type Mode string

const (
	ModeEmpty             Mode = "EMPTY"
	ModeBySchoolCode      Mode = "BY_SCHOOL_CODE"
	ModeByInstitutionCode Mode = "BY_INSTITUTION_CODE"
	ModeRanked            Mode = "RANKED"
)

// Result caps.
const (
	MaxCodeResults   = 20
	MaxRankedResults = 10
)

// Result is the projection of a record returned to clients.
// Score is set in RANKED mode only.
type Result struct {
	Municipality    string `json:"comune"`
	Province        string `json:"provincia"`
	SchoolName      string `json:"scuola"`
	ClassLabel      string `json:"classe"`
	InstitutionCode string `json:"codiceIstituto"`
	SchoolCode      string `json:"codiceScuola"`
	Score           int    `json:"score,omitempty"`
}

// Response is the answer to one query.
type Response struct {
	Results []Result `json:"results"`
	Mode    Mode     `json:"mode"`
}

// Options configures an Engine.
type Options struct {
	// CacheSize bounds the response cache; 0 disables it.
	CacheSize int
	Logger    *slog.Logger
}

// Engine answers queries against a record store.
type Engine struct {
	store  *catalog.Store
	logger *slog.Logger
	cache  *lru.Cache[string, *Response]

	mu   sync.Mutex
	docs []document
}

// NewEngine creates an engine over store.
func NewEngine(store *catalog.Store, opts Options) (*Engine, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	e := &Engine{store: store, logger: opts.Logger}
	if opts.CacheSize > 0 {
		c, err := lru.New[string, *Response](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("response cache: %w", err)
		}
		e.cache = c
	}
	return e, nil
}

// Store returns the underlying record store.
func (e *Engine) Store() *catalog.Store {
	return e.store
}

// Search answers a query. An empty query never touches the store. The only
// error is a store load failure; every other outcome, including no match,
// is a normal Response. Responses may be shared and must not be modified.
func (e *Engine) Search(_ context.Context, query string) (*Response, error) {
	start := time.Now()
	q := strings.TrimSpace(query)
	if q == "" {
		e.observe(ModeEmpty, start)
		return &Response{Results: []Result{}, Mode: ModeEmpty}, nil
	}

	if e.cache != nil {
		if resp, ok := e.cache.Get(q); ok {
			cacheHitsTotal.Inc()
			e.observe(resp.Mode, start)
			return resp, nil
		}
	}

	docs, err := e.documents()
	if err != nil {
		loadFailuresTotal.Inc()
		e.logger.Error("record store load failed", "error", err)
		return nil, fmt.Errorf("load records: %w", err)
	}

	resp := dispatch(q, docs)
	if e.cache != nil {
		e.cache.Add(q, resp)
	}
	e.observe(resp.Mode, start)
	return resp, nil
}

// Reset clears the store, the prepared documents and the response cache.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.docs = nil
	e.mu.Unlock()
	e.store.Reset()
	if e.cache != nil {
		e.cache.Purge()
	}
	recordsLoaded.Set(0)
}

// documents returns the prepared documents for the currently loaded records,
// building them once per load.
func (e *Engine) documents() ([]document, error) {
	records, err := e.store.Records()
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.docs != nil && len(e.docs) == len(records) && (len(records) == 0 || e.docs[0].rec == &records[0]) {
		return e.docs, nil
	}
	docs := make([]document, len(records))
	for i := range records {
		docs[i] = prepare(&records[i])
	}
	e.docs = docs
	recordsLoaded.Set(float64(len(records)))
	e.logger.Info("record store ready", "records", len(records))
	return docs, nil
}

func (e *Engine) observe(mode Mode, start time.Time) {
	queriesTotal.WithLabelValues(string(mode)).Inc()
	searchDurationSeconds.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())
}

// dispatch runs the code lookups then, on no exact hit, the ranked search.
func dispatch(q string, docs []document) *Response {
	if catalog.LooksLikeCode(q) {
		code := catalog.CanonicalCode(q)
		if hits := matchCode(docs, code, func(r *catalog.Record) string { return r.SchoolCode }); len(hits) > 0 {
			return &Response{Results: hits, Mode: ModeBySchoolCode}
		}
		if hits := matchCode(docs, code, func(r *catalog.Record) string { return r.InstitutionCode }); len(hits) > 0 {
			return &Response{Results: hits, Mode: ModeByInstitutionCode}
		}
	}
	return &Response{Results: rank(q, docs), Mode: ModeRanked}
}

// matchCode returns up to MaxCodeResults records whose code field equals
// code case-insensitively, in store order.
func matchCode(docs []document, code string, field func(*catalog.Record) string) []Result {
	var out []Result
	for i := range docs {
		if strings.ToUpper(field(docs[i].rec)) != code {
			continue
		}
		out = append(out, project(docs[i].rec, 0))
		if len(out) == MaxCodeResults {
			break
		}
	}
	return out
}

type scored struct {
	doc   *document
	score int
}

// rank scores every document, keeps positive scores and returns the top
// MaxRankedResults; equal scores keep store order.
func rank(q string, docs []document) []Result {
	tokens := tokenize(q)
	if len(tokens) == 0 {
		return []Result{}
	}

	var hits []scored
	for i := range docs {
		if s := docs[i].score(tokens); s > 0 {
			hits = append(hits, scored{doc: &docs[i], score: s})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if len(hits) > MaxRankedResults {
		hits = hits[:MaxRankedResults]
	}

	out := make([]Result, len(hits))
	for i, h := range hits {
		out[i] = project(h.doc.rec, h.score)
	}
	return out
}

func project(r *catalog.Record, score int) Result {
	return Result{
		Municipality:    r.Municipality,
		Province:        r.Province,
		SchoolName:      r.SchoolName,
		ClassLabel:      r.ClassLabel,
		InstitutionCode: r.InstitutionCode,
		SchoolCode:      r.SchoolCode,
		Score:           score,
	}
}
