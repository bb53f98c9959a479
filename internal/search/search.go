// Package search runs the primary importer search and the related-importer
// search side by side and keeps the latest result.
package search

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/importer-intel/internal/model"
	"github.com/sells-group/importer-intel/internal/research"
)

// PrimaryFailedMessage is shown when the main search fails.
const PrimaryFailedMessage = "Could not fetch main search results."

var (
	// ErrEmptyQuery is returned when every search input is blank.
	ErrEmptyQuery = eris.New("search: query is empty")
	// ErrSearchInFlight is returned while another search is running.
	ErrSearchInFlight = eris.New("search: a search is already running")
)

// Researcher is the subset of research.Service the orchestrator needs.
type Researcher interface {
	SearchImporters(ctx context.Context, f research.Filters) ([]model.ImporterSummary, error)
	SearchSimilar(ctx context.Context, query string) []model.ImporterSummary
}

// Query is a search request. Any subset of fields may be blank, not all.
type Query = research.Filters

// Result is the outcome of one search. Both lists are always non-nil.
type Result struct {
	Query   Query                   `json:"query"`
	Primary []model.ImporterSummary `json:"results"`
	Similar []model.ImporterSummary `json:"similarResults"`
	Error   string                  `json:"error,omitempty"`
}

// Orchestrator runs searches one at a time.
type Orchestrator struct {
	research Researcher
	running  atomic.Bool

	mu   sync.RWMutex
	last *Result
}

// New creates an Orchestrator.
func New(r Researcher) *Orchestrator {
	return &Orchestrator{research: r}
}

// Search runs the primary and similar searches concurrently. A failed
// primary search yields an empty list and Result.Error; a failed similar
// search yields an empty list. Neither is returned as an error. The result
// replaces the previous one.
func (o *Orchestrator) Search(ctx context.Context, q Query) (Result, error) {
	q = q.Trimmed()
	if q.Blank() {
		return Result{}, ErrEmptyQuery
	}
	if !o.running.CompareAndSwap(false, true) {
		return Result{}, ErrSearchInFlight
	}
	defer o.running.Store(false)

	log := zap.L().With(zap.String("query", q.Query))
	res := Result{
		Query:   q,
		Primary: []model.ImporterSummary{},
		Similar: []model.ImporterSummary{},
	}

	// goroutines never return errors so one side cannot cancel the other
	var g errgroup.Group
	g.Go(func() error {
		found, err := o.research.SearchImporters(ctx, q)
		if err != nil {
			log.Warn("search: primary search failed", zap.Error(err))
			res.Error = PrimaryFailedMessage
			return nil
		}
		if found != nil {
			res.Primary = found
		}
		return nil
	})
	g.Go(func() error {
		if similar := o.research.SearchSimilar(ctx, SimilarQuery(q)); similar != nil {
			res.Similar = similar
		}
		return nil
	})
	_ = g.Wait()

	log.Info("search: complete",
		zap.Int("results", len(res.Primary)),
		zap.Int("similar", len(res.Similar)),
	)

	o.mu.Lock()
	stored := res
	o.last = &stored
	o.mu.Unlock()
	return res, nil
}

// Running reports whether a search is in flight.
func (o *Orchestrator) Running() bool {
	return o.running.Load()
}

// Last returns the most recent result.
func (o *Orchestrator) Last() (Result, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.last == nil {
		return Result{}, false
	}
	return *o.last, true
}

// Find looks name up in the last primary results, then the similar ones.
func (o *Orchestrator) Find(name string) (model.ImporterSummary, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.last == nil {
		return model.ImporterSummary{}, false
	}
	for _, list := range [][]model.ImporterSummary{o.last.Primary, o.last.Similar} {
		for _, s := range list {
			if s.Name == name {
				return s, true
			}
		}
	}
	return model.ImporterSummary{}, false
}

// SimilarQuery is the text sent to the related-importer search: the query
// itself, or the non-blank industry, city and state joined by ", ".
func SimilarQuery(q Query) string {
	q = q.Trimmed()
	if q.Query != "" {
		return q.Query
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{q.Industry, q.City, q.State} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
