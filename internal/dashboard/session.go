// Package dashboard wires search, record selection, refresh and alerts into
// the single-user session behind the HTTP API and the CLI.
package dashboard

import (
	"context"
	"sync"

	"github.com/golang/geo/r2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/importer-intel/internal/alerts"
	"github.com/sells-group/importer-intel/internal/geomap"
	"github.com/sells-group/importer-intel/internal/model"
	"github.com/sells-group/importer-intel/internal/record"
	"github.com/sells-group/importer-intel/internal/research"
	"github.com/sells-group/importer-intel/internal/search"
)

var (
	// ErrUnknownImporter is returned when a name is in neither result list.
	ErrUnknownImporter = eris.New("dashboard: importer not in current results")
	// ErrRefreshBusy is returned when a refresh cannot start: one is already
	// running, the record is still loading, or nothing is selected.
	ErrRefreshBusy = eris.New("dashboard: refresh not available")
	// ErrNoRecord is returned when an operation needs a selected record.
	ErrNoRecord = eris.New("dashboard: no record selected")
)

// Detailer fetches the full profile of one importer.
type Detailer interface {
	FetchDetail(ctx context.Context, name string) (model.DetailedImporterRecord, error)
}

// Session is the dashboard state for one user.
type Session struct {
	search  *search.Orchestrator
	records *record.Store
	detail  Detailer
	alerts  *alerts.Service

	wg sync.WaitGroup
}

// NewSession creates a Session.
func NewSession(orch *search.Orchestrator, records *record.Store, detail Detailer, al *alerts.Service) *Session {
	return &Session{search: orch, records: records, detail: detail, alerts: al}
}

// Search runs a new search. The selected record is dropped first, so any
// detail fetch still in flight lands on nothing.
func (s *Session) Search(ctx context.Context, q search.Query) (search.Result, error) {
	if q.Blank() {
		return search.Result{}, search.ErrEmptyQuery
	}
	if s.search.Running() {
		return search.Result{}, search.ErrSearchInFlight
	}
	s.records.Clear()
	return s.search.Search(ctx, q)
}

// SearchFor searches a single term with every refinement blank. Used for
// "find similar", map clicks and shared links.
func (s *Session) SearchFor(ctx context.Context, term string) (search.Result, error) {
	return s.Search(ctx, search.Query{Query: term})
}

// Results returns the most recent search result.
func (s *Session) Results() (search.Result, bool) {
	return s.search.Last()
}

// Select shows the placeholder for name at once and fetches the full record
// in the background. The fetch is detached from ctx; a result that arrives
// after another selection is dropped by the record store.
func (s *Session) Select(ctx context.Context, name string) (record.Snapshot, error) {
	summary, ok := s.search.Find(name)
	if !ok {
		return record.Snapshot{}, eris.Wrapf(ErrUnknownImporter, "dashboard: select %q", name)
	}
	snap := s.records.Select(summary)

	bg := context.WithoutCancel(ctx)
	t := snap.Ticket()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		rec, err := s.detail.FetchDetail(bg, t.Key)
		if err != nil {
			zap.L().Warn("dashboard: detail fetch failed", zap.String("importer", t.Key), zap.Error(err))
			s.records.ApplyError(t, research.UserMessage(err))
			return
		}
		s.records.ApplyFull(t, rec)
	}()
	return snap, nil
}

// Record returns the selected record.
func (s *Session) Record() (record.Snapshot, bool) {
	return s.records.Active()
}

// Refresh re-fetches the selected record in the background. On failure the
// last good record stays and the message is kept on the snapshot.
func (s *Session) Refresh(ctx context.Context) (record.Snapshot, error) {
	key := s.records.Key()
	if key == "" {
		return record.Snapshot{}, ErrRefreshBusy
	}
	t, ok := s.records.BeginRefresh(key)
	if !ok {
		return record.Snapshot{}, ErrRefreshBusy
	}
	snap, _ := s.records.Active()

	bg := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		rec, err := s.detail.FetchDetail(bg, t.Key)
		if err != nil {
			zap.L().Warn("dashboard: refresh failed", zap.String("importer", t.Key), zap.Error(err))
			err = eris.New(research.UserMessage(err))
		}
		s.records.FinishRefresh(t, rec, err)
	}()
	return snap, nil
}

// Close drops the selected record.
func (s *Session) Close() {
	s.records.Clear()
}

// Wait blocks until background fetches finish.
func (s *Session) Wait() {
	s.wg.Wait()
}

// TradeMap builds the partner map of the selected record.
func (s *Session) TradeMap() (*geomap.Map, error) {
	snap, ok := s.records.Active()
	if !ok {
		return nil, ErrNoRecord
	}
	return geomap.New(snap.Record.TopTradePartners), nil
}

// ClickMap resolves a click on the partner map and, when it hits a country,
// closes the record and searches for that country. The bool reports whether
// a country was hit.
func (s *Session) ClickMap(ctx context.Context, client r2.Point, box geomap.Container) (search.Result, bool, error) {
	m, err := s.TradeMap()
	if err != nil {
		return search.Result{}, false, err
	}
	var country string
	if !m.Click(client, box, func(c string) { country = c }) {
		return search.Result{}, false, nil
	}
	res, err := s.SearchFor(ctx, country)
	return res, true, err
}

// Subscribe registers alerts for company.
func (s *Session) Subscribe(ctx context.Context, company, email string) (model.Notification, error) {
	return s.alerts.Subscribe(ctx, company, email)
}

// Alerts returns the alert service.
func (s *Session) Alerts() *alerts.Service {
	return s.alerts
}
