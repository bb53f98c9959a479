// Package record holds the single "currently displayed" importer record.
//
// A record is keyed by the importer name it was selected under, and every
// Select or Clear starts a new generation. Every result that arrives later
// (detail fetch, error, refresh) carries the Ticket it was issued for and is
// dropped unless both the key and the generation are still active.
package record

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/sells-group/importer-intel/internal/model"
)

// Phase is the lifecycle state of the active record.
type Phase int

const (
	// PhaseEmpty means nothing is selected.
	PhaseEmpty Phase = iota
	// PhaseLoading is the placeholder built from the summary.
	PhaseLoading
	// PhasePartial means a detail reply arrived but some sections are still empty.
	PhasePartial
	// PhaseFull means every section is populated.
	PhaseFull
	// PhaseErrored means the detail fetch failed; summary data is kept.
	PhaseErrored
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseLoading:
		return "loading"
	case PhasePartial:
		return "partial"
	case PhaseFull:
		return "full"
	case PhaseErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// MarshalText renders the phase name in JSON payloads.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Ticket identifies the selection a background result was issued for.
type Ticket struct {
	Key        string
	Generation uint64
}

// Snapshot is a copy of the store state. Callers may keep it; later store
// mutations do not affect it.
type Snapshot struct {
	Key        string                       `json:"key"`
	Record     model.DetailedImporterRecord `json:"record"`
	Phase      Phase                        `json:"phase"`
	Generation uint64                       `json:"generation"`
	Refreshing bool                         `json:"refreshing"`
	LastError  string                       `json:"lastError,omitempty"`
	Missing    []string                     `json:"missing,omitempty"`
}

// Ticket returns the selection the snapshot belongs to.
func (s Snapshot) Ticket() Ticket {
	return Ticket{Key: s.Key, Generation: s.Generation}
}

// Store is the mutex-guarded active-record slot.
type Store struct {
	mu sync.Mutex

	key        string
	rec        model.DetailedImporterRecord
	phase      Phase
	gen        uint64
	refreshing bool
	lastErr    string
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Select makes a placeholder for summary the active record and returns it.
// Any outstanding refresh for the previous record is forgotten.
func (s *Store) Select(summary model.ImporterSummary) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.key = summary.Name
	s.rec = model.NewPlaceholder(summary)
	s.phase = PhaseLoading
	s.gen++
	s.refreshing = false
	s.lastErr = ""
	return s.snapshotLocked()
}

// ApplyFull replaces the active record with rec when t is still active.
// It reports whether the result was applied.
func (s *Store) ApplyFull(t Ticket, rec model.DetailedImporterRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.activeLocked(t) {
		s.dropStaleLocked("detail", t)
		return false
	}
	s.replaceLocked(rec)
	s.lastErr = ""
	return true
}

// ApplyError annotates the active record with a load failure when t is
// still active. Previously loaded fields are kept.
func (s *Store) ApplyError(t Ticket, msg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.activeLocked(t) {
		s.dropStaleLocked("detail error", t)
		return false
	}
	s.rec.Information = fmt.Sprintf("Failed to load details: %s", msg)
	s.phase = PhaseErrored
	s.lastErr = msg
	return true
}

// BeginRefresh claims the refresh flag for key and returns the ticket the
// refresh result must be finished with. It fails when a refresh is already
// outstanding, when the record is still loading, or when key is not the
// active record.
func (s *Store) BeginRefresh(key string) (Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := Ticket{Key: key, Generation: s.gen}
	if !s.activeLocked(t) || s.refreshing || s.phase == PhaseLoading {
		return Ticket{}, false
	}
	s.refreshing = true
	s.lastErr = ""
	return t, true
}

// FinishRefresh releases the refresh flag. On success the record is replaced
// if t is still active; on failure the last good record stays and the
// error is kept in LastError. It reports whether the record changed.
func (s *Store) FinishRefresh(t Ticket, rec model.DetailedImporterRecord, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.activeLocked(t) {
		s.dropStaleLocked("refresh", t)
		return false
	}
	s.refreshing = false
	if err != nil {
		s.lastErr = err.Error()
		return false
	}
	s.replaceLocked(rec)
	return true
}

// Clear drops the active record.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.key = ""
	s.rec = model.DetailedImporterRecord{}
	s.phase = PhaseEmpty
	s.gen++
	s.refreshing = false
	s.lastErr = ""
}

// Active returns the current record, or false when nothing is selected.
func (s *Store) Active() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseEmpty {
		return Snapshot{}, false
	}
	return s.snapshotLocked(), true
}

// Key returns the active selection key, or "".
func (s *Store) Key() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

func (s *Store) activeLocked(t Ticket) bool {
	return s.phase != PhaseEmpty && s.key == t.Key && s.gen == t.Generation
}

// replaceLocked installs a detail reply. Summary fields the reply left blank
// are carried over from the current record so the record never loses its name.
func (s *Store) replaceLocked(rec model.DetailedImporterRecord) {
	if rec.Name == "" {
		rec.Name = s.rec.Name
	}
	if rec.Location == "" {
		rec.Location = s.rec.Location
	}
	if rec.LastShipmentDate == "" {
		rec.LastShipmentDate = s.rec.LastShipmentDate
	}
	if rec.Commodities == "" {
		rec.Commodities = s.rec.Commodities
	}
	s.rec = rec
	if len(rec.MissingSections()) == 0 {
		s.phase = PhaseFull
	} else {
		s.phase = PhasePartial
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Key:        s.key,
		Record:     cloneRecord(s.rec),
		Phase:      s.phase,
		Generation: s.gen,
		Refreshing: s.refreshing,
		LastError:  s.lastErr,
		Missing:    s.rec.MissingSections(),
	}
}

func (s *Store) dropStaleLocked(kind string, t Ticket) {
	zap.L().Debug("record: dropping stale result",
		zap.String("kind", kind),
		zap.String("key", t.Key),
		zap.Uint64("generation", t.Generation),
		zap.String("active", s.key),
		zap.Uint64("active_generation", s.gen),
	)
}

func cloneRecord(r model.DetailedImporterRecord) model.DetailedImporterRecord {
	out := r
	out.ShipmentHistory = cloneSlice(r.ShipmentHistory)
	out.ShipmentVolumeHistory = cloneSlice(r.ShipmentVolumeHistory)
	out.TopTradePartners = cloneSlice(r.TopTradePartners)
	out.TopCommodityFlows = cloneSlice(r.TopCommodityFlows)
	for i := range out.TopCommodityFlows {
		f := &out.TopCommodityFlows[i]
		f.PriceTrendData = cloneSlice(f.PriceTrendData)
		f.ImportVolumeTrendData = cloneSlice(f.ImportVolumeTrendData)
	}
	if r.Contact.Info != nil {
		info := *r.Contact.Info
		out.Contact.Info = &info
	}
	return out
}

// cloneSlice copies s, keeping nil and empty distinct.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}
