package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/golang/geo/r2"
	"github.com/rotisserie/eris"

	"github.com/sells-group/importer-intel/internal/chart"
	"github.com/sells-group/importer-intel/internal/cost"
	"github.com/sells-group/importer-intel/internal/dashboard"
	"github.com/sells-group/importer-intel/internal/export"
	"github.com/sells-group/importer-intel/internal/geomap"
	"github.com/sells-group/importer-intel/internal/model"
	"github.com/sells-group/importer-intel/internal/record"
	"github.com/sells-group/importer-intel/internal/search"
	"github.com/sells-group/importer-intel/internal/view"
)

// recordBody is a record snapshot with its display card.
type recordBody struct {
	record.Snapshot
	Card view.Card `json:"card"`
}

func newRecordBody(snap record.Snapshot) recordBody {
	return recordBody{Snapshot: snap, Card: view.NewCard(snap.Record)}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// dashboard is the entry endpoint. A non-blank ?search= starts a search for
// that term before the state is returned, which makes shared links work.
func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	if term := strings.TrimSpace(r.URL.Query().Get("search")); term != "" {
		if _, err := s.session.SearchFor(r.Context(), term); err != nil {
			writeError(w, err)
			return
		}
	}

	body := struct {
		Results *search.Result `json:"results,omitempty"`
		Record  *recordBody    `json:"record,omitempty"`
		Unread  int            `json:"unread"`
	}{}
	if res, ok := s.session.Results(); ok {
		body.Results = &res
	}
	if snap, ok := s.session.Record(); ok {
		rb := newRecordBody(snap)
		body.Record = &rb
	}
	unread, err := s.session.Alerts().Unread(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	body.Unread = unread
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	var q search.Query
	if err := decodeBody(r, &q); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := s.session.Search(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) results(w http.ResponseWriter, _ *http.Request) {
	res, ok := s.session.Results()
	if !ok {
		writeMessage(w, http.StatusNotFound, "no search has run")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) selectImporter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"importerName"`
	}
	if err := decodeBody(r, &req); err != nil || strings.TrimSpace(req.Name) == "" {
		writeMessage(w, http.StatusBadRequest, "importerName is required")
		return
	}
	snap, err := s.session.Select(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, newRecordBody(snap))
}

func (s *Server) record(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.session.Record()
	if !ok {
		writeError(w, dashboard.ErrNoRecord)
		return
	}
	writeJSON(w, http.StatusOK, newRecordBody(snap))
}

func (s *Server) closeRecord(w http.ResponseWriter, _ *http.Request) {
	s.session.Close()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	snap, err := s.session.Refresh(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, newRecordBody(snap))
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.activeRecord(w)
	if !ok {
		return
	}
	q := r.URL.Query()
	rows := view.History(rec.ShipmentHistory, q.Get("filter"), view.ParseSortOrder(q.Get("sort")))
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) chartLayout(w http.ResponseWriter, _ *http.Request) {
	rec, ok := s.activeRecord(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, volumeLayout(rec))
}

// chartSVG renders the volume chart. ?hover=<x> draws the hover indicator.
func (s *Server) chartSVG(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.activeRecord(w)
	if !ok {
		return
	}
	layout := volumeLayout(rec)
	var hover *chart.Tooltip
	if raw := r.URL.Query().Get("hover"); raw != "" {
		x, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "hover must be a number")
			return
		}
		if tip, hit := layout.Hover(x); hit {
			hover = &tip
		}
	}
	writeSVG(w, chart.RenderBars(layout, hover))
}

func (s *Server) chartHover(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.activeRecord(w)
	if !ok {
		return
	}
	x, err := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "x must be a number")
		return
	}
	tip, hit := volumeLayout(rec).Hover(x)
	if !hit {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		chart.Tooltip
		Label string `json:"label"`
	}{tip, fmt.Sprintf("%d: %s", tip.Year, view.FormatVolume(tip.Volume))})
}

func (s *Server) tradeMap(w http.ResponseWriter, _ *http.Request) {
	m, err := s.session.TradeMap()
	if err != nil {
		writeError(w, err)
		return
	}
	unmapped := m.Unmapped()
	if unmapped == nil {
		unmapped = []model.TradePartner{}
	}
	writeJSON(w, http.StatusOK, struct {
		Regions  []geomap.Region      `json:"regions"`
		Unmapped []model.TradePartner `json:"unmapped"`
	}{m.Regions(), unmapped})
}

func (s *Server) tradeMapSVG(w http.ResponseWriter, _ *http.Request) {
	m, err := s.session.TradeMap()
	if err != nil {
		writeError(w, err)
		return
	}
	writeSVG(w, m.RenderSVG())
}

func (s *Server) mapHover(w http.ResponseWriter, r *http.Request) {
	m, err := s.session.TradeMap()
	if err != nil {
		writeError(w, err)
		return
	}
	var p pointer
	if err := p.fromQuery(r); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	tip, hit := m.HoverAt(p.client(), p.container())
	if !hit {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, tip)
}

func (s *Server) mapClick(w http.ResponseWriter, r *http.Request) {
	var p pointer
	if err := decodeBody(r, &p); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, hit, err := s.session.ClickMap(r.Context(), p.client(), p.container())
	if err != nil {
		writeError(w, err)
		return
	}
	if !hit {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// sparkline renders one commodity's trend. ?series=price selects the price
// series; the default is import volume.
func (s *Server) sparkline(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.activeRecord(w)
	if !ok {
		return
	}
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || idx < 0 || idx >= len(rec.TopCommodityFlows) {
		writeMessage(w, http.StatusNotFound, "no such commodity")
		return
	}
	flow := rec.TopCommodityFlows[idx]
	values := flow.ImportVolumeTrendData
	if r.URL.Query().Get("series") == "price" {
		values = flow.PriceTrendData
	}
	vp := chart.DefaultSparkViewport()
	svg := chart.RenderSparkline(chart.Sparkline(values, vp), vp)
	if svg == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeSVG(w, svg)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.activeRecord(w)
	if !ok {
		return
	}
	f, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, rec, f); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(rec.Name, f)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck
}

func (s *Server) subscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.session.Alerts().Subscriptions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (s *Server) subscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Company string `json:"companyName"`
		Email   string `json:"email"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	n, err := s.session.Subscribe(r.Context(), req.Company, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) notifications(w http.ResponseWriter, r *http.Request) {
	list, err := s.session.Alerts().Notifications(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) clearNotifications(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Alerts().ClearNotifications(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) unread(w http.ResponseWriter, r *http.Request) {
	n, err := s.session.Alerts().Unread(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": n})
}

func (s *Server) usageReport(w http.ResponseWriter, _ *http.Request) {
	spend := s.usage.Spend()
	var total float64
	for _, sp := range spend {
		total += sp.USD
	}
	writeJSON(w, http.StatusOK, struct {
		Backends []cost.Spend `json:"backends"`
		TotalUSD float64      `json:"totalUsd"`
	}{spend, total})
}

// activeRecord writes 404 and returns false when nothing is selected.
func (s *Server) activeRecord(w http.ResponseWriter) (model.DetailedImporterRecord, bool) {
	snap, ok := s.session.Record()
	if !ok {
		writeError(w, dashboard.ErrNoRecord)
		return model.DetailedImporterRecord{}, false
	}
	return snap.Record, true
}

func volumeLayout(rec model.DetailedImporterRecord) chart.BarLayout {
	return chart.LayoutBars(chart.FromVolumeHistory(rec.ShipmentVolumeHistory), chart.DefaultViewport())
}

// pointer is a client-space position plus the map container's bounding box.
type pointer struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (p *pointer) fromQuery(r *http.Request) error {
	q := r.URL.Query()
	fields := []struct {
		name string
		dst  *float64
	}{
		{"x", &p.X}, {"y", &p.Y}, {"left", &p.Left}, {"top", &p.Top}, {"width", &p.Width}, {"height", &p.Height},
	}
	for _, f := range fields {
		raw := q.Get(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return eris.Errorf("%s must be a number", f.name)
		}
		*f.dst = v
	}
	return nil
}

func (p pointer) client() r2.Point {
	return r2.Point{X: p.X, Y: p.Y}
}

func (p pointer) container() geomap.Container {
	return geomap.Container{Left: p.Left, Top: p.Top, Width: p.Width, Height: p.Height}
}
