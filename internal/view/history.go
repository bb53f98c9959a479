// Package view derives display models from an importer record. Every
// function returns fresh slices; the stored record is never reordered.
package view

import (
	"sort"
	"strings"
	"time"

	"github.com/sells-group/importer-intel/internal/eventparse"
	"github.com/sells-group/importer-intel/internal/model"
)

// SortOrder orders the shipment history by date.
type SortOrder string

const (
	Newest SortOrder = "desc"
	Oldest SortOrder = "asc"
)

// ParseSortOrder accepts "asc" or "desc"; anything else means Newest.
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), string(Oldest)) {
		return Oldest
	}
	return Newest
}

// HistoryRow is one shipment event with its mined fields.
type HistoryRow struct {
	Date   string            `json:"date"`
	Event  string            `json:"event"`
	Fields eventparse.Fields `json:"fields"`
}

// History filters events by a case-insensitive substring of the event text
// or date, then sorts them by date. Dates that do not parse sort as the
// epoch. Equal dates keep their stored order.
func History(events []model.ShipmentEvent, filter string, order SortOrder) []HistoryRow {
	needle := strings.ToLower(strings.TrimSpace(filter))

	rows := make([]HistoryRow, 0, len(events))
	for _, e := range events {
		if needle != "" &&
			!strings.Contains(strings.ToLower(e.Event), needle) &&
			!strings.Contains(strings.ToLower(e.Date), needle) {
			continue
		}
		rows = append(rows, HistoryRow{Date: e.Date, Event: e.Event, Fields: eventparse.Parse(e.Event)})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := DateValue(rows[i].Date), DateValue(rows[j].Date)
		if order == Oldest {
			return a < b
		}
		return a > b
	})
	return rows
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2006",
	"January 2006",
	"2006-01",
	"2006",
}

// DateValue returns the Unix milliseconds of a loosely formatted date, or 0.
func DateValue(s string) int64 {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}
