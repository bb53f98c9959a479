// Package scrape collects best-effort importer leads from public trade
// directories and customs feeds.
package scrape

import (
	"context"

	"github.com/sells-group/importer-intel/internal/model"
)

// LeadScraper fetches raw leads for a query from one source.
type LeadScraper interface {
	Name() string
	Scrape(ctx context.Context, query string) ([]model.RawLead, error)
}
