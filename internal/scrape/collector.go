package scrape

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/importer-intel/internal/model"
)

// Collector runs several scrapers concurrently and merges what they return.
type Collector struct {
	scrapers []LeadScraper
	timeout  time.Duration
}

// NewCollector creates a Collector. A zero timeout leaves the caller's
// deadline in charge.
func NewCollector(timeout time.Duration, scrapers ...LeadScraper) *Collector {
	return &Collector{scrapers: scrapers, timeout: timeout}
}

// Collect returns the leads of every scraper that succeeded, in scraper
// order. Failures are logged and skipped; Collect itself never fails.
func (c *Collector) Collect(ctx context.Context, query string) []model.RawLead {
	if len(c.scrapers) == 0 {
		return nil
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	results := make([][]model.RawLead, len(c.scrapers))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range c.scrapers {
		g.Go(func() error {
			start := time.Now()
			leads, err := s.Scrape(gctx, query)
			if err != nil {
				zap.L().Debug("scrape: source failed",
					zap.String("source", s.Name()),
					zap.String("query", query),
					zap.Error(err),
				)
				return nil
			}
			zap.L().Debug("scrape: source done",
				zap.String("source", s.Name()),
				zap.Int("leads", len(leads)),
				zap.Duration("elapsed", time.Since(start)),
			)
			results[i] = leads
			return nil
		})
	}
	_ = g.Wait()

	var out []model.RawLead
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}
