package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/importer-intel/internal/alerts"
	"github.com/sells-group/importer-intel/internal/config"
	"github.com/sells-group/importer-intel/internal/dashboard"
	"github.com/sells-group/importer-intel/internal/record"
	"github.com/sells-group/importer-intel/internal/research"
	"github.com/sells-group/importer-intel/internal/scrape"
	"github.com/sells-group/importer-intel/internal/search"
	"github.com/sells-group/importer-intel/internal/store"
	anthropicpkg "github.com/sells-group/importer-intel/pkg/anthropic"
	"github.com/sells-group/importer-intel/pkg/perplexity"
)

// appEnv holds everything the commands share. Research is nil for commands
// that only touch alerts.
type appEnv struct {
	Store    store.Store
	Research *research.Service
	Router   *research.LLMRouter
	Alerts   *alerts.Service
}

// Close releases the store.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// Session builds the dashboard session over the environment.
func (e *appEnv) Session() *dashboard.Session {
	return dashboard.NewSession(search.New(e.Research), record.New(), e.Research, e.Alerts)
}

// initEnv validates cfg for mode and opens the store. Research is built for
// every mode except "alerts". Callers should defer env.Close().
func initEnv(ctx context.Context, mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	env := &appEnv{Store: st, Alerts: alerts.NewService(st)}
	if mode == "alerts" {
		return env, nil
	}

	if n, err := st.DeleteExpiredScrapes(ctx); err != nil {
		zap.L().Warn("prune scrape cache", zap.Error(err))
	} else if n > 0 {
		zap.L().Debug("pruned scrape cache", zap.Int("rows", n))
	}

	svc, router, err := initResearch(cfg, st)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	env.Research = svc
	env.Router = router
	return env, nil
}

func initStore(sc config.StoreConfig) (store.Store, error) {
	switch sc.Driver {
	case "memory":
		return store.NewMemory(), nil
	case "sqlite":
		return store.NewSQLite(sc.Path)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", sc.Driver)
	}
}

// initResearch builds the generator router and the research service. Either
// API key may be missing; the router then sends everything to the other.
func initResearch(c *config.Config, cache store.ScrapeCache) (*research.Service, *research.LLMRouter, error) {
	var ai anthropicpkg.Client
	if c.Anthropic.Key != "" {
		opts := []anthropicpkg.Option{
			anthropicpkg.WithTimeout(time.Duration(c.Anthropic.TimeoutSecs) * time.Second),
			anthropicpkg.WithMaxRetries(0),
		}
		if c.Anthropic.BaseURL != "" {
			opts = append(opts, anthropicpkg.WithBaseURL(c.Anthropic.BaseURL))
		}
		ai = anthropicpkg.NewClient(c.Anthropic.Key, opts...)
	} else {
		zap.L().Debug("IMPORTER_ANTHROPIC_KEY not set, perplexity serves every prompt")
	}

	var pplx perplexity.Client
	if c.Perplexity.Key != "" {
		pplx = perplexity.NewClient(c.Perplexity.Key,
			perplexity.WithBaseURL(c.Perplexity.BaseURL),
			perplexity.WithModel(c.Perplexity.Model),
			perplexity.WithTimeout(time.Duration(c.Perplexity.TimeoutSecs)*time.Second),
		)
	} else {
		zap.L().Warn("IMPORTER_PERPLEXITY_KEY not set, searches run without web grounding")
	}

	router, err := research.NewLLMRouter(ai, pplx, research.RouterConfig{
		Model:       c.Anthropic.Model,
		SearchModel: c.Perplexity.Model,
		MaxTokens:   c.Anthropic.MaxTokens,
		Retry:       c.Retry.Policy(),
		Breaker:     c.Retry.Breaker.CircuitBreaker(),
	})
	if err != nil {
		return nil, nil, err
	}

	opts := []research.Option{research.WithMaxLeads(c.Scrape.MaxLeads)}
	if c.Scrape.Enabled {
		opts = append(opts, research.WithLeadSource(buildCollector(c.Scrape, cache)))
	}
	return research.NewService(router, opts...), router, nil
}

// logSpend reports the estimated generator spend of a command.
func (e *appEnv) logSpend() {
	if e.Router == nil {
		return
	}
	for _, s := range e.Router.Spend() {
		zap.L().Info("generator spend",
			zap.String("backend", s.Backend),
			zap.Int("calls", s.Calls),
			zap.Float64("usd", s.USD),
		)
	}
}

// buildCollector wires the lead scrapers behind one shared fetcher, each
// wrapped by the scrape cache.
func buildCollector(sc config.ScrapeConfig, cache store.ScrapeCache) *scrape.Collector {
	fetch := scrape.NewFetcher(scrape.FetcherConfig{
		UserAgent:  sc.UserAgent,
		Timeout:    time.Duration(sc.TimeoutSecs) * time.Second,
		MaxRetries: sc.MaxRetries,
		RatePerSec: sc.RatePerSec,
		Burst:      sc.Burst,
	})
	ttl := time.Duration(sc.CacheTTLHours) * time.Hour

	scrapers := []scrape.LeadScraper{
		scrape.NewImportYeti(fetch, sc.ImportYetiURL),
		scrape.NewAlibabaBuyers(fetch, sc.AlibabaURL),
		scrape.NewIndiaCustoms(fetch, sc.IndiaCustomsURL),
	}
	if sc.PortSchedule {
		scrapers = append(scrapers, scrape.NewPortOfLA(fetch, sc.PortOfLAURL))
	}
	for i, s := range scrapers {
		scrapers[i] = scrape.NewCached(s, cache, ttl)
	}

	zap.L().Info("lead scrapers enabled", zap.Int("scrapers", len(scrapers)))
	return scrape.NewCollector(time.Duration(sc.TimeoutSecs)*time.Second, scrapers...)
}
