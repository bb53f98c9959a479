// Package research runs the generator-backed importer searches and detail
// lookups and turns the replies into model records.
package research

import (
	"context"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/importer-intel/internal/model"
	"github.com/sells-group/importer-intel/internal/sanitize"
)

// DefaultMaxLeads caps how many scraped leads are embedded in a search prompt.
const DefaultMaxLeads = 15

// LeadSource collects scraped leads. Implementations never fail; a source
// that could not reach anything returns nil.
type LeadSource interface {
	Collect(ctx context.Context, query string) []model.RawLead
}

// Service runs searches and detail lookups against a Generator.
type Service struct {
	gen      Generator
	leads    LeadSource
	maxLeads int
}

// Option configures a Service.
type Option func(*Service)

// WithLeadSource feeds scraped leads into importer searches.
func WithLeadSource(src LeadSource) Option {
	return func(s *Service) { s.leads = src }
}

// WithMaxLeads overrides DefaultMaxLeads.
func WithMaxLeads(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLeads = n
		}
	}
}

// NewService creates a Service.
func NewService(gen Generator, opts ...Option) *Service {
	s := &Service{gen: gen, maxLeads: DefaultMaxLeads}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SearchImporters runs the hybrid search: best-effort scraping, a
// search-grounded generation seeded with the leads, then a cleaning pass
// that deduplicates into the summary list.
func (s *Service) SearchImporters(ctx context.Context, f Filters) ([]model.ImporterSummary, error) {
	f = f.Trimmed()
	log := zap.L().With(zap.String("query", f.Query), zap.String("state", f.State))

	term := f.Query
	if term == "" {
		term = f.Industry
	}

	// location-only searches have nothing to scrape for
	var leads []model.RawLead
	if s.leads != nil && term != "" {
		leads = s.leads.Collect(ctx, term)
		if len(leads) > s.maxLeads {
			leads = leads[:s.maxLeads]
		}
		log.Debug("research: scraped leads", zap.Int("leads", len(leads)))
	}

	found, err := s.gen.Generate(ctx, buildSearchPrompt(f, leads), GenerateOptions{WebSearch: true})
	if err != nil {
		return nil, eris.Wrap(err, "research: search importers")
	}

	cleaned, err := s.gen.Generate(ctx, buildCleanPrompt(found), GenerateOptions{})
	if err != nil {
		return nil, eris.Wrap(err, "research: clean importer list")
	}

	var list model.ImporterList
	if err := sanitize.Decode(cleaned, &list); err != nil {
		return nil, eris.Wrap(err, "research: decode importer list")
	}
	out := keepNamed(list.Importers)
	log.Info("research: search complete", zap.Int("importers", len(out)))
	return out, nil
}

// FetchDetail asks for the full profile of one importer.
func (s *Service) FetchDetail(ctx context.Context, name string) (model.DetailedImporterRecord, error) {
	raw, err := s.gen.Generate(ctx, buildDetailPrompt(name), GenerateOptions{WebSearch: true})
	if err != nil {
		return model.DetailedImporterRecord{}, eris.Wrapf(err, "research: fetch detail %q", name)
	}

	var rec model.DetailedImporterRecord
	if err := sanitize.Decode(raw, &rec); err != nil {
		return model.DetailedImporterRecord{}, eris.Wrapf(err, "research: decode detail %q", name)
	}
	return rec, nil
}

// SearchSimilar looks up related importers. Failures of any kind degrade to
// an empty list; the error is only logged.
func (s *Service) SearchSimilar(ctx context.Context, query string) []model.ImporterSummary {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.ImporterSummary{}
	}

	raw, err := s.gen.Generate(ctx, buildSimilarPrompt(query), GenerateOptions{WebSearch: true})
	if err != nil {
		zap.L().Warn("research: similar search failed", zap.String("query", query), zap.Error(err))
		return []model.ImporterSummary{}
	}

	var list model.ImporterList
	if !sanitize.DecodeLenient(raw, &list) {
		return []model.ImporterSummary{}
	}
	return keepNamed(list.Importers)
}

// UserMessage renders err the way it is shown next to a record.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, sanitize.ErrMalformedResponse):
		return "Failed to process data from the API. The response was not in the expected JSON format."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "The request was cancelled before the data arrived."
	default:
		return "Failed to retrieve data. " + rootMessage(err)
	}
}

// rootMessage returns the innermost error text without the wrap chain.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

func keepNamed(in []model.ImporterSummary) []model.ImporterSummary {
	out := make([]model.ImporterSummary, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s.Name) == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
