package scrape

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"

	"github.com/sells-group/importer-intel/internal/model"
)

const (
	indiaCustomsBaseURL = "https://api.cbic-gov.in"
	portOfLABaseURL     = "https://www.portoflosangeles.org"
)

var hsCodeRe = regexp.MustCompile(`^\d{2,10}$`)

// IsHSCode reports whether q looks like a Harmonized System code (2 to 10
// digits, dots and spaces ignored).
func IsHSCode(q string) bool {
	q = strings.NewReplacer(".", "", " ", "").Replace(strings.TrimSpace(q))
	return hsCodeRe.MatchString(q)
}

// IndiaCustoms queries the CBIC public HS-code endpoint. Queries that are not
// HS codes return no leads without a request.
type IndiaCustoms struct {
	fetch   *HTTPFetcher
	baseURL string
}

// NewIndiaCustoms creates an IndiaCustoms scraper.
func NewIndiaCustoms(fetch *HTTPFetcher, baseURL string) *IndiaCustoms {
	if baseURL == "" {
		baseURL = indiaCustomsBaseURL
	}
	return &IndiaCustoms{fetch: fetch, baseURL: strings.TrimRight(baseURL, "/")}
}

// Name implements LeadScraper.
func (s *IndiaCustoms) Name() string { return "India Customs API" }

// Scrape implements LeadScraper.
func (s *IndiaCustoms) Scrape(ctx context.Context, hs string) ([]model.RawLead, error) {
	hs = strings.TrimSpace(hs)
	if !IsHSCode(hs) {
		return nil, nil
	}
	body, err := s.fetch.Get(ctx, s.baseURL+"/public/hs?code="+url.QueryEscape(hs), "application/json")
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, eris.New("scrape: india customs returned invalid json")
	}

	var leads []model.RawLead
	for _, rec := range gjson.GetBytes(body, "records").Array() {
		leads = append(leads, model.RawLead{
			Importer:         rec.Get("importer").String(),
			HSCode:           hs,
			Origin:           rec.Get("country").String(),
			LastShipmentDate: rec.Get("date").String(),
			Source:           s.Name(),
		})
	}
	return leads, nil
}

// PortOfLA reads the Port of Los Angeles vessel schedule. The schedule does
// not depend on the query and names no importers; its leads only carry
// arrival lanes.
type PortOfLA struct {
	fetch   *HTTPFetcher
	baseURL string
}

// NewPortOfLA creates a PortOfLA scraper.
func NewPortOfLA(fetch *HTTPFetcher, baseURL string) *PortOfLA {
	if baseURL == "" {
		baseURL = portOfLABaseURL
	}
	return &PortOfLA{fetch: fetch, baseURL: strings.TrimRight(baseURL, "/")}
}

// Name implements LeadScraper.
func (s *PortOfLA) Name() string { return "Port of LA" }

// Scrape implements LeadScraper.
func (s *PortOfLA) Scrape(ctx context.Context, _ string) ([]model.RawLead, error) {
	body, err := s.fetch.Get(ctx, s.baseURL+"/api/vessel_schedule", "application/json")
	if err != nil {
		return nil, err
	}
	schedule := gjson.ParseBytes(body)
	if !schedule.IsArray() {
		return nil, nil
	}

	var leads []model.RawLead
	schedule.ForEach(func(_, v gjson.Result) bool {
		leads = append(leads, model.RawLead{
			Origin:           v.Get("lastPort").String(),
			Destination:      "Los Angeles",
			LastShipmentDate: v.Get("arrival").String(),
			Source:           s.Name(),
		})
		return true
	})
	return leads, nil
}
