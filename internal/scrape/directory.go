package scrape

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/importer-intel/internal/model"
)

const (
	importYetiBaseURL = "https://www.importyeti.com"
	alibabaBaseURL    = "https://www.alibaba.com"
)

// ImportYeti scrapes the ImportYeti company search page.
type ImportYeti struct {
	fetch   *HTTPFetcher
	baseURL string
}

// NewImportYeti creates an ImportYeti scraper. An empty baseURL uses the
// public site.
func NewImportYeti(fetch *HTTPFetcher, baseURL string) *ImportYeti {
	if baseURL == "" {
		baseURL = importYetiBaseURL
	}
	return &ImportYeti{fetch: fetch, baseURL: strings.TrimRight(baseURL, "/")}
}

// Name implements LeadScraper.
func (s *ImportYeti) Name() string { return "ImportYeti" }

// Scrape implements LeadScraper.
func (s *ImportYeti) Scrape(ctx context.Context, query string) ([]model.RawLead, error) {
	pageURL := s.baseURL + "/search?q=" + url.QueryEscape(query)
	doc, err := fetchDocument(ctx, s.fetch, pageURL)
	if err != nil {
		return nil, err
	}

	var leads []model.RawLead
	doc.Find(".company-result").Each(func(_ int, sel *goquery.Selection) {
		name := strings.TrimSpace(sel.Find(".company-name").Text())
		if name == "" {
			return
		}
		leads = append(leads, model.RawLead{
			Importer:  name,
			Commodity: strings.TrimSpace(sel.Find(".product-list").Text()),
			Source:    s.Name(),
			URL:       pageURL,
		})
	})
	return leads, nil
}

// AlibabaBuyers scrapes the Alibaba trade search listing. Every lead carries
// the search keyword as its commodity.
type AlibabaBuyers struct {
	fetch   *HTTPFetcher
	baseURL string
}

// NewAlibabaBuyers creates an AlibabaBuyers scraper. An empty baseURL uses
// the public site.
func NewAlibabaBuyers(fetch *HTTPFetcher, baseURL string) *AlibabaBuyers {
	if baseURL == "" {
		baseURL = alibabaBaseURL
	}
	return &AlibabaBuyers{fetch: fetch, baseURL: strings.TrimRight(baseURL, "/")}
}

// Name implements LeadScraper.
func (s *AlibabaBuyers) Name() string { return "Alibaba Buyers" }

// Scrape implements LeadScraper.
func (s *AlibabaBuyers) Scrape(ctx context.Context, keyword string) ([]model.RawLead, error) {
	pageURL := s.baseURL + "/trade/search?keywords=" + url.QueryEscape(keyword)
	doc, err := fetchDocument(ctx, s.fetch, pageURL)
	if err != nil {
		return nil, err
	}

	var leads []model.RawLead
	doc.Find(".supplier-card").Each(func(_ int, sel *goquery.Selection) {
		name := strings.TrimSpace(sel.Find(".supplier-name").Text())
		if name == "" {
			return
		}
		leads = append(leads, model.RawLead{
			Importer:  name,
			Commodity: keyword,
			Source:    s.Name(),
			URL:       pageURL,
		})
	})
	return leads, nil
}

func fetchDocument(ctx context.Context, fetch *HTTPFetcher, pageURL string) (*goquery.Document, error) {
	body, err := fetch.Get(ctx, pageURL, "text/html")
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: parse html %s", pageURL)
	}
	return doc, nil
}
