package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const importYetiPage = `<html><body>
<div class="company-result">
  <a class="company-name"> Acme Furniture Inc </a>
  <div class="product-list">sofas, chairs</div>
</div>
<div class="company-result">
  <a class="company-name"></a>
</div>
<div class="company-result">
  <a class="company-name">Blue Ridge Imports</a>
</div>
</body></html>`

const alibabaPage = `<html><body>
<div class="supplier-card"><h2 class="supplier-name">Ningbo Trading Co</h2></div>
<div class="supplier-card"><h2 class="supplier-name">Shenzhen Home Ltd</h2></div>
</body></html>`

func TestImportYeti_Scrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "office chairs", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(importYetiPage))
	}))
	defer srv.Close()

	s := NewImportYeti(testFetcher(), srv.URL+"/")
	leads, err := s.Scrape(context.Background(), "office chairs")
	require.NoError(t, err)
	require.Len(t, leads, 2)

	assert.Equal(t, "Acme Furniture Inc", leads[0].Importer)
	assert.Equal(t, "sofas, chairs", leads[0].Commodity)
	assert.Equal(t, "ImportYeti", leads[0].Source)
	assert.Equal(t, srv.URL+"/search?q=office+chairs", leads[0].URL)
	assert.Equal(t, "Blue Ridge Imports", leads[1].Importer)
	assert.Empty(t, leads[1].Commodity)
}

func TestImportYeti_Blocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><div id="cf-chl-widget"></div></html>`))
	}))
	defer srv.Close()

	_, err := NewImportYeti(testFetcher(), srv.URL).Scrape(context.Background(), "tiles")
	assert.ErrorIs(t, err, ErrBlocked)
}

func TestAlibabaBuyers_Scrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trade/search", r.URL.Path)
		assert.Equal(t, "led lamps", r.URL.Query().Get("keywords"))
		_, _ = w.Write([]byte(alibabaPage))
	}))
	defer srv.Close()

	leads, err := NewAlibabaBuyers(testFetcher(), srv.URL).Scrape(context.Background(), "led lamps")
	require.NoError(t, err)
	require.Len(t, leads, 2)
	for _, l := range leads {
		assert.Equal(t, "led lamps", l.Commodity)
		assert.Equal(t, "Alibaba Buyers", l.Source)
	}
	assert.Equal(t, "Ningbo Trading Co", leads[0].Importer)
}

func TestAlibabaBuyers_EmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>No results</p></body></html>"))
	}))
	defer srv.Close()

	leads, err := NewAlibabaBuyers(testFetcher(), srv.URL).Scrape(context.Background(), "x")
	require.NoError(t, err)
	assert.Empty(t, leads)
}
