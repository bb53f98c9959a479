package scrape

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/importer-intel/internal/model"
	"github.com/sells-group/importer-intel/internal/store"
)

func TestCached_HitSkipsSource(t *testing.T) {
	inner := &mockScraper{name: "ImportYeti"}
	inner.On("Scrape", mock.Anything, "chairs").
		Return([]model.RawLead{{Importer: "Acme", Source: "ImportYeti"}}, nil).Once()

	s := NewCached(inner, store.NewMemory(), time.Hour)
	assert.Equal(t, "ImportYeti", s.Name())

	first, err := s.Scrape(context.Background(), "chairs")
	require.NoError(t, err)
	second, err := s.Scrape(context.Background(), " Chairs ")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	inner.AssertNumberOfCalls(t, "Scrape", 1)
}

func TestCached_ErrorsAreNotCached(t *testing.T) {
	inner := &mockScraper{name: "x"}
	inner.On("Scrape", mock.Anything, "q").Return(nil, eris.New("blocked")).Twice()

	s := NewCached(inner, store.NewMemory(), time.Hour)
	_, err := s.Scrape(context.Background(), "q")
	assert.Error(t, err)
	_, err = s.Scrape(context.Background(), "q")
	assert.Error(t, err)
	inner.AssertExpectations(t)
}

func TestNewCached_Disabled(t *testing.T) {
	inner := &mockScraper{name: "x"}
	assert.Same(t, inner, NewCached(inner, store.NewMemory(), 0))
	assert.Same(t, inner, NewCached(inner, nil, time.Hour))
}
