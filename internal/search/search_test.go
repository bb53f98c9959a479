package search

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/importer-intel/internal/model"
)

func summaries(names ...string) []model.ImporterSummary {
	out := make([]model.ImporterSummary, 0, len(names))
	for _, n := range names {
		out = append(out, model.ImporterSummary{Name: n, Location: "Houston, TX"})
	}
	return out
}

func TestSearch_EmptyQuery(t *testing.T) {
	r := &mockResearcher{}
	o := New(r)

	_, err := o.Search(context.Background(), Query{Query: "  ", City: "\t"})
	assert.ErrorIs(t, err, ErrEmptyQuery)
	r.AssertNotCalled(t, "SearchImporters", mock.Anything, mock.Anything)
	r.AssertNotCalled(t, "SearchSimilar", mock.Anything, mock.Anything)

	_, ok := o.Last()
	assert.False(t, ok)
}

func TestSearch_Success(t *testing.T) {
	r := &mockResearcher{}
	r.On("SearchImporters", mock.Anything, Query{Query: "furniture", State: "TX"}).Return(summaries("A", "B"), nil)
	r.On("SearchSimilar", mock.Anything, "furniture").Return(summaries("C"))

	o := New(r)
	res, err := o.Search(context.Background(), Query{Query: " furniture ", State: "TX "})
	require.NoError(t, err)

	assert.Equal(t, summaries("A", "B"), res.Primary)
	assert.Equal(t, summaries("C"), res.Similar)
	assert.Empty(t, res.Error)
	r.AssertExpectations(t)

	last, ok := o.Last()
	require.True(t, ok)
	assert.Equal(t, res, last)
}

func TestSearch_PrimaryFailsSimilarSucceeds(t *testing.T) {
	r := &mockResearcher{}
	r.On("SearchImporters", mock.Anything, mock.Anything).Return(nil, eris.New("quota exceeded"))
	r.On("SearchSimilar", mock.Anything, "electronics").Return(summaries("X"))

	res, err := New(r).Search(context.Background(), Query{Query: "electronics"})
	require.NoError(t, err)
	assert.NotNil(t, res.Primary)
	assert.Empty(t, res.Primary)
	assert.Equal(t, PrimaryFailedMessage, res.Error)
	assert.Equal(t, summaries("X"), res.Similar)
}

func TestSearch_SimilarEmpty(t *testing.T) {
	r := &mockResearcher{}
	r.On("SearchImporters", mock.Anything, mock.Anything).Return(summaries("A"), nil)
	r.On("SearchSimilar", mock.Anything, mock.Anything).Return(nil)

	res, err := New(r).Search(context.Background(), Query{Query: "toys"})
	require.NoError(t, err)
	assert.NotNil(t, res.Similar)
	assert.Empty(t, res.Similar)
	assert.Empty(t, res.Error)
}

func TestSearch_ReplacesPreviousResult(t *testing.T) {
	r := &mockResearcher{}
	r.On("SearchImporters", mock.Anything, Query{Query: "one"}).Return(summaries("A"), nil)
	r.On("SearchImporters", mock.Anything, Query{Query: "two"}).Return(nil, eris.New("down"))
	r.On("SearchSimilar", mock.Anything, "one").Return(summaries("S"))
	r.On("SearchSimilar", mock.Anything, "two").Return(nil)

	o := New(r)
	_, err := o.Search(context.Background(), Query{Query: "one"})
	require.NoError(t, err)
	_, err = o.Search(context.Background(), Query{Query: "two"})
	require.NoError(t, err)

	last, _ := o.Last()
	assert.Empty(t, last.Primary)
	assert.Empty(t, last.Similar)
	_, ok := o.Find("A")
	assert.False(t, ok)
}

func TestSearch_InFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	r := &mockResearcher{}
	r.On("SearchImporters", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(summaries("A"), nil)
	r.On("SearchSimilar", mock.Anything, mock.Anything).Return(nil)

	o := New(r)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := o.Search(context.Background(), Query{Query: "first"})
		assert.NoError(t, err)
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("first search did not start")
	}
	assert.True(t, o.Running())
	_, err := o.Search(context.Background(), Query{Query: "second"})
	assert.ErrorIs(t, err, ErrSearchInFlight)

	close(release)
	wg.Wait()
	assert.False(t, o.Running())
	r.AssertNumberOfCalls(t, "SearchImporters", 1)
}

func TestFind(t *testing.T) {
	r := &mockResearcher{}
	r.On("SearchImporters", mock.Anything, mock.Anything).Return(summaries("A", "Dup"), nil)
	r.On("SearchSimilar", mock.Anything, mock.Anything).Return([]model.ImporterSummary{
		{Name: "Dup", Location: "Elsewhere"},
		{Name: "S"},
	})

	o := New(r)
	_, ok := o.Find("A")
	assert.False(t, ok, "nothing searched yet")

	_, err := o.Search(context.Background(), Query{Query: "q"})
	require.NoError(t, err)

	s, ok := o.Find("Dup")
	require.True(t, ok)
	assert.Equal(t, "Houston, TX", s.Location, "primary wins")

	_, ok = o.Find("S")
	assert.True(t, ok)
	_, ok = o.Find("missing")
	assert.False(t, ok)
}

func TestSimilarQuery(t *testing.T) {
	assert.Equal(t, "steel", SimilarQuery(Query{Query: " steel ", City: "Austin"}))
	assert.Equal(t, "Textiles, Dallas, TX", SimilarQuery(Query{Industry: "Textiles", City: "Dallas", State: "TX"}))
	assert.Equal(t, "Dallas", SimilarQuery(Query{City: " Dallas ", State: " "}))
	assert.Equal(t, "", SimilarQuery(Query{}))
}
