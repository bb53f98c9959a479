package scrape

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sells-group/importer-intel/internal/model"
)

type mockScraper struct {
	mock.Mock
	name string
}

func (m *mockScraper) Name() string { return m.name }

func (m *mockScraper) Scrape(ctx context.Context, query string) ([]model.RawLead, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RawLead), args.Error(1)
}

func TestCollector_MergesInOrderAndSkipsFailures(t *testing.T) {
	a := &mockScraper{name: "a"}
	b := &mockScraper{name: "b"}
	c := &mockScraper{name: "c"}
	a.On("Scrape", mock.Anything, "chairs").Return([]model.RawLead{{Importer: "A1", Source: "a"}, {Importer: "A2", Source: "a"}}, nil)
	b.On("Scrape", mock.Anything, "chairs").Return(nil, eris.New("blocked"))
	c.On("Scrape", mock.Anything, "chairs").Return([]model.RawLead{{Importer: "C1", Source: "c"}}, nil)

	leads := NewCollector(0, a, b, c).Collect(context.Background(), "chairs")

	assert.Equal(t, []string{"A1", "A2", "C1"}, importers(leads))
	a.AssertExpectations(t)
	b.AssertExpectations(t)
	c.AssertExpectations(t)
}

func TestCollector_AllFail(t *testing.T) {
	a := &mockScraper{name: "a"}
	a.On("Scrape", mock.Anything, "x").Return(nil, eris.New("down"))

	assert.Empty(t, NewCollector(time.Second, a).Collect(context.Background(), "x"))
}

func TestCollector_NoScrapers(t *testing.T) {
	assert.Nil(t, NewCollector(0).Collect(context.Background(), "x"))
}

func TestCollector_TimeoutBoundsSlowSource(t *testing.T) {
	slow := &mockScraper{name: "slow"}
	slow.On("Scrape", mock.Anything, "x").
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded)
	fast := &mockScraper{name: "fast"}
	fast.On("Scrape", mock.Anything, "x").Return([]model.RawLead{{Importer: "F"}}, nil)

	start := time.Now()
	leads := NewCollector(50*time.Millisecond, slow, fast).Collect(context.Background(), "x")
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, []string{"F"}, importers(leads))
}

func importers(leads []model.RawLead) []string {
	out := make([]string, 0, len(leads))
	for _, l := range leads {
		out = append(out, l.Importer)
	}
	return out
}
