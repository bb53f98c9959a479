package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/golang/geo/r2"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/importer-intel/internal/alerts"
	"github.com/sells-group/importer-intel/internal/geomap"
	"github.com/sells-group/importer-intel/internal/model"
	"github.com/sells-group/importer-intel/internal/record"
	"github.com/sells-group/importer-intel/internal/search"
	"github.com/sells-group/importer-intel/internal/store"
)

type fixture struct {
	session  *Session
	research *mockResearcher
	detail   *mockDetailer
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	r := &mockResearcher{}
	d := &mockDetailer{}
	s := NewSession(search.New(r), record.New(), d, alerts.NewService(store.NewMemory()))
	return fixture{session: s, research: r, detail: d}
}

func fullRecord(name string) model.DetailedImporterRecord {
	return model.DetailedImporterRecord{
		Name:             name,
		Information:      "Importer of furniture.",
		ShipmentActivity: "Monthly arrivals.",
		ShipmentCounts:   model.ShipmentCounts{LastMonth: "3", LastQuarter: "9", LastYear: "40"},
		RiskAssessment:   model.RiskAssessment{FinancialStability: "Stable"},
		TopTradePartners: []model.TradePartner{{Country: "China", TradeVolume: "High"}, {Country: "USA", TradeVolume: "Low"}},
		TopCommodityFlows: []model.CommodityFlow{
			{Name: "Sofas", Percentage: "60%"},
		},
	}
}

func (f fixture) searchReturns(names ...string) {
	var list []model.ImporterSummary
	for _, n := range names {
		list = append(list, model.ImporterSummary{Name: n, Location: "Miami, FL", PrimaryCommodities: "Furniture"})
	}
	f.research.On("SearchImporters", mock.Anything, mock.Anything).Return(list, nil)
	f.research.On("SearchSimilar", mock.Anything, mock.Anything).Return(nil)
}

func TestSelect_LoadsFullRecord(t *testing.T) {
	f := newFixture(t)
	f.searchReturns("Acme")
	f.detail.On("FetchDetail", mock.Anything, "Acme").Return(fullRecord("Acme"), nil)

	_, err := f.session.Search(context.Background(), search.Query{Query: "furniture"})
	require.NoError(t, err)

	snap, err := f.session.Select(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Equal(t, record.PhaseLoading, snap.Phase)
	assert.Equal(t, "Miami, FL", snap.Record.Location)

	f.session.Wait()
	snap, ok := f.session.Record()
	require.True(t, ok)
	assert.Equal(t, record.PhaseFull, snap.Phase)
	assert.Equal(t, "Importer of furniture.", snap.Record.Information)
	assert.Equal(t, "Miami, FL", snap.Record.Location, "blank location carried over")
}

func TestSelect_Unknown(t *testing.T) {
	f := newFixture(t)
	f.searchReturns("Acme")
	_, err := f.session.Search(context.Background(), search.Query{Query: "furniture"})
	require.NoError(t, err)

	_, err = f.session.Select(context.Background(), "Nobody")
	assert.ErrorIs(t, err, ErrUnknownImporter)
	_, ok := f.session.Record()
	assert.False(t, ok)
}

func TestSelect_FetchErrorAnnotatesRecord(t *testing.T) {
	f := newFixture(t)
	f.searchReturns("Acme")
	f.detail.On("FetchDetail", mock.Anything, "Acme").
		Return(model.DetailedImporterRecord{}, eris.New("quota exceeded"))

	_, err := f.session.Search(context.Background(), search.Query{Query: "furniture"})
	require.NoError(t, err)
	_, err = f.session.Select(context.Background(), "Acme")
	require.NoError(t, err)
	f.session.Wait()

	snap, _ := f.session.Record()
	assert.Equal(t, record.PhaseErrored, snap.Phase)
	assert.Equal(t, "Failed to load details: Failed to retrieve data. quota exceeded", snap.Record.Information)
	assert.Equal(t, "Furniture", snap.Record.Commodities)
}

func TestSelect_DetachedFromRequestContext(t *testing.T) {
	f := newFixture(t)
	f.searchReturns("Acme")
	f.detail.On("FetchDetail", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), "Acme").
		Return(fullRecord("Acme"), nil)

	_, err := f.session.Search(context.Background(), search.Query{Query: "furniture"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	_, err = f.session.Select(ctx, "Acme")
	cancel()
	require.NoError(t, err)
	f.session.Wait()

	snap, _ := f.session.Record()
	assert.Equal(t, record.PhaseFull, snap.Phase)
}

func TestSearch_ClearsSelectedRecord(t *testing.T) {
	f := newFixture(t)
	f.searchReturns("Acme")
	f.detail.On("FetchDetail", mock.Anything, "Acme").Return(fullRecord("Acme"), nil)

	_, err := f.session.Search(context.Background(), search.Query{Query: "furniture"})
	require.NoError(t, err)
	_, err = f.session.Select(context.Background(), "Acme")
	require.NoError(t, err)
	f.session.Wait()

	_, err = f.session.SearchFor(context.Background(), "Acme")
	require.NoError(t, err)
	_, ok := f.session.Record()
	assert.False(t, ok)

	res, ok := f.session.Results()
	require.True(t, ok)
	assert.Equal(t, "Acme", res.Query.Query)
	assert.Empty(t, res.Query.City)
}

func TestSearch_EmptyKeepsRecord(t *testing.T) {
	f := newFixture(t)
	f.searchReturns("Acme")
	f.detail.On("FetchDetail", mock.Anything, "Acme").Return(fullRecord("Acme"), nil)

	_, err := f.session.Search(context.Background(), search.Query{Query: "furniture"})
	require.NoError(t, err)
	_, err = f.session.Select(context.Background(), "Acme")
	require.NoError(t, err)
	f.session.Wait()

	_, err = f.session.Search(context.Background(), search.Query{})
	assert.ErrorIs(t, err, search.ErrEmptyQuery)
	_, ok := f.session.Record()
	assert.True(t, ok)
}

func TestRefresh(t *testing.T) {
	f := newFixture(t)
	f.searchReturns("Acme")
	updated := fullRecord("Acme")
	updated.Information = "Updated."
	f.detail.On("FetchDetail", mock.Anything, "Acme").Return(fullRecord("Acme"), nil).Once()
	f.detail.On("FetchDetail", mock.Anything, "Acme").Return(updated, nil).Once()

	_, err := f.session.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrRefreshBusy, "nothing selected")

	_, err = f.session.Search(context.Background(), search.Query{Query: "furniture"})
	require.NoError(t, err)
	_, err = f.session.Select(context.Background(), "Acme")
	require.NoError(t, err)
	f.session.Wait()

	snap, err := f.session.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Refreshing)
	f.session.Wait()

	snap, _ = f.session.Record()
	assert.False(t, snap.Refreshing)
	assert.Equal(t, "Updated.", snap.Record.Information)
}

func TestRefresh_FailureKeepsRecord(t *testing.T) {
	f := newFixture(t)
	f.searchReturns("Acme")
	f.detail.On("FetchDetail", mock.Anything, "Acme").Return(fullRecord("Acme"), nil).Once()
	f.detail.On("FetchDetail", mock.Anything, "Acme").Return(model.DetailedImporterRecord{}, eris.New("timeout")).Once()

	_, err := f.session.Search(context.Background(), search.Query{Query: "furniture"})
	require.NoError(t, err)
	_, err = f.session.Select(context.Background(), "Acme")
	require.NoError(t, err)
	f.session.Wait()

	_, err = f.session.Refresh(context.Background())
	require.NoError(t, err)
	f.session.Wait()

	snap, _ := f.session.Record()
	assert.Equal(t, record.PhaseFull, snap.Phase)
	assert.Equal(t, "Importer of furniture.", snap.Record.Information)
	assert.Equal(t, "Failed to retrieve data. timeout", snap.LastError)
}

func TestClickMap_SearchesCountry(t *testing.T) {
	f := newFixture(t)
	f.research.On("SearchImporters", mock.Anything, search.Query{Query: "furniture"}).
		Return([]model.ImporterSummary{{Name: "Acme"}}, nil)
	f.research.On("SearchImporters", mock.Anything, search.Query{Query: "China"}).
		Return([]model.ImporterSummary{{Name: "Sino Imports"}}, nil)
	f.research.On("SearchSimilar", mock.Anything, mock.Anything).Return(nil)
	f.detail.On("FetchDetail", mock.Anything, "Acme").Return(fullRecord("Acme"), nil)

	_, _, err := f.session.ClickMap(context.Background(), r2.Point{}, geomap.Container{})
	assert.ErrorIs(t, err, ErrNoRecord)

	_, err = f.session.Search(context.Background(), search.Query{Query: "furniture"})
	require.NoError(t, err)
	_, err = f.session.Select(context.Background(), "Acme")
	require.NoError(t, err)
	f.session.Wait()

	box := geomap.Container{Width: 960, Height: 500}
	_, hit, err := f.session.ClickMap(context.Background(), r2.Point{X: 5, Y: 5}, box)
	require.NoError(t, err)
	assert.False(t, hit, "ocean")

	res, hit, err := f.session.ClickMap(context.Background(), r2.Point{X: 700, Y: 200}, box)
	require.NoError(t, err)
	assert.True(t, hit)
	require.Len(t, res.Primary, 1)
	assert.Equal(t, "Sino Imports", res.Primary[0].Name)

	_, ok := f.session.Record()
	assert.False(t, ok, "the record closes on a country search")
}

func TestSubscribe(t *testing.T) {
	f := newFixture(t)
	n, err := f.session.Subscribe(context.Background(), "Acme", "ops@acme.com")
	require.NoError(t, err)
	assert.Equal(t, "You are now subscribed to alerts for Acme.", n.Message)

	unread, err := f.session.Alerts().Unread(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, unread)
}

// scriptedDetailer hands every fetch to the test, which answers it.
type scriptedDetailer struct {
	calls chan fetchCall
}

type fetchCall struct {
	name  string
	reply chan fetchReply
}

type fetchReply struct {
	rec model.DetailedImporterRecord
	err error
}

func (d *scriptedDetailer) FetchDetail(_ context.Context, name string) (model.DetailedImporterRecord, error) {
	c := fetchCall{name: name, reply: make(chan fetchReply, 1)}
	d.calls <- c
	r := <-c.reply
	return r.rec, r.err
}

func TestSelect_LateFailureFromEarlierSelectionOfSameName(t *testing.T) {
	r := &mockResearcher{}
	d := &scriptedDetailer{calls: make(chan fetchCall)}
	s := NewSession(search.New(r), record.New(), d, alerts.NewService(store.NewMemory()))
	fixture{session: s, research: r}.searchReturns("Acme", "Beta")

	_, err := s.Search(context.Background(), search.Query{Query: "furniture"})
	require.NoError(t, err)

	selectAndReceive := func(name string) fetchCall {
		_, err := s.Select(context.Background(), name)
		require.NoError(t, err)
		c := <-d.calls
		require.Equal(t, name, c.name)
		return c
	}
	first := selectAndReceive("Acme")
	beta := selectAndReceive("Beta")
	second := selectAndReceive("Acme")

	second.reply <- fetchReply{rec: fullRecord("Acme")}
	require.Eventually(t, func() bool {
		snap, _ := s.Record()
		return snap.Phase == record.PhaseFull
	}, time.Second, 5*time.Millisecond)

	first.reply <- fetchReply{err: eris.New("timeout")}
	beta.reply <- fetchReply{err: eris.New("timeout")}
	s.Wait()

	snap, ok := s.Record()
	require.True(t, ok)
	assert.Equal(t, "Acme", snap.Key)
	assert.Equal(t, record.PhaseFull, snap.Phase)
	assert.Equal(t, "Importer of furniture.", snap.Record.Information)
	assert.Empty(t, snap.LastError)
}
