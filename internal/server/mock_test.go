package server

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/importer-intel/internal/model"
	"github.com/sells-group/importer-intel/internal/research"
)

type mockResearcher struct {
	mock.Mock
}

func (m *mockResearcher) SearchImporters(ctx context.Context, f research.Filters) ([]model.ImporterSummary, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ImporterSummary), args.Error(1)
}

func (m *mockResearcher) SearchSimilar(ctx context.Context, query string) []model.ImporterSummary {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]model.ImporterSummary)
}

type mockDetailer struct {
	mock.Mock
}

func (m *mockDetailer) FetchDetail(ctx context.Context, name string) (model.DetailedImporterRecord, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(model.DetailedImporterRecord), args.Error(1)
}
