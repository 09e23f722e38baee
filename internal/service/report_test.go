package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/domain"
	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/repository/mocks"
)

func TestParseRecordFilter(t *testing.T) {
	filter, err := ParseRecordFilter(RecordQuery{
		Type:     domain.ProductTypeProduce,
		DateFrom: "2024-03-01",
		DateTo:   "2024-03-02",
		Product:  "  bana ",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ProductTypeProduce, filter.Type)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local), *filter.From)
	assert.Equal(t, time.Date(2024, 3, 2, 23, 59, 59, 0, time.Local), *filter.To, "data_fim inclui o dia inteiro")
	assert.Equal(t, "bana", filter.ProductName)
}

func TestParseRecordFilter_AllTypes(t *testing.T) {
	for _, q := range []RecordQuery{{}, {Type: domain.ProductTypeAll}} {
		filter, err := ParseRecordFilter(q)
		require.NoError(t, err)
		assert.Empty(t, filter.Type)
		assert.Nil(t, filter.From)
		assert.Nil(t, filter.To)
	}
}

func TestParseRecordFilter_Invalid(t *testing.T) {
	for _, q := range []RecordQuery{
		{Type: "frutas"},
		{DateFrom: "01/03/2024"},
		{DateTo: "2024-13-01"},
	} {
		_, err := ParseRecordFilter(q)
		assert.True(t, IsValidation(err), "query %+v", q)
	}
}

func TestDailySeries(t *testing.T) {
	first := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	stamps := []time.Time{
		time.Date(2024, 3, 1, 8, 0, 0, 0, time.Local),
		time.Date(2024, 3, 1, 23, 59, 0, 0, time.Local),
		time.Date(2024, 3, 3, 12, 0, 0, 0, time.Local),
		time.Date(2024, 2, 28, 12, 0, 0, 0, time.Local), // 区间之外
	}

	series := dailySeries(stamps, first, 3)

	require.Len(t, series, 3)
	assert.Equal(t, "01/03", series[0].Label)
	assert.Equal(t, int64(2), series[0].Count)
	assert.Equal(t, int64(0), series[1].Count)
	assert.Equal(t, "03/03", series[2].Label)
	assert.Equal(t, int64(1), series[2].Count)
}

func TestReportService_ListRecords_NormalizesPage(t *testing.T) {
	products := new(mocks.ProductRepository)
	damages := new(mocks.DamageRepository)
	svc := NewReportService(products, damages)
	ctx := context.Background()

	damages.On("List", ctx, domain.RecordFilter{}, 0, RecordsPerPage).
		Return([]domain.DamageRecord{{ID: 1}}, int64(120), nil).Once()

	page, err := svc.ListRecords(ctx, domain.RecordFilter{}, 0, 0)

	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 3, page.Pages())
	assert.True(t, page.HasNext())
	assert.False(t, page.HasPrev())
	damages.AssertExpectations(t)
}

func TestReportService_ExportRecords_Unpaged(t *testing.T) {
	products := new(mocks.ProductRepository)
	damages := new(mocks.DamageRepository)
	svc := NewReportService(products, damages)
	ctx := context.Background()
	filter := domain.RecordFilter{Type: domain.ProductTypeInternal}

	damages.On("List", ctx, filter, 0, 0).Return([]domain.DamageRecord{{ID: 1}, {ID: 2}}, int64(2), nil).Once()

	records, err := svc.ExportRecords(ctx, filter)

	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestReportService_ListProducts_InvalidType(t *testing.T) {
	svc := NewReportService(new(mocks.ProductRepository), new(mocks.DamageRepository))

	_, err := svc.ListProducts(context.Background(), "frutas", "", 1, 0)

	assert.True(t, IsValidation(err))
}

func TestReportService_Dashboard(t *testing.T) {
	products := new(mocks.ProductRepository)
	damages := new(mocks.DamageRepository)
	svc := NewReportService(products, damages)
	now := time.Date(2024, 3, 10, 15, 30, 0, 0, time.Local)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	today := time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)
	damages.On("Count", ctx, (*time.Time)(nil), (*time.Time)(nil)).Return(int64(40), nil).Once()
	damages.On("Count", ctx, mock.MatchedBy(func(from *time.Time) bool {
		return from != nil && from.Equal(today)
	}), mock.MatchedBy(func(to *time.Time) bool {
		return to != nil && to.Equal(today.AddDate(0, 0, 1))
	})).Return(int64(3), nil).Once()
	damages.On("Count", ctx, mock.MatchedBy(func(from *time.Time) bool {
		return from != nil && from.Equal(now.Add(-WeekWindow))
	}), (*time.Time)(nil)).Return(int64(12), nil).Once()
	damages.On("TopProducts", ctx, TopProductsLimit).Return([]domain.ProductTotals{{Name: "Banana", TotalRecords: 5}}, nil).Once()
	damages.On("Recent", ctx, RecentRecords).Return([]domain.DamageRecord{{ID: 1}}, nil).Once()

	d, err := svc.Dashboard(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(40), d.TotalRecords)
	assert.Equal(t, int64(3), d.TodayRecords)
	assert.Equal(t, int64(12), d.WeekRecords)
	assert.Len(t, d.TopProducts, 1)
	assert.Len(t, d.Recent, 1)
	damages.AssertExpectations(t)
}

func TestReportService_Statistics(t *testing.T) {
	products := new(mocks.ProductRepository)
	damages := new(mocks.DamageRepository)
	svc := NewReportService(products, damages)
	now := time.Date(2024, 3, 30, 9, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return now }
	ctx := context.Background()
	first := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)

	damages.On("TotalsByType", ctx).Return([]domain.TypeTotals{{Type: domain.ProductTypeProduce, TotalRecords: 2}}, nil).Once()
	damages.On("RecordedSince", ctx, mock.MatchedBy(func(since time.Time) bool {
		return since.Equal(first)
	})).Return([]time.Time{now, now.Add(-time.Hour)}, nil).Once()
	damages.On("TopProducts", ctx, TopProductsLimit).Return([]domain.ProductTotals{}, nil).Once()

	stats, err := svc.Statistics(ctx)

	require.NoError(t, err)
	require.Len(t, stats.Daily, SeriesDays)
	assert.Equal(t, "01/03", stats.Daily[0].Label)
	assert.Equal(t, "30/03", stats.Daily[SeriesDays-1].Label)
	assert.Equal(t, int64(2), stats.Daily[SeriesDays-1].Count)
	assert.Len(t, stats.ByType, 1)
}
