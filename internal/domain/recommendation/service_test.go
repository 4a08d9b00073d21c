package recommendation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/skincare-api/pkg/errors"
)

func TestServiceRecommendAppliesDefaults(t *testing.T) {
	trends := &stubTrendStore{}
	svc := NewService(Config{TrendingLimit: 5}, mustDefaultCatalog(t), trends, newTestLogger())

	resp, err := svc.Recommend(context.Background(), Request{})
	require.NoError(t, err)
	require.Equal(t, ResultMessage, resp.Message)
	require.True(t, resp.AnalysisBased)
	require.InDelta(t, DefaultHealthScore, resp.ConfidenceScore, scoreDelta)
	require.Len(t, resp.Recommendations, maxRecommendations)
	require.Equal(t, manageTips, resp.GeneralTips)
	require.Contains(t, resp.Recommendations[0].Reasons, "Suitable for combination skin")
	require.Zero(t, trends.increments)
}

func TestServiceRecommendRecordsDistinctConcerns(t *testing.T) {
	trends := &stubTrendStore{}
	svc := NewService(Config{}, mustDefaultCatalog(t), trends, newTestLogger())
	score := 0.9

	resp, err := svc.Recommend(context.Background(), Request{
		SkinType:    "oily",
		Concerns:    []string{"acne", "redness", "acne"},
		HealthScore: &score,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"acne", "redness"}, trends.last)
	require.Equal(t, 1.0, resp.ConfidenceScore)
	require.Equal(t, []string{
		maintainTips[0], maintainTips[1], maintainTips[2], maintainTips[3],
		concernTips["acne"][0], concernTips["acne"][1],
	}, resp.GeneralTips)
}

func TestServiceRecommendIgnoresTrendFailures(t *testing.T) {
	trends := &stubTrendStore{err: errors.New("valkey down")}
	svc := NewService(Config{}, mustDefaultCatalog(t), trends, newTestLogger())

	resp, err := svc.Recommend(context.Background(), Request{Concerns: []string{"acne"}})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Recommendations)
}

func TestServiceTrending(t *testing.T) {
	trends := &stubTrendStore{top: []ConcernTrend{{Concern: "acne", Count: 3}}}
	svc := NewService(Config{TrendingLimit: 7}, mustDefaultCatalog(t), trends, newTestLogger())

	items, err := svc.Trending(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, 7, trends.lastLimit)
	require.Equal(t, []ConcernTrend{{Concern: "acne", Count: 3}}, items)

	trends.err = errors.New("boom")
	_, err = svc.Trending(context.Background(), 2)
	require.True(t, apperrors.IsCode(err, "trends_error"))

	noStore := NewService(Config{}, mustDefaultCatalog(t), nil, newTestLogger())
	items, err = noStore.Trending(context.Background(), 3)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestServiceProducts(t *testing.T) {
	svc := NewService(Config{}, mustDefaultCatalog(t), nil, newTestLogger())
	ctx := context.Background()

	all, err := svc.Products(ctx, ProductFilter{})
	require.NoError(t, err)
	require.Len(t, all, svc.CatalogSize())

	_, err = svc.Products(ctx, ProductFilter{Category: "toner"})
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	view, err := svc.Product(ctx, " eltamd-uv-clear ")
	require.NoError(t, err)
	require.Equal(t, 41.0, view.Price)
	require.Equal(t, CategorySunscreen, view.Category)

	_, err = svc.Product(ctx, "missing")
	require.True(t, apperrors.IsCode(err, "not_found"))
}

type stubTrendStore struct {
	increments int
	last       []string
	lastLimit  int
	top        []ConcernTrend
	err        error
}

func (s *stubTrendStore) IncrementConcerns(_ context.Context, concerns []string) error {
	s.increments++
	s.last = concerns
	return s.err
}

func (s *stubTrendStore) TopConcerns(_ context.Context, limit int) ([]ConcernTrend, error) {
	s.lastLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	return s.top, nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
