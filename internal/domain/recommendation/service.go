package recommendation

import (
	"context"
	"log/slog"
	"strings"

	apperrors "github.com/yanqian/skincare-api/pkg/errors"
)

// Service exposes catalog browsing and product recommendations.
type Service interface {
	Recommend(ctx context.Context, req Request) (Response, error)
	Trending(ctx context.Context, limit int) ([]ConcernTrend, error)
	Products(ctx context.Context, filter ProductFilter) ([]ProductView, error)
	Product(ctx context.Context, id string) (ProductView, error)
	CatalogSize() int
}

// TrendStore counts how often concern tags are requested.
type TrendStore interface {
	IncrementConcerns(ctx context.Context, concerns []string) error
	TopConcerns(ctx context.Context, limit int) ([]ConcernTrend, error)
}

type service struct {
	cfg     Config
	catalog *Catalog
	engine  *Engine
	trends  TrendStore
	logger  *slog.Logger
}

// NewService wires up the recommendation domain.
func NewService(cfg Config, catalog *Catalog, trends TrendStore, logger *slog.Logger) Service {
	return &service{
		cfg:     cfg,
		catalog: catalog,
		engine:  NewEngine(catalog),
		trends:  trends,
		logger:  logger.With("component", "recommendation.service"),
	}
}

func (s *service) Recommend(ctx context.Context, req Request) (Response, error) {
	skinType := strings.TrimSpace(req.SkinType)
	if skinType == "" {
		skinType = DefaultSkinType
	}
	healthScore := DefaultHealthScore
	if req.HealthScore != nil {
		healthScore = *req.HealthScore
	}

	result := s.engine.Recommend(skinType, req.Concerns, healthScore)
	s.recordConcerns(ctx, req.Concerns)
	s.logger.Info("recommendations generated",
		"skin_type", skinType,
		"concerns", len(req.Concerns),
		"health_score", healthScore,
		"products", len(result.Products),
		"confidence", result.Confidence,
	)

	return toResponse(result), nil
}

// recordConcerns is best effort: trend analytics never fail a recommendation.
func (s *service) recordConcerns(ctx context.Context, concerns []string) {
	if s.trends == nil || len(concerns) == 0 {
		return
	}
	distinct := make([]string, 0, len(concerns))
	seen := make(map[string]struct{}, len(concerns))
	for _, c := range concerns {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		distinct = append(distinct, c)
	}
	if err := s.trends.IncrementConcerns(ctx, distinct); err != nil {
		s.logger.Warn("record concern trends failed", "error", err)
	}
}

func (s *service) Trending(ctx context.Context, limit int) ([]ConcernTrend, error) {
	if limit <= 0 {
		limit = s.cfg.TrendingLimit
	}
	if s.trends == nil {
		return []ConcernTrend{}, nil
	}
	items, err := s.trends.TopConcerns(ctx, limit)
	if err != nil {
		return nil, apperrors.Wrap("trends_error", "failed to load concern trends", err)
	}
	if items == nil {
		items = []ConcernTrend{}
	}
	return items, nil
}

func (s *service) Products(_ context.Context, filter ProductFilter) ([]ProductView, error) {
	if filter.Category != "" {
		if _, known := routineSlots[filter.Category]; !known {
			return nil, apperrors.Wrap("invalid_input", "unknown product category", nil)
		}
	}
	products := s.catalog.Filter(filter)
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, p.View())
	}
	return views, nil
}

func (s *service) Product(_ context.Context, id string) (ProductView, error) {
	p, err := s.catalog.Find(strings.TrimSpace(id))
	if err != nil {
		return ProductView{}, err
	}
	return p.View(), nil
}

func (s *service) CatalogSize() int {
	return s.catalog.Len()
}

func toResponse(result Result) Response {
	recs := make([]ScoredProductView, 0, len(result.Products))
	for _, sp := range result.Products {
		recs = append(recs, ScoredProductView{
			ProductView: sp.View(),
			Score:       sp.Score,
			Reasons:     nonNil(sp.Reasons),
		})
	}
	return Response{
		Message:         ResultMessage,
		Recommendations: recs,
		Routine:         result.Routine,
		GeneralTips:     nonNil(result.Tips),
		ConfidenceScore: result.Confidence,
		AnalysisBased:   true,
	}
}
