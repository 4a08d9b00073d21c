package recommendation

import (
	"cmp"
	"fmt"
	"slices"
)

const (
	maxRecommendations = 6

	skinTypeWeight      = 3.0
	concernWeight       = 4.0
	barrierWeight       = 2.0
	dermatologistWeight = 1.0
	ratingWeight        = 2.0
	ratingBaseline      = 4.0

	barrierHealthThreshold = 0.6

	minConfidence        = 0.3
	maxConfidence        = 1.0
	confidencePerConcern = 0.1
)

var barrierIngredients = []string{"ceramides", "hyaluronic acid", "aloe vera"}

// Engine scores a catalog against a skin profile. It holds no mutable state
// and is safe for concurrent use.
type Engine struct {
	catalog *Catalog
}

// NewEngine binds the engine to a catalog.
func NewEngine(catalog *Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// Recommend ranks the catalog and assembles routine, tips and confidence.
// Repeated concern tags are scored, tipped and counted once per occurrence.
func (e *Engine) Recommend(skinType string, concerns []string, healthScore float64) Result {
	scored := make([]ScoredProduct, 0, e.catalog.Len())
	for _, p := range e.catalog.products {
		scored = append(scored, scoreProduct(p, skinType, concerns, healthScore))
	}
	slices.SortStableFunc(scored, func(a, b ScoredProduct) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if len(scored) > maxRecommendations {
		scored = scored[:maxRecommendations]
	}

	return Result{
		Products:   scored,
		Routine:    buildRoutine(scored),
		Tips:       buildTips(healthScore, concerns),
		Confidence: confidence(healthScore, len(concerns)),
	}
}

func scoreProduct(p Product, skinType string, concerns []string, healthScore float64) ScoredProduct {
	sp := ScoredProduct{Product: cloneProduct(p), Reasons: []string{}}

	if p.SuitsSkinType(skinType) {
		sp.Score += skinTypeWeight
		sp.Reasons = append(sp.Reasons, fmt.Sprintf("Suitable for %s skin", skinType))
	}
	for _, concern := range concerns {
		if slices.Contains(p.Concerns, concern) {
			sp.Score += concernWeight
			sp.Reasons = append(sp.Reasons, fmt.Sprintf("Addresses %s", concern))
		}
	}
	if healthScore < barrierHealthThreshold && hasBarrierIngredient(p.Ingredients) {
		sp.Score += barrierWeight
		sp.Reasons = append(sp.Reasons, "Barrier-repair ingredients")
	}
	if p.DermatologistRecommended {
		sp.Score += dermatologistWeight
		sp.Reasons = append(sp.Reasons, "Dermatologist recommended")
	}
	sp.Score += (p.Rating - ratingBaseline) * ratingWeight
	return sp
}

func hasBarrierIngredient(ingredients []string) bool {
	for _, ing := range ingredients {
		if slices.Contains(barrierIngredients, ing) {
			return true
		}
	}
	return false
}

func confidence(healthScore float64, concernCount int) float64 {
	raw := healthScore + confidencePerConcern*float64(concernCount)
	return min(max(raw, minConfidence), maxConfidence)
}
