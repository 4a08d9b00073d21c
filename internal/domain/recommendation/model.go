package recommendation

import (
	"github.com/shopspring/decimal"
)

// Category is the fixed product taxonomy used by routine assembly.
type Category string

const (
	CategoryCleanser    Category = "cleanser"
	CategorySerum       Category = "serum"
	CategoryMoisturizer Category = "moisturizer"
	CategorySunscreen   Category = "sunscreen"
	CategoryTreatment   Category = "treatment"
)

const (
	// DefaultSkinType is applied when the caller omits a skin type.
	DefaultSkinType = "combination"
	// DefaultHealthScore is applied when the caller omits or mangles the health score.
	DefaultHealthScore = 0.7
	// WildcardSkinType on a product matches every requested skin type.
	WildcardSkinType = "all"

	// ResultMessage is echoed in every successful recommendation payload.
	ResultMessage = "Enhanced recommendations generated"
)

// Product is a catalog entry. Catalog products are never mutated after load.
type Product struct {
	ID                       string          `yaml:"id" validate:"required"`
	Name                     string          `yaml:"name" validate:"required"`
	Brand                    string          `yaml:"brand" validate:"required"`
	Description              string          `yaml:"description"`
	Price                    decimal.Decimal `yaml:"price"`
	Category                 Category        `yaml:"category" validate:"oneof=cleanser serum moisturizer sunscreen treatment"`
	Ingredients              []string        `yaml:"ingredients" validate:"dive,required,lowercase"`
	SkinTypes                []string        `yaml:"skinType" validate:"min=1,dive,required"`
	Concerns                 []string        `yaml:"concerns" validate:"dive,required"`
	DermatologistRecommended bool            `yaml:"dermatologistRecommended"`
	Rating                   float64         `yaml:"rating" validate:"gte=0,lte=5"`
}

// ScoredProduct is a product annotated with its relevance for one request.
type ScoredProduct struct {
	Product
	Score   float64
	Reasons []string
}

// RoutineStep is one slot of a morning or evening routine.
type RoutineStep struct {
	Step         int      `json:"step"`
	Product      string   `json:"product"`
	Category     Category `json:"category"`
	Instructions string   `json:"instructions"`
}

// Routine groups recommended products by time of day.
type Routine struct {
	Morning []RoutineStep `json:"morning"`
	Evening []RoutineStep `json:"evening"`
}

// Result is the pure engine output for a single request.
type Result struct {
	Products   []ScoredProduct
	Routine    Routine
	Tips       []string
	Confidence float64
}

// Request captures the recommendation inputs after transport parsing.
// A nil HealthScore means the caller did not supply a usable value.
type Request struct {
	SkinType    string
	Concerns    []string
	HealthScore *float64
}

// Response is serialized back to API consumers.
type Response struct {
	Message         string              `json:"message"`
	Recommendations []ScoredProductView `json:"recommendations"`
	Routine         Routine             `json:"skincare_routine"`
	GeneralTips     []string            `json:"general_tips"`
	ConfidenceScore float64             `json:"confidence_score"`
	AnalysisBased   bool                `json:"analysis_based"`
}

// ProductView is the wire representation of a catalog product.
type ProductView struct {
	ID                       string   `json:"id"`
	Name                     string   `json:"name"`
	Brand                    string   `json:"brand"`
	Price                    float64  `json:"price"`
	Category                 Category `json:"category"`
	Description              string   `json:"description"`
	Ingredients              []string `json:"ingredients"`
	SkinType                 []string `json:"skinType"`
	Concerns                 []string `json:"concerns"`
	DermatologistRecommended bool     `json:"dermatologistRecommended"`
	Rating                   float64  `json:"rating"`
}

// ScoredProductView adds scoring metadata to ProductView.
type ScoredProductView struct {
	ProductView
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
}

// ProductFilter narrows catalog listings. Empty fields match everything.
type ProductFilter struct {
	Category Category
	SkinType string
	Concern  string
}

// ConcernTrend is a frequently requested concern tag.
type ConcernTrend struct {
	Concern string `json:"concern"`
	Count   int64  `json:"count"`
}

// Config holds runtime knobs for the recommendation service.
type Config struct {
	TrendingLimit int
}
