package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/skincare-api/internal/domain/recommendation"
	"github.com/yanqian/skincare-api/internal/domain/skinanalysis"
	apperrors "github.com/yanqian/skincare-api/pkg/errors"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	recommendSvc recommendation.Service
	analysisSvc  skinanalysis.Service
	logger       *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(recommendSvc recommendation.Service, analysisSvc skinanalysis.Service, logger *slog.Logger) *Handler {
	return &Handler{
		recommendSvc: recommendSvc,
		analysisSvc:  analysisSvc,
		logger:       logger.With("component", "http.handler"),
	}
}

// Recommend returns scored products, a routine and tips. Malformed query
// values are coerced to defaults so the only failure mode is a 500.
// Concern tokens are trimmed and empty ones dropped, so "concerns=" means no
// concerns rather than one empty tag; duplicates are kept.
func (h *Handler) Recommend(c *gin.Context) {
	req := parseRecommendationQuery(c.Request.URL.Query())

	resp, err := h.recommendSvc.Recommend(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "recommendation_failed", internalErrorMessage, err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Trending lists the most requested concern tags.
func (h *Handler) Trending(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	items, err := h.recommendSvc.Trending(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "trends_failed", internalErrorMessage, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"concerns": items})
}

// ListProducts browses the catalog.
func (h *Handler) ListProducts(c *gin.Context) {
	filter := recommendation.ProductFilter{
		Category: recommendation.Category(c.Query("category")),
		SkinType: c.Query("skinType"),
		Concern:  c.Query("concern"),
	}

	products, err := h.recommendSvc.Products(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, domainError(err, "catalog_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "total": len(products)})
}

// GetProduct returns a single catalog product.
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.recommendSvc.Product(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, domainError(err, "catalog_failed"))
		return
	}
	c.JSON(http.StatusOK, product)
}

// DetectFace checks whether the uploaded photo contains a usable face.
func (h *Handler) DetectFace(c *gin.Context) {
	img, httpErr := readImage(c)
	if httpErr != nil {
		abortWithError(c, httpErr)
		return
	}

	resp, err := h.analysisSvc.DetectFace(c.Request.Context(), img)
	if err != nil {
		abortWithError(c, domainError(err, "analysis_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AnalyzeSkin classifies the uploaded photo and attaches recommendations.
func (h *Handler) AnalyzeSkin(c *gin.Context) {
	img, httpErr := readImage(c)
	if httpErr != nil {
		abortWithError(c, httpErr)
		return
	}

	resp, err := h.analysisSvc.AnalyzeSkin(c.Request.Context(), img)
	if err != nil {
		abortWithError(c, domainError(err, "analysis_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Health reports liveness and the loaded catalog size.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "products": h.recommendSvc.CatalogSize()})
}

// domainError maps AppError codes onto HTTP statuses.
func domainError(err error, fallbackCode string) *HTTPError {
	switch {
	case apperrors.IsCode(err, "invalid_input"):
		return NewHTTPError(http.StatusBadRequest, "invalid_request", apperrors.MessageOf(err), err)
	case apperrors.IsCode(err, "not_found"):
		return NewHTTPError(http.StatusNotFound, "not_found", apperrors.MessageOf(err), err)
	default:
		return NewHTTPError(http.StatusInternalServerError, fallbackCode, internalErrorMessage, err)
	}
}
