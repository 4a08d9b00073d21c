package skinanalysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/skincare-api/internal/domain/recommendation"
	apperrors "github.com/yanqian/skincare-api/pkg/errors"
	"github.com/yanqian/skincare-api/pkg/util"
)

const defaultMaxImageBytes = 10 << 20

var allowedMimeTypes = []string{"image/jpeg", "image/png", "image/webp"}

// Service exposes face detection and skin analysis backed by the ML service.
type Service interface {
	DetectFace(ctx context.Context, img Image) (FaceResponse, error)
	AnalyzeSkin(ctx context.Context, img Image) (SkinResponse, error)
}

// Backend is the remote ML capability. Implementations own transport and timeouts.
type Backend interface {
	DetectFace(ctx context.Context, img Image) (FaceDetection, error)
	AnalyzeSkin(ctx context.Context, img Image) (SkinAnalysis, error)
}

// ImageStorage archives uploaded images.
type ImageStorage interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) (StoredObject, error)
}

type service struct {
	cfg         Config
	backend     Backend
	storage     ImageStorage
	recommender recommendation.Service
	logger      *slog.Logger
	now         func() time.Time
	newID       func() string
}

// NewService wires up the skin analysis domain.
func NewService(cfg Config, backend Backend, storage ImageStorage, recommender recommendation.Service, logger *slog.Logger) Service {
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = defaultMaxImageBytes
	}
	return &service{
		cfg:         cfg,
		backend:     backend,
		storage:     storage,
		recommender: recommender,
		logger:      logger.With("component", "skinanalysis.service"),
		now:         util.NowUTC,
		newID:       func() string { return uuid.NewString() },
	}
}

func (s *service) DetectFace(ctx context.Context, img Image) (FaceResponse, error) {
	if err := s.validateImage(&img); err != nil {
		return FaceResponse{}, err
	}
	id := s.newID()

	detection, err := s.backend.DetectFace(ctx, img)
	if err != nil {
		s.logger.Warn("face detection backend failed, using fallback", "id", id, "error", err)
		detection = fallbackFaceDetection()
	}
	s.logger.Info("face detection completed", "id", id, "face_detected", detection.FaceDetected, "fallback", detection.Fallback)

	return FaceResponse{
		ID:         id,
		Detection:  detection,
		AnalyzedAt: util.FormatRFC3339(s.now()),
	}, nil
}

func (s *service) AnalyzeSkin(ctx context.Context, img Image) (SkinResponse, error) {
	if err := s.validateImage(&img); err != nil {
		return SkinResponse{}, err
	}
	id := s.newID()
	imageKey := s.archive(ctx, id, img)

	analysis, err := s.backend.AnalyzeSkin(ctx, img)
	if err != nil {
		s.logger.Warn("skin analysis backend failed, using fallback", "id", id, "error", err)
		analysis = fallbackSkinAnalysis()
	}
	analysis = normalizeAnalysis(analysis)

	healthScore := analysis.HealthScore
	recs, err := s.recommender.Recommend(ctx, recommendation.Request{
		SkinType:    analysis.SkinType,
		Concerns:    analysis.Concerns,
		HealthScore: &healthScore,
	})
	if err != nil {
		return SkinResponse{}, apperrors.Wrap("recommendation_error", "failed to build recommendations", err)
	}
	s.logger.Info("skin analysis completed",
		"id", id,
		"skin_type", analysis.SkinType,
		"concerns", len(analysis.Concerns),
		"fallback", analysis.Fallback,
	)

	return SkinResponse{
		ID:              id,
		Analysis:        analysis,
		Recommendations: recs,
		ImageKey:        imageKey,
		AnalyzedAt:      util.FormatRFC3339(s.now()),
	}, nil
}

func (s *service) validateImage(img *Image) error {
	if len(img.Data) == 0 {
		return apperrors.Wrap("invalid_input", "image cannot be empty", nil)
	}
	if int64(len(img.Data)) > s.cfg.MaxImageBytes {
		return apperrors.Wrap("invalid_input", fmt.Sprintf("image exceeds %d bytes", s.cfg.MaxImageBytes), nil)
	}
	mime := strings.ToLower(strings.TrimSpace(strings.SplitN(img.MimeType, ";", 2)[0]))
	if mime == "image/jpg" {
		mime = "image/jpeg"
	}
	if !slices.Contains(allowedMimeTypes, mime) {
		return apperrors.Wrap("invalid_input", "image must be jpeg, png or webp", nil)
	}
	img.MimeType = mime
	return nil
}

// archive stores the upload when enabled; failures only cost us the copy.
func (s *service) archive(ctx context.Context, id string, img Image) string {
	if !s.cfg.ArchiveImages || s.storage == nil {
		return ""
	}
	key := path.Join("analyses", s.now().Format("2006/01/02"), id+extensionFor(img.MimeType))
	obj, err := s.storage.Put(ctx, key, img.Data, img.MimeType)
	if err != nil {
		s.logger.Warn("archive analysis image failed", "id", id, "error", err)
		return ""
	}
	return obj.Key
}

func extensionFor(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func fallbackFaceDetection() FaceDetection {
	return FaceDetection{
		FaceDetected: true,
		FaceCount:    1,
		Confidence:   0,
		Message:      "Face detection unavailable, continuing without verification",
		Fallback:     true,
	}
}

func fallbackSkinAnalysis() SkinAnalysis {
	return SkinAnalysis{
		SkinType:    recommendation.DefaultSkinType,
		Concerns:    []string{},
		HealthScore: recommendation.DefaultHealthScore,
		Conditions:  []Condition{},
		Message:     "Skin analysis unavailable, showing general recommendations",
		Fallback:    true,
	}
}

func normalizeAnalysis(a SkinAnalysis) SkinAnalysis {
	a.SkinType = strings.ToLower(strings.TrimSpace(a.SkinType))
	if a.SkinType == "" {
		a.SkinType = recommendation.DefaultSkinType
	}
	concerns := make([]string, 0, len(a.Concerns))
	for _, c := range a.Concerns {
		if clean := strings.TrimSpace(c); clean != "" {
			concerns = append(concerns, clean)
		}
	}
	a.Concerns = concerns
	if math.IsNaN(a.HealthScore) || math.IsInf(a.HealthScore, 0) {
		a.HealthScore = recommendation.DefaultHealthScore
	}
	if a.Conditions == nil {
		a.Conditions = []Condition{}
	}
	return a
}
