package skinanalysis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/skincare-api/internal/domain/recommendation"
	apperrors "github.com/yanqian/skincare-api/pkg/errors"
)

func TestAnalyzeSkinBuildsRecommendationsFromBackend(t *testing.T) {
	backend := &stubBackend{analysis: SkinAnalysis{
		SkinType:    " Oily ",
		Concerns:    []string{"acne", " ", "dark_spots"},
		HealthScore: 0.52,
		Conditions:  []Condition{{Name: "acne", Confidence: 0.81, Severity: "mild"}},
	}}
	recommender := &stubRecommender{}
	storage := &stubStorage{}
	svc := newServiceUnderTest(Config{ArchiveImages: true}, backend, storage, recommender)

	resp, err := svc.AnalyzeSkin(context.Background(), Image{Filename: "me.png", MimeType: "image/png", Data: []byte("png")})
	require.NoError(t, err)
	require.Equal(t, "fixed-id", resp.ID)
	require.Equal(t, "2024-07-01T09:00:00Z", resp.AnalyzedAt)
	require.False(t, resp.Analysis.Fallback)
	require.Equal(t, "oily", resp.Analysis.SkinType)
	require.Equal(t, []string{"acne", "dark_spots"}, resp.Analysis.Concerns)

	require.Equal(t, "oily", recommender.last.SkinType)
	require.Equal(t, []string{"acne", "dark_spots"}, recommender.last.Concerns)
	require.NotNil(t, recommender.last.HealthScore)
	require.Equal(t, 0.52, *recommender.last.HealthScore)

	require.Equal(t, "analyses/2024/07/01/fixed-id.png", resp.ImageKey)
	require.Equal(t, "image/png", storage.lastMime)
	require.Equal(t, "image/png", backend.lastImage.MimeType)
}

func TestAnalyzeSkinFallsBackWhenBackendFails(t *testing.T) {
	backend := &stubBackend{err: errors.New("connection refused")}
	recommender := &stubRecommender{}
	svc := newServiceUnderTest(Config{}, backend, nil, recommender)

	resp, err := svc.AnalyzeSkin(context.Background(), Image{MimeType: "image/jpeg", Data: []byte("jpg")})
	require.NoError(t, err)
	require.True(t, resp.Analysis.Fallback)
	require.Equal(t, recommendation.DefaultSkinType, resp.Analysis.SkinType)
	require.Empty(t, resp.Analysis.Concerns)
	require.Equal(t, recommendation.DefaultHealthScore, *recommender.last.HealthScore)
	require.Empty(t, resp.ImageKey)
}

func TestAnalyzeSkinArchiveFailureIsNotFatal(t *testing.T) {
	storage := &stubStorage{err: errors.New("bucket missing")}
	svc := newServiceUnderTest(Config{ArchiveImages: true}, &stubBackend{analysis: SkinAnalysis{SkinType: "dry", HealthScore: 0.9}}, storage, &stubRecommender{})

	resp, err := svc.AnalyzeSkin(context.Background(), Image{MimeType: "image/webp", Data: []byte("webp")})
	require.NoError(t, err)
	require.Empty(t, resp.ImageKey)
	require.Equal(t, 1, storage.calls)
}

func TestAnalyzeSkinRecommenderError(t *testing.T) {
	svc := newServiceUnderTest(Config{}, &stubBackend{}, nil, &stubRecommender{err: errors.New("boom")})

	_, err := svc.AnalyzeSkin(context.Background(), Image{MimeType: "image/jpeg", Data: []byte("x")})
	require.True(t, apperrors.IsCode(err, "recommendation_error"))
}

func TestDetectFace(t *testing.T) {
	backend := &stubBackend{face: FaceDetection{FaceDetected: true, FaceCount: 2, Confidence: 0.97}}
	svc := newServiceUnderTest(Config{}, backend, nil, &stubRecommender{})

	resp, err := svc.DetectFace(context.Background(), Image{MimeType: "image/jpg", Data: []byte("x")})
	require.NoError(t, err)
	require.Equal(t, 2, resp.Detection.FaceCount)
	require.False(t, resp.Detection.Fallback)
	require.Equal(t, "image/jpeg", backend.lastImage.MimeType)

	backend.err = errors.New("timeout")
	resp, err = svc.DetectFace(context.Background(), Image{MimeType: "image/jpeg", Data: []byte("x")})
	require.NoError(t, err)
	require.True(t, resp.Detection.Fallback)
	require.True(t, resp.Detection.FaceDetected)
}

func TestValidateImage(t *testing.T) {
	svc := newServiceUnderTest(Config{MaxImageBytes: 4}, &stubBackend{}, nil, &stubRecommender{})
	ctx := context.Background()

	tests := []struct {
		name string
		img  Image
	}{
		{"empty", Image{MimeType: "image/png"}},
		{"too large", Image{MimeType: "image/png", Data: []byte("12345")}},
		{"wrong type", Image{MimeType: "application/pdf", Data: []byte("1")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.DetectFace(ctx, tc.img)
			require.True(t, apperrors.IsCode(err, "invalid_input"))
			_, err = svc.AnalyzeSkin(ctx, tc.img)
			require.True(t, apperrors.IsCode(err, "invalid_input"))
		})
	}

	_, err := svc.DetectFace(ctx, Image{MimeType: "image/PNG; charset=binary", Data: []byte("1")})
	require.NoError(t, err)
}

func newServiceUnderTest(cfg Config, backend Backend, storage ImageStorage, recommender recommendation.Service) *service {
	svc := NewService(cfg, backend, storage, recommender, slog.New(slog.NewTextHandler(io.Discard, nil))).(*service)
	svc.now = func() time.Time { return time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC) }
	svc.newID = func() string { return "fixed-id" }
	return svc
}

type stubBackend struct {
	face      FaceDetection
	analysis  SkinAnalysis
	err       error
	lastImage Image
}

func (s *stubBackend) DetectFace(_ context.Context, img Image) (FaceDetection, error) {
	s.lastImage = img
	return s.face, s.err
}

func (s *stubBackend) AnalyzeSkin(_ context.Context, img Image) (SkinAnalysis, error) {
	s.lastImage = img
	return s.analysis, s.err
}

type stubStorage struct {
	calls    int
	lastMime string
	err      error
}

func (s *stubStorage) Put(_ context.Context, key string, data []byte, mimeType string) (StoredObject, error) {
	s.calls++
	s.lastMime = mimeType
	if s.err != nil {
		return StoredObject{}, s.err
	}
	return StoredObject{Key: key, Size: int64(len(data)), MimeType: mimeType}, nil
}

type stubRecommender struct {
	last recommendation.Request
	err  error
}

func (s *stubRecommender) Recommend(_ context.Context, req recommendation.Request) (recommendation.Response, error) {
	s.last = req
	if s.err != nil {
		return recommendation.Response{}, s.err
	}
	return recommendation.Response{Message: recommendation.ResultMessage, AnalysisBased: true}, nil
}

func (s *stubRecommender) Trending(context.Context, int) ([]recommendation.ConcernTrend, error) {
	return nil, nil
}

func (s *stubRecommender) Products(context.Context, recommendation.ProductFilter) ([]recommendation.ProductView, error) {
	return nil, nil
}

func (s *stubRecommender) Product(context.Context, string) (recommendation.ProductView, error) {
	return recommendation.ProductView{}, nil
}

func (s *stubRecommender) CatalogSize() int { return 0 }
