package http

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/skincare-api/internal/infra/config"
)

func TestRateLimitMiddleware_RejectsBurstOverflow(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 2}
	server := NewRouter(cfg, NewHandler(&stubRecommender{}, &stubAnalyzer{}, newTestLogger()))

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, performGet(server, "/healthz").Code)
	}
	rec := performGet(server, "/healthz")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "rate_limit_exceeded", decodeErrorBody(t, rec.Body.Bytes())["code"])
}

func TestIPRateLimiter_EvictsIdleVisitors(t *testing.T) {
	limiter := newIPRateLimiter(config.RateLimitConfig{RequestsPerMinute: 60, Burst: 1})
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	require.True(t, limiter.allow("10.0.0.1"))
	require.False(t, limiter.allow("10.0.0.1"))

	now = now.Add(10 * time.Minute)
	require.True(t, limiter.allow("10.0.0.2"))
	require.NotContains(t, limiter.visitors, "10.0.0.1")
}

func TestWithRetry_RetriesServerErrors(t *testing.T) {
	attempts := 0
	var bodies []string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		data, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(data))
		if attempts == 1 {
			http.Error(w, "temporary", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("ok"))
	})
	handler := withRetry(inner, config.RetryConfig{Enabled: true, MaxAttempts: 3, BaseBackoff: time.Millisecond}, newTestLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis/skin", bytes.NewBufferString("payload"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, 2, attempts)
	require.Equal(t, []string{"payload", "payload"}, bodies)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestWithRetry_SkipsGetAndExcludedPaths(t *testing.T) {
	attempts := 0
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	})
	handler := withRetry(inner, config.RetryConfig{
		Enabled:     true,
		MaxAttempts: 3,
		BaseBackoff: time.Millisecond,
		Exclude:     []string{"/api/v1/analysis/face"},
	}, newTestLogger())

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/recommendations", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/analysis/face", bytes.NewBufferString("x")))
	require.Equal(t, 2, attempts)
}

func TestWithRetry_StreamsLargeBodiesOnce(t *testing.T) {
	attempts := 0
	large := bytes.Repeat([]byte("a"), retryBodyLimit+10)
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.Len(t, data, len(large))
		w.WriteHeader(http.StatusInternalServerError)
	})
	handler := withRetry(inner, config.RetryConfig{Enabled: true, MaxAttempts: 3, BaseBackoff: time.Millisecond}, newTestLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/analysis/skin", bytes.NewReader(large)))
	require.Equal(t, 1, attempts)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSplitConcerns(t *testing.T) {
	require.Equal(t, []string{}, splitConcerns(""))
	require.Equal(t, []string{}, splitConcerns(" , ,"))
	require.Equal(t, []string{"acne", "acne", "dryness"}, splitConcerns("acne, acne,,dryness "))
}

func TestParseHealthScore(t *testing.T) {
	require.Nil(t, parseHealthScore(""))
	require.Nil(t, parseHealthScore("high"))
	require.Nil(t, parseHealthScore("NaN"))
	require.Nil(t, parseHealthScore("-Inf"))

	v := parseHealthScore(" 1.4 ")
	require.NotNil(t, v)
	require.Equal(t, 1.4, *v)
}

func TestDecodeImagePayload(t *testing.T) {
	mime, data, err := decodeImagePayload("data:image/webp;base64,aGVsbG8=")
	require.NoError(t, err)
	require.Equal(t, "image/webp", mime)
	require.Equal(t, []byte("hello"), data)

	mime, data, err = decodeImagePayload("aGVsbG8")
	require.NoError(t, err)
	require.Empty(t, mime)
	require.Equal(t, []byte("hello"), data)

	_, _, err = decodeImagePayload("data:image/png,rawbytes")
	require.Error(t, err)
}

func TestResolveOrigin(t *testing.T) {
	require.Equal(t, "*", resolveOrigin("https://x.example.com", nil))
	require.Equal(t, "https://b.example.com", resolveOrigin("https://b.example.com", []string{"https://a.example.com", "https://b.example.com"}))
	require.Equal(t, "https://a.example.com", resolveOrigin("https://evil.example.com", []string{"https://a.example.com"}))
}
