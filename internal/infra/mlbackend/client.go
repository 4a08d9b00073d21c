package mlbackend

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/yanqian/skincare-api/internal/domain/skinanalysis"
)

const (
	detectFacePath  = "/detect-face"
	analyzeSkinPath = "/analyze-skin"

	maxResponseBytes = 1 << 20
)

// Options configures the backend client.
type Options struct {
	BaseURL          string
	Timeout          time.Duration
	FailureThreshold uint32
	OpenTimeout      time.Duration
	HalfOpenRequests uint32
}

// Client talks to the Flask ML backend over JSON.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	logger     *slog.Logger
}

// NewClient builds a client guarded by a circuit breaker.
func NewClient(opts Options, logger *slog.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = 5
	}
	logger = logger.With("component", "mlbackend.client")
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		httpClient: &http.Client{Timeout: opts.Timeout},
		logger:     logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "ml-backend",
		MaxRequests: opts.HalfOpenRequests,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("ml backend breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		// caller cancellations say nothing about backend health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return c
}

type imagePayload struct {
	Image    string `json:"image"`
	Filename string `json:"filename,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}

type envelope struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
}

type faceWire struct {
	envelope
	FaceDetected bool    `json:"face_detected"`
	FaceCount    int     `json:"face_count"`
	Confidence   float64 `json:"confidence"`
	Message      string  `json:"message"`
}

type skinWire struct {
	envelope
	SkinType    string                   `json:"skin_type"`
	Concerns    []string                 `json:"concerns"`
	HealthScore *float64                 `json:"health_score"`
	Conditions  []skinanalysis.Condition `json:"conditions"`
	Message     string                   `json:"message"`
}

// DetectFace implements skinanalysis.Backend.
func (c *Client) DetectFace(ctx context.Context, img skinanalysis.Image) (skinanalysis.FaceDetection, error) {
	body, err := c.post(ctx, detectFacePath, img)
	if err != nil {
		return skinanalysis.FaceDetection{}, err
	}
	var wire faceWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return skinanalysis.FaceDetection{}, fmt.Errorf("decode face detection: %w", err)
	}
	if err := wire.envelope.err(); err != nil {
		return skinanalysis.FaceDetection{}, err
	}
	return skinanalysis.FaceDetection{
		FaceDetected: wire.FaceDetected,
		FaceCount:    wire.FaceCount,
		Confidence:   wire.Confidence,
		Message:      wire.Message,
	}, nil
}

// AnalyzeSkin implements skinanalysis.Backend.
func (c *Client) AnalyzeSkin(ctx context.Context, img skinanalysis.Image) (skinanalysis.SkinAnalysis, error) {
	body, err := c.post(ctx, analyzeSkinPath, img)
	if err != nil {
		return skinanalysis.SkinAnalysis{}, err
	}
	var wire skinWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return skinanalysis.SkinAnalysis{}, fmt.Errorf("decode skin analysis: %w", err)
	}
	if err := wire.envelope.err(); err != nil {
		return skinanalysis.SkinAnalysis{}, err
	}
	if wire.HealthScore == nil {
		return skinanalysis.SkinAnalysis{}, errors.New("skin analysis missing health_score")
	}
	return skinanalysis.SkinAnalysis{
		SkinType:    wire.SkinType,
		Concerns:    wire.Concerns,
		HealthScore: normalizeHealthScore(*wire.HealthScore),
		Conditions:  wire.Conditions,
		Message:     wire.Message,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, img skinanalysis.Image) ([]byte, error) {
	payload, err := json.Marshal(imagePayload{
		Image:    base64.StdEncoding.EncodeToString(img.Data),
		Filename: img.Filename,
		MimeType: img.MimeType,
	})
	if err != nil {
		return nil, fmt.Errorf("encode ml request: %w", err)
	}

	return c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("build ml request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("ml request failed: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, fmt.Errorf("read ml response: %w", err)
		}
		c.logger.Debug("ml backend call", "path", path, "status", resp.StatusCode, "latency_ms", time.Since(start).Milliseconds())
		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("ml request error: status=%d body=%s", resp.StatusCode, truncate(string(body), 512))
		}
		return body, nil
	})
}

func (e envelope) err() error {
	if e.Success != nil && !*e.Success {
		msg := strings.TrimSpace(e.Error)
		if msg == "" {
			msg = "unspecified failure"
		}
		return fmt.Errorf("ml backend reported failure: %s", msg)
	}
	return nil
}

// normalizeHealthScore accepts both fractions and percentages.
func normalizeHealthScore(v float64) float64 {
	if v > 1 && v <= 100 {
		return v / 100
	}
	return v
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var _ skinanalysis.Backend = (*Client)(nil)
