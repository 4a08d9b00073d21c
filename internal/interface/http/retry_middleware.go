package http

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/skincare-api/internal/infra/config"
)

const retryBodyLimit = 1 << 20 // 1 MiB

// retrier replays POST requests whose handler answered 5xx. Only bodies up
// to retryBodyLimit are buffered for replay.
type retrier struct {
	next        http.Handler
	maxAttempts int
	baseBackoff time.Duration
	exclude     map[string]struct{}
	logger      *slog.Logger
}

func withRetry(handler http.Handler, cfg config.RetryConfig, logger *slog.Logger) http.Handler {
	if !cfg.Enabled || cfg.MaxAttempts <= 1 {
		return handler
	}
	r := &retrier{
		next:        handler,
		maxAttempts: cfg.MaxAttempts,
		baseBackoff: cfg.BaseBackoff,
		exclude:     make(map[string]struct{}, len(cfg.Exclude)),
		logger:      logger.With("component", "http.retry"),
	}
	for _, path := range cfg.Exclude {
		r.exclude[path] = struct{}{}
	}
	return r
}

func (rt *retrier) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, skip := rt.exclude[r.URL.Path]; skip || r.Method != http.MethodPost {
		rt.next.ServeHTTP(w, r)
		return
	}
	body, replayable, err := bufferBody(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !replayable {
		rt.next.ServeHTTP(w, r)
		return
	}

	for attempt := 1; ; attempt++ {
		rec := rt.attempt(r, body, w)
		if rec.statusCode < http.StatusInternalServerError || attempt == rt.maxAttempts {
			rec.flush()
			return
		}
		rt.logger.Warn("transient failure, retrying request", "path", r.URL.Path, "status", rec.statusCode, "attempt", attempt)

		select {
		case <-r.Context().Done():
			rec.flush()
			return
		case <-time.After(rt.backoff(attempt)):
		}
	}
}

func (rt *retrier) attempt(r *http.Request, body []byte, w http.ResponseWriter) *bufferedResponse {
	rec := newBufferedResponse(w)
	replay := r.Clone(r.Context())
	replay.Body = io.NopCloser(bytes.NewReader(body))
	replay.ContentLength = int64(len(body))
	rt.next.ServeHTTP(rec, replay)
	return rec
}

// backoff doubles the base delay after every failed attempt.
func (rt *retrier) backoff(failed int) time.Duration {
	return rt.baseBackoff << (failed - 1)
}

// bufferBody reads at most retryBodyLimit+1 bytes. Oversized bodies are
// stitched back onto r.Body and reported as not replayable.
func bufferBody(r *http.Request) ([]byte, bool, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, true, nil
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, retryBodyLimit+1))
	if err != nil {
		return nil, false, err
	}
	if len(data) > retryBodyLimit {
		r.Body = struct {
			io.Reader
			io.Closer
		}{io.MultiReader(bytes.NewReader(data), r.Body), r.Body}
		return nil, false, nil
	}
	_ = r.Body.Close()
	return data, true, nil
}

// bufferedResponse holds one attempt's response until it is known to be final.
type bufferedResponse struct {
	dst        http.ResponseWriter
	header     http.Header
	body       bytes.Buffer
	statusCode int
	wroteHead  bool
}

func newBufferedResponse(dst http.ResponseWriter) *bufferedResponse {
	return &bufferedResponse{dst: dst, header: make(http.Header), statusCode: http.StatusOK}
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) WriteHeader(status int) {
	if b.wroteHead {
		return
	}
	b.statusCode = status
	b.wroteHead = true
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	b.wroteHead = true
	return b.body.Write(p)
}

func (b *bufferedResponse) Flush() {}

func (b *bufferedResponse) flush() {
	dstHeader := b.dst.Header()
	clear(dstHeader)
	for k, values := range b.header {
		dstHeader[k] = append([]string(nil), values...)
	}
	b.dst.WriteHeader(b.statusCode)
	if b.body.Len() > 0 {
		_, _ = b.dst.Write(b.body.Bytes())
	}
}
