package http

import (
	"encoding/base64"
	"errors"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/skincare-api/internal/domain/recommendation"
	"github.com/yanqian/skincare-api/internal/domain/skinanalysis"
)

// maxUploadBytes caps request bodies on the analysis routes; the domain
// enforces the configured per-image limit after decoding.
const maxUploadBytes = 32 << 20

type imageUploadRequest struct {
	Image    string `json:"image" binding:"required"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
}

func parseRecommendationQuery(q url.Values) recommendation.Request {
	return recommendation.Request{
		SkinType:    strings.TrimSpace(q.Get("skinType")),
		Concerns:    splitConcerns(q.Get("concerns")),
		HealthScore: parseHealthScore(q.Get("healthScore")),
	}
}

// splitConcerns keeps duplicates; they weigh into scoring.
func splitConcerns(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseHealthScore(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// readImage accepts a multipart "image" field or a JSON body carrying
// base64 (optionally as a data URL).
func readImage(c *gin.Context) (skinanalysis.Image, *HTTPError) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	var (
		img skinanalysis.Image
		err error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		img, err = readMultipartImage(c)
	} else {
		img, err = readJSONImage(c)
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return skinanalysis.Image{}, NewHTTPError(http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", err)
		}
		return skinanalysis.Image{}, NewHTTPError(http.StatusBadRequest, "invalid_request", err.Error(), err)
	}
	if img.MimeType == "" || img.MimeType == "application/octet-stream" {
		img.MimeType = http.DetectContentType(img.Data)
	}
	return img, nil
}

func readMultipartImage(c *gin.Context) (skinanalysis.Image, error) {
	header, err := c.FormFile("image")
	if err != nil {
		return skinanalysis.Image{}, err
	}
	file, err := header.Open()
	if err != nil {
		return skinanalysis.Image{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return skinanalysis.Image{}, err
	}
	return skinanalysis.Image{
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Data:     data,
	}, nil
}

func readJSONImage(c *gin.Context) (skinanalysis.Image, error) {
	var req imageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return skinanalysis.Image{}, err
	}
	mime, data, err := decodeImagePayload(req.Image)
	if err != nil {
		return skinanalysis.Image{}, err
	}
	if req.MimeType != "" {
		mime = req.MimeType
	}
	return skinanalysis.Image{Filename: req.Filename, MimeType: mime, Data: data}, nil
}

// decodeImagePayload handles "data:<mime>;base64,<payload>" and bare base64.
func decodeImagePayload(raw string) (string, []byte, error) {
	raw = strings.TrimSpace(raw)
	var mime string
	if rest, ok := strings.CutPrefix(raw, "data:"); ok {
		meta, payload, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(meta, ";base64") {
			return "", nil, errors.New("image data URL must be base64 encoded")
		}
		mime = strings.TrimSuffix(meta, ";base64")
		raw = payload
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(raw)
	}
	if err != nil {
		return "", nil, errors.New("image is not valid base64")
	}
	return mime, data, nil
}
