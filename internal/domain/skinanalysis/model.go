package skinanalysis

import (
	"github.com/yanqian/skincare-api/internal/domain/recommendation"
)

// Image is an uploaded photo awaiting analysis.
type Image struct {
	Filename string
	MimeType string
	Data     []byte
}

// FaceDetection is the backend's verdict on whether a usable face is present.
type FaceDetection struct {
	FaceDetected bool    `json:"face_detected"`
	FaceCount    int     `json:"face_count"`
	Confidence   float64 `json:"confidence"`
	Message      string  `json:"message,omitempty"`
	Fallback     bool    `json:"fallback"`
}

// Condition is one classified skin condition.
type Condition struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	Severity   string  `json:"severity,omitempty"`
}

// SkinAnalysis is the structured output of the skin classifier.
type SkinAnalysis struct {
	SkinType    string      `json:"skin_type"`
	Concerns    []string    `json:"concerns"`
	HealthScore float64     `json:"health_score"`
	Conditions  []Condition `json:"conditions"`
	Message     string      `json:"message,omitempty"`
	Fallback    bool        `json:"fallback"`
}

// FaceResponse is returned by the face detection endpoint.
type FaceResponse struct {
	ID         string        `json:"id"`
	Detection  FaceDetection `json:"detection"`
	AnalyzedAt string        `json:"analyzed_at"`
}

// SkinResponse bundles the analysis with recommendations derived from it.
type SkinResponse struct {
	ID              string                  `json:"id"`
	Analysis        SkinAnalysis            `json:"analysis"`
	Recommendations recommendation.Response `json:"recommendations"`
	ImageKey        string                  `json:"image_key,omitempty"`
	AnalyzedAt      string                  `json:"analyzed_at"`
}

// StoredObject describes an archived image.
type StoredObject struct {
	Key      string
	Size     int64
	MimeType string
	ETag     string
}

// Config controls input limits for the analysis domain.
type Config struct {
	MaxImageBytes int64
	ArchiveImages bool
}
