// Package domain holds the detect types and ports
package domain

import (
	"time"

	"cmsradar/internal/core/fingerprint"
	perr "cmsradar/internal/platform/errors"
)

// NoMatchMessage is reported when no platform scores above the threshold
const NoMatchMessage = "could not determine the CMS with confidence"

// DetectURLInput asks for one public page to be fetched and scored
type DetectURLInput struct {
	URL string `json:"url" validate:"nonblank,max=2048" example:"https://example.com"`
}

// DetectHTMLInput scores markup the caller already has
// URL is only echoed back and recorded
type DetectHTMLInput struct {
	HTML string `json:"html"`
	URL  string `json:"url,omitempty" validate:"omitempty,max=2048"`
}

// DetectBatchInput lists pages to detect in one call
type DetectBatchInput struct {
	URLs []string `json:"urls" validate:"required,min=1,dive,nonblank,max=2048"`
}

// Detection is the outcome for one page
type Detection struct {
	ID            string              `json:"id,omitempty"`
	URL           string              `json:"url,omitempty"            example:"https://example.com"`
	Detected      bool                `json:"detected"`
	Platform      string              `json:"platform,omitempty"       example:"WordPress"`
	Confidence    float64             `json:"confidence"               example:"80"`
	Indicators    []string            `json:"indicators"`
	Message       string              `json:"message,omitempty"`
	DirectorySlug string              `json:"directory_slug,omitempty" example:"wordpress"`
	Title         string              `json:"title,omitempty"`
	Generator     string              `json:"generator,omitempty"`
	Truncated     bool                `json:"truncated,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	Scores        []fingerprint.Score `json:"scores,omitempty"`
}

// BatchItem is one line of a batch, exactly one of Detection and Error is set
type BatchItem struct {
	URL       string     `json:"url"`
	Detection *Detection `json:"detection,omitempty"`
	Error     *perr.Wire `json:"error,omitempty"`
}

// BatchResult keeps the order of the request
type BatchResult struct {
	Items    []BatchItem `json:"items"`
	Detected int         `json:"detected"`
	Failed   int         `json:"failed"`
}

// IndicatorView is a compiled indicator as shown to clients
type IndicatorView struct {
	Pattern string  `json:"pattern" example:"wp-content"`
	Flags   string  `json:"flags,omitempty" example:"i"`
	Weight  float64 `json:"weight" example:"0.4"`
}

// SignatureView is one platform of the active table
type SignatureView struct {
	Platform   string          `json:"platform" example:"WordPress"`
	Indicators []IndicatorView `json:"indicators"`
}

// Signatures describes the table detections are scored against
type Signatures struct {
	Version   int             `json:"version"`
	Threshold float64         `json:"threshold" example:"0.3"`
	Platforms []SignatureView `json:"platforms"`
}

// Record is a stored detection
type Record struct {
	ID         string
	URL        string
	Detected   bool
	Platform   string
	Confidence float64
	Indicators []string
	Title      string
	Generator  string
	CreatedAt  time.Time
}
