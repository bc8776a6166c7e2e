// Package domain holds the CMS directory types and ports
package domain

import "time"

// CMS is a published directory entry
type CMS struct {
	ID          string    `json:"id"           example:"0b0c5b6e-3f0a-4a7e-9d8f-0c1f6a9b2e11"`
	Slug        string    `json:"slug"         example:"wordpress"`
	Name        string    `json:"name"         example:"WordPress"`
	Description string    `json:"description"  example:"Open source publishing platform"`
	Website     string    `json:"website"      example:"https://wordpress.org"`
	ImageURL    string    `json:"image_url,omitempty"`
	MarketShare float64   `json:"market_share" example:"43.1"`
	Tags        []string  `json:"tags"`
	Featured    bool      `json:"featured"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListInput filters the published listing
type ListInput struct {
	Tag      string
	Featured *bool
}

// CompareInput names two to four entries by slug
type CompareInput struct {
	Slugs []string `json:"slugs" example:"wordpress,drupal"`
}

// ImportInput carries a CSV document, the first row is a header
type ImportInput struct {
	CSV string `json:"csv" validate:"nonblank"`
}

// ImportRowError explains why one CSV line was not imported
type ImportRowError struct {
	Row    int    `json:"row"    example:"3"`
	Name   string `json:"name,omitempty" example:"Ghost"`
	Reason string `json:"reason" example:"market_share must be a number between 0 and 100"`
}

// Import statuses
const (
	ImportProcessing = "processing"
	ImportCompleted  = "completed"
	ImportFailed     = "failed"
)

// ImportResult reports an import job
type ImportResult struct {
	ID        string           `json:"id"`
	Status    string           `json:"status"    example:"completed"`
	Total     int              `json:"total"     example:"12"`
	Processed int              `json:"processed" example:"11"`
	Failed    int              `json:"failed"    example:"1"`
	Failures  []ImportRowError `json:"failures"`
}

// Summary is the slice of an entry other services link to
type Summary struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}
