package domain

import (
	"context"

	"cmsradar/internal/adapters/fetch"
	dirdom "cmsradar/internal/services/directory/domain"
)

// ServicePort is the external port for detection
type ServicePort interface {
	DetectURL(ctx context.Context, in DetectURLInput) (Detection, error)
	DetectHTML(ctx context.Context, in DetectHTMLInput) (Detection, error)
	DetectBatch(ctx context.Context, in DetectBatchInput) (BatchResult, error)
	Recent(ctx context.Context, limit int) ([]Detection, error)
	Signatures() Signatures
}

// Fetcher downloads a page, fetch.Client is the production one
type Fetcher interface {
	Fetch(ctx context.Context, raw string) (fetch.Page, error)
}

// StorageRepo persists detections
type StorageRepo interface {
	Insert(ctx context.Context, r Record) error
	Recent(ctx context.Context, limit int) ([]Record, error)
}

// Ports are the collaborators detect may be wired with, all optional
// without a Fetcher only HTML detection works
// without a Directory no slug is attached
type Ports struct {
	Directory dirdom.LookupPort
	Fetcher   Fetcher
}
