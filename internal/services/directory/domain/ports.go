package domain

import "context"

// ServicePort is the directory read and import contract
type ServicePort interface {
	List(ctx context.Context, in ListInput) ([]CMS, error)
	GetBySlug(ctx context.Context, slug string) (CMS, error)
	Compare(ctx context.Context, in CompareInput) ([]CMS, error)
	Tags(ctx context.Context) ([]string, error)
	Import(ctx context.Context, in ImportInput, actor string) (ImportResult, error)
}

// LookupPort resolves a platform name to a published entry
// ok is false when the directory has no such entry
type LookupPort interface {
	LookupByName(ctx context.Context, name string) (s Summary, ok bool, err error)
}
