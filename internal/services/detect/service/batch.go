package service

import (
	"context"
	"sync"

	perr "cmsradar/internal/platform/errors"
	"cmsradar/internal/services/detect/domain"
)

// DetectBatch detects up to Cfg.MaxBatch pages with Cfg.Workers in flight
// a failing page is reported on its own line and never fails the batch
func (s *Service) DetectBatch(ctx context.Context, in domain.DetectBatchInput) (domain.BatchResult, error) {
	if len(in.URLs) == 0 {
		return domain.BatchResult{}, perr.WithField(perr.Validationf("urls must contain at least 1 item"), "urls")
	}
	if len(in.URLs) > s.Cfg.MaxBatch {
		return domain.BatchResult{}, perr.WithField(perr.Validationf("urls must contain at most %d items", s.Cfg.MaxBatch), "urls")
	}

	items := make([]domain.BatchItem, len(in.URLs))
	sem := make(chan struct{}, s.Cfg.Workers)
	wg := sync.WaitGroup{}

	for i, u := range in.URLs {
		items[i].URL = u
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, u string) {
			defer func() { <-sem; wg.Done() }()
			d, err := s.DetectURL(ctx, domain.DetectURLInput{URL: u})
			if err != nil {
				w := perr.WireFrom(err)
				items[i].Error = &w
				return
			}
			items[i].Detection = &d
		}(i, u)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return domain.BatchResult{}, err
	}

	res := domain.BatchResult{Items: items}
	for _, it := range items {
		switch {
		case it.Error != nil:
			res.Failed++
		case it.Detection.Detected:
			res.Detected++
		}
	}
	return res, nil
}
