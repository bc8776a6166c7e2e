// Package service implements the detect service
package service

import (
	"context"
	"strings"
	"time"

	"cmsradar/internal/adapters/fetch"
	"cmsradar/internal/core/fingerprint"
	"cmsradar/internal/core/pagemeta"
	perr "cmsradar/internal/platform/errors"
	"cmsradar/internal/platform/logger"
	"cmsradar/internal/services/detect/domain"
	dirdom "cmsradar/internal/services/directory/domain"

	"github.com/google/uuid"
)

// recent bounds
const (
	DefaultRecent = 20
	MaxRecent     = 100
)

// Config for the detect service
type Config struct {
	Workers       int
	MaxBatch      int
	IncludeScores bool // attach every platform score to each detection
}

// Service implements domain.ServicePort
type Service struct {
	Det   *fingerprint.Detector
	Fetch domain.Fetcher
	Dir   dirdom.LookupPort
	Repo  domain.StorageRepo // nil means detections are not recorded
	Cfg   Config

	log   logger.Logger
	now   func() time.Time
	newID func() uuid.UUID
}

// New constructs a new detect service
func New(det *fingerprint.Detector, ports domain.Ports, repo domain.StorageRepo, cfg Config) *Service {
	if det == nil {
		panic("detect.Service requires a detector")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = 20
	}
	return &Service{
		Det:   det,
		Fetch: ports.Fetcher,
		Dir:   ports.Directory,
		Repo:  repo,
		Cfg:   cfg,
		log:   *logger.Named("detect"),
		now:   time.Now,
		newID: uuid.New,
	}
}

// DetectURL fetches a page and scores it
func (s *Service) DetectURL(ctx context.Context, in domain.DetectURLInput) (domain.Detection, error) {
	if s.Fetch == nil {
		return domain.Detection{}, perr.Unavailablef("page fetching is not configured")
	}
	page, err := s.Fetch.Fetch(ctx, in.URL)
	if err != nil {
		return domain.Detection{}, err
	}
	d := s.analyze(ctx, page.URL, page.Body)
	d.Truncated = page.Truncated
	return d, nil
}

// DetectHTML scores markup without fetching, empty markup is a valid no match
func (s *Service) DetectHTML(ctx context.Context, in domain.DetectHTMLInput) (domain.Detection, error) {
	u := strings.TrimSpace(in.URL)
	if u != "" {
		norm, err := fetch.NormalizeURL(u)
		if err != nil {
			return domain.Detection{}, err
		}
		u = norm
	}
	return s.analyze(ctx, u, in.HTML), nil
}

// analyze runs detection then the optional directory link and record
// neither of those can fail the detection
func (s *Service) analyze(ctx context.Context, url, html string) domain.Detection {
	meta := pagemeta.Extract(html)
	d := domain.Detection{
		URL:        url,
		Indicators: []string{},
		Title:      meta.Title,
		Generator:  meta.Generator,
		CreatedAt:  s.now().UTC(),
	}

	if res, ok := s.Det.Detect(html); ok {
		d.Detected = true
		d.Platform = res.Platform
		d.Confidence = res.Confidence
		d.Indicators = res.Indicators
	} else {
		d.Message = domain.NoMatchMessage
	}
	if s.Cfg.IncludeScores {
		d.Scores = s.Det.Rank(html)
	}

	log := logger.C(ctx).With().Str("component", "detect").Str("url", url).Logger()

	if d.Detected && s.Dir != nil {
		sum, ok, err := s.Dir.LookupByName(ctx, d.Platform)
		switch {
		case err != nil:
			log.Warn().Err(err).Str("platform", d.Platform).Msg("directory lookup failed")
		case ok:
			d.DirectorySlug = sum.Slug
		}
	}

	if s.Repo != nil {
		id := s.newID().String()
		err := s.Repo.Insert(ctx, domain.Record{
			ID:         id,
			URL:        url,
			Detected:   d.Detected,
			Platform:   d.Platform,
			Confidence: d.Confidence,
			Indicators: d.Indicators,
			Title:      d.Title,
			Generator:  d.Generator,
			CreatedAt:  d.CreatedAt,
		})
		if err != nil {
			log.Warn().Err(err).Msg("failed to record detection")
		} else {
			d.ID = id
		}
	}

	log.Debug().Bool("detected", d.Detected).Str("platform", d.Platform).Float64("confidence", d.Confidence).Msg("detection done")
	return d
}

// Recent lists recorded detections, newest first
// limit 0 means DefaultRecent, anything else is clamped to 1..MaxRecent
func (s *Service) Recent(ctx context.Context, limit int) ([]domain.Detection, error) {
	if s.Repo == nil {
		return nil, perr.Unavailablef("detections are not being recorded")
	}
	switch {
	case limit == 0:
		limit = DefaultRecent
	case limit < 1:
		limit = 1
	case limit > MaxRecent:
		limit = MaxRecent
	}

	rows, err := s.Repo.Recent(ctx, limit)
	if err != nil {
		return nil, perr.FromPostgres(err, "list recent detections")
	}
	out := make([]domain.Detection, 0, len(rows))
	for _, r := range rows {
		d := domain.Detection{
			ID:         r.ID,
			URL:        r.URL,
			Detected:   r.Detected,
			Platform:   r.Platform,
			Confidence: r.Confidence,
			Indicators: r.Indicators,
			Title:      r.Title,
			Generator:  r.Generator,
			CreatedAt:  r.CreatedAt.UTC(),
		}
		if d.Indicators == nil {
			d.Indicators = []string{}
		}
		if !d.Detected {
			d.Message = domain.NoMatchMessage
		}
		out = append(out, d)
	}
	return out, nil
}

// Signatures describes the active table
func (s *Service) Signatures() domain.Signatures {
	t := s.Det.Table()
	out := domain.Signatures{
		Version:   t.Version,
		Threshold: fingerprint.Threshold,
		Platforms: make([]domain.SignatureView, 0, len(t.Signatures)),
	}
	for _, sig := range t.Signatures {
		v := domain.SignatureView{Platform: sig.Platform, Indicators: make([]domain.IndicatorView, 0, len(sig.Indicators))}
		for _, ind := range sig.Indicators {
			v.Indicators = append(v.Indicators, domain.IndicatorView{Pattern: ind.Text, Flags: ind.Flags, Weight: ind.Weight})
		}
		out.Platforms = append(out.Platforms, v)
	}
	return out
}
