package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"strconv"
	"strings"

	"cmsradar/internal/core/slug"
	perr "cmsradar/internal/platform/errors"
	"cmsradar/internal/services/directory/domain"
	"cmsradar/internal/services/directory/repo"

	"github.com/google/uuid"
)

// MaxImportRows bounds one import document
const MaxImportRows = 5000

// insertAttempts covers serialization failures and deadlocks
const insertAttempts = 3

// record is a parsed CSV line
type record struct {
	line int
	ins  repo.InsertCMS
}

// parseCSV reads name, description, website, market_share, tags...
// the first row is a header and is skipped
// line level problems become row errors, a broken document is an error
func parseCSV(r io.Reader) ([]record, []domain.ImportRowError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, perr.WithField(perr.Validationf("csv is empty"), "csv")
		}
		return nil, nil, perr.WithField(perr.Wrap(err, perr.ErrorCodeValidation, "csv header is unreadable"), "csv")
	}

	var (
		recs  []record
		fails []domain.ImportRowError
	)
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, nil, perr.WithField(perr.Wrapf(err, perr.ErrorCodeValidation, "csv is malformed at line %d", pe.Line), "csv")
			}
			return nil, nil, perr.WithField(perr.Wrap(err, perr.ErrorCodeValidation, "csv is unreadable"), "csv")
		}
		line, _ := cr.FieldPos(0)
		if len(recs)+len(fails) >= MaxImportRows {
			return nil, nil, perr.WithField(perr.Validationf("csv has more than %d rows", MaxImportRows), "csv")
		}
		if blank(fields) {
			continue
		}
		ins, reason := toInsert(fields)
		if reason != "" {
			fails = append(fails, domain.ImportRowError{Row: line, Name: strings.TrimSpace(fields[0]), Reason: reason})
			continue
		}
		recs = append(recs, record{line: line, ins: ins})
	}
	return recs, fails, nil
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// toInsert validates one line, reason is empty when it is importable
func toInsert(fields []string) (repo.InsertCMS, string) {
	get := func(i int) string {
		if i < len(fields) {
			return strings.TrimSpace(fields[i])
		}
		return ""
	}

	name := get(0)
	if name == "" {
		return repo.InsertCMS{}, "name is required"
	}
	sl := slug.Make(name)
	if sl == "" {
		return repo.InsertCMS{}, "name has no letters or digits to build a slug from"
	}

	website := get(2)
	if website != "" {
		u, err := url.Parse(website)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return repo.InsertCMS{}, "website must be an http or https URL"
		}
	}

	share := 0.0
	if s := get(3); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 || v > 100 {
			return repo.InsertCMS{}, "market_share must be a number between 0 and 100"
		}
		share = v
	}

	tags := []string{}
	seen := map[string]bool{}
	for i := 4; i < len(fields); i++ {
		t := strings.TrimSpace(fields[i])
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}

	return repo.InsertCMS{
		Slug:        sl,
		Name:        name,
		Description: get(1),
		Website:     website,
		MarketShare: share,
		Tags:        tags,
	}, ""
}

// Import stores every valid CSV line as an unpublished entry
// each line is inserted on its own so one bad line never sinks the rest
func (s *Svc) Import(ctx context.Context, in domain.ImportInput, actor string) (domain.ImportResult, error) {
	recs, fails, err := parseCSV(strings.NewReader(in.CSV))
	if err != nil {
		return domain.ImportResult{}, err
	}

	id := s.newID()
	total := len(recs) + len(fails)
	if err := s.Repo.StartImport(ctx, id, actor, total); err != nil {
		return domain.ImportResult{}, perr.FromPostgres(err, "start import")
	}
	log := s.log.With().Str("import_id", id.String()).Str("actor", actor).Logger()
	log.Info().Int("rows", total).Msg("cms import started")

	processed := 0
	for _, rec := range recs {
		rec.ins.ID = s.newID()
		err := s.insert(ctx, rec.ins)
		switch {
		case err == nil:
			processed++
		case ctx.Err() != nil:
			_ = s.finish(context.WithoutCancel(ctx), id, domain.ImportFailed, processed, fails)
			return domain.ImportResult{}, ctx.Err()
		case perr.IsDuplicateKey(err):
			fails = append(fails, domain.ImportRowError{Row: rec.line, Name: rec.ins.Name, Reason: "a cms with this name or slug already exists"})
		default:
			log.Warn().Err(err).Int("row", rec.line).Msg("cms import row failed")
			fails = append(fails, domain.ImportRowError{Row: rec.line, Name: rec.ins.Name, Reason: "could not be stored"})
		}
	}

	if err := s.finish(ctx, id, domain.ImportCompleted, processed, fails); err != nil {
		return domain.ImportResult{}, err
	}
	log.Info().Int("processed", processed).Int("failed", len(fails)).Msg("cms import completed")

	if fails == nil {
		fails = []domain.ImportRowError{}
	}
	return domain.ImportResult{
		ID:        id.String(),
		Status:    domain.ImportCompleted,
		Total:     total,
		Processed: processed,
		Failed:    len(fails),
		Failures:  fails,
	}, nil
}

func (s *Svc) insert(ctx context.Context, in repo.InsertCMS) error {
	var err error
	for range insertAttempts {
		if err = s.Repo.Insert(ctx, in); err == nil || !perr.IsRetryable(err) {
			return err
		}
	}
	return err
}

func (s *Svc) finish(ctx context.Context, id uuid.UUID, status string, processed int, fails []domain.ImportRowError) error {
	raw, err := json.Marshal(fails)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "encode import failures")
	}
	err = s.Repo.FinishImport(ctx, repo.FinishImport{
		ID:        id,
		Status:    status,
		Processed: processed,
		Failed:    len(fails),
		Failures:  raw,
	})
	if err != nil {
		return perr.FromPostgres(err, "finish import")
	}
	return nil
}
