package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/JimmysRanch/126-sub001/internal/cache"
	"github.com/JimmysRanch/126-sub001/internal/domain"
	"github.com/JimmysRanch/126-sub001/internal/drill"
	"github.com/JimmysRanch/126-sub001/internal/filters"
	"github.com/JimmysRanch/126-sub001/internal/metrics"
	"github.com/JimmysRanch/126-sub001/internal/normalize"
	"github.com/JimmysRanch/126-sub001/internal/reports"
	"github.com/JimmysRanch/126-sub001/internal/store"
	"github.com/JimmysRanch/126-sub001/internal/xid"
)

var (
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)

// emptyVersion stands in for the dataset version of a business that has
// never imported data. Its reports render with zero values.
const emptyVersion = "empty"

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Options struct {
	DefaultBusinessID string
	CacheTTL          time.Duration
	Location          *time.Location
	Now               func() time.Time
}

type Service struct {
	repo              store.Repository
	reportCache       cache.ReportCache
	engine            *reports.Engine
	defaultBusinessID string
	cacheTTL          time.Duration
	loc               *time.Location
	now               func() time.Time
}

func New(repo store.Repository, reportCache cache.ReportCache, engine *reports.Engine, opts Options) *Service {
	if reportCache == nil {
		reportCache = cache.NoopReportCache{}
	}
	if engine == nil {
		engine = reports.NewEngine(reports.DefaultCostParams())
	}
	if opts.DefaultBusinessID == "" {
		opts.DefaultBusinessID = "main-salon"
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Minute
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		repo:              repo,
		reportCache:       reportCache,
		engine:            engine,
		defaultBusinessID: opts.DefaultBusinessID,
		cacheTTL:          opts.CacheTTL,
		loc:               opts.Location,
		now:               opts.Now,
	}
}

func (s *Service) ListReports() []domain.ReportSummary {
	ids := reports.IDs()
	out := make([]domain.ReportSummary, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.ReportSummary{ID: id, Title: reports.Title(id)})
	}
	return out
}

// DefaultFilters returns the opening filter of a report together with its
// query-string encoding.
func (s *Service) DefaultFilters(reportID string) (domain.FilterDefaults, error) {
	if !reports.Known(reportID) {
		return domain.FilterDefaults{}, reports.ErrUnknownReport
	}
	state := filters.DefaultState(reportID)
	return domain.FilterDefaults{
		ReportID: reportID,
		State:    state,
		Query:    filters.Encode(state).Encode(),
	}, nil
}

func (s *Service) Report(ctx context.Context, businessID string, reportID string, state domain.FilterState) (domain.ReportData, error) {
	if !reports.Known(reportID) {
		return domain.ReportData{}, reports.ErrUnknownReport
	}
	businessID = s.businessID(businessID)

	version, err := s.repo.DatasetVersion(ctx, businessID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		version = emptyVersion
	case err != nil:
		return domain.ReportData{}, err
	}

	now := s.now().In(s.loc)
	key := cache.ReportKey(businessID, version, filters.Hash(state), reportID, now.Format("2006-01-02"))
	if cached, ok, err := s.reportCache.Get(ctx, key); err != nil {
		log.Printf("[service] WARN: report cache read failed key=%s: %v", key, err)
	} else if ok {
		return *cached, nil
	}

	ds, loadedVersion, err := s.dataset(ctx, businessID)
	if err != nil {
		return domain.ReportData{}, err
	}

	data, err := s.engine.Build(reportID, ds, filters.Resolve(state, now, s.loc))
	if err != nil {
		return domain.ReportData{}, err
	}

	// An import between the version probe and the load leaves the computed
	// report under a stale key; skip caching it.
	if loadedVersion == version {
		if err := s.reportCache.Set(ctx, key, &data, cache.TTLUntilEndOfDay(now, s.cacheTTL)); err != nil {
			log.Printf("[service] WARN: report cache write failed key=%s: %v", key, err)
		}
	}
	return data, nil
}

func (s *Service) Drill(ctx context.Context, businessID string, req domain.DrillRequest) (domain.DrillResult, error) {
	if len(req.RowTypes) == 0 {
		return domain.DrillResult{}, ErrInvalidInput
	}
	ds, _, err := s.dataset(ctx, s.businessID(businessID))
	if err != nil {
		return domain.DrillResult{}, err
	}
	return drill.Resolve(req, ds), nil
}

func (s *Service) MetricDefinitions() []domain.MetricDefinition {
	return metrics.All()
}

func (s *Service) MetricReferenceMarkdown() string {
	return metrics.ReferenceMarkdown()
}

func (s *Service) MetricReferenceHTML() (string, error) {
	return metrics.ReferenceHTML()
}

// ImportDataset replaces the business's raw dataset. Only owners may import.
func (s *Service) ImportDataset(ctx context.Context, businessID string, raw domain.RawDataset) (domain.ImportResponse, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleOwner {
		return domain.ImportResponse{}, ErrForbidden
	}
	if err := validateRaw(raw); err != nil {
		return domain.ImportResponse{}, err
	}

	businessID = s.businessID(businessID)
	record := domain.DatasetImport{
		ID:         xid.New("imp"),
		BusinessID: businessID,
		Version:    xid.New("ds"),
		ImportedBy: actor.Username,
		Counts:     store.Counts(raw),
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.ReplaceDataset(ctx, businessID, raw, record); err != nil {
		return domain.ImportResponse{}, err
	}

	log.Printf("[service] dataset imported business=%s version=%s by=%s appointments=%d transactions=%d",
		businessID, record.Version, actor.Username, record.Counts.Appointments, record.Counts.Transactions)
	if err := s.reportCache.Invalidate(ctx, businessID); err != nil {
		log.Printf("[service] WARN: report cache invalidation failed business=%s: %v", businessID, err)
	}

	return domain.ImportResponse{
		BusinessID: businessID,
		Version:    record.Version,
		ImportID:   record.ID,
		Counts:     record.Counts,
	}, nil
}

func (s *Service) ListImports(ctx context.Context, businessID string, limit int) ([]domain.DatasetImport, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || (actor.Role != domain.RoleOwner && actor.Role != domain.RoleManager) {
		return nil, ErrForbidden
	}
	return s.repo.ListImports(ctx, s.businessID(businessID), limit)
}

func (s *Service) dataset(ctx context.Context, businessID string) (domain.Dataset, string, error) {
	raw, version, err := s.repo.LoadDataset(ctx, businessID)
	if errors.Is(err, store.ErrNotFound) {
		return normalize.Normalize(domain.RawDataset{}), emptyVersion, nil
	}
	if err != nil {
		return domain.Dataset{}, "", err
	}
	return normalize.Normalize(raw), version, nil
}

func (s *Service) businessID(businessID string) string {
	businessID = strings.TrimSpace(businessID)
	if businessID == "" {
		return s.defaultBusinessID
	}
	return businessID
}

// validateRaw rejects imports that carry no records or records without ids.
// Field values are not checked here; the normalizer tolerates malformed ones.
func validateRaw(raw domain.RawDataset) error {
	counts := store.Counts(raw)
	if counts.Appointments+counts.Transactions+counts.Clients+counts.Staff+counts.Inventory+counts.Messages == 0 {
		return fmt.Errorf("%w: dataset is empty", store.ErrInvalidDataset)
	}
	for i, appt := range raw.Appointments {
		if strings.TrimSpace(appt.ID) == "" {
			return fmt.Errorf("%w: appointment %d has no id", store.ErrInvalidDataset, i)
		}
	}
	for i, tx := range raw.Transactions {
		if strings.TrimSpace(tx.ID) == "" {
			return fmt.Errorf("%w: transaction %d has no id", store.ErrInvalidDataset, i)
		}
	}
	for i, client := range raw.Clients {
		if strings.TrimSpace(client.ID) == "" {
			return fmt.Errorf("%w: client %d has no id", store.ErrInvalidDataset, i)
		}
	}
	for i, staff := range raw.Staff {
		if strings.TrimSpace(staff.ID) == "" {
			return fmt.Errorf("%w: staff %d has no id", store.ErrInvalidDataset, i)
		}
	}
	return nil
}
