// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package feed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/postcraft/internal/access"
	"github.com/tomtom215/postcraft/internal/balance"
	"github.com/tomtom215/postcraft/internal/cache"
	"github.com/tomtom215/postcraft/internal/content"
	"github.com/tomtom215/postcraft/internal/metrics"
	"github.com/tomtom215/postcraft/internal/models"
	"github.com/tomtom215/postcraft/internal/validation"
)

// Annotator sets per-user engagement flags on feed items.
type Annotator interface {
	Annotate(ctx context.Context, items []models.AnnotatedItem, userID string) error
}

// balancedPage is one window of the balanced order before per-user decoration.
type balancedPage struct {
	items       []models.ContentItem
	total       int64
	unavailable []models.SourceKind
}

// Assembler builds feed pages from a content store.
type Assembler struct {
	store     content.Store
	gate      *access.Gate
	annotator Annotator
	cfg       Config
	logger    zerolog.Logger

	breakers map[models.SourceKind]*sourceBreaker
	retries  map[models.SourceKind]retrypolicy.RetryPolicy[content.SourceResult]

	pages  *cache.Cache
	flight singleflight.Group
}

// NewAssembler creates an assembler. annotator may be nil, in which case
// items carry no engagement flags. Call Close when done.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewAssembler(store content.Store, gate *access.Gate, annotator Annotator, cfg Config, logger zerolog.Logger) *Assembler {
	cfg = cfg.withDefaults()
	if gate == nil {
		gate = access.NewGate("")
	}

	a := &Assembler{
		store:     store,
		gate:      gate,
		annotator: annotator,
		cfg:       cfg,
		logger:    logger.With().Str("component", "feed").Logger(),
		breakers:  make(map[models.SourceKind]*sourceBreaker, len(models.AllSourceKinds)),
		retries:   make(map[models.SourceKind]retrypolicy.RetryPolicy[content.SourceResult], len(models.AllSourceKinds)),
	}
	for _, kind := range models.AllSourceKinds {
		a.breakers[kind] = newSourceBreaker(kind, cfg, a.logger)
		a.retries[kind] = newRetryPolicy(kind, cfg)
	}
	if cfg.CacheTTL > 0 {
		a.pages = cache.New("feed_pages", cfg.CacheTTL)
	}
	return a
}

// Close releases the page cache.
func (a *Assembler) Close() {
	if a.pages != nil {
		a.pages.Close()
	}
}

// GetPage returns one page of the balanced feed for requester. It never
// changes engagement state or counters.
func (a *Assembler) GetPage(ctx context.Context, filter models.FeedFilter, requester models.UserContext) (*models.FeedPage, error) {
	start := time.Now()

	if err := validateFilter(&filter); err != nil {
		metrics.RecordFeedBuild("invalid", 0, time.Since(start))
		return nil, err
	}
	filter = normalizeFilter(filter)

	bp, err := a.balanced(ctx, filter)
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrFeedUnavailable) {
			outcome = "unavailable"
		}
		metrics.RecordFeedBuild(outcome, 0, time.Since(start))
		return nil, err
	}

	items := a.gate.Annotate(bp.items, requester)
	if a.annotator != nil && !requester.IsAnonymous() {
		if err := a.annotator.Annotate(ctx, items, requester.UserID); err != nil {
			a.logger.Warn().Err(err).
				Str("user_id", requester.UserID).
				Msg("Engagement annotation failed, serving page without flags")
		}
	}

	page := &models.FeedPage{
		Items:                 items,
		Page:                  filter.Page,
		PageSize:              filter.PageSize,
		TotalEstimate:         bp.total,
		CategoriesRepresented: balance.Categories(bp.items),
		Partial:               len(bp.unavailable) > 0,
		UnavailableSources:    bp.unavailable,
	}

	outcome := "complete"
	if page.Partial {
		outcome = "partial"
	}
	metrics.RecordFeedBuild(outcome, len(page.CategoriesRepresented), time.Since(start))
	return page, nil
}

// SourceHealth reports breaker state for every source kind.
func (a *Assembler) SourceHealth() []SourceHealth {
	out := make([]SourceHealth, 0, len(models.AllSourceKinds))
	for _, kind := range models.AllSourceKinds {
		out = append(out, a.breakers[kind].health())
	}
	return out
}

// balanced returns the window for filter, from the cache when enabled.
func (a *Assembler) balanced(ctx context.Context, filter models.FeedFilter) (*balancedPage, error) {
	if a.pages == nil {
		return a.build(ctx, filter)
	}

	key := cache.GenerateKey("feed", filter)
	if v, ok := a.pages.Get(key); ok {
		if bp, ok := v.(*balancedPage); ok {
			return bp, nil
		}
	}

	// The shared build outlives any single caller; source timeouts bound it.
	ch := a.flight.DoChan(key, func() (interface{}, error) {
		bp, err := a.build(context.WithoutCancel(ctx), filter)
		if err == nil && len(bp.unavailable) == 0 {
			a.pages.Set(key, bp)
		}
		return bp, err
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("build feed page: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*balancedPage), nil
	}
}

// build fetches every requested source and interleaves the requested window.
func (a *Assembler) build(ctx context.Context, filter models.FeedFilter) (*balancedPage, error) {
	kinds := filter.Kinds()
	offset := filter.Offset()
	limit := offset + filter.PageSize

	q := content.SourceQuery{
		Category:         filter.Category,
		SearchTerm:       filter.SearchTerm,
		ActiveOnly:       true,
		PremiumOnly:      filter.PremiumOnly,
		Sort:             filter.Sort,
		PerCategoryLimit: limit,
	}

	outcomes := a.fetchAll(ctx, kinds, q)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("build feed page: %w", err)
	}

	bp := &balancedPage{}
	sources := make([][]models.ContentItem, 0, len(outcomes))
	var failures []error
	for _, o := range outcomes {
		if o.err != nil {
			bp.unavailable = append(bp.unavailable, o.kind)
			failures = append(failures, o.err)
			a.logger.Warn().Err(o.err.Err).
				Str("source", o.kind.String()).
				Str("reason", o.err.Reason).
				Msg("Content source unavailable, serving partial feed")
			continue
		}
		sources = append(sources, restrict(o.kind, o.result.Items, q))
		bp.total += o.result.Total
	}

	if len(bp.unavailable) == len(kinds) {
		return nil, fmt.Errorf("%w: %w", ErrFeedUnavailable, errors.Join(failures...))
	}

	pools := buildPools(sources, len(kinds) == 1, limit)
	bp.items = balance.Interleave(pools, offset, filter.PageSize)
	return bp, nil
}

// restrict re-applies the query to a source's answer so a store cannot widen
// the match, reorder items or exceed the per-category cap.
func restrict(kind models.SourceKind, items []models.ContentItem, q content.SourceQuery) []models.ContentItem {
	out := make([]models.ContentItem, 0, len(items))
	for i := range items {
		if items[i].SourceKind == kind && content.Matches(&items[i], q) {
			out = append(out, items[i])
		}
	}
	models.SortItems(out, q.Sort, q.SearchTerm)
	return content.LimitPerCategory(out, q.PerCategoryLimit)
}

func validateFilter(f *models.FeedFilter) error {
	if verr := validation.ValidateStruct(f); verr != nil {
		return &QueryError{Validation: verr}
	}
	// offset+pageSize must fit in an int.
	if f.Page-1 > (math.MaxInt-f.PageSize)/f.PageSize {
		return &QueryError{Reason: fmt.Sprintf("page %d is out of range for page size %d", f.Page, f.PageSize)}
	}
	for _, k := range f.ContentTypes {
		if !k.Valid() {
			return &QueryError{Reason: fmt.Sprintf("unknown content type %d", int(k))}
		}
	}
	return nil
}

// normalizeFilter canonicalises equivalent filters so they share cache keys.
func normalizeFilter(f models.FeedFilter) models.FeedFilter {
	f.SearchTerm = models.NormalizeSearchTerm(f.SearchTerm)
	f.Sort = f.Sort.Resolve(f.SearchTerm)
	if len(f.ContentTypes) > 0 {
		f.ContentTypes = f.Kinds()
	}
	return f
}
