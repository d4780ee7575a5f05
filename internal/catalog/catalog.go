package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/andresuchdata/salesperf/backend-go/internal/cache"
	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
	"github.com/andresuchdata/salesperf/backend-go/internal/kpi"
	"github.com/andresuchdata/salesperf/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

// Catalog is the validated entry point to stored KPI definitions. Definitions
// are checked when written so evaluation never sees a malformed one.
type Catalog struct {
	repo             repository.KpiRepository
	cache            cache.ReportCache
	billingThreshold float64
}

func New(repo repository.KpiRepository) *Catalog {
	return &Catalog{
		repo:             repo,
		cache:            cache.NewNoopReportCache(),
		billingThreshold: kpi.DefaultBillingThreshold,
	}
}

// WithCache sets the report cache that every catalog write invalidates.
func (c *Catalog) WithCache(rc cache.ReportCache) *Catalog {
	if rc != nil {
		c.cache = rc
	}
	return c
}

// WithBillingThreshold sets the core volume gate used when seeding.
func (c *Catalog) WithBillingThreshold(v float64) *Catalog {
	if v > 0 {
		c.billingThreshold = v
	}
	return c
}

// List returns every definition by display order.
func (c *Catalog) List(ctx context.Context) ([]domain.KpiDefinition, error) {
	defs, err := c.repo.ListKpis(ctx)
	if err != nil {
		return nil, err
	}
	sortDefinitions(defs)
	return defs, nil
}

// Visible returns the active definitions by display order.
func (c *Catalog) Visible(ctx context.Context) ([]domain.KpiDefinition, error) {
	defs, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	out := defs[:0]
	for _, d := range defs {
		if d.Active {
			out = append(out, d)
		}
	}
	return out, nil
}

func (c *Catalog) Get(ctx context.Context, shortKey string) (*domain.KpiDefinition, error) {
	return c.repo.GetKpi(ctx, strings.TrimSpace(shortKey))
}

func (c *Catalog) Create(ctx context.Context, def domain.KpiDefinition) (*domain.KpiDefinition, error) {
	kpi.Normalize(&def)
	if err := kpi.Validate(def); err != nil {
		return nil, err
	}
	if def.DisplayOrder == 0 {
		existing, err := c.repo.ListKpis(ctx)
		if err != nil {
			return nil, err
		}
		for _, d := range existing {
			def.DisplayOrder = max(def.DisplayOrder, d.DisplayOrder)
		}
		def.DisplayOrder++
	}
	if err := c.repo.CreateKpi(ctx, &def); err != nil {
		return nil, err
	}
	c.invalidate(ctx)
	log.Info().Str("kpi", def.ShortKey).Msg("kpi definition created")
	return &def, nil
}

// Update replaces the definition stored under shortKey. The short key itself is immutable.
func (c *Catalog) Update(ctx context.Context, shortKey string, def domain.KpiDefinition) (*domain.KpiDefinition, error) {
	current, err := c.repo.GetKpi(ctx, strings.TrimSpace(shortKey))
	if err != nil {
		return nil, err
	}
	def.ID = current.ID
	def.ShortKey = current.ShortKey
	def.CreatedAt = current.CreatedAt
	kpi.Normalize(&def)
	if err := kpi.Validate(def); err != nil {
		return nil, err
	}
	if err := c.repo.UpdateKpi(ctx, &def); err != nil {
		return nil, err
	}
	c.invalidate(ctx)
	log.Info().Str("kpi", def.ShortKey).Msg("kpi definition updated")
	return &def, nil
}

func (c *Catalog) Delete(ctx context.Context, shortKey string) error {
	if err := c.repo.DeleteKpi(ctx, strings.TrimSpace(shortKey)); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *Catalog) invalidate(ctx context.Context) {
	if err := c.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("catalog: cache invalidation failed")
	}
}

// SeedDefaults inserts every seed definition that is not stored yet and
// returns how many were added.
func (c *Catalog) SeedDefaults(ctx context.Context) (int, error) {
	return c.Import(ctx, kpi.WithBillingThreshold(c.billingThreshold), false)
}

// Import stores defs. Existing short keys are skipped, or replaced when overwrite is set.
func (c *Catalog) Import(ctx context.Context, defs []domain.KpiDefinition, overwrite bool) (int, error) {
	written := 0
	for _, def := range defs {
		_, err := c.Create(ctx, def)
		switch {
		case err == nil:
			written++
		case errors.Is(err, domain.ErrDuplicateShortKey):
			if !overwrite {
				continue
			}
			if _, err := c.Update(ctx, def.ShortKey, def); err != nil {
				return written, fmt.Errorf("overwrite %s: %w", def.ShortKey, err)
			}
			written++
		default:
			return written, fmt.Errorf("import %s: %w", def.ShortKey, err)
		}
	}
	return written, nil
}

func sortDefinitions(defs []domain.KpiDefinition) {
	sort.SliceStable(defs, func(i, j int) bool {
		if defs[i].DisplayOrder != defs[j].DisplayOrder {
			return defs[i].DisplayOrder < defs[j].DisplayOrder
		}
		return defs[i].ShortKey < defs[j].ShortKey
	})
}
