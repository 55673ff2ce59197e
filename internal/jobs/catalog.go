// Package jobs implements the placement job catalog: recommendations against
// a student profile, embedding-based similar-jobs lookup, and catalog seeding
// from YAML or XLSX files.
package jobs

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/campushq/naitei/internal/models"
	"github.com/campushq/naitei/internal/ranking"
	"github.com/campushq/naitei/internal/similarity"
	"github.com/campushq/naitei/internal/storage"
)

// Catalog serves job recommendations and similarity lookups over the stored
// job set.
type Catalog struct {
	store  storage.Storage
	sim    *similarity.Service
	topK   int
	logger *zap.Logger
}

// NewCatalog creates a catalog. topK bounds how many index matches a
// similar-jobs query retrieves before filtering.
func NewCatalog(store storage.Storage, sim *similarity.Service, topK int, logger *zap.Logger) *Catalog {
	if topK <= 0 {
		topK = 20
	}
	return &Catalog{store: store, sim: sim, topK: topK, logger: logger}
}

// Recommend scores every stored job against the student's skills, applies the
// filters, and returns at most limit recommendations ordered by fit score.
func (c *Catalog) Recommend(ctx context.Context, profile *models.StudentProfile, limit int, filters ranking.Filters) ([]*models.JobRecommendation, error) {
	all, err := c.store.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}

	recs := make([]*models.JobRecommendation, 0, len(all))
	for _, job := range all {
		fit := ranking.ScoreFit(profile.Skills, job.RequiredSkills) * 100
		recs = append(recs, &models.JobRecommendation{
			JobID:    job.ID,
			Title:    job.Title,
			Company:  job.Company,
			FitScore: fit,
			Reason:   ranking.FitReason(fit),
			Location: job.Location,
			JobType:  job.JobType,
			Skills:   job.RequiredSkills,
		})
	}

	ranking.Rank(recs, func(r *models.JobRecommendation) float64 { return r.FitScore })
	recs = ranking.ApplyFilters(recs, filters)
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// SimilarJobs returns jobs ranked by embedding similarity to the reference
// job, excluding the reference itself. Index slots registered under another
// kind, or left stale by a re-seed, are skipped.
func (c *Catalog) SimilarJobs(ctx context.Context, jobID string, limit int) ([]*models.SimilarJob, error) {
	reference, err := c.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	matches, err := c.sim.FindSimilar(ctx, reference.EmbeddingText(), c.topK)
	if err != nil {
		return nil, err
	}

	similar := make([]*models.SimilarJob, 0, len(matches))
	for _, m := range matches {
		ref, err := c.store.ResolveSlot(ctx, m.Slot)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("resolving slot %d: %w", m.Slot, err)
		}
		if ref.Kind != storage.SlotKindJob || ref.RefID == jobID {
			continue
		}
		job, err := c.store.GetJob(ctx, ref.RefID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				c.logger.Warn("slot points at missing job", zap.Int("slot", m.Slot), zap.String("jobId", ref.RefID))
				continue
			}
			return nil, err
		}
		similar = append(similar, &models.SimilarJob{
			JobID:           job.ID,
			Title:           job.Title,
			Company:         job.Company,
			SimilarityScore: m.Score,
			Reason:          ranking.SimilarityReason(reference, job, m.Score),
			Location:        job.Location,
			JobType:         job.JobType,
		})
		if limit > 0 && len(similar) >= limit {
			break
		}
	}
	return similar, nil
}

// Reindex embeds every stored job and replaces the job slot mappings. Called
// after seeding and by the dataset watcher.
func (c *Catalog) Reindex(ctx context.Context) (int, error) {
	all, err := c.store.ListJobs(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing jobs: %w", err)
	}
	if len(all) == 0 {
		return 0, nil
	}

	texts := make([]string, len(all))
	for i, job := range all {
		texts[i] = job.EmbeddingText()
	}
	slots, err := c.sim.Store(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding jobs: %w", err)
	}

	refs := make([]storage.SlotRef, len(slots))
	for i, slot := range slots {
		refs[i] = storage.SlotRef{Slot: slot, Kind: storage.SlotKindJob, RefID: all[i].ID}
	}
	if err := c.store.ReplaceSlots(ctx, storage.SlotKindJob, refs); err != nil {
		return 0, fmt.Errorf("registering job slots: %w", err)
	}
	c.logger.Info("reindexed jobs", zap.Int("count", len(all)))
	return len(all), nil
}

// Seed upserts the given jobs and reindexes the catalog.
func (c *Catalog) Seed(ctx context.Context, list []*models.Job) (int, error) {
	for _, job := range list {
		if err := c.store.UpsertJob(ctx, job); err != nil {
			return 0, fmt.Errorf("upserting job %s: %w", job.ID, err)
		}
	}
	return c.Reindex(ctx)
}
