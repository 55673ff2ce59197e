package knowledge

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/campushq/naitei/internal/embedding"
	"github.com/campushq/naitei/internal/models"
	"github.com/campushq/naitei/internal/similarity"
	"github.com/campushq/naitei/internal/storage"
)

// Retriever finds the knowledge entries most relevant to a query. Embedding
// similarity is the primary signal; when the embedder is down, keyword search
// answers alone so chat keeps working.
type Retriever struct {
	store   storage.Storage
	sim     *similarity.Service
	keyword *KeywordIndex
	topK    int
	logger  *zap.Logger
}

// NewRetriever creates a retriever. topK bounds the index matches fetched per
// query before slot filtering.
func NewRetriever(store storage.Storage, sim *similarity.Service, keyword *KeywordIndex, topK int, logger *zap.Logger) *Retriever {
	if topK <= 0 {
		topK = 20
	}
	return &Retriever{store: store, sim: sim, keyword: keyword, topK: topK, logger: logger}
}

// Retrieve returns up to limit sources ordered by relevance. Semantic matches
// come first; keyword hits fill remaining space without duplicating ids.
func (r *Retriever) Retrieve(ctx context.Context, query string, limit int) ([]*models.Source, error) {
	if limit <= 0 {
		limit = 3
	}

	sources := make([]*models.Source, 0, limit)
	seen := make(map[string]bool, limit)

	matches, err := r.sim.FindSimilar(ctx, query, r.topK)
	switch {
	case errors.Is(err, embedding.ErrModelUnavailable):
		r.logger.Warn("embedder unavailable, keyword-only retrieval", zap.Error(err))
	case err != nil:
		return nil, err
	default:
		for _, m := range matches {
			if len(sources) >= limit {
				break
			}
			ref, err := r.store.ResolveSlot(ctx, m.Slot)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					continue
				}
				return nil, fmt.Errorf("resolving slot %d: %w", m.Slot, err)
			}
			if ref.Kind != storage.SlotKindKnowledge || seen[ref.RefID] {
				continue
			}
			entry, err := r.store.GetKnowledge(ctx, ref.RefID)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					continue
				}
				return nil, err
			}
			seen[entry.ID] = true
			sources = append(sources, sourceFromEntry(entry, m.Score))
		}
	}

	if len(sources) >= limit {
		return sources, nil
	}

	hits, err := r.keyword.Search(ctx, query, limit)
	if err != nil {
		if len(sources) > 0 {
			r.logger.Warn("keyword fallback failed", zap.Error(err))
			return sources, nil
		}
		return nil, err
	}
	for _, hit := range hits {
		if len(sources) >= limit {
			break
		}
		if seen[hit.ID] {
			continue
		}
		entry, err := r.store.GetKnowledge(ctx, hit.ID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return nil, err
		}
		seen[entry.ID] = true
		sources = append(sources, sourceFromEntry(entry, hit.Score))
	}
	return sources, nil
}

// Reindex embeds every stored entry, registers the knowledge slots, and
// rebuilds the keyword index entries.
func (r *Retriever) Reindex(ctx context.Context) (int, error) {
	all, err := r.store.ListKnowledge(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing knowledge: %w", err)
	}
	if len(all) == 0 {
		return 0, nil
	}

	texts := make([]string, len(all))
	for i, entry := range all {
		texts[i] = entry.Title + " " + entry.Content
		if err := r.keyword.Index(ctx, entry); err != nil {
			return 0, fmt.Errorf("keyword indexing %s: %w", entry.ID, err)
		}
	}

	slots, err := r.sim.Store(ctx, texts)
	if err != nil {
		if errors.Is(err, embedding.ErrModelUnavailable) {
			r.logger.Warn("embedder unavailable, keyword index only", zap.Int("count", len(all)))
			return len(all), nil
		}
		return 0, fmt.Errorf("embedding knowledge: %w", err)
	}

	refs := make([]storage.SlotRef, len(slots))
	for i, slot := range slots {
		refs[i] = storage.SlotRef{Slot: slot, Kind: storage.SlotKindKnowledge, RefID: all[i].ID}
	}
	if err := r.store.ReplaceSlots(ctx, storage.SlotKindKnowledge, refs); err != nil {
		return 0, fmt.Errorf("registering knowledge slots: %w", err)
	}
	r.logger.Info("reindexed knowledge", zap.Int("count", len(all)))
	return len(all), nil
}

// Seed upserts entries and reindexes.
func (r *Retriever) Seed(ctx context.Context, entries []*models.KnowledgeEntry) (int, error) {
	for _, entry := range entries {
		if err := r.store.UpsertKnowledge(ctx, entry); err != nil {
			return 0, fmt.Errorf("upserting entry %s: %w", entry.ID, err)
		}
	}
	return r.Reindex(ctx)
}

func sourceFromEntry(entry *models.KnowledgeEntry, score float64) *models.Source {
	return &models.Source{
		ID:             entry.ID,
		Title:          entry.Title,
		Content:        entry.Content,
		Type:           entry.Type,
		RelevanceScore: score,
	}
}

type knowledgeFile struct {
	Entries []*models.KnowledgeEntry `yaml:"knowledge"`
}

// LoadKnowledgeFile reads a YAML knowledge dataset.
func LoadKnowledgeFile(path string) ([]*models.KnowledgeEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading knowledge file: %w", err)
	}
	var f knowledgeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing knowledge file %s: %w", path, err)
	}
	for i, entry := range f.Entries {
		if entry.Content == "" {
			return nil, fmt.Errorf("knowledge file %s: entry %d has no content", path, i)
		}
		if entry.ID == "" {
			entry.ID = uuid.New().String()
		}
	}
	return f.Entries, nil
}
