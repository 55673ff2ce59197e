package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/campushq/naitei/internal/embedding"
	"github.com/campushq/naitei/internal/models"
	"github.com/campushq/naitei/internal/similarity"
	"github.com/campushq/naitei/internal/storage"
	"github.com/campushq/naitei/internal/vector"
)

const testDim = 32

// downEmbedder always reports the model as unavailable.
type downEmbedder struct{}

func (downEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, embedding.ErrModelUnavailable
}

func (downEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, embedding.ErrModelUnavailable
}

func (downEmbedder) Dimensions() int { return testDim }
func (downEmbedder) Close() error    { return nil }

func newTestRetriever(t *testing.T, embedder embedding.Embedder) (*Retriever, storage.Storage) {
	t.Helper()
	dir := t.TempDir()

	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	index, err := vector.NewFlatIndex(testDim, filepath.Join(dir, "index.bin"))
	if err != nil {
		t.Fatalf("NewFlatIndex: %v", err)
	}
	keyword, err := NewKeywordIndex(filepath.Join(dir, "keyword.bleve"))
	if err != nil {
		t.Fatalf("NewKeywordIndex: %v", err)
	}
	t.Cleanup(func() { keyword.Close() })

	sim := similarity.NewService(embedder, index)
	return NewRetriever(store, sim, keyword, 20, zap.NewNop()), store
}

func testEntries() []*models.KnowledgeEntry {
	return []*models.KnowledgeEntry{
		{ID: "k1", Title: "Resume Tips", Content: "Keep your resume to one page and quantify achievements.", Type: "resume"},
		{ID: "k2", Title: "Interview Preparation", Content: "Practice common interview questions and research the company.", Type: "interview"},
		{ID: "k3", Title: "Skill Development", Content: "Learn in-demand skills like cloud computing and data analysis.", Type: "skills"},
	}
}

func TestRetriever_Retrieve(t *testing.T) {
	r, _ := newTestRetriever(t, embedding.NewHashEmbedder(testDim))
	ctx := context.Background()

	if _, err := r.Seed(ctx, testEntries()); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	sources, err := r.Retrieve(ctx, "how do I prepare my resume", 2)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(sources) == 0 || len(sources) > 2 {
		t.Fatalf("got %d sources, want 1-2", len(sources))
	}
	seen := map[string]bool{}
	for _, s := range sources {
		if seen[s.ID] {
			t.Errorf("duplicate source %s", s.ID)
		}
		seen[s.ID] = true
		if s.Content == "" || s.Title == "" {
			t.Errorf("incomplete source %+v", s)
		}
	}
}

func TestRetriever_KeywordFallback(t *testing.T) {
	r, _ := newTestRetriever(t, downEmbedder{})
	ctx := context.Background()

	// Seeding with a down embedder still populates the keyword index.
	if _, err := r.Seed(ctx, testEntries()); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	sources, err := r.Retrieve(ctx, "interview questions", 3)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(sources) == 0 {
		t.Fatal("keyword fallback returned nothing")
	}
	if sources[0].ID != "k2" {
		t.Errorf("top source=%s, want k2", sources[0].ID)
	}
}

func TestRetriever_EmptyStore(t *testing.T) {
	r, _ := newTestRetriever(t, embedding.NewHashEmbedder(testDim))
	sources, err := r.Retrieve(context.Background(), "anything", 3)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(sources) != 0 {
		t.Errorf("got %d sources from empty store", len(sources))
	}
}

func TestLoadKnowledgeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "knowledge.yaml")
	data := `knowledge:
  - id: k1
    title: Resume Tips
    content: Keep it short.
    type: resume
  - title: Untagged
    content: Something useful.
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := LoadKnowledgeFile(path)
	if err != nil {
		t.Fatalf("LoadKnowledgeFile: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].ID != "k1" || entries[0].Type != "resume" {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[1].ID == "" {
		t.Error("second entry got no generated id")
	}
}

func TestLoadKnowledgeFile_MissingContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "knowledge.yaml")
	if err := os.WriteFile(path, []byte("knowledge:\n  - title: Empty\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadKnowledgeFile(path); err == nil {
		t.Fatal("expected error for entry without content")
	}
}
