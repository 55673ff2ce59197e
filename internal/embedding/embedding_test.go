package embedding

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestHashEmbedder_Deterministic(t *testing.T) {
	e := NewHashEmbedder(384)
	ctx := context.Background()

	a, err := e.Embed(ctx, "software developer internship")
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Embed(ctx, "software developer internship")
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embedding not deterministic at %d", i)
		}
	}

	var sum float64
	for _, v := range a {
		sum += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(sum)-1.0) > 1e-5 {
		t.Errorf("embedding not unit length: %f", math.Sqrt(sum))
	}
}

func TestHashEmbedder_Batch(t *testing.T) {
	e := NewHashEmbedder(8)
	ctx := context.Background()

	texts := []string{"resume tips", "interview prep", "career guidance"}
	embs, err := e.EmbedBatch(ctx, texts)
	if err != nil {
		t.Fatal(err)
	}
	if len(embs) != len(texts) {
		t.Fatalf("expected %d embeddings, got %d", len(texts), len(embs))
	}
	for i, emb := range embs {
		if len(emb) != 8 {
			t.Errorf("embedding %d has dimension %d", i, len(emb))
		}
	}
	// Order-preserving: batch rows match single encodes.
	single, _ := e.Embed(ctx, texts[1])
	for i := range single {
		if embs[1][i] != single[i] {
			t.Fatal("batch order not preserved")
		}
	}
}

func TestHashEmbedder_EmptyText(t *testing.T) {
	e := NewHashEmbedder(8)
	ctx := context.Background()

	if _, err := e.Embed(ctx, ""); !errors.Is(err, ErrEmptyText) {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}
	// All-or-nothing: one empty text fails the whole batch.
	if _, err := e.EmbedBatch(ctx, []string{"ok", ""}); !errors.Is(err, ErrEmptyText) {
		t.Errorf("expected ErrEmptyText for batch, got %v", err)
	}
	if _, err := e.EmbedBatch(ctx, nil); !errors.Is(err, ErrEmptyText) {
		t.Errorf("expected ErrEmptyText for empty batch, got %v", err)
	}
}

func TestCache_LRU(t *testing.T) {
	c := NewCache(2)
	c.Set("a", []float32{1})
	c.Set("b", []float32{2})

	if _, ok := c.Get("a"); !ok {
		t.Error("a should be cached")
	}
	// a is now most recent; adding c evicts b.
	c.Set("c", []float32{3})
	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should survive")
	}
	if c.Len() != 2 {
		t.Errorf("Len=%d", c.Len())
	}
}

func TestCache_Overwrite(t *testing.T) {
	c := NewCache(2)
	c.Set("a", []float32{1})
	c.Set("a", []float32{9})
	v, ok := c.Get("a")
	if !ok || v[0] != 9 {
		t.Errorf("expected overwritten value, got %v %v", v, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len=%d", c.Len())
	}
}

func TestSimpleTokenizer(t *testing.T) {
	tok := &SimpleTokenizer{}
	inputIDs, attentionMask, tokenTypeIDs := tok.Tokenize("hello world", 8)

	if len(inputIDs) != 8 || len(attentionMask) != 8 || len(tokenTypeIDs) != 8 {
		t.Fatalf("lengths: %d %d %d", len(inputIDs), len(attentionMask), len(tokenTypeIDs))
	}
	if inputIDs[0] != 101 {
		t.Errorf("expected [CLS] at 0, got %d", inputIDs[0])
	}
	if inputIDs[3] != 102 {
		t.Errorf("expected [SEP] after tokens, got %d", inputIDs[3])
	}
	if attentionMask[0] != 1 || attentionMask[3] != 1 || attentionMask[4] != 0 {
		t.Errorf("attention mask wrong: %v", attentionMask)
	}
}

func TestSplitWords(t *testing.T) {
	words := SplitWords("  full-stack\tdeveloper\nintern ")
	if len(words) != 3 {
		t.Fatalf("words=%v", words)
	}
	if words[0] != "full-stack" || words[2] != "intern" {
		t.Errorf("words=%v", words)
	}
}

func TestUnavailableEmbedder(t *testing.T) {
	ctx := context.Background()
	e := NewUnavailableEmbedder(384, errors.New("no such file"))

	if _, err := e.Embed(ctx, "hello"); !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("Embed error = %v, want ErrModelUnavailable", err)
	}
	if _, err := e.EmbedBatch(ctx, []string{"a", "b"}); !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("EmbedBatch error = %v, want ErrModelUnavailable", err)
	}
	if e.Dimensions() != 384 {
		t.Errorf("dimensions = %d, want 384", e.Dimensions())
	}

	// An already-wrapped load error is passed through, not double-wrapped.
	load := NewUnavailableEmbedder(0, ErrModelUnavailable)
	if _, err := load.Embed(ctx, "hello"); !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("Embed error = %v, want ErrModelUnavailable", err)
	}
	if load.Dimensions() != 384 {
		t.Errorf("default dimensions = %d, want 384", load.Dimensions())
	}
}
