package vector

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestFlatIndex_InsertSearch(t *testing.T) {
	idx, err := NewFlatIndex(3, "")
	if err != nil {
		t.Fatal(err)
	}

	slots, err := idx.Insert([][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 3 || slots[0] != 0 || slots[2] != 2 {
		t.Errorf("slots=%v", slots)
	}
	if idx.Size() != 3 {
		t.Errorf("Size=%d", idx.Size())
	}

	results, err := idx.Search([]float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Slot != 0 || math.Abs(results[0].Score-1.0) > 1e-6 {
		t.Errorf("top result should be slot 0 with score 1.0, got %+v", results[0])
	}
	// Orthogonal vectors tie at 0; ties break by insertion order.
	if results[1].Slot != 1 {
		t.Errorf("tie should break to slot 1, got %d", results[1].Slot)
	}
}

func TestFlatIndex_SelfSimilarity(t *testing.T) {
	idx, _ := NewFlatIndex(4, "")
	// Un-normalized input; index normalizes on insert and on query.
	v := []float32{3, 1, -2, 0.5}
	slots, err := idx.Insert([][]float32{v})
	if err != nil {
		t.Fatal(err)
	}
	results, err := idx.Search(v, 1)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Slot != slots[0] {
		t.Errorf("expected slot %d, got %d", slots[0], results[0].Slot)
	}
	if math.Abs(results[0].Score-1.0) > 1e-5 {
		t.Errorf("self-similarity should be ~1.0, got %f", results[0].Score)
	}
}

func TestFlatIndex_EmptySearch(t *testing.T) {
	idx, _ := NewFlatIndex(3, "")
	results, err := idx.Search([]float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatalf("empty index search should not error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty results, got %d", len(results))
	}
}

func TestFlatIndex_DimensionMismatch(t *testing.T) {
	idx, _ := NewFlatIndex(3, "")
	_, _ = idx.Insert([][]float32{{1, 0, 0}})

	if _, err := idx.Insert([][]float32{{1, 0}, {0, 1, 0}}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	if idx.Size() != 1 {
		t.Errorf("failed batch must not change count, Size=%d", idx.Size())
	}
	if _, err := idx.Search([]float32{1, 0}, 1); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch on query, got %v", err)
	}
}

func TestFlatIndex_SearchOrdering(t *testing.T) {
	idx, _ := NewFlatIndex(2, "")
	_, _ = idx.Insert([][]float32{
		{1, 0},
		{0.5, 0.5},
		{0, 1},
		{0.9, 0.1},
	})
	results, err := idx.Search([]float32{1, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("expected min(k, N)=4 results, got %d", len(results))
	}
	seen := make(map[int]bool)
	for i, r := range results {
		if seen[r.Slot] {
			t.Errorf("duplicate slot %d", r.Slot)
		}
		seen[r.Slot] = true
		if i > 0 && r.Score > results[i-1].Score {
			t.Errorf("results not descending at %d: %f > %f", i, r.Score, results[i-1].Score)
		}
	}
}

func TestFlatIndex_SearchIdempotent(t *testing.T) {
	idx, _ := NewFlatIndex(3, "")
	_, _ = idx.Insert([][]float32{{1, 2, 3}, {3, 2, 1}, {0, 1, 0}})
	q := []float32{1, 1, 1}
	first, err := idx.Search(q, 3)
	if err != nil {
		t.Fatal(err)
	}
	second, err := idx.Search(q, 3)
	if err != nil {
		t.Fatal(err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("result %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestFlatIndex_PersistRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.bin")
	idx, err := NewFlatIndex(3, path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := idx.Insert([][]float32{{1, 0, 0}, {0, 1, 0}}); err != nil {
		t.Fatal(err)
	}

	reloaded, err := NewFlatIndex(3, path)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Size() != 2 {
		t.Fatalf("reloaded Size=%d", reloaded.Size())
	}
	results, err := reloaded.Search([]float32{0, 1, 0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Slot != 1 || math.Abs(results[0].Score-1.0) > 1e-6 {
		t.Errorf("unexpected reloaded result %+v", results[0])
	}
}

func TestFlatIndex_PersistDimensionCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.bin")
	idx, _ := NewFlatIndex(3, path)
	if _, err := idx.Insert([][]float32{{1, 0, 0}}); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFlatIndex(4, path); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch loading with wrong dimension, got %v", err)
	}
}

func TestFlatIndex_PersistFailureRollsBack(t *testing.T) {
	// Point the index file inside a path that cannot be created (parent is a file).
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	idx, err := NewFlatIndex(2, filepath.Join(blocker, "sub", "vectors.bin"))
	if err != nil {
		t.Fatal(err)
	}
	if err := writeFile(blocker); err != nil {
		t.Fatal(err)
	}
	_, err = idx.Insert([][]float32{{1, 0}})
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if idx.Size() != 0 {
		t.Errorf("failed persist must roll back append, Size=%d", idx.Size())
	}
}

func TestFlatIndex_ZeroVector(t *testing.T) {
	idx, _ := NewFlatIndex(3, "")
	_, _ = idx.Insert([][]float32{{0, 0, 0}, {1, 0, 0}})
	results, err := idx.Search([]float32{0, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range results {
		if r.Score != 0 {
			t.Errorf("zero query should score 0 everywhere, got %+v", r)
		}
	}
}

func TestNormalizeL2(t *testing.T) {
	v := []float32{3, 4}
	NormalizeL2(v)
	if math.Abs(L2Norm(v)-1.0) > 1e-6 {
		t.Errorf("norm after normalize = %f", L2Norm(v))
	}

	zero := []float32{0, 0}
	NormalizeL2(zero)
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("zero vector should stay zero, got %v", zero)
	}
}

func TestCosineSimilarity(t *testing.T) {
	if s := CosineSimilarity([]float32{1, 0}, []float32{0, 1}); s != 0 {
		t.Errorf("orthogonal similarity = %f", s)
	}
	if s := CosineSimilarity([]float32{2, 0}, []float32{5, 0}); math.Abs(s-1.0) > 1e-6 {
		t.Errorf("parallel similarity = %f", s)
	}
	if s := CosineSimilarity([]float32{0, 0}, []float32{1, 0}); s != 0 {
		t.Errorf("zero vector similarity = %f", s)
	}
}

func writeFile(path string) error {
	return os.WriteFile(path, []byte("x"), 0644)
}

func TestFlatIndex_ConcurrentSearchDuringInsert(t *testing.T) {
	idx, err := NewFlatIndex(4, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := idx.Insert([][]float32{{1, 0, 0, 0}}); err != nil {
		t.Fatal(err)
	}

	const inserts = 100
	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				results, err := idx.Search([]float32{1, 0, 0, 0}, inserts+1)
				if err != nil {
					t.Error(err)
					return
				}
				// A search must see a consistent snapshot: no empty result
				// once the first vector is in, slots in range, scores
				// descending.
				if len(results) == 0 {
					t.Error("search observed an empty index")
					return
				}
				for j, m := range results {
					if m.Slot < 0 || m.Slot > inserts {
						t.Errorf("slot out of range: %d", m.Slot)
						return
					}
					if j > 0 && m.Score > results[j-1].Score {
						t.Errorf("scores not descending at %d", j)
						return
					}
				}
			}
		}()
	}

	for i := 0; i < inserts; i++ {
		if _, err := idx.Insert([][]float32{{0, 1, 0, 0}}); err != nil {
			t.Fatal(err)
		}
	}
	close(stop)
	wg.Wait()

	if idx.Size() != inserts+1 {
		t.Errorf("Size=%d, want %d", idx.Size(), inserts+1)
	}
	results, err := idx.Search([]float32{1, 0, 0, 0}, inserts+1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != inserts+1 {
		t.Errorf("expected %d results, got %d", inserts+1, len(results))
	}
}
