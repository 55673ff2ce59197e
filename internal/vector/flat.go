// Package vector provides a persistent flat vector index with exact
// inner-product search over L2-normalized vectors.
package vector

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// ErrDimensionMismatch is returned when a vector's length disagrees with the
// index dimension. The whole batch is rejected; nothing is coerced.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// ErrPersistence is returned when the on-disk index write fails. The in-memory
// append is rolled back so memory and disk stay consistent.
var ErrPersistence = errors.New("vector index persistence failed")

// Match is a single search hit: the slot assigned at insertion time and the
// cosine similarity of the stored vector to the query.
type Match struct {
	Slot  int     `json:"slot"`
	Score float64 `json:"score"`
}

// FlatIndex is an append-only, slot-addressed vector index using brute-force
// inner-product search. Vectors are L2-normalized on insert so inner product
// equals cosine similarity. Every successful insert rewrites the index file
// via a temp-file-and-rename swap.
type FlatIndex struct {
	dimensions int
	path       string
	vectors    [][]float32
	mu         sync.RWMutex
}

// NewFlatIndex creates a flat index with the given dimension, persisted at
// path. If a file already exists at path it is loaded; its dimension must
// match. An empty path disables persistence.
func NewFlatIndex(dimensions int, path string) (*FlatIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive, got %d", dimensions)
	}
	idx := &FlatIndex{
		dimensions: dimensions,
		path:       path,
		vectors:    make([][]float32, 0),
	}
	if err := idx.load(); err != nil {
		return nil, err
	}
	return idx, nil
}

// Dimensions returns the index dimension.
func (f *FlatIndex) Dimensions() int {
	return f.dimensions
}

// Size returns the number of stored vectors.
func (f *FlatIndex) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.vectors)
}

// Insert normalizes and appends vectors, persists the full index, and returns
// the assigned slots in input order. The batch is all-or-nothing: a dimension
// mismatch on any vector rejects the whole batch, and a failed persist rolls
// back the in-memory append.
func (f *FlatIndex) Insert(vectors [][]float32) ([]int, error) {
	for i, v := range vectors {
		if len(v) != f.dimensions {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, index expects %d",
				ErrDimensionMismatch, i, len(v), f.dimensions)
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	base := len(f.vectors)
	slots := make([]int, len(vectors))
	for i, v := range vectors {
		vec := make([]float32, f.dimensions)
		copy(vec, v)
		NormalizeL2(vec)
		f.vectors = append(f.vectors, vec)
		slots[i] = base + i
	}

	if err := f.save(); err != nil {
		f.vectors = f.vectors[:base]
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return slots, nil
}

// Search returns up to min(k, Size) matches ordered by descending cosine
// similarity, ties broken by insertion order. The query is normalized before
// comparison. Searching an empty index returns an empty result, not an error.
func (f *FlatIndex) Search(query []float32, k int) ([]Match, error) {
	if len(query) != f.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index expects %d",
			ErrDimensionMismatch, len(query), f.dimensions)
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if k <= 0 || len(f.vectors) == 0 {
		return []Match{}, nil
	}

	q := make([]float32, f.dimensions)
	copy(q, query)
	NormalizeL2(q)

	matches := make([]Match, len(f.vectors))
	for slot, vec := range f.vectors {
		matches[slot] = Match{Slot: slot, Score: InnerProduct(q, vec)}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k], nil
}

// Save persists the index immediately. Insert already persists; Save exists
// for shutdown paths.
func (f *FlatIndex) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.save()
}

// save writes the full index to a temp file and renames it over the previous
// one, so a failed write never corrupts the existing file. Callers hold f.mu.
func (f *FlatIndex) save() error {
	if f.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	tmp := f.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp index file: %w", err)
	}
	if err := f.write(file); err != nil {
		_ = file.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close temp index file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("swap index file: %w", err)
	}
	return nil
}

// write serializes the index: dimension (4), count (4), then count*dimension
// float32 values, all little-endian.
func (f *FlatIndex) write(file *os.File) error {
	if err := binary.Write(file, binary.LittleEndian, uint32(f.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(file, binary.LittleEndian, uint32(len(f.vectors))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for slot, vec := range f.vectors {
		if _, err := file.Write(float32SliceToBytes(vec)); err != nil {
			return fmt.Errorf("write vector %d: %w", slot, err)
		}
	}
	return nil
}

// load reads the index file if present. A missing file leaves the index empty.
func (f *FlatIndex) load() error {
	if f.path == "" {
		return nil
	}
	file, err := os.Open(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open index file: %w", err)
	}
	defer file.Close()

	var dim, n uint32
	if err := binary.Read(file, binary.LittleEndian, &dim); err != nil {
		return fmt.Errorf("read dimensions: %w", err)
	}
	if int(dim) != f.dimensions {
		return fmt.Errorf("%w: file has %d dimensions, index expects %d",
			ErrDimensionMismatch, dim, f.dimensions)
	}
	if err := binary.Read(file, binary.LittleEndian, &n); err != nil {
		return fmt.Errorf("read count: %w", err)
	}
	vectors := make([][]float32, 0, n)
	buf := make([]byte, f.dimensions*4)
	for i := uint32(0); i < n; i++ {
		if _, err := io.ReadFull(file, buf); err != nil {
			return fmt.Errorf("read vector %d: %w", i, err)
		}
		vectors = append(vectors, bytesToFloat32Slice(buf))
	}
	f.vectors = vectors
	return nil
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
