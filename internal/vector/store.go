package vector

import (
	"bufio"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/coder/hnsw"

	"github.com/opencodesearch/codesearch/internal/apperrors"
)

// Store wraps an HNSW graph with cosine distance, a logical-delete bitmap,
// and both-ways id<->slot maps. Unlike a lazy orphan map, deleted slots are
// tracked explicitly so Stats can report the ratio the orchestrator uses to
// decide when to compact.
type Store struct {
	mu    sync.RWMutex
	graph *hnsw.Graph[uint64]

	config Config

	idToIndex map[string]uint64 // live doc id -> graph key
	indexToID map[uint64]string // every key ever inserted -> doc id
	documents map[uint64]docEntry
	deleted   map[uint64]bool
	vectors   map[uint64][]float32 // raw vectors kept for compaction rebuilds
	nextID    uint64

	closed bool
}

// New creates a Store with the given configuration.
func New(cfg Config) (*Store, error) {
	if cfg.Dimensions <= 0 {
		return nil, apperrors.New(apperrors.CodeConfig, "vector store dimensions must be positive")
	}
	if cfg.M == 0 {
		cfg.M = 16
	}
	if cfg.EfSearch == 0 {
		cfg.EfSearch = 50
	}
	if cfg.MaxElements == 0 {
		cfg.MaxElements = 10000
	}

	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = cfg.M
	graph.EfSearch = cfg.EfSearch
	graph.Ml = 0.25

	return &Store{
		graph:     graph,
		config:    cfg,
		idToIndex: make(map[string]uint64),
		indexToID: make(map[uint64]string),
		documents: make(map[uint64]docEntry),
		deleted:   make(map[uint64]bool),
		vectors:   make(map[uint64][]float32),
	}, nil
}

// Add inserts a new vector under doc_id. Rejects a doc_id that already has a
// live slot.
func (s *Store) Add(ctx context.Context, docID string, vec []float32, metadata map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return apperrors.New(apperrors.CodeIO, "vector store is closed")
	}
	if _, exists := s.idToIndex[docID]; exists {
		return apperrors.DuplicateID(docID)
	}
	if len(vec) != s.config.Dimensions {
		return apperrors.DimensionMismatch(s.config.Dimensions, len(vec))
	}

	s.insertLocked(docID, vec, metadata)
	return nil
}

// Update logically deletes the prior slot for doc_id (if any) and adds a new
// one. The old vector remains physically in the graph but is filtered out
// of results.
func (s *Store) Update(ctx context.Context, docID string, vec []float32, metadata map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return apperrors.New(apperrors.CodeIO, "vector store is closed")
	}
	if len(vec) != s.config.Dimensions {
		return apperrors.DimensionMismatch(s.config.Dimensions, len(vec))
	}

	if oldKey, exists := s.idToIndex[docID]; exists {
		s.deleted[oldKey] = true
		delete(s.idToIndex, docID)
	}
	s.insertLocked(docID, vec, metadata)
	return nil
}

func (s *Store) insertLocked(docID string, vec []float32, metadata map[string]string) {
	normalized := make([]float32, len(vec))
	copy(normalized, vec)
	normalizeInPlace(normalized)

	key := s.nextID
	s.nextID++

	s.graph.Add(hnsw.MakeNode(key, normalized))
	s.idToIndex[docID] = key
	s.indexToID[key] = docID
	s.documents[key] = docEntry{ID: docID, Metadata: metadata}
	s.vectors[key] = normalized
}

// Delete logically deletes doc_id's slot, if present.
func (s *Store) Delete(ctx context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return apperrors.New(apperrors.CodeIO, "vector store is closed")
	}
	key, exists := s.idToIndex[docID]
	if !exists {
		return nil
	}
	s.deleted[key] = true
	delete(s.idToIndex, docID)
	return nil
}

// Search requests 2k neighbors from the graph, drops logically-deleted and
// below-minScore results, applies an optional metadata filter, and returns up
// to k results ordered by descending similarity.
func (s *Store) Search(ctx context.Context, query []float32, k int, minScore float32, filter func(metadata map[string]string) bool) ([]Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, apperrors.New(apperrors.CodeIO, "vector store is closed")
	}
	if len(query) != s.config.Dimensions {
		return nil, apperrors.DimensionMismatch(s.config.Dimensions, len(query))
	}
	if k <= 0 || s.graph.Len() == 0 {
		return []Result{}, nil
	}

	normalized := make([]float32, len(query))
	copy(normalized, query)
	normalizeInPlace(normalized)

	requested := 2 * k
	nodes := s.graph.Search(normalized, requested)

	results := make([]Result, 0, k)
	for _, node := range nodes {
		if s.deleted[node.Key] {
			continue
		}
		doc, ok := s.documents[node.Key]
		if !ok {
			continue
		}
		if filter != nil && !filter(doc.Metadata) {
			continue
		}

		distance := s.graph.Distance(normalized, node.Value)
		score := 1.0 - distance
		if score < minScore {
			continue
		}

		results = append(results, Result{ID: doc.ID, Distance: distance, Score: score, Metadata: doc.Metadata})
		if len(results) == k {
			break
		}
	}
	return results, nil
}

// Stats reports the current live/deleted/total counts, used to decide
// compaction.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		Live:       len(s.idToIndex),
		Deleted:    len(s.deleted),
		GraphNodes: s.graph.Len(),
	}
}

// Compact rebuilds the graph from only the live vectors, discarding
// logically-deleted slots. Triggered by the orchestrator when the
// logical-delete ratio exceeds 30% or capacity is exhausted.
func (s *Store) Compact(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return apperrors.New(apperrors.CodeIO, "vector store is closed")
	}

	fresh := hnsw.NewGraph[uint64]()
	fresh.Distance = hnsw.CosineDistance
	fresh.M = s.config.M
	fresh.EfSearch = s.config.EfSearch
	fresh.Ml = 0.25

	newIdToIndex := make(map[string]uint64, len(s.idToIndex))
	newIndexToID := make(map[uint64]string, len(s.idToIndex))
	newDocuments := make(map[uint64]docEntry, len(s.idToIndex))
	newVectors := make(map[uint64][]float32, len(s.idToIndex))
	var nextID uint64

	for docID, oldKey := range s.idToIndex {
		vec := s.vectors[oldKey]
		doc := s.documents[oldKey]

		key := nextID
		nextID++
		fresh.Add(hnsw.MakeNode(key, vec))

		newIdToIndex[docID] = key
		newIndexToID[key] = docID
		newDocuments[key] = doc
		newVectors[key] = vec
	}

	s.graph = fresh
	s.idToIndex = newIdToIndex
	s.indexToID = newIndexToID
	s.documents = newDocuments
	s.vectors = newVectors
	s.deleted = make(map[uint64]bool)
	s.nextID = nextID
	return nil
}

// Count returns the number of live vectors.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.idToIndex)
}

// Contains reports whether doc_id has a live slot.
func (s *Store) Contains(docID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.idToIndex[docID]
	return exists
}

// AllIDs returns every doc id with a live slot, for consistency checks
// against the file-record table.
func (s *Store) AllIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.idToIndex))
	for id := range s.idToIndex {
		ids = append(ids, id)
	}
	return ids
}

// Save writes the HNSW graph to path and a JSON sidecar to path+".metadata.json"
// via write-to-temp-then-rename, so a crash mid-save never leaves a
// half-written index.
func (s *Store) Save(path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return apperrors.New(apperrors.CodeIO, "vector store is closed")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "create vector store directory", err)
	}

	tmpGraphPath := path + ".tmp"
	file, err := os.Create(tmpGraphPath)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "create graph file", err)
	}
	if err := s.graph.Export(file); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpGraphPath)
		return apperrors.Wrap(apperrors.CodeIO, "export graph", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmpGraphPath)
		return apperrors.Wrap(apperrors.CodeIO, "close graph file", err)
	}
	if err := os.Rename(tmpGraphPath, path); err != nil {
		_ = os.Remove(tmpGraphPath)
		return apperrors.Wrap(apperrors.CodeIO, "rename graph file", err)
	}

	return s.saveSidecar(path + ".metadata.json")
}

func (s *Store) saveSidecar(path string) error {
	documents := make(map[uint64]docEntry, len(s.documents))
	for k, v := range s.documents {
		documents[k] = v
	}
	deletedKeys := make([]uint64, 0, len(s.deleted))
	for k := range s.deleted {
		deletedKeys = append(deletedKeys, k)
	}

	side := sidecar{
		Documents:  documents,
		IDToIndex:  s.idToIndex,
		IndexToID:  s.indexToID,
		Deleted:    deletedKeys,
		NextID:     s.nextID,
		Dimensions: s.config.Dimensions,
	}

	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "create sidecar file", err)
	}
	enc := json.NewEncoder(file)
	if err := enc.Encode(side); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpPath)
		return apperrors.Wrap(apperrors.CodeIO, "encode sidecar", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return apperrors.Wrap(apperrors.CodeIO, "close sidecar file", err)
	}
	return apperrors.Wrap(apperrors.CodeIO, "rename sidecar file", os.Rename(tmpPath, path))
}

// Load reads the graph and sidecar written by Save, validating that the
// sidecar's dimensions match this store's configuration.
func (s *Store) Load(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return apperrors.New(apperrors.CodeIO, "vector store is closed")
	}

	var side sidecar
	sidecarPath := path + ".metadata.json"
	sidecarFile, err := os.Open(sidecarPath)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "open sidecar file", err)
	}
	defer func() { _ = sidecarFile.Close() }()
	if err := json.NewDecoder(sidecarFile).Decode(&side); err != nil {
		return apperrors.Wrap(apperrors.CodeIndexCorruption, "decode sidecar", err)
	}
	if side.Dimensions != s.config.Dimensions {
		return apperrors.DimensionMismatch(s.config.Dimensions, side.Dimensions)
	}

	file, err := os.Open(path)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "open graph file", err)
	}
	defer func() { _ = file.Close() }()

	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = s.config.M
	graph.EfSearch = s.config.EfSearch
	graph.Ml = 0.25
	if err := graph.Import(bufio.NewReader(file)); err != nil {
		return apperrors.Wrap(apperrors.CodeIndexCorruption, "import graph", err)
	}

	s.graph = graph
	s.idToIndex = side.IDToIndex
	s.indexToID = side.IndexToID
	s.documents = side.Documents
	s.nextID = side.NextID
	s.deleted = make(map[uint64]bool, len(side.Deleted))
	for _, key := range side.Deleted {
		s.deleted[key] = true
	}
	// Vectors aren't part of the sidecar; recover them from the imported
	// graph so Compact can rebuild over the live slots.
	s.vectors = make(map[uint64][]float32, len(side.IDToIndex))
	for _, key := range side.IDToIndex {
		if vec, ok := graph.Lookup(key); ok {
			s.vectors[key] = vec
		}
	}
	return nil
}

// Close releases the graph.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.graph = nil
	return nil
}

func normalizeInPlace(v []float32) {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	if sumSquares == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(sumSquares))
	for i := range v {
		v[i] *= inv
	}
}
