// Package vectorstore keeps (document, embedding) pairs in memory, mirrors them to flat files
// and answers cosine nearest-neighbour queries.
package vectorstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/trendoscope/internal/domain"
	domdoc "github.com/kailas-cloud/trendoscope/internal/domain/document"
	"github.com/kailas-cloud/trendoscope/internal/domain/search/result"
	"github.com/kailas-cloud/trendoscope/internal/fileutil"
)

// ManifestFile names the committed generation inside the data directory. Each write produces
// index.<gen>.bin and documents.<gen>.json and then replaces the manifest, so a crash at any
// point leaves the previous generation loadable.
const ManifestFile = "store.json"

const manifestVersion = 1

type manifest struct {
	Version    int    `json:"version"`
	Generation uint64 `json:"generation"`
	Documents  int    `json:"documents"`
	Dimensions int    `json:"dimensions"`
}

// IndexFile returns the vector file name of generation gen.
func IndexFile(gen uint64) string { return fmt.Sprintf("index.%d.bin", gen) }

// DocumentsFile returns the document list file name of generation gen.
func DocumentsFile(gen uint64) string { return fmt.Sprintf("documents.%d.json", gen) }

// Filter decides whether a document may appear in search results.
type Filter = func(doc *domdoc.Document) bool

// Store is the vector store. Documents and embeddings are parallel slices and always have the same length.
type Store struct {
	dir      string
	embedder domain.Embedder
	query    domain.Embedder
	size     prometheus.Gauge
	logger   *zap.Logger

	mu   sync.RWMutex
	gen  uint64
	dim  int
	docs []domdoc.Document
	vecs [][]float32
	urls map[string]struct{}
}

// New creates an empty store rooted at dir. Call Load to restore persisted state.
// size is an optional gauge tracking the document count.
func New(dir string, embedder domain.Embedder, size prometheus.Gauge, logger *zap.Logger) *Store {
	return &Store{
		dir:      dir,
		embedder: embedder,
		query:    embedder,
		size:     size,
		logger:   logger,
		urls:     make(map[string]struct{}),
	}
}

// WithQueryEmbedder sets the embedder used for search queries (default: the document embedder).
// Both must produce vectors of the same dimension.
func (s *Store) WithQueryEmbedder(e domain.Embedder) *Store {
	if e != nil {
		s.query = e
	}
	return s
}

// Load restores the committed generation from disk. A missing manifest yields an empty store;
// generation files not referenced by the manifest are ignored.
func (s *Store) Load(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path(ManifestFile))
	if errors.Is(err, fs.ErrNotExist) {
		s.gen, s.dim, s.docs, s.vecs = 0, 0, nil, nil
		s.urls = make(map[string]struct{})
		s.observeSize()
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", ManifestFile, err)
	}
	var m manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("decode %s: %w: %w", ManifestFile, domain.ErrCorruptStore, err)
	}
	if m.Version != manifestVersion {
		return fmt.Errorf("unsupported store version %d: %w", m.Version, domain.ErrCorruptStore)
	}

	idxData, err := os.ReadFile(s.path(IndexFile(m.Generation)))
	if err != nil {
		return fmt.Errorf("read %s: %w: %w", IndexFile(m.Generation), domain.ErrCorruptStore, err)
	}
	docData, err := os.ReadFile(s.path(DocumentsFile(m.Generation)))
	if err != nil {
		return fmt.Errorf("read %s: %w: %w", DocumentsFile(m.Generation), domain.ErrCorruptStore, err)
	}

	dim, vecs, err := decodeIndex(idxData)
	if err != nil {
		return fmt.Errorf("decode %s: %w", IndexFile(m.Generation), err)
	}
	var dtos []documentDTO
	if err := json.Unmarshal(docData, &dtos); err != nil {
		return fmt.Errorf("decode %s: %w: %w", DocumentsFile(m.Generation), domain.ErrCorruptStore, err)
	}
	if len(vecs) != len(dtos) || len(dtos) != m.Documents {
		return fmt.Errorf("%d embeddings for %d documents, manifest says %d: %w",
			len(vecs), len(dtos), m.Documents, domain.ErrCorruptStore)
	}

	docs := make([]domdoc.Document, len(dtos))
	urls := make(map[string]struct{}, len(dtos))
	for i, d := range dtos {
		docs[i] = d.toDomain()
		urls[d.URL] = struct{}{}
	}

	s.gen, s.dim, s.docs, s.vecs, s.urls = m.Generation, dim, docs, vecs, urls
	s.observeSize()
	s.logger.Info("vector store loaded",
		zap.String("dir", s.dir),
		zap.Uint64("generation", m.Generation),
		zap.Int("documents", len(docs)),
		zap.Int("dim", dim),
	)
	return nil
}

// Add embeds and appends documents whose URL is not stored yet, then persists the store.
// If embedding fails nothing is appended; if persisting fails the append is rolled back.
// Returns the number of documents actually added.
func (s *Store) Add(ctx context.Context, docs []domdoc.Document) (int, error) {
	candidates := s.newDocuments(docs)
	if len(candidates) == 0 {
		return 0, nil
	}

	texts := make([]string, len(candidates))
	for i := range candidates {
		texts[i] = embeddingText(&candidates[i])
	}
	res, err := domain.EmbedAll(ctx, s.embedder, texts)
	if err != nil {
		return 0, fmt.Errorf("embed documents: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prevLen, prevDim := len(s.docs), s.dim
	added := 0
	for i := range candidates {
		u := candidates[i].URL()
		// A concurrent Add may have stored the same URL while we were embedding.
		if _, ok := s.urls[u]; ok {
			continue
		}
		if s.dim == 0 {
			s.dim = len(res.Embeddings[i])
		}
		s.docs = append(s.docs, candidates[i])
		s.vecs = append(s.vecs, res.Embeddings[i])
		s.urls[u] = struct{}{}
		added++
	}
	if added == 0 {
		return 0, nil
	}

	if err := s.persistLocked(); err != nil {
		for _, d := range s.docs[prevLen:] {
			delete(s.urls, d.URL())
		}
		s.docs = s.docs[:prevLen:prevLen]
		s.vecs = s.vecs[:prevLen:prevLen]
		s.dim = prevDim
		return 0, fmt.Errorf("persist vector store: %w", err)
	}

	s.observeSize()
	s.logger.Debug("documents added", zap.Int("added", added), zap.Int("total", len(s.docs)))
	return added, nil
}

// Search returns up to k documents most similar to query.
func (s *Store) Search(ctx context.Context, query string, k int) ([]result.Result, error) {
	return s.SearchFiltered(ctx, query, k, nil)
}

// SearchFiltered is Search restricted to documents accepted by keep (nil accepts all).
// Results are ordered by non-increasing cosine similarity; ties keep insertion order.
func (s *Store) SearchFiltered(ctx context.Context, query string, k int, keep Filter) ([]result.Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d: %w", k, domain.ErrInvalidArgument)
	}
	if s.Len() == 0 {
		return nil, domain.ErrEmptyIndex
	}

	res, err := s.query.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	q := res.Embedding

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.docs) == 0 {
		return nil, domain.ErrEmptyIndex
	}

	type scored struct {
		idx   int
		score float64
	}
	cands := make([]scored, 0, len(s.docs))
	for i := range s.docs {
		if keep != nil && !keep(&s.docs[i]) {
			continue
		}
		cands = append(cands, scored{idx: i, score: cosine(q, s.vecs[i])})
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].score > cands[j].score })

	k = min(k, len(cands))
	out := make([]result.Result, k)
	for i := range k {
		out[i] = result.New(s.docs[cands[i].idx], cands[i].score)
	}
	return out, nil
}

// Clear removes every document and commits an empty generation.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs, s.vecs, s.dim = nil, nil, 0
	s.urls = make(map[string]struct{})
	if err := s.persistLocked(); err != nil {
		return fmt.Errorf("persist cleared store: %w", err)
	}
	s.observeSize()
	return nil
}

// Documents returns a copy of the stored documents in insertion order.
func (s *Store) Documents() []domdoc.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domdoc.Document, len(s.docs))
	copy(out, s.docs)
	return out
}

// DocumentsBySource returns stored documents ingested from source.
func (s *Store) DocumentsBySource(source string) []domdoc.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domdoc.Document
	for i := range s.docs {
		if s.docs[i].Source() == source {
			out = append(out, s.docs[i])
		}
	}
	return out
}

// Contains reports whether a document with url is stored.
func (s *Store) Contains(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.urls[url]
	return ok
}

// Len returns the document count.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Dimensions returns the embedding dimension, 0 for an empty store.
func (s *Store) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dim
}

// HealthCheck verifies the data directory exists and is writable.
func (s *Store) HealthCheck(_ context.Context) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	f, err := os.CreateTemp(s.dir, ".health-*")
	if err != nil {
		return fmt.Errorf("data dir not writable: %w", err)
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return nil
}

// newDocuments drops documents already stored or repeated within the batch.
func (s *Store) newDocuments(docs []domdoc.Document) []domdoc.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{}, len(docs))
	out := make([]domdoc.Document, 0, len(docs))
	for i := range docs {
		u := docs[i].URL()
		if _, ok := s.urls[u]; ok {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, docs[i])
	}
	return out
}

// persistLocked writes the next generation and commits it by replacing the manifest.
// On error the manifest still names the previous generation.
func (s *Store) persistLocked() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	idx, err := encodeIndex(s.dim, s.vecs)
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	dtos := make([]documentDTO, len(s.docs))
	for i := range s.docs {
		dtos[i] = toDTO(&s.docs[i])
	}
	docs, err := json.MarshalIndent(dtos, "", "  ")
	if err != nil {
		return fmt.Errorf("encode documents: %w", err)
	}

	gen := s.gen + 1
	if err := fileutil.WriteFileAtomic(s.path(IndexFile(gen)), idx, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", IndexFile(gen), err)
	}
	if err := fileutil.WriteFileAtomic(s.path(DocumentsFile(gen)), docs, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", DocumentsFile(gen), err)
	}
	m, err := json.Marshal(manifest{
		Version:    manifestVersion,
		Generation: gen,
		Documents:  len(s.docs),
		Dimensions: s.dim,
	})
	if err != nil {
		return fmt.Errorf("encode %s: %w", ManifestFile, err)
	}
	if err := fileutil.WriteFileAtomic(s.path(ManifestFile), m, 0o644); err != nil {
		return fmt.Errorf("commit generation %d: %w", gen, err)
	}

	s.gen = gen
	s.removeStale()
	return nil
}

// removeStale deletes generation files other than the committed one, including leftovers of
// writes that never reached the manifest.
func (s *Store) removeStale() {
	keep := map[string]bool{IndexFile(s.gen): true, DocumentsFile(s.gen): true}
	for _, pattern := range []string{"index.*.bin", "documents.*.json"} {
		matches, err := filepath.Glob(s.path(pattern))
		if err != nil {
			continue
		}
		for _, m := range matches {
			if keep[filepath.Base(m)] {
				continue
			}
			if err := os.Remove(m); err != nil && !errors.Is(err, fs.ErrNotExist) {
				s.logger.Warn("stale generation file not removed", zap.String("file", m), zap.Error(err))
			}
		}
	}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *Store) observeSize() {
	if s.size != nil {
		s.size.Set(float64(len(s.docs)))
	}
}

// embeddingText is what gets vectorized for a document: title plus cleaned body.
func embeddingText(d *domdoc.Document) string {
	if d.Title() == "" {
		return d.TextPlain()
	}
	return d.Title() + "\n" + d.TextPlain()
}

// cosine returns the cosine similarity of a and b; mismatched or zero vectors score 0.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
