// Package profile persists style profiles and ingest metadata as flat JSON files.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/kailas-cloud/trendoscope/internal/domain"
	"github.com/kailas-cloud/trendoscope/internal/domain/style"
	"github.com/kailas-cloud/trendoscope/internal/fileutil"
)

// MetadataFile holds the latest ingest metadata per source.
const MetadataFile = "metadata.json"

const filePrefix = "style_"

// Metadata records what the last ingest of a source stored.
type Metadata struct {
	SourceID      string    `json:"source_id"`
	DocumentCount int       `json:"document_count"`
	URLs          []string  `json:"urls"`
	SavedAt       time.Time `json:"saved_at"`
}

// Repo stores one JSON file per source under dir. Writes are serialized.
type Repo struct {
	dir string
	mu  sync.RWMutex
}

// New creates a repository rooted at dir.
func New(dir string) *Repo {
	return &Repo{dir: dir}
}

// Save overwrites the profile of p.SourceID.
func (r *Repo) Save(_ context.Context, p style.Profile) error {
	if p.SourceID == "" {
		return fmt.Errorf("profile source id is required: %w", domain.ErrInvalidArgument)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := fileutil.WriteFileAtomic(r.path(p.SourceID), data, 0o644); err != nil {
		return fmt.Errorf("write profile %s: %w", p.SourceID, err)
	}
	return nil
}

// Load reads the profile of sourceID. Returns domain.ErrNotFound if none was saved.
func (r *Repo) Load(_ context.Context, sourceID string) (style.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.path(sourceID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return style.Profile{}, fmt.Errorf("profile %q: %w", sourceID, domain.ErrNotFound)
		}
		return style.Profile{}, fmt.Errorf("read profile %s: %w", sourceID, err)
	}

	var p style.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return style.Profile{}, fmt.Errorf("decode profile %s: %w", sourceID, err)
	}
	return p, nil
}

// List returns the source ids of all stored profiles, sorted.
// Files that fail to decode are skipped.
func (r *Repo) List(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches, err := filepath.Glob(filepath.Join(r.dir, filePrefix+"*.json"))
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			continue
		}
		var head struct {
			SourceID string `json:"source_id"`
		}
		if json.Unmarshal(data, &head) != nil || head.SourceID == "" {
			continue
		}
		ids = append(ids, head.SourceID)
	}
	sort.Strings(ids)
	return ids, nil
}

// SaveMetadata upserts the metadata entry of m.SourceID in metadata.json.
func (r *Repo) SaveMetadata(_ context.Context, m Metadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.readMetadataLocked()
	if err != nil {
		return err
	}
	all[m.SourceID] = m

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := fileutil.WriteFileAtomic(filepath.Join(r.dir, MetadataFile), data, 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// LoadMetadata returns the metadata of sourceID or domain.ErrNotFound.
func (r *Repo) LoadMetadata(_ context.Context, sourceID string) (Metadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all, err := r.readMetadataLocked()
	if err != nil {
		return Metadata{}, err
	}
	m, ok := all[sourceID]
	if !ok {
		return Metadata{}, fmt.Errorf("metadata %q: %w", sourceID, domain.ErrNotFound)
	}
	return m, nil
}

func (r *Repo) readMetadataLocked() (map[string]Metadata, error) {
	all := map[string]Metadata{}
	data, err := os.ReadFile(filepath.Join(r.dir, MetadataFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return all, nil
		}
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return all, nil
}

func (r *Repo) path(sourceID string) string {
	return filepath.Join(r.dir, FileName(sourceID))
}

// FileName maps a source id to style_<slug>_<hash>.json. The slug keeps [a-z0-9];
// the xxhash suffix separates ids that slug identically.
func FileName(sourceID string) string {
	return fmt.Sprintf("%s%s_%08x.json", filePrefix, slug(sourceID), uint32(xxhash.Sum64String(sourceID)))
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	if len(out) > 64 {
		out = out[:64]
	}
	return out
}
