// Package artifact persists index builds on disk. Every build lives in its
// own directory under builds/ and becomes visible only when the current
// symlink is swapped to it, so readers see a whole build or none.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/catalograg/internal/domain"
	"github.com/kailas-cloud/catalograg/internal/vectorindex"
)

const (
	buildsDir    = "builds"
	currentLink  = "current"
	indexFile    = "index.bin.zst"
	passagesFile = "passages.db"
	manifestFile = "manifest.yaml"
)

// ErrNoBuild signals that nothing has been published yet.
var ErrNoBuild = errors.New("no published build")

// Snapshot is one fully loaded build. It is immutable after Load.
type Snapshot struct {
	Manifest Manifest
	Index    *vectorindex.Flat
	Passages []domain.Passage
}

// Store manages builds under a root directory.
type Store struct {
	root       string
	keepBuilds int
	logger     *zap.Logger
}

// New creates a store rooted at dir. keepBuilds bounds how many builds
// survive pruning, the current one included.
func New(dir string, keepBuilds int, logger *zap.Logger) *Store {
	if keepBuilds < 1 {
		keepBuilds = 1
	}
	return &Store{root: dir, keepBuilds: keepBuilds, logger: logger}
}

// Root returns the store directory.
func (s *Store) Root() string { return s.root }

// CurrentPath returns the path of the current symlink.
func (s *Store) CurrentPath() string { return filepath.Join(s.root, currentLink) }

// Staging is a build directory that is not yet visible to readers.
type Staging struct {
	store *Store
	id    string
	dir   string
	done  bool
}

// Begin creates a fresh staging directory.
func (s *Store) Begin() (*Staging, error) {
	id := uuid.NewString()
	dir := filepath.Join(s.root, buildsDir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create build dir: %w", err)
	}
	return &Staging{store: s, id: id, dir: dir}, nil
}

// ID returns the build id.
func (b *Staging) ID() string { return b.id }

// WriteIndex persists the vector index.
func (b *Staging) WriteIndex(idx *vectorindex.Flat, model string) error {
	f, err := os.Create(filepath.Join(b.dir, indexFile))
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	if err := idx.Write(f, model); err != nil {
		_ = f.Close()
		return fmt.Errorf("write index: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync index: %w", err)
	}
	return f.Close()
}

// WritePassages persists the passage store.
func (b *Staging) WritePassages(ctx context.Context, passages []domain.Passage) error {
	return writePassages(ctx, filepath.Join(b.dir, passagesFile), passages)
}

// Publish writes the manifest and atomically points current at this build.
func (b *Staging) Publish(m Manifest) error {
	if b.done {
		return fmt.Errorf("build %s already finished", b.id)
	}
	m.BuildID = b.id
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if err := writeManifest(b.dir, m); err != nil {
		return err
	}

	tmp := filepath.Join(b.store.root, fmt.Sprintf(".%s.%s", currentLink, b.id))
	target := filepath.Join(buildsDir, b.id)
	if err := os.Symlink(target, tmp); err != nil {
		return fmt.Errorf("create symlink: %w", err)
	}
	if err := os.Rename(tmp, b.store.CurrentPath()); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("swap current: %w", err)
	}
	b.done = true

	b.store.prune(b.id)
	return nil
}

// Abort removes the staging directory. Safe to call after Publish.
func (b *Staging) Abort() {
	if b.done {
		return
	}
	b.done = true
	if err := os.RemoveAll(b.dir); err != nil {
		b.store.logger.Warn("Failed to remove aborted build", zap.String("build_id", b.id), zap.Error(err))
	}
}

// CurrentID returns the id of the published build.
func (s *Store) CurrentID() (string, error) {
	target, err := os.Readlink(s.CurrentPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoBuild
		}
		return "", fmt.Errorf("read current: %w", err)
	}
	return filepath.Base(target), nil
}

func (s *Store) currentDir() (string, error) {
	id, err := s.CurrentID()
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, buildsDir, id), nil
}

// Load reads the published build. The symlink is resolved once so a
// concurrent publish cannot mix files from two builds.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	dir, err := s.currentDir()
	if err != nil {
		return nil, err
	}

	m, err := readManifest(dir)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Clean(filepath.Join(dir, indexFile)))
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	idx, hdr, err := vectorindex.Read(f)
	_ = f.Close()
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}

	passages, err := readPassages(ctx, filepath.Join(dir, passagesFile))
	if err != nil {
		return nil, err
	}

	if hdr.ModelID != m.Model {
		return nil, fmt.Errorf("index model %q disagrees with manifest %q", hdr.ModelID, m.Model)
	}
	if idx.Len() != len(passages) || idx.Len() != m.Count {
		return nil, fmt.Errorf("build %s is inconsistent: %d vectors, %d passages, manifest count %d",
			m.BuildID, idx.Len(), len(passages), m.Count)
	}

	return &Snapshot{Manifest: m, Index: idx, Passages: passages}, nil
}

// LoadManifest reads only the manifest of the published build.
func (s *Store) LoadManifest() (Manifest, error) {
	dir, err := s.currentDir()
	if err != nil {
		return Manifest{}, err
	}
	return readManifest(dir)
}

// LoadPassages reads only the passage store of the published build.
func (s *Store) LoadPassages(ctx context.Context) ([]domain.Passage, error) {
	dir, err := s.currentDir()
	if err != nil {
		return nil, err
	}
	return readPassages(ctx, filepath.Join(dir, passagesFile))
}

// prune removes the oldest builds beyond keepBuilds. The current build and
// staging directories younger than it are never removed.
func (s *Store) prune(current string) {
	entries, err := os.ReadDir(filepath.Join(s.root, buildsDir))
	if err != nil {
		s.logger.Warn("Failed to list builds", zap.Error(err))
		return
	}

	type build struct {
		id      string
		modTime time.Time
	}
	var builds []build
	for _, e := range entries {
		if !e.IsDir() || e.Name() == current {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.root, buildsDir, e.Name(), manifestFile)); err != nil {
			continue // unpublished or in progress
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		builds = append(builds, build{id: e.Name(), modTime: info.ModTime()})
	}
	sort.Slice(builds, func(i, j int) bool { return builds[i].modTime.After(builds[j].modTime) })

	for i, b := range builds {
		if i < s.keepBuilds-1 {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.root, buildsDir, b.id)); err != nil {
			s.logger.Warn("Failed to prune build", zap.String("build_id", b.id), zap.Error(err))
			continue
		}
		s.logger.Info("Pruned build", zap.String("build_id", b.id))
	}
}
