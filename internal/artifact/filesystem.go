package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/hyperifyio/retrievalcore/internal/model"
)

// FilesystemStore lays artifacts out under Root as:
//
//	Root/raw/<provider>/<runID>.json
//	Root/articles/<articleID>.json
//	Root/runs/<runID>/<kind>.json
//
// Every write is idempotent by path (same path, same bytes on every call for
// a given input) and every resolved path is verified to stay under Root
// before the write, per §6's "reject writes outside a configured root
// directory".
type FilesystemStore struct {
	Root string

	mu sync.Mutex
}

var _ Store = (*FilesystemStore)(nil)

// NewFilesystemStore constructs a store rooted at root. root is created (and
// its subdirectories) by EnsureLayout, not here.
func NewFilesystemStore(root string) *FilesystemStore {
	return &FilesystemStore{Root: root}
}

func (s *FilesystemStore) EnsureLayout() error {
	for _, sub := range []string{"raw", "articles", "runs"} {
		if err := os.MkdirAll(filepath.Join(s.Root, sub), 0o755); err != nil {
			return fmt.Errorf("artifact: ensure layout %s: %w", sub, err)
		}
	}
	return nil
}

func (s *FilesystemStore) SaveRawProviderSnapshot(provider model.Provider, runID string, payload any) error {
	dir := filepath.Join(s.Root, "raw", slugify(string(provider)))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("artifact: mkdir %s: %w", dir, err)
	}
	return s.writeJSONUnder(dir, slugify(runID)+".json", payload)
}

func (s *FilesystemStore) SaveNormalizedArticle(articleID string, payload any) error {
	dir := filepath.Join(s.Root, "articles")
	return s.writeJSONUnder(dir, slugify(articleID)+".json", payload)
}

func (s *FilesystemStore) SaveRunArtifact(runID string, kind string, payload any) error {
	dir := filepath.Join(s.Root, "runs", slugify(runID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("artifact: mkdir %s: %w", dir, err)
	}
	return s.writeJSONUnder(dir, slugify(kind)+".json", payload)
}

// writeJSONUnder resolves dir/name, verifies it stays under s.Root, then
// writes payload as indented JSON. Serialized with mu so concurrent writers
// to the same path never interleave partial writes.
func (s *FilesystemStore) writeJSONUnder(dir, name string, payload any) error {
	path := filepath.Join(dir, name)

	rootAbs, err := filepath.Abs(s.Root)
	if err != nil {
		return fmt.Errorf("artifact: resolve root: %w", err)
	}
	pathAbs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("artifact: resolve path: %w", err)
	}
	if pathAbs != rootAbs && !strings.HasPrefix(pathAbs, rootAbs+string(filepath.Separator)) {
		return fmt.Errorf("artifact: refusing write outside root: %s", path)
	}

	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("artifact: marshal %s: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(pathAbs, b, 0o644); err != nil {
		return fmt.Errorf("artifact: write %s: %w", path, err)
	}
	return nil
}

var slugRe = regexp.MustCompile(`[^a-z0-9._-]+`)

// slugify turns an arbitrary identifier into a filesystem-safe name and, by
// collapsing any path separators it might contain and trimming leading and
// trailing dots and dashes, is itself the main defense against path
// traversal in caller-supplied runID/articleID/kind values.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-.")
	if s == "" {
		s = "artifact"
	}
	return s
}
