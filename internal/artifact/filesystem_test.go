package artifact

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/retrievalcore/internal/model"
)

func TestFilesystemStore_EnsureLayoutCreatesSubdirs(t *testing.T) {
	root := t.TempDir()
	s := NewFilesystemStore(root)
	require.NoError(t, s.EnsureLayout())
	for _, sub := range []string{"raw", "articles", "runs"} {
		info, err := os.Stat(filepath.Join(root, sub))
		require.NoError(t, err)
		require.True(t, info.IsDir())
	}
}

func TestFilesystemStore_SaveRawProviderSnapshot(t *testing.T) {
	root := t.TempDir()
	s := NewFilesystemStore(root)
	require.NoError(t, s.EnsureLayout())

	payload := map[string]any{"items": []string{"a", "b"}}
	require.NoError(t, s.SaveRawProviderSnapshot(model.ProviderWebSearch, "run-1", payload))

	path := filepath.Join(root, "raw", "web-search", "run-1.json")
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	require.Contains(t, got, "items")
}

func TestFilesystemStore_SaveNormalizedArticle(t *testing.T) {
	root := t.TempDir()
	s := NewFilesystemStore(root)
	require.NoError(t, s.EnsureLayout())

	require.NoError(t, s.SaveNormalizedArticle("abc-123", model.NormalizedArticle{Title: "hello"}))
	b, err := os.ReadFile(filepath.Join(root, "articles", "abc-123.json"))
	require.NoError(t, err)
	require.Contains(t, string(b), "hello")
}

func TestFilesystemStore_SaveRunArtifact(t *testing.T) {
	root := t.TempDir()
	s := NewFilesystemStore(root)
	require.NoError(t, s.EnsureLayout())

	require.NoError(t, s.SaveRunArtifact("run-1", "clusters", []string{"c1", "c2"}))
	b, err := os.ReadFile(filepath.Join(root, "runs", "run-1", "clusters.json"))
	require.NoError(t, err)
	require.Contains(t, string(b), "c1")
}

func TestFilesystemStore_WritesAreIdempotent(t *testing.T) {
	root := t.TempDir()
	s := NewFilesystemStore(root)
	require.NoError(t, s.EnsureLayout())

	payload := map[string]string{"k": "v"}
	require.NoError(t, s.SaveRunArtifact("run-1", "meta", payload))
	first, err := os.ReadFile(filepath.Join(root, "runs", "run-1", "meta.json"))
	require.NoError(t, err)

	require.NoError(t, s.SaveRunArtifact("run-1", "meta", payload))
	second, err := os.ReadFile(filepath.Join(root, "runs", "run-1", "meta.json"))
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestFilesystemStore_RejectsPathEscapeViaKind(t *testing.T) {
	root := t.TempDir()
	s := NewFilesystemStore(root)
	require.NoError(t, s.EnsureLayout())

	// slugify collapses path separators, so an attempted traversal ends up
	// as a harmless filename rather than escaping root; confirm no file
	// lands outside root either way.
	err := s.SaveRunArtifact("run-1", "../../etc/passwd", "x")
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(root, "..", "..", "etc", "passwd"))
	require.Error(t, statErr)
}

func TestSlugify(t *testing.T) {
	require.Equal(t, "web-search", slugify("web-search"))
	require.Equal(t, "etc-passwd", slugify("../../etc/passwd"))
	require.Equal(t, "artifact", slugify("   "))
}
