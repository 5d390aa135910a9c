package extractor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicalize_StripsFragmentAndUTMParams(t *testing.T) {
	got := canonicalize("https://example.com/story?utm_source=feed&id=5#section")
	require.Equal(t, "https://example.com/story?id=5", got)
}

func TestCanonicalize_PreservesNonUTMParams(t *testing.T) {
	got := canonicalize("https://example.com/story?id=5&ref=home")
	require.Contains(t, got, "id=5")
	require.Contains(t, got, "ref=home")
}

func TestCanonicalize_PreservesOriginalParamOrder(t *testing.T) {
	got := canonicalize("https://example.com/story?zeta=1&alpha=2&utm_medium=x")
	require.Equal(t, "https://example.com/story?zeta=1&alpha=2", got)
}

func TestCanonicalize_IsIdempotent(t *testing.T) {
	once := canonicalize("https://example.com/story?utm_source=feed&id=5#frag")
	twice := canonicalize(once)
	require.Equal(t, once, twice)
}
