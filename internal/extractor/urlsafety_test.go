package extractor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsSafeURL_RejectsLocalhost(t *testing.T) {
	_, ok := isSafeURL("http://localhost:8080/x", false)
	require.False(t, ok)
}

func TestIsSafeURL_RejectsPrivateIP(t *testing.T) {
	_, ok := isSafeURL("http://10.0.0.5/x", false)
	require.False(t, ok)
}

func TestIsSafeURL_RejectsNonHTTPScheme(t *testing.T) {
	_, ok := isSafeURL("ftp://example.com/x", false)
	require.False(t, ok)
}

func TestIsSafeURL_RejectsDotLocal(t *testing.T) {
	_, ok := isSafeURL("http://printer.local/x", false)
	require.False(t, ok)
}

func TestIsSafeURL_AcceptsPublicHTTPS(t *testing.T) {
	_, ok := isSafeURL("https://example.com/story", false)
	require.True(t, ok)
}
