package fingerprint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum(t *testing.T) {
	// sha256("asdf")
	assert.Equal(t,
		Digest("f0e4c2f76c58916ec258f246851bea091d14d4247a2fc3e18694461b1816e13b"),
		Sum([]byte("asdf")))

	assert.Equal(t, Sum([]byte("same")), Sum([]byte("same")))
	assert.NotEqual(t, Sum([]byte("asdf")), Sum([]byte("fdsa")))
	assert.Len(t, Sum(nil).String(), 64)
}

func TestSumFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.js")
	require.NoError(t, os.WriteFile(path, []byte("asdf"), 0600))

	got, err := SumFile(path)
	require.NoError(t, err)
	assert.Equal(t, Sum([]byte("asdf")), got)

	_, err = SumFile(filepath.Join(t.TempDir(), "missing.js"))
	assert.Error(t, err)
}

func TestCombine(t *testing.T) {
	assert.Equal(t, Combine("a", "b"), Combine("a", "b"))
	assert.NotEqual(t, Combine("ab", "c"), Combine("a", "bc"))
	assert.NotEqual(t, Combine("a", "b"), Combine("b", "a"))
	assert.NotEqual(t, Combine(), Combine(""))
}
