package fsutil

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	fsys := afero.NewMemMapFs()
	for _, path := range []string{
		"/stacks/a.ehcl",
		"/stacks/nested/deep/b.ehcl",
		"/stacks/nested/other.hcl",
		"/stacks/readme.md",
	} {
		require.NoError(t, afero.WriteFile(fsys, path, []byte("x"), 0o644))
	}

	files, err := FindFilesByExtension(fsys, "/stacks", ".ehcl")
	require.NoError(t, err)
	assert.Equal(t, []string{"/stacks/a.ehcl", "/stacks/nested/deep/b.ehcl"}, files)
}

func TestFindFilesByExtension_NoMatches(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/stacks", 0o755))

	files, err := FindFilesByExtension(fsys, "/stacks", ".ehcl")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFindFilesByExtension_MissingRoot(t *testing.T) {
	fsys := afero.NewMemMapFs()

	_, err := FindFilesByExtension(fsys, "/nope", ".ehcl")
	assert.Error(t, err)
}

func TestFindFilesByExtension_EmptyExtensionPanics(t *testing.T) {
	fsys := afero.NewMemMapFs()

	assert.PanicsWithValue(t, "extension must not be empty", func() {
		_, _ = FindFilesByExtension(fsys, "/stacks", "")
	})
}
