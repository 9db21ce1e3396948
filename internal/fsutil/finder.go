// Package fsutil locates dialect source files on an abstract file system.
package fsutil

import (
	"os"
	"strings"

	"github.com/spf13/afero"
)

// FindFilesByExtension walks root and collects every file whose name ends in
// extension, in the order afero.Walk visits them. The extension must be
// non-empty.
func FindFilesByExtension(fsys afero.Fs, root string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	var matches []string
	walk := func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(info.Name(), extension) {
			matches = append(matches, path)
		}
		return nil
	}
	if err := afero.Walk(fsys, root, walk); err != nil {
		return nil, err
	}
	return matches, nil
}
