// Package fsutil provides file system helpers shared by the loaders.
package fsutil

import (
	"io/fs"
	"path"
	"sort"
	"strings"
)

// FindFiles walks root inside fsys and returns every regular file whose name
// ends in extension, sorted so that loading order does not depend on the
// underlying file system.
func FindFiles(fsys fs.FS, root, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	var files []string
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && strings.HasSuffix(d.Name(), extension) {
			files = append(files, path.Clean(p))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
