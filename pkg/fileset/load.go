package fileset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ExpandGlobs expands a list of file paths and glob patterns into a
// deduplicated list of paths, in argument order. Patterns that match nothing
// are returned as-is so the caller can report them as missing.
func ExpandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}

		if len(matches) == 0 {
			matches = []string{pattern}
		}

		// filepath.Glob already returns matches in lexical order.
		for _, match := range matches {
			if !seen[match] {
				seen[match] = true
				result = append(result, match)
			}
		}
	}

	return result, nil
}

// Load reads the files named by patterns into a FileSet. Paths that do not
// exist or are directories are left out of the set and returned in missing,
// together with the expanded operand list the command should search.
func Load(ctx context.Context, patterns []string) (set *FileSet, operands []string, missing []string, err error) {
	operands, err = ExpandGlobs(patterns)
	if err != nil {
		return nil, nil, nil, err
	}

	set = &FileSet{}
	for _, path := range operands {
		if err := ctx.Err(); err != nil {
			return nil, nil, nil, err
		}

		data, err := os.ReadFile(path) // #nosec G304 -- user-provided paths are expected
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) || isDirectory(path) {
				missing = append(missing, path)
				continue
			}
			return nil, nil, nil, fmt.Errorf("reading %s: %w", path, err)
		}
		set.Add(path, string(data))
	}

	return set, operands, missing, nil
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
