package h5store

import (
	"fmt"
	"strings"
)

// Separator delimits path segments.
const Separator = "/"

// SplitPath splits a dataset path into its group segments and leaf name.
// One leading separator is ignored, so "/a/b/c" and "a/b/c" are the same
// path. An empty path, a trailing separator or an empty segment is invalid.
//
// Examples:
//   - "/Data" -> [], "Data"
//   - "Group1/Group2/Data" -> ["Group1", "Group2"], "Data"
func SplitPath(p string) (groups []string, leaf string, err error) {
	trimmed := strings.TrimPrefix(p, Separator)
	if trimmed == "" {
		return nil, "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}

	segments := strings.Split(trimmed, Separator)
	for _, s := range segments {
		if s == "" {
			return nil, "", fmt.Errorf("%w: empty segment in %q", ErrInvalidPath, p)
		}
	}
	return segments[:len(segments)-1], segments[len(segments)-1], nil
}

// joinPath builds a root-relative path from segments.
func joinPath(segments ...string) string {
	return strings.Join(segments, Separator)
}
