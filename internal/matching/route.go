package matching

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// SplitKey splits a REST mock key into its method and path parts.
// Returns ok=false if the key does not contain the single-space
// separator. SSE keys have no method and are used as bare paths.
func SplitKey(key string) (method, path string, ok bool) {
	method, path, ok = strings.Cut(key, " ")
	if !ok || method == "" || path == "" {
		return "", "", false
	}
	return method, path, true
}

// MatchRoute reports whether path matches pattern.
//
// An exact string match always succeeds. Patterns containing "*" are
// matched with doublestar glob semantics. Otherwise matching is
// segment-wise: equal segment count, each pattern segment either a
// literal equal to the path segment or a ":name" parameter matching
// any value. Malformed patterns simply never match.
func MatchRoute(pattern, path string) bool {
	if pattern == path {
		return true
	}

	if strings.Contains(pattern, "*") {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}

	return matchParamSegments(pattern, path)
}

// matchParamSegments checks a ":param" style pattern segment by segment.
func matchParamSegments(pattern, path string) bool {
	patternParts := strings.Split(strings.Trim(pattern, "/"), "/")
	pathParts := strings.Split(strings.Trim(path, "/"), "/")

	// Must have same number of segments
	if len(patternParts) != len(pathParts) {
		return false
	}

	for i, patternPart := range patternParts {
		// Parameter segments match any value
		if strings.HasPrefix(patternPart, ":") {
			continue
		}
		if patternPart != pathParts[i] {
			return false
		}
	}

	return true
}
