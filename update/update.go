// Package update checks GitHub for a newer release. It only notifies; the
// released installer handles the actual upgrade.
package update

import (
	"strconv"
	"strings"
)

const Repo = "sjroesink/Whisper"

type Release struct {
	Version string
	URL     string
}

// NewerThan reports whether the release is strictly newer than current.
// Versions that do not parse never count as newer.
func (r Release) NewerThan(current string) bool {
	rel, okRel := versionTriple(r.Version)
	cur, okCur := versionTriple(current)
	if !okRel || !okCur {
		return false
	}
	for i := range rel {
		if rel[i] != cur[i] {
			return rel[i] > cur[i]
		}
	}
	return false
}

// versionTriple parses "v1.2.3" into its numeric parts. Pre-release and
// build metadata suffixes are ignored.
func versionTriple(v string) ([3]int, bool) {
	v = strings.TrimPrefix(v, "v")
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	parts := strings.Split(v, ".")
	if len(parts) != 3 {
		return [3]int{}, false
	}
	var out [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return [3]int{}, false
		}
		out[i] = n
	}
	return out, true
}
