package util

import (
	"sort"
	"strings"
)

// FilterPrefix returns the keys starting with prefix, sorted ascending.
// The input is not modified.
func FilterPrefix(keys []string, prefix string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// GlobEscape escapes the glob metacharacters understood by Redis MATCH
// (* ? [ ] \) so s matches literally.
func GlobEscape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
