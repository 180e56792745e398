package sandbox

import "strings"

// hasExploreDirective reports whether the source opts into exploration mode.
// The directive is a statement of the form 'use explore' or "use explore",
// optionally followed by a semicolon, on a line of its own. Comment lines
// and blank lines above it are ignored; the scan stops at the first other
// statement so the directive behaves like a prologue, not a magic comment
// buried anywhere in the file.
func hasExploreDirective(source string) bool {
	for _, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		switch line {
		case `'use explore'`, `'use explore';`, `"use explore"`, `"use explore";`:
			return true
		}
		return false
	}
	return false
}
