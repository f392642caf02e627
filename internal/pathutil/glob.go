package pathutil

import (
	"path/filepath"
	"strings"
)

func hasGlobChars(s string) bool {
	return strings.ContainsAny(s, "*?[")
}

// Expand expands wildcard operands. A pattern that matches nothing, or is
// malformed, is kept literally so the caller reports it as a missing path.
// No operands means the current directory.
func Expand(args []string) []string {
	if len(args) == 0 {
		return []string{"."}
	}

	var result []string
	for _, arg := range args {
		if !hasGlobChars(arg) {
			result = append(result, arg)
			continue
		}
		matches, err := filepath.Glob(arg)
		if err != nil || len(matches) == 0 {
			result = append(result, arg)
			continue
		}
		result = append(result, matches...)
	}
	return result
}
