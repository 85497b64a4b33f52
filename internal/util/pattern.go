package util

import (
	"log"
	"path/filepath"
)

// MatchPattern wraps filepath.Match, logging malformed patterns instead of
// surfacing the error so one bad exclusion pattern cannot break watching.
func MatchPattern(pattern, name string) bool {
	matched, err := filepath.Match(pattern, name)
	if err != nil {
		log.Printf("Warning: invalid pattern '%s': %v. Pattern will not match any files.", pattern, err)
		return false
	}
	return matched
}
