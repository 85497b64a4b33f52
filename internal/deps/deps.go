// Package deps extracts coarse call dependencies from code snippets. The
// extraction is intentionally lexical: any identifier followed by an opening
// parenthesis counts as a call, minus a fixed set of keywords and builtins
// that show up in call position across the supported languages.
package deps

import (
	"regexp"
	"sort"

	"github.com/heefoo/codesight/internal/parser"
)

var callPattern = regexp.MustCompile(`(\w+)\s*\(`)

// excluded holds keywords and ubiquitous builtins that match the call pattern
// but carry no dependency signal.
var excluded = map[string]bool{
	"if":     true,
	"for":    true,
	"while":  true,
	"return": true,
	"switch": true,
	"catch":  true,
	"new":    true,
	"this":   true,
	"super":  true,
	"print":  true,
	"len":    true,
	"str":    true,
	"int":    true,
}

// Extract returns the distinct called identifiers found in snippet, sorted
// for deterministic storage. Markup languages have no call syntax and yield
// an empty set.
func Extract(snippet string, lang parser.Language) []string {
	if lang == parser.LangHTML || lang == parser.LangCSS {
		return nil
	}

	seen := make(map[string]bool)
	for _, m := range callPattern.FindAllStringSubmatch(snippet, -1) {
		name := m[1]
		if excluded[name] {
			continue
		}
		seen[name] = true
	}

	if len(seen) == 0 {
		return nil
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
