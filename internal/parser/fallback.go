package parser

import (
	"regexp"
	"strings"
)

// declPattern recognizes one per-language declaration form. The first capture
// group is the declared name.
type declPattern struct {
	re   *regexp.Regexp
	kind Kind
}

var fallbackPatterns = map[Language][]declPattern{
	LangPython: {
		{regexp.MustCompile(`^def\s+(\w+)\s*\(`), KindFunction},
		{regexp.MustCompile(`^class\s+(\w+)\s*[:\(]`), KindClass},
	},
	LangJavaScript: jsPatterns,
	LangTypeScript: jsPatterns,
	LangJava: {
		{regexp.MustCompile(`(?:public|private)?\s*class\s+(\w+)`), KindClass},
		{regexp.MustCompile(`(?:public|private|protected)?\s*(?:static\s+)?\w+\s+(\w+)\s*\(`), KindMethod},
	},
	LangPHP: {
		{regexp.MustCompile(`function\s+(\w+)\s*\(`), KindFunction},
		{regexp.MustCompile(`class\s+(\w+)`), KindClass},
	},
	LangGo: {
		{regexp.MustCompile(`^func\s+\([^)]+\)\s+(\w+)\s*\(`), KindMethod},
		{regexp.MustCompile(`^func\s+(\w+)\s*\(`), KindFunction},
		{regexp.MustCompile(`^type\s+(\w+)\s+(?:struct|interface)\b`), KindClass},
	},
	LangRust: {
		{regexp.MustCompile(`fn\s+(\w+)\s*\(`), KindFunction},
		{regexp.MustCompile(`^(?:pub\s+)?(?:struct|enum)\s+(\w+)`), KindClass},
	},
	LangC:   cPatterns,
	LangCPP: cPatterns,
}

var jsPatterns = []declPattern{
	{regexp.MustCompile(`function\s+(\w+)\s*\(`), KindFunction},
	{regexp.MustCompile(`(?:const|let)\s+(\w+)\s*=\s*(?:async\s*)?\(`), KindFunction},
	{regexp.MustCompile(`class\s+(\w+)\s*(?:extends\s+\w+)?\s*\{`), KindClass},
	{regexp.MustCompile(`^\s*(?:async\s+)?(\w+)\s*\([^)]*\)\s*\{`), KindMethod},
}

var cPatterns = []declPattern{
	{regexp.MustCompile(`^(?:[\w\*]+\s+)+\*?(\w+)\s*\(`), KindFunction},
	{regexp.MustCompile(`^(?:typedef\s+)?struct\s+(\w+)`), KindClass},
}

// reservedNames guards the looser declaration forms against matching
// control-flow statements like `if (x) {`.
var reservedNames = map[string]bool{
	"if": true, "else": true, "for": true, "while": true, "switch": true,
	"catch": true, "return": true, "do": true,
}

// extractPattern is the fallback extraction tier: a line-oriented regex scan.
// Elements come out in strict source line order, one per matching line. The
// end line comes from the indentation heuristic in findBlockEnd.
func extractPattern(source, filePath string, lang Language) []Element {
	patterns := fallbackPatterns[lang]
	if len(patterns) == 0 {
		return nil
	}

	lines := splitLines(source)
	var elements []Element

	for i, line := range lines {
		lineNo := i + 1
		for _, p := range patterns {
			m := p.re.FindStringSubmatch(line)
			if m == nil || reservedNames[m[1]] {
				continue
			}
			elements = append(elements, Element{
				Name:      m[1],
				Kind:      p.kind,
				FilePath:  filePath,
				StartLine: lineNo,
				EndLine:   findBlockEnd(lines, lineNo),
				Language:  lang,
				Signature: strings.TrimSpace(line),
			})
			break
		}
	}

	return elements
}

// findBlockEnd infers where the block opened at the 1-based start line ends:
// the first subsequent non-blank, non-comment line whose indentation is less
// than or equal to the start line's terminates the block at the line before
// it; with no such line the block runs to end of file. The heuristic is
// indentation-language-biased and accepts approximate boundaries for
// brace-delimited languages.
func findBlockEnd(lines []string, start int) int {
	if start >= len(lines) {
		return len(lines)
	}

	startIndent := indentWidth(lines[start-1])

	for i := start; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//") {
			continue
		}
		if indentWidth(lines[i]) <= startIndent {
			return i
		}
	}

	return len(lines)
}

func indentWidth(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}
