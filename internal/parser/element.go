package parser

import (
	"path/filepath"
	"strings"
)

type Language string

const (
	LangC          Language = "c"
	LangCPP        Language = "cpp"
	LangCSS        Language = "css"
	LangGo         Language = "go"
	LangHTML       Language = "html"
	LangJava       Language = "java"
	LangJavaScript Language = "javascript"
	LangPHP        Language = "php"
	LangPython     Language = "python"
	LangRust       Language = "rust"
	LangTypeScript Language = "typescript"
)

type Kind string

const (
	KindFunction Kind = "function"
	KindClass    Kind = "class"
	KindMethod   Kind = "method"
)

// Element is a named, line-bounded code construct extracted from one source
// file. Line numbers are 1-based and inclusive, StartLine <= EndLine.
// Elements are never mutated after extraction.
type Element struct {
	Name      string   `json:"name"`
	Kind      Kind     `json:"kind"`
	FilePath  string   `json:"file_path"`
	StartLine int      `json:"start_line"`
	EndLine   int      `json:"end_line"`
	Language  Language `json:"language"`
	Signature string   `json:"signature,omitempty"`
}

// DetectLanguage maps a file extension to a language tag. Unrecognized
// extensions yield the empty string; such files are excluded from extraction
// but still counted by the index walk.
func DetectLanguage(filename string) Language {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".py":
		return LangPython
	case ".js", ".jsx", ".mjs", ".cjs":
		return LangJavaScript
	case ".ts", ".tsx":
		return LangTypeScript
	case ".java":
		return LangJava
	case ".php":
		return LangPHP
	case ".html", ".htm":
		return LangHTML
	case ".css":
		return LangCSS
	case ".c", ".h":
		return LangC
	case ".cpp", ".cc", ".cxx", ".hpp":
		return LangCPP
	case ".go":
		return LangGo
	case ".rs":
		return LangRust
	default:
		return ""
	}
}

// IsSupportedFile returns true if the file extension maps to a known language.
func IsSupportedFile(filePath string) bool {
	return DetectLanguage(filePath) != ""
}

// splitLines splits source text into lines, dropping the artifact empty
// element a trailing newline produces so len(lines) equals the file's real
// line count.
func splitLines(source string) []string {
	lines := strings.Split(source, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
