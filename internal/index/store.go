// Package index walks a project tree, extracts code elements from every
// supported file, and keeps the resulting project indexes plus the raw file
// text in memory for snippet slicing and keyword search.
package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/heefoo/codesight/internal/parser"
)

// excludedDirs are noise directories skipped wholesale during the walk.
var excludedDirs = map[string]bool{
	".git":         true,
	".svn":         true,
	".hg":          true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	".env":         true,
	"target":       true,
	"build":        true,
	"dist":         true,
	".idea":        true,
	".vscode":      true,
}

// ProjectIndex aggregates what the walk found under one root.
type ProjectIndex struct {
	ProjectID      string           `json:"project_id"`
	RootPath       string           `json:"root_path"`
	TotalFiles     int              `json:"total_files"`
	SupportedFiles int              `json:"supported_files"`
	Languages      []string         `json:"languages"`
	Elements       []parser.Element `json:"elements"`
}

// Snippet is a line range of raw file text, sliced on demand.
type Snippet struct {
	FilePath    string `json:"file_path"`
	StartLine   int    `json:"start_line"`
	EndLine     int    `json:"end_line"`
	Text        string `json:"text"`
	ElementName string `json:"element_name,omitempty"`
}

// Store holds indexed projects and their raw file text. The element list and
// the text map for a project are always updated together under the lock, so
// every element's file path resolves to stored text.
type Store struct {
	parser *parser.Parser

	mu       sync.RWMutex
	projects map[string]*ProjectIndex
	sources  map[string]map[string]string // project id -> relative path -> text
}

func NewStore(p *parser.Parser) *Store {
	return &Store{
		parser:   p,
		projects: make(map[string]*ProjectIndex),
		sources:  make(map[string]map[string]string),
	}
}

// ProjectID derives a stable short identifier from the project root path.
// Indexing the same root always yields the same id.
func ProjectID(root string) string {
	sum := sha256.Sum256([]byte(root))
	return hex.EncodeToString(sum[:])[:12]
}

// Index walks root, extracts elements from every supported file, and stores
// the resulting project index, replacing any previous index for the same
// root. Unreadable files are logged and skipped; the walk itself only fails
// if the root is unusable.
func (s *Store) Index(ctx context.Context, root string) (*ProjectIndex, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root is not a directory: %s", root)
	}

	idx := &ProjectIndex{
		ProjectID: ProjectID(root),
		RootPath:  root,
	}
	texts := make(map[string]string)
	langs := make(map[string]bool)

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Printf("Warning: skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if excludedDirs[d.Name()] && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		idx.TotalFiles++

		lang := parser.DetectLanguage(d.Name())
		if lang == "" {
			return nil
		}
		idx.SupportedFiles++
		langs[string(lang)] = true

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}

		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			log.Printf("Warning: failed to read %s: %v", path, readErr)
			return nil
		}
		text := strings.ToValidUTF8(string(raw), "�")
		texts[rel] = text

		elements := s.parser.Extract(ctx, rel, lang, []byte(text))
		idx.Elements = append(idx.Elements, elements...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk project root: %w", err)
	}

	for lang := range langs {
		idx.Languages = append(idx.Languages, lang)
	}
	sort.Strings(idx.Languages)

	s.mu.Lock()
	s.projects[idx.ProjectID] = idx
	s.sources[idx.ProjectID] = texts
	s.mu.Unlock()

	return idx, nil
}

// Get returns the stored index for a project id, or nil if unknown.
func (s *Store) Get(projectID string) *ProjectIndex {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.projects[projectID]
}

// List returns all stored project indexes.
func (s *Store) List() []*ProjectIndex {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*ProjectIndex, 0, len(s.projects))
	for _, idx := range s.projects {
		out = append(out, idx)
	}
	return out
}

// Search returns the project's elements whose name or signature contains the
// query, case-insensitively, in stored order. An unknown project id yields an
// empty result.
func (s *Store) Search(projectID, query string) []parser.Element {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.projects[projectID]
	if idx == nil {
		return nil
	}

	needle := strings.ToLower(query)
	var matches []parser.Element
	for _, el := range idx.Elements {
		if strings.Contains(strings.ToLower(el.Name), needle) ||
			strings.Contains(strings.ToLower(el.Signature), needle) {
			matches = append(matches, el)
		}
	}
	return matches
}

// SnippetFor slices the stored text of one file by an inclusive 1-based line
// range, clamping out-of-range bounds. Unknown project or file yields "".
func (s *Store) SnippetFor(projectID, filePath string, startLine, endLine int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	texts := s.sources[projectID]
	if texts == nil {
		return ""
	}
	text, ok := texts[filePath]
	if !ok {
		return ""
	}

	lines := strings.Split(text, "\n")
	if startLine < 1 {
		startLine = 1
	}
	if endLine > len(lines) {
		endLine = len(lines)
	}
	if startLine > endLine {
		return ""
	}
	return strings.Join(lines[startLine-1:endLine], "\n")
}

// Remove drops one project's index and text.
func (s *Store) Remove(projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.projects, projectID)
	delete(s.sources, projectID)
}

// Clear drops everything.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = make(map[string]*ProjectIndex)
	s.sources = make(map[string]map[string]string)
}
