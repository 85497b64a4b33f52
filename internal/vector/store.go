// Package vector keeps per-project collections of embedded element summary
// documents and answers nearest-neighbor queries over them. The store
// degrades rather than fails: with no embedder, an unknown project, or a
// failed embedding call, queries come back empty and the caller falls back
// to keyword search.
package vector

import (
	"context"
	"log"
	"math"
	"sort"
	"strconv"
	"sync"

	"github.com/heefoo/codesight/internal/deps"
	"github.com/heefoo/codesight/internal/embedding"
	"github.com/heefoo/codesight/internal/parser"
)

// snippetLimit bounds the snippet text carried in metadata.
const snippetLimit = 500

// Metadata travels with each stored document and is returned verbatim on
// query hits.
type Metadata struct {
	Name         string   `json:"name"`
	Kind         string   `json:"kind"`
	FilePath     string   `json:"file_path"`
	StartLine    int      `json:"start_line"`
	EndLine      int      `json:"end_line"`
	Language     string   `json:"language"`
	Signature    string   `json:"signature"`
	Dependencies []string `json:"dependencies,omitempty"`
	Snippet      string   `json:"snippet,omitempty"`
}

// Result is one query hit, most similar first.
type Result struct {
	ID       string
	Document string
	Meta     Metadata
	Score    float64
}

type entry struct {
	id       string
	document string
	meta     Metadata
	vec      []float32
}

type Store struct {
	embedder embedding.Provider

	mu          sync.RWMutex
	collections map[string][]*entry // project id -> entries
	byID        map[string]map[string]*entry
}

func NewStore(embedder embedding.Provider) *Store {
	return &Store{
		embedder:    embedder,
		collections: make(map[string][]*entry),
		byID:        make(map[string]map[string]*entry),
	}
}

// Upsert embeds document and stores it under id in the project's collection,
// replacing any previous entry with the same id.
func (s *Store) Upsert(ctx context.Context, projectID, id, document string, meta Metadata) error {
	if s.embedder == nil {
		return nil
	}

	vec, err := s.embedder.EmbedSingle(ctx, document)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.byID[projectID]
	if ids == nil {
		ids = make(map[string]*entry)
		s.byID[projectID] = ids
	}

	if existing, ok := ids[id]; ok {
		existing.document = document
		existing.meta = meta
		existing.vec = vec
		return nil
	}

	e := &entry{id: id, document: document, meta: meta, vec: vec}
	ids[id] = e
	s.collections[projectID] = append(s.collections[projectID], e)
	return nil
}

// Query returns up to k stored documents ranked by cosine similarity to the
// query text. It never returns an error: a missing embedder or collection, or
// a failed embedding call, yields an empty result.
func (s *Store) Query(ctx context.Context, projectID, text string, k int) []Result {
	if s.embedder == nil || k < 1 {
		return nil
	}

	qvec, err := s.embedder.EmbedSingle(ctx, text)
	if err != nil {
		log.Printf("Warning: query embedding failed: %v", err)
		return nil
	}

	s.mu.RLock()
	collection := s.collections[projectID]
	results := make([]Result, 0, len(collection))
	for _, e := range collection {
		results = append(results, Result{
			ID:       e.id,
			Document: e.document,
			Meta:     e.meta,
			Score:    cosineSimilarity(qvec, e.vec),
		})
	}
	s.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results
}

// SnippetFunc resolves an element to its source text.
type SnippetFunc func(el parser.Element) string

// IndexElements rebuilds a project's collection from its extracted elements.
// The document embedded for each element is "name kind signature"; the
// metadata carries the element fields, its coarse dependency set, and a
// bounded snippet. Individual embedding failures are logged and skipped, so
// the rebuild always completes.
func (s *Store) IndexElements(ctx context.Context, projectID string, elements []parser.Element, snippetFor SnippetFunc) {
	s.DropProject(projectID)
	if s.embedder == nil {
		return
	}

	for i, el := range elements {
		snippet := ""
		if snippetFor != nil {
			snippet = snippetFor(el)
		}

		meta := Metadata{
			Name:         el.Name,
			Kind:         string(el.Kind),
			FilePath:     el.FilePath,
			StartLine:    el.StartLine,
			EndLine:      el.EndLine,
			Language:     string(el.Language),
			Signature:    el.Signature,
			Dependencies: deps.Extract(snippet, el.Language),
		}
		if len(snippet) > snippetLimit {
			meta.Snippet = snippet[:snippetLimit]
		} else {
			meta.Snippet = snippet
		}

		id := elementID(projectID, i, el)
		document := el.Name + " " + string(el.Kind) + " " + el.Signature
		if err := s.Upsert(ctx, projectID, id, document, meta); err != nil {
			log.Printf("Warning: failed to index element %s: %v", el.Name, err)
		}
	}
}

// DropProject removes a project's collection.
func (s *Store) DropProject(projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, projectID)
	delete(s.byID, projectID)
}

// Count reports the number of stored documents for a project.
func (s *Store) Count(projectID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[projectID])
}

func elementID(projectID string, ordinal int, el parser.Element) string {
	return projectID + ":" + el.FilePath + ":" + el.Name + ":" + strconv.Itoa(ordinal)
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
