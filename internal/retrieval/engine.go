// Package retrieval selects the code elements relevant to a question. The
// primary mode seeds from the nearest similarity hit and expands its
// dependency closure to a bounded depth; when similarity search yields
// nothing the engine falls back to keyword search over the project index.
package retrieval

import (
	"context"

	"github.com/heefoo/codesight/internal/index"
	"github.com/heefoo/codesight/internal/vector"
)

const defaultMaxDepth = 2

// Candidate is one retrieved element plus the closure depth it was found at.
// Depth 0 is the seed (or a keyword match); dependencies of the seed are
// depth 1, and so on.
type Candidate struct {
	Name      string
	Kind      string
	FilePath  string
	StartLine int
	EndLine   int
	Language  string
	Signature string
	Snippet   string
	Depth     int
	Score     float64
}

type Engine struct {
	vectors  *vector.Store
	index    *index.Store
	maxDepth int
}

func NewEngine(vectors *vector.Store, idx *index.Store, maxDepth int) *Engine {
	if maxDepth < 0 {
		maxDepth = defaultMaxDepth
	}
	return &Engine{
		vectors:  vectors,
		index:    idx,
		maxDepth: maxDepth,
	}
}

// Retrieve returns candidates for the question, seed-and-closure first,
// keyword fallback second. The depth bound is the only cap the engine
// applies; callers truncate to their own limits.
func (e *Engine) Retrieve(ctx context.Context, projectID, query string, maxResults int) []Candidate {
	hits := e.vectors.Query(ctx, projectID, query, maxResults)
	if len(hits) > 0 {
		visited := make(map[string]bool)
		var out []Candidate
		e.expand(ctx, projectID, hits[0], 0, visited, &out)
		return out
	}

	return e.keywordFallback(projectID, query)
}

// expand appends the hit as a candidate and walks its dependency names,
// resolving each by a nearest-neighbor lookup. Names already visited are
// never expanded again, so dependency cycles terminate.
func (e *Engine) expand(ctx context.Context, projectID string, hit vector.Result, depth int, visited map[string]bool, out *[]Candidate) {
	if visited[hit.Meta.Name] {
		return
	}
	visited[hit.Meta.Name] = true

	*out = append(*out, Candidate{
		Name:      hit.Meta.Name,
		Kind:      hit.Meta.Kind,
		FilePath:  hit.Meta.FilePath,
		StartLine: hit.Meta.StartLine,
		EndLine:   hit.Meta.EndLine,
		Language:  hit.Meta.Language,
		Signature: hit.Meta.Signature,
		Snippet:   hit.Meta.Snippet,
		Depth:     depth,
		Score:     hit.Score,
	})

	if depth >= e.maxDepth {
		return
	}

	for _, dep := range hit.Meta.Dependencies {
		if visited[dep] {
			continue
		}
		matches := e.vectors.Query(ctx, projectID, dep, 1)
		if len(matches) == 0 {
			continue
		}
		e.expand(ctx, projectID, matches[0], depth+1, visited, out)
	}
}

func (e *Engine) keywordFallback(projectID, query string) []Candidate {
	elements := e.index.Search(projectID, query)
	out := make([]Candidate, 0, len(elements))
	for _, el := range elements {
		out = append(out, Candidate{
			Name:      el.Name,
			Kind:      string(el.Kind),
			FilePath:  el.FilePath,
			StartLine: el.StartLine,
			EndLine:   el.EndLine,
			Language:  string(el.Language),
			Signature: el.Signature,
			Snippet:   e.index.SnippetFor(projectID, el.FilePath, el.StartLine, el.EndLine),
			Depth:     0,
		})
	}
	return out
}
