// Package review orchestrates the question-answering flow: index a project,
// retrieve the elements relevant to a question, assemble a budgeted context,
// ask the configured LLM, and cross-reference the answer back to element
// names.
package review

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/heefoo/codesight/internal/config"
	"github.com/heefoo/codesight/internal/index"
	"github.com/heefoo/codesight/internal/llm"
	"github.com/heefoo/codesight/internal/parser"
	"github.com/heefoo/codesight/internal/prompt"
	"github.com/heefoo/codesight/internal/retrieval"
	"github.com/heefoo/codesight/internal/vector"
)

// Catalog is the optional persistence hook for indexed projects.
type Catalog interface {
	SaveProject(ctx context.Context, idx *index.ProjectIndex) error
}

type Service struct {
	cfg     *config.Config
	index   *index.Store
	vectors *vector.Store
	engine  *retrieval.Engine
	llm     llm.Provider
	catalog Catalog
}

// IndexSummary reports the outcome of indexing one project.
type IndexSummary struct {
	ProjectID      string   `json:"project_id"`
	RootPath       string   `json:"root_path"`
	TotalFiles     int      `json:"total_files"`
	SupportedFiles int      `json:"supported_files"`
	Languages      []string `json:"languages"`
	ElementCount   int      `json:"element_count"`
}

// Reference is one citation into the project: the element the answer
// mentioned and where it lives.
type Reference struct {
	File      string `json:"file"`
	Element   string `json:"element"`
	Kind      string `json:"kind"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// Answer is the result of one question.
type Answer struct {
	Answer          string      `json:"answer"`
	References      []Reference `json:"references"`
	Candidates      int         `json:"candidates"`
	ContextChars    int         `json:"context_chars"`
	EstimatedTokens int         `json:"estimated_tokens"`
	SkippedSnippets int         `json:"skipped_snippets"`
}

func NewService(cfg *config.Config, idx *index.Store, vectors *vector.Store, provider llm.Provider, cat Catalog) *Service {
	return &Service{
		cfg:     cfg,
		index:   idx,
		vectors: vectors,
		engine:  retrieval.NewEngine(vectors, idx, cfg.Retrieval.MaxDepth),
		llm:     provider,
		catalog: cat,
	}
}

// IndexProject indexes root end to end: file walk and extraction, similarity
// collection rebuild, optional catalog save. It returns only when the
// project is fully queryable.
func (s *Service) IndexProject(ctx context.Context, root string) (*IndexSummary, error) {
	idx, err := s.index.Index(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("failed to index project: %w", err)
	}

	snippetFor := func(el parser.Element) string {
		return s.index.SnippetFor(idx.ProjectID, el.FilePath, el.StartLine, el.EndLine)
	}
	s.vectors.IndexElements(ctx, idx.ProjectID, idx.Elements, snippetFor)

	if s.catalog != nil {
		if err := s.catalog.SaveProject(ctx, idx); err != nil {
			log.Printf("Warning: failed to save project to catalog: %v", err)
		}
	}

	return &IndexSummary{
		ProjectID:      idx.ProjectID,
		RootPath:       idx.RootPath,
		TotalFiles:     idx.TotalFiles,
		SupportedFiles: idx.SupportedFiles,
		Languages:      idx.Languages,
		ElementCount:   len(idx.Elements),
	}, nil
}

// Ask answers a question about an indexed project. LLM failures degrade into
// a descriptive answer rather than an error; only an unknown project id is a
// hard failure.
func (s *Service) Ask(ctx context.Context, projectID, question string) (*Answer, error) {
	idx := s.index.Get(projectID)
	if idx == nil {
		return nil, fmt.Errorf("unknown project: %s", projectID)
	}

	candidates := s.engine.Retrieve(ctx, projectID, question, s.cfg.Retrieval.MaxResults)

	blocks := s.contextBlocks(idx, candidates)
	built := prompt.BuildContext(blocks, s.cfg.Context.CharBudget)

	tokens := prompt.EstimateTokens(built.Text)
	if tokens > s.cfg.Context.TokenBudget {
		log.Printf("Warning: estimated %d tokens exceeds token budget %d (context kept as-is)",
			tokens, s.cfg.Context.TokenBudget)
	}

	answer := s.generate(ctx, question, built.Text)

	return &Answer{
		Answer:          answer,
		References:      ExtractReferences(answer, candidates),
		Candidates:      len(candidates),
		ContextChars:    len(built.Text),
		EstimatedTokens: tokens,
		SkippedSnippets: built.Skipped,
	}, nil
}

// contextBlocks orders the context: project metadata and the element summary
// ride outside the character budget; snippets compete for it.
func (s *Service) contextBlocks(idx *index.ProjectIndex, candidates []retrieval.Candidate) []prompt.Block {
	blocks := []prompt.Block{
		{
			Header: "Project:",
			Body: fmt.Sprintf("%s (%d files, %d supported, languages: %s)",
				idx.RootPath, idx.TotalFiles, idx.SupportedFiles, strings.Join(idx.Languages, ", ")),
			Exempt: true,
		},
		{
			Header: "Elements:",
			Body:   s.elementSummary(idx),
			Exempt: true,
		},
	}

	limit := s.cfg.Context.MaxSnippets
	if limit > len(candidates) {
		limit = len(candidates)
	}
	for _, c := range candidates[:limit] {
		snippet := c.Snippet
		if snippet == "" {
			snippet = s.index.SnippetFor(idx.ProjectID, c.FilePath, c.StartLine, c.EndLine)
		}
		blocks = append(blocks, prompt.Block{
			Header: fmt.Sprintf("%s %s (%s:%d-%d):", c.Kind, c.Name, c.FilePath, c.StartLine, c.EndLine),
			Body:   snippet,
		})
	}

	return blocks
}

func (s *Service) elementSummary(idx *index.ProjectIndex) string {
	limit := s.cfg.Context.SummaryLimit
	if limit > len(idx.Elements) {
		limit = len(idx.Elements)
	}

	parts := make([]string, 0, limit)
	for _, el := range idx.Elements[:limit] {
		parts = append(parts, fmt.Sprintf("%s %s (%s)", el.Kind, el.Name, el.FilePath))
	}
	if len(idx.Elements) > limit {
		parts = append(parts, fmt.Sprintf("... and %d more", len(idx.Elements)-limit))
	}
	return strings.Join(parts, "\n")
}

func (s *Service) generate(ctx context.Context, question, contextText string) string {
	if s.llm == nil {
		return "No language model is configured; retrieved context is available but unanswered."
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: "You are a precise code review assistant."},
		{Role: llm.RoleUser, Content: prompt.BuildPrompt(question, contextText)},
	}

	answer, err := s.llm.Generate(ctx, messages)
	if err != nil {
		log.Printf("Warning: LLM generation failed: %v", err)
		return fmt.Sprintf("The language model could not produce an answer: %v", err)
	}
	return answer
}

// ExtractReferences returns a reference record for every candidate whose name
// the answer mentions, matched case-insensitively, deduplicated by name, in
// candidate order.
func ExtractReferences(answer string, candidates []retrieval.Candidate) []Reference {
	lowered := strings.ToLower(answer)
	seen := make(map[string]bool)
	var refs []Reference

	for _, c := range candidates {
		if c.Name == "" || seen[c.Name] {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(c.Name)) {
			seen[c.Name] = true
			refs = append(refs, Reference{
				File:      c.FilePath,
				Element:   c.Name,
				Kind:      c.Kind,
				StartLine: c.StartLine,
				EndLine:   c.EndLine,
			})
		}
	}
	return refs
}
