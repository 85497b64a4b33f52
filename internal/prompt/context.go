// Package prompt assembles the LLM context under a hard character budget and
// renders the final prompt. A soft token budget exists alongside the
// character budget but is advisory: it is estimated, reported, and logged
// against, never enforced by truncation.
package prompt

import (
	"fmt"
	"strings"
)

// blockSeparator joins serialized blocks in the assembled context.
const blockSeparator = "\n\n"

// tokenDivisor is the chars-per-token heuristic used by EstimateTokens.
const tokenDivisor = 4

// Block is one ordered piece of candidate context. Exempt blocks (project
// metadata, element summaries) are always included and never counted against
// the character budget.
type Block struct {
	Header string
	Body   string
	Exempt bool
}

// BuildResult reports what the budgeter kept and dropped.
type BuildResult struct {
	Text     string
	Included int
	Skipped  int
}

func serialize(b Block) string {
	if b.Header == "" {
		return b.Body
	}
	return b.Header + "\n" + b.Body
}

// BuildContext appends blocks in order under a prefix policy: the first
// non-exempt block that would push the running total past charBudget stops
// all further non-exempt appends, even if a later, smaller block would still
// fit. Exempt blocks are appended unconditionally.
func BuildContext(blocks []Block, charBudget int) BuildResult {
	var parts []string
	var total int
	var result BuildResult
	stopped := false

	for _, b := range blocks {
		text := serialize(b)

		if b.Exempt {
			parts = append(parts, text)
			result.Included++
			continue
		}

		if stopped {
			result.Skipped++
			continue
		}

		size := len(text) + len(blockSeparator)
		if total+size > charBudget {
			stopped = true
			result.Skipped++
			continue
		}

		total += size
		parts = append(parts, text)
		result.Included++
	}

	result.Text = strings.Join(parts, blockSeparator)
	return result
}

// EstimateTokens approximates the token count of text as ceil(len/4). The
// estimate is advisory only; callers log when it exceeds their token budget
// but never cut content because of it.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + tokenDivisor - 1) / tokenDivisor
}

// BuildPrompt renders the final question prompt around the assembled context.
func BuildPrompt(question, context string) string {
	return fmt.Sprintf(`You are a code review assistant. Answer the question using only the provided code context. Reference specific functions, classes, and files by name.

Code context:
%s

Question: %s

Answer:`, context, question)
}
