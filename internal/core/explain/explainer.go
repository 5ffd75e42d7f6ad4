// Package explain turns a ranked list of recommendations into a short
// reader-facing paragraph using an LLM.
package explain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agenthands/shelfgraph/internal/config"
	"github.com/agenthands/shelfgraph/internal/core/common"
	"github.com/agenthands/shelfgraph/internal/core/model"
	"github.com/agenthands/shelfgraph/internal/llm"
)

// ErrDisabled is returned when no LLM provider is configured.
var ErrDisabled = errors.New("explanations are disabled")

const defaultPrompt = `You are a librarian writing to a reader.

Reader:
%s

Books picked for them, best first:
%s
Explain in two or three friendly sentences why these books suit this reader.
Only mention books from the list.
Respond with JSON: {"summary": "..."}`

type Explainer struct {
	LLM     llm.LLMClient
	Prompts config.ExplainPrompts
}

func NewExplainer(llmClient llm.LLMClient, prompts config.ExplainPrompts) *Explainer {
	return &Explainer{
		LLM:     llmClient,
		Prompts: prompts,
	}
}

func (e *Explainer) Enabled() bool {
	return e != nil && e.LLM != nil
}

// Explain summarises books for reader. A response that is not JSON is used
// verbatim.
func (e *Explainer) Explain(ctx context.Context, reader model.UserWithActivity, books []model.BookWithDetails) (string, error) {
	if !e.Enabled() {
		return "", ErrDisabled
	}
	if len(books) == 0 {
		return "", nil
	}

	tmpl := e.Prompts.Recommendations
	if tmpl == "" {
		tmpl = defaultPrompt
	}
	prompt := fmt.Sprintf(tmpl, describeReader(reader), listBooks(books))

	response, err := e.LLM.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate explanation: %w", err)
	}

	result, err := common.ParseJSON[model.Explanation](response)
	if err == nil && result.Summary != "" {
		return result.Summary, nil
	}
	return strings.TrimSpace(response), nil
}

func describeReader(u model.UserWithActivity) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "- name: %s\n", u.Username)
	fmt.Fprintf(&sb, "- books read: %d\n", u.BooksRead)
	if len(u.PreferredGenres) > 0 {
		fmt.Fprintf(&sb, "- favourite genres: %s\n", strings.Join(u.PreferredGenres, ", "))
	}
	if u.Following > 0 {
		fmt.Fprintf(&sb, "- follows %d readers\n", u.Following)
	}
	return sb.String()
}

func listBooks(books []model.BookWithDetails) string {
	var sb strings.Builder
	for i, b := range books {
		fmt.Fprintf(&sb, "%d. %s", i+1, b.Title)
		if names := refNames(b.Authors); names != "" {
			fmt.Fprintf(&sb, " by %s", names)
		}
		if names := refNames(b.Genres); names != "" {
			fmt.Fprintf(&sb, " [%s]", names)
		}
		fmt.Fprintf(&sb, " (%.1f)\n", b.Rating)
	}
	return sb.String()
}

func refNames(refs []model.EntityRef) string {
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		names = append(names, r.Name)
	}
	return strings.Join(names, ", ")
}
