package prompts

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/richard-senior/goalclock/internal/logger"
	"github.com/richard-senior/goalclock/pkg/protocol"
)

// PromptRegistry holds the prompt templates offered to MCP clients
type PromptRegistry struct {
	mu      sync.RWMutex
	prompts map[string]protocol.Prompt
}

var (
	globalRegistry *PromptRegistry
	once           sync.Once
)

// GetGlobalRegistry returns the registry, seeded with the built in prompts
func GetGlobalRegistry() *PromptRegistry {
	once.Do(func() {
		globalRegistry = NewPromptRegistry()
		for _, p := range builtinPrompts() {
			if err := globalRegistry.Register(p); err != nil {
				logger.Error("Failed to register built in prompt", p.ID, err)
			}
		}
	})
	return globalRegistry
}

// NewPromptRegistry creates an empty registry
func NewPromptRegistry() *PromptRegistry {
	return &PromptRegistry{prompts: make(map[string]protocol.Prompt)}
}

// Register adds or replaces a prompt
func (pr *PromptRegistry) Register(p protocol.Prompt) error {
	if p.ID == "" || strings.ContainsAny(p.ID, " /\\") {
		return fmt.Errorf("invalid prompt ID format: %q", p.ID)
	}
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.prompts[p.ID] = p
	return nil
}

// GetPrompt retrieves a prompt by ID
func (pr *PromptRegistry) GetPrompt(id string) (*protocol.Prompt, error) {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	p, ok := pr.prompts[id]
	if !ok {
		return nil, fmt.Errorf("prompt not found: %s", id)
	}
	return &p, nil
}

// ListPrompts returns every prompt ordered by ID
func (pr *PromptRegistry) ListPrompts() []protocol.Prompt {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	list := make([]protocol.Prompt, 0, len(pr.prompts))
	for _, p := range pr.prompts {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// Render substitutes {{name}} placeholders, every required argument must be present
func Render(p *protocol.Prompt, args map[string]string) (string, error) {
	for _, a := range p.Arguments {
		if a.Required && args[a.Name] == "" {
			return "", fmt.Errorf("missing required argument %s for prompt %s", a.Name, p.ID)
		}
	}
	content := p.Content
	for key, value := range args {
		content = strings.ReplaceAll(content, "{{"+key+"}}", value)
	}
	return content, nil
}

func builtinPrompts() []protocol.Prompt {
	return []protocol.Prompt{
		{
			ID:          "goal_timing_analysis",
			Description: "Explain when goals are likely to come in a match priced at the given over/under odds",
			Arguments: []protocol.PromptArgument{
				{Name: "over_odds", Description: "Decimal odds for the over", Required: true},
				{Name: "under_odds", Description: "Decimal odds for the under", Required: true},
				{Name: "line", Description: "Goals line, defaults to 2.5"},
			},
			Content: "Call the goal_times tool with over_odds {{over_odds}} and under_odds {{under_odds}} " +
				"(line {{line}} if given). Report the margin free probability of the over, the expected " +
				"goals per match, then a table of the mean and median minute of the first three goals. " +
				"Point out that the model assumes a constant scoring rate over 90 minutes.",
		},
		{
			ID:          "compare_lines",
			Description: "Compare the goal rate implied by two bookmakers' prices for the same line",
			Arguments: []protocol.PromptArgument{
				{Name: "first", Description: "over/under odds of the first bookmaker, eg 2.10/1.75", Required: true},
				{Name: "second", Description: "over/under odds of the second bookmaker", Required: true},
			},
			Content: "Use implied_probability and estimate_lambda for {{first}} and for {{second}}. " +
				"Say which price implies the higher expected goals and by how much, and compare the margins.",
		},
	}
}
