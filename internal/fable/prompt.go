package fable

import (
	"fmt"

	"github.com/tinyfabulist/tinyfabulist/internal/config"
	"github.com/tinyfabulist/tinyfabulist/internal/template"
)

// PromptSet is the rendered output of a prompt-generation run: one system
// prompt shared by every request plus one rendered fable prompt per
// combination.
type PromptSet struct {
	System  string
	Prompts []string
}

// Vars returns the template context for a combination. The keys match the
// placeholders available to the fable prompt template.
func (c Combination) Vars() map[string]any {
	return map[string]any{
		"character":  c.Character,
		"trait":      c.Trait,
		"setting":    c.Setting,
		"conflict":   c.Conflict,
		"resolution": c.Resolution,
		"moral":      c.Moral,
	}
}

// BuildPrompts renders the system prompt once with an empty context (it
// carries no placeholders) and the fable template once per combination.
// The fable template's placeholders are checked against the combination
// fields up front, so a typo like {{protagonist}} fails once with the
// offending name instead of once per combination.
func BuildPrompts(engine *template.Engine, prompts config.PromptTemplates, combos []Combination) (*PromptSet, error) {
	known := Combination{}.Vars()
	for _, name := range engine.Variables(prompts.Fable) {
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("%w: fable template references unknown field '%s'", config.ErrConfig, name)
		}
	}

	system, err := engine.Render(prompts.System, nil)
	if err != nil {
		return nil, fmt.Errorf("rendering system prompt: %w", err)
	}

	set := &PromptSet{System: system, Prompts: make([]string, 0, len(combos))}
	for i, c := range combos {
		rendered, err := engine.Render(prompts.Fable, c.Vars())
		if err != nil {
			return nil, fmt.Errorf("rendering fable prompt %d: %w", i, err)
		}
		set.Prompts = append(set.Prompts, rendered)
	}
	return set, nil
}
