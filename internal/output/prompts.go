package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/tinyfabulist/tinyfabulist/internal/config"
	"github.com/tinyfabulist/tinyfabulist/internal/fable"
)

// PromptLine is one entry of the prompts JSONL format.
type PromptLine struct {
	PromptType string `json:"prompt_type"`
	Content    string `json:"content"`
}

const (
	PromptTypeSystem    = "system_prompt"
	PromptTypeGenerator = "generator_prompt"
)

// WritePrompts serializes a prompt set. The JSONL form writes, per fable
// prompt, one line holding a two-element array of the system prompt and
// the generator prompt, which is the shape ReadPrompts accepts back.
func WritePrompts(w io.Writer, set *fable.PromptSet, format Format) error {
	switch format {
	case FormatJSONL:
		enc := json.NewEncoder(w)
		for _, p := range set.Prompts {
			line := []PromptLine{
				{PromptType: PromptTypeSystem, Content: set.System},
				{PromptType: PromptTypeGenerator, Content: p},
			}
			if err := enc.Encode(line); err != nil {
				return fmt.Errorf("writing prompts: %w", err)
			}
		}
		return nil
	case FormatText:
		fmt.Fprintf(w, "System prompt: %s\n", set.System)
		fmt.Fprintf(w, "\nFable templates:\n")
		for i, p := range set.Prompts {
			fmt.Fprintf(w, "\n%d. %s\n", i+1, p)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q for prompts", ErrFormat, format)
	}
}

// ReadPrompts parses a prompts JSONL stream. Each non-empty line holds
// either an array of prompt entries or a single entry. The first
// system_prompt wins; a stream without one is rejected.
func ReadPrompts(r io.Reader) (systemPrompt string, prompts []string, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var entries []PromptLine
		if strings.HasPrefix(line, "[") {
			if err := json.Unmarshal([]byte(line), &entries); err != nil {
				return "", nil, fmt.Errorf("%w: prompts line %d: %v", config.ErrConfig, lineNo, err)
			}
		} else {
			var single PromptLine
			if err := json.Unmarshal([]byte(line), &single); err != nil {
				return "", nil, fmt.Errorf("%w: prompts line %d: %v", config.ErrConfig, lineNo, err)
			}
			entries = []PromptLine{single}
		}

		for _, e := range entries {
			switch e.PromptType {
			case PromptTypeSystem:
				if systemPrompt == "" {
					systemPrompt = e.Content
				}
			case PromptTypeGenerator:
				prompts = append(prompts, e.Content)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", nil, fmt.Errorf("%w: reading prompts: %v", config.ErrConfig, err)
	}
	if systemPrompt == "" {
		return "", nil, fmt.Errorf("%w: no system prompt found in prompt file", config.ErrConfig)
	}
	return systemPrompt, prompts, nil
}
