// Package config loads and validates the tinyfabulist YAML settings file.
// Settings cover the feature lists used to parameterize fables, the prompt
// templates, the registry of generation endpoints, and the judge model used
// for evaluation. Credentials never live in the file; they come from the
// process environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the settings file looked up when --config is not given.
const DefaultFile = "tinyfabulist.yaml"

var ErrConfig = errors.New("configuration error")

// Features holds the six ordered feature dimensions. The slices are
// treated as immutable after Load.
type Features struct {
	Characters  []string `yaml:"characters"`
	Traits      []string `yaml:"traits"`
	Settings    []string `yaml:"settings"`
	Conflicts   []string `yaml:"conflicts"`
	Resolutions []string `yaml:"resolutions"`
	Morals      []string `yaml:"morals"`
}

// PromptTemplates holds the raw template strings for prompt rendering.
type PromptTemplates struct {
	System string `yaml:"system"`
	Fable  string `yaml:"fable"`
}

// Generator groups the feature lists with the prompt templates.
type Generator struct {
	Features Features        `yaml:"features"`
	Prompt   PromptTemplates `yaml:"prompt"`
}

// ModelConfig describes one generation endpoint. The access token is read
// from the environment, not from the file.
type ModelConfig struct {
	Name    string `yaml:"name"`
	BaseURL string `yaml:"base_url"`
}

// LLMs is the registry of available generation endpoints.
type LLMs struct {
	HFModels map[string]ModelConfig `yaml:"hf-models"`
}

// Evaluator configures the judge model. Prompt must reference {{fable}}.
type Evaluator struct {
	Model     string `yaml:"model"`
	System    string `yaml:"system"`
	Prompt    string `yaml:"prompt"`
	MaxTokens int    `yaml:"max_tokens"`
}

// Settings is the root of the YAML settings file.
type Settings struct {
	Generator Generator `yaml:"generator"`
	LLMs      LLMs      `yaml:"llms"`
	Evaluator Evaluator `yaml:"evaluator"`

	// Concurrency caps in-flight generation requests. Zero means one
	// concurrent unit per (model, prompt) pair with no ceiling.
	Concurrency int `yaml:"concurrency"`

	// RequestTimeoutSeconds bounds a single generation or evaluation
	// request. Zero disables the timeout.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
}

// DefaultEvaluator returns the judge settings used when the evaluator
// section is absent from the file.
func DefaultEvaluator() Evaluator {
	return Evaluator{
		Model:  "gpt-4o",
		System: "You are a fable critic providing grades.",
		Prompt: "Please evaluate the following fable based on its creativity, coherence, " +
			"and moral lesson. Provide a grade from 1 to 10 (inclusive), where 1 is very poor " +
			"and 10 is excellent. Respond with the grade only.\n\nFable:\n{{fable}}",
		MaxTokens: 10,
	}
}

// Load reads and validates the settings file at path.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: settings file '%s' not found", ErrConfig, path)
		}
		return nil, fmt.Errorf("%w: reading '%s': %v", ErrConfig, path, err)
	}

	// Unknown keys are rejected so a misspelled section fails loudly
	// instead of silently falling back to defaults.
	var s Settings
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: invalid YAML format: %v", ErrConfig, err)
	}

	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) applyDefaults() {
	def := DefaultEvaluator()
	if s.Evaluator.Model == "" {
		s.Evaluator.Model = def.Model
	}
	if s.Evaluator.System == "" {
		s.Evaluator.System = def.System
	}
	if s.Evaluator.Prompt == "" {
		s.Evaluator.Prompt = def.Prompt
	}
	if s.Evaluator.MaxTokens == 0 {
		s.Evaluator.MaxTokens = def.MaxTokens
	}
}

// Validate checks the invariants every run depends on: non-empty feature
// dimensions, non-empty prompt templates, and a well-formed model registry.
func (s *Settings) Validate() error {
	dims := []struct {
		name   string
		values []string
	}{
		{"characters", s.Generator.Features.Characters},
		{"traits", s.Generator.Features.Traits},
		{"settings", s.Generator.Features.Settings},
		{"conflicts", s.Generator.Features.Conflicts},
		{"resolutions", s.Generator.Features.Resolutions},
		{"morals", s.Generator.Features.Morals},
	}
	for _, d := range dims {
		if len(d.values) == 0 {
			return fmt.Errorf("%w: generator.features.%s is empty", ErrConfig, d.name)
		}
		for i, v := range d.values {
			if strings.TrimSpace(v) == "" {
				return fmt.Errorf("%w: generator.features.%s[%d] is blank", ErrConfig, d.name, i)
			}
		}
	}

	if strings.TrimSpace(s.Generator.Prompt.System) == "" {
		return fmt.Errorf("%w: generator.prompt.system is empty", ErrConfig)
	}
	if strings.TrimSpace(s.Generator.Prompt.Fable) == "" {
		return fmt.Errorf("%w: generator.prompt.fable is empty", ErrConfig)
	}

	for key, m := range s.LLMs.HFModels {
		if m.Name == "" {
			return fmt.Errorf("%w: llms.hf-models.%s is missing a name", ErrConfig, key)
		}
		if m.BaseURL == "" {
			return fmt.Errorf("%w: llms.hf-models.%s is missing a base_url", ErrConfig, key)
		}
	}

	if s.Concurrency < 0 {
		return fmt.Errorf("%w: concurrency must not be negative", ErrConfig)
	}
	if s.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("%w: request_timeout_seconds must not be negative", ErrConfig)
	}
	return nil
}

// SelectModels resolves the requested model keys against the registry.
// An empty selection means every configured model. Unknown keys are a
// configuration error listing the invalid names.
func (s *Settings) SelectModels(names []string) (map[string]ModelConfig, error) {
	if len(s.LLMs.HFModels) == 0 {
		return nil, fmt.Errorf("%w: no models found in configuration", ErrConfig)
	}

	if len(names) == 0 {
		selected := make(map[string]ModelConfig, len(s.LLMs.HFModels))
		for k, v := range s.LLMs.HFModels {
			selected[k] = v
		}
		return selected, nil
	}

	var invalid []string
	selected := make(map[string]ModelConfig, len(names))
	for _, name := range names {
		m, ok := s.LLMs.HFModels[name]
		if !ok {
			invalid = append(invalid, name)
			continue
		}
		selected[name] = m
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return nil, fmt.Errorf("%w: invalid models: %s", ErrConfig, strings.Join(invalid, ", "))
	}
	return selected, nil
}

// RequestTimeout returns the configured per-request timeout, or zero when
// disabled.
func (s *Settings) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}
