package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
generator:
  features:
    characters: [Fox, Rabbit]
    traits: [Brave]
    settings: [Forest]
    conflicts: [Hunger]
    resolutions: [Shared]
    morals: ["Kindness wins"]
  prompt:
    system: "You are a fabulist."
    fable: "Write a fable about a {{trait}} {{character}}."
llms:
  hf-models:
    llama-8b:
      name: meta-llama/Meta-Llama-3-8B-Instruct
      base_url: https://example.test/llama/v1/
    mistral-7b:
      name: mistralai/Mistral-7B-Instruct-v0.3
      base_url: https://example.test/mistral/v1/
concurrency: 8
request_timeout_seconds: 30
`

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tinyfabulist.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadValid(t *testing.T) {
	s, err := Load(writeSettings(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"Fox", "Rabbit"}, s.Generator.Features.Characters)
	assert.Equal(t, "You are a fabulist.", s.Generator.Prompt.System)
	assert.Len(t, s.LLMs.HFModels, 2)
	assert.Equal(t, "meta-llama/Meta-Llama-3-8B-Instruct", s.LLMs.HFModels["llama-8b"].Name)
	assert.Equal(t, 8, s.Concurrency)
	assert.Equal(t, 30*time.Second, s.RequestTimeout())
}

func TestLoadAppliesEvaluatorDefaults(t *testing.T) {
	s, err := Load(writeSettings(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", s.Evaluator.Model)
	assert.Equal(t, 10, s.Evaluator.MaxTokens)
	assert.Contains(t, s.Evaluator.Prompt, "{{fable}}")
	assert.NotEmpty(t, s.Evaluator.System)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(writeSettings(t, "generator: [unclosed"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	_, err := Load(writeSettings(t, validYAML+"unknown_key: true\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "unknown_key")
}

func TestLoadEmptyFeatureList(t *testing.T) {
	broken := `
generator:
  features:
    characters: []
    traits: [Brave]
    settings: [Forest]
    conflicts: [Hunger]
    resolutions: [Shared]
    morals: ["Kindness wins"]
  prompt:
    system: sys
    fable: "{{character}}"
`
	_, err := Load(writeSettings(t, broken))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "characters")
}

func TestLoadMissingFableTemplate(t *testing.T) {
	broken := `
generator:
  features:
    characters: [Fox]
    traits: [Brave]
    settings: [Forest]
    conflicts: [Hunger]
    resolutions: [Shared]
    morals: ["Kindness wins"]
  prompt:
    system: sys
`
	_, err := Load(writeSettings(t, broken))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generator.prompt.fable")
}

func TestLoadModelMissingBaseURL(t *testing.T) {
	bad := `
generator:
  features:
    characters: [Fox]
    traits: [Brave]
    settings: [Forest]
    conflicts: [Hunger]
    resolutions: [Shared]
    morals: ["Kindness wins"]
  prompt:
    system: sys
    fable: "{{character}}"
llms:
  hf-models:
    llama-8b:
      name: some-model
`
	_, err := Load(writeSettings(t, bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base_url")
}

func TestSelectModelsAll(t *testing.T) {
	s, err := Load(writeSettings(t, validYAML))
	require.NoError(t, err)

	models, err := s.SelectModels(nil)
	require.NoError(t, err)
	assert.Len(t, models, 2)
}

func TestSelectModelsSubset(t *testing.T) {
	s, err := Load(writeSettings(t, validYAML))
	require.NoError(t, err)

	models, err := s.SelectModels([]string{"llama-8b"})
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "meta-llama/Meta-Llama-3-8B-Instruct", models["llama-8b"].Name)
}

func TestSelectModelsInvalid(t *testing.T) {
	s, err := Load(writeSettings(t, validYAML))
	require.NoError(t, err)

	_, err = s.SelectModels([]string{"llama-8b", "nope", "also-nope"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "invalid models: also-nope, nope")
}

func TestSelectModelsEmptyRegistry(t *testing.T) {
	s := &Settings{}
	_, err := s.SelectModels(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no models found")
}
