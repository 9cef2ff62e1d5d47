package fable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyfabulist/tinyfabulist/internal/config"
	"github.com/tinyfabulist/tinyfabulist/internal/template"
)

func TestBuildPrompts(t *testing.T) {
	templates := config.PromptTemplates{
		System: "You are a fabulist.",
		Fable:  "Write a fable about a {{trait}} {{character}} in {{setting}}. Conflict: {{conflict}}. Resolution: {{resolution}}. Moral: {{moral}}",
	}
	combos := []Combination{
		{"Fox", "Brave", "Forest", "Hunger", "Shared", "Kindness wins"},
		{"Rabbit", "Wise", "Meadow", "Drought", "Fled", "Pride falls"},
	}

	set, err := BuildPrompts(template.NewEngine(), templates, combos)
	require.NoError(t, err)

	assert.Equal(t, "You are a fabulist.", set.System)
	require.Len(t, set.Prompts, 2)
	assert.Equal(t, "Write a fable about a Brave Fox in Forest. Conflict: Hunger. Resolution: Shared. Moral: Kindness wins", set.Prompts[0])
	assert.Contains(t, set.Prompts[1], "Wise Rabbit")
	assert.Contains(t, set.Prompts[1], "Pride falls")
}

func TestBuildPromptsUndefinedField(t *testing.T) {
	templates := config.PromptTemplates{
		System: "You are a fabulist.",
		Fable:  "Write a fable about {{protagonist}}.",
	}
	combos := []Combination{{"Fox", "Brave", "Forest", "Hunger", "Shared", "Kindness wins"}}

	_, err := BuildPrompts(template.NewEngine(), templates, combos)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrConfig)
	assert.Contains(t, err.Error(), "protagonist")
}

func TestBuildPromptsSystemWithPlaceholderFails(t *testing.T) {
	// The system prompt renders against an empty context, so any
	// placeholder in it is a deployment error.
	templates := config.PromptTemplates{
		System: "You are {{persona}}.",
		Fable:  "Write a fable about {{character}}.",
	}

	_, err := BuildPrompts(template.NewEngine(), templates, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, template.ErrExecute)
}

func TestCombinationVars(t *testing.T) {
	c := Combination{"Fox", "Brave", "Forest", "Hunger", "Shared", "Kindness wins"}
	vars := c.Vars()
	assert.Equal(t, "Fox", vars["character"])
	assert.Equal(t, "Brave", vars["trait"])
	assert.Equal(t, "Forest", vars["setting"])
	assert.Equal(t, "Hunger", vars["conflict"])
	assert.Equal(t, "Shared", vars["resolution"])
	assert.Equal(t, "Kindness wins", vars["moral"])
}
