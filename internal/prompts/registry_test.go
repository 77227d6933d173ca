package prompts

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automenta/mcr/internal/types"
)

func TestBuiltinTemplatesDeclareAllPlaceholders(t *testing.T) {
	// NewRegistry panics if a builtin template uses an undeclared variable,
	// so constructing it is itself the assertion.
	r := NewRegistry()

	for _, name := range r.Names() {
		tmpl, err := r.Get(name)
		require.NoError(t, err)
		declared := make(map[string]bool)
		for _, v := range tmpl.Variables {
			declared[v] = true
		}
		for _, p := range tmpl.Placeholders() {
			assert.True(t, declared[p], "template %s placeholder %s undeclared", name, p)
		}
	}
}

func TestFillReplacesAllPlaceholders(t *testing.T) {
	r := NewRegistry()
	system, user, err := r.Fill("LOGIC_TO_NL_ANSWER", map[string]string{
		"question":      "What color is the sky?",
		"solutionsJson": `[{"X":"blue"}]`,
		"style":         "conversational",
	})
	require.NoError(t, err)
	assert.Contains(t, user, "What color is the sky?")
	assert.Contains(t, user, `[{"X":"blue"}]`)
	assert.Contains(t, system, "conversational")
	assert.NotContains(t, system, "{{")
	assert.NotContains(t, user, "{{")
}

func TestFillMissingVariableNamesKey(t *testing.T) {
	r := NewRegistry()
	_, _, err := r.Fill("LOGIC_TO_NL_ANSWER", map[string]string{
		"question": "q",
		"style":    "default",
	})
	require.Error(t, err)

	var mcrErr *types.MCRError
	require.True(t, errors.As(err, &mcrErr))
	assert.Equal(t, types.ErrPromptFormattingFailed, mcrErr.Code)
	assert.Contains(t, mcrErr.Message, "solutionsJson")
}

func TestFillIgnoresExtraKeys(t *testing.T) {
	r := NewRegistry()
	_, _, err := r.Fill("NL_TO_RULES", map[string]string{
		"naturalLanguageText": "Birds fly.",
		"unused":              "whatever",
	})
	assert.NoError(t, err)
}

func TestFillRejectsPlaceholderInjection(t *testing.T) {
	r := NewRegistry()
	_, _, err := r.Fill("NL_TO_RULES", map[string]string{
		"naturalLanguageText": "sneaky {{other}}",
	})
	require.Error(t, err)

	var mcrErr *types.MCRError
	require.True(t, errors.As(err, &mcrErr))
	assert.Equal(t, types.ErrPromptFormattingFailed, mcrErr.Code)
}

func TestGetUnknownTemplate(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("NO_SUCH_PROMPT")
	var mcrErr *types.MCRError
	require.True(t, errors.As(err, &mcrErr))
	assert.Equal(t, types.ErrPromptTemplateNotFound, mcrErr.Code)
}

func TestRegisterRejectsUndeclaredVariables(t *testing.T) {
	r := NewRegistry()
	err := r.Register(Template{
		Name:      "BAD",
		User:      "hello {{who}}",
		Variables: []string{"name"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "who")
}

func TestFormatPreview(t *testing.T) {
	r := NewRegistry()
	preview, err := r.FormatPreview("NL_TO_RULES", map[string]string{
		"naturalLanguageText": "Cats purr.",
	})
	require.NoError(t, err)
	assert.Contains(t, preview["formatted_user"], "Cats purr.")
	assert.Contains(t, preview["template_user"], "{{naturalLanguageText}}")
}
