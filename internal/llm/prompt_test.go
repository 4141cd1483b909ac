package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/fintax/internal/models"
)

func TestBuildPrompt(t *testing.T) {
	got, err := BuildPrompt("Section 9: levy", "Who pays GST?")
	require.NoError(t, err)

	want := "\nYou are a helpful assistant named TaxAJ. Use the following GST context to answer the question.\n" +
		"If the context does not contain the answer, answer based on your general tax knowledge.\n\n" +
		"Context:\nSection 9: levy\n\nQuestion:\nWho pays GST?\n\nAnswer:\n"
	assert.Equal(t, want, got)
}

func TestBuildPromptKeepsTextVerbatim(t *testing.T) {
	got, err := BuildPrompt("a < b & c", `"quoted"`)
	require.NoError(t, err)
	assert.True(t, strings.Contains(got, "a < b & c"))
	assert.True(t, strings.Contains(got, `"quoted"`))
}

func TestComposeContext(t *testing.T) {
	results := []*models.QueryResult{
		{Content: "first"},
		{Content: "second"},
		{Content: "first"},
	}
	assert.Equal(t, "first\nsecond\nfirst", ComposeContext(results))
	assert.Equal(t, "", ComposeContext(nil))
}
