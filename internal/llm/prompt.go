package llm

import (
	"strings"
	"text/template"

	"github.com/hyperjump/fintax/internal/models"
)

const promptText = `
You are a helpful assistant named TaxAJ. Use the following GST context to answer the question.
If the context does not contain the answer, answer based on your general tax knowledge.

Context:
{{.Context}}

Question:
{{.Question}}

Answer:
`

var promptTemplate = template.Must(template.New("taxaj").Parse(promptText))

// ComposeContext joins the chunk texts with newlines in retrieval order.
func ComposeContext(results []*models.QueryResult) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = r.Content
	}
	return strings.Join(parts, "\n")
}

// BuildPrompt fills the TaxAJ instruction template.
func BuildPrompt(context, question string) (string, error) {
	var b strings.Builder
	err := promptTemplate.Execute(&b, struct {
		Context  string
		Question string
	}{context, question})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
