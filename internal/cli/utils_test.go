package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/fintax/internal/models"
)

func scored(v float64) *float64 { return &v }

func TestWriteQueryResults_JSON(t *testing.T) {
	response := &models.QueryResponse{
		Question: "Who pays GST?",
		TopChunks: []*models.QueryResult{
			{Content: "The supplier pays.", Source: "sample2.txt", Section: "Section 9.", ChunkIndex: 0, Score: scored(0.25)},
			{Content: "Unscored.", Source: "sample2.txt", Section: "Section 2:", ChunkIndex: 1},
		},
	}
	var buf bytes.Buffer
	if err := WriteQueryResults(&buf, response, OutputJSON); err != nil {
		t.Fatalf("WriteQueryResults(json): %v", err)
	}
	var decoded struct {
		Question  string           `json:"question"`
		TopChunks []map[string]any `json:"top_chunks"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded.Question != response.Question || len(decoded.TopChunks) != 2 {
		t.Fatalf("unexpected output: %+v", decoded)
	}
	if v, ok := decoded.TopChunks[1]["score"]; !ok || v != nil {
		t.Errorf("unscored result should carry score null, got %v (present=%v)", v, ok)
	}
}

func TestWriteQueryResults_text(t *testing.T) {
	response := &models.QueryResponse{
		Question: "levy",
		TopChunks: []*models.QueryResult{
			{Content: strings.Repeat("x", 300), Source: "sample2.txt", Section: "Section 9.", ChunkIndex: 2, Score: scored(0.1)},
			{Content: "keyword hit", Source: "sample2.txt", Section: "Unknown", ChunkIndex: 0},
		},
	}
	var buf bytes.Buffer
	if err := WriteQueryResults(&buf, response, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, sub := range []string{`Found 2 chunks for "levy"`, "Rank: 1 | Score: 0.1000", "Section: Section 9. (chunk 2)", "Rank: 2\n", "keyword hit"} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
	if !strings.Contains(out, strings.Repeat("x", 200)+"...") || strings.Contains(out, strings.Repeat("x", 201)) {
		t.Errorf("long content should be truncated to 200 characters:\n%s", out)
	}
}

func TestWriteQueryResults_unknownFormatTreatedAsText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteQueryResults(&buf, &models.QueryResponse{Question: "x"}, OutputFormat("yaml")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Found 0 chunks") {
		t.Errorf("unknown format should fall back to text; got %q", buf.String())
	}
}

func TestWriteChatResponse(t *testing.T) {
	response := &models.ChatResponse{
		Question: "Who pays?",
		Reply:    "The supplier.",
		Sources: []models.ChunkMetadata{
			{Source: "sample2.txt", Section: "Section 9.", ChunkIndex: 0},
		},
	}
	var buf bytes.Buffer
	if err := WriteChatResponse(&buf, response, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "The supplier.") || !strings.Contains(out, "sample2.txt | Section 9. | chunk 0") {
		t.Errorf("unexpected text output:\n%s", out)
	}

	buf.Reset()
	if err := WriteChatResponse(&buf, response, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded models.ChatResponse
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Reply != response.Reply || len(decoded.Sources) != 1 {
		t.Errorf("decoded: %+v", decoded)
	}
}
