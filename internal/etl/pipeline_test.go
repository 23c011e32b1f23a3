package etl

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func newTestPipeline(t *testing.T) (*Pipeline, string) {
	t.Helper()
	out := t.TempDir()
	p := NewPipeline(&Config{
		OutputDir:       out,
		DefaultCategory: "imported",
		SkipDuplicates:  true,
		ValidateData:    true,
	}, zap.NewNop())
	return p, out
}

func writeDataset(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func readWordList(t *testing.T, dir, name string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return strings.Fields(string(data))
}

func TestPipelineCSV(t *testing.T) {
	p, out := newTestPipeline(t)
	input := writeDataset(t, "terms.csv", "term,category\nalpha,slurs\nbeta,slurs\ngamma,brands\n\ndelta,\n")

	result, err := p.ProcessFile(context.Background(), input)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if result.Imported != 4 {
		t.Errorf("Imported = %d, want 4", result.Imported)
	}

	slurs := readWordList(t, out, "slurs.txt")
	if len(slurs) != 2 || slurs[0] != "alpha" || slurs[1] != "beta" {
		t.Errorf("slurs.txt = %v", slurs)
	}
	imported := readWordList(t, out, "imported.txt")
	if len(imported) != 1 || imported[0] != "delta" {
		t.Errorf("imported.txt = %v", imported)
	}
}

func TestPipelineJSON(t *testing.T) {
	p, out := newTestPipeline(t)
	input := writeDataset(t, "terms.jsonl",
		`{"term":"one","category":"misc"}`+"\n"+`{"term":"two"}`+"\n")

	result, err := p.ProcessFile(context.Background(), input)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if result.Imported != 2 {
		t.Errorf("Imported = %d, want 2", result.Imported)
	}
	if got := readWordList(t, out, "misc.txt"); len(got) != 1 || got[0] != "one" {
		t.Errorf("misc.txt = %v", got)
	}
}

func TestPipelineSkipsDuplicates(t *testing.T) {
	p, out := newTestPipeline(t)
	if err := os.WriteFile(filepath.Join(out, "existing.txt"), []byte("alpha\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	input := writeDataset(t, "terms.csv", "term\nalpha\nalpha\nbeta\n")
	result, err := p.ProcessFile(context.Background(), input)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if result.Imported != 1 || result.Duplicates != 2 {
		t.Errorf("result = %+v, want 1 imported / 2 duplicates", result)
	}
}

func TestPipelineInvalidRecords(t *testing.T) {
	p, _ := newTestPipeline(t)
	input := writeDataset(t, "terms.csv", "term\n\n   \nreal\n")

	result, err := p.ProcessFile(context.Background(), input)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if result.Imported != 1 || result.Invalid < 1 {
		t.Errorf("result = %+v", result)
	}
}

func TestSanitizeCategory(t *testing.T) {
	cases := map[string]string{
		"Slurs":          "slurs",
		"Trade Marks":    "trade_marks",
		"  weird/../..":  "weird",
		"":               "imported",
		"mixed-CASE_9":   "mixed-case_9",
	}
	for in, want := range cases {
		if got := sanitizeCategory(in); got != want {
			t.Errorf("sanitizeCategory(%q) = %q, want %q", in, got, want)
		}
	}
}
