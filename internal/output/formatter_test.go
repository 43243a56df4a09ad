package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"toon", FormatTOON},
		{"text", FormatText},
		{"", FormatText},
		{"bogus", FormatText},
	}
	for _, tt := range tests {
		if got := ParseFormat(tt.in); got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatterJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	f, err := NewFormatter(FormatJSON, path, true)
	if err != nil {
		t.Fatal(err)
	}

	data := map[string]int{"groups": 3}
	if err := f.Output(data); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]int
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("invalid JSON written: %v", err)
	}
	if decoded["groups"] != 3 {
		t.Errorf("round-trip lost data: %v", decoded)
	}
}

func TestTableRenderMarkdown(t *testing.T) {
	table := NewTable("Clones",
		[]string{"A", "B"},
		[][]string{{"a.go:1-5", "b.go:2-6"}},
		[]string{"total: 1", ""},
		nil,
	)

	var buf bytes.Buffer
	if err := table.RenderMarkdown(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{"## Clones", "| A | B |", "| --- | --- |", "| a.go:1-5 | b.go:2-6 |", "| total: 1 |"} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
}

func TestTableRenderText(t *testing.T) {
	table := NewTable("Report",
		[]string{"File", "Lines"},
		[][]string{{"x.go", "12"}},
		nil,
		nil,
	)

	var buf bytes.Buffer
	if err := table.RenderText(&buf, false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "Report") || !strings.Contains(out, "x.go") {
		t.Errorf("text output incomplete:\n%s", out)
	}
}

func TestTableRenderDataPrefersWrapped(t *testing.T) {
	payload := struct{ N int }{N: 7}
	table := NewTable("", []string{"h"}, [][]string{{"v"}}, nil, payload)
	if got := table.RenderData(); got != any(payload) {
		t.Errorf("RenderData() = %v, want wrapped payload", got)
	}

	bare := NewTable("", []string{"h"}, [][]string{{"v"}}, nil, nil)
	rows, ok := bare.RenderData().([]map[string]string)
	if !ok || len(rows) != 1 || rows[0]["h"] != "v" {
		t.Errorf("fallback RenderData() = %v", bare.RenderData())
	}
}

func TestFormatterRenderableDispatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")
	f, err := NewFormatter(FormatMarkdown, path, false)
	if err != nil {
		t.Fatal(err)
	}

	table := NewTable("Dispatch", []string{"k"}, [][]string{{"v"}}, nil, nil)
	if err := f.Output(table); err != nil {
		t.Fatal(err)
	}
	f.Close()

	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), "## Dispatch") {
		t.Errorf("markdown dispatch failed:\n%s", raw)
	}
}
