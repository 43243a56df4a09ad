package lexer

import (
	"errors"
	"testing"
)

func tokenize(t *testing.T, path, src string) []Token {
	t.Helper()
	lx, err := ForFile(path)
	if err != nil {
		t.Fatal(err)
	}
	tokens, err := lx.Tokenize([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	return tokens
}

func kinds(tokens []Token) []Kind {
	out := make([]Kind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func TestForFile(t *testing.T) {
	tests := []struct {
		path string
		lang string
	}{
		{"main.go", "go"},
		{"app.py", "python"},
		{"index.js", "javascript"},
		{"component.tsx", "typescript"},
		{"lib.rs", "rust"},
		{"Main.java", "java"},
		{"util.c", "c"},
		{"util.hpp", "cpp"},
		{"job.rb", "ruby"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			lx, err := ForFile(tt.path)
			if err != nil {
				t.Fatal(err)
			}
			if lx.Language() != tt.lang {
				t.Errorf("got language %q, want %q", lx.Language(), tt.lang)
			}
		})
	}
}

func TestForFileUnsupported(t *testing.T) {
	_, err := ForFile("README.md")
	if !errors.Is(err, ErrUnlexableFile) {
		t.Errorf("got %v, want ErrUnlexableFile", err)
	}
	if Supported("README.md") {
		t.Error("markdown reported as supported")
	}
	if Language("README.md") != "" {
		t.Error("markdown reported a language")
	}
}

func TestTokenizeGo(t *testing.T) {
	tokens := tokenize(t, "a.go", `if x >= 10 { return "done" }`)

	want := []struct {
		kind Kind
		text string
	}{
		{KindKeyword, "if"},
		{KindIdentifier, "x"},
		{KindOperator, ">="},
		{KindLiteral, "10"},
		{KindOperator, "{"},
		{KindKeyword, "return"},
		{KindLiteral, `"done"`},
		{KindOperator, "}"},
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens %v, want %d", len(tokens), tokens, len(want))
	}
	for i, w := range want {
		if tokens[i].Kind != w.kind || tokens[i].Text != w.text {
			t.Errorf("token %d: got (%s, %q), want (%s, %q)",
				i, tokens[i].Kind, tokens[i].Text, w.kind, w.text)
		}
	}
}

func TestTokenizeComments(t *testing.T) {
	tests := []struct {
		name string
		path string
		src  string
		want string
	}{
		{"go line", "a.go", "x // trailing\ny", "// trailing"},
		{"go block", "a.go", "x /* multi\nline */ y", "/* multi\nline */"},
		{"python hash", "a.py", "x # note\ny", "# note"},
		{"ruby hash", "a.rb", "x # note\ny", "# note"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := tokenize(t, tt.path, tt.src)
			var comment *Token
			for i := range tokens {
				if tokens[i].Kind == KindComment {
					comment = &tokens[i]
				}
			}
			if comment == nil {
				t.Fatalf("no comment token in %v", kinds(tokens))
			}
			if comment.Text != tt.want {
				t.Errorf("got %q, want %q", comment.Text, tt.want)
			}
		})
	}
}

func TestTokenizeStringEscapes(t *testing.T) {
	tokens := tokenize(t, "a.go", `s := "he said \"hi\"" + x`)
	var lit *Token
	for i := range tokens {
		if tokens[i].Kind == KindLiteral {
			lit = &tokens[i]
		}
	}
	if lit == nil || lit.Text != `"he said \"hi\""` {
		t.Errorf("escaped string mis-scanned: %v", tokens)
	}
}

func TestTokenizeRawString(t *testing.T) {
	tokens := tokenize(t, "a.go", "s := `a \\ b`")
	found := false
	for _, tok := range tokens {
		if tok.Kind == KindLiteral && tok.Text == "`a \\ b`" {
			found = true
		}
	}
	if !found {
		t.Errorf("raw string mis-scanned: %v", tokens)
	}
}

func TestTokenizeLiteralWords(t *testing.T) {
	tokens := tokenize(t, "a.go", "x := true")
	last := tokens[len(tokens)-1]
	if last.Kind != KindLiteral {
		t.Errorf("true classified as %s, want literal", last.Kind)
	}

	tokens = tokenize(t, "a.py", "x = None")
	last = tokens[len(tokens)-1]
	if last.Kind != KindLiteral {
		t.Errorf("None classified as %s, want literal", last.Kind)
	}
}

func TestTokenizePositions(t *testing.T) {
	tokens := tokenize(t, "a.go", "a\n  bb\nccc")
	want := []struct{ line, col int }{{1, 0}, {2, 2}, {3, 0}}
	for i, w := range want {
		if tokens[i].Line != w.line || tokens[i].Col != w.col {
			t.Errorf("token %d at %d:%d, want %d:%d",
				i, tokens[i].Line, tokens[i].Col, w.line, w.col)
		}
	}
}

func TestTokenizeNumbers(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"x = 42", "42"},
		{"x = 3.14", "3.14"},
		{"x = 0xFF", "0xFF"},
		{"x = 1_000_000", "1_000_000"},
		{"x = 1e9", "1e9"},
	}
	for _, tt := range tests {
		tokens := tokenize(t, "a.py", tt.src)
		last := tokens[len(tokens)-1]
		if last.Kind != KindLiteral || last.Text != tt.want {
			t.Errorf("%s: got (%s, %q), want literal %q", tt.src, last.Kind, last.Text, tt.want)
		}
	}
}

func TestTokenizeUnterminated(t *testing.T) {
	// Broken input still tokenizes; the scan never aborts on it.
	for _, src := range []string{`x = "unterminated`, "x /* unterminated", "`raw"} {
		tokens := tokenize(t, "a.go", src)
		if len(tokens) == 0 {
			t.Errorf("%q produced no tokens", src)
		}
	}
}
