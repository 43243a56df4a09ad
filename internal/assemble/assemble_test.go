package assemble

import (
	"strings"
	"testing"

	"github.com/pastiche-dev/pastiche/internal/fingerprint"
	"github.com/pastiche-dev/pastiche/internal/index"
	"github.com/pastiche-dev/pastiche/internal/normalize"
	"github.com/pastiche-dev/pastiche/pkg/lexer"
	"github.com/pastiche-dev/pastiche/pkg/models"
)

const testK, testWindow = 5, 4

// pipeline lexes and fingerprints sources (path -> content, paths sorted by
// caller order) and assembles clone groups with the given thresholds.
func pipeline(t *testing.T, files [][2]string, minTokens, gap int) ([]models.CloneGroup, []*normalize.Stream) {
	t.Helper()
	streams := make([]*normalize.Stream, len(files))
	perFile := make([]index.FileFingerprints, len(files))
	for i, f := range files {
		lx, err := lexer.ForFile(f[0])
		if err != nil {
			t.Fatal(err)
		}
		raw, err := lx.Tokenize([]byte(f[1]))
		if err != nil {
			t.Fatal(err)
		}
		st, err := normalize.Apply(f[0], raw, normalize.LevelExact)
		if err != nil {
			t.Fatal(err)
		}
		streams[i] = st
		perFile[i] = index.FileFingerprints{
			File:         i,
			Fingerprints: fingerprint.Winnow(fingerprint.Grams(st, testK), testWindow),
		}
	}
	ix := index.Build(perFile)
	return Assemble(ix, streams, minTokens, gap), streams
}

func TestAssembleIdenticalFunction(t *testing.T) {
	src := `function foo() { x = 1; y = 2; z = 3; return x + y + z; }`

	groups, streams := pipeline(t, [][2]string{
		{"a.js", src + "\n"},
		{"b.js", "let pad = 0;\n" + src + "\n"},
	}, 15, 0)

	if len(groups) != 1 {
		t.Fatalf("got %d groups, want exactly 1: %+v", len(groups), groups)
	}
	g := groups[0]
	if g.A.File != "a.js" || g.B.File != "b.js" {
		t.Errorf("group spans %s/%s, want a.js/b.js", g.A.File, g.B.File)
	}

	// Extension makes the region maximal: all of a.js, offset past the
	// padding statement in b.js.
	if g.A.StartToken != 0 || g.A.EndToken != streams[0].Len()-1 {
		t.Errorf("side A covers tokens [%d,%d], want [0,%d]",
			g.A.StartToken, g.A.EndToken, streams[0].Len()-1)
	}
	if g.TokenCount != streams[0].Len() {
		t.Errorf("token count %d, want %d", g.TokenCount, streams[0].Len())
	}
	if g.B.StartToken-g.A.StartToken != 5 {
		t.Errorf("diagonal offset %d, want 5 (the padding statement)",
			g.B.StartToken-g.A.StartToken)
	}
}

func TestAssembleFullSpanBothFiles(t *testing.T) {
	// Two files that are nothing but the same short function: one group,
	// covering every token on both sides.
	src := "function foo() { x = 1; y = 2; return x + y; }\n"
	groups, streams := pipeline(t, [][2]string{{"a.js", src}, {"b.js", src}}, 15, 0)

	if len(groups) != 1 {
		t.Fatalf("got %d groups, want exactly 1", len(groups))
	}
	g := groups[0]
	n := streams[0].Len()
	if g.A.StartToken != 0 || g.A.EndToken != n-1 ||
		g.B.StartToken != 0 || g.B.EndToken != n-1 {
		t.Errorf("group covers A [%d,%d] B [%d,%d], want [0,%d] on both sides",
			g.A.StartToken, g.A.EndToken, g.B.StartToken, g.B.EndToken, n-1)
	}
}

func TestAssembleNoClones(t *testing.T) {
	groups, _ := pipeline(t, [][2]string{
		{"a.js", "function alpha() { return fetchUsers(database, limit); }\n"},
		{"b.js", "let total = price * quantity + shipping - discount;\n"},
	}, 10, 0)
	if len(groups) != 0 {
		t.Errorf("got %d groups from unrelated sources, want 0", len(groups))
	}
}

func TestAssembleMinTokensFilter(t *testing.T) {
	src := `function foo() { x = 1; y = 2; z = 3; return x + y + z; }`
	files := [][2]string{{"a.js", src + "\n"}, {"b.js", src + "\n"}}

	groups, streams := pipeline(t, files, 10, 0)
	if len(groups) != 1 {
		t.Fatalf("got %d groups below threshold test setup, want 1", len(groups))
	}
	// Raising min_tokens above the clone's span must drop it.
	groups, _ = pipeline(t, files, streams[0].Len()+1, 0)
	if len(groups) != 0 {
		t.Errorf("got %d groups with min_tokens above the span, want 0", len(groups))
	}
}

func TestAssembleSameFile(t *testing.T) {
	block := `function foo() { a = 1; b = 2; c = 3; return a + b + c; }`
	src := block + "\n\n" + strings.ReplaceAll(block, "foo", "bar") + "\n"

	groups, _ := pipeline(t, [][2]string{{"dup.js", src}}, 15, 1)
	if len(groups) == 0 {
		t.Fatal("same-file clone not detected")
	}
	for _, g := range groups {
		if g.A.File != g.B.File {
			t.Fatalf("unexpected cross-file group: %+v", g)
		}
		if g.B.StartToken <= g.A.EndToken {
			t.Errorf("same-file group overlaps itself: A [%d,%d] B [%d,%d]",
				g.A.StartToken, g.A.EndToken, g.B.StartToken, g.B.EndToken)
		}
	}
}

func TestAssembleSelfMatchSkipped(t *testing.T) {
	// A run of identical statements matches itself at overlapping offsets;
	// none of those overlaps may surface as clones.
	src := strings.Repeat("x = x + 1;\n", 12)
	groups, _ := pipeline(t, [][2]string{{"rep.js", src}}, 6, 0)
	for _, g := range groups {
		if g.A.StartToken >= g.B.StartToken {
			t.Errorf("same-file group not ordered or matched against itself: %+v", g)
		}
	}
}

func TestAssembleLineRanges(t *testing.T) {
	src := "function foo() {\n  x = 1;\n  y = 2;\n  z = 3;\n  return x + y + z;\n}\n"
	groups, _ := pipeline(t, [][2]string{
		{"a.js", src},
		{"b.js", "// header\n" + src},
	}, 15, 0)

	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	g := groups[0]
	if g.A.StartLine != 1 || g.A.EndLine != 6 {
		t.Errorf("side A lines [%d,%d], want [1,6]", g.A.StartLine, g.A.EndLine)
	}
	// The comment is dropped before fingerprinting; it shifts side B down
	// one line without joining the clone.
	if g.B.StartLine != 2 || g.B.EndLine != 7 {
		t.Errorf("side B lines [%d,%d], want [2,7]", g.B.StartLine, g.B.EndLine)
	}
}

func TestAssembleStableID(t *testing.T) {
	src := `function foo() { x = 1; y = 2; z = 3; return x + y + z; }`
	files := [][2]string{{"a.js", src + "\n"}, {"b.js", src + "\n"}}

	g1, _ := pipeline(t, files, 15, 0)
	g2, _ := pipeline(t, files, 15, 0)
	if g1[0].ID == "" || g1[0].ID != g2[0].ID {
		t.Errorf("group ID not stable across runs: %q vs %q", g1[0].ID, g2[0].ID)
	}
}

func TestAssembleDeterministicOrder(t *testing.T) {
	src1 := `function foo() { x = 1; y = 2; z = 3; return x + y + z; }`
	src2 := `function bar(a, b) { let s = a + b; let d = a - b; return s * d; }`
	files := [][2]string{
		{"a.js", src1 + "\n" + src2 + "\n"},
		{"b.js", src2 + "\n"},
		{"c.js", src1 + "\n"},
	}

	first, _ := pipeline(t, files, 12, 0)
	if len(first) < 2 {
		t.Fatalf("want at least 2 groups, got %d", len(first))
	}
	for run := 0; run < 5; run++ {
		again, _ := pipeline(t, files, 12, 0)
		if len(again) != len(first) {
			t.Fatalf("run %d: got %d groups, want %d", run, len(again), len(first))
		}
		for i := range first {
			if again[i] != first[i] {
				t.Fatalf("run %d: group %d differs: %+v vs %+v", run, i, again[i], first[i])
			}
		}
	}
}

func TestDedupeSubsumption(t *testing.T) {
	big := models.CloneGroup{
		A:          models.Occurrence{StartToken: 0, EndToken: 50},
		B:          models.Occurrence{StartToken: 100, EndToken: 150},
		TokenCount: 51,
	}
	small := models.CloneGroup{
		A:          models.Occurrence{StartToken: 10, EndToken: 30},
		B:          models.Occurrence{StartToken: 110, EndToken: 130},
		TokenCount: 21,
	}
	separate := models.CloneGroup{
		A:          models.Occurrence{StartToken: 200, EndToken: 220},
		B:          models.Occurrence{StartToken: 300, EndToken: 320},
		TokenCount: 21,
	}

	kept := dedupe([]models.CloneGroup{small, big, separate})
	if len(kept) != 2 {
		t.Fatalf("got %d groups, want 2", len(kept))
	}
	for _, g := range kept {
		if g.A.StartToken == 10 {
			t.Error("subsumed group survived dedupe")
		}
	}
}
