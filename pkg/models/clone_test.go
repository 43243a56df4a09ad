package models

import "testing"

func mkGroup(fileA, fileB string, aStart, aEnd int, tokens int) CloneGroup {
	return CloneGroup{
		ID:         "g",
		A:          Occurrence{File: fileA, StartLine: aStart, EndLine: aEnd, StartToken: 0, EndToken: tokens - 1},
		B:          Occurrence{File: fileB, StartLine: aStart, EndLine: aEnd, StartToken: 0, EndToken: tokens - 1},
		TokenCount: tokens,
		LineCount:  aEnd - aStart + 1,
	}
}

func TestOccurrenceCounts(t *testing.T) {
	o := Occurrence{StartLine: 3, EndLine: 7, StartToken: 10, EndToken: 24}
	if o.Lines() != 5 {
		t.Errorf("Lines() = %d, want 5", o.Lines())
	}
	if o.Tokens() != 15 {
		t.Errorf("Tokens() = %d, want 15", o.Tokens())
	}
}

func TestBuildReports(t *testing.T) {
	groups := []CloneGroup{
		mkGroup("a.go", "b.go", 1, 5, 20),
		mkGroup("a.go", "b.go", 10, 12, 15),
		mkGroup("a.go", "c.go", 1, 4, 18),
	}

	reports := BuildReports(groups)
	if len(reports) != 2 {
		t.Fatalf("got %d reports, want 2", len(reports))
	}

	// Report order follows first appearance of each pair.
	if reports[0].FileA != "a.go" || reports[0].FileB != "b.go" {
		t.Errorf("first report is %s/%s, want a.go/b.go", reports[0].FileA, reports[0].FileB)
	}
	if len(reports[0].Groups) != 2 {
		t.Errorf("a.go/b.go has %d groups, want 2", len(reports[0].Groups))
	}
	if reports[0].TotalClonedLines != 5+3 {
		t.Errorf("total cloned lines = %d, want 8", reports[0].TotalClonedLines)
	}
	if len(reports[1].Groups) != 1 {
		t.Errorf("a.go/c.go has %d groups, want 1", len(reports[1].Groups))
	}
}

func TestBuildReportsEmpty(t *testing.T) {
	if got := BuildReports(nil); len(got) != 0 {
		t.Errorf("got %d reports from no groups", len(got))
	}
}

func TestComputeSummaryEmpty(t *testing.T) {
	s := ComputeSummary(nil, 100, 4, 1, 0)
	if s.TotalGroups != 0 || s.DuplicatedLines != 0 || s.DuplicationRatio != 0 {
		t.Errorf("empty summary carries nonzero clone stats: %+v", s)
	}
	if s.FilesScanned != 4 || s.FilesSkipped != 1 || s.TotalLines != 100 {
		t.Errorf("file counts mis-recorded: %+v", s)
	}
}

func TestComputeSummaryOverlapNotDoubleCounted(t *testing.T) {
	// Two groups covering overlapping lines of the same file must count the
	// shared lines once.
	groups := []CloneGroup{
		{
			A:          Occurrence{File: "a.go", StartLine: 1, EndLine: 10},
			B:          Occurrence{File: "b.go", StartLine: 1, EndLine: 10},
			TokenCount: 40, LineCount: 10,
		},
		{
			A:          Occurrence{File: "a.go", StartLine: 5, EndLine: 15},
			B:          Occurrence{File: "c.go", StartLine: 1, EndLine: 11},
			TokenCount: 44, LineCount: 11,
		},
	}

	s := ComputeSummary(groups, 100, 3, 0, 0)
	// a.go lines 1-15, b.go 1-10, c.go 1-11.
	if want := 15 + 10 + 11; s.DuplicatedLines != want {
		t.Errorf("duplicated lines = %d, want %d", s.DuplicatedLines, want)
	}
	if s.TotalPairs != 2 {
		t.Errorf("pairs = %d, want 2", s.TotalPairs)
	}
	if s.DuplicationRatio != 0.36 {
		t.Errorf("ratio = %v, want 0.36", s.DuplicationRatio)
	}
}

func TestComputeSummaryRatioCapped(t *testing.T) {
	groups := []CloneGroup{
		{
			A:          Occurrence{File: "a.go", StartLine: 1, EndLine: 50},
			B:          Occurrence{File: "b.go", StartLine: 1, EndLine: 50},
			TokenCount: 200, LineCount: 50,
		},
	}
	s := ComputeSummary(groups, 10, 2, 0, 0)
	if s.DuplicationRatio > 1.0 {
		t.Errorf("ratio %v exceeds 1.0", s.DuplicationRatio)
	}
}

func TestComputeSummaryQuantiles(t *testing.T) {
	var groups []CloneGroup
	for _, tokens := range []int{10, 20, 30, 40, 100} {
		groups = append(groups, CloneGroup{
			A:          Occurrence{File: "a.go", StartLine: 1, EndLine: 2},
			B:          Occurrence{File: "b.go", StartLine: 1, EndLine: 2},
			TokenCount: tokens, LineCount: 2,
		})
	}

	s := ComputeSummary(groups, 1000, 2, 0, 1)
	if s.LargestGroupTokens != 100 {
		t.Errorf("largest = %d, want 100", s.LargestGroupTokens)
	}
	if s.P50GroupTokens < 10 || s.P50GroupTokens > 40 {
		t.Errorf("p50 = %v, outside the sample range", s.P50GroupTokens)
	}
	if s.P95GroupTokens < s.P50GroupTokens {
		t.Errorf("p95 %v below p50 %v", s.P95GroupTokens, s.P50GroupTokens)
	}
	if s.NormalizeLevel != 1 {
		t.Errorf("normalize level = %d, want 1", s.NormalizeLevel)
	}
}
