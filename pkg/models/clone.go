// Package models defines the reportable result types of a scan. These are
// the core's sole contract with the output layer.
package models

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/stat"
)

// Occurrence identifies a contiguous token span in one file, with its
// source line range for reporting.
type Occurrence struct {
	File       string `json:"file" toon:"file"`
	StartLine  int    `json:"start_line" toon:"start_line"`
	EndLine    int    `json:"end_line" toon:"end_line"`
	StartToken int    `json:"start_token" toon:"start_token"`
	EndToken   int    `json:"end_token" toon:"end_token"`
}

// Lines returns the inclusive line count of the occurrence.
func (o Occurrence) Lines() int { return o.EndLine - o.StartLine + 1 }

// Tokens returns the inclusive token count of the occurrence.
func (o Occurrence) Tokens() int { return o.EndToken - o.StartToken + 1 }

// CloneGroup is a maximal merged region of matching fingerprints between
// two locations. Both spans reproduce the same run of fingerprint hashes
// under the configured normalization level.
type CloneGroup struct {
	// ID is a stable content fingerprint of the normalized token span,
	// identical across runs and across occurrences of the same fragment.
	ID         string     `json:"id" toon:"id"`
	A          Occurrence `json:"a" toon:"a"`
	B          Occurrence `json:"b" toon:"b"`
	TokenCount int        `json:"token_count" toon:"token_count"`
	LineCount  int        `json:"line_count" toon:"line_count"`
}

// PairReport aggregates all clone groups between one pair of files.
type PairReport struct {
	FileA            string       `json:"file_a" toon:"file_a"`
	FileB            string       `json:"file_b" toon:"file_b"`
	Groups           []CloneGroup `json:"groups" toon:"groups"`
	TotalClonedLines int          `json:"total_cloned_lines" toon:"total_cloned_lines"`
}

// SkippedFile records a file excluded from the scan with the reason.
type SkippedFile struct {
	Path   string `json:"path" toon:"path"`
	Reason string `json:"reason" toon:"reason"`
}

// Summary holds aggregate statistics for a scan.
type Summary struct {
	FilesScanned       int     `json:"files_scanned" toon:"files_scanned"`
	FilesSkipped       int     `json:"files_skipped" toon:"files_skipped"`
	TotalGroups        int     `json:"total_groups" toon:"total_groups"`
	TotalPairs         int     `json:"total_pairs" toon:"total_pairs"`
	DuplicatedLines    int     `json:"duplicated_lines" toon:"duplicated_lines"`
	TotalLines         int     `json:"total_lines" toon:"total_lines"`
	DuplicationRatio   float64 `json:"duplication_ratio" toon:"duplication_ratio"`
	P50GroupTokens     float64 `json:"p50_group_tokens" toon:"p50_group_tokens"`
	P95GroupTokens     float64 `json:"p95_group_tokens" toon:"p95_group_tokens"`
	LargestGroupTokens int     `json:"largest_group_tokens" toon:"largest_group_tokens"`
	NormalizeLevel     int     `json:"normalize_level" toon:"normalize_level"`
}

// Analysis is the full result of one scan invocation.
type Analysis struct {
	Groups  []CloneGroup  `json:"groups" toon:"groups"`
	Reports []PairReport  `json:"reports" toon:"reports"`
	Skipped []SkippedFile `json:"skipped,omitempty" toon:"skipped,omitempty"`
	Summary Summary       `json:"summary" toon:"summary"`
}

// BuildReports buckets groups into per-file-pair reports. Groups must
// already be in stable (file pair, position) order; report order follows.
func BuildReports(groups []CloneGroup) []PairReport {
	type pairKey struct{ a, b string }
	var order []pairKey
	byPair := make(map[pairKey][]CloneGroup)
	for _, g := range groups {
		key := pairKey{g.A.File, g.B.File}
		if _, seen := byPair[key]; !seen {
			order = append(order, key)
		}
		byPair[key] = append(byPair[key], g)
	}

	reports := make([]PairReport, 0, len(order))
	for _, key := range order {
		pairGroups := byPair[key]
		total := 0
		for _, g := range pairGroups {
			total += g.LineCount
		}
		reports = append(reports, PairReport{
			FileA:            key.a,
			FileB:            key.b,
			Groups:           pairGroups,
			TotalClonedLines: total,
		})
	}
	return reports
}

// ComputeSummary derives aggregate statistics from the surviving groups.
// Duplicated lines are counted through per-file bitmaps so overlapping
// occurrences never inflate the ratio.
func ComputeSummary(groups []CloneGroup, totalLines, scanned, skipped, level int) Summary {
	s := Summary{
		FilesScanned:   scanned,
		FilesSkipped:   skipped,
		TotalGroups:    len(groups),
		TotalLines:     totalLines,
		NormalizeLevel: level,
	}

	coverage := make(map[string]*roaring.Bitmap)
	mark := func(o Occurrence) {
		bm := coverage[o.File]
		if bm == nil {
			bm = roaring.New()
			coverage[o.File] = bm
		}
		bm.AddRange(uint64(o.StartLine), uint64(o.EndLine)+1)
	}

	pairs := make(map[[2]string]struct{})
	sizes := make([]float64, 0, len(groups))
	for _, g := range groups {
		mark(g.A)
		mark(g.B)
		pairs[[2]string{g.A.File, g.B.File}] = struct{}{}
		sizes = append(sizes, float64(g.TokenCount))
		if g.TokenCount > s.LargestGroupTokens {
			s.LargestGroupTokens = g.TokenCount
		}
	}
	s.TotalPairs = len(pairs)

	for _, bm := range coverage {
		s.DuplicatedLines += int(bm.GetCardinality())
	}
	if totalLines > 0 {
		ratio := float64(s.DuplicatedLines) / float64(totalLines)
		if ratio > 1.0 {
			ratio = 1.0
		}
		s.DuplicationRatio = ratio
	}

	if len(sizes) > 0 {
		sort.Float64s(sizes)
		s.P50GroupTokens = stat.Quantile(0.50, stat.Empirical, sizes, nil)
		s.P95GroupTokens = stat.Quantile(0.95, stat.Empirical, sizes, nil)
	}

	return s
}
