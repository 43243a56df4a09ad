package main

import (
	"fmt"

	"github.com/pastiche-dev/pastiche/internal/output"
	"github.com/pastiche-dev/pastiche/pkg/models"
)

// buildCloneTable renders an analysis as a table for the text and markdown
// formats. JSON and TOON serialize the full analysis instead.
func buildCloneTable(analysis *models.Analysis) *output.Table {
	var rows [][]string
	for _, g := range analysis.Groups {
		rows = append(rows, []string{
			g.ID,
			fmt.Sprintf("%s:%d-%d", g.A.File, g.A.StartLine, g.A.EndLine),
			fmt.Sprintf("%s:%d-%d", g.B.File, g.B.StartLine, g.B.EndLine),
			fmt.Sprintf("%d", g.TokenCount),
			fmt.Sprintf("%d", g.LineCount),
		})
	}

	s := analysis.Summary
	title := "Copy-Paste Report"
	if len(analysis.Groups) == 0 {
		title = "No clones found"
	}

	return output.NewTable(
		title,
		[]string{"Group", "Location A", "Location B", "Tokens", "Lines"},
		rows,
		[]string{
			fmt.Sprintf("Groups: %d", s.TotalGroups),
			fmt.Sprintf("Pairs: %d", s.TotalPairs),
			fmt.Sprintf("Duplication: %.1f%%", s.DuplicationRatio*100),
			fmt.Sprintf("P50/P95 tokens: %.0f/%.0f", s.P50GroupTokens, s.P95GroupTokens),
			fmt.Sprintf("Files: %d scanned, %d skipped", s.FilesScanned, s.FilesSkipped),
		},
		analysis,
	)
}
