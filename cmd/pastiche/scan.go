package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pastiche-dev/pastiche/internal/output"
	"github.com/pastiche-dev/pastiche/internal/progress"
	"github.com/pastiche-dev/pastiche/internal/scanner"
	"github.com/pastiche-dev/pastiche/pkg/analyzer/clones"
	"github.com/pastiche-dev/pastiche/pkg/config"
)

var scanCmd = &cobra.Command{
	Use:     "scan [path...]",
	Aliases: []string{"detect"},
	Short:   "Scan for copy-pasted code",
	Long: `Scan fingerprints every supported source file under the given paths
and reports token runs that appear in more than one place. Exits 1 when
clones are found, 0 when none are, and 2 on configuration errors.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().Int("min-tokens", 0, "Minimum clone length in tokens")
	scanCmd.Flags().Int("kgram-size", 0, "Tokens per k-gram hash")
	scanCmd.Flags().Int("window-size", 0, "Winnowing window over gram hashes")
	scanCmd.Flags().IntP("normalize", "n", -1, "Normalization: 0 exact, 1 identifiers, 2 identifiers+literals")
	scanCmd.Flags().Int("gap-tolerance", -1, "Max token gap bridged when merging fingerprint runs")
	scanCmd.Flags().StringArrayP("suppress", "s", nil, "Suppression glob matched against clone context lines (repeatable)")
	scanCmd.Flags().Int("min-family-size", 0, "Distinct locations before family suppression applies")
	scanCmd.Flags().StringArrayP("ignore", "i", nil, "File exclusion glob (repeatable)")
	scanCmd.Flags().StringSliceP("languages", "l", nil, "Restrict scan to these languages")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		exitCode = 2
		return fmt.Errorf("config: %w", err)
	}
	mergeScanFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		exitCode = 2
		return fmt.Errorf("config: %w", err)
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	files, err := scanner.New(cfg).ScanPaths(paths)
	if err != nil {
		exitCode = 2
		return err
	}
	if len(files) == 0 {
		color.Yellow("No source files found")
		return nil
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "scanning %d files (guaranteed match length %d tokens)\n",
			len(files), cfg.GuaranteedMinTokens())
	}

	opts := []clones.Option{clones.WithConfig(cfg)}
	var tracker *progress.Tracker
	if progressEnabled() {
		tracker = progress.NewTracker("Fingerprinting...", len(files))
		opts = append(opts, clones.WithProgress(tracker.Tick))
	}

	analyzer := clones.New(opts...)
	analysis, err := analyzer.Analyze(cmd.Context(), files)
	if tracker != nil {
		tracker.Finish()
	}
	if err != nil {
		exitCode = 2
		return err
	}

	for _, sk := range analysis.Skipped {
		fmt.Fprintf(os.Stderr, "warning: skipped %s: %s\n", sk.Path, sk.Reason)
	}

	formatter, err := output.NewFormatter(effectiveFormat(cfg), outputFile, colorEnabled(cfg))
	if err != nil {
		exitCode = 2
		return err
	}
	defer formatter.Close()

	if err := formatter.Output(buildCloneTable(analysis)); err != nil {
		exitCode = 2
		return err
	}

	if len(analysis.Groups) > 0 {
		exitCode = 1
	}
	return nil
}

// mergeScanFlags overlays explicitly-set flags onto the loaded config.
func mergeScanFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("min-tokens") {
		cfg.Fingerprint.MinTokens, _ = flags.GetInt("min-tokens")
	}
	if flags.Changed("kgram-size") {
		cfg.Fingerprint.KGramSize, _ = flags.GetInt("kgram-size")
	}
	if flags.Changed("window-size") {
		cfg.Fingerprint.WindowSize, _ = flags.GetInt("window-size")
	}
	if flags.Changed("normalize") {
		cfg.Fingerprint.Normalize, _ = flags.GetInt("normalize")
	}
	if flags.Changed("gap-tolerance") {
		cfg.Fingerprint.GapTolerance, _ = flags.GetInt("gap-tolerance")
	}
	if flags.Changed("suppress") {
		patterns, _ := flags.GetStringArray("suppress")
		cfg.Suppress.Patterns = append(cfg.Suppress.Patterns, patterns...)
	}
	if flags.Changed("min-family-size") {
		cfg.Suppress.MinFamilySize, _ = flags.GetInt("min-family-size")
	}
	if flags.Changed("ignore") {
		patterns, _ := flags.GetStringArray("ignore")
		cfg.Exclude.Patterns = append(cfg.Exclude.Patterns, patterns...)
	}
	if flags.Changed("languages") {
		cfg.Languages, _ = flags.GetStringSlice("languages")
	}
}

// progressEnabled reports whether the progress bar should render: only when
// stderr is a terminal, so piped runs stay clean.
func progressEnabled() bool {
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
