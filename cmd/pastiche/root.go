package main

import (
	"github.com/spf13/cobra"

	"github.com/pastiche-dev/pastiche/internal/output"
	"github.com/pastiche-dev/pastiche/pkg/config"
)

var (
	cfgFile    string
	formatFlag string
	outputFile string
	noColor    bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "pastiche",
	Short: "Language-independent copy-paste detector",
	Long: `Pastiche finds copy-pasted code across a corpus using winnowing
fingerprints over normalized token streams. Clones survive renamed
identifiers and changed literals depending on the normalization level.

Supports: Go, Python, TypeScript, JavaScript, Rust, Java, C, C++, Ruby`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to config file (TOML, YAML, or JSON)")
	rootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "", "Output format: text, json, markdown, toon")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "Write output to file instead of stdout")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose output")
}

// loadConfig resolves the effective configuration: an explicit --config file,
// otherwise the standard locations, otherwise defaults.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	return config.LoadOrDefault(), nil
}

// effectiveFormat prefers the flag over the config file.
func effectiveFormat(cfg *config.Config) output.Format {
	if formatFlag != "" {
		return output.ParseFormat(formatFlag)
	}
	return output.ParseFormat(cfg.Output.Format)
}

func colorEnabled(cfg *config.Config) bool {
	if noColor {
		return false
	}
	return cfg.Output.Color
}
