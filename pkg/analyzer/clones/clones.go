// Package clones orchestrates the clone-detection pipeline: lex, normalize,
// fingerprint, index, assemble, suppress, report.
package clones

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/pastiche-dev/pastiche/internal/assemble"
	"github.com/pastiche-dev/pastiche/internal/fileproc"
	"github.com/pastiche-dev/pastiche/internal/fingerprint"
	"github.com/pastiche-dev/pastiche/internal/index"
	"github.com/pastiche-dev/pastiche/internal/normalize"
	"github.com/pastiche-dev/pastiche/internal/suppress"
	"github.com/pastiche-dev/pastiche/pkg/config"
	"github.com/pastiche-dev/pastiche/pkg/lexer"
	"github.com/pastiche-dev/pastiche/pkg/models"
	"github.com/pastiche-dev/pastiche/pkg/source"
)

// Analyzer runs the full pipeline over a set of files.
type Analyzer struct {
	cfg        *config.Config
	src        source.ContentSource
	maxWorkers int
	onProgress fileproc.ProgressFunc
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithConfig sets the scan configuration.
func WithConfig(cfg *config.Config) Option {
	return func(a *Analyzer) {
		if cfg != nil {
			a.cfg = cfg
		}
	}
}

// WithSource overrides where file contents are read from. Defaults to the
// filesystem; tests feed an in-memory map.
func WithSource(src source.ContentSource) Option {
	return func(a *Analyzer) {
		if src != nil {
			a.src = src
		}
	}
}

// WithMaxWorkers bounds the per-file worker pool. Zero or negative uses the
// default.
func WithMaxWorkers(n int) Option {
	return func(a *Analyzer) { a.maxWorkers = n }
}

// WithProgress installs a callback invoked once per processed file.
func WithProgress(fn fileproc.ProgressFunc) Option {
	return func(a *Analyzer) { a.onProgress = fn }
}

// New creates an analyzer with the given options.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		cfg: config.DefaultConfig(),
		src: source.NewFilesystem(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// fileResult is the per-file pipeline output, produced in parallel.
type fileResult struct {
	stream *normalize.Stream
	prints []fingerprint.Fingerprint
	lines  int
}

// Analyze runs the pipeline over files. Suppression rules are compiled up
// front so an invalid pattern fails before any file is touched. Files that
// cannot be lexed or normalized are skipped and reported, never fatal. An
// empty corpus yields an empty analysis and no error.
func (a *Analyzer) Analyze(ctx context.Context, files []string) (*models.Analysis, error) {
	rules, err := suppress.CompileRules(a.cfg.Suppress.Patterns)
	if err != nil {
		return nil, err
	}

	var skipped []models.SkippedFile
	results := a.processFiles(ctx, files, &skipped)

	// Deterministic file ids: worker completion order must not leak into
	// the index or the output.
	sort.Slice(results, func(i, j int) bool {
		return results[i].stream.Path < results[j].stream.Path
	})
	sort.Slice(skipped, func(i, j int) bool {
		return skipped[i].Path < skipped[j].Path
	})

	streams := make([]*normalize.Stream, len(results))
	perFile := make([]index.FileFingerprints, len(results))
	totalLines := 0
	for i, r := range results {
		streams[i] = r.stream
		perFile[i] = index.FileFingerprints{File: i, Fingerprints: r.prints}
		totalLines += r.lines
	}

	ix := index.Build(perFile)
	groups := assemble.Assemble(ix, streams, a.cfg.Fingerprint.MinTokens, a.cfg.Fingerprint.GapTolerance)

	engine := suppress.New(rules, a.cfg.Suppress.MinFamilySize, a.src)
	groups = engine.Apply(groups)

	analysis := &models.Analysis{
		Groups:  groups,
		Reports: models.BuildReports(groups),
		Skipped: skipped,
		Summary: models.ComputeSummary(groups, totalLines,
			len(results), len(skipped), a.cfg.Fingerprint.Normalize),
	}
	return analysis, nil
}

func (a *Analyzer) processFiles(ctx context.Context, files []string, skipped *[]models.SkippedFile) []fileResult {
	level := normalize.Level(a.cfg.Fingerprint.Normalize)
	k := a.cfg.Fingerprint.KGramSize
	window := a.cfg.Fingerprint.WindowSize

	process := func(path string) (fileResult, error) {
		if err := ctx.Err(); err != nil {
			return fileResult{}, err
		}

		content, err := a.src.Read(path)
		if err != nil {
			return fileResult{}, err
		}

		lx, err := lexer.ForFile(path)
		if err != nil {
			return fileResult{}, err
		}
		raw, err := lx.Tokenize(content)
		if err != nil {
			return fileResult{}, err
		}

		stream, err := normalize.Apply(path, raw, level)
		if err != nil {
			return fileResult{}, err
		}

		grams := fingerprint.Grams(stream, k)
		prints := fingerprint.Winnow(grams, window)

		return fileResult{
			stream: stream,
			prints: prints,
			lines:  countLines(content),
		}, nil
	}

	var (
		mu        sync.Mutex
		collected []models.SkippedFile
	)
	results := fileproc.ForEachFileN(files, a.maxWorkers, process, a.onProgress,
		func(path string, err error) {
			mu.Lock()
			collected = append(collected, models.SkippedFile{Path: path, Reason: err.Error()})
			mu.Unlock()
		})
	*skipped = collected
	return results
}

func countLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	n := strings.Count(string(content), "\n")
	if content[len(content)-1] != '\n' {
		n++
	}
	return n
}
