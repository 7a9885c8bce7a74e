// Package build runs the pattern library build: discover folders, verify
// each one, and collate every pattern line in traversal order.
package build

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/chronos-tachyon/rxcollate/internal/glob"
	"github.com/chronos-tachyon/rxcollate/internal/memo"
	"github.com/chronos-tachyon/rxcollate/internal/pattern"
	"github.com/chronos-tachyon/rxcollate/internal/scan"
	"github.com/chronos-tachyon/rxcollate/internal/textfile"
	"github.com/chronos-tachyon/rxcollate/internal/verify"
)

const (
	RegexFileName   = "regex.txt"
	SamplesFileName = "samples.txt"
)

// Memo stores passing verdicts between builds. memo.Xattr implements it.
type Memo interface {
	Load(dir string) (memo.Stamp, bool)
	Save(dir string, st memo.Stamp)
}

type Options struct {
	// HaltOnFailure stops the build at the first failing folder, or at the
	// first unmatched sample.
	HaltOnFailure bool

	// FoldPatterns folds pattern sources before compiling them.
	FoldPatterns bool

	// Exclude skips matching folders (relative to the root) and their
	// descendants.
	Exclude glob.Set

	// Memo, if set, is consulted before verifying and updated after a pass.
	Memo Memo

	// Rescan ignores stamps already in Memo. New passes are still saved.
	Rescan bool

	// MatchTimeout bounds each pattern match. Zero means no limit.
	MatchTimeout time.Duration
}

// Builder is scoped to one filesystem and one logger. It holds no state
// between calls to Build.
type Builder struct {
	fs     afero.Fs
	logger zerolog.Logger
	opts   Options
}

func New(fsys afero.Fs, logger zerolog.Logger, opts Options) *Builder {
	return &Builder{fs: fsys, logger: logger, opts: opts}
}

// Report is the outcome of one build. Patterns holds the collation in
// traversal order.
type Report struct {
	Root     string
	Results  []verify.Result
	Patterns []string
}

// String returns the collation: every pattern source line, newline joined.
func (r *Report) String() string {
	return strings.Join(r.Patterns, "\n")
}

func (r *Report) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.Pass {
			n++
		}
	}
	return n
}

func (r *Report) Failed() int {
	return len(r.Results) - r.Passed()
}

// Build processes every qualifying folder under root. Verification
// failures are logged and recorded in the Report; they only turn into an
// error when HaltOnFailure is set. Root, syntax and I/O errors are always
// returned. On error the Report holds whatever was processed before it.
func (b *Builder) Build(root string) (*Report, error) {
	root = filepath.Clean(root)
	report := &Report{Root: root}

	b.logger.Debug().Str("root", root).Msgf("Searching '%s'", root)

	sc := scan.New(b.fs, b.logger)
	sc.Exclude(b.opts.Exclude)
	folders, err := sc.SubfoldersContaining(root, []string{RegexFileName, SamplesFileName})
	if err != nil {
		return report, err
	}

	for _, dir := range folders {
		rel := relativeName(root, dir)
		b.logger.Debug().Str("folder", rel).Msgf("Testing %s", dir)

		patterns, result, err := b.processFolder(dir, rel)
		if err != nil {
			return report, err
		}
		b.logResult(result)
		report.Results = append(report.Results, result)
		report.Patterns = append(report.Patterns, patterns.Sources()...)

		if !result.Pass && b.opts.HaltOnFailure {
			return report, &HaltError{Result: result}
		}
	}
	return report, nil
}

func (b *Builder) processFolder(dir string, rel string) (pattern.Set, verify.Result, error) {
	regexFile, err := textfile.Load(b.fs, filepath.Join(dir, RegexFileName))
	if err != nil {
		return nil, verify.Result{}, err
	}
	patterns, err := pattern.Compile(rel, regexFile.Path, regexFile.Lines, pattern.Options{
		Fold:         b.opts.FoldPatterns,
		MatchTimeout: b.opts.MatchTimeout,
	})
	if err != nil {
		return nil, verify.Result{}, err
	}

	samplesFile, err := textfile.Load(b.fs, filepath.Join(dir, SamplesFileName))
	if err != nil {
		return nil, verify.Result{}, err
	}

	if b.opts.Memo != nil && !b.opts.Rescan {
		if st, ok := b.opts.Memo.Load(dir); ok && st.Check(regexFile.Data, samplesFile.Data, b.opts.FoldPatterns) {
			result := verify.Score(rel, int(st.Hits), int(st.Count), 0)
			result.Memoized = true
			return patterns, result, nil
		}
	}

	result, err := verify.Verify(rel, patterns, samplesFile.Lines, verify.Options{
		HaltOnMiss: b.opts.HaltOnFailure,
		Logger:     b.logger,
	})
	if err != nil {
		return nil, result, err
	}

	if b.opts.Memo != nil && result.Pass {
		b.opts.Memo.Save(dir, memo.NewStamp(regexFile.Data, samplesFile.Data, b.opts.FoldPatterns, result.Hits, result.Samples))
	}
	return patterns, result, nil
}

func (b *Builder) logResult(result verify.Result) {
	event := b.logger.Info()
	if !result.Pass {
		event = b.logger.Error()
	}
	event.
		Str("folder", result.Folder).
		Float64("coverage", result.Coverage).
		Int("samples", result.Samples).
		Bool("memoized", result.Memoized).
		Msg(result.String())
}

func relativeName(root string, dir string) string {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		rel = dir
	}
	return filepath.ToSlash(rel)
}

// HaltError stops a build run with HaltOnFailure.
type HaltError struct {
	Result verify.Result
}

func (err *HaltError) Error() string {
	return fmt.Sprintf("a test failed and halt on failure is set: %s", err.Result)
}
