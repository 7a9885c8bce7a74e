// Package verify scores how well a folder's patterns cover its samples.
package verify

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/chronos-tachyon/rxcollate/internal/fold"
	"github.com/chronos-tachyon/rxcollate/internal/pattern"
	"github.com/chronos-tachyon/rxcollate/internal/textfile"
)

// Result is the verdict for one folder.
//
// Coverage is hit density: total pattern hits divided by the number of
// samples. It can exceed 1 and says nothing on its own about Pass.
type Result struct {
	Folder   string
	Pass     bool
	Coverage float64
	Hits     int
	Samples  int
	Misses   int
	Memoized bool
}

// Verdict is "Success:" or "FAILED:".
func (r Result) Verdict() string {
	if r.Pass {
		return "Success:"
	}
	return "FAILED:"
}

// String renders the per-folder report line, e.g.
// "Success: 100% detection for 'scams/trade'".
func (r Result) String() string {
	return fmt.Sprintf("%-8s %3.0f%% detection for '%s'", r.Verdict(), r.Coverage*100, r.Folder)
}

// Score derives Pass and Coverage from the raw counts. An empty sample set
// never passes.
func Score(folder string, hits int, samples int, misses int) Result {
	r := Result{Folder: folder, Hits: hits, Samples: samples, Misses: misses}
	if samples > 0 {
		r.Coverage = float64(hits) / float64(samples)
		r.Pass = misses == 0
	}
	return r
}

type Options struct {
	// HaltOnMiss aborts at the first sample no pattern matches.
	HaltOnMiss bool
	Logger     zerolog.Logger
}

// Verify runs every folded sample through every pattern. Each miss is
// logged as a warning carrying the sample's line number in samples.txt.
// With HaltOnMiss the first miss returns a *MissError and no Result.
func Verify(folder string, patterns pattern.Set, samples []textfile.Line, opts Options) (Result, error) {
	hits := 0
	misses := 0
	for _, sample := range samples {
		n, err := patterns.Hits(fold.String(sample.Text))
		if err != nil {
			return Result{}, fmt.Errorf("folder '%s': samples.txt line %d: %w", folder, sample.No, err)
		}
		if n <= 0 {
			misses++
			opts.Logger.Warn().
				Str("folder", folder).
				Int("line", sample.No).
				Msg("Failed to match:\n" + sample.Text)
			if opts.HaltOnMiss {
				return Result{}, &MissError{Folder: folder, Line: sample.No, Sample: sample.Text}
			}
		}
		hits += n
	}
	return Score(folder, hits, len(samples), misses), nil
}

// MissError is returned in halt mode for the first unmatched sample.
type MissError struct {
	Folder string
	Line   int
	Sample string
}

func (err *MissError) Error() string {
	return fmt.Sprintf("a test failed in '%s' and halt on failure is set: no pattern matches %q", err.Folder, err.Sample)
}
