// Command rxcollate tests and collates a library of regular expressions.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chronos-tachyon/rxcollate/internal/build"
	"github.com/chronos-tachyon/rxcollate/internal/glob"
	"github.com/chronos-tachyon/rxcollate/internal/memo"
	"github.com/chronos-tachyon/rxcollate/internal/outfile"
)

const longHelp = `A regex tester & collator.

Recursively searches a directory for 'regex.txt' and 'samples.txt' file
pairs. 'regex.txt' holds one or more regular expressions (newline
separated, case-insensitive) meant to match the lines of 'samples.txt'.
Every sample is searched with every expression of its folder: if each
sample is matched by at least one expression, the folder passes.

All expressions of all folders are then concatenated, in directory order,
as the output. Blank lines and lines starting with '#' are ignored.`

// errLogged marks an error already reported through the logger.
type errLogged struct {
	err error
}

func (e errLogged) Error() string { return e.err.Error() }
func (e errLogged) Unwrap() error { return e.err }

type app struct {
	v        *viper.Viper
	fs       afero.Fs
	stdout   io.Writer
	useColor bool
}

func newApp(stdout io.Writer, useColor bool) *app {
	return &app{
		v:        newViper(),
		fs:       afero.NewOsFs(),
		stdout:   stdout,
		useColor: useColor,
	}
}

func (a *app) rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "rxcollate",
		Short:         "Test regex.txt/samples.txt pairs and collate the patterns",
		Long:          longHelp,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(a.v, cmd.Flags())
		},
		RunE: a.runBuild,
	}
	addLoggingFlags(cmd.PersistentFlags())
	addBuildFlags(cmd.Flags())
	cmd.AddCommand(a.treeCommand())
	return cmd
}

// withLogger runs fn with the invocation's logger and reports any error it
// returns at critical severity.
func (a *app) withLogger(fn func(s settings, logger zerolog.Logger) error) error {
	s := loadSettings(a.v)
	logger, closeLog, err := newLogger(s, a.stdout, a.useColor)
	if err != nil {
		return err
	}
	defer func() {
		_ = closeLog()
	}()

	logger.Debug().Interface("settings", s).Msg("arguments")
	if err := fn(s, logger); err != nil {
		logger.WithLevel(zerolog.FatalLevel).Msg(err.Error())
		return errLogged{err}
	}
	return nil
}

func (a *app) runBuild(cmd *cobra.Command, args []string) error {
	return a.withLogger(func(s settings, logger zerolog.Logger) error {
		exclude, err := glob.CompileAll(s.Exclude)
		if err != nil {
			return err
		}

		opts := build.Options{
			HaltOnFailure: s.Halt,
			FoldPatterns:  s.FoldPatterns,
			Exclude:       exclude,
			Rescan:        s.Rescan,
			MatchTimeout:  s.MatchTimeout,
		}
		if s.Memo {
			opts.Memo = memo.NewXattr(build.SamplesFileName, logger)
		}

		report, err := build.New(a.fs, logger, opts).Build(s.Input)
		if err != nil {
			return err
		}
		output := report.String()

		if s.Output != "" {
			if err := outfile.Write(s.Output, []byte(output)); err != nil {
				return err
			}
			logger.Info().Str("path", s.Output).Msg("Output written to " + s.Output)
		}

		if s.Print {
			if s.Silent {
				fmt.Fprintln(a.stdout, output)
			} else {
				logger.Info().Msg("Collated output:\n\n" + output + "\n")
			}
		}

		if !s.Silent {
			printSummary(a.stdout, report)
		}
		return nil
	})
}

func main() {
	useColor := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	color.NoColor = !useColor

	a := newApp(os.Stdout, useColor)
	if err := a.rootCommand().Execute(); err != nil {
		var logged errLogged
		if !errors.As(err, &logged) {
			fmt.Fprintf(os.Stderr, "rxcollate: %v\n", err)
		}
		os.Exit(1)
	}
}
