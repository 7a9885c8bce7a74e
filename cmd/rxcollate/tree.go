package main

import (
	"bytes"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/chronos-tachyon/rxcollate/internal/build"
	"github.com/chronos-tachyon/rxcollate/internal/outfile"
	"github.com/chronos-tachyon/rxcollate/internal/tree"
)

func (a *app) treeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Convert a pattern library to or from a category tree document",
	}

	export := &cobra.Command{
		Use:   "export",
		Short: "Write the folders under --input as a JSON or YAML category tree",
		Example: `  rxcollate tree export -i ./patterns
  rxcollate tree export -i ./patterns --format yaml --tree-output categories.yaml`,
		Args: cobra.NoArgs,
		RunE: a.runTreeExport,
	}
	export.Flags().String(keyFormat, "", "json or yaml (default: from --tree-output extension, else json)")
	export.Flags().String(keyTreeOut, "", "write the tree to this file instead of stdout")

	imp := &cobra.Command{
		Use:   "import FILE",
		Short: "Create folders, regex.txt and samples.txt files under --input from a category tree",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runTreeImport,
	}
	imp.Flags().String(keyFormat, "", "json or yaml (default: from FILE extension)")
	imp.Flags().Bool(keyOverwrite, false, "replace existing regex.txt and samples.txt files")

	cmd.AddCommand(export, imp)
	return cmd
}

func (a *app) treeFormat(path string) (tree.Format, error) {
	if name := a.v.GetString(keyFormat); name != "" {
		return tree.ParseFormat(name)
	}
	return tree.FormatOf(path), nil
}

func (a *app) runTreeExport(cmd *cobra.Command, args []string) error {
	return a.withLogger(func(s settings, logger zerolog.Logger) error {
		outPath := a.v.GetString(keyTreeOut)
		format, err := a.treeFormat(outPath)
		if err != nil {
			return err
		}

		root, err := tree.Export(a.fs, s.Input, build.RegexFileName, build.SamplesFileName, logger)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := tree.Encode(&buf, root, format); err != nil {
			return err
		}
		if outPath == "" {
			_, err := a.stdout.Write(buf.Bytes())
			return err
		}
		if err := outfile.Write(outPath, buf.Bytes()); err != nil {
			return err
		}
		logger.Info().Str("path", outPath).Msg("Tree written to " + outPath)
		return nil
	})
}

func (a *app) runTreeImport(cmd *cobra.Command, args []string) error {
	return a.withLogger(func(s settings, logger zerolog.Logger) error {
		inPath := args[0]
		format, err := a.treeFormat(inPath)
		if err != nil {
			return err
		}

		f, err := a.fs.Open(inPath)
		if err != nil {
			return fmt.Errorf("%q: failed to open file: %w", inPath, err)
		}
		root, err := tree.Decode(f, format)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("%q: %w", inPath, err)
		}

		err = tree.Import(a.fs, s.Input, root, tree.ImportOptions{
			RegexName:   build.RegexFileName,
			SamplesName: build.SamplesFileName,
			Overwrite:   a.v.GetBool(keyOverwrite),
			Logger:      logger,
		})
		if err != nil {
			return err
		}
		logger.Info().Str("path", s.Input).Msg("Tree imported into " + s.Input)
		return nil
	})
}
