package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix  = "RXCOLLATE"
	configName = ".rxcollate"

	defaultInput  = "."
	defaultOutput = "output.regex.txt"
	defaultLog    = "rxcollate.log"
)

const (
	keyConfig    = "config"
	keyInput     = "input"
	keyOutput    = "output"
	keyOutputDef = "default-output"
	keyLogFile   = "log-file"
	keyLogDef    = "default-log"
	keySilent    = "silent"
	keyVerbose   = "verbose"
	keyPrint     = "print"
	keyHalt      = "critical-test-errors"
	keyExclude   = "exclude"
	keyFold      = "fold-patterns"
	keyMemo      = "memo"
	keyRescan    = "rescan"
	keyTimeout   = "match-timeout"
	keyFormat    = "format"
	keyTreeOut   = "tree-output"
	keyOverwrite = "overwrite"
)

type settings struct {
	Input        string        `json:"input"`
	Output       string        `json:"output,omitempty"`
	LogFile      string        `json:"logFile,omitempty"`
	Silent       bool          `json:"silent"`
	Verbose      bool          `json:"verbose"`
	Print        bool          `json:"print"`
	Halt         bool          `json:"criticalTestErrors"`
	Exclude      []string      `json:"exclude,omitempty"`
	FoldPatterns bool          `json:"foldPatterns"`
	Memo         bool          `json:"memo"`
	Rescan       bool          `json:"rescan"`
	MatchTimeout time.Duration `json:"matchTimeout,omitempty"`
}

func addLoggingFlags(flags *pflag.FlagSet) {
	flags.String(keyConfig, "", "read settings from this YAML/JSON/TOML file (default: ./"+configName+".yaml if present)")
	flags.StringP(keyInput, "i", defaultInput, "file pair search path")
	flags.StringP(keyLogFile, "l", "", "also log to this file")
	flags.BoolP(keyLogDef, "L", false, "also log to ./"+defaultLog+" (ignored with --log-file)")
	flags.BoolP(keySilent, "s", false, "suppress console output (except for fatal errors)")
	flags.BoolP(keyVerbose, "v", false, "lower the logging threshold to debug")
}

func addBuildFlags(flags *pflag.FlagSet) {
	flags.StringP(keyOutput, "o", "", "write the collated patterns to this file")
	flags.BoolP(keyOutputDef, "O", false, "write the collated patterns to ./"+defaultOutput+" (ignored with --output)")
	flags.BoolP(keyPrint, "p", false, "print the collated output (overrides --silent)")
	flags.Bool(keyHalt, false, "halt the build on the first failing test")
	flags.StringSlice(keyExclude, nil, "skip folders matching this glob, relative to the input path (repeatable)")
	flags.Bool(keyFold, false, "strip accents from patterns before compiling them")
	flags.Bool(keyMemo, false, "remember passing folders in extended attributes and skip them while unchanged")
	flags.Bool(keyRescan, false, "with --memo, ignore remembered results")
	flags.Duration(keyTimeout, 0, "give up on a single pattern match after this long (0: no limit)")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// loadConfig binds flags and reads the config file. Precedence: flags,
// environment, config file, defaults.
func loadConfig(v *viper.Viper, flags *pflag.FlagSet) error {
	if err := v.BindPFlags(flags); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	if path := v.GetString(keyConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("%q: failed to read config file: %w", path, err)
		}
		return nil
	}

	v.SetConfigName(configName)
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

// orDefault returns path, or the default file name in the working
// directory when path is empty and useDefault is set.
func orDefault(path string, useDefault bool, name string) string {
	if path == "" && useDefault {
		return filepath.Join(".", name)
	}
	return path
}

func loadSettings(v *viper.Viper) settings {
	return settings{
		Input:        v.GetString(keyInput),
		Output:       orDefault(v.GetString(keyOutput), v.GetBool(keyOutputDef), defaultOutput),
		LogFile:      orDefault(v.GetString(keyLogFile), v.GetBool(keyLogDef), defaultLog),
		Silent:       v.GetBool(keySilent),
		Verbose:      v.GetBool(keyVerbose),
		Print:        v.GetBool(keyPrint),
		Halt:         v.GetBool(keyHalt),
		Exclude:      v.GetStringSlice(keyExclude),
		FoldPatterns: v.GetBool(keyFold),
		Memo:         v.GetBool(keyMemo),
		Rescan:       v.GetBool(keyRescan),
		MatchTimeout: v.GetDuration(keyTimeout),
	}
}
