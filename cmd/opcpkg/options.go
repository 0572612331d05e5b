package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

const (
	defaultLogLevel  = "info"
	defaultLogFormat = "text"
)

// cliOptions is the configuration shared by every subcommand.
type cliOptions struct {
	InputPath  string
	OutputPath string
	Dir        bool
	Touch      bool
	Logger     *slog.Logger
}

func readCLIOptions(cmd *cobra.Command, args []string) (cliOptions, error) {
	opts := cliOptions{}
	if len(args) > 0 {
		opts.InputPath = args[0]
	}

	level := strings.ToLower(stringFlag(cmd, "log-level", defaultLogLevel))
	if _, err := parseLogLevel(level); err != nil {
		return opts, fmt.Errorf("invalid --log-level %q: must be one of debug, info, warn, error", level)
	}
	format := strings.ToLower(stringFlag(cmd, "log-format", defaultLogFormat))
	if format != "text" && format != "json" {
		return opts, fmt.Errorf("invalid --log-format %q: must be text or json", format)
	}
	if boolFlag(cmd, "verbose") {
		level = "debug"
	}
	opts.Logger = buildLogger(cmd.ErrOrStderr(), level, format)

	opts.Dir = boolFlag(cmd, "dir")
	opts.Touch = boolFlag(cmd, "touch")
	opts.OutputPath = stringFlag(cmd, "output", "")
	if opts.OutputPath == "" && opts.InputPath != "" {
		opts.OutputPath = defaultOutputPath(opts.InputPath, opts.Dir)
	}
	return opts, nil
}

// stringFlag returns the value of a local or inherited flag, or def when the
// command has no such flag.
func stringFlag(cmd *cobra.Command, name, def string) string {
	f := cmd.Flag(name)
	if f == nil {
		return def
	}
	return f.Value.String()
}

func boolFlag(cmd *cobra.Command, name string) bool {
	f := cmd.Flag(name)
	if f == nil {
		return false
	}
	v, _ := strconv.ParseBool(f.Value.String())
	return v
}

func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", level)
}

func buildLogger(w io.Writer, level, format string) *slog.Logger {
	lvl, err := parseLogLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// defaultOutputPath places the rewritten package next to the input:
// "deck.pptx" becomes "deck.resaved.pptx", or the directory "deck.resaved"
// when writing an expanded package.
func defaultOutputPath(inputPath string, asDir bool) string {
	clean := filepath.Clean(inputPath)
	ext := filepath.Ext(clean)
	base := strings.TrimSuffix(clean, ext)
	if asDir {
		return base + ".resaved"
	}
	return base + ".resaved" + ext
}
