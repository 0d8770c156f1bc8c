package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alnah/go-makdo"
	"github.com/alnah/go-makdo/internal/config"
	"github.com/alnah/go-makdo/internal/logging"
)

// Converter is the interface for the conversion service.
type Converter interface {
	ToDocx(ctx context.Context, in makdo.Input) (*makdo.Result, error)
	ToMarkdown(ctx context.Context, in makdo.Input) (*makdo.Result, error)
	ToHTML(ctx context.Context, in makdo.Input) (*makdo.Result, error)
}

// Compile-time interface implementation check.
var _ Converter = (*makdo.Converter)(nil)

// conversionParams groups parameters shared across the batch.
type conversionParams struct {
	force   bool
	workers int
	logger  *slog.Logger
}

// run executes the command line and returns the exit code.
func run(ctx context.Context, args []string, env *Environment) int {
	flags, inputs, err := parseFlags(args)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		fmt.Fprintln(env.Stderr, "Run 'makdo --help' for usage.")
		return exitCodeFor(err)
	}
	if flags.help {
		printUsage(env.Stdout)
		return ExitSuccess
	}
	if flags.version {
		fmt.Fprintln(env.Stdout, "makdo", Version)
		return ExitSuccess
	}

	results, err := runConvert(ctx, inputs, flags, env)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
		return exitCodeFor(err)
	}
	printResults(results, flags.quiet, flags.verbose, env)
	return batchExitCode(results)
}

// runConvert loads the configuration, builds the converter and converts
// every discovered file.
func runConvert(ctx context.Context, inputs []string, flags *cliFlags, env *Environment) ([]ConversionResult, error) {
	if err := validateWorkers(flags.workers); err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig()
	if flags.config != "" {
		var err error
		if cfg, err = config.LoadConfig(flags.config); err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}
	mergeFlags(flags, cfg)

	logger, err := newLogger(cfg, env)
	if err != nil {
		return nil, err
	}

	files, err := discoverFiles(inputs, cfg.Output.Directory, flags.html)
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no .md or .docx files found", ErrNoInput)
	}

	opts := []makdo.Option{
		makdo.WithLogger(logger),
		makdo.WithSettings(settingsFor(flags, cfg)...),
		makdo.WithVersion(Version),
		makdo.WithClock(env.Now),
		makdo.WithPreviewStyle(cfg.Preview.Style),
		makdo.WithPreviewSheet(cfg.Preview.Sheet),
		makdo.WithSheetDir(cfg.Preview.SheetDir),
	}
	if flags.timeout > 0 {
		opts = append(opts, makdo.WithTimeout(flags.timeout))
	}
	conv, err := makdo.NewConverter(opts...)
	if err != nil {
		return nil, err
	}

	params := &conversionParams{
		force:   cfg.Output.Force,
		workers: resolvePoolSize(flags.workers),
		logger:  logger,
	}
	logger.Debug("batch started", "files", len(files), "workers", params.workers)
	return convertBatch(ctx, conv, files, params), nil
}

// mergeFlags applies command line values over the configuration (CLI wins).
func mergeFlags(flags *cliFlags, cfg *config.Config) {
	if flags.output != "" {
		cfg.Output.Directory = flags.output
	}
	if flags.force {
		cfg.Output.Force = true
	}
	if flags.logFormat != "" {
		cfg.Log.Format = flags.logFormat
	}
	switch {
	case flags.verbose:
		cfg.Log.Level = "debug"
	case flags.quiet:
		cfg.Log.Level = "error"
	}
	if flags.previewStyle != "" {
		cfg.Preview.Style = flags.previewStyle
	}
	if flags.sheet != "" {
		cfg.Preview.Sheet = flags.sheet
	}
	if flags.sheetDir != "" {
		cfg.Preview.SheetDir = flags.sheetDir
	}
}

// settingsFor orders the configuration lines so that later ones win:
// config file, then --style, then --set.
func settingsFor(flags *cliFlags, cfg *config.Config) []string {
	settings := cfg.Document.Settings()
	if flags.style != "" {
		settings = append(settings, "document_style: "+flags.style)
	}
	return append(settings, flags.settings...)
}

func newLogger(cfg *config.Config, env *Environment) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	format, err := logging.ParseFormat(cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return logging.New(level, format, env.Stderr), nil
}

// batchExitCode is ExitSuccess when every file converted, otherwise the
// code of the most severe failure.
func batchExitCode(results []ConversionResult) int {
	code := ExitSuccess
	for _, r := range results {
		if r.Err == nil {
			continue
		}
		if c := exitCodeFor(r.Err); c == ExitIO || code == ExitSuccess {
			code = c
		}
	}
	return code
}
