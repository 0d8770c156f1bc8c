package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/alnah/go-makdo"
	"github.com/alnah/go-makdo/internal/fileutil"
)

// ErrReadInput wraps failures to read a source file.
var ErrReadInput = errors.New("failed to read input file")

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Warnings   int
	Err        error
	Duration   time.Duration
}

// convertBatch processes files concurrently with params.workers workers.
// Results keep the order of files.
func convertBatch(ctx context.Context, conv Converter, files []FileToConvert, params *conversionParams) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := min(max(params.workers, 1), len(files))
	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = convertFile(ctx, conv, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile processes a single file and returns the result.
func convertFile(ctx context.Context, conv Converter, f FileToConvert, params *conversionParams) ConversionResult {
	start := time.Now()
	result := ConversionResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}
	fail := func(err error) ConversionResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	// Refuse early so that a newer destination costs no conversion.
	if !params.force {
		if err := fileutil.CheckNewer(f.InputPath, f.OutputPath); err != nil {
			return fail(err)
		}
	}

	data, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrReadInput, err))
	}

	in := makdo.Input{Data: data}
	var res *makdo.Result
	switch f.Mode {
	case modeMarkdown:
		in.MediaDir = filepath.Base(fileutil.MediaDir(f.OutputPath))
		res, err = conv.ToMarkdown(ctx, in)
	case modeHTML:
		in.SourceDir = filepath.Dir(f.InputPath)
		res, err = conv.ToHTML(ctx, in)
	default:
		in.SourceDir = filepath.Dir(f.InputPath)
		res, err = conv.ToDocx(ctx, in)
	}
	if err != nil {
		return fail(err)
	}
	result.Warnings = len(res.Warnings)

	if err := makdo.WriteFile(res, f.OutputPath, makdo.WriteOptions{
		Source: f.InputPath,
		Force:  params.force,
	}); err != nil {
		return fail(err)
	}
	params.logger.Debug("file converted", "input", f.InputPath, "output", f.OutputPath, "warnings", result.Warnings)

	result.Duration = time.Since(start)
	return result
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
	Warnings  int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
		summary.Warnings += r.Warnings
	}
	return summary
}

// printResults outputs conversion results and returns the failure count.
func printResults(results []ConversionResult, quiet, verbose bool, env *Environment) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.InputPath, r.Err, hintFor(r.Err))
			continue
		}

		if quiet {
			continue
		}

		switch {
		case verbose:
			fmt.Fprintf(env.Stdout, "%s -> %s (%v, %d warnings)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond), r.Warnings)
		case r.Warnings > 0:
			fmt.Fprintf(env.Stdout, "Created %s (%d warnings)\n", r.OutputPath, r.Warnings)
		default:
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}
