package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"
)

// ErrUsage marks command line errors.
var ErrUsage = errors.New("invalid usage")

// cliFlags holds the parsed command line.
type cliFlags struct {
	config       string
	output       string
	force        bool
	workers      int
	timeout      time.Duration
	html         bool
	style        string
	settings     []string
	previewStyle string
	sheet        string
	sheetDir     string
	logFormat    string
	quiet        bool
	verbose      bool
	version      bool
	help         bool
}

// parseFlags parses args (without the program name) and returns the
// positional arguments.
func parseFlags(args []string) (*cliFlags, []string, error) {
	fs := flag.NewFlagSet("makdo", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f := &cliFlags{}

	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.BoolVarP(&f.force, "force", "f", false, "overwrite outputs newer than their source")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "per-file timeout (e.g. 30s, 2m)")
	fs.BoolVar(&f.html, "html", false, "write an HTML preview instead of .docx")
	fs.StringVarP(&f.style, "style", "s", "", "document style: n (普通), k (契約), j (条文)")
	fs.StringArrayVar(&f.settings, "set", nil, "configuration line, e.g. \"font_size: 10.5\" (repeatable)")
	fs.StringVar(&f.previewStyle, "preview-style", "", "chroma style of preview code blocks")
	fs.StringVar(&f.sheet, "css", "", "preview stylesheet: default, plain, print or a name in --css-dir")
	fs.StringVar(&f.sheetDir, "css-dir", "", "directory of custom preview stylesheets")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: text, json")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
	fs.BoolVar(&f.version, "version", false, "show version")
	fs.BoolVarP(&f.help, "help", "h", false, "show help")

	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if f.quiet && f.verbose {
		return nil, nil, fmt.Errorf("%w: --quiet and --verbose are exclusive", ErrUsage)
	}
	if f.timeout < 0 {
		return nil, nil, fmt.Errorf("%w: negative timeout %v", ErrUsage, f.timeout)
	}
	return f, fs.Args(), nil
}

// printUsage prints the usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: makdo [flags] <file or directory>...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert makdo Markdown (.md) to Word (.docx) and Word to Markdown.")
	fmt.Fprintln(w, "The direction follows each file's extension; directories are searched")
	fmt.Fprintln(w, "recursively.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default: next to the source)")
	fmt.Fprintln(w, "  -f, --force               Overwrite outputs newer than their source")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-file timeout (e.g. 30s, 2m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "  -s, --style <s>           Document style: n, k, j")
	fmt.Fprintln(w, "      --set <line>          Configuration line, e.g. \"paper_size: A4横\"")
	fmt.Fprintln(w, "      --html                Write an HTML preview instead of .docx")
	fmt.Fprintln(w, "      --preview-style <s>   Chroma style of preview code blocks")
	fmt.Fprintln(w, "      --css <name>          Preview stylesheet: default, plain, print")
	fmt.Fprintln(w, "      --css-dir <dir>       Directory searched for <name>.css first")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs and timing")
	fmt.Fprintln(w, "      --log-format <s>      Log format: text, json")
	fmt.Fprintln(w, "      --version             Show version")
	fmt.Fprintln(w, "  -h, --help                Show this help")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes: 0 success, 1 conversion error, 2 usage, 3 I/O.")
}
