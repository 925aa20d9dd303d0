package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sambeau/quill/config"
	qerrors "github.com/sambeau/quill/pkg/quill/errors"
	"github.com/sambeau/quill/pkg/quill/lexer"
	"github.com/sambeau/quill/pkg/quill/quill"
	"github.com/sambeau/quill/pkg/quill/repl"
	"github.com/sambeau/quill/pkg/quill/settings"
	"github.com/sambeau/quill/pkg/quill/values"
	"gopkg.in/yaml.v3"
)

// Version information, set at build time via -ldflags
var (
	Version = "dev"     // -X main.Version=$(git describe --tags --always)
	Commit  = "unknown" // -X main.Commit=$(git rev-parse --short HEAD)
)

// errCheckFailed is returned once problems have already been reported.
var errCheckFailed = errors.New("check failed")

func main() {
	ctx := context.Background()
	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Getenv); err != nil {
		if !errors.Is(err, errCheckFailed) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// run is the main entry point, designed for testability (Mat Ryer pattern)
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, getenv func(string) string) error {
	if len(args) == 0 {
		printUsage(stderr)
		return errors.New("no command given")
	}

	switch args[0] {
	case "tokens":
		return runTokens(args[1:], stdout, stderr, getenv)
	case "check":
		return runCheck(ctx, args[1:], stdout, stderr, getenv)
	case "settings":
		return runSettings(args[1:], stdout, getenv)
	case "repl":
		return runREPL(args[1:], stdin, stdout, getenv)
	case "version", "--version", "-version":
		fmt.Fprintf(stdout, "quill version %s (%s)\n", Version, Commit)
		return nil
	case "help", "--help", "-help", "-h":
		printUsage(stdout)
		return nil
	default:
		printUsage(stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `quill - Quill script checker

Usage:
  quill tokens [--config PATH] <file>
  quill check [--config PATH] [--watch] [file...]
  quill settings [--config PATH] [--defaults]
  quill repl [--config PATH]
  quill version

Commands:
  tokens     Print the tokens of a script
  check      Lex a script and check its structure against the limits
             (with no files, checks the config's scripts list)
  settings   Print the effective limits as YAML
  repl       Start an interactive token inspector

Config Resolution:
  1. --config flag
  2. QUILL_CONFIG environment variable
  3. ./quill.yaml
  4. ~/.config/quill/quill.yaml
  Without a config file the sandbox defaults apply.
`)
}

// newFlags returns a flag set with the shared --config flag.
func newFlags(name string) (*flag.FlagSet, *string) {
	flags := flag.NewFlagSet("quill "+name, flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	configPath := flags.String("config", "", "Path to config file")
	return flags, configPath
}

// loadConfig loads the config, falling back to defaults when none exists.
// The returned path is empty when defaults are used.
func loadConfig(path string, getenv func(string) string) (*config.Config, string, error) {
	cfg, resolved, err := config.LoadWithPath(path, getenv)
	if errors.Is(err, config.ErrNoConfig) {
		return config.Defaults(), "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}
	return cfg, resolved, nil
}

func runTokens(args []string, stdout, stderr io.Writer, getenv func(string) string) error {
	flags, configPath := newFlags("tokens")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return errors.New("usage: quill tokens [--config PATH] <file>")
	}
	cfg, _, err := loadConfig(*configPath, getenv)
	if err != nil {
		return err
	}

	path := flags.Arg(0)
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading script: %w", err)
	}

	in := quill.New(quill.WithSettings(cfg.Limits), quill.WithFilename(path))
	tokens, err := in.Tokenize(string(src))
	if err != nil {
		return reportError(stderr, err)
	}
	for _, td := range lexer.Significant(tokens) {
		if td.Token.Is(lexer.EOF) {
			continue
		}
		fmt.Fprintf(stdout, "%d:%d\t%s\t%q", td.Line, td.Column, td.Token.Type(), td.Token.Text())
		if v := td.Token.Value(); v != nil && td.Token.Kind() != lexer.KindKeyword {
			fmt.Fprintf(stdout, "\t%s", values.Format(v, cfg.Locale))
		}
		fmt.Fprintln(stdout)
	}
	return nil
}

// reportError prints a language error in full and returns errCheckFailed;
// other errors are returned unchanged.
func reportError(w io.Writer, err error) error {
	if le, ok := qerrors.As(err); ok {
		fmt.Fprintln(w, le.PrettyString())
		return errCheckFailed
	}
	return err
}

func runCheck(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) error {
	flags, configPath := newFlags("check")
	watch := flags.Bool("watch", false, "Re-check files when they change")
	if err := flags.Parse(args); err != nil {
		return err
	}
	cfg, resolved, err := loadConfig(*configPath, getenv)
	if err != nil {
		return err
	}
	log := newCLILogger(stdout, stderr, cfg.Logging.Level, cfg.Logging.Format)

	files := flags.Args()
	if len(files) == 0 {
		files = cfg.Scripts
	}
	if len(files) == 0 {
		return errors.New("no files to check (pass files or set scripts in the config)")
	}

	failed := 0
	for _, path := range files {
		if !checkFile(path, cfg, log) {
			failed++
		}
	}

	if !*watch {
		if failed > 0 {
			log.Errorf("%d of %d files failed", failed, len(files))
			return errCheckFailed
		}
		return nil
	}

	// Set up signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	w, err := NewWatcher(files, resolved, func(path string) { checkFile(path, cfg, log) }, log)
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	log.Infof("watching %d files (Ctrl+C to stop)", len(files))

	<-w.Done()
	return nil
}

// checkFile lexes and structure-checks one script with a fresh interpreter,
// logging the outcome. It reports whether the script passed.
func checkFile(path string, cfg *config.Config, log *cliLogger) bool {
	src, err := os.ReadFile(path)
	if err != nil {
		log.Errorf("%s: %v", path, err)
		return false
	}

	in := quill.New(
		quill.WithSettings(cfg.Limits),
		quill.WithFilename(path),
		quill.WithLogger(log),
	)
	tokens, err := in.Tokenize(string(src))
	if err == nil {
		var report quill.Report
		report, err = in.CheckStructure(tokens)
		if err == nil {
			log.Infof("%s: ok (%d tokens, %d statements, depth %d)", path, report.Tokens, report.Statements, report.Deepest)
			return true
		}
	}

	if le, ok := qerrors.As(err); ok {
		log.Errorf("%s [%s]", le.String(), le.Code)
	} else {
		log.Errorf("%s: %v", path, err)
	}
	return false
}

func runSettings(args []string, stdout io.Writer, getenv func(string) string) error {
	flags, configPath := newFlags("settings")
	defaults := flags.Bool("defaults", false, "Print the sandbox defaults instead")
	if err := flags.Parse(args); err != nil {
		return err
	}

	limits := settings.DefaultLimits()
	if !*defaults {
		cfg, _, err := loadConfig(*configPath, getenv)
		if err != nil {
			return err
		}
		limits = cfg.Limits
	}

	data, err := yaml.Marshal(limits)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	_, err = stdout.Write(data)
	return err
}

func runREPL(args []string, stdin io.Reader, stdout io.Writer, getenv func(string) string) error {
	flags, configPath := newFlags("repl")
	if err := flags.Parse(args); err != nil {
		return err
	}
	cfg, _, err := loadConfig(*configPath, getenv)
	if err != nil {
		return err
	}
	repl.Start(stdin, stdout, repl.Options{
		Version:     fmt.Sprintf("%s (%s)", Version, Commit),
		Settings:    cfg.Limits,
		Locale:      cfg.Locale,
		HistoryFile: cfg.History,
	})
	return nil
}
