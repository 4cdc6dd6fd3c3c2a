package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"psannotate/internal/annotate"
	"psannotate/internal/config"
	"psannotate/internal/describe"
	"psannotate/internal/logging"
	"psannotate/internal/resolver"
)

func main() {
	// Use a custom FlagSet so we can parse all args regardless of position.
	// Go's default flag.Parse stops at the first non-flag argument, which
	// breaks "psannotate ./scripts -dest out". We reorder args so flags
	// come first, then positional args.
	flags, positional := reorderArgs(os.Args[1:])

	fs := flag.NewFlagSet("psannotate", flag.ExitOnError)
	configFile := fs.String("config", "", "YAML config file path")
	mode := fs.String("mode", "", "run mode: single (one file) or batch (directory tree)")
	source := fs.String("source", "", "source file or directory (alternative to positional argument)")
	dest := fs.String("dest", "", "destination file (single) or directory (batch)")
	endpoint := fs.String("endpoint", "", "generative-text API base URL")
	model := fs.String("model", "", "model name")
	extension := fs.String("extension", "", "source file extension filter for batch mode")
	timeout := fs.Int("timeout", 0, "API request timeout in seconds")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	logFile := fs.String("log-file", "", "log file path")
	logLevel := fs.String("log-level", "", "log level (debug, info, warn, error)")

	if err := fs.Parse(flags); err != nil {
		os.Exit(1)
	}
	positional = append(positional, fs.Args()...)

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Flags override file and environment values.
	setIf(&cfg.Source, *source)
	setIf(&cfg.Dest, *dest)
	setIf(&cfg.Endpoint, *endpoint)
	setIf(&cfg.Model, *model)
	setIf(&cfg.Extension, *extension)
	setIf(&cfg.LogFile, *logFile)
	setIf(&cfg.LogLevel, *logLevel)
	if *mode != "" {
		cfg.Mode = config.Mode(*mode)
	}
	if *timeout > 0 {
		cfg.Timeout = time.Duration(*timeout) * time.Second
	}
	cfg.Yes = *yes
	// Positional source argument takes precedence, as with -source.
	if len(positional) > 0 {
		cfg.Source = positional[0]
	}
	// Environment fills gaps left by flags and file; defaults fill the rest.
	cfg.FromEnv()
	cfg.SetDefaults()

	// Anything still missing is collected interactively.
	in := bufio.NewReader(os.Stdin)
	promptMissing(cfg, in, os.Stdout)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level %q: %v\n", cfg.LogLevel, err)
		os.Exit(1)
	}
	logger, logCleanup, err := logging.Setup(cfg.LogFile, level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to setup logging: %v\n", err)
		os.Exit(1)
	}
	defer logCleanup()
	logger.Info("run configured", "config", cfg)

	// Setup signal handling with context cancellation.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	// Resolve paths before any file is touched; bad paths abort the run.
	batch := cfg.Mode == config.ModeBatch
	src, err := resolver.Source(cfg.Source, batch, logger)
	if err != nil {
		logger.Error("failed to resolve source", "error", err)
		fmt.Fprintf(os.Stderr, "Error resolving source: %v\n", err)
		os.Exit(1)
	}
	dst, err := resolver.Dest(cfg.Dest, batch, logger)
	if err != nil {
		logger.Error("failed to resolve destination", "error", err)
		fmt.Fprintf(os.Stderr, "Error resolving destination: %v\n", err)
		os.Exit(1)
	}

	if !cfg.Yes && !confirm(in, os.Stdout, src, dst, batch) {
		fmt.Println("Aborted.")
		return
	}

	client := describe.NewClient(describe.Config{
		Endpoint: cfg.Endpoint,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey,
		Timeout:  cfg.Timeout,
	}, logger)

	ann := annotate.New(client, cfg.Extension, logger)
	ann.Progress = func(rel string, err error) {
		if err != nil {
			fmt.Printf("Failed:    %s (%v)\n", rel, err)
			return
		}
		fmt.Printf("Annotated: %s\n", rel)
	}

	var summary annotate.Summary
	if batch {
		summary, err = ann.Tree(ctx, src, dst)
		if err != nil {
			logger.Error("batch run stopped", "error", err)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	} else {
		summary = ann.Single(ctx, src, dst)
	}

	printSummary(os.Stdout, summary)
}

// loadConfig builds the base config from the optional YAML file.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return &config.Config{}, nil
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// promptMissing asks the operator for any parameter not supplied by flags,
// file, or environment.
func promptMissing(cfg *config.Config, in *bufio.Reader, out io.Writer) {
	if cfg.Mode == "" {
		answer := promptLine(in, out, "Mode [single/batch]: ")
		cfg.Mode = config.Mode(strings.ToLower(answer))
	}
	if cfg.APIKey == "" {
		cfg.APIKey = promptLine(in, out, "API key: ")
	}
	if cfg.Source == "" {
		cfg.Source = promptLine(in, out, "Source path: ")
	}
	if cfg.Dest == "" {
		cfg.Dest = promptLine(in, out, "Destination path: ")
	}
}

func promptLine(in *bufio.Reader, out io.Writer, label string) string {
	fmt.Fprint(out, label)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

// confirm gates the whole run behind a yes/no prompt.
func confirm(in *bufio.Reader, out io.Writer, src, dst string, batch bool) bool {
	what := "file"
	if batch {
		what = "directory tree"
	}
	fmt.Fprintf(out, "Annotate %s %s into %s? [y/N]: ", what, src, dst)
	line, _ := in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func printSummary(out io.Writer, s annotate.Summary) {
	fmt.Fprintf(out, "\nScripts attempted: %d\nSucceeded: %d\nFailed: %d\n",
		s.Attempted, s.Succeeded, s.Failed)
	for _, name := range s.FailedFiles {
		fmt.Fprintf(out, "  failed: %s\n", name)
	}
}

// reorderArgs separates flags and positional arguments so flags can appear
// in any position (before or after the positional source argument).
// Flags that take a value (e.g., -dest out) consume the next arg.
func reorderArgs(args []string) (flags, positional []string) {
	// Set of flags that take a value argument
	valueFlagSet := map[string]bool{
		"-config": true, "-mode": true, "-source": true, "-dest": true,
		"-endpoint": true, "-model": true, "-extension": true,
		"-timeout": true, "-log-file": true, "-log-level": true,
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if strings.HasPrefix(arg, "-") {
			flags = append(flags, arg)
			// Check if this flag takes a value (and it's not using = syntax)
			if !strings.Contains(arg, "=") && valueFlagSet[arg] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, arg)
		}
	}
	return flags, positional
}
