package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/softspec/packages/core/config"
	"github.com/abdul-hamid-achik/softspec/packages/core/env"
	"github.com/abdul-hamid-achik/softspec/packages/core/parser"
	"github.com/abdul-hamid-achik/softspec/packages/core/runner"
	"github.com/abdul-hamid-achik/softspec/packages/logging"
	"github.com/abdul-hamid-achik/softspec/packages/output"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <file|directory>...",
	Short: "Run scenario files",
	Long: `Run the assertion scenarios defined in .soft.yaml or .softspec files.

Every step of a scenario runs even when earlier steps fail. A scenario
with failures reports them all at the end, in step order.

Examples:
  softspec run checkout.soft.yaml
  softspec run checkout.soft.yaml --env staging
  softspec run ./scenarios/ --tags smoke
  softspec run ./scenarios/ --name "checkout*" -o junit --output-file report.xml
  softspec run ./scenarios/ --parallel --concurrency 8
  softspec run ./scenarios/ --watch`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	envFlag             string
	envFileFlag         string
	configFlag          string
	nameFlag            string
	tagsFlag            string
	verboseFlag         int // 0=off, 1=-v, 2=-vv
	quietFlag           bool
	noColorFlag         bool
	outputFlag          string
	outputFileFlag      string
	bailFlag            bool
	parallelFlag        bool
	concurrencyFlag     int
	watchFlag           bool
	dryRunFlag          bool
	databaseFlag        string
	updateSnapshotsFlag bool
)

func init() {
	// Core flags
	runCmd.Flags().StringVarP(&envFlag, "env", "e", getEnvString("SOFTSPEC_ENV", ""), "Environment to use (default from config) (env: SOFTSPEC_ENV)")
	runCmd.Flags().StringVar(&envFileFlag, "env-file", getEnvString("SOFTSPEC_ENV_FILE", ""), "Path to .env file whose values override scenario variables (env: SOFTSPEC_ENV_FILE)")
	runCmd.Flags().StringVar(&configFlag, "config", getEnvString("SOFTSPEC_CONFIG", ""), "Path to config file (env: SOFTSPEC_CONFIG)")
	runCmd.Flags().StringVarP(&nameFlag, "name", "n", "", "Run only scenarios matching name pattern (supports *)")
	runCmd.Flags().StringVarP(&tagsFlag, "tags", "t", getEnvString("SOFTSPEC_TAGS", ""), "Run only scenarios with one of the tags (comma-separated) (env: SOFTSPEC_TAGS)")
	runCmd.Flags().StringVar(&databaseFlag, "database", getEnvString("SOFTSPEC_DATABASE", ""), "Database for sql sources, replacing each file's fixture database (env: SOFTSPEC_DATABASE)")

	// Output flags
	runCmd.Flags().CountVarP(&verboseFlag, "verbose", "v", "Verbose output (-v for steps, -vv for debug logs)")
	runCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", getEnvBool("SOFTSPEC_QUIET", false), "Suppress log output (env: SOFTSPEC_QUIET)")
	runCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("SOFTSPEC_NO_COLOR", false), "Disable colored output (env: SOFTSPEC_NO_COLOR)")
	runCmd.Flags().StringVarP(&outputFlag, "output", "o", getEnvString("SOFTSPEC_OUTPUT", ""), "Output format: console, json, junit, tap, html (env: SOFTSPEC_OUTPUT)")
	runCmd.Flags().StringVar(&outputFileFlag, "output-file", getEnvString("SOFTSPEC_OUTPUT_FILE", ""), "Write output to file (default: stdout) (env: SOFTSPEC_OUTPUT_FILE)")

	// Execution flags
	runCmd.Flags().BoolVar(&bailFlag, "bail", getEnvBool("SOFTSPEC_BAIL", false), "Stop after the first failed scenario (env: SOFTSPEC_BAIL)")
	runCmd.Flags().BoolVarP(&parallelFlag, "parallel", "p", getEnvBool("SOFTSPEC_PARALLEL", false), "Run the scenarios of a file in parallel (env: SOFTSPEC_PARALLEL)")
	runCmd.Flags().IntVar(&concurrencyFlag, "concurrency", getEnvInt("SOFTSPEC_CONCURRENCY", runner.DefaultConcurrency), "Scenarios run at once in parallel mode (env: SOFTSPEC_CONCURRENCY)")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch files for changes and re-run")
	runCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Parse and show what would run without executing")
	runCmd.Flags().BoolVar(&updateSnapshotsFlag, "update-snapshots", getEnvBool("SOFTSPEC_UPDATE_SNAPSHOTS", false), "Rewrite stored snapshots instead of comparing (env: SOFTSPEC_UPDATE_SNAPSHOTS)")

	_ = runCmd.RegisterFlagCompletionFunc("output", completeFixed(output.Formats...))
}

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// explicit reports whether a flag was given on the command line or
// through its environment variable, so it wins over the config file.
func explicit(cmd *cobra.Command, flag, envKey string) bool {
	return cmd.Flags().Changed(flag) || os.Getenv(envKey) != ""
}

// flagOverrides collects the explicitly set flags as a config layer.
func flagOverrides(cmd *cobra.Command) *config.Config {
	o := &config.Config{}
	if explicit(cmd, "env", "SOFTSPEC_ENV") {
		o.DefaultEnvironment = envFlag
	}
	if explicit(cmd, "database", "SOFTSPEC_DATABASE") {
		o.Database = databaseFlag
	}
	if explicit(cmd, "output", "SOFTSPEC_OUTPUT") {
		o.Reporters = []string{outputFlag}
	}
	if explicit(cmd, "concurrency", "SOFTSPEC_CONCURRENCY") {
		o.Concurrency = concurrencyFlag
	}
	if explicit(cmd, "parallel", "SOFTSPEC_PARALLEL") {
		o.Parallel = config.BoolPtr(parallelFlag)
	}
	if explicit(cmd, "bail", "SOFTSPEC_BAIL") {
		o.Bail = config.BoolPtr(bailFlag)
	}
	if explicit(cmd, "no-color", "SOFTSPEC_NO_COLOR") {
		o.NoColor = config.BoolPtr(noColorFlag)
	}
	if explicit(cmd, "update-snapshots", "SOFTSPEC_UPDATE_SNAPSHOTS") {
		o.UpdateSnapshots = config.BoolPtr(updateSnapshotsFlag)
	}
	if verboseFlag > 0 {
		o.Verbose = config.BoolPtr(true)
	}
	return o
}

func runCommand(cmd *cobra.Command, args []string) error {
	fileConfig, err := config.LoadConfig(configFlag)
	if err != nil {
		return withExitCode(ExitConfigError, fmt.Errorf("loading config: %w", err))
	}
	cfg := fileConfig.Merge(flagOverrides(cmd))
	if cfg.Concurrency < 0 {
		return withExitCode(ExitUsageError, fmt.Errorf("--concurrency must not be negative"))
	}

	var variables map[string]any
	if envFileFlag != "" {
		dotenv, err := env.LoadDotEnv(envFileFlag)
		if err != nil {
			return withExitCode(ExitConfigError, fmt.Errorf("loading env file: %w", err))
		}
		variables = make(map[string]any, len(dotenv))
		for k, v := range dotenv {
			variables[k] = v
		}
	}

	files, err := collectFiles(args)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}
	if len(files) == 0 {
		return noFilesError()
	}

	if dryRunFlag {
		return dryRun(cmd.OutOrStdout(), files)
	}

	out := cmd.OutOrStdout()
	if outputFileFlag != "" {
		f, err := os.Create(outputFileFlag)
		if err != nil {
			return withExitCode(ExitUsageError, fmt.Errorf("cannot create output file: %w", err))
		}
		defer f.Close()
		out = f
	}

	format := "console"
	if len(cfg.Reporters) > 0 {
		format = cfg.Reporters[0]
	}
	if _, err := output.New(format, io.Discard, false, true); err != nil {
		return withExitCode(ExitUsageError, err)
	}

	var logger logging.Logger = logging.NullLogger{}
	if !quietFlag {
		logger = logging.NewConsoleLogger(
			logging.WithOutput(cmd.ErrOrStderr()),
			logging.WithVerbose(verboseFlag > 1),
		)
	}
	defer logger.Close()

	r := runner.NewRunner(&runner.Config{
		Environment:     cfg.DefaultEnvironment,
		Environments:    cfg.Environments,
		Variables:       variables,
		Verbose:         cfg.GetVerbose(),
		Bail:            cfg.GetBail(),
		NameFilter:      nameFlag,
		TagsFilter:      splitList(tagsFlag),
		Parallel:        cfg.GetParallel(),
		Concurrency:     cfg.Concurrency,
		UpdateSnapshots: cfg.GetUpdateSnapshots(),
		Database:        cfg.Database,
		Logger:          logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Each pass gets a fresh formatter; json, junit and html accumulate
	// results until flushed.
	pass := func(files []string) (runSummary, error) {
		formatter, err := output.New(format, out, cfg.GetVerbose(), cfg.GetNoColor() || quietFlag)
		if err != nil {
			return runSummary{}, err
		}
		formatter.FormatHeader(version)
		summary := runFiles(ctx, r, files, formatter, cfg.GetBail())
		if flushable, ok := formatter.(output.Flushable); ok {
			if err := flushable.Flush(summary.duration); err != nil {
				return summary, fmt.Errorf("error writing output: %w", err)
			}
		}
		return summary, nil
	}

	summary, err := pass(files)
	if err != nil {
		return err
	}

	if watchFlag {
		return watchFiles(ctx, cmd.OutOrStdout(), args, func() {
			files, err := collectFiles(args)
			if err != nil {
				logger.Error("collecting files", logging.Err(err))
				return
			}
			if _, err := pass(files); err != nil {
				logger.Error("re-running", logging.Err(err))
			}
		}, logger)
	}

	return summary.err()
}

// runSummary totals one pass over the files.
type runSummary struct {
	passed, failed, skipped int
	parseErrors             int
	otherErrors             int
	duration                time.Duration
}

func (s runSummary) err() error {
	switch {
	case s.parseErrors > 0:
		return withExitCode(ExitParseError, fmt.Errorf("%d file(s) could not be parsed", s.parseErrors))
	case s.failed > 0 || s.otherErrors > 0:
		return withExitCode(ExitTestFailure, fmt.Errorf("%d scenario(s) failed, %d file(s) errored", s.failed, s.otherErrors))
	}
	return nil
}

func runFiles(ctx context.Context, r *runner.Runner, files []string, formatter output.Formatter, bail bool) runSummary {
	var s runSummary
	start := time.Now()

	for _, file := range files {
		if ctx.Err() != nil {
			break
		}

		result, err := r.RunFile(ctx, file)
		if err != nil {
			formatter.FormatError(fmt.Errorf("%s: %w", file, err))
			if isParseError(err) {
				s.parseErrors++
			} else {
				s.otherErrors++
			}
			if bail {
				break
			}
			continue
		}

		formatter.FormatResult(result)
		s.passed += result.Passed
		s.failed += result.Failed
		s.skipped += result.Skipped

		if bail && result.Failed > 0 {
			break
		}
	}

	s.duration = time.Since(start)
	return s
}

func isParseError(err error) bool {
	var pe *parser.ParseError
	var ve *parser.ValidationError
	return errors.As(err, &pe) || errors.As(err, &ve)
}

// dryRun parses every file and lists what would run.
func dryRun(w io.Writer, files []string) error {
	var failed int
	for _, path := range files {
		f, err := parser.ParseFile(path)
		if err != nil {
			fmt.Fprintf(w, "✗ %s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Fprintf(w, "Would run: %s (%d scenarios)\n", path, len(f.Scenarios))
		for _, sc := range f.Scenarios {
			state := ""
			if sc.Skip != "" {
				state = " [skip]"
			}
			fmt.Fprintf(w, "  - %s (%d steps)%s\n", sc.Name, len(sc.Steps), state)
		}
	}
	if failed > 0 {
		return withExitCode(ExitParseError, fmt.Errorf("%d file(s) could not be parsed", failed))
	}
	return nil
}
