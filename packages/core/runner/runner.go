package runner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/abdul-hamid-achik/softspec/packages/assertions"
	"github.com/abdul-hamid-achik/softspec/packages/backend"
	"github.com/abdul-hamid-achik/softspec/packages/core/env"
	"github.com/abdul-hamid-achik/softspec/packages/core/parser"
	"github.com/abdul-hamid-achik/softspec/packages/db"
	"github.com/abdul-hamid-achik/softspec/packages/fixture"
	"github.com/abdul-hamid-achik/softspec/packages/logging"
	"github.com/abdul-hamid-achik/softspec/packages/report"
	"github.com/abdul-hamid-achik/softspec/packages/snapshot"
)

// DefaultConcurrency is the default number of scenarios run at once in
// parallel mode
const DefaultConcurrency = 5

type Runner struct {
	config    *Config
	logger    logging.Logger
	registry  *assertions.Registry
	snapshots *snapshot.Manager
}

type Config struct {
	Environment  string
	Environments map[string]map[string]any
	// Variables override environment and file variables.
	Variables       map[string]any
	Verbose         bool
	Bail            bool
	NameFilter      string
	TagsFilter      []string
	Parallel        bool
	Concurrency     int
	UpdateSnapshots bool
	// Database replaces the fixture database of every file when set.
	Database string
	Logger   logging.Logger
}

func NewRunner(cfg *Config) *Runner {
	if cfg == nil {
		cfg = &Config{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NullLogger{}
	}

	return &Runner{
		config:    cfg,
		logger:    logger,
		registry:  assertions.NewRegistry(),
		snapshots: snapshot.NewManager(cfg.UpdateSnapshots),
	}
}

type RunResult struct {
	File     string
	Results  []*ScenarioResult
	Duration time.Duration
	Passed   int
	Failed   int
	Skipped  int
}

type ScenarioResult struct {
	Name       string
	ID         string
	Passed     bool
	Skipped    bool
	SkipReason string
	Duration   time.Duration
	Steps      []StepResult
	// Error is the scenario's aggregate assertion error, a hook failure,
	// or both joined.
	Error       error
	Attachments []report.Attachment
}

type StepResult struct {
	Index    int
	Line     int
	Assert   string
	Adapter  string
	Passed   bool
	Message  string
	Error    error
	Duration time.Duration
}

// fileContext is what every scenario of one file shares.
type fileContext struct {
	path     string
	baseDir  string
	fixture  *fixture.Fixture
	db       *db.Client
	resolver *env.Resolver
}

// RunFile parses path and runs its scenarios.
func (r *Runner) RunFile(ctx context.Context, path string) (*RunResult, error) {
	file, err := parser.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}
	return r.Run(ctx, file)
}

// Run executes an already parsed file.
func (r *Runner) Run(ctx context.Context, file *parser.File) (*RunResult, error) {
	fc, err := r.prepare(ctx, file)
	if err != nil {
		return nil, err
	}
	if fc.db != nil {
		defer fc.db.Close()
	}
	return r.runScenarios(ctx, fc, file.Scenarios), nil
}

func (r *Runner) prepare(ctx context.Context, file *parser.File) (*fileContext, error) {
	baseDir := filepath.Dir(file.Path)

	environment, err := env.LoadEnvironment(baseDir, r.config.Environment, r.config.Environments)
	if err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	resolver := env.NewResolver()
	resolver.SetLogger(r.logger)
	resolver.SetVariables(environment.Variables)
	for name, value := range file.Variables {
		resolver.SetVariable(name, resolver.ResolveValue(value))
	}
	resolver.SetVariables(r.config.Variables)

	fx, err := fixture.New(file.Fixture, baseDir)
	if err != nil {
		return nil, fmt.Errorf("building fixture: %w", err)
	}

	fc := &fileContext{
		path:     file.Path,
		baseDir:  baseDir,
		fixture:  fx,
		resolver: resolver,
	}

	conn := file.Fixture.Database
	if r.config.Database != "" {
		conn = r.config.Database
	}
	if conn == "" {
		return fc, nil
	}

	client, err := db.NewClient(ctx, db.ResolvePath(resolver.Resolve(conn), baseDir))
	if err != nil {
		return nil, fmt.Errorf("opening fixture database: %w", err)
	}
	for i, stmt := range file.Fixture.Seed {
		if err := client.Exec(ctx, resolver.Resolve(stmt)); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("seed statement %d: %w", i+1, err)
		}
	}
	fc.db = client
	return fc, nil
}

func (r *Runner) runScenarios(ctx context.Context, fc *fileContext, scenarios []*parser.Scenario) *RunResult {
	start := time.Now()
	result := &RunResult{File: fc.path}

	hasOnly := false
	for _, sc := range scenarios {
		if sc.Only {
			hasOnly = true
			break
		}
	}

	var runnable []*parser.Scenario
	for _, sc := range scenarios {
		if !r.shouldRun(sc, hasOnly) {
			result.Results = append(result.Results, &ScenarioResult{
				Name:       sc.Name,
				Skipped:    true,
				SkipReason: "filtered out",
			})
			result.Skipped++
			continue
		}
		if sc.Skip != "" {
			result.Results = append(result.Results, &ScenarioResult{
				Name:       sc.Name,
				Skipped:    true,
				SkipReason: sc.Skip,
			})
			result.Skipped++
			continue
		}
		runnable = append(runnable, sc)
	}

	var results []*ScenarioResult
	if r.config.Parallel {
		results = r.runParallel(ctx, fc, runnable)
	} else {
		for _, sc := range runnable {
			res := r.runScenario(ctx, fc, sc)
			results = append(results, res)
			if !res.Passed && r.config.Bail {
				break
			}
		}
	}

	for _, res := range results {
		result.Results = append(result.Results, res)
		switch {
		case res.Skipped:
			result.Skipped++
		case res.Passed:
			result.Passed++
		default:
			result.Failed++
		}
	}

	result.Duration = time.Since(start)
	return result
}

func (r *Runner) runParallel(ctx context.Context, fc *fileContext, scenarios []*parser.Scenario) []*ScenarioResult {
	concurrency := r.config.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]*ScenarioResult, len(scenarios))
	var wg sync.WaitGroup
	var bailed atomic.Bool
	sem := make(chan struct{}, concurrency)

	for i, sc := range scenarios {
		wg.Add(1)
		sem <- struct{}{} // acquire semaphore

		go func(idx int, scenario *parser.Scenario) {
			defer wg.Done()
			defer func() { <-sem }() // release semaphore

			if bailed.Load() {
				results[idx] = &ScenarioResult{
					Name:       scenario.Name,
					Skipped:    true,
					SkipReason: "bail: an earlier scenario failed",
				}
				return
			}
			res := r.runScenario(ctx, fc, scenario)
			if !res.Passed && r.config.Bail {
				bailed.Store(true)
			}
			results[idx] = res
		}(i, sc)
	}

	wg.Wait()
	return results
}

// runScenario evaluates every step of sc against its own accumulator.
// Step failures never stop the scenario; they are reported together
// when it ends.
func (r *Runner) runScenario(ctx context.Context, fc *fileContext, sc *parser.Scenario) *ScenarioResult {
	start := time.Now()
	collector := report.NewCollector()
	sink := logging.NewSink(r.logger)

	id, acc := r.registry.Open(assertions.WithReporter(collector), assertions.WithLogger(sink))
	defer func() { _ = r.registry.Close(id) }()

	restore := sink.Intercept(logging.NewCaptureLogger(sink.Current(), acc))
	defer restore()

	result := &ScenarioResult{Name: sc.Name, ID: id}

	resolver := fc.resolver.Clone()
	resolver.SetLogger(sink)
	for name, value := range sc.Variables {
		resolver.SetVariable(name, resolver.ResolveValue(value))
	}

	b := backend.New(
		backend.WithBaseDir(fc.baseDir),
		backend.WithSnapshots(r.snapshots, fc.path, sc.Name),
	)
	d := assertions.NewDispatcher(b, acc, assertions.WithReporter(collector), assertions.WithLogger(sink))

	var errs []error
	if err := r.executeHooks(ctx, sc.Before, fc.baseDir, resolver.Resolve, sink); err != nil {
		errs = append(errs, fmt.Errorf("before hook failed: %w", err))
	} else {
		result.Steps = r.runSteps(ctx, d, fc, resolver, sink, sc)
	}
	if err := r.executeHooks(ctx, sc.After, fc.baseDir, resolver.Resolve, sink); err != nil {
		errs = append(errs, fmt.Errorf("after hook failed: %w", err))
	}
	if ctx.Err() != nil {
		errs = append(errs, ctx.Err())
	}

	if err := acc.Finalize(); err != nil {
		errs = append([]error{err}, errs...)
	}
	result.Error = errors.Join(errs...)
	result.Passed = result.Error == nil
	result.Duration = time.Since(start)
	result.Attachments = collector.Attachments()
	return result
}

func (r *Runner) runSteps(ctx context.Context, d *assertions.Dispatcher, fc *fileContext, resolver *env.Resolver, logger logging.Logger, sc *parser.Scenario) []StepResult {
	steps := make([]StepResult, 0, len(sc.Steps))
	for i, st := range sc.Steps {
		if ctx.Err() != nil {
			break
		}
		start := time.Now()

		req := assertions.Request{
			Operation: assertions.Named(st.Assert),
			Expected:  resolver.ResolveValue(st.Expected),
			Message:   resolver.Resolve(st.Message),
			Operator:  st.Operator,
		}
		actual, err := r.resolveSource(ctx, fc, resolver, st.Actual)
		if err != nil {
			// reported under the step's own operation name
			req.Operation = assertions.Operation{
				Kind: assertions.KindPredicate,
				Name: st.Assert,
				Predicate: func(context.Context, any, any) error {
					return fmt.Errorf("resolving actual %s: %w", st.Actual, err)
				},
			}
		}
		req.Actual = actual

		out := d.Evaluate(ctx, req)
		step := StepResult{
			Index:    i + 1,
			Line:     st.Line,
			Assert:   st.Assert,
			Adapter:  out.Adapter,
			Passed:   out.Passed,
			Duration: time.Since(start),
		}
		if out.Failure != nil {
			step.Message = out.Failure.Message
			step.Error = out.Failure.Err
		}
		steps = append(steps, step)

		if st.Capture != "" && err == nil {
			value, cerr := captureValue(ctx, actual)
			if cerr != nil {
				logger.Warn("capture failed", logging.String("capture", st.Capture), logging.Err(cerr))
				continue
			}
			resolver.SetCapture(sc.Name, st.Capture, value)
		}
	}
	return steps
}

func (r *Runner) shouldRun(sc *parser.Scenario, hasOnly bool) bool {
	if hasOnly && !sc.Only {
		return false
	}
	if r.config.NameFilter != "" && !matchesPattern(sc.Name, r.config.NameFilter) {
		return false
	}
	if len(r.config.TagsFilter) > 0 && !hasAnyTag(sc.Tags, r.config.TagsFilter) {
		return false
	}
	return true
}

// matchesPattern supports a leading and/or trailing * wildcard.
func matchesPattern(name, pattern string) bool {
	if pattern == "" {
		return true
	}
	if pattern == "*" {
		return true
	}

	prefix := strings.HasSuffix(pattern, "*")
	suffix := strings.HasPrefix(pattern, "*")
	core := strings.TrimSuffix(strings.TrimPrefix(pattern, "*"), "*")

	switch {
	case prefix && suffix:
		return strings.Contains(name, core)
	case suffix:
		return strings.HasSuffix(name, core)
	case prefix:
		return strings.HasPrefix(name, core)
	}
	return name == pattern
}

func hasAnyTag(tags []string, filters []string) bool {
	for _, filter := range filters {
		for _, tag := range tags {
			if tag == filter {
				return true
			}
		}
	}
	return false
}
