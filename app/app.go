// Package app runs one analysis batch: it resolves the model, walks the
// folder and renders every matching file.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/agext/levenshtein"

	"github.com/RAMarenco/nlp-analyzer/config"
	"github.com/RAMarenco/nlp-analyzer/nlp"
	"github.com/RAMarenco/nlp-analyzer/render"
	"github.com/RAMarenco/nlp-analyzer/walker"
)

// maxSuggestDistance bounds the edit distance of a "did you mean" suggestion.
const maxSuggestDistance = 3

// TokenCounter describes the size of a text in a header line.
type TokenCounter interface {
	Describe(text string) string
}

// App encapsulates the dependencies of one run.
type App struct {
	cfg     *config.Config
	console *render.Console
	engine  nlp.Engine
	counter TokenCounter
	logger  *slog.Logger
}

// NewApp wires an App. counter may be nil.
func NewApp(cfg *config.Config, console *render.Console, engine nlp.Engine, counter TokenCounter, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		cfg:     cfg,
		console: console,
		engine:  engine,
		counter: counter,
		logger:  logger,
	}
}

// Run lists the installed models when listModels is set, and otherwise
// analyzes every matching file under the configured folder.
func (a *App) Run(ctx context.Context, listModels bool) error {
	installed, err := a.engine.Installed(ctx)
	if err != nil {
		return fmt.Errorf("failed to query installed %s models: %w", a.engine.Name(), err)
	}
	a.logger.Debug("Installed models queried.", "engine", a.engine.Name(), "count", len(installed))

	if listModels {
		a.console.ModelList(a.engine.Name(), installed)
		return nil
	}

	if err := a.checkModel(installed); err != nil {
		return err
	}

	return a.analyze(ctx)
}

func (a *App) checkModel(installed []string) error {
	model := a.cfg.Model
	if model == "" {
		msg := "The --model argument is required unless --list-models is used"
		a.console.Error(msg)
		return &ExitError{Code: 1, Message: msg, Err: ErrMissingModel}
	}

	if slices.Contains(installed, model) {
		return nil
	}

	msg := fmt.Sprintf("Error: model '%s' is not installed.", model)
	a.console.Error(msg)
	a.console.ModelList(a.engine.Name(), installed)
	if s := Suggest(model, installed); s != "" {
		a.console.Hint(fmt.Sprintf("Did you mean '%s'?", s))
	}
	a.console.Hint(a.engine.InstallHint(model))
	return &ExitError{Code: 1, Message: msg, Err: ErrUnknownModel}
}

// Suggest returns the candidate closest to name, or "" when none is within
// maxSuggestDistance edits. Ties go to the earlier candidate.
func Suggest(name string, candidates []string) string {
	best, bestDist := "", maxSuggestDistance+1
	for _, c := range candidates {
		if d := levenshtein.Distance(name, c, nil); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func (a *App) analyze(ctx context.Context) error {
	model := a.cfg.Model
	banner := fmt.Sprintf("Using %s model: %s", a.engine.Name(), model)
	if lang := nlp.ModelLanguage(model); lang != "" {
		banner += " (" + lang + ")"
	}
	a.console.Success(banner)

	pipeline, err := a.engine.Load(ctx, model)
	if err != nil {
		return fmt.Errorf("failed to load model %s: %w", model, err)
	}
	defer func() {
		if err := pipeline.Close(); err != nil {
			a.logger.Warn("Failed to close pipeline.", "model", model, "error", err)
		}
	}()

	var analyzed, failed int
	// fail skips path after err, or ends the walk under --fail-fast.
	fail := func(path string, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if a.cfg.FailFast {
			return err
		}
		failed++
		a.logger.Warn("Skipping after error.", "path", path, "error", err)
		a.console.Warn(fmt.Sprintf("Skipped %s: %v", path, err))
		return nil
	}

	err = walker.Walk(ctx, a.cfg.Folder, a.cfg.Extensions, func(path string) error {
		a.logger.Debug("Analyzing file.", "path", path)
		if err := a.analyzeFile(ctx, pipeline, path); err != nil {
			return fail(path, err)
		}
		analyzed++
		return nil
	}, func(path string, err error) error {
		return fail(path, fmt.Errorf("failed to read %s: %w", path, err))
	})
	if err != nil {
		return err
	}

	a.console.Summary(analyzed, failed)
	return nil
}

// analyzeFile renders the report of one file. Nothing is printed when the
// file cannot be read or analyzed.
func (a *App) analyzeFile(ctx context.Context, pipeline nlp.Pipeline, path string) error {
	text, err := walker.ReadFile(path)
	if err != nil {
		return err
	}

	doc, err := pipeline.Analyze(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to analyze %s: %w", path, err)
	}
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("invalid analysis of %s: %w", path, err)
	}

	var detail string
	if a.counter != nil {
		detail = a.counter.Describe(text)
	}
	a.console.FileHeader(path, detail)
	a.console.Document(doc)
	return nil
}

// IsExitError reports whether err carries an exit code, and returns it.
func IsExitError(err error) (*ExitError, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr, true
	}
	return nil, false
}
