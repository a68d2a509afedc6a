package nlp

import "context"

// Pipeline is a loaded pretrained model. Analyze may be called any number of
// times; Close releases whatever the pipeline holds (processes, memory).
type Pipeline interface {
	Analyze(ctx context.Context, text string) (*Document, error)
	Close() error
}

// Engine is a source of pretrained models.
type Engine interface {
	// Name identifies the engine in user-facing messages.
	Name() string
	// Installed lists the identifiers of the locally available models.
	Installed(ctx context.Context) ([]string, error)
	// Load prepares the named model for analysis.
	Load(ctx context.Context, model string) (Pipeline, error)
	// InstallHint tells the user how to make model available.
	InstallHint(model string) string
}
