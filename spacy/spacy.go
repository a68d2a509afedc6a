// Package spacy runs spaCy pipelines through a Python child process.
package spacy

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sort"
	"strings"
	"sync"

	"github.com/RAMarenco/nlp-analyzer/nlp"
)

//go:embed bridge.py
var bridgeScript string

var errBridgeExited = errors.New("spaCy bridge exited")

// Engine lists and loads spaCy models installed for one Python interpreter.
type Engine struct {
	python string
	logger *slog.Logger
}

func NewEngine(python string, logger *slog.Logger) *Engine {
	if python == "" {
		python = "python3"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{python: python, logger: logger}
}

func (e *Engine) Name() string {
	return "spaCy"
}

func (e *Engine) InstallHint(model string) string {
	return fmt.Sprintf("You can install it with: %s -m spacy download %s", e.python, model)
}

func (e *Engine) command(ctx context.Context, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, e.python, append([]string{"-c", bridgeScript}, args...)...)
}

// Installed asks spaCy for the models installed in the interpreter's
// environment.
func (e *Engine) Installed(ctx context.Context) ([]string, error) {
	cmd := e.command(ctx, "list")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to list spaCy models: %w%s", err, detail(stderr.String()))
	}

	var models []string
	if err := json.Unmarshal(bytes.TrimSpace(out), &models); err != nil {
		return nil, fmt.Errorf("failed to decode spaCy model list: %w", err)
	}
	sort.Strings(models)

	e.logger.Debug("Queried spaCy models.", "python", e.python, "count", len(models))
	return models, nil
}

// Load starts a bridge process serving model. The process lives until the
// pipeline is closed or ctx is cancelled.
func (e *Engine) Load(ctx context.Context, model string) (nlp.Pipeline, error) {
	cmd := e.command(ctx, "serve", model)
	p := &Pipeline{model: model, cmd: cmd, logger: e.logger}
	cmd.Stderr = &p.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open bridge stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open bridge stdout: %w", err)
	}
	p.stdin = stdin
	p.stdout = bufio.NewReader(stdout)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", e.python, err)
	}
	e.logger.Debug("Started spaCy bridge.", "model", model, "pid", cmd.Process.Pid)

	var ready struct {
		Ready bool   `json:"ready"`
		Error string `json:"error"`
	}
	if err := p.receive(&ready); err != nil || !ready.Ready {
		p.Close()
		if err == nil {
			err = errors.New(ready.Error)
		}
		return nil, fmt.Errorf("failed to load spaCy model %q: %w%s", model, err, detail(p.stderr.String()))
	}

	return p, nil
}

// Pipeline is a loaded spaCy model behind a bridge process.
type Pipeline struct {
	model  string
	logger *slog.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	stderr syncBuffer

	closed  bool
	waitErr error
}

type request struct {
	Text string `json:"text"`
}

type wireToken struct {
	I       int    `json:"i"`
	Text    string `json:"text"`
	Lemma   string `json:"lemma"`
	POS     string `json:"pos"`
	Dep     string `json:"dep"`
	Head    int    `json:"head"`
	Shape   string `json:"shape"`
	IsAlpha bool   `json:"is_alpha"`
	IsStop  bool   `json:"is_stop"`
}

type wireEntity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

type response struct {
	Tokens []wireToken  `json:"tokens"`
	Ents   []wireEntity `json:"ents"`
	Error  string       `json:"error"`
}

// Analyze sends text to the bridge and waits for the parsed document.
func (p *Pipeline) Analyze(ctx context.Context, text string) (*nlp.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, errors.New("spaCy pipeline is closed")
	}

	line, err := json.Marshal(request{Text: text})
	if err != nil {
		return nil, err
	}
	if _, err := p.stdin.Write(append(line, '\n')); err != nil {
		p.wait()
		return nil, fmt.Errorf("failed to send text to spaCy: %w%s", err, detail(p.stderr.String()))
	}

	// Any failure to read a reply leaves requests and replies out of step, so
	// the bridge is stopped.
	var resp response
	if err := p.receive(&resp); err != nil {
		p.wait()
		if errors.Is(err, errBridgeExited) {
			return nil, fmt.Errorf("%w%s", err, detail(p.stderr.String()))
		}
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("spaCy: %s", resp.Error)
	}
	return resp.document()
}

// receive decodes the next line printed by the bridge into v.
func (p *Pipeline) receive(v any) error {
	line, err := p.stdout.ReadBytes('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errBridgeExited
		}
		return fmt.Errorf("failed to read from spaCy bridge: %w", err)
	}
	if err := json.Unmarshal(line, v); err != nil {
		return fmt.Errorf("failed to decode spaCy response: %w", err)
	}
	return nil
}

func (r *response) document() (*nlp.Document, error) {
	doc := &nlp.Document{
		Tokens:   make([]nlp.Token, 0, len(r.Tokens)),
		Entities: make([]nlp.Entity, 0, len(r.Ents)),
	}
	for _, t := range r.Tokens {
		doc.Tokens = append(doc.Tokens, nlp.Token{
			Index:   t.I,
			Text:    t.Text,
			Lemma:   t.Lemma,
			POS:     t.POS,
			Dep:     t.Dep,
			Head:    t.Head,
			Shape:   t.Shape,
			IsAlpha: t.IsAlpha,
			IsStop:  t.IsStop,
		})
	}
	for _, e := range r.Ents {
		doc.Entities = append(doc.Entities, nlp.Entity{Text: e.Text, Label: e.Label, Start: e.Start, End: e.End})
	}

	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid spaCy parse: %w", err)
	}
	return doc, nil
}

// Close ends the bridge process and waits for it to exit.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.wait(); err != nil {
		return fmt.Errorf("spaCy bridge: %w%s", err, detail(p.stderr.String()))
	}
	return nil
}

// wait closes stdin and reaps the process once; p.mu must be held. After it
// returns the whole of stderr has been captured.
func (p *Pipeline) wait() error {
	if p.closed {
		return p.waitErr
	}
	p.closed = true

	p.stdin.Close()
	p.waitErr = p.cmd.Wait()
	p.logger.Debug("Stopped spaCy bridge.", "model", p.model, "err", p.waitErr)
	return p.waitErr
}

// detail formats the last line of a child's stderr for an error message.
func detail(stderr string) string {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return ""
	}
	lines := strings.Split(stderr, "\n")
	return ": " + strings.TrimSpace(lines[len(lines)-1])
}

// syncBuffer is a bytes.Buffer safe to read while exec copies into it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
