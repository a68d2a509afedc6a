// Package prosenlp analyzes English text in-process with the prose library.
//
// prose tokenizes, tags (Penn Treebank tags) and extracts entities but has no
// dependency parser or lemmatizer. Documents it produces use a flat parse:
// the first verb of each sentence (or its first token) is the ROOT, and every
// other token hangs from it as "punct" or "dep". Lemmas are Snowball stems
// and stop words come from the Snowball English list.
package prosenlp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	proselib "github.com/jdkato/prose/v2"
	"github.com/kljensen/snowball/english"

	"github.com/RAMarenco/nlp-analyzer/nlp"
)

// BuiltinModel is the English model compiled into prose.
const BuiltinModel = "en"

// Engine serves the built-in model plus any model directories written with
// prose's Model.Write under modelsDir.
type Engine struct {
	modelsDir string
	logger    *slog.Logger
}

func NewEngine(modelsDir string, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{modelsDir: modelsDir, logger: logger}
}

func (e *Engine) Name() string {
	return "prose"
}

func (e *Engine) InstallHint(model string) string {
	if e.modelsDir == "" {
		return fmt.Sprintf("Set --prose-models to the directory that contains %s/Maxent", model)
	}
	return fmt.Sprintf("Write the model with prose's Model.Write to %s", filepath.Join(e.modelsDir, model))
}

// Installed lists BuiltinModel and every directory of modelsDir holding a
// prose entity classifier.
func (e *Engine) Installed(ctx context.Context) ([]string, error) {
	models := []string{BuiltinModel}
	if e.modelsDir == "" {
		return models, nil
	}

	entries, err := os.ReadDir(e.modelsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			e.logger.Debug("prose models directory does not exist.", "dir", e.modelsDir)
			return models, nil
		}
		return nil, fmt.Errorf("failed to list prose models: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() && entry.Name() != BuiltinModel && isModelDir(filepath.Join(e.modelsDir, entry.Name())) {
			models = append(models, entry.Name())
		}
	}
	sort.Strings(models)
	return models, nil
}

// isModelDir reports whether dir holds the files prose.ModelFromDisk reads.
func isModelDir(dir string) bool {
	for _, name := range []string{"mapping.gob", "weights.gob", "labels.gob"} {
		if _, err := os.Stat(filepath.Join(dir, "Maxent", name)); err != nil {
			return false
		}
	}
	return true
}

func (e *Engine) Load(ctx context.Context, model string) (p nlp.Pipeline, err error) {
	if model == BuiltinModel {
		return &Pipeline{model: proselib.ModelFromData(BuiltinModel)}, nil
	}

	dir := filepath.Join(e.modelsDir, model)
	if e.modelsDir == "" || !isModelDir(dir) {
		return nil, fmt.Errorf("prose model %q not found", model)
	}

	// ModelFromDisk panics on unreadable or corrupt files.
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, fmt.Errorf("failed to load prose model %q: %v", model, r)
		}
	}()
	m := proselib.ModelFromDisk(dir)
	e.logger.Debug("Loaded prose model.", "model", model, "dir", dir)
	return &Pipeline{model: m}, nil
}

// Pipeline analyzes text with one prose model.
type Pipeline struct {
	model *proselib.Model
}

func (p *Pipeline) Close() error {
	return nil
}

func (p *Pipeline) Analyze(ctx context.Context, text string) (*nlp.Document, error) {
	doc := &nlp.Document{}
	if strings.TrimSpace(text) == "" {
		return doc, nil
	}

	segmented, err := proselib.NewDocument(text,
		proselib.UsingModel(p.model),
		proselib.WithTokenization(false),
		proselib.WithTagging(false),
		proselib.WithExtraction(false))
	if err != nil {
		return nil, fmt.Errorf("prose segmentation: %w", err)
	}

	sentences := make([]string, 0, len(segmented.Sentences()))
	for _, s := range segmented.Sentences() {
		sentences = append(sentences, s.Text)
	}
	if len(sentences) == 0 {
		sentences = append(sentences, text)
	}

	for _, sentence := range sentences {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sdoc, err := proselib.NewDocument(sentence,
			proselib.UsingModel(p.model),
			proselib.WithSegmentation(false))
		if err != nil {
			return nil, fmt.Errorf("prose analysis: %w", err)
		}
		appendSentence(doc, sdoc.Tokens())
		for _, ent := range sdoc.Entities() {
			doc.Entities = append(doc.Entities, nlp.Entity{Text: ent.Text, Label: ent.Label})
		}
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// appendSentence adds the tokens of one sentence to doc, headed by the
// sentence's root.
func appendSentence(doc *nlp.Document, tokens []proselib.Token) {
	if len(tokens) == 0 {
		return
	}

	offset := len(doc.Tokens)
	root := offset + sentenceRoot(tokens)

	for i, t := range tokens {
		tok := nlp.Token{
			Index:   offset + i,
			Text:    t.Text,
			Lemma:   english.Stem(t.Text, false),
			POS:     t.Tag,
			Head:    root,
			Shape:   nlp.Shape(t.Text),
			IsAlpha: nlp.IsAlpha(t.Text),
			IsStop:  english.IsStopWord(strings.ToLower(t.Text)),
		}
		switch {
		case tok.Index == root:
			tok.Dep = "ROOT"
		case isPunct(t.Text):
			tok.Dep = "punct"
		default:
			tok.Dep = "dep"
		}
		doc.Tokens = append(doc.Tokens, tok)
	}
}

// sentenceRoot picks the first verb, else the first non-punctuation token,
// else the first token.
func sentenceRoot(tokens []proselib.Token) int {
	for i, t := range tokens {
		if strings.HasPrefix(t.Tag, "VB") {
			return i
		}
	}
	for i, t := range tokens {
		if !isPunct(t.Text) {
			return i
		}
	}
	return 0
}

func isPunct(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return text != ""
}
