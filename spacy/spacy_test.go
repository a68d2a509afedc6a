package spacy

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RAMarenco/nlp-analyzer/nlp"
)

// helperEnv makes the test binary act as the Python bridge when re-executed.
const helperEnv = "NLP_ANALYZER_FAKE_BRIDGE"

func TestMain(m *testing.M) {
	if os.Getenv(helperEnv) == "1" {
		os.Exit(fakeBridge(os.Args[1:]))
	}
	os.Exit(m.Run())
}

// fakeBridge speaks the bridge protocol. args are "-c", script, command...
func fakeBridge(args []string) int {
	if len(args) < 3 || args[0] != "-c" {
		fmt.Fprintln(os.Stderr, "usage: -c script command")
		return 2
	}
	cmd := args[2:]
	out := json.NewEncoder(os.Stdout)

	switch {
	case cmd[0] == "list":
		out.Encode([]string{"es_core_news_sm", "en_core_web_sm"})
		return 0
	case cmd[0] == "serve" && cmd[1] == "broken":
		fmt.Fprintln(os.Stderr, "Traceback (most recent call last):")
		fmt.Fprintln(os.Stderr, "OSError: [E050] Can't find model 'broken'.")
		return 1
	case cmd[0] == "serve":
	default:
		return 2
	}

	out.Encode(map[string]bool{"ready": true})
	in := bufio.NewScanner(os.Stdin)
	for in.Scan() {
		var req request
		if err := json.Unmarshal(in.Bytes(), &req); err != nil {
			out.Encode(map[string]string{"error": err.Error()})
			continue
		}
		switch req.Text {
		case "boom":
			out.Encode(map[string]string{"error": "ValueError: boom"})
			continue
		case "crash":
			fmt.Fprintln(os.Stderr, "MemoryError")
			return 3
		case "noise":
			fmt.Fprintln(os.Stdout, "Loading plugin... done")
		case "shifted":
			out.Encode(response{Tokens: []wireToken{{I: 1, Text: "a", Head: 1}}})
			continue
		case "cycle":
			out.Encode(response{Tokens: []wireToken{
				{I: 0, Text: "a", Head: 1},
				{I: 1, Text: "b", Head: 0},
			}})
			continue
		}

		var resp response
		for i, word := range strings.Fields(req.Text) {
			resp.Tokens = append(resp.Tokens, wireToken{
				I: i, Text: word, Lemma: strings.ToLower(word), POS: "X",
				Dep: "dep", Head: 0, Shape: nlp.Shape(word), IsAlpha: nlp.IsAlpha(word),
			})
			if word == "Madrid" {
				resp.Ents = append(resp.Ents, wireEntity{Text: word, Label: "LOC", Start: i, End: i + 1})
			}
		}
		if len(resp.Tokens) > 0 {
			resp.Tokens[0].Dep = "ROOT"
		}
		out.Encode(resp)
	}
	return 0
}

func newFakeEngine(t *testing.T) *Engine {
	t.Helper()
	t.Setenv(helperEnv, "1")
	exe, err := os.Executable()
	require.NoError(t, err)
	return NewEngine(exe, nil)
}

func TestInstalled(t *testing.T) {
	e := newFakeEngine(t)

	models, err := e.Installed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"en_core_web_sm", "es_core_news_sm"}, models)
}

func TestInstalledMissingInterpreter(t *testing.T) {
	e := NewEngine("/nonexistent/python3", nil)

	_, err := e.Installed(context.Background())
	assert.ErrorContains(t, err, "failed to list spaCy models")
}

func TestAnalyze(t *testing.T) {
	e := newFakeEngine(t)
	ctx := context.Background()

	p, err := e.Load(ctx, "es_core_news_sm")
	require.NoError(t, err)
	defer p.Close()

	doc, err := p.Analyze(ctx, "Hola")
	require.NoError(t, err)
	require.Len(t, doc.Tokens, 1)
	assert.Equal(t, nlp.Token{
		Index: 0, Text: "Hola", Lemma: "hola", POS: "X", Dep: "ROOT",
		Head: 0, Shape: "Xxxx", IsAlpha: true,
	}, doc.Tokens[0])
	assert.Empty(t, doc.Entities)

	// The same process serves every request.
	doc, err = p.Analyze(ctx, "Vivo en Madrid")
	require.NoError(t, err)
	assert.Len(t, doc.Tokens, 3)
	assert.Equal(t, []nlp.Entity{{Text: "Madrid", Label: "LOC", Start: 2, End: 3}}, doc.Entities)
	assert.Equal(t, []int{0}, doc.Roots())

	require.NoError(t, p.Close())
	_, err = p.Analyze(ctx, "again")
	assert.Error(t, err)
}

func TestAnalyzeReportsBridgeErrors(t *testing.T) {
	e := newFakeEngine(t)
	ctx := context.Background()

	p, err := e.Load(ctx, "es_core_news_sm")
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Analyze(ctx, "boom")
	assert.EqualError(t, err, "spaCy: ValueError: boom")

	_, err = p.Analyze(ctx, "cycle")
	assert.ErrorIs(t, err, nlp.ErrCycle)

	_, err = p.Analyze(ctx, "shifted")
	assert.ErrorIs(t, err, nlp.ErrIndexMismatch)

	// Still usable after per-request errors.
	doc, err := p.Analyze(ctx, "ok")
	require.NoError(t, err)
	assert.Len(t, doc.Tokens, 1)
}

func TestAnalyzeBridgeCrash(t *testing.T) {
	e := newFakeEngine(t)
	ctx := context.Background()

	p, err := e.Load(ctx, "es_core_news_sm")
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Analyze(ctx, "crash")
	assert.ErrorIs(t, err, errBridgeExited)
	assert.ErrorContains(t, err, "MemoryError")
}

func TestAnalyzeStopsOnGarbledOutput(t *testing.T) {
	e := newFakeEngine(t)
	ctx := context.Background()

	p, err := e.Load(ctx, "es_core_news_sm")
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Analyze(ctx, "noise")
	assert.ErrorContains(t, err, "failed to decode spaCy response")

	// The reply meant for "noise" must not answer the next request.
	_, err = p.Analyze(ctx, "Hola")
	assert.ErrorContains(t, err, "closed")
}

func TestLoadUnknownModel(t *testing.T) {
	e := newFakeEngine(t)

	_, err := e.Load(context.Background(), "broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `failed to load spaCy model "broken"`)
	assert.Contains(t, err.Error(), "Can't find model 'broken'")
}

func TestAnalyzeCancelledContext(t *testing.T) {
	e := newFakeEngine(t)

	p, err := e.Load(context.Background(), "es_core_news_sm")
	require.NoError(t, err)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Analyze(ctx, "Hola")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInstallHint(t *testing.T) {
	e := NewEngine("", nil)
	assert.Equal(t, "You can install it with: python3 -m spacy download xx_bad", e.InstallHint("xx_bad"))
	assert.Equal(t, "spaCy", e.Name())
}
