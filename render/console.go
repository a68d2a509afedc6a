// Package render prints analysis results to a terminal.
package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/RAMarenco/nlp-analyzer/nlp"
)

// NoEntities is printed instead of an entity list when a document has none.
const NoEntities = "No entities recognized."

var tokenHeaders = []string{"Token", "Lemma", "POS", "Dep", "Head", "Shape", "Alpha", "Stop"}

// Console writes styled output to one writer. Create it once per process and
// pass it to whatever needs to print.
type Console struct {
	w      io.Writer
	styles Styles
}

func NewConsole(w io.Writer) *Console {
	return &Console{
		w:      w,
		styles: NewStyles(lipgloss.NewRenderer(w)),
	}
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.w, s)
}

// FileHeader announces the file about to be analyzed. detail, when set, is
// shown on a second line inside the panel.
func (c *Console) FileHeader(path, detail string) {
	body := "📄 Analyzing file: " + c.styles.Path.Render(path)
	if detail != "" {
		body += "\n" + detail
	}
	c.println(c.styles.Panel.Render(body))
}

// TokenTable prints one row per token.
func (c *Console) TokenTable(doc *nlp.Document) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderRow(true).
		BorderStyle(c.styles.Border).
		Headers(tokenHeaders...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return c.styles.Header
			}
			return c.styles.column(col)
		})

	for i, tok := range doc.Tokens {
		t.Row(
			tok.Text,
			tok.Lemma,
			tok.POS,
			tok.Dep,
			doc.HeadOf(i).Text,
			tok.Shape,
			strconv.FormatBool(tok.IsAlpha),
			strconv.FormatBool(tok.IsStop),
		)
	}

	c.println(c.styles.Title.Render("Tokens and part-of-speech"))
	c.println(t.String())
}

// DependencyForest prints one tree per root token. Nothing is printed for a
// document without roots.
func (c *Console) DependencyForest(doc *nlp.Document) {
	trees := BuildForest(doc, c.nodeLabel)
	if len(trees) == 0 {
		return
	}

	c.println("\n" + c.styles.TreeHeading.Render("Syntax tree (dependencies):"))
	for _, t := range trees {
		t.EnumeratorStyle(c.styles.Enumerator)
		c.println(t.String())
	}
}

func (c *Console) nodeLabel(tok nlp.Token) string {
	return c.styles.TokenText.Render(tok.Text) + " (" + c.styles.DepLabel.Render(tok.Dep) + ")"
}

// PlainLabel is the unstyled node label: the token text followed by its
// dependency label in parentheses.
func PlainLabel(tok nlp.Token) string {
	return tok.Text + " (" + tok.Dep + ")"
}

// BuildForest returns one tree per root of doc, in sequence order. Every node
// holds label(token); its children are the tokens headed by it, in sequence
// order.
func BuildForest(doc *nlp.Document, label func(nlp.Token) string) []*tree.Tree {
	var forest []*tree.Tree
	// path[d] is the most recent node at depth d.
	var path []*tree.Tree

	doc.Walk(func(index, depth int) {
		node := tree.Root(label(doc.Tokens[index]))
		path = append(path[:depth], node)
		if depth == 0 {
			forest = append(forest, node)
			return
		}
		path[depth-1].Child(node)
	})
	return forest
}

// Entities prints each entity as "text → label", or NoEntities.
func (c *Console) Entities(doc *nlp.Document) {
	c.println("\n" + c.styles.Heading.Render("Recognized entities:"))
	if len(doc.Entities) == 0 {
		c.println(c.styles.Placeholder.Render(NoEntities))
		return
	}
	for _, ent := range doc.Entities {
		c.println(c.styles.EntityText.Render(ent.Text) + " → " + c.styles.EntityLabel.Render(ent.Label))
	}
}

// Done closes the report of one file.
func (c *Console) Done() {
	c.println("\n" + c.styles.Success.Render("✅ Analysis complete.") + "\n")
}

// Document prints the full report of one analyzed file.
func (c *Console) Document(doc *nlp.Document) {
	c.TokenTable(doc)
	c.DependencyForest(doc)
	c.Entities(doc)
	c.Done()
}

// ModelList prints a one-column table of model identifiers.
func (c *Console) ModelList(engine string, models []string) {
	c.println("\n" + c.styles.ModelHeading.Render(fmt.Sprintf("Installed %s models:", engine)))

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderRow(true).
		BorderStyle(c.styles.Border).
		Headers("Model name").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return c.styles.Header
			}
			return c.styles.column(0)
		})
	for _, m := range models {
		t.Row(m)
	}
	c.println(t.String())
}

func (c *Console) Info(msg string)    { c.println(c.styles.Info.Render(msg)) }
func (c *Console) Error(msg string)   { c.println(c.styles.Error.Render(msg)) }
func (c *Console) Warn(msg string)    { c.println(c.styles.Warn.Render(msg)) }
func (c *Console) Hint(msg string)    { c.println(c.styles.Hint.Render(msg)) }
func (c *Console) Success(msg string) { c.println(c.styles.Success.Render(msg)) }

// Summary reports the totals of a batch run.
func (c *Console) Summary(analyzed, failed int) {
	msg := fmt.Sprintf("%d file(s) analyzed", analyzed)
	if failed > 0 {
		c.Warn(fmt.Sprintf("%s, %d skipped after errors.", msg, failed))
		return
	}
	c.Info(msg + ".")
}
