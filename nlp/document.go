package nlp

import (
	"errors"
	"fmt"
)

var (
	ErrIndexMismatch  = errors.New("token index does not match its position")
	ErrHeadOutOfRange = errors.New("head index out of range")
	ErrCycle          = errors.New("head chain does not reach a root")
	ErrEntitySpan     = errors.New("entity span out of range")
)

// Token is one lexical unit of an analyzed text.
type Token struct {
	Index   int
	Text    string
	Lemma   string
	POS     string
	Dep     string
	Head    int // index of the head token; a root points at itself
	Shape   string
	IsAlpha bool
	IsStop  bool
}

// IsRoot reports whether the token is its own head.
func (t Token) IsRoot() bool {
	return t.Head == t.Index
}

// Entity is a labeled span of text. Start and End are token offsets
// (End exclusive) and are both zero when the engine does not report them.
type Entity struct {
	Text  string
	Label string
	Start int
	End   int
}

// Document is the result of running a pipeline over one text.
type Document struct {
	Tokens   []Token
	Entities []Entity
}

// HeadOf returns the head token of the token at index i.
func (d *Document) HeadOf(i int) Token {
	return d.Tokens[d.Tokens[i].Head]
}

// Roots returns the indexes of the tokens that head themselves.
func (d *Document) Roots() []int {
	var roots []int
	for i, tok := range d.Tokens {
		if tok.IsRoot() {
			roots = append(roots, i)
		}
	}
	return roots
}

// Children groups tokens by head. children[i] holds the indexes of the tokens
// headed by token i, in sequence order. Roots are not listed as their own child.
func (d *Document) Children() [][]int {
	children := make([][]int, len(d.Tokens))
	for i, tok := range d.Tokens {
		if tok.IsRoot() || tok.Head < 0 || tok.Head >= len(d.Tokens) {
			continue
		}
		children[tok.Head] = append(children[tok.Head], i)
	}
	return children
}

// Walk visits every root tree depth-first in pre-order, calling fn with the
// token index and its depth (0 for roots).
func (d *Document) Walk(fn func(index, depth int)) {
	children := d.Children()

	type frame struct {
		index int
		depth int
	}

	for _, root := range d.Roots() {
		stack := []frame{{index: root}}
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			fn(top.index, top.depth)

			// Push in reverse so the first child is visited first.
			kids := children[top.index]
			for k := len(kids) - 1; k >= 0; k-- {
				stack = append(stack, frame{index: kids[k], depth: top.depth + 1})
			}
		}
	}
}

// Validate checks that every token sits at its own index, that the head
// relation forms a forest over the tokens, and that reported entity spans
// lie within the document.
func (d *Document) Validate() error {
	n := len(d.Tokens)
	for i, tok := range d.Tokens {
		if tok.Index != i {
			return fmt.Errorf("token %d (%q) has index %d: %w", i, tok.Text, tok.Index, ErrIndexMismatch)
		}
		if tok.Head < 0 || tok.Head >= n {
			return fmt.Errorf("token %d (%q) has head %d: %w", i, tok.Text, tok.Head, ErrHeadOutOfRange)
		}
	}

	// 0 = unvisited, 1 = on the current path, 2 = reaches a root
	state := make([]uint8, n)
	for i := range d.Tokens {
		var path []int
		j := i
		for state[j] == 0 {
			state[j] = 1
			path = append(path, j)
			if d.Tokens[j].Head == j {
				break
			}
			j = d.Tokens[j].Head
		}
		if state[j] == 1 && d.Tokens[j].Head != j {
			return fmt.Errorf("token %d (%q): %w", i, d.Tokens[i].Text, ErrCycle)
		}
		for _, p := range path {
			state[p] = 2
		}
	}

	for _, ent := range d.Entities {
		if ent.Start == 0 && ent.End == 0 {
			continue
		}
		if ent.Start < 0 || ent.Start >= ent.End || ent.End > n {
			return fmt.Errorf("entity %q spans [%d, %d) of %d tokens: %w", ent.Text, ent.Start, ent.End, n, ErrEntitySpan)
		}
	}
	return nil
}
