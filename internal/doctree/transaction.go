package doctree

import (
	"fmt"
	"unicode/utf8"
)

// Transaction collects document changes that are committed together. Each
// step applies immediately to the working document, so positions passed to
// a later step refer to the document as changed by the earlier ones. The
// first failing step makes the transaction unusable; Err reports it.
type Transaction struct {
	before *Node
	doc    *Node
	steps  int
	err    error
}

// NewTransaction starts a transaction against doc.
func NewTransaction(doc *Node) *Transaction {
	return &Transaction{before: doc, doc: doc}
}

// Insert places nodes at pos.
func (tr *Transaction) Insert(pos int, nodes ...*Node) *Transaction {
	if tr.err != nil || len(nodes) == 0 {
		return tr
	}
	doc, err := replace(tr.doc, pos, pos, nodes)
	if err != nil {
		tr.err = &StepError{Op: "insert", Pos: pos, Err: err}
		return tr
	}
	tr.doc = doc
	tr.steps++
	return tr
}

// Delete removes the range [from, to).
func (tr *Transaction) Delete(from, to int) *Transaction {
	if tr.err != nil || from == to {
		return tr
	}
	doc, err := replace(tr.doc, from, to, nil)
	if err != nil {
		tr.err = &StepError{Op: "delete", Pos: from, Err: err}
		return tr
	}
	tr.doc = doc
	tr.steps++
	return tr
}

// Before is the document the transaction started from.
func (tr *Transaction) Before() *Node { return tr.before }

// Doc is the working document with all successful steps applied.
func (tr *Transaction) Doc() *Node { return tr.doc }

func (tr *Transaction) Err() error { return tr.err }

func (tr *Transaction) Steps() int { return tr.steps }

// DocChanged reports whether any step was applied.
func (tr *Transaction) DocChanged() bool { return tr.steps > 0 }

func replace(root *Node, from, to int, nodes []*Node) (*Node, error) {
	size := root.ContentSize()
	if from < 0 || to < from || to > size {
		return nil, fmt.Errorf("%w: [%d, %d) of %d", ErrPositionOutOfRange, from, to, size)
	}
	content, err := replaceContent(root, from, to, nodes)
	if err != nil {
		return nil, err
	}
	return root.withContent(content), nil
}

// replaceContent swaps [from, to) of parent's content for nodes. Positions
// are relative to the start of parent's content.
func replaceContent(parent *Node, from, to int, nodes []*Node) ([]*Node, error) {
	if parent.IsTextblock() {
		return replaceInline(parent, from, to, nodes)
	}

	fi := boundaryIndex(parent.Content, from)
	ti := boundaryIndex(parent.Content, to)
	if fi >= 0 && ti >= 0 {
		for _, n := range nodes {
			if !parent.Type.Allows(n.Type) {
				return nil, fmt.Errorf("%w: %s in %s", ErrContentNotAllowed, n.Type.Name, parent.Type.Name)
			}
		}
		out := make([]*Node, 0, len(parent.Content)-(ti-fi)+len(nodes))
		out = append(out, parent.Content[:fi]...)
		out = append(out, nodes...)
		out = append(out, parent.Content[ti:]...)
		return out, nil
	}

	off := 0
	for i, c := range parent.Content {
		end := off + c.NodeSize()
		if from > off && to < end {
			if c.IsLeaf() {
				return nil, ErrInvalidRange
			}
			inner, err := replaceContent(c, from-off-1, to-off-1, nodes)
			if err != nil {
				return nil, err
			}
			out := make([]*Node, len(parent.Content))
			copy(out, parent.Content)
			out[i] = c.withContent(inner)
			return out, nil
		}
		off = end
	}
	return nil, ErrInvalidRange
}

// boundaryIndex returns the child index whose start is at pos, len(content)
// for the end of the content, or -1 when pos is not a boundary.
func boundaryIndex(content []*Node, pos int) int {
	off := 0
	for i, c := range content {
		if off == pos {
			return i
		}
		if off > pos {
			return -1
		}
		off += c.NodeSize()
	}
	if off == pos {
		return len(content)
	}
	return -1
}

func replaceInline(parent *Node, from, to int, nodes []*Node) ([]*Node, error) {
	for _, n := range nodes {
		if !parent.Type.Allows(n.Type) {
			return nil, fmt.Errorf("%w: %s in %s", ErrContentNotAllowed, n.Type.Name, parent.Type.Name)
		}
	}
	size := parent.ContentSize()
	out := sliceInline(parent.Content, 0, from)
	out = append(out, nodes...)
	out = append(out, sliceInline(parent.Content, to, size)...)
	return normalizeText(out), nil
}

// sliceInline cuts inline content to [from, to), splitting text nodes.
func sliceInline(content []*Node, from, to int) []*Node {
	var out []*Node
	off := 0
	for _, c := range content {
		size := c.NodeSize()
		end := off + size
		if end <= from || off >= to {
			off = end
			continue
		}
		if c.IsText() {
			lo := max(from-off, 0)
			hi := min(to-off, size)
			out = append(out, &Node{Type: c.Type, Attrs: c.Attrs, Text: runeSlice(c.Text, lo, hi)})
		} else {
			out = append(out, c)
		}
		off = end
	}
	return out
}

// normalizeText joins adjacent text nodes and drops empty ones.
func normalizeText(content []*Node) []*Node {
	out := content[:0:0]
	for _, c := range content {
		if c.IsText() {
			if c.Text == "" {
				continue
			}
			if n := len(out); n > 0 && out[n-1].IsText() && out[n-1].Type == c.Type {
				prev := out[n-1]
				out[n-1] = &Node{Type: prev.Type, Attrs: prev.Attrs, Text: prev.Text + c.Text}
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

func runeSlice(s string, lo, hi int) string {
	if lo == 0 && hi >= utf8.RuneCountInString(s) {
		return s
	}
	r := []rune(s)
	return string(r[lo:hi])
}
