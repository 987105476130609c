package layout

import (
	"unicode"

	"github.com/dgallion1/docpager/internal/doctree"
	"github.com/dgallion1/docpager/internal/schema"
)

// objectRune stands in for inline leaves other than hard breaks so that rune
// offsets line up with document positions.
const objectRune = '￼'

// inlineRunes flattens a textblock's content, one rune per position.
func inlineRunes(n *doctree.Node) []rune {
	var out []rune
	for _, c := range n.Content {
		switch {
		case c.IsText():
			out = append(out, []rune(c.Text)...)
		case c.Type.Name == schema.HardBreak:
			out = append(out, '\n')
		default:
			for range c.NodeSize() {
				out = append(out, objectRune)
			}
		}
	}
	return out
}

// wrap breaks text into lines no wider than width using greedy word
// wrapping. Newlines force a break and belong to the line they end. Words
// wider than a line are split between characters.
func (e *Engine) wrap(text []rune, kind faceKind, size, width float64) []Line {
	if len(text) == 0 {
		return []Line{{}}
	}
	measure := func(from, to int) float64 {
		return e.faces.measure(kind, size, string(text[from:to]))
	}

	var lines []Line
	start := 0
	lineWidth := 0.0
	i := 0
	for i < len(text) {
		if text[i] == '\n' {
			lines = append(lines, Line{From: start, To: i + 1})
			i++
			start, lineWidth = i, 0
			continue
		}

		// A token is a run of non-space runes plus trailing spaces.
		j := i
		for j < len(text) && text[j] != '\n' && !unicode.IsSpace(text[j]) {
			j++
		}
		wordEnd := j
		for j < len(text) && text[j] != '\n' && unicode.IsSpace(text[j]) {
			j++
		}
		w := measure(i, wordEnd)

		if lineWidth > 0 && lineWidth+w > width {
			lines = append(lines, Line{From: start, To: i})
			start, lineWidth = i, 0
		}
		if w > width {
			// Split the oversized word by characters.
			k := i
			for k < wordEnd {
				cw := measure(k, k+1)
				if lineWidth > 0 && lineWidth+cw > width {
					lines = append(lines, Line{From: start, To: k})
					start, lineWidth = k, 0
				}
				lineWidth += cw
				k++
			}
			lineWidth += measure(wordEnd, j)
		} else {
			lineWidth += measure(i, j)
		}
		i = j
	}
	if start < len(text) || len(lines) == 0 || text[len(text)-1] == '\n' {
		lines = append(lines, Line{From: start, To: len(text)})
	}
	return lines
}
