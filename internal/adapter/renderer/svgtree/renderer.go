// Package svgtree renders dependency graphs as standalone SVG documents,
// words on a baseline with labeled arcs drawn above them.
package svgtree

import (
	"fmt"
	"html"
	"strings"

	"github.com/verba-app/verba-backend/internal/domain"
)

const (
	wordSpacing  = 120
	marginX      = 50
	minBaselineY = 240
	arcStep      = 36
	arrowSize    = 5
)

// Renderer produces SVG dependency trees.
type Renderer struct{}

// New creates a Renderer.
func New() *Renderer {
	return &Renderer{}
}

// arc is one head-to-dependent edge prepared for drawing. Start and End are
// the leftmost and rightmost token positions; Dir is the side the arrowhead
// lands on.
type arc struct {
	Start int
	End   int
	Label string
	// true when the dependent precedes its head
	Left bool
	// nesting level, 1 for adjacent tokens
	Level int
}

// Render draws the sentence's dependency graph. The root token gets no arc.
func (r *Renderer) Render(tokens []domain.DependencyToken) (string, error) {
	if len(tokens) == 0 {
		return "", fmt.Errorf("render tree: empty sentence")
	}

	arcs := buildArcs(tokens)

	maxLevel := 1
	for _, a := range arcs {
		if a.Level > maxLevel {
			maxLevel = a.Level
		}
	}

	// Deeply nested sentences push the baseline down so the tallest arc
	// and its label stay inside the viewBox.
	baseline := minBaselineY
	if min := 40 + maxLevel*arcStep; min > baseline {
		baseline = min
	}

	width := 2*marginX + (len(tokens)-1)*wordSpacing
	height := baseline + 40

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		width, height, width, height)
	b.WriteString(`<style>text{font-family:sans-serif}.word{font-size:14px}.tag{font-size:10px;fill:#888}.label{font-size:10px;fill:#555}.arc{fill:none;stroke:#555;stroke-width:1}</style>`)

	for i, tok := range tokens {
		x := tokenX(i + 1)
		fmt.Fprintf(&b, `<text class="word" x="%d" y="%d" text-anchor="middle">%s</text>`,
			x, baseline, html.EscapeString(tok.Text))
		fmt.Fprintf(&b, `<text class="tag" x="%d" y="%d" text-anchor="middle">%s</text>`,
			x, baseline+18, html.EscapeString(tok.UPOS))
	}

	for _, a := range arcs {
		drawArc(&b, a, baseline)
	}

	b.WriteString(`</svg>`)

	return b.String(), nil
}

// buildArcs converts head references into drawable arcs and assigns each a
// nesting level so shorter arcs sit under longer ones.
func buildArcs(tokens []domain.DependencyToken) []arc {
	var arcs []arc
	for _, tok := range tokens {
		if tok.Head == 0 || tok.Head == tok.Position {
			continue
		}

		a := arc{Label: tok.Deprel, Left: tok.Position < tok.Head}
		if a.Left {
			a.Start, a.End = tok.Position, tok.Head
		} else {
			a.Start, a.End = tok.Head, tok.Position
		}
		arcs = append(arcs, a)
	}

	for i := range arcs {
		level := 1
		for j := range arcs {
			if i == j {
				continue
			}
			// nested or shorter arcs within our span push us up
			inner := arcs[j].Start >= arcs[i].Start && arcs[j].End <= arcs[i].End
			if inner && span(arcs[j]) < span(arcs[i]) {
				level++
			}
		}
		arcs[i].Level = level
	}

	return arcs
}

func span(a arc) int { return a.End - a.Start }

func tokenX(position int) int {
	return marginX + (position-1)*wordSpacing
}

func drawArc(b *strings.Builder, a arc, baseline int) {
	x1 := tokenX(a.Start)
	x2 := tokenX(a.End)
	top := baseline - 20 - a.Level*arcStep
	y := baseline - 20

	fmt.Fprintf(b, `<path class="arc" d="M%d,%d C%d,%d %d,%d %d,%d"/>`,
		x1, y, x1, top, x2, top, x2, y)

	// arrowhead at the dependent end
	ax := x2
	if a.Left {
		ax = x1
	}
	fmt.Fprintf(b, `<polygon points="%d,%d %d,%d %d,%d" fill="#555"/>`,
		ax, y, ax-arrowSize, y-2*arrowSize, ax+arrowSize, y-2*arrowSize)

	mid := (x1 + x2) / 2
	fmt.Fprintf(b, `<text class="label" x="%d" y="%d" text-anchor="middle">%s</text>`,
		mid, top+10, html.EscapeString(a.Label))
}
