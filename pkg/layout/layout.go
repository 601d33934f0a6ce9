// Package layout maps a topic's branch forest to 2-D canvas
// coordinates using a tidy-tree layout: subtree sizes are computed
// bottom-up, positions assigned top-down with each node centered on the
// span allocated to its subtree.
package layout

import (
	"synapse/pkg/models"
)

// Orientation selects which axis carries depth and which carries the
// sibling spread.
type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

// Node extents and gaps, matching the canvas card dimensions.
const (
	NodeWidth     = 192.0
	NodeHeight    = 88.0
	HorizontalGap = 120.0
	VerticalGap   = 80.0
)

// Edge is a parent->child link in the rendered graph.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Result holds computed node positions plus the edge list derived from
// branch parent references.
type Result struct {
	Positions map[string]models.Position `json:"positions"`
	Edges     []Edge                     `json:"edges"`
}

// Compute lays out the given branches. Branches whose ParentID does not
// reference a known branch are treated as roots. An empty branch list
// yields an empty position map.
func Compute(branches []*models.BranchNode, o Orientation) Result {
	res := Result{Positions: map[string]models.Position{}}
	if len(branches) == 0 {
		return res
	}

	known := make(map[string]bool, len(branches))
	for _, b := range branches {
		known[b.ID] = true
	}

	children := map[string][]string{}
	var roots []string
	for _, b := range branches {
		if b.ParentID != "" && known[b.ParentID] {
			children[b.ParentID] = append(children[b.ParentID], b.ID)
			res.Edges = append(res.Edges, Edge{From: b.ParentID, To: b.ID})
		} else {
			roots = append(roots, b.ID)
		}
	}

	// spreadGap separates siblings along the spread axis; nodeSpread is
	// the node extent along that same axis.
	spreadGap := VerticalGap
	nodeSpread := NodeHeight
	if o == Vertical {
		spreadGap = HorizontalGap
		nodeSpread = NodeWidth
	}

	sizes := map[string]float64{}
	var measure func(id string) float64
	measure = func(id string) float64 {
		kids := children[id]
		if len(kids) == 0 {
			sizes[id] = nodeSpread
			return nodeSpread
		}
		total := 0.0
		for _, k := range kids {
			total += measure(k)
		}
		total += float64(len(kids)-1) * spreadGap
		sizes[id] = total
		return total
	}

	var place func(id string, depth int, start float64)
	place = func(id string, depth int, start float64) {
		span := sizes[id]
		var x, y float64
		if o == Horizontal {
			x = float64(depth) * (NodeWidth + HorizontalGap)
			y = start + span/2 - NodeHeight/2
		} else {
			x = start + span/2 - NodeWidth/2
			y = float64(depth) * (NodeHeight + VerticalGap)
		}
		res.Positions[id] = models.Position{X: x, Y: y}

		childStart := start
		for _, k := range children[id] {
			place(k, depth+1, childStart)
			childStart += sizes[k] + spreadGap
		}
	}

	offset := 0.0
	rootGap := spreadGap * 2
	for _, r := range roots {
		size := measure(r)
		place(r, 0, offset)
		offset += size + rootGap
	}
	return res
}

// Apply writes computed positions back onto the branches, leaving any
// branch without a computed position untouched.
func Apply(branches []*models.BranchNode, res Result) {
	for _, b := range branches {
		if p, ok := res.Positions[b.ID]; ok {
			b.Position = p
		}
	}
}
