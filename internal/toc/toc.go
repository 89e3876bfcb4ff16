// Package toc turns the flat heading list of a rendered article into the
// nested outline shown next to the post body.
package toc

// Defaults used by Build and FilterByDepth for a non-positive depth, and by
// the site config for toc.min_headings.
const (
	DefaultMinDepth    = 2
	DefaultMaxDepth    = 4
	DefaultMinHeadings = 3
)

// Heading is one heading of a document, in document order.
type Heading struct {
	Depth int    `json:"depth"`
	Text  string `json:"text"`
	Slug  string `json:"slug"`
}

// Node is a heading placed in the outline.
type Node struct {
	Depth       int     `json:"depth"`
	Text        string  `json:"text"`
	Slug        string  `json:"slug"`
	Subheadings []*Node `json:"subheadings"`
}

// Build nests headings by depth. Headings shallower than minDepth are left
// out and every heading at exactly minDepth starts a new root. A deeper
// heading is attached to the last heading seen one level up; when that level
// is missing the nearest shallower recorded level is used instead, and a
// heading with no recorded ancestor at all is dropped.
//
// A non-positive minDepth means DefaultMinDepth. The result is never nil.
func Build(headings []Heading, minDepth int) []*Node {
	if minDepth <= 0 {
		minDepth = DefaultMinDepth
	}
	roots := make([]*Node, 0)

	// depth -> 最近一次出现的该层级节点，每遇到新的根节点就清空
	parents := make(map[int]*Node)

	for _, h := range headings {
		if h.Depth < minDepth {
			continue
		}
		n := &Node{
			Depth:       h.Depth,
			Text:        h.Text,
			Slug:        h.Slug,
			Subheadings: make([]*Node, 0),
		}

		if h.Depth == minDepth {
			roots = append(roots, n)
			clear(parents)
			parents[h.Depth] = n
			continue
		}

		parent := parents[h.Depth-1]
		for d := h.Depth - 2; parent == nil && d >= minDepth; d-- {
			parent = parents[d]
		}
		if parent == nil {
			// 没有任何祖先：直接丢弃，不提升为根节点
			continue
		}
		parent.Subheadings = append(parent.Subheadings, n)
		parents[h.Depth] = n
	}
	return roots
}

// FilterByDepth keeps the headings no deeper than maxDepth, in order.
// A non-positive maxDepth means DefaultMaxDepth.
func FilterByDepth(headings []Heading, maxDepth int) []Heading {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	out := make([]Heading, 0, len(headings))
	for _, h := range headings {
		if h.Depth <= maxDepth {
			out = append(out, h)
		}
	}
	return out
}

// CountByLevel reports how many headings sit at each depth.
func CountByLevel(headings []Heading) map[int]int {
	counts := make(map[int]int)
	for _, h := range headings {
		counts[h.Depth]++
	}
	return counts
}

// ShouldShow reports whether there are enough headings for an outline to be
// worth rendering: at least one, and at least minHeadings of them.
func ShouldShow(headings []Heading, minHeadings int) bool {
	return len(headings) > 0 && len(headings) >= minHeadings
}

// Count returns the number of nodes in the outline, nested ones included.
func Count(nodes []*Node) int {
	total := 0
	Walk(nodes, func(*Node) { total++ })
	return total
}

// Walk visits nodes in document order, parents before their children.
func Walk(nodes []*Node, fn func(n *Node)) {
	for _, n := range nodes {
		fn(n)
		Walk(n.Subheadings, fn)
	}
}
