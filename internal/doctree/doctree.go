// Package doctree is the structured form parsers produce before a document is
// flattened into the plain text the question answering core reads.
package doctree

import "strings"

// DocTree is the root of a parsed document.
type DocTree struct {
	Title    string     // Document title (from metadata or filename)
	Children []*DocNode // Top-level sections
}

// DocNode is a recursive section in the document tree.
type DocNode struct {
	Title    string     // Section heading (empty for leaf text)
	Text     string     // Text content of this node (may be empty for container nodes)
	Page     int        // Source page (0 if N/A)
	Children []*DocNode // Subsections
}

// Render flattens the tree depth-first into blank-line separated blocks.
// Every heading is emitted as a block of its own ending in a colon, so it
// reads as a section start when the text is segmented again whatever its
// length or punctuation.
func (t *DocTree) Render() string {
	var blocks []string
	var walk func(n *DocNode)
	walk = func(n *DocNode) {
		if h := oneLine(n.Title); h != "" {
			blocks = append(blocks, headingLine(h))
		}
		if body := strings.TrimSpace(n.Text); body != "" {
			blocks = append(blocks, body)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, c := range t.Children {
		walk(c)
	}
	return strings.Join(blocks, "\n\n")
}

// Headings returns every heading in document order.
func (t *DocTree) Headings() []string {
	var out []string
	var walk func(n *DocNode)
	walk = func(n *DocNode) {
		if h := oneLine(n.Title); h != "" {
			out = append(out, h)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, c := range t.Children {
		walk(c)
	}
	return out
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func headingLine(h string) string {
	if strings.HasSuffix(h, ":") {
		return h
	}
	return h + ":"
}

// Builder assembles a tree from a flat stream of headings and paragraphs,
// nesting each heading under the closest preceding heading of a lower level.
type Builder struct {
	title string
	root  *DocNode
	stack []stackEntry
	text  strings.Builder
}

type stackEntry struct {
	node  *DocNode
	level int
}

func NewBuilder(title string) *Builder {
	root := &DocNode{Title: title}
	return &Builder{
		title: title,
		root:  root,
		stack: []stackEntry{{node: root, level: 0}},
	}
}

// Heading opens a section at level (1 is the outermost).
func (b *Builder) Heading(level int, title string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return
	}
	if level < 1 {
		level = 1
	}
	b.flush()
	node := &DocNode{Title: title}
	for len(b.stack) > 1 && b.stack[len(b.stack)-1].level >= level {
		b.stack = b.stack[:len(b.stack)-1]
	}
	parent := b.stack[len(b.stack)-1].node
	parent.Children = append(parent.Children, node)
	b.stack = append(b.stack, stackEntry{node: node, level: level})
}

// Paragraph appends text to the current section.
func (b *Builder) Paragraph(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if b.text.Len() > 0 {
		b.text.WriteString("\n\n")
	}
	b.text.WriteString(text)
}

func (b *Builder) flush() {
	t := b.text.String()
	b.text.Reset()
	if t == "" {
		return
	}
	top := b.stack[len(b.stack)-1].node
	if top == b.root {
		// Text before the first heading becomes its own untitled section.
		b.root.Children = append(b.root.Children, &DocNode{Text: t})
		return
	}
	if top.Text != "" {
		top.Text += "\n\n" + t
	} else {
		top.Text = t
	}
}

// Tree finishes the build. The builder must not be used afterwards.
func (b *Builder) Tree() *DocTree {
	b.flush()
	return &DocTree{Title: b.title, Children: b.root.Children}
}
