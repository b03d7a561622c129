package pipeline

// Block is one structurally distinct unit of the document. Blocks are
// produced in document order by Assemble and never modified afterwards.
type Block interface {
	block()
}

// Heading is a level 1-6 heading with formatted content.
type Heading struct {
	Level   int
	Content string
}

// Paragraph is a run of text that matched no other block rule.
type Paragraph struct {
	Content string
}

// ListItem is a single bullet or numbered entry.
type ListItem struct {
	Ordered bool
	Content string
}

// List groups consecutive items of the same kind. Assemble only emits a
// List once it is closed, so the block stream never holds an open list.
type List struct {
	Ordered bool
	Items   []ListItem
}

// CodeBlock holds fenced content verbatim. Content is never inline-formatted.
// Language is the fence info string, if any.
type CodeBlock struct {
	Language string
	Content  string
}

// Table holds formatted header cells and data rows. Rows are not padded or
// truncated to the header width.
type Table struct {
	Headers []string
	Rows    [][]string
}

// BlockQuote is a single quoted line.
type BlockQuote struct {
	Content string
}

// Rule is a horizontal rule.
type Rule struct{}

func (Heading) block()    {}
func (Paragraph) block()  {}
func (List) block()       {}
func (CodeBlock) block()  {}
func (Table) block()      {}
func (BlockQuote) block() {}
func (Rule) block()       {}
