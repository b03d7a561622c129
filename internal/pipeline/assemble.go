package pipeline

import (
	"regexp"
	"strings"
	"unicode"
)

// codeFence opens and closes a code block. Anything after the backticks on
// the opening line is taken as the language.
const codeFence = "```"

// Precompiled line classifiers, tried in this order.
var (
	headingPattern = regexp.MustCompile(`^(#{1,6})\s+`)
	rulePattern    = regexp.MustCompile(`^[-*_]{3,}$`)
	bulletPattern  = regexp.MustCompile(`^\s*[•\-*]\s+`)
	orderedPattern = regexp.MustCompile(`^\s*\d+\.\s+`)
)

// openList tracks the single list group that may be open. Lists do not
// nest: switching kinds or leaving list lines closes the group.
type openList int

const (
	noOpenList openList = iota
	openUnordered
	openOrdered
)

// assembler is the per-call state of Assemble. It is never shared.
type assembler struct {
	blocks []Block

	list  openList
	items []ListItem

	inCode   bool
	codeLang string
	code     []string
}

// Assemble classifies lines top to bottom and returns the resulting blocks
// in document order. Every line ends up in exactly one outcome; there is no
// failure mode. A code fence left open at the end of input is closed there.
func Assemble(lines []string) []Block {
	a := &assembler{}
	for i := 0; i < len(lines); {
		i += a.step(lines, i)
	}
	a.finish()
	return a.blocks
}

// step handles the line at i and returns how many lines it consumed.
func (a *assembler) step(lines []string, i int) int {
	line := lines[i]

	if strings.HasPrefix(line, codeFence) {
		a.toggleFence(line)
		return 1
	}

	if a.inCode {
		a.code = append(a.code, line)
		return 1
	}

	if strings.Contains(line, "|") && strings.HasPrefix(strings.TrimSpace(line), "|") {
		a.closeList()
		if table, n, ok := ParseTable(lines, i); ok {
			a.emit(table)
			return n
		}
	}

	switch {
	case headingPattern.MatchString(line):
		a.closeList()
		m := headingPattern.FindStringSubmatch(line)
		a.emit(Heading{
			Level:   len(m[1]),
			Content: FormatInline(strings.TrimSpace(line[len(m[0]):])),
		})

	case rulePattern.MatchString(line):
		a.closeList()
		a.emit(Rule{})

	case bulletPattern.MatchString(line):
		a.addItem(openUnordered, strip(bulletPattern, line))

	case orderedPattern.MatchString(line):
		a.addItem(openOrdered, strip(orderedPattern, line))

	case strings.HasPrefix(line, ">"):
		a.closeList()
		content := strings.TrimPrefix(line[1:], " ")
		a.emit(BlockQuote{Content: FormatInline(content)})

	case strings.TrimSpace(line) != "":
		a.closeList()
		a.emit(Paragraph{Content: FormatInline(line)})

	default:
		a.closeList()
	}

	return 1
}

// toggleFence enters or leaves code block mode.
func (a *assembler) toggleFence(line string) {
	if a.inCode {
		a.flushCode()
		return
	}
	a.closeList()
	a.inCode = true
	a.codeLang = strings.TrimSpace(strings.TrimLeft(line, "`"))
}

// flushCode emits the accumulated code block, trailing whitespace trimmed.
func (a *assembler) flushCode() {
	content := strings.TrimRightFunc(strings.Join(a.code, "\n"), unicode.IsSpace)
	a.emit(CodeBlock{Language: a.codeLang, Content: content})
	a.inCode = false
	a.codeLang = ""
	a.code = nil
}

// addItem appends to the open list, closing a list of the other kind first.
func (a *assembler) addItem(kind openList, content string) {
	if a.list != kind {
		a.closeList()
		a.list = kind
	}
	a.items = append(a.items, ListItem{
		Ordered: kind == openOrdered,
		Content: FormatInline(content),
	})
}

// closeList emits the open list group, if any.
func (a *assembler) closeList() {
	if a.list == noOpenList {
		return
	}
	a.emit(List{Ordered: a.list == openOrdered, Items: a.items})
	a.list = noOpenList
	a.items = nil
}

// finish closes whatever is still open at end of input.
func (a *assembler) finish() {
	if a.inCode {
		a.flushCode()
	}
	a.closeList()
}

func (a *assembler) emit(b Block) {
	a.blocks = append(a.blocks, b)
}

// strip removes the leading match of pattern from line.
func strip(pattern *regexp.Regexp, line string) string {
	loc := pattern.FindStringIndex(line)
	if loc == nil {
		return line
	}
	return line[loc[1]:]
}
