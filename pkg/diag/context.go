package diag

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Context stores information derived from a range in some text. It is used for
// errors that point to a part of the source code, like parse errors, unbound
// variables and frames of a reduction stack trace.
type Context struct {
	Name   string
	Source string
	Ranging

	savedShowInfo *rangeShowInfo
}

// NewContext creates a new Context.
func NewContext(name, source string, r Ranger) *Context {
	return &Context{name, source, r.Range(), nil}
}

// Information about the source range that are needed for showing.
type rangeShowInfo struct {
	// Head is the piece of text immediately before Culprit, extending to, but
	// not including the closest line boundary. If Culprit already starts after
	// a line boundary, Head is an empty string.
	Head string
	// Culprit is Source[From:To], with any trailing newlines stripped.
	Culprit string
	// Tail is the piece of text immediately after Culprit, extending to, but
	// not including the closet line boundary. If Culprit already ends before a
	// line boundary, Tail is an empty string.
	Tail string
	// StartLine is the (1-based) line number that the first character of
	// Culprit is on.
	StartLine int
	// StartCol is the (1-based) column of the first character of Culprit.
	StartCol int
	// EndLine is the (1-based) line number that the last character of Culprit
	// is on.
	EndLine int
}

// Variables controlling the style of the culprit. Overridden in tests.
var (
	culpritStart       = "\033[1;4m"
	culpritEnd         = "\033[m"
	culpritPlaceHolder = "^"
)

func (c *Context) showInfo() *rangeShowInfo {
	if c.savedShowInfo != nil {
		return c.savedShowInfo
	}

	before := c.Source[:c.From]
	culprit := c.Source[c.From:c.To]
	after := c.Source[c.To:]

	head := lastLine(before)
	startLine := strings.Count(before, "\n") + 1
	startCol := utf8.RuneCountInString(head) + 1

	// If the culprit ends with a newline, strip it. Otherwise, tail is nonempty.
	var tail string
	if strings.HasSuffix(culprit, "\n") {
		culprit = culprit[:len(culprit)-1]
	} else {
		tail = firstLine(after)
	}

	endLine := startLine + strings.Count(culprit, "\n")

	c.savedShowInfo = &rangeShowInfo{head, culprit, tail, startLine, startCol, endLine}
	return c.savedShowInfo
}

// Show shows the context, with the position description on its own line,
// followed by the relevant source excerpt.
func (c *Context) Show(sourceIndent string) string {
	if err := c.checkPosition(); err != nil {
		return err.Error()
	}
	return c.describeRange() + ":\n" + sourceIndent + c.relevantSource(sourceIndent)
}

// ShowCompact shows the context, with no line break between the position
// description and the relevant source excerpt.
func (c *Context) ShowCompact(sourceIndent string) string {
	if err := c.checkPosition(); err != nil {
		return err.Error()
	}
	desc := c.describeRange() + ": "
	// Extra indent so that following lines line up with the first line.
	descIndent := strings.Repeat(" ", utf8.RuneCountInString(desc))
	return desc + c.relevantSource(sourceIndent+descIndent)
}

func (c *Context) describeRange() string {
	info := c.showInfo()
	if info.StartLine == info.EndLine {
		return fmt.Sprintf("%s:%d:%d", c.Name, info.StartLine, info.StartCol)
	}
	return fmt.Sprintf("%s:%d:%d-%d", c.Name, info.StartLine, info.StartCol, info.EndLine)
}

func (c *Context) describeStart() string {
	if err := c.checkPosition(); err != nil {
		return c.Name
	}
	info := c.showInfo()
	return fmt.Sprintf("%s:%d:%d", c.Name, info.StartLine, info.StartCol)
}

func (c *Context) checkPosition() error {
	if c.From == -1 {
		return fmt.Errorf("%s, unknown position", c.Name)
	} else if c.From < 0 || c.To > len(c.Source) || c.From > c.To {
		return fmt.Errorf("%s, invalid position %d-%d", c.Name, c.From, c.To)
	}
	return nil
}

func (c *Context) relevantSource(sourceIndent string) string {
	info := c.showInfo()

	var sb strings.Builder
	sb.WriteString(info.Head)

	culprit := info.Culprit
	if culprit == "" {
		culprit = culpritPlaceHolder
	}

	for i, line := range strings.Split(culprit, "\n") {
		if i > 0 {
			sb.WriteByte('\n')
			sb.WriteString(sourceIndent)
		}
		sb.WriteString(culpritStart)
		sb.WriteString(line)
		sb.WriteString(culpritEnd)
	}

	sb.WriteString(info.Tail)
	return sb.String()
}

func firstLine(s string) string {
	i := strings.IndexByte(s, '\n')
	if i == -1 {
		return s
	}
	return s[:i]
}

func lastLine(s string) string {
	// When s does not contain '\n', LastIndexByte returns -1, which happens to
	// be what we want.
	return s[strings.LastIndexByte(s, '\n')+1:]
}
