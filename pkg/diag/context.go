package diag

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Source is a named piece of code. It is what spans index into.
type Source struct {
	Name string
	Code string
}

// Context is a span together with the source it belongs to.
type Context struct {
	Name   string
	Source string
	Ranging
}

// NewContext creates a Context for the span of r within src.
func NewContext(src Source, r Ranger) *Context {
	return &Context{src.Name, src.Code, r.Range()}
}

// Culprit returns the text the span covers.
func (c *Context) Culprit() string {
	if c.checkPosition() != nil {
		return ""
	}
	return c.Source[c.From:c.To]
}

// Show shows the position followed by the relevant source line on the next
// line.
func (c *Context) Show(indent string) string {
	if err := c.checkPosition(); err != nil {
		return err.Error()
	}
	return c.Name + ", " + c.lineRange() + "\n" + indent + c.excerpt(indent)
}

// ShowCompact is like Show, but keeps the position and the excerpt on the
// same line.
func (c *Context) ShowCompact(indent string) string {
	if err := c.checkPosition(); err != nil {
		return err.Error()
	}
	desc := c.Name + ", " + c.lineRange() + " "
	return desc + c.excerpt(indent+strings.Repeat(" ", utf8.RuneCountInString(desc)))
}

func (c *Context) checkPosition() error {
	switch {
	case c.From == -1:
		return fmt.Errorf("%s, unknown position", c.Name)
	case c.From < 0 || c.To > len(c.Source) || c.From > c.To:
		return fmt.Errorf("%s, invalid position %d-%d", c.Name, c.From, c.To)
	}
	return nil
}

func (c *Context) lineRange() string {
	begin := strings.Count(c.Source[:c.From], "\n") + 1
	end := begin + strings.Count(strings.TrimSuffix(c.Source[c.From:c.To], "\n"), "\n")
	if begin == end {
		return fmt.Sprintf("line %d:", begin)
	}
	return fmt.Sprintf("line %d-%d:", begin, end)
}

// The culprit is underlined; the rest of the first and last lines are shown
// around it.
func (c *Context) excerpt(indent string) string {
	before := c.Source[:c.From]
	head := before[strings.LastIndexByte(before, '\n')+1:]

	culprit := c.Source[c.From:c.To]
	var tail string
	if strings.HasSuffix(culprit, "\n") {
		culprit = culprit[:len(culprit)-1]
	} else {
		after := c.Source[c.To:]
		if i := strings.IndexByte(after, '\n'); i >= 0 {
			after = after[:i]
		}
		tail = after
	}
	if culprit == "" {
		culprit = "^"
	}

	var sb strings.Builder
	sb.WriteString(head)
	for i, line := range strings.Split(culprit, "\n") {
		if i > 0 {
			sb.WriteString("\n" + indent)
		}
		sb.WriteString(culpritBegin + line + culpritEnd)
	}
	sb.WriteString(tail)
	return sb.String()
}

// Markers around the culprit. Tests replace them with plain brackets.
var (
	culpritBegin = "\033[1;4m"
	culpritEnd   = "\033[m"
)
