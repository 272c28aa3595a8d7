package diagnostics

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
)

// Format selects how reports are written.
type Format string

const (
	FormatPretty Format = "pretty"
	FormatJSON   Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatPretty, FormatJSON:
		return f, nil
	default:
		return "", errors.Newf("unknown diagnostic format %q (want pretty or json)", s)
	}
}

type palette struct {
	header    *color.Color
	primary   *color.Color
	secondary *color.Color
	gutter    *color.Color
	bold      *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		header:    color.New(color.FgRed, color.Bold),
		primary:   color.New(color.FgRed),
		secondary: color.New(color.FgYellow),
		gutter:    color.New(color.FgBlue),
		bold:      color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.header, p.primary, p.secondary, p.gutter, p.bold} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) label(l Label) *color.Color {
	if l.Primary {
		return p.primary
	}
	return p.secondary
}

// Renderer writes diagnostic reports against a source buffer.
type Renderer struct {
	format Format
	colors palette
}

// NewRenderer returns a Renderer for format. Color only affects the pretty
// format.
func NewRenderer(format Format, colored bool) *Renderer {
	return &Renderer{format: format, colors: newPalette(colored)}
}

// Write writes every diagnostic to w. The first write error is returned.
func (r *Renderer) Write(w io.Writer, src *Source, diags []Diagnostic) error {
	if r.format == FormatJSON {
		_, err := io.WriteString(w, FormatDiagnostics(diags)+"\n")
		return err
	}
	for _, d := range diags {
		if _, err := io.WriteString(w, r.Render(d, src)); err != nil {
			return err
		}
	}
	return nil
}

// Render formats one report. src may be nil for diagnostics without source
// context.
func (r *Renderer) Render(d Diagnostic, src *Source) string {
	c := r.colors
	var b strings.Builder

	fmt.Fprintf(&b, "%s%s\n", c.header.Sprintf("error[%s]", d.Code), c.bold.Sprint(": "+d.Message))
	if src == nil || len(d.Labels) == 0 {
		fmt.Fprintf(&b, "  %s %s\n", c.gutter.Sprint("-->"), d.location())
		r.writeHint(&b, d, "  ")
		return b.String()
	}

	lines := labelLines(d.Labels)
	width := len(strconv.Itoa(lines[len(lines)-1]))
	pad := strings.Repeat(" ", width)

	fmt.Fprintf(&b, "%s%s %s\n", pad, c.gutter.Sprint("-->"), d.location())
	fmt.Fprintf(&b, "%s %s\n", pad, c.gutter.Sprint("|"))
	for i, n := range lines {
		if i > 0 && n > lines[i-1]+1 {
			fmt.Fprintf(&b, "%s\n", c.gutter.Sprint("..."))
		}
		text := src.Line(n)
		fmt.Fprintf(&b, "%s %s\n", c.gutter.Sprintf("%*d |", width, n), text)
		for _, l := range labelsOn(d.Labels, n) {
			fmt.Fprintf(&b, "%s %s %s\n", pad, c.gutter.Sprint("|"), r.marker(l, text, src))
		}
	}
	fmt.Fprintf(&b, "%s %s\n", pad, c.gutter.Sprint("|"))
	r.writeHint(&b, d, pad+" ")
	return b.String()
}

func (r *Renderer) writeHint(b *strings.Builder, d Diagnostic, indent string) {
	if d.Hint != "" {
		fmt.Fprintf(b, "%s%s %s\n", indent, r.colors.bold.Sprint("= hint:"), d.Hint)
	}
}

// marker builds the underline row for l. Tabs in the indentation are kept so
// the markers line up with the source line above.
func (r *Renderer) marker(l Label, text string, src *Source) string {
	col := l.Start.Col - 1
	var indent strings.Builder
	i := 0
	for _, ch := range text {
		if i >= col {
			break
		}
		if ch == '\t' {
			indent.WriteRune('\t')
		} else {
			indent.WriteRune(' ')
		}
		i++
	}
	for ; i < col; i++ {
		indent.WriteRune(' ')
	}

	// Spans running past the line are underlined to its end.
	lineRunes := utf8.RuneCountInString(text)
	end := src.Location(l.Span.End)
	width := end.Col - l.Start.Col
	if end.Line != l.Start.Line {
		width = lineRunes - col
	}
	if width < 1 {
		width = 1
	}

	ch := "-"
	if l.Primary {
		ch = "^"
	}
	lc := r.colors.label(l)
	return indent.String() + lc.Sprint(strings.Repeat(ch, width)) + " " + r.labelText(l)
}

func (r *Renderer) labelText(l Label) string {
	if l.Token == "" || !strings.HasSuffix(l.Message, l.Token) {
		return l.Message
	}
	head := strings.TrimSuffix(l.Message, l.Token)
	return head + r.colors.label(l).Sprint(l.Token)
}

// labelLines returns the distinct start lines of labels in ascending order.
func labelLines(labels []Label) []int {
	seen := map[int]bool{}
	var lines []int
	for _, l := range labels {
		if !seen[l.Start.Line] {
			seen[l.Start.Line] = true
			lines = append(lines, l.Start.Line)
		}
	}
	sort.Ints(lines)
	return lines
}

// labelsOn returns the labels starting on line n, primary first, then by
// column.
func labelsOn(labels []Label, n int) []Label {
	var out []Label
	for _, l := range labels {
		if l.Start.Line == n {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Primary != out[j].Primary {
			return out[i].Primary
		}
		return out[i].Start.Col < out[j].Start.Col
	})
	return out
}
