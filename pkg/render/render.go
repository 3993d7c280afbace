// Package render formats a conversion for the terminal.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/papercomputeco/math2python/pkg/conversion"
	"github.com/papercomputeco/math2python/pkg/textutil"
)

const defaultWidth = 100

// Options controls terminal output.
type Options struct {
	// Plain disables colors and markdown styling, e.g. when piping.
	Plain bool

	// Width for word wrapping. Zero uses a default.
	Width int
}

// Conversion writes a titled, markdown-rendered view of resp to w.
func Conversion(w io.Writer, equation string, resp *conversion.Response, opts Options) error {
	width := opts.Width
	if width <= 0 {
		width = defaultWidth
	}

	renderer := lipgloss.NewRenderer(w)
	if opts.Plain {
		renderer.SetColorProfile(termenv.Ascii)
	}
	titleStyle := renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))

	title := titleStyle.Render(textutil.Truncate(equation, width))
	if _, err := fmt.Fprintf(w, "%s\n%s\n", title, strings.Repeat("─", ansi.StringWidth(title))); err != nil {
		return err
	}

	md, err := newMarkdownRenderer(opts.Plain, width)
	if err != nil {
		return fmt.Errorf("could not create markdown renderer: %w", err)
	}

	out, err := md.Render(Markdown(resp))
	if err != nil {
		return fmt.Errorf("could not render markdown: %w", err)
	}

	_, err = io.WriteString(w, out)
	return err
}

// Markdown lays out a response as a markdown document.
func Markdown(resp *conversion.Response) string {
	var b strings.Builder
	b.WriteString("## SymPy\n\n```python\n")
	b.WriteString(strings.TrimRight(resp.Sympy, "\n"))
	b.WriteString("\n```\n\n## NumPy\n\n```python\n")
	b.WriteString(strings.TrimRight(resp.Numpy, "\n"))
	b.WriteString("\n```\n\n## Explanation\n\n")
	b.WriteString(resp.Explanation)
	b.WriteString("\n\n## Complexity\n\n")
	b.WriteString(resp.Complexity)
	b.WriteString("\n")
	return b.String()
}

func newMarkdownRenderer(plain bool, width int) (*glamour.TermRenderer, error) {
	style := glamour.WithAutoStyle()
	if plain {
		style = glamour.WithStandardStyle("notty")
	}
	return glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
}
