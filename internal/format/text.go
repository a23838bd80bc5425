package format

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// VisibleWidth returns the display width of text ignoring ANSI color codes.
func VisibleWidth(text string) int {
	return runewidth.StringWidth(ansiPattern.ReplaceAllString(text, ""))
}

// TruncateToWidth cuts text to at most width display cells, keeping any
// color codes it passes over.
func TruncateToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if VisibleWidth(text) <= width {
		return text
	}
	var out strings.Builder
	current := 0
	for i := 0; i < len(text); {
		if m := ansiPattern.FindStringIndex(text[i:]); m != nil && m[0] == 0 {
			out.WriteString(text[i : i+m[1]])
			i += m[1]
			continue
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		rw := runewidth.RuneWidth(r)
		if current+rw > width {
			break
		}
		out.WriteRune(r)
		current += rw
		i += size
	}
	return out.String()
}

// WrapBody word-wraps text to width display cells. Words wider than width
// are split. A non-positive width disables wrapping.
func WrapBody(text string, width int) string {
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return text
	}

	var out []string
	for _, para := range strings.Split(text, "\n") {
		out = append(out, wrapParagraph(para, width)...)
	}
	return strings.Join(out, "\n")
}

func wrapParagraph(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := ""
	for _, word := range words {
		for runewidth.StringWidth(word) > width {
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			head := runewidth.Truncate(word, width, "")
			if head == "" {
				_, size := utf8.DecodeRuneInString(word)
				head = word[:size]
			}
			lines = append(lines, head)
			word = word[len(head):]
		}
		switch {
		case word == "":
		case current == "":
			current = word
		case runewidth.StringWidth(current)+1+runewidth.StringWidth(word) > width:
			lines = append(lines, current)
			current = word
		default:
			current += " " + word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// FormatJSON indents raw JSON, returning raw unchanged when it does not parse.
func FormatJSON(raw string) string {
	if raw == "" {
		return raw
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(raw), "", "  "); err == nil {
		return buf.String()
	}
	return raw
}

// HighlightJSON colors JSON source for a 256-color terminal. The input is
// returned unchanged if tokenizing fails.
func HighlightJSON(source string) string {
	lexer := lexers.Get("json")
	if lexer == nil {
		return source
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return source
	}

	iter, err := lexer.Tokenise(nil, source)
	if err != nil {
		return source
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iter); err != nil {
		return source
	}
	return buf.String()
}

// RenderMarkdown renders markdown for the terminal with the named glamour
// style ("dark", "light", "notty", ...). On failure the source is returned.
func RenderMarkdown(source, style string, width int) string {
	if style == "" {
		style = "dark"
	}
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle(style)}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return source
	}
	out, err := renderer.Render(source)
	if err != nil {
		return source
	}
	return trimBlankLines(out)
}

// trimBlankLines drops leading and trailing blank lines and trailing spaces
// that glamour pads its output with.
func trimBlankLines(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	start, end := 0, len(lines)
	for start < end && VisibleWidth(lines[start]) == 0 {
		start++
	}
	for end > start && VisibleWidth(lines[end-1]) == 0 {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}
