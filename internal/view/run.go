// Package view prints a log non-interactively.
package view

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"agentlens/internal/format"
	"agentlens/internal/model"
	"agentlens/internal/parser"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// Options defines the configurable parameters for rendering a view.
type Options struct {
	Path string
	// Format is "text" (default) or "raw".
	Format    string
	Wrap      int
	MaxEvents int
	// KindArg is a comma separated list of kinds; "all" or empty keeps every kind.
	// Known kinds match case-insensitively, other tags verbatim.
	KindArg string
	Agent   string
	// Timeline prints one row per event instead of full details.
	Timeline     bool
	Markdown     bool
	ForceColor   bool
	ForceNoColor bool
	Pager        bool
	Out          io.Writer
	OutFile      *os.File
	// Err receives per-line warnings.
	Err io.Writer
}

// Run renders a log file according to the provided options.
func Run(opts Options) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}

	kinds := parseKindArg(opts.KindArg)

	formatMode := strings.ToLower(opts.Format)
	if formatMode == "" {
		formatMode = "text"
	}
	if formatMode != "text" && formatMode != "raw" {
		return fmt.Errorf("unsupported format: %s", opts.Format)
	}

	res, err := parser.LoadFile(opts.Path)
	if err != nil {
		return err
	}
	for _, warning := range res.Warnings {
		fmt.Fprintf(opts.Err, "warning: %v\n", warning)
	}

	events := selectEvents(res.Events, kinds, opts.Agent, opts.MaxEvents)
	if len(events) == 0 {
		return nil
	}

	var lines []string
	useColor := false
	switch formatMode {
	case "raw":
		lines = make([]string, 0, len(events))
		for _, event := range events {
			lines = append(lines, event.Raw)
		}
	default:
		useColor = resolveColorChoice(opts)
		width := determineWidth(opts.OutFile, opts.Wrap)
		if opts.Timeline {
			lines = renderTimeline(events, width, useColor)
		} else {
			lines = renderEvents(events, width, useColor, opts.Markdown)
		}
	}

	if opts.Pager && opts.OutFile != nil && isatty.IsTerminal(opts.OutFile.Fd()) {
		return pipeThroughPager(lines, useColor)
	}
	return writeLines(opts.Out, lines)
}

func parseKindArg(arg string) map[model.Kind]struct{} {
	values := parseCSV(arg)
	if len(values) == 0 {
		return nil
	}
	if len(values) == 1 && strings.EqualFold(values[0], "all") {
		return nil
	}

	set := make(map[model.Kind]struct{}, len(values))
	for _, token := range values {
		kind, ok := model.ParseKind(strings.ToLower(token))
		if !ok {
			kind = model.Kind(token)
		}
		set[kind] = struct{}{}
	}
	return set
}

func parseCSV(arg string) []string {
	if strings.TrimSpace(arg) == "" {
		return nil
	}
	parts := strings.Split(arg, ",")
	output := make([]string, 0, len(parts))
	for _, part := range parts {
		token := strings.TrimSpace(part)
		if token != "" {
			output = append(output, token)
		}
	}
	return output
}

// selectEvents applies the kind and agent filters and keeps the last limit
// matches when limit is positive.
func selectEvents(events []model.Event, kinds map[model.Kind]struct{}, agent string, limit int) []model.Event {
	ring := newEventRing(limit)
	var all []model.Event
	for _, event := range events {
		if kinds != nil {
			if _, ok := kinds[event.Kind]; !ok {
				continue
			}
		}
		if agent != "" {
			if name, ok := event.Agent(); !ok || name != agent {
				continue
			}
		}
		if limit > 0 {
			ring.push(event)
			continue
		}
		all = append(all, event)
	}
	if limit > 0 {
		return ring.slice()
	}
	return all
}

type eventRing struct {
	data   []model.Event
	start  int
	length int
}

func newEventRing(capacity int) *eventRing {
	if capacity <= 0 {
		return &eventRing{}
	}
	return &eventRing{data: make([]model.Event, capacity)}
}

func (r *eventRing) push(event model.Event) {
	if len(r.data) == 0 {
		return
	}
	idx := (r.start + r.length) % len(r.data)
	r.data[idx] = event
	if r.length < len(r.data) {
		r.length++
		return
	}
	r.start = (r.start + 1) % len(r.data)
}

func (r *eventRing) slice() []model.Event {
	if r.length == 0 {
		return nil
	}
	result := make([]model.Event, r.length)
	for i := 0; i < r.length; i++ {
		result[i] = r.data[(r.start+i)%len(r.data)]
	}
	return result
}

func determineWidth(out *os.File, wrap int) int {
	if wrap > 0 {
		return wrap
	}
	if out != nil {
		if w, _, err := term.GetSize(int(out.Fd())); err == nil && w > 0 {
			return w
		}
	}
	if colsStr := os.Getenv("COLUMNS"); colsStr != "" {
		if v, err := strconv.Atoi(colsStr); err == nil && v > 0 {
			return v
		}
	}
	return 80
}

func pipeThroughPager(lines []string, colorEnabled bool) error {
	text := strings.Join(lines, "\n")
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	pagerCmd := os.Getenv("PAGER")
	var cmd *exec.Cmd
	if pagerCmd == "" {
		args := []string{"less"}
		if colorEnabled {
			args = append(args, "-R")
		}
		cmd = exec.Command(args[0], args[1:]...) // #nosec G204
	} else {
		cmd = exec.Command("sh", "-c", pagerCmd) // #nosec G204
	}

	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create pager pipe: %w", err)
	}
	go func() {
		defer stdin.Close()
		io.WriteString(stdin, text) //nolint:errcheck
	}()

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run pager: %w", err)
	}

	return nil
}

func writeLines(out io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

// renderTimeline prints one row per event, as in the interactive timeline.
func renderTimeline(events []model.Event, width int, useColor bool) []string {
	lines := make([]string, 0, len(events))
	for _, event := range events {
		row := format.RowOf(event)
		plain := row.String()
		if format.VisibleWidth(plain) > width {
			lines = append(lines, colorize(useColor, kindColor(row.Color), format.TruncateToWidth(plain, width)))
			continue
		}
		line := colorize(useColor, ansiTimestamp, row.Time) + " " + colorize(useColor, kindColor(row.Color), row.Icon+" "+row.Label)
		if row.Agent != "" {
			line += " " + colorize(useColor, ansiAgent, row.Agent)
		}
		lines = append(lines, line)
	}
	return lines
}

// renderEvents prints every event as a numbered header followed by its
// details, separated by blank lines.
func renderEvents(events []model.Event, width int, useColor, markdown bool) []string {
	style := "notty"
	if useColor {
		style = "dark"
	}
	opts := format.DetailOptions{
		Markdown:      markdown,
		MarkdownStyle: style,
		Highlight:     useColor,
		Width:         width - 2,
	}

	var lines []string
	for idx, event := range events {
		if idx > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, eventLines(event, idx+1, opts, useColor)...)
	}
	return lines
}

func eventLines(event model.Event, index int, opts format.DetailOptions, useColor bool) []string {
	row := format.RowOf(event)
	headerPlain := fmt.Sprintf("[#%03d] %s %s | %s", index, row.Icon, row.Label, event.Timestamp)

	indexText := fmt.Sprintf("#%03d", index)
	labelText := row.Icon + " " + row.Label
	tsText := event.Timestamp
	separator := "|"

	if useColor {
		indexText = colorize(true, ansiBoldWhite, indexText)
		labelText = colorize(true, kindColor(row.Color), labelText)
		tsText = colorize(true, ansiTimestamp, tsText)
		separator = colorize(true, ansiSeparator, "|")
	}

	lines := []string{
		fmt.Sprintf("[%s] %s %s %s", indexText, labelText, separator, tsText),
		strings.Repeat("-", format.VisibleWidth(headerPlain)),
	}

	body := format.DetailLines(event, opts)
	linePrefix := "| "
	emptyPrefix := "|"
	if useColor {
		separatorColor := colorize(true, ansiSeparator, "|")
		linePrefix = separatorColor + " "
		emptyPrefix = separatorColor
	}
	for _, line := range body {
		if line == "" {
			lines = append(lines, emptyPrefix)
			continue
		}
		lines = append(lines, linePrefix+line)
	}
	return lines
}

const (
	ansiReset     = "\x1b[0m"
	ansiBoldWhite = "\x1b[1;97m"
	ansiTimestamp = "\x1b[38;5;245m"
	ansiSeparator = "\x1b[38;5;240m"
	ansiAgent     = "\x1b[38;5;44m"
)

func colorize(enabled bool, code string, text string) string {
	if !enabled {
		return text
	}
	return code + text + ansiReset
}

// kindColor turns a 256-color index into a foreground escape sequence.
func kindColor(index string) string {
	return "\x1b[38;5;" + index + "m"
}

func resolveColorChoice(opts Options) bool {
	if opts.ForceColor {
		return true
	}
	if opts.ForceNoColor {
		return false
	}
	return shouldUseColorAuto(opts.Out)
}

func shouldUseColorAuto(out io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
