// Package main provides the agentlens CLI for inspecting agent event logs.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"agentlens/internal/config"
	"agentlens/internal/format"
	"agentlens/internal/model"
	"agentlens/internal/parser"
	"agentlens/internal/stats"
	"agentlens/internal/store"
	"agentlens/internal/tui"
	"agentlens/internal/view"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var version = "dev"

const emptyLogNotice = "No log entries found in file"

type globalOptions struct {
	configPath string
	logsDir    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "agentlens: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		global globalOptions
		noTUI  bool
	)

	cmd := &cobra.Command{
		Use:           "agentlens <log-file-or-session-id>",
		Short:         "Browse agent event logs in an interactive timeline",
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}

			res, ok, err := loadLog(cmd, args[0], cfg)
			if err != nil || !ok {
				return err
			}

			sum := stats.Aggregate(res.Events)
			out := cmd.OutOrStdout()
			if noTUI || !isTerminal(out) {
				report := format.NewStatsReport(sum, len(res.Events), model.SessionOf(res.Events), cfg.TopTools)
				return format.WriteStats(out, report, "table")
			}
			return tui.Start(res.Events, sum, cfg)
		},
	}

	persistent := cmd.PersistentFlags()
	persistent.StringVar(&global.configPath, "config", "", "config file (env: AGENTLENS_CONFIG)")
	persistent.StringVar(&global.logsDir, "logs-dir", "", "directory searched for session ids (env: AGENTLENS_LOGS_DIR)")
	cmd.Flags().BoolVar(&noTUI, "no-tui", false, "print the summary instead of starting the viewer")

	cmd.AddCommand(newStatsCmd(&global))
	cmd.AddCommand(newDumpCmd(&global))
	cmd.AddCommand(newListCmd(&global))
	cmd.AddCommand(newInfoCmd(&global))

	return cmd
}

// loadConfig reads the config file and lets command line flags win.
func loadConfig(global globalOptions) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if global.configPath != "" {
		cfg, err = config.LoadFile(global.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return config.Config{}, err
	}
	if global.logsDir != "" {
		cfg.LogsDir = global.logsDir
	}
	return cfg, nil
}

// loadLog resolves arg, loads the log and prints its warnings. ok is false
// when the log held no events, in which case the notice has been printed.
func loadLog(cmd *cobra.Command, arg string, cfg config.Config) (parser.LoadResult, bool, error) {
	path, err := resolveLogPath(arg, cfg.LogsDir)
	if err != nil {
		return parser.LoadResult{}, false, err
	}

	res, err := parser.LoadFile(path)
	if err != nil {
		return parser.LoadResult{}, false, err
	}
	printWarnings(cmd.ErrOrStderr(), res.Warnings)

	if len(res.Events) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), emptyLogNotice) //nolint:errcheck
		return res, false, nil
	}
	return res, true, nil
}

func printWarnings(w io.Writer, warnings []error) {
	for _, warn := range warnings {
		fmt.Fprintf(w, "warning: %v\n", warn) //nolint:errcheck
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd())
}

func newStatsCmd(global *globalOptions) *cobra.Command {
	var (
		formatFlag string
		top        int
	)

	cmd := &cobra.Command{
		Use:   "stats <log-file-or-session-id>",
		Short: "Print token and tool statistics for a log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*global)
			if err != nil {
				return err
			}
			if top == 0 {
				top = cfg.TopTools
			}

			res, ok, err := loadLog(cmd, args[0], cfg)
			if err != nil || !ok {
				return err
			}

			report := format.NewStatsReport(stats.Aggregate(res.Events), len(res.Events), model.SessionOf(res.Events), top)
			return format.WriteStats(cmd.OutOrStdout(), report, formatFlag)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&formatFlag, "format", "table", "output format: table, plain, or json")
	flags.IntVar(&top, "top", 0, "number of tools listed (0 uses the configured top_tools, negative lists all)")

	return cmd
}

func newDumpCmd(global *globalOptions) *cobra.Command {
	var (
		kindArg      string
		agent        string
		maxEvents    int
		formatFlag   string
		wrap         int
		timeline     bool
		markdown     bool
		pager        bool
		forceColor   bool
		forceNoColor bool
	)

	cmd := &cobra.Command{
		Use:   "dump <log-file-or-session-id>",
		Short: "Print a log without the interactive viewer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if forceColor && forceNoColor {
				return errors.New("--color and --no-color cannot be used together")
			}

			cfg, err := loadConfig(*global)
			if err != nil {
				return err
			}
			path, err := resolveLogPath(args[0], cfg.LogsDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			outFile, _ := out.(*os.File)
			return view.Run(view.Options{
				Path:         path,
				Format:       formatFlag,
				Wrap:         wrap,
				MaxEvents:    maxEvents,
				KindArg:      kindArg,
				Agent:        agent,
				Timeline:     timeline,
				Markdown:     markdown,
				ForceColor:   forceColor,
				ForceNoColor: forceNoColor || (cfg.NoColor && !forceColor),
				Pager:        pager,
				Out:          out,
				OutFile:      outFile,
				Err:          cmd.ErrOrStderr(),
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&kindArg, "kind", "k", "", "comma-separated event kinds to include (use 'all' for every kind)")
	flags.StringVarP(&agent, "agent", "a", "", "only include events from this agent")
	flags.IntVar(&maxEvents, "max", 0, "show only the most recent N events (0 means no limit)")
	flags.StringVar(&formatFlag, "format", "text", "output format: text or raw")
	flags.IntVar(&wrap, "wrap", 0, "wrap text at the given column width")
	flags.BoolVar(&timeline, "timeline", false, "print one line per event")
	flags.BoolVar(&markdown, "markdown", false, "render LLM content as markdown")
	flags.BoolVar(&pager, "pager", false, "page output through $PAGER (or less) when stdout is a terminal")
	flags.BoolVar(&forceColor, "color", false, "force-enable ANSI colors even when stdout is not a TTY")
	flags.BoolVar(&forceNoColor, "no-color", false, "disable ANSI colors regardless of terminal detection")

	return cmd
}

func newListCmd(global *globalOptions) *cobra.Command {
	var (
		afterStr   string
		beforeStr  string
		limit      int
		formatFlag string
		noHeader   bool
		totals     bool
	)

	cmd := &cobra.Command{
		Use:   "list [dir]",
		Short: "List logged sessions in reverse chronological order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*global)
			if err != nil {
				return err
			}
			root := cfg.LogsDir
			if len(args) == 1 {
				root = args[0]
			}

			formatFlag = strings.ToLower(formatFlag)
			if totals && formatFlag != "table" && formatFlag != "plain" {
				return fmt.Errorf("--totals cannot be used with --format %s", formatFlag)
			}

			var after, before *time.Time
			if afterStr != "" {
				t, err := time.Parse(time.RFC3339, afterStr)
				if err != nil {
					return fmt.Errorf("invalid --after value: %w", err)
				}
				after = &t
			}
			if beforeStr != "" {
				t, err := time.Parse(time.RFC3339, beforeStr)
				if err != nil {
					return fmt.Errorf("invalid --before value: %w", err)
				}
				before = &t
			}

			result, err := store.ListSessions(store.ListOptions{
				Root:   root,
				After:  after,
				Before: before,
				Limit:  limit,
			})
			if err != nil {
				return err
			}
			printWarnings(cmd.ErrOrStderr(), result.Warnings)

			out := cmd.OutOrStdout()
			if err := format.WriteSessions(out, result.Sessions, !noHeader, formatFlag); err != nil {
				return err
			}
			if !totals {
				return nil
			}

			events := 0
			for _, s := range result.Sessions {
				events += s.EventCount
			}
			report := format.NewStatsReport(result.Totals, events, fmt.Sprintf("%d sessions", len(result.Sessions)), cfg.TopTools)
			return format.WriteStats(out, report, formatFlag)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&afterStr, "after", "", "include sessions starting on/after the given RFC3339 timestamp")
	flags.StringVar(&beforeStr, "before", "", "include sessions starting on/before the given RFC3339 timestamp")
	flags.IntVar(&limit, "limit", 0, "limit number of sessions returned (0 means no limit)")
	flags.StringVar(&formatFlag, "format", "table", "output format: table, plain, json, or jsonl")
	flags.BoolVar(&noHeader, "no-header", false, "omit header row for plain output")
	flags.BoolVar(&totals, "totals", false, "append statistics merged across the listed sessions")

	return cmd
}

type infoPayload struct {
	SessionID       string   `json:"session_id"`
	JSONLPath       string   `json:"jsonl_path"`
	StartedAt       string   `json:"started_at"`
	EndedAt         string   `json:"ended_at"`
	DurationSeconds int      `json:"duration_seconds"`
	DurationDisplay string   `json:"duration_display"`
	EventCount      int      `json:"event_count"`
	SkippedLines    int      `json:"skipped_lines"`
	TotalTokens     uint64   `json:"total_tokens"`
	LLMCalls        uint32   `json:"llm_calls"`
	ToolCalls       uint32   `json:"tool_calls"`
	Errors          uint32   `json:"errors"`
	Agents          []string `json:"agents"`
	LastResponse    string   `json:"last_response"`
}

func newInfoCmd(global *globalOptions) *cobra.Command {
	var (
		formatFlag  string
		summaryMode string
	)

	cmd := &cobra.Command{
		Use:   "info <log-file-or-session-id>",
		Short: "Show session metadata and file details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summaryMode = strings.ToLower(summaryMode)
			switch summaryMode {
			case "", "clip":
			case "full":
			default:
				return fmt.Errorf("invalid --summary value: %s", summaryMode)
			}

			cfg, err := loadConfig(*global)
			if err != nil {
				return err
			}
			path, err := resolveLogPath(args[0], cfg.LogsDir)
			if err != nil {
				return err
			}
			res, ok, err := loadLog(cmd, path, cfg)
			if err != nil || !ok {
				return err
			}

			session, sum := store.Summarize(path, res)
			lastResponse := lastLLMContent(res.Events)
			payload := infoPayload{
				SessionID:       session.ID,
				JSONLPath:       path,
				StartedAt:       session.StartedAt,
				EndedAt:         session.EndedAt,
				DurationSeconds: session.DurationSeconds,
				DurationDisplay: formatDuration(session.DurationSeconds),
				EventCount:      session.EventCount,
				SkippedLines:    session.SkippedLines,
				TotalTokens:     session.TotalTokens,
				LLMCalls:        session.LLMCalls,
				ToolCalls:       session.ToolCalls,
				Errors:          session.Errors,
				Agents:          sum.Tokens.Agents(),
				LastResponse:    lastResponse,
			}

			summarySnippet := collapseWhitespace(lastResponse)
			if summaryMode != "full" {
				summarySnippet = clipSummary(summarySnippet, 160)
			}

			switch strings.ToLower(formatFlag) {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(payload)
			case "text":
				renderInfoText(cmd.OutOrStdout(), payload, summarySnippet)
				return nil
			default:
				return fmt.Errorf("unsupported format: %s", formatFlag)
			}
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&formatFlag, "format", "text", "output format: text or json")
	flags.StringVar(&summaryMode, "summary", "clip", "last response display: clip or full")

	return cmd
}

// resolveLogPath accepts a log file path or a session id looked up under
// root. Arguments that look like paths are returned as given so that a
// missing file is reported by the loader. When the id lookup finds nothing
// the open failure for arg is reported instead.
func resolveLogPath(arg, root string) (string, error) {
	if arg == "" {
		return "", errors.New("log file or session id is empty")
	}

	info, statErr := os.Stat(arg)
	if statErr == nil && !info.IsDir() {
		return arg, nil
	}
	if strings.HasSuffix(arg, ".jsonl") || strings.ContainsRune(arg, os.PathSeparator) {
		return arg, nil
	}

	path, err := store.FindSessionPath(root, arg)
	if err == nil {
		return path, nil
	}
	if statErr != nil {
		return "", fmt.Errorf("open log file: %w", statErr)
	}
	return "", err
}

func lastLLMContent(events []model.Event) string {
	for i := len(events) - 1; i >= 0; i-- {
		if v, ok := events[i].AsLLMResponse(); ok && v.Content != nil {
			return *v.Content
		}
	}
	return ""
}

func formatDuration(seconds int) string {
	if seconds <= 0 {
		return "00:00:00"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func renderInfoText(out io.Writer, payload infoPayload, summarySnippet string) {
	const labelWidth = 14
	writeKV(out, labelWidth, "Session ID", payload.SessionID)
	writeKV(out, labelWidth, "Started At", payload.StartedAt)
	writeKV(out, labelWidth, "Ended At", payload.EndedAt)
	writeKV(out, labelWidth, "Duration", payload.DurationDisplay)
	writeKV(out, labelWidth, "Events", fmt.Sprintf("%d", payload.EventCount))
	writeKV(out, labelWidth, "Skipped Lines", fmt.Sprintf("%d", payload.SkippedLines))
	writeKV(out, labelWidth, "Total Tokens", fmt.Sprintf("%d", payload.TotalTokens))
	writeKV(out, labelWidth, "LLM Calls", fmt.Sprintf("%d", payload.LLMCalls))
	writeKV(out, labelWidth, "Tool Calls", fmt.Sprintf("%d", payload.ToolCalls))
	writeKV(out, labelWidth, "Errors", fmt.Sprintf("%d", payload.Errors))
	writeKV(out, labelWidth, "Agents", strings.Join(payload.Agents, ", "))
	writeKV(out, labelWidth, "JSONL Path", payload.JSONLPath)
	writeKV(out, labelWidth, "Last Response", summarySnippet)
}

func writeKV(out io.Writer, width int, label string, value string) {
	fmt.Fprintf(out, "%-*s: %s\n", width, label, value) //nolint:errcheck
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(text)), " ")
}

func clipSummary(text string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen == 1 {
		return "…"
	}
	return string(runes[:maxLen-1]) + "…"
}
