package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"ytpulse/internal/comments"
	"ytpulse/internal/events"
	"ytpulse/internal/jobs"
	"ytpulse/internal/summary"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

var titleCaser = cases.Title(language.English)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func shouldColorize(writer io.Writer) bool {
	return isTerminal(writer)
}

// progressPrinter renders progress and warnings to a human-facing writer.
// On a terminal progress redraws one line; elsewhere each stage change prints
// once.
type progressPrinter struct {
	mu        sync.Mutex
	w         io.Writer
	tty       bool
	lastStage string
	drawn     bool
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w, tty: isTerminal(w)}
}

func (p *progressPrinter) Emit(e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch data := e.Data.(type) {
	case events.Progress:
		line := fmt.Sprintf("[%3.0f%%] %s", data.Percentage, data.Stage)
		if data.Total > 0 {
			line += fmt.Sprintf(" %d/%d", data.Current, data.Total)
		}
		if p.tty {
			fmt.Fprintf(p.w, "\r\x1b[2K%s", line)
			p.drawn = true
			return nil
		}
		if stageKey(data.Stage) != p.lastStage {
			p.lastStage = stageKey(data.Stage)
			fmt.Fprintln(p.w, line)
		}
	case events.ErrorData:
		p.breakLine()
		kind := statusWarn
		if data.Fatal {
			kind = statusError
		}
		fmt.Fprintln(p.w, renderStatusLine("pipeline", kind, data.Message, p.tty))
	}
	if e.Type == events.TypeComplete {
		p.breakLine()
	}
	return nil
}

func (p *progressPrinter) breakLine() {
	if p.drawn {
		fmt.Fprintln(p.w)
		p.drawn = false
	}
}

// stageKey folds per-batch stage labels ("translating batch 2/5") together.
func stageKey(stage string) string {
	fields := strings.Fields(stage)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func renderVideo(w io.Writer, result jobs.VideoResult, colorize bool) {
	info := result.VideoInfo
	for _, line := range renderSectionHeader(info.Title, colorize) {
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w, renderStatusLine("Channel", statusInfo, info.ChannelTitle, colorize))
	fmt.Fprintln(w, renderStatusLine("URL", statusInfo, info.VideoURL, colorize))
	fmt.Fprintln(w, renderStatusLine("Views", statusInfo, info.ViewCount, colorize))

	collected := fmt.Sprintf("%d kept of %d fetched across %d pages", result.TotalComments, result.TotalFetched, result.Pages)
	kind := statusOK
	switch {
	case result.Partial:
		kind = statusWarn
		collected += " (partial)"
	case result.Truncated:
		kind = statusWarn
		collected += " (page limit reached)"
	}
	fmt.Fprintln(w, renderStatusLine("Comments", kind, collected, colorize))
	if result.Translated != nil {
		t := result.Translated
		tk := statusOK
		if t.FailedBatches > 0 {
			tk = statusWarn
		}
		fmt.Fprintln(w, renderStatusLine("Translated", tk,
			fmt.Sprintf("%d of %d, %d failed batches", t.SuccessCount, t.TotalTranslated, t.FailedBatches), colorize))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, renderStats(result.Stats))
	if top := comments.RankByPopularity(result.Comments, 5); len(top) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, renderCommentTable(top))
	}
	if result.Summary != nil {
		fmt.Fprintln(w)
		renderSummary(w, *result.Summary, colorize)
	}
}

func renderStats(stats comments.Stats) string {
	rows := [][]string{{
		strconv.Itoa(stats.Total),
		strconv.Itoa(stats.MainComments),
		strconv.Itoa(stats.Replies),
		strconv.Itoa(stats.TotalLikes),
		strconv.Itoa(stats.AvgLength),
	}}
	return renderTable([]column{
		{header: "Total", align: alignRight},
		{header: "Top-level", align: alignRight},
		{header: "Replies", align: alignRight},
		{header: "Likes", align: alignRight},
		{header: "Avg length", align: alignRight},
	}, rows)
}

func renderCommentTable(list []comments.Comment) string {
	rows := make([][]string, 0, len(list))
	for _, c := range list {
		text := c.TranslatedText
		if text == "" {
			text = comments.PlainText(c)
		}
		rows = append(rows, []string{strconv.Itoa(c.LikeCount), c.AuthorDisplayName, truncateRunes(text, 240)})
	}
	return renderTable([]column{
		{header: "Likes", align: alignRight},
		{header: "Author"},
		{header: "Comment", wrap: 80},
	}, rows)
}

var sectionTitles = []struct {
	title string
	get   func(summary.Sections) string
}{
	{"audience likes", func(s summary.Sections) string { return s.UserLikes }},
	{"audience dislikes", func(s summary.Sections) string { return s.UserDislikes }},
	{"audience expectations", func(s summary.Sections) string { return s.UserExpectations }},
	{"suggested improvements", func(s summary.Sections) string { return s.Improvements }},
	{"audience profile", func(s summary.Sections) string { return s.UserProfile }},
}

func renderSummary(w io.Writer, report summary.Summary, colorize bool) {
	heading := fmt.Sprintf("%s summary (%d of %d comments)", titleCaser.String(string(report.Strategy)), report.AnalyzedComments, report.TotalComments)
	for _, line := range renderSectionHeader(heading, colorize) {
		fmt.Fprintln(w, line)
	}
	if report.BatchProcessed {
		kind := statusInfo
		if report.FailedBatches > 0 {
			kind = statusWarn
		}
		fmt.Fprintln(w, renderStatusLine("Batches", kind, fmt.Sprintf("%d (%d failed)", report.Batches, report.FailedBatches), colorize))
	}
	rows := make([][]string, 0, len(sectionTitles))
	for _, section := range sectionTitles {
		body := strings.TrimSpace(section.get(report.Sections))
		if body == "" {
			body = "-"
		}
		rows = append(rows, []string{titleCaser.String(section.title), body})
	}
	fmt.Fprintln(w, renderTable([]column{{header: "Section"}, {header: "Findings", wrap: 72}}, rows))
}

func renderCounters(counters jobs.Counters) string {
	values := map[string]int64{
		"started":   counters.Started,
		"completed": counters.Completed,
		"failed":    counters.Failed,
		"rejected":  counters.Rejected,
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{titleCaser.String(k), strconv.FormatInt(values[k], 10)})
	}
	return renderTable([]column{{header: "Jobs"}, {header: "Count", align: alignRight}}, rows)
}

func truncateRunes(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
