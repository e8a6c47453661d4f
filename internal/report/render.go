package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/clpipe/searchusage/internal/types"
	"github.com/olekukonko/tablewriter"
)

const (
	ansiHighlight = "\x1b[1;31m"
	ansiReset     = "\x1b[0m"
)

// PrintOptions controls human-readable rendering.
type PrintOptions struct {
	// Color highlights occurrences of Term in each line.
	Color           bool
	Term            string
	CaseInsensitive bool
}

// Summary is the footer printed after a scan when statistics are requested.
type Summary struct {
	Matches      int
	FilesScanned int
	FilesSkipped int
	Duration     time.Duration
}

// FormatMatch renders m as "path:line: text" with trailing whitespace removed.
func FormatMatch(m types.UsageMatch) string {
	return strings.TrimRightFunc(fmt.Sprintf("%s:%d: %s", m.Path, m.Line, m.Text), unicode.IsSpace)
}

// PrintText writes one FormatMatch line per match in the given order.
func PrintText(w io.Writer, matches []types.UsageMatch, opts PrintOptions) error {
	for _, m := range matches {
		line := FormatMatch(m)
		if opts.Color && opts.Term != "" {
			line = formatHighlighted(m, opts)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func formatHighlighted(m types.UsageMatch, opts PrintOptions) string {
	text := strings.TrimRightFunc(m.Text, unicode.IsSpace)
	prefix := fmt.Sprintf("%s:%d: ", m.Path, m.Line)
	if text == "" {
		return strings.TrimRightFunc(prefix, unicode.IsSpace)
	}
	return prefix + Highlight(text, opts.Term, opts.CaseInsensitive, ansiHighlight, ansiReset)
}

// Highlight wraps every occurrence of term in text with open/close. When
// fold is set, occurrences are located case-insensitively; lines whose
// lowercase form changes byte length are returned unmodified.
func Highlight(text, term string, fold bool, open, close string) string {
	return HighlightFunc(text, term, fold, func(s string) string { return open + s + close })
}

// HighlightFunc is Highlight with each occurrence rewritten by mark.
func HighlightFunc(text, term string, fold bool, mark func(string) string) string {
	if term == "" {
		return text
	}
	haystack, needle := text, term
	if fold {
		haystack, needle = strings.ToLower(text), strings.ToLower(term)
		if len(haystack) != len(text) {
			return text
		}
	}
	var sb strings.Builder
	pos := 0
	for {
		i := strings.Index(haystack[pos:], needle)
		if i < 0 {
			break
		}
		start := pos + i
		end := start + len(needle)
		sb.WriteString(text[pos:start])
		sb.WriteString(mark(text[start:end]))
		pos = end
	}
	sb.WriteString(text[pos:])
	return sb.String()
}

// PrintTable renders matches as a bordered table.
func PrintTable(w io.Writer, matches []types.UsageMatch) error {
	if len(matches) == 0 {
		_, err := fmt.Fprintln(w, "No matches found")
		return err
	}
	table := tablewriter.NewWriter(w)
	table.Header("Path", "Line", "Text")
	for _, m := range matches {
		if err := table.Append([]string{m.Path, strconv.Itoa(m.Line), strings.TrimSpace(m.Text)}); err != nil {
			return err
		}
	}
	return table.Render()
}

// PrintSummary writes the statistics footer.
func PrintSummary(w io.Writer, s Summary) {
	fmt.Fprintf(w, "Matches: %d\n", s.Matches)
	fmt.Fprintf(w, "Files scanned: %d\n", s.FilesScanned)
	if s.FilesSkipped > 0 {
		fmt.Fprintf(w, "Files skipped: %d\n", s.FilesSkipped)
	}
	if s.Duration > 0 {
		fmt.Fprintf(w, "Scan duration: %.2fs\n", s.Duration.Seconds())
	}
}

// WriteJSON pretty-prints matches as a JSON array. A nil slice is written as
// [] rather than null.
func WriteJSON(w io.Writer, matches []types.UsageMatch) error {
	if matches == nil {
		matches = []types.UsageMatch{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(matches)
}
