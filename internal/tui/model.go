package tui

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/clpipe/searchusage/internal/report"
	"github.com/clpipe/searchusage/internal/types"
)

var (
	tableBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	detailPaneBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true).
			Padding(0, 1)

	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("7"))

	emptyTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Align(lipgloss.Center)

	popupStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Background(lipgloss.Color("235")).
			Padding(1, 4)
)

const (
	defaultStatus = "q: quit | /: filter | j/k: navigate | y: copy location | Y: copy line | +/-: context | r: rescan"
	emptyStatus   = "q: quit | r: rescan"
	maxContext    = 20
)

// Options describes the search the browser is showing.
type Options struct {
	// Root is the directory match paths are relative to.
	Root            string
	Term            string
	CaseInsensitive bool
	// Rescan reruns the search with the same configuration. May be nil.
	Rescan func() ([]types.UsageMatch, error)
}

// Model is the bubbletea model for browsing a result set.
type Model struct {
	table         table.Model
	viewport      viewport.Model
	spinner       spinner.Model
	searchInput   textinput.Model
	opts          Options
	matches       []types.UsageMatch
	filtered      []types.UsageMatch // nil when no filter is active
	searchQuery   string
	searchMode    bool
	contextLines  int
	quitting      bool
	ready         bool
	scanning      bool
	showEmpty     bool
	width         int
	height        int
	lastScanTime  time.Time
	statusMessage string
	statusTimeout *time.Time
}

type matchesMsg []types.UsageMatch

type statusMsg string

type errMsg struct{ err error }

// NewModel initializes the browser over matches.
func NewModel(matches []types.UsageMatch, opts Options) Model {
	columns := []table.Column{
		{Title: "Path", Width: 40},
		{Title: "Line", Width: 6},
		{Title: "Text", Width: 60},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rowsFor(matches)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("15")).
		Bold(true).
		Padding(0, 1).
		Align(lipgloss.Left)
	s.Selected = lipgloss.NewStyle().
		Foreground(lipgloss.Color("232")).
		Background(lipgloss.Color("208")).
		Bold(true).
		Padding(0, 1)
	s.Cell = lipgloss.NewStyle().
		Padding(0, 1)
	t.SetStyles(s)

	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	ti := textinput.New()
	ti.Placeholder = "Filter by path or text..."
	ti.CharLimit = 100
	ti.Width = 50
	ti.Prompt = "/ "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))

	m := Model{
		table:        t,
		spinner:      sp,
		searchInput:  ti,
		opts:         opts,
		matches:      matches,
		showEmpty:    len(matches) == 0,
		contextLines: LoadPrefs().ContextLines,
		lastScanTime: time.Now(),
	}
	m.statusMessage = m.idleStatus()
	return m
}

func rowsFor(matches []types.UsageMatch) []table.Row {
	rows := make([]table.Row, len(matches))
	for i, u := range matches {
		rows[i] = table.Row{u.Path, fmt.Sprintf("%d", u.Line), strings.TrimSpace(u.Text)}
	}
	return rows
}

func (m *Model) idleStatus() string {
	if m.showEmpty && len(m.matches) == 0 {
		return emptyStatus
	}
	return defaultStatus
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *Model) rescan() tea.Cmd {
	rescan := m.opts.Rescan
	return func() tea.Msg {
		matches, err := rescan()
		if err != nil {
			return errMsg{err}
		}
		return matchesMsg(matches)
	}
}

// applyFilter narrows the table to matches whose path or text contains the
// current query, ignoring case.
func (m *Model) applyFilter() {
	if m.searchQuery == "" {
		m.filtered = nil
		m.rebuildTableRows()
		return
	}
	query := strings.ToLower(m.searchQuery)
	filtered := []types.UsageMatch{}
	for _, u := range m.matches {
		if strings.Contains(strings.ToLower(u.Path), query) || strings.Contains(strings.ToLower(u.Text), query) {
			filtered = append(filtered, u)
		}
	}
	m.filtered = filtered
	m.rebuildTableRows()
}

func (m *Model) clearFilter() {
	m.searchQuery = ""
	m.filtered = nil
	m.rebuildTableRows()
}

func (m *Model) rebuildTableRows() {
	display := m.displayMatches()
	m.table.SetRows(rowsFor(display))
	if m.table.Cursor() >= len(display) {
		m.table.SetCursor(0)
	}
	m.showEmpty = len(display) == 0
	m.updateViewportContent()
}

func (m *Model) displayMatches() []types.UsageMatch {
	if m.filtered != nil {
		return m.filtered
	}
	return m.matches
}

func (m *Model) selectedMatch() *types.UsageMatch {
	display := m.displayMatches()
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(display) {
		return nil
	}
	u := display[idx]
	return &u
}

func (m *Model) expandContext() {
	if m.contextLines < maxContext {
		m.contextLines += 2
		if m.contextLines > maxContext {
			m.contextLines = maxContext
		}
		m.updateViewportContent()
	}
}

func (m *Model) contractContext() {
	if m.contextLines > 1 {
		m.contextLines -= 2
		if m.contextLines < 1 {
			m.contextLines = 1
		}
		m.updateViewportContent()
	}
}

// readFileContext returns up to contextLines lines on either side of
// targetLine along with the number of the first returned line.
func readFileContext(path string, targetLine int, contextLines int) ([]string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	startLine := targetLine - contextLines
	if startLine < 1 {
		startLine = 1
	}
	endLine := targetLine + contextLines

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, strings.ToValidUTF8(scanner.Text(), ""))
		}
		if lineNum > endLine {
			break
		}
	}
	return lines, startLine, scanner.Err()
}

// highlightLine renders line with chroma using the lexer for filename. Lines
// of unknown file types are returned unchanged.
func highlightLine(line string, filename string) string {
	lexer := lexers.Match(filename)
	if lexer == nil {
		if ext := filepath.Ext(filename); ext != "" {
			lexer = lexers.Match("file" + ext)
		}
	}
	if lexer == nil {
		return line
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return line
	}

	iterator, err := lexer.Tokenise(nil, line)
	if err != nil {
		return line
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return line
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func (m *Model) updateViewportContent() {
	if !m.ready {
		return
	}
	u := m.selectedMatch()
	if u == nil {
		m.viewport.SetContent("")
		return
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s\n\n", titleStyle.Render("Match Details")))
	b.WriteString(fmt.Sprintf("%s %s\n", keyStyle.Render("Path:"), u.Path))
	b.WriteString(fmt.Sprintf("%s %d\n", keyStyle.Render("Line:"), u.Line))

	contextHint := fmt.Sprintf(" (+/- to expand/contract, showing %d lines)", m.contextLines*2+1)
	b.WriteString(fmt.Sprintf("\n%s%s\n", keyStyle.Render("Context:"), dimStyle.Render(contextHint)))

	abs := filepath.Join(m.opts.Root, filepath.FromSlash(u.Path))
	lines, startLine, err := readFileContext(abs, u.Line, m.contextLines)
	if err != nil || len(lines) == 0 {
		b.WriteString(m.markTerm(u.Text))
		m.viewport.SetContent(b.String())
		return
	}

	current := lipgloss.NewStyle().Background(lipgloss.Color("236"))
	for i, line := range lines {
		lineNum := startLine + i
		num := dimStyle.Render(fmt.Sprintf("%4d ", lineNum))
		if lineNum == u.Line {
			b.WriteString(num + current.Render(m.markTerm(line)) + "\n")
			continue
		}
		b.WriteString(num + highlightLine(line, u.Path) + "\n")
	}
	m.viewport.SetContent(b.String())
}

// markTerm emphasises occurrences of the search term in line.
func (m *Model) markTerm(line string) string {
	return report.HighlightFunc(line, m.opts.Term, m.opts.CaseInsensitive, func(s string) string {
		return matchStyle.Render(s)
	})
}

func (m *Model) setStatus(msg string, d time.Duration) {
	timeout := time.Now().Add(d)
	m.statusTimeout = &timeout
	m.statusMessage = msg
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.scanning {
			if msg.String() == "ctrl+c" {
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil
		}

		if m.searchMode {
			switch msg.String() {
			case "enter":
				m.searchQuery = m.searchInput.Value()
				m.searchMode = false
				m.searchInput.Blur()
				return m, nil
			case "esc":
				m.searchMode = false
				m.searchInput.Blur()
				m.searchInput.SetValue(m.searchQuery)
				m.applyFilter()
				return m, nil
			default:
				m.searchInput, cmd = m.searchInput.Update(msg)
				m.searchQuery = m.searchInput.Value()
				m.applyFilter()
				return m, cmd
			}
		}

		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "/":
			if len(m.matches) > 0 {
				m.searchMode = true
				m.searchInput.SetValue(m.searchQuery)
				m.searchInput.Focus()
				return m, textinput.Blink
			}
		case "esc":
			if m.searchQuery != "" {
				m.clearFilter()
				m.setStatus("Filter cleared", 3*time.Second)
				return m, nil
			}
		case "y":
			return m, m.copyLocation()
		case "Y":
			return m, m.copyLine()
		case "+", "=":
			m.expandContext()
			return m, m.savePrefs()
		case "-", "_":
			m.contractContext()
			return m, m.savePrefs()
		case "r":
			if m.opts.Rescan != nil {
				m.scanning = true
				return m, tea.Batch(m.spinner.Tick, m.rescan())
			}
		case "g", "home":
			m.table.GotoTop()
			m.updateViewportContent()
			return m, nil
		case "G", "end":
			m.table.GotoBottom()
			m.updateViewportContent()
			return m, nil
		case "ctrl+d", "pgdown":
			if !m.showEmpty {
				m.table.MoveDown(max(m.table.Height()/2, 1))
				m.updateViewportContent()
				return m, nil
			}
		case "ctrl+u", "pgup":
			if !m.showEmpty {
				m.table.MoveUp(max(m.table.Height()/2, 1))
				m.updateViewportContent()
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		usableWidth := m.width - 10
		lineWidth := 6
		remainingWidth := usableWidth - lineWidth
		pathWidth := int(float64(remainingWidth) * 0.4)
		textWidth := remainingWidth - pathWidth
		if pathWidth < 20 {
			pathWidth = 20
		}
		if textWidth < 20 {
			textWidth = 20
		}
		cols := m.table.Columns()
		cols[0].Width = pathWidth
		cols[1].Width = lineWidth
		cols[2].Width = textWidth
		m.table.SetColumns(cols)

		headerHeight := 1
		availableHeight := m.height - lipgloss.Height(statusStyle.Render("")) - headerHeight
		tableHeight := int(float64(availableHeight) * 0.45)
		viewportHeight := availableHeight - tableHeight - detailPaneBorderStyle.GetVerticalFrameSize() - 1

		m.table.SetWidth(m.width)
		m.table.SetHeight(tableHeight)
		if m.viewport.Height == 0 {
			m.viewport = viewport.New(m.width, viewportHeight)
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = viewportHeight
		}
		statusStyle = statusStyle.Width(m.width)

	case matchesMsg:
		m.matches = msg
		m.scanning = false
		m.lastScanTime = time.Now()
		if m.searchQuery != "" {
			m.applyFilter()
		} else {
			m.rebuildTableRows()
		}
		m.setStatus(fmt.Sprintf("Rescan complete - %d matches", len(m.matches)), 5*time.Second)

	case errMsg:
		m.scanning = false
		m.setStatus(fmt.Sprintf("Rescan failed: %v", msg.err), 5*time.Second)

	case statusMsg:
		m.setStatus(string(msg), 3*time.Second)

	case spinner.TickMsg:
		var spinCmd tea.Cmd
		m.spinner, spinCmd = m.spinner.Update(msg)
		if m.statusTimeout != nil && time.Now().After(*m.statusTimeout) {
			m.statusTimeout = nil
			m.statusMessage = m.idleStatus()
		}
		return m, spinCmd
	}

	if !m.quitting && !m.showEmpty {
		m.table, cmd = m.table.Update(msg)
	}
	m.updateViewportContent()
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}
	if m.scanning {
		content := fmt.Sprintf("%s  Searching for %q...\n\nPlease wait", m.spinner.View(), m.opts.Term)
		box := popupStyle.Width(55).Align(lipgloss.Center).Render(content)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}

	display := m.displayMatches()
	var header string
	switch {
	case len(m.matches) == 0:
		header = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(fmt.Sprintf("No usages of %q", m.opts.Term))
	case m.filtered != nil:
		header = fmt.Sprintf("Term: %q  |  Showing: %d/%d  [FILTER: '%s']", m.opts.Term, len(display), len(m.matches), m.searchQuery)
	default:
		header = fmt.Sprintf("Term: %q  |  Matches: %d  |  Files: %d", m.opts.Term, len(m.matches), countFiles(m.matches))
	}
	headerRender := lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 2).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("237")).
		Render(header)

	tableRender := tableBorderStyle.
		Width(m.width).
		Height(m.table.Height()).
		Render(m.table.View())

	var detail string
	if len(display) == 0 {
		emptyMsg := "Nothing to show.\n\nPress 'r' to rescan"
		if len(m.matches) > 0 {
			emptyMsg = "No matches pass the filter.\n\nPress 'Esc' to clear filter"
		}
		detail = lipgloss.Place(m.width, m.viewport.Height, lipgloss.Center, lipgloss.Center, emptyTextStyle.Render(emptyMsg))
	} else {
		detail = m.viewport.View()
	}
	detailRender := detailPaneBorderStyle.
		Width(m.width).
		Height(m.viewport.Height).
		Render(detail)

	var bottomBar string
	if m.searchMode {
		bar := lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("15")).
			Width(m.width).
			Padding(0, 1)
		bottomBar = bar.Render(m.searchInput.View() + fmt.Sprintf(" (%d matches)", len(display)))
	} else {
		timeInfo := "Searched: " + formatDuration(time.Since(m.lastScanTime)) + " ago"
		spacer := m.width - 4 - lipgloss.Width(m.statusMessage) - lipgloss.Width(timeInfo)
		if spacer < 1 {
			spacer = 1
		}
		bottomBar = statusStyle.
			Width(m.width).
			Padding(0, 2).
			Render(m.statusMessage + strings.Repeat(" ", spacer) + timeInfo)
	}

	return lipgloss.JoinVertical(lipgloss.Left, headerRender, tableRender, detailRender, bottomBar)
}

func countFiles(matches []types.UsageMatch) int {
	seen := map[string]struct{}{}
	for _, u := range matches {
		seen[u.Path] = struct{}{}
	}
	return len(seen)
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
