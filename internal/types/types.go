package types

import "strconv"

// UsageMatch describes one line of a file that contains the search term.
// Path is relative to the scan root and always uses forward slashes; Line is
// 1-based; Text is the line content without its trailing newline.
type UsageMatch struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

// Location renders the match position as "path:line".
func (m UsageMatch) Location() string {
	return m.Path + ":" + strconv.Itoa(m.Line)
}
