package engine

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/clpipe/searchusage/internal/types"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const readBufferBytes = 64 << 10

var errBinary = errors.New("binary content")

// matcher holds the immutable per-scan matching policy. It is shared by all
// workers; anything stateful is created per file.
type matcher struct {
	term       string
	fold       bool
	skipBinary bool
}

func newMatcher(cfg Config) matcher {
	m := matcher{
		term:       cfg.Term,
		fold:       cfg.CaseInsensitive,
		skipBinary: cfg.SkipBinary,
	}
	if m.fold {
		m.term = newFolder().String(m.term)
	}
	return m
}

// newFolder returns a Unicode-aware lowercaser. Casers carry state and must
// not be shared between goroutines.
func newFolder() cases.Caser {
	return cases.Lower(language.Und)
}

// scanFile reads the file at abs and returns a match for every line that
// contains the term, reported under rel. On a read failure the matches found
// before the failure are returned together with the error.
func (m matcher) scanFile(abs, rel string) ([]types.UsageMatch, error) {
	f, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReaderSize(f, readBufferBytes)
	if m.skipBinary {
		head, _ := br.Peek(binarySniffBytes)
		if looksBinary(head) {
			return nil, errBinary
		}
	}

	var folder cases.Caser
	if m.fold {
		folder = newFolder()
	}

	var out []types.UsageMatch
	lr := lineReader{br: br}
	line := 0
	for {
		b, err := lr.next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		line++
		text := decodeLine(b)
		haystack := text
		if m.fold {
			haystack = folder.String(text)
		}
		if strings.Contains(haystack, m.term) {
			out = append(out, types.UsageMatch{Path: rel, Line: line, Text: text})
		}
	}
}

// decodeLine converts raw bytes to a string, dropping byte runs that are not
// valid UTF-8.
func decodeLine(b []byte) string {
	return strings.ToValidUTF8(string(b), "")
}

// lineReader splits a stream on universal newlines: "\n", "\r\n" and a lone
// "\r" each end a line. Lines of any length are returned whole, without the
// terminator, and a final unterminated line is still returned.
type lineReader struct {
	br     *bufio.Reader
	buf    []byte
	skipLF bool // previous line ended in "\r"; a following "\n" belongs to it
}

// next returns the next line. The slice is only valid until the following
// call. io.EOF is returned once the input is exhausted.
func (r *lineReader) next() ([]byte, error) {
	if r.skipLF {
		r.skipLF = false
		if b, err := r.br.Peek(1); err == nil && b[0] == '\n' {
			_, _ = r.br.Discard(1)
		}
	}
	r.buf = r.buf[:0]
	started := false
	for {
		if r.br.Buffered() == 0 {
			if _, err := r.br.Peek(1); err != nil {
				if err == io.EOF && started {
					return r.buf, nil
				}
				return nil, err
			}
		}
		started = true
		data, _ := r.br.Peek(r.br.Buffered())
		if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
			r.buf = append(r.buf, data[:i]...)
			r.skipLF = data[i] == '\r'
			_, _ = r.br.Discard(i + 1)
			return r.buf, nil
		}
		r.buf = append(r.buf, data...)
		_, _ = r.br.Discard(len(data))
	}
}
