package sse

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// Reader reads record lines from a source io.Reader while simultaneously
// writing all raw bytes verbatim to a destination io.Writer.
//
// ┌──────────────────┐
// │ source io.Reader │
// └──────────────────┘
// │
// ▼
// ┌──────────────────┐   ┌───────────────────────┐
// │   Reader.Next()  │──▶│ destination io.Writer │
// └──────────────────┘   └───────────────────────┘
// │
// ▼
// ┌──────────────────┐
// │       Line       │
// └──────────────────┘
//
// Blank lines, comment lines and the DoneSentinel are consumed (and teed) but
// never returned. The Reader does not stop at the sentinel: anything after it
// is still read until the source is exhausted.
type Reader struct {
	src     *errTracker
	scanner *bufio.Scanner
	dest    io.Writer

	// lastRaw is the most recent line scanned, skipped or not.
	lastRaw string

	// partial is set when the last token was not terminated by a newline.
	partial bool
}

// errTracker remembers the first non-EOF error returned by the source.
// bufio.Scanner still hands out the bytes buffered before such an error as
// a final token, which must not be mistaken for a complete line.
type errTracker struct {
	r   io.Reader
	err error
}

func (t *errTracker) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && t.err == nil {
		t.err = err
	}
	return n, err
}

// NewTeeReader returns a Reader that parses lines from src and writes all raw
// bytes through to dest. A nil dest discards them.
func NewTeeReader(src io.Reader, dest io.Writer) *Reader {
	if dest == nil {
		dest = io.Discard
	}

	r := &Reader{
		src:  &errTracker{r: src},
		dest: dest,
	}

	r.scanner = bufio.NewScanner(r.src)
	r.scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	r.scanner.Split(r.splitLines)

	return r
}

// splitLines is bufio.ScanLines that also records whether the token it
// returns ended with a newline.
func (r *Reader) splitLines(data []byte, atEOF bool) (int, []byte, error) {
	advance, token, err := bufio.ScanLines(data, atEOF)
	r.partial = token != nil && data[advance-1] != '\n'
	return advance, token, err
}

// Next returns the next record line. It blocks until a full line is available.
// Next returns nil, nil when the source is exhausted.
func (r *Reader) Next() (*Line, error) {
	for r.scanner.Scan() {
		raw := r.scanner.Text()
		r.lastRaw = raw

		if r.partial {
			if _, err := io.WriteString(r.dest, raw); err != nil {
				return nil, err
			}

			// A fragment cut short by a failing source is not a record.
			if r.src.err != nil {
				return nil, r.src.err
			}
		} else if _, err := io.WriteString(r.dest, raw+"\n"); err != nil {
			// bufio.Scanner strips the newline from Scan() so we reinsert it here.
			return nil, err
		}

		// Lines starting with ':' are keep-alive comments.
		if strings.HasPrefix(raw, ":") {
			continue
		}

		data, ok := Payload(raw)
		if !ok {
			continue
		}

		return &Line{Raw: raw, Data: data}, nil
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	return nil, nil
}

// LastRaw returns the last line read from the source, whether or not it was
// returned by Next. After a source failure it holds the unterminated fragment
// received before the failure, if any. It is empty before the first line
// arrives.
func (r *Reader) LastRaw() string {
	return r.lastRaw
}

// Payload strips the data field prefix from raw and trims whitespace. It
// reports false when nothing is left, when the content is the DoneSentinel,
// or when the line carries a non-data SSE field (event, id, retry).
func Payload(raw string) (string, bool) {
	data := strings.TrimSpace(raw)

	if rest, ok := strings.CutPrefix(data, dataField); ok {
		data = strings.TrimSpace(rest)
	} else if isNonDataField(data) {
		return "", false
	}

	if data == "" || data == DoneSentinel {
		return "", false
	}
	return data, true
}

// isNonDataField reports whether line is an "event:", "id:" or "retry:" field.
// These carry no record payload for chat-completion streams.
func isNonDataField(line string) bool {
	for _, field := range []string{"event:", "id:", "retry:"} {
		if strings.HasPrefix(line, field) {
			return true
		}
	}
	return false
}
