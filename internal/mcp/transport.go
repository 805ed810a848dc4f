package mcp

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"sync"
)

const maxLineSize = 10 << 20

// ErrLineTooLong is returned by ReadLine for a line longer than the limit.
// The line has been consumed; the next call reads the line after it.
var ErrLineTooLong = errors.New("request line too long")

type flusher interface {
	Flush() error
}

// Transport frames one JSON-RPC message per line.
type Transport struct {
	reader  *bufio.Reader
	line    []byte
	maxLine int
	writer  io.Writer
	mu      sync.Mutex
}

func NewTransport(r io.Reader, w io.Writer) *Transport {
	return &Transport{
		reader:  bufio.NewReaderSize(r, 64<<10),
		maxLine: maxLineSize,
		writer:  w,
	}
}

// ReadLine blocks until the next line is available and returns it without
// its line ending. The returned slice is only valid until the following
// call. Returns io.EOF at end of stream.
func (t *Transport) ReadLine() ([]byte, error) {
	t.line = t.line[:0]
	tooLong := false

	for {
		chunk, err := t.reader.ReadSlice('\n')
		if !tooLong {
			t.line = append(t.line, chunk...)
			if contentLen(t.line) > t.maxLine {
				tooLong = true
				t.line = t.line[:0]
			}
		}

		switch {
		case err == nil:
			if tooLong {
				return nil, ErrLineTooLong
			}
			return trimEOL(t.line), nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if tooLong {
				return nil, ErrLineTooLong
			}
			if len(t.line) == 0 {
				return nil, io.EOF
			}
			return trimEOL(t.line), nil
		default:
			return nil, err
		}
	}
}

func contentLen(line []byte) int {
	return len(trimEOL(line))
}

func trimEOL(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
	}
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line
}

// WriteResponse writes resp as a single line and flushes it.
func (t *Transport) WriteResponse(resp Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		data, err = json.Marshal(NewErrorResponse(resp.ID, NewInternalError("encode response: "+err.Error())))
		if err != nil {
			return err
		}
	}
	data = append(data, '\n')

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.writer.Write(data); err != nil {
		return err
	}
	if f, ok := t.writer.(flusher); ok {
		return f.Flush()
	}
	return nil
}
