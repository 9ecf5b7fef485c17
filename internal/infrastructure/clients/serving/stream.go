package serving

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/riversideu/studentrisk/backend/internal/domain/providers"
)

// sseIterator decodes server-sent events from a streaming invocation body.
// Lines without a data prefix are ignored; "[DONE]" and stream exhaustion
// both surface as io.EOF.
type sseIterator struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	closed  bool
}

func newSSEIterator(body io.ReadCloser) *sseIterator {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &sseIterator{body: body, scanner: scanner}
}

func (it *sseIterator) Next() (providers.StreamEvent, error) {
	if it.closed {
		return providers.StreamEvent{}, io.EOF
	}

	for it.scanner.Scan() {
		line := strings.TrimSpace(it.scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}
		if data == "[DONE]" {
			return providers.StreamEvent{}, io.EOF
		}

		var event providers.StreamEvent
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			// Malformed chunks are skipped rather than killing the stream.
			continue
		}
		return event, nil
	}

	if err := it.scanner.Err(); err != nil {
		return providers.StreamEvent{}, err
	}
	return providers.StreamEvent{}, io.EOF
}

func (it *sseIterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	return it.body.Close()
}
