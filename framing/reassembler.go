package framing

import (
	"bytes"
)

const newline = '\n'

// Reassembler turns arbitrary input chunks into complete newline terminated lines.
// The unterminated tail is kept until a later chunk completes it.
type Reassembler struct {
	pending []byte
}

// Feed appends chunk to the pending buffer and returns every completed, non-empty line in arrival order.
func (r *Reassembler) Feed(chunk []byte) []string {
	if len(chunk) == 0 {
		return nil
	}
	r.pending = append(r.pending, chunk...)
	var lines []string
	for {
		index := bytes.IndexByte(r.pending, newline)
		if index == -1 {
			break
		}
		if line := bytes.TrimSpace(r.pending[:index]); len(line) > 0 {
			lines = append(lines, string(line))
		}
		r.pending = r.pending[index+1:]
	}
	r.compact()
	return lines
}

// Flush returns the trimmed unterminated fragment, if any, and resets the buffer.
func (r *Reassembler) Flush() string {
	line := bytes.TrimSpace(r.pending)
	r.pending = nil
	return string(line)
}

// Pending returns size of the buffered unterminated fragment
func (r *Reassembler) Pending() int {
	return len(r.pending)
}

// compact releases the consumed prefix once the buffer is drained or mostly consumed.
func (r *Reassembler) compact() {
	if len(r.pending) == 0 {
		r.pending = r.pending[:0:0]
		return
	}
	if cap(r.pending) > 4*len(r.pending) {
		r.pending = append([]byte(nil), r.pending...)
	}
}

// New creates a reassembler
func New() *Reassembler {
	return &Reassembler{}
}
