package tuitest

import (
	"bytes"
	"io"
)

// terminalQuery pairs a capability query a TUI may emit on startup with the
// reply a real terminal would send back.
type terminalQuery struct {
	query []byte
	reply []byte
}

var terminalQueries = []terminalQuery{
	{[]byte("\x1b[6n"), []byte("\x1b[1;1R")},
	{[]byte("\x1b]10;?\x07"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x07")},
	{[]byte("\x1b]10;?\x1b\\"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x1b\\")},
	{[]byte("\x1b]11;?\x07"), []byte("\x1b]11;rgb:0000/0000/0000\x07")},
	{[]byte("\x1b]11;?\x1b\\"), []byte("\x1b]11;rgb:0000/0000/0000\x1b\\")},
}

const responderTail = 64

// terminalResponder answers terminal queries so programs that wait for a
// reply do not stall under the harness.
type terminalResponder struct {
	w   io.Writer
	buf []byte
}

func newTerminalResponder(w io.Writer) *terminalResponder {
	return &terminalResponder{w: w, buf: make([]byte, 0, 4*responderTail)}
}

func (tr *terminalResponder) Process(chunk []byte) {
	tr.buf = append(tr.buf, chunk...)
	for tr.answerNext() {
	}
	// A query can span reads, so a short tail is carried over.
	if len(tr.buf) > 4*responderTail {
		tr.buf = append(tr.buf[:0], tr.buf[len(tr.buf)-responderTail:]...)
	}
}

// answerNext replies to the earliest pending query in the buffer.
func (tr *terminalResponder) answerNext() bool {
	first, match := -1, terminalQuery{}
	for _, q := range terminalQueries {
		if idx := bytes.Index(tr.buf, q.query); idx >= 0 && (first < 0 || idx < first) {
			first, match = idx, q
		}
	}
	if first < 0 {
		return false
	}
	tr.buf = tr.buf[first+len(match.query):]
	_, _ = tr.w.Write(match.reply)
	return true
}
