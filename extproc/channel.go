// Package extproc models the line-oriented request/response protocol spoken
// with an external annotation tool.
//
// The protocol is split into two independently testable halves: a request
// writer that sends one sentence of token lines followed by a blank line, and
// a response reader that collects one tag line per token followed by a blank
// terminator. The Channel interface captures both halves; Process implements
// it over the pipes of a live subprocess, translating to and from the model's
// declared text encoding.
//
// Requests and responses are strictly synchronous, one sentence at a time:
// a Send is always followed by its Receive before the next Send, and a hung
// peer blocks the caller indefinitely. Callers needing bounded latency wrap
// the adapter with an external watchdog.
package extproc

import "fmt"

// Channel is one sentence-synchronous request/response connection to an
// external tool.
type Channel interface {
	// Send writes each token on its own line followed by a blank sentence
	// terminator, and flushes so the peer can start producing output.
	Send(tokens []string) error

	// Receive reads n response lines followed by the blank sentence
	// terminator. Encountering the terminator before n lines, or a
	// malformed terminator, is a *ProtocolError.
	Receive(n int) ([]string, error)

	// Close terminates the connection and releases the peer.
	Close() error
}

// ProtocolError reports a response that does not match the protocol: too few
// lines before the sentence terminator, a missing tag field, or a malformed
// terminator.
type ProtocolError struct {
	// Want is the number of response lines expected.
	Want int
	// Got is the number of lines read before the protocol broke.
	Got int
	// Line is the offending line, if any.
	Line string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol mismatch: want %d response lines, got %d (last line %q)",
		e.Want, e.Got, e.Line)
}
