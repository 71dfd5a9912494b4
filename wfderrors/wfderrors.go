// Package wfderrors defines the typed error kinds that cross the boundary
// between the core (rtsp/endpoint/wfdsession) and a connection owner
// (wfdserver, cmd/wfd-server, cmd/wfd-sink).
package wfderrors

import "github.com/pkg/errors"

// FramingError wraps a malformed start-line, a missing Content-Length where
// a body was implied, or an oversize receive buffer. Always fatal to the
// connection.
type FramingError struct {
	cause error
}

func NewFramingError(cause error) *FramingError { return &FramingError{cause} }
func (e *FramingError) Error() string            { return "rtsp framing error: " + e.cause.Error() }
func (e *FramingError) Unwrap() error             { return e.cause }
func (e *FramingError) ExitCode() int             { return 2 }

// ProtocolError covers a CSeq mismatch, an unknown CSeq on a response, or a
// message received while the session state machine forbids it (e.g. SETUP
// outside the Setup handshake phase). Always fatal.
type ProtocolError struct {
	msg string
}

func NewProtocolError(msg string) *ProtocolError { return &ProtocolError{msg} }
func (e *ProtocolError) Error() string            { return "wfd protocol error: " + e.msg }
func (e *ProtocolError) ExitCode() int             { return 3 }

// ErrUnknownStatus names an attempt to serialize a Response with a status
// code outside the fixed RTSP status table — a programmer error, fatal.
// rtsp.Encode reports this condition with rtsp.ErrUnknownStatus, not with
// this value.
var ErrUnknownStatus = errors.New("wfd: unknown status code on emit")

// TransportError wraps a stream read/write failure. Terminal: the session
// state machine that observes it must be discarded, never reused.
type TransportError struct {
	cause error
}

func NewTransportError(cause error) *TransportError { return &TransportError{cause} }
func (e *TransportError) Error() string              { return "wfd transport error: " + e.cause.Error() }
func (e *TransportError) Unwrap() error               { return e.cause }
func (e *TransportError) ExitCode() int               { return 1 }

// ExitCoder is implemented by FramingError, ProtocolError and
// TransportError (not by the ErrUnknownStatus value), letting a CLI
// main package choose its process exit code without a type switch.
type ExitCoder interface {
	error
	ExitCode() int
}
