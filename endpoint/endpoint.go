// Package endpoint owns the byte stream side of an RTSP connection: framing
// incoming bytes into rtsp.Messages, assigning/validating CSeq, and routing
// to a caller-supplied Receiver. Two variants are provided — Sync (blocking,
// one goroutine per connection) and Async (event-driven, non-blocking) — so
// that a wfdsession state machine written against Receiver is portable
// across both.
package endpoint

import (
	"bufio"
	"net"
	"sync"

	"github.com/bepec/wfd-toolbox/rtsp"
	"github.com/bepec/wfd-toolbox/wfderrors"
)

// Receiver is the capability a session state machine exposes to an
// Endpoint. It mirrors original_source/rtsp.py's duck-typed
// process_request/process_response pair, formalized as a Go interface the
// way rtsp.go's HandlerFunc formalizes a single-method callback.
type Receiver interface {
	// ProcessRequest handles an inbound request and returns the response to
	// send back. The response's CSeq is stamped by the Endpoint, not the
	// Receiver. A non-nil error means the request violated the protocol
	// (e.g. SETUP received out of handshake order) — the Endpoint sends no
	// response and surfaces the error as connection-fatal.
	ProcessRequest(req *rtsp.Request) (*rtsp.Response, error)
	// ProcessResponse handles an inbound response matched to the request
	// that elicited it (method is the original request's method, since a
	// Response alone carries no method).
	ProcessResponse(resp *rtsp.Response, method rtsp.Method)
}

// Sync is a blocking, per-connection Endpoint. send_request and
// wait_for_request block on the underlying net.Conn until a full message has
// been framed. At most one of either may be in flight at a time — callers
// must serialize their own calls, exactly as original_source/rtsp.py's
// RtspEndpoint does with a single socket.
type Sync struct {
	conn     net.Conn
	reader   *bufio.Reader
	receiver Receiver

	mu     sync.Mutex // guards writes, as rtsp.go's Conn does
	buf    []byte     // undelivered bytes retained across operations
	cseq   int        // next CSeq this endpoint will stamp on an outgoing request
}

// NewSync constructs a Sync endpoint over conn, dispatching to receiver.
func NewSync(conn net.Conn, receiver Receiver) *Sync {
	return &Sync{
		conn:     conn,
		reader:   bufio.NewReader(conn),
		receiver: receiver,
	}
}

// NextCSeq returns the CSeq that will be stamped on the next outgoing
// request, i.e. the count of requests already sent.
func (e *Sync) NextCSeq() int { return e.cseq }

// SendRequest stamps req's CSeq, writes it, and blocks until the matching
// response is framed. A CSeq mismatch is a fatal ProtocolError.
func (e *Sync) SendRequest(req *rtsp.Request) (*rtsp.Response, error) {
	rtsp.SetCSeq(req, e.cseq)
	if err := e.write(req); err != nil {
		return nil, wfderrors.NewTransportError(err)
	}

	resp, err := e.readResponse()
	if err != nil {
		return nil, err
	}

	got, ok := rtsp.CSeq(resp)
	if !ok || got != e.cseq {
		return nil, wfderrors.NewProtocolError("CSeq mismatch on response")
	}

	e.cseq++
	e.receiver.ProcessResponse(resp, req.Method)
	return resp, nil
}

// WaitForRequest blocks until a request is framed, dispatches it to the
// Receiver, stamps the resulting response's CSeq from the request, and
// writes it back.
func (e *Sync) WaitForRequest() (*rtsp.Request, error) {
	req, err := e.readRequest()
	if err != nil {
		return nil, err
	}

	resp, procErr := e.receiver.ProcessRequest(req)
	if procErr != nil {
		return nil, procErr
	}
	cseq, _ := rtsp.CSeq(req)
	rtsp.SetCSeq(resp, cseq)

	if err := e.write(resp); err != nil {
		return nil, wfderrors.NewTransportError(err)
	}
	return req, nil
}

// Teardown closes the underlying connection. Safe to call after a graceful
// TEARDOWN response has been flushed, or on any fatal error path.
func (e *Sync) Teardown() error {
	return e.conn.Close()
}

// readResponse re-invokes the codec on bytes already buffered before
// blocking on the socket for more.
func (e *Sync) readResponse() (*rtsp.Response, error) {
	for {
		msg, consumed, err := rtsp.Decode(e.buf)
		if err != nil {
			return nil, wfderrors.NewFramingError(err)
		}
		if msg != nil {
			resp, ok := msg.(*rtsp.Response)
			if !ok {
				return nil, wfderrors.NewProtocolError("expected response, got request")
			}
			e.buf = e.buf[consumed:]
			return resp, nil
		}
		if err := e.fill(); err != nil {
			return nil, err
		}
	}
}

func (e *Sync) readRequest() (*rtsp.Request, error) {
	for {
		msg, consumed, err := rtsp.Decode(e.buf)
		if err != nil {
			return nil, wfderrors.NewFramingError(err)
		}
		if msg != nil {
			req, ok := msg.(*rtsp.Request)
			if !ok {
				return nil, wfderrors.NewProtocolError("expected request, got response")
			}
			e.buf = e.buf[consumed:]
			return req, nil
		}
		if err := e.fill(); err != nil {
			return nil, err
		}
	}
}

// fill reads more bytes from the socket into the retained buffer.
func (e *Sync) fill() error {
	chunk := make([]byte, 4096)
	n, err := e.reader.Read(chunk)
	if n > 0 {
		e.buf = append(e.buf, chunk[:n]...)
	}
	if err != nil {
		return wfderrors.NewTransportError(err)
	}
	return nil
}

func (e *Sync) write(m rtsp.Message) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	data, err := rtsp.Encode(m)
	if err != nil {
		return err
	}
	_, err = e.conn.Write(data)
	return err
}
