package endpoint

import (
	"github.com/bepec/wfd-toolbox/rtsp"
	"github.com/bepec/wfd-toolbox/wfderrors"
)

// ResponseHandler is invoked once the response matching a previously sent
// request arrives.
type ResponseHandler func(req *rtsp.Request, resp *rtsp.Response)

// Writer is the minimal non-blocking write capability Async needs; net.Conn
// satisfies it.
type Writer interface {
	Write([]byte) (int, error)
}

// pendingEntry is one row of the pending-request table: the request that
// was sent, and the continuation to run once its response arrives. Mirrors
// original_source/twisted_wfd_server.py's self.pendingRequests[cseq] =
// (request, responseHandler).
type pendingEntry struct {
	request *rtsp.Request
	handler ResponseHandler
}

// Async is a single-threaded, event-driven Endpoint. It never blocks: the
// caller's event loop feeds it bytes via DataReceived, which frames zero or
// more messages and dispatches each inline. Grounded on
// original_source/twisted_wfd_server.py's WfdProtocol.dataReceived /
// _sendRequest / _handleRequest / _handleResponse, reworked from Twisted's
// callback style into an explicit pending-request table, since Go has no
// implicit reactor loop to hang a Deferred off of.
type Async struct {
	w        Writer
	receiver Receiver

	buf     []byte
	cseq    int
	pending map[int]pendingEntry

	// RequestHandler is invoked for every inbound request once a
	// Receiver-produced response has been sent. Optional; used by callers
	// that want to observe completed request/response round trips (e.g. the
	// wfdsession state machine advancing its phase).
	RequestHandler func(req *rtsp.Request, resp *rtsp.Response)
}

// NewAsync constructs an Async endpoint writing to w and dispatching
// request handling to receiver.
func NewAsync(w Writer, receiver Receiver) *Async {
	return &Async{
		w:        w,
		receiver: receiver,
		pending:  make(map[int]pendingEntry),
	}
}

// SendRequest stamps req's CSeq, writes it immediately, and registers a
// continuation in the pending-request table; it returns without waiting for
// the response.
func (a *Async) SendRequest(req *rtsp.Request, onResponse ResponseHandler) error {
	rtsp.SetCSeq(req, a.cseq)
	if err := a.write(req); err != nil {
		return wfderrors.NewTransportError(err)
	}
	a.pending[a.cseq] = pendingEntry{request: req, handler: onResponse}
	a.cseq++
	return nil
}

// DataReceived appends data to the retained buffer and repeatedly extracts
// framed messages, dispatching each to the request or response path based
// on its variant, until no further complete message remains.
func (a *Async) DataReceived(data []byte) error {
	a.buf = append(a.buf, data...)

	for {
		msg, consumed, err := rtsp.Decode(a.buf)
		if err != nil {
			return wfderrors.NewFramingError(err)
		}
		if msg == nil {
			return nil
		}
		a.buf = a.buf[consumed:]

		switch m := msg.(type) {
		case *rtsp.Request:
			if err := a.handleRequest(m); err != nil {
				return err
			}
		case *rtsp.Response:
			if err := a.handleResponse(m); err != nil {
				return err
			}
		}
	}
}

func (a *Async) handleRequest(req *rtsp.Request) error {
	resp, procErr := a.receiver.ProcessRequest(req)
	if procErr != nil {
		return procErr
	}
	cseq, _ := rtsp.CSeq(req)
	rtsp.SetCSeq(resp, cseq)
	if err := a.write(resp); err != nil {
		return wfderrors.NewTransportError(err)
	}
	if a.RequestHandler != nil {
		a.RequestHandler(req, resp)
	}
	return nil
}

func (a *Async) handleResponse(resp *rtsp.Response) error {
	cseq, ok := rtsp.CSeq(resp)
	if !ok {
		return wfderrors.NewProtocolError("response missing CSeq")
	}
	entry, ok := a.pending[cseq]
	if !ok {
		return wfderrors.NewProtocolError("response for unknown CSeq")
	}
	delete(a.pending, cseq)

	a.receiver.ProcessResponse(resp, entry.request.Method)
	if entry.handler != nil {
		entry.handler(entry.request, resp)
	}
	return nil
}

func (a *Async) write(m rtsp.Message) error {
	data, err := rtsp.Encode(m)
	if err != nil {
		return err
	}
	_, err = a.w.Write(data)
	return err
}
