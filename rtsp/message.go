// Package rtsp implements the wire codec and typed message model for the
// RTSP/1.0 text protocol as used by WFD (Wi-Fi Display / Miracast) session
// control. It knows nothing about WFD's handshake semantics — only how to
// turn bytes into Requests/Responses and back.
package rtsp

import (
	"strconv"

	"github.com/pkg/errors"
)

// Version is the only protocol version this package understands.
const Version = "RTSP/1.0"

// Method is an RTSP request method token.
type Method string

// Methods exercised by the WFD handshake.
const (
	OPTIONS       Method = "OPTIONS"
	GetParameter  Method = "GET_PARAMETER"
	SetParameter  Method = "SET_PARAMETER"
	SETUP         Method = "SETUP"
	PLAY          Method = "PLAY"
	PAUSE         Method = "PAUSE"
	TEARDOWN      Method = "TEARDOWN"
)

// Well-known header names. The codec treats all header values as opaque
// strings; these constants exist to avoid typos at call sites.
const (
	HeaderCSeq          = "CSeq"
	HeaderContentType   = "Content-Type"
	HeaderContentLength = "Content-Length"
	HeaderRequire       = "Require"
	HeaderPublic        = "Public"
	HeaderTransport     = "Transport"
	HeaderSession       = "Session"
)

// HeaderPair is one name/value entry as it appears on the wire.
type HeaderPair struct {
	Name  string
	Value string
}

// Header is an ordered header mapping. Unlike a plain Go map, iteration and
// serialization order always match insertion order, which spec-conformance
// tests depend on. A zero-value Header is ready to use; Message constructors
// always allocate a fresh Header rather than sharing a package-level default
// (a single shared empty mapping across messages is a known aliasing hazard).
type Header struct {
	pairs []HeaderPair
	index map[string]int // name -> position in pairs, last write wins
}

// NewHeader returns an empty, ready-to-use Header.
func NewHeader() Header {
	return Header{index: make(map[string]int)}
}

// Set replaces any existing value for name, or appends a new pair, keeping
// the original insertion position on replace.
func (h *Header) Set(name, value string) {
	if h.index == nil {
		h.index = make(map[string]int)
	}
	if i, ok := h.index[name]; ok {
		h.pairs[i].Value = value
		return
	}
	h.index[name] = len(h.pairs)
	h.pairs = append(h.pairs, HeaderPair{Name: name, Value: value})
}

// Add appends name/value as a new pair even if name already exists,
// matching RTSP's tolerance of duplicate header lines; Get and the index
// always resolve to the most recently added value.
func (h *Header) Add(name, value string) {
	if h.index == nil {
		h.index = make(map[string]int)
	}
	h.index[name] = len(h.pairs)
	h.pairs = append(h.pairs, HeaderPair{Name: name, Value: value})
}

// Get returns the value for name, or "" if absent.
func (h *Header) Get(name string) string {
	if h.index == nil {
		return ""
	}
	if i, ok := h.index[name]; ok {
		return h.pairs[i].Value
	}
	return ""
}

// Del removes name from the header, if present.
func (h *Header) Del(name string) {
	if h.index == nil {
		return
	}
	if _, ok := h.index[name]; !ok {
		return
	}
	kept := h.pairs[:0]
	for _, p := range h.pairs {
		if p.Name != name {
			kept = append(kept, p)
		}
	}
	h.pairs = kept
	h.index = make(map[string]int, len(kept))
	for i, p := range kept {
		h.index[p.Name] = i
	}
}

// Pairs returns the header entries in insertion order. The returned slice
// must not be mutated by the caller.
func (h *Header) Pairs() []HeaderPair {
	return h.pairs
}

// Content is an RTSP message body paired with its media type. Attaching a
// Content to a Message with SetContent keeps Content-Type/Content-Length in
// the header in sync; assigning the Content field directly does not touch
// the header.
type Content struct {
	MediaType string
	Data      []byte
}

// Message is implemented by *Request and *Response.
type Message interface {
	header() *Header
	content() *Content
	statusLine() string
}

// CSeq returns the message's CSeq header as an integer, and whether it was
// present and well-formed.
func CSeq(m Message) (int, bool) {
	v := m.header().Get(HeaderCSeq)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SetCSeq stamps the message's CSeq header.
func SetCSeq(m Message, cseq int) {
	m.header().Set(HeaderCSeq, strconv.Itoa(cseq))
}

// SetContent attaches content to m, setting Content-Type/Content-Length.
// Passing nil clears any existing content and its headers.
func SetContent(m Message, c *Content) {
	switch r := m.(type) {
	case *Request:
		r.Content = c
	case *Response:
		r.Content = c
	}
	h := m.header()
	if c == nil {
		h.Del(HeaderContentType)
		h.Del(HeaderContentLength)
		return
	}
	h.Set(HeaderContentType, c.MediaType)
	h.Set(HeaderContentLength, strconv.Itoa(len(c.Data)))
}

// Request is an RTSP request message.
type Request struct {
	Method  Method
	URL     string
	Version string
	Header  Header
	Content *Content
}

// NewRequest constructs a Request with a fresh header and the URL defaulted
// to "*" for methods that carry no target resource.
func NewRequest(method Method, url string) *Request {
	if url == "" {
		url = "*"
	}
	return &Request{Method: method, URL: url, Version: Version, Header: NewHeader()}
}

func (r *Request) header() *Header    { return &r.Header }
func (r *Request) content() *Content  { return r.Content }
func (r *Request) statusLine() string { return string(r.Method) + " " + r.URL + " " + r.Version }

// Response is an RTSP response message. Reason is never stored; it is
// derived from Status via the fixed status table at serialization time.
type Response struct {
	Status  int
	Version string
	Header  Header
	Content *Content
}

// NewResponse constructs a Response with a fresh header.
func NewResponse(status int) *Response {
	return &Response{Status: status, Version: Version, Header: NewHeader()}
}

func (r *Response) header() *Header   { return &r.Header }
func (r *Response) content() *Content { return r.Content }

func (r *Response) statusLine() string {
	reason, ok := ReasonPhrase(r.Status)
	if !ok {
		// Encode rejects this before it ever reaches the wire; statusLine is
		// only called from a code path that has already validated Status.
		reason = "Unknown"
	}
	return r.Version + " " + strconv.Itoa(r.Status) + " " + reason
}

// reasonPhrases is the fixed RTSP status-code table from RFC 2326 §7.1.1,
// as used by WFD (status 250 is the WFD-specific "Low on Storage Space").
var reasonPhrases = map[int]string{
	100: "Continue",
	200: "OK",
	201: "Created",
	250: "Low on Storage Space",
	300: "Multiple Choices",
	301: "Moved Permanently",
	302: "Moved Temporarily",
	303: "See Other",
	304: "Not Modified",
	305: "Use Proxy",
	400: "Bad Request",
	401: "Unauthorized",
	402: "Payment Required",
	403: "Forbidden",
	404: "Not Found",
	405: "Method Not Allowed",
	406: "Not Acceptable",
	407: "Proxy Authentication Required",
	408: "Request Time-out",
	410: "Gone",
	411: "Length Required",
	412: "Precondition Failed",
	413: "Request Entity Too Large",
	414: "Request-URI Too Large",
	415: "Unsupported Media Type",
	451: "Parameter Not Understood",
	452: "Conference Not Found",
	453: "Not Enough Bandwidth",
	454: "Session Not Found",
	455: "Method Not Valid in This State",
	456: "Header Field Not Valid for Resource",
	457: "Invalid Range",
	458: "Parameter Is Read-Only",
	459: "Aggregate operation not allowed",
	460: "Only aggregate operation allowed",
	461: "Unsupported transport",
	462: "Destination unreachable",
	463: "Key management Failure",
	500: "Internal Server Error",
	501: "Not Implemented",
	502: "Bad Gateway",
	503: "Service Unavailable",
	504: "Gateway Time-out",
	505: "RTSP Version not supported",
	551: "Option not supported",
}

// ReasonPhrase looks up the reason phrase for an RTSP status code.
func ReasonPhrase(status int) (string, bool) {
	phrase, ok := reasonPhrases[status]
	return phrase, ok
}

// ErrUnknownStatus is returned by Encode when a Response carries a status
// code absent from the fixed table — a programmer error, never a wire
// condition.
var ErrUnknownStatus = errors.New("rtsp: unknown status code")
