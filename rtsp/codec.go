package rtsp

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// MaxMessageSize bounds how large a single framed message may grow before
// Decode treats the buffer as a fatal framing error rather than waiting for
// more bytes, capping how much a stalled or malicious peer can make a
// connection buffer.
const MaxMessageSize = 64 * 1024

// ErrMessageTooLarge is returned by Decode when no complete message has
// been framed within MaxMessageSize bytes.
var ErrMessageTooLarge = errors.New("rtsp: message exceeds maximum size")

const crlfcrlf = "\r\n\r\n"

// Decode attempts to decode the longest leading complete message out of buf.
// It returns (nil, 0, nil) if the header terminator (or, once seen, the full
// body) has not arrived yet — this is the normal "need more bytes" signal,
// not an error. Framing never partially consumes a message: on any return
// consumed is either 0 or the exact length of one complete message.
func Decode(buf []byte) (Message, int, error) {
	if len(buf) > MaxMessageSize {
		idx := bytes.Index(buf[:MaxMessageSize], []byte(crlfcrlf))
		if idx < 0 {
			return nil, 0, ErrMessageTooLarge
		}
	}

	idx := bytes.Index(buf, []byte(crlfcrlf))
	if idx < 0 {
		return nil, 0, nil
	}
	headerEnd := idx + len(crlfcrlf)

	headBlock := string(buf[:idx])
	lines := strings.Split(headBlock, "\r\n")
	if len(lines) == 0 {
		return nil, 0, errors.New("rtsp: empty start-line")
	}
	startLine := lines[0]

	h := NewHeader()
	for _, line := range lines[1:] {
		name, value, ok := splitHeaderLine(line)
		if !ok {
			continue
		}
		h.Add(name, value)
	}

	contentLength := 0
	hasContentLength := false
	if v := h.Get(HeaderContentLength); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, 0, errors.Wrap(err, "rtsp: malformed Content-Length")
		}
		contentLength = n
		hasContentLength = true
	}
	if headerEnd+contentLength > MaxMessageSize {
		return nil, 0, ErrMessageTooLarge
	}

	var body []byte
	consumed := headerEnd
	if hasContentLength && contentLength > 0 {
		if len(buf) < headerEnd+contentLength {
			return nil, 0, nil // body not fully arrived yet
		}
		body = append([]byte(nil), buf[headerEnd:headerEnd+contentLength]...)
		consumed = headerEnd + contentLength
	}

	msg, err := parseStartLine(startLine, h, body)
	if err != nil {
		return nil, 0, err
	}
	return msg, consumed, nil
}

// splitHeaderLine splits on every occurrence of the literal two-character
// sequence `": "` and keeps only the first two resulting fields, matching
// original_source/rtsp.py's `line.split(": ")` / `split[0]`, `split[1]`
// header_pairs comprehension exactly. A value that itself contains `": "`
// therefore loses everything from the second occurrence onward (e.g.
// `"X-Note: a: b"` yields value `"a"`, not `"a: b"`) — a known quirk carried
// over deliberately, not a bug. Lines without the separator are silently
// ignored.
func splitHeaderLine(line string) (name, value string, ok bool) {
	parts := strings.Split(line, ": ")
	if len(parts) < 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// parseStartLine classifies and parses the start-line. A line whose first
// token begins with "RTSP" is a response; this four-byte check is the only
// disambiguation rule, since a request's first token is always a method
// name.
func parseStartLine(line string, h Header, body []byte) (Message, error) {
	if strings.HasPrefix(line, "RTSP") {
		return parseResponseLine(line, h, body)
	}
	return parseRequestLine(line, h, body)
}

func parseRequestLine(line string, h Header, body []byte) (*Request, error) {
	parts := strings.Split(line, " ")
	if len(parts) != 3 {
		return nil, errors.Errorf("rtsp: malformed request line %q", line)
	}
	r := &Request{
		Method:  Method(parts[0]),
		URL:     parts[1],
		Version: parts[2],
		Header:  h,
	}
	attachBody(r, h, body)
	return r, nil
}

func parseResponseLine(line string, h Header, body []byte) (*Response, error) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 {
		return nil, errors.Errorf("rtsp: malformed status line %q", line)
	}
	status, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, errors.Wrapf(err, "rtsp: malformed status code in %q", line)
	}
	r := &Response{
		Status:  status,
		Version: parts[0],
		Header:  h,
	}
	attachBody(r, h, body)
	return r, nil
}

func attachBody(m Message, h Header, body []byte) {
	if body == nil {
		return
	}
	switch v := m.(type) {
	case *Request:
		v.Content = &Content{MediaType: h.Get(HeaderContentType), Data: body}
	case *Response:
		v.Content = &Content{MediaType: h.Get(HeaderContentType), Data: body}
	}
}

// Encode serializes m into its canonical wire form: start-line, headers in
// insertion order, a blank CRLF-terminated line, then the body verbatim.
func Encode(m Message) ([]byte, error) {
	var buf bytes.Buffer
	if r, ok := m.(*Response); ok {
		if _, known := ReasonPhrase(r.Status); !known {
			return nil, errors.Wrapf(ErrUnknownStatus, "status %d", r.Status)
		}
	}

	buf.WriteString(m.statusLine())
	buf.WriteString("\r\n")
	for _, pair := range m.header().Pairs() {
		buf.WriteString(pair.Name)
		buf.WriteString(": ")
		buf.WriteString(pair.Value)
		buf.WriteString("\r\n")
	}
	buf.WriteString("\r\n")

	if c := m.content(); c != nil {
		buf.Write(c.Data)
	}
	return buf.Bytes(), nil
}
