package wfdsession

import (
	"strconv"
	"strings"
)

// text/parameters body names the state machine recognizes. Any other name
// is passed through unchanged by ParseBody/BuildBody.
const (
	ParamVideoFormats      = "wfd_video_formats"
	ParamAudioCodecs       = "wfd_audio_codecs"
	ParamClientRTPPorts    = "wfd_client_rtp_ports"
	ParamContentProtection = "wfd_content_protection"
	ParamUIBCCapability    = "wfd_uibc_capability"
	ParamPresentationURL   = "wfd_presentation_URL"
	ParamTriggerMethod     = "wfd_trigger_method"
)

// Canonical values required to be emitted bit-for-bit for interop with a
// Miracast sink, per the WFD source-side capability negotiation defaults.
const (
	CanonicalVideoFormats = "00 00 01 01 00000020 00000000 00000000 00 0000 0000 00 none none"
	CanonicalAudioCodecs  = "LPCM 00000002 00"
)

// ClientRTPPortsValue formats the wfd_client_rtp_ports value template for
// the given port.
func ClientRTPPortsValue(port int) string {
	return "RTP/AVP/UDP;unicast " + strconv.Itoa(port) + " 0 mode=play"
}

// TransportValue formats the Transport header a sink's outbound SETUP
// request carries.
func TransportValue(port int) string {
	return "RTP/AVP/UDP;unicast;client_port=" + strconv.Itoa(port)
}

// Param is one text/parameters body entry. A bare entry (as used by
// GET_PARAMETER's query body) has an empty Value.
type Param struct {
	Name  string
	Value string
}

// BuildBody serializes params as CRLF-terminated "name: value" lines, or a
// bare "name" line when Value is empty — the exact shape GET_PARAMETER
// queries use to list the parameters it wants.
func BuildBody(params []Param) []byte {
	var b strings.Builder
	for _, p := range params {
		b.WriteString(p.Name)
		if p.Value != "" {
			b.WriteString(": ")
			b.WriteString(p.Value)
		}
		b.WriteString("\r\n")
	}
	return []byte(b.String())
}

// ParseBody parses a text/parameters body into its name/value entries.
// Lines are either "name: value" or bare "name". Unrecognized names are
// returned unchanged alongside recognized ones — filtering on meaning is
// the caller's job.
func ParseBody(data []byte) []Param {
	text := strings.TrimRight(string(data), "\r\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\r\n")
	params := make([]Param, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if i := strings.Index(line, ": "); i >= 0 {
			params = append(params, Param{Name: line[:i], Value: line[i+2:]})
			continue
		}
		params = append(params, Param{Name: line})
	}
	return params
}

// Lookup returns the value of name within params, and whether it was
// present (bare entries count as present with an empty value).
func Lookup(params []Param, name string) (string, bool) {
	for _, p := range params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// DefaultSinkRTPPort is used by the source role when the sink's
// GET_PARAMETER response cannot be parsed for a port.
const DefaultSinkRTPPort = 1028

// ParseClientRTPPort extracts the client port from a wfd_client_rtp_ports
// value of the form "RTP/AVP/UDP;unicast <PORT> 0 mode=play". Parsing the
// real value is optional polish, not required for interop; callers fall
// back to DefaultSinkRTPPort when it returns false.
func ParseClientRTPPort(value string) (int, bool) {
	fields := strings.Fields(value)
	if len(fields) < 2 {
		return 0, false
	}
	port, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, false
	}
	return port, true
}
