// Package wfdsession implements the WFD (Wi-Fi Display / Miracast) M1-M7
// handshake choreography and steady-state trigger handling for both the
// source and sink roles, on top of the rtsp wire codec and an
// endpoint.Receiver. Grounded on original_source/wfd_server.py (source
// role) and original_source/wfd_client.py (sink role).
package wfdsession

import "github.com/bepec/wfd-toolbox/rtsp"

// Phase is the overall session lifecycle state.
type Phase int

const (
	Handshake Phase = iota
	Pause
	Play
	Closed
)

func (p Phase) String() string {
	switch p {
	case Handshake:
		return "Handshake"
	case Pause:
		return "Pause"
	case Play:
		return "Play"
	case Closed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// HandshakePhase is only meaningful while Phase == Handshake.
type HandshakePhase int

const (
	Options HandshakePhase = iota
	GetParameters
	SetParameters
	Setup
)

func (p HandshakePhase) String() string {
	switch p {
	case Options:
		return "Options"
	case GetParameters:
		return "GetParameters"
	case SetParameters:
		return "SetParameters"
	case Setup:
		return "Setup"
	default:
		return "Unknown"
	}
}

// RequireWFD is the capability token both peers assert in OPTIONS/Require.
const RequireWFD = "org.wfa.wfd1.0"

// PublicMethods is the Public header value a peer advertises in reply to
// OPTIONS.
const PublicMethods = "org.wfa.wfd1.0, GET_PARAMETER, SET_PARAMETER"

// WFDURL is the fixed control URL used throughout the handshake.
const WFDURL = "rtsp://localhost/wfd1.0"

// SessionID is this implementation's fixed RTSP Session identifier, echoed
// on the SETUP response.
const SessionID = "01234567"

// methodNotAcceptable is the shared 406 reply for any method unhandled in
// the current role/phase.
func methodNotAcceptable() *rtsp.Response {
	return rtsp.NewResponse(406)
}

// ok200 is a bare 200 OK reply.
func ok200() *rtsp.Response {
	return rtsp.NewResponse(200)
}
