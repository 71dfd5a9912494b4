package wfdsession

import (
	"github.com/bepec/wfd-toolbox/endpoint"
	"github.com/bepec/wfd-toolbox/rtsp"
	"github.com/bepec/wfd-toolbox/wfderrors"
)

// SinkCapabilities is the text/parameters body the sink advertises in
// answer to GET_PARAMETER (M3). Grounded on
// original_source/wfd_client.py's GET_PARAMETER constant — note it
// deliberately differs from the source's own chosen formats
// (CanonicalVideoFormats/CanonicalAudioCodecs): the sink advertises a
// broader capability set than the source ultimately selects in
// SET_PARAMETER, which is observable on the wire and worth preserving.
type SinkCapabilities struct {
	VideoFormats string
	AudioCodecs  string
}

// DefaultSinkCapabilities matches the prototype's hardcoded values.
func DefaultSinkCapabilities() SinkCapabilities {
	return SinkCapabilities{
		VideoFormats: "00 00 01 01 00000021 00000000 00000000 00 0000 0000 00 none none",
		AudioCodecs:  "LPCM 00000003 00",
	}
}

// triggerMethods maps a wfd_trigger_method body value to the RTSP method
// the sink synthesizes and sends back to the source.
var triggerMethods = map[string]rtsp.Method{
	"SETUP":    rtsp.SETUP,
	"PLAY":     rtsp.PLAY,
	"PAUSE":    rtsp.PAUSE,
	"TEARDOWN": rtsp.TEARDOWN,
}

// Sink drives the WFD sink role's side of the handshake: it answers the
// source's OPTIONS/GET_PARAMETER/SET_PARAMETER requests (M2-M5) and, on
// receiving a wfd_trigger_method during RunHandshake, synthesizes and sends
// the corresponding method (M6 SETUP) back to the source. Steady-phase
// PLAY/PAUSE/TEARDOWN requests are sent through Play, PauseSession and
// TeardownSession. Grounded on original_source/wfd_client.py's WfdClient.
type Sink struct {
	Capabilities SinkCapabilities
	RTPPort      int

	Phase          Phase
	HandshakePhase HandshakePhase
	Disconnecting  bool

	pendingTrigger rtsp.Method
}

// NewSink constructs a Sink in its initial Handshake/Options state, with
// the fixed RTP port this implementation assigns the sink role.
func NewSink(caps SinkCapabilities) *Sink {
	return &Sink{
		Capabilities: caps,
		RTPPort:      DefaultSinkRTPPort,
		Phase:        Handshake,
	}
}

// ProcessRequest implements endpoint.Receiver for the source's M2
// (OPTIONS), M3 (GET_PARAMETER) and M4/M5 (SET_PARAMETER) requests.
func (s *Sink) ProcessRequest(req *rtsp.Request) (*rtsp.Response, error) {
	switch req.Method {
	case rtsp.OPTIONS:
		return s.handleOptions(), nil
	case rtsp.GetParameter:
		return s.handleGetParameter(), nil
	case rtsp.SetParameter:
		return s.handleSetParameter(req)
	default:
		return methodNotAcceptable(), nil
	}
}

// ProcessResponse implements endpoint.Receiver for responses to the sink's
// own M1/M6/M7 requests.
func (s *Sink) ProcessResponse(resp *rtsp.Response, method rtsp.Method) {}

func (s *Sink) handleOptions() *rtsp.Response {
	resp := ok200()
	resp.Header.Set(rtsp.HeaderPublic, PublicMethods)
	return resp
}

func (s *Sink) handleGetParameter() *rtsp.Response {
	s.HandshakePhase = GetParameters
	resp := ok200()
	rtsp.SetContent(resp, &rtsp.Content{
		MediaType: "text/parameters",
		Data: BuildBody([]Param{
			{Name: ParamAudioCodecs, Value: s.Capabilities.AudioCodecs},
			{Name: ParamClientRTPPorts, Value: ClientRTPPortsValue(s.RTPPort)},
			{Name: ParamContentProtection, Value: "none"},
			{Name: ParamUIBCCapability, Value: "none"},
			{Name: ParamVideoFormats, Value: s.Capabilities.VideoFormats},
		}),
	})
	return resp
}

// handleSetParameter acks with 200 OK and, if the body carries a
// wfd_trigger_method, records the triggered method for RunHandshake to act on once
// the response has been flushed (the Endpoint serializes one operation at a
// time, so sending a follow-up request must wait until after this one's
// response is written).
func (s *Sink) handleSetParameter(req *rtsp.Request) (*rtsp.Response, error) {
	var params []Param
	if req.Content != nil {
		params = ParseBody(req.Content.Data)
	}

	if v, ok := Lookup(params, ParamTriggerMethod); ok {
		method, known := triggerMethods[v]
		if !known {
			return nil, wfderrors.NewProtocolError("unknown wfd_trigger_method: " + v)
		}
		s.pendingTrigger = method
	} else {
		s.HandshakePhase = SetParameters
	}

	return ok200(), nil
}

// RunHandshake drives the sink's side of M1-M6 over a blocking
// endpoint.Sync: send M1 (OPTIONS), then answer the source's
// GET_PARAMETER/SET_PARAMETER requests (M3/M4/M5) as they arrive, and once
// SET_PARAMETER's wfd_trigger_method names SETUP, synthesize and send the
// SETUP request (M6). Returns once the handshake completes (Phase leaves
// Handshake). Grounded on original_source/wfd_client.py's connect().
func (s *Sink) RunHandshake(ep *endpoint.Sync) error {
	optReq := rtsp.NewRequest(rtsp.OPTIONS, "")
	optReq.Header.Set(rtsp.HeaderRequire, RequireWFD)
	if _, err := ep.SendRequest(optReq); err != nil {
		return err
	}

	for s.Phase == Handshake {
		if _, err := ep.WaitForRequest(); err != nil {
			return err
		}

		if s.pendingTrigger == "" {
			continue
		}
		trigger := s.pendingTrigger
		s.pendingTrigger = ""
		if err := s.sendTriggeredRequest(ep, trigger); err != nil {
			return err
		}
	}
	return nil
}

// Play sends the sink-initiated PLAY request (M7) once the handshake has
// completed.
func (s *Sink) Play(ep *endpoint.Sync) error {
	return s.sendTriggeredRequest(ep, rtsp.PLAY)
}

// PauseSession sends the sink-initiated PAUSE request (M7).
func (s *Sink) PauseSession(ep *endpoint.Sync) error {
	return s.sendTriggeredRequest(ep, rtsp.PAUSE)
}

// TeardownSession sends the sink-initiated TEARDOWN request (M7) and closes
// the endpoint once the source's response has been received — the
// connection is only torn down after the round trip completes, not before.
func (s *Sink) TeardownSession(ep *endpoint.Sync) error {
	if err := s.sendTriggeredRequest(ep, rtsp.TEARDOWN); err != nil {
		return err
	}
	return ep.Teardown()
}

func (s *Sink) sendTriggeredRequest(ep *endpoint.Sync, method rtsp.Method) error {
	req := rtsp.NewRequest(method, "")
	if method == rtsp.SETUP {
		req.Header.Set(rtsp.HeaderTransport, TransportValue(s.RTPPort))
	}

	resp, err := ep.SendRequest(req)
	if err != nil {
		return err
	}
	if resp.Status != 200 {
		return wfderrors.NewProtocolError("expected 200 OK response to " + string(method))
	}

	switch method {
	case rtsp.SETUP:
		s.HandshakePhase = Setup
		s.Phase = Pause
	case rtsp.PLAY:
		s.Phase = Play
	case rtsp.PAUSE:
		s.Phase = Pause
	case rtsp.TEARDOWN:
		s.Phase = Closed
		s.Disconnecting = true
	}
	return nil
}
