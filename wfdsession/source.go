package wfdsession

import (
	"strings"

	"github.com/bepec/wfd-toolbox/endpoint"
	"github.com/bepec/wfd-toolbox/rtsp"
	"github.com/bepec/wfd-toolbox/wfderrors"
)

// SourceConfig carries the configurable part of what the source advertises
// in SET_PARAMETER (M4), grounded on original_source/wfd_server.py's class
// constants: only the presentation URL; the video and audio formats are the
// fixed Canonical* constants. PresentationURL defaults to the prototype's
// fixed value when left empty.
type SourceConfig struct {
	PresentationURL string
}

func (c SourceConfig) presentationURL() string {
	if c.PresentationURL != "" {
		return c.PresentationURL
	}
	return "rtsp://172.16.222.110/wfd1.0/streamid=0 none"
}

// Source drives the WFD source role's side of the M1-M7 handshake: it
// replies to the sink's OPTIONS (M1), SETUP (M6) and PLAY/PAUSE/TEARDOWN
// (M7) requests, and separately issues its own OPTIONS/GET_PARAMETER/
// SET_PARAMETER requests (M2-M5) via Run. Implements endpoint.Receiver.
type Source struct {
	Config SourceConfig

	Phase          Phase
	HandshakePhase HandshakePhase
	SinkRTPPort    int
	Disconnecting  bool
}

// NewSource constructs a Source in its initial Handshake/Options state.
func NewSource(cfg SourceConfig) *Source {
	return &Source{
		Config:      cfg,
		Phase:       Handshake,
		SinkRTPPort: DefaultSinkRTPPort,
	}
}

// ProcessRequest implements endpoint.Receiver for requests the sink sends
// (M1 OPTIONS, M6 SETUP, M7 PLAY/PAUSE/TEARDOWN).
func (s *Source) ProcessRequest(req *rtsp.Request) (*rtsp.Response, error) {
	switch req.Method {
	case rtsp.OPTIONS:
		return s.handleOptions(), nil
	case rtsp.SETUP:
		return s.handleSetup(req)
	case rtsp.PLAY:
		return s.handlePlay(), nil
	case rtsp.PAUSE:
		return s.handlePause(), nil
	case rtsp.TEARDOWN:
		return s.handleTeardown(), nil
	default:
		return methodNotAcceptable(), nil
	}
}

// ProcessResponse implements endpoint.Receiver for responses to the
// source's own M2-M5 requests. Run already inspects each response directly
// as it is returned from SendRequest and reacts to a non-200 status there,
// so this hook has nothing left to do.
func (s *Source) ProcessResponse(resp *rtsp.Response, method rtsp.Method) {}

// handleOptions answers the sink's OPTIONS request regardless of handshake
// sub-phase — it is the entry point of the whole exchange.
func (s *Source) handleOptions() *rtsp.Response {
	resp := ok200()
	resp.Header.Set(rtsp.HeaderPublic, PublicMethods)
	return resp
}

// handleSetup only accepts SETUP once the source has driven the handshake
// through SetParameters (i.e. HandshakePhase == Setup); arriving earlier is
// a connection-fatal protocol error.
func (s *Source) handleSetup(req *rtsp.Request) (*rtsp.Response, error) {
	if s.Phase != Handshake || s.HandshakePhase != Setup {
		return nil, wfderrors.NewProtocolError("SETUP received outside handshake Setup phase")
	}

	transport := req.Header.Get(rtsp.HeaderTransport)
	if !strings.Contains(transport, "client_port=") {
		return rtsp.NewResponse(400), nil
	}

	resp := ok200()
	resp.Header.Set(rtsp.HeaderTransport, transport)
	resp.Header.Set(rtsp.HeaderSession, SessionID+";timeout=30")
	s.Phase = Pause
	return resp, nil
}

func (s *Source) handlePlay() *rtsp.Response {
	s.Phase = Play
	return ok200()
}

func (s *Source) handlePause() *rtsp.Response {
	s.Phase = Pause
	return ok200()
}

func (s *Source) handleTeardown() *rtsp.Response {
	s.Disconnecting = true
	s.Phase = Closed
	return ok200()
}

// Run drives the full handshake over a blocking endpoint.Sync: it waits for
// the sink's M1 OPTIONS, then sends its own M2 OPTIONS, M3 GET_PARAMETER, M4
// SET_PARAMETER, and M5 SET_PARAMETER (the SETUP trigger) in sequence, then
// loops waiting for the sink's M6 SETUP and subsequent M7
// PLAY/PAUSE/TEARDOWN requests until TEARDOWN closes the session. Grounded
// on original_source/wfd_server.py's _serve_endpoint.
func (s *Source) Run(ep *endpoint.Sync) error {
	if _, err := s.waitForOptions(ep); err != nil {
		return err
	}

	if err := s.sendOptions(ep); err != nil {
		return err
	}
	if err := s.sendGetParameter(ep); err != nil {
		return err
	}
	if err := s.sendSetParameter(ep); err != nil {
		return err
	}
	if err := s.sendTriggerSetup(ep); err != nil {
		return err
	}

	for {
		if _, err := ep.WaitForRequest(); err != nil {
			return err
		}
		if s.Disconnecting {
			return ep.Teardown()
		}
	}
}

// waitForOptions blocks for the sink's M1 OPTIONS request; any other first
// request is a protocol error since the handshake has a fixed entry point.
func (s *Source) waitForOptions(ep *endpoint.Sync) (*rtsp.Request, error) {
	req, err := ep.WaitForRequest()
	if err != nil {
		return nil, err
	}
	if req.Method != rtsp.OPTIONS {
		return nil, wfderrors.NewProtocolError("expected OPTIONS as the first sink request")
	}
	return req, nil
}

func (s *Source) sendOptions(ep *endpoint.Sync) error {
	req := rtsp.NewRequest(rtsp.OPTIONS, "")
	req.Header.Set(rtsp.HeaderRequire, RequireWFD)
	resp, err := ep.SendRequest(req)
	if err != nil {
		return err
	}
	return expect200(resp)
}

func (s *Source) sendGetParameter(ep *endpoint.Sync) error {
	req := rtsp.NewRequest(rtsp.GetParameter, WFDURL)
	rtsp.SetContent(req, &rtsp.Content{
		MediaType: "text/parameters",
		Data: BuildBody([]Param{
			{Name: ParamVideoFormats},
			{Name: ParamAudioCodecs},
			{Name: ParamClientRTPPorts},
			{Name: ParamContentProtection},
			{Name: ParamUIBCCapability},
		}),
	})

	resp, err := ep.SendRequest(req)
	if err != nil {
		return err
	}
	if err := expect200(resp); err != nil {
		return err
	}

	s.SinkRTPPort = DefaultSinkRTPPort
	if resp.Content != nil {
		params := ParseBody(resp.Content.Data)
		if v, ok := Lookup(params, ParamClientRTPPorts); ok {
			if port, ok := ParseClientRTPPort(v); ok {
				s.SinkRTPPort = port
			}
		}
	}
	s.HandshakePhase = GetParameters
	return nil
}

func (s *Source) sendSetParameter(ep *endpoint.Sync) error {
	req := rtsp.NewRequest(rtsp.SetParameter, WFDURL)
	rtsp.SetContent(req, &rtsp.Content{
		MediaType: "text/parameters",
		Data: BuildBody([]Param{
			{Name: ParamVideoFormats, Value: CanonicalVideoFormats},
			{Name: ParamAudioCodecs, Value: CanonicalAudioCodecs},
			{Name: ParamPresentationURL, Value: s.Config.presentationURL()},
			{Name: ParamClientRTPPorts, Value: ClientRTPPortsValue(s.SinkRTPPort)},
		}),
	})

	resp, err := ep.SendRequest(req)
	if err != nil {
		return err
	}
	if err := expect200(resp); err != nil {
		return err
	}
	s.HandshakePhase = SetParameters
	return nil
}

func (s *Source) sendTriggerSetup(ep *endpoint.Sync) error {
	req := rtsp.NewRequest(rtsp.SetParameter, WFDURL)
	rtsp.SetContent(req, &rtsp.Content{
		MediaType: "text/parameters",
		Data:      BuildBody([]Param{{Name: ParamTriggerMethod, Value: "SETUP"}}),
	})

	resp, err := ep.SendRequest(req)
	if err != nil {
		return err
	}
	if err := expect200(resp); err != nil {
		return err
	}
	s.HandshakePhase = Setup
	return nil
}

func expect200(resp *rtsp.Response) error {
	if resp.Status != 200 {
		return wfderrors.NewProtocolError("expected 200 OK response")
	}
	return nil
}
