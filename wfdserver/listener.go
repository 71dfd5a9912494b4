// Package wfdserver accepts TCP connections and drives one WFD source-role
// session per connection, tracking live sessions for graceful shutdown.
// Adapted from caster.go's Caster{http.Server}/NewCaster wrapping pattern
// and caster/caster.go's RWMutex-guarded Mounts map — generalized away from
// HTTP and from NTRIP's single-source/many-subscriber pub-sub (a WFD session
// is a single point-to-point RTSP connection, not a fan-out of subscribers)
// into a plain per-connection session registry.
package wfdserver

import (
	"net"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bepec/wfd-toolbox/endpoint"
	"github.com/bepec/wfd-toolbox/wfdsession"
)

// DefaultAddr is the WFD well-known port, per the Wi-Fi Alliance Display
// specification's RTSP control-channel assignment.
const DefaultAddr = ":7236"

// Listener accepts TCP connections and runs the source role's handshake
// over each, exactly as caster.go's Caster spawns a handler per accepted
// request.
type Listener struct {
	Addr   string
	Config wfdsession.SourceConfig
	Logger logrus.FieldLogger

	listener net.Listener
	sessions *registry
}

// NewListener constructs a Listener. addr defaults to DefaultAddr when
// empty, mirroring rtsp.go's NewServer default-port handling.
func NewListener(addr string, cfg wfdsession.SourceConfig, logger logrus.FieldLogger) *Listener {
	if addr == "" {
		addr = DefaultAddr
	}
	return &Listener{
		Addr:     addr,
		Config:   cfg,
		Logger:   logger,
		sessions: newRegistry(),
	}
}

// ListenAndServe binds Addr and serves connections until the listener is
// closed, mirroring rtsp.go's Server.ListenAndServe accept loop.
func (l *Listener) ListenAndServe() error {
	ln, err := net.Listen("tcp", l.Addr)
	if err != nil {
		return err
	}
	l.listener = ln

	l.Logger.Infof("wfd source listening on %s", l.Addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			l.Logger.WithError(err).Error("accept failed")
			return err
		}
		go l.serve(conn)
	}
}

// Close closes the listener and every currently tracked session, mirroring
// caster.go's Close and giving graceful shutdown a single call site.
func (l *Listener) Close() error {
	l.sessions.closeAll()
	if l.listener != nil {
		return l.listener.Close()
	}
	return nil
}

// ActiveSessions reports the number of connections currently being served.
func (l *Listener) ActiveSessions() int {
	return l.sessions.count()
}

func (l *Listener) serve(conn net.Conn) {
	id := uuid.New().String()
	logger := l.Logger.WithFields(logrus.Fields{
		"request_id": id,
		"remote_addr": conn.RemoteAddr().String(),
		"role":       "source",
	})

	source := wfdsession.NewSource(l.Config)
	ep := endpoint.NewSync(conn, source)

	l.sessions.register(id, conn)
	defer l.sessions.deregister(id)
	defer conn.Close()

	logger.WithField("active_sessions", l.ActiveSessions()).Info("session started")
	err := source.Run(ep)
	if err != nil {
		logger.WithError(err).Warn("session ended with error")
		return
	}
	logger.Info("session closed gracefully")
}
