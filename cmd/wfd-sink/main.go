// wfd-sink dials a WFD source, completes the M1-M6 handshake, plays the
// session, and tears it down on interrupt. Grounded on cmd/relay/relay.go's
// flag-based CLI shape, adapted from NTRIP's HTTP client/server pair to a
// single TCP RTSP connection.
package main

import (
	"flag"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/bepec/wfd-toolbox/endpoint"
	"github.com/bepec/wfd-toolbox/wfderrors"
	"github.com/bepec/wfd-toolbox/wfdsession"
)

func main() {
	host := flag.String("host", "localhost", "WFD source host to dial")
	port := flag.Int("port", 7236, "WFD source port to dial")
	flag.Parse()

	logger := logrus.StandardLogger()

	addr := net.JoinHostPort(*host, strconv.Itoa(*port))
	exitCode := run(addr, logger)
	os.Exit(exitCode)
}

func run(addr string, logger logrus.FieldLogger) int {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		logger.WithError(err).Error("failed to connect to source")
		return 1
	}
	defer conn.Close()

	sink := wfdsession.NewSink(wfdsession.DefaultSinkCapabilities())
	ep := endpoint.NewSync(conn, sink)

	if err := sink.RunHandshake(ep); err != nil {
		logger.WithError(err).Error("handshake failed")
		return exitCodeFor(err)
	}
	logger.Info("handshake complete")

	if err := sink.Play(ep); err != nil {
		logger.WithError(err).Error("play failed")
		return exitCodeFor(err)
	}
	logger.Info("playing")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("tearing down")
	if err := sink.TeardownSession(ep); err != nil {
		logger.WithError(err).Error("teardown failed")
		return exitCodeFor(err)
	}
	return 0
}

func exitCodeFor(err error) int {
	if ec, ok := err.(wfderrors.ExitCoder); ok {
		return ec.ExitCode()
	}
	return 1
}
