// wfd-server runs a WFD source role endpoint, accepting sink connections
// and driving the M1-M7 handshake on each. Grounded on cmd/caster/main.go's
// wiring shape (logger, config, then hand both to the long-running server).
package main

import (
	"github.com/sirupsen/logrus"

	"github.com/bepec/wfd-toolbox/wfdserver"
	"github.com/bepec/wfd-toolbox/wfdsession"
)

func main() {
	logger := logrus.StandardLogger()

	var cfg wfdsession.SourceConfig
	conf, err := LoadConfig(logger, &cfg)
	if err != nil {
		logger.WithError(err).Fatal("failed to read config")
	}

	listener := wfdserver.NewListener(conf.GetString(ConfKeyListenAddress), cfg, logger)

	logger.Infof("starting wfd source on address: %s", listener.Addr)
	logger.Fatalf("wfd source stopped with reason: %s", listener.ListenAndServe())
}
