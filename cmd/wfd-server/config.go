package main

import (
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/bepec/wfd-toolbox/wfdsession"
)

// Config keys, grounded on cmd/caster/config.go's ConfKey* constants.
const (
	ConfKeyListenAddress    string = "server.address"
	ConfKeyPresentationURL  string = "server.presentation_url"
	ConfKeyLogLevel         string = "logging.debug"
)

// LoadConfig reads ./config.yaml with viper and re-applies it to cfg on
// every subsequent edit, exactly as cmd/caster/config.go's Config does for
// the NTRIP caster's sourcetable/users/log level. Missing keys default
// sensibly: SourceConfig's own zero value already falls back to the
// prototype's presentation URL.
func LoadConfig(logger *logrus.Logger, cfg *wfdsession.SourceConfig) (*viper.Viper, error) {
	conf := viper.New()
	conf.SetConfigName("config")
	conf.SetConfigType("yaml")
	conf.AddConfigPath(".")

	conf.SetDefault(ConfKeyListenAddress, "")
	conf.SetDefault(ConfKeyLogLevel, false)

	if err := conf.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		logger.Warn("no config.yaml found, using defaults")
	}

	applyConfig(conf, cfg, logger)

	conf.OnConfigChange(func(event fsnotify.Event) {
		applyConfig(conf, cfg, logger)
		logger.WithField("file", event.Name).Info("config reloaded")
	})
	conf.WatchConfig()

	return conf, nil
}

func applyConfig(conf *viper.Viper, cfg *wfdsession.SourceConfig, logger *logrus.Logger) {
	cfg.PresentationURL = conf.GetString(ConfKeyPresentationURL)

	if conf.GetBool(ConfKeyLogLevel) {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
}
