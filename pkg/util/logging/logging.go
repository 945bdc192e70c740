package logging

import (
	"io"

	log "github.com/sirupsen/logrus"

	cfg "github.com/veil-network/veil-crypto/pkg/config"
)

// InitLog applies the logger level and format from the loaded
// configuration and points the output at w
func InitLog(w io.Writer) {
	SetToLevel(cfg.Get().Logger.Level)

	if cfg.Get().Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	}

	log.SetOutput(w)
}

func SetToLevel(l string) {
	level, err := log.ParseLevel(l)
	if err == nil {
		log.SetLevel(level)
	} else {
		log.SetLevel(log.InfoLevel)
		log.Warnf("Parse logger level from config err: %v", err)
	}
}
