package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	cfg "github.com/veil-network/veil-crypto/pkg/config"
	"github.com/veil-network/veil-crypto/pkg/crypto/elgamal"
	"github.com/veil-network/veil-crypto/pkg/engine"
	"github.com/veil-network/veil-crypto/pkg/util/logging"
)

var log = logrus.WithFields(logrus.Fields{
	"app":    "veil",
	"prefix": "main",
})

func main() {
	defer handlePanic()

	// Loading all engine configurations. Fail-fast if critical error occurs
	if err := cfg.Load(); err != nil {
		log.WithError(err).Fatal("Could not load config")
	}

	// Set up logging.
	// Any subsystem should be initialized after config and logger loading
	logging.InitLog(os.Stdout)

	if file := cfg.Get().UsedConfigFile; file != "" {
		log.WithField("file", file).Info("config loaded")
	}

	if err := smokeTest(); err != nil {
		log.WithError(err).Fatal("Engine smoke test failed")
	}
}

// smokeTest runs one confidential transfer end to end and reports the
// engine statistics it left behind
func smokeTest() error {
	e := engine.New()

	source, err := elgamal.GenerateKeyPair()
	if err != nil {
		return err
	}
	dest, err := elgamal.GenerateKeyPair()
	if err != nil {
		return err
	}

	balance, err := e.Encrypt(10000, &source.Public)
	if err != nil {
		return err
	}

	proof, err := e.Transfer(3000, balance, source, &dest.Public, 20000)
	if err != nil {
		return err
	}

	if !e.VerifyTransfer(proof, &source.Public, &dest.Public, balance) {
		return fmt.Errorf("transfer proof did not verify")
	}

	remaining, ok := e.Decrypt(proof.NewSourceBalance, &source.Secret, 20000)
	if !ok {
		return fmt.Errorf("could not decrypt new source balance")
	}

	log.WithField("balance", remaining).Info("transfer verified")

	for op, stats := range e.Stats() {
		log.WithFields(logrus.Fields{
			"op":    op,
			"count": stats.Count,
			"mean":  stats.MeanLatency,
		}).Info("engine stats")
	}
	return nil
}

func handlePanic() {
	if r := recover(); r != nil {
		log.WithError(fmt.Errorf("%+v", r)).Errorln("Application panic")
	}

	time.Sleep(time.Second * 1)
}
