package main

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

func main() {
	// setup logging
	var log = logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC1123,
	})

	if err := newRootCommand(log).Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
