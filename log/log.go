package log

import (
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

var debug bool

// Logger is the interface render sessions log through.
type Logger interface {
	Debug(...interface{})
	Info(...interface{})
	Error(...interface{})
}

func init() {
	var err error
	debug, err = strconv.ParseBool(os.Getenv("MIXER_DEBUG"))
	if err != nil {
		debug = false
	}
}

// GetLogger returns a new logger instance, at debug level when the
// MIXER_DEBUG environment variable is set.
func GetLogger() *logrus.Logger {
	l := logrus.New()
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}
