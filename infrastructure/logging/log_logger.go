package logging

import (
	"log"

	"sealtun/application/logging"
	"sealtun/infrastructure/settings"
)

// LogLogger writes through the standard library's default logger.
type LogLogger struct {
}

func NewLogLogger() logging.Logger {
	return &LogLogger{}
}

func (l LogLogger) Printf(format string, v ...any) {
	log.Printf(format, v...)
}

// New picks the logger described by conf. Unless New fails, the returned
// close function is never nil.
func New(conf settings.Logging) (logging.Logger, func(), error) {
	if conf.File == "" {
		return NewLogLogger(), func() {}, nil
	}
	bl, err := NewBeegoLogger(conf)
	if err != nil {
		return nil, nil, err
	}
	return bl, bl.Close, nil
}
