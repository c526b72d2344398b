package logger

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

type UTCFormatter struct {
	logrus.Formatter
}

func (u UTCFormatter) Format(e *logrus.Entry) ([]byte, error) {
	e.Time = e.Time.UTC()
	return u.Formatter.Format(e)
}

// Configure sets up the process-wide logger. Output goes to stdout unless a
// file path is given.
func Configure(level, file string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	logrus.SetLevel(lvl)
	logrus.SetFormatter(UTCFormatter{&logrus.TextFormatter{FullTimestamp: true}})
	logrus.SetOutput(os.Stdout)

	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("cannot open log file %q: %w", file, err)
		}
		logrus.SetOutput(f)
	}

	return nil
}
