package logger

import (
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Log is the process-wide logger. It writes to stderr until InitWithConfig adds a file.
var Log = log.New()

var logFile *os.File

func InitWithLevel(logLevel string) error {
	return InitWithConfig(logLevel, "")
}

// InitWithConfig sets the level and, when logFilePath is not empty, tees output into
// that file opened for append.
func InitWithConfig(logLevel, logFilePath string) error {
	Log.SetLevel(parseLevel(logLevel))
	Log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	var out io.Writer = os.Stderr
	if logFilePath != "" {
		f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
		Close()
		logFile = f
		out = io.MultiWriter(os.Stderr, f)
	}
	Log.SetOutput(out)
	return nil
}

// Close releases the log file, if one was opened, and points the logger back at stderr.
func Close() {
	if logFile != nil {
		Log.SetOutput(os.Stderr)
		logFile.Close()
		logFile = nil
	}
}

// parseLevel accepts logrus level names plus "verbose" for trace. Unknown values fall
// back to info.
func parseLevel(level string) log.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "verbose" {
		return log.TraceLevel
	}
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return log.InfoLevel
	}
	return parsed
}

// WithComponent returns an entry tagged with the component name.
func WithComponent(name string) *log.Entry {
	return Log.WithField("component", name)
}
