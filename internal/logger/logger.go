package logger

import (
	"fmt"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const logFileName = "torbox.log"

// GetLogPath returns the rotating log file inside dir, creating dir when needed.
func GetLogPath(dir string) (string, error) {
	logsDir := filepath.Join(dir, "logs")

	if _, err := os.Stat(logsDir); os.IsNotExist(err) {
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create logs directory: %w", err)
		}
	}

	return filepath.Join(logsDir, logFileName), nil
}

func consoleWriter(prefix string, out io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    noColor,
		FormatLevel: func(i interface{}) string {
			return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
		},
		FormatMessage: func(i interface{}) string {
			return fmt.Sprintf("[%s] %v", prefix, i)
		},
	}
}

// NewLogger builds a console logger writing to output. When dir is not empty the
// same events are also written, uncolored, to a rotating file under dir/logs.
func NewLogger(prefix string, level string, output io.Writer, dir string) zerolog.Logger {
	var writer io.Writer = consoleWriter(prefix, output, false)

	if dir != "" {
		path, err := GetLogPath(dir)
		if err == nil {
			rotatingLogFile := &lumberjack.Logger{
				Filename: path,
				MaxSize:  10,
				MaxAge:   15,
				Compress: true,
			}
			writer = zerolog.MultiLevelWriter(writer, consoleWriter(prefix, rotatingLogFile, true))
		} else {
			_, _ = fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		}
	}

	logger := zerolog.New(writer).
		With().
		Timestamp().
		Logger().
		Level(zerolog.InfoLevel)

	switch level {
	case "trace":
		logger = logger.Level(zerolog.TraceLevel)
	case "debug":
		logger = logger.Level(zerolog.DebugLevel)
	case "info":
		logger = logger.Level(zerolog.InfoLevel)
	case "warn":
		logger = logger.Level(zerolog.WarnLevel)
	case "error":
		logger = logger.Level(zerolog.ErrorLevel)
	case "disabled":
		logger = logger.Level(zerolog.Disabled)
	}
	return logger
}

// New returns an info level console logger on stderr.
func New(prefix string) zerolog.Logger {
	return NewLogger(prefix, "info", os.Stderr, "")
}
