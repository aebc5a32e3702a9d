package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogWriter is the sink shared by the application and GORM loggers.
var LogWriter io.Writer = os.Stdout

// InitLogging configures the global zerolog logger. When path is set the log
// is also appended to that file; the returned file must be closed by the caller.
func InitLogging(level, path string) (*os.File, error) {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var logFile *os.File
	LogWriter = os.Stdout
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
			return nil, err
		}
		logFile, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		LogWriter = io.MultiWriter(os.Stdout, zerolog.SyncWriter(logFile))
	}

	log.Logger = zerolog.New(LogWriter).With().Timestamp().Logger()
	return logFile, nil
}
