package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Setup initializes the process-wide JSON logger, writing to stdout and a
// timestamped file under logs/. The returned cleanup closes the file.
func Setup() (*slog.Logger, func()) {
	logsDir, err := filepath.Abs("logs")
	if err != nil {
		panic("failed to resolve logs directory: " + err.Error())
	}

	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		panic("failed to create logs directory at " + logsDir + ": " + err.Error())
	}

	logFileName := filepath.Join(logsDir, "collector_"+time.Now().Format("20060102_150405")+".log")
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		panic("failed to open log file at " + logFileName + ": " + err.Error())
	}

	multiWriter := io.MultiWriter(os.Stdout, logFile)
	logger := slog.New(slog.NewJSONHandler(multiWriter, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cleanup := func() {
		if err := logFile.Close(); err != nil {
			logger.Error("failed to close log file", "error", err)
		}
	}

	return logger, cleanup
}
