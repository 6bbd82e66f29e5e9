package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const logFileName = "lead-insights.log"

// Init initializes the global logger with dual sinks: os.Stderr and a rotating file.
// Stdout is never written to, since the MCP transport owns it.
// The returned function closes the file sink.
func Init(verbose bool) func() {
	// 0. Load .env from binary directory so LOGS_FOLDER and LOG_FORMAT are available before config.Load.
	exePath, err := os.Executable()
	if err == nil {
		_ = godotenv.Load(filepath.Join(filepath.Dir(exePath), ".env"))
	}

	// 1. Determine log level
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	// 2. Console sink: human readable on a terminal, JSON when LOG_FORMAT=json
	console := consoleWriter(os.Stderr, os.Getenv("LOG_FORMAT"))

	// 3. Setup File Writer (Rotating)
	logDir := os.Getenv("LOGS_FOLDER")
	if logDir == "" {
		if err == nil {
			logDir = filepath.Join(filepath.Dir(exePath), "logs")
		} else {
			logDir = "logs"
		}
	}

	if err := ensureWritable(logDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, logFileName),
		MaxSize:    16, // megabytes
		MaxBackups: 32,
		MaxAge:     365, // days
		Compress:   true,
	}

	// 4. Combine writers and set the global logger
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, fileWriter)).
		With().
		Timestamp().
		Str("service", "lead-insights").
		Logger()

	return func() { _ = fileWriter.Close() }
}

func consoleWriter(out *os.File, format string) io.Writer {
	if strings.EqualFold(format, "json") {
		return out
	}
	isTerminal := isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    !isTerminal,
	}
}

// ensureWritable creates dir and probes it with a throwaway file.
func ensureWritable(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory %q: %w", dir, err)
	}
	probe := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(probe, []byte("test"), 0644); err != nil {
		return fmt.Errorf("log directory %q is not writable: %w", dir, err)
	}
	_ = os.Remove(probe)
	return nil
}
