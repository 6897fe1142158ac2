package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output).
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "EMAILREPLY_LOG_LEVEL"

// LogFileEnvVar names a file that receives log output instead of stderr.
// The interactive form owns the terminal, so it should always log to a file.
const LogFileEnvVar = "EMAILREPLY_LOG_FILE"

// maxPreview bounds how much email or reply text ends up in a log line
const maxPreview = 120

// Initialize creates a new logger with the specified level and output path.
// If level is empty, it checks EMAILREPLY_LOG_LEVEL; if path is empty, it
// checks EMAILREPLY_LOG_FILE and finally falls back to stderr.
// If no level is set anywhere, logging is disabled (silent mode).
func Initialize(level, path string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}
	if path == "" {
		path = os.Getenv(LogFileEnvVar)
	}

	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		// Unknown level - use info as default when explicitly set to something
		zapLevel = zapcore.InfoLevel
	}

	output := "stderr"
	if path != "" {
		output = path
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{"stderr"},
	}

	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	if path == "" {
		// Colors only make sense on a terminal
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	var err error
	logger, err = config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	return nil
}

// InitializeFromEnv initializes the logger from EMAILREPLY_LOG_LEVEL and
// EMAILREPLY_LOG_FILE.
func InitializeFromEnv() error {
	return Initialize("", "")
}

// SetLogger replaces the global logger. Tests use this with zaptest/observer.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		// Fallback to silent logger if not initialized
		logger = zap.NewNop()
	}
	return logger
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// LogGenerationRequest logs an outbound reply-generation request
func LogGenerationRequest(requestID, endpoint, tone string, contentLength int) {
	Info("Generation request sent",
		zap.String("request_id", requestID),
		zap.String("endpoint", endpoint),
		zap.String("tone", tone),
		zap.Int("content_length", contentLength),
	)
}

// LogGenerationResponse logs the response to a reply-generation request.
// The body preview is only attached at debug level.
func LogGenerationResponse(requestID string, statusCode int, body []byte) {
	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.Int("status_code", statusCode),
		zap.Int("length", len(body)),
	}
	if GetLogger().Core().Enabled(zapcore.DebugLevel) {
		fields = append(fields, zap.String("preview", Preview(string(body))))
	}
	Info("Generation response received", fields...)
}

// LogPhaseTransition logs a form phase change
func LogPhaseTransition(submissionID, from, to string) {
	Debug("Form phase transition",
		zap.String("submission_id", submissionID),
		zap.String("from", from),
		zap.String("to", to),
	)
}

// Preview shortens text for log output, replacing newlines so that
// one entry stays on one line.
func Preview(text string) string {
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.ReplaceAll(text, "\n", "⏎")
	runes := []rune(text)
	if len(runes) > maxPreview {
		return string(runes[:maxPreview]) + "..."
	}
	return text
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
