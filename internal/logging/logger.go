// Package logging provides structured logging for the CLI and services.
// Console output goes through log/slog; an optional persistent sink writes
// JSON lines through zap.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/teabranch/atlas-provision/internal/security"
)

// LogLevel represents different log levels.
type LogLevel int

const (
	// LevelDebug is verbose diagnostic logging.
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ToSlogLevel converts our LogLevel to slog.Level
func (l LogLevel) ToSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	case LevelCritical:
		return slog.LevelError + 4
	default:
		return slog.LevelInfo
	}
}

// ToZapLevel converts our LogLevel to a zapcore level.
func (l LogLevel) ToZapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	case LevelCritical:
		return zapcore.DPanicLevel
	default:
		return zapcore.InfoLevel
	}
}

// Config holds logging configuration
type Config struct {
	Level         LogLevel
	Format        string // "text" or "json"
	Output        io.Writer
	IncludeSource bool
	Quiet         bool
	Verbose       bool
	EnableAPILogs bool
	MaskSecrets   bool

	// FileSink receives every event at Info or above (Debug when Verbose)
	// as JSON lines, regardless of Quiet. Nil disables the persistent log.
	FileSink io.Writer
}

// DefaultConfig returns the default logging configuration
func DefaultConfig() *Config {
	return &Config{
		Level:         LevelInfo,
		Format:        "text",
		Output:        os.Stderr,
		IncludeSource: false,
		Quiet:         false,
		Verbose:       false,
		EnableAPILogs: false,
		MaskSecrets:   true,
	}
}

// Logger writes each event to the console handler and the file sink.
type Logger struct {
	slog   *slog.Logger
	file   *zap.Logger
	config *Config
	ctx    context.Context
}

// New creates a new logger with the given configuration
func New(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Output == nil {
		config.Output = os.Stderr
	}

	level := config.Level
	if config.Quiet {
		level = LevelError
	} else if config.Verbose {
		level = LevelDebug
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level:     level.ToSlogLevel(),
		AddSource: config.IncludeSource,
	}

	switch config.Format {
	case "json":
		handler = slog.NewJSONHandler(config.Output, opts)
	default:
		handler = slog.NewTextHandler(config.Output, opts)
	}

	return &Logger{
		slog:   slog.New(handler),
		file:   newFileLogger(config),
		config: config,
		ctx:    context.Background(),
	}
}

func newFileLogger(config *Config) *zap.Logger {
	if config.FileSink == nil {
		return zap.NewNop()
	}

	fileLevel := LevelInfo
	if config.Verbose {
		fileLevel = LevelDebug
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.MessageKey = "msg"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(config.FileSink),
		fileLevel.ToZapLevel(),
	)
	return zap.New(core)
}

// WithContext returns a logger with the given context
func (l *Logger) WithContext(ctx context.Context) *Logger {
	return &Logger{
		slog:   l.slog,
		file:   l.file,
		config: l.config,
		ctx:    ctx,
	}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...any) {
	args = l.maskArgs(args)
	l.slog.DebugContext(l.ctx, msg, args...)
	l.file.Debug(msg, zapFields(args)...)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...any) {
	args = l.maskArgs(args)
	l.slog.InfoContext(l.ctx, msg, args...)
	l.file.Info(msg, zapFields(args)...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...any) {
	args = l.maskArgs(args)
	l.slog.WarnContext(l.ctx, msg, args...)
	l.file.Warn(msg, zapFields(args)...)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...any) {
	args = l.maskArgs(args)
	l.slog.ErrorContext(l.ctx, msg, args...)
	l.file.Error(msg, zapFields(args)...)
}

// Critical logs a critical error message
func (l *Logger) Critical(msg string, args ...any) {
	allArgs := append([]any{"severity", "critical"}, args...)
	l.Error(msg, allArgs...)
}

// WithFields returns a logger with additional fields
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	args = l.maskArgs(args)

	return &Logger{
		slog:   l.slog.With(args...),
		file:   l.file.With(zapFields(args)...),
		config: l.config,
		ctx:    l.ctx,
	}
}

// Sync flushes the file sink.
func (l *Logger) Sync() error {
	return l.file.Sync()
}

// Operation represents one CLI command run for logging
type Operation struct {
	ID        string
	Type      string
	StartTime time.Time
	logger    *Logger
}

// StartOperation begins tracking an operation
func (l *Logger) StartOperation(id, opType string) *Operation {
	op := &Operation{
		ID:        id,
		Type:      opType,
		StartTime: time.Now(),
		logger:    l.WithFields(map[string]any{"operation_id": id, "operation_type": opType}),
	}

	op.logger.Debug("Operation started")
	return op
}

// Logger returns the operation scoped logger.
func (op *Operation) Logger() *Logger {
	return op.logger
}

// Complete marks the operation as completed
func (op *Operation) Complete(message string) {
	op.logger.Info("Operation completed",
		"message", message,
		"duration", time.Since(op.StartTime).String())
}

// Fail marks the operation as failed
func (op *Operation) Fail(err error, message string) {
	op.logger.Error("Operation failed",
		"message", message,
		"error", err.Error(),
		"duration", time.Since(op.StartTime).String())
}

// APIRequest represents an API request for logging
type APIRequest struct {
	Method  string
	URL     string
	Started time.Time
}

// APIResponse represents an API response for logging
type APIResponse struct {
	StatusCode int
	Duration   time.Duration
}

// LogAPIResponse logs one Atlas API exchange
func (l *Logger) LogAPIResponse(req *APIRequest, resp *APIResponse) {
	if !l.config.EnableAPILogs {
		return
	}

	fields := map[string]any{
		"api_method":      req.Method,
		"api_url":         l.maskURL(req.URL),
		"api_status_code": resp.StatusCode,
		"api_latency_ms":  resp.Duration.Milliseconds(),
	}

	switch {
	case resp.StatusCode >= 500:
		l.WithFields(fields).Error("API response with server error")
	case resp.StatusCode >= 400:
		l.WithFields(fields).Warn("API response with client error")
	default:
		l.WithFields(fields).Debug("API response received")
	}
}

func (l *Logger) maskArgs(args []any) []any {
	if !l.config.MaskSecrets || len(args) == 0 {
		return args
	}

	masked := make([]any, len(args))
	copy(masked, args)
	for i := 0; i+1 < len(masked); i += 2 {
		key, ok := masked[i].(string)
		if !ok {
			continue
		}
		if l.isSecret(key) || l.containsSecretValue(masked[i+1]) {
			masked[i+1] = l.maskValue(masked[i+1])
		}
	}
	return masked
}

func (l *Logger) isSecret(key string) bool {
	secretKeywords := []string{
		"api_key", "apikey", "api-key",
		"password", "passwd", "pwd",
		"token", "authorization", "bearer",
		"secret", "private_key", "private-key", "privatekey",
		"connection_string", "connection-string", "connectionstring",
		"mongodb_uri", "mongo_uri",
		"credential", "creds",
		"access_key", "accesskey", "access-key",
		"session", "cookie",
		"public_key", "publickey", "public-key",
	}

	lowerKey := strings.ToLower(key)
	for _, keyword := range secretKeywords {
		if strings.Contains(lowerKey, keyword) {
			return true
		}
	}

	return false
}

var secretValuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[A-Za-z0-9-_=]+\.[A-Za-z0-9-_=]+\.[A-Za-z0-9-_.+/=]+$`),
	regexp.MustCompile(`^[A-Za-z0-9+/]{32,}={0,2}$`),
	regexp.MustCompile(`^mongodb(\+srv)?://[^/\s]*:[^/\s]*@`),
}

// containsSecretValue performs pattern-based secret detection on values
func (l *Logger) containsSecretValue(value any) bool {
	str, ok := value.(string)
	if !ok || len(str) < 8 {
		return false
	}

	for _, p := range secretValuePatterns {
		if p.MatchString(str) {
			return true
		}
	}
	return false
}

func (l *Logger) maskValue(value any) any {
	str, ok := value.(string)
	if !ok {
		return "***"
	}
	if strings.HasPrefix(str, "mongodb://") || strings.HasPrefix(str, "mongodb+srv://") {
		return security.MaskConnectionString(str)
	}
	return security.MaskCredentialInString(str)
}

func (l *Logger) maskURL(url string) string {
	if !l.config.MaskSecrets {
		return url
	}
	if before, _, found := strings.Cut(url, "?"); found {
		return before + "?<masked>"
	}
	return url
}

// zapFields converts slog style key/value pairs into zap fields.
func zapFields(args []any) []zap.Field {
	if len(args) == 0 {
		return nil
	}
	fields := make([]zap.Field, 0, (len(args)+1)/2)
	for i := 0; i < len(args); i++ {
		switch key := args[i].(type) {
		case slog.Attr:
			fields = append(fields, zap.Any(key.Key, key.Value.Any()))
		case string:
			if i+1 >= len(args) {
				fields = append(fields, zap.String("!BADKEY", key))
				continue
			}
			fields = append(fields, zap.Any(key, args[i+1]))
			i++
		default:
			fields = append(fields, zap.Any("!BADKEY", key))
		}
	}
	return fields
}

// Global logger instance
var defaultLogger *Logger

// SetDefault sets the default global logger
func SetDefault(logger *Logger) {
	defaultLogger = logger
}

// Default returns the default global logger.
func Default() *Logger {
	if defaultLogger == nil {
		defaultLogger = New(DefaultConfig())
	}
	return defaultLogger
}

// Discard returns a logger that writes nowhere. Useful in tests.
func Discard() *Logger {
	return New(&Config{Output: io.Discard, Level: LevelError, Quiet: true, MaskSecrets: true})
}
