package utils

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logLevelDebugStringConstant          = "debug"
	logLevelInfoStringConstant           = "info"
	logLevelWarnStringConstant           = "warn"
	logLevelErrorStringConstant          = "error"
	logFormatStructuredStringConstant    = "structured"
	logFormatConsoleStringConstant       = "console"
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
	loggerTimeKeyConstant                = "ts"
	loggerMessageKeyConstant             = "msg"
	loggerLevelKeyConstant               = "level"
	loggerNameKeyConstant                = "logger"
)

// LogLevel enumerates supported logging granularities.
type LogLevel string

// Exported log level constants for reuse across packages.
const (
	LogLevelDebug LogLevel = LogLevel(logLevelDebugStringConstant)
	LogLevelInfo  LogLevel = LogLevel(logLevelInfoStringConstant)
	LogLevelWarn  LogLevel = LogLevel(logLevelWarnStringConstant)
	LogLevelError LogLevel = LogLevel(logLevelErrorStringConstant)
)

// LogFormat enumerates supported logger output encodings.
type LogFormat string

// Exported log format constants for reuse across packages.
const (
	LogFormatStructured LogFormat = LogFormat(logFormatStructuredStringConstant)
	LogFormatConsole    LogFormat = LogFormat(logFormatConsoleStringConstant)
)

var logLevelMapping = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

// ParseLogLevel normalizes a textual log level.
func ParseLogLevel(value string) (LogLevel, error) {
	candidate := LogLevel(strings.ToLower(strings.TrimSpace(value)))
	if _, supported := logLevelMapping[candidate]; !supported {
		return "", fmt.Errorf(unsupportedLogLevelTemplateConstant, value)
	}
	return candidate, nil
}

// ParseLogFormat normalizes a textual log format.
func ParseLogFormat(value string) (LogFormat, error) {
	candidate := LogFormat(strings.ToLower(strings.TrimSpace(value)))
	switch candidate {
	case LogFormatStructured, LogFormatConsole:
		return candidate, nil
	default:
		return "", fmt.Errorf(unsupportedLogFormatTemplateConstant, value)
	}
}

// LoggerFactory builds zap.Logger instances with consistent configuration.
type LoggerFactory struct {
	output io.Writer
}

// NewLoggerFactory constructs a factory writing to standard error so that reports on standard output stay clean.
func NewLoggerFactory() *LoggerFactory {
	return NewLoggerFactoryWithOutput(os.Stderr)
}

// NewLoggerFactoryWithOutput constructs a factory writing to output.
func NewLoggerFactoryWithOutput(output io.Writer) *LoggerFactory {
	if output == nil {
		output = os.Stderr
	}
	return &LoggerFactory{output: output}
}

// CreateLogger produces a zap.Logger honoring the requested log level and format.
func (factory *LoggerFactory) CreateLogger(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (*zap.Logger, error) {
	zapLogLevel, levelExists := logLevelMapping[requestedLogLevel]
	if !levelExists {
		return nil, fmt.Errorf(unsupportedLogLevelTemplateConstant, requestedLogLevel)
	}

	encoder, encoderError := buildEncoder(requestedLogFormat)
	if encoderError != nil {
		return nil, encoderError
	}

	output := factory.output
	if output == nil {
		output = os.Stderr
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(output)), zap.NewAtomicLevelAt(zapLogLevel))
	return zap.New(core, zap.AddCaller()), nil
}

func buildEncoder(requestedLogFormat LogFormat) (zapcore.Encoder, error) {
	encoderConfiguration := zapcore.EncoderConfig{
		TimeKey:        loggerTimeKeyConstant,
		LevelKey:       loggerLevelKeyConstant,
		NameKey:        loggerNameKeyConstant,
		MessageKey:     loggerMessageKeyConstant,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	switch requestedLogFormat {
	case LogFormatStructured:
		encoderConfiguration.EncodeLevel = zapcore.LowercaseLevelEncoder
		return zapcore.NewJSONEncoder(encoderConfiguration), nil
	case LogFormatConsole:
		encoderConfiguration.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(encoderConfiguration), nil
	default:
		return nil, fmt.Errorf(unsupportedLogFormatTemplateConstant, requestedLogFormat)
	}
}
