package utils

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
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
	defaultLogFileMaxSizeMegabytes       = 50
	defaultLogFileMaxBackupCount         = 3
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

// LoggerSettings describe the logger to build. FilePath, when set, routes
// output to a size-rotated log file instead of standard error.
type LoggerSettings struct {
	Level            LogLevel
	Format           LogFormat
	FilePath         string
	MaxSizeMegabytes int
	MaxBackupCount   int
}

// LoggerFactory builds zap.Logger instances with consistent configuration.
type LoggerFactory struct{}

var logLevelMapping = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

// NewLoggerFactory constructs a new logger factory.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{}
}

// CreateLogger produces a zap.Logger honoring the requested settings.
func (factory *LoggerFactory) CreateLogger(settings LoggerSettings) (*zap.Logger, error) {
	zapLogLevel, levelExists := logLevelMapping[settings.Level]
	if !levelExists {
		return nil, fmt.Errorf(unsupportedLogLevelTemplateConstant, settings.Level)
	}

	encoder, encoderError := factory.buildEncoder(settings.Format)
	if encoderError != nil {
		return nil, encoderError
	}

	if len(settings.FilePath) > 0 {
		fileSink := zapcore.AddSync(&lumberjack.Logger{
			Filename:   settings.FilePath,
			MaxSize:    defaultIfZero(settings.MaxSizeMegabytes, defaultLogFileMaxSizeMegabytes),
			MaxBackups: defaultIfZero(settings.MaxBackupCount, defaultLogFileMaxBackupCount),
		})
		return zap.New(zapcore.NewCore(encoder, fileSink, zapLogLevel)), nil
	}

	configuration := zap.NewProductionConfig()
	configuration.Level = zap.NewAtomicLevelAt(zapLogLevel)
	configuration.Encoding = factory.encodingName(settings.Format)

	return configuration.Build()
}

func (factory *LoggerFactory) buildEncoder(requestedLogFormat LogFormat) (zapcore.Encoder, error) {
	encoderConfiguration := zap.NewProductionEncoderConfig()
	switch requestedLogFormat {
	case LogFormatStructured:
		return zapcore.NewJSONEncoder(encoderConfiguration), nil
	case LogFormatConsole:
		return zapcore.NewConsoleEncoder(encoderConfiguration), nil
	default:
		return nil, fmt.Errorf(unsupportedLogFormatTemplateConstant, requestedLogFormat)
	}
}

func (factory *LoggerFactory) encodingName(requestedLogFormat LogFormat) string {
	if requestedLogFormat == LogFormatConsole {
		return "console"
	}
	return "json"
}

func defaultIfZero(value int, defaultValue int) int {
	if value <= 0 {
		return defaultValue
	}
	return value
}
