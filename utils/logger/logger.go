package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/datazip-inc/tsvingest/constants"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// base carries the sinks, logger is base plus the fields set with WithField
	base   zerolog.Logger
	logger zerolog.Logger
	fields = map[string]any{}
)

func init() {
	setBase(zerolog.New(newConsoleWriter(os.Stdout)))
}

func setBase(l zerolog.Logger) {
	base = l.With().Timestamp().Logger()
	logger = base.With().Fields(fields).Logger()
}

func newConsoleWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}
}

// Init configures the global logger from viper: LOG_LEVEL selects the level and LOG_FILE,
// when set, adds a size rotated file sink next to the console output.
func Init() {
	level, err := zerolog.ParseLevel(strings.ToLower(viper.GetString(constants.LogLevel)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	writers := []io.Writer{newConsoleWriter(os.Stdout)}
	if logFile := viper.GetString(constants.LogFile); logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			Warnf("failed to create log directory, file logging disabled: %s", err)
		} else {
			writers = append(writers, &lumberjack.Logger{
				Filename:   logFile,
				MaxSize:    100, // megabytes
				MaxBackups: 5,
				MaxAge:     30, // days
				Compress:   true,
			})
		}
	}

	setBase(zerolog.New(zerolog.MultiLevelWriter(writers...)))
}

// SetOutput redirects all log lines to w, mostly used by tests to capture output
func SetOutput(w io.Writer) {
	setBase(zerolog.New(newConsoleWriter(w)))
}

// WithField attaches key to every following line of the global logger. Setting a key
// again replaces its value.
func WithField(key string, value any) {
	fields[key] = value
	logger = base.With().Fields(fields).Logger()
}

func Debug(v ...any) {
	logger.Debug().Msg(fmt.Sprint(v...))
}

func Debugf(format string, v ...any) {
	logger.Debug().Msgf(format, v...)
}

func Info(v ...any) {
	logger.Info().Msg(fmt.Sprint(v...))
}

func Infof(format string, v ...any) {
	logger.Info().Msgf(format, v...)
}

func Warn(v ...any) {
	logger.Warn().Msg(fmt.Sprint(v...))
}

func Warnf(format string, v ...any) {
	logger.Warn().Msgf(format, v...)
}

func Error(v ...any) {
	logger.Error().Msg(fmt.Sprint(v...))
}

func Errorf(format string, v ...any) {
	logger.Error().Msgf(format, v...)
}

func Fatal(v ...any) {
	logger.Fatal().Msg(fmt.Sprint(v...))
}

func Fatalf(format string, v ...any) {
	logger.Fatal().Msgf(format, v...)
}
