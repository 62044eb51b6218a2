package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the log sinks and their levels
type Options struct {
	// Verbose lowers the console level to debug
	Verbose bool
	// Debugging raises console output from warnings to info
	Debugging bool
	// Console receives terminal output, stderr when nil
	Console io.Writer

	// NotePath is the markdown note entries are appended to, empty disables it
	NotePath string
	// NoteVerbose records debug entries in the note
	NoteVerbose bool
}

// New builds a logger teeing the console and the optional vault note.
// The returned close function releases the note file.
func New(opts Options) (*zap.Logger, func() error, error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	consoleLevel := zapcore.WarnLevel
	switch {
	case opts.Verbose:
		consoleLevel = zapcore.DebugLevel
	case opts.Debugging:
		consoleLevel = zapcore.InfoLevel
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.TimeKey = ""
	consoleCfg.CallerKey = ""
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(zapcore.AddSync(console)), consoleLevel),
	}

	closer := func() error { return nil }
	if opts.NotePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.NotePath), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log note directory: %w", err)
		}
		f, err := os.OpenFile(opts.NotePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log note: %w", err)
		}
		closer = f.Close

		noteLevel := zapcore.InfoLevel
		if opts.NoteVerbose {
			noteLevel = zapcore.DebugLevel
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(noteEncoderConfig()), zapcore.AddSync(f), noteLevel))
	}

	return zap.New(zapcore.NewTee(cores...)), closer, nil
}

// noteEncoderConfig renders entries as markdown list items
func noteEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString("- " + t.Format("2006-01-02 15:04:05"))
		},
	}
}
