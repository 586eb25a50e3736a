package util

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLogger initializing default logger
// NOTE: an empty logDir gives a console logger split between stdout and
// stderr, otherwise JSON lines go to standard.log and errors.log under logDir
// (and to the console as well when debugMode is on)
func DefaultLogger(debugMode bool, logDir string) (*zap.Logger, error) {
	logDir = strings.TrimSpace(logDir)

	minLevel := zapcore.InfoLevel
	if debugMode {
		minLevel = zapcore.DebugLevel
	}

	//---------------------------------------------------------------------------
	// log enablers
	//---------------------------------------------------------------------------
	highPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})

	lowPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= minLevel && lvl < zapcore.ErrorLevel
	})

	console := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	stdout := zapcore.Lock(zapcore.AddSync(os.Stdout))
	stderr := zapcore.Lock(zapcore.AddSync(os.Stderr))

	if logDir == "" {
		return zap.New(zapcore.NewTee(
			zapcore.NewCore(console, stderr, highPriority),
			zapcore.NewCore(console, stdout, lowPriority),
		)), nil
	}

	if err := CreateDirectoryIfNotExists(logDir, 0755); err != nil {
		return nil, err
	}

	errFile, err := openLogFile(filepath.Join(logDir, "errors.log"))
	if err != nil {
		return nil, err
	}

	stdFile, err := openLogFile(filepath.Join(logDir, "standard.log"))
	if err != nil {
		return nil, err
	}

	jsonEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())

	cores := []zapcore.Core{
		zapcore.NewCore(jsonEncoder, errFile, highPriority),
		zapcore.NewCore(jsonEncoder, stdFile, lowPriority),
	}

	if debugMode {
		cores = append(
			cores,
			zapcore.NewCore(console, stderr, highPriority),
			zapcore.NewCore(console, stdout, lowPriority),
		)
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}

func openLogFile(path string) (zapcore.WriteSyncer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open log file %s", path)
	}

	return zapcore.Lock(zapcore.AddSync(f)), nil
}
