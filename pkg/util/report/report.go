package report

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// errors
var (
	ErrNoReport = errors.New("no report")
)

type contextKey struct{}

// Error is the machine-readable part of a failed request
type Error struct {
	Token   string `json:"token"`
	Cause   string `json:"cause"`
	Message string `json:"msg"`
	err     error
}

// Entry represents a single Log entry of the report
type Entry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     zapcore.Level          `json:"lvl"`
	Message   string                 `json:"msg"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Log is a named slice used inside the report
type Log []Entry

func (l *Log) AddEntry(lvl zapcore.Level, msg string, fields ...zap.Field) {
	e := Entry{
		Timestamp: time.Now(),
		Level:     lvl,
		Message:   msg,
	}

	if len(fields) > 0 {
		enc := zapcore.NewMapObjectEncoder()
		for _, f := range fields {
			f.AddTo(enc)
		}

		e.Fields = enc.Fields
	}

	*l = append(*l, e)
}

// Report accompanies a single request and ends up in the response envelope
type Report struct {
	Err    *Error `json:"error,omitempty"`
	Log    Log    `json:"log,omitempty"`
	logger *zap.Logger
	sync.RWMutex
}

func New(l *zap.Logger) *Report {
	return &Report{
		logger: l,
	}
}

func NewWithContext(parent context.Context, l *zap.Logger) (*Report, context.Context) {
	rep := New(l)
	return rep, context.WithValue(parent, contextKey{}, rep)
}

func FromContext(ctx context.Context) (rep *Report, err error) {
	rep, ok := ctx.Value(contextKey{}).(*Report)

	if !ok || rep == nil {
		return nil, ErrNoReport
	}

	return rep, nil
}

func (rep *Report) HasError() bool {
	rep.RLock()
	hasError := rep.Err != nil
	rep.RUnlock()

	return hasError
}

// Unwrap returns the original error, nil if there is none
func (rep *Report) Unwrap() error {
	rep.RLock()
	defer rep.RUnlock()

	if rep.Err == nil {
		return nil
	}

	return rep.Err.err
}

func (rep *Report) WithError(token string, err error) *Report {
	// doing nothing if error is nil
	if err == nil {
		return rep
	}

	rep.Lock()
	rep.Err = &Error{
		Token:   strings.ToLower(token),
		Cause:   errors.Cause(err).Error(),
		Message: err.Error(),
		err:     err,
	}
	rep.Unlock()

	return rep
}

func (rep *Report) Wrap(token string, err error, msg string) *Report {
	if err == nil {
		return rep
	}

	return rep.WithError(token, errors.Wrap(err, msg))
}

func (rep *Report) Debug(msg string, fields ...zap.Field) {
	rep.add(zap.DebugLevel, msg, fields...)
}

func (rep *Report) Info(msg string, fields ...zap.Field) {
	rep.add(zap.InfoLevel, msg, fields...)
}

func (rep *Report) Warn(msg string, fields ...zap.Field) {
	rep.add(zap.WarnLevel, msg, fields...)
}

func (rep *Report) Error(msg string, fields ...zap.Field) {
	rep.add(zap.ErrorLevel, msg, fields...)
}

func (rep *Report) add(lvl zapcore.Level, msg string, fields ...zap.Field) {
	if rep.logger != nil {
		if ce := rep.logger.Check(lvl, msg); ce != nil {
			ce.Write(fields...)
		}
	}

	rep.Lock()
	rep.Log.AddEntry(lvl, msg, fields...)
	rep.Unlock()
}
