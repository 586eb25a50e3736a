package report_test

import (
	"context"
	"testing"

	"github.com/agubarev/orgtree/pkg/util/report"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestReportContext(t *testing.T) {
	a := assert.New(t)

	_, err := report.FromContext(context.Background())
	a.Equal(report.ErrNoReport, err)

	rep, ctx := report.NewWithContext(context.Background(), zap.NewNop())
	found, err := report.FromContext(ctx)
	a.NoError(err)
	a.True(rep == found)
}

func TestReportError(t *testing.T) {
	a := assert.New(t)

	rep := report.New(nil)
	a.False(rep.HasError())

	rep.WithError("NOT_FOUND", nil)
	a.False(rep.HasError())

	cause := errors.New("node not found")
	rep.Wrap("NOT_FOUND", cause, "failed to fetch node")
	a.True(rep.HasError())
	a.Equal("not_found", rep.Err.Token)
	a.Equal("node not found", rep.Err.Cause)
	a.Equal("failed to fetch node: node not found", rep.Err.Message)
	a.Equal(cause, errors.Cause(rep.Unwrap()))
}

func TestReportLog(t *testing.T) {
	a := assert.New(t)

	rep := report.New(zap.NewNop())
	rep.Info("loaded", zap.Int("count", 3))
	rep.Warn("skipped")

	a.Len(rep.Log, 2)
	a.Equal(zapcore.InfoLevel, rep.Log[0].Level)
	a.Equal(int64(3), rep.Log[0].Fields["count"])
	a.Nil(rep.Log[1].Fields)
}
