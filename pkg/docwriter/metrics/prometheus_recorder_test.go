package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.IncBlock("heading")
	pr.IncBlock("heading")
	pr.IncBlock("table")
	pr.IncRejected("column_mismatch")
	pr.ObserveSerialize("docx", 20*time.Millisecond, nil)
	pr.ObserveSerialize("docx", 5*time.Millisecond, errors.New("disk full"))

	assert.Equal(t, 2.0, testutil.ToFloat64(pr.blocks.WithLabelValues("heading")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.blocks.WithLabelValues("table")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.rejections.WithLabelValues("column_mismatch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.serializeResults.WithLabelValues("docx", ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.serializeResults.WithLabelValues("docx", ResultFailure)))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, mfs, 4)
}

func TestPrometheusRecorder_NilRegistry(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	require.NotNil(t, pr.Registry())
	pr.IncBlock("paragraph")

	mfs, err := pr.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}

func TestPrometheusRecorder_WriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncBlock("page_break")

	path := filepath.Join(t.TempDir(), "docwriter.prom")
	require.NoError(t, pr.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `docwriter_blocks_appended_total{kind="page_break"} 1`))
}

func TestResultOf(t *testing.T) {
	assert.Equal(t, ResultSuccess, ResultOf(nil))
	assert.Equal(t, ResultFailure, ResultOf(errors.New("x")))

	var r Recorder = NoopRecorder{}
	r.IncBlock("heading")
	r.IncRejected("stale_reference")
	r.ObserveSerialize("html", time.Second, nil)
}
