// Package metrics records document construction and serialization counters.
//
// The builder and the CLI depend only on the Recorder interface; NoopRecorder
// is the default and PrometheusRecorder backs it with client_golang metrics
// that can be exported to a node-exporter textfile.
package metrics

import "time"

// Serialization outcomes.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Recorder receives construction and serialization events.
type Recorder interface {
	// IncBlock counts an appended block of the given kind.
	IncBlock(kind string)
	// IncRejected counts a rejected builder call by reason.
	IncRejected(reason string)
	// ObserveSerialize records one serialization attempt.
	ObserveSerialize(format string, d time.Duration, err error)
}

// NoopRecorder drops every event.
type NoopRecorder struct{}

func (NoopRecorder) IncBlock(string)                                {}
func (NoopRecorder) IncRejected(string)                             {}
func (NoopRecorder) ObserveSerialize(string, time.Duration, error) {}

// ResultOf maps an error to ResultSuccess or ResultFailure.
func ResultOf(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
