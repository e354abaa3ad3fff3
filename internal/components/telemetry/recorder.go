package telemetry

import (
	"fmt"
	"strings"
	"sync"
)

// Report is a single call made to a Recorder.
type Report struct {
	Level  string
	Id     string
	Params []any
}

func (r Report) String() string {
	parts := make([]string, len(r.Params))
	for i, p := range r.Params {
		parts[i] = fmt.Sprint(p)
	}
	return fmt.Sprintf("%s %s %s", r.Level, r.Id, strings.Join(parts, " "))
}

// Recorder is an API that keeps everything reported to it, tests use it to
// assert that a component reported what it was supposed to.
type Recorder struct {
	mutex   sync.Mutex
	reports []Report
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(level, id string, params []any) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.reports = append(r.reports, Report{Level: level, Id: id, Params: params})
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.record("broken", id, params)
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.record("warning", id, params)
}

func (r *Recorder) ReportDebug(msg string, params ...any) {
	r.record("debug", msg, params)
}

func (r *Recorder) ReportCount(id string, count int64) {
	r.record("count", id, []any{count})
}

// Reports returns the reports of the given level ("broken", "warning", "debug", "count").
func (r *Recorder) Reports(level string) []Report {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var out []Report
	for _, report := range r.reports {
		if report.Level == level {
			out = append(out, report)
		}
	}
	return out
}
