package pipeline

import (
	"time"

	"harvester/harvester/utils/logging"
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Event is one progress line of a run.
type Event struct {
	Time    time.Time `json:"time"`
	RunID   string    `json:"run_id"`
	Stage   string    `json:"stage"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
}

type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Event)

func (f ReporterFunc) Report(e Event) { f(e) }

// LogReporter prints events through the application logger.
type LogReporter struct{}

func (LogReporter) Report(e Event) {
	msg := "[" + e.Stage + "] " + e.Message
	switch e.Level {
	case LevelError:
		logging.AppLogger.Error(msg)
	case LevelWarn:
		logging.AppLogger.Warn(msg)
	default:
		logging.AppLogger.Info(msg)
	}
}

// Multi fans an event out to every non-nil reporter.
func Multi(reporters ...Reporter) Reporter {
	return ReporterFunc(func(e Event) {
		for _, r := range reporters {
			if r != nil {
				r.Report(e)
			}
		}
	})
}
