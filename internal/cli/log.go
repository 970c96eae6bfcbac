package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/piwi3910/CubbyCut/internal/engine"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Annealed 12 shapes (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// annealReporter returns a progress callback that logs phase changes and
// every 250th iteration at debug level. Calls are serialized by the annealer.
func annealReporter(l *log.Logger) func(engine.Snapshot) {
	last := engine.Phase(-1)
	return func(s engine.Snapshot) {
		if s.Phase != last {
			last = s.Phase
			l.Info("annealing", "phase", s.Phase)
		}
		if s.Iteration%250 == 0 {
			l.Debug("anneal", "start", s.Start, "iteration", s.Iteration,
				"temperature", s.Temperature, "score", s.Score, "valid", s.Valid)
		}
	}
}
