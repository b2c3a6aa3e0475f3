package logger

import (
	"github.com/jobconnect/jobboard-api/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

// errorCounterHook counts warnings and errors labelled with their error_type field.
type errorCounterHook struct {
	counter *prometheus.CounterVec
}

func newErrorCounterHook(counter *prometheus.CounterVec) *errorCounterHook {
	return &errorCounterHook{counter: counter}
}

func (h *errorCounterHook) Fire(entry *log.Entry) error {
	errorType, _ := entry.Data[ErrorTypeField].(string)
	if errorType == "" {
		errorType = "unknown"
	}
	h.counter.WithLabelValues(errorType, entry.Level.String()).Inc()
	return nil
}

func (h *errorCounterHook) Levels() []log.Level {
	return []log.Level{log.PanicLevel, log.FatalLevel, log.ErrorLevel, log.WarnLevel}
}

func addErrorCounterHook() {
	log.AddHook(newErrorCounterHook(metrics.ErrorsCounter))
}
