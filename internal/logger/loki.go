package logger

import (
	"context"
	"path/filepath"
	"strconv"

	"github.com/jobconnect/jobboard-api/pkg/loki"
	log "github.com/sirupsen/logrus"
)

type logrusAdapter struct{}

func (l *logrusAdapter) Error(msg string, args ...any) {
	log.WithFields(log.Fields{"args": args, "source": "loki"}).Error(msg)
}

type lokiHook struct {
	pusher   *loki.Pusher
	minLevel log.Level
}

func (h *lokiHook) Fire(entry *log.Entry) error {
	// errors of the pusher itself would loop back into it
	if entry.Data["source"] == "loki" {
		return nil
	}

	caller := ""
	if entry.Caller != nil {
		caller = filepath.Base(entry.Caller.Function) + ":" + strconv.Itoa(entry.Caller.Line)
	}

	errorType, _ := entry.Data[ErrorTypeField].(string)
	fields := make(map[string]any, len(entry.Data))
	for k, v := range entry.Data {
		if k == ErrorTypeField {
			continue
		}
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		fields[k] = v
	}

	return h.pusher.Push(loki.LogEntry{
		Level:     entry.Level.String(),
		ErrorType: errorType,
		Message:   entry.Message,
		Caller:    caller,
		Fields:    fields,
		Time:      entry.Time,
	})
}

func (h *lokiHook) Levels() []log.Level {
	var levels []log.Level
	for _, level := range log.AllLevels {
		if level <= h.minLevel {
			levels = append(levels, level)
		}
	}
	return levels
}

var lokiPusher *loki.Pusher

func addLokiHook(ctx context.Context, cfg loki.Config, minLevel log.Level) error {
	pusher, err := loki.New(ctx, cfg, &logrusAdapter{})
	if err != nil {
		return err
	}
	lokiPusher = pusher
	log.AddHook(&lokiHook{pusher: pusher, minLevel: minLevel})
	log.Info("Loki logging enabled")
	return nil
}
