package logger

import (
	"testing"

	"github.com/jobconnect/jobboard-api/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, log.DebugLevel, parseLevel(config.LevelDebug))
	assert.Equal(t, log.WarnLevel, parseLevel(config.LevelWarning))
	assert.Equal(t, log.ErrorLevel, parseLevel(config.LevelError))
	assert.Equal(t, log.FatalLevel, parseLevel(config.LevelFatal))
	assert.Equal(t, log.InfoLevel, parseLevel(config.LevelInfo))
	assert.Equal(t, log.InfoLevel, parseLevel("verbose"))
}

func TestErrorCounterHook_CountsByTypeAndLevel(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_errors_total"}, []string{"type", "level"})
	hook := newErrorCounterHook(counter)

	assert.NoError(t, hook.Fire(&log.Entry{Level: log.ErrorLevel, Data: log.Fields{ErrorTypeField: ErrorTypeDb}}))
	assert.NoError(t, hook.Fire(&log.Entry{Level: log.ErrorLevel, Data: log.Fields{ErrorTypeField: ErrorTypeDb}}))
	assert.NoError(t, hook.Fire(&log.Entry{Level: log.WarnLevel, Data: log.Fields{}}))

	assert.Equal(t, 2.0, testutil.ToFloat64(counter.WithLabelValues(ErrorTypeDb, "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(counter.WithLabelValues("unknown", "warning")))
	assert.Equal(t, 0.0, testutil.ToFloat64(counter.WithLabelValues(ErrorTypeDb, "warning")))
	assert.NotContains(t, hook.Levels(), log.InfoLevel)
}
