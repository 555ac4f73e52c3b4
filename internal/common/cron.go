package common

import (
	"time"

	rcron "github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// CronLogger forwards the scheduler logs to zerolog
type CronLogger struct{}

func (CronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg(msg)
}

func (CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

// NewCron returns a scheduler where a job never overlaps with itself
// and a panicking job is logged instead of crashing the process
func NewCron() *rcron.Cron {
	logger := CronLogger{}
	return rcron.New(
		rcron.WithLogger(logger),
		rcron.WithChain(rcron.Recover(logger), rcron.SkipIfStillRunning(logger)),
	)
}

// Every is the schedule of a job running at a fixed interval
func Every(interval time.Duration) string {
	return "@every " + interval.String()
}
