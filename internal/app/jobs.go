package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(
		cron.WithLocation(loc),
		cron.WithParser(cronParser),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)

	for uid, rt := range a.accounts {
		uid, rt := uid, rt
		spec := fmt.Sprintf("@every %s", rt.session.Config().PollInterval())
		_, err := a.sched.AddFunc(spec, func() {
			a.SchedPollTask(uid)
		})
		if err != nil {
			zap.S().Errorf("init poll job error %s", err.Error())
		}

		_, err = a.sched.AddFunc("@every 1m", func() {
			a.SchedLogsTask(uid)
		})
		if err != nil {
			zap.S().Errorf("init logs job error %s", err.Error())
		}
	}

	a.sched.Start()
}

// SchedPollTask runs one account's device and pet refresh cycle
func (a *Application) SchedPollTask(uid string) {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	rt, ok := a.accounts[uid]
	if !ok {
		return
	}
	start := time.Now()
	rt.coordinator.Poll(context.Background())
	zap.S().Debugf("poll %s done in %s", uid, time.Since(start))
}

// SchedLogsTask refreshes event logs for one account's devices
func (a *Application) SchedLogsTask(uid string) {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	rt, ok := a.accounts[uid]
	if !ok {
		return
	}
	rt.coordinator.PollLogs(context.Background())
}
