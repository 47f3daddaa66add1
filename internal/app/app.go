package app

import (
	"context"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/openpetcare/catbridge/config"
	"github.com/openpetcare/catbridge/internal/catlink"
	"github.com/openpetcare/catbridge/internal/coordinator"
	"github.com/openpetcare/catbridge/internal/store"
)

// accountRuntime bundles one configured account's session and registry.
type accountRuntime struct {
	session     *catlink.Session
	coordinator *coordinator.Coordinator
}

type Application struct {
	appConfig *config.AppConfig
	authStore *store.AuthStore
	sched     *cron.Cron
	accounts  map[string]*accountRuntime
}

// Ensure Application implements all interfaces
var (
	_ ConfigProvider    = (*Application)(nil)
	_ StoreProvider     = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ AccountProvider   = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig, accounts: map[string]*accountRuntime{}}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) Store() *store.AuthStore {
	return a.authStore
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

func (a *Application) Session(uid string) *catlink.Session {
	if rt, ok := a.accounts[uid]; ok {
		return rt.session
	}
	return nil
}

func (a *Application) Coordinator(uid string) *coordinator.Coordinator {
	if rt, ok := a.accounts[uid]; ok {
		return rt.coordinator
	}
	return nil
}

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	// Initialize zap logger
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	zapConfig.OutputPaths = []string{"stdout"}
	if cfg.Logger.FileEnable {
		zapConfig.OutputPaths = append(zapConfig.OutputPaths, cfg.Logger.Filename)
	}

	// Build logger with file rotation if enabled
	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)

	if err := os.MkdirAll(cfg.System.Workdir, 0o755); err != nil {
		zap.S().Errorf("create workdir failed: %s", err.Error())
	}

	a.authStore, err = store.Open(cfg.System.Workdir)
	if err != nil {
		panic(err)
	}
	zap.S().Infof("Auth store opened under %s", cfg.System.Workdir)

	for _, acc := range cfg.Accounts {
		sess := catlink.NewSession(acc, a.authStore)
		a.accounts[acc.UID()] = &accountRuntime{
			session:     sess,
			coordinator: coordinator.New(sess),
		}
	}

	a.initJob()
}

// RestoreSessions adopts persisted tokens, logging in where no usable
// record exists.
func (a *Application) RestoreSessions(ctx context.Context) {
	for uid, rt := range a.accounts {
		if _, err := rt.session.CheckAuth(ctx, false); err != nil {
			zap.S().Warnf("restore session %s failed: %s", uid, err.Error())
		}
	}
}

// PollNow runs one immediate refresh cycle for every account.
func (a *Application) PollNow(ctx context.Context) {
	for _, rt := range a.accounts {
		rt.coordinator.Poll(ctx)
	}
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}

	if a.authStore != nil {
		_ = a.authStore.Close()
	}

	_ = zap.L().Sync()
}
