package app

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/openpetcare/catbridge/config"
	"github.com/openpetcare/catbridge/internal/catlink"
	"github.com/openpetcare/catbridge/internal/coordinator"
	"github.com/openpetcare/catbridge/internal/store"
)

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// StoreProvider provides auth store access
type StoreProvider interface {
	Store() *store.AuthStore
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// AccountProvider provides per-account session and registry access
type AccountProvider interface {
	Session(uid string) *catlink.Session
	Coordinator(uid string) *coordinator.Coordinator
}

// AppContext combines all provider interfaces for full application context.
// Services should depend on specific providers or this combined interface
type AppContext interface {
	ConfigProvider
	StoreProvider
	SchedulerProvider
	AccountProvider

	// Application lifecycle methods
	RestoreSessions(ctx context.Context)
	PollNow(ctx context.Context)
	Release()
}
