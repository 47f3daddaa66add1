package device

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/openpetcare/catbridge/internal/catlink"
)

const defaultLogCap = 5

// logsTracker is the shared event-log capability. Each refresh replaces
// the list wholesale; malformed or empty responses degrade to an empty
// list.
type logsTracker struct {
	dev *Base
	logAPI string
	logKey string
	max int

	logMu   sync.RWMutex
	entries []map[string]interface{}
}

func newLogsTracker(dev *Base, api, key string) *logsTracker {
	return &logsTracker{dev: dev, logAPI: api, logKey: key, max: defaultLogCap}
}

func (t *logsTracker) RefreshLogs(ctx context.Context) {
	rsp := t.dev.api.Request(ctx, t.logAPI, map[string]string{"deviceId": t.dev.ID()}, catlink.MethodGet)
	entries := rsp.DataList(t.logKey)
	if len(entries) == 0 {
		zap.S().Warnf("got device logs for %s failed: %s", t.dev.name(), rsp.ErrorText())
	}
	t.setEntries(entries)
}

func (t *logsTracker) setEntries(entries []map[string]interface{}) {
	if entries == nil {
		entries = []map[string]interface{}{}
	}
	if len(entries) > t.max {
		entries = entries[:t.max]
	}
	t.logMu.Lock()
	t.entries = entries
	t.logMu.Unlock()
	t.dev.bus.Notify()
}

// Logs returns the current list, most recent first.
func (t *logsTracker) Logs() []map[string]interface{} {
	t.logMu.RLock()
	defer t.logMu.RUnlock()
	return t.entries
}

func (t *logsTracker) lastEntry() map[string]interface{} {
	t.logMu.RLock()
	defer t.logMu.RUnlock()
	if len(t.entries) == 0 {
		return nil
	}
	return t.entries[0]
}

// LastLog renders the most recent entry as "time event".
func (t *logsTracker) LastLog() string {
	log := t.lastEntry()
	if log == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%s %s",
		cast.ToString(log["time"]), cast.ToString(log["event"])))
}
