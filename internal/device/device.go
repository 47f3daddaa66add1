package device

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/openpetcare/catbridge/config"
	"github.com/openpetcare/catbridge/internal/catlink"
)

// API is the vendor-client surface a device needs.
type API interface {
	Request(ctx context.Context, api string, params map[string]string, method string) catlink.Response
}

// Device is the registry's view of one appliance or pet profile.
type Device interface {
	ID() string
	Mac() string
	Model() string
	Type() string
	Name() string
	State() string
	Mode() string
	Modes() map[string]string
	Action() string
	Actions() map[string]string
	Error() string
	Data() map[string]interface{}
	Detail() map[string]interface{}
	UpdateData(dat map[string]interface{})
	RefreshDetail(ctx context.Context)
	SelectMode(ctx context.Context, mode string) error
	SelectAction(ctx context.Context, action string) error
	Bus() *ListenerBus
}

// LogsCapable marks devices with a secondary event-log fetch.
type LogsCapable interface {
	RefreshLogs(ctx context.Context)
}

var workStates = map[string]string{
	"00": "idle",
	"01": "running",
	"02": "need_reset",
}

// Base carries the raw list entry and detail payload and implements
// the generic command protocol. Variants embed it and reconfigure the
// endpoint and table fields at construction.
type Base struct {
	api      API
	bus      *ListenerBus
	override config.DeviceOverride

	mu          sync.RWMutex
	data        map[string]interface{}
	detail      map[string]interface{}
	actionError string

	detailAPI    string
	detailKey    string
	detailAtRoot bool
	modeAPI      string
	modeParam    string
	actionAPI    string
	actionParam  string
	modes        map[string]string
	actions      map[string]string

	// refresh points at the variant's detail refresh so command
	// follow-ups go through the right endpoint.
	refresh     func(ctx context.Context)
	afterDetail func(ctx context.Context)
}

func newBase(api API, dat map[string]interface{}, override *config.DeviceOverride) *Base {
	b := &Base{
		api:         api,
		data:        dat,
		detail:      map[string]interface{}{},
		detailAPI:   catlink.APIDeviceInfo,
		detailKey:   "deviceInfo",
		modeAPI:     catlink.APIChangeMode,
		modeParam:   "workModel",
		actionAPI:   catlink.APIActionCmd,
		actionParam: "cmd",
	}
	if override != nil {
		b.override = *override
	}
	b.bus = NewListenerBus(cast.ToString(dat["id"]))
	b.refresh = b.refreshDetail
	return b
}

// NewBase builds the generic passthrough device used for unrecognized
// type tags.
func NewBase(api API, dat map[string]interface{}, override *config.DeviceOverride) *Base {
	return newBase(api, dat, override)
}

func (b *Base) Bus() *ListenerBus { return b.bus }

func (b *Base) Data() map[string]interface{} {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.data
}

func (b *Base) Detail() map[string]interface{} {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.detail
}

func (b *Base) dataStr(key string) string {
	return cast.ToString(b.Data()[key])
}

func (b *Base) detailStr(key string) string {
	return cast.ToString(b.Detail()[key])
}

func (b *Base) ID() string    { return b.dataStr("id") }
func (b *Base) Mac() string   { return b.dataStr("mac") }
func (b *Base) Model() string { return b.dataStr("model") }
func (b *Base) Type() string  { return b.dataStr("deviceType") }
func (b *Base) Name() string  { return b.dataStr("deviceName") }

func (b *Base) Modes() map[string]string   { return b.modes }
func (b *Base) Actions() map[string]string { return b.actions }
func (b *Base) Action() string             { return "" }

// State maps the two-digit work status through the shared table,
// passing unmapped codes through verbatim.
func (b *Base) State() string {
	sta := strings.TrimSpace(b.detailStr("workStatus"))
	if label, ok := workStates[sta]; ok {
		return label
	}
	return sta
}

func (b *Base) Mode() string {
	return b.modes[b.detailStr("workModel")]
}

func (b *Base) Error() string {
	if e := b.ActionError(); e != "" {
		return e
	}
	if msg := b.detailStr("currentMessage"); msg != "" {
		return msg
	}
	return b.dataStr("currentErrorMessage")
}

func (b *Base) ActionError() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.actionError
}

func (b *Base) setActionError(msg string) {
	b.mu.Lock()
	b.actionError = msg
	b.mu.Unlock()
	b.bus.Notify()
}

// UpdateData replaces the raw list entry and notifies listeners.
// Called on every poll regardless of detail-refresh outcome.
func (b *Base) UpdateData(dat map[string]interface{}) {
	b.mu.Lock()
	b.data = dat
	b.mu.Unlock()
	b.bus.Notify()
}

func (b *Base) RefreshDetail(ctx context.Context) {
	b.refresh(ctx)
}

func (b *Base) refreshDetail(ctx context.Context) {
	rsp := b.api.Request(ctx, b.detailAPI, map[string]string{"deviceId": b.ID()}, catlink.MethodGet)
	det := rsp.DataObject(b.detailKey)
	if det == nil && b.detailAtRoot {
		det = rsp.Data()
	}
	name := b.name()
	b.mu.Lock()
	if len(det) > 0 {
		b.detail = det
	} else {
		zap.S().Warnf("got device detail for %s failed: %s", name, rsp.ErrorText())
	}
	b.actionError = ""
	b.mu.Unlock()
	if b.afterDetail != nil {
		b.afterDetail(ctx)
	}
	b.bus.Notify()
}

func (b *Base) name() string {
	if n := b.Name(); n != "" {
		return n
	}
	return b.ID()
}

// reverseLookup finds the vendor code for a human label.
func reverseLookup(table map[string]string, label string) (string, bool) {
	for k, v := range table {
		if v == label {
			return k, true
		}
	}
	return "", false
}

// command is the shared protocol for every mutating call: send, branch
// on returnCode, refresh detail on success or record the formatted
// error on failure.
func (b *Base) command(ctx context.Context, api string, params map[string]string, name string) error {
	rsp := b.api.Request(ctx, api, params, catlink.MethodPost)
	if rsp.ReturnCode() != 0 {
		msg := rsp.ErrorText()
		zap.S().Errorf("%s failed for %s: %s", name, b.name(), msg)
		b.setActionError(msg)
		return errors.New(msg)
	}
	b.refresh(ctx)
	zap.S().Infof("%s for %s: %v", name, b.name(), params)
	return nil
}

// toggleParam renders a boolean for the vendor's enable parameters.
func toggleParam(enable bool) string {
	if enable {
		return "true"
	}
	return "false"
}

func (b *Base) SelectMode(ctx context.Context, mode string) error {
	code, ok := reverseLookup(b.modes, mode)
	if !ok {
		zap.S().Warnf("select mode failed for %q in %v", mode, b.modes)
		return errors.Errorf("unknown mode %q", mode)
	}
	return b.command(ctx, b.modeAPI, map[string]string{
		b.modeParam: code,
		"deviceId":  b.ID(),
	}, "select mode")
}

func (b *Base) SelectAction(ctx context.Context, action string) error {
	code, ok := reverseLookup(b.actions, action)
	if !ok {
		zap.S().Warnf("select action failed for %q in %v", action, b.actions)
		return errors.Errorf("unknown action %q", action)
	}
	return b.command(ctx, b.actionAPI, map[string]string{
		b.actionParam: code,
		"deviceId":    b.ID(),
	}, "select action")
}

// LastSync renders the device heartbeat timestamp, empty when absent.
func (b *Base) LastSync() string {
	ts := cast.ToInt64(b.Detail()["lastHeartBeatTimestamp"])
	if ts == 0 {
		return ""
	}
	return time.UnixMilli(ts).Format("2006-01-02 15:04:05")
}
