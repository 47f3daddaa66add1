package device

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/openpetcare/catbridge/config"
	"github.com/openpetcare/catbridge/internal/catlink"
)

const (
	defaultQuietStart = "22:00"
	defaultQuietEnd   = "07:00"
)

// c08Action pairs the action verb with the behavior it applies to.
type c08Action struct {
	Action   string
	Behavior string
}

var c08Actions = map[string]c08Action{
	"Clean: start":  {"RUN", "CLEAN"},
	"Clean: pause":  {"PAUSE", "CLEAN"},
	"Clean: cancel": {"CANCEL", "CLEAN"},
	"Pave: start":   {"RUN", "PAVE"},
	"Pave: pause":   {"PAUSE", "PAVE"},
}

var c08LitterTypes = map[string]string{
	"00": "Bentonite",
	"02": "Mixed",
}

var c08SafeTimes = map[string]string{
	"1":  "1 min",
	"3":  "3 min",
	"5":  "5 min",
	"7":  "7 min",
	"10": "10 min",
	"15": "15 min",
	"30": "30 min",
}

// NoticeItems maps notification slugs onto the vendor item codes.
var NoticeItems = map[string]string{
	"cat_came":            "LITTERBOX_599_CAT_CAME",
	"box_full":            "LITTERBOX_599_BOX_FULL",
	"replace_garbage_bag": "REPLACE_GARBAGE_BAG",
	"wash_scooper":        "WASH_SCOOPER",
	"replace_deodorant":   "REPLACE_DEODORANT",
	"litter_not_enough":   "LITTERBOX_599_CAT_LITTER_NOT_ENOUGH",
	"sandbox_not_enough":  "LITTERBOX_599_SANDBOX_NOT_ENOUGHT",
	"anti_pinch":          "LITTERBOX_599_ANTI_PINCH",
	"firmware_updated":    "LITTERBOX_599_FIRMWARE_UPDATED",
}

// C08 is the enhanced litter box tier. Each detail refresh also pulls
// a concurrent batch of supplemental endpoints (usage stats, linked
// pets, Wi-Fi info, notification configs, device metadata).
type C08 struct {
	*litterState

	extraMu        sync.RWMutex
	deviceStats    map[string]interface{}
	petStats       []map[string]interface{}
	linkedPets     []map[string]interface{}
	selectablePets []map[string]interface{}
	wifiInfo       map[string]interface{}
	noticeConfigs  []map[string]interface{}
	noticeSwitches map[string]bool
	aboutDevice    map[string]interface{}
	lastAction     string
}

func NewC08(api API, dat map[string]interface{}, override *config.DeviceOverride) *C08 {
	b := newBase(api, dat, override)
	b.detailAPI = catlink.APIC08Info
	b.modeAPI = catlink.APILitterboxChangeMode
	b.modes = map[string]string{
		"00": "auto",
		"01": "manual",
		"02": "scheduled",
	}
	d := &C08{
		litterState:    newLitterState(b, catlink.APILitterboxLogTop5, "scooperLogTop5"),
		noticeSwitches: map[string]bool{},
	}
	b.afterDetail = func(ctx context.Context) {
		d.sampleWeight(ctx)
		d.refreshExtras(ctx)
	}
	return d
}

func (d *C08) Error() string {
	if e := d.ActionError(); e != "" {
		return e
	}
	if msg := d.detailStr("currentMessage"); msg != "" {
		return msg
	}
	return "Normal Operation"
}

func (d *C08) Actions() map[string]string {
	out := make(map[string]string, len(c08Actions))
	for label := range c08Actions {
		out[label] = label
	}
	return out
}

// Action returns the last successfully issued composite action.
func (d *C08) Action() string {
	d.extraMu.RLock()
	defer d.extraMu.RUnlock()
	return d.lastAction
}

// SelectAction issues a composite clean/pave command through the v3
// endpoint.
func (d *C08) SelectAction(ctx context.Context, action string) error {
	payload, ok := c08Actions[action]
	if !ok {
		zap.S().Warnf("select action failed for %q", action)
		return errors.Errorf("unknown action %q", action)
	}
	err := d.command(ctx, catlink.APIC08ActionCmd, map[string]string{
		"action":   payload.Action,
		"behavior": payload.Behavior,
		"deviceId": d.ID(),
	}, "select action")
	if err == nil {
		d.extraMu.Lock()
		d.lastAction = action
		d.extraMu.Unlock()
	}
	return err
}

func (d *C08) LitterTypes() map[string]string { return c08LitterTypes }

func (d *C08) LitterType() string {
	raw := d.detailStr("litterType")
	if raw == "" {
		return ""
	}
	if len(raw) == 1 {
		raw = "0" + raw
	}
	if label, ok := c08LitterTypes[raw]; ok {
		return label
	}
	return raw
}

func (d *C08) SelectLitterType(ctx context.Context, litterType string) error {
	code, ok := reverseLookup(c08LitterTypes, litterType)
	if !ok {
		zap.S().Warnf("select litter type failed for %q", litterType)
		return errors.Errorf("unknown litter type %q", litterType)
	}
	return d.command(ctx, catlink.APIC08CatLitterSetting, map[string]string{
		"litterType": code,
		"deviceId":   d.ID(),
	}, "select litter type")
}

func (d *C08) SafeTimeOptions() map[string]string { return c08SafeTimes }

func (d *C08) SafeTime() string {
	raw := d.detailStr("safeTime")
	if raw == "" {
		return ""
	}
	if label, ok := c08SafeTimes[raw]; ok {
		return label
	}
	return raw
}

func (d *C08) SelectSafeTime(ctx context.Context, safeTime string) error {
	code, ok := reverseLookup(c08SafeTimes, safeTime)
	if !ok {
		zap.S().Warnf("select safe time failed for %q", safeTime)
		return errors.Errorf("unknown safe time %q", safeTime)
	}
	return d.command(ctx, catlink.APIC08SafeTimeSetting, map[string]string{
		"safeTime": code,
		"deviceId": d.ID(),
	}, "select safe time")
}

func (d *C08) setToggle(ctx context.Context, api string, enable bool, name string) error {
	return d.command(ctx, api, map[string]string{
		"enable":   toggleParam(enable),
		"deviceId": d.ID(),
	}, name)
}

// SetQuietMode toggles the quiet window, reusing the currently
// configured window or the vendor default 22:00-07:00.
func (d *C08) SetQuietMode(ctx context.Context, enable bool) error {
	start, end := d.quietTimeRange()
	return d.command(ctx, catlink.APIC08AutoBurial, map[string]string{
		"enable":   toggleParam(enable),
		"times":    start + "-" + end,
		"deviceId": d.ID(),
	}, "quiet mode")
}

func (d *C08) SetAutoBurial(ctx context.Context, enable bool) error {
	return d.setToggle(ctx, catlink.APIC08AutoBurial, enable, "auto burial")
}

func (d *C08) SetContinuousCleaning(ctx context.Context, enable bool) error {
	return d.setToggle(ctx, catlink.APIC08ContinuousClean, enable, "continuous cleaning")
}

func (d *C08) SetChildLock(ctx context.Context, enable bool) error {
	status := "UNLOCKED"
	if enable {
		status = "LOCKED"
	}
	return d.command(ctx, catlink.APIC08KeyLock, map[string]string{
		"lockStatus": status,
		"deviceId":   d.ID(),
	}, "child lock")
}

func (d *C08) SetIndicatorLight(ctx context.Context, enable bool) error {
	status := "CLOSED"
	if enable {
		status = "ALWAYS_OPEN"
	}
	return d.command(ctx, catlink.APIC08IndicatorLight, map[string]string{
		"status":   status,
		"deviceId": d.ID(),
	}, "indicator light")
}

func (d *C08) SetKeypadTone(ctx context.Context, enable bool) error {
	tone := "DISABLED"
	if enable {
		tone = "ENABLED"
	}
	return d.command(ctx, catlink.APIC08KeypadTone, map[string]string{
		"panelTone": tone,
		"kind":      "00",
		"deviceId":  d.ID(),
	}, "keypad tone")
}

func (d *C08) SetAutoPetWeightUpdate(ctx context.Context, enable bool) error {
	return d.setToggle(ctx, catlink.APIC08PetWeightUpdate, enable, "auto pet weight update")
}

func (d *C08) SetKittyModel(ctx context.Context, enable bool) error {
	return d.setToggle(ctx, catlink.APIC08KittyModelSwitch, enable, "kitty model")
}

// SetNotice toggles one notification item by vendor item code.
func (d *C08) SetNotice(ctx context.Context, item string, enable bool) error {
	return d.command(ctx, catlink.APIC08NoticeConfigSet, map[string]string{
		"noticeItem":   item,
		"noticeSwitch": toggleParam(enable),
		"deviceId":     d.ID(),
	}, "notice config")
}

func (d *C08) QuietMode() bool {
	det := d.Detail()
	if v, ok := det["quietEnable"]; ok {
		return cast.ToBool(v)
	}
	return d.detailStr("quietTimes") != ""
}

func (d *C08) AutoBurial() bool {
	return cast.ToBool(d.Detail()["autoBurial"])
}

func (d *C08) ContinuousCleaning() bool {
	return cast.ToBool(d.Detail()["continuousCleaning"])
}

func (d *C08) ChildLock() bool {
	return stringFlag(d.detailStr("keyLock"), "01", "LOCKED", "ON")
}

func (d *C08) IndicatorLight() bool {
	return stringFlag(d.detailStr("indicatorLight"), "ALWAYS_OPEN", "01", "ON")
}

func (d *C08) KeypadTone() bool {
	return stringFlag(d.detailStr("paneltone"), "01", "ENABLED", "ON")
}

func (d *C08) AutoPetWeightUpdate() bool {
	return cast.ToBool(d.Detail()["autoUpdatePetWeight"])
}

func (d *C08) KittyModel() bool {
	return cast.ToBool(d.Detail()["kittenModel"])
}

// Notice reports the switch state of one notification slug.
func (d *C08) Notice(slug string) bool {
	item, ok := NoticeItems[slug]
	if !ok {
		return false
	}
	d.extraMu.RLock()
	defer d.extraMu.RUnlock()
	return d.noticeSwitches[item]
}

func (d *C08) quietTimeRange() (string, string) {
	times := d.detailStr("quietTimes")
	if parts := strings.SplitN(times, "-", 2); len(parts) == 2 &&
		parts[0] != "" && parts[1] != "" {
		return parts[0], parts[1]
	}
	return defaultQuietStart, defaultQuietEnd
}

// refreshExtras pulls the supplemental endpoints concurrently and joins
// before merging.
func (d *C08) refreshExtras(ctx context.Context) {
	pms := func() map[string]string {
		return map[string]string{"deviceId": d.ID()}
	}
	var (
		statsRsp, petsRsp, linkedRsp, selectableRsp catlink.Response
		wifiRsp, noticeRsp, aboutRsp                catlink.Response
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		statsRsp = d.api.Request(gctx, catlink.APIC08StatsCompare, pms(), catlink.MethodGet)
		return nil
	})
	g.Go(func() error {
		petsRsp = d.api.Request(gctx, catlink.APIC08StatsCats, pms(), catlink.MethodGet)
		return nil
	})
	g.Go(func() error {
		linkedRsp = d.api.Request(gctx, catlink.APIC08LinkedPets, pms(), catlink.MethodGet)
		return nil
	})
	g.Go(func() error {
		selectableRsp = d.api.Request(gctx, catlink.APIC08CatListSelectable, pms(), catlink.MethodGet)
		return nil
	})
	g.Go(func() error {
		wifiRsp = d.api.Request(gctx, catlink.APIC08WifiInfo, pms(), catlink.MethodGet)
		return nil
	})
	g.Go(func() error {
		noticeRsp = d.api.Request(gctx, catlink.APIC08NoticeConfigList, pms(), catlink.MethodGet)
		return nil
	})
	g.Go(func() error {
		aboutRsp = d.api.Request(gctx, catlink.APIC08AboutDevice, pms(), catlink.MethodGet)
		return nil
	})
	_ = g.Wait()

	noticeConfigs := noticeRsp.DataList("noticeConfigs")
	noticeSwitches := make(map[string]bool, len(noticeConfigs))
	for _, cfg := range noticeConfigs {
		if item := cast.ToString(cfg["noticeItem"]); item != "" {
			noticeSwitches[item] = cast.ToBool(cfg["noticeSwitch"])
		}
	}

	d.extraMu.Lock()
	d.deviceStats = statsRsp.DataObject("compareData")
	d.petStats = petsRsp.DataList("cats")
	d.linkedPets = listPayload(linkedRsp)
	d.selectablePets = selectableRsp.DataList("cats")
	d.wifiInfo = wifiRsp.DataObject("wifiInfo")
	d.noticeConfigs = noticeConfigs
	d.noticeSwitches = noticeSwitches
	d.aboutDevice = aboutRsp.DataObject("info")
	d.extraMu.Unlock()
}

// listPayload handles endpoints whose data field is itself the list.
func listPayload(rsp catlink.Response) []map[string]interface{} {
	raw, ok := rsp["data"].([]interface{})
	if !ok {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

func (d *C08) WifiRSSI() string {
	d.extraMu.RLock()
	defer d.extraMu.RUnlock()
	return cast.ToString(d.wifiInfo["rssi"])
}

func (d *C08) WifiSSID() string {
	d.extraMu.RLock()
	defer d.extraMu.RUnlock()
	if s := cast.ToString(d.wifiInfo["wifiName"]); s != "" {
		return s
	}
	return cast.ToString(d.wifiInfo["wifi_name"])
}

func (d *C08) StatsTimes() int {
	d.extraMu.RLock()
	defer d.extraMu.RUnlock()
	return cast.ToInt(d.deviceStats["times"])
}

func (d *C08) StatsWeightAvg() float64 {
	d.extraMu.RLock()
	defer d.extraMu.RUnlock()
	return cast.ToFloat64(d.deviceStats["weightAvg"])
}

func (d *C08) StatsDurationAvg() int {
	d.extraMu.RLock()
	defer d.extraMu.RUnlock()
	return cast.ToInt(d.deviceStats["durationAvg"])
}

func (d *C08) LinkedPets() []map[string]interface{} {
	d.extraMu.RLock()
	defer d.extraMu.RUnlock()
	return d.linkedPets
}

func (d *C08) SelectablePets() []map[string]interface{} {
	d.extraMu.RLock()
	defer d.extraMu.RUnlock()
	return d.selectablePets
}

func (d *C08) PetStats() []map[string]interface{} {
	d.extraMu.RLock()
	defer d.extraMu.RUnlock()
	return d.petStats
}

func (d *C08) NoticeConfigs() []map[string]interface{} {
	d.extraMu.RLock()
	defer d.extraMu.RUnlock()
	return d.noticeConfigs
}

func (d *C08) AboutDevice() map[string]interface{} {
	d.extraMu.RLock()
	defer d.extraMu.RUnlock()
	return d.aboutDevice
}

func stringFlag(value string, trueValues ...string) bool {
	v := strings.ToUpper(value)
	for _, t := range trueValues {
		if v == t {
			return true
		}
	}
	return false
}
