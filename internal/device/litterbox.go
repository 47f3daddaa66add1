package device

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/openpetcare/catbridge/config"
	"github.com/openpetcare/catbridge/internal/catlink"
)

// Consumable reset types accepted by the union reset endpoint.
const (
	ConsumableLitter    = "CAT_LITTER"
	ConsumableDeodorant = "DEODORIZER_02"
)

var boxFullLevels = map[string]string{
	"LEVEL_01": "Level 1",
	"LEVEL_02": "Level 2",
	"LEVEL_03": "Level 3",
	"LEVEL_04": "Level 4",
}

var garbageStates = map[string]string{
	"00": "Normal",
	"02": "Movement Started",
	"03": "Moving",
}

// LitterBox is the SCOOPER C1 tier (vendor tag LITTER_BOX_599).
type LitterBox struct {
	*litterState
}

func NewLitterBox(api API, dat map[string]interface{}, override *config.DeviceOverride) *LitterBox {
	b := newBase(api, dat, override)
	b.detailAPI = catlink.APILitterboxInfo
	b.modeAPI = catlink.APILitterboxChangeMode
	b.actionAPI = catlink.APILitterboxActionCmd
	b.modes = map[string]string{
		"00": "auto",
		"01": "manual",
		"02": "time",
	}
	b.actions = map[string]string{
		"01": "Cleaning",
		"00": "Pause",
	}
	d := &LitterBox{litterState: newLitterState(b, catlink.APILitterboxLogTop5, "scooperLogTop5")}
	b.afterDetail = d.sampleWeight
	return d
}

func (d *LitterBox) Error() string {
	if e := d.ActionError(); e != "" {
		return e
	}
	if msg := d.detailStr("currentError"); msg != "" {
		return msg
	}
	return "Normal Operation"
}

func (d *LitterBox) BoxFullLevels() map[string]string { return boxFullLevels }

// BoxFullSensitivity maps the raw level onto its label, tolerating
// plain digits the older firmware reports.
func (d *LitterBox) BoxFullSensitivity() string {
	raw := d.detailStr("boxFullSensitivity")
	if raw == "" {
		return ""
	}
	if label, ok := boxFullLevels[raw]; ok {
		return label
	}
	if len(raw) <= 2 {
		padded := raw
		if len(padded) == 1 {
			padded = "0" + padded
		}
		if label, ok := boxFullLevels["LEVEL_"+padded]; ok {
			return label
		}
	}
	zap.S().Warnf("box full sensitivity %q could not be mapped", raw)
	return ""
}

func (d *LitterBox) SelectBoxFullSensitivity(ctx context.Context, level string) error {
	code, ok := reverseLookup(boxFullLevels, level)
	if !ok {
		zap.S().Warnf("select box full sensitivity failed for %q", level)
		return errors.Errorf("unknown sensitivity %q", level)
	}
	return d.command(ctx, catlink.APIBoxFullSetting, map[string]string{
		"deviceId": d.ID(),
		"level":    code,
	}, "select box full sensitivity")
}

// ChangeBag drives the garbage bag replacement motor; enable extends
// the bag, disable retracts it.
func (d *LitterBox) ChangeBag(ctx context.Context, enable bool) error {
	v := "0"
	if enable {
		v = "1"
	}
	return d.command(ctx, catlink.APIReplaceGarbageBag, map[string]string{
		"enable":   v,
		"deviceId": d.ID(),
	}, "change bag")
}

// ResetConsumable resets the litter or deodorant countdown.
func (d *LitterBox) ResetConsumable(ctx context.Context, consumableType string) error {
	return d.command(ctx, catlink.APIConsumableReset, map[string]string{
		"consumablesType": consumableType,
		"deviceId":        d.ID(),
		"deviceType":      d.Type(),
	}, "reset consumable")
}

func (d *LitterBox) ResetLitter(ctx context.Context) error {
	return d.ResetConsumable(ctx, ConsumableLitter)
}

func (d *LitterBox) ResetDeodorant(ctx context.Context) error {
	return d.ResetConsumable(ctx, ConsumableDeodorant)
}

// KnobStatus derives the knob position from the device error list.
func (d *LitterBox) KnobStatus() string {
	if d.hasErrKey("left_knob_abnormal") {
		return "Empty Mode"
	}
	return "Cleaning Mode"
}

// GarbageToBeFull derives the bag fill warning from the error list.
func (d *LitterBox) GarbageToBeFull() bool {
	return d.hasErrKey("garbage_tobe_full_abnormal")
}

func (d *LitterBox) GarbageStatus() string {
	if s, ok := garbageStates[d.detailStr("garbageStatus")]; ok {
		return s
	}
	return "Unknown"
}

func (d *LitterBox) hasErrKey(key string) bool {
	raw, ok := d.Detail()["deviceErrorList"].([]interface{})
	if !ok {
		return false
	}
	for _, e := range raw {
		m, ok := e.(map[string]interface{})
		if !ok {
			continue
		}
		if strings.Contains(cast.ToString(m["errkey"]), key) {
			return true
		}
	}
	return false
}
