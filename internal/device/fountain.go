package device

import (
	"github.com/spf13/cast"

	"github.com/openpetcare/catbridge/config"
	"github.com/openpetcare/catbridge/internal/catlink"
)

// Fountain is the PurePro water fountain. Its modes are spray patterns
// and its detail payload may arrive at the data root instead of under
// deviceInfo.
type Fountain struct {
	*Base
	*logsTracker
}

func NewFountain(api API, dat map[string]interface{}, override *config.DeviceOverride) *Fountain {
	b := newBase(api, dat, override)
	b.detailAPI = catlink.APIPureDetail
	b.detailAtRoot = true
	b.modeAPI = catlink.APIPureRunMode
	b.modeParam = "runMode"
	b.modes = map[string]string{
		"CONTINUOUS_SPRING":   "Flowing mode",
		"INTERMITTENT_SPRING": "Eco-mode",
		"INDUCTION_SPRING":    "Smart mode",
	}
	return &Fountain{
		Base:        b,
		logsTracker: newLogsTracker(b, catlink.APIPureLogTop5, "pureLogTop5"),
	}
}

// State reports the spray pattern label when one is active, otherwise
// the raw work status.
func (d *Fountain) State() string {
	if label, ok := d.modes[d.detailStr("runMode")]; ok {
		return label
	}
	return d.detailStr("workStatus")
}

func (d *Fountain) Mode() string {
	return d.modes[d.detailStr("runMode")]
}

func (d *Fountain) Online() bool {
	return cast.ToBool(d.Detail()["online"]) ||
		cast.ToBool(d.Data()["online"]) ||
		d.detailStr("onlineStatus") == "ONLINE" ||
		d.dataStr("onlineStatus") == "ONLINE"
}

func (d *Fountain) WaterLevel() int {
	return cast.ToInt(d.Detail()["waterLevelNum"])
}

func (d *Fountain) FilterLife() int {
	return cast.ToInt(d.Detail()["filterElementTimeCountdown"])
}

func (d *Fountain) WaterTemperature() float64 {
	return cast.ToFloat64(d.Detail()["waterTemperature"])
}

func (d *Fountain) UVActive() bool {
	return d.detailStr("ultravioletRaysSwitch") == "OPEN"
}

func (d *Fountain) Heating() bool {
	return d.detailStr("waterHeatSwitch") == "OPEN"
}

func (d *Fountain) LightActive() bool {
	return d.detailStr("pureLightStatus") == "OPEN"
}

func (d *Fountain) HairCleaning() bool {
	return d.detailStr("fluffyHairStatus") != "STOP"
}
