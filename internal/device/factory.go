package device

import (
	"strings"

	"github.com/spf13/cast"

	"github.com/openpetcare/catbridge/config"
)

// Ensure every variant satisfies the registry interfaces
var (
	_ Device = (*Base)(nil)
	_ Device = (*LitterBox)(nil)
	_ Device = (*Scooper)(nil)
	_ Device = (*C08)(nil)
	_ Device = (*VisualProUltra)(nil)
	_ Device = (*Feeder)(nil)
	_ Device = (*Fountain)(nil)
	_ Device = (*CatProfile)(nil)

	_ LogsCapable = (*LitterBox)(nil)
	_ LogsCapable = (*Scooper)(nil)
	_ LogsCapable = (*C08)(nil)
	_ LogsCapable = (*VisualProUltra)(nil)
	_ LogsCapable = (*Feeder)(nil)
	_ LogsCapable = (*Fountain)(nil)
)

// Create maps a vendor device-type tag onto the matching variant. This
// is the single dispatch point; unrecognized tags fall back to the
// generic passthrough device.
func Create(api API, dat map[string]interface{}, override *config.DeviceOverride) Device {
	typ := cast.ToString(dat["deviceType"])
	switch typ {
	case "CAT":
		return NewCatProfile(api, dat, override)
	case "C08":
		return NewC08(api, dat, override)
	case "SCOOPER":
		return NewScooper(api, dat, override)
	case "LITTER_BOX_599":
		return NewLitterBox(api, dat, override)
	case "VISUAL_PRO_ULTRA":
		return NewVisualProUltra(api, dat, override)
	case "FEEDER":
		return NewFeeder(api, dat, override)
	}
	if strings.HasPrefix(typ, "PURE") {
		return NewFountain(api, dat, override)
	}
	return NewBase(api, dat, override)
}
