package device

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/openpetcare/catbridge/config"
	"github.com/openpetcare/catbridge/internal/catlink"
)

const feederFoodOutNum = "5"

// Feeder dispenses food on demand. State derives from foodOutStatus
// rather than the shared work-status table.
type Feeder struct {
	*Base
	*logsTracker
}

func NewFeeder(api API, dat map[string]interface{}, override *config.DeviceOverride) *Feeder {
	b := newBase(api, dat, override)
	b.detailAPI = catlink.APIFeederDetail
	return &Feeder{
		Base:        b,
		logsTracker: newLogsTracker(b, catlink.APIFeederLogTop5, "feederLogTop5"),
	}
}

func (d *Feeder) State() string {
	return d.detailStr("foodOutStatus")
}

func (d *Feeder) Error() string {
	if e := d.ActionError(); e != "" {
		return e
	}
	return d.detailStr("error")
}

func (d *Feeder) ErrorMessage() string {
	return d.detailStr("currentErrorMessage")
}

func (d *Feeder) ErrorType() string {
	return d.detailStr("currentErrorType")
}

// Weight is the remaining food weight in grams.
func (d *Feeder) Weight() int {
	return cast.ToInt(d.Detail()["weight"])
}

// FoodOut dispenses one portion.
func (d *Feeder) FoodOut(ctx context.Context) error {
	return d.command(ctx, catlink.APIFeederFoodOut, map[string]string{
		"footOutNum": feederFoodOutNum,
		"deviceId":   d.ID(),
	}, "food out")
}

// LastLog includes the feeder's two free-text log sections.
func (d *Feeder) LastLog() string {
	log := d.lastEntry()
	if log == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%s %s %s %s",
		cast.ToString(log["time"]), cast.ToString(log["event"]),
		cast.ToString(log["firstSection"]), cast.ToString(log["secondSection"])))
}
