package device

import (
	"strings"
	"sync"
	"time"

	"github.com/openpetcare/catbridge/config"
	"github.com/openpetcare/catbridge/internal/catlink"
)

const scooperErrorLogCap = 20

// Scooper is the original SCOOPER tier. Detail comes from the generic
// device info endpoint; commands go through the generic mode and action
// endpoints.
type Scooper struct {
	*litterState

	errMu     sync.Mutex
	errorLogs []map[string]string
}

func NewScooper(api API, dat map[string]interface{}, override *config.DeviceOverride) *Scooper {
	b := newBase(api, dat, override)
	b.modes = map[string]string{
		"00": "auto",
		"01": "manual",
		"02": "time",
		"03": "empty",
	}
	b.actions = map[string]string{
		"00": "pause",
		"01": "start",
	}
	d := &Scooper{litterState: newLitterState(b, catlink.APIScooperLogTop5, "scooperLogTop5")}
	b.afterDetail = d.sampleWeight
	return d
}

func (d *Scooper) Temperature() string { return d.detailStr("temperature") }
func (d *Scooper) Humidity() string    { return d.detailStr("humidity") }

// Error keeps a rolling in-memory log of real errors; the vendor
// reports "Device Online" as a pseudo error which is not recorded.
func (d *Scooper) Error() string {
	if e := d.ActionError(); e != "" {
		return e
	}
	msg := d.detailStr("currentMessage")
	if msg == "" {
		msg = d.dataStr("currentErrorMessage")
	}
	if msg != "" && strings.ToLower(msg) != "device online" {
		d.recordError(msg)
	}
	return msg
}

func (d *Scooper) recordError(msg string) {
	d.errMu.Lock()
	defer d.errMu.Unlock()
	d.errorLogs = append(d.errorLogs, map[string]string{
		"time":  time.Now().Format("2006-01-02 15:04:05"),
		"error": msg,
	})
	if len(d.errorLogs) > scooperErrorLogCap {
		d.errorLogs = d.errorLogs[len(d.errorLogs)-scooperErrorLogCap:]
	}
}

func (d *Scooper) ErrorLogs() []map[string]string {
	d.errMu.Lock()
	defer d.errMu.Unlock()
	out := make([]map[string]string, len(d.errorLogs))
	copy(out, d.errorLogs)
	return out
}
