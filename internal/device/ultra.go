package device

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/openpetcare/catbridge/config"
	"github.com/openpetcare/catbridge/internal/catlink"
)

const (
	ultraNameSuffix = " (Limited Support)"
	ultraLogCap     = 10
)

// VisualProUltra has only partial vendor API coverage: detail comes
// from the brief-info endpoint and logs from the time-ranged timeline.
type VisualProUltra struct {
	*litterState
}

func NewVisualProUltra(api API, dat map[string]interface{}, override *config.DeviceOverride) *VisualProUltra {
	b := newBase(api, dat, override)
	b.detailAPI = catlink.APIUltraBriefInfo
	d := &VisualProUltra{litterState: newLitterState(b, catlink.APIUltraLogTimeline, "records")}
	d.logsTracker.max = ultraLogCap
	b.afterDetail = d.sampleWeight
	return d
}

func (d *VisualProUltra) Name() string {
	name := d.Base.Name()
	if strings.HasSuffix(name, ultraNameSuffix) {
		return name
	}
	return strings.TrimSpace(name + ultraNameSuffix)
}

func (d *VisualProUltra) TotalCleanTime() int {
	return cast.ToInt(d.Detail()["totalCleanTimes"])
}

// RefreshLogs pulls today's first timeline page.
func (d *VisualProUltra) RefreshLogs(ctx context.Context) {
	rsp := d.api.Request(ctx, catlink.APIUltraLogTimeline, map[string]string{
		"deviceId":   d.ID(),
		"date":       time.Now().Format("2006-01-02"),
		"pageNumber": "1",
		"pageSize":   "10",
		"type":       "0",
		"subType":    "0",
	}, catlink.MethodGet)
	entries := rsp.DataList("records")
	if len(entries) == 0 {
		zap.S().Warnf("got device logs for %s failed: %s", d.name(), rsp.ErrorText())
	}
	d.setEntries(entries)
}
