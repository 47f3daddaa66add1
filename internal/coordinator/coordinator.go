package coordinator

import (
	"context"
	"sync"

	"github.com/spf13/cast"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/openpetcare/catbridge/config"
	"github.com/openpetcare/catbridge/internal/catlink"
	"github.com/openpetcare/catbridge/internal/device"
)

// Account is the session surface the coordinator polls through.
type Account interface {
	device.API
	DeviceList(ctx context.Context) []map[string]interface{}
	CatList(ctx context.Context) []map[string]interface{}
	CatSummary(ctx context.Context, petID string) catlink.Response
	Config() config.AccountConfig
	UID() string
}

// Coordinator owns one account's device registry and drives the
// periodic refresh cycle.
type Coordinator struct {
	account Account
	cfg     config.AccountConfig
	allow   map[string]bool

	pollMu sync.Mutex

	regMu   sync.RWMutex
	devices map[string]device.Device
}

func New(account Account) *Coordinator {
	cfg := account.Config()
	var allow map[string]bool
	if len(cfg.DeviceIDs) > 0 {
		allow = make(map[string]bool, len(cfg.DeviceIDs))
		for _, id := range cfg.DeviceIDs {
			allow[id] = true
		}
	}
	return &Coordinator{
		account: account,
		cfg:     cfg,
		allow:   allow,
		devices: make(map[string]device.Device),
	}
}

// Devices returns a snapshot of the registry.
func (c *Coordinator) Devices() map[string]device.Device {
	c.regMu.RLock()
	defer c.regMu.RUnlock()
	out := make(map[string]device.Device, len(c.devices))
	for k, v := range c.devices {
		out[k] = v
	}
	return out
}

func (c *Coordinator) Device(id string) device.Device {
	c.regMu.RLock()
	defer c.regMu.RUnlock()
	return c.devices[id]
}

// Poll runs one refresh cycle: reconcile appliances, refresh their
// detail and logs, then reconcile pet profiles. Only one cycle runs at
// a time per account.
func (c *Coordinator) Poll(ctx context.Context) {
	c.pollMu.Lock()
	defer c.pollMu.Unlock()
	c.reconcileDevices(ctx)
	c.reconcileCats(ctx)
}

// PollLogs refreshes event logs for every log-capable device; driven
// on its own faster schedule.
func (c *Coordinator) PollLogs(ctx context.Context) {
	for _, dvc := range c.Devices() {
		if lc, ok := dvc.(device.LogsCapable); ok {
			lc.RefreshLogs(ctx)
		}
	}
}

// upsert reconciles one raw list entry into the registry. Existing
// devices are updated in place so listener registrations stay valid;
// new ones are built through the factory with any MAC-matched override.
func (c *Coordinator) upsert(dat map[string]interface{}) device.Device {
	id := cast.ToString(dat["id"])
	if id == "" {
		return nil
	}
	if c.allow != nil && !c.allow[id] {
		return nil
	}
	c.regMu.Lock()
	defer c.regMu.Unlock()
	if dvc, ok := c.devices[id]; ok {
		dvc.UpdateData(dat)
		return dvc
	}
	dvc := device.Create(c.account, dat, c.cfg.Override(cast.ToString(dat["mac"])))
	c.devices[id] = dvc
	zap.S().Infof("registered device %s (%s) for %s", id, dvc.Type(), c.account.UID())
	return dvc
}

func (c *Coordinator) reconcileDevices(ctx context.Context) {
	for _, dat := range c.account.DeviceList(ctx) {
		dvc := c.upsert(dat)
		if dvc == nil {
			continue
		}
		dvc.RefreshDetail(ctx)
		if lc, ok := dvc.(device.LogsCapable); ok {
			lc.RefreshLogs(ctx)
		}
	}
}

func (c *Coordinator) reconcileCats(ctx context.Context) {
	cats := c.account.CatList(ctx)
	if len(cats) == 0 {
		return
	}
	// Per-pet summaries are independent; fetch them concurrently and
	// join before reconciling.
	g, gctx := errgroup.WithContext(ctx)
	summaries := make([]map[string]interface{}, len(cats))
	for i, cat := range cats {
		i, cat := i, cat
		g.Go(func() error {
			petID := cast.ToString(cat["id"])
			if petID == "" {
				return nil
			}
			summaries[i] = c.account.CatSummary(gctx, petID).Data()
			return nil
		})
	}
	_ = g.Wait()

	for i, cat := range cats {
		petID := cast.ToString(cat["id"])
		if petID == "" {
			continue
		}
		dat := make(map[string]interface{}, len(cat)+3)
		for k, v := range cat {
			dat[k] = v
		}
		dat["pet_id"] = petID
		dat["id"] = device.CatIDPrefix + petID
		dat["deviceType"] = "CAT"
		if summaries[i] != nil {
			dat["summary_simple"] = summaries[i]
		}
		if dvc := c.upsert(dat); dvc != nil {
			dvc.RefreshDetail(ctx)
		}
	}
}
