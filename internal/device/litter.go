package device

import (
	"context"
	"sync"

	"github.com/spf13/cast"
)

const defaultMaxLitterSamples = 24

// litterState is shared by the litter-box family: a rolling window of
// computed litter weight sampled once per detail refresh, plus the
// consumable counters those devices report.
type litterState struct {
	*Base
	*logsTracker

	weightMu    sync.Mutex
	weights     []float64
	maxSamples  int
	emptyWeight float64
}

func newLitterState(b *Base, logsAPI, logsKey string) *litterState {
	l := &litterState{
		Base:        b,
		logsTracker: newLogsTracker(b, logsAPI, logsKey),
		maxSamples:  defaultMaxLitterSamples,
		emptyWeight: b.override.EmptyWeight,
	}
	if b.override.MaxLitterSamples > 0 {
		l.maxSamples = b.override.MaxLitterSamples
	}
	return l
}

// sampleWeight records one litter-weight sample; wired into the
// variant's afterDetail hook so the window advances once per refresh.
func (l *litterState) sampleWeight(context.Context) {
	raw, ok := l.Detail()["catLitterWeight"]
	if !ok {
		return
	}
	w := cast.ToFloat64(raw) - l.emptyWeight
	l.weightMu.Lock()
	l.weights = append(l.weights, w)
	if len(l.weights) > l.maxSamples {
		l.weights = l.weights[len(l.weights)-l.maxSamples:]
	}
	l.weightMu.Unlock()
}

// LitterWeight returns the most recent computed sample.
func (l *litterState) LitterWeight() float64 {
	l.weightMu.Lock()
	defer l.weightMu.Unlock()
	if len(l.weights) == 0 {
		return 0
	}
	return l.weights[len(l.weights)-1]
}

// Occupied reports whether any adjacent sample pair in the window is
// rising. Added weight followed by removal implies a cat visited; this
// is a heuristic, not a sensor reading.
func (l *litterState) Occupied() bool {
	l.weightMu.Lock()
	defer l.weightMu.Unlock()
	for i := 0; i+1 < len(l.weights); i++ {
		if l.weights[i] < l.weights[i+1] {
			return true
		}
	}
	return false
}

func (l *litterState) LitterRemainingDays() int {
	return cast.ToInt(l.Detail()["litterCountdown"])
}

func (l *litterState) TotalCleanTime() int {
	det := l.Detail()
	return cast.ToInt(det["inductionTimes"]) + cast.ToInt(det["manualTimes"])
}

func (l *litterState) ManualCleanTime() int {
	return cast.ToInt(l.Detail()["manualTimes"])
}

func (l *litterState) DeodorantCountdown() int {
	return cast.ToInt(l.Detail()["deodorantCountdown"])
}

func (l *litterState) Online() bool {
	return cast.ToBool(l.Detail()["online"])
}
