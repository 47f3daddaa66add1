package device

import (
	"sync"

	"github.com/asaskevich/EventBus"
	"go.uber.org/zap"
)

// ListenerBus fans out device updates to bound consumers. Consumers
// register under a key of their choosing; fan-out is synchronous.
type ListenerBus struct {
	bus   EventBus.Bus
	topic string

	mu       sync.Mutex
	handlers map[string]func()
}

func NewListenerBus(deviceID string) *ListenerBus {
	return &ListenerBus{
		bus:      EventBus.New(),
		topic:    "device:" + deviceID,
		handlers: make(map[string]func()),
	}
}

func (l *ListenerBus) Subscribe(key string, fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if old, ok := l.handlers[key]; ok {
		_ = l.bus.Unsubscribe(l.topic, old)
	}
	l.handlers[key] = fn
	if err := l.bus.Subscribe(l.topic, fn); err != nil {
		zap.S().Errorf("subscribe %s failed: %s", l.topic, err.Error())
	}
}

func (l *ListenerBus) Unsubscribe(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if fn, ok := l.handlers[key]; ok {
		_ = l.bus.Unsubscribe(l.topic, fn)
		delete(l.handlers, key)
	}
}

// Notify invokes every registered handler.
func (l *ListenerBus) Notify() {
	l.bus.Publish(l.topic)
}

func (l *ListenerBus) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.handlers)
}
