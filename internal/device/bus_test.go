package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListenerBusNotify(t *testing.T) {
	bus := NewListenerBus("d1")
	var a, b int
	bus.Subscribe("a", func() { a++ })
	bus.Subscribe("b", func() { b++ })

	bus.Notify()
	bus.Notify()

	assert.Equal(t, 2, a)
	assert.Equal(t, 2, b)
	assert.Equal(t, 2, bus.Len())
}

func TestListenerBusReplaceByKey(t *testing.T) {
	bus := NewListenerBus("d1")
	var old, cur int
	bus.Subscribe("a", func() { old++ })
	bus.Subscribe("a", func() { cur++ })

	bus.Notify()

	assert.Equal(t, 0, old)
	assert.Equal(t, 1, cur)
	assert.Equal(t, 1, bus.Len())
}

func TestListenerBusUnsubscribe(t *testing.T) {
	bus := NewListenerBus("d1")
	var fired int
	bus.Subscribe("a", func() { fired++ })
	bus.Unsubscribe("a")

	bus.Notify()

	assert.Equal(t, 0, fired)
	assert.Equal(t, 0, bus.Len())

	// Unsubscribing an unknown key is harmless.
	bus.Unsubscribe("missing")
}
