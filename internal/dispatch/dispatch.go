// Package dispatch routes decoded messages and capability events to
// registered callbacks. It is the single surface collaborators see for both
// UDP traffic and the out-of-band event queue.
package dispatch

import (
	"runtime/debug"
	"sync"

	"github.com/gridlink/gridlink/internal/logger"
	"github.com/gridlink/gridlink/internal/protocol/packets"
	"github.com/gridlink/gridlink/pkg/osd"
)

// PacketCallback handles one decoded message. from identifies the circuit
// that delivered it. Callbacks run on the inbound pump; they must not block
// and must not re-enter operations that take the same circuit's lock.
type PacketCallback func(from string, pkt packets.Packet)

// EventCallback handles one capability event by name and OSD body.
type EventCallback func(name string, body osd.Value)

// Handle identifies a registration for later removal, sidestepping
// function-value equality.
type Handle uint64

// WildcardEvent subscribes an event callback to every event name.
const WildcardEvent = "*"

type packetEntry struct {
	h  Handle
	cb PacketCallback
}

type eventEntry struct {
	h  Handle
	cb EventCallback
}

// Dispatcher is a mapping from packet type to an ordered callback list,
// plus a parallel surface for named capability events.
type Dispatcher struct {
	mu     sync.RWMutex
	next   Handle
	byType map[packets.PacketType][]packetEntry
	events map[string][]eventEntry
}

// New returns an empty dispatcher.
func New() *Dispatcher {
	return &Dispatcher{
		byType: make(map[packets.PacketType][]packetEntry),
		events: make(map[string][]eventEntry),
	}
}

// Register appends cb to the callback list for t and returns its removal
// handle. Callbacks fire in registration order.
func (d *Dispatcher) Register(t packets.PacketType, cb PacketCallback) Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.next++
	d.byType[t] = append(d.byType[t], packetEntry{h: d.next, cb: cb})
	return d.next
}

// Unregister removes the registration h for t. Unknown handles are a
// no-op.
func (d *Dispatcher) Unregister(t packets.PacketType, h Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entries := d.byType[t]
	for i, e := range entries {
		if e.h == h {
			d.byType[t] = append(entries[:i:i], entries[i+1:]...)
			return
		}
	}
}

// RegisterEvent appends cb to the callback list for the named capability
// event. Use WildcardEvent to observe every event.
func (d *Dispatcher) RegisterEvent(name string, cb EventCallback) Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.next++
	d.events[name] = append(d.events[name], eventEntry{h: d.next, cb: cb})
	return d.next
}

// UnregisterEvent removes the registration h for the named event.
func (d *Dispatcher) UnregisterEvent(name string, h Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entries := d.events[name]
	for i, e := range entries {
		if e.h == h {
			d.events[name] = append(entries[:i:i], entries[i+1:]...)
			return
		}
	}
}

// Dispatch invokes every callback registered for the packet's type, in
// registration order. A panicking callback is logged and isolated; later
// callbacks still run.
func (d *Dispatcher) Dispatch(from string, pkt packets.Packet) {
	d.mu.RLock()
	entries := d.byType[pkt.Type()]
	snapshot := make([]packetEntry, len(entries))
	copy(snapshot, entries)
	d.mu.RUnlock()

	for _, e := range snapshot {
		invokePacket(e.cb, from, pkt)
	}
}

// DispatchEvent invokes the callbacks for the named event, then the
// wildcard subscribers.
func (d *Dispatcher) DispatchEvent(name string, body osd.Value) {
	d.mu.RLock()
	entries := d.events[name]
	snapshot := make([]eventEntry, 0, len(entries)+len(d.events[WildcardEvent]))
	snapshot = append(snapshot, entries...)
	snapshot = append(snapshot, d.events[WildcardEvent]...)
	d.mu.RUnlock()

	for _, e := range snapshot {
		invokeEvent(e.cb, name, body)
	}
}

func invokePacket(cb PacketCallback, from string, pkt packets.Packet) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("packet callback panicked",
				logger.KeyPacket, pkt.Type().String(),
				logger.KeyCircuit, from,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	cb(from, pkt)
}

func invokeEvent(cb EventCallback, name string, body osd.Value) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("event callback panicked",
				"event", name,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	cb(name, body)
}
