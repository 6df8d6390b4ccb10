// Package client ties the circuit engine, dispatcher, settings, and the
// capability event queue into one handle. Feature managers (inventory,
// parcels, chat frontends) share this handle and talk to the core through
// three contracts: registering callbacks, submitting messages, and
// consuming structured-data values.
package client

import (
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/gridlink/gridlink/internal/circuit"
	"github.com/gridlink/gridlink/internal/dispatch"
	"github.com/gridlink/gridlink/internal/logger"
	"github.com/gridlink/gridlink/internal/protocol/packets"
	"github.com/gridlink/gridlink/pkg/config"
	"github.com/gridlink/gridlink/pkg/osd"
)

// Client is the top-level handle for one agent session. The login RPC is a
// collaborator's concern: after it succeeds, the collaborator calls
// Connect with the endpoint, circuit code, and seed capability URL the
// grid returned.
type Client struct {
	Settings   *config.Settings
	Dispatcher *dispatch.Dispatcher
	Engine     *circuit.Engine

	agentID   uuid.UUID
	sessionID uuid.UUID

	mu     sync.Mutex
	queues map[string]*EventQueue // circuit id -> event queue

	// Optional notifications, set before Connect.
	OnSimConnected    func(id string)
	OnSimDisconnected func(id string, reason error)
	OnDisconnected    func(reason error)
}

// New builds a client for the given agent and session identity.
func New(settings *config.Settings, agentID, sessionID uuid.UUID) *Client {
	c := &Client{
		Settings:   settings,
		Dispatcher: dispatch.New(),
		agentID:    agentID,
		sessionID:  sessionID,
		queues:     make(map[string]*EventQueue),
	}
	c.Engine = circuit.New(settings, c.Dispatcher, agentID, sessionID, circuit.Events{
		SimConnected: func(id string) {
			if c.OnSimConnected != nil {
				c.OnSimConnected(id)
			}
		},
		SimDisconnected: func(id string, reason error) {
			c.stopQueue(id)
			if c.OnSimDisconnected != nil {
				c.OnSimDisconnected(id, reason)
			}
		},
		Disconnected: func(reason error) {
			if c.OnDisconnected != nil {
				c.OnDisconnected(reason)
			}
		},
	})
	return c
}

// AgentID returns the agent identity the client was built with.
func (c *Client) AgentID() uuid.UUID { return c.agentID }

// SessionID returns the session identity the client was built with.
func (c *Client) SessionID() uuid.UUID { return c.sessionID }

// Connect opens a circuit to a simulator, waits for the handshake, and
// starts the capability event queue when a seed URL is supplied. It
// returns the circuit id.
func (c *Client) Connect(endpoint *net.UDPAddr, code uint32, seedCapsURL string, setDefault bool) (string, error) {
	id, err := c.Engine.Connect(endpoint, code, setDefault)
	if err != nil {
		return "", err
	}
	if err := c.Engine.WaitConnected(id); err != nil {
		return "", err
	}

	if seedCapsURL != "" {
		eq := NewEventQueue(seedCapsURL, func(name string, body osd.Value) {
			c.Dispatcher.DispatchEvent(name, body)
		})
		c.mu.Lock()
		c.queues[id] = eq
		c.mu.Unlock()
		eq.Start()
		logger.Info("event queue started", logger.KeyCircuit, id)
	}
	return id, nil
}

// Send submits a message on the default circuit.
func (c *Client) Send(pkt packets.Packet, reliable bool) error {
	return c.Engine.Send(pkt, reliable)
}

// Register adds a packet callback and returns its removal handle.
func (c *Client) Register(t packets.PacketType, cb dispatch.PacketCallback) dispatch.Handle {
	return c.Dispatcher.Register(t, cb)
}

// Unregister removes a packet callback.
func (c *Client) Unregister(t packets.PacketType, h dispatch.Handle) {
	c.Dispatcher.Unregister(t, h)
}

// RegisterEvent adds a capability event callback and returns its removal
// handle.
func (c *Client) RegisterEvent(name string, cb dispatch.EventCallback) dispatch.Handle {
	return c.Dispatcher.RegisterEvent(name, cb)
}

// UnregisterEvent removes a capability event callback.
func (c *Client) UnregisterEvent(name string, h dispatch.Handle) {
	c.Dispatcher.UnregisterEvent(name, h)
}

// Chat says a message on the given channel from the agent.
func (c *Client) Chat(message string, channel int32, chatType byte) error {
	pkt := packets.NewChatFromViewer()
	pkt.AgentData.AgentID = c.agentID
	pkt.AgentData.SessionID = c.sessionID
	pkt.ChatData.Message = append([]byte(message), 0)
	pkt.ChatData.Type = chatType
	pkt.ChatData.Channel = channel
	return c.Engine.Send(pkt, true)
}

// Logout performs the cooperative shutdown of the default circuit and
// stops its event queue.
func (c *Client) Logout() error {
	c.stopQueue(c.Engine.Current())
	return c.Engine.Logout()
}

// Close tears down every circuit and event queue.
func (c *Client) Close() {
	c.mu.Lock()
	for id, eq := range c.queues {
		eq.Stop()
		delete(c.queues, id)
	}
	c.mu.Unlock()
	c.Engine.Close()
}

func (c *Client) stopQueue(id string) {
	c.mu.Lock()
	eq := c.queues[id]
	delete(c.queues, id)
	c.mu.Unlock()
	if eq != nil {
		eq.Stop()
	}
}
