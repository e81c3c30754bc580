package websockets

import (
	"encoding/json"
	"sync"

	"monitor/config"
	"monitor/internal/database"
	"monitor/internal/events"
	"monitor/internal/logger"

	"github.com/gofiber/websocket/v2"
)

// Manager pushes task notifications to connected clients. Connections
// are keyed by user so an event addressed to a user reaches only their
// open tabs; events without a user are broadcast.
type Manager struct {
	mu          sync.RWMutex
	connections map[string][]*websocket.Conn
	log         logger.Logger
}

func New(db database.DB, eventBus *events.EventBus, config config.Config) (*Manager, error) {
	m := &Manager{
		connections: map[string][]*websocket.Conn{},
		log:         logger.New("websockets"),
	}

	eventBus.Subscribe("notifications", m.dispatch)

	return m, nil
}

func (m *Manager) HandleWebSocket(c *websocket.Conn) {
	log := m.log.Function("HandleWebSocket")

	userID, _ := c.Locals("userID").(string)
	m.register(userID, c)
	defer m.unregister(userID, c)

	for {
		// Clients only listen; reads just detect disconnects.
		if _, _, err := c.ReadMessage(); err != nil {
			log.Debug("websocket closed", "userID", userID)
			return
		}
	}
}

func (m *Manager) register(userID string, c *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connections[userID] = append(m.connections[userID], c)
}

func (m *Manager) unregister(userID string, c *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conns := m.connections[userID]
	for i, conn := range conns {
		if conn == c {
			m.connections[userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(m.connections[userID]) == 0 {
		delete(m.connections, userID)
	}
}

func (m *Manager) dispatch(event events.Event) {
	log := m.log.Function("dispatch")

	payload, err := json.Marshal(event)
	if err != nil {
		log.Er("failed to marshal event", err)
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	send := func(conns []*websocket.Conn) {
		for _, conn := range conns {
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Er("failed to write to websocket", err, "userID", event.UserID)
			}
		}
	}

	if event.UserID != "" {
		send(m.connections[event.UserID])
		return
	}
	for _, conns := range m.connections {
		send(conns)
	}
}
