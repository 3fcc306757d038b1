package hub

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/campsite-app/utils"
)

const (
	writeWait = 5 * time.Second
	// pesan yang boleh antre per client sebelum client dianggap macet
	sendBuffer = 32
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type client struct {
	conn *websocket.Conn
	role string
	send chan []byte
}

// Hub menampung semua client dashboard staff dan menyiarkan event order.
type Hub struct {
	clients  map[*client]bool
	mutex    sync.Mutex
	upgrader websocket.Upgrader
	log      *logrus.Entry
}

// New returns a hub accepting upgrades from the given origins ("*" allows any).
func New(allowedOrigins []string) *Hub {
	h := &Hub{
		clients: make(map[*client]bool),
		log:     utils.InfoLogger.WithField("component", "hub"),
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: originChecker(allowedOrigins)}
	return h
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set["*"] || set[origin]
	}
}

// register adds conn and starts its writer.
func (h *Hub) register(conn *websocket.Conn, role string) *client {
	c := &client{conn: conn, role: role, send: make(chan []byte, sendBuffer)}
	h.mutex.Lock()
	h.clients[c] = true
	h.mutex.Unlock()
	go h.writePump(c)
	return c
}

// unregister melepaskan client; writer-nya menutup connection.
func (h *Hub) unregister(c *client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.remove(c)
}

// remove expects h.mutex to be held.
func (h *Hub) remove(c *client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Broadcast queues msg for every client without waiting on sockets.
// A client whose queue is full is dropped.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling message: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.log.WithFields(logrus.Fields{"event": msg.Event, "clients": len(h.clients)}).Debug("broadcasting")
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.log.WithField("role", c.role).Warn("dropping slow client")
			h.remove(c)
		}
	}
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.WithFields(logrus.Fields{"role": c.role, "error": err}).Warn("dropping client")
			h.unregister(c)
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

// Notify implements services.Notifier.
func (h *Hub) Notify(event string, data interface{}) {
	h.Broadcast(Message{Event: event, Data: data})
}

// Handler upgrades the request and keeps the client registered until it
// disconnects. The auth middleware must have set "role".
func (h *Hub) Handler(c *gin.Context) {
	role := c.GetString("role")
	if role == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	cl := h.register(ws, role)

	// Baca pesan sampai client disconnect
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
	h.unregister(cl)
}
