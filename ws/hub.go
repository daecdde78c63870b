package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Message is the frame exchanged with browser clients in both directions.
type Message struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// conn is the slice of *websocket.Conn the hub needs; tests substitute a
// recording implementation.
type conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

type client struct {
	id   string
	conn conn

	// writes to a websocket connection must not interleave
	mu sync.Mutex
}

func (c *client) send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

// Hub fans server events out to connected clients. Every client receives
// global broadcasts; room-scoped broadcasts only reach clients that joined
// the room. Room membership lives until the client leaves or disconnects,
// regardless of what happens to the underlying session or order.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]bool
	rooms   map[string]map[*client]bool
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]bool),
		rooms:   make(map[string]map[*client]bool),
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins
	},
}

// HandleWebSocket upgrades the request and services join/leave room messages
// until the client disconnects.
func (h *Hub) HandleWebSocket() gin.HandlerFunc {
	return func(c *gin.Context) {
		wsConn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Println("ws upgrade error:", err)
			return
		}
		defer wsConn.Close()

		cl := &client{id: uuid.NewString(), conn: wsConn}
		h.register(cl)
		log.Printf("ws client connected: %s", cl.id)
		defer func() {
			h.unregister(cl)
			log.Printf("ws client disconnected: %s", cl.id)
		}()

		for {
			_, data, err := wsConn.ReadMessage()
			if err != nil {
				break
			}
			var msg Message
			if err := json.Unmarshal(data, &msg); err != nil {
				log.Printf("ws client %s sent invalid frame: %v", cl.id, err)
				continue
			}
			h.handleClientMessage(cl, msg)
		}
	}
}

// roomPrefixes maps a join/leave event name onto the room namespace it
// addresses.
var roomPrefixes = map[string]string{
	"joinBranchRoom":   "branch-",
	"leaveBranchRoom":  "branch-",
	"joinSessionRoom":  "session-",
	"leaveSessionRoom": "session-",
	"joinOrderRoom":    "order-",
	"leaveOrderRoom":   "order-",
}

func (h *Hub) handleClientMessage(cl *client, msg Message) {
	prefix, ok := roomPrefixes[msg.Event]
	if !ok {
		return
	}
	id, ok := msg.Payload.(string)
	if !ok || id == "" {
		return
	}
	room := prefix + id

	switch msg.Event {
	case "joinBranchRoom", "joinSessionRoom", "joinOrderRoom":
		h.join(cl, room)
		log.Printf("ws client %s joined room: %s", cl.id, room)
		cl.send(Message{Event: "joinedRoom", Payload: room})
	default:
		h.leave(cl, room)
		log.Printf("ws client %s left room: %s", cl.id, room)
		cl.send(Message{Event: "leftRoom", Payload: room})
	}
}

func (h *Hub) register(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[cl] = true
}

func (h *Hub) unregister(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, cl)
	for room := range h.rooms {
		delete(h.rooms[room], cl)
		if len(h.rooms[room]) == 0 {
			delete(h.rooms, room)
		}
	}
}

func (h *Hub) join(cl *client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*client]bool)
	}
	h.rooms[room][cl] = true
}

func (h *Hub) leave(cl *client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms[room], cl)
	if len(h.rooms[room]) == 0 {
		delete(h.rooms, room)
	}
}

// Broadcast sends an event to every connected client.
func (h *Hub) Broadcast(event string, payload interface{}) {
	h.sendToAll(h.snapshotAll(), Message{Event: event, Payload: payload})
}

// BroadcastTo sends an event to the clients subscribed to one room.
func (h *Hub) BroadcastTo(room string, event string, payload interface{}) {
	h.sendToAll(h.snapshotRoom(room), Message{Event: event, Payload: payload})
}

func (h *Hub) snapshotAll() []*client {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*client, 0, len(h.clients))
	for cl := range h.clients {
		out = append(out, cl)
	}
	return out
}

func (h *Hub) snapshotRoom(room string) []*client {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*client, 0, len(h.rooms[room]))
	for cl := range h.rooms[room] {
		out = append(out, cl)
	}
	return out
}

func (h *Hub) sendToAll(clients []*client, msg Message) {
	for _, cl := range clients {
		if err := cl.send(msg); err != nil {
			log.Printf("ws write error to %s: %v", cl.id, err)
			cl.conn.Close()
			h.unregister(cl)
		}
	}
}
