package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"minesweeper-backend/internal/middleware"
	"minesweeper-backend/internal/models"
	"minesweeper-backend/internal/viewmodel"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	projector *viewmodel.Projector
	events    SeqSource
	hub       *WebSocketHub
	log       logrus.FieldLogger
}

// WebSocketHub owns the connected clients. Only the run goroutine touches
// the client map and the send channels.
type WebSocketHub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	direct     chan outbound
	log        logrus.FieldLogger
}

type Client struct {
	ID       string
	PlayerID string
	Conn     *websocket.Conn
	send     chan []byte

	// Broadcasts are held back until the client got its snapshot.
	ready   bool
	pending [][]byte
}

type outbound struct {
	client   *Client
	data     []byte
	snapshot bool
}

// Message is the frame sent to clients. A client first receives a SNAPSHOT
// of the board, then EVENT frames; events whose seq is not above the
// snapshot's are already part of it.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func NewWebSocketHandler(projector *viewmodel.Projector, events SeqSource, log logrus.FieldLogger) *WebSocketHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	hub := &WebSocketHub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 100),
		direct:     make(chan outbound, 100),
		log:        log,
	}

	go hub.run()

	return &WebSocketHandler{
		projector: projector,
		events:    events,
		hub:       hub,
		log:       log,
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("failed to upgrade to websocket")
		return
	}

	client := &Client{
		ID:       uuid.New().String(),
		PlayerID: c.GetString(middleware.KeyPlayerID),
		Conn:     conn,
		send:     make(chan []byte, sendBuffer),
	}

	go client.writePump()
	h.hub.register <- client

	defer func() {
		h.hub.unregister <- client
		conn.Close()
	}()

	h.sendSnapshot(c.Request.Context(), client)

	for {
		var msg Message
		err := conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.WithError(err).WithField("client_id", client.ID).Warn("websocket error")
			}
			break
		}

		h.handleMessage(client, &msg)
	}
}

func (h *WebSocketHandler) handleMessage(client *Client, msg *Message) {
	switch msg.Type {
	case "PING":
		h.sendTo(client, Message{
			Type: "PONG",
			Data: gin.H{"timestamp": time.Now().Unix()},
		}, false)
	}
}

// sendSnapshot must run after the client is registered: every event the
// hub broadcast before that is covered by the awaited seq.
func (h *WebSocketHandler) sendSnapshot(ctx context.Context, client *Client) {
	ctx, cancel := context.WithTimeout(ctx, stateTimeout)
	defer cancel()

	view, err := h.projector.Await(ctx, h.events.LastSeq())
	if err != nil {
		view = h.projector.Snapshot()
	}
	h.sendTo(client, Message{Type: "SNAPSHOT", Data: view}, true)
}

func (h *WebSocketHandler) sendTo(client *Client, msg Message, snapshot bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.WithError(err).Error("failed to encode message")
		return
	}
	h.hub.direct <- outbound{client: client, data: data, snapshot: snapshot}
}

// BroadcastEvent sends env to every connected client.
func (h *WebSocketHandler) BroadcastEvent(env models.Envelope) {
	data, err := json.Marshal(Message{Type: "EVENT", Data: env})
	if err != nil {
		h.log.WithError(err).Error("failed to encode event")
		return
	}
	h.hub.broadcast <- data
}

func (hub *WebSocketHub) run() {
	for {
		select {
		case client := <-hub.register:
			hub.clients[client.ID] = client
			hub.log.WithFields(logrus.Fields{"client_id": client.ID, "player_id": client.PlayerID}).Debug("client registered")

		case client := <-hub.unregister:
			if _, ok := hub.clients[client.ID]; ok {
				hub.drop(client)
				hub.log.WithField("client_id", client.ID).Debug("client unregistered")
			}

		case out := <-hub.direct:
			if _, ok := hub.clients[out.client.ID]; !ok {
				continue
			}
			if !hub.deliver(out.client, out.data) || !out.snapshot || out.client.ready {
				continue
			}
			out.client.ready = true
			for _, message := range out.client.pending {
				if !hub.deliver(out.client, message) {
					break
				}
			}
			out.client.pending = nil

		case message := <-hub.broadcast:
			hub.broadcastMessage(message)
		}
	}
}

func (hub *WebSocketHub) broadcastMessage(message []byte) {
	for _, client := range hub.clients {
		if client.ready {
			hub.deliver(client, message)
			continue
		}
		if len(client.pending) == sendBuffer {
			hub.drop(client)
			continue
		}
		client.pending = append(client.pending, message)
	}
}

// deliver queues message for client and drops the client when its queue is
// full. It reports whether the client is still connected.
func (hub *WebSocketHub) deliver(client *Client, message []byte) bool {
	select {
	case client.send <- message:
		return true
	default:
		hub.log.WithField("client_id", client.ID).Warn("dropping slow websocket client")
		hub.drop(client)
		return false
	}
}

func (hub *WebSocketHub) drop(client *Client) {
	delete(hub.clients, client.ID)
	close(client.send)
}

func (c *Client) writePump() {
	defer c.Conn.Close()

	for message := range c.send {
		c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
