package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/edge-finder/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// QuoteMessage is one websocket frame carrying fresh odds quotes
type QuoteMessage struct {
	Type      string              `json:"type"`
	Provider  string              `json:"provider,omitempty"`
	Quotes    []*models.OddsQuote `json:"quotes,omitempty"`
	Timestamp int64               `json:"timestamp"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
	hub  *OddsHub
}

// OddsHub fans freshly ingested odds quotes out to websocket subscribers
type OddsHub struct {
	clients    map[*wsClient]bool
	register   chan *wsClient
	unregister chan *wsClient
	broadcast  chan []byte
	mu         sync.RWMutex
	logger     *logrus.Logger
}

// NewOddsHub creates a hub. Run must be called before serving connections.
func NewOddsHub(logger *logrus.Logger) *OddsHub {
	return &OddsHub{
		clients:    make(map[*wsClient]bool),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		broadcast:  make(chan []byte, 64),
		logger:     logger,
	}
}

// Run processes client registration and broadcasts until the process exits
func (h *OddsHub) Run() {
	h.logger.Info("Odds websocket hub starting")

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.WithField("clients", count).Debug("Websocket client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.WithField("clients", count).Debug("Websocket client disconnected")

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer, drop the frame rather than block
				}
			}
			h.mu.RUnlock()
		}
	}
}

// PublishQuotes broadcasts a batch of quotes to every subscriber. It
// satisfies service.QuoteSink so the ingestion pipeline can feed the
// stream directly.
func (h *OddsHub) PublishQuotes(provider string, quotes []*models.OddsQuote) {
	if len(quotes) == 0 {
		return
	}

	msg := QuoteMessage{
		Type:      "quotes",
		Provider:  provider,
		Quotes:    quotes,
		Timestamp: time.Now().UTC().Unix(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to encode quote broadcast")
		return
	}

	select {
	case h.broadcast <- payload:
	default:
		h.logger.Warn("Websocket broadcast buffer full, dropping quote batch")
	}
}

// ClientCount returns the number of connected subscribers
func (h *OddsHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWS upgrades the request and attaches the client to the hub
func (h *OddsHub) HandleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan []byte, 32),
		hub:  h,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump drains client frames so pings and close messages are handled
func (c *wsClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
