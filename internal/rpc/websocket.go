package rpc

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kerlouan/goswapd/internal/events"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = 54 * time.Second
	wsMaxMessageSize = 64 * 1024
	wsSendBuffer     = 256
)

// knownStreams guards subscribe requests against typos.
var knownStreams = map[string]bool{
	events.StreamPools:     true,
	events.StreamSwaps:     true,
	events.StreamLiquidity: true,
	events.StreamFees:      true,
	events.StreamRoutes:    true,
	events.StreamDeals:     true,
}

// WebSocketServer upgrades connections and tracks their stream
// subscriptions. Clients send {"command": "subscribe", "streams": [...]} and
// receive one JSON message per event on their subscribed streams.
type WebSocketServer struct {
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	conns map[uint64]*wsConn

	nextID uint64
}

type wsConn struct {
	id      uint64
	conn    *websocket.Conn
	send    chan []byte
	streams map[string]bool
	mu      sync.RWMutex
	done    chan struct{}
	closed  sync.Once
}

// NewWebSocketServer builds an empty subscription server.
func NewWebSocketServer() *WebSocketServer {
	return &WebSocketServer{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: make(map[uint64]*wsConn),
	}
}

// ServeHTTP upgrades the request and starts the connection's read and write
// loops.
func (ws *WebSocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("rpc: websocket upgrade failed: %v", err)
		return
	}

	c := &wsConn{
		id:      atomic.AddUint64(&ws.nextID, 1),
		conn:    conn,
		send:    make(chan []byte, wsSendBuffer),
		streams: make(map[string]bool),
		done:    make(chan struct{}),
	}

	ws.mu.Lock()
	ws.conns[c.id] = c
	ws.mu.Unlock()

	go ws.readLoop(c)
	go ws.writeLoop(c)
}

// Broadcast sends data to every connection subscribed to stream. Slow
// consumers are dropped rather than allowed to stall the bus.
func (ws *WebSocketServer) Broadcast(stream string, data []byte) {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	for _, c := range ws.conns {
		if !c.subscribed(stream) {
			continue
		}
		select {
		case c.send <- data:
		default:
			go ws.drop(c)
		}
	}
}

// ConnectionCount returns the number of live connections.
func (ws *WebSocketServer) ConnectionCount() int {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return len(ws.conns)
}

// Shutdown closes every connection.
func (ws *WebSocketServer) Shutdown() {
	ws.mu.Lock()
	conns := make([]*wsConn, 0, len(ws.conns))
	for _, c := range ws.conns {
		conns = append(conns, c)
	}
	ws.mu.Unlock()
	for _, c := range conns {
		ws.drop(c)
	}
}

type wsCommand struct {
	Command string   `json:"command"`
	Streams []string `json:"streams"`
}

type wsReply struct {
	Status  string   `json:"status"`
	Command string   `json:"command,omitempty"`
	Streams []string `json:"streams,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func (ws *WebSocketServer) readLoop(c *wsConn) {
	defer ws.drop(c)

	c.conn.SetReadLimit(wsMaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd wsCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			c.reply(wsReply{Status: "error", Error: "invalid JSON"})
			continue
		}
		ws.handleCommand(c, cmd)
	}
}

func (ws *WebSocketServer) handleCommand(c *wsConn, cmd wsCommand) {
	switch cmd.Command {
	case "subscribe", "unsubscribe":
		for _, stream := range cmd.Streams {
			if !knownStreams[stream] {
				c.reply(wsReply{Status: "error", Command: cmd.Command, Error: "unknown stream: " + stream})
				return
			}
		}
		c.mu.Lock()
		for _, stream := range cmd.Streams {
			if cmd.Command == "subscribe" {
				c.streams[stream] = true
			} else {
				delete(c.streams, stream)
			}
		}
		c.mu.Unlock()
		c.reply(wsReply{Status: "success", Command: cmd.Command, Streams: cmd.Streams})
	case "ping":
		c.reply(wsReply{Status: "success", Command: "ping"})
	default:
		c.reply(wsReply{Status: "error", Command: cmd.Command, Error: "unknown command"})
	}
}

func (ws *WebSocketServer) writeLoop(c *wsConn) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (ws *WebSocketServer) drop(c *wsConn) {
	c.closed.Do(func() {
		close(c.done)
		c.conn.Close()
	})
	ws.mu.Lock()
	delete(ws.conns, c.id)
	ws.mu.Unlock()
}

func (c *wsConn) subscribed(stream string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.streams[stream]
}

func (c *wsConn) reply(r wsReply) {
	data, err := json.Marshal(r)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
