package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/casino/internal/bankroll"
	"github.com/lox/casino/internal/game"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

var ErrConnectionClosed = errors.New("connection closed")

// Connection is one websocket client driving one session's table
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	changed   chan struct{}
	session   string
	table     *game.Table
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewConnection wraps conn for session. The table must be attached with
// SetTable before Start.
func NewConnection(conn *websocket.Conn, session string, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:    conn,
		send:    make(chan *Message, 64),
		changed: make(chan struct{}, 1),
		session: session,
		logger:  logger.WithPrefix("conn").With("session", session),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// SetTable attaches the session's table
func (c *Connection) SetTable(t *game.Table) {
	c.table = t
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Done is closed once the connection has shut down
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// Observe is a table observer. It only marks the state dirty; the write
// pump sends a fresh snapshot so clients never see an older state last.
func (c *Connection) Observe(game.Snapshot) {
	select {
	case c.changed <- struct{}{}:
	default:
	}
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg *Message) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.handleMessage(&msg)
	}
}

// writePump is the only writer on the socket
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			if err := c.write(msg); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-c.changed:
			msg, err := NewMessage(MessageTypeState, StateFromSnapshot(c.table.Snapshot()))
			if err != nil {
				c.logger.Error("Failed to encode state", "error", err)
				continue
			}
			if err := c.write(msg); err != nil {
				c.logger.Error("Failed to write state", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *Connection) write(msg *Message) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type)

	switch msg.Type {
	case MessageTypeAction:
		var data ActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse action data")
			return
		}
		c.handleAction(data)

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handleAction(data ActionData) {
	var (
		snap game.Snapshot
		err  error
	)

	switch data.Action {
	case ActionBet:
		snap, err = c.table.PlaceBet(data.Amount)
	case ActionClearBet:
		snap, err = c.table.ResetBet()
	case ActionDeal:
		snap, err = c.table.Deal()
	case ActionHit:
		snap, err = c.table.Hit()
	case ActionStand:
		snap, err = c.table.Stand()
	case ActionDouble:
		snap, err = c.table.DoubleDown()
	case ActionNewHand:
		snap, err = c.table.NewHand()
	case ActionTopUp:
		snap, err = c.table.GrantTopUp()
	case ActionReset:
		snap, err = c.table.FullReset()
	case ActionRedeem:
		quantity := data.Quantity
		if quantity == 0 {
			quantity = 1
		}
		snap, err = c.table.Redeem(data.Item, quantity)
	default:
		c.sendError("unknown_action", "Unknown action: "+data.Action)
		return
	}

	if err != nil {
		c.logger.Debug("Action refused", "action", data.Action, "error", err)
		c.sendError(errorCode(err), snap.Message)
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg)
}

func (c *Connection) sendCatalog() {
	msg, err := NewMessage(MessageTypeCatalog, CatalogFromShop(c.table.Catalog()))
	if err != nil {
		c.logger.Error("Failed to create catalog message", "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrInvalidBet):
		return "invalid_bet"
	case errors.Is(err, game.ErrInvalidAction):
		return "invalid_action"
	case errors.Is(err, bankroll.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, bankroll.ErrNoTopUpsRemaining):
		return "no_top_ups"
	case errors.Is(err, bankroll.ErrUnknownItem):
		return "unknown_item"
	case errors.Is(err, bankroll.ErrInvalidQuantity):
		return "invalid_quantity"
	default:
		return "action_failed"
	}
}
