package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/turtacn/chargeview/internal/application/controls"
	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/prometheus"
)

// Stream message types.
const (
	// Client -> Server
	StreamMsgPing = "ping"

	// Server -> Client
	StreamMsgState = "state"
	StreamMsgPong  = "pong"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = (streamPongWait * 9) / 10
)

// StreamMessage is one frame of the state stream.
type StreamMessage struct {
	Type      string          `json:"type"`
	Operation string          `json:"operation,omitempty"`
	State     *controls.State `json:"state,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// StateStreamHandler pushes the control state over a WebSocket: the current
// state on connect, then one message per state change.
type StateStreamHandler struct {
	controls controls.Service
	upgrader websocket.Upgrader
	logger   logging.Logger
	metrics  *prometheus.ViewerMetrics
}

// NewStateStreamHandler creates a handler.  checkOrigin may be nil to accept
// same-origin requests only.
func NewStateStreamHandler(svc controls.Service, checkOrigin func(r *http.Request) bool, logger logging.Logger, metrics *prometheus.ViewerMetrics) *StateStreamHandler {
	return &StateStreamHandler{
		controls: svc,
		upgrader: websocket.Upgrader{
			CheckOrigin:     checkOrigin,
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
		},
		logger:  logger,
		metrics: metrics,
	}
}

// Stream handles GET /events.
func (h *StateStreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", logging.Err(err))
		return
	}
	defer conn.Close()

	events, unsubscribe := h.controls.Subscribe()
	defer unsubscribe()
	h.metrics.SubscriberConnected("websocket", true)
	defer h.metrics.SubscriberConnected("websocket", false)
	h.logger.Debug("state stream connected", logging.String("remote_addr", r.RemoteAddr))

	pings := make(chan struct{}, 1)
	closed := make(chan struct{})
	go h.readLoop(conn, pings, closed)

	current := h.controls.State()
	if err := h.write(conn, StreamMessage{Type: StreamMsgState, State: &current}); err != nil {
		return
	}

	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			st := ev.State
			err := h.write(conn, StreamMessage{Type: StreamMsgState, Operation: ev.Operation, State: &st})
			h.metrics.RecordEvent("websocket", err)
			if err != nil {
				return
			}
		case <-pings:
			if err := h.write(conn, StreamMessage{Type: StreamMsgPong}); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop owns all reads.  Writes stay on the Stream goroutine.
func (h *StateStreamHandler) readLoop(conn *websocket.Conn, pings chan<- struct{}, closed chan<- struct{}) {
	defer close(closed)
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})
	for {
		var msg StreamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("state stream closed", logging.Err(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
		if msg.Type == StreamMsgPing {
			select {
			case pings <- struct{}{}:
			default:
			}
		}
	}
}

func (h *StateStreamHandler) write(conn *websocket.Conn, msg StreamMessage) error {
	msg.Timestamp = time.Now().UnixMilli()
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	return conn.WriteJSON(msg)
}

//Personal.AI order the ending
