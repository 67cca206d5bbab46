package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"rar_kit/internal/models"
	"rar_kit/internal/services/location"
)

const writeWait = 5 * time.Second

// upgrader configures the WebSocket connection.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the phone app connects from arbitrary origins
	},
}

// TelemetryHub fans bike telemetry out to every connected dashboard.
// Only the hub's run loop writes to client connections.
type TelemetryHub struct {
	clients   map[*websocket.Conn]bool
	broadcast chan models.BikeData
	done      chan struct{}
	closeOnce sync.Once
	mu        sync.Mutex
}

// NewTelemetryHub creates the hub and starts its broadcast loop.
func NewTelemetryHub() *TelemetryHub {
	hub := &TelemetryHub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan models.BikeData, 100),
		done:      make(chan struct{}),
	}
	go hub.run()
	return hub
}

func (h *TelemetryHub) run() {
	for {
		select {
		case <-h.done:
			return
		case msg := <-h.broadcast:
			h.mu.Lock()
			conns := make([]*websocket.Conn, 0, len(h.clients))
			for conn := range h.clients {
				conns = append(conns, conn)
			}
			h.mu.Unlock()

			for _, conn := range conns {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(msg); err != nil {
					logrus.WithError(err).WithField("conn_ptr", fmt.Sprintf("%p", conn)).
						Info("Telemetry client write failed, unregistering.")
					h.UnregisterClient(conn)
					conn.Close()
				}
			}
		}
	}
}

// RegisterClient adds a dashboard connection.
func (h *TelemetryHub) RegisterClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
	logrus.WithField("conn_ptr", fmt.Sprintf("%p", conn)).Info("Client registered with TelemetryHub.")
}

func (h *TelemetryHub) UnregisterClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; !ok {
		return
	}
	delete(h.clients, conn)
	logrus.WithField("conn_ptr", fmt.Sprintf("%p", conn)).Info("Client unregistered from TelemetryHub.")
}

func (h *TelemetryHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish queues a snapshot for broadcast. It never blocks: when the
// queue is full the snapshot is dropped.
func (h *TelemetryHub) Publish(data models.BikeData) {
	select {
	case <-h.done:
		return
	default:
	}
	select {
	case h.broadcast <- data:
	default:
		logrus.Warn("Telemetry broadcast channel full, dropping message.")
	}
}

// Close stops the broadcast loop and closes every client connection.
func (h *TelemetryHub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
		h.mu.Lock()
		defer h.mu.Unlock()
		for conn := range h.clients {
			conn.Close()
			delete(h.clients, conn)
		}
	})
}

// SocketController upgrades the telemetry and location sockets. Both
// routes sit behind RequireAuth, which accepts the token query parameter.
type SocketController struct {
	Hub *TelemetryHub
	// Reported is nil when the GPS is simulated.
	Reported *location.ReportedProvider
}

// Telemetry streams BikeData to the client until it disconnects.
// @Summary Live telemetry stream
// @Router /ws/telemetry [get]
// @Param token query string true "JWT token for authentication"
func (s *SocketController) Telemetry(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("Failed to upgrade WebSocket connection.")
		return
	}
	defer conn.Close()

	s.Hub.RegisterClient(conn)
	defer s.Hub.UnregisterClient(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logrus.WithError(err).Debug("Telemetry WebSocket read ended.")
			}
			return
		}
		// Dashboards only listen.
	}
}

// locationMessage is a GPS fix pushed by the phone. Timestamps without a
// zone are taken as UTC.
type locationMessage struct {
	models.LocationCoords
	Timestamp time.Time `json:"timestamp"`
}

func (lm *locationMessage) UnmarshalJSON(data []byte) error {
	var aux struct {
		models.LocationCoords
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	lm.LocationCoords = aux.LocationCoords

	ts := aux.Timestamp
	if ts == "" {
		lm.Timestamp = time.Time{}
		return nil
	}
	if !hasZone(ts) {
		ts += "Z"
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", aux.Timestamp, err)
	}
	lm.Timestamp = t
	return nil
}

func hasZone(ts string) bool {
	if strings.HasSuffix(ts, "Z") {
		return true
	}
	if len(ts) < 6 {
		return false
	}
	return strings.ContainsAny(ts[len(ts)-6:], "+-")
}

// Location receives fixes from the phone for as long as the socket is open.
// @Summary Phone GPS feed
// @Router /ws/location [get]
// @Param token query string true "JWT token for authentication"
func (s *SocketController) Location(c *gin.Context) {
	if s.Reported == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "GPS is simulated on this server"})
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("Failed to upgrade WebSocket connection.")
		return
	}
	defer conn.Close()

	for {
		messageType, p, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logrus.WithError(err).Debug("Location WebSocket read ended.")
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg locationMessage
		if err := json.Unmarshal(p, &msg); err != nil {
			logrus.WithError(err).WithField("payload", string(p)).Warn("Invalid location message.")
			_ = conn.WriteJSON(gin.H{"error": "invalid location data: " + err.Error()})
			continue
		}
		if err := s.Reported.Report(msg.LocationCoords); err != nil {
			_ = conn.WriteJSON(gin.H{"error": err.Error()})
			continue
		}
		logrus.WithFields(logrus.Fields{
			"latitude":  msg.Latitude,
			"longitude": msg.Longitude,
			"timestamp": msg.Timestamp.Format(time.RFC3339Nano),
		}).Debug("Received phone location via WebSocket.")
		_ = conn.WriteJSON(gin.H{"status": "received"})
	}
}
