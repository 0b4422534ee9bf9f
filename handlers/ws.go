package handlers

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"
)

// WSHandler pushes ledger events to open admin dashboards so a second
// browser tab sees approvals without polling.
type WSHandler struct {
	M *melody.Melody
}

func NewWSHandler() *WSHandler {
	m := melody.New()

	m.Config.MaxMessageSize = 1024 * 1024

	// Keep-alive matters behind cloud proxies that drop idle connections.
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleConnect(func(s *melody.Session) {
		log.Printf("✅ Ledger feed client connected: %s", s.Request.RemoteAddr)
	})

	m.HandleDisconnect(func(s *melody.Session) {
		log.Printf("🔌 Ledger feed client disconnected: %s", s.Request.RemoteAddr)
	})

	m.HandleError(func(s *melody.Session, err error) {
		log.Printf("❌ WebSocket error: %v", err)
	})

	return &WSHandler{M: m}
}

// HandleWS upgrades the request to a websocket session.
func (h *WSHandler) HandleWS(c *gin.Context) {
	if err := h.M.HandleRequest(c.Writer, c.Request); err != nil {
		log.Printf("❌ Failed to upgrade websocket: %v", err)
	}
}

type ledgerEvent struct {
	Type      string `json:"type"`
	RequestID int64  `json:"request_id,omitempty"`
}

// BroadcastLedgerEvent fans a ledger transition out to every session.
func (h *WSHandler) BroadcastLedgerEvent(eventType string, requestID int64) {
	msg, err := json.Marshal(ledgerEvent{Type: eventType, RequestID: requestID})
	if err != nil {
		return
	}
	if err := h.M.Broadcast(msg); err != nil {
		log.Printf("⚠️ Error broadcasting ledger event %s: %v", eventType, err)
	}
}
