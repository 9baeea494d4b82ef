package handler

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	estimatesvc "bidforge/internal/gateway/service/estimate"
)

// ProgressHandler streams pipeline stage transitions over a websocket.
type ProgressHandler struct {
	hub    *estimatesvc.ProgressHub
	logger *log.Logger
}

func NewProgressHandler(hub *estimatesvc.ProgressHub, logger *log.Logger) *ProgressHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &ProgressHandler{hub: hub, logger: logger}
}

const (
	progressWSWriteWait = 10 * time.Second
	progressWSPongWait  = 60 * time.Second
	progressWSPingEvery = (progressWSPongWait * 9) / 10
)

var progressWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type progressWSOutbound struct {
	Type  string `json:"type"`
	Token string `json:"token,omitempty"`
	Stage string `json:"stage,omitempty"`
	At    string `json:"at,omitempty"`
}

func (h *ProgressHandler) HandleProgressWS(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		http.Error(w, "token is required", http.StatusBadRequest)
		return
	}

	conn, err := progressWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	if err := conn.SetReadDeadline(time.Now().Add(progressWSPongWait)); err != nil {
		h.logger.Printf("progress ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(progressWSPongWait))
	})

	events, cancel := h.hub.Subscribe(token)
	defer cancel()

	// Drain the read side so pongs and close frames are processed.
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := writeProgressWS(conn, progressWSOutbound{Type: "subscribed", Token: token}); err != nil {
		return
	}

	ticker := time.NewTicker(progressWSPingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-readerDone:
			return
		case <-r.Context().Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			out := progressWSOutbound{
				Type:  "stage",
				Token: token,
				Stage: string(evt.Stage),
				At:    evt.At.UTC().Format(time.RFC3339Nano),
			}
			if err := writeProgressWS(conn, out); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(progressWSWriteWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeProgressWS(conn *websocket.Conn, out progressWSOutbound) error {
	if err := conn.SetWriteDeadline(time.Now().Add(progressWSWriteWait)); err != nil {
		return err
	}
	return conn.WriteJSON(out)
}
