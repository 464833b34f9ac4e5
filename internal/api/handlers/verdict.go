package handlers

import (
	"log"
	"music-nearby/internal/api/dto"
	"music-nearby/internal/domain"
	"music-nearby/internal/platform/obs"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// VerdictSource is the read side of the proximity engine.
type VerdictSource interface {
	Snapshot() (domain.Verdict, time.Time)
	Subscribe() (<-chan domain.Verdict, func())
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type VerdictHandler struct {
	Verdicts VerdictSource
}

func (h *VerdictHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, updated := h.Verdicts.Snapshot()
	writeJSON(w, r, http.StatusOK, dto.NewVerdictResponse(v, updated))
}

// Stream sends the current verdict on connect and then every change until the client
// goes away.
func (h *VerdictHandler) Stream(w http.ResponseWriter, r *http.Request) {
	reqID := obs.RequestID(r.Context())

	ch, unsubscribe := h.Verdicts.Subscribe()
	defer unsubscribe()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("req_id=%s verdict stream upgrade failed: %v", reqID, err)
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	v, updated := h.Verdicts.Snapshot()
	if err := writeVerdict(conn, dto.NewVerdictResponse(v, updated)); err != nil {
		return
	}

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case v, ok := <-ch:
			if !ok {
				return
			}
			_, updated := h.Verdicts.Snapshot()
			if err := writeVerdict(conn, dto.NewVerdictResponse(v, updated)); err != nil {
				log.Printf("req_id=%s verdict stream write failed: %v", reqID, err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func writeVerdict(conn *websocket.Conn, res dto.VerdictResponse) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(res)
}
