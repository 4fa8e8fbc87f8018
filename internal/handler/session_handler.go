package handler

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"orcavox/internal/analyser"
	"orcavox/internal/config"
	"orcavox/internal/editor"
	"orcavox/internal/service"
	"orcavox/internal/session"
)

// playbackFrames adapts the session queue into an analyser frame source:
// each tick consumes the oldest queued playback chunk, so the bands track
// what is currently being played and decay to silence when nothing is.
type playbackFrames struct {
	queue *session.Queue
}

func (s playbackFrames) Frame() ([]byte, error) {
	chunk, ok := s.queue.NextAudio()
	if !ok {
		return nil, nil
	}
	return chunk, nil
}

// levelsEvent carries smoothed frequency-band levels to the client for
// visualization.
type levelsEvent struct {
	Type  string `json:"type"`
	Bands []byte `json:"bands"`
	Peak  byte   `json:"peak"`
}

// SessionHandler bridges the live conversational transport onto the
// response pipeline: transport events stream in over a websocket, patch
// events describing manual overrides stream back out.
type SessionHandler struct {
	budgets  service.BudgetService
	cfg      *config.SessionConfig
	upgrader websocket.Upgrader
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(budgets service.BudgetService, cfg *config.SessionConfig) *SessionHandler {
	return &SessionHandler{
		budgets: budgets,
		cfg:     cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// origin enforcement happens in the CORS middleware; the
			// websocket endpoint accepts the already-filtered traffic
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Live handles GET /ws/session
func (h *SessionHandler) Live(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("sessionHandler.Live: upgrade failed: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(h.cfg.ReadLimitBytes)

	var writeMu sync.Mutex
	writeJSON := func(v interface{}) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
		return conn.WriteJSON(v)
	}

	h.budgets.SetPatchSink(func(e editor.PatchEvent) {
		if err := writeJSON(e); err != nil {
			log.Printf("sessionHandler.Live: writing patch event: %v", err)
		}
	})
	defer h.budgets.SetPatchSink(nil)

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(h.cfg.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				writeMu.Lock()
				_ = conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
				err := conn.WriteMessage(websocket.PingMessage, nil)
				writeMu.Unlock()
				if err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	queue := h.budgets.Queue()

	levels := analyser.New(playbackFrames{queue: queue}, h.cfg.AnalyserBands)
	go func() {
		ticker := time.NewTicker(h.cfg.AnalyserInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				levels.Update()
				if queue.QueuedPlayback() == 0 && levels.Peak() == 0 {
					continue
				}
				ev := levelsEvent{Type: "analyser_levels", Bands: levels.Data(), Peak: levels.Peak()}
				if err := writeJSON(ev); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		var ev session.TransportEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("sessionHandler.Live: read failed: %v", err)
			}
			return
		}
		if err := queue.Push(ev); err != nil {
			log.Printf("sessionHandler.Live: dropping event: %v", err)
			return
		}
	}
}
