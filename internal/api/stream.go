package api

import (
	"encoding/json"
	"net/http"

	"lastcandle.games/internal/constants"
	"lastcandle.games/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var matchStreamUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamMatch upgrades the request to a websocket and pushes update notices
// for one match until the client disconnects. The socket only ever says
// "something changed"; clients refetch the match through GetMatch, which is
// where per-viewer redaction lives.
func (h *MatchHandler) StreamMatch(c *gin.Context) {
	code := normalizeJoinCode(c.Param("matchCode"))
	if code == "" || !joinCodeRegex.MatchString(code) {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidMatchCode})
		return
	}
	m, err := h.repo.FindMatchByJoinCode(code)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrMatchNotFound})
		return
	}

	conn, err := matchStreamUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Error("websocket upgrade failed", err, logging.Fields{constants.LogFieldMatchID: m.ID})
		return
	}
	defer conn.Close()

	updates, cancel := h.broker.Subscribe(m.ID)
	defer cancel()

	// The read loop exists only to notice the peer going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			data, err := json.Marshal(u)
			if err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}
