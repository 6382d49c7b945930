package api

import (
	"net/http"

	"lastcandle.games/internal/constants"
	"lastcandle.games/internal/game"
	"lastcandle.games/internal/service"
	"lastcandle.games/internal/stream"

	"github.com/gin-gonic/gin"
)

type ActionRequest struct {
	ItemUID  string `json:"item_uid"`
	TargetID uint   `json:"target_id"`
}

// SubmitAction stores a guest's chosen action for the current night. An
// empty item_uid passes the night. When the last living guest submits, the
// night resolves inside this request.
func (h *MatchHandler) SubmitAction(c *gin.Context) {
	// Path param contains join code. Resolve to internal ID.
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
	if m.Status != game.StatusInProgress {
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrMatchNotInProgress})
		return
	}
	if m.Phase != game.PhaseNight {
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrActionsLocked})
		return
	}
	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}

	// Derive the calling guest from the authenticated session
	userEmail, _ := c.Get("userEmail")
	emailStr, _ := userEmail.(string)
	if emailStr == "" {
		c.JSON(http.StatusUnauthorized, gin.H{constants.JSONKeyError: constants.ErrAuthRequired})
		return
	}
	found := false
	for i := range m.Players {
		if m.Players[i].PlayerEmail == emailStr {
			found = true
			break
		}
	}
	if !found {
		c.JSON(http.StatusForbidden, gin.H{constants.JSONKeyError: constants.ErrPlayerNotInThisMatch})
		return
	}

	sub := service.ActionSubmission{ItemUID: req.ItemUID, TargetID: req.TargetID}
	m2, resolved, err := service.SubmitAction(h.repo, m.ID, emailStr, sub, h.actionTimeout, h.selectionTimeout)
	if err != nil {
		switch err {
		case service.ErrMatchNotFound:
			c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrMatchNotFound})
			return
		case service.ErrMatchNotInProgress:
			c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrMatchNotInProgress})
			return
		case service.ErrActionsLocked:
			c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrActionsLocked})
			return
		case service.ErrPlayerNotInMatch:
			c.JSON(http.StatusForbidden, gin.H{constants.JSONKeyError: constants.ErrPlayerNotInThisMatch})
			return
		case service.ErrPlayerDead, service.ErrAlreadySubmitted, service.ErrDaggerBinds:
			c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: err.Error()})
			return
		case service.ErrItemNotHeld, service.ErrTargetRequired, service.ErrBadTarget:
			c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: err.Error()})
			return
		default:
			c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedStoreAction})
			return
		}
	}

	if resolved {
		h.broker.Publish(stream.Update{MatchID: m2.ID, Kind: resolutionKind(m2), Night: m2.NightNumber})
		c.JSON(http.StatusOK, gin.H{"message": "Night resolved", "night": m2.NightNumber})
	} else {
		h.broker.Publish(stream.Update{MatchID: m2.ID, Kind: stream.KindNight, Night: m2.NightNumber})
		c.JSON(http.StatusOK, gin.H{"message": "Action stored. Waiting for the other guests."})
	}
}

// resolutionKind picks the stream notice for a match that just went through
// a resolution step.
func resolutionKind(m *game.Match) string {
	switch {
	case m.Status == game.StatusFinished:
		return stream.KindEnded
	case m.Phase == game.PhaseSelection:
		return stream.KindSelection
	default:
		return stream.KindResolved
	}
}
