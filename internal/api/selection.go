package api

import (
	"net/http"

	"lastcandle.games/internal/constants"
	"lastcandle.games/internal/service"
	"lastcandle.games/internal/stream"

	"github.com/gin-gonic/gin"
)

type SelectionRequest struct {
	ItemUID string `json:"item_uid"`
}

// SubmitSelection records the killer's pick from the victim's belongings
// and resumes the suspended night. An empty item_uid declines the pick and
// draws at random, the same as letting the deadline pass.
func (h *MatchHandler) SubmitSelection(c *gin.Context) {
	code := normalizeJoinCode(c.Param("matchCode"))
	if code == "" || !joinCodeRegex.MatchString(code) {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidMatchCode})
		return
	}
	short, err := h.repo.FindMatchByJoinCode(code)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrMatchNotFound})
		return
	}

	var req SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}

	userEmail, _ := c.Get("userEmail")
	emailStr, _ := userEmail.(string)
	if emailStr == "" {
		c.JSON(http.StatusUnauthorized, gin.H{constants.JSONKeyError: constants.ErrAuthRequired})
		return
	}

	m, err := service.CompleteSelection(h.repo, short.ID, emailStr, req.ItemUID, h.actionTimeout, h.selectionTimeout)
	if err != nil {
		switch err {
		case service.ErrMatchNotFound:
			c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrMatchNotFound})
			return
		case service.ErrMatchNotInProgress:
			c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrMatchNotInProgress})
			return
		case service.ErrNoPendingSelection:
			c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrNoPendingSelection})
			return
		case service.ErrNotYourSelection:
			c.JSON(http.StatusForbidden, gin.H{constants.JSONKeyError: constants.ErrSelectionNotYours})
			return
		case service.ErrPlayerNotInMatch:
			c.JSON(http.StatusForbidden, gin.H{constants.JSONKeyError: constants.ErrPlayerNotInThisMatch})
			return
		case service.ErrItemNotAmongDrops:
			c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: err.Error()})
			return
		default:
			c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedStoreSelection})
			return
		}
	}

	h.broker.Publish(stream.Update{MatchID: m.ID, Kind: resolutionKind(m), Night: m.NightNumber})

	c.JSON(http.StatusOK, gin.H{"message": "The belongings change hands", "night": m.NightNumber})
}
