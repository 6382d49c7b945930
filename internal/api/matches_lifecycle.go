package api

import (
	"net/http"
	"unicode/utf8"

	"lastcandle.games/internal/constants"
	"lastcandle.games/internal/game"
	"lastcandle.games/internal/rng"
	"lastcandle.games/internal/service"
	"lastcandle.games/internal/stream"

	"github.com/gin-gonic/gin"
)

type CreateMatchPayload struct {
	PlayerName  string `json:"player_name"`
	PlayerEmail string `json:"player_email"`
	Name        string `json:"name"`
	Private     bool   `json:"private"`
}

// CreateMatch opens a new manor and seats its host. The rules configured on
// the server are frozen onto the match row, so a config change never touches
// a match that already exists.
func (h *MatchHandler) CreateMatch(c *gin.Context) {
	var req CreateMatchPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	// Derive identity from session
	if v, ok := c.Get("userEmail"); ok {
		req.PlayerEmail, _ = v.(string)
	}
	if v, ok := c.Get("userName"); ok && req.PlayerName == "" {
		req.PlayerName, _ = v.(string)
	}

	if utf8.RuneCountInString(req.Name) > 32 {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrMatchNameExceeds})
		return
	}

	joinCode := generateJoinCode()

	newMatch := game.Match{
		Name:      req.Name,
		Private:   req.Private,
		Status:    game.StatusWaiting,
		JoinCode:  joinCode,
		HostEmail: req.PlayerEmail,
		Rules:     h.rules,
		Players: []game.Player{
			{PlayerName: req.PlayerName, PlayerEmail: req.PlayerEmail, Seat: 1},
		},
		Message: "The manor opens its doors. Waiting for guests.",
	}

	_ = h.repo.UpsertUser(req.PlayerEmail, req.PlayerName)

	if err := h.repo.CreateMatch(&newMatch); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedCreateMatch})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"match_id":  newMatch.ID,
		"join_code": joinCode,
	})
}

type JoinMatchPayload struct {
	JoinCode    string `json:"join_code"`
	PlayerName  string `json:"player_name"`
	PlayerEmail string `json:"player_email"`
}

// JoinMatch seats a guest in a waiting manor via its join code.
func (h *MatchHandler) JoinMatch(c *gin.Context) {
	var req JoinMatchPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	if v, ok := c.Get("userEmail"); ok {
		req.PlayerEmail, _ = v.(string)
	}
	if v, ok := c.Get("userName"); ok && req.PlayerName == "" {
		req.PlayerName, _ = v.(string)
	}

	code := normalizeJoinCode(req.JoinCode)
	if code == "" || !joinCodeRegex.MatchString(code) {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidMatchCode})
		return
	}
	m, err := h.repo.FindMatchByJoinCode(code)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrMatchNotFound})
		return
	}

	if m.Status != game.StatusWaiting {
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrMatchAlreadyStarted})
		return
	}
	// Joining twice with the same account is a no-op, not an error, so a
	// retried request lands on the seat it already holds.
	for i := range m.Players {
		if m.Players[i].PlayerEmail == req.PlayerEmail {
			c.JSON(http.StatusOK, gin.H{
				"match_id":  m.ID,
				"join_code": m.JoinCode,
				"message":   "Already seated",
			})
			return
		}
	}
	if len(m.Players) >= m.Rules.MaxPlayers {
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrMatchFull})
		return
	}

	newPlayer := game.Player{
		PlayerName:  req.PlayerName,
		PlayerEmail: req.PlayerEmail,
		Seat:        len(m.Players) + 1,
	}
	m.Players = append(m.Players, newPlayer)
	m.Message = "A new guest arrives at the manor."

	_ = h.repo.UpsertUser(req.PlayerEmail, req.PlayerName)

	if err := h.repo.UpdateMatch(m); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedUpdateMatch})
		return
	}

	h.broker.Publish(stream.Update{MatchID: m.ID, Kind: stream.KindLobby})

	c.JSON(http.StatusOK, gin.H{
		"match_id":  m.ID,
		"join_code": m.JoinCode,
		"message":   "Successfully joined match",
	})
}

// StartMatch deals the table and opens the first night. Only the host may
// start, and only once enough guests are seated.
func (h *MatchHandler) StartMatch(c *gin.Context) {
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
	m, err := h.repo.GetMatchByID(short.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrMatchNotFound})
		return
	}

	userEmail, _ := c.Get("userEmail")
	emailStr, _ := userEmail.(string)
	if emailStr == "" {
		c.JSON(http.StatusUnauthorized, gin.H{constants.JSONKeyError: constants.ErrAuthRequired})
		return
	}
	if m.HostEmail != emailStr {
		c.JSON(http.StatusForbidden, gin.H{constants.JSONKeyError: constants.ErrPlayerNotInThisMatch})
		return
	}

	err = service.StartMatch(h.repo, m, h.rules, rng.New(rng.NewSeed()), h.actionTimeout)
	switch err {
	case nil:
	case service.ErrMatchAlreadyStarted:
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrMatchAlreadyStarted})
		return
	case service.ErrNotEnoughPlayers:
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrNotEnoughPlayers})
		return
	default:
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedUpdateMatch})
		return
	}

	h.broker.Publish(stream.Update{MatchID: m.ID, Kind: stream.KindNight, Night: m.NightNumber})

	c.JSON(http.StatusOK, gin.H{"message": "Night falls", "night": m.NightNumber})
}

type LeaveMatchPayload struct {
	// body intentionally empty; caller identity is derived from session
}

// LeaveMatch removes the session guest from the match. In a waiting room the
// seat is simply freed; once the match runs, leaving is a resignation and
// the engine scatters the leaver's belongings.
func (h *MatchHandler) LeaveMatch(c *gin.Context) {
	code := normalizeJoinCode(c.Param("matchCode"))
	if code == "" || !joinCodeRegex.MatchString(code) {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidMatchCode})
		return
	}
	var req LeaveMatchPayload
	_ = c.ShouldBindJSON(&req)

	m, err := h.repo.FindMatchByJoinCode(code)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrMatchNotFound})
		return
	}

	userEmail, _ := c.Get("userEmail")
	emailStr, _ := userEmail.(string)
	if emailStr == "" {
		c.JSON(http.StatusUnauthorized, gin.H{constants.JSONKeyError: constants.ErrAuthRequired})
		return
	}

	switch m.Status {
	case game.StatusWaiting:
		h.leaveWaitingRoom(c, m, emailStr)
	case game.StatusInProgress:
		h.resign(c, m.ID, emailStr)
	default:
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrCannotLeaveFinished})
	}
}

// leaveWaitingRoom frees a seat before the match starts.
func (h *MatchHandler) leaveWaitingRoom(c *gin.Context, m *game.Match, email string) {
	if err := h.repo.RemovePlayerByEmail(m.ID, email); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedRemovePlayer})
		return
	}
	// Reflect removal in the in-memory model to avoid re-attaching the row
	// via FullSaveAssociations.
	filtered := make([]game.Player, 0, len(m.Players))
	for _, p := range m.Players {
		if p.PlayerEmail != email {
			filtered = append(filtered, p)
		}
	}
	m.Players = filtered
	m.Message = "A guest left. Waiting for a new arrival."
	if err := h.repo.UpdateMatch(m); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrPlayerRemovedFailed})
		return
	}
	h.broker.Publish(stream.Update{MatchID: m.ID, Kind: stream.KindLobby})
	c.JSON(http.StatusOK, gin.H{"message": "Seat freed"})
}

// resign hands the departure to the service layer, which collapses the
// guest, scatters their belongings and may finish or resolve the night.
func (h *MatchHandler) resign(c *gin.Context, matchID uint, email string) {
	m, err := service.ResignMatch(h.repo, matchID, email, h.actionTimeout, h.selectionTimeout)
	if err != nil {
		switch err {
		case service.ErrMatchNotFound:
			c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrMatchNotFound})
		case service.ErrPlayerNotInMatch:
			c.JSON(http.StatusForbidden, gin.H{constants.JSONKeyError: constants.ErrPlayerNotInThisMatch})
		case service.ErrPlayerDead, service.ErrMatchNotInProgress:
			c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedEndMatch})
		}
		return
	}

	kind := stream.KindResolved
	if m.Status == game.StatusFinished {
		kind = stream.KindEnded
	} else if m.Phase == game.PhaseSelection {
		kind = stream.KindSelection
	}
	h.broker.Publish(stream.Update{MatchID: m.ID, Kind: kind, Night: m.NightNumber})

	c.JSON(http.StatusOK, gin.H{"message": "You flee the manor"})
}
