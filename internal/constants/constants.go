package constants

// Centralized constants for headers, env keys and external endpoints.
const (
	// Environment variable keys
	EnvSessionSecret       = "SESSION_SECRET"
	EnvGoogleClientID      = "GOOGLE_CLIENT_ID"
	EnvGoogleClientSecret  = "GOOGLE_CLIENT_SECRET"
	EnvSessionSecureCookie = "SESSION_SECURE_COOKIE"
	EnvConfigPath          = "LASTCANDLE_CONFIG"
	EnvRulesPath           = "LASTCANDLE_RULES"
	EnvDBPath              = "LASTCANDLE_DB"

	// HTTP headers and content types
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"

	ContentTypeJSON = "application/json"

	CacheControlHeader  = "Cache-Control"
	CacheControlNoCache = "no-cache, no-store, must-revalidate"

	// Authorization prefix
	BearerPrefix = "Bearer "

	// Session / Cookie names
	CookieSessionName = "lc_session"

	// Google OAuth constants
	GoogleOAuthRedirect = "postmessage"
	GoogleUserInfoURL   = "https://www.googleapis.com/oauth2/v2/userinfo"
)

var (
	// Scopes for Google userinfo
	GoogleUserInfoScopes = []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"}
)

// Routes used by the backend router
const (
	RouteAPIPrefix          = "/api"
	RoutePublicMatches      = "/public-matches"
	RouteLeaderboard        = "/leaderboard"
	RouteAuthGoogleCallBack = "/auth/google/oauth2callback"
	RouteAuthLogout         = "/auth/logout"
	RoutePlayerStats        = "/player-stats"
	RouteMatches            = "/matches"
	RouteMatchesJoin        = "/matches/join"
	RouteMatchByCode        = "/matches/:matchCode"
	RouteMatchStart         = "/matches/:matchCode/start"
	RouteMatchLeave         = "/matches/:matchCode/leave"
	RouteMatchAction        = "/matches/:matchCode/action"
	RouteMatchSelection     = "/matches/:matchCode/selection"
	RouteMatchStream        = "/matches/:matchCode/stream"
	RouteVersion            = "/version"
)

// Common JSON response keys
const (
	JSONKeyError   = "error"
	JSONKeyMessage = "message"
	JSONKeyDetails = "details"
	JSONKeyStatus  = "status"
)

// Common error messages used across API handlers
const (
	ErrInvalidRequest         = "Invalid request"
	ErrMissingGoogleEnv       = "Missing GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET in environment"
	ErrInvalidMatchCode       = "Invalid match code"
	ErrMatchNotFound          = "Match not found"
	ErrFailedFetchMatches     = "Failed to fetch matches"
	ErrFailedEncodeMatches    = "Failed to encode matches"
	ErrFailedFetchLeaderboard = "Failed to fetch leaderboard"
	ErrFailedEncodeMatch      = "Failed to encode match"
	ErrFailedFetchStats       = "Failed to fetch stats"
	ErrEmailRequired          = "email is required"

	ErrFailedCreateMatch    = "Failed to create match"
	ErrMatchNameExceeds     = "Match name exceeds 32 characters"
	ErrMatchFull            = "The manor is full"
	ErrNotEnoughPlayers     = "Not enough guests to start the night"
	ErrMatchAlreadyStarted  = "Match has already started"
	ErrFailedUpdateMatch    = "Failed to update match"
	ErrFailedEndMatch       = "Failed to end match"
	ErrFailedRemovePlayer   = "Failed to remove player"
	ErrPlayerNotInThisMatch = "Player not in this match"
	ErrPlayerRemovedFailed  = "Player removed, but failed to update match"
	ErrCannotLeaveFinished  = "Cannot leave a finished match"

	ErrFailedStoreAction    = "Failed to store action"
	ErrMatchNotInProgress   = "Match is not in progress"
	ErrActionsLocked        = "Actions are locked; the night is being resolved"
	ErrNoPendingSelection   = "No item selection is pending"
	ErrSelectionNotYours    = "The selection belongs to another guest"
	ErrFailedStoreSelection = "Failed to store selection"

	ErrFailedExchangeToken    = "Failed to exchange token"
	ErrFailedGetUserInfo      = "Failed to get user info"
	ErrFailedReadUserData     = "Failed to read user data: %s"
	ErrNoEmailInGoogleProfile = "No email in Google profile"
	ErrFailedCreateSession    = "Failed to create session"

	ErrAuthRequired   = "Authentication required"
	ErrInvalidSession = "Invalid session"
)

// Logging field names
const (
	LogFieldMatchID  = "match_id"
	LogFieldPlayerID = "player_id"
	LogFieldNight    = "night"
	LogFieldSeed     = "seed"
	LogFieldAddr     = "addr"
)
