package api

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"lastcandle.games/internal/constants"

	"github.com/gin-gonic/gin"
)

// Sessions are HS256-signed JWTs minted and verified by this process only.
// The header is pinned; a token that does not carry it verbatim is rejected
// before any decoding happens.

const sessionIssuer = "lastcandle"

var encodedHeader = base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))

type jwtClaims struct {
	Iss  string `json:"iss"`
	Sub  string `json:"sub"`  // email
	Name string `json:"name"` // display name
	Iat  int64  `json:"iat"`
	Exp  int64  `json:"exp"`
}

var (
	errTokenMalformed = errors.New("session token malformed")
	errTokenForged    = errors.New("session signature mismatch")
	errTokenForeign   = errors.New("session issued elsewhere")
	errTokenExpired   = errors.New("session expired")
)

var (
	devSecretOnce sync.Once
	devSecret     []byte
	devSecretErr  error
)

// sessionSecret returns the HMAC key. Without SESSION_SECRET in the
// environment a process-local key is minted once; every restart then signs
// everyone out, which is acceptable for development only.
func sessionSecret() ([]byte, error) {
	if s := os.Getenv(constants.EnvSessionSecret); s != "" {
		return []byte(s), nil
	}
	devSecretOnce.Do(func() {
		devSecret = make([]byte, 32)
		if _, err := rand.Read(devSecret); err != nil {
			devSecretErr = errors.New("failed to mint dev session secret")
		}
	})
	return devSecret, devSecretErr
}

func signSession(msg string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(msg))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func createSessionToken(email, name string, ttl time.Duration) (string, error) {
	secret, err := sessionSecret()
	if err != nil {
		return "", err
	}
	now := time.Now()
	payload, err := json.Marshal(jwtClaims{
		Iss:  sessionIssuer,
		Sub:  email,
		Name: name,
		Iat:  now.Unix(),
		Exp:  now.Add(ttl).Unix(),
	})
	if err != nil {
		return "", err
	}
	unsigned := encodedHeader + "." + base64.RawURLEncoding.EncodeToString(payload)
	return unsigned + "." + signSession(unsigned, secret), nil
}

func parseAndValidateSession(token string) (*jwtClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] != encodedHeader {
		return nil, errTokenMalformed
	}
	secret, err := sessionSecret()
	if err != nil {
		return nil, err
	}
	want := signSession(parts[0]+"."+parts[1], secret)
	if !hmac.Equal([]byte(want), []byte(parts[2])) {
		return nil, errTokenForged
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, errTokenMalformed
	}
	var claims jwtClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, errTokenMalformed
	}
	if claims.Iss != sessionIssuer {
		return nil, errTokenForeign
	}
	if time.Now().Unix() > claims.Exp {
		return nil, errTokenExpired
	}
	return &claims, nil
}

// setSessionCookie installs the session for ttl. The Secure flag rides an
// env switch so local HTTP development keeps working.
func setSessionCookie(c *gin.Context, token string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	secure := os.Getenv(constants.EnvSessionSecureCookie) == "1"
	c.SetCookie(constants.CookieSessionName, token, int(ttl.Seconds()), "/", "", secure, true)
}

func clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(constants.CookieSessionName, "", -1, "/", "", false, true)
}

// AuthRequired gates a route group on a valid session cookie and exposes the
// caller as userEmail and userName on the request context.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(constants.CookieSessionName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{constants.JSONKeyError: constants.ErrAuthRequired})
			return
		}
		claims, err := parseAndValidateSession(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{constants.JSONKeyError: constants.ErrInvalidSession})
			return
		}
		c.Set("userEmail", claims.Sub)
		c.Set("userName", claims.Name)
		c.Next()
	}
}
