package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lastcandle.games/internal/constants"

	"github.com/gin-gonic/gin"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	t.Setenv(constants.EnvSessionSecret, "round-trip-secret")

	token, err := createSessionToken("ada@manor.test", "Ada", time.Hour)
	if err != nil {
		t.Fatalf("minting: %v", err)
	}
	claims, err := parseAndValidateSession(token)
	if err != nil {
		t.Fatalf("validating a fresh token: %v", err)
	}
	if claims.Sub != "ada@manor.test" || claims.Name != "Ada" {
		t.Fatalf("claims came back wrong: %+v", claims)
	}
	if claims.Exp <= claims.Iat {
		t.Fatalf("expected a future expiry, got iat %d exp %d", claims.Iat, claims.Exp)
	}
}

func TestSessionToken_RejectsExpired(t *testing.T) {
	t.Setenv(constants.EnvSessionSecret, "expiry-secret")

	token, err := createSessionToken("ada@manor.test", "Ada", -time.Minute)
	if err != nil {
		t.Fatalf("minting: %v", err)
	}
	if _, err := parseAndValidateSession(token); err != errTokenExpired {
		t.Fatalf("expected the expired token refused, got %v", err)
	}
}

func TestSessionToken_RejectsTampering(t *testing.T) {
	t.Setenv(constants.EnvSessionSecret, "tamper-secret")

	token, err := createSessionToken("ada@manor.test", "Ada", time.Hour)
	if err != nil {
		t.Fatalf("minting: %v", err)
	}

	parts := strings.Split(token, ".")
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	var claims jwtClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	claims.Sub = "mallory@manor.test"
	forged, _ := json.Marshal(claims)
	parts[1] = base64.RawURLEncoding.EncodeToString(forged)

	if _, err := parseAndValidateSession(strings.Join(parts, ".")); err != errTokenForged {
		t.Fatalf("expected the rewritten payload refused, got %v", err)
	}

	t.Setenv(constants.EnvSessionSecret, "some-other-secret")
	if _, err := parseAndValidateSession(token); err != errTokenForged {
		t.Fatalf("expected a foreign-key signature refused, got %v", err)
	}
}

func TestSessionToken_RejectsForeignIssuer(t *testing.T) {
	t.Setenv(constants.EnvSessionSecret, "issuer-secret")

	stray, err := json.Marshal(jwtClaims{
		Sub:  "ada@manor.test",
		Name: "Ada",
		Iat:  time.Now().Unix(),
		Exp:  time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	unsigned := encodedHeader + "." + base64.RawURLEncoding.EncodeToString(stray)
	secret, err := sessionSecret()
	if err != nil {
		t.Fatalf("reading secret: %v", err)
	}
	foreign := unsigned + "." + signSession(unsigned, secret)

	if _, err := parseAndValidateSession(foreign); err != errTokenForeign {
		t.Fatalf("expected a token without our issuer refused, got %v", err)
	}
}

func TestAuthRequired(t *testing.T) {
	t.Setenv(constants.EnvSessionSecret, "middleware-secret")
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/whoami", AuthRequired(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("userEmail"))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a cookie, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: constants.CookieSessionName, Value: "not.a.token"})
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on a garbage cookie, got %d", w.Code)
	}

	token, err := createSessionToken("ada@manor.test", "Ada", time.Hour)
	if err != nil {
		t.Fatalf("minting: %v", err)
	}
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: constants.CookieSessionName, Value: token})
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "ada@manor.test" {
		t.Fatalf("expected the session identity through, got %d %q", w.Code, w.Body.String())
	}
}
