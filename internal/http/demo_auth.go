package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Paul-Starodub/fast-library/internal/apperr"
	"github.com/Paul-Starodub/fast-library/internal/auth"
	"github.com/Paul-Starodub/fast-library/internal/demoauth"
)

// AuthTokenHeader carries the static token checked by some-http-header-auth.
const AuthTokenHeader = "x-auth-token"

var (
	errBasicAuthMissing = apperr.Unauthorized("Not authenticated")
	errBadDemoLogin     = apperr.Unauthorized("Incorrect username or password")
	errBadDemoToken     = apperr.Unauthorized("Invalid token")
	errNoDemoSession    = apperr.Unauthorized("Not authenticated")
)

// CredentialChecker validates a username and password pair.
type CredentialChecker interface {
	Check(username, password string) bool
}

// DemoSessions is the cookie session state used by the demo login.
type DemoSessions interface {
	Login(ctx context.Context, username string) error
	Logout(ctx context.Context) error
	Username(ctx context.Context) string
	LoginAt(ctx context.Context) time.Time
}

type DemoLoginResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}

type DemoSessionResponse struct {
	Message  string    `json:"message"`
	Username string    `json:"username"`
	LoginAt  time.Time `json:"login_at"`
}

// DemoAuthController shows HTTP basic, static header and cookie session
// authentication side by side.
type DemoAuthController struct {
	credentials CredentialChecker
	tokens      demoauth.Store
	sessions    DemoSessions
	auditor     AuditLogger
}

func NewDemoAuthController(credentials CredentialChecker, tokens demoauth.Store, sessions DemoSessions, auditor AuditLogger) *DemoAuthController {
	return &DemoAuthController{
		credentials: credentials,
		tokens:      tokens,
		sessions:    sessions,
		auditor:     orNoop(auditor),
	}
}

func respondBasicChallenge(c *gin.Context, err error) {
	c.Header("WWW-Authenticate", "Basic")
	respondAppError(c, err)
}

// BasicAuthCredentials handles GET /demo-auth/basic-auth/ and echoes what the
// client sent.
func (dc *DemoAuthController) BasicAuthCredentials(c *gin.Context) {
	username, password, ok := c.Request.BasicAuth()
	if !ok {
		respondBasicChallenge(c, errBasicAuthMissing)
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": username, "password": password})
}

// authenticateBasic returns the username of valid basic credentials, or
// responds with 401.
func (dc *DemoAuthController) authenticateBasic(c *gin.Context) (string, bool) {
	username, password, ok := c.Request.BasicAuth()
	if !ok {
		respondBasicChallenge(c, errBasicAuthMissing)
		return "", false
	}
	if !dc.credentials.Check(username, password) {
		dc.auditor.LogAuth(actorFrom(c), "demo basic login", false)
		respondBasicChallenge(c, errBadDemoLogin)
		return "", false
	}
	return username, true
}

// BasicAuthUsername handles GET /demo-auth/basic-auth-username/
func (dc *DemoAuthController) BasicAuthUsername(c *gin.Context) {
	username, ok := dc.authenticateBasic(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, DemoLoginResponse{Message: "Hi!" + username, Username: username})
}

// HeaderAuth handles GET /demo-auth/some-http-header-auth/
func (dc *DemoAuthController) HeaderAuth(c *gin.Context) {
	token := c.GetHeader(AuthTokenHeader)
	if token == "" {
		respondAppError(c, errBadDemoToken)
		return
	}

	username, err := dc.tokens.Lookup(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, demoauth.ErrUnknownToken) {
			respondAppError(c, errBadDemoToken)
			return
		}
		respondInternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, DemoLoginResponse{Message: "Hi!" + username, Username: username})
}

// LoginCookie handles POST /demo-auth/login-cookie/. Basic credentials start
// a cookie session.
func (dc *DemoAuthController) LoginCookie(c *gin.Context) {
	username, ok := dc.authenticateBasic(c)
	if !ok {
		return
	}
	if err := dc.sessions.Login(c.Request.Context(), username); err != nil {
		respondInternalError(c, err)
		return
	}
	dc.auditor.LogAuth(actorFrom(c), "demo cookie login", true)
	log.Printf("[DEMO] Cookie session started for %s", username)
	c.JSON(http.StatusOK, MessageResponse{Message: "ok"})
}

// CheckCookie handles GET /demo-auth/check-cookie/
func (dc *DemoAuthController) CheckCookie(c *gin.Context) {
	ctx := c.Request.Context()
	username := dc.sessions.Username(ctx)
	if username == "" {
		respondAppError(c, errNoDemoSession)
		return
	}
	c.JSON(http.StatusOK, DemoSessionResponse{
		Message:  "Hello, " + username + "!",
		Username: username,
		LoginAt:  dc.sessions.LoginAt(ctx),
	})
}

// LogoutCookie handles POST /demo-auth/logout-cookie/
func (dc *DemoAuthController) LogoutCookie(c *gin.Context) {
	ctx := c.Request.Context()
	username := dc.sessions.Username(ctx)
	if username == "" {
		respondAppError(c, errNoDemoSession)
		return
	}
	if err := dc.sessions.Logout(ctx); err != nil {
		respondInternalError(c, err)
		return
	}
	dc.auditor.LogAuth(actorFrom(c), "demo cookie logout", true)
	c.JSON(http.StatusOK, MessageResponse{Message: "Bye, " + username + "!"})
}

// CSRFToken handles GET /demo-auth/csrf-token/. Unsafe cookie routes expect
// the returned token in the X-CSRF-Token header.
func (dc *DemoAuthController) CSRFToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"csrf_token": auth.GetCSRFToken(c),
		"header":     auth.CSRFTokenHeader,
	})
}
