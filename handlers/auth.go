package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"autocare/middleware"
	"autocare/models"
	"autocare/services/auth"
	"autocare/services/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler serves sign-up, sign-in and session endpoints.
type AuthHandler struct {
	Users user.UserService
	Auth  *auth.Service
}

type sessionResponse struct {
	Session *auth.Session     `json:"session"`
	User    models.PublicUser `json:"user"`
}

// SignUp handles POST /auth/signup.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Users.SignUp(c.Request.Context(), req)
	if err != nil {
		respondError(c, "create your account", err)
		return
	}
	h.startSession(c, http.StatusCreated, u)
}

// SignIn handles POST /auth/login.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req models.SignInRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Users.SignIn(c.Request.Context(), req)
	if err != nil {
		respondError(c, "sign you in", err)
		return
	}
	h.startSession(c, http.StatusOK, u)
}

func (h *AuthHandler) startSession(c *gin.Context, status int, u *models.User) {
	session, err := h.Auth.IssueSession(*u)
	if err != nil {
		respondError(c, "sign you in", err)
		return
	}
	getLogger(c).Info("Session issued", zap.String("user_id", u.ID))
	c.JSON(status, sessionResponse{Session: session, User: u.Public()})
}

// SignOut handles POST /auth/logout.
func (h *AuthHandler) SignOut(c *gin.Context) {
	if err := h.Auth.SignOut(c.Request.Context(), middleware.BearerToken(c)); err != nil {
		respondError(c, "sign you out", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Session handles GET /auth/session.
func (h *AuthHandler) Session(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		respondError(c, "load your session", &auth.SessionError{Reason: "missing"})
		return
	}
	u, err := h.Users.GetByID(c.Request.Context(), session.UserID)
	if err != nil {
		respondError(c, "load your session", err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{Session: session, User: u.Public()})
}

// OAuth handles GET /auth/oauth/:provider and returns the authorization URL.
// redirect_to, when given, must be on the allow list.
func (h *AuthHandler) OAuth(c *gin.Context) {
	url, err := h.Auth.SignInWithOAuth(c.Request.Context(), c.Param("provider"), auth.OAuthOptions{
		RedirectTo: c.Query("redirect_to"),
	})
	if err != nil {
		respondError(c, "start sign-in", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"provider": c.Param("provider"), "url": url})
}

// OAuthCallback handles GET /auth/oauth/:provider/callback. The state is
// consumed, the account is signed in, and the browser is sent to the
// redirect chosen at sign-in with the session in the URL fragment. Without a
// redirect the session is returned as JSON.
func (h *AuthHandler) OAuthCallback(c *gin.Context) {
	const action = "sign you in"
	ctx := c.Request.Context()

	if reason := c.Query("error"); reason != "" {
		respondError(c, action, &auth.SessionError{Reason: "provider refused sign-in: " + reason})
		return
	}
	identity, redirectTo, err := h.Auth.CompleteOAuth(ctx, c.Param("provider"), c.Query("state"), c.Query("code"))
	if err != nil {
		respondError(c, action, err)
		return
	}
	u, err := h.Users.SignInExternal(ctx, identity.Email, identity.Name)
	if err != nil {
		respondError(c, action, err)
		return
	}
	session, err := h.Auth.IssueSession(*u)
	if err != nil {
		respondError(c, action, err)
		return
	}
	getLogger(c).Info("Session issued", zap.String("user_id", u.ID), zap.String("provider", identity.Provider))

	if redirectTo == "" {
		c.JSON(http.StatusOK, sessionResponse{Session: session, User: u.Public()})
		return
	}
	target, err := url.Parse(redirectTo)
	if err != nil {
		respondError(c, action, err)
		return
	}
	target.Fragment = url.Values{
		"access_token": {session.Token},
		"expires_at":   {strconv.FormatInt(session.ExpiresAt.Unix(), 10)},
	}.Encode()
	c.Redirect(http.StatusFound, target.String())
}
