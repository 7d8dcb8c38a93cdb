// Package gateway implements the session gate and shared HTTP middleware.
package gateway

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rneambassadors/portal/apperr"
	"github.com/rneambassadors/portal/content"
)

// SessionCookie is the name of the http-only admin session cookie.
const SessionCookie = "admin_session"

const principalKey = "principal"

// Auth authenticates the administrative principal and gates mutating routes.
type Auth struct {
	Store    *content.Store
	Sessions SessionStore
	Logger   *logrus.Logger
	Config   content.Config
}

type loginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Secret     string `json:"secret" binding:"required"`
}

func (a *Auth) cookieSecure() bool {
	return strings.HasPrefix(a.Config.PublicOrigin, "https://")
}

// LoginHandler verifies the credential and issues a session cookie.
func (a *Auth) LoginHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Payload(apperr.Wrap(err, apperr.ErrBadRequest, "identifier and secret are required")))
		return
	}
	user, err := a.Store.AdminByUsername(req.Identifier)
	if err != nil {
		a.Logger.WithError(err).Error("admin lookup failed")
		c.JSON(http.StatusInternalServerError, apperr.Payload(apperr.Wrap(err, apperr.ErrStore, "")))
		return
	}
	if user == nil || !VerifyCredential(user.PasswordHash, req.Secret) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid credentials"})
		return
	}
	token, err := a.Sessions.Create(Principal{Username: user.Username}, SessionTTL)
	if err != nil {
		a.Logger.WithError(err).Error("session create failed")
		c.JSON(http.StatusInternalServerError, apperr.Payload(apperr.Wrap(err, apperr.ErrStore, "")))
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(SessionTTL.Seconds()), "/", "", a.cookieSecure(), true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// LogoutHandler destroys the session referenced by the cookie, if any.
func (a *Auth) LogoutHandler(c *gin.Context) {
	if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
		if err := a.Sessions.Delete(token); err != nil {
			a.Logger.WithError(err).Warn("session delete failed")
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", a.cookieSecure(), true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AuthMiddleware resolves the caller's session token to a principal. The
// guarded handler never runs for anonymous callers.
func (a *Auth) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			token = strings.TrimSpace(c.GetHeader("Authorization"))
			token = strings.TrimPrefix(token, "Bearer ")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apperr.Payload(apperr.ErrUnauthorized))
			return
		}
		principal, err := a.Sessions.Get(token)
		if err != nil {
			a.Logger.WithError(err).Error("session lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, apperr.Payload(apperr.Wrap(err, apperr.ErrStore, "")))
			return
		}
		if principal == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apperr.Payload(apperr.ErrUnauthorized))
			return
		}
		c.Set(principalKey, *principal)
		c.Next()
	}
}

// PrincipalFrom returns the authenticated principal set by AuthMiddleware.
func PrincipalFrom(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

// OriginMiddleware rejects cross-origin non-read requests before any session
// resolution happens. Requests without an Origin header (curl, server-to-
// server) pass through; browsers always send one on cross-site requests.
func (a *Auth) OriginMiddleware() gin.HandlerFunc {
	expected := strings.TrimSuffix(a.Config.PublicOrigin, "/")
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		origin := strings.TrimSuffix(c.GetHeader("Origin"), "/")
		if origin != "" && origin != expected {
			a.Logger.WithFields(logrus.Fields{
				"origin": origin,
				"path":   c.Request.URL.Path,
			}).Warn("rejected cross-origin request")
			c.AbortWithStatusJSON(http.StatusForbidden, apperr.Payload(apperr.ErrOrigin))
			return
		}
		c.Next()
	}
}

type passwordChangeRequest struct {
	CurrentPassword    string `json:"currentPassword" binding:"required"`
	NewPassword        string `json:"newPassword" binding:"required,min=8"`
	ConfirmNewPassword string `json:"confirmNewPassword" binding:"required,eqfield=NewPassword"`
}

// ChangePasswordHandler rehashes the admin credential after verifying the
// current one. Registered behind AuthMiddleware.
func (a *Auth) ChangePasswordHandler(c *gin.Context) {
	principal, ok := PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apperr.Payload(apperr.ErrUnauthorized))
		return
	}
	var req passwordChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	user, err := a.Store.AdminByUsername(principal.Username)
	if err != nil || user == nil {
		a.Logger.WithError(err).Error("admin lookup failed")
		c.JSON(http.StatusInternalServerError, apperr.Payload(apperr.Wrap(err, apperr.ErrStore, "")))
		return
	}
	if !VerifyCredential(user.PasswordHash, req.CurrentPassword) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "incorrect current password"})
		return
	}
	hash, err := HashCredential(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apperr.Payload(apperr.Wrap(err, apperr.ErrInternal, "")))
		return
	}
	if err := a.Store.UpdateAdminPassword(user.ID, hash); err != nil {
		a.Logger.WithError(err).Error("password update failed")
		c.JSON(http.StatusInternalServerError, apperr.Payload(apperr.Wrap(err, apperr.ErrStore, "")))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// EnsureAdmin seeds the admin user on first start, hashing the configured
// password. Existing users are left untouched.
func (a *Auth) EnsureAdmin() error {
	user, err := a.Store.AdminByUsername(a.Config.AdminUsername)
	if err != nil {
		return err
	}
	if user != nil {
		return nil
	}
	if a.Config.AdminPassword == "" {
		a.Logger.Warn("no admin password configured; admin login disabled")
		return nil
	}
	hash, err := HashCredential(a.Config.AdminPassword)
	if err != nil {
		return err
	}
	return a.Store.CreateAdmin(&content.AdminUser{
		Username:     a.Config.AdminUsername,
		PasswordHash: hash,
	})
}
