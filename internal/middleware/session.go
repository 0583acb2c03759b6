package middleware

import (
	"net/http"
	"strings"

	"github.com/01moynul/taptosell-storefront/internal/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionCookie carries the signed session token.
const SessionCookie = "storefront_session"

// SessionKey is the gin context key holding the session id.
const SessionKey = "sessionID"

// SessionMiddleware attaches a cart session to every request. The token
// comes from the session cookie or an "Authorization: Bearer" header; a
// missing or invalid token gets a fresh session and a new cookie.
func SessionMiddleware(sessions *auth.Sessions, secure bool, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			tokenString, _ = c.Cookie(SessionCookie)
		}

		if tokenString != "" {
			if sessionID, err := sessions.ValidateToken(tokenString); err == nil {
				c.Set(SessionKey, sessionID)
				c.Next()
				return
			}
		}

		sessionID, token, err := sessions.NewSession()
		if err != nil {
			log.Error("could not issue session", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not start session"})
			c.Abort()
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, token, int(auth.SessionTTL.Seconds()), "/", "", secure, true)
		c.Header("X-Session-Token", token)
		c.Set(SessionKey, sessionID)
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// SessionID returns the session attached by SessionMiddleware.
func SessionID(c *gin.Context) string {
	return c.GetString(SessionKey)
}
