package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"audio-table/internal/api/errors"
	"audio-table/internal/auth"
)

// sessionCookie is accepted as an alternative to the Authorization header so
// browser clients keep working without attaching headers to every fetch.
const sessionCookie = "session_token"

// Auth rejects requests that do not carry a valid session token. The token is
// read from the Authorization header (Bearer scheme) or the session cookie.
func Auth(verifier auth.SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			if cookie, err := c.Cookie(sessionCookie); err == nil {
				token = cookie
			}
		}

		if token == "" {
			unauthorized(c)
			return
		}

		session, err := verifier.Verify(token)
		if err != nil {
			unauthorized(c)
			return
		}

		c.Set("session_subject", session.Subject)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func unauthorized(c *gin.Context) {
	apiErr := errors.NewUnauthorizedError("Unauthorized")
	apiErr.RequestID = c.GetString("request_id")
	c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
}
