package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"audio-table/internal/auth"
)

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	verifier := auth.VerifierFunc(func(token string) (*auth.Session, error) {
		if token == "valid-token" {
			return &auth.Session{Subject: "user@example.com"}, nil
		}
		return nil, auth.ErrInvalidSession
	})

	router := gin.New()
	router.Use(Auth(verifier))
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"subject": c.GetString("session_subject")})
	})
	return router
}

func TestAuth(t *testing.T) {
	router := newAuthRouter()

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
	}{
		{"no credentials", "", "", http.StatusUnauthorized},
		{"valid bearer token", "Bearer valid-token", "", http.StatusOK},
		{"invalid bearer token", "Bearer wrong-token", "", http.StatusUnauthorized},
		{"malformed header", "valid-token", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic valid-token", "", http.StatusUnauthorized},
		{"valid session cookie", "", "valid-token", http.StatusOK},
		{"invalid session cookie", "", "wrong-token", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "session_token", Value: tt.cookie})
			}

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)
			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}

func TestAuth_HeaderWinsOverCookie(t *testing.T) {
	router := newAuthRouter()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "valid-token"})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	subject := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	router.ServeHTTP(subject, req)
	assert.Equal(t, http.StatusOK, subject.Code)
	assert.Contains(t, subject.Body.String(), "user@example.com")
}
