package whisper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audio-table/internal/config"
)

func newWhisperServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NotEmpty(t, r.Header.Get("Authorization"))
		assert.Contains(t, r.Header.Get("Content-Type"), "multipart/form-data")

		if err := r.ParseMultipartForm(32 << 20); err == nil {
			assert.Equal(t, "whisper-1", r.FormValue("model"))
			if file, _, err := r.FormFile("file"); err == nil {
				file.Close()
			}
		}

		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func writeTestAudio(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("fake audio bytes"), 0644))
	return path
}

func TestRemoteTranscriber_Transcribe(t *testing.T) {
	tests := []struct {
		name          string
		mockStatus    int
		mockResponse  string
		expectedText  string
		errorContains string
	}{
		{
			name:         "successful transcription",
			mockStatus:   http.StatusOK,
			mockResponse: `{"text": "hello world"}`,
			expectedText: "hello world",
		},
		{
			name:         "empty transcription",
			mockStatus:   http.StatusOK,
			mockResponse: `{"text": ""}`,
			expectedText: "",
		},
		{
			name:          "unauthorized",
			mockStatus:    http.StatusUnauthorized,
			mockResponse:  `{"error": {"message": "Invalid API key", "type": "invalid_request_error"}}`,
			errorContains: "401",
		},
		{
			name:          "rate limited",
			mockStatus:    http.StatusTooManyRequests,
			mockResponse:  `{"error": {"message": "Rate limit exceeded", "type": "rate_limit_error"}}`,
			errorContains: "429",
		},
		{
			name:          "server error",
			mockStatus:    http.StatusInternalServerError,
			mockResponse:  `{"error": {"message": "Internal server error", "type": "server_error"}}`,
			errorContains: "500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newWhisperServer(t, tt.mockStatus, tt.mockResponse)

			client := NewClient(config.OpenAIConfig{
				APIKey:  "test-api-key",
				BaseURL: server.URL + "/v1",
			})
			rt := NewRemoteTranscriber(client)

			audioPath := writeTestAudio(t, "audio.mp3")

			text, err := rt.Transcribe(context.Background(), audioPath)
			if tt.errorContains != "" {
				require.Error(t, err)
				assert.True(t, strings.Contains(err.Error(), tt.errorContains),
					"error %q should contain %q", err.Error(), tt.errorContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedText, text)
		})
	}
}

func TestRemoteTranscriber_FileNotFound(t *testing.T) {
	client := NewClient(config.OpenAIConfig{APIKey: "test-api-key"})
	rt := NewRemoteTranscriber(client)

	_, err := rt.Transcribe(context.Background(), "/non/existent/file.mp3")
	assert.Error(t, err)
}

func TestRemoteTranscriber_ContextCancellation(t *testing.T) {
	server := newWhisperServer(t, http.StatusOK, `{"text": "should not arrive"}`)

	client := NewClient(config.OpenAIConfig{
		APIKey:  "test-api-key",
		BaseURL: server.URL + "/v1",
	})
	rt := NewRemoteTranscriber(client)

	audioPath := writeTestAudio(t, "audio.mp3")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := rt.Transcribe(ctx, audioPath)
	assert.Error(t, err)
}
