package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"audio-table/internal/api/dto"
	"audio-table/internal/api/server"
	"audio-table/internal/app/catalog"
	"audio-table/internal/app/store"
	"audio-table/internal/app/transcribe"
	"audio-table/internal/auth"
	"audio-table/internal/config"
)

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, inputFilePath string) (string, error) {
	return f.text, f.err
}

type testEnv struct {
	router   http.Handler
	store    *store.MemoryStore
	verifier *auth.JWTVerifier
	token    string
}

func newTestEnv(t *testing.T, transcriber transcribe.Transcriber) *testEnv {
	t.Helper()

	memStore := store.NewMemoryStore("audio-table")
	blobServer := httptest.NewServer(memStore.Handler())
	t.Cleanup(blobServer.Close)
	memStore.SetBaseURL(blobServer.URL)

	verifier := auth.NewJWTVerifier("server-test-secret-16chars")
	token, err := verifier.Issue("user@example.com", time.Hour)
	require.NoError(t, err)

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:        "0",
			Environment: "development",
		},
		Minio: config.MinioConfig{
			Bucket:        "audio-table",
			PresignExpiry: time.Hour,
		},
	}

	logger := zap.NewNop()
	srv := server.NewServer(
		cfg,
		verifier,
		catalog.NewService(memStore, logger),
		transcribe.NewPipeline(memStore, transcriber, logger),
		memStore,
		logger,
	)

	return &testEnv{
		router:   srv.Router(),
		store:    memStore,
		verifier: verifier,
		token:    token,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	e.router.ServeHTTP(recorder, req)
	return recorder
}

func decodeJSON[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &out))
	return out
}

func TestAuthRequiredOnAllEndpoints(t *testing.T) {
	env := newTestEnv(t, &fakeTranscriber{text: "unused"})

	endpoints := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/blobs"},
		{http.MethodPost, "/api/blobs/delete"},
		{http.MethodPost, "/api/upload"},
		{http.MethodPost, "/api/transcribe"},
		{http.MethodDelete, "/api/delete"},
	}

	for _, endpoint := range endpoints {
		t.Run(endpoint.method+" "+endpoint.path, func(t *testing.T) {
			recorder := env.do(t, endpoint.method, endpoint.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, recorder.Code)

			recorder = env.do(t, endpoint.method, endpoint.path, "not-a-valid-token", nil)
			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		})
	}
}

func TestSessionCookieAccepted(t *testing.T) {
	env := newTestEnv(t, &fakeTranscriber{text: "unused"})

	req := httptest.NewRequest(http.MethodGet, "/api/blobs", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: env.token})

	recorder := httptest.NewRecorder()
	env.router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestHealthAndMetricsAreOpen(t *testing.T) {
	env := newTestEnv(t, &fakeTranscriber{text: "unused"})

	recorder := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "healthy")

	recorder = env.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestUploadAuthorization_Validation(t *testing.T) {
	env := newTestEnv(t, &fakeTranscriber{text: "unused"})

	t.Run("missing fields", func(t *testing.T) {
		recorder := env.do(t, http.MethodPost, "/api/upload", env.token, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("non-audio content type", func(t *testing.T) {
		recorder := env.do(t, http.MethodPost, "/api/upload", env.token, dto.UploadRequest{
			Pathname:    "movie.mp4",
			ContentType: "video/mp4",
		})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "Unsupported content type")
	})

	t.Run("path traversal rejected", func(t *testing.T) {
		recorder := env.do(t, http.MethodPost, "/api/upload", env.token, dto.UploadRequest{
			Pathname:    "../../etc/passwd.mp3",
			ContentType: "audio/mpeg",
		})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestTranscribe_MissingBlobURL(t *testing.T) {
	env := newTestEnv(t, &fakeTranscriber{text: "unused"})

	recorder := env.do(t, http.MethodPost, "/api/transcribe", env.token, map[string]string{
		"pathname": "song.mp3",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "No blob URL provided")
}

func TestTranscribe_RecognitionFailureReturns500(t *testing.T) {
	env := newTestEnv(t, &fakeTranscriber{err: errors.New("recognition exploded")})

	_, err := env.store.Put(context.Background(), "song.mp3", "audio/mpeg",
		strings.NewReader("audio bytes"), 11)
	require.NoError(t, err)

	recorder := env.do(t, http.MethodPost, "/api/transcribe", env.token, dto.TranscribeRequest{
		BlobURL:  env.store.URL("song.mp3"),
		Pathname: "song.mp3",
	})
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Failed to transcribe audio")
}

func TestDeleteByPathname_IsIdempotent(t *testing.T) {
	env := newTestEnv(t, &fakeTranscriber{text: "unused"})

	recorder := env.do(t, http.MethodDelete, "/api/delete", env.token, dto.DeleteByPathnameRequest{
		Pathname: "never-existed.mp3",
	})
	assert.Equal(t, http.StatusOK, recorder.Code)

	response := decodeJSON[dto.DeleteResponse](t, recorder)
	assert.True(t, response.Success)
}

func TestDeleteByURL_InvalidURL(t *testing.T) {
	env := newTestEnv(t, &fakeTranscriber{text: "unused"})

	recorder := env.do(t, http.MethodPost, "/api/blobs/delete", env.token, dto.DeleteByURLRequest{
		URL: "http://elsewhere.example/other-bucket/song.mp3",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Invalid blob URL")
}

// TestUploadTranscribeListDelete walks one object through its full life:
// authorize an upload, PUT the bytes directly to the store, see it listed
// without a transcription, transcribe it, see the completed text in the
// listing, then delete it along with its sidecar.
func TestUploadTranscribeListDelete(t *testing.T) {
	env := newTestEnv(t, &fakeTranscriber{text: "hello world"})

	// Authorize the upload.
	recorder := env.do(t, http.MethodPost, "/api/upload", env.token, dto.UploadRequest{
		Pathname:    "song.mp3",
		ContentType: "audio/mpeg",
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	grant := decodeJSON[dto.UploadAuthorizationResponse](t, recorder)
	assert.Equal(t, "song.mp3", grant.Pathname)
	require.NotEmpty(t, grant.UploadURL)

	// PUT the bytes straight to the store, as a browser client would.
	putReq, err := http.NewRequest(http.MethodPut, grant.UploadURL, strings.NewReader("mp3 bytes"))
	require.NoError(t, err)
	putReq.Header.Set("Content-Type", "audio/mpeg")

	putResp, err := http.DefaultClient.Do(putReq)
	require.NoError(t, err)
	putResp.Body.Close()
	require.Equal(t, http.StatusOK, putResp.StatusCode)

	// The listing shows the object with no transcription fields yet.
	recorder = env.do(t, http.MethodGet, "/api/blobs", env.token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	listing := decodeJSON[dto.ListBlobsResponse](t, recorder)
	require.Len(t, listing.Blobs, 1)
	assert.Equal(t, "song.mp3", listing.Blobs[0].Pathname)
	assert.Empty(t, listing.Blobs[0].TranscriptionStatus)
	assert.Empty(t, listing.Blobs[0].Transcription)
	assert.Equal(t, int64(len("mp3 bytes")), listing.Blobs[0].Size)

	// Transcribe it.
	recorder = env.do(t, http.MethodPost, "/api/transcribe", env.token, dto.TranscribeRequest{
		BlobURL:  grant.URL,
		Pathname: "song.mp3",
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	transcribed := decodeJSON[dto.TranscribeResponse](t, recorder)
	assert.True(t, transcribed.Success)
	assert.Equal(t, "hello world", transcribed.Transcription)
	assert.NotEmpty(t, transcribed.TranscriptionURL)

	// The sidecar exists in the store and the listing now shows the text.
	_, err = env.store.Get(context.Background(), "song.mp3_transcription.json")
	require.NoError(t, err)

	recorder = env.do(t, http.MethodGet, "/api/blobs", env.token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	listing = decodeJSON[dto.ListBlobsResponse](t, recorder)
	require.Len(t, listing.Blobs, 1)
	assert.Equal(t, "completed", listing.Blobs[0].TranscriptionStatus)
	assert.Equal(t, "hello world", listing.Blobs[0].Transcription)

	// Delete by URL removes the audio and its sidecar.
	recorder = env.do(t, http.MethodPost, "/api/blobs/delete", env.token, dto.DeleteByURLRequest{
		URL: grant.URL,
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = env.do(t, http.MethodGet, "/api/blobs", env.token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	listing = decodeJSON[dto.ListBlobsResponse](t, recorder)
	assert.Empty(t, listing.Blobs)

	_, err = env.store.Get(context.Background(), "song.mp3_transcription.json")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
