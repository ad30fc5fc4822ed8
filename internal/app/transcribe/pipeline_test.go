package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"audio-table/internal/app/model"
	"audio-table/internal/app/store"
)

// fakeTranscriber returns a fixed text or error and records the input path.
type fakeTranscriber struct {
	text      string
	err       error
	inputPath string
	inputData []byte
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, inputFilePath string) (string, error) {
	f.inputPath = inputFilePath
	if data, err := os.ReadFile(inputFilePath); err == nil {
		f.inputData = data
	}
	return f.text, f.err
}

func newSourceServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func scratchPathFor(handle, ext string) string {
	return filepath.Join(os.TempDir(), "audio_"+handle+ext)
}

func TestPipeline_Run(t *testing.T) {
	source := newSourceServer(t, http.StatusOK, "fake audio bytes")
	memStore := store.NewMemoryStore("audio-table")
	transcriber := &fakeTranscriber{text: "hello world"}
	pipeline := NewPipeline(memStore, transcriber, zap.NewNop())

	handle := uuid.NewString()
	result, err := pipeline.Run(context.Background(), source.URL+"/song.mp3", "song.mp3", handle)
	require.NoError(t, err)

	assert.Equal(t, "hello world", result.Text)
	assert.NotEmpty(t, result.SidecarURL)

	// The transcriber saw the downloaded bytes.
	assert.Equal(t, "fake audio bytes", string(transcriber.inputData))

	// Sidecar written under <pathname>_transcription.json with {"text": ...}.
	body, err := memStore.Get(context.Background(), "song.mp3_transcription.json")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)

	var sidecar model.Sidecar
	require.NoError(t, json.Unmarshal(data, &sidecar))
	assert.Equal(t, "hello world", sidecar.Text)

	// Scratch file removed on success.
	assert.NoFileExists(t, scratchPathFor(handle, ".mp3"))
}

func TestPipeline_Run_DownloadFailure(t *testing.T) {
	source := newSourceServer(t, http.StatusNotFound, "no such blob")
	memStore := store.NewMemoryStore("audio-table")
	pipeline := NewPipeline(memStore, &fakeTranscriber{text: "unused"}, zap.NewNop())

	handle := uuid.NewString()
	_, err := pipeline.Run(context.Background(), source.URL+"/missing.mp3", "missing.mp3", handle)
	require.ErrorContains(t, err, "failed to download source")

	// No sidecar, no scratch file left behind.
	_, err = memStore.Get(context.Background(), "missing.mp3_transcription.json")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NoFileExists(t, scratchPathFor(handle, ".mp3"))
}

func TestPipeline_Run_RecognitionFailure(t *testing.T) {
	source := newSourceServer(t, http.StatusOK, "fake audio bytes")
	memStore := store.NewMemoryStore("audio-table")
	transcriber := &fakeTranscriber{err: errors.New("recognition exploded")}
	pipeline := NewPipeline(memStore, transcriber, zap.NewNop())

	handle := uuid.NewString()
	_, err := pipeline.Run(context.Background(), source.URL+"/song.wav", "song.wav", handle)
	require.ErrorContains(t, err, "transcription failed")

	// Failure leaves no sidecar: indistinguishable from never attempted.
	_, err = memStore.Get(context.Background(), "song.wav_transcription.json")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Scratch file removed on the failure path too.
	assert.NoFileExists(t, scratchPathFor(handle, ".wav"))
}

func TestPipeline_Run_ConcurrentInvocationsUseDistinctScratchFiles(t *testing.T) {
	source := newSourceServer(t, http.StatusOK, "fake audio bytes")
	memStore := store.NewMemoryStore("audio-table")
	pipeline := NewPipeline(memStore, &fakeTranscriber{text: "ok"}, zap.NewNop())

	done := make(chan error, 2)
	for _, name := range []string{"a.mp3", "b.mp3"} {
		go func(name string) {
			_, err := pipeline.Run(context.Background(), source.URL+"/"+name, name, uuid.NewString())
			done <- err
		}(name)
	}

	for i := 0; i < 2; i++ {
		require.NoError(t, <-done)
	}

	for _, name := range []string{"a.mp3", "b.mp3"} {
		_, err := memStore.Get(context.Background(), model.SidecarKey(name))
		assert.NoError(t, err)
	}
}

func TestSourceExtension(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"http://store/bucket/song.mp3", ".mp3"},
		{"http://store/bucket/song.mp3?X-Signed=abc", ".mp3"},
		{"http://store/bucket/noext", ""},
		{"://bad", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sourceExtension(tt.url), tt.url)
	}
}
