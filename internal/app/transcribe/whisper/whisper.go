package whisper

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"audio-table/internal/config"
)

// NewClient builds an OpenAI client from injected configuration. A custom
// base URL points the client at a compatible self-hosted endpoint.
func NewClient(cfg config.OpenAIConfig) *openai.Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientConfig)
}

// RemoteTranscriber implements transcription using the OpenAI Whisper API.
type RemoteTranscriber struct {
	client *openai.Client
}

// NewRemoteTranscriber creates a new RemoteTranscriber instance.
func NewRemoteTranscriber(client *openai.Client) *RemoteTranscriber {
	return &RemoteTranscriber{client: client}
}

// Transcribe sends the file to the Whisper API and returns the recognized text.
func (rt *RemoteTranscriber) Transcribe(ctx context.Context, inputFilePath string) (string, error) {
	req := openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: inputFilePath,
	}

	resp, err := rt.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", fmt.Errorf("createTranscription failed: %w", err)
	}

	return resp.Text, nil
}
