package app

import (
	"context"

	"audio-table/internal/app/store"
	"audio-table/internal/app/transcribe"
	"audio-table/internal/app/transcribe/whisper"
	"audio-table/internal/auth"
	"audio-table/internal/config"
)

// provideBlobStore connects to MinIO with the injected configuration.
func provideBlobStore(ctx context.Context, cfg *config.Config) (store.BlobStore, error) {
	return store.NewMinioStore(ctx, cfg.Minio)
}

// provideTranscriber builds the Whisper API transcriber.
func provideTranscriber(cfg *config.Config) transcribe.Transcriber {
	return whisper.NewRemoteTranscriber(whisper.NewClient(cfg.OpenAI))
}

// provideSessionVerifier builds the JWT session verifier for the auth gate.
func provideSessionVerifier(cfg *config.Config) auth.SessionVerifier {
	return auth.NewJWTVerifier(cfg.Auth.JWTSecret)
}
