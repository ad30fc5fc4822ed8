//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"audio-table/internal/api/server"
	"audio-table/internal/app/catalog"
	"audio-table/internal/app/transcribe"
	"audio-table/internal/config"
)

// InitializeServer assembles the API server from configuration.
func InitializeServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*server.Server, error) {
	wire.Build(
		provideBlobStore,
		provideTranscriber,
		provideSessionVerifier,
		catalog.NewService,
		transcribe.NewPipeline,
		server.NewServer,
	)
	return nil, nil
}
