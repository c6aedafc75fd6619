//go:build wireinject
// +build wireinject

package wire

import (
	"context"

	"github.com/google/wire"

	"github.com/sevigo/risk-warden/internal/app"
	"github.com/sevigo/risk-warden/internal/config"
	"github.com/sevigo/risk-warden/internal/jobs"
)

func InitializeApp(ctx context.Context, cfg *config.Config) (*app.App, func(), error) {
	wire.Build(AppSet)
	return nil, nil, nil
}

func InitializeAssessor(ctx context.Context, cfg *config.Config) (*jobs.Assessor, func(), error) {
	wire.Build(AssessorSet)
	return nil, nil, nil
}
