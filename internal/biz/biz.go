package biz

import (
	"log/slog"

	"izakayabot/internal/biz/usecase"
	"izakayabot/internal/data"
)

// Usecases contains all usecases
type Usecases struct {
	Archive  *usecase.ArchiveUsecase
	Reaction *usecase.ReactionUsecase
}

// NewUsecases creates all usecases over one set of repositories
func NewUsecases(cfg usecase.ArchiveConfig, repos *data.Repositories, logger *slog.Logger) *Usecases {
	return &Usecases{
		Archive:  usecase.NewArchiveUsecase(cfg, repos.Message, repos.Guild, logger),
		Reaction: usecase.NewReactionUsecase(repos.Message, logger, nil),
	}
}
