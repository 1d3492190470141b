package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"izakayabot/discord"
	"izakayabot/internal/api"
	"izakayabot/internal/biz"
	"izakayabot/internal/conf"
	"izakayabot/internal/data"
	"izakayabot/internal/server"
	"izakayabot/internal/service"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using environment variables")
	}

	cfg := conf.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// keepalive endpoint for the uptime prober; runs regardless of the bot
	apiServer := api.NewServer(cfg.HTTP.Port, logger)
	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("api server error", "error", err)
		}
	}()
	defer apiServer.Stop()

	if cfg.Discord.Token == "" {
		logger.Error("DISCORD_TOKEN is not set; bot disabled, keepalive only")
		<-ctx.Done()
		return
	}

	sup := server.NewSupervisor(func(ctx context.Context) error {
		return runSession(ctx, cfg, logger)
	}, logger)

	if err := sup.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("supervisor exited", "error", err)
		os.Exit(1)
	}
	logger.Info("shutting down")
}

// runSession builds one complete bot session and blocks for its
// lifetime. Everything is rebuilt from scratch per attempt.
func runSession(ctx context.Context, cfg *conf.Config, logger *slog.Logger) error {
	client, err := discord.NewClient(cfg.Discord.Token)
	if err != nil {
		return err
	}

	me, err := client.Me(ctx)
	if err != nil {
		return err
	}

	repos := data.NewRepositories(client.Session())
	ucs := biz.NewUsecases(cfg.Archive.ToArchiveConfig(), repos, logger)

	dispatcher := service.NewDispatcher(me.ID, ucs.Archive, ucs.Reaction, repos.Message, logger)
	scheduler := service.NewWeeklyScheduler(cfg.Announce.ToWeeklyConfig(), repos.Guild, repos.Message, ucs.Reaction, logger, nil)

	srv := server.NewBotServer(client, dispatcher, scheduler, logger)
	return srv.Start(ctx)
}
