package server

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"izakayabot/discord"
	"izakayabot/internal/biz/usecase"
	"izakayabot/internal/data"
	"izakayabot/internal/service"
)

// BotServer wires gateway events into the dispatcher and scheduler for
// the lifetime of one session.
type BotServer struct {
	client     *discord.Client
	dispatcher *service.Dispatcher
	scheduler  *service.WeeklyScheduler
	logger     *slog.Logger

	// filters duplicate gateway deliveries before dispatch
	seen *usecase.EventGuard
}

// NewBotServer creates a server for one session
func NewBotServer(client *discord.Client, dispatcher *service.Dispatcher, scheduler *service.WeeklyScheduler, logger *slog.Logger) *BotServer {
	return &BotServer{
		client:     client,
		dispatcher: dispatcher,
		scheduler:  scheduler,
		logger:     logger.With("component", "server"),
		seen:       usecase.NewEventGuard(),
	}
}

// Start registers handlers and blocks on the gateway connection until
// the context is cancelled or Stop is called.
func (s *BotServer) Start(ctx context.Context) error {
	s.client.OnReady(func(r *discordgo.Ready) {
		s.logger.Info("logged in", "user", r.User.Username, "guilds", len(r.Guilds))
		// latched: reconnects reach here again without double-starting
		s.scheduler.Start(ctx)
	})
	s.client.OnMessage(func(m *discordgo.MessageCreate) {
		s.handleMessage(ctx, m)
	})

	err := s.client.Start(ctx)
	s.scheduler.Stop()
	return err
}

// Stop tears the session down
func (s *BotServer) Stop() {
	s.client.Stop()
}

func (s *BotServer) handleMessage(ctx context.Context, m *discordgo.MessageCreate) {
	if m.Author == nil {
		return
	}
	if !s.seen.CheckAndMark(m.ID) {
		s.logger.Info("duplicate delivery ignored", "msg_id", m.ID)
		return
	}

	msg := data.FromDiscordMessage(m.Message, s.channelName(m.ChannelID))
	outcome := s.dispatcher.Dispatch(ctx, msg)
	if outcome != service.OutcomeIgnored {
		s.logger.Info("dispatched", "msg_id", m.ID, "outcome", int(outcome))
	}
}

// channelName resolves a channel's name, preferring session state over
// a REST round trip.
func (s *BotServer) channelName(channelID string) string {
	session := s.client.Session()
	if ch, err := session.State.Channel(channelID); err == nil {
		return ch.Name
	}
	ch, err := session.Channel(channelID)
	if err != nil {
		s.logger.Warn("failed to resolve channel name", "channel_id", channelID, "error", err)
		return ""
	}
	return ch.Name
}
