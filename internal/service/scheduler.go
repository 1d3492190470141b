package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"izakayabot/internal/biz/domain"
	"izakayabot/internal/biz/repo"
	"izakayabot/internal/biz/usecase"
)

// WeeklyConfig configures the recurring attendance announcement
type WeeklyConfig struct {
	Channel    string       // announcement channel name
	Roles      []string     // role names to mention
	Weekday    time.Weekday // only fire on this weekday (JST)
	Hour       int          // JST wall-clock firing hour
	Minute     int
	OffsetDays int // first day label = firing date + offset
	Days       int // number of day labels to post
}

// WeeklyScheduler evaluates once per day at a fixed JST wall-clock time
// and republishes the weekly attendance poll in every guild. Start is
// latched so reconnect-driven ready events cannot register the loop
// twice.
type WeeklyScheduler struct {
	cfg         WeeklyConfig
	guildRepo   repo.GuildRepo
	messageRepo repo.MessageRepo
	reactionUC  *usecase.ReactionUsecase
	logger      *slog.Logger
	now         func() time.Time

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewWeeklyScheduler creates the scheduler. now is injectable so firing
// and anchoring are deterministic in tests.
func NewWeeklyScheduler(cfg WeeklyConfig, guildRepo repo.GuildRepo, messageRepo repo.MessageRepo, reactionUC *usecase.ReactionUsecase, logger *slog.Logger, now func() time.Time) *WeeklyScheduler {
	if now == nil {
		now = time.Now
	}
	if cfg.Days <= 0 {
		cfg.Days = 7
	}
	return &WeeklyScheduler{
		cfg:         cfg,
		guildRepo:   guildRepo,
		messageRepo: messageRepo,
		reactionUC:  reactionUC,
		logger:      logger.With("component", "scheduler"),
		now:         now,
	}
}

// Start starts the daily evaluation loop. Calling Start again while
// running is a no-op.
func (s *WeeklyScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		s.logger.Info("already started, ignoring")
		return
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.loop(ctx)
	s.logger.Info("started", "weekday", s.cfg.Weekday.String(), "hour", s.cfg.Hour, "minute", s.cfg.Minute)
}

// Started reports whether the loop is running
func (s *WeeklyScheduler) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Stop stops the loop and waits for it to exit
func (s *WeeklyScheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.started = false
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	s.logger.Info("stopped")
}

func (s *WeeklyScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	for {
		fireAt := s.NextFireTime(s.now())
		timer := time.NewTimer(fireAt.Sub(s.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.RunOnce(ctx, s.now())
		}
	}
}

// NextFireTime returns the next occurrence of the configured JST
// wall-clock time strictly after now.
func (s *WeeklyScheduler) NextFireTime(now time.Time) time.Time {
	nowJST := now.In(domain.JST)
	fire := time.Date(nowJST.Year(), nowJST.Month(), nowJST.Day(), s.cfg.Hour, s.cfg.Minute, 0, 0, domain.JST)
	if !fire.After(nowJST) {
		fire = fire.AddDate(0, 0, 1)
	}
	return fire
}

// RunOnce performs one daily evaluation: no-op unless the JST weekday
// matches, otherwise announces in every guild.
func (s *WeeklyScheduler) RunOnce(ctx context.Context, now time.Time) {
	if now.In(domain.JST).Weekday() != s.cfg.Weekday {
		return
	}

	guilds, err := s.guildRepo.Guilds(ctx)
	if err != nil {
		s.logger.Error("failed to list guilds", "error", err)
		return
	}
	for _, g := range guilds {
		s.announce(ctx, g, now)
	}
}

func (s *WeeklyScheduler) announce(ctx context.Context, guild repo.GuildInfo, now time.Time) {
	channels, err := s.guildRepo.ListChannels(ctx, guild.ID)
	if err != nil {
		s.logger.Error("failed to list channels", "guild", guild.Name, "error", err)
		return
	}
	var channel repo.ChannelInfo
	found := false
	for _, ch := range channels {
		if !ch.Category && ch.Name == s.cfg.Channel {
			channel = ch
			found = true
			break
		}
	}
	if !found {
		s.logger.Info("announcement channel not present", "guild", guild.Name, "channel", s.cfg.Channel)
		return
	}

	roles, err := s.guildRepo.ListRoles(ctx, guild.ID)
	if err != nil {
		s.logger.Error("failed to list roles", "guild", guild.Name, "error", err)
		return
	}
	var mentions []string
	for _, name := range s.cfg.Roles {
		for _, r := range roles {
			if r.Name == name {
				mentions = append(mentions, "<@&"+r.ID+">")
				break
			}
		}
	}
	if len(mentions) == 0 {
		s.logger.Warn("no announcement roles found in guild", "guild", guild.Name, "roles", s.cfg.Roles)
		return
	}

	text := strings.Join(mentions, " ") + " 今週の出欠確認です！参加できる日にリアクションをお願いします。"
	if _, err := s.messageRepo.SendText(ctx, channel.ID, text); err != nil {
		s.logger.Error("failed to send announcement", "guild", guild.Name, "error", err)
		return
	}

	nowJST := now.In(domain.JST)
	start := time.Date(nowJST.Year(), nowJST.Month(), nowJST.Day(), 0, 0, 0, 0, domain.JST).AddDate(0, 0, s.cfg.OffsetDays)
	if err := s.reactionUC.PostDayLabels(ctx, channel.ID, start, s.cfg.Days); err != nil {
		s.logger.Error("failed to post day labels", "guild", guild.Name, "error", err)
	}
}
