package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"izakayabot/internal/biz/domain"
	"izakayabot/internal/biz/repo"
)

// ArchiveConfig configures the archive workflow triggers and targets
type ArchiveConfig struct {
	// MonitoredChannel is the channel name watched for triggers
	MonitoredChannel string

	// ForeignBotID is the user ID of the foreign automated actor whose
	// command responses trigger the workflow. Empty disables the path.
	ForeignBotID string

	// TargetCommand is the slash-command name to match on
	TargetCommand string

	// MatchCommandName decides whether the foreign trigger requires the
	// command name to match, or actor identity alone
	MatchCommandName bool

	// TriggerRole is the role name whose members' messages in the
	// monitored channel also trigger archival. Empty disables the path.
	TriggerRole string

	// LinksChannel, when set, receives the reciprocal permalink instead
	// of the monitored channel
	LinksChannel string

	// ViewRoles are role names granted view access on new categories.
	// Empty leaves categories with default visibility.
	ViewRoles []string
}

// ArchiveUsecase drives the archive workflow: month-category
// resolution, numbered channel creation, message relay, and the
// reciprocal permalink. It owns the processed-event set and contains
// every failure within its own boundary.
type ArchiveUsecase struct {
	cfg         ArchiveConfig
	messageRepo repo.MessageRepo
	guildRepo   repo.GuildRepo
	guard       *EventGuard
	logger      *slog.Logger

	// serializes category lookup through channel creation so two
	// concurrent runs cannot resolve the same sequence number
	createMu sync.Mutex
}

// NewArchiveUsecase creates the archive workflow orchestrator
func NewArchiveUsecase(cfg ArchiveConfig, messageRepo repo.MessageRepo, guildRepo repo.GuildRepo, logger *slog.Logger) *ArchiveUsecase {
	return &ArchiveUsecase{
		cfg:         cfg,
		messageRepo: messageRepo,
		guildRepo:   guildRepo,
		guard:       NewEventGuard(),
		logger:      logger.With("component", "archive"),
	}
}

// MatchesForeignTrigger reports whether the message is a qualifying
// command response from the configured foreign bot in the monitored
// channel.
func (u *ArchiveUsecase) MatchesForeignTrigger(msg *domain.Message) bool {
	if u.cfg.ForeignBotID == "" || msg.ChannelName != u.cfg.MonitoredChannel {
		return false
	}
	if msg.Author.ID != u.cfg.ForeignBotID || msg.Interaction == nil {
		return false
	}
	if u.cfg.MatchCommandName && msg.Interaction.Name != u.cfg.TargetCommand {
		return false
	}
	return true
}

// MatchesRoleTrigger reports whether the message comes from a member of
// the configured trigger role in the monitored channel.
func (u *ArchiveUsecase) MatchesRoleTrigger(ctx context.Context, msg *domain.Message) bool {
	if u.cfg.TriggerRole == "" || msg.ChannelName != u.cfg.MonitoredChannel {
		return false
	}
	if msg.Author.Bot || len(msg.MemberRoles) == 0 {
		return false
	}
	roles, err := u.guildRepo.ListRoles(ctx, msg.GuildID)
	if err != nil {
		u.logger.Warn("failed to list roles for trigger check", "error", err)
		return false
	}
	var roleID string
	for _, r := range roles {
		if r.Name == u.cfg.TriggerRole {
			roleID = r.ID
			break
		}
	}
	if roleID == "" {
		return false
	}
	for _, id := range msg.MemberRoles {
		if id == roleID {
			return true
		}
	}
	return false
}

// HandleForeignTrigger archives a foreign bot's command response and
// posts the reciprocal permalink to the links channel (or back into the
// monitored channel).
func (u *ArchiveUsecase) HandleForeignTrigger(ctx context.Context, msg *domain.Message) {
	u.run(ctx, msg, false)
}

// HandleRoleTrigger archives a trigger-role member's own message and
// replies in place with the permalink.
func (u *ArchiveUsecase) HandleRoleTrigger(ctx context.Context, msg *domain.Message) {
	u.run(ctx, msg, true)
}

// run executes the workflow for one triggering event. The event is
// marked processed before any side effect; failures never escape.
func (u *ArchiveUsecase) run(ctx context.Context, msg *domain.Message, replyInPlace bool) {
	if !u.guard.CheckAndMark(msg.ID) {
		u.logger.Info("duplicate trigger ignored", "msg_id", msg.ID)
		return
	}

	if err := u.archive(ctx, msg, replyInPlace); err != nil {
		var perr *domain.PermissionError
		if errors.As(err, &perr) {
			u.logger.Error("archive failed: permission denied", "msg_id", msg.ID, "action", perr.Action, "error", perr)
			u.notify(ctx, msg.ChannelID, "権限が不足しているため、アーカイブを作成できませんでした。")
			return
		}
		u.logger.Error("archive failed", "msg_id", msg.ID, "error", err)
		u.notify(ctx, msg.ChannelID, "アーカイブの作成中にエラーが発生しました。")
	}
}

func (u *ArchiveUsecase) archive(ctx context.Context, msg *domain.Message, replyInPlace bool) error {
	channel, aborted, err := u.createArchiveChannel(ctx, msg)
	if err != nil {
		return err
	}
	if aborted {
		return nil
	}

	relayed, err := u.relay(ctx, msg, channel)
	if err != nil {
		return err
	}

	link := domain.MessagePermalink(msg.GuildID, channel.ID, relayed.ID)
	notice := "アーカイブを作成しました: " + link

	if replyInPlace {
		if _, err := u.messageRepo.Reply(ctx, msg.ChannelID, msg.ID, notice); err != nil {
			return fmt.Errorf("reply with archive link: %w", err)
		}
		return nil
	}

	targetID := msg.ChannelID
	if u.cfg.LinksChannel != "" {
		if linkCh, ok := u.findChannelByName(ctx, msg.GuildID, u.cfg.LinksChannel); ok {
			targetID = linkCh.ID
		} else {
			u.logger.Warn("links channel not found, falling back to origin", "name", u.cfg.LinksChannel)
		}
	}
	if _, err := u.messageRepo.SendText(ctx, targetID, notice); err != nil {
		return fmt.Errorf("send archive link: %w", err)
	}
	return nil
}

// createArchiveChannel resolves or creates the month category and
// creates the next numbered channel under it. Returns aborted=true when
// the resolved name already exists (stale snapshot or race).
func (u *ArchiveUsecase) createArchiveChannel(ctx context.Context, msg *domain.Message) (repo.ChannelInfo, bool, error) {
	u.createMu.Lock()
	defer u.createMu.Unlock()

	channels, err := u.guildRepo.ListChannels(ctx, msg.GuildID)
	if err != nil {
		return repo.ChannelInfo{}, false, fmt.Errorf("list channels: %w", err)
	}

	categoryName := domain.MonthCategoryName(msg.Timestamp)
	ow := u.buildOverwrites(ctx, msg.GuildID)

	var category repo.ChannelInfo
	found := false
	for _, ch := range channels {
		if ch.Category && ch.Name == categoryName {
			category = ch
			found = true
			break
		}
	}

	if found {
		// Re-apply overwrites on every run to keep permissions converged
		if ow != nil {
			if err := u.guildRepo.EditCategoryOverwrites(ctx, msg.GuildID, category.ID, ow); err != nil {
				u.logger.Warn("failed to refresh category overwrites", "category", categoryName, "error", err)
			}
		}
	} else {
		category, err = u.guildRepo.CreateCategory(ctx, msg.GuildID, categoryName, ow)
		if err != nil {
			return repo.ChannelInfo{}, false, fmt.Errorf("create category %q: %w", categoryName, err)
		}
		u.logger.Info("created category", "name", categoryName, "id", category.ID)
	}

	prefix := domain.MonthChannelPrefix(msg.Timestamp)
	var siblingNames []string
	for _, ch := range channels {
		if !ch.Category && ch.ParentID == category.ID {
			siblingNames = append(siblingNames, ch.Name)
		}
	}

	name := prefix + strconv.Itoa(domain.NextSequence(siblingNames, prefix))
	for _, existing := range siblingNames {
		if existing == name {
			u.logger.Warn("resolved channel name already exists, aborting", "name", name)
			return repo.ChannelInfo{}, true, nil
		}
	}

	channel, err := u.guildRepo.CreateTextChannel(ctx, msg.GuildID, name, category.ID)
	if err != nil {
		return repo.ChannelInfo{}, false, fmt.Errorf("create channel %q: %w", name, err)
	}
	u.logger.Info("created archive channel", "name", name, "id", channel.ID, "category", categoryName)
	return channel, false, nil
}

// relay copies the triggering message into the archive channel with a
// provenance header. The message is re-fetched first so the copy is
// complete; on failure the event payload is used instead.
func (u *ArchiveUsecase) relay(ctx context.Context, msg *domain.Message, channel repo.ChannelInfo) (repo.SentMessage, error) {
	content := msg.Content
	embeds := msg.Embeds
	attachments := msg.Attachments

	fetched, err := u.messageRepo.FetchMessage(ctx, msg.ChannelID, msg.ID)
	if err != nil {
		var nfe *domain.NotFoundError
		if errors.As(err, &nfe) {
			u.logger.Warn("trigger message no longer resolvable, using event payload", "msg_id", msg.ID)
		} else {
			u.logger.Warn("failed to re-fetch trigger message, using event payload", "msg_id", msg.ID, "error", err)
		}
	} else {
		content = fetched.Content
		embeds = fetched.Embeds
		attachments = fetched.Attachments
	}

	actor := u.actorName(msg)
	text := fmt.Sprintf("#%s %s より (by %s)", msg.ChannelName, msg.Permalink(), actor)
	if content != "" {
		text += "\n" + content
	}

	var files []repo.OutboundFile
	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()
	for _, att := range attachments {
		rc, err := u.messageRepo.DownloadAttachment(ctx, att.URL)
		if err != nil {
			u.logger.Warn("failed to download attachment, skipping", "filename", att.Filename, "error", err)
			continue
		}
		closers = append(closers, rc)
		files = append(files, repo.OutboundFile{Name: att.Filename, Reader: rc})
	}

	relayed, err := u.messageRepo.SendComplex(ctx, channel.ID, text, embeds, files)
	if err != nil {
		return repo.SentMessage{}, fmt.Errorf("relay message: %w", err)
	}
	return relayed, nil
}

// actorName attributes the archive to the user who caused it: the
// slash-command invoker for foreign triggers, the author otherwise.
func (u *ArchiveUsecase) actorName(msg *domain.Message) string {
	if msg.Interaction != nil && msg.Interaction.UserName != "" {
		return msg.Interaction.UserName
	}
	if msg.Author.Name != "" {
		return msg.Author.Name
	}
	return "unknown user"
}

// buildOverwrites resolves the configured view-role names to IDs. A
// category is only made private when at least one role resolves, so a
// lookup failure never produces a category nobody can see.
func (u *ArchiveUsecase) buildOverwrites(ctx context.Context, guildID string) *repo.Overwrites {
	if len(u.cfg.ViewRoles) == 0 {
		return nil
	}
	roles, err := u.guildRepo.ListRoles(ctx, guildID)
	if err != nil {
		u.logger.Warn("failed to list roles for overwrites", "error", err)
		return nil
	}
	byName := make(map[string]string, len(roles))
	for _, r := range roles {
		byName[r.Name] = r.ID
	}
	var allow []string
	for _, name := range u.cfg.ViewRoles {
		if id, ok := byName[name]; ok {
			allow = append(allow, id)
		} else {
			u.logger.Warn("view role not found in guild", "role", name)
		}
	}
	if len(allow) == 0 {
		return nil
	}
	return &repo.Overwrites{DenyEveryoneView: true, AllowViewRoleIDs: allow}
}

func (u *ArchiveUsecase) findChannelByName(ctx context.Context, guildID, name string) (repo.ChannelInfo, bool) {
	channels, err := u.guildRepo.ListChannels(ctx, guildID)
	if err != nil {
		u.logger.Warn("failed to list channels", "error", err)
		return repo.ChannelInfo{}, false
	}
	for _, ch := range channels {
		if !ch.Category && ch.Name == name {
			return ch, true
		}
	}
	return repo.ChannelInfo{}, false
}

func (u *ArchiveUsecase) notify(ctx context.Context, channelID, text string) {
	if _, err := u.messageRepo.SendText(ctx, channelID, text); err != nil {
		u.logger.Error("failed to send failure notice", "error", err)
	}
}

// Guard exposes the processed-event set, mainly for tests
func (u *ArchiveUsecase) Guard() *EventGuard {
	return u.guard
}
