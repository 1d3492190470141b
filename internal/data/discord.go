package data

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"

	"izakayabot/internal/biz/domain"
	"izakayabot/internal/biz/repo"
)

// Repositories contains all repositories
type Repositories struct {
	Message repo.MessageRepo
	Guild   repo.GuildRepo
}

// NewRepositories creates all repositories over one Discord session
func NewRepositories(session *discordgo.Session) *Repositories {
	return &Repositories{
		Message: NewMessageRepo(session),
		Guild:   NewGuildRepo(session),
	}
}

// messageRepo implements repo.MessageRepo over the Discord REST API
type messageRepo struct {
	session *discordgo.Session
	httpCli *http.Client
}

// NewMessageRepo creates a Discord-backed message repository
func NewMessageRepo(session *discordgo.Session) repo.MessageRepo {
	return &messageRepo{
		session: session,
		httpCli: &http.Client{Timeout: 30 * time.Second},
	}
}

func (r *messageRepo) SendText(ctx context.Context, channelID, text string) (repo.SentMessage, error) {
	m, err := r.session.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx))
	if err != nil {
		return repo.SentMessage{}, translateErr("send message", err)
	}
	return repo.SentMessage{ID: m.ID, ChannelID: m.ChannelID}, nil
}

func (r *messageRepo) SendComplex(ctx context.Context, channelID, text string, embeds []domain.Embed, files []repo.OutboundFile) (repo.SentMessage, error) {
	send := &discordgo.MessageSend{
		Content: text,
		Embeds:  toDiscordEmbeds(embeds),
	}
	for _, f := range files {
		send.Files = append(send.Files, &discordgo.File{Name: f.Name, Reader: f.Reader})
	}
	m, err := r.session.ChannelMessageSendComplex(channelID, send, discordgo.WithContext(ctx))
	if err != nil {
		return repo.SentMessage{}, translateErr("send complex message", err)
	}
	return repo.SentMessage{ID: m.ID, ChannelID: m.ChannelID}, nil
}

func (r *messageRepo) Reply(ctx context.Context, channelID, messageID, text string) (repo.SentMessage, error) {
	ref := &discordgo.MessageReference{MessageID: messageID, ChannelID: channelID}
	m, err := r.session.ChannelMessageSendReply(channelID, text, ref, discordgo.WithContext(ctx))
	if err != nil {
		return repo.SentMessage{}, translateErr("reply", err)
	}
	return repo.SentMessage{ID: m.ID, ChannelID: m.ChannelID}, nil
}

func (r *messageRepo) AddReaction(ctx context.Context, channelID, messageID, emoji string) error {
	if err := r.session.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx)); err != nil {
		return translateErr("add reaction", err)
	}
	return nil
}

func (r *messageRepo) FetchMessage(ctx context.Context, channelID, messageID string) (*domain.Message, error) {
	m, err := r.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, translateErr("fetch message", err)
	}
	return FromDiscordMessage(m, ""), nil
}

func (r *messageRepo) DownloadAttachment(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build attachment request: %w", err)
	}
	resp, err := r.httpCli.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download attachment: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download attachment: status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// guildRepo implements repo.GuildRepo over the Discord REST API and the
// session's guild state.
type guildRepo struct {
	session *discordgo.Session
}

// NewGuildRepo creates a Discord-backed guild repository
func NewGuildRepo(session *discordgo.Session) repo.GuildRepo {
	return &guildRepo{session: session}
}

func (r *guildRepo) Guilds(ctx context.Context) ([]repo.GuildInfo, error) {
	var result []repo.GuildInfo
	for _, g := range r.session.State.Guilds {
		result = append(result, repo.GuildInfo{ID: g.ID, Name: g.Name})
	}
	return result, nil
}

func (r *guildRepo) ListChannels(ctx context.Context, guildID string) ([]repo.ChannelInfo, error) {
	channels, err := r.session.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, translateErr("list channels", err)
	}
	var result []repo.ChannelInfo
	for _, ch := range channels {
		result = append(result, repo.ChannelInfo{
			ID:       ch.ID,
			Name:     ch.Name,
			ParentID: ch.ParentID,
			Category: ch.Type == discordgo.ChannelTypeGuildCategory,
		})
	}
	return result, nil
}

func (r *guildRepo) ListRoles(ctx context.Context, guildID string) ([]repo.RoleInfo, error) {
	roles, err := r.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, translateErr("list roles", err)
	}
	var result []repo.RoleInfo
	for _, role := range roles {
		result = append(result, repo.RoleInfo{ID: role.ID, Name: role.Name})
	}
	return result, nil
}

func (r *guildRepo) CreateCategory(ctx context.Context, guildID, name string, ow *repo.Overwrites) (repo.ChannelInfo, error) {
	data := discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildCategory,
		PermissionOverwrites: toDiscordOverwrites(guildID, ow),
	}
	ch, err := r.session.GuildChannelCreateComplex(guildID, data, discordgo.WithContext(ctx))
	if err != nil {
		return repo.ChannelInfo{}, translateErr("create category", err)
	}
	return repo.ChannelInfo{ID: ch.ID, Name: ch.Name, Category: true}, nil
}

func (r *guildRepo) CreateTextChannel(ctx context.Context, guildID, name, parentID string) (repo.ChannelInfo, error) {
	data := discordgo.GuildChannelCreateData{
		Name:     name,
		Type:     discordgo.ChannelTypeGuildText,
		ParentID: parentID,
	}
	ch, err := r.session.GuildChannelCreateComplex(guildID, data, discordgo.WithContext(ctx))
	if err != nil {
		return repo.ChannelInfo{}, translateErr("create channel", err)
	}
	return repo.ChannelInfo{ID: ch.ID, Name: ch.Name, ParentID: ch.ParentID}, nil
}

func (r *guildRepo) EditCategoryOverwrites(ctx context.Context, guildID, categoryID string, ow *repo.Overwrites) error {
	edit := &discordgo.ChannelEdit{PermissionOverwrites: toDiscordOverwrites(guildID, ow)}
	if _, err := r.session.ChannelEditComplex(categoryID, edit, discordgo.WithContext(ctx)); err != nil {
		return translateErr("edit category overwrites", err)
	}
	return nil
}

// toDiscordOverwrites builds permission overwrites. The guild's default
// role shares the guild's ID.
func toDiscordOverwrites(guildID string, ow *repo.Overwrites) []*discordgo.PermissionOverwrite {
	if ow == nil {
		return nil
	}
	var result []*discordgo.PermissionOverwrite
	if ow.DenyEveryoneView {
		result = append(result, &discordgo.PermissionOverwrite{
			ID:   guildID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		})
	}
	for _, roleID := range ow.AllowViewRoleIDs {
		result = append(result, &discordgo.PermissionOverwrite{
			ID:    roleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: discordgo.PermissionViewChannel,
		})
	}
	return result
}

// translateErr maps Discord REST errors onto the domain error taxonomy
func translateErr(action string, err error) error {
	var rerr *discordgo.RESTError
	if errors.As(err, &rerr) && rerr.Message != nil {
		switch rerr.Message.Code {
		case discordgo.ErrCodeMissingPermissions, discordgo.ErrCodeMissingAccess:
			return &domain.PermissionError{Action: action, Err: err}
		case discordgo.ErrCodeUnknownMessage:
			return &domain.NotFoundError{Kind: "message", Ref: action, Err: err}
		case discordgo.ErrCodeUnknownChannel:
			return &domain.NotFoundError{Kind: "channel", Ref: action, Err: err}
		}
	}
	return fmt.Errorf("%s: %w", action, err)
}

// FromDiscordMessage converts a platform message into the domain model.
// channelName may be empty when the caller has no channel context.
func FromDiscordMessage(m *discordgo.Message, channelName string) *domain.Message {
	msg := &domain.Message{
		ID:          m.ID,
		GuildID:     m.GuildID,
		ChannelID:   m.ChannelID,
		ChannelName: channelName,
		Content:     m.Content,
		Timestamp:   m.Timestamp,
	}
	if m.Author != nil {
		msg.Author = domain.Author{ID: m.Author.ID, Name: m.Author.Username, Bot: m.Author.Bot}
	}
	if m.Member != nil {
		msg.MemberRoles = m.Member.Roles
	}
	for _, e := range m.Embeds {
		msg.Embeds = append(msg.Embeds, fromDiscordEmbed(e))
	}
	for _, a := range m.Attachments {
		msg.Attachments = append(msg.Attachments, domain.Attachment{Filename: a.Filename, URL: a.URL})
	}
	if m.Interaction != nil {
		meta := &domain.CommandMeta{Name: m.Interaction.Name}
		if m.Interaction.User != nil {
			meta.UserID = m.Interaction.User.ID
			meta.UserName = m.Interaction.User.Username
			meta.UserBot = m.Interaction.User.Bot
		}
		msg.Interaction = meta
	}
	if m.MessageReference != nil {
		msg.Reference = &domain.Reference{
			MessageID: m.MessageReference.MessageID,
			ChannelID: m.MessageReference.ChannelID,
		}
	}
	return msg
}

func fromDiscordEmbed(e *discordgo.MessageEmbed) domain.Embed {
	embed := domain.Embed{
		Title:       e.Title,
		Description: e.Description,
		URL:         e.URL,
		Color:       e.Color,
	}
	if e.Image != nil {
		embed.ImageURL = e.Image.URL
	}
	for _, f := range e.Fields {
		embed.Fields = append(embed.Fields, domain.EmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	return embed
}

func toDiscordEmbeds(embeds []domain.Embed) []*discordgo.MessageEmbed {
	var result []*discordgo.MessageEmbed
	for _, e := range embeds {
		de := &discordgo.MessageEmbed{
			Title:       e.Title,
			Description: e.Description,
			URL:         e.URL,
			Color:       e.Color,
		}
		if e.ImageURL != "" {
			de.Image = &discordgo.MessageEmbedImage{URL: e.ImageURL}
		}
		for _, f := range e.Fields {
			de.Fields = append(de.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
		}
		result = append(result, de)
	}
	return result
}
