package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"izakayabot/internal/biz/domain"
	"izakayabot/internal/biz/repo"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sentRecord struct {
	ChannelID string
	Text      string
}

type stubMessageRepo struct {
	mu        sync.Mutex
	sent      []sentRecord
	reactions []string
	complex   []sentRecord
	replies   []sentRecord
	fetchable map[string]*domain.Message
	nextID    int
}

func newStubMessageRepo() *stubMessageRepo {
	return &stubMessageRepo{fetchable: make(map[string]*domain.Message)}
}

func (m *stubMessageRepo) newID() string {
	m.nextID++
	return fmt.Sprintf("sent-%d", m.nextID)
}

func (m *stubMessageRepo) SendText(ctx context.Context, channelID, text string) (repo.SentMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentRecord{ChannelID: channelID, Text: text})
	return repo.SentMessage{ID: m.newID(), ChannelID: channelID}, nil
}

func (m *stubMessageRepo) SendComplex(ctx context.Context, channelID, text string, embeds []domain.Embed, files []repo.OutboundFile) (repo.SentMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.complex = append(m.complex, sentRecord{ChannelID: channelID, Text: text})
	return repo.SentMessage{ID: m.newID(), ChannelID: channelID}, nil
}

func (m *stubMessageRepo) Reply(ctx context.Context, channelID, messageID, text string) (repo.SentMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, sentRecord{ChannelID: channelID, Text: text})
	return repo.SentMessage{ID: m.newID(), ChannelID: channelID}, nil
}

func (m *stubMessageRepo) AddReaction(ctx context.Context, channelID, messageID, emoji string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reactions = append(m.reactions, emoji)
	return nil
}

func (m *stubMessageRepo) FetchMessage(ctx context.Context, channelID, messageID string) (*domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg, ok := m.fetchable[messageID]; ok {
		return msg, nil
	}
	return nil, &domain.NotFoundError{Kind: "message", Ref: messageID, Err: errors.New("unknown message")}
}

func (m *stubMessageRepo) DownloadAttachment(ctx context.Context, url string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("file-bytes")), nil
}

func (m *stubMessageRepo) sentTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var texts []string
	for _, s := range m.sent {
		texts = append(texts, s.Text)
	}
	return texts
}

type stubGuildRepo struct {
	mu       sync.Mutex
	guilds   []repo.GuildInfo
	channels map[string][]repo.ChannelInfo
	roles    map[string][]repo.RoleInfo

	createdChannels []string
	nextID          int
}

func newStubGuildRepo() *stubGuildRepo {
	return &stubGuildRepo{
		channels: make(map[string][]repo.ChannelInfo),
		roles:    make(map[string][]repo.RoleInfo),
	}
}

func (m *stubGuildRepo) newID(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

func (m *stubGuildRepo) Guilds(ctx context.Context) ([]repo.GuildInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.guilds, nil
}

func (m *stubGuildRepo) ListChannels(ctx context.Context, guildID string) ([]repo.ChannelInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]repo.ChannelInfo, len(m.channels[guildID]))
	copy(out, m.channels[guildID])
	return out, nil
}

func (m *stubGuildRepo) ListRoles(ctx context.Context, guildID string) ([]repo.RoleInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roles[guildID], nil
}

func (m *stubGuildRepo) CreateCategory(ctx context.Context, guildID, name string, ow *repo.Overwrites) (repo.ChannelInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info := repo.ChannelInfo{ID: m.newID("cat"), Name: name, Category: true}
	m.channels[guildID] = append(m.channels[guildID], info)
	return info, nil
}

func (m *stubGuildRepo) CreateTextChannel(ctx context.Context, guildID, name, parentID string) (repo.ChannelInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info := repo.ChannelInfo{ID: m.newID("ch"), Name: name, ParentID: parentID}
	m.channels[guildID] = append(m.channels[guildID], info)
	m.createdChannels = append(m.createdChannels, name)
	return info, nil
}

func (m *stubGuildRepo) EditCategoryOverwrites(ctx context.Context, guildID, categoryID string, ow *repo.Overwrites) error {
	return nil
}
