package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"izakayabot/internal/biz/domain"
	"izakayabot/internal/biz/repo"
)

// Mock implementations

type sentRecord struct {
	ChannelID string
	Text      string
}

type reactionRecord struct {
	ChannelID string
	MsgID     string
	Emoji     string
}

type complexRecord struct {
	ChannelID string
	Text      string
	Embeds    []domain.Embed
	FileNames []string
}

type replyRecord struct {
	ChannelID string
	MsgID     string
	Text      string
}

type mockMessageRepo struct {
	mu        sync.Mutex
	sent      []sentRecord
	reactions []reactionRecord
	complex   []complexRecord
	replies   []replyRecord

	fetchable map[string]*domain.Message

	sendCalls  int
	failSendOn int // 1-based SendText call index to fail, 0 = never
	complexErr error
	replyErr   error

	nextID int
}

func newMockMessageRepo() *mockMessageRepo {
	return &mockMessageRepo{fetchable: make(map[string]*domain.Message)}
}

func (m *mockMessageRepo) newID() string {
	m.nextID++
	return fmt.Sprintf("sent-%d", m.nextID)
}

func (m *mockMessageRepo) SendText(ctx context.Context, channelID, text string) (repo.SentMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendCalls++
	if m.failSendOn != 0 && m.sendCalls == m.failSendOn {
		return repo.SentMessage{}, errors.New("send failed")
	}
	m.sent = append(m.sent, sentRecord{ChannelID: channelID, Text: text})
	return repo.SentMessage{ID: m.newID(), ChannelID: channelID}, nil
}

func (m *mockMessageRepo) SendComplex(ctx context.Context, channelID, text string, embeds []domain.Embed, files []repo.OutboundFile) (repo.SentMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.complexErr != nil {
		return repo.SentMessage{}, m.complexErr
	}
	rec := complexRecord{ChannelID: channelID, Text: text, Embeds: embeds}
	for _, f := range files {
		rec.FileNames = append(rec.FileNames, f.Name)
	}
	m.complex = append(m.complex, rec)
	return repo.SentMessage{ID: m.newID(), ChannelID: channelID}, nil
}

func (m *mockMessageRepo) Reply(ctx context.Context, channelID, messageID, text string) (repo.SentMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.replyErr != nil {
		return repo.SentMessage{}, m.replyErr
	}
	m.replies = append(m.replies, replyRecord{ChannelID: channelID, MsgID: messageID, Text: text})
	return repo.SentMessage{ID: m.newID(), ChannelID: channelID}, nil
}

func (m *mockMessageRepo) AddReaction(ctx context.Context, channelID, messageID, emoji string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reactions = append(m.reactions, reactionRecord{ChannelID: channelID, MsgID: messageID, Emoji: emoji})
	return nil
}

func (m *mockMessageRepo) FetchMessage(ctx context.Context, channelID, messageID string) (*domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg, ok := m.fetchable[messageID]; ok {
		return msg, nil
	}
	return nil, &domain.NotFoundError{Kind: "message", Ref: messageID, Err: errors.New("unknown message")}
}

func (m *mockMessageRepo) DownloadAttachment(ctx context.Context, url string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("file-bytes")), nil
}

func (m *mockMessageRepo) sentTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var texts []string
	for _, s := range m.sent {
		texts = append(texts, s.Text)
	}
	return texts
}

func (m *mockMessageRepo) reactionsFor(msgID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var emojis []string
	for _, r := range m.reactions {
		if r.MsgID == msgID {
			emojis = append(emojis, r.Emoji)
		}
	}
	return emojis
}

type mockGuildRepo struct {
	mu       sync.Mutex
	guilds   []repo.GuildInfo
	channels map[string][]repo.ChannelInfo
	roles    map[string][]repo.RoleInfo

	createdCategories []string
	createdChannels   []string
	editedCategories  []string
	lastCategoryOW    *repo.Overwrites
	lastEditOW        *repo.Overwrites

	createCategoryErr error
	createChannelErr  error
	listRolesErr      error

	nextID int
}

func newMockGuildRepo() *mockGuildRepo {
	return &mockGuildRepo{
		channels: make(map[string][]repo.ChannelInfo),
		roles:    make(map[string][]repo.RoleInfo),
	}
}

func (m *mockGuildRepo) newID(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

func (m *mockGuildRepo) Guilds(ctx context.Context) ([]repo.GuildInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.guilds, nil
}

func (m *mockGuildRepo) ListChannels(ctx context.Context, guildID string) ([]repo.ChannelInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]repo.ChannelInfo, len(m.channels[guildID]))
	copy(out, m.channels[guildID])
	return out, nil
}

func (m *mockGuildRepo) ListRoles(ctx context.Context, guildID string) ([]repo.RoleInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listRolesErr != nil {
		return nil, m.listRolesErr
	}
	return m.roles[guildID], nil
}

func (m *mockGuildRepo) CreateCategory(ctx context.Context, guildID, name string, ow *repo.Overwrites) (repo.ChannelInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createCategoryErr != nil {
		return repo.ChannelInfo{}, m.createCategoryErr
	}
	info := repo.ChannelInfo{ID: m.newID("cat"), Name: name, Category: true}
	m.channels[guildID] = append(m.channels[guildID], info)
	m.createdCategories = append(m.createdCategories, name)
	m.lastCategoryOW = ow
	return info, nil
}

func (m *mockGuildRepo) CreateTextChannel(ctx context.Context, guildID, name, parentID string) (repo.ChannelInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createChannelErr != nil {
		return repo.ChannelInfo{}, m.createChannelErr
	}
	info := repo.ChannelInfo{ID: m.newID("ch"), Name: name, ParentID: parentID}
	m.channels[guildID] = append(m.channels[guildID], info)
	m.createdChannels = append(m.createdChannels, name)
	return info, nil
}

func (m *mockGuildRepo) EditCategoryOverwrites(ctx context.Context, guildID, categoryID string, ow *repo.Overwrites) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.editedCategories = append(m.editedCategories, categoryID)
	m.lastEditOW = ow
	return nil
}
