package domain

import (
	"fmt"
	"time"
)

// Author represents the sender of an inbound message
type Author struct {
	ID   string
	Name string
	Bot  bool
}

// Attachment represents a file attached to a message, fetchable by URL
type Attachment struct {
	Filename string
	URL      string
}

// EmbedField is a single name/value pair inside a rich embed
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Embed represents a rich-embed object attached to a message
type Embed struct {
	Title       string
	Description string
	URL         string
	Color       int
	ImageURL    string
	Fields      []EmbedField
}

// CommandMeta is the application-command metadata attached to a message
// that was produced as the visible response to a slash command.
type CommandMeta struct {
	Name     string
	UserID   string
	UserName string
	UserBot  bool
}

// Reference points at another message this one replies to
type Reference struct {
	MessageID string
	ChannelID string
}

// Message is the inbound message event model. Optional metadata is
// expressed as nil-able pointers rather than runtime probing.
type Message struct {
	ID          string
	GuildID     string
	ChannelID   string
	ChannelName string
	Author      Author
	MemberRoles []string // role IDs held by the authoring guild member
	Content     string
	Embeds      []Embed
	Attachments []Attachment
	Timestamp   time.Time
	Interaction *CommandMeta
	Reference   *Reference
}

// Permalink returns the stable URL resolving to this message
func (m *Message) Permalink() string {
	return MessagePermalink(m.GuildID, m.ChannelID, m.ID)
}

// MessagePermalink builds the stable URL for a message in a guild channel
func MessagePermalink(guildID, channelID, messageID string) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, channelID, messageID)
}
