package repo

import (
	"context"
	"io"

	"izakayabot/internal/biz/domain"
)

// SentMessage identifies a message the bot just sent
type SentMessage struct {
	ID        string
	ChannelID string
}

// OutboundFile is a file attachment to upload with a message
type OutboundFile struct {
	Name   string
	Reader io.Reader
}

// MessageRepo is the messaging collaborator interface.
// Implemented over the Discord API; every call is a suspension point.
type MessageRepo interface {
	// SendText sends a plain text message to a channel
	SendText(ctx context.Context, channelID, text string) (SentMessage, error)

	// SendComplex sends text plus rich embeds and file attachments
	SendComplex(ctx context.Context, channelID, text string, embeds []domain.Embed, files []OutboundFile) (SentMessage, error)

	// Reply sends a text message as an in-place reply to another message
	Reply(ctx context.Context, channelID, messageID, text string) (SentMessage, error)

	// AddReaction adds an emoji reaction to a message
	AddReaction(ctx context.Context, channelID, messageID, emoji string) error

	// FetchMessage re-fetches a message by identifier to obtain a
	// complete copy (event-delivered payloads may be partial)
	FetchMessage(ctx context.Context, channelID, messageID string) (*domain.Message, error)

	// DownloadAttachment fetches an attachment's raw bytes
	DownloadAttachment(ctx context.Context, url string) (io.ReadCloser, error)
}
