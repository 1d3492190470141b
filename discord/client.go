package discord

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Client wraps the Discord gateway session: lifecycle, intents, and the
// callback surface the server registers against. REST access goes
// through Session().
type Client struct {
	session   *discordgo.Session
	onMessage func(*discordgo.MessageCreate)
	onReady   func(*discordgo.Ready)

	done     chan struct{}
	stopOnce sync.Once
}

// NewClient creates a client for the given bot token. The session is
// usable for REST calls immediately; the gateway connects in Start.
func NewClient(token string) (*Client, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentMessageContent

	return &Client{
		session: session,
		done:    make(chan struct{}),
	}, nil
}

// OnMessage sets the message-creation handler
func (c *Client) OnMessage(handler func(*discordgo.MessageCreate)) {
	c.onMessage = handler
}

// OnReady sets the ready handler, called on every (re)connect
func (c *Client) OnReady(handler func(*discordgo.Ready)) {
	c.onReady = handler
}

// Session exposes the underlying session for the data layer
func (c *Client) Session() *discordgo.Session {
	return c.session
}

// Me resolves the bot's own user over REST
func (c *Client) Me(ctx context.Context) (*discordgo.User, error) {
	user, err := c.session.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch bot user: %w", err)
	}
	return user, nil
}

// Start opens the gateway connection and blocks until Stop is called
// or the context is cancelled.
func (c *Client) Start(ctx context.Context) error {
	c.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		if c.onReady != nil {
			c.onReady(r)
		}
	})
	c.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		if c.onMessage != nil {
			c.onMessage(m)
		}
	})

	if err := c.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	defer c.session.Close()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return nil
	}
}

// Stop unblocks Start and closes the gateway connection
func (c *Client) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
	})
}
