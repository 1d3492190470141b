package repo

import "context"

// GuildInfo represents a guild the bot is present in
type GuildInfo struct {
	ID   string
	Name string
}

// ChannelInfo represents a channel or category within a guild
type ChannelInfo struct {
	ID       string
	Name     string
	ParentID string // owning category, empty for top-level channels
	Category bool
}

// Overwrites describes the permission overwrites applied to a new or
// existing category: hide from the default role, allow the given roles.
type Overwrites struct {
	DenyEveryoneView bool
	AllowViewRoleIDs []string
}

// GuildRepo is the guild-management collaborator interface
type GuildRepo interface {
	// Guilds lists the guilds the bot is present in
	Guilds(ctx context.Context) ([]GuildInfo, error)

	// ListChannels lists all channels and categories in a guild
	ListChannels(ctx context.Context, guildID string) ([]ChannelInfo, error)

	// ListRoles lists all roles in a guild
	ListRoles(ctx context.Context, guildID string) ([]RoleInfo, error)

	// CreateCategory creates a category, optionally with overwrites
	CreateCategory(ctx context.Context, guildID, name string, ow *Overwrites) (ChannelInfo, error)

	// CreateTextChannel creates a text channel under a category
	CreateTextChannel(ctx context.Context, guildID, name, parentID string) (ChannelInfo, error)

	// EditCategoryOverwrites re-applies overwrites on an existing category
	EditCategoryOverwrites(ctx context.Context, guildID, categoryID string, ow *Overwrites) error
}

// RoleInfo represents a guild role
type RoleInfo struct {
	ID   string
	Name string
}
