package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

type Command struct {
	Name        string
	Usage       string
	Description string
	// Permission the author needs in the channel, zero for everyone
	Permission int64
}

// Request is a prefix command addressed to one of the cogs
type Request struct {
	GuildID   string
	ChannelID string
	Author    *discordgo.User
	Member    *discordgo.Member
	Message   *discordgo.Message
	Command   string
	Arguments []string
	// Everything after the command, untouched
	Rest string
}

// A cog is a self-contained plugin registered into the bot
type Cog interface {
	Name() string
	Commands() []Command
	// Handle a command and return what should be answered in the request channel
	Handle(ctx context.Context, discord Discord, request Request) []Response
}

// Cogs that run background work once the session is open
type Starter interface {
	Start(ctx context.Context, discord Discord) error
}

type Stopper interface {
	Stop()
}

// Cogs that want to see every message, not only commands
type MessageListener interface {
	OnMessage(ctx context.Context, discord Discord, message *discordgo.Message)
}

type ReactionListener interface {
	OnReactionAdd(ctx context.Context, discord Discord, reaction *discordgo.MessageReaction)
}

// Cogs receiving slash commands and component interactions.
// OnInteraction reports if the interaction was handled
type InteractionListener interface {
	OnInteraction(ctx context.Context, discord Discord, interaction *discordgo.Interaction) bool
}

type SlashProvider interface {
	SlashCommands() []*discordgo.ApplicationCommand
}
