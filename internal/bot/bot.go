package bot

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

type Bot struct {
	token    string
	prefix   string
	cogs     []Cog
	commands map[string]Cog
	ctx      context.Context
	selfID   string
}

func NewBot(token string, prefix string, cogs ...Cog) (*Bot, error) {

	bot := Bot{token: token, prefix: prefix, cogs: cogs, commands: map[string]Cog{}, ctx: context.Background()}
	for _, cog := range cogs {
		for _, command := range cog.Commands() {
			if _, ok := bot.commands[command.Name]; ok || command.Name == "help" {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateCommand, command.Name)
			}
			bot.commands[command.Name] = cog
		}
	}
	return &bot, nil
}

// Run the bot until the context is cancelled
func (bot *Bot) Run(ctx context.Context) error {

	// Create session
	discord, err := discordgo.New("Bot " + bot.token)
	if err != nil {
		return fmt.Errorf("could not create discord session: %w", err)
	}
	discord.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	// Handlers may fire as soon as the session opens
	me, err := discord.User("@me")
	if err != nil {
		return fmt.Errorf("could not fetch bot user: %w", err)
	}
	bot.Attach(ctx, me.ID)

	// Event handlers
	discord.AddHandler(bot.Receive)
	discord.AddHandler(bot.ReceiveReaction)
	discord.AddHandler(bot.ReceiveInteraction)
	discord.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Info().Int("guilds", len(r.Guilds)).Msg("Bot is ready")
	})

	// Open session
	if err := discord.Open(); err != nil {
		return fmt.Errorf("could not open discord session: %w", err)
	}
	defer discord.Close()
	log.Info().Str("user", me.Username).Msg("Connected to Discord")

	// Slash commands are registered globally
	for _, cog := range bot.cogs {
		provider, ok := cog.(SlashProvider)
		if !ok {
			continue
		}
		for _, command := range provider.SlashCommands() {
			if _, err := discord.ApplicationCommandCreate(me.ID, "", command); err != nil {
				return fmt.Errorf("could not register slash command %s: %w", command.Name, err)
			}
			log.Debug().Msg(fmt.Sprintf("Registered slash command %s", command.Name))
		}
	}

	if err := bot.Start(ctx, discord); err != nil {
		return err
	}
	defer bot.Stop()

	log.Info().Msg("Bot is running")
	<-ctx.Done()
	log.Info().Msg("Shutting down")
	return nil
}

// Attach sets the context handed to event handlers and the bot's own
// user id. It must be called before the session starts delivering events.
func (bot *Bot) Attach(ctx context.Context, selfID string) {
	bot.ctx = ctx
	bot.selfID = selfID
}

// Start the background work of every cog that has some
func (bot *Bot) Start(ctx context.Context, discord Discord) error {
	for _, cog := range bot.cogs {
		if starter, ok := cog.(Starter); ok {
			if err := starter.Start(ctx, discord); err != nil {
				return fmt.Errorf("could not start cog %s: %w", cog.Name(), err)
			}
			log.Info().Msg(fmt.Sprintf("Started cog %s", cog.Name()))
		}
	}
	return nil
}

func (bot *Bot) Stop() {
	for _, cog := range bot.cogs {
		if stopper, ok := cog.(Stopper); ok {
			stopper.Stop()
		}
	}
}

func (bot *Bot) Receive(discord *discordgo.Session, message *discordgo.MessageCreate) {
	bot.Dispatch(bot.ctx, discord, bot.selfID, message.Message)
}

func (bot *Bot) ReceiveReaction(discord *discordgo.Session, reaction *discordgo.MessageReactionAdd) {
	if reaction.UserID == bot.selfID {
		return
	}
	for _, cog := range bot.cogs {
		if listener, ok := cog.(ReactionListener); ok {
			bot.guard(discord, "", func() {
				listener.OnReactionAdd(bot.ctx, discord, reaction.MessageReaction)
			})
		}
	}
}

func (bot *Bot) ReceiveInteraction(discord *discordgo.Session, interaction *discordgo.InteractionCreate) {
	bot.DispatchInteraction(bot.ctx, discord, interaction.Interaction)
}

func (bot *Bot) DispatchInteraction(ctx context.Context, discord Discord, interaction *discordgo.Interaction) {
	for _, cog := range bot.cogs {
		listener, ok := cog.(InteractionListener)
		if !ok {
			continue
		}
		handled := false
		bot.guard(discord, "", func() {
			handled = listener.OnInteraction(ctx, discord, interaction)
		})
		if handled {
			return
		}
	}
	log.Warn().Msg("Interaction not handled by any cog")
}

// Dispatch a message: every message listener sees it,
// and commands are routed to the cog owning them
func (bot *Bot) Dispatch(ctx context.Context, discord Discord, selfID string, message *discordgo.Message) {

	// Reject my own messages
	if message.Author == nil || message.Author.ID == selfID {
		return
	}

	for _, cog := range bot.cogs {
		if listener, ok := cog.(MessageListener); ok {
			bot.guard(discord, "", func() {
				listener.OnMessage(ctx, discord, message)
			})
		}
	}

	// Bots do not get to run commands
	if message.Author.Bot {
		return
	}

	parseResult := Parse(bot.prefix, message.Content)
	switch parseResult.parseid {
	case PARSEID_NO_BOT_PREFIX:
		return
	case PARSEID_OK:
	default:
		log.Debug().Msg(fmt.Sprintf("Wrong input: '%s'. Reason: %s", message.Content, parseResult.errorMessage))
		SendResponses(discord, message.ChannelID, InputNotValid(parseResult.errorMessage))
		return
	}

	if parseResult.command == "help" {
		SendResponses(discord, message.ChannelID, HelpMessage(bot.prefix, bot.cogs))
		return
	}

	cog, ok := bot.commands[parseResult.command]
	if !ok {
		log.Debug().Msg(fmt.Sprintf("Command not recognised: %s", parseResult.command))
		SendResponses(discord, message.ChannelID, InputNotValid(fmt.Sprintf("Command `%s` not recognised", parseResult.command)))
		return
	}

	// Ignore messages from private channels
	if message.GuildID == "" {
		SendResponses(discord, message.ChannelID, GuildOnly())
		return
	}

	command := bot.command(cog, parseResult.command)
	if command.Permission != 0 && !bot.allowed(discord, message, command.Permission) {
		SendResponses(discord, message.ChannelID, MissingPermissions())
		return
	}

	log.Debug().Str("cog", cog.Name()).Str("command", parseResult.command).Str("guild", message.GuildID).Msg("Command understood")
	request := Request{
		GuildID:   message.GuildID,
		ChannelID: message.ChannelID,
		Author:    message.Author,
		Member:    message.Member,
		Message:   message,
		Command:   parseResult.command,
		Arguments: parseResult.arguments,
		Rest:      parseResult.rest,
	}
	bot.guard(discord, message.ChannelID, func() {
		SendResponses(discord, message.ChannelID, cog.Handle(ctx, discord, request))
	})
}

func (bot *Bot) command(cog Cog, name string) Command {
	for _, command := range cog.Commands() {
		if command.Name == name {
			return command
		}
	}
	return Command{}
}

func (bot *Bot) allowed(discord Discord, message *discordgo.Message, permission int64) bool {
	permissions, err := discord.UserChannelPermissions(message.Author.ID, message.ChannelID)
	if err != nil {
		log.Error().Err(err).Str("user", message.Author.ID).Msg("Could not fetch permissions")
		return false
	}
	return permissions&discordgo.PermissionAdministrator != 0 || permissions&permission == permission
}

// Run a handler, turning a panic into a log line and, when
// there is a channel to answer in, an error message
func (bot *Bot) guard(discord Discord, channelID string, handler func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("stack", string(debug.Stack())).Msg("Handler panicked")
			if channelID != "" {
				SendResponses(discord, channelID, []Response{ErrorEmbed("An unexpected error occurred.")})
			}
		}
	}()
	handler()
}
