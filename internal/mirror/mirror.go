// Package mirror copies the messages of source channels, possibly in other
// servers, into target channels of the guild as embeds.
package mirror

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	rcron "github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"cogbot/internal/bot"
	"cogbot/internal/common"
	"cogbot/internal/store"
)

const (
	pairsKey    = "mirror_pairs"
	mirroredKey = "mirrored_messages"
	lastKey     = "last_mirrored_id"

	// Messages fetched per source channel and poll
	fetchLimit = 100
	// Entries kept in the dedup log of a guild, the oldest are dropped first
	mirroredLogLimit = 5000
)

// Pairs maps a target channel to its sources: source channel id -> source guild id
type Pairs map[string]map[string]string

type Cog struct {
	store    *store.Store
	interval time.Duration
	limiter  *rate.Limiter

	mu   sync.Mutex
	cron *rcron.Cron
}

func New(st *store.Store, interval time.Duration, restriction common.Restriction) *Cog {
	return &Cog{store: st, interval: interval, limiter: restriction.Limiter()}
}

func (cog *Cog) Name() string {
	return "ChannelMirror"
}

func (cog *Cog) Commands() []bot.Command {
	return []bot.Command{
		{Name: "channelmirror", Usage: "channelmirror <add|remove|list|status|help>", Description: "Manage channel mirroring", Permission: discordgo.PermissionManageServer},
		{Name: "channelmirrorhelp", Usage: "channelmirrorhelp", Description: "Explain how channel mirroring works"},
	}
}

func (cog *Cog) Handle(ctx context.Context, discord bot.Discord, request bot.Request) []bot.Response {

	if request.Command == "channelmirrorhelp" {
		return cog.help()
	}
	if len(request.Arguments) == 0 {
		return cog.help()
	}
	args := request.Arguments[1:]
	switch strings.ToLower(request.Arguments[0]) {
	case "add":
		if len(args) < 2 {
			return []bot.Response{bot.Text("Usage: `channelmirror add <source_channel_id> <#target_channel>`")}
		}
		return cog.add(ctx, discord, request.GuildID, args[0], channelID(args[1]))
	case "remove":
		if len(args) < 2 {
			return []bot.Response{bot.Text("Usage: `channelmirror remove <#target_channel> <source_channel_id>`")}
		}
		return cog.remove(ctx, request.GuildID, channelID(args[0]), args[1])
	case "list":
		return cog.list(ctx, discord, request.GuildID)
	case "status":
		return cog.status(ctx, request.GuildID)
	case "help":
		return cog.help()
	}
	return bot.InputNotValid(fmt.Sprintf("Unknown subcommand `%s`", request.Arguments[0]))
}

// Start polling the sources at the configured interval
func (cog *Cog) Start(ctx context.Context, discord bot.Discord) error {

	cog.mu.Lock()
	defer cog.mu.Unlock()
	cog.cron = common.NewCron()
	if _, err := cog.cron.AddFunc(common.Every(cog.interval), func() { cog.Poll(ctx, discord) }); err != nil {
		return fmt.Errorf("scheduling mirror poll: %w", err)
	}
	cog.cron.Start()
	log.Info().Msg(fmt.Sprintf("Mirroring channels every %s", cog.interval))
	return nil
}

func (cog *Cog) Stop() {
	cog.mu.Lock()
	c := cog.cron
	cog.cron = nil
	cog.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

// Accept both a channel mention and a bare id
func channelID(value string) string {
	return strings.TrimSuffix(strings.TrimPrefix(value, "<#"), ">")
}

func (cog *Cog) add(ctx context.Context, discord bot.Discord, guildID string, sourceID string, targetID string) []bot.Response {

	target, err := discord.Channel(targetID)
	if err != nil || target.GuildID != guildID {
		return []bot.Response{bot.ErrorEmbed("The target channel must be in this server.")}
	}
	source, err := discord.Channel(sourceID)
	if err != nil {
		log.Debug().Err(err).Str("channel", sourceID).Msg("Source channel not reachable")
		return []bot.Response{bot.ErrorEmbed(fmt.Sprintf("Unable to find a channel with ID %s. Make sure the bot is in the server containing this channel.", sourceID))}
	}

	duplicate := false
	err = store.Update(ctx, cog.store, store.Guild(guildID), pairsKey, func(pairs *Pairs) error {
		if *pairs == nil {
			*pairs = Pairs{}
		}
		if (*pairs)[targetID] == nil {
			(*pairs)[targetID] = map[string]string{}
		}
		if _, ok := (*pairs)[targetID][sourceID]; ok {
			duplicate = true
			return nil
		}
		(*pairs)[targetID][sourceID] = source.GuildID
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("Could not save mirror pair")
		return []bot.Response{bot.ErrorEmbed("Could not save the mirror pair.")}
	}
	if duplicate {
		return []bot.Response{bot.ErrorEmbed("This source channel is already being mirrored to this target channel.")}
	}

	// Only the latest message is mirrored right away
	latest, err := discord.ChannelMessages(sourceID, 1, "", "", "")
	if err != nil {
		log.Warn().Err(err).Str("channel", sourceID).Msg("Could not read source history")
	}
	if len(latest) > 0 {
		guildName := cog.guildName(discord, source.GuildID)
		if err := cog.mirror(ctx, discord, guildID, targetID, latest[0], source.GuildID, guildName); err != nil {
			log.Error().Err(err).Str("channel", targetID).Msg("Could not mirror latest message")
		}
		cog.saveLast(ctx, guildID, map[string]string{sourceID: latest[0].ID})
	}
	log.Info().Str("guild", guildID).Str("source", sourceID).Str("target", targetID).Msg("Mirror pair added")

	return []bot.Response{bot.Embed(&discordgo.MessageEmbed{
		Title: "Mirror Added",
		Color: bot.ColorGreen,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Source Channel", Value: fmt.Sprintf("%s (ID: %s, Server: %s)", source.Name, sourceID, cog.guildName(discord, source.GuildID))},
			{Name: "Target Channel", Value: fmt.Sprintf("<#%s>", targetID)},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Messages will now be mirrored from the source to the target channel."},
	})}
}

func (cog *Cog) remove(ctx context.Context, guildID string, targetID string, sourceID string) []bot.Response {

	var problem, sourceGuildID string
	var stillMirrored bool
	err := store.Update(ctx, cog.store, store.Guild(guildID), pairsKey, func(pairs *Pairs) error {
		sources, ok := (*pairs)[targetID]
		if !ok {
			problem = "This target channel is not set up for mirroring."
			return nil
		}
		if sourceGuildID, ok = sources[sourceID]; !ok {
			problem = "This source channel is not being mirrored to this target channel."
			return nil
		}
		delete(sources, sourceID)
		if len(sources) == 0 {
			delete(*pairs, targetID)
		}
		for _, other := range *pairs {
			if _, ok := other[sourceID]; ok {
				stillMirrored = true
				break
			}
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("Could not remove mirror pair")
		return []bot.Response{bot.ErrorEmbed("Could not remove the mirror pair.")}
	}
	if problem != "" {
		return []bot.Response{bot.ErrorEmbed(problem)}
	}

	// The cursor belongs to the source and is shared by all its targets
	if !stillMirrored {
		err = store.Update(ctx, cog.store, store.Guild(guildID), lastKey, func(last *map[string]string) error {
			delete(*last, sourceID)
			return nil
		})
		if err != nil {
			log.Error().Err(err).Msg("Could not clear last mirrored message")
		}
	}

	return []bot.Response{bot.Embed(&discordgo.MessageEmbed{
		Title: "Mirror Removed",
		Color: bot.ColorRed,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Source Channel", Value: fmt.Sprintf("Channel ID: %s (Server ID: %s)", sourceID, sourceGuildID)},
			{Name: "Target Channel", Value: fmt.Sprintf("<#%s>", targetID)},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Messages will no longer be mirrored from this source to the target channel."},
	})}
}

func (cog *Cog) list(ctx context.Context, discord bot.Discord, guildID string) []bot.Response {

	pairs, err := store.Load[Pairs](ctx, cog.store, store.Guild(guildID), pairsKey)
	if err != nil {
		log.Error().Err(err).Msg("Could not load mirror pairs")
		return []bot.Response{bot.ErrorEmbed("Could not load the mirror pairs.")}
	}
	if len(pairs) == 0 {
		return []bot.Response{bot.Text("No channel mirrors set up.")}
	}

	responses := []bot.Response{}
	for _, targetID := range sortedKeys(pairs) {
		target, err := discord.Channel(targetID)
		if err != nil {
			continue
		}
		embed := &discordgo.MessageEmbed{Title: fmt.Sprintf("Mirror Target: #%s", target.Name), Color: bot.ColorBlue}
		for _, sourceID := range sortedKeys(pairs[targetID]) {
			sourceGuildID := pairs[targetID][sourceID]
			source, err := discord.Channel(sourceID)
			if err != nil {
				embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
					Name:  fmt.Sprintf("Source: Guild ID %s", sourceGuildID),
					Value: fmt.Sprintf("Channel ID: %s (Not Found)", sourceID),
				})
				continue
			}
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:  fmt.Sprintf("Source: %s", cog.guildName(discord, sourceGuildID)),
				Value: fmt.Sprintf("#%s (ID: %s)", source.Name, sourceID),
			})
		}
		responses = append(responses, bot.Embed(embed))
	}
	if len(responses) == 0 {
		return []bot.Response{bot.Text("No valid mirror pairs found.")}
	}
	return responses
}

func (cog *Cog) status(ctx context.Context, guildID string) []bot.Response {

	pairs, err := store.Load[Pairs](ctx, cog.store, store.Guild(guildID), pairsKey)
	if err != nil {
		return []bot.Response{bot.ErrorEmbed("Could not load the mirror pairs.")}
	}
	mirrored, err := store.Load[map[string]string](ctx, cog.store, store.Guild(guildID), mirroredKey)
	if err != nil {
		return []bot.Response{bot.ErrorEmbed("Could not load the mirrored messages.")}
	}
	sources := 0
	for _, s := range pairs {
		sources += len(s)
	}

	return []bot.Response{bot.Embed(&discordgo.MessageEmbed{
		Title: "Channel Mirror Status",
		Color: bot.ColorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Target Channels", Value: fmt.Sprint(len(pairs)), Inline: true},
			{Name: "Total Source Channels", Value: fmt.Sprint(sources), Inline: true},
			{Name: "Total Mirrored Messages", Value: fmt.Sprint(len(mirrored))},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Use 'channelmirror list' to see all mirror pairs."},
	})}
}

func (cog *Cog) help() []bot.Response {
	description := strings.Join([]string{
		"🔄 **Channel Mirror Help** 🔄",
		"",
		"Mirror messages from channels in other servers to channels in this server.",
		"",
		"**Commands:**",
		"• `channelmirror add <source_channel_id> <#target_channel>`: Add a new mirror pair",
		"• `channelmirror remove <#target_channel> <source_channel_id>`: Remove a mirror pair",
		"• `channelmirror list`: List all mirror pairs",
		"• `channelmirror status`: Show mirror system status",
		"",
		"**Examples:**",
		bot.Box("channelmirror add 1234567890 #mirror-channel\nchannelmirror remove #mirror-channel 1234567890\nchannelmirror list\nchannelmirror status", ""),
		"The source channel can be in any server the bot is in, but the target must be in this server.",
	}, "\n")
	return []bot.Response{bot.Embed(&discordgo.MessageEmbed{Title: "Channel Mirror Help", Description: description, Color: bot.ColorBlue})}
}

func (cog *Cog) guildName(discord bot.Discord, guildID string) string {
	guild, err := discord.Guild(guildID)
	if err != nil {
		return "Unknown Server"
	}
	return guild.Name
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return bot.SnowflakeLess(keys[i], keys[j]) })
	return keys
}

// Build the embed copying a source message
func Build(message *discordgo.Message, guildName string) *discordgo.MessageEmbed {

	embed := &discordgo.MessageEmbed{
		Description: message.Content,
		Timestamp:   message.Timestamp.Format(time.RFC3339),
		Color:       rand.IntN(0xffffff + 1),
	}
	if message.Author != nil {
		embed.Author = &discordgo.MessageEmbedAuthor{
			Name:    fmt.Sprintf("%s (Server: %s)", message.Author.Username, guildName),
			IconURL: message.Author.AvatarURL(""),
		}
	}
	if len(message.Attachments) > 0 {
		embed.Image = &discordgo.MessageEmbedImage{URL: message.Attachments[0].URL}
	}
	if len(message.Attachments) > 1 {
		links := []string{}
		for _, attachment := range message.Attachments[1:] {
			links = append(links, fmt.Sprintf("[%s](%s)", attachment.Filename, attachment.URL))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Additional Attachments",
			Value: bot.Truncate(strings.Join(links, "\n"), bot.FieldValueLimit),
		})
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "Original Message",
		Value: fmt.Sprintf("[Jump to message](%s)", bot.JumpURL(message.GuildID, message.ChannelID, message.ID)),
	})
	return embed
}
