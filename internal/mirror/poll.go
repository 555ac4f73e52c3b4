package mirror

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"cogbot/internal/bot"
	"cogbot/internal/store"
)

// Poll mirrors the new messages of every pair of every guild.
// A failing guild is logged and skipped
func (cog *Cog) Poll(ctx context.Context, discord bot.Discord) {

	scopes, err := cog.store.Scopes(ctx, store.Guild(""), pairsKey)
	if err != nil {
		log.Error().Err(err).Msg("Could not list mirror pairs")
		return
	}
	for _, scope := range scopes {
		guildID := strings.TrimPrefix(scope, store.Guild(""))
		if err := cog.pollGuild(ctx, discord, guildID); err != nil {
			log.Error().Err(err).Str("guild", guildID).Msg("Mirror poll failed")
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (cog *Cog) pollGuild(ctx context.Context, discord bot.Discord, guildID string) error {

	pairs, err := store.Load[Pairs](ctx, cog.store, store.Guild(guildID), pairsKey)
	if err != nil {
		return err
	}
	last, err := store.Load[map[string]string](ctx, cog.store, store.Guild(guildID), lastKey)
	if err != nil {
		return err
	}
	mirrored, err := store.Load[map[string]string](ctx, cog.store, store.Guild(guildID), mirroredKey)
	if err != nil {
		return err
	}

	// A source feeding several targets is read once
	targets := map[string][]string{}
	sourceGuilds := map[string]string{}
	for _, targetID := range sortedKeys(pairs) {
		if _, err := discord.Channel(targetID); err != nil {
			log.Debug().Str("channel", targetID).Msg("Skipping missing mirror target")
			continue
		}
		for sourceID, sourceGuildID := range pairs[targetID] {
			targets[sourceID] = append(targets[sourceID], targetID)
			sourceGuilds[sourceID] = sourceGuildID
		}
	}

	updated := map[string]string{}
	for _, sourceID := range sortedKeys(targets) {
		after := last[sourceID]
		if after == "" {
			// oldest messages first
			after = "0"
		}
		messages, err := discord.ChannelMessages(sourceID, fetchLimit, "", after, "")
		if err != nil {
			log.Debug().Err(err).Str("channel", sourceID).Msg("Skipping unreadable mirror source")
			continue
		}
		sort.Slice(messages, func(i, j int) bool { return bot.SnowflakeLess(messages[i].ID, messages[j].ID) })
		guildName := cog.guildName(discord, sourceGuilds[sourceID])

	messages:
		for _, message := range messages {
			if _, done := mirrored[message.ID]; !done {
				for _, targetID := range targets[sourceID] {
					if err := cog.mirror(ctx, discord, guildID, targetID, message, sourceGuilds[sourceID], guildName); err != nil {
						log.Error().Err(err).Str("source", sourceID).Str("target", targetID).Msg("Could not mirror message")
						break messages
					}
					mirrored[message.ID] = targetID
				}
			}
			updated[sourceID] = message.ID
		}
	}

	cog.saveLast(ctx, guildID, updated)
	return nil
}

// Post the copy of a message in the target channel and record it in the dedup log
func (cog *Cog) mirror(ctx context.Context, discord bot.Discord, guildID string, targetID string, message *discordgo.Message, sourceGuildID string, guildName string) error {

	if err := cog.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	if message.GuildID == "" {
		withGuild := *message
		withGuild.GuildID = sourceGuildID
		message = &withGuild
	}
	sent, err := discord.ChannelMessageSendEmbed(targetID, Build(message, guildName))
	if err != nil {
		return err
	}
	return store.Update(ctx, cog.store, store.Guild(guildID), mirroredKey, func(mirrored *map[string]string) error {
		if *mirrored == nil {
			*mirrored = map[string]string{}
		}
		(*mirrored)[message.ID] = sent.ID
		if len(*mirrored) > mirroredLogLimit {
			ids := sortedKeys(*mirrored)
			for _, id := range ids[:len(ids)-mirroredLogLimit] {
				delete(*mirrored, id)
			}
		}
		return nil
	})
}

func (cog *Cog) saveLast(ctx context.Context, guildID string, updated map[string]string) {
	if len(updated) == 0 {
		return
	}
	err := store.Update(ctx, cog.store, store.Guild(guildID), lastKey, func(last *map[string]string) error {
		if *last == nil {
			*last = map[string]string{}
		}
		for sourceID, messageID := range updated {
			(*last)[sourceID] = messageID
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("guild", guildID).Msg("Could not save last mirrored messages")
	}
}
