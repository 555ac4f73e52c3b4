// Package bottest provides an in-memory Discord for cog tests.
package bottest

import (
	"fmt"
	"sort"
	"sync"

	"github.com/bwmarrin/discordgo"

	"cogbot/internal/bot"
)

type Reaction struct {
	ChannelID string
	MessageID string
	Emoji     string
	UserID    string
}

type RoleAdd struct {
	GuildID string
	UserID  string
	RoleID  string
}

type Interaction struct {
	Interaction *discordgo.Interaction
	Response    *discordgo.InteractionResponse
}

// Discord records every call and serves channels and history from memory
type Discord struct {
	mu sync.Mutex

	nextID      int
	Channels    map[string]*discordgo.Channel
	Guilds      map[string]*discordgo.Guild
	History     map[string][]*discordgo.Message
	Sent        []*discordgo.Message
	Edits       []*discordgo.Message
	Deleted     []string
	Reactions   []Reaction
	Removed     []Reaction
	Cleared     []string
	Roles       []*discordgo.Role
	RoleAdds    []RoleAdd
	Responses   []Interaction
	Followups   []*discordgo.WebhookParams
	Permissions map[string]int64
	// When set, every send fails with this error
	SendErr error
}

var _ bot.Discord = (*Discord)(nil)

func New() *Discord {
	return &Discord{
		nextID:      1000,
		Channels:    map[string]*discordgo.Channel{},
		Guilds:      map[string]*discordgo.Guild{},
		History:     map[string][]*discordgo.Message{},
		Permissions: map[string]int64{},
	}
}

func (d *Discord) id() string {
	d.nextID++
	return fmt.Sprintf("%d", d.nextID)
}

func (d *Discord) AddGuild(id string, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Guilds[id] = &discordgo.Guild{ID: id, Name: name}
}

func (d *Discord) AddChannel(guildID string, id string, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Channels[id] = &discordgo.Channel{ID: id, GuildID: guildID, Name: name, Type: discordgo.ChannelTypeGuildText}
}

// Post a message in a channel history, as if a user wrote it
func (d *Discord) Post(message *discordgo.Message) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.History[message.ChannelID] = append(d.History[message.ChannelID], message)
}

func (d *Discord) SentTo(channelID string) []*discordgo.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	messages := []*discordgo.Message{}
	for _, m := range d.Sent {
		if m.ChannelID == channelID {
			messages = append(messages, m)
		}
	}
	return messages
}

func (d *Discord) SentCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Sent)
}

func (d *Discord) LastSent() *discordgo.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.Sent) == 0 {
		return nil
	}
	return d.Sent[len(d.Sent)-1]
}

func (d *Discord) send(channelID string, content string, embeds []*discordgo.MessageEmbed, components []discordgo.MessageComponent) (*discordgo.Message, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.SendErr != nil {
		return nil, d.SendErr
	}
	message := &discordgo.Message{
		ID:         d.id(),
		ChannelID:  channelID,
		Content:    content,
		Embeds:     embeds,
		Components: components,
	}
	if channel, ok := d.Channels[channelID]; ok {
		message.GuildID = channel.GuildID
	}
	d.Sent = append(d.Sent, message)
	return message, nil
}

func (d *Discord) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	return d.send(channelID, content, nil, nil)
}

func (d *Discord) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	return d.send(channelID, "", []*discordgo.MessageEmbed{embed}, nil)
}

func (d *Discord) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	return d.send(channelID, data.Content, data.Embeds, data.Components)
}

func (d *Discord) ChannelMessageEditEmbed(channelID string, messageID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	message := &discordgo.Message{ID: messageID, ChannelID: channelID, Embeds: []*discordgo.MessageEmbed{embed}}
	d.Edits = append(d.Edits, message)
	return message, nil
}

func (d *Discord) ChannelMessageDelete(channelID string, messageID string, options ...discordgo.RequestOption) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Deleted = append(d.Deleted, messageID)
	return nil
}

// Serves the history sorted from newest to oldest, as Discord does
func (d *Discord) ChannelMessages(channelID string, limit int, beforeID string, afterID string, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.Channels[channelID]; !ok {
		return nil, fmt.Errorf("unknown channel %s", channelID)
	}
	history := append([]*discordgo.Message{}, d.History[channelID]...)
	sort.Slice(history, func(i, j int) bool { return bot.SnowflakeLess(history[j].ID, history[i].ID) })

	result := []*discordgo.Message{}
	for _, m := range history {
		if afterID != "" && !bot.SnowflakeLess(afterID, m.ID) {
			continue
		}
		if beforeID != "" && !bot.SnowflakeLess(m.ID, beforeID) {
			continue
		}
		result = append(result, m)
	}
	if limit > 0 && len(result) > limit {
		if afterID != "" {
			// the oldest ones right after the anchor
			result = result[len(result)-limit:]
		} else {
			result = result[:limit]
		}
	}
	return result, nil
}

func (d *Discord) Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	channel, ok := d.Channels[channelID]
	if !ok {
		return nil, fmt.Errorf("unknown channel %s", channelID)
	}
	return channel, nil
}

func (d *Discord) Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	guild, ok := d.Guilds[guildID]
	if !ok {
		return nil, fmt.Errorf("unknown guild %s", guildID)
	}
	return guild, nil
}

func (d *Discord) GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	channels := []*discordgo.Channel{}
	for _, channel := range d.Channels {
		if channel.GuildID == guildID {
			channels = append(channels, channel)
		}
	}
	sort.Slice(channels, func(i, j int) bool { return channels[i].ID < channels[j].ID })
	return channels, nil
}

func (d *Discord) GuildRoleCreate(guildID string, data *discordgo.RoleParams, options ...discordgo.RequestOption) (*discordgo.Role, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	role := &discordgo.Role{ID: d.id(), Name: data.Name}
	d.Roles = append(d.Roles, role)
	return role, nil
}

func (d *Discord) GuildMemberRoleAdd(guildID string, userID string, roleID string, options ...discordgo.RequestOption) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.RoleAdds = append(d.RoleAdds, RoleAdd{GuildID: guildID, UserID: userID, RoleID: roleID})
	return nil
}

func (d *Discord) MessageReactionAdd(channelID string, messageID string, emojiID string, options ...discordgo.RequestOption) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Reactions = append(d.Reactions, Reaction{ChannelID: channelID, MessageID: messageID, Emoji: emojiID})
	return nil
}

func (d *Discord) MessageReactionRemove(channelID string, messageID string, emojiID string, userID string, options ...discordgo.RequestOption) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Removed = append(d.Removed, Reaction{ChannelID: channelID, MessageID: messageID, Emoji: emojiID, UserID: userID})
	return nil
}

func (d *Discord) MessageReactionsRemoveAll(channelID string, messageID string, options ...discordgo.RequestOption) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Cleared = append(d.Cleared, messageID)
	return nil
}

// Direct message channels get the id "dm-<user>"
func (d *Discord) UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	return &discordgo.Channel{ID: "dm-" + recipientID, Type: discordgo.ChannelTypeDM}, nil
}

func (d *Discord) UserChannelPermissions(userID string, channelID string, fetchOptions ...discordgo.RequestOption) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Permissions[userID], nil
}

func (d *Discord) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Responses = append(d.Responses, Interaction{Interaction: interaction, Response: resp})
	return nil
}

func (d *Discord) FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Followups = append(d.Followups, data)
	return &discordgo.Message{ID: d.id(), ChannelID: interaction.ChannelID, Content: data.Content, Embeds: data.Embeds}, nil
}
