package bot

import (
	"github.com/bwmarrin/discordgo"
)

// Discord is the part of *discordgo.Session the cogs use
type Discord interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditEmbed(channelID string, messageID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID string, messageID string, options ...discordgo.RequestOption) error
	ChannelMessages(channelID string, limit int, beforeID string, afterID string, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	GuildRoleCreate(guildID string, data *discordgo.RoleParams, options ...discordgo.RequestOption) (*discordgo.Role, error)
	GuildMemberRoleAdd(guildID string, userID string, roleID string, options ...discordgo.RequestOption) error
	MessageReactionAdd(channelID string, messageID string, emojiID string, options ...discordgo.RequestOption) error
	MessageReactionRemove(channelID string, messageID string, emojiID string, userID string, options ...discordgo.RequestOption) error
	MessageReactionsRemoveAll(channelID string, messageID string, options ...discordgo.RequestOption) error
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	UserChannelPermissions(userID string, channelID string, fetchOptions ...discordgo.RequestOption) (int64, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

var _ Discord = (*discordgo.Session)(nil)

// Find the name of a channel of the guild given its id
func GetChannelName(discord Discord, guildid string, channelid string) (string, error) {

	channels, err := discord.GuildChannels(guildid)
	if err != nil {
		return "", err
	}
	for _, ch := range channels {
		if ch.ID == channelid {
			return ch.Name, nil
		}
	}
	return "", ErrChannelNotFound
}

// Find the id of a channel of the guild given its name
func GetChannelId(discord Discord, guildid string, channelName string) (string, error) {

	channels, err := discord.GuildChannels(guildid)
	if err != nil {
		return "", err
	}
	for _, ch := range channels {
		if ch.Name == channelName {
			return ch.ID, nil
		}
	}
	return "", ErrChannelNotFound
}

// Send a direct message to the user
func SendDirect(discord Discord, userID string, embed *discordgo.MessageEmbed) error {
	channel, err := discord.UserChannelCreate(userID)
	if err != nil {
		return err
	}
	_, err = discord.ChannelMessageSendEmbed(channel.ID, embed)
	return err
}

// Link pointing at a specific message
func JumpURL(guildID string, channelID string, messageID string) string {
	if guildID == "" {
		guildID = "@me"
	}
	return "https://discord.com/channels/" + guildID + "/" + channelID + "/" + messageID
}

// Compare two snowflakes numerically without parsing them
func SnowflakeLess(a string, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
