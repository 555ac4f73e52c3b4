package bot

import (
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

type ResponseString struct {
	Content string
}
type ResponseEmbed struct {
	discordgo.MessageEmbed
}
type ResponseComplex struct {
	discordgo.MessageSend
}

type Response interface {
	Send(discord Discord, channelid string) (*discordgo.Message, error)
}

func (response ResponseString) Send(discord Discord, channelid string) (*discordgo.Message, error) {
	return discord.ChannelMessageSend(channelid, response.Content)
}

func (response ResponseEmbed) Send(discord Discord, channelid string) (*discordgo.Message, error) {
	return discord.ChannelMessageSendEmbed(channelid, &response.MessageEmbed)
}

func (response ResponseComplex) Send(discord Discord, channelid string) (*discordgo.Message, error) {
	return discord.ChannelMessageSendComplex(channelid, &response.MessageSend)
}

func SendResponses(discord Discord, channelid string, responses []Response) {
	for _, response := range responses {
		if _, err := response.Send(discord, channelid); err != nil {
			log.Error().Err(err).Str("channel", channelid).Msg("Could not send response")
		}
	}
}
