package bot

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const (
	ColorGreen  int = 0x2ecc71
	ColorRed    int = 0xe74c3c
	ColorBlue   int = 0x3498db
	ColorOrange int = 0xe67e22
	// Use "teal" color for the help message
	ColorTeal int = 0x008080
)

// Discord refuses embed field values longer than this
const FieldValueLimit = 1024

func SuccessEmbed(message string) Response {
	return ResponseEmbed{discordgo.MessageEmbed{Description: message, Color: ColorGreen}}
}

func ErrorEmbed(message string) Response {
	return ResponseEmbed{discordgo.MessageEmbed{Description: message, Color: ColorRed}}
}

func Text(content string) Response {
	return ResponseString{content}
}

func Embed(embed *discordgo.MessageEmbed) Response {
	return ResponseEmbed{*embed}
}

func InputNotValid(errorMessage string) []Response {
	return []Response{Text(fmt.Sprintf("Input not valid: \n> %s", errorMessage))}
}

func MissingPermissions() []Response {
	return []Response{ErrorEmbed("You need the Manage Server permission to use this command.")}
}

func GuildOnly() []Response {
	return []Response{Text("For the time being, I am ignoring private messages")}
}

func HelpMessage(prefix string, cogs []Cog) []Response {

	embed := discordgo.MessageEmbed{Title: "Commands available", Color: ColorTeal}
	for _, cog := range cogs {
		for _, command := range cog.Commands() {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:   fmt.Sprintf("`%s%s`", prefix, command.Usage),
				Value:  command.Description,
				Inline: false,
			})
		}
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   fmt.Sprintf("`%shelp`", prefix),
		Value:  "Print the usage of the different commands",
		Inline: false,
	})
	return []Response{ResponseEmbed{embed}}
}

// Wrap text in a code block, optionally highlighted
func Box(text string, lang string) string {
	return fmt.Sprintf("```%s\n%s\n```", lang, text)
}

// Cut the text so it fits in limit runes, ending with an ellipsis when cut
func Truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// Render a ten step progress bar followed by the percentage
func ProgressBar(percent int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent / 10
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled) + fmt.Sprintf(" %d%%", percent)
}
