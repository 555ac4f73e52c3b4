package midjourney

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"cogbot/internal/bot"
	"cogbot/internal/store"
)

const settingsKey = "mj_settings"

type Settings struct {
	Channel        string   `json:"channel"`
	BotID          string   `json:"bot_id"`
	AllowedRoles   []string `json:"allowed_roles"`
	MaxJobsPerUser int      `json:"max_jobs_per_user"`
	DefaultModel   string   `json:"default_model"`
}

func (settings Settings) Configured() bool {
	return settings.Channel != "" && settings.BotID != ""
}

// Members can use the relay when no roles are configured or
// when they hold one of them
func (settings Settings) Allows(member *discordgo.Member) bool {
	if len(settings.AllowedRoles) == 0 {
		return true
	}
	if member == nil {
		return false
	}
	for _, role := range member.Roles {
		if slices.Contains(settings.AllowedRoles, role) {
			return true
		}
	}
	return false
}

func (settings Settings) maxJobs() int {
	if settings.MaxJobsPerUser <= 0 {
		return DefaultMaxJobs
	}
	return settings.MaxJobsPerUser
}

func (settings Settings) model() string {
	if settings.DefaultModel == "" {
		return DefaultModel
	}
	return settings.DefaultModel
}

func (cog *Cog) settings(ctx context.Context) (Settings, error) {
	return store.Load[Settings](ctx, cog.store, store.Global, settingsKey)
}

// Strip the mention syntax around an id
func mentionID(value string) string {
	value = strings.TrimSuffix(value, ">")
	for _, prefix := range []string{"<@&", "<@!", "<@", "<#"} {
		if strings.HasPrefix(value, prefix) {
			return strings.TrimPrefix(value, prefix)
		}
	}
	return value
}

func (cog *Cog) mjset(ctx context.Context, discord bot.Discord, args []string) []bot.Response {

	if len(args) == 0 {
		settings, err := cog.settings(ctx)
		if err != nil {
			return []bot.Response{bot.ErrorEmbed("Could not read the MidJourney settings.")}
		}
		return []bot.Response{bot.Embed(settingsEmbed(settings))}
	}
	if len(args) < 2 {
		return []bot.Response{bot.Text("Usage: `mjset <channel|bot|roles|model|maxjobs> <value>`")}
	}

	var reply string
	update := func(settings *Settings) error {
		switch strings.ToLower(args[0]) {
		case "channel":
			channelID := mentionID(args[1])
			if _, err := discord.Channel(channelID); err != nil {
				return fmt.Errorf("unable to find a channel with ID %s", channelID)
			}
			settings.Channel = channelID
			reply = fmt.Sprintf("MidJourney channel set to <#%s>.", channelID)
		case "bot":
			settings.BotID = mentionID(args[1])
			reply = fmt.Sprintf("MidJourney bot set to <@%s>.", settings.BotID)
		case "roles":
			if strings.EqualFold(args[1], "everyone") {
				settings.AllowedRoles = nil
				reply = "Everyone can use the MidJourney relay."
				return nil
			}
			roles := []string{}
			for _, arg := range args[1:] {
				roles = append(roles, mentionID(arg))
			}
			settings.AllowedRoles = roles
			reply = fmt.Sprintf("MidJourney relay restricted to %s.", roleMentions(roles))
		case "model":
			model := strings.ToLower(args[1])
			if !slices.Contains(ModelVersions, model) {
				return fmt.Errorf("invalid version. Available options: %s", strings.Join(ModelVersions, ", "))
			}
			settings.DefaultModel = model
			reply = fmt.Sprintf("Default model set to %s.", model)
		case "maxjobs":
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 || n > 10 {
				return fmt.Errorf("the maximum number of jobs must be between 1 and 10")
			}
			settings.MaxJobsPerUser = n
			reply = fmt.Sprintf("Users can now run %d jobs at a time.", n)
		default:
			return fmt.Errorf("unknown setting `%s`", args[0])
		}
		return nil
	}
	if err := store.Update(ctx, cog.store, store.Global, settingsKey, update); err != nil {
		return []bot.Response{bot.ErrorEmbed(capitalize(err.Error()) + ".")}
	}
	return []bot.Response{bot.SuccessEmbed(reply)}
}

func settingsEmbed(settings Settings) *discordgo.MessageEmbed {
	value := func(v string, format string) string {
		if v == "" {
			return "Not set"
		}
		return fmt.Sprintf(format, v)
	}
	roles := "Everyone"
	if len(settings.AllowedRoles) > 0 {
		roles = roleMentions(settings.AllowedRoles)
	}
	return &discordgo.MessageEmbed{
		Title: "MidJourney Settings",
		Color: colorBrand,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🔌 Relay Channel", Value: value(settings.Channel, "<#%s>"), Inline: true},
			{Name: "🤖 MidJourney Bot", Value: value(settings.BotID, "<@%s>"), Inline: true},
			{Name: "👥 Allowed Roles", Value: roles, Inline: false},
			{Name: "📦 Default Model", Value: settings.model(), Inline: true},
			{Name: "📋 Jobs Per User", Value: strconv.Itoa(settings.maxJobs()), Inline: true},
		},
	}
}

func roleMentions(roles []string) string {
	mentions := make([]string, len(roles))
	for i, role := range roles {
		mentions[i] = "<@&" + role + ">"
	}
	return strings.Join(mentions, ", ")
}

func capitalize(message string) string {
	if message == "" {
		return message
	}
	return strings.ToUpper(message[:1]) + message[1:]
}
