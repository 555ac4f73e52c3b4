// Package meme answers with random funny GIFs found on Tenor.
package meme

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"cogbot/internal/bot"
	"cogbot/internal/common"
)

const (
	minLimit = 5
	maxLimit = 20

	randomCategory = "Random"

	noResults = "Couldn't find any GIFs! Try a different category 😅"
	failure   = "Oops! Something went wrong while fetching the GIF! Try again later 😿"
)

type Category struct {
	Name  string
	Emoji string
	Terms []string
}

var Categories = []Category{
	{Name: "Animals", Emoji: "🐾", Terms: []string{
		"funny animals", "animal fails", "cute animal funny", "pets funny",
		"animals being derps", "funny zoo animals", "wildlife funny", "farm animals funny",
	}},
	{Name: "Fails", Emoji: "💥", Terms: []string{
		"epic fail", "fail compilation", "funny fail", "epic fails funny",
		"fail moments", "best fails", "spectacular fails", "embarrassing fails",
	}},
	{Name: "Reactions", Emoji: "😆", Terms: []string{
		"funny reaction", "reaction gif", "funny face reaction", "shocked reaction",
		"surprised reaction", "wtf reaction", "laugh reaction", "facepalm reaction",
	}},
	{Name: "Pranks", Emoji: "🎭", Terms: []string{
		"funny prank", "harmless pranks", "prank compilation", "funny practical jokes",
		"best pranks", "prank fails", "funny tricks", "silly pranks",
	}},
	{Name: "Cats", Emoji: "🐱", Terms: []string{
		"cat funny", "funny cats", "cat fails", "kitten funny", "cats being weird",
		"cat pranks", "cat vs cucumber", "cats knocking things", "cat zoomies",
	}},
	{Name: "Dogs", Emoji: "🐶", Terms: []string{
		"dog funny", "funny dogs", "puppy funny", "dog fails", "dogs being derps",
		"dog zoomies", "silly dogs", "dog vs mirror", "dogs playing",
	}},
	{Name: "IASIP", Emoji: "🌞", Terms: []string{
		"always sunny in philadelphia", "charlie day", "danny devito always sunny",
		"dennis reynolds", "mac always sunny", "frank reynolds", "dee reynolds",
		"the gang", "paddy's pub", "charlie kelly", "dennis system", "nightman",
		"dayman fighter of the nightman", "rum ham", "wild card charlie", "pepe silvia",
	}},
	{Name: randomCategory, Emoji: "🎲", Terms: []string{
		"funny", "hilarious", "fail", "laugh", "comedy", "meme", "humor",
		"funny moments", "funny clips", "comedy gold", "funny accidents",
		"funny bloopers", "funny compilation", "best funny moments",
	}},
}

// Used when no category is given: the search term comes from every category
var AnyCategory = Category{Emoji: "🎲"}

// Find a category by name, ignoring case. An empty name is AnyCategory
func FindCategory(name string) (Category, bool) {
	if name == "" {
		return AnyCategory, true
	}
	for _, category := range Categories {
		if strings.EqualFold(category.Name, name) {
			return category, true
		}
	}
	return Category{}, false
}

// Terms to pick the search from
func (category Category) pool() []string {
	if category.Name != "" {
		return category.Terms
	}
	terms := []string{}
	for _, c := range Categories {
		terms = append(terms, c.Terms...)
	}
	return terms
}

type Cog struct {
	tenor *Tenor

	mu  sync.Mutex
	rnd *rand.Rand
}

// New creates the cog. A nil rnd uses a randomly seeded generator
func New(tenor *Tenor, rnd *rand.Rand) *Cog {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Cog{tenor: tenor, rnd: rnd}
}

func (cog *Cog) Name() string {
	return "MeowFun"
}

func (cog *Cog) Commands() []bot.Command {
	return []bot.Command{
		{Name: "randomgif", Usage: "randomgif [category]", Description: "Get a completely random funny GIF! Categories: " + categoryNames()},
	}
}

func categoryNames() string {
	names := make([]string, len(Categories))
	for i, category := range Categories {
		names[i] = category.Name
	}
	return strings.Join(names, ", ")
}

func (cog *Cog) SlashCommands() []*discordgo.ApplicationCommand {
	choices := []*discordgo.ApplicationCommandOptionChoice{}
	for _, category := range Categories {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: category.Name, Value: category.Name})
	}
	return []*discordgo.ApplicationCommand{{
		Name:        "randomgif",
		Description: "Get a completely random funny GIF!",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "category",
			Description: "Optional category for the type of funny GIF you want",
			Choices:     choices,
		}},
	}}
}

func (cog *Cog) Handle(ctx context.Context, discord bot.Discord, request bot.Request) []bot.Response {
	name := ""
	if len(request.Arguments) > 0 {
		name = strings.Join(request.Arguments, " ")
	}
	category, ok := FindCategory(name)
	if !ok {
		return bot.InputNotValid(fmt.Sprintf("Unknown category `%s`. Available: %s", name, categoryNames()))
	}
	return []bot.Response{cog.RandomGif(ctx, category)}
}

// OnInteraction answers the randomgif slash command
func (cog *Cog) OnInteraction(ctx context.Context, discord bot.Discord, interaction *discordgo.Interaction) bool {

	if interaction.Type != discordgo.InteractionApplicationCommand {
		return false
	}
	data := interaction.ApplicationCommandData()
	if data.Name != "randomgif" {
		return false
	}

	// Tenor may take longer than the interaction deadline
	err := discord.InteractionRespond(interaction, &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredChannelMessageWithSource})
	if err != nil {
		log.Error().Err(err).Msg("Could not defer randomgif")
		return true
	}

	name := ""
	for _, option := range data.Options {
		if option.Name == "category" {
			name = option.StringValue()
		}
	}
	category, ok := FindCategory(name)
	if !ok {
		category, _ = FindCategory("")
	}

	params := &discordgo.WebhookParams{}
	switch response := cog.RandomGif(ctx, category).(type) {
	case bot.ResponseEmbed:
		params.Embeds = []*discordgo.MessageEmbed{&response.MessageEmbed}
	case bot.ResponseString:
		params.Content = response.Content
	}
	if _, err := discord.FollowupMessageCreate(interaction, true, params); err != nil {
		log.Error().Err(err).Msg("Could not send the GIF")
	}
	return true
}

// RandomGif searches Tenor with a random term of the category and picks one
// of the results. Failures are turned into a friendly message
func (cog *Cog) RandomGif(ctx context.Context, category Category) bot.Response {

	pool := category.pool()
	cog.mu.Lock()
	term := pool[cog.rnd.IntN(len(pool))]
	limit := minLimit + cog.rnd.IntN(maxLimit-minLimit+1)
	cog.mu.Unlock()

	gifs, err := cog.tenor.Random(ctx, term, limit)
	if err != nil {
		var statusErr *common.StatusError
		if errors.As(err, &statusErr) {
			log.Warn().Int("status", statusErr.Code).Str("term", term).Msg("Tenor refused the search")
		} else {
			log.Error().Err(err).Str("term", term).Msg("Tenor search failed")
		}
		return bot.Text(failure)
	}
	if len(gifs) == 0 {
		return bot.Text(noResults)
	}

	cog.mu.Lock()
	gif := gifs[cog.rnd.IntN(len(gifs))]
	color := cog.rnd.IntN(0xffffff + 1)
	cog.mu.Unlock()

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s Random Funny GIF %s", category.Emoji, category.Emoji),
		Description: "Here's your random GIF!",
		Color:       color,
		Image:       &discordgo.MessageEmbedImage{URL: gif.URL},
		Footer:      &discordgo.MessageEmbedFooter{Text: "Random Category | Powered by Tenor"},
	}
	if category.Name != "" && category.Name != randomCategory {
		embed.Description = fmt.Sprintf("Here's your %s GIF!", strings.ToLower(category.Name))
		embed.Footer.Text = fmt.Sprintf("Category: %s | Powered by Tenor", category.Name)
	}
	return bot.Embed(embed)
}
