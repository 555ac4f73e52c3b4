package meme

import (
	"context"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cogbot/internal/bot"
	"cogbot/internal/bot/bottest"
	"cogbot/internal/common"
)

const results = `{"results": [
	{"id": "1", "itemurl": "https://tenor.com/1", "media": [{"gif": {"url": "https://media.tenor.com/1.gif"}}]},
	{"id": "2", "itemurl": "https://tenor.com/2", "media": [{"tinygif": {"url": "https://media.tenor.com/2-tiny.gif"}}]},
	{"id": "3", "itemurl": "https://tenor.com/3", "media": []}
]}`

type search struct {
	term  string
	key   string
	limit int
}

// Tenor answering with the given status and body, recording the searches
func tenor(t *testing.T, status int, body string) (*Tenor, func() []search) {
	t.Helper()
	var mu sync.Mutex
	searches := []search{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/random", r.URL.Path)
		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		assert.NoError(t, err)
		mu.Lock()
		searches = append(searches, search{term: r.URL.Query().Get("q"), key: r.URL.Query().Get("key"), limit: limit})
		mu.Unlock()
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return NewTenor(server.URL, "test-key", common.Restriction{}, server.Client()), func() []search {
		mu.Lock()
		defer mu.Unlock()
		return append([]search{}, searches...)
	}
}

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestDecodeResults(t *testing.T) {
	gifs, err := DecodeResults([]byte(results))
	require.NoError(t, err)
	require.Len(t, gifs, 1)
	assert.Equal(t, Gif{ID: "1", URL: "https://media.tenor.com/1.gif", ItemURL: "https://tenor.com/1"}, gifs[0])

	_, err = DecodeResults([]byte("not json"))
	assert.Error(t, err)
}

func TestFindCategory(t *testing.T) {
	category, ok := FindCategory("iasip")
	require.True(t, ok)
	assert.Equal(t, "IASIP", category.Name)

	category, ok = FindCategory("")
	require.True(t, ok)
	assert.Equal(t, AnyCategory, category)

	_, ok = FindCategory("Horses")
	assert.False(t, ok)

	// No category draws from every category
	cats, _ := FindCategory("Cats")
	all := category.pool()
	for _, term := range cats.Terms {
		assert.Contains(t, all, term)
	}
	assert.Equal(t, cats.Terms, cats.pool())

	// An explicit Random only uses its own terms
	random, ok := FindCategory("random")
	require.True(t, ok)
	assert.Equal(t, random.Terms, random.pool())
	assert.NotContains(t, random.pool(), "cat zoomies")
}

func TestRandomGif_Category(t *testing.T) {
	client, searches := tenor(t, http.StatusOK, results)
	cog := New(client, seeded())

	responses := cog.Handle(context.Background(), bottest.New(), bot.Request{Command: "randomgif", Arguments: []string{"cats"}})

	require.Len(t, responses, 1)
	embed := responses[0].(bot.ResponseEmbed)
	assert.Equal(t, "🐱 Random Funny GIF 🐱", embed.Title)
	assert.Equal(t, "Here's your cats GIF!", embed.Description)
	assert.Equal(t, "https://media.tenor.com/1.gif", embed.Image.URL)
	assert.Equal(t, "Category: Cats | Powered by Tenor", embed.Footer.Text)

	made := searches()
	require.Len(t, made, 1)
	cats, _ := FindCategory("Cats")
	assert.True(t, slices.Contains(cats.Terms, made[0].term), "unexpected term %s", made[0].term)
	assert.Equal(t, "test-key", made[0].key)
}

func TestRandomGif_LimitWithinBounds(t *testing.T) {
	client, searches := tenor(t, http.StatusOK, results)
	cog := New(client, seeded())

	for i := 0; i < 30; i++ {
		cog.RandomGif(context.Background(), Categories[0])
	}
	for _, made := range searches() {
		assert.GreaterOrEqual(t, made.limit, minLimit)
		assert.LessOrEqual(t, made.limit, maxLimit)
	}
}

func TestRandomGif_Random(t *testing.T) {
	client, _ := tenor(t, http.StatusOK, results)
	cog := New(client, nil)

	responses := cog.Handle(context.Background(), bottest.New(), bot.Request{Command: "randomgif"})

	embed := responses[0].(bot.ResponseEmbed)
	assert.Equal(t, "🎲 Random Funny GIF 🎲", embed.Title)
	assert.Equal(t, "Random Category | Powered by Tenor", embed.Footer.Text)
}

func TestRandomGif_ExplicitRandomCategory(t *testing.T) {
	client, searches := tenor(t, http.StatusOK, results)
	cog := New(client, seeded())

	random, _ := FindCategory("Random")
	for i := 0; i < 20; i++ {
		embed := cog.RandomGif(context.Background(), random).(bot.ResponseEmbed)
		assert.Equal(t, "Here's your random GIF!", embed.Description)
	}
	for _, made := range searches() {
		assert.True(t, slices.Contains(random.Terms, made.term), "unexpected term %s", made.term)
	}
}

func TestRandomGif_FriendlyFailures(t *testing.T) {
	empty, _ := tenor(t, http.StatusOK, `{"results": []}`)
	assert.Equal(t, bot.Text(noResults), New(empty, seeded()).RandomGif(context.Background(), Categories[1]))

	broken, _ := tenor(t, http.StatusInternalServerError, "")
	assert.Equal(t, bot.Text(failure), New(broken, seeded()).RandomGif(context.Background(), Categories[1]))

	garbage, _ := tenor(t, http.StatusOK, "<html>")
	assert.Equal(t, bot.Text(failure), New(garbage, seeded()).RandomGif(context.Background(), Categories[1]))
}

func TestRandomGif_UnknownCategory(t *testing.T) {
	client, searches := tenor(t, http.StatusOK, results)
	responses := New(client, seeded()).Handle(context.Background(), bottest.New(), bot.Request{Command: "randomgif", Arguments: []string{"horses"}})

	require.Len(t, responses, 1)
	assert.Contains(t, responses[0].(bot.ResponseString).Content, "Unknown category `horses`")
	assert.Empty(t, searches())
}

func TestOnInteraction(t *testing.T) {
	client, _ := tenor(t, http.StatusOK, results)
	cog := New(client, seeded())
	discord := bottest.New()

	interaction := &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{
			Name: "randomgif",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "category", Type: discordgo.ApplicationCommandOptionString, Value: "Dogs"},
			},
		},
	}
	require.True(t, cog.OnInteraction(context.Background(), discord, interaction))

	require.Len(t, discord.Responses, 1)
	assert.Equal(t, discordgo.InteractionResponseDeferredChannelMessageWithSource, discord.Responses[0].Response.Type)
	require.Len(t, discord.Followups, 1)
	require.Len(t, discord.Followups[0].Embeds, 1)
	assert.Equal(t, "Category: Dogs | Powered by Tenor", discord.Followups[0].Embeds[0].Footer.Text)

	other := &discordgo.Interaction{Type: discordgo.InteractionApplicationCommand, Data: discordgo.ApplicationCommandInteractionData{Name: "other"}}
	assert.False(t, cog.OnInteraction(context.Background(), discord, other))
	assert.False(t, cog.OnInteraction(context.Background(), discord, &discordgo.Interaction{Type: discordgo.InteractionMessageComponent}))
}

func TestSlashCommands(t *testing.T) {
	commands := New(nil, nil).SlashCommands()
	require.Len(t, commands, 1)
	assert.Equal(t, "randomgif", commands[0].Name)
	assert.Len(t, commands[0].Options[0].Choices, len(Categories))
}
