package midjourney

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cogbot/internal/bot"
	"cogbot/internal/bot/bottest"
	"cogbot/internal/common"
	"cogbot/internal/store"
)

const (
	guild       = "1"
	userChannel = "10"
	relay       = "20"
	mjBot       = "555"
	requester   = "7"
	stranger    = "8"
)

type fixture struct {
	cog     *Cog
	discord *bottest.Discord
	clock   *common.FakeClock
	store   *store.Store
}

func setup(t *testing.T) fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "mj.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	discord := bottest.New()
	discord.AddGuild(guild, "Home")
	discord.AddChannel(guild, userChannel, "art")
	discord.AddChannel(guild, relay, "midjourney")
	clock := common.NewFakeClock(time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC))
	return fixture{cog: New(st, clock, time.Hour), discord: discord, clock: clock, store: st}
}

func (f fixture) handle(command string, arguments ...string) []bot.Response {
	return f.cog.Handle(context.Background(), f.discord, bot.Request{
		GuildID:   guild,
		ChannelID: userChannel,
		Author:    &discordgo.User{ID: requester},
		Command:   command,
		Arguments: arguments,
		Rest:      strings.Join(arguments, " "),
	})
}

func (f fixture) imagine(rest string, member *discordgo.Member) []bot.Response {
	return f.cog.Handle(context.Background(), f.discord, bot.Request{
		GuildID:   guild,
		ChannelID: userChannel,
		Author:    &discordgo.User{ID: requester},
		Member:    member,
		Command:   "imagine",
		Arguments: strings.Fields(rest),
		Rest:      rest,
	})
}

func (f fixture) configure(t *testing.T) {
	t.Helper()
	require.Len(t, f.handle("mjset", "channel", "<#"+relay+">"), 1)
	require.Len(t, f.handle("mjset", "bot", "<@"+mjBot+">"), 1)
}

// MidJourney answering in the relay channel
func (f fixture) answer(content string) {
	f.cog.OnMessage(context.Background(), f.discord, &discordgo.Message{
		ID:          "9000",
		ChannelID:   relay,
		Content:     content,
		Author:      &discordgo.User{ID: mjBot, Bot: true},
		Attachments: []*discordgo.MessageAttachment{{URL: "https://cdn/grid.png"}},
	})
}

func (f fixture) react(messageID string, userID string, emoji string) {
	f.cog.OnReactionAdd(context.Background(), f.discord, &discordgo.MessageReaction{
		UserID:    userID,
		MessageID: messageID,
		ChannelID: userChannel,
		GuildID:   guild,
		Emoji:     discordgo.Emoji{Name: emoji},
	})
}

func lastEdit(t *testing.T, discord *bottest.Discord) *discordgo.MessageEmbed {
	t.Helper()
	require.NotEmpty(t, discord.Edits)
	return discord.Edits[len(discord.Edits)-1].Embeds[0]
}

func errorText(t *testing.T, responses []bot.Response) string {
	t.Helper()
	require.Len(t, responses, 1)
	embed, ok := responses[0].(bot.ResponseEmbed)
	require.True(t, ok, "expected an embed, got %T", responses[0])
	return embed.Description
}

// Generate an image and return the id of the message holding it
func (f fixture) generate(t *testing.T, prompt string) string {
	t.Helper()
	require.Empty(t, f.imagine(prompt, nil))
	progress := f.discord.SentTo(userChannel)
	require.NotEmpty(t, progress)
	f.answer("**" + prompt + " --v 5.2** - <@" + requester + "> (fast)")
	return progress[len(progress)-1].ID
}

func TestImagine_NotConfigured(t *testing.T) {
	f := setup(t)
	assert.Contains(t, errorText(t, f.imagine("a cat", nil)), "not configured")
	assert.Zero(t, f.discord.SentCount())
}

func TestImagine_RelaysPrompt(t *testing.T) {
	f := setup(t)
	f.configure(t)

	require.Empty(t, f.imagine("a cat --ar 16:9", nil))

	progress := f.discord.SentTo(userChannel)
	require.Len(t, progress, 1)
	assert.Equal(t, "🎨 Processing Image Generation", progress[0].Embeds[0].Title)
	relayed := f.discord.SentTo(relay)
	require.Len(t, relayed, 1)
	assert.Equal(t, "/imagine prompt: a cat --ar 16:9 --v 5.2", relayed[0].Content)

	status := lastEdit(t, f.discord)
	assert.Equal(t, "⏳ Request sent! Processing...", status.Fields[len(status.Fields)-1].Value)
	assert.Equal(t, 1, f.cog.sessions.Count(requester))
}

func TestImagine_InvalidParameters(t *testing.T) {
	f := setup(t)
	f.configure(t)

	responses := f.imagine("a cat --chaos 500", nil)
	require.Len(t, responses, 1)
	assert.Contains(t, responses[0].(bot.ResponseString).Content, "Chaos value must be between 0 and 100")
	assert.Zero(t, f.discord.SentCount())
}

func TestImagine_JobLimit(t *testing.T) {
	f := setup(t)
	f.configure(t)
	f.handle("mjset", "maxjobs", "1")

	require.Empty(t, f.imagine("a cat", nil))
	assert.Contains(t, errorText(t, f.imagine("a dog", nil)), "already have 1 jobs running")
	assert.Len(t, f.discord.SentTo(relay), 1)
}

func TestImagine_ConcurrentJobLimit(t *testing.T) {
	f := setup(t)
	f.configure(t)
	f.handle("mjset", "maxjobs", "2")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.imagine("a cat", nil)
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, f.cog.sessions.Count(requester))
	assert.Len(t, f.discord.SentTo(relay), 2)
}

func TestSessions_Reserve(t *testing.T) {
	sessions := NewSessions(common.NewFakeClock(time.Now()), time.Hour)

	pending, ok := sessions.Reserve(&Session{UserID: requester}, 1)
	assert.True(t, ok)
	assert.Equal(t, 1, pending)
	pending, ok = sessions.Reserve(&Session{UserID: requester}, 1)
	assert.False(t, ok)
	assert.Equal(t, 1, pending)
	_, ok = sessions.Reserve(&Session{UserID: stranger}, 1)
	assert.True(t, ok)
	assert.Equal(t, 2, sessions.Total())
}

func TestImagine_AllowedRoles(t *testing.T) {
	f := setup(t)
	f.configure(t)
	f.handle("mjset", "roles", "<@&99>")

	assert.Contains(t, errorText(t, f.imagine("a cat", &discordgo.Member{Roles: []string{"12"}})), "don't have permission")
	assert.Contains(t, errorText(t, f.imagine("a cat", nil)), "don't have permission")
	assert.Empty(t, f.imagine("a cat", &discordgo.Member{Roles: []string{"12", "99"}}))

	f.handle("mjset", "roles", "everyone")
	assert.Empty(t, f.imagine("a dog", nil))
}

// Discord accepting embeds but refusing the relayed prompt
type brokenRelay struct {
	*bottest.Discord
}

func (brokenRelay) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	return nil, errors.New("relay down")
}

func TestImagine_RelayFailure(t *testing.T) {
	f := setup(t)
	f.configure(t)

	responses := f.cog.Handle(context.Background(), brokenRelay{f.discord}, bot.Request{
		GuildID:   guild,
		ChannelID: userChannel,
		Author:    &discordgo.User{ID: requester},
		Command:   "imagine",
		Rest:      "a cat",
	})

	assert.Empty(t, responses)
	require.Len(t, f.discord.SentTo(userChannel), 1)
	assert.Equal(t, "❌ Generation Failed", lastEdit(t, f.discord).Title)
	assert.Zero(t, f.cog.sessions.Count(requester))
}

func TestOnMessage_DeliversImage(t *testing.T) {
	f := setup(t)
	f.configure(t)
	require.Empty(t, f.imagine("a cat", nil))
	progress := f.discord.SentTo(userChannel)[0]

	// Other authors are ignored
	f.cog.OnMessage(context.Background(), f.discord, &discordgo.Message{
		ChannelID:   relay,
		Content:     "**a cat --v 5.2**",
		Author:      &discordgo.User{ID: stranger},
		Attachments: []*discordgo.MessageAttachment{{URL: "https://cdn/fake.png"}},
	})
	assert.Equal(t, 1, f.cog.sessions.Count(requester))

	f.clock.Advance(42 * time.Second)
	f.answer("**A Cat --v 5.2** - <@7> (fast)")

	embed := lastEdit(t, f.discord)
	assert.Equal(t, "✅ Image Generated Successfully!", embed.Title)
	assert.Equal(t, "https://cdn/grid.png", embed.Image.URL)
	assert.Contains(t, embed.Footer.Text, "Generated in 42 seconds")
	assert.Equal(t, progress.ID, f.discord.Edits[len(f.discord.Edits)-1].ID)

	require.Len(t, f.discord.Reactions, len(controlEmojis))
	for i, reaction := range f.discord.Reactions {
		assert.Equal(t, progress.ID, reaction.MessageID)
		assert.Equal(t, controlEmojis[i], reaction.Emoji)
	}
	assert.Zero(t, f.cog.sessions.Count(requester))
}

func TestOnMessage_UnknownPrompt(t *testing.T) {
	f := setup(t)
	f.configure(t)
	require.Empty(t, f.imagine("a cat", nil))

	f.answer("**a dog --v 5.2**")
	assert.Equal(t, 1, f.cog.sessions.Count(requester))
	assert.Empty(t, f.discord.Reactions)
}

func TestControls_OnlyRequester(t *testing.T) {
	f := setup(t)
	f.configure(t)
	image := f.generate(t, "a cat")

	f.react(image, stranger, emojiDelete)
	assert.Empty(t, f.discord.Deleted)
	assert.Empty(t, f.discord.Removed)

	f.react(image, requester, "👍")
	assert.Empty(t, f.discord.Removed)

	f.react(image, requester, emojiDelete)
	assert.Equal(t, []string{image}, f.discord.Deleted)
	require.Len(t, f.discord.Removed, 1)
	assert.Equal(t, requester, f.discord.Removed[0].UserID)

	_, ok := f.cog.control(image)
	assert.False(t, ok)
}

func TestControls_RerunAndVariation(t *testing.T) {
	f := setup(t)
	f.configure(t)
	image := f.generate(t, "a cat")

	f.react(image, requester, emojiRerun)
	f.react(image, requester, "2️⃣")

	relayed := f.discord.SentTo(relay)
	require.Len(t, relayed, 3)
	assert.Equal(t, "/imagine prompt: a cat --v 5.2", relayed[1].Content)
	assert.Equal(t, "V2 a cat --chaos 50 --v 5.2", relayed[2].Content)

	jobs := f.cog.sessions.Of(requester)
	require.Len(t, jobs, 2)
	assert.Equal(t, TypeRerun, jobs[0].Type)
	assert.Equal(t, TypeVariation, jobs[1].Type)
	assert.Equal(t, 2, jobs[1].Index)

	f.answer("**a cat --v 5.2** - <@7>")
	assert.Equal(t, "✅ Image Generated Successfully!", lastEdit(t, f.discord).Title)
	f.answer("**a cat --chaos 50 --v 5.2** - Variations by <@7>")
	assert.Equal(t, "✅ Variation #2", lastEdit(t, f.discord).Title)
}

func TestControls_VariationStrength(t *testing.T) {
	f := setup(t)
	f.configure(t)
	image := f.generate(t, "a cat")

	f.react(image, requester, emojiVary)
	assert.Equal(t, []string{image}, f.discord.Cleared)
	assert.Equal(t, "🌀 Select Variation Strength", lastEdit(t, f.discord).Title)
	control, _ := f.cog.control(image)
	assert.Equal(t, []string{"🔵", "🟢", "🟡", emojiDelete}, control.emojis())

	// Numbers mean nothing in this menu
	f.react(image, requester, "1️⃣")
	assert.Len(t, f.discord.SentTo(relay), 1)

	f.react(image, requester, "🟡")
	embed := lastEdit(t, f.discord)
	assert.Equal(t, "✅ Image Generated Successfully!", embed.Title)
	assert.Equal(t, "🎲 Variation strength: Strong (70%)", embed.Description)
	control, _ = f.cog.control(image)
	assert.Equal(t, menuNone, control.Menu)

	f.react(image, requester, "4️⃣")
	relayed := f.discord.SentTo(relay)
	require.Len(t, relayed, 2)
	assert.Equal(t, "V4 a cat --chaos 70 --v 5.2", relayed[1].Content)
}

func TestControls_UpscaleMenu(t *testing.T) {
	f := setup(t)
	f.configure(t)
	image := f.generate(t, "a cat")

	f.react(image, requester, emojiUpscale)
	assert.Equal(t, "💎 Select Image to Upscale", lastEdit(t, f.discord).Title)
	control, _ := f.cog.control(image)
	assert.Equal(t, menuUpscale, control.Menu)

	// The delete reaction only closes the menu
	f.react(image, requester, emojiDelete)
	assert.Empty(t, f.discord.Deleted)
	control, _ = f.cog.control(image)
	assert.Equal(t, menuNone, control.Menu)

	f.react(image, requester, emojiUpscale)
	f.react(image, requester, "3️⃣")
	relayed := f.discord.SentTo(relay)
	require.Len(t, relayed, 2)
	assert.Equal(t, "U3 a cat --v 5.2", relayed[1].Content)
	control, _ = f.cog.control(image)
	assert.Equal(t, menuNone, control.Menu)

	f.answer("**a cat --v 5.2** - Image #3 <@7>")
	assert.Equal(t, "✅ Upscaled Image #3", lastEdit(t, f.discord).Title)
}

func TestControls_SaveAndFavorites(t *testing.T) {
	f := setup(t)
	f.configure(t)

	responses := f.handle("favorites")
	require.Len(t, responses, 1)
	assert.Contains(t, responses[0].(bot.ResponseString).Content, "don't have any favorites")

	image := f.generate(t, "a cat")
	f.react(image, requester, emojiSave)

	assert.Equal(t, "💾 Saved to Favorites!", lastEdit(t, f.discord).Title)
	favorites, err := store.Load[[]Favorite](context.Background(), f.store, store.User(requester), favoritesKey)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, "a cat", favorites[0].Prompt)
	assert.Equal(t, "https://cdn/grid.png", favorites[0].ImageURL)

	responses = f.handle("favorites")
	require.Len(t, responses, 1)
	embed := responses[0].(bot.ResponseEmbed)
	assert.Equal(t, "⭐ Favorite #1", embed.Title)
	assert.Equal(t, "https://cdn/grid.png", embed.Image.URL)
}

func TestFavorites_ShowsTheLatest(t *testing.T) {
	f := setup(t)
	favorites := []Favorite{}
	for i := 0; i < 12; i++ {
		favorites = append(favorites, Favorite{Prompt: "p", ImageURL: "https://cdn/x.png"})
	}
	require.NoError(t, f.store.Set(context.Background(), store.User(requester), favoritesKey, favorites))

	responses := f.handle("favorites")
	require.Len(t, responses, favoritesShown)
	assert.Equal(t, "⭐ Favorite #12", responses[0].(bot.ResponseEmbed).Title)
	assert.Equal(t, "⭐ Favorite #3", responses[favoritesShown-1].(bot.ResponseEmbed).Title)
}

func TestPrune(t *testing.T) {
	f := setup(t)
	f.configure(t)
	image := f.generate(t, "a cat")
	require.Empty(t, f.imagine("a dog", nil))

	f.clock.Advance(30 * time.Minute)
	f.cog.Prune(f.discord)
	assert.Equal(t, 1, f.cog.sessions.Count(requester))

	f.clock.Advance(31 * time.Minute)
	f.cog.Prune(f.discord)
	assert.Zero(t, f.cog.sessions.Count(requester))
	assert.Equal(t, "⌛ Generation Timed Out", lastEdit(t, f.discord).Title)

	_, ok := f.cog.control(image)
	assert.True(t, ok)
	f.clock.Advance(24 * time.Hour)
	f.cog.Prune(f.discord)
	_, ok = f.cog.control(image)
	assert.False(t, ok)
}

func TestMjset(t *testing.T) {
	f := setup(t)

	settings := f.handle("mjset")
	require.Len(t, settings, 1)
	embed := settings[0].(bot.ResponseEmbed)
	assert.Equal(t, "Not set", embed.Fields[0].Value)
	assert.Equal(t, "Everyone", embed.Fields[2].Value)

	assert.Contains(t, errorText(t, f.handle("mjset", "channel", "404")), "Unable to find a channel with ID 404")
	assert.Contains(t, errorText(t, f.handle("mjset", "model", "4")), "Invalid version")
	assert.Contains(t, errorText(t, f.handle("mjset", "maxjobs", "0")), "between 1 and 10")
	assert.Contains(t, errorText(t, f.handle("mjset", "colour", "red")), "Unknown setting")

	f.configure(t)
	f.handle("mjset", "model", "NIJI")
	f.handle("mjset", "roles", "<@&1>", "<@&2>")
	stored, err := store.Load[Settings](context.Background(), f.store, store.Global, settingsKey)
	require.NoError(t, err)
	assert.Equal(t, Settings{Channel: relay, BotID: mjBot, AllowedRoles: []string{"1", "2"}, DefaultModel: "niji"}, stored)
}

func TestStatus(t *testing.T) {
	f := setup(t)
	assert.Contains(t, errorText(t, f.handle("mjstatus")), "not configured")

	f.configure(t)
	require.Empty(t, f.imagine("a cat", nil))
	f.clock.Advance(90 * time.Second)

	responses := f.handle("mjstatus")
	require.Len(t, responses, 1)
	embed := responses[0].(bot.ResponseEmbed)
	assert.Contains(t, embed.Fields[3].Value, "1/3 slots used")
	assert.Equal(t, "⏳ Your Jobs", embed.Fields[5].Name)
	assert.Contains(t, embed.Fields[5].Value, "**Imagine** `a cat` (1m30s ago)")

	f.handle("mjset", "roles", "<@&99>")
	responses = f.handle("mjstatus")
	require.Len(t, responses, 1)
	assert.Contains(t, responses[0].(bot.ResponseString).Content, "restricted to <@&99>")
}

func TestHelpAndStartStop(t *testing.T) {
	f := setup(t)
	responses := f.handle("mjhelp")
	require.Len(t, responses, 1)
	assert.Equal(t, "MidJourney Help", responses[0].(bot.ResponseEmbed).Title)

	require.NoError(t, f.cog.Start(context.Background(), f.discord))
	f.cog.Stop()
	f.cog.Stop()
}
