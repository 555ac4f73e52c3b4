// Package midjourney relays image requests to the MidJourney bot through a
// Discord channel and hands the generated images back to the requesters.
package midjourney

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	rcron "github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"cogbot/internal/bot"
	"cogbot/internal/common"
	"cogbot/internal/store"
)

const (
	favoritesKey   = "mj_favorites"
	favoritesShown = 10

	pruneInterval = 5 * time.Minute
	// Controls of a generated image stop answering after this long
	controlLifetime = 24 * time.Hour

	colorBrand      int = 0x8b008b
	colorProcessing int = 0x3498db
	colorSuccess    int = 0x43b581
	colorError      int = 0xf04747
)

const (
	emojiRerun   = "🔄"
	emojiUpscale = "⬆️"
	emojiVary    = "🎲"
	emojiSave    = "💾"
	emojiDelete  = "❌"
)

// Pick one of the four images of a grid
var numberEmojis = []string{"1️⃣", "2️⃣", "3️⃣", "4️⃣"}

// Reactions added under a generated image, in this order. The numbers
// request a variation of one of the images
var controlEmojis = append([]string{emojiRerun, emojiUpscale, emojiVary, emojiSave, emojiDelete}, numberEmojis...)

// Menus replacing the controls of an image until a choice is made
const (
	menuNone    = ""
	menuUpscale = "upscale"
	menuVary    = "vary"
)

type strength struct {
	Emoji string
	Name  string
	// Sent to MidJourney as --chaos
	Chaos int
}

var strengths = []strength{
	{"🔵", "Subtle", 30},
	{"🟢", "Moderate", 50},
	{"🟡", "Strong", 70},
}

const defaultStrength = 50

func strengthName(chaos int) string {
	for _, s := range strengths {
		if s.Chaos == chaos {
			return fmt.Sprintf("%s (%d%%)", s.Name, s.Chaos)
		}
	}
	return fmt.Sprintf("%d%%", chaos)
}

// Control is what the reactions under a generated image act upon
type Control struct {
	UserID     string
	Channel    string
	Title      string
	Prompt     string
	BasePrompt string
	Params     Params
	ImageURL   string
	Created    time.Time
	Menu       string
	// Chaos of the variations requested with the number reactions
	Strength int
}

// Reactions the control answers to in its current menu
func (control Control) emojis() []string {
	switch control.Menu {
	case menuUpscale:
		return append(slices.Clone(numberEmojis), emojiDelete)
	case menuVary:
		emojis := []string{}
		for _, s := range strengths {
			emojis = append(emojis, s.Emoji)
		}
		return append(emojis, emojiDelete)
	}
	return controlEmojis
}

type Favorite struct {
	Prompt    string    `json:"prompt"`
	ImageURL  string    `json:"image_url"`
	Params    Params    `json:"parameters"`
	Timestamp time.Time `json:"timestamp"`
}

type Cog struct {
	store    *store.Store
	clock    common.Clock
	sessions *Sessions

	mu       sync.Mutex
	controls map[string]Control
	cron     *rcron.Cron
}

func New(st *store.Store, clock common.Clock, maxAge time.Duration) *Cog {
	return &Cog{
		store:    st,
		clock:    clock,
		sessions: NewSessions(clock, maxAge),
		controls: map[string]Control{},
	}
}

func (cog *Cog) Name() string {
	return "MidJourney"
}

func (cog *Cog) Commands() []bot.Command {
	return []bot.Command{
		{Name: "imagine", Usage: "imagine <prompt> [--ar r] [--stylize n] [--chaos n] [--quality q] [--seed n] [--version v] [--no-style]", Description: "Generate an image with MidJourney"},
		{Name: "mjset", Usage: "mjset <channel|bot|roles|model|maxjobs> <value>", Description: "Configure the MidJourney relay", Permission: discordgo.PermissionAdministrator},
		{Name: "mjstatus", Usage: "mjstatus", Description: "Show the relay configuration and your running jobs"},
		{Name: "mjhelp", Usage: "mjhelp", Description: "Explain the imagine parameters and the image controls"},
		{Name: "favorites", Usage: "favorites", Description: "Show your saved images"},
	}
}

func (cog *Cog) Handle(ctx context.Context, discord bot.Discord, request bot.Request) []bot.Response {
	switch request.Command {
	case "imagine":
		return cog.imagine(ctx, discord, request)
	case "mjset":
		return cog.mjset(ctx, discord, request.Arguments)
	case "mjstatus":
		return cog.status(ctx, request)
	case "mjhelp":
		return []bot.Response{bot.Embed(helpEmbed())}
	case "favorites":
		return cog.favorites(ctx, request.Author.ID)
	}
	return nil
}

// Start pruning the sessions MidJourney never answered
func (cog *Cog) Start(ctx context.Context, discord bot.Discord) error {

	cog.mu.Lock()
	defer cog.mu.Unlock()
	cog.cron = common.NewCron()
	if _, err := cog.cron.AddFunc(common.Every(pruneInterval), func() { cog.Prune(discord) }); err != nil {
		return fmt.Errorf("scheduling session pruning: %w", err)
	}
	cog.cron.Start()
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

func fullPrompt(prompt string, params Params) string {
	suffix := params.Suffix()
	if suffix == "" {
		return prompt
	}
	return prompt + " " + suffix
}

func (cog *Cog) imagine(ctx context.Context, discord bot.Discord, request bot.Request) []bot.Response {

	if strings.TrimSpace(request.Rest) == "" {
		return []bot.Response{bot.Text("Usage: `imagine <prompt> [--ar 16:9] [--stylize 100] [--version 5.2]`")}
	}
	settings, err := cog.settings(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Could not read the MidJourney settings")
		return []bot.Response{bot.ErrorEmbed("An unexpected error occurred.")}
	}
	if !settings.Configured() {
		return []bot.Response{bot.ErrorEmbed("The MidJourney relay is not configured. An administrator has to run `mjset channel` and `mjset bot` first.")}
	}
	if !settings.Allows(request.Member) {
		return []bot.Response{bot.ErrorEmbed("You don't have permission to use MidJourney.")}
	}
	prompt, params, err := ParseImagine(request.Rest, settings.model())
	if err != nil {
		return bot.InputNotValid(capitalize(err.Error()))
	}

	session := &Session{
		UserID:     request.Author.ID,
		Channel:    request.ChannelID,
		Type:       TypeImagine,
		Prompt:     fullPrompt(prompt, params),
		BasePrompt: prompt,
		Params:     params,
	}
	return cog.start(discord, settings, session, "🎨 Processing Image Generation")
}

// Post the progress embed and relay the request to MidJourney
func (cog *Cog) start(discord bot.Discord, settings Settings, session *Session, title string) []bot.Response {

	if jobs, ok := cog.sessions.Reserve(session, settings.maxJobs()); !ok {
		return []bot.Response{bot.ErrorEmbed(fmt.Sprintf("You already have %d jobs running. Wait for one of them to finish.", jobs))}
	}

	progress, err := discord.ChannelMessageSendEmbed(session.Channel, progressEmbed(title, session, 0, "⏳ Initializing request..."))
	if err != nil {
		log.Error().Err(err).Str("channel", session.Channel).Msg("Could not post the progress message")
		cog.sessions.Remove(session)
		return nil
	}

	if _, err := discord.ChannelMessageSend(settings.Channel, relayCommand(session)); err != nil {
		log.Error().Err(err).Str("channel", settings.Channel).Msg("Could not relay the request to MidJourney")
		cog.sessions.Remove(session)
		failed := &discordgo.MessageEmbed{
			Title:       "❌ Generation Failed",
			Description: "The request could not be sent to MidJourney.",
			Color:       colorError,
		}
		if _, err := discord.ChannelMessageEditEmbed(session.Channel, progress.ID, failed); err != nil {
			log.Debug().Err(err).Msg("Could not edit the progress message")
		}
		return nil
	}
	cog.sessions.Relayed(session, progress.ID)

	if _, err := discord.ChannelMessageEditEmbed(session.Channel, progress.ID, progressEmbed(title, session, 10, "⏳ Request sent! Processing...")); err != nil {
		log.Debug().Err(err).Msg("Could not edit the progress message")
	}
	log.Info().Str("user", session.UserID).Str("type", session.Type).Msg(fmt.Sprintf("Relayed prompt '%s'", session.Prompt))
	return nil
}

func relayCommand(session *Session) string {
	switch session.Type {
	case TypeUpscale:
		return fmt.Sprintf("U%d %s", session.Index, session.Prompt)
	case TypeVariation:
		return fmt.Sprintf("V%d %s", session.Index, session.Prompt)
	}
	return "/imagine prompt: " + session.Prompt
}

// OnMessage looks for the images MidJourney posts in the relay channel
func (cog *Cog) OnMessage(ctx context.Context, discord bot.Discord, message *discordgo.Message) {

	imageURL := imageOf(message)
	if imageURL == "" {
		return
	}
	settings, err := cog.settings(ctx)
	if err != nil || !settings.Configured() {
		return
	}
	if message.ChannelID != settings.Channel || message.Author.ID != settings.BotID {
		return
	}
	session, ok := cog.sessions.Match(message.Content)
	if !ok {
		log.Debug().Str("message", message.ID).Msg("MidJourney image without a pending request")
		return
	}

	title := "✅ Image Generated Successfully!"
	switch session.Type {
	case TypeUpscale:
		title = fmt.Sprintf("✅ Upscaled Image #%d", session.Index)
	case TypeVariation:
		title = fmt.Sprintf("✅ Variation #%d", session.Index)
	}
	control := Control{
		UserID:     session.UserID,
		Channel:    session.Channel,
		Title:      title,
		Prompt:     session.Prompt,
		BasePrompt: session.BasePrompt,
		Params:     session.Params,
		ImageURL:   imageURL,
		Created:    cog.clock.Now(),
		Strength:   defaultStrength,
	}
	embed := resultEmbed(title, control)
	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("Generated in %d seconds • React with the controls below", int(cog.sessions.Age(*session).Seconds())),
	}
	if _, err := discord.ChannelMessageEditEmbed(session.Channel, session.Message, embed); err != nil {
		log.Error().Err(err).Str("user", session.UserID).Msg("Could not deliver the generated image")
		return
	}
	for _, emoji := range controlEmojis {
		if err := discord.MessageReactionAdd(session.Channel, session.Message, emoji); err != nil {
			log.Debug().Err(err).Str("emoji", emoji).Msg("Could not add control")
		}
	}

	cog.mu.Lock()
	cog.controls[session.Message] = control
	cog.mu.Unlock()
	log.Info().Str("user", session.UserID).Msg("Delivered MidJourney image")
}

// The image is an attachment or, for some answers, the image of an embed
func imageOf(message *discordgo.Message) string {
	if len(message.Attachments) > 0 {
		return message.Attachments[0].URL
	}
	for _, embed := range message.Embeds {
		if embed.Image != nil && embed.Image.URL != "" {
			return embed.Image.URL
		}
	}
	return ""
}

func (cog *Cog) control(messageID string) (Control, bool) {
	cog.mu.Lock()
	defer cog.mu.Unlock()
	control, ok := cog.controls[messageID]
	return control, ok
}

// OnReactionAdd runs the control picked by the user who requested the image
func (cog *Cog) OnReactionAdd(ctx context.Context, discord bot.Discord, reaction *discordgo.MessageReaction) {

	control, ok := cog.control(reaction.MessageID)
	if !ok || reaction.UserID != control.UserID {
		return
	}
	emoji := reaction.Emoji.Name
	if !slices.Contains(control.emojis(), emoji) {
		return
	}
	if err := discord.MessageReactionRemove(reaction.ChannelID, reaction.MessageID, reaction.Emoji.APIName(), reaction.UserID); err != nil {
		log.Debug().Err(err).Msg("Could not remove the control reaction")
	}

	switch control.Menu {
	case menuUpscale:
		if number := slices.Index(numberEmojis, emoji); number >= 0 {
			cog.again(ctx, discord, control, TypeUpscale, number+1)
		}
		cog.showMenu(discord, reaction.MessageID, control, menuNone)
		return
	case menuVary:
		for _, s := range strengths {
			if s.Emoji == emoji {
				control.Strength = s.Chaos
			}
		}
		cog.showMenu(discord, reaction.MessageID, control, menuNone)
		return
	}

	switch emoji {
	case emojiRerun:
		cog.again(ctx, discord, control, TypeRerun, 0)
	case emojiUpscale:
		cog.showMenu(discord, reaction.MessageID, control, menuUpscale)
	case emojiVary:
		cog.showMenu(discord, reaction.MessageID, control, menuVary)
	case emojiSave:
		cog.save(ctx, discord, reaction.MessageID, control)
	case emojiDelete:
		if err := discord.ChannelMessageDelete(control.Channel, reaction.MessageID); err != nil {
			log.Error().Err(err).Msg("Could not delete the generated image")
			return
		}
		cog.mu.Lock()
		delete(cog.controls, reaction.MessageID)
		cog.mu.Unlock()
	default:
		cog.again(ctx, discord, control, TypeVariation, slices.Index(numberEmojis, emoji)+1)
	}
}

// Swap the reactions under an image for those of a menu, or back to the controls
func (cog *Cog) showMenu(discord bot.Discord, messageID string, control Control, menu string) {

	control.Menu = menu
	cog.mu.Lock()
	if _, ok := cog.controls[messageID]; !ok {
		cog.mu.Unlock()
		return
	}
	cog.controls[messageID] = control
	cog.mu.Unlock()

	if _, err := discord.ChannelMessageEditEmbed(control.Channel, messageID, menuEmbed(control)); err != nil {
		log.Debug().Err(err).Msg("Could not edit the generated image")
	}
	if err := discord.MessageReactionsRemoveAll(control.Channel, messageID); err != nil {
		log.Debug().Err(err).Msg("Could not clear the controls")
	}
	for _, emoji := range control.emojis() {
		if err := discord.MessageReactionAdd(control.Channel, messageID, emoji); err != nil {
			log.Debug().Err(err).Str("emoji", emoji).Msg("Could not add control")
		}
	}
}

// Rerun, upscale or vary a generated image
func (cog *Cog) again(ctx context.Context, discord bot.Discord, control Control, kind string, index int) {

	settings, err := cog.settings(ctx)
	if err != nil || !settings.Configured() {
		bot.SendResponses(discord, control.Channel, []bot.Response{bot.ErrorEmbed("The MidJourney relay is not configured anymore.")})
		return
	}
	session := &Session{
		UserID:     control.UserID,
		Channel:    control.Channel,
		Type:       kind,
		Prompt:     control.Prompt,
		BasePrompt: control.BasePrompt,
		Params:     control.Params,
		Index:      index,
	}
	title := "🔄 Rerunning Generation"
	switch kind {
	case TypeUpscale:
		title = fmt.Sprintf("🔍 Upscaling Image #%d", index)
	case TypeVariation:
		chaos := control.Strength
		session.Params.Chaos = &chaos
		session.Prompt = fullPrompt(control.BasePrompt, session.Params)
		title = fmt.Sprintf("🎲 Creating Variation %d", index)
	}
	bot.SendResponses(discord, control.Channel, cog.start(discord, settings, session, title))
}

func (cog *Cog) save(ctx context.Context, discord bot.Discord, messageID string, control Control) {

	favorite := Favorite{
		Prompt:    control.BasePrompt,
		ImageURL:  control.ImageURL,
		Params:    control.Params,
		Timestamp: cog.clock.Now().UTC(),
	}
	err := store.Update(ctx, cog.store, store.User(control.UserID), favoritesKey, func(favorites *[]Favorite) error {
		*favorites = append(*favorites, favorite)
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("user", control.UserID).Msg("Could not save favorite")
		bot.SendResponses(discord, control.Channel, []bot.Response{bot.ErrorEmbed("Could not save the image to your favorites.")})
		return
	}
	if _, err := discord.ChannelMessageEditEmbed(control.Channel, messageID, resultEmbed("💾 Saved to Favorites!", control)); err != nil {
		log.Debug().Err(err).Msg("Could not edit the generated image")
	}
}

func (cog *Cog) favorites(ctx context.Context, userID string) []bot.Response {

	favorites, err := store.Load[[]Favorite](ctx, cog.store, store.User(userID), favoritesKey)
	if err != nil {
		log.Error().Err(err).Str("user", userID).Msg("Could not load favorites")
		return []bot.Response{bot.ErrorEmbed("An unexpected error occurred.")}
	}
	if len(favorites) == 0 {
		return []bot.Response{bot.Text(fmt.Sprintf("You don't have any favorites yet. React with %s on a generated image to save it.", emojiSave))}
	}

	responses := []bot.Response{}
	for i := len(favorites) - 1; i >= 0 && len(responses) < favoritesShown; i-- {
		favorite := favorites[i]
		embed := &discordgo.MessageEmbed{
			Title: fmt.Sprintf("⭐ Favorite #%d", i+1),
			Color: colorBrand,
			Image: &discordgo.MessageEmbedImage{URL: favorite.ImageURL},
			Fields: []*discordgo.MessageEmbedField{
				{Name: "✨ Prompt", Value: bot.Box(bot.Truncate(favorite.Prompt, bot.FieldValueLimit-8), "")},
			},
			Footer: &discordgo.MessageEmbedFooter{Text: "Saved on " + favorite.Timestamp.Format("2006-01-02 15:04 MST")},
		}
		if lines := favorite.Params.Lines(); len(lines) > 0 {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "⚙️ Parameters", Value: strings.Join(lines, "\n")})
		}
		responses = append(responses, bot.Embed(embed))
	}
	return responses
}

func (cog *Cog) status(ctx context.Context, request bot.Request) []bot.Response {

	settings, err := cog.settings(ctx)
	if err != nil {
		return []bot.Response{bot.ErrorEmbed("An unexpected error occurred.")}
	}
	if !settings.Configured() {
		return []bot.Response{bot.ErrorEmbed("❌ The MidJourney relay is not configured.")}
	}
	if !settings.Allows(request.Member) {
		return []bot.Response{bot.Text(fmt.Sprintf("ℹ️ MidJourney is configured but restricted to %s.", roleMentions(settings.AllowedRoles)))}
	}

	jobs := cog.sessions.Of(request.Author.ID)
	limit := settings.maxJobs()
	embed := &discordgo.MessageEmbed{
		Title: "MidJourney Status",
		Color: colorBrand,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🔌 Relay Channel", Value: "<#" + settings.Channel + ">", Inline: true},
			{Name: "🤖 MidJourney Bot", Value: "<@" + settings.BotID + ">", Inline: true},
			{Name: "📦 Default Model", Value: settings.model(), Inline: true},
			{Name: "📋 Your Slots", Value: fmt.Sprintf("%s\n%d/%d slots used", bot.ProgressBar(len(jobs)*100/limit), len(jobs), limit)},
			{Name: "🌐 Jobs Running", Value: fmt.Sprintf("%d", cog.sessions.Total()), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Use mjstatus again to refresh"},
	}
	if len(jobs) > 0 {
		title := cases.Title(language.English)
		lines := []string{}
		for _, job := range jobs {
			lines = append(lines, fmt.Sprintf("**%s** `%s` (%s ago)", title.String(job.Type), bot.Truncate(job.BasePrompt, 50), cog.sessions.Age(job).Round(time.Second)))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "⏳ Your Jobs", Value: bot.Truncate(strings.Join(lines, "\n"), bot.FieldValueLimit)})
	}
	return []bot.Response{bot.Embed(embed)}
}

// Prune forgets the requests MidJourney never answered and the
// controls of old images
func (cog *Cog) Prune(discord bot.Discord) {

	for _, session := range cog.sessions.Prune() {
		log.Info().Str("user", session.UserID).Msg(fmt.Sprintf("Dropping unanswered prompt '%s'", session.Prompt))
		if session.Message == "" {
			continue
		}
		expired := &discordgo.MessageEmbed{
			Title:       "⌛ Generation Timed Out",
			Description: "MidJourney did not answer in time. Try again with `imagine`.",
			Color:       colorError,
		}
		if _, err := discord.ChannelMessageEditEmbed(session.Channel, session.Message, expired); err != nil {
			log.Debug().Err(err).Msg("Could not edit the progress message")
		}
	}

	now := cog.clock.Now()
	cog.mu.Lock()
	defer cog.mu.Unlock()
	for messageID, control := range cog.controls {
		if now.Sub(control.Created) > controlLifetime {
			delete(cog.controls, messageID)
		}
	}
}

func progressEmbed(title string, session *Session, percent int, status string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: bot.ProgressBar(percent),
		Color:       colorProcessing,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "✨ Prompt", Value: bot.Box(bot.Truncate(session.BasePrompt, bot.FieldValueLimit-8), "")},
		},
	}
	if lines := session.Params.Lines(); len(lines) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "⚙️ Parameters", Value: strings.Join(lines, "\n"), Inline: true})
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "📡 Status", Value: status, Inline: true})
	return embed
}

func menuEmbed(control Control) *discordgo.MessageEmbed {
	switch control.Menu {
	case menuUpscale:
		embed := resultEmbed("💎 Select Image to Upscale", control)
		embed.Description = "1️⃣-4️⃣ - Image to upscale\n❌ - Back to the controls"
		return embed
	case menuVary:
		embed := resultEmbed("🌀 Select Variation Strength", control)
		lines := []string{}
		for _, s := range strengths {
			lines = append(lines, fmt.Sprintf("%s - %s Variations (%d%%)", s.Emoji, s.Name, s.Chaos))
		}
		embed.Description = strings.Join(append(lines, "❌ - Back to the controls"), "\n")
		return embed
	}
	embed := resultEmbed(control.Title, control)
	embed.Description = "🎲 Variation strength: " + strengthName(control.Strength)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "React with the controls below"}
	return embed
}

func resultEmbed(title string, control Control) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: title,
		Color: colorSuccess,
		Image: &discordgo.MessageEmbedImage{URL: control.ImageURL},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "✨ Prompt", Value: bot.Box(bot.Truncate(control.BasePrompt, bot.FieldValueLimit-8), "")},
		},
	}
	if lines := control.Params.Lines(); len(lines) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "⚙️ Parameters", Value: strings.Join(lines, "\n")})
	}
	return embed
}

func helpEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "MidJourney Help",
		Description: "Generate images with `imagine <prompt>`. The request is relayed to MidJourney and the image shows up in place of the progress message.",
		Color:       colorBrand,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "📐 --ar", Value: strings.Join(AspectRatios, ", "), Inline: true},
			{Name: "🖌️ --stylize", Value: "0 to 1000", Inline: true},
			{Name: "🌀 --chaos", Value: "0 to 100", Inline: true},
			{Name: "💎 --quality", Value: strings.Join(QualityValues, ", "), Inline: true},
			{Name: "🎲 --seed", Value: "Up to 10 digits", Inline: true},
			{Name: "📦 --version", Value: strings.Join(ModelVersions, ", "), Inline: true},
			{Name: "🚫 --no-style", Value: "Raw style", Inline: true},
			{Name: "Controls", Value: fmt.Sprintf("%s rerun the prompt\n%s pick an image to upscale\n%s choose the variation strength\n%s save to your favorites\n%s delete the image\n1️⃣-4️⃣ create a variation of one of the four images",
				emojiRerun, emojiUpscale, emojiVary, emojiSave, emojiDelete)},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Only the author of a request can use its controls"},
	}
}
