// Package events schedules guild events with repeating timers,
// channel notifications and personal reminders sent by direct message.
package events

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"cogbot/internal/bot"
	"cogbot/internal/common"
	"cogbot/internal/store"
)

const (
	eventsKey    = "events"
	remindersKey = "reminders"
	timezoneKey  = "timezone"

	signupPrefix = "events_signup:"
)

type Cog struct {
	store       *store.Store
	clock       common.Clock
	channelName string

	// Serialises schedule and unschedule
	scheduling sync.Mutex
	// Guards everything below
	mu      sync.Mutex
	ctx     context.Context
	discord bot.Discord
	// guild id -> event id -> event
	cache map[string]map[string]Event
	tasks map[string]*task
}

func New(st *store.Store, clock common.Clock, channelName string) *Cog {
	return &Cog{
		store:       st,
		clock:       clock,
		channelName: channelName,
		cache:       map[string]map[string]Event{},
		tasks:       map[string]*task{},
	}
}

func (cog *Cog) Name() string {
	return "Events"
}

func (cog *Cog) Commands() []bot.Command {
	admin := int64(discordgo.PermissionManageServer)
	return []bot.Command{
		{Name: "create_event", Usage: "create_event <name> <YYYY-MM-DDTHH:MM> <description> <notifications> <repeat> <create_role> [timezone] [second time]", Description: "Create an event. Notifications are minutes before the event, e.g. \"10,30,60\"; repeat is none, daily, weekly, monthly or yearly", Permission: admin},
		{Name: "list_events", Usage: "list_events", Description: "List the scheduled events"},
		{Name: "delete_event", Usage: "delete_event <id|name>", Description: "Delete an event", Permission: admin},
		{Name: "update_event", Usage: "update_event <id|name> key=value...", Description: "Update date, time, time2, description, notifications, repeat or channel of an event", Permission: admin},
		{Name: "signup_event", Usage: "signup_event <id|name>", Description: "Post a button members can use to get the event role", Permission: admin},
		{Name: "remind_me", Usage: "remind_me <id|name> <minutes>", Description: "Get a direct message some minutes before the next occurrence of an event"},
		{Name: "my_reminders", Usage: "my_reminders", Description: "List your personal reminders"},
		{Name: "cancel_reminder", Usage: "cancel_reminder <id|name>", Description: "Cancel your personal reminder for an event"},
		{Name: "event_timezone", Usage: "event_timezone [timezone]", Description: "Show or set the timezone used to read and display event times", Permission: admin},
	}
}

func (cog *Cog) Handle(ctx context.Context, discord bot.Discord, request bot.Request) []bot.Response {
	switch request.Command {
	case "create_event":
		return cog.createEvent(ctx, discord, request)
	case "list_events":
		return cog.listEvents(ctx, request)
	case "delete_event":
		return cog.deleteEvent(ctx, request)
	case "update_event":
		return cog.updateEvent(ctx, request)
	case "signup_event":
		return cog.signupEvent(ctx, discord, request)
	case "remind_me":
		return cog.remindMe(ctx, request)
	case "my_reminders":
		return cog.myReminders(ctx, request)
	case "cancel_reminder":
		return cog.cancelReminder(ctx, request)
	case "event_timezone":
		return cog.eventTimezone(ctx, request)
	}
	return nil
}

// Start loads the events of every guild and schedules their timers
func (cog *Cog) Start(ctx context.Context, discord bot.Discord) error {

	cog.mu.Lock()
	cog.ctx = ctx
	cog.discord = discord
	cog.mu.Unlock()

	scopes, err := cog.store.Scopes(ctx, store.Guild(""), eventsKey)
	if err != nil {
		return fmt.Errorf("listing guild events: %w", err)
	}
	count := 0
	for _, scope := range scopes {
		guildID := strings.TrimPrefix(scope, store.Guild(""))
		events, err := store.Load[map[string]Event](ctx, cog.store, scope, eventsKey)
		if err != nil {
			log.Error().Err(err).Str("guild", guildID).Msg("Could not load events")
			continue
		}
		cog.mu.Lock()
		cog.cache[guildID] = events
		cog.mu.Unlock()
		for id := range events {
			cog.schedule(guildID, id)
			count++
		}
	}
	log.Info().Msg(fmt.Sprintf("Scheduled %d events", count))
	return nil
}

// Stop cancels every timer and waits for them to exit
func (cog *Cog) Stop() {
	cog.mu.Lock()
	ids := make([]string, 0, len(cog.tasks))
	for id := range cog.tasks {
		ids = append(ids, id)
	}
	cog.mu.Unlock()
	for _, id := range ids {
		cog.unschedule(id)
	}
}

func (cog *Cog) cached(guildID string, eventID string) (Event, bool) {
	cog.mu.Lock()
	defer cog.mu.Unlock()
	event, ok := cog.cache[guildID][eventID]
	return event, ok
}

// Events of a guild sorted by their first time
func (cog *Cog) guildEvents(guildID string) []Event {
	cog.mu.Lock()
	defer cog.mu.Unlock()
	events := make([]Event, 0, len(cog.cache[guildID]))
	for _, event := range cog.cache[guildID] {
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].Time1.Equal(events[j].Time1) {
			return events[i].Name < events[j].Name
		}
		return events[i].Time1.Before(events[j].Time1)
	})
	return events
}

// Find an event of the guild by id, or by name ignoring case
func (cog *Cog) find(guildID string, reference string) (Event, bool) {
	cog.mu.Lock()
	defer cog.mu.Unlock()
	if event, ok := cog.cache[guildID][reference]; ok {
		return event, true
	}
	for _, event := range cog.cache[guildID] {
		if strings.EqualFold(event.Name, reference) {
			return event, true
		}
	}
	return Event{}, false
}

// Persist an event and refresh the cache
func (cog *Cog) saveEvent(ctx context.Context, guildID string, event Event) error {
	err := store.Update(ctx, cog.store, store.Guild(guildID), eventsKey, func(events *map[string]Event) error {
		if *events == nil {
			*events = map[string]Event{}
		}
		(*events)[event.ID] = event
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving event %s: %w", event.ID, err)
	}
	cog.mu.Lock()
	defer cog.mu.Unlock()
	if cog.cache[guildID] == nil {
		cog.cache[guildID] = map[string]Event{}
	}
	cog.cache[guildID][event.ID] = event
	return nil
}

// Remove an event from storage and from the cache. The timer is left alone
func (cog *Cog) removeEvent(ctx context.Context, guildID string, eventID string) error {
	err := store.Update(ctx, cog.store, store.Guild(guildID), eventsKey, func(events *map[string]Event) error {
		delete(*events, eventID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting event %s: %w", eventID, err)
	}
	cog.mu.Lock()
	defer cog.mu.Unlock()
	delete(cog.cache[guildID], eventID)
	return nil
}

// Timezone of the guild, UTC unless configured
func (cog *Cog) location(ctx context.Context, guildID string) (*time.Location, error) {
	name, err := store.Load[string](ctx, cog.store, store.Guild(guildID), timezoneKey)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

func (cog *Cog) createEvent(ctx context.Context, discord bot.Discord, request bot.Request) []bot.Response {

	args := request.Arguments
	if len(args) < 6 {
		return []bot.Response{bot.Text(
			"Usage: `create_event <name> <YYYY-MM-DDTHH:MM> <description> <notifications> <repeat> <create_role> [timezone] [second time]`\n" +
				"Example: `create_event \"Game Night\" 2024-01-01T20:30 \"Join us!\" \"10,30,60\" weekly yes Europe/Madrid 22:00`")}
	}
	name, when, description := strings.TrimSpace(args[0]), args[1], args[2]
	if name == "" {
		return []bot.Response{bot.ErrorEmbed("The event name cannot be empty.")}
	}
	if _, exists := cog.find(request.GuildID, name); exists {
		return []bot.Response{bot.ErrorEmbed(fmt.Sprintf("An event named '%s' already exists.", name))}
	}

	location, err := cog.location(ctx, request.GuildID)
	if err != nil {
		log.Error().Err(err).Str("guild", request.GuildID).Msg("Could not load guild timezone")
		return []bot.Response{bot.ErrorEmbed("Could not load the server timezone.")}
	}
	if len(args) > 6 {
		if location, err = time.LoadLocation(args[6]); err != nil {
			return []bot.Response{bot.ErrorEmbed(fmt.Sprintf("Invalid timezone `%s`.", args[6]))}
		}
	}

	now := cog.clock.Now()
	time1, err := ParseTime(when, location)
	if err != nil {
		return []bot.Response{bot.ErrorEmbed(err.Error())}
	}
	if !time1.After(now) {
		return []bot.Response{bot.ErrorEmbed("Event time must be in the future.")}
	}
	var time2 *time.Time
	if len(args) > 7 {
		t, err := ParseSecondTime(args[7], time1, location)
		if err != nil {
			return []bot.Response{bot.ErrorEmbed(err.Error())}
		}
		if !t.After(now) {
			return []bot.Response{bot.ErrorEmbed("The second event time must be in the future.")}
		}
		time2 = &t
	}

	notifications, err := ParseNotifications(args[3])
	if err != nil {
		return []bot.Response{bot.ErrorEmbed(fmt.Sprintf("Invalid notification times: %s.", err))}
	}
	repeat, err := ParseRepeat(args[4])
	if err != nil {
		return []bot.Response{bot.ErrorEmbed(err.Error())}
	}

	event := Event{
		ID:            uuid.NewString(),
		Name:          name,
		Time1:         time1,
		Time2:         time2,
		Description:   description,
		Notifications: notifications,
		Repeat:        repeat,
	}
	if strings.EqualFold(args[5], "yes") {
		role, err := createRole(discord, request.GuildID, name)
		if err != nil {
			log.Error().Err(err).Str("guild", request.GuildID).Msg("Could not create event role")
			return []bot.Response{bot.ErrorEmbed("Could not create the event role, check my permissions.")}
		}
		event.RoleID = role.ID
	}

	if err := cog.saveEvent(ctx, request.GuildID, event); err != nil {
		log.Error().Err(err).Msg("Could not create event")
		return []bot.Response{bot.ErrorEmbed("Could not save the event.")}
	}
	cog.schedule(request.GuildID, event.ID)
	log.Info().Str("guild", request.GuildID).Str("event", event.ID).Msg(fmt.Sprintf("Event %s created", name))
	return []bot.Response{bot.SuccessEmbed(fmt.Sprintf("Event '%s' created for %s.\nID: `%s`", name, formatTime(time1, location), event.ID))}
}

func createRole(discord bot.Discord, guildID string, name string) (*discordgo.Role, error) {
	mentionable := true
	return discord.GuildRoleCreate(guildID, &discordgo.RoleParams{Name: name, Mentionable: &mentionable})
}

func formatTime(t time.Time, location *time.Location) string {
	return t.In(location).Format("2006-01-02 15:04 MST")
}

func (cog *Cog) listEvents(ctx context.Context, request bot.Request) []bot.Response {

	events := cog.guildEvents(request.GuildID)
	if len(events) == 0 {
		return []bot.Response{bot.Embed(&discordgo.MessageEmbed{Title: "No Events", Description: "No events are currently scheduled.", Color: bot.ColorOrange})}
	}
	location, err := cog.location(ctx, request.GuildID)
	if err != nil {
		location = time.UTC
	}

	now := cog.clock.Now()
	embed := &discordgo.MessageEmbed{Title: "Scheduled Events", Color: bot.ColorBlue}
	for i, event := range events {
		if i == 25 {
			embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("%d more events not shown", len(events)-25)}
			break
		}
		lines := []string{fmt.Sprintf("**ID:** `%s`", event.ID)}
		for _, t := range event.Times() {
			lines = append(lines, fmt.Sprintf("**Time:** %s", formatTime(t, location)))
		}
		if next, _, ok := event.Next(now); ok {
			lines = append(lines, fmt.Sprintf("**Starts in:** %s", Humanize(next.Sub(now))))
		}
		lines = append(lines, fmt.Sprintf("**Repeat:** %s", event.Repeat))
		if len(event.Notifications) > 0 {
			minutes := make([]string, len(event.Notifications))
			for j, n := range event.Notifications {
				minutes[j] = fmt.Sprint(n)
			}
			lines = append(lines, fmt.Sprintf("**Notifications:** %s minutes before", strings.Join(minutes, ", ")))
		}
		if event.RoleID != "" {
			lines = append(lines, fmt.Sprintf("**Role:** <@&%s>", event.RoleID))
		}
		if event.Description != "" {
			lines = append(lines, event.Description)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  event.Name,
			Value: bot.Truncate(strings.Join(lines, "\n"), bot.FieldValueLimit),
		})
	}
	return []bot.Response{bot.Embed(embed)}
}

func (cog *Cog) deleteEvent(ctx context.Context, request bot.Request) []bot.Response {

	if len(request.Arguments) < 1 {
		return []bot.Response{bot.Text("Usage: `delete_event <id|name>`")}
	}
	event, ok := cog.find(request.GuildID, request.Arguments[0])
	if !ok {
		return []bot.Response{bot.ErrorEmbed(fmt.Sprintf("No event found with the name or id '%s'.", request.Arguments[0]))}
	}

	cog.unschedule(event.ID)
	if err := cog.removeEvent(ctx, request.GuildID, event.ID); err != nil {
		log.Error().Err(err).Msg("Could not delete event")
		return []bot.Response{bot.ErrorEmbed("Could not delete the event.")}
	}
	cog.clearReminders(ctx, request.GuildID, event.ID)
	log.Info().Str("guild", request.GuildID).Str("event", event.ID).Msg(fmt.Sprintf("Event %s deleted", event.Name))
	return []bot.Response{bot.SuccessEmbed(fmt.Sprintf("Event '%s' deleted.", event.Name))}
}

// Drop the personal reminders every member set for a deleted event
func (cog *Cog) clearReminders(ctx context.Context, guildID string, eventID string) {
	scopes, err := cog.store.Scopes(ctx, store.Member(guildID, ""), remindersKey)
	if err != nil {
		log.Error().Err(err).Msg("Could not list reminders")
		return
	}
	for _, scope := range scopes {
		err := store.Update(ctx, cog.store, scope, remindersKey, func(reminders *map[string]time.Time) error {
			delete(*reminders, eventID)
			return nil
		})
		if err != nil {
			log.Error().Err(err).Str("scope", scope).Msg("Could not clear reminder")
		}
	}
}

func (cog *Cog) updateEvent(ctx context.Context, request bot.Request) []bot.Response {

	usage := []bot.Response{bot.Text("Usage: `update_event <id|name> key=value...`\n" +
		"Keys: date (YYYY-MM-DD), time (HH:MM), time2 (HH:MM, YYYY-MM-DDTHH:MM or none), description, notifications, repeat, channel\n" +
		"Example: `update_event \"Game Night\" date=2024-02-01 time=16:00 notifications=\"15,45,90\" repeat=weekly`")}
	if len(request.Arguments) < 2 {
		return usage
	}
	event, ok := cog.find(request.GuildID, request.Arguments[0])
	if !ok {
		return []bot.Response{bot.ErrorEmbed(fmt.Sprintf("No event found with the name or id '%s'.", request.Arguments[0]))}
	}
	values, positional := bot.KeyValues(request.Arguments[1:])
	if len(positional) > 0 || len(values) == 0 {
		return usage
	}

	location, err := cog.location(ctx, request.GuildID)
	if err != nil {
		return []bot.Response{bot.ErrorEmbed("Could not load the server timezone.")}
	}
	now := cog.clock.Now()

	date, hasDate := values["date"]
	clock, hasClock := values["time"]
	if hasDate || hasClock {
		local := event.Time1.In(location)
		if !hasDate {
			date = local.Format(dateLayout)
		}
		if !hasClock {
			clock = local.Format(clockLayout)
		}
		t, err := ParseTime(date+"T"+clock, location)
		if err != nil {
			return []bot.Response{bot.ErrorEmbed(err.Error())}
		}
		if !t.After(now) {
			return []bot.Response{bot.ErrorEmbed("Event time must be in the future.")}
		}
		event.Time1 = t
	}

	for key, value := range values {
		switch key {
		case "date", "time":
		case "time2":
			if strings.EqualFold(value, "none") {
				event.Time2 = nil
				continue
			}
			t, err := ParseSecondTime(value, event.Time1, location)
			if err != nil {
				return []bot.Response{bot.ErrorEmbed(err.Error())}
			}
			if !t.After(now) {
				return []bot.Response{bot.ErrorEmbed("The second event time must be in the future.")}
			}
			event.Time2 = &t
		case "description":
			event.Description = value
		case "notifications":
			notifications, err := ParseNotifications(value)
			if err != nil {
				return []bot.Response{bot.ErrorEmbed(fmt.Sprintf("Invalid notification times: %s.", err))}
			}
			event.Notifications = notifications
		case "repeat":
			repeat, err := ParseRepeat(value)
			if err != nil {
				return []bot.Response{bot.ErrorEmbed(err.Error())}
			}
			event.Repeat = repeat
		case "channel":
			event.Channel = strings.Trim(value, "<#>")
		default:
			return []bot.Response{bot.ErrorEmbed(fmt.Sprintf("Unknown key `%s`.", key))}
		}
	}

	cog.unschedule(event.ID)
	err = cog.saveEvent(ctx, request.GuildID, event)
	cog.schedule(request.GuildID, event.ID)
	if err != nil {
		log.Error().Err(err).Msg("Could not update event")
		return []bot.Response{bot.ErrorEmbed("Could not save the event.")}
	}
	return []bot.Response{bot.SuccessEmbed(fmt.Sprintf("Event '%s' updated.", event.Name))}
}

func (cog *Cog) signupEvent(ctx context.Context, discord bot.Discord, request bot.Request) []bot.Response {

	if len(request.Arguments) < 1 {
		return []bot.Response{bot.Text("Usage: `signup_event <id|name>`")}
	}
	event, ok := cog.find(request.GuildID, request.Arguments[0])
	if !ok {
		return []bot.Response{bot.ErrorEmbed(fmt.Sprintf("No event found with the name or id '%s'.", request.Arguments[0]))}
	}

	if event.RoleID == "" {
		role, err := createRole(discord, request.GuildID, event.Name)
		if err != nil {
			log.Error().Err(err).Msg("Could not create event role")
			return []bot.Response{bot.ErrorEmbed("Could not create the event role, check my permissions.")}
		}
		event.RoleID = role.ID
		cog.unschedule(event.ID)
		err = cog.saveEvent(ctx, request.GuildID, event)
		cog.schedule(request.GuildID, event.ID)
		if err != nil {
			log.Error().Err(err).Msg("Could not save event role")
			return []bot.Response{bot.ErrorEmbed("Could not save the event.")}
		}
	}

	return []bot.Response{bot.ResponseComplex{MessageSend: discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "Event Notifications Signup",
			Description: fmt.Sprintf("Click the button below to sign up for **%s** notifications with the role <@&%s>.", event.Name, event.RoleID),
			Color:       bot.ColorGreen,
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Sign Up for Notifications", Style: discordgo.PrimaryButton, CustomID: signupPrefix + event.ID},
			}},
		},
	}}}
}

// OnInteraction handles the signup buttons
func (cog *Cog) OnInteraction(ctx context.Context, discord bot.Discord, interaction *discordgo.Interaction) bool {

	if interaction.Type != discordgo.InteractionMessageComponent {
		return false
	}
	customID := interaction.MessageComponentData().CustomID
	if !strings.HasPrefix(customID, signupPrefix) {
		return false
	}

	reply := func(content string) {
		err := discord.InteractionRespond(interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Content: content, Flags: discordgo.MessageFlagsEphemeral},
		})
		if err != nil {
			log.Error().Err(err).Msg("Could not answer signup")
		}
	}

	event, ok := cog.cached(interaction.GuildID, strings.TrimPrefix(customID, signupPrefix))
	if !ok || event.RoleID == "" || interaction.Member == nil || interaction.Member.User == nil {
		reply("This event is no longer available.")
		return true
	}
	for _, role := range interaction.Member.Roles {
		if role == event.RoleID {
			reply(fmt.Sprintf("You are already signed up for notifications with the role <@&%s>.", event.RoleID))
			return true
		}
	}
	if err := discord.GuildMemberRoleAdd(interaction.GuildID, interaction.Member.User.ID, event.RoleID); err != nil {
		log.Error().Err(err).Str("user", interaction.Member.User.ID).Msg("Could not add event role")
		reply("I could not give you the role, please contact an administrator.")
		return true
	}
	reply(fmt.Sprintf("You have been signed up for notifications with the role <@&%s>!", event.RoleID))
	return true
}

func (cog *Cog) remindMe(ctx context.Context, request bot.Request) []bot.Response {

	if len(request.Arguments) < 2 {
		return []bot.Response{bot.Text("Usage: `remind_me <id|name> <minutes>`")}
	}
	event, ok := cog.find(request.GuildID, request.Arguments[0])
	if !ok {
		return []bot.Response{bot.ErrorEmbed(fmt.Sprintf("No event found with the name or id '%s'.", request.Arguments[0]))}
	}
	minutes, err := ParseNotifications(request.Arguments[1])
	if err != nil || len(minutes) != 1 {
		return []bot.Response{bot.ErrorEmbed("The reminder time must be a positive number of minutes.")}
	}

	now := cog.clock.Now()
	occurrence, _, ok := event.Next(now)
	if !ok {
		return []bot.Response{bot.ErrorEmbed("This event has no upcoming occurrence.")}
	}
	at := occurrence.Add(-time.Duration(minutes[0]) * time.Minute)
	if !at.After(now) {
		return []bot.Response{bot.ErrorEmbed(fmt.Sprintf("The event starts in %s, too soon for that reminder.", Humanize(occurrence.Sub(now))))}
	}

	err = store.Update(ctx, cog.store, store.Member(request.GuildID, request.Author.ID), remindersKey, func(reminders *map[string]time.Time) error {
		if *reminders == nil {
			*reminders = map[string]time.Time{}
		}
		(*reminders)[event.ID] = at
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("Could not save reminder")
		return []bot.Response{bot.ErrorEmbed("Could not save the reminder.")}
	}
	// The timer plans reminders when a cycle starts
	cog.schedule(request.GuildID, event.ID)

	location, err := cog.location(ctx, request.GuildID)
	if err != nil {
		location = time.UTC
	}
	return []bot.Response{bot.SuccessEmbed(fmt.Sprintf("I will remind you about '%s' %d minutes before it starts, at %s.", event.Name, minutes[0], formatTime(at, location)))}
}

func (cog *Cog) myReminders(ctx context.Context, request bot.Request) []bot.Response {

	reminders, err := store.Load[map[string]time.Time](ctx, cog.store, store.Member(request.GuildID, request.Author.ID), remindersKey)
	if err != nil {
		log.Error().Err(err).Msg("Could not load reminders")
		return []bot.Response{bot.ErrorEmbed("Could not load your reminders.")}
	}
	location, err := cog.location(ctx, request.GuildID)
	if err != nil {
		location = time.UTC
	}

	lines := []string{}
	for eventID, at := range reminders {
		event, ok := cog.cached(request.GuildID, eventID)
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("**%s**: %s", event.Name, formatTime(at, location)))
	}
	if len(lines) == 0 {
		return []bot.Response{bot.Embed(&discordgo.MessageEmbed{Description: "You have no reminders set.", Color: bot.ColorOrange})}
	}
	sort.Strings(lines)
	return []bot.Response{bot.Embed(&discordgo.MessageEmbed{Title: "Your Reminders", Description: strings.Join(lines, "\n"), Color: bot.ColorBlue})}
}

func (cog *Cog) cancelReminder(ctx context.Context, request bot.Request) []bot.Response {

	if len(request.Arguments) < 1 {
		return []bot.Response{bot.Text("Usage: `cancel_reminder <id|name>`")}
	}
	event, ok := cog.find(request.GuildID, request.Arguments[0])
	if !ok {
		return []bot.Response{bot.ErrorEmbed(fmt.Sprintf("No event found with the name or id '%s'.", request.Arguments[0]))}
	}
	found := false
	err := store.Update(ctx, cog.store, store.Member(request.GuildID, request.Author.ID), remindersKey, func(reminders *map[string]time.Time) error {
		_, found = (*reminders)[event.ID]
		delete(*reminders, event.ID)
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("Could not cancel reminder")
		return []bot.Response{bot.ErrorEmbed("Could not cancel the reminder.")}
	}
	if !found {
		return []bot.Response{bot.ErrorEmbed(fmt.Sprintf("You have no reminder for '%s'.", event.Name))}
	}
	// Replan the current cycle without the reminder
	cog.schedule(request.GuildID, event.ID)
	return []bot.Response{bot.SuccessEmbed(fmt.Sprintf("Reminder for '%s' cancelled.", event.Name))}
}

func (cog *Cog) eventTimezone(ctx context.Context, request bot.Request) []bot.Response {

	if len(request.Arguments) < 1 {
		location, err := cog.location(ctx, request.GuildID)
		if err != nil {
			return []bot.Response{bot.ErrorEmbed("Could not load the server timezone.")}
		}
		return []bot.Response{bot.Embed(&discordgo.MessageEmbed{
			Title: "Server Timezone",
			Color: bot.ColorBlue,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Current Timezone", Value: location.String()},
				{Name: "Usage", Value: "`event_timezone <timezone>`, e.g. `event_timezone Europe/London`"},
			},
			Footer: &discordgo.MessageEmbedFooter{Text: "Valid timezones: https://en.wikipedia.org/wiki/List_of_tz_database_time_zones"},
		})}
	}

	name := request.Arguments[0]
	if _, err := time.LoadLocation(name); err != nil || name == "" || strings.EqualFold(name, "local") {
		return []bot.Response{bot.ErrorEmbed(fmt.Sprintf("Invalid timezone: %s. Please use a valid timezone identifier.", name))}
	}
	if err := cog.store.Set(ctx, store.Guild(request.GuildID), timezoneKey, name); err != nil {
		log.Error().Err(err).Msg("Could not save timezone")
		return []bot.Response{bot.ErrorEmbed("Could not save the timezone.")}
	}
	return []bot.Response{bot.SuccessEmbed(fmt.Sprintf("Server timezone has been set to %s.", name))}
}
