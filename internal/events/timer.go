package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"cogbot/internal/bot"
	"cogbot/internal/common"
	"cogbot/internal/store"
)

// Time waited after a failed cycle before trying again
const RetryDelay = 60 * time.Second

type task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Schedule (or reschedule) the timer of an event. A running timer of
// the same event is cancelled first
func (cog *Cog) schedule(guildID string, eventID string) {

	cog.scheduling.Lock()
	defer cog.scheduling.Unlock()
	cog.stopTask(eventID)

	cog.mu.Lock()
	defer cog.mu.Unlock()
	if cog.ctx == nil || cog.discord == nil {
		// not started yet, Start schedules everything
		return
	}
	ctx, cancel := context.WithCancel(cog.ctx)
	t := &task{cancel: cancel, done: make(chan struct{})}
	cog.tasks[eventID] = t
	go func() {
		defer close(t.done)
		cog.run(ctx, guildID, eventID)
		cog.mu.Lock()
		if cog.tasks[eventID] == t {
			delete(cog.tasks, eventID)
		}
		cog.mu.Unlock()
		cancel()
	}()
	log.Debug().Str("guild", guildID).Str("event", eventID).Msg("Event timer scheduled")
}

// Cancel the timer of an event and wait for it to exit.
// Never called from the timer itself
func (cog *Cog) unschedule(eventID string) {
	cog.scheduling.Lock()
	defer cog.scheduling.Unlock()
	cog.stopTask(eventID)
}

func (cog *Cog) stopTask(eventID string) {
	cog.mu.Lock()
	t, ok := cog.tasks[eventID]
	delete(cog.tasks, eventID)
	cog.mu.Unlock()
	if ok {
		t.cancel()
		<-t.done
	}
}

func (cog *Cog) run(ctx context.Context, guildID string, eventID string) {
	for {
		finished, err := cog.cycle(ctx, guildID, eventID)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			log.Error().Err(err).Str("guild", guildID).Str("event", eventID).Msg(fmt.Sprintf("Event timer failed, retrying in %s", RetryDelay))
			if cog.clock.Sleep(ctx, RetryDelay) != nil {
				return
			}
			continue
		}
		if finished {
			log.Debug().Str("guild", guildID).Str("event", eventID).Msg("Event timer finished")
			return
		}
	}
}

// One occurrence of an event: notifications, personal reminders, start
// message and then the repetition. Reports true when the timer has nothing left to do
func (cog *Cog) cycle(ctx context.Context, guildID string, eventID string) (bool, error) {

	event, ok := cog.cached(guildID, eventID)
	if !ok {
		return true, nil
	}

	// Times already gone, typically after downtime, are not fired late
	now := cog.clock.Now()
	if event.Repeat != RepeatNone && event.catchUp(now) {
		log.Info().Str("guild", guildID).Str("event", event.Name).Msg("Event advanced past missed occurrences")
		if err := cog.saveEvent(ctx, guildID, event); err != nil {
			return false, err
		}
	}
	occurrence, slot, ok := event.Next(now)
	if !ok {
		log.Info().Str("guild", guildID).Str("event", event.Name).Msg("Dropping event that ended while offline")
		return true, cog.removeEvent(ctx, guildID, eventID)
	}

	reminders, err := cog.remindersFor(ctx, guildID, eventID)
	if err != nil {
		return false, err
	}
	if err := cog.dropMissed(ctx, guildID, eventID, reminders, now); err != nil {
		return false, err
	}

	for _, point := range Plan(occurrence, event.Notifications, reminders, now) {
		if err := common.SleepUntil(ctx, cog.clock, point.At); err != nil {
			return true, err
		}
		if point.UserID != "" {
			cog.remind(ctx, guildID, event, point, occurrence)
			continue
		}
		if err := cog.announce(guildID, event, fmt.Sprintf("🔔 Reminder: Event **'%s'** is starting in **%d minutes**!", event.Name, point.Minutes)); err != nil {
			return false, err
		}
	}

	if err := common.SleepUntil(ctx, cog.clock, occurrence); err != nil {
		return true, err
	}

	// The event may have been edited while sleeping, in which case the timer is rescheduled
	if latest, ok := cog.cached(guildID, eventID); ok {
		event = latest
	}
	start := fmt.Sprintf("🎉 The event **'%s'** is starting now!", event.Name)
	if event.RoleID != "" {
		start = fmt.Sprintf("<@&%s> %s", event.RoleID, start)
	}
	if err := cog.announce(guildID, event, start); err != nil {
		return false, err
	}

	next, repeats := NextOccurrence(occurrence, event.Repeat)
	if repeats {
		event.setSlot(slot, next)
		return false, cog.saveEvent(ctx, guildID, event)
	}

	// A one-off event lives until its last time is over
	if _, _, more := event.Next(occurrence); more {
		return false, nil
	}
	return true, cog.removeEvent(ctx, guildID, eventID)
}

// Post in the event channel. A guild without one only gets a warning
func (cog *Cog) announce(guildID string, event Event, content string) error {

	channelID := event.Channel
	if channelID == "" {
		id, err := bot.GetChannelId(cog.discord, guildID, cog.channelName)
		if errors.Is(err, bot.ErrChannelNotFound) {
			log.Warn().Str("guild", guildID).Msg(fmt.Sprintf("No #%s channel, skipping announcement of %s", cog.channelName, event.Name))
			return nil
		}
		if err != nil {
			return fmt.Errorf("looking up notification channel: %w", err)
		}
		channelID = id
	}
	if _, err := cog.discord.ChannelMessageSend(channelID, content); err != nil {
		return fmt.Errorf("sending announcement: %w", err)
	}
	return nil
}

// Direct message for a personal reminder, which is consumed once sent.
// A reminder cancelled or moved since the cycle was planned is skipped
func (cog *Cog) remind(ctx context.Context, guildID string, event Event, point WakePoint, occurrence time.Time) {

	scope := store.Member(guildID, point.UserID)
	stored, err := store.Load[map[string]time.Time](ctx, cog.store, scope, remindersKey)
	if err != nil {
		log.Error().Err(err).Str("user", point.UserID).Msg("Could not load personal reminder")
		return
	}
	if at, ok := stored[event.ID]; !ok || !at.Equal(point.At) {
		log.Debug().Str("user", point.UserID).Str("event", event.Name).Msg("Personal reminder no longer wanted")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("⏰ %s starts in %s", event.Name, Humanize(occurrence.Sub(point.At))),
		Description: event.Description,
		Color:       bot.ColorOrange,
		Timestamp:   occurrence.Format(time.RFC3339),
	}
	if err := bot.SendDirect(cog.discord, point.UserID, embed); err != nil {
		log.Error().Err(err).Str("user", point.UserID).Msg("Could not send personal reminder")
	}
	err = store.Update(ctx, cog.store, scope, remindersKey, func(reminders *map[string]time.Time) error {
		if at, ok := (*reminders)[event.ID]; ok && at.Equal(point.At) {
			delete(*reminders, event.ID)
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("user", point.UserID).Msg("Could not clear personal reminder")
	}
}

// Drop the reminders whose time went by without being sent, typically while offline
func (cog *Cog) dropMissed(ctx context.Context, guildID string, eventID string, reminders map[string]time.Time, now time.Time) error {

	for userID, at := range reminders {
		if at.After(now) {
			continue
		}
		err := store.Update(ctx, cog.store, store.Member(guildID, userID), remindersKey, func(stored *map[string]time.Time) error {
			if current, ok := (*stored)[eventID]; ok && current.Equal(at) {
				delete(*stored, eventID)
			}
			return nil
		})
		if err != nil {
			return err
		}
		delete(reminders, userID)
		log.Info().Str("guild", guildID).Str("user", userID).Str("event", eventID).Msg("Dropped missed personal reminder")
	}
	return nil
}

// Personal reminders of every member of the guild for an event
func (cog *Cog) remindersFor(ctx context.Context, guildID string, eventID string) (map[string]time.Time, error) {

	prefix := store.Member(guildID, "")
	scopes, err := cog.store.Scopes(ctx, prefix, remindersKey)
	if err != nil {
		return nil, err
	}
	reminders := map[string]time.Time{}
	for _, scope := range scopes {
		stored, err := store.Load[map[string]time.Time](ctx, cog.store, scope, remindersKey)
		if err != nil {
			return nil, err
		}
		if at, ok := stored[eventID]; ok {
			reminders[strings.TrimPrefix(scope, prefix)] = at
		}
	}
	return reminders, nil
}
