package events

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

type Repeat string

const (
	RepeatNone    Repeat = "none"
	RepeatDaily   Repeat = "daily"
	RepeatWeekly  Repeat = "weekly"
	RepeatMonthly Repeat = "monthly"
	RepeatYearly  Repeat = "yearly"
)

func ParseRepeat(value string) (Repeat, error) {
	repeat := Repeat(strings.ToLower(strings.TrimSpace(value)))
	switch repeat {
	case RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly:
		return repeat, nil
	case "":
		return RepeatNone, nil
	}
	return "", fmt.Errorf("invalid repeat `%s`, use one of none, daily, weekly, monthly, yearly", value)
}

// Event as persisted in the guild configuration. Times are stored in UTC
type Event struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Time1         time.Time  `json:"time1"`
	Time2         *time.Time `json:"time2,omitempty"`
	Description   string     `json:"description"`
	Notifications []int      `json:"notifications"`
	Repeat        Repeat     `json:"repeat"`
	RoleID        string     `json:"role_id,omitempty"`
	// Empty means the guild notification channel
	Channel string `json:"channel,omitempty"`
}

// Times the event is held at, time1 first
func (event Event) Times() []time.Time {
	times := []time.Time{event.Time1}
	if event.Time2 != nil {
		times = append(times, *event.Time2)
	}
	return times
}

// Next returns the earliest time of the event strictly after now and
// which slot it comes from (0 for time1, 1 for time2)
func (event Event) Next(now time.Time) (time.Time, int, bool) {
	found := false
	var next time.Time
	slot := -1
	for i, t := range event.Times() {
		if t.After(now) && (!found || t.Before(next)) {
			next, slot, found = t, i, true
		}
	}
	return next, slot, found
}

// Replace the time held in a slot
func (event *Event) setSlot(slot int, t time.Time) {
	if slot == 0 {
		event.Time1 = t
		return
	}
	event.Time2 = &t
}

// NextOccurrence moves t forward by the calendar delta of the repeat.
// Months and years keep the day of month when possible and are clamped to
// the last day of the target month otherwise. Reports false for none
func NextOccurrence(t time.Time, repeat Repeat) (time.Time, bool) {
	switch repeat {
	case RepeatDaily:
		return t.AddDate(0, 0, 1), true
	case RepeatWeekly:
		return t.AddDate(0, 0, 7), true
	case RepeatMonthly:
		return addMonths(t, 1), true
	case RepeatYearly:
		return addMonths(t, 12), true
	}
	return t, false
}

func addMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	return first.AddDate(0, 0, day-1)
}

// Advance every slot at or before now to its first repetition after now.
// Used after downtime so missed occurrences are not fired late
func (event *Event) catchUp(now time.Time) bool {
	moved := false
	for slot, t := range event.Times() {
		for !t.After(now) {
			next, ok := NextOccurrence(t, event.Repeat)
			if !ok {
				return moved
			}
			t = next
			moved = true
		}
		event.setSlot(slot, t)
	}
	return moved
}

// WakePoint is an instant the timer of an event has to act at before the
// event starts: a channel notification, or a personal reminder when UserID is set
type WakePoint struct {
	At      time.Time
	Minutes int
	UserID  string
}

// Plan the wake points before an occurrence: one per notification offset,
// largest offset first, plus the personal reminders falling before it.
// Points that are not after now are skipped
func Plan(occurrence time.Time, notifications []int, reminders map[string]time.Time, now time.Time) []WakePoint {

	points := []WakePoint{}
	seen := map[int]bool{}
	for _, minutes := range notifications {
		if minutes <= 0 || seen[minutes] {
			continue
		}
		seen[minutes] = true
		at := occurrence.Add(-time.Duration(minutes) * time.Minute)
		if at.After(now) {
			points = append(points, WakePoint{At: at, Minutes: minutes})
		}
	}
	for userID, at := range reminders {
		if at.After(now) && !at.After(occurrence) {
			points = append(points, WakePoint{At: at, Minutes: int(occurrence.Sub(at).Minutes()), UserID: userID})
		}
	}

	sort.SliceStable(points, func(i, j int) bool {
		if points[i].At.Equal(points[j].At) {
			return points[i].UserID < points[j].UserID
		}
		return points[i].At.Before(points[j].At)
	})
	return points
}

// Parse a comma separated list of minutes such as "10,30,60"
func ParseNotifications(value string) ([]int, error) {
	notifications := []int{}
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		minutes, err := strconv.Atoi(part)
		if err != nil || minutes <= 0 {
			return nil, fmt.Errorf("invalid notification time `%s`", part)
		}
		notifications = append(notifications, minutes)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(notifications)))
	return notifications, nil
}

const (
	dateTimeLayout = "2006-01-02T15:04"
	dateLayout     = "2006-01-02"
	clockLayout    = "15:04"
)

// Parse a YYYY-MM-DDTHH:MM time in the location and return it in UTC
func ParseTime(value string, location *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateTimeLayout, value, location)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date or time `%s`, expected YYYY-MM-DDTHH:MM", value)
	}
	return t.UTC(), nil
}

// Parse a second time, either a full YYYY-MM-DDTHH:MM or an HH:MM on the day of reference
func ParseSecondTime(value string, reference time.Time, location *time.Location) (time.Time, error) {
	if strings.Contains(value, "T") {
		return ParseTime(value, location)
	}
	clock, err := time.ParseInLocation(clockLayout, value, location)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time `%s`, expected HH:MM", value)
	}
	local := reference.In(location)
	return time.Date(local.Year(), local.Month(), local.Day(), clock.Hour(), clock.Minute(), 0, 0, location).UTC(), nil
}

// Human readable duration such as "2 days, 3 hours, 5 minutes"
func Humanize(d time.Duration) string {
	if d < time.Minute {
		return "less than a minute"
	}
	units := []struct {
		name string
		size time.Duration
	}{
		{"day", 24 * time.Hour},
		{"hour", time.Hour},
		{"minute", time.Minute},
	}
	parts := []string{}
	for _, unit := range units {
		n := int(d / unit.size)
		if n == 0 {
			continue
		}
		d -= time.Duration(n) * unit.size
		if n == 1 {
			parts = append(parts, fmt.Sprintf("1 %s", unit.name))
		} else {
			parts = append(parts, fmt.Sprintf("%d %ss", n, unit.name))
		}
	}
	return strings.Join(parts, ", ")
}
