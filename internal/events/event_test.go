package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int, hour int, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func TestNextOccurrence(t *testing.T) {
	tests := []struct {
		name     string
		from     time.Time
		repeat   Repeat
		expected time.Time
		repeats  bool
	}{
		{"daily", date(2024, 1, 31, 20, 0), RepeatDaily, date(2024, 2, 1, 20, 0), true},
		{"weekly", date(2024, 12, 28, 9, 30), RepeatWeekly, date(2025, 1, 4, 9, 30), true},
		{"monthly", date(2024, 3, 15, 18, 0), RepeatMonthly, date(2024, 4, 15, 18, 0), true},
		{"monthly clamps to leap february", date(2024, 1, 31, 18, 0), RepeatMonthly, date(2024, 2, 29, 18, 0), true},
		{"monthly clamps to thirty days", date(2024, 3, 31, 18, 0), RepeatMonthly, date(2024, 4, 30, 18, 0), true},
		{"monthly crosses the year", date(2024, 12, 10, 8, 0), RepeatMonthly, date(2025, 1, 10, 8, 0), true},
		{"yearly", date(2023, 6, 1, 12, 0), RepeatYearly, date(2024, 6, 1, 12, 0), true},
		{"yearly from leap day", date(2024, 2, 29, 12, 0), RepeatYearly, date(2025, 2, 28, 12, 0), true},
		{"none", date(2024, 2, 29, 12, 0), RepeatNone, date(2024, 2, 29, 12, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, repeats := NextOccurrence(tt.from, tt.repeat)
			assert.Equal(t, tt.repeats, repeats)
			assert.True(t, tt.expected.Equal(next), "expected %s, got %s", tt.expected, next)
		})
	}
}

func TestEvent_Next(t *testing.T) {
	time2 := date(2024, 5, 1, 18, 0)
	event := Event{Time1: date(2024, 5, 1, 10, 0), Time2: &time2}

	next, slot, ok := event.Next(date(2024, 5, 1, 9, 0))
	require.True(t, ok)
	assert.Equal(t, 0, slot)
	assert.True(t, next.Equal(event.Time1))

	next, slot, ok = event.Next(date(2024, 5, 1, 10, 0))
	require.True(t, ok)
	assert.Equal(t, 1, slot)
	assert.True(t, next.Equal(time2))

	_, _, ok = event.Next(date(2024, 5, 1, 19, 0))
	assert.False(t, ok)
}

func TestEvent_CatchUp(t *testing.T) {
	time2 := date(2024, 5, 1, 18, 0)
	event := Event{Time1: date(2024, 5, 1, 10, 0), Time2: &time2, Repeat: RepeatDaily}

	moved := event.catchUp(date(2024, 5, 3, 12, 0))
	assert.True(t, moved)
	assert.True(t, date(2024, 5, 4, 10, 0).Equal(event.Time1))
	assert.True(t, date(2024, 5, 3, 18, 0).Equal(*event.Time2))

	assert.False(t, event.catchUp(date(2024, 5, 3, 12, 0)))
}

func TestPlan(t *testing.T) {
	occurrence := date(2024, 5, 1, 12, 0)
	now := date(2024, 5, 1, 11, 15)
	reminders := map[string]time.Time{
		"user1": date(2024, 5, 1, 11, 40),
		"user2": date(2024, 5, 1, 11, 0),  // already gone
		"user3": date(2024, 5, 2, 11, 40), // for a later occurrence
	}

	points := Plan(occurrence, []int{10, 60, 30, 30}, reminders, now)

	require.Len(t, points, 3)
	assert.Equal(t, WakePoint{At: date(2024, 5, 1, 11, 30), Minutes: 30}, points[0])
	assert.Equal(t, WakePoint{At: date(2024, 5, 1, 11, 40), Minutes: 20, UserID: "user1"}, points[1])
	assert.Equal(t, WakePoint{At: date(2024, 5, 1, 11, 50), Minutes: 10}, points[2])
}

func TestParseNotifications(t *testing.T) {
	notifications, err := ParseNotifications(" 10, 60,30 ")
	require.NoError(t, err)
	assert.Equal(t, []int{60, 30, 10}, notifications)

	_, err = ParseNotifications("10,soon")
	assert.Error(t, err)
	_, err = ParseNotifications("-5")
	assert.Error(t, err)
}

func TestParseRepeat(t *testing.T) {
	repeat, err := ParseRepeat("Weekly")
	require.NoError(t, err)
	assert.Equal(t, RepeatWeekly, repeat)

	_, err = ParseRepeat("fortnightly")
	assert.Error(t, err)
}

func TestParseTimes(t *testing.T) {
	madrid, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)

	t1, err := ParseTime("2024-07-01T20:30", madrid)
	require.NoError(t, err)
	assert.True(t, date(2024, 7, 1, 18, 30).Equal(t1))

	t2, err := ParseSecondTime("22:00", t1, madrid)
	require.NoError(t, err)
	assert.True(t, date(2024, 7, 1, 20, 0).Equal(t2))

	_, err = ParseTime("2024-07-01 20:30", madrid)
	assert.Error(t, err)
	_, err = ParseSecondTime("25:99", t1, madrid)
	assert.Error(t, err)
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "less than a minute", Humanize(30*time.Second))
	assert.Equal(t, "1 day, 2 hours, 5 minutes", Humanize(26*time.Hour+5*time.Minute))
	assert.Equal(t, "45 minutes", Humanize(45*time.Minute))
}
