package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartAndEndOfDay(t *testing.T) {
	moment := DateTime(2026, 3, 15, 14, 30, 45)

	start := StartOfDay(moment)
	assert.Equal(t, DateTime(2026, 3, 15, 0, 0, 0), start)

	end := EndOfDay(moment)
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 59, end.Minute())
	assert.Equal(t, 15, end.Day())
}

func TestStartOfDayNormalizesZone(t *testing.T) {
	// 23:30 in UTC+5 is 18:30 UTC on the same date.
	zone := time.FixedZone("UTC+5", 5*60*60)
	moment := time.Date(2026, 3, 15, 23, 30, 0, 0, zone)

	assert.Equal(t, Date(2026, 3, 15), StartOfDay(moment))
}

func TestStartOfWeek(t *testing.T) {
	// 2026-03-18 is a Wednesday.
	wednesday := DateTime(2026, 3, 18, 12, 0, 0)
	assert.Equal(t, Date(2026, 3, 16), StartOfWeek(wednesday))

	// Sunday belongs to the week starting the previous Monday.
	sunday := DateTime(2026, 3, 22, 12, 0, 0)
	assert.Equal(t, Date(2026, 3, 16), StartOfWeek(sunday))

	monday := DateTime(2026, 3, 16, 0, 0, 0)
	assert.Equal(t, Date(2026, 3, 16), StartOfWeek(monday))
}

func TestEndOfMonth(t *testing.T) {
	assert.Equal(t, 29, EndOfMonth(Date(2024, 2, 10)).Day()) // leap year
	assert.Equal(t, 28, EndOfMonth(Date(2026, 2, 10)).Day())
	assert.Equal(t, 31, EndOfMonth(Date(2026, 12, 1)).Day())
}

func TestIsSameDay(t *testing.T) {
	morning := DateTime(2026, 3, 15, 1, 0, 0)
	evening := DateTime(2026, 3, 15, 23, 0, 0)
	nextDay := DateTime(2026, 3, 16, 0, 30, 0)

	assert.True(t, IsSameDay(morning, evening))
	assert.False(t, IsSameDay(evening, nextDay))
}

func TestIsSameDayComparesUTCDays(t *testing.T) {
	// 02:00 in UTC+5 on March 16 is 21:00 UTC on March 15.
	zone := time.FixedZone("UTC+5", 5*60*60)
	local := time.Date(2026, 3, 16, 2, 0, 0, 0, zone)
	utc := DateTime(2026, 3, 15, 20, 0, 0)

	assert.True(t, IsSameDay(local, utc))
}

func TestIsConsecutiveDay(t *testing.T) {
	day := Date(2026, 3, 15)

	assert.True(t, IsConsecutiveDay(day, Date(2026, 3, 16)))
	assert.False(t, IsConsecutiveDay(day, Date(2026, 3, 17)))
	assert.False(t, IsConsecutiveDay(day, day))

	// Year boundary.
	assert.True(t, IsConsecutiveDay(Date(2025, 12, 31), Date(2026, 1, 1)))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, DaysBetween(Date(2026, 3, 15), DateTime(2026, 3, 15, 23, 59, 0)))
	assert.Equal(t, 1, DaysBetween(DateTime(2026, 3, 15, 23, 0, 0), DateTime(2026, 3, 16, 1, 0, 0)))
	assert.Equal(t, 31, DaysBetween(Date(2026, 3, 1), Date(2026, 4, 1)))

	// Order does not matter.
	assert.Equal(t, 5, DaysBetween(Date(2026, 3, 20), Date(2026, 3, 15)))
}

func TestMorningAndEveningWindows(t *testing.T) {
	assert.True(t, IsMorning(DateTime(2026, 3, 15, 6, 30, 0)))
	assert.True(t, IsMorning(DateTime(2026, 3, 15, 8, 59, 0)))
	assert.False(t, IsMorning(DateTime(2026, 3, 15, 9, 0, 0)))

	assert.True(t, IsEvening(DateTime(2026, 3, 15, 21, 0, 0)))
	assert.True(t, IsEvening(DateTime(2026, 3, 15, 23, 30, 0)))
	assert.False(t, IsEvening(DateTime(2026, 3, 15, 20, 59, 0)))
}

func TestIsWeekend(t *testing.T) {
	assert.True(t, IsWeekend(Date(2026, 3, 21)))  // Saturday
	assert.True(t, IsWeekend(Date(2026, 3, 22)))  // Sunday
	assert.False(t, IsWeekend(Date(2026, 3, 20))) // Friday
}

func TestFormatting(t *testing.T) {
	moment := DateTime(2026, 3, 15, 14, 30, 45)

	assert.Equal(t, "2026-03-15", FormatDateStr(moment))
	assert.Equal(t, "2026-03-15 14:30", FormatDateTimeStr(moment))
}

func TestFormatRelative(t *testing.T) {
	now := Now()

	assert.Equal(t, "just now", FormatRelative(now.Add(-30*time.Second)))
	assert.Equal(t, "5m ago", FormatRelative(now.Add(-5*time.Minute)))
	assert.Equal(t, "3h ago", FormatRelative(now.Add(-3*time.Hour)))
	assert.Equal(t, "yesterday", FormatRelative(now.Add(-25*time.Hour)))
	assert.Equal(t, "3d ago", FormatRelative(now.Add(-3*24*time.Hour)))
	assert.Equal(t, "2w ago", FormatRelative(now.Add(-15*24*time.Hour)))

	assert.Equal(t, "in 2h", FormatRelative(now.Add(2*time.Hour+time.Minute)))
}

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate("2026-03-15")
	assert.NoError(t, err)
	assert.Equal(t, Date(2026, 3, 15), parsed)
	assert.Equal(t, time.UTC, parsed.Location())

	_, err = ParseDate("15.03.2026")
	assert.Error(t, err)
}
