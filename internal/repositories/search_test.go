package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSearchConditionsQueryOnly(t *testing.T) {
	where, args := buildSearchConditions(5, 1, SearchFilter{Query: "hello"}, time.Now())

	assert.Equal(t, []string{"conversation_id=$1", "is_deleted = FALSE", "content ILIKE $2"}, where)
	require.Len(t, args, 2)
	assert.Equal(t, 5, args[0])
	assert.Equal(t, "%hello%", args[1])
}

func TestBuildSearchConditionsAllPredicates(t *testing.T) {
	now := time.Date(2024, time.March, 15, 13, 30, 0, 0, time.UTC)
	filter := SearchFilter{Query: "deep work", Type: "text", Sender: SenderFilterThem, DateRange: DateRangeToday}

	where, args := buildSearchConditions(5, 1, filter, now)

	assert.Equal(t, []string{
		"conversation_id=$1",
		"is_deleted = FALSE",
		"content ILIKE $2",
		"message_type=$3",
		"sender_id<>$4",
		"created_at >= $5",
	}, where)
	require.Len(t, args, 5)
	assert.Equal(t, "text", args[2])
	assert.Equal(t, 1, args[3])
	assert.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), args[4])
}

func TestBuildSearchConditionsAllSentinelsSkip(t *testing.T) {
	filter := SearchFilter{Query: "q", Type: "all", Sender: SenderFilterAll, DateRange: DateRangeAll}

	where, _ := buildSearchConditions(5, 1, filter, time.Now())

	assert.Equal(t, []string{"conversation_id=$1", "is_deleted = FALSE", "content ILIKE $2"}, where)
}

func TestBuildSearchConditionsSenderMe(t *testing.T) {
	where, args := buildSearchConditions(5, 7, SearchFilter{Query: "q", Sender: SenderFilterMe}, time.Now())

	assert.Contains(t, where, "sender_id=$3")
	assert.Equal(t, 7, args[2])
}

func TestDateRangeStart(t *testing.T) {
	now := time.Date(2024, time.March, 15, 13, 30, 0, 0, time.UTC)

	today, ok := dateRangeStart(DateRangeToday, now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), today)

	week, ok := dateRangeStart(DateRangeWeek, now)
	require.True(t, ok)
	assert.Equal(t, now.Add(-7*24*time.Hour), week)

	month, ok := dateRangeStart(DateRangeMonth, now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), month)

	_, ok = dateRangeStart(DateRangeAll, now)
	assert.False(t, ok)
}
