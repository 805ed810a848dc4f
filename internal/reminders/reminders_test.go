package reminders

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriority(t *testing.T) {
	tests := map[string]Priority{
		"none":   PriorityNone,
		"":       PriorityNone,
		"low":    PriorityLow,
		"Medium": PriorityMedium,
		" high ": PriorityHigh,
	}
	for in, want := range tests {
		got, err := ParsePriority(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePriority("urgent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none, low, medium, high")
}

func TestPriorityNamesRoundTrip(t *testing.T) {
	for _, name := range PriorityNames {
		p, err := ParsePriority(name)
		require.NoError(t, err)
		assert.Equal(t, name, p.String())
	}
}

func TestPriorityFromInt(t *testing.T) {
	assert.Equal(t, PriorityNone, PriorityFromInt(0))
	assert.Equal(t, PriorityHigh, PriorityFromInt(1))
	assert.Equal(t, PriorityHigh, PriorityFromInt(3))
	assert.Equal(t, PriorityMedium, PriorityFromInt(5))
	assert.Equal(t, PriorityLow, PriorityFromInt(7))
}

func TestReminderJSON(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	data, err := json.Marshal(Reminder{
		ID:           "rem_1",
		List:         "Groceries",
		Title:        "Milk",
		Priority:     PriorityHigh,
		CreationDate: created,
		LastModified: created,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "rem_1",
		"list": "Groceries",
		"title": "Milk",
		"priority": "high",
		"isCompleted": false,
		"creationDate": "2026-03-01T09:00:00Z",
		"lastModified": "2026-03-01T09:00:00Z"
	}`, string(data))

	var p Priority
	require.NoError(t, json.Unmarshal([]byte(`"low"`), &p))
	assert.Equal(t, PriorityLow, p)
}

func TestFilterMatch(t *testing.T) {
	assert.True(t, Filter{}.Match(false))
	assert.False(t, Filter{}.Match(true))
	assert.True(t, Filter{IncludeCompleted: true}.Match(true))
	assert.True(t, Filter{IncludeCompleted: true}.Match(false))
	assert.True(t, Filter{OnlyCompleted: true, IncludeCompleted: true}.Match(true))
	assert.False(t, Filter{OnlyCompleted: true}.Match(false))
}

func TestDueUpdate(t *testing.T) {
	var unset DueUpdate
	assert.True(t, unset.IsUnset())
	_, ok := unset.Value()
	assert.False(t, ok)

	assert.True(t, ClearDue().IsClear())

	at := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	got, ok := SetDue(at).Value()
	assert.True(t, ok)
	assert.Equal(t, at, got)

	assert.True(t, Edit{}.IsEmpty())
	assert.False(t, Edit{Due: ClearDue()}.IsEmpty())
}

func TestParseRef(t *testing.T) {
	ref, err := ParseRef("3")
	require.NoError(t, err)
	idx, ok := ref.Index()
	assert.True(t, ok)
	assert.Equal(t, 3, idx)

	ref, err = ParseRef(" rem_abc ")
	require.NoError(t, err)
	id, ok := ref.ID()
	assert.True(t, ok)
	assert.Equal(t, "rem_abc", id)

	ref, err = ParseRef("-1")
	require.NoError(t, err)
	_, ok = ref.ID()
	assert.True(t, ok, "negative numbers are not indexes")

	_, err = ParseRef("  ")
	assert.Error(t, err)

	_, err = ParseRef("99999999999999999999999")
	assert.Error(t, err)
}

func TestRefPick(t *testing.T) {
	items := []Reminder{{ID: "a", Title: "first"}, {ID: "b", Title: "second"}}

	got, err := IndexRef(1).Pick(items, "Home")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Title)

	got, err = IDRef("a").Pick(items, "Home")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Title)

	_, err = IndexRef(2).Pick(items, "Home")
	require.ErrorIs(t, err, ErrReminderNotFound)
	assert.Contains(t, err.Error(), "index 2")

	_, err = IDRef("zzz").Pick(items, "Home")
	require.ErrorIs(t, err, ErrReminderNotFound)
}

// countingStore records how many calls run at once.
type countingStore struct {
	Store
	active, peak atomic.Int32
}

func (c *countingStore) Lists(ctx context.Context) ([]List, error) {
	n := c.active.Add(1)
	defer c.active.Add(-1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(2 * time.Millisecond)
	return nil, nil
}

func (c *countingStore) Authorize(context.Context) error {
	return ErrAccessDenied
}

func TestGuardSerializesCalls(t *testing.T) {
	inner := &countingStore{}
	store := Guard(inner)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Lists(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), inner.peak.Load())
	assert.True(t, errors.Is(store.Authorize(context.Background()), ErrAccessDenied))
}
