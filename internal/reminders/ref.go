package reminders

import (
	"fmt"
	"strconv"
	"strings"
)

// Ref points at a reminder either by zero-based position in a fetched
// sequence or by its stable id.
type Ref struct {
	index int
	id    string
	byID  bool
}

func IndexRef(i int) Ref  { return Ref{index: i} }
func IDRef(id string) Ref { return Ref{id: id, byID: true} }

// ParseRef reads all-digit text as an index and anything else as an id.
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Ref{}, fmt.Errorf("empty reminder reference")
	}
	if strings.Trim(s, "0123456789") != "" {
		return IDRef(s), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return Ref{}, fmt.Errorf("invalid index %q: %w", s, err)
	}
	return IndexRef(n), nil
}

func (r Ref) Index() (int, bool) { return r.index, !r.byID }
func (r Ref) ID() (string, bool) { return r.id, r.byID }

func (r Ref) String() string {
	if r.byID {
		return "id " + r.id
	}
	return "index " + strconv.Itoa(r.index)
}

// Pick resolves r against items. Index refs use items' order; id refs
// match anywhere in items.
func (r Ref) Pick(items []Reminder, list string) (Reminder, error) {
	if r.byID {
		for _, item := range items {
			if item.ID == r.id {
				return item, nil
			}
		}
		return Reminder{}, fmt.Errorf("%w: no reminder with id %q in list %q", ErrReminderNotFound, r.id, list)
	}
	if r.index < 0 || r.index >= len(items) {
		return Reminder{}, fmt.Errorf("%w: no reminder at index %d in list %q (%d available)", ErrReminderNotFound, r.index, list, len(items))
	}
	return items[r.index], nil
}
