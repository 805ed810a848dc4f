// Package reminders defines the task-list model and the Store capability
// the tool handlers call into.
package reminders

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Priority follows the platform convention: 0 is unset, 1 is the highest
// and 9 the lowest.
type Priority int

const (
	PriorityNone   Priority = 0
	PriorityHigh   Priority = 1
	PriorityMedium Priority = 5
	PriorityLow    Priority = 9
)

// PriorityNames is the vocabulary accepted by ParsePriority, lowest first.
var PriorityNames = []string{"none", "low", "medium", "high"}

func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return PriorityNone, nil
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	default:
		return PriorityNone, fmt.Errorf("invalid priority %q (want one of: %s)", s, strings.Join(PriorityNames, ", "))
	}
}

// PriorityFromInt maps a stored value onto the nearest named priority.
func PriorityFromInt(n int) Priority {
	switch {
	case n <= 0:
		return PriorityNone
	case n <= 4:
		return PriorityHigh
	case n == 5:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return "none"
	}
}

func (p Priority) MarshalJSON() ([]byte, error) { return json.Marshal(p.String()) }

func (p *Priority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParsePriority(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func (p Priority) MarshalYAML() (any, error) { return p.String(), nil }

// List is a named collection of reminders.
type List struct {
	ID     string `json:"id" yaml:"id"`
	Title  string `json:"title" yaml:"title"`
	Source string `json:"source" yaml:"source"`
}

// Reminder is a snapshot of one item; mutating it changes nothing in the store.
type Reminder struct {
	ID             string     `json:"id" yaml:"id"`
	List           string     `json:"list" yaml:"list"`
	Title          string     `json:"title" yaml:"title"`
	Notes          string     `json:"notes,omitempty" yaml:"notes,omitempty"`
	DueDate        *time.Time `json:"dueDate,omitempty" yaml:"due_date,omitempty"`
	Priority       Priority   `json:"priority" yaml:"priority"`
	Completed      bool       `json:"isCompleted" yaml:"completed"`
	CompletionDate *time.Time `json:"completionDate,omitempty" yaml:"completion_date,omitempty"`
	CreationDate   time.Time  `json:"creationDate" yaml:"creation_date"`
	LastModified   time.Time  `json:"lastModified" yaml:"last_modified"`
}

// Filter selects reminders by completion state. OnlyCompleted wins over
// IncludeCompleted; the zero value selects incomplete reminders.
type Filter struct {
	IncludeCompleted bool
	OnlyCompleted    bool
}

func (f Filter) Match(completed bool) bool {
	switch {
	case f.OnlyCompleted:
		return completed
	case f.IncludeCompleted:
		return true
	default:
		return !completed
	}
}

// Draft holds the fields of a reminder to be created.
type Draft struct {
	Title    string
	Notes    string
	DueDate  *time.Time
	Priority Priority
}

type dueAction int

const (
	dueUnset dueAction = iota
	dueClear
	dueSet
)

// DueUpdate distinguishes "leave the due date alone" (the zero value) from
// "clear it" and "set it".
type DueUpdate struct {
	action dueAction
	at     time.Time
}

func ClearDue() DueUpdate          { return DueUpdate{action: dueClear} }
func SetDue(t time.Time) DueUpdate { return DueUpdate{action: dueSet, at: t} }

func (d DueUpdate) IsUnset() bool { return d.action == dueUnset }
func (d DueUpdate) IsClear() bool { return d.action == dueClear }

// Value returns the new due date when one is being set.
func (d DueUpdate) Value() (time.Time, bool) { return d.at, d.action == dueSet }

// Edit lists the changes to apply to an existing reminder; nil fields and
// an unset Due are left unchanged.
type Edit struct {
	Title    *string
	Notes    *string
	Due      DueUpdate
	Priority *Priority
}

func (e Edit) IsEmpty() bool {
	return e.Title == nil && e.Notes == nil && e.Due.IsUnset() && e.Priority == nil
}
