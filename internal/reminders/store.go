package reminders

import (
	"context"
	"sync"
)

// Store is the task-list capability. Implementations report business
// failures by wrapping the sentinels in errors.go.
type Store interface {
	// Authorize checks that the store may be read and written.
	Authorize(ctx context.Context) error
	Lists(ctx context.Context) ([]List, error)
	// Reminders fetches the reminders of list (every list when list is
	// empty) that match filter, in creation order.
	Reminders(ctx context.Context, list string, filter Filter) ([]Reminder, error)
	CreateReminder(ctx context.Context, draft Draft, list string) (*Reminder, error)
	// SetCompleted resolves index refs against the incomplete reminders
	// when completing and against the completed ones when uncompleting.
	SetCompleted(ctx context.Context, completed bool, ref Ref, list string) (*Reminder, error)
	// EditReminder and DeleteReminder resolve index refs against the
	// incomplete reminders of list.
	EditReminder(ctx context.Context, ref Ref, list string, edit Edit) (*Reminder, error)
	DeleteReminder(ctx context.Context, ref Ref, list string) (string, error)
	// CreateList creates a list in source, or in the store's default
	// source when source is empty.
	CreateList(ctx context.Context, name, source string) (*List, error)
}

// Guard serializes every call into s, so at most one operation runs
// against the underlying store at a time.
func Guard(s Store) Store {
	return &guarded{next: s}
}

type guarded struct {
	mu   sync.Mutex
	next Store
}

func (g *guarded) Authorize(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.next.Authorize(ctx)
}

func (g *guarded) Lists(ctx context.Context) ([]List, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.next.Lists(ctx)
}

func (g *guarded) Reminders(ctx context.Context, list string, filter Filter) ([]Reminder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.next.Reminders(ctx, list, filter)
}

func (g *guarded) CreateReminder(ctx context.Context, draft Draft, list string) (*Reminder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.next.CreateReminder(ctx, draft, list)
}

func (g *guarded) SetCompleted(ctx context.Context, completed bool, ref Ref, list string) (*Reminder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.next.SetCompleted(ctx, completed, ref, list)
}

func (g *guarded) EditReminder(ctx context.Context, ref Ref, list string, edit Edit) (*Reminder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.next.EditReminder(ctx, ref, list, edit)
}

func (g *guarded) DeleteReminder(ctx context.Context, ref Ref, list string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.next.DeleteReminder(ctx, ref, list)
}

func (g *guarded) CreateList(ctx context.Context, name, source string) (*List, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.next.CreateList(ctx, name, source)
}
