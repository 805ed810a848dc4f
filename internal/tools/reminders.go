package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"procdexeh/reminders/internal/dates"
	"procdexeh/reminders/internal/mcp"
	"procdexeh/reminders/internal/reminders"
)

var (
	listProp = mcp.Property{
		Type:        "string",
		Description: "Name of the reminder list",
	}
	indexProp = mcp.Property{
		Type:        "string",
		Description: "0-based index of the reminder as shown by show_reminders, or the reminder's id",
	}
	notesProp = mcp.Property{
		Type:        "string",
		Description: "Notes to attach to the reminder",
	}
	dueDateProp = mcp.Property{
		Type:        "string",
		Description: "Due date: today, tomorrow, next week, YYYY-MM-DD, YYYY-MM-DD HH:MM, MM/DD/YYYY or an RFC 3339 timestamp",
	}
	priorityProp = mcp.Property{
		Type:        "string",
		Description: "Priority of the reminder",
		Enum:        reminders.PriorityNames,
	}
	includeCompletedProp = mcp.Property{
		Type:        "boolean",
		Description: "Include completed reminders",
	}
	onlyCompletedProp = mcp.Property{
		Type:        "boolean",
		Description: "Show only completed reminders",
	}
)

func resultJSON(v any) (*mcp.ToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.TextResult(string(data)), nil
}

// indexedReminder carries the position callers pass back as "index". It is
// left out when the listing mixes open and completed reminders, since no
// tool resolves an index against that mix.
type indexedReminder struct {
	Index *int `json:"index,omitempty"`
	reminders.Reminder
}

func filterArgs(args mcp.Object) reminders.Filter {
	return reminders.Filter{
		IncludeCompleted: boolArg(args, "include_completed"),
		OnlyCompleted:    boolArg(args, "only_completed"),
	}
}

func refArg(args mcp.Object) (reminders.Ref, error) {
	s, _ := stringArg(args, "index")
	ref, err := reminders.ParseRef(s)
	if err != nil {
		return reminders.Ref{}, fmt.Errorf("invalid parameter 'index': %w", err)
	}
	return ref, nil
}

func (r *Registry) dueArg(s string) (reminders.DueUpdate, error) {
	if strings.EqualFold(strings.TrimSpace(s), "none") {
		return reminders.ClearDue(), nil
	}
	at, ok := dates.ParseAt(s, r.now())
	if !ok {
		return reminders.DueUpdate{}, fmt.Errorf("could not parse due_date %q; use today, tomorrow, next week, YYYY-MM-DD or YYYY-MM-DD HH:MM", s)
	}
	return reminders.SetDue(at), nil
}

func (r *Registry) showReminders(ctx context.Context, args mcp.Object) (*mcp.ToolResult, error) {
	list, _ := stringArg(args, "list")
	// The store reads an empty name as every list.
	if strings.TrimSpace(list) == "" {
		return nil, fmt.Errorf("%w: no list named %q", reminders.ErrListNotFound, list)
	}

	filter := filterArgs(args)
	items, err := r.store.Reminders(ctx, list, filter)
	if err != nil {
		return nil, err
	}

	mixed := filter.IncludeCompleted && !filter.OnlyCompleted
	out := make([]indexedReminder, 0, len(items))
	for i, item := range items {
		entry := indexedReminder{Reminder: item}
		if !mixed {
			entry.Index = &i
		}
		out = append(out, entry)
	}
	return resultJSON(out)
}

func (r *Registry) showAllReminders(ctx context.Context, args mcp.Object) (*mcp.ToolResult, error) {
	items, err := r.store.Reminders(ctx, "", filterArgs(args))
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []reminders.Reminder{}
	}
	return resultJSON(items)
}

func (r *Registry) addReminder(ctx context.Context, args mcp.Object) (*mcp.ToolResult, error) {
	list, _ := stringArg(args, "list")
	title, _ := stringArg(args, "title")
	draft := reminders.Draft{Title: title}

	if notes, ok := stringArg(args, "notes"); ok {
		draft.Notes = notes
	}
	if s, ok := stringArg(args, "due_date"); ok {
		at, ok := dates.ParseAt(s, r.now())
		if !ok {
			return nil, fmt.Errorf("could not parse due_date %q; use today, tomorrow, next week, YYYY-MM-DD or YYYY-MM-DD HH:MM", s)
		}
		draft.DueDate = &at
	}
	if s, ok := stringArg(args, "priority"); ok {
		p, err := reminders.ParsePriority(s)
		if err != nil {
			return nil, err
		}
		draft.Priority = p
	}

	item, err := r.store.CreateReminder(ctx, draft, list)
	if err != nil {
		return nil, err
	}
	return resultJSON(item)
}

func (r *Registry) setCompleted(completed bool) toolFunc {
	return func(ctx context.Context, args mcp.Object) (*mcp.ToolResult, error) {
		list, _ := stringArg(args, "list")
		ref, err := refArg(args)
		if err != nil {
			return nil, err
		}
		item, err := r.store.SetCompleted(ctx, completed, ref, list)
		if err != nil {
			return nil, err
		}
		return resultJSON(item)
	}
}

func (r *Registry) deleteReminder(ctx context.Context, args mcp.Object) (*mcp.ToolResult, error) {
	list, _ := stringArg(args, "list")
	ref, err := refArg(args)
	if err != nil {
		return nil, err
	}
	title, err := r.store.DeleteReminder(ctx, ref, list)
	if err != nil {
		return nil, err
	}
	return resultJSON(map[string]string{"deleted": title})
}

func (r *Registry) editReminder(ctx context.Context, args mcp.Object) (*mcp.ToolResult, error) {
	list, _ := stringArg(args, "list")
	ref, err := refArg(args)
	if err != nil {
		return nil, err
	}

	var edit reminders.Edit
	if title, ok := stringArg(args, "title"); ok {
		edit.Title = &title
	}
	if notes, ok := stringArg(args, "notes"); ok {
		edit.Notes = &notes
	}
	if s, ok := stringArg(args, "due_date"); ok {
		if edit.Due, err = r.dueArg(s); err != nil {
			return nil, err
		}
	}
	if s, ok := stringArg(args, "priority"); ok {
		p, err := reminders.ParsePriority(s)
		if err != nil {
			return nil, err
		}
		edit.Priority = &p
	}
	if edit.IsEmpty() {
		return nil, fmt.Errorf("nothing to edit: provide at least one of title, notes, due_date, priority")
	}

	item, err := r.store.EditReminder(ctx, ref, list, edit)
	if err != nil {
		return nil, err
	}
	return resultJSON(item)
}

func (r *Registry) registerReminderTools() {
	r.register(mcp.ToolDefinition{
		Name:        "show_reminders",
		Description: "Show the reminders in a list. Open reminders carry the index complete_reminder, edit_reminder and delete_reminder accept; with only_completed they carry the index uncomplete_reminder accepts. With include_completed no index is given; use the id instead.",
		InputSchema: mcp.ObjectSchema(map[string]mcp.Property{
			"list":              listProp,
			"include_completed": includeCompletedProp,
			"only_completed":    onlyCompletedProp,
		}, "list"),
	}, r.showReminders)

	r.register(mcp.ToolDefinition{
		Name:        "show_all_reminders",
		Description: "Show the reminders of every list",
		InputSchema: mcp.ObjectSchema(map[string]mcp.Property{
			"include_completed": includeCompletedProp,
			"only_completed":    onlyCompletedProp,
		}),
	}, r.showAllReminders)

	r.register(mcp.ToolDefinition{
		Name:        "add_reminder",
		Description: "Add a reminder to a list",
		InputSchema: mcp.ObjectSchema(map[string]mcp.Property{
			"list":     listProp,
			"title":    {Type: "string", Description: "Title of the reminder"},
			"notes":    notesProp,
			"due_date": dueDateProp,
			"priority": priorityProp,
		}, "list", "title"),
	}, r.addReminder)

	r.register(mcp.ToolDefinition{
		Name:        "complete_reminder",
		Description: "Mark a reminder as completed. The index counts incomplete reminders.",
		InputSchema: mcp.ObjectSchema(map[string]mcp.Property{
			"list":  listProp,
			"index": indexProp,
		}, "list", "index"),
	}, r.setCompleted(true))

	r.register(mcp.ToolDefinition{
		Name:        "uncomplete_reminder",
		Description: "Mark a completed reminder as not completed. The index counts completed reminders, as shown with only_completed.",
		InputSchema: mcp.ObjectSchema(map[string]mcp.Property{
			"list":  listProp,
			"index": indexProp,
		}, "list", "index"),
	}, r.setCompleted(false))

	r.register(mcp.ToolDefinition{
		Name:        "delete_reminder",
		Description: "Delete a reminder. The index counts incomplete reminders.",
		InputSchema: mcp.ObjectSchema(map[string]mcp.Property{
			"list":  listProp,
			"index": indexProp,
		}, "list", "index"),
	}, r.deleteReminder)

	r.register(mcp.ToolDefinition{
		Name:        "edit_reminder",
		Description: "Change the title, notes, due date or priority of a reminder. The index counts incomplete reminders.",
		InputSchema: mcp.ObjectSchema(map[string]mcp.Property{
			"list":     listProp,
			"index":    indexProp,
			"title":    {Type: "string", Description: "New title"},
			"notes":    {Type: "string", Description: "New notes"},
			"due_date": {Type: "string", Description: dueDateProp.Description + "; none clears the due date"},
			"priority": priorityProp,
		}, "list", "index"),
	}, r.editReminder)
}
