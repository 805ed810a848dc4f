package tools

import (
	"context"

	"procdexeh/reminders/internal/mcp"
	"procdexeh/reminders/internal/reminders"
)

func (r *Registry) showLists(ctx context.Context, _ mcp.Object) (*mcp.ToolResult, error) {
	lists, err := r.store.Lists(ctx)
	if err != nil {
		return nil, err
	}
	if lists == nil {
		lists = []reminders.List{}
	}
	return resultJSON(lists)
}

func (r *Registry) createList(ctx context.Context, args mcp.Object) (*mcp.ToolResult, error) {
	name, _ := stringArg(args, "name")
	source, _ := stringArg(args, "source")

	l, err := r.store.CreateList(ctx, name, source)
	if err != nil {
		return nil, err
	}
	return resultJSON(l)
}

var showListsTool = mcp.ToolDefinition{
	Name:        "show_lists",
	Description: "Show all reminder lists",
	InputSchema: mcp.ObjectSchema(nil),
}

var createListTool = mcp.ToolDefinition{
	Name:        "create_list",
	Description: "Create a new reminder list",
	InputSchema: mcp.ObjectSchema(map[string]mcp.Property{
		"name": {
			Type:        "string",
			Description: "Name of the new list",
		},
		"source": {
			Type:        "string",
			Description: "Account to create the list in; defaults to the local account",
		},
	}, "name"),
}
