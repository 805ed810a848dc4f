package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"procdexeh/reminders/internal/mcp"
	"procdexeh/reminders/internal/reminders"
)

// signature every tool implementation must match
type toolFunc func(ctx context.Context, args mcp.Object) (*mcp.ToolResult, error)

// registry holds tool definitions and their implementations
// it implements mcp.ToolHandler
// It is fully built by NewRegistry and read-only afterwards.
type Registry struct {
	store  reminders.Store
	logger *slog.Logger
	tools  map[string]registeredTool
	order  []string
	now    func() time.Time
}

type registeredTool struct {
	def    mcp.ToolDefinition
	invoke toolFunc
}

func NewRegistry(store reminders.Store, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		store:  store,
		logger: logger,
		tools:  make(map[string]registeredTool),
		now:    time.Now,
	}
	// tools/list reports tools in this order.
	r.register(showListsTool, r.showLists)
	r.registerReminderTools()
	r.register(createListTool, r.createList)
	return r
}

func (r *Registry) register(def mcp.ToolDefinition, fn toolFunc) {
	if _, dup := r.tools[def.Name]; dup {
		panic("tools: duplicate tool " + def.Name)
	}
	r.tools[def.Name] = registeredTool{def: def, invoke: fn}
	r.order = append(r.order, def.Name)
}

// ListTools returns every definition in registration order.
func (r *Registry) ListTools() []mcp.ToolDefinition {
	defs := make([]mcp.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].def)
	}
	return defs
}

func (r *Registry) HasTool(name string) bool {
	_, ok := r.tools[name]
	return ok
}

// CallTool validates args against the tool's schema and runs it. Every
// failure, including a panic inside the tool, comes back as an
// error-flagged result.
func (r *Registry) CallTool(ctx context.Context, name string, args mcp.Object) (result *mcp.ToolResult) {
	tool, ok := r.tools[name]
	if !ok {
		return mcp.ErrorResult(fmt.Sprintf("Error: unknown tool %q. Call tools/list to see the available tools.", name))
	}
	if args == nil {
		args = mcp.Object{}
	}

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("tool panicked", "tool", name, "panic", p, "stack", string(debug.Stack()))
			result = errorResult(fmt.Errorf("internal error in %s: %v", name, p))
		}
	}()

	if err := validateArgs(tool.def.InputSchema, args); err != nil {
		return errorResult(err)
	}

	res, err := tool.invoke(ctx, args)
	if err != nil {
		return errorResult(err)
	}
	if res == nil {
		return mcp.TextResult("")
	}
	return res
}

func errorResult(err error) *mcp.ToolResult {
	return mcp.ErrorResult("Error: " + err.Error())
}
