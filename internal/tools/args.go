package tools

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"procdexeh/reminders/internal/mcp"
)

// validateArgs checks required properties, declared types and enums.
// Properties the schema does not declare are ignored. A string property
// also accepts an integer, read in decimal.
func validateArgs(schema mcp.InputSchema, args mcp.Object) error {
	for _, name := range schema.Required {
		if v, ok := args[name]; !ok || isNull(v) {
			return fmt.Errorf("missing required parameter '%s'", name)
		}
	}

	for _, name := range slices.Sorted(maps.Keys(args)) {
		prop, ok := schema.Properties[name]
		if !ok || isNull(args[name]) {
			continue
		}
		if err := checkProperty(name, prop, args[name]); err != nil {
			return err
		}
	}
	return nil
}

func checkProperty(name string, prop mcp.Property, v mcp.Value) error {
	switch prop.Type {
	case "string":
		s, ok := asString(v)
		if !ok {
			return fmt.Errorf("parameter '%s' must be a string, got %s", name, mcp.KindOf(v))
		}
		if len(prop.Enum) > 0 && !slices.Contains(prop.Enum, strings.ToLower(s)) {
			return fmt.Errorf("parameter '%s' must be one of: %s (got %q)", name, strings.Join(prop.Enum, ", "), s)
		}
	case "boolean":
		if _, ok := v.(mcp.Bool); !ok {
			return fmt.Errorf("parameter '%s' must be a boolean, got %s", name, mcp.KindOf(v))
		}
	case "integer":
		if _, ok := v.(mcp.Int); !ok {
			return fmt.Errorf("parameter '%s' must be an integer, got %s", name, mcp.KindOf(v))
		}
	case "number":
		switch v.(type) {
		case mcp.Int, mcp.Float:
		default:
			return fmt.Errorf("parameter '%s' must be a number, got %s", name, mcp.KindOf(v))
		}
	}
	return nil
}

func isNull(v mcp.Value) bool {
	switch v.(type) {
	case nil, mcp.Null:
		return true
	}
	return false
}

func asString(v mcp.Value) (string, bool) {
	switch v := v.(type) {
	case mcp.String:
		return string(v), true
	case mcp.Int:
		return strconv.FormatInt(int64(v), 10), true
	}
	return "", false
}

// stringArg returns the named argument and whether it was supplied.
func stringArg(args mcp.Object, name string) (string, bool) {
	v, ok := args[name]
	if !ok || isNull(v) {
		return "", false
	}
	return asString(v)
}

func boolArg(args mcp.Object, name string) bool {
	b, _ := args[name].(mcp.Bool)
	return bool(b)
}
