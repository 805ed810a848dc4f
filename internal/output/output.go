// Package output renders lists and reminders for the command line.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"procdexeh/reminders/internal/reminders"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json or yaml)", s)
	}
}

var (
	indexStyle   = lipgloss.NewStyle().Faint(true)
	doneStyle    = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	priorityStyles = map[reminders.Priority]lipgloss.Style{
		reminders.PriorityHigh:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		reminders.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		reminders.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	}
)

// Printer writes values in one format.
type Printer struct {
	w      io.Writer
	format Format
	now    func() time.Time
}

func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{w: w, format: format, now: time.Now}
}

func (p *Printer) structured(v any) (bool, error) {
	switch p.format {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, err
		}
		_, err = fmt.Fprintln(p.w, string(data))
		return true, err
	case FormatYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	default:
		return false, nil
	}
}

func (p *Printer) Lists(lists []reminders.List) error {
	if ok, err := p.structured(lists); ok {
		return err
	}
	for _, l := range lists {
		if _, err := fmt.Fprintf(p.w, "%s %s\n", l.Title, indexStyle.Render("("+l.Source+")")); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) List(l reminders.List) error {
	if ok, err := p.structured(l); ok {
		return err
	}
	_, err := fmt.Fprintf(p.w, "Created list %s\n", l.Title)
	return err
}

// Reminders prints items. Text output numbers them by position, which is
// the index the complete/delete/edit commands accept; withList prefixes
// each line with its list instead.
func (p *Printer) Reminders(items []reminders.Reminder, withList bool) error {
	if ok, err := p.structured(items); ok {
		return err
	}
	for i, item := range items {
		prefix := indexStyle.Render(fmt.Sprintf("%d:", i))
		if withList {
			prefix = indexStyle.Render(item.List + ":")
		}
		if _, err := fmt.Fprintf(p.w, "%s %s\n", prefix, p.describe(item)); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) Reminder(item reminders.Reminder) error {
	if ok, err := p.structured(item); ok {
		return err
	}
	_, err := fmt.Fprintln(p.w, p.describe(item))
	return err
}

// Message prints a status line; structured formats wrap it in an object.
func (p *Printer) Message(key, value string) error {
	if ok, err := p.structured(map[string]string{key: value}); ok {
		return err
	}
	_, err := fmt.Fprintln(p.w, value)
	return err
}

func (p *Printer) describe(item reminders.Reminder) string {
	var b strings.Builder
	if item.Completed {
		b.WriteString(doneStyle.Render(item.Title))
	} else {
		b.WriteString(item.Title)
	}

	if item.DueDate != nil {
		now := p.now()
		rel := humanize.RelTime(*item.DueDate, now, "ago", "from now")
		due := "(due " + rel + ")"
		if !item.Completed && item.DueDate.Before(now) {
			due = overdueStyle.Render(due)
		}
		b.WriteString(" " + due)
	}

	if style, ok := priorityStyles[item.Priority]; ok {
		b.WriteString(" " + style.Render("(priority: "+item.Priority.String()+")"))
	}

	if item.Notes != "" {
		b.WriteString("\n   " + indexStyle.Render(item.Notes))
	}
	return b.String()
}
