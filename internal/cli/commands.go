package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"procdexeh/reminders/internal/dates"
	"procdexeh/reminders/internal/reminders"
)

type filterFlags struct {
	includeCompleted bool
	onlyCompleted    bool
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.includeCompleted, "include-completed", false, "Include completed reminders")
	cmd.Flags().BoolVar(&f.onlyCompleted, "only-completed", false, "Show only completed reminders")
	cmd.MarkFlagsMutuallyExclusive("include-completed", "only-completed")
}

func (f *filterFlags) filter() reminders.Filter {
	return reminders.Filter{IncludeCompleted: f.includeCompleted, OnlyCompleted: f.onlyCompleted}
}

func parseDue(s string) (reminders.DueUpdate, error) {
	if strings.EqualFold(strings.TrimSpace(s), "none") {
		return reminders.ClearDue(), nil
	}
	at, ok := dates.Parse(s)
	if !ok {
		return reminders.DueUpdate{}, fmt.Errorf("could not parse due date %q", s)
	}
	return reminders.SetDue(at), nil
}

func (a *app) newShowListsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-lists",
		Short: "Show all reminder lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			lists, err := store.Lists(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer(cmd).Lists(lists)
		},
	}
}

func (a *app) newShowCmd() *cobra.Command {
	var ff filterFlags
	cmd := &cobra.Command{
		Use:   "show <list>",
		Short: "Show the reminders in a list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// An empty name would read every list.
			if strings.TrimSpace(args[0]) == "" {
				return fmt.Errorf("%w: no list named %q", reminders.ErrListNotFound, args[0])
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			items, err := store.Reminders(cmd.Context(), args[0], ff.filter())
			if err != nil {
				return err
			}
			return a.printer(cmd).Reminders(items, false)
		},
	}
	ff.bind(cmd)
	return cmd
}

func (a *app) newShowAllCmd() *cobra.Command {
	var ff filterFlags
	cmd := &cobra.Command{
		Use:   "show-all",
		Short: "Show the reminders of every list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			items, err := store.Reminders(cmd.Context(), "", ff.filter())
			if err != nil {
				return err
			}
			return a.printer(cmd).Reminders(items, true)
		},
	}
	ff.bind(cmd)
	return cmd
}

func (a *app) newAddCmd() *cobra.Command {
	var notes, due, priority string
	cmd := &cobra.Command{
		Use:   "add <list> <title...>",
		Short: "Add a reminder to a list",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft := reminders.Draft{
				Title: strings.Join(args[1:], " "),
				Notes: notes,
			}
			if due != "" {
				at, ok := dates.Parse(due)
				if !ok {
					return fmt.Errorf("could not parse due date %q", due)
				}
				draft.DueDate = &at
			}
			p, err := reminders.ParsePriority(priority)
			if err != nil {
				return err
			}
			draft.Priority = p

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			item, err := store.CreateReminder(cmd.Context(), draft, args[0])
			if err != nil {
				return err
			}
			return a.printer(cmd).Reminder(*item)
		},
	}
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Notes to attach")
	cmd.Flags().StringVarP(&due, "due-date", "d", "", "Due date, e.g. tomorrow or 2026-05-01")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Priority: none, low, medium or high")
	return cmd
}

func (a *app) newCompleteCmd(completed bool) *cobra.Command {
	use, short := "complete", "Mark a reminder as completed"
	if !completed {
		use, short = "uncomplete", "Mark a completed reminder as not completed"
	}
	return &cobra.Command{
		Use:   use + " <list> <index>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := reminders.ParseRef(args[1])
			if err != nil {
				return err
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			item, err := store.SetCompleted(cmd.Context(), completed, ref, args[0])
			if err != nil {
				return err
			}
			return a.printer(cmd).Reminder(*item)
		},
	}
}

func (a *app) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <list> <index>",
		Short: "Delete a reminder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := reminders.ParseRef(args[1])
			if err != nil {
				return err
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			title, err := store.DeleteReminder(cmd.Context(), ref, args[0])
			if err != nil {
				return err
			}
			return a.printer(cmd).Message("deleted", title)
		},
	}
}

func (a *app) newEditCmd() *cobra.Command {
	var notes, due, priority string
	cmd := &cobra.Command{
		Use:   "edit <list> <index> [title...]",
		Short: "Change the title, notes, due date or priority of a reminder",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := reminders.ParseRef(args[1])
			if err != nil {
				return err
			}

			var edit reminders.Edit
			if len(args) > 2 {
				title := strings.Join(args[2:], " ")
				edit.Title = &title
			}
			if cmd.Flags().Changed("notes") {
				edit.Notes = &notes
			}
			if cmd.Flags().Changed("due-date") {
				if edit.Due, err = parseDue(due); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("priority") {
				p, err := reminders.ParsePriority(priority)
				if err != nil {
					return err
				}
				edit.Priority = &p
			}
			if edit.IsEmpty() {
				return fmt.Errorf("nothing to edit: give a new title or one of --notes, --due-date, --priority")
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			item, err := store.EditReminder(cmd.Context(), ref, args[0], edit)
			if err != nil {
				return err
			}
			return a.printer(cmd).Reminder(*item)
		},
	}
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "New notes")
	cmd.Flags().StringVarP(&due, "due-date", "d", "", `New due date, or "none" to clear it`)
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "New priority: none, low, medium or high")
	return cmd
}

func (a *app) newNewListCmd() *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "new-list <name>",
		Short: "Create a reminder list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			l, err := store.CreateList(cmd.Context(), args[0], source)
			if err != nil {
				return err
			}
			return a.printer(cmd).List(*l)
		},
	}
	cmd.Flags().StringVarP(&source, "source", "s", "", "Account to create the list in")
	return cmd
}
