package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/xid"
	_ "modernc.org/sqlite"

	"procdexeh/reminders/internal/reminders"
)

const schema = `
CREATE TABLE IF NOT EXISTS lists (
    id          TEXT PRIMARY KEY,
    title       TEXT NOT NULL UNIQUE,
    source      TEXT NOT NULL DEFAULT 'Local',
    created_at  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS reminders (
    id           TEXT PRIMARY KEY,
    list_id      TEXT NOT NULL REFERENCES lists(id) ON DELETE CASCADE,
    title        TEXT NOT NULL,
    notes        TEXT NOT NULL DEFAULT '',
    due_date     TEXT,
    priority     INTEGER NOT NULL DEFAULT 0
        CHECK (priority IN (0, 1, 5, 9)),
    completed    INTEGER NOT NULL DEFAULT 0
        CHECK (completed IN (0, 1)),
    completed_at TEXT,
    created_at   TEXT NOT NULL,
    updated_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reminders_list ON reminders(list_id);
CREATE INDEX IF NOT EXISTS idx_reminders_list_completed ON reminders(list_id, completed);
`

// Fixed width keeps lexical order equal to chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Access is the grant the platform gave this process.
type Access string

const (
	AccessFull      Access = "full"
	AccessWriteOnly Access = "write_only"
	AccessDenied    Access = "denied"
)

func ParseAccess(s string) (Access, error) {
	switch a := Access(strings.ToLower(strings.TrimSpace(s))); a {
	case AccessFull, AccessWriteOnly, AccessDenied:
		return a, nil
	case "":
		return AccessFull, nil
	default:
		return "", fmt.Errorf("invalid access %q (want full, write_only or denied)", s)
	}
}

type Options struct {
	Access Access
	// DefaultSource is used by CreateList when no source is given.
	DefaultSource string
	// DefaultList is created when the database has no lists yet.
	DefaultList string
}

// Store implements reminders.Store on SQLite.
type Store struct {
	db            *sqlx.DB
	access        Access
	defaultSource string
	now           func() time.Time
}

var _ reminders.Store = (*Store)(nil)

type listRow struct {
	ID        string `db:"id"`
	Title     string `db:"title"`
	Source    string `db:"source"`
	CreatedAt string `db:"created_at"`
}

type reminderRow struct {
	ID          string  `db:"id"`
	ListID      string  `db:"list_id"`
	ListTitle   string  `db:"list_title"`
	Title       string  `db:"title"`
	Notes       string  `db:"notes"`
	DueDate     *string `db:"due_date"`
	Priority    int     `db:"priority"`
	Completed   bool    `db:"completed"`
	CompletedAt *string `db:"completed_at"`
	CreatedAt   string  `db:"created_at"`
	UpdatedAt   string  `db:"updated_at"`
}

const selectReminders = `SELECT r.id, r.list_id, l.title AS list_title, r.title, r.notes,
       r.due_date, r.priority, r.completed, r.completed_at, r.created_at, r.updated_at
  FROM reminders r
  JOIN lists l ON l.id = r.list_id`

// Open opens (creating if needed) the database at path. Use ":memory:" for
// a throwaway store.
func Open(path string, opts Options) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	conn, err := sqlx.Connect("sqlite",
		path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	conn.SetMaxOpenConns(1)
	if _, err = conn.ExecContext(context.Background(), schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	access := opts.Access
	if access == "" {
		access = AccessFull
	}
	source := opts.DefaultSource
	if source == "" {
		source = "Local"
	}
	s := &Store{db: conn, access: access, defaultSource: source, now: time.Now}

	if opts.DefaultList != "" {
		if err := s.seedDefaultList(context.Background(), opts.DefaultList); err != nil {
			conn.Close()
			return nil, fmt.Errorf("seed default list: %w", err)
		}
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) seedDefaultList(ctx context.Context, title string) error {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM lists"); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return insertList(ctx, s.db, &listRow{
		ID:        newListID(),
		Title:     title,
		Source:    s.defaultSource,
		CreatedAt: s.timestamp(),
	})
}

func newListID() string     { return "list_" + xid.New().String() }
func newReminderID() string { return "rem_" + xid.New().String() }

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func (s *Store) Authorize(ctx context.Context) error {
	switch s.access {
	case AccessFull:
		return nil
	case AccessWriteOnly:
		return reminders.ErrWriteOnlyAccess
	default:
		return reminders.ErrAccessDenied
	}
}

func (s *Store) canRead() error {
	return s.Authorize(context.Background())
}

func (s *Store) canWrite() error {
	if s.access == AccessDenied {
		return reminders.ErrAccessDenied
	}
	return nil
}

func (s *Store) Lists(ctx context.Context) ([]reminders.List, error) {
	if err := s.canRead(); err != nil {
		return nil, err
	}

	var rows []listRow
	if err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM lists ORDER BY created_at, rowid"); err != nil {
		return nil, failed("list lists", err)
	}

	lists := make([]reminders.List, 0, len(rows))
	for _, r := range rows {
		lists = append(lists, r.toList())
	}
	return lists, nil
}

func (s *Store) Reminders(ctx context.Context, list string, filter reminders.Filter) ([]reminders.Reminder, error) {
	if err := s.canRead(); err != nil {
		return nil, err
	}

	listID := ""
	if list != "" {
		l, err := getListByTitle(ctx, s.db, list)
		if err != nil {
			return nil, err
		}
		listID = l.ID
	}
	return queryReminders(ctx, s.db, listID, filter)
}

func (s *Store) CreateReminder(ctx context.Context, draft reminders.Draft, list string) (*reminders.Reminder, error) {
	if err := s.canWrite(); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: reminder title must not be empty", reminders.ErrOperationFailed)
	}

	var created *reminders.Reminder
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		l, err := getListByTitle(ctx, tx, list)
		if err != nil {
			return err
		}

		now := s.timestamp()
		row := &reminderRow{
			ID:        newReminderID(),
			ListID:    l.ID,
			Title:     title,
			Notes:     draft.Notes,
			Priority:  int(draft.Priority),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if draft.DueDate != nil {
			due := formatTime(*draft.DueDate)
			row.DueDate = &due
		}

		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO reminders (id, list_id, title, notes, due_date, priority, completed, created_at, updated_at)
             VALUES (:id, :list_id, :title, :notes, :due_date, :priority, 0, :created_at, :updated_at)`,
			row,
		); err != nil {
			return failed("insert reminder", err)
		}

		created, err = getReminder(ctx, tx, row.ID)
		return err
	})
	return created, err
}

func (s *Store) SetCompleted(ctx context.Context, completed bool, ref reminders.Ref, list string) (*reminders.Reminder, error) {
	if err := s.canRead(); err != nil {
		return nil, err
	}

	var updated *reminders.Reminder
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		// Completing picks from the open reminders, uncompleting from the done ones.
		target, err := resolve(ctx, tx, ref, list, reminders.Filter{OnlyCompleted: !completed})
		if err != nil {
			return err
		}

		args := map[string]any{
			"id":         target.ID,
			"completed":  completed,
			"updated_at": s.timestamp(),
		}
		if completed {
			args["completed_at"] = s.timestamp()
		} else {
			args["completed_at"] = nil
		}
		if _, err := tx.NamedExecContext(ctx,
			`UPDATE reminders SET completed = :completed, completed_at = :completed_at, updated_at = :updated_at
             WHERE id = :id`, args); err != nil {
			return failed("update reminder", err)
		}

		updated, err = getReminder(ctx, tx, target.ID)
		return err
	})
	return updated, err
}

func (s *Store) EditReminder(ctx context.Context, ref reminders.Ref, list string, edit reminders.Edit) (*reminders.Reminder, error) {
	if err := s.canRead(); err != nil {
		return nil, err
	}
	if edit.IsEmpty() {
		return nil, fmt.Errorf("%w: nothing to change", reminders.ErrOperationFailed)
	}

	var updated *reminders.Reminder
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		target, err := resolve(ctx, tx, ref, list, reminders.Filter{})
		if err != nil {
			return err
		}

		setClauses := []string{"updated_at = :updated_at"}
		args := map[string]any{"id": target.ID, "updated_at": s.timestamp()}

		if edit.Title != nil {
			title := strings.TrimSpace(*edit.Title)
			if title == "" {
				return fmt.Errorf("%w: reminder title must not be empty", reminders.ErrOperationFailed)
			}
			setClauses = append(setClauses, "title = :title")
			args["title"] = title
		}

		if edit.Notes != nil {
			setClauses = append(setClauses, "notes = :notes")
			args["notes"] = *edit.Notes
		}

		if at, ok := edit.Due.Value(); ok {
			setClauses = append(setClauses, "due_date = :due_date")
			args["due_date"] = formatTime(at)
		} else if edit.Due.IsClear() {
			setClauses = append(setClauses, "due_date = NULL")
		}

		if edit.Priority != nil {
			setClauses = append(setClauses, "priority = :priority")
			args["priority"] = int(*edit.Priority)
		}

		query := "UPDATE reminders SET " + strings.Join(setClauses, ", ") + " WHERE id = :id"
		if _, err := tx.NamedExecContext(ctx, query, args); err != nil {
			return failed("update reminder", err)
		}

		updated, err = getReminder(ctx, tx, target.ID)
		return err
	})
	return updated, err
}

func (s *Store) DeleteReminder(ctx context.Context, ref reminders.Ref, list string) (string, error) {
	if err := s.canRead(); err != nil {
		return "", err
	}

	var title string
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		target, err := resolve(ctx, tx, ref, list, reminders.Filter{})
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, "DELETE FROM reminders WHERE id = ?", target.ID)
		if err != nil {
			return failed("delete reminder", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return failed("delete reminder", err)
		}
		if rows == 0 {
			return fmt.Errorf("%w: %s", reminders.ErrReminderNotFound, target.ID)
		}
		title = target.Title
		return nil
	})
	return title, err
}

func (s *Store) CreateList(ctx context.Context, name, source string) (*reminders.List, error) {
	if err := s.canWrite(); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: list name must not be empty", reminders.ErrOperationFailed)
	}
	if source == "" {
		source = s.defaultSource
	}

	row := &listRow{ID: newListID(), Title: name, Source: source, CreatedAt: s.timestamp()}
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var exists bool
		if err := tx.GetContext(ctx, &exists,
			"SELECT EXISTS(SELECT 1 FROM lists WHERE title = ?)", name); err != nil {
			return failed("check list", err)
		}
		if exists {
			return fmt.Errorf("%w: a list named %q already exists", reminders.ErrOperationFailed, name)
		}
		return insertList(ctx, tx, row)
	})
	if err != nil {
		return nil, err
	}

	l := row.toList()
	return &l, nil
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return failed("begin transaction", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return failed("commit", err)
	}
	return nil
}

func insertList(ctx context.Context, db sqlx.ExtContext, row *listRow) error {
	query, args, err := sqlx.Named(
		`INSERT INTO lists (id, title, source, created_at) VALUES (:id, :title, :source, :created_at)`, row)
	if err != nil {
		return failed("insert list", err)
	}
	if _, err := db.ExecContext(ctx, db.Rebind(query), args...); err != nil {
		return failed("insert list", err)
	}
	return nil
}

func getListByTitle(ctx context.Context, db sqlx.QueryerContext, title string) (*listRow, error) {
	var l listRow
	err := sqlx.GetContext(ctx, db, &l, "SELECT * FROM lists WHERE title = ?", title)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no list named %q", reminders.ErrListNotFound, title)
	}
	if err != nil {
		return nil, failed("get list", err)
	}
	return &l, nil
}

func queryReminders(ctx context.Context, db sqlx.ExtContext, listID string, filter reminders.Filter) ([]reminders.Reminder, error) {
	query := selectReminders + " WHERE 1=1"
	args := make(map[string]any)

	if listID != "" {
		query += " AND r.list_id = :list_id"
		args["list_id"] = listID
	}

	switch {
	case filter.OnlyCompleted:
		query += " AND r.completed = 1"
	case !filter.IncludeCompleted:
		query += " AND r.completed = 0"
	}

	query += " ORDER BY l.created_at, l.rowid, r.created_at, r.rowid"

	rows, err := sqlx.NamedQueryContext(ctx, db, query, args)
	if err != nil {
		return nil, failed("query reminders", err)
	}
	defer rows.Close()

	items := []reminders.Reminder{}
	for rows.Next() {
		var r reminderRow
		if err := rows.StructScan(&r); err != nil {
			return nil, failed("scan reminder", err)
		}
		item, err := r.toReminder()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, failed("query reminders", err)
	}
	return items, nil
}

func getReminder(ctx context.Context, db sqlx.QueryerContext, id string) (*reminders.Reminder, error) {
	var r reminderRow
	err := sqlx.GetContext(ctx, db, &r, selectReminders+" WHERE r.id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", reminders.ErrReminderNotFound, id)
	}
	if err != nil {
		return nil, failed("get reminder", err)
	}
	item, err := r.toReminder()
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// resolve finds the reminder ref points at. Index refs count within the
// list's reminders matching filter; id refs may name any reminder of the list.
func resolve(ctx context.Context, tx *sqlx.Tx, ref reminders.Ref, list string, filter reminders.Filter) (reminders.Reminder, error) {
	l, err := getListByTitle(ctx, tx, list)
	if err != nil {
		return reminders.Reminder{}, err
	}
	if _, byID := ref.ID(); byID {
		filter = reminders.Filter{IncludeCompleted: true}
	}
	candidates, err := queryReminders(ctx, tx, l.ID, filter)
	if err != nil {
		return reminders.Reminder{}, err
	}
	return ref.Pick(candidates, list)
}

func failed(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", reminders.ErrOperationFailed, op, err)
}

func (r listRow) toList() reminders.List {
	return reminders.List{ID: r.ID, Title: r.Title, Source: r.Source}
}

func (r reminderRow) toReminder() (reminders.Reminder, error) {
	item := reminders.Reminder{
		ID:        r.ID,
		List:      r.ListTitle,
		Title:     r.Title,
		Notes:     r.Notes,
		Priority:  reminders.PriorityFromInt(r.Priority),
		Completed: r.Completed,
	}

	var err error
	if item.CreationDate, err = parseTime(r.CreatedAt); err != nil {
		return item, failed("decode created_at", err)
	}
	if item.LastModified, err = parseTime(r.UpdatedAt); err != nil {
		return item, failed("decode updated_at", err)
	}
	if r.DueDate != nil {
		due, err := parseTime(*r.DueDate)
		if err != nil {
			return item, failed("decode due_date", err)
		}
		item.DueDate = &due
	}
	if r.CompletedAt != nil {
		done, err := parseTime(*r.CompletedAt)
		if err != nil {
			return item, failed("decode completed_at", err)
		}
		item.CompletionDate = &done
	}
	return item, nil
}
