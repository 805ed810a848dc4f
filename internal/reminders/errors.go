package reminders

import "errors"

// Business failures. Stores wrap these with detail; callers match with errors.Is.
var (
	ErrAccessDenied     = errors.New("access to reminders was denied")
	ErrWriteOnlyAccess  = errors.New("only write access to reminders was granted; reading requires full access")
	ErrListNotFound     = errors.New("list not found")
	ErrReminderNotFound = errors.New("reminder not found")
	ErrOperationFailed  = errors.New("operation failed")
)
