package progress

import "errors"

var (
	// ErrMemberNotFound indicates the member id is not on the roster.
	ErrMemberNotFound = errors.New("member not found")
	// ErrMonthNotFound indicates the month id is outside the reporting cycle.
	ErrMonthNotFound = errors.New("month not found")
	// ErrRecordNotFound indicates no progress has been saved for the pair.
	ErrRecordNotFound = errors.New("progress record not found")
	// ErrEmptyContent indicates a save was attempted with no real content.
	ErrEmptyContent = errors.New("progress content is empty")
	// ErrNotSaved indicates a submit was attempted before any content save.
	ErrNotSaved = errors.New("no saved progress content to submit")
)
