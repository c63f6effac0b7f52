package mcp

import (
	"errors"
	"fmt"

	"github.com/labtrack/labtrack/internal/attachment"
	"github.com/labtrack/labtrack/internal/progress"
)

// userError rephrases domain errors for the calling collaborator. Anything
// unrecognized passes through unchanged.
func userError(err error) error {
	switch {
	case errors.Is(err, progress.ErrEmptyContent):
		return fmt.Errorf("progress content is empty; enter content before saving")
	case errors.Is(err, progress.ErrNotSaved):
		return fmt.Errorf("save progress content before submitting")
	case errors.Is(err, progress.ErrMemberNotFound):
		return fmt.Errorf("unknown member id; use list_members for the roster")
	case errors.Is(err, progress.ErrMonthNotFound):
		return fmt.Errorf("unknown month id; use list_months for the reporting cycle")
	case errors.Is(err, progress.ErrRecordNotFound):
		return fmt.Errorf("no progress saved for this member and month yet")
	case errors.Is(err, attachment.ErrFileTooLarge):
		return fmt.Errorf("file exceeds the 50 MB upload limit")
	default:
		return err
	}
}
