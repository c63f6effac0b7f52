package attachment

import "errors"

var (
	// ErrFileTooLarge indicates a single file exceeded the upload limit.
	ErrFileTooLarge = errors.New("file exceeds the 50 MB upload limit")
	// ErrEncodeFailed indicates the file bytes could not be read into a payload.
	ErrEncodeFailed = errors.New("failed to encode file content")
)
