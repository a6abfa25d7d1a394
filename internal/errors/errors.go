package errors

import "errors"

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrArtifactNotFound = errors.New("video not found")
	ErrEmptyScript      = errors.New("script cannot be empty")
	ErrScriptTooLong    = errors.New("script too long (max 1000 chars)")
)
