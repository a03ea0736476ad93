package moderation

import "errors"

var (
	// ErrNotFound means the referenced infraction does not exist in the guild.
	ErrNotFound = errors.New("infraction not found")
	// ErrInvalidState means the infraction's state forbids the operation.
	ErrInvalidState = errors.New("invalid infraction state")
	// ErrPublish means a publication could not be sent.
	ErrPublish = errors.New("failed to publish")
	// ErrTransient means the platform failed for a reason other than confirmed absence.
	ErrTransient = errors.New("transient platform error")
)
