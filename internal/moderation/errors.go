package moderation

import "errors"

var (
	// ErrNotPrivileged rejects a command from an actor that is neither a
	// configured administrator nor a promoted moderator. Surfaced to the
	// actor only, never to admins.
	ErrNotPrivileged = errors.New("not privileged")

	// ErrBadDuration rejects a malformed ban duration token. Pure
	// validation, no partial effects.
	ErrBadDuration = errors.New("bad duration format")

	// ErrNoTarget rejects a command that could not resolve a target user
	// from a reply.
	ErrNoTarget = errors.New("no target user")
)
