package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by storage backends when the object is absent.
	ErrNotFound = errors.New("not found")
	// ErrDataLoad means the roster or ledger source is missing or malformed.
	ErrDataLoad = errors.New("data load failed")
	// ErrPersist means the ledger could not be written to durable storage.
	ErrPersist = errors.New("ledger persist failed")
	// ErrSessionTimeout means the session deadline elapsed before completion.
	ErrSessionTimeout = errors.New("verification session timed out")
	// ErrAlreadyActive rejects a start while the user has a live session.
	ErrAlreadyActive = errors.New("verification already in progress")
	// ErrAlreadyVerified rejects a start for a user present in the ledger.
	ErrAlreadyVerified = errors.New("user already verified")
	// ErrRoleNotFound means the configured role does not exist in the guild.
	ErrRoleNotFound = errors.New("role not found")
)

// MismatchError is an expected, user-facing validation failure.
type MismatchError struct {
	Reason string
}

func (e *MismatchError) Error() string {
	return "mismatch: " + e.Reason
}

// EffectorAction names a post-verification side effect.
type EffectorAction string

const (
	ActionRemoveUnverified EffectorAction = "remove_unverified_role"
	ActionAddMember        EffectorAction = "add_member_role"
	ActionAddUnverified    EffectorAction = "add_unverified_role"
	ActionRename           EffectorAction = "rename"
)

// EffectorActionError wraps a failed role or nickname call.
type EffectorActionError struct {
	Action EffectorAction
	Err    error
}

func (e *EffectorActionError) Error() string {
	return fmt.Sprintf("effector action %s failed: %v", e.Action, e.Err)
}

func (e *EffectorActionError) Unwrap() error {
	return e.Err
}
