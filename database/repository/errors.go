package repository

import (
	"errors"
	"fmt"
)

// RemoteStoreError wraps any failure reported by the remote store.
type RemoteStoreError struct {
	Table string
	Op    string
	ID    string
	Err   error
}

func (e *RemoteStoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s id=%s: %v", e.Op, e.Table, e.ID, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *RemoteStoreError) Unwrap() error {
	return e.Err
}

// Describe implements the notification describer.
func (e *RemoteStoreError) Describe(action string) (string, string) {
	return "Something went wrong", fmt.Sprintf("We couldn't %s. Please try again in a moment.", action)
}

// NotFoundError reports that no row carries the requested identity.
type NotFoundError struct {
	Table string
	ID    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %s not found", e.Table, e.ID)
}

func (e *NotFoundError) Describe(action string) (string, string) {
	return "Not found", "The item you're looking for no longer exists."
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsRemoteStore reports whether err is, or wraps, a RemoteStoreError.
func IsRemoteStore(err error) bool {
	var rs *RemoteStoreError
	return errors.As(err, &rs)
}
