// Package session persists the single bearer credential of the signed-in user.
package session

import (
	"context"
	"fmt"
)

// TokenKey is the fixed slot name the credential is stored under.
const TokenKey = "auth_token"

// Store holds at most one credential.
type Store interface {
	// Save persists token, overwriting any prior value.
	Save(ctx context.Context, token string) error
	// Get returns the stored token. ok is false when no token is stored;
	// err is only set for genuine I/O failures.
	Get(ctx context.Context) (token string, ok bool, err error)
	// Clear removes the stored token. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

// StorageError reports that the persistence layer behind a Store is unavailable.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("session storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
