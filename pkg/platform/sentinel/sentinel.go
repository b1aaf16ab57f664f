package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these, possibly
// wrapped, and services translate them into domain errors:
//   - ErrNotFound: the record does not exist
//   - ErrConflict: a record with the same key already exists
//   - ErrExpired: a one-time code outlived its TTL
//   - ErrLimitReached: a one-time code used up its checks
//
// Input validation failures use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrExpired      = errors.New("expired")
	ErrLimitReached = errors.New("limit reached")
)
