package domain

import "errors"

// ErrRecordNotFound is returned by a store when no record exists for a key.
var ErrRecordNotFound = errors.New("record not found")

// ErrMalformedTree is returned when stored bytes cannot be decoded into a Tree.
var ErrMalformedTree = errors.New("malformed tree data")

// ErrNodeNotFound is used by adapters that report missing ids to their callers.
// The engine itself treats a missing id as a no-op.
var ErrNodeNotFound = errors.New("node not found")
