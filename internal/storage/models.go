package storage

import (
	"errors"
	"time"
)

var (
	// ErrRunNotFound is returned when a run id does not exist.
	ErrRunNotFound = errors.New("run not found")

	// ErrSchemaMismatch is returned when an existing database was written by
	// a different schema version.
	ErrSchemaMismatch = errors.New("schema version mismatch")

	// ErrUnknownKind is returned for stored rows this version cannot decode.
	ErrUnknownKind = errors.New("unknown stored kind")
)

// Run describes one persisted extraction.
type Run struct {
	ID          string
	FilePath    string
	ContentHash string
	ItemCount   int
	ExtractedAt time.Time
}

const (
	tyKindID      = "id"
	tyKindUnknown = "unknown"
)
