// Package db caches backend data in a local SQLite file so the client can
// start instantly and show the last known library while offline.
package db

import (
	"time"

	"github.com/jwulff/scribe/internal/library"
)

// Snapshot is one cached library listing.
type Snapshot struct {
	ID        int64
	Backend   string
	FetchedAt time.Time
	Structure library.Structure
}

// CachedSession is the last fetched detail payload of a session.
type CachedSession struct {
	ID        string
	Backend   string
	Title     string
	Payload   []byte
	FetchedAt time.Time
}
