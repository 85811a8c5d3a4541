// Package postedstore records which assembly documents this service has
// posted. The external system only exposes a cancellation flag on assembly
// documents, so without an owned record a posted document would read back as
// Open. Posted status is permanent: entries never expire.
package postedstore

import (
	"context"
	"time"
)

// Store records and answers posted status for assembly documents.
type Store interface {
	// MarkPosted records that the document was posted at the given time.
	// Returns false when the document was already marked.
	MarkPosted(ctx context.Context, docNo string, postedAt time.Time) (bool, error)

	// PostedAt returns the posting time, or nil when the document has not
	// been posted by this service.
	PostedAt(ctx context.Context, docNo string) (*time.Time, error)

	// Close releases any underlying resources.
	Close() error
}
