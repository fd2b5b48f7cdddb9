package uploads

import (
	"context"
	"crypto/rand"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
)

var ErrNotFound = errors.New("upload not found")

// Store holds the raw bytes of uploaded recipient files, keyed by a
// generated ID. No deduplication or versioning: a re-upload gets a new key.
type Store interface {
	Put(ctx context.Context, id string, data []byte) error
	Get(ctx context.Context, id string) ([]byte, error)
}

// NewUploadID returns a sortable object key for an upload.
func NewUploadID() string {
	t := time.Now().UTC()
	return "upload_" + ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}
