package repository

import (
	"context"
	"io"
)

// Upload is a file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// FileStorage persists binary objects such as board and card covers.
type FileStorage interface {
	// Upload stores the file under folder and returns the generated filename.
	Upload(ctx context.Context, file *Upload, folder string) (string, error)
	Delete(ctx context.Context, filename, folder string) error
	// URL returns a client-reachable address of the object, or "" on failure.
	URL(ctx context.Context, filename, folder string) string
}

// JoinLimiter throttles join-by-link attempts per key.
type JoinLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// EventPublisher broadcasts committed board events to other processes.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, payload interface{}) error
}
