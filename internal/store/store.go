package store

import (
	"context"
	"time"
)

// Feed is one subscribed feed source. Immutable once created; the
// pipeline references it and never mutates it.
type Feed struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store is the subscription persistence port. The pipeline consumes List
// output as its fetch worklist and otherwise stays out of storage.
type Store interface {
	List(ctx context.Context) ([]Feed, error)
	Create(ctx context.Context, url, title, description string) (Feed, error)
}
