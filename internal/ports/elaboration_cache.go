package ports

import "context"

// Persistent cache of elaborated text keyed by a prompt hash.
type ElaborationCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key string, text string) error
}
