package health

import "context"

// StorePinger is satisfied by the Redis/Valkey store.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks the embedding provider with a real request.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
