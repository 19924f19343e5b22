package ports

import "context"

// RateLimiter bounds how many delegations run against the external CLI.
type RateLimiter interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}
