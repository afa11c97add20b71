package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Connect builds a redis client from either a redis://-style URL or a bare
// host:port address. Container environments pass the URL form (which also
// covers rediss:// and database selection), local runs usually the bare
// address.
func Connect(_ context.Context, addr string) (*redis.Client, error) {
	if !strings.Contains(addr, "://") {
		return redis.NewClient(&redis.Options{Addr: addr}), nil
	}
	opt, err := redis.ParseURL(addr)
	if err != nil {
		return nil, fmt.Errorf("parse redis url %q: %w", addr, err)
	}
	return redis.NewClient(opt), nil
}
