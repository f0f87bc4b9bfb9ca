package redis

import (
	// Go Internal Packages
	"context"
	"time"

	// External Packages
	"github.com/redis/go-redis/v9"
)

// Connect connects to the redis server and returns the client. The server
// must answer a ping within timeout.
func Connect(ctx context.Context, uri, password string, timeout time.Duration) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        uri,
		Password:    password,
		DB:          0,
		DialTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if _, pingErr := rdb.Ping(pingCtx).Result(); pingErr != nil {
		_ = rdb.Close()
		return nil, pingErr
	}
	return rdb, nil
}
