package redis

import (
	"context"
	"crypto/tls"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type Options struct {
	Addr     string
	Username string
	Password string
	UseTLS   bool
	Timeout  time.Duration
}

type Client struct {
	*goredis.Client
}

// New builds a pooled client and pings it once. The client is returned even
// when the ping fails so callers can decide whether the store is mandatory.
func New(opts Options) (*Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}

	redisOpts := &goredis.Options{
		Addr:         opts.Addr,
		Username:     opts.Username,
		Password:     opts.Password,
		DB:           0,
		DialTimeout:  opts.Timeout,
		ReadTimeout:  opts.Timeout,
		WriteTimeout: opts.Timeout,
	}
	if opts.UseTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client := goredis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	err := client.Ping(ctx).Err()

	return &Client{Client: client}, err
}
