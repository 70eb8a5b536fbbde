package driver

import (
	"context"
	"errors"
	"time"
)

// ErrNil key does not exist
var ErrNil = errors.New("driver: key does not exist")

// KeyValueDB define a key-value storage interface
type KeyValueDB interface {
	SetEX(ctx context.Context, key string, value string, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}
