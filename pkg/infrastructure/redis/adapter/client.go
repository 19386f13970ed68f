package adapter

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ClientOptions são os parâmetros de conexão com o Redis.
type ClientOptions struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisClient(opts ClientOptions) redis.UniversalClient {
	return redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

// Ping verifica a conexão, com limite de cinco segundos.
func Ping(ctx context.Context, client redis.UniversalClient) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return client.Ping(ctx).Err()
}
