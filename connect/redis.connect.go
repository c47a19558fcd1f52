package connect

import (
	"context"

	"github.com/VinukaThejana/go-utils/logger"
	"github.com/redis/go-redis/v9"
	"github.com/venbook/auth/config"
)

// Redis is used to manage al redis service connections
type Redis struct {
	Cooldown *redis.Client
	System   *redis.Client
}

func connect(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		logger.Errorf(err)
	}

	r := redis.NewClient(opt)
	if err := r.Ping(context.Background()).Err(); err != nil {
		logger.Errorf(err)
	}

	return r
}

// InitRedis is a function to initialize all redis instances
func (c *Connector) InitRedis(env *config.Env) {
	c.R = &Redis{
		Cooldown: connect(env.RedisCooldownURL),
		System:   connect(env.RedisSystemURL),
	}
}
